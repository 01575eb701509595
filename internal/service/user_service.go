package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"address-book/internal/auth"
	"address-book/internal/domain"
	"address-book/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when attempting to sign up with a registered email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidRefreshToken indicates a refresh token that is expired, forged
	// or superseded by a newer one.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrVerification indicates an email-confirmation token whose subject is unknown.
	ErrVerification = errors.New("verification error")
	// ErrUserNotFound is returned when no account matches the given email.
	ErrUserNotFound = errors.New("user not found")
)

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// ConfirmOutcome distinguishes a fresh confirmation from a repeated one.
type ConfirmOutcome int

const (
	ConfirmedNow ConfirmOutcome = iota
	AlreadyConfirmed
)

// ConfirmationMailer queues a confirmation email for best-effort delivery.
type ConfirmationMailer interface {
	EnqueueConfirmation(email, username, token string)
}

// AvatarStore uploads a processed avatar and returns its public URL.
type AvatarStore interface {
	UploadObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// AvatarProcessor normalizes an uploaded image to the stored avatar format.
type AvatarProcessor func(r io.Reader) ([]byte, error)

// UserService describes account lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, token string) (ConfirmOutcome, error)
	RequestConfirmation(ctx context.Context, email string) (ConfirmOutcome, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, email string, file io.Reader) (*domain.User, error)
}

type userService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	mailer    ConfirmationMailer
	avatars   AvatarStore
	normalize AvatarProcessor
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenService, mailer ConfirmationMailer, avatars AvatarStore, normalize AvatarProcessor) UserService {
	return &userService{
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		avatars:   avatars,
		normalize: normalize,
	}
}

func (s *userService) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       gravatarURL(email),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.sendConfirmation(user)

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.rotate(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh pair. Presenting a
// superseded token clears the stored one entirely, forcing a re-login.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := s.tokens.Validate(refreshToken, auth.ScopeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if user.RefreshToken != refreshToken {
		if err := s.users.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
			return nil, err
		}
		return nil, ErrInvalidRefreshToken
	}

	return s.rotate(ctx, user)
}

func (s *userService) Logout(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.users.UpdateRefreshToken(ctx, user.ID, "")
}

func (s *userService) ConfirmEmail(ctx context.Context, token string) (ConfirmOutcome, error) {
	email, err := s.tokens.SubjectFromConfirmationToken(token)
	if err != nil {
		return 0, ErrVerification
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrVerification
		}
		return 0, err
	}

	if user.Confirmed {
		return AlreadyConfirmed, nil
	}
	if err := s.users.MarkConfirmed(ctx, email); err != nil {
		return 0, err
	}
	return ConfirmedNow, nil
}

func (s *userService) RequestConfirmation(ctx context.Context, email string) (ConfirmOutcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	if user.Confirmed {
		return AlreadyConfirmed, nil
	}
	s.sendConfirmation(user)
	return ConfirmedNow, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, email string, file io.Reader) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	data, err := s.normalize(file)
	if err != nil {
		return nil, fmt.Errorf("process avatar: %w", err)
	}

	url, err := s.avatars.UploadObject(ctx, avatarKey(user.Email), bytes.NewReader(data), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, user.Email, url); err != nil {
		return nil, err
	}
	user.Avatar = url
	return sanitizeUser(user), nil
}

// rotate issues a fresh access+refresh pair and stores the refresh token
// as the single valid one for the user.
func (s *userService) rotate(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.Issue(auth.ScopeAccess, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(auth.ScopeRefresh, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *userService) sendConfirmation(user *domain.User) {
	if s.mailer == nil {
		return
	}
	token, err := s.tokens.Issue(auth.ScopeEmailConfirm, user.Email)
	if err != nil {
		return
	}
	s.mailer.EnqueueConfirmation(user.Email, user.Username, token)
}

func avatarKey(email string) string {
	return strings.ReplaceAll(email, "@", "_") + ".jpg"
}

// gravatarURL derives a default avatar from the email, the same fallback
// the classic gravatar scheme provides.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
