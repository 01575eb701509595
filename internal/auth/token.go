package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope restricts which operation may accept a token. A token minted for
// one scope never validates under another, even with a valid signature.
type Scope string

const (
	ScopeAccess       Scope = "access"
	ScopeRefresh      Scope = "refresh"
	ScopeEmailConfirm Scope = "email_confirmation"
)

// ErrInvalidToken covers bad signatures, expired tokens and scope
// mismatches alike; callers get no further detail.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed claim set carried by every token.
type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the three token kinds used by the
// account flows. The signing secret is fixed at construction.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
	}
}

// Issue signs a token for the given scope and subject (user email).
func (s *TokenService) Issue(scope Scope, subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl(scope))),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks signature, expiry and scope, returning the subject.
func (s *TokenService) Validate(tokenString string, expected Scope) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != expected || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// SubjectFromConfirmationToken extracts the email out of an
// email-confirmation token.
func (s *TokenService) SubjectFromConfirmationToken(tokenString string) (string, error) {
	return s.Validate(tokenString, ScopeEmailConfirm)
}

func (s *TokenService) ttl(scope Scope) time.Duration {
	switch scope {
	case ScopeRefresh:
		return s.refreshTTL
	case ScopeEmailConfirm:
		return s.emailTTL
	default:
		return s.accessTTL
	}
}
