package repository

import (
	"context"

	"address-book/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, id int64, token string) error
	MarkConfirmed(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) error
}
