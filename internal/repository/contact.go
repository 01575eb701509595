package repository

import (
	"context"
	"time"

	"address-book/internal/domain"
)

// ContactRepository exposes persistence operations for Contact entries.
//
// Queries are global: rows are not scoped to the authenticated user even
// though accounts exist, mirroring the behavior of the upstream schema.
type ContactRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, contact *domain.Contact) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Contact, error)
	List(ctx context.Context, limit, offset int) ([]domain.Contact, error)
	Update(ctx context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, text string, limit, offset int) ([]domain.Contact, error)
	Birthdays(ctx context.Context, today time.Time, days, limit, offset int) ([]domain.Contact, error)
}
