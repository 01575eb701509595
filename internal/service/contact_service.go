package service

import (
	"context"
	"errors"
	"time"

	"address-book/internal/domain"
	"address-book/internal/repository"
)

// ErrContactNotFound is returned when no contact matches the given id.
var ErrContactNotFound = errors.New("contact not found")

// ContactService coordinates contact level operations backed by the repository.
type ContactService interface {
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	Get(ctx context.Context, id int64) (*domain.Contact, error)
	List(ctx context.Context, limit, offset int) ([]domain.Contact, error)
	Update(ctx context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, text string, limit, offset int) ([]domain.Contact, error)
	Birthdays(ctx context.Context, days, limit, offset int) ([]domain.Contact, error)
}

type contactService struct {
	contacts repository.ContactRepository
	now      func() time.Time
}

func NewContactService(contacts repository.ContactRepository) ContactService {
	return &contactService{
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *contactService) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	if _, err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *contactService) List(ctx context.Context, limit, offset int) ([]domain.Contact, error) {
	return s.contacts.List(ctx, limit, offset)
}

func (s *contactService) Update(ctx context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error) {
	contact, err := s.contacts.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id int64) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return nil
}

func (s *contactService) Search(ctx context.Context, text string, limit, offset int) ([]domain.Contact, error) {
	return s.contacts.Search(ctx, text, limit, offset)
}

func (s *contactService) Birthdays(ctx context.Context, days, limit, offset int) ([]domain.Contact, error) {
	return s.contacts.Birthdays(ctx, s.now(), days, limit, offset)
}
