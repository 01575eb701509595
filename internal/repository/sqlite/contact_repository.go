package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"address-book/internal/domain"
	"address-book/internal/repository"
)

const createContactsTable = `
CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone_number TEXT NOT NULL,
	birthday TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_first_name ON contacts(first_name);
CREATE INDEX IF NOT EXISTS idx_contacts_last_name ON contacts(last_name);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
`

// birthdayLayout keeps birthdays as plain calendar dates so sqlite's
// strftime can pull month/day out of them.
const birthdayLayout = "2006-01-02"

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) repository.ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createContactsTable); err != nil {
		return fmt.Errorf("create contacts table: %w", err)
	}
	return nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) (int64, error) {
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.Birthday.Format(birthdayLayout),
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("contact last insert id: %w", err)
	}
	contact.ID = id
	return id, nil
}

func (r *ContactRepository) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx, selectContact+`WHERE id = ?`, id)
	return scanContact(row)
}

func (r *ContactRepository) List(ctx context.Context, limit, offset int) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, selectContact+`LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (r *ContactRepository) Update(ctx context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error) {
	contact, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Merge only the fields the caller actually supplied.
	if patch.FirstName != nil {
		contact.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		contact.LastName = *patch.LastName
	}
	if patch.Email != nil {
		contact.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		contact.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Birthday != nil {
		contact.Birthday = *patch.Birthday
	}
	contact.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
UPDATE contacts
SET first_name = ?, last_name = ?, email = ?, phone_number = ?, birthday = ?, updated_at = ?
WHERE id = ?`,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.Birthday.Format(birthdayLayout),
		contact.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("contact rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) Search(ctx context.Context, text string, limit, offset int) ([]domain.Contact, error) {
	pattern := "%" + text + "%"
	rows, err := r.db.QueryContext(ctx, selectContact+`
WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ?
LIMIT ? OFFSET ?`,
		pattern, pattern, pattern, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

// Birthdays matches month and day bounds independently: a contact is
// included when its birthday month lies in [today.month, end.month] and
// its day lies in [today.day, end.day]. This is not a calendar interval
// and does not wrap across year end.
func (r *ContactRepository) Birthdays(ctx context.Context, today time.Time, days, limit, offset int) ([]domain.Contact, error) {
	end := today.AddDate(0, 0, days)

	rows, err := r.db.QueryContext(ctx, selectContact+`
WHERE CAST(strftime('%m', birthday) AS INTEGER) >= ?
  AND CAST(strftime('%m', birthday) AS INTEGER) <= ?
  AND CAST(strftime('%d', birthday) AS INTEGER) >= ?
  AND CAST(strftime('%d', birthday) AS INTEGER) <= ?
ORDER BY birthday
LIMIT ? OFFSET ?`,
		int(today.Month()), int(end.Month()),
		today.Day(), end.Day(),
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("birthday contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

const selectContact = `
SELECT id, first_name, last_name, email, phone_number, birthday, created_at, updated_at
FROM contacts
`

func scanContact(row interface {
	Scan(dest ...any) error
}) (*domain.Contact, error) {
	var (
		contact  domain.Contact
		birthday string
	)
	if err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.PhoneNumber,
		&birthday,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}

	parsed, err := time.Parse(birthdayLayout, birthday)
	if err != nil {
		return nil, fmt.Errorf("parse birthday %q: %w", birthday, err)
	}
	contact.Birthday = parsed
	return &contact, nil
}

func collectContacts(rows *sql.Rows) ([]domain.Contact, error) {
	var contacts []domain.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}
