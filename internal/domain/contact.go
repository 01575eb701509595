package domain

import "time"

// Contact is a single address book entry. Only the month and day of
// Birthday are significant for upcoming-birthday queries.
type Contact struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Birthday    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactPatch carries a partial update. Nil fields are left untouched.
type ContactPatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Birthday    *time.Time
}
