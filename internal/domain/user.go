package domain

import "time"

// User represents a registered account of the address book.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	RefreshToken string
	Confirmed    bool
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
