package domain

import "time"

// User represents a registered account. PasswordHash holds the bcrypt digest
// of the credential; the plaintext is never persisted.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Problems     []Problem
}
