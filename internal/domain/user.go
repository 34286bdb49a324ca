package domain

import (
	"time"
)

// User represents a registered account on the board.
// The identifier and creation timestamp are assigned by the store on insert.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never expose the password hash
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a User ready for insertion. The password must already be
// hashed; this package never sees plaintext credentials.
func NewUser(email, hashedPassword string) (*User, error) {
	if email == "" {
		return nil, NewValidationError("email", "email is required")
	}
	if hashedPassword == "" {
		return nil, NewValidationError("password", "password hash is required")
	}
	return &User{
		Email:          email,
		HashedPassword: hashedPassword,
	}, nil
}
