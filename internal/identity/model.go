package identity

import (
	"errors"
	"time"
)

const roleUser = "user"

var (
	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned when the password is shorter than minPasswordLen.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// User represents a registered wallet owner.
type User struct {
	ID           string
	Email        string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
	Currency string
}
