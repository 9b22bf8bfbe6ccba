package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user record in the database
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`                     // Primary key
	Email        string    `json:"email" db:"email"`               // Unique, case-folded email
	PasswordHash string    `json:"-" db:"password_hash"`           // Bcrypt hash
	IsActive     bool      `json:"is_active" db:"is_active"`       // Inactive users cannot authenticate
	IsVerified   bool      `json:"is_verified" db:"is_verified"`   // Email ownership confirmed
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"` // Cross-account administrative access
	CreatedAt    time.Time `json:"created_at" db:"created_at"`     // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`     // Last update timestamp
}

// UserWithCredits is a user together with its credit balance.
type UserWithCredits struct {
	User
	Credits int `json:"credits" db:"credits"`
}

// UserUpdate lists the columns an update may change. Nil fields are kept.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	IsActive     *bool
	IsVerified   *bool
	IsSuperuser  *bool
}
