package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account able to sign in to the admin area. Admin capability is
// resolved separately through the role lookup, not stored on the user row.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
