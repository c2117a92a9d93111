package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a login account. Each account is linked to one participant name
// from the directory and carries the role used for operator checks.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's login address (unique).
	Email string

	// DisplayName is shown in the UI.
	DisplayName string

	// Participant is the directory name this account acts as.
	Participant string

	Role Role

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a member account with a fresh ID and timestamps.
func NewUser(email, displayName, participant, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		Participant:  participant,
		Role:         RoleMember,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
