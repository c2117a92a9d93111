package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrMissingParticipant = errors.New("participant name required")
	ErrUnknownParticipant = errors.New("participant not in directory")
	ErrParticipantTaken   = errors.New("participant already linked to an account")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByParticipant(ctx context.Context, participant string) (*models.User, error)
}

// ParticipantDirectory lists the names an account may be linked to.
type ParticipantDirectory interface {
	FetchAll(ctx context.Context) (models.Preferences, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage   UserStorage
	directory ParticipantDirectory
	cost      int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, directory ParticipantDirectory) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage:   storage,
		directory: directory,
		cost:      bcrypt.DefaultCost,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new member account with a hashed password. The
// participant must be in the directory and not yet linked to another account.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, participant, credential string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	participant = strings.TrimSpace(participant)
	if participant == "" {
		return nil, ErrMissingParticipant
	}

	// Validate password strength
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	// Check if email already exists
	_, err := a.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := a.checkParticipant(ctx, participant); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, displayName, participant, string(hashedPassword))

	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost a race with a concurrent registration.
			if _, lookupErr := a.storage.GetUserByEmail(ctx, email); lookupErr == nil {
				return nil, ErrEmailExists
			}
			return nil, fmt.Errorf("%w: %s", ErrParticipantTaken, participant)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (a *PasswordAuthenticator) checkParticipant(ctx context.Context, participant string) error {
	prefs, err := a.directory.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch directory: %w", err)
	}
	if _, ok := prefs[participant]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, participant)
	}

	_, err = a.storage.GetUserByParticipant(ctx, participant)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrParticipantTaken, participant)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to look up participant: %w", err)
	}
	return nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
