// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/slotledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a guarded write finds the row in an
	// unexpected state (e.g. a batch that is no longer active) or a unique
	// key already taken.
	ErrConflict = errors.New("conflicting state")
)

// TransactionLog is the ordered collection of slot transfer records.
type TransactionLog interface {
	// FetchAllRecords returns every record in log order.
	FetchAllRecords(ctx context.Context) ([]models.TransactionRecord, error)

	// UpdateRecordFields applies the non-nil fields of update to one record.
	// Returns ErrNotFound if the record does not exist.
	UpdateRecordFields(ctx context.Context, id string, update models.RecordUpdate) error

	// AppendRecord adds a record at the end of the log.
	// The record.ID field will be populated by the store if empty.
	AppendRecord(ctx context.Context, record *models.TransactionRecord) error
}

// Directory is the participant directory.
type Directory interface {
	// FetchAll returns every participant keyed by name.
	FetchAll(ctx context.Context) (models.Preferences, error)

	// UpsertParticipant creates or replaces a directory entry.
	UpsertParticipant(ctx context.Context, pref models.ParticipantPreference) error
}

// BatchStore persists settlement batches and their pairings.
type BatchStore interface {
	// CreateBatch persists a new batch. ID and CreatedAt are populated if empty.
	CreateBatch(ctx context.Context, batch *models.SettlementBatch) error

	// GetBatch retrieves a batch including its transaction IDs.
	GetBatch(ctx context.Context, batchID string) (*models.SettlementBatch, error)

	// ListBatches returns all batches, newest first.
	ListBatches(ctx context.Context) ([]*models.SettlementBatch, error)

	// SavePairings stores the generated pairings and the contributing
	// transaction IDs in one transaction. It returns ErrConflict unless the
	// batch is active and has never been generated.
	SavePairings(ctx context.Context, batchID string, generatedAt int64, pairings []*models.Pairing, transactionIDs []string) error

	// GetPairing retrieves a pairing by ID.
	GetPairing(ctx context.Context, pairingID string) (*models.Pairing, error)

	// ListPairings returns the pairings of a batch in creation order.
	ListPairings(ctx context.Context, batchID string) ([]*models.Pairing, error)

	// CompletePairing marks a pending pairing of an active batch completed.
	// It reports false when the pairing was already completed and returns
	// ErrConflict when its batch is no longer active.
	CompletePairing(ctx context.Context, pairingID, completedBy string, completedAt int64) (bool, error)

	// SettleBatch moves an active batch to settled and sets the settled flag
	// on every transaction recorded for it, in one transaction. It returns
	// ErrConflict if the batch is not active.
	SettleBatch(ctx context.Context, batchID string, settledAt int64) error
}

// UserStore persists login accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByParticipant(ctx context.Context, participant string) (*models.User, error)
	SetUserRole(ctx context.Context, email string, role models.Role) error
}

// Store combines every persistence concern of the service.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	TransactionLog
	Directory
	BatchStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
