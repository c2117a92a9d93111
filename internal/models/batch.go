package models

import "time"

// BatchStatus is the lifecycle state of a settlement batch.
// A batch moves from active to settled exactly once.
type BatchStatus string

const (
	BatchActive  BatchStatus = "active"
	BatchSettled BatchStatus = "settled"
)

// SettlementBatch groups the pairings computed for one date range.
type SettlementBatch struct {
	// ID is the unique identifier for the batch (UUID format).
	ID string

	// Name is the operator-chosen label (e.g. "March 2025").
	Name string

	// PeriodStart and PeriodEnd bound the transaction dates, inclusive.
	PeriodStart time.Time
	PeriodEnd   time.Time

	Status BatchStatus

	// CreatedBy is the operator who created the batch.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the batch was created.
	CreatedAt int64

	// GeneratedAt is the Unix timestamp of pairing generation, 0 if not yet run.
	GeneratedAt int64

	// SettledAt is the Unix timestamp of closure, 0 while active.
	SettledAt int64

	// TransactionIDs are the records that fed the batch's pairings.
	// They are marked settled when the batch is closed.
	TransactionIDs []string
}

// Generated reports whether pairings were already generated for the batch.
func (b *SettlementBatch) Generated() bool {
	return b.GeneratedAt != 0
}

// PairingStatus is the confirmation state of a pairing.
type PairingStatus string

const (
	PairingPending   PairingStatus = "pending"
	PairingCompleted PairingStatus = "completed"
)

// Pairing is one persisted payment instruction within a batch.
type Pairing struct {
	ID      string
	BatchID string

	// Creditor receives the payment, Debtor makes it.
	Creditor string
	Debtor   string

	// Amount is the payment rounded to 2 decimals, kept as a decimal string.
	Amount string

	Status PairingStatus

	// CompletedBy is the party that confirmed the payment.
	CompletedBy string

	CreatedAt   int64
	CompletedAt int64
}

// Involves reports whether the participant is the creditor or the debtor.
func (p *Pairing) Involves(participant string) bool {
	return participant != "" && (participant == p.Creditor || participant == p.Debtor)
}
