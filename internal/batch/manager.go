// Package batch manages settlement batches: creating them for a date range,
// turning the ledger of that range into pairings, tracking pairing
// confirmations and closing the batch back onto the transaction log.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mmynk/slotledger/internal/calculator"
	"github.com/mmynk/slotledger/internal/lock"
	"github.com/mmynk/slotledger/internal/metrics"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

var (
	// ErrInvalidInput marks rejected input: missing fields, bad date ranges.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPrecondition marks operations attempted in the wrong state, such as
	// generating pairings twice or closing a settled batch.
	ErrPrecondition = errors.New("failed precondition")
)

// Store is the persistence the manager needs.
type Store interface {
	storage.TransactionLog
	storage.Directory
	storage.BatchStore
}

// CreateBatchInput describes a new settlement period.
type CreateBatchInput struct {
	Name        string    `validate:"required,max=200"`
	PeriodStart time.Time `validate:"required"`
	PeriodEnd   time.Time `validate:"required,gtefield=PeriodStart"`
	CreatedBy   string
}

// Manager implements the batch lifecycle. Operator privilege is checked by
// the caller; the manager enforces state preconditions and party rules.
type Manager struct {
	store    Store
	locker   lock.Locker
	pricing  calculator.Pricing
	now      func() time.Time
	validate *validator.Validate
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocker replaces the default in-process locker.
func WithLocker(l lock.Locker) Option {
	return func(m *Manager) { m.locker = l }
}

// WithClock overrides time.Now, which also decides the year of DD.MM dates.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, pricing calculator.Pricing, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locker:   lock.NewLocalLocker(),
		pricing:  pricing,
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func lockKey(batchID string) string {
	return "batch:" + batchID
}

// CreateBatch creates an active batch with no pairings.
func (m *Manager) CreateBatch(ctx context.Context, in CreateBatchInput) (batch *models.SettlementBatch, err error) {
	defer func() { metrics.BatchOperation("create", err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.PeriodStart, in.PeriodEnd = truncateDay(in.PeriodStart), truncateDay(in.PeriodEnd)
	if err := m.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	batch = &models.SettlementBatch{
		ID:          uuid.New().String(),
		Name:        in.Name,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Status:      models.BatchActive,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   m.now().Unix(),
	}
	if err := m.store.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	m.logger.Info("Batch created",
		"batch_id", batch.ID,
		"name", batch.Name,
		"period_start", batch.PeriodStart.Format(time.DateOnly),
		"period_end", batch.PeriodEnd.Format(time.DateOnly),
	)
	return batch, nil
}

// GeneratePairings computes the ledger for the batch's date range and
// persists one pending pairing per payment instruction. It runs at most once
// per batch.
func (m *Manager) GeneratePairings(ctx context.Context, batchID string) (pairings []*models.Pairing, err error) {
	defer func() { metrics.BatchOperation("generate", err) }()

	if batchID == "" {
		return nil, fmt.Errorf("%w: batch_id required", ErrInvalidInput)
	}

	err = m.locker.WithLock(ctx, lockKey(batchID), func(ctx context.Context) error {
		batch, err := m.store.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.Status != models.BatchActive {
			return fmt.Errorf("%w: batch %s is %s", ErrPrecondition, batchID, batch.Status)
		}
		if batch.Generated() {
			return fmt.Errorf("%w: pairings already generated for batch %s", ErrPrecondition, batchID)
		}

		records, err := m.store.FetchAllRecords(ctx)
		if err != nil {
			return err
		}
		prefs, err := m.store.FetchAll(ctx)
		if err != nil {
			return err
		}

		window := InPeriod(records, batch.PeriodStart, batch.PeriodEnd)
		if len(window) == 0 {
			m.logger.Warn("No records dated within batch period",
				"batch_id", batchID,
				"period_start", batch.PeriodStart.Format(time.DateOnly),
				"period_end", batch.PeriodEnd.Format(time.DateOnly),
			)
		}
		result := calculator.Compute(window, prefs, m.pricing)
		instructions := calculator.Simplify(result.Balances, prefs)

		now := m.now().Unix()
		pairings = make([]*models.Pairing, 0, len(instructions))
		for _, in := range instructions {
			pairings = append(pairings, &models.Pairing{
				ID:        uuid.New().String(),
				BatchID:   batchID,
				Creditor:  in.To,
				Debtor:    in.From,
				Amount:    in.Amount.StringFixed(2),
				Status:    models.PairingPending,
				CreatedAt: now,
			})
		}

		if err := m.store.SavePairings(ctx, batchID, now, pairings, result.IncludedIDs()); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("%w: batch %s changed during generation: %v", ErrPrecondition, batchID, err)
			}
			return err
		}

		m.logger.Info("Pairings generated",
			"batch_id", batchID,
			"records_in_period", len(window),
			"transactions", len(result.IncludedIDs()),
			"pairings", len(pairings),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PairingsGenerated(len(pairings))
	return pairings, nil
}

// CompletePairing records that the real-world payment happened. Only the
// pairing's creditor or debtor may confirm it. Confirming a completed
// pairing returns it unchanged.
func (m *Manager) CompletePairing(ctx context.Context, pairingID, completedBy string) (pairing *models.Pairing, err error) {
	defer func() { metrics.BatchOperation("complete", err) }()

	if pairingID == "" || strings.TrimSpace(completedBy) == "" {
		return nil, fmt.Errorf("%w: pairing_id and completed_by required", ErrInvalidInput)
	}

	pairing, err = m.store.GetPairing(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	if !pairing.Involves(completedBy) {
		return nil, fmt.Errorf("%w: %s is not a party of pairing %s", ErrPrecondition, completedBy, pairingID)
	}
	if pairing.Status == models.PairingCompleted {
		return pairing, nil
	}

	// The batch lock keeps CloseBatch out between the status check and the write.
	err = m.locker.WithLock(ctx, lockKey(pairing.BatchID), func(ctx context.Context) error {
		batch, err := m.store.GetBatch(ctx, pairing.BatchID)
		if err != nil {
			return err
		}
		if batch.Status != models.BatchActive {
			return fmt.Errorf("%w: batch %s is %s", ErrPrecondition, batch.ID, batch.Status)
		}

		changed, err := m.store.CompletePairing(ctx, pairingID, completedBy, m.now().Unix())
		if err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("%w: batch %s is no longer active", ErrPrecondition, batch.ID)
			}
			return err
		}
		if changed {
			m.logger.Info("Pairing completed", "pairing_id", pairingID, "batch_id", pairing.BatchID, "completed_by", completedBy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.store.GetPairing(ctx, pairingID)
}

// CloseBatch settles the batch and marks every transaction behind its
// pairings as settled. Pending pairings do not block closure.
func (m *Manager) CloseBatch(ctx context.Context, batchID string) (batch *models.SettlementBatch, err error) {
	defer func() { metrics.BatchOperation("close", err) }()

	if batchID == "" {
		return nil, fmt.Errorf("%w: batch_id required", ErrInvalidInput)
	}

	err = m.locker.WithLock(ctx, lockKey(batchID), func(ctx context.Context) error {
		current, err := m.store.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if current.Status != models.BatchActive {
			return fmt.Errorf("%w: batch %s is already %s", ErrPrecondition, batchID, current.Status)
		}

		pairings, err := m.store.ListPairings(ctx, batchID)
		if err != nil {
			return err
		}
		pending := 0
		for _, p := range pairings {
			if p.Status == models.PairingPending {
				pending++
			}
		}
		if pending > 0 {
			m.logger.Warn("Closing batch with pending pairings", "batch_id", batchID, "pending", pending)
		}

		if err := m.store.SettleBatch(ctx, batchID, m.now().Unix()); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("%w: batch %s is no longer active", ErrPrecondition, batchID)
			}
			return err
		}

		m.logger.Info("Batch closed",
			"batch_id", batchID,
			"transactions_settled", len(current.TransactionIDs),
			"pairings", len(pairings),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.store.GetBatch(ctx, batchID)
}

// GetBatch returns one batch.
func (m *Manager) GetBatch(ctx context.Context, batchID string) (*models.SettlementBatch, error) {
	return m.store.GetBatch(ctx, batchID)
}

// ListBatches returns all batches, newest first.
func (m *Manager) ListBatches(ctx context.Context) ([]*models.SettlementBatch, error) {
	return m.store.ListBatches(ctx)
}

// ListPairings returns the pairings of one batch.
func (m *Manager) ListPairings(ctx context.Context, batchID string) ([]*models.Pairing, error) {
	if _, err := m.store.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return m.store.ListPairings(ctx, batchID)
}

// InPeriod returns the records dated within [start, end]. Record dates carry
// no year, so each is read in the year of start and, for a period that runs
// into the next year, the year of end as well. Records with unparseable dates
// are left out.
func InPeriod(records []models.TransactionRecord, start, end time.Time) []models.TransactionRecord {
	from, to := truncateDay(start), truncateDay(end)
	years := []int{from.Year()}
	for y := from.Year() + 1; y <= to.Year(); y++ {
		years = append(years, y)
	}

	var out []models.TransactionRecord
	for _, r := range records {
		for _, year := range years {
			day, err := r.Day(year)
			if err != nil {
				continue
			}
			if !day.Before(from) && !day.After(to) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gtefield":
			msgs = append(msgs, fe.Field()+" must not be before "+fe.Param())
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
