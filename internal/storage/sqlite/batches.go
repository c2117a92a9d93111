package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

const periodLayout = "2006-01-02"

// CreateBatch persists a new batch to the database.
func (s *SQLiteStore) CreateBatch(ctx context.Context, batch *models.SettlementBatch) error {
	// Generate ID if not set
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	if batch.CreatedAt == 0 {
		batch.CreatedAt = time.Now().Unix()
	}
	if batch.Status == "" {
		batch.Status = models.BatchActive
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches (id, name, period_start, period_end, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.Name, batch.PeriodStart.Format(periodLayout), batch.PeriodEnd.Format(periodLayout),
		string(batch.Status), batch.CreatedBy, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	return nil
}

const batchColumns = `id, name, period_start, period_end, status, created_by, created_at, generated_at, settled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*models.SettlementBatch, error) {
	var (
		b           models.SettlementBatch
		start, end  string
		status      string
		generatedAt sql.NullInt64
		settledAt   sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.Name, &start, &end, &status, &b.CreatedBy, &b.CreatedAt, &generatedAt, &settledAt); err != nil {
		return nil, err
	}

	var err error
	if b.PeriodStart, err = time.Parse(periodLayout, start); err != nil {
		return nil, fmt.Errorf("batch %s: invalid period start: %w", b.ID, err)
	}
	if b.PeriodEnd, err = time.Parse(periodLayout, end); err != nil {
		return nil, fmt.Errorf("batch %s: invalid period end: %w", b.ID, err)
	}
	b.Status = models.BatchStatus(status)
	if generatedAt.Valid {
		b.GeneratedAt = generatedAt.Int64
	}
	if settledAt.Valid {
		b.SettledAt = settledAt.Int64
	}
	return &b, nil
}

// GetBatch retrieves a batch by ID along with its transaction IDs.
func (s *SQLiteStore) GetBatch(ctx context.Context, batchID string) (*models.SettlementBatch, error) {
	batch, err := scanBatch(s.db.QueryRowContext(ctx,
		"SELECT "+batchColumns+" FROM batches WHERE id = ?", batchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", batchID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	batch.TransactionIDs, err = batchTransactionIDs(ctx, s.db, batchID)
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// ListBatches returns all batches, newest first. TransactionIDs are not loaded.
func (s *SQLiteStore) ListBatches(ctx context.Context) ([]*models.SettlementBatch, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+batchColumns+" FROM batches ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.SettlementBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}

	return batches, nil
}

func batchTransactionIDs(ctx context.Context, q querier, batchID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT transaction_id FROM batch_transactions WHERE batch_id = ? ORDER BY transaction_id",
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch transactions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan batch transaction: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch transactions: %w", err)
	}

	return ids, nil
}

// batchGuardError explains why a guarded batch update touched no rows.
func batchGuardError(ctx context.Context, q querier, batchID string) error {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM batches WHERE id = ?", batchID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("batch %s: %w", batchID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check batch existence: %w", err)
	}
	return fmt.Errorf("batch %s: %w", batchID, storage.ErrConflict)
}

// SavePairings stores generated pairings and marks the batch as generated.
func (s *SQLiteStore) SavePairings(ctx context.Context, batchID string, generatedAt int64, pairings []*models.Pairing, transactionIDs []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE batches SET generated_at = ?
			 WHERE id = ? AND status = ? AND generated_at IS NULL`,
			generatedAt, batchID, string(models.BatchActive),
		)
		if err != nil {
			return fmt.Errorf("failed to mark batch generated: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to check updated rows: %w", err)
		} else if n == 0 {
			return batchGuardError(ctx, tx, batchID)
		}

		for i, p := range pairings {
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			p.BatchID = batchID

			_, err := tx.ExecContext(ctx,
				`INSERT INTO pairings (id, batch_id, position, creditor, debtor, amount, status, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, batchID, i, p.Creditor, p.Debtor, p.Amount, string(p.Status), p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert pairing: %w", err)
			}
		}

		for _, id := range transactionIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO batch_transactions (batch_id, transaction_id) VALUES (?, ?)",
				batchID, id,
			)
			if err != nil {
				return fmt.Errorf("failed to insert batch transaction: %w", err)
			}
		}

		return nil
	})
}

const pairingColumns = `id, batch_id, creditor, debtor, amount, status, completed_by, created_at, completed_at`

func scanPairing(row rowScanner) (*models.Pairing, error) {
	var (
		p           models.Pairing
		status      string
		completedBy sql.NullString
		completedAt sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.BatchID, &p.Creditor, &p.Debtor, &p.Amount, &status, &completedBy, &p.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	p.Status = models.PairingStatus(status)
	if completedBy.Valid {
		p.CompletedBy = completedBy.String
	}
	if completedAt.Valid {
		p.CompletedAt = completedAt.Int64
	}
	return &p, nil
}

// GetPairing retrieves a pairing by ID.
func (s *SQLiteStore) GetPairing(ctx context.Context, pairingID string) (*models.Pairing, error) {
	p, err := scanPairing(s.db.QueryRowContext(ctx,
		"SELECT "+pairingColumns+" FROM pairings WHERE id = ?", pairingID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pairing %s: %w", pairingID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pairing: %w", err)
	}
	return p, nil
}

// ListPairings returns the pairings of a batch in generation order.
func (s *SQLiteStore) ListPairings(ctx context.Context, batchID string) ([]*models.Pairing, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+pairingColumns+" FROM pairings WHERE batch_id = ? ORDER BY position",
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairings: %w", err)
	}
	defer rows.Close()

	var pairings []*models.Pairing
	for rows.Next() {
		p, err := scanPairing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pairing: %w", err)
		}
		pairings = append(pairings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pairings: %w", err)
	}

	return pairings, nil
}

// CompletePairing marks a pending pairing as completed.
func (s *SQLiteStore) CompletePairing(ctx context.Context, pairingID, completedBy string, completedAt int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pairings SET status = ?, completed_by = ?, completed_at = ?
		 WHERE id = ? AND status = ?
		   AND batch_id IN (SELECT id FROM batches WHERE status = ?)`,
		string(models.PairingCompleted), completedBy, completedAt, pairingID,
		string(models.PairingPending), string(models.BatchActive),
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete pairing: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Distinguish an unknown pairing, one that is already completed and a
	// pending one whose batch is no longer active.
	pairing, err := s.GetPairing(ctx, pairingID)
	if err != nil {
		return false, err
	}
	if pairing.Status == models.PairingPending {
		return false, fmt.Errorf("pairing %s: batch %s not active: %w", pairingID, pairing.BatchID, storage.ErrConflict)
	}
	return false, nil
}

// SettleBatch closes an active batch and marks its transactions settled.
func (s *SQLiteStore) SettleBatch(ctx context.Context, batchID string, settledAt int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE batches SET status = ?, settled_at = ? WHERE id = ? AND status = ?",
			string(models.BatchSettled), settledAt, batchID, string(models.BatchActive),
		)
		if err != nil {
			return fmt.Errorf("failed to settle batch: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to check updated rows: %w", err)
		} else if n == 0 {
			return batchGuardError(ctx, tx, batchID)
		}

		ids, err := batchTransactionIDs(ctx, tx, batchID)
		if err != nil {
			return err
		}

		settled := true
		for _, id := range ids {
			if err := updateRecordFields(ctx, tx, id, models.RecordUpdate{Settled: &settled}); err != nil {
				return err
			}
		}

		return nil
	})
}
