package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

// FetchAllRecords returns every transaction record in append order.
func (s *SQLiteStore) FetchAllRecords(ctx context.Context) ([]models.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, time_range, giver, claimant, status, swap_requested, settled, created_at
		 FROM transactions ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var (
			r       models.TransactionRecord
			status  string
			swap    int
			settled int
		)
		if err := rows.Scan(&r.ID, &r.Date, &r.TimeRange, &r.Giver, &r.Claimant, &status, &swap, &settled, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		r.Status, err = models.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
		}
		r.SwapRequested = swap != 0
		r.Settled = settled != 0

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return records, nil
}

// AppendRecord adds a record to the end of the log.
func (s *SQLiteStore) AppendRecord(ctx context.Context, record *models.TransactionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	// Generate ID if not set
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, time_range, giver, claimant, status, swap_requested, settled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Date, record.TimeRange, record.Giver, record.Claimant, string(record.Status),
		boolToInt(record.SwapRequested), boolToInt(record.Settled), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// UpdateRecordFields applies a partial update to one record.
func (s *SQLiteStore) UpdateRecordFields(ctx context.Context, id string, update models.RecordUpdate) error {
	return updateRecordFields(ctx, s.db, id, update)
}

func updateRecordFields(ctx context.Context, q querier, id string, update models.RecordUpdate) error {
	if update.Empty() {
		return nil
	}

	var (
		sets []string
		args []any
	)
	if update.Status != nil {
		status, err := models.ParseStatus(string(*update.Status))
		if err != nil {
			return err
		}
		sets = append(sets, "status = ?")
		args = append(args, string(status))
	}
	if update.Settled != nil {
		sets = append(sets, "settled = ?")
		args = append(args, boolToInt(*update.Settled))
	}
	if update.Claimant != nil {
		sets = append(sets, "claimant = ?")
		args = append(args, *update.Claimant)
	}
	args = append(args, id)

	res, err := q.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}

	return nil
}
