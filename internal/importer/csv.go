// Package importer reads transaction records and directory entries from CSV
// exports of the scheduling sheet.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

// CSV columns. Records require date, time, giver and status; directory
// entries require name. Other columns may be missing from the header.
const (
	colID       = "id"
	colDate     = "date"
	colTime     = "time"
	colGiver    = "giver"
	colClaimant = "claimant"
	colStatus   = "status"
	colSwap     = "swap_requested"
	colSettled  = "settled"
	colName     = "name"
	colContact  = "contact"
	colOptedIn  = "opted_in"
	colRole     = "role"
	colColor    = "color"
)

var ErrMissingColumn = errors.New("missing required column")

type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	t := &table{index: make(map[string]int, len(header))}
	for i, h := range header {
		t.index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	t.rows, err = cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return t, nil
}

func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseBool(s string, fallback bool) (bool, error) {
	switch strings.ToLower(s) {
	case "":
		return fallback, nil
	case "yes", "y", "x":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// ReadRecords parses transaction records. Line numbers in errors count the
// header as line 1.
func ReadRecords(r io.Reader) ([]models.TransactionRecord, error) {
	t, err := readTable(r, colDate, colTime, colGiver, colStatus)
	if err != nil {
		return nil, err
	}

	records := make([]models.TransactionRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2

		status, err := models.ParseStatus(t.get(row, colStatus))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		swap, err := parseBool(t.get(row, colSwap), false)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, colSwap, err)
		}
		settled, err := parseBool(t.get(row, colSettled), false)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, colSettled, err)
		}

		rec := models.TransactionRecord{
			ID:            t.get(row, colID),
			Date:          t.get(row, colDate),
			TimeRange:     t.get(row, colTime),
			Giver:         t.get(row, colGiver),
			Claimant:      t.get(row, colClaimant),
			Status:        status,
			SwapRequested: swap,
			Settled:       settled,
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadParticipants parses directory entries. opted_in defaults to true.
func ReadParticipants(r io.Reader) ([]models.ParticipantPreference, error) {
	t, err := readTable(r, colName)
	if err != nil {
		return nil, err
	}

	prefs := make([]models.ParticipantPreference, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2

		name := t.get(row, colName)
		if name == "" {
			return nil, fmt.Errorf("line %d: empty name", line)
		}
		optedIn, err := parseBool(t.get(row, colOptedIn), true)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, colOptedIn, err)
		}
		role := models.Role(strings.ToLower(t.get(row, colRole)))
		switch role {
		case "":
			role = models.RoleMember
		case models.RoleMember, models.RoleOperator:
		default:
			return nil, fmt.Errorf("line %d: invalid role %q", line, role)
		}

		prefs = append(prefs, models.ParticipantPreference{
			Name:    name,
			Contact: t.get(row, colContact),
			OptedIn: optedIn,
			Role:    role,
			Color:   t.get(row, colColor),
		})
	}
	return prefs, nil
}

// ImportRecords appends every record to the log in file order.
func ImportRecords(ctx context.Context, log storage.TransactionLog, r io.Reader) (int, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return 0, err
	}
	for i := range records {
		if err := log.AppendRecord(ctx, &records[i]); err != nil {
			return i, fmt.Errorf("failed to append record %d: %w", i+1, err)
		}
	}
	return len(records), nil
}

// ImportParticipants upserts every directory entry.
func ImportParticipants(ctx context.Context, dir storage.Directory, r io.Reader) (int, error) {
	prefs, err := ReadParticipants(r)
	if err != nil {
		return 0, err
	}
	for i, p := range prefs {
		if err := dir.UpsertParticipant(ctx, p); err != nil {
			return i, fmt.Errorf("failed to save participant %s: %w", p.Name, err)
		}
	}
	return len(prefs), nil
}
