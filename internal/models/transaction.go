package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a slot transfer.
type Status string

const (
	StatusOffered         Status = "offered"
	StatusClaimed         Status = "claimed"
	StatusRetracted       Status = "retracted"
	StatusReassigned      Status = "reassigned"
	StatusAdminReassigned Status = "admin-reassigned"
	StatusExpired         Status = "expired"
)

// UnclaimedHolder is the giver recorded for a slot that had no original
// holder. Such a record is a plain claim, not a transfer.
const UnclaimedHolder = "unclaimed"

// DateLayout is the day.month format used for transaction dates. The year is
// not part of the record.
const DateLayout = "2.1"

var ErrInvalidStatus = errors.New("invalid transaction status")

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusOffered, StatusClaimed, StatusRetracted, StatusReassigned, StatusAdminReassigned, StatusExpired:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Billable reports whether the status represents a completed transfer.
func (s Status) Billable() bool {
	switch s {
	case StatusClaimed, StatusReassigned, StatusAdminReassigned:
		return true
	}
	return false
}

// TransactionRecord is one slot transfer in the transaction log.
type TransactionRecord struct {
	// ID is the stable identifier assigned by the log.
	ID string

	// Date is the session day in DD.MM form.
	Date string

	// TimeRange is the session time of day, e.g. "19:00-21:00".
	// It is only used to infer the slot duration and to order records.
	TimeRange string

	// Giver surrendered the slot. UnclaimedHolder means nobody held it.
	Giver string

	// Claimant received the slot. Empty until claimed.
	Claimant string

	Status Status

	// SwapRequested marks swaps, which never carry a monetary value.
	SwapRequested bool

	// Settled is set when the batch that billed this transfer is closed.
	Settled bool

	// CreatedAt is the Unix timestamp when the record was appended.
	CreatedAt int64
}

// HasRealGiver reports whether the giver is an actual participant.
func (r TransactionRecord) HasRealGiver() bool {
	giver := strings.TrimSpace(r.Giver)
	return giver != "" && giver != UnclaimedHolder
}

// Day parses Date, placing it in the given year.
func (r TransactionRecord) Day(year int) (time.Time, error) {
	return ParseDate(r.Date, year)
}

// Validate checks the fields required for a record to be stored.
func (r TransactionRecord) Validate() error {
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	if _, err := ParseDate(r.Date, 2000); err != nil {
		return err
	}
	if strings.TrimSpace(r.TimeRange) == "" {
		return errors.New("time range is required")
	}
	return nil
}

// ParseDate parses a DD.MM date in the given year.
func ParseDate(s string, year int) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSuffix(strings.TrimSpace(s), "."))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// RecordUpdate names the fields to change on one record. Nil fields are
// left untouched.
type RecordUpdate struct {
	Status   *Status
	Settled  *bool
	Claimant *string
}

// Empty reports whether the update changes nothing.
func (u RecordUpdate) Empty() bool {
	return u.Status == nil && u.Settled == nil && u.Claimant == nil
}
