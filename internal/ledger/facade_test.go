package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slotledger/internal/calculator"
	"github.com/mmynk/slotledger/internal/models"
)

type memLog struct {
	records []models.TransactionRecord
	err     error
}

func (m *memLog) FetchAllRecords(context.Context) ([]models.TransactionRecord, error) {
	return m.records, m.err
}

func (m *memLog) UpdateRecordFields(context.Context, string, models.RecordUpdate) error {
	return nil
}

func (m *memLog) AppendRecord(_ context.Context, r *models.TransactionRecord) error {
	m.records = append(m.records, *r)
	return nil
}

type memDir struct {
	prefs models.Preferences
}

func (m *memDir) FetchAll(context.Context) (models.Preferences, error) {
	return m.prefs, nil
}

func (m *memDir) UpsertParticipant(_ context.Context, p models.ParticipantPreference) error {
	m.prefs[p.Name] = p
	return nil
}

func directory(optedOut ...string) *memDir {
	d := &memDir{prefs: models.Preferences{}}
	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		d.prefs[name] = models.ParticipantPreference{Name: name, OptedIn: true, Role: models.RoleMember}
	}
	for _, name := range optedOut {
		p := d.prefs[name]
		p.OptedIn = false
		d.prefs[name] = p
	}
	return d
}

func rec(id, date, timeRange, giver, claimant string) models.TransactionRecord {
	return models.TransactionRecord{ID: id, Date: date, TimeRange: timeRange, Giver: giver, Claimant: claimant, Status: models.StatusClaimed}
}

func newFacade(log *memLog, dir *memDir) *Facade {
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	return NewFacade(log, dir, calculator.DefaultPricing(), WithClock(func() time.Time { return now }))
}

func TestOverview(t *testing.T) {
	settled := rec("s1", "01.03", "19:00-20:00", "Bob", "Alice")
	settled.Settled = true
	log := &memLog{records: []models.TransactionRecord{
		rec("t1", "05.03", "19:00-20:00", "Alice", "Bob"),
		rec("t2", "06.03", "19:00-21:00", "Alice", "Charlie"),
		settled,
	}}
	f := newFacade(log, directory())

	ov, err := f.Overview(context.Background())
	require.NoError(t, err)

	assert.Len(t, ov.Balances, 3)
	assert.Equal(t, 3, ov.Totals.Participants)
	assert.True(t, decimal.RequireFromString("11.40").Equal(ov.Totals.OutstandingCredit))
	assert.Equal(t, 2, ov.Totals.Instructions)
	assert.Equal(t, 2, ov.Totals.ActiveSlots)
	assert.Equal(t, 1, ov.Totals.SettledSlots)
	assert.Equal(t, 3, ov.Totals.BilledSlots)
	assert.Equal(t, 0, ov.Totals.OptedOut)

	sum := decimal.Zero
	for _, b := range ov.Balances {
		sum = sum.Add(b.Credits)
	}
	assert.True(t, sum.IsZero())
}

func TestOverview_FetchError(t *testing.T) {
	boom := errors.New("sheet unavailable")
	f := newFacade(&memLog{err: boom}, directory())

	_, err := f.Overview(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestParticipant(t *testing.T) {
	log := &memLog{records: []models.TransactionRecord{
		rec("t1", "05.03", "19:00-20:00", "Alice", "Bob"),
		rec("t2", "06.03", "19:00-20:00", "Charlie", "Alice"),
		rec("t3", "07.03", "19:00-21:00", "Charlie", "Bob"),
	}}
	f := newFacade(log, directory())
	ctx := context.Background()

	view, err := f.Participant(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", view.Balance.Participant)
	assert.True(t, decimal.RequireFromString("-11.40").Equal(view.Balance.Credits))
	require.NotEmpty(t, view.Instructions)
	for _, in := range view.Instructions {
		assert.Equal(t, "Bob", in.From)
	}
	assert.True(t, view.Preference.OptedIn)

	t.Run("unknown name", func(t *testing.T) {
		_, err := f.Participant(ctx, "Zed")
		assert.ErrorIs(t, err, ErrUnknownParticipant)
	})

	t.Run("name only in the log", func(t *testing.T) {
		log.records = append(log.records, rec("t4", "08.03", "19:00-20:00", "Dora", "Alice"))
		view, err := f.Participant(ctx, "Dora")
		require.NoError(t, err)
		assert.True(t, view.Preference.OptedIn)
		assert.True(t, decimal.RequireFromString("3.80").Equal(view.Balance.Credits))
	})
}

func TestDebug_ChronologicalOrder(t *testing.T) {
	log := &memLog{records: []models.TransactionRecord{
		rec("late", "10.03", "19:00-20:00", "Alice", "Bob"),
		rec("bad-date", "someday", "19:00-20:00", "Alice", "Bob"),
		rec("evening", "05.03", "20:00-21:00", "Alice", "Bob"),
		rec("morning", "05.03", "09:00-11:00", "Bob", "Alice"),
		{ID: "swap", Date: "01.03", TimeRange: "19:00-20:00", Giver: "Alice", Claimant: "Bob", Status: models.StatusClaimed, SwapRequested: true},
	}}
	f := newFacade(log, directory())

	decisions, err := f.Debug(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(decisions))
	for _, d := range decisions {
		ids = append(ids, d.Record.ID)
	}
	assert.Equal(t, []string{"swap", "morning", "evening", "late", "bad-date"}, ids)

	assert.Equal(t, calculator.ReasonSwap, decisions[0].Reason)
	assert.True(t, decisions[0].Amount.IsZero())
	assert.Equal(t, calculator.TwoHour, decisions[1].Duration)
	assert.True(t, decimal.RequireFromString("7.60").Equal(decisions[1].Amount))
}

func TestCreditBreakdown(t *testing.T) {
	settled := rec("s1", "01.03", "19:00-20:00", "Bob", "Alice")
	settled.Settled = true
	swap := rec("w1", "02.03", "19:00-20:00", "Alice", "Charlie")
	swap.SwapRequested = true

	log := &memLog{records: []models.TransactionRecord{
		rec("t1", "05.03", "19:00-20:00", "Alice", "Bob"),
		rec("t2", "06.03", "19:00-20:00", "Charlie", "Bob"), // Charlie opted out
		settled,
		swap,
		{ID: "o1", Date: "07.03", TimeRange: "19:00-20:00", Giver: "Alice", Status: models.StatusOffered},
	}}
	f := newFacade(log, directory("Charlie"))

	b, err := f.CreditBreakdown(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, b.TotalSlots)
	assert.Equal(t, 1, b.EligibleSlots)
	assert.Equal(t, 1, b.OptedOutSlots)
	assert.Equal(t, 1, b.SwapSlots)
	assert.Equal(t, 1, b.SettledSlots)
	assert.True(t, decimal.RequireFromString("3.80").Equal(b.Credits["Alice"]))
	assert.True(t, decimal.RequireFromString("-3.80").Equal(b.Credits["Bob"]))
	assert.True(t, b.Credits["Charlie"].IsZero())
}
