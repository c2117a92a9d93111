package batch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slotledger/internal/calculator"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
	"github.com/mmynk/slotledger/internal/storage/sqlite"
)

var fixedNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := NewManager(store, calculator.DefaultPricing(), WithClock(func() time.Time { return fixedNow }))
	return m, store
}

func seed(t *testing.T, store *sqlite.SQLiteStore, records ...models.TransactionRecord) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		require.NoError(t, store.UpsertParticipant(ctx, models.ParticipantPreference{Name: name, OptedIn: true}))
	}
	for i := range records {
		require.NoError(t, store.AppendRecord(ctx, &records[i]))
	}
}

func claimed(id, date, giver, claimant, timeRange string) models.TransactionRecord {
	return models.TransactionRecord{
		ID: id, Date: date, TimeRange: timeRange,
		Giver: giver, Claimant: claimant, Status: models.StatusClaimed,
	}
}

func march(t *testing.T, m *Manager) *models.SettlementBatch {
	t.Helper()
	b, err := m.CreateBatch(context.Background(), CreateBatchInput{
		Name:        "March",
		PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "Olga",
	})
	require.NoError(t, err)
	return b
}

func TestCreateBatch(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	t.Run("creates an active batch", func(t *testing.T) {
		b := march(t, m)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, models.BatchActive, b.Status)
		assert.Equal(t, fixedNow.Unix(), b.CreatedAt)
		assert.False(t, b.Generated())

		pairings, err := m.ListPairings(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, pairings)
	})

	t.Run("single day period is allowed", func(t *testing.T) {
		day := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)
		_, err := m.CreateBatch(ctx, CreateBatchInput{Name: "One day", PeriodStart: day, PeriodEnd: day.Add(-time.Hour)})
		assert.NoError(t, err)
	})

	tests := []struct {
		name string
		in   CreateBatchInput
	}{
		{name: "missing name", in: CreateBatchInput{Name: "  ", PeriodStart: fixedNow, PeriodEnd: fixedNow}},
		{name: "missing start", in: CreateBatchInput{Name: "x", PeriodEnd: fixedNow}},
		{name: "missing end", in: CreateBatchInput{Name: "x", PeriodStart: fixedNow}},
		{name: "start after end", in: CreateBatchInput{Name: "x", PeriodStart: fixedNow, PeriodEnd: fixedNow.AddDate(0, 0, -1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateBatch(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGeneratePairings(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store,
		claimed("t1", "05.03", "Alice", "Bob", "19:00-20:00"),
		claimed("t2", "12.03", "Alice", "Charlie", "19:00-21:00"),
		claimed("t3", "02.04", "Bob", "Alice", "19:00-20:00"), // outside March
		models.TransactionRecord{ID: "t4", Date: "06.03", TimeRange: "19:00-20:00", Giver: "Charlie", Claimant: "Bob", Status: models.StatusClaimed, SwapRequested: true},
	)
	b := march(t, m)

	pairings, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	// Alice +11.40; Charlie -7.60 is the larger debt.
	assert.Equal(t, "Charlie", pairings[0].Debtor)
	assert.Equal(t, "Alice", pairings[0].Creditor)
	assert.Equal(t, "7.60", pairings[0].Amount)
	assert.Equal(t, "Bob", pairings[1].Debtor)
	assert.Equal(t, "3.80", pairings[1].Amount)
	for _, p := range pairings {
		assert.Equal(t, models.PairingPending, p.Status)
		assert.Equal(t, b.ID, p.BatchID)
	}

	got, err := m.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, got.TransactionIDs)
	assert.True(t, got.Generated())

	t.Run("second generation is rejected", func(t *testing.T) {
		_, err := m.GeneratePairings(ctx, b.ID)
		assert.ErrorIs(t, err, ErrPrecondition)

		stored, err := m.ListPairings(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("unknown batch", func(t *testing.T) {
		_, err := m.GeneratePairings(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGeneratePairings_Concurrent(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store,
		claimed("t1", "05.03", "Alice", "Bob", "19:00-20:00"),
		claimed("t2", "06.03", "Charlie", "Bob", "19:00-20:00"),
	)
	b := march(t, m)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.GeneratePairings(ctx, b.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrPrecondition)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	pairings, err := m.ListPairings(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, pairings, 2)
}

func TestGeneratePairings_EmptyPeriodIsStillOneShot(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store)
	b := march(t, m)

	pairings, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, pairings)

	_, err = m.GeneratePairings(ctx, b.ID)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestGeneratePairings_PeriodInPreviousYear(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store,
		claimed("t1", "10.12", "Alice", "Bob", "19:00-20:00"),
		claimed("t2", "05.03", "Charlie", "Bob", "19:00-20:00"),
	)

	// Generated in March 2025 for December 2024.
	b, err := m.CreateBatch(ctx, CreateBatchInput{
		Name:        "December",
		PeriodStart: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	pairings, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Equal(t, "Alice", pairings[0].Creditor)
	assert.Equal(t, "Bob", pairings[0].Debtor)

	got, err := m.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, got.TransactionIDs)
}

func TestCompletePairing(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store, claimed("t1", "05.03", "Alice", "Bob", "19:00-20:00"))
	b := march(t, m)
	pairings, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	id := pairings[0].ID

	t.Run("outsider is rejected", func(t *testing.T) {
		_, err := m.CompletePairing(ctx, id, "Charlie")
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("missing identity is invalid", func(t *testing.T) {
		_, err := m.CompletePairing(ctx, id, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("debtor completes", func(t *testing.T) {
		p, err := m.CompletePairing(ctx, id, "Bob")
		require.NoError(t, err)
		assert.Equal(t, models.PairingCompleted, p.Status)
		assert.Equal(t, "Bob", p.CompletedBy)
		assert.Equal(t, fixedNow.Unix(), p.CompletedAt)
	})

	t.Run("creditor completing again is a no-op", func(t *testing.T) {
		p, err := m.CompletePairing(ctx, id, "Alice")
		require.NoError(t, err)
		assert.Equal(t, "Bob", p.CompletedBy)
	})

	t.Run("completion does not touch the log", func(t *testing.T) {
		records, err := store.FetchAllRecords(ctx)
		require.NoError(t, err)
		assert.False(t, records[0].Settled)
	})

	t.Run("unknown pairing", func(t *testing.T) {
		_, err := m.CompletePairing(ctx, "missing", "Bob")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCloseBatch(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store,
		claimed("t1", "05.03", "Alice", "Bob", "19:00-20:00"),
		claimed("t2", "12.03", "Charlie", "Bob", "19:00-21:00"),
		claimed("t3", "02.04", "Bob", "Alice", "19:00-20:00"),
	)
	b := march(t, m)
	pairings, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	// Only one pairing confirmed; closure is still allowed.
	_, err = m.CompletePairing(ctx, pairings[0].ID, pairings[0].Debtor)
	require.NoError(t, err)

	closed, err := m.CloseBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchSettled, closed.Status)
	assert.Equal(t, fixedNow.Unix(), closed.SettledAt)

	records, err := store.FetchAllRecords(ctx)
	require.NoError(t, err)
	settled := map[string]bool{}
	for _, r := range records {
		settled[r.ID] = r.Settled
	}
	assert.True(t, settled["t1"])
	assert.True(t, settled["t2"])
	assert.False(t, settled["t3"], "records outside the batch stay active")

	t.Run("closing twice is rejected", func(t *testing.T) {
		_, err := m.CloseBatch(ctx, b.ID)
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("settled batch cannot generate", func(t *testing.T) {
		_, err := m.GeneratePairings(ctx, b.ID)
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("pending pairing of a settled batch cannot be completed", func(t *testing.T) {
		_, err := m.CompletePairing(ctx, pairings[1].ID, pairings[1].Creditor)
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("next batch ignores settled records", func(t *testing.T) {
		next, err := m.CreateBatch(ctx, CreateBatchInput{
			Name:        "Spring",
			PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		pairings, err := m.GeneratePairings(ctx, next.ID)
		require.NoError(t, err)
		require.Len(t, pairings, 1)
		assert.Equal(t, "Alice", pairings[0].Debtor)
		assert.Equal(t, "Bob", pairings[0].Creditor)
	})
}

func TestInPeriod(t *testing.T) {
	records := []models.TransactionRecord{
		{ID: "a", Date: "28.02"},
		{ID: "b", Date: "01.03"},
		{ID: "c", Date: "31.03"},
		{ID: "d", Date: "1.4"},
		{ID: "e", Date: "not a date"},
	}
	ids := func(got []models.TransactionRecord) []string {
		out := make([]string, 0, len(got))
		for _, r := range got {
			out = append(out, r.ID)
		}
		return out
	}

	got := InPeriod(records,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, []string{"b", "c"}, ids(got))

	t.Run("period across new year", func(t *testing.T) {
		records := []models.TransactionRecord{
			{ID: "nov", Date: "30.11"},
			{ID: "dec", Date: "20.12"},
			{ID: "jan", Date: "05.01"},
			{ID: "feb", Date: "01.02"},
		}
		got := InPeriod(records,
			time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		)
		assert.Equal(t, []string{"dec", "jan"}, ids(got))
	})
}

func TestCloseBatch_Concurrent(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store,
		claimed("t1", "05.03", "Alice", "Bob", "19:00-20:00"),
		claimed("t2", "06.03", "Charlie", "Bob", "19:00-20:00"),
	)
	b := march(t, m)
	_, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.CloseBatch(ctx, b.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrPrecondition)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	got, err := m.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchSettled, got.Status)
}

func TestCompletePairing_DuringClose(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	seed(t, store, claimed("t1", "05.03", "Alice", "Bob", "19:00-20:00"))
	b := march(t, m)
	pairings, err := m.GeneratePairings(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pairings, 1)

	var wg sync.WaitGroup
	var completeErr, closeErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, completeErr = m.CompletePairing(ctx, pairings[0].ID, "Bob")
	}()
	go func() {
		defer wg.Done()
		_, closeErr = m.CloseBatch(ctx, b.ID)
	}()
	wg.Wait()

	require.NoError(t, closeErr)
	stored, err := store.GetPairing(ctx, pairings[0].ID)
	require.NoError(t, err)
	if completeErr == nil {
		assert.Equal(t, models.PairingCompleted, stored.Status)
	} else {
		assert.ErrorIs(t, completeErr, ErrPrecondition)
		assert.Equal(t, models.PairingPending, stored.Status)
	}
}
