// Package ledger answers read queries over the transaction log. Every call
// recomputes balances from a fresh snapshot of the log and the directory.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/slotledger/internal/calculator"
	"github.com/mmynk/slotledger/internal/metrics"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

// ErrUnknownParticipant is returned for a name that is neither in the
// directory nor in any record.
var ErrUnknownParticipant = errors.New("unknown participant")

// Totals summarizes an overview.
type Totals struct {
	Participants      int
	OutstandingCredit decimal.Decimal // sum of positive balances
	Instructions      int
	ActiveSlots       int
	SettledSlots      int
	BilledSlots       int // active plus settled
	OptedOut          int
}

// Overview is the whole-ledger view.
type Overview struct {
	Balances     []calculator.Balance
	Instructions []calculator.PaymentInstruction
	Totals       Totals
}

// ParticipantView is one participant's slice of the ledger.
type ParticipantView struct {
	Balance      calculator.Balance
	Instructions []calculator.PaymentInstruction
	Preference   models.ParticipantPreference
	SettledSlots int
}

// CreditBreakdown counts the active transfers by how they were treated.
type CreditBreakdown struct {
	TotalSlots    int // unsettled billable transfers, opted in or not
	EligibleSlots int // transfers whose giver is opted in
	OptedOutSlots int
	SwapSlots     int
	SettledSlots  int
	Credits       map[string]decimal.Decimal
}

// Facade is the read side of the service.
type Facade struct {
	log     storage.TransactionLog
	dir     storage.Directory
	pricing calculator.Pricing
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithClock overrides time.Now, which decides the year used to order dates.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) { f.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

// NewFacade creates a Facade.
func NewFacade(log storage.TransactionLog, dir storage.Directory, pricing calculator.Pricing, opts ...Option) *Facade {
	f := &Facade{
		log:     log,
		dir:     dir,
		pricing: pricing,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type snapshot struct {
	records []models.TransactionRecord
	prefs   models.Preferences
	result  calculator.Result
}

// snapshot reads the log and the directory concurrently and runs the ledger.
func (f *Facade) snapshot(ctx context.Context, view string) (*snapshot, error) {
	started := time.Now()

	var s snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := f.log.FetchAllRecords(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch records: %w", err)
		}
		s.records = records
		return nil
	})
	g.Go(func() error {
		prefs, err := f.dir.FetchAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch directory: %w", err)
		}
		s.prefs = prefs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.result = calculator.Compute(s.records, s.prefs, f.pricing)
	metrics.ObserveCompute(view, started, len(s.records))
	return &s, nil
}

// Overview returns every balance, the simplified instructions and totals.
func (f *Facade) Overview(ctx context.Context) (*Overview, error) {
	s, err := f.snapshot(ctx, "overview")
	if err != nil {
		return nil, err
	}

	instructions := calculator.Simplify(s.result.Balances, s.prefs)

	totals := Totals{
		Participants:      len(s.result.Balances),
		OutstandingCredit: decimal.Zero,
		Instructions:      len(instructions),
	}
	for _, b := range s.result.Balances {
		if b.Credits.IsPositive() {
			totals.OutstandingCredit = totals.OutstandingCredit.Add(b.Credits)
		}
		totals.SettledSlots += b.SlotsAlreadySettled
	}
	for _, d := range s.result.Decisions {
		if d.Included() {
			totals.ActiveSlots++
		}
	}
	totals.BilledSlots = totals.ActiveSlots + totals.SettledSlots
	for _, p := range s.prefs {
		if !p.OptedIn {
			totals.OptedOut++
		}
	}

	return &Overview{
		Balances:     s.result.Balances,
		Instructions: instructions,
		Totals:       totals,
	}, nil
}

// Participant returns one participant's balance and the instructions that
// involve them.
func (f *Facade) Participant(ctx context.Context, name string) (*ParticipantView, error) {
	s, err := f.snapshot(ctx, "participant")
	if err != nil {
		return nil, err
	}

	pref, inDirectory := s.prefs[name]
	var balance *calculator.Balance
	for i := range s.result.Balances {
		if s.result.Balances[i].Participant == name {
			balance = &s.result.Balances[i]
			break
		}
	}
	if balance == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, name)
	}
	if !inDirectory {
		pref = models.ParticipantPreference{Name: name, OptedIn: true, Role: models.RoleMember}
	}

	instructions := calculator.Simplify(s.result.Balances, s.prefs)
	return &ParticipantView{
		Balance:      *balance,
		Instructions: calculator.InstructionsFor(instructions, name),
		Preference:   pref,
		SettledSlots: balance.SlotsAlreadySettled,
	}, nil
}

// Debug returns the classification of every record ordered by date, then
// start time. Records with unreadable dates sort last.
func (f *Facade) Debug(ctx context.Context) ([]calculator.Decision, error) {
	s, err := f.snapshot(ctx, "debug")
	if err != nil {
		return nil, err
	}

	year := f.now().Year()
	type keyed struct {
		decision calculator.Decision
		day      time.Time
		dated    bool
		start    int
	}
	rows := make([]keyed, 0, len(s.result.Decisions))
	for _, d := range s.result.Decisions {
		k := keyed{decision: d}
		if day, err := d.Record.Day(year); err == nil {
			k.day, k.dated = day, true
		}
		k.start, _, _ = calculator.ParseTimeRange(d.Record.TimeRange)
		rows = append(rows, k)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.dated != b.dated {
			return a.dated
		}
		if !a.day.Equal(b.day) {
			return a.day.Before(b.day)
		}
		return a.start < b.start
	})

	out := make([]calculator.Decision, len(rows))
	for i, r := range rows {
		out[i] = r.decision
	}
	return out, nil
}

// CreditBreakdown counts how the active transfers were treated.
func (f *Facade) CreditBreakdown(ctx context.Context) (*CreditBreakdown, error) {
	s, err := f.snapshot(ctx, "breakdown")
	if err != nil {
		return nil, err
	}

	out := &CreditBreakdown{Credits: make(map[string]decimal.Decimal, len(s.result.Balances))}
	for _, d := range s.result.Decisions {
		switch {
		case d.ActiveTransfer():
			out.TotalSlots++
			if d.Included() {
				out.EligibleSlots++
			} else {
				out.OptedOutSlots++
			}
		case d.Reason == calculator.ReasonSwap:
			out.SwapSlots++
		case d.Reason == calculator.ReasonSettled:
			out.SettledSlots++
		}
	}
	for _, b := range s.result.Balances {
		out.Credits[b.Participant] = b.Credits
	}

	f.logger.Debug("Credit breakdown computed",
		"total", out.TotalSlots,
		"eligible", out.EligibleSlots,
		"opted_out", out.OptedOutSlots,
	)
	return out, nil
}
