package calculator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/slotledger/internal/models"
)

// Balance is the derived ledger position of one participant.
type Balance struct {
	Participant string
	Credits     decimal.Decimal // Positive = owed money, Negative = owes money

	SlotsGivenAway      int
	SlotsClaimed        int
	SlotsAlreadySettled int

	SlotsGivenAway1h int
	SlotsGivenAway2h int
	SlotsClaimed1h   int
	SlotsClaimed2h   int
}

// Reason explains why a record did or did not contribute to balances.
type Reason string

const (
	ReasonIncluded         Reason = "included"
	ReasonIneligibleStatus Reason = "ineligible_status"
	ReasonSwap             Reason = "swap"
	ReasonUnclaimedSlot    Reason = "unclaimed_slot"
	ReasonMissingGiver     Reason = "missing_giver"
	ReasonMissingClaimant  Reason = "missing_claimant"
	ReasonSettled          Reason = "settled"
	ReasonGiverOptedOut    Reason = "giver_opted_out"
)

// Decision is the classification of one transaction record.
type Decision struct {
	Record   models.TransactionRecord
	Reason   Reason
	Duration Duration
	Amount   decimal.Decimal // slot price when included, zero otherwise
}

// Included reports whether the record moved money.
func (d Decision) Included() bool {
	return d.Reason == ReasonIncluded
}

// ActiveTransfer reports whether the record is an unsettled billable
// transfer, whether or not the giver's opt-in let it through.
func (d Decision) ActiveTransfer() bool {
	return d.Reason == ReasonIncluded || d.Reason == ReasonGiverOptedOut
}

// Result is the output of one ledger computation.
type Result struct {
	// Balances are sorted by participant name.
	Balances []Balance

	// Decisions follow the order of the input records.
	Decisions []Decision
}

// IncludedIDs returns the IDs of the records that moved money.
func (r Result) IncludedIDs() []string {
	var ids []string
	for _, d := range r.Decisions {
		if d.Included() {
			ids = append(ids, d.Record.ID)
		}
	}
	return ids
}

// Classify decides whether a record contributes to the active balance.
// Anomalies such as a missing claimant are exclusions, never errors.
func Classify(r models.TransactionRecord, prefs models.Preferences, pricing Pricing) Decision {
	d := Decision{Record: r, Duration: SlotDuration(r.TimeRange), Amount: decimal.Zero}

	switch {
	case !r.Status.Billable():
		d.Reason = ReasonIneligibleStatus
	case r.SwapRequested:
		d.Reason = ReasonSwap
	case strings.TrimSpace(r.Giver) == models.UnclaimedHolder:
		d.Reason = ReasonUnclaimedSlot
	case strings.TrimSpace(r.Giver) == "":
		d.Reason = ReasonMissingGiver
	case strings.TrimSpace(r.Claimant) == "":
		d.Reason = ReasonMissingClaimant
	case r.Settled:
		d.Reason = ReasonSettled
	case !prefs.OptedIn(r.Giver):
		// Only the giver's preference is consulted.
		d.Reason = ReasonGiverOptedOut
	default:
		d.Reason = ReasonIncluded
		d.Amount = pricing.Price(d.Duration)
	}
	return d
}

// BuildBalances computes one balance per participant from the transaction log.
func BuildBalances(records []models.TransactionRecord, prefs models.Preferences, pricing Pricing) []Balance {
	return Compute(records, prefs, pricing).Balances
}

// Compute runs the ledger over a snapshot of the log.
//
// Algorithm:
//   - Settled pass: every settled billable record counts toward the giver's
//     SlotsAlreadySettled. The claimant is not credited again.
//   - Active pass: every included record credits the giver and debits the
//     claimant by the slot price, rounding to cents after each mutation.
//
// Every directory participant gets a balance, even when it stays at zero.
// The credits of all balances sum to zero.
func Compute(records []models.TransactionRecord, prefs models.Preferences, pricing Pricing) Result {
	balances := make(map[string]*Balance, len(prefs))
	get := func(name string) *Balance {
		b, ok := balances[name]
		if !ok {
			b = &Balance{Participant: name, Credits: decimal.Zero}
			balances[name] = b
		}
		return b
	}
	for name := range prefs {
		get(name)
	}

	for _, r := range records {
		if r.Settled && r.Status.Billable() && r.HasRealGiver() {
			get(r.Giver).SlotsAlreadySettled++
		}
	}

	decisions := make([]Decision, 0, len(records))
	for _, r := range records {
		d := Classify(r, prefs, pricing)
		decisions = append(decisions, d)
		if !d.Included() {
			continue
		}

		giver := get(r.Giver)
		giver.Credits = giver.Credits.Add(d.Amount).Round(2)
		giver.SlotsGivenAway++

		claimant := get(r.Claimant)
		claimant.Credits = claimant.Credits.Sub(d.Amount).Round(2)
		claimant.SlotsClaimed++

		if d.Duration == TwoHour {
			giver.SlotsGivenAway2h++
			claimant.SlotsClaimed2h++
		} else {
			giver.SlotsGivenAway1h++
			claimant.SlotsClaimed1h++
		}
	}

	out := make([]Balance, 0, len(balances))
	for _, b := range balances {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Participant < out[j].Participant })

	return Result{Balances: out, Decisions: decisions}
}
