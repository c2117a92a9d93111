package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/slotledger/internal/models"
)

// PaymentInstruction is one simplified debt: From pays To.
type PaymentInstruction struct {
	From        string // Debtor
	To          string // Creditor
	Amount      decimal.Decimal
	Description string
}

// settleEpsilon is the remaining amount below which a party counts as settled.
var settleEpsilon = decimal.New(1, -2)

type party struct {
	name      string
	remaining decimal.Decimal
}

// Simplify reduces balances to payment instructions.
//
// Algorithm (greedy, deterministic):
//   - Drop participants who opted out.
//   - Creditors sorted by credit descending, debtors by balance ascending.
//     Ties keep input order.
//   - Match the current creditor with the current debtor for the smaller of
//     the two amounts and move past whichever side is settled.
//
// The result has at most creditors+debtors-1 instructions. It is not the
// minimum possible count for every input; that problem is NP-hard.
func Simplify(balances []Balance, prefs models.Preferences) []PaymentInstruction {
	var creditors, debtors []party
	for _, b := range balances {
		if !prefs.OptedIn(b.Participant) {
			continue
		}
		switch b.Credits.Sign() {
		case 1:
			creditors = append(creditors, party{name: b.Participant, remaining: b.Credits})
		case -1:
			debtors = append(debtors, party{name: b.Participant, remaining: b.Credits})
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].remaining.GreaterThan(creditors[j].remaining)
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].remaining.LessThan(debtors[j].remaining)
	})

	var instructions []PaymentInstruction
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := decimal.Min(creditor.remaining, debtor.remaining.Neg())
		if amount.IsPositive() {
			instructions = append(instructions, PaymentInstruction{
				From:        debtor.name,
				To:          creditor.name,
				Amount:      amount,
				Description: fmt.Sprintf("%s pays %s %s", debtor.name, creditor.name, amount.StringFixed(2)),
			})
		}

		creditor.remaining = creditor.remaining.Sub(amount)
		debtor.remaining = debtor.remaining.Add(amount)

		if creditor.remaining.LessThanOrEqual(settleEpsilon) {
			i++
		}
		if debtor.remaining.GreaterThanOrEqual(settleEpsilon.Neg()) {
			j++
		}
	}

	return instructions
}

// InstructionsFor returns the instructions in which the participant pays or is paid.
func InstructionsFor(instructions []PaymentInstruction, participant string) []PaymentInstruction {
	var out []PaymentInstruction
	for _, in := range instructions {
		if in.From == participant || in.To == participant {
			out = append(out, in)
		}
	}
	return out
}
