package service

import (
	"sort"
	"time"

	"github.com/mmynk/slotledger/internal/calculator"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/pkg/api"
)

func balanceToAPI(b calculator.Balance) *api.Balance {
	return &api.Balance{
		Participant:         b.Participant,
		Credits:             b.Credits.StringFixed(2),
		SlotsGivenAway:      int32(b.SlotsGivenAway),
		SlotsClaimed:        int32(b.SlotsClaimed),
		SlotsAlreadySettled: int32(b.SlotsAlreadySettled),
		SlotsGivenAway1H:    int32(b.SlotsGivenAway1h),
		SlotsGivenAway2H:    int32(b.SlotsGivenAway2h),
		SlotsClaimed1H:      int32(b.SlotsClaimed1h),
		SlotsClaimed2H:      int32(b.SlotsClaimed2h),
	}
}

func instructionsToAPI(instructions []calculator.PaymentInstruction) []*api.PaymentInstruction {
	out := make([]*api.PaymentInstruction, len(instructions))
	for i, in := range instructions {
		out[i] = &api.PaymentInstruction{
			From:        in.From,
			To:          in.To,
			Amount:      in.Amount.StringFixed(2),
			Description: in.Description,
		}
	}
	return out
}

func participantToAPI(p models.ParticipantPreference) *api.Participant {
	role := p.Role
	if role == "" {
		role = models.RoleMember
	}
	return &api.Participant{
		Name:    p.Name,
		Contact: p.Contact,
		OptedIn: p.OptedIn,
		Role:    string(role),
		Color:   p.Color,
	}
}

func participantsToAPI(prefs models.Preferences) []*api.Participant {
	out := make([]*api.Participant, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, participantToAPI(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func recordToAPI(r models.TransactionRecord) *api.TransactionRecord {
	return &api.TransactionRecord{
		Id:            r.ID,
		Date:          r.Date,
		TimeRange:     r.TimeRange,
		Giver:         r.Giver,
		Claimant:      r.Claimant,
		Status:        string(r.Status),
		SwapRequested: r.SwapRequested,
		Settled:       r.Settled,
		CreatedAt:     r.CreatedAt,
	}
}

func batchToAPI(b *models.SettlementBatch) *api.Batch {
	return &api.Batch{
		Id:             b.ID,
		Name:           b.Name,
		PeriodStart:    b.PeriodStart.Format(time.DateOnly),
		PeriodEnd:      b.PeriodEnd.Format(time.DateOnly),
		Status:         string(b.Status),
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		GeneratedAt:    b.GeneratedAt,
		SettledAt:      b.SettledAt,
		TransactionIds: b.TransactionIDs,
	}
}

func pairingToAPI(p *models.Pairing) *api.Pairing {
	return &api.Pairing{
		Id:          p.ID,
		BatchId:     p.BatchID,
		Creditor:    p.Creditor,
		Debtor:      p.Debtor,
		Amount:      p.Amount,
		Status:      string(p.Status),
		CompletedBy: p.CompletedBy,
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}
}

func pairingsToAPI(pairings []*models.Pairing) []*api.Pairing {
	out := make([]*api.Pairing, len(pairings))
	for i, p := range pairings {
		out[i] = pairingToAPI(p)
	}
	return out
}

func userToAPI(u *models.User) *api.User {
	return &api.User{
		Id:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Participant: u.Participant,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}
