package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/slotledger/internal/ledger"
	"github.com/mmynk/slotledger/internal/middleware"
	"github.com/mmynk/slotledger/pkg/api"
)

// LedgerService implements the Connect LedgerService on top of the query facade.
type LedgerService struct {
	facade *ledger.Facade
	logger *slog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(facade *ledger.Facade, logger *slog.Logger) *LedgerService {
	return &LedgerService{facade: facade, logger: logger}
}

// GetOverview returns every balance, the payment instructions and totals.
func (s *LedgerService) GetOverview(ctx context.Context, req *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error) {
	s.logger.Info("GetOverview request received")

	ov, err := s.facade.Overview(ctx)
	if err != nil {
		s.logger.Error("GetOverview failed", "error", err)
		return nil, toConnectError(err)
	}

	balances := make([]*api.Balance, len(ov.Balances))
	for i, b := range ov.Balances {
		balances[i] = balanceToAPI(b)
	}

	return connect.NewResponse(&api.GetOverviewResponse{
		Balances:     balances,
		Instructions: instructionsToAPI(ov.Instructions),
		Totals: &api.Totals{
			Participants:      int32(ov.Totals.Participants),
			OutstandingCredit: ov.Totals.OutstandingCredit.StringFixed(2),
			Instructions:      int32(ov.Totals.Instructions),
			ActiveSlots:       int32(ov.Totals.ActiveSlots),
			SettledSlots:      int32(ov.Totals.SettledSlots),
			BilledSlots:       int32(ov.Totals.BilledSlots),
			OptedOut:          int32(ov.Totals.OptedOut),
		},
	}), nil
}

// GetParticipantView returns one participant's balance and instructions.
// Without a name it answers for the caller.
func (s *LedgerService) GetParticipantView(ctx context.Context, req *connect.Request[api.GetParticipantViewRequest]) (*connect.Response[api.GetParticipantViewResponse], error) {
	name := strings.TrimSpace(req.Msg.Participant)
	if name == "" {
		name = middleware.GetParticipant(ctx)
	}
	s.logger.Info("GetParticipantView request received", "participant", name)

	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ledger.ErrUnknownParticipant)
	}

	view, err := s.facade.Participant(ctx, name)
	if err != nil {
		s.logger.Error("GetParticipantView failed", "participant", name, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetParticipantViewResponse{
		Balance:      balanceToAPI(view.Balance),
		Instructions: instructionsToAPI(view.Instructions),
		Participant:  participantToAPI(view.Preference),
		SettledSlots: int32(view.SettledSlots),
	}), nil
}

// GetDebugView returns how every record was classified, in date order.
func (s *LedgerService) GetDebugView(ctx context.Context, req *connect.Request[api.GetDebugViewRequest]) (*connect.Response[api.GetDebugViewResponse], error) {
	s.logger.Info("GetDebugView request received")

	decisions, err := s.facade.Debug(ctx)
	if err != nil {
		s.logger.Error("GetDebugView failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.RecordDecision, len(decisions))
	for i, d := range decisions {
		out[i] = &api.RecordDecision{
			Record:   recordToAPI(d.Record),
			Included: d.Included(),
			Reason:   string(d.Reason),
			Duration: d.Duration.String(),
			Amount:   d.Amount.StringFixed(2),
		}
	}

	return connect.NewResponse(&api.GetDebugViewResponse{Decisions: out}), nil
}

// GetCreditBreakdown returns slot counts by treatment and per-participant credits.
func (s *LedgerService) GetCreditBreakdown(ctx context.Context, req *connect.Request[api.GetCreditBreakdownRequest]) (*connect.Response[api.GetCreditBreakdownResponse], error) {
	s.logger.Info("GetCreditBreakdown request received")

	b, err := s.facade.CreditBreakdown(ctx)
	if err != nil {
		s.logger.Error("GetCreditBreakdown failed", "error", err)
		return nil, toConnectError(err)
	}

	credits := make(map[string]string, len(b.Credits))
	for name, c := range b.Credits {
		credits[name] = c.StringFixed(2)
	}

	return connect.NewResponse(&api.GetCreditBreakdownResponse{
		TotalSlots:    int32(b.TotalSlots),
		EligibleSlots: int32(b.EligibleSlots),
		OptedOutSlots: int32(b.OptedOutSlots),
		SwapSlots:     int32(b.SwapSlots),
		SettledSlots:  int32(b.SettledSlots),
		Credits:       credits,
	}), nil
}
