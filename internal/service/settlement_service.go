package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/slotledger/internal/batch"
	"github.com/mmynk/slotledger/internal/middleware"
	"github.com/mmynk/slotledger/pkg/api"
)

// SettlementService implements the Connect SettlementService. Creating,
// generating and closing batches is reserved to operators; pairings are
// confirmed by their own parties.
type SettlementService struct {
	manager *batch.Manager
	logger  *slog.Logger
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(manager *batch.Manager, logger *slog.Logger) *SettlementService {
	return &SettlementService{manager: manager, logger: logger}
}

func (s *SettlementService) requireOperator(ctx context.Context, op string) error {
	if middleware.IsOperator(ctx) {
		return nil
	}
	s.logger.Warn(op+" denied", "participant", middleware.GetParticipant(ctx), "role", middleware.GetRole(ctx))
	return connect.NewError(connect.CodePermissionDenied, errOperatorOnly)
}

func parseDay(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", batch.ErrInvalidInput, field)
	}
	return t, nil
}

// CreateBatch creates an active batch for a date range.
func (s *SettlementService) CreateBatch(ctx context.Context, req *connect.Request[api.CreateBatchRequest]) (*connect.Response[api.CreateBatchResponse], error) {
	s.logger.Info("CreateBatch request received",
		"name", req.Msg.Name,
		"period_start", req.Msg.PeriodStart,
		"period_end", req.Msg.PeriodEnd,
	)
	if err := s.requireOperator(ctx, "CreateBatch"); err != nil {
		return nil, err
	}

	start, err := parseDay("period_start", req.Msg.PeriodStart)
	if err != nil {
		return nil, toConnectError(err)
	}
	end, err := parseDay("period_end", req.Msg.PeriodEnd)
	if err != nil {
		return nil, toConnectError(err)
	}

	b, err := s.manager.CreateBatch(ctx, batch.CreateBatchInput{
		Name:        req.Msg.Name,
		PeriodStart: start,
		PeriodEnd:   end,
		CreatedBy:   middleware.GetParticipant(ctx),
	})
	if err != nil {
		s.logger.Error("CreateBatch failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateBatchResponse{Batch: batchToAPI(b)}), nil
}

// GeneratePairings turns the batch's period into pending pairings, once.
func (s *SettlementService) GeneratePairings(ctx context.Context, req *connect.Request[api.GeneratePairingsRequest]) (*connect.Response[api.GeneratePairingsResponse], error) {
	s.logger.Info("GeneratePairings request received", "batch_id", req.Msg.BatchId)
	if err := s.requireOperator(ctx, "GeneratePairings"); err != nil {
		return nil, err
	}

	pairings, err := s.manager.GeneratePairings(ctx, req.Msg.BatchId)
	if err != nil {
		s.logger.Error("GeneratePairings failed", "batch_id", req.Msg.BatchId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GeneratePairingsResponse{Pairings: pairingsToAPI(pairings)}), nil
}

// CompletePairing confirms a payment on behalf of the caller's participant.
func (s *SettlementService) CompletePairing(ctx context.Context, req *connect.Request[api.CompletePairingRequest]) (*connect.Response[api.CompletePairingResponse], error) {
	participant := middleware.GetParticipant(ctx)
	s.logger.Info("CompletePairing request received", "pairing_id", req.Msg.PairingId, "participant", participant)

	p, err := s.manager.CompletePairing(ctx, req.Msg.PairingId, participant)
	if err != nil {
		s.logger.Error("CompletePairing failed", "pairing_id", req.Msg.PairingId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CompletePairingResponse{Pairing: pairingToAPI(p)}), nil
}

// CloseBatch settles the batch and its transactions.
func (s *SettlementService) CloseBatch(ctx context.Context, req *connect.Request[api.CloseBatchRequest]) (*connect.Response[api.CloseBatchResponse], error) {
	s.logger.Info("CloseBatch request received", "batch_id", req.Msg.BatchId)
	if err := s.requireOperator(ctx, "CloseBatch"); err != nil {
		return nil, err
	}

	b, err := s.manager.CloseBatch(ctx, req.Msg.BatchId)
	if err != nil {
		s.logger.Error("CloseBatch failed", "batch_id", req.Msg.BatchId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CloseBatchResponse{Batch: batchToAPI(b)}), nil
}

// GetBatch retrieves a batch by ID.
func (s *SettlementService) GetBatch(ctx context.Context, req *connect.Request[api.GetBatchRequest]) (*connect.Response[api.GetBatchResponse], error) {
	s.logger.Info("GetBatch request received", "batch_id", req.Msg.BatchId)

	b, err := s.manager.GetBatch(ctx, req.Msg.BatchId)
	if err != nil {
		s.logger.Error("GetBatch failed", "batch_id", req.Msg.BatchId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBatchResponse{Batch: batchToAPI(b)}), nil
}

// ListBatches retrieves all batches, newest first.
func (s *SettlementService) ListBatches(ctx context.Context, req *connect.Request[api.ListBatchesRequest]) (*connect.Response[api.ListBatchesResponse], error) {
	s.logger.Info("ListBatches request received")

	batches, err := s.manager.ListBatches(ctx)
	if err != nil {
		s.logger.Error("ListBatches failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Batch, len(batches))
	for i, b := range batches {
		out[i] = batchToAPI(b)
	}

	return connect.NewResponse(&api.ListBatchesResponse{Batches: out}), nil
}

// ListPairings retrieves the pairings of one batch.
func (s *SettlementService) ListPairings(ctx context.Context, req *connect.Request[api.ListPairingsRequest]) (*connect.Response[api.ListPairingsResponse], error) {
	s.logger.Info("ListPairings request received", "batch_id", req.Msg.BatchId)

	pairings, err := s.manager.ListPairings(ctx, req.Msg.BatchId)
	if err != nil {
		s.logger.Error("ListPairings failed", "batch_id", req.Msg.BatchId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListPairingsResponse{Pairings: pairingsToAPI(pairings)}), nil
}
