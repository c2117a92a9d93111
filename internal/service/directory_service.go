package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/slotledger/internal/batch"
	"github.com/mmynk/slotledger/internal/middleware"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
	"github.com/mmynk/slotledger/pkg/api"
)

// DirectoryStore is the persistence the directory service needs.
type DirectoryStore interface {
	storage.Directory
	storage.TransactionLog
}

// DirectoryService implements the Connect DirectoryService. Reads are open to
// every caller; writes are reserved to operators.
type DirectoryService struct {
	store    DirectoryStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(store DirectoryStore, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

type participantInput struct {
	Name  string `validate:"required,max=100"`
	Role  string `validate:"omitempty,oneof=member operator"`
	Color string `validate:"omitempty,hexcolor"`
}

// UpsertParticipant creates or replaces a directory entry.
func (s *DirectoryService) UpsertParticipant(ctx context.Context, req *connect.Request[api.UpsertParticipantRequest]) (*connect.Response[api.UpsertParticipantResponse], error) {
	p := req.Msg.Participant
	if p == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: participant required", batch.ErrInvalidInput))
	}
	s.logger.Info("UpsertParticipant request received", "name", p.Name, "opted_in", p.OptedIn)

	if !middleware.IsOperator(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied, errOperatorOnly)
	}

	in := participantInput{Name: strings.TrimSpace(p.Name), Role: p.Role, Color: p.Color}
	if err := s.validate.Struct(in); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", batch.ErrInvalidInput, err))
	}

	pref := models.ParticipantPreference{
		Name:    in.Name,
		Contact: strings.TrimSpace(p.Contact),
		OptedIn: p.OptedIn,
		Role:    models.Role(in.Role),
		Color:   in.Color,
	}
	if pref.Role == "" {
		pref.Role = models.RoleMember
	}

	if err := s.store.UpsertParticipant(ctx, pref); err != nil {
		s.logger.Error("UpsertParticipant failed", "name", pref.Name, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Participant saved", "name", pref.Name)
	return connect.NewResponse(&api.UpsertParticipantResponse{Participant: participantToAPI(pref)}), nil
}

// ListParticipants returns the directory sorted by name.
func (s *DirectoryService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	s.logger.Info("ListParticipants request received")

	prefs, err := s.store.FetchAll(ctx)
	if err != nil {
		s.logger.Error("ListParticipants failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListParticipantsResponse{Participants: participantsToAPI(prefs)}), nil
}

// AppendRecord adds a transfer record at the end of the log.
func (s *DirectoryService) AppendRecord(ctx context.Context, req *connect.Request[api.AppendRecordRequest]) (*connect.Response[api.AppendRecordResponse], error) {
	r := req.Msg.Record
	if r == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: record required", batch.ErrInvalidInput))
	}
	s.logger.Info("AppendRecord request received", "date", r.Date, "giver", r.Giver, "claimant", r.Claimant, "status", r.Status)

	if !middleware.IsOperator(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied, errOperatorOnly)
	}

	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	record := &models.TransactionRecord{
		ID:            strings.TrimSpace(r.Id),
		Date:          strings.TrimSpace(r.Date),
		TimeRange:     strings.TrimSpace(r.TimeRange),
		Giver:         strings.TrimSpace(r.Giver),
		Claimant:      strings.TrimSpace(r.Claimant),
		Status:        status,
		SwapRequested: r.SwapRequested,
	}
	if err := record.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", batch.ErrInvalidInput, err))
	}

	if err := s.store.AppendRecord(ctx, record); err != nil {
		s.logger.Error("AppendRecord failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Record appended", "record_id", record.ID)
	return connect.NewResponse(&api.AppendRecordResponse{Record: recordToAPI(*record)}), nil
}

// ListRecords returns the whole log in order.
func (s *DirectoryService) ListRecords(ctx context.Context, req *connect.Request[api.ListRecordsRequest]) (*connect.Response[api.ListRecordsResponse], error) {
	s.logger.Info("ListRecords request received")

	records, err := s.store.FetchAllRecords(ctx)
	if err != nil {
		s.logger.Error("ListRecords failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.TransactionRecord, len(records))
	for i, r := range records {
		out[i] = recordToAPI(r)
	}

	return connect.NewResponse(&api.ListRecordsResponse{Records: out}), nil
}
