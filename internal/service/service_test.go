package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slotledger/internal/auth"
	"github.com/mmynk/slotledger/internal/batch"
	"github.com/mmynk/slotledger/internal/calculator"
	"github.com/mmynk/slotledger/internal/ledger"
	"github.com/mmynk/slotledger/internal/middleware"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage/sqlite"
	"github.com/mmynk/slotledger/pkg/api"
	"github.com/mmynk/slotledger/pkg/api/apiconnect"
)

type testClients struct {
	ledger     apiconnect.LedgerServiceClient
	settlement apiconnect.SettlementServiceClient
	directory  apiconnect.DirectoryServiceClient
	auth       apiconnect.AuthServiceClient
	jwt        *auth.JWTManager
	store      *sqlite.SQLiteStore
}

// setupTestServer serves every service from a temp database behind the
// same interceptors as the real server.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "slotledger-service-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := func() time.Time { return time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC) }
	pricing := calculator.DefaultPricing()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(logger),
	)

	facade := ledger.NewFacade(store, store, pricing, ledger.WithClock(now), ledger.WithLogger(logger))
	manager := batch.NewManager(store, pricing, batch.WithClock(now), batch.WithLogger(logger))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(facade, logger), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(manager, logger), interceptors))
	mux.Handle(apiconnect.NewDirectoryServiceHandler(NewDirectoryService(store, logger), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store, store), store, jwtManager, logger),
		interceptors,
	))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testClients{
		ledger:     apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		settlement: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
		directory:  apiconnect.NewDirectoryServiceClient(http.DefaultClient, server.URL),
		auth:       apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		jwt:        jwtManager,
		store:      store,
	}
}

func (c *testClients) token(t *testing.T, participant string, role models.Role) string {
	t.Helper()
	token, err := c.jwt.Generate(&models.User{ID: "user-" + participant, Email: participant + "@example.com", Participant: participant, Role: role})
	require.NoError(t, err)
	return token
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error with code %v, got %v", want, err)
	}
	assert.Equal(t, want, connectErr.Code(), connectErr.Message())
}

// seedLedger appends the directory and a small log through the API.
func seedLedger(t *testing.T, c *testClients, operator string) {
	t.Helper()
	ctx := context.Background()

	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		_, err := c.directory.UpsertParticipant(ctx, withToken(&api.UpsertParticipantRequest{
			Participant: &api.Participant{Name: name, OptedIn: true},
		}, operator))
		require.NoError(t, err)
	}

	records := []*api.TransactionRecord{
		{Date: "05.03", TimeRange: "19:00-20:00", Giver: "Alice", Claimant: "Bob", Status: "claimed"},
		{Date: "12.03", TimeRange: "19:00-21:00", Giver: "Charlie", Claimant: "Bob", Status: "claimed"},
		{Date: "13.03", TimeRange: "19:00-20:00", Giver: "Bob", Claimant: "Alice", Status: "claimed", SwapRequested: true},
	}
	for _, r := range records {
		_, err := c.directory.AppendRecord(ctx, withToken(&api.AppendRecordRequest{Record: r}, operator))
		require.NoError(t, err)
	}
}

func TestAuth_RegisterLoginCurrentUser(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	seedLedger(t, c, c.token(t, "Olga", models.RoleOperator))

	reg, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "alice@example.com", DisplayName: "Alice", Participant: "Alice", Password: "correct-horse",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Msg.Token)
	assert.Equal(t, "member", reg.Msg.User.Role)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "alice@example.com", DisplayName: "Alice", Participant: "Alice", Password: "correct-horse",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "nope-nope"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "correct-horse"}))
	require.NoError(t, err)

	me, err := c.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, login.Msg.Token))
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Msg.User.Participant)
	assert.Equal(t, "alice@example.com", me.Msg.User.Email)
}

func TestAuth_RegisterBindsEachParticipantOnce(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	seedLedger(t, c, c.token(t, "Olga", models.RoleOperator))

	_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "alice@example.com", DisplayName: "Alice", Participant: "Alice", Password: "correct-horse",
	}))
	require.NoError(t, err)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "mallory@example.com", DisplayName: "Mallory", Participant: "Alice", Password: "correct-horse",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "mallory@example.com", DisplayName: "Mallory", Participant: "Mallory", Password: "correct-horse",
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "  Alice@Example.com", DisplayName: "Alice", Participant: "Bob", Password: "correct-horse",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	bob, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Participant: "Bob", Password: "correct-horse",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Msg.User.Participant)
}

func TestRequireAuth(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	_, err := c.ledger.GetOverview(ctx, connect.NewRequest(&api.GetOverviewRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = c.ledger.GetOverview(ctx, withToken(&api.GetOverviewRequest{}, "garbage"))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestDirectory_WritesRequireOperator(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	member := c.token(t, "Bob", models.RoleMember)
	operator := c.token(t, "Olga", models.RoleOperator)

	_, err := c.directory.UpsertParticipant(ctx, withToken(&api.UpsertParticipantRequest{
		Participant: &api.Participant{Name: "Bob", OptedIn: false},
	}, member))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = c.directory.UpsertParticipant(ctx, withToken(&api.UpsertParticipantRequest{
		Participant: &api.Participant{Name: "Bob", Color: "red"},
	}, operator))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.directory.AppendRecord(ctx, withToken(&api.AppendRecordRequest{
		Record: &api.TransactionRecord{Date: "05.03", TimeRange: "19:00-20:00", Giver: "Alice", Status: "lost"},
	}, operator))
	assertCode(t, err, connect.CodeInvalidArgument)

	seedLedger(t, c, operator)

	list, err := c.directory.ListParticipants(ctx, withToken(&api.ListParticipantsRequest{}, member))
	require.NoError(t, err)
	require.Len(t, list.Msg.Participants, 3)
	assert.Equal(t, "Alice", list.Msg.Participants[0].Name)

	records, err := c.directory.ListRecords(ctx, withToken(&api.ListRecordsRequest{}, member))
	require.NoError(t, err)
	assert.Len(t, records.Msg.Records, 3)
}

func TestLedger_Views(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	operator := c.token(t, "Olga", models.RoleOperator)
	bob := c.token(t, "Bob", models.RoleMember)
	seedLedger(t, c, operator)

	ov, err := c.ledger.GetOverview(ctx, withToken(&api.GetOverviewRequest{}, bob))
	require.NoError(t, err)
	require.Len(t, ov.Msg.Balances, 3)
	assert.Equal(t, "3.80", ov.Msg.Balances[0].Credits)   // Alice
	assert.Equal(t, "-11.40", ov.Msg.Balances[1].Credits) // Bob
	assert.Equal(t, "7.60", ov.Msg.Balances[2].Credits)   // Charlie
	assert.Equal(t, "11.40", ov.Msg.Totals.OutstandingCredit)
	require.Len(t, ov.Msg.Instructions, 2)
	assert.Equal(t, "Bob pays Charlie 7.60", ov.Msg.Instructions[0].Description)

	view, err := c.ledger.GetParticipantView(ctx, withToken(&api.GetParticipantViewRequest{}, bob))
	require.NoError(t, err)
	assert.Equal(t, "Bob", view.Msg.Balance.Participant)
	assert.Len(t, view.Msg.Instructions, 2)

	_, err = c.ledger.GetParticipantView(ctx, withToken(&api.GetParticipantViewRequest{Participant: "Zed"}, bob))
	assertCode(t, err, connect.CodeNotFound)

	debug, err := c.ledger.GetDebugView(ctx, withToken(&api.GetDebugViewRequest{}, bob))
	require.NoError(t, err)
	require.Len(t, debug.Msg.Decisions, 3)
	assert.Equal(t, "2h", debug.Msg.Decisions[1].Duration)
	assert.Equal(t, "swap", debug.Msg.Decisions[2].Reason)
	assert.False(t, debug.Msg.Decisions[2].Included)

	breakdown, err := c.ledger.GetCreditBreakdown(ctx, withToken(&api.GetCreditBreakdownRequest{}, bob))
	require.NoError(t, err)
	assert.Equal(t, int32(2), breakdown.Msg.TotalSlots)
	assert.Equal(t, int32(2), ov.Msg.Totals.BilledSlots)
	assert.Equal(t, int32(2), breakdown.Msg.EligibleSlots)
	assert.Equal(t, int32(1), breakdown.Msg.SwapSlots)
	assert.Equal(t, "-11.40", breakdown.Msg.Credits["Bob"])
}

func TestSettlement_Lifecycle(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	operator := c.token(t, "Olga", models.RoleOperator)
	bob := c.token(t, "Bob", models.RoleMember)
	alice := c.token(t, "Alice", models.RoleMember)
	seedLedger(t, c, operator)

	_, err := c.settlement.CreateBatch(ctx, withToken(&api.CreateBatchRequest{
		Name: "March", PeriodStart: "2025-03-01", PeriodEnd: "2025-03-31",
	}, bob))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = c.settlement.CreateBatch(ctx, withToken(&api.CreateBatchRequest{
		Name: "Backwards", PeriodStart: "2025-03-31", PeriodEnd: "2025-03-01",
	}, operator))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.settlement.CreateBatch(ctx, withToken(&api.CreateBatchRequest{
		Name: "Bad date", PeriodStart: "01.03.2025", PeriodEnd: "2025-03-31",
	}, operator))
	assertCode(t, err, connect.CodeInvalidArgument)

	created, err := c.settlement.CreateBatch(ctx, withToken(&api.CreateBatchRequest{
		Name: "March", PeriodStart: "2025-03-01", PeriodEnd: "2025-03-31",
	}, operator))
	require.NoError(t, err)
	batchID := created.Msg.Batch.Id
	assert.Equal(t, "active", created.Msg.Batch.Status)
	assert.Equal(t, "Olga", created.Msg.Batch.CreatedBy)

	gen, err := c.settlement.GeneratePairings(ctx, withToken(&api.GeneratePairingsRequest{BatchId: batchID}, operator))
	require.NoError(t, err)
	require.Len(t, gen.Msg.Pairings, 2)
	assert.Equal(t, "7.60", gen.Msg.Pairings[0].Amount)

	_, err = c.settlement.GeneratePairings(ctx, withToken(&api.GeneratePairingsRequest{BatchId: batchID}, operator))
	assertCode(t, err, connect.CodeFailedPrecondition)

	// Alice is owed by Bob in the second pairing only.
	first := gen.Msg.Pairings[0]
	_, err = c.settlement.CompletePairing(ctx, withToken(&api.CompletePairingRequest{PairingId: first.Id}, alice))
	assertCode(t, err, connect.CodeFailedPrecondition)

	done, err := c.settlement.CompletePairing(ctx, withToken(&api.CompletePairingRequest{PairingId: first.Id}, bob))
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Msg.Pairing.Status)
	assert.Equal(t, "Bob", done.Msg.Pairing.CompletedBy)

	closed, err := c.settlement.CloseBatch(ctx, withToken(&api.CloseBatchRequest{BatchId: batchID}, operator))
	require.NoError(t, err)
	assert.Equal(t, "settled", closed.Msg.Batch.Status)
	assert.Len(t, closed.Msg.Batch.TransactionIds, 2)

	_, err = c.settlement.CloseBatch(ctx, withToken(&api.CloseBatchRequest{BatchId: batchID}, operator))
	assertCode(t, err, connect.CodeFailedPrecondition)

	ov, err := c.ledger.GetOverview(ctx, withToken(&api.GetOverviewRequest{}, bob))
	require.NoError(t, err)
	for _, b := range ov.Msg.Balances {
		assert.Equal(t, "0.00", b.Credits, b.Participant)
	}
	assert.Equal(t, int32(2), ov.Msg.Totals.SettledSlots)

	batches, err := c.settlement.ListBatches(ctx, withToken(&api.ListBatchesRequest{}, bob))
	require.NoError(t, err)
	assert.Len(t, batches.Msg.Batches, 1)

	pairings, err := c.settlement.ListPairings(ctx, withToken(&api.ListPairingsRequest{BatchId: batchID}, bob))
	require.NoError(t, err)
	assert.Len(t, pairings.Msg.Pairings, 2)

	_, err = c.settlement.GetBatch(ctx, withToken(&api.GetBatchRequest{BatchId: "missing"}, bob))
	assertCode(t, err, connect.CodeNotFound)
}

func TestSettlement_CompletionRequiresLinkedAccount(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	operator := c.token(t, "Olga", models.RoleOperator)
	seedLedger(t, c, operator)

	charlie, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "charlie@example.com", DisplayName: "Charlie", Participant: "Charlie", Password: "correct-horse",
	}))
	require.NoError(t, err)

	created, err := c.settlement.CreateBatch(ctx, withToken(&api.CreateBatchRequest{
		Name: "March", PeriodStart: "2025-03-01", PeriodEnd: "2025-03-31",
	}, operator))
	require.NoError(t, err)
	gen, err := c.settlement.GeneratePairings(ctx, withToken(&api.GeneratePairingsRequest{BatchId: created.Msg.Batch.Id}, operator))
	require.NoError(t, err)
	pairing := gen.Msg.Pairings[0]
	require.Equal(t, "Charlie", pairing.Creditor)

	// A stranger cannot take over the creditor's name to confirm the payment.
	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "mallory@example.com", DisplayName: "Mallory", Participant: pairing.Creditor, Password: "correct-horse",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	pairings, err := c.settlement.ListPairings(ctx, withToken(&api.ListPairingsRequest{BatchId: created.Msg.Batch.Id}, operator))
	require.NoError(t, err)
	assert.Equal(t, "pending", pairings.Msg.Pairings[0].Status)

	done, err := c.settlement.CompletePairing(ctx, withToken(&api.CompletePairingRequest{PairingId: pairing.Id}, charlie.Msg.Token))
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Msg.Pairing.Status)
	assert.Equal(t, "Charlie", done.Msg.Pairing.CompletedBy)
}
