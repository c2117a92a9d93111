package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/slotledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "slotledger.v1.LedgerService"

const (
	LedgerServiceGetOverviewProcedure        = "/slotledger.v1.LedgerService/GetOverview"
	LedgerServiceGetParticipantViewProcedure = "/slotledger.v1.LedgerService/GetParticipantView"
	LedgerServiceGetDebugViewProcedure       = "/slotledger.v1.LedgerService/GetDebugView"
	LedgerServiceGetCreditBreakdownProcedure = "/slotledger.v1.LedgerService/GetCreditBreakdown"
)

// LedgerServiceClient is a client for the slotledger.v1.LedgerService service.
type LedgerServiceClient interface {
	GetOverview(context.Context, *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error)
	GetParticipantView(context.Context, *connect.Request[api.GetParticipantViewRequest]) (*connect.Response[api.GetParticipantViewResponse], error)
	GetDebugView(context.Context, *connect.Request[api.GetDebugViewRequest]) (*connect.Response[api.GetDebugViewResponse], error)
	GetCreditBreakdown(context.Context, *connect.Request[api.GetCreditBreakdownRequest]) (*connect.Response[api.GetCreditBreakdownResponse], error)
}

// NewLedgerServiceClient constructs a client for the slotledger.v1.LedgerService service.
// baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		getOverview:        connect.NewClient[api.GetOverviewRequest, api.GetOverviewResponse](httpClient, baseURL+LedgerServiceGetOverviewProcedure, opts...),
		getParticipantView: connect.NewClient[api.GetParticipantViewRequest, api.GetParticipantViewResponse](httpClient, baseURL+LedgerServiceGetParticipantViewProcedure, opts...),
		getDebugView:       connect.NewClient[api.GetDebugViewRequest, api.GetDebugViewResponse](httpClient, baseURL+LedgerServiceGetDebugViewProcedure, opts...),
		getCreditBreakdown: connect.NewClient[api.GetCreditBreakdownRequest, api.GetCreditBreakdownResponse](httpClient, baseURL+LedgerServiceGetCreditBreakdownProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	getOverview        *connect.Client[api.GetOverviewRequest, api.GetOverviewResponse]
	getParticipantView *connect.Client[api.GetParticipantViewRequest, api.GetParticipantViewResponse]
	getDebugView       *connect.Client[api.GetDebugViewRequest, api.GetDebugViewResponse]
	getCreditBreakdown *connect.Client[api.GetCreditBreakdownRequest, api.GetCreditBreakdownResponse]
}

func (c *ledgerServiceClient) GetOverview(ctx context.Context, req *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error) {
	return c.getOverview.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetParticipantView(ctx context.Context, req *connect.Request[api.GetParticipantViewRequest]) (*connect.Response[api.GetParticipantViewResponse], error) {
	return c.getParticipantView.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetDebugView(ctx context.Context, req *connect.Request[api.GetDebugViewRequest]) (*connect.Response[api.GetDebugViewResponse], error) {
	return c.getDebugView.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetCreditBreakdown(ctx context.Context, req *connect.Request[api.GetCreditBreakdownRequest]) (*connect.Response[api.GetCreditBreakdownResponse], error) {
	return c.getCreditBreakdown.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server side of slotledger.v1.LedgerService.
// LedgerService serves read-only views of the ledger.
type LedgerServiceHandler interface {
	GetOverview(context.Context, *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error)
	GetParticipantView(context.Context, *connect.Request[api.GetParticipantViewRequest]) (*connect.Response[api.GetParticipantViewResponse], error)
	GetDebugView(context.Context, *connect.Request[api.GetDebugViewRequest]) (*connect.Response[api.GetDebugViewResponse], error)
	GetCreditBreakdown(context.Context, *connect.Request[api.GetCreditBreakdownRequest]) (*connect.Response[api.GetCreditBreakdownResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getOverviewHandler := connect.NewUnaryHandler(LedgerServiceGetOverviewProcedure, svc.GetOverview, opts...)
	getParticipantViewHandler := connect.NewUnaryHandler(LedgerServiceGetParticipantViewProcedure, svc.GetParticipantView, opts...)
	getDebugViewHandler := connect.NewUnaryHandler(LedgerServiceGetDebugViewProcedure, svc.GetDebugView, opts...)
	getCreditBreakdownHandler := connect.NewUnaryHandler(LedgerServiceGetCreditBreakdownProcedure, svc.GetCreditBreakdown, opts...)
	return "/slotledger.v1.LedgerService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceGetOverviewProcedure:
			getOverviewHandler.ServeHTTP(w, r)
		case LedgerServiceGetParticipantViewProcedure:
			getParticipantViewHandler.ServeHTTP(w, r)
		case LedgerServiceGetDebugViewProcedure:
			getDebugViewHandler.ServeHTTP(w, r)
		case LedgerServiceGetCreditBreakdownProcedure:
			getCreditBreakdownHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) GetOverview(context.Context, *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.LedgerService.GetOverview is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetParticipantView(context.Context, *connect.Request[api.GetParticipantViewRequest]) (*connect.Response[api.GetParticipantViewResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.LedgerService.GetParticipantView is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetDebugView(context.Context, *connect.Request[api.GetDebugViewRequest]) (*connect.Response[api.GetDebugViewResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.LedgerService.GetDebugView is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetCreditBreakdown(context.Context, *connect.Request[api.GetCreditBreakdownRequest]) (*connect.Response[api.GetCreditBreakdownResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.LedgerService.GetCreditBreakdown is not implemented"))
}
