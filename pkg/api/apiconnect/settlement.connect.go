package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/slotledger/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "slotledger.v1.SettlementService"

const (
	SettlementServiceCreateBatchProcedure      = "/slotledger.v1.SettlementService/CreateBatch"
	SettlementServiceGeneratePairingsProcedure = "/slotledger.v1.SettlementService/GeneratePairings"
	SettlementServiceCompletePairingProcedure  = "/slotledger.v1.SettlementService/CompletePairing"
	SettlementServiceCloseBatchProcedure       = "/slotledger.v1.SettlementService/CloseBatch"
	SettlementServiceGetBatchProcedure         = "/slotledger.v1.SettlementService/GetBatch"
	SettlementServiceListBatchesProcedure      = "/slotledger.v1.SettlementService/ListBatches"
	SettlementServiceListPairingsProcedure     = "/slotledger.v1.SettlementService/ListPairings"
)

// SettlementServiceClient is a client for the slotledger.v1.SettlementService service.
type SettlementServiceClient interface {
	CreateBatch(context.Context, *connect.Request[api.CreateBatchRequest]) (*connect.Response[api.CreateBatchResponse], error)
	GeneratePairings(context.Context, *connect.Request[api.GeneratePairingsRequest]) (*connect.Response[api.GeneratePairingsResponse], error)
	CompletePairing(context.Context, *connect.Request[api.CompletePairingRequest]) (*connect.Response[api.CompletePairingResponse], error)
	CloseBatch(context.Context, *connect.Request[api.CloseBatchRequest]) (*connect.Response[api.CloseBatchResponse], error)
	GetBatch(context.Context, *connect.Request[api.GetBatchRequest]) (*connect.Response[api.GetBatchResponse], error)
	ListBatches(context.Context, *connect.Request[api.ListBatchesRequest]) (*connect.Response[api.ListBatchesResponse], error)
	ListPairings(context.Context, *connect.Request[api.ListPairingsRequest]) (*connect.Response[api.ListPairingsResponse], error)
}

// NewSettlementServiceClient constructs a client for the slotledger.v1.SettlementService service.
// baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &settlementServiceClient{
		createBatch:      connect.NewClient[api.CreateBatchRequest, api.CreateBatchResponse](httpClient, baseURL+SettlementServiceCreateBatchProcedure, opts...),
		generatePairings: connect.NewClient[api.GeneratePairingsRequest, api.GeneratePairingsResponse](httpClient, baseURL+SettlementServiceGeneratePairingsProcedure, opts...),
		completePairing:  connect.NewClient[api.CompletePairingRequest, api.CompletePairingResponse](httpClient, baseURL+SettlementServiceCompletePairingProcedure, opts...),
		closeBatch:       connect.NewClient[api.CloseBatchRequest, api.CloseBatchResponse](httpClient, baseURL+SettlementServiceCloseBatchProcedure, opts...),
		getBatch:         connect.NewClient[api.GetBatchRequest, api.GetBatchResponse](httpClient, baseURL+SettlementServiceGetBatchProcedure, opts...),
		listBatches:      connect.NewClient[api.ListBatchesRequest, api.ListBatchesResponse](httpClient, baseURL+SettlementServiceListBatchesProcedure, opts...),
		listPairings:     connect.NewClient[api.ListPairingsRequest, api.ListPairingsResponse](httpClient, baseURL+SettlementServiceListPairingsProcedure, opts...),
	}
}

type settlementServiceClient struct {
	createBatch      *connect.Client[api.CreateBatchRequest, api.CreateBatchResponse]
	generatePairings *connect.Client[api.GeneratePairingsRequest, api.GeneratePairingsResponse]
	completePairing  *connect.Client[api.CompletePairingRequest, api.CompletePairingResponse]
	closeBatch       *connect.Client[api.CloseBatchRequest, api.CloseBatchResponse]
	getBatch         *connect.Client[api.GetBatchRequest, api.GetBatchResponse]
	listBatches      *connect.Client[api.ListBatchesRequest, api.ListBatchesResponse]
	listPairings     *connect.Client[api.ListPairingsRequest, api.ListPairingsResponse]
}

func (c *settlementServiceClient) CreateBatch(ctx context.Context, req *connect.Request[api.CreateBatchRequest]) (*connect.Response[api.CreateBatchResponse], error) {
	return c.createBatch.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GeneratePairings(ctx context.Context, req *connect.Request[api.GeneratePairingsRequest]) (*connect.Response[api.GeneratePairingsResponse], error) {
	return c.generatePairings.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CompletePairing(ctx context.Context, req *connect.Request[api.CompletePairingRequest]) (*connect.Response[api.CompletePairingResponse], error) {
	return c.completePairing.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CloseBatch(ctx context.Context, req *connect.Request[api.CloseBatchRequest]) (*connect.Response[api.CloseBatchResponse], error) {
	return c.closeBatch.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetBatch(ctx context.Context, req *connect.Request[api.GetBatchRequest]) (*connect.Response[api.GetBatchResponse], error) {
	return c.getBatch.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListBatches(ctx context.Context, req *connect.Request[api.ListBatchesRequest]) (*connect.Response[api.ListBatchesResponse], error) {
	return c.listBatches.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListPairings(ctx context.Context, req *connect.Request[api.ListPairingsRequest]) (*connect.Response[api.ListPairingsResponse], error) {
	return c.listPairings.CallUnary(ctx, req)
}

// SettlementServiceHandler is implemented by the server side of slotledger.v1.SettlementService.
// SettlementService runs the settlement batch lifecycle.
type SettlementServiceHandler interface {
	CreateBatch(context.Context, *connect.Request[api.CreateBatchRequest]) (*connect.Response[api.CreateBatchResponse], error)
	GeneratePairings(context.Context, *connect.Request[api.GeneratePairingsRequest]) (*connect.Response[api.GeneratePairingsResponse], error)
	CompletePairing(context.Context, *connect.Request[api.CompletePairingRequest]) (*connect.Response[api.CompletePairingResponse], error)
	CloseBatch(context.Context, *connect.Request[api.CloseBatchRequest]) (*connect.Response[api.CloseBatchResponse], error)
	GetBatch(context.Context, *connect.Request[api.GetBatchRequest]) (*connect.Response[api.GetBatchResponse], error)
	ListBatches(context.Context, *connect.Request[api.ListBatchesRequest]) (*connect.Response[api.ListBatchesResponse], error)
	ListPairings(context.Context, *connect.Request[api.ListPairingsRequest]) (*connect.Response[api.ListPairingsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createBatchHandler := connect.NewUnaryHandler(SettlementServiceCreateBatchProcedure, svc.CreateBatch, opts...)
	generatePairingsHandler := connect.NewUnaryHandler(SettlementServiceGeneratePairingsProcedure, svc.GeneratePairings, opts...)
	completePairingHandler := connect.NewUnaryHandler(SettlementServiceCompletePairingProcedure, svc.CompletePairing, opts...)
	closeBatchHandler := connect.NewUnaryHandler(SettlementServiceCloseBatchProcedure, svc.CloseBatch, opts...)
	getBatchHandler := connect.NewUnaryHandler(SettlementServiceGetBatchProcedure, svc.GetBatch, opts...)
	listBatchesHandler := connect.NewUnaryHandler(SettlementServiceListBatchesProcedure, svc.ListBatches, opts...)
	listPairingsHandler := connect.NewUnaryHandler(SettlementServiceListPairingsProcedure, svc.ListPairings, opts...)
	return "/slotledger.v1.SettlementService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceCreateBatchProcedure:
			createBatchHandler.ServeHTTP(w, r)
		case SettlementServiceGeneratePairingsProcedure:
			generatePairingsHandler.ServeHTTP(w, r)
		case SettlementServiceCompletePairingProcedure:
			completePairingHandler.ServeHTTP(w, r)
		case SettlementServiceCloseBatchProcedure:
			closeBatchHandler.ServeHTTP(w, r)
		case SettlementServiceGetBatchProcedure:
			getBatchHandler.ServeHTTP(w, r)
		case SettlementServiceListBatchesProcedure:
			listBatchesHandler.ServeHTTP(w, r)
		case SettlementServiceListPairingsProcedure:
			listPairingsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func (UnimplementedSettlementServiceHandler) CreateBatch(context.Context, *connect.Request[api.CreateBatchRequest]) (*connect.Response[api.CreateBatchResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.CreateBatch is not implemented"))
}

func (UnimplementedSettlementServiceHandler) GeneratePairings(context.Context, *connect.Request[api.GeneratePairingsRequest]) (*connect.Response[api.GeneratePairingsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.GeneratePairings is not implemented"))
}

func (UnimplementedSettlementServiceHandler) CompletePairing(context.Context, *connect.Request[api.CompletePairingRequest]) (*connect.Response[api.CompletePairingResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.CompletePairing is not implemented"))
}

func (UnimplementedSettlementServiceHandler) CloseBatch(context.Context, *connect.Request[api.CloseBatchRequest]) (*connect.Response[api.CloseBatchResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.CloseBatch is not implemented"))
}

func (UnimplementedSettlementServiceHandler) GetBatch(context.Context, *connect.Request[api.GetBatchRequest]) (*connect.Response[api.GetBatchResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.GetBatch is not implemented"))
}

func (UnimplementedSettlementServiceHandler) ListBatches(context.Context, *connect.Request[api.ListBatchesRequest]) (*connect.Response[api.ListBatchesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.ListBatches is not implemented"))
}

func (UnimplementedSettlementServiceHandler) ListPairings(context.Context, *connect.Request[api.ListPairingsRequest]) (*connect.Response[api.ListPairingsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.SettlementService.ListPairings is not implemented"))
}
