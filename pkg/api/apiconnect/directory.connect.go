package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/slotledger/pkg/api"
)

// DirectoryServiceName is the fully-qualified name of the DirectoryService service.
const DirectoryServiceName = "slotledger.v1.DirectoryService"

const (
	DirectoryServiceUpsertParticipantProcedure = "/slotledger.v1.DirectoryService/UpsertParticipant"
	DirectoryServiceListParticipantsProcedure  = "/slotledger.v1.DirectoryService/ListParticipants"
	DirectoryServiceAppendRecordProcedure      = "/slotledger.v1.DirectoryService/AppendRecord"
	DirectoryServiceListRecordsProcedure       = "/slotledger.v1.DirectoryService/ListRecords"
)

// DirectoryServiceClient is a client for the slotledger.v1.DirectoryService service.
type DirectoryServiceClient interface {
	UpsertParticipant(context.Context, *connect.Request[api.UpsertParticipantRequest]) (*connect.Response[api.UpsertParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	AppendRecord(context.Context, *connect.Request[api.AppendRecordRequest]) (*connect.Response[api.AppendRecordResponse], error)
	ListRecords(context.Context, *connect.Request[api.ListRecordsRequest]) (*connect.Response[api.ListRecordsResponse], error)
}

// NewDirectoryServiceClient constructs a client for the slotledger.v1.DirectoryService service.
// baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewDirectoryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DirectoryServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &directoryServiceClient{
		upsertParticipant: connect.NewClient[api.UpsertParticipantRequest, api.UpsertParticipantResponse](httpClient, baseURL+DirectoryServiceUpsertParticipantProcedure, opts...),
		listParticipants:  connect.NewClient[api.ListParticipantsRequest, api.ListParticipantsResponse](httpClient, baseURL+DirectoryServiceListParticipantsProcedure, opts...),
		appendRecord:      connect.NewClient[api.AppendRecordRequest, api.AppendRecordResponse](httpClient, baseURL+DirectoryServiceAppendRecordProcedure, opts...),
		listRecords:       connect.NewClient[api.ListRecordsRequest, api.ListRecordsResponse](httpClient, baseURL+DirectoryServiceListRecordsProcedure, opts...),
	}
}

type directoryServiceClient struct {
	upsertParticipant *connect.Client[api.UpsertParticipantRequest, api.UpsertParticipantResponse]
	listParticipants  *connect.Client[api.ListParticipantsRequest, api.ListParticipantsResponse]
	appendRecord      *connect.Client[api.AppendRecordRequest, api.AppendRecordResponse]
	listRecords       *connect.Client[api.ListRecordsRequest, api.ListRecordsResponse]
}

func (c *directoryServiceClient) UpsertParticipant(ctx context.Context, req *connect.Request[api.UpsertParticipantRequest]) (*connect.Response[api.UpsertParticipantResponse], error) {
	return c.upsertParticipant.CallUnary(ctx, req)
}

func (c *directoryServiceClient) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *directoryServiceClient) AppendRecord(ctx context.Context, req *connect.Request[api.AppendRecordRequest]) (*connect.Response[api.AppendRecordResponse], error) {
	return c.appendRecord.CallUnary(ctx, req)
}

func (c *directoryServiceClient) ListRecords(ctx context.Context, req *connect.Request[api.ListRecordsRequest]) (*connect.Response[api.ListRecordsResponse], error) {
	return c.listRecords.CallUnary(ctx, req)
}

// DirectoryServiceHandler is implemented by the server side of slotledger.v1.DirectoryService.
// DirectoryService maintains the participant directory and the transaction log.
type DirectoryServiceHandler interface {
	UpsertParticipant(context.Context, *connect.Request[api.UpsertParticipantRequest]) (*connect.Response[api.UpsertParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	AppendRecord(context.Context, *connect.Request[api.AppendRecordRequest]) (*connect.Response[api.AppendRecordResponse], error)
	ListRecords(context.Context, *connect.Request[api.ListRecordsRequest]) (*connect.Response[api.ListRecordsResponse], error)
}

// NewDirectoryServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDirectoryServiceHandler(svc DirectoryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	upsertParticipantHandler := connect.NewUnaryHandler(DirectoryServiceUpsertParticipantProcedure, svc.UpsertParticipant, opts...)
	listParticipantsHandler := connect.NewUnaryHandler(DirectoryServiceListParticipantsProcedure, svc.ListParticipants, opts...)
	appendRecordHandler := connect.NewUnaryHandler(DirectoryServiceAppendRecordProcedure, svc.AppendRecord, opts...)
	listRecordsHandler := connect.NewUnaryHandler(DirectoryServiceListRecordsProcedure, svc.ListRecords, opts...)
	return "/slotledger.v1.DirectoryService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DirectoryServiceUpsertParticipantProcedure:
			upsertParticipantHandler.ServeHTTP(w, r)
		case DirectoryServiceListParticipantsProcedure:
			listParticipantsHandler.ServeHTTP(w, r)
		case DirectoryServiceAppendRecordProcedure:
			appendRecordHandler.ServeHTTP(w, r)
		case DirectoryServiceListRecordsProcedure:
			listRecordsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedDirectoryServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedDirectoryServiceHandler struct{}

func (UnimplementedDirectoryServiceHandler) UpsertParticipant(context.Context, *connect.Request[api.UpsertParticipantRequest]) (*connect.Response[api.UpsertParticipantResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.DirectoryService.UpsertParticipant is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.DirectoryService.ListParticipants is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) AppendRecord(context.Context, *connect.Request[api.AppendRecordRequest]) (*connect.Response[api.AppendRecordResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.DirectoryService.AppendRecord is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) ListRecords(context.Context, *connect.Request[api.ListRecordsRequest]) (*connect.Response[api.ListRecordsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("slotledger.v1.DirectoryService.ListRecords is not implemented"))
}
