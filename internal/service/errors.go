package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/slotledger/internal/batch"
	"github.com/mmynk/slotledger/internal/ledger"
	"github.com/mmynk/slotledger/internal/lock"
	"github.com/mmynk/slotledger/internal/models"
	"github.com/mmynk/slotledger/internal/storage"
)

var errOperatorOnly = errors.New("operator role required")

// toConnectError maps domain errors onto Connect codes. Anything unknown is
// an internal error.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, batch.ErrInvalidInput), errors.Is(err, models.ErrInvalidStatus):
		code = connect.CodeInvalidArgument
	case errors.Is(err, batch.ErrPrecondition):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, ledger.ErrUnknownParticipant):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrConflict):
		code = connect.CodeAborted
	case errors.Is(err, lock.ErrNotAcquired):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
