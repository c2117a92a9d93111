package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBatchOperation(t *testing.T) {
	ok := batchOperations.WithLabelValues("close", "ok")
	failed := batchOperations.WithLabelValues("close", "error")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	BatchOperation("close", nil)
	BatchOperation("close", errors.New("boom"))
	BatchOperation("close", nil)

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(ok))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
}

func TestPairingsGenerated(t *testing.T) {
	before := testutil.ToFloat64(pairingsGenerated)
	PairingsGenerated(3)
	assert.Equal(t, before+3, testutil.ToFloat64(pairingsGenerated))
}
