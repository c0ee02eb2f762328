package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOp(t *testing.T) {
	before := testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("test_op", "ok"))
	beforeErr := testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("test_op", "error"))

	ObserveOp("test_op", nil)
	ObserveOp("test_op", errors.New("boom"))
	ObserveOp("test_op", nil)

	assert.Equal(t, before+2, testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("test_op", "ok")))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("test_op", "error")))
}
