package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDispatch(t *testing.T) {
	before := testutil.ToFloat64(DispatchTotal.WithLabelValues("image", "fallthrough"))
	RecordDispatch("image", "fallthrough", 0.5)
	after := testutil.ToFloat64(DispatchTotal.WithLabelValues("image", "fallthrough"))
	assert.Equal(t, before+1, after)
}

func TestRecordLLMCall(t *testing.T) {
	before := testutil.ToFloat64(LLMCallsTotal.WithLabelValues("fake", "complete", "error"))
	RecordLLMCall("fake", "complete", "error", 1.2)
	assert.Equal(t, before+1, testutil.ToFloat64(LLMCallsTotal.WithLabelValues("fake", "complete", "error")))
}

func TestSSEConnections(t *testing.T) {
	before := testutil.ToFloat64(SSEConnectionsActive)
	IncrementSSEConnections()
	assert.Equal(t, before+1, testutil.ToFloat64(SSEConnectionsActive))
	DecrementSSEConnections()
	assert.Equal(t, before, testutil.ToFloat64(SSEConnectionsActive))
}
