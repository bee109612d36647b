package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("trade_cal", OutcomeOK))
	ObserveUpstream("trade_cal", OutcomeOK, 20*time.Millisecond)
	ObserveUpstream("trade_cal", OutcomeOK, 30*time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(upstreamRequests.WithLabelValues("trade_cal", OutcomeOK)))
}

func TestObserveTool(t *testing.T) {
	ObserveTool("get_trend_signals", OutcomeError, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(toolCalls.WithLabelValues("get_trend_signals", OutcomeError)))
}
