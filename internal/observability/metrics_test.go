package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("bridge", "GET", "/health", 200, 12*time.Millisecond)
	RecordFrame("pub")
	RecordDeliveries(2)
	RecordQueued()

	before := testutil.ToFloat64(bridgeConnections)
	closed := ConnectionOpened()
	assert.Equal(t, before+1, testutil.ToFloat64(bridgeConnections))
	closed()
	closed()
	assert.Equal(t, before, testutil.ToFloat64(bridgeConnections))
}
