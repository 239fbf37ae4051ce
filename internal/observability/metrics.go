package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wconnect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wconnect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	bridgeFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wconnect",
			Subsystem: "bridge",
			Name:      "frames_total",
			Help:      "Relay frames received, by frame type.",
		},
		[]string{"type"},
	)
	bridgeDeliveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wconnect",
			Subsystem: "bridge",
			Name:      "deliveries_total",
			Help:      "Published frames written to subscribers.",
		},
	)
	bridgeQueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wconnect",
			Subsystem: "bridge",
			Name:      "queued_total",
			Help:      "Published frames held for a topic with no other subscriber.",
		},
	)
	bridgeUpgrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wconnect",
			Subsystem: "bridge",
			Name:      "upgrades_total",
			Help:      "WebSocket upgrade attempts, by outcome.",
		},
		[]string{"outcome"},
	)
	bridgeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wconnect",
			Subsystem: "bridge",
			Name:      "connections",
			Help:      "Open relay WebSocket connections.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			bridgeFrames, bridgeDeliveries, bridgeQueued, bridgeUpgrades, bridgeConnections,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordFrame(frameType string) {
	RegisterMetrics()
	bridgeFrames.WithLabelValues(frameType).Inc()
}

func RecordDeliveries(n int) {
	RegisterMetrics()
	bridgeDeliveries.Add(float64(n))
}

func RecordQueued() {
	RegisterMetrics()
	bridgeQueued.Inc()
}

func RecordUpgrade(outcome string) {
	RegisterMetrics()
	bridgeUpgrades.WithLabelValues(outcome).Inc()
}

// ConnectionOpened counts an open relay connection; call the returned func
// when it closes.
func ConnectionOpened() (closed func()) {
	RegisterMetrics()
	bridgeConnections.Inc()
	var once sync.Once
	return func() { once.Do(bridgeConnections.Dec) }
}
