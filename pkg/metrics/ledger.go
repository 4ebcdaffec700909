package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records stock movements and HTTP request timings.
type LedgerMetrics struct {
	requestDuration *prometheus.HistogramVec
	unitsCommitted  *prometheus.CounterVec
	unitsReleased   *prometheus.CounterVec
	rejected        *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	unitsCommitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_units_committed",
		Help: "Stock units debited by committed event writes.",
	}, []string{"operation"})
	unitsReleased := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_units_released",
		Help: "Stock units credited back by event updates and deletions.",
	}, []string{"operation"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_writes_rejected",
		Help: "Event writes rejected before commit.",
	}, []string{"reason"})
	reg.MustRegister(requestDuration, unitsCommitted, unitsReleased, rejected)
	return &LedgerMetrics{
		requestDuration: requestDuration,
		unitsCommitted:  unitsCommitted,
		unitsReleased:   unitsReleased,
		rejected:        rejected,
	}
}

// ObserveRequest records the duration of a handled HTTP request.
func (m *LedgerMetrics) ObserveRequest(route, method, status string, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(route), normalizeLabel(method), normalizeLabel(status)).Observe(duration.Seconds())
}

// AddCommitted counts units debited from available stock.
func (m *LedgerMetrics) AddCommitted(operation string, units int64) {
	if m == nil || m.unitsCommitted == nil || units <= 0 {
		return
	}
	m.unitsCommitted.WithLabelValues(normalizeLabel(operation)).Add(float64(units))
}

// AddReleased counts units credited back to available stock.
func (m *LedgerMetrics) AddReleased(operation string, units int64) {
	if m == nil || m.unitsReleased == nil || units <= 0 {
		return
	}
	m.unitsReleased.WithLabelValues(normalizeLabel(operation)).Add(float64(units))
}

// IncRejected counts a write rejected before any stock change.
func (m *LedgerMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
