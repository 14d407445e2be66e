package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront/pkg/enums"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// StorefrontMetrics records bus traffic, remote call latency and basket size.
type StorefrontMetrics struct {
	emitted     *prometheus.CounterVec
	remote      *prometheus.HistogramVec
	basketItems prometheus.Gauge
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	emitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "events_emitted_total",
		Help:      "Events emitted on the storefront bus.",
	}, []string{"event"})
	remote := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of calls to the remote store API in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	basketItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Name:      "basket_items",
		Help:      "Items currently in the session basket.",
	})
	reg.MustRegister(emitted, remote, basketItems)
	return &StorefrontMetrics{
		emitted:     emitted,
		remote:      remote,
		basketItems: basketItems,
	}
}

// ObserveEmit counts one emission. Its signature matches events.Observer.
func (m *StorefrontMetrics) ObserveEmit(name enums.EventName, _ int) {
	if m == nil || m.emitted == nil {
		return
	}
	m.emitted.WithLabelValues(normalizeLabel(string(name))).Inc()
}

// ObserveRemote records the duration of one remote call.
func (m *StorefrontMetrics) ObserveRemote(operation, outcome string, duration time.Duration) {
	if m == nil || m.remote == nil {
		return
	}
	m.remote.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Observe(duration.Seconds())
}

func (m *StorefrontMetrics) SetBasketItems(count int) {
	if m == nil || m.basketItems == nil {
		return
	}
	m.basketItems.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
