package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's Prometheus collectors on a private registry.
type Metrics struct {
	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	fallbacks        prometheus.Counter
	chatRequests     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_provider_requests_total",
				Help: "Provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatrelay_provider_duration_seconds",
				Help:    "Latency of provider calls that reached the network",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chatrelay_fallback_responses_total",
				Help: "Chat requests answered from the fallback pool",
			},
		),
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_chat_requests_total",
				Help: "Chat requests by result (provider, fallback, empty)",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.providerRequests,
		m.providerDuration,
		m.fallbacks,
		m.chatRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveProvider counts one provider call. Calls skipped for a missing key
// are counted but not timed.
func (m *Metrics) ObserveProvider(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
	if elapsed > 0 {
		m.providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

// ObserveChat counts one chat request by how it was resolved.
func (m *Metrics) ObserveChat(result string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(result).Inc()
	if result == ResultFallback {
		m.fallbacks.Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

const (
	ResultEmpty    = "empty"
	ResultFallback = "fallback"
)
