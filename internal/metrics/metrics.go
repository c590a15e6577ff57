package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the stash collectors on a private registry so several
// instances (tests, CLI) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Messages        *prometheus.CounterVec
	NamingOutcomes  *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	SessionsSaved   prometheus.Counter
	TabsRestored    prometheus.Counter
}

// New registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"method", "path"},
		),
		Messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stash_messages_total",
				Help: "Router messages by type and result",
			},
			[]string{"type", "result"},
		),
		NamingOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stash_naming_outcomes_total",
				Help: "Name generation attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stash_naming_provider_duration_seconds",
				Help:    "Name suggestion provider call duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
			},
			[]string{"provider"},
		),
		SessionsSaved: f.NewCounter(
			prometheus.CounterOpts{
				Name: "stash_sessions_saved_total",
				Help: "Sessions saved, including quick stashes",
			},
		),
		TabsRestored: f.NewCounter(
			prometheus.CounterOpts{
				Name: "stash_tabs_restored_total",
				Help: "Tabs opened by session restores",
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveMessage records one routed message.
func (m *Metrics) ObserveMessage(msgType string, success bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "error"
	}
	m.Messages.WithLabelValues(msgType, result).Inc()
}

// ObserveNaming records a naming stage outcome such as "ok", "unavailable",
// "failed", "blank" or "default".
func (m *Metrics) ObserveNaming(provider, outcome string) {
	if m == nil {
		return
	}
	m.NamingOutcomes.WithLabelValues(provider, outcome).Inc()
}

// ObserveProvider records how long a provider call took.
func (m *Metrics) ObserveProvider(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// SessionSaved counts one saved session.
func (m *Metrics) SessionSaved() {
	if m == nil {
		return
	}
	m.SessionsSaved.Inc()
}

// Restored counts restored tabs.
func (m *Metrics) Restored(tabs int) {
	if m == nil {
		return
	}
	m.TabsRestored.Add(float64(tabs))
}
