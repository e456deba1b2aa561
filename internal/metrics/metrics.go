package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for bulkmsg
type Metrics struct {
	// Outgoing calls to the bulk-messaging API
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// Campaign lifecycle
	CampaignActionsTotal *prometheus.CounterVec

	// Dashboard polling
	PollsTotal    *prometheus.CounterVec
	PollCampaigns prometheus.Gauge
	PollPaused    prometheus.Gauge

	// Local status server
	HTTPRequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkmsg_api_requests_total",
				Help: "Total number of requests sent to the bulk-messaging API",
			},
			[]string{"operation", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bulkmsg_api_request_duration_seconds",
				Help:    "Bulk-messaging API request duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkmsg_api_errors_total",
				Help: "Total number of failed API requests by error type",
			},
			[]string{"type"},
		),
		CampaignActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkmsg_campaign_actions_total",
				Help: "Total number of campaign lifecycle actions by result",
			},
			[]string{"action", "result"},
		),
		PollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkmsg_polls_total",
				Help: "Total number of dashboard polls by result",
			},
			[]string{"result"},
		),
		PollCampaigns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bulkmsg_poll_campaigns",
				Help: "Number of campaigns seen by the last dashboard poll",
			},
		),
		PollPaused: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bulkmsg_poll_paused",
				Help: "1 while dashboard polling is held by a campaign operation",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkmsg_http_requests_total",
				Help: "Total number of requests served by the local status server",
			},
			[]string{"method", "path", "status"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.CampaignActionsTotal,
		m.PollsTotal,
		m.PollCampaigns,
		m.PollPaused,
		m.HTTPRequestsTotal,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveAPIRequest records one API call
func ObserveAPIRequest(operation, status string, seconds float64) {
	m := Global()
	if m != nil {
		m.APIRequestsTotal.WithLabelValues(operation, status).Inc()
		m.APIRequestDurationSeconds.WithLabelValues(operation).Observe(seconds)
	}
}

// IncAPIErrors increments API error counter
func IncAPIErrors(errorType string) {
	m := Global()
	if m != nil {
		m.APIErrorsTotal.WithLabelValues(errorType).Inc()
	}
}

// IncCampaignAction increments the lifecycle action counter
func IncCampaignAction(action, result string) {
	m := Global()
	if m != nil {
		m.CampaignActionsTotal.WithLabelValues(action, result).Inc()
	}
}

// IncPolls increments the poll counter
func IncPolls(result string) {
	m := Global()
	if m != nil {
		m.PollsTotal.WithLabelValues(result).Inc()
	}
}

// SetPollCampaigns sets the number of campaigns in the last snapshot
func SetPollCampaigns(n int) {
	m := Global()
	if m != nil {
		m.PollCampaigns.Set(float64(n))
	}
}

// SetPollPaused reports whether polling is currently held
func SetPollPaused(paused bool) {
	m := Global()
	if m == nil {
		return
	}
	if paused {
		m.PollPaused.Set(1)
	} else {
		m.PollPaused.Set(0)
	}
}
