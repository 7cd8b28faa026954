package ndl

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles Prometheus collectors for upstream catalog traffic.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   prometheus.Counter
	RetriesTotal    prometheus.Counter
	FailuresTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ndl_requests_total",
		Help: "Total HTTP requests issued to the NDL Search endpoint.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ndl_retries_total",
		Help: "Total retry attempts against the NDL Search endpoint.",
	})
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ndl_failures_total",
			Help: "Total failed NDL Search operations by failure type.",
		},
		[]string{"failure_type"},
	)
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ndl_request_duration_seconds",
		Help:    "Latency of individual NDL Search request attempts.",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(requests, retries, failures, duration)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RetriesTotal:    retries,
		FailuresTotal:   failures,
		RequestDuration: duration,
	}
}

func (m *Metrics) incRequest() {
	if m == nil {
		return
	}
	m.RequestsTotal.Inc()
}

func (m *Metrics) incRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) incFailure(failureType string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(failureType).Inc()
}

func (m *Metrics) observeDuration(seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(seconds)
}
