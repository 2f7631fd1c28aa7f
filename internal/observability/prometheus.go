package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports operation durations, result counts, and event
// counters through a Prometheus registry.
type PrometheusRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
	events    *prometheus.CounterVec
}

// NewPrometheusRecorder constructs a recorder and registers its collectors
// with the supplied registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hydrate",
			Name:      "operation_duration_seconds",
			Help:      "Duration of load-layer operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrate",
			Name:      "operation_results_total",
			Help:      "Load-layer operation outcomes by status.",
		}, []string{"operation", "status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrate",
			Name:      "events_total",
			Help:      "Identity-map and second-level cache events.",
		}, []string{"event"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.results, r.events} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// Observe records a load-layer operation outcome.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// Count records one occurrence of a named event.
func (r *PrometheusRecorder) Count(event string) {
	if event == "" {
		return
	}
	r.events.WithLabelValues(event).Inc()
}
