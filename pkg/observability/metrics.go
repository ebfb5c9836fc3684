package observability

import (
	"context"

	"github.com/aretw0/machine/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "machine"

// Metrics holds the Prometheus collectors fed by engine lifecycle events.
type Metrics struct {
	started   *prometheus.CounterVec
	settled   *prometheus.CounterVec
	lateExits *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric name prefix (default "machine").
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) {
		c.namespace = ns
	}
}

// WithBuckets overrides the duration histogram buckets, in seconds.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *metricsConfig) {
		c.buckets = buckets
	}
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) *Metrics {
	cfg := metricsConfig{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		started: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "executions_started_total",
				Help:      "Total number of machine executions started",
			},
			[]string{"identity"},
		),
		settled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "executions_total",
				Help:      "Total number of settled machine executions",
			},
			[]string{"identity", "exit", "kind"},
		),
		lateExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "late_exits_total",
				Help:      "Exits called after their execution had already settled",
			},
			[]string{"identity"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.namespace,
				Name:      "execution_duration_seconds",
				Help:      "Duration of machine executions",
				Buckets:   cfg.buckets,
			},
			[]string{"identity"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.started, m.settled, m.lateExits, m.duration)
	}
	return m
}

// Collectors returns the underlying collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.started, m.settled, m.lateExits, m.duration}
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecStart: func(_ context.Context, e *domain.ExecEvent) {
			m.started.WithLabelValues(e.Identity).Inc()
		},
		OnSettle: func(_ context.Context, e *domain.ExecEvent) {
			exit := e.Exit
			if exit == "" {
				exit = "none"
			}
			kind := domain.Kind(e.Err)
			if kind == "" {
				kind = "none"
			}
			m.settled.WithLabelValues(e.Identity, exit, kind).Inc()
			m.duration.WithLabelValues(e.Identity).Observe(e.Duration.Seconds())
		},
		OnLateExit: func(_ context.Context, e *domain.ExecEvent) {
			m.lateExits.WithLabelValues(e.Identity).Inc()
		},
	}
}
