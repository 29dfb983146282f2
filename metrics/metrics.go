// Package metrics exports reactive engine events as Prometheus metrics.
package metrics

import (
	"github.com/delaneyj/reactivity/reactive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reactivity").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for trigger fan-out and flush sizes.
	// Default: 0, 1, 2, 4 ... 128
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reactivity",
		Buckets:   append([]float64{0}, prometheus.ExponentialBuckets(1, 2, 8)...),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector implements reactive.Instrumentation. Install it with
// reactive.WithInstrumentation.
//
// Metrics collected:
//   - reactivity_tracked_total: new subscriptions by target kind
//   - reactivity_triggers_total: triggers by target kind and op
//   - reactivity_trigger_fanout: effects resolved per trigger
//   - reactivity_effect_runs_total: effect runs by result
//   - reactivity_flushed_jobs: jobs run per queue flush
//   - reactivity_readonly_rejections_total: refused writes by target kind
type Collector struct {
	trackedTotal   *prometheus.CounterVec
	triggersTotal  *prometheus.CounterVec
	triggerFanout  *prometheus.HistogramVec
	effectRuns     *prometheus.CounterVec
	flushedJobs    prometheus.Histogram
	readonlyErrors *prometheus.CounterVec
}

var _ reactive.Instrumentation = (*Collector)(nil)

// New registers the collector's metrics. It panics if they are already
// registered with the chosen registry.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		trackedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tracked_total",
			Help:        "Total number of effects newly subscribed to a target key",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		triggersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of triggered mutations",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "op"}),

		triggerFanout: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "trigger_fanout",
			Help:        "Number of effects resolved by one trigger",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		flushedJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushed_jobs",
			Help:        "Number of jobs run by one queue flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		readonlyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "readonly_rejections_total",
			Help:        "Total number of writes refused by read-only proxies",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

func (c *Collector) Tracked(kind reactive.TargetKind) {
	c.trackedTotal.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) Triggered(kind reactive.TargetKind, op reactive.TriggerOp, fanout int) {
	c.triggersTotal.WithLabelValues(kind.String(), op.String()).Inc()
	c.triggerFanout.WithLabelValues(kind.String()).Observe(float64(fanout))
}

func (c *Collector) EffectRan(_ *reactive.EffectRunner, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.effectRuns.WithLabelValues(result).Inc()
}

func (c *Collector) Flushed(jobs int) {
	c.flushedJobs.Observe(float64(jobs))
}

func (c *Collector) ReadonlyRejected(kind reactive.TargetKind) {
	c.readonlyErrors.WithLabelValues(kind.String()).Inc()
}
