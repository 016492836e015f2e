package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/vdom"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "quark").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "quark",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector counts what a renderer, its document and its scheduler do.
//
// Metrics collected (with the default namespace):
//   - quark_renders_total: root renders
//   - quark_render_duration_seconds: root render duration
//   - quark_component_renders_total: component nodes diffed
//   - quark_render_errors_total: recovered render and ref panics
//   - quark_runaway_renders_total: components stopped at the render pass bound
//   - quark_unmounts_total: nodes unmounted
//   - quark_mounted_nodes: nodes mounted after the last root render
//   - quark_dom_mutations_total{op}: document writes by kind
//   - quark_scheduler_jobs_total{kind}: jobs run by the scheduler
//   - quark_scheduler_job_panics_total{kind}: jobs that panicked
//   - quark_scheduler_flushes_total: scheduler flushes
//
// Example:
//
//	c := metrics.New(metrics.WithNamespace("myapp"))
//	c.Attach(renderer)
//	http.Handle("/metrics", promhttp.Handler())
type Collector struct {
	renders          prometheus.Counter
	renderDuration   prometheus.Histogram
	componentRenders prometheus.Counter
	renderErrors     prometheus.Counter
	runaway          prometheus.Counter
	unmounts         prometheus.Counter
	mountedNodes     prometheus.Gauge
	mutations        *prometheus.CounterVec
	jobs             *prometheus.CounterVec
	jobPanics        *prometheus.CounterVec
	flushes          prometheus.Counter
}

// New creates a Collector and registers its metrics. Metrics that are
// already registered with the same description are shared, so several
// collectors on one registry add to the same series.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	reg := config.Registry

	counter := func(name, help string) prometheus.Counter {
		return register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}))
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels))
	}

	return &Collector{
		renders: counter("renders_total", "Total number of root renders"),

		renderDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Root render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		})),

		componentRenders: counter("component_renders_total", "Total number of component nodes diffed"),
		renderErrors:     counter("render_errors_total", "Total number of recovered render and ref panics"),
		runaway:          counter("runaway_renders_total", "Total number of components stopped at the render pass bound"),
		unmounts:         counter("unmounts_total", "Total number of nodes unmounted"),

		mountedNodes: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_nodes",
			Help:        "Number of nodes mounted after the last root render",
			ConstLabels: config.ConstLabels,
		})),

		mutations: counterVec("dom_mutations_total", "Total number of document writes by kind", "op"),
		jobs:      counterVec("scheduler_jobs_total", "Total number of scheduler jobs run by kind", "kind"),
		jobPanics: counterVec("scheduler_job_panics_total", "Total number of scheduler jobs that panicked", "kind"),
		flushes:   counter("scheduler_flushes_total", "Total number of scheduler flushes"),
	}
}

// register registers c, or returns the collector already registered under
// the same description.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Hooks returns renderer hooks that record render activity.
func (c *Collector) Hooks() vdom.Hooks {
	return vdom.Hooks{
		AfterRender: func(info vdom.RenderInfo) {
			c.renders.Inc()
			c.renderDuration.Observe(info.Duration.Seconds())
			c.mountedNodes.Set(float64(info.Nodes))
		},
		OnDiffed: func(v *vdom.VNode) {
			if v.Kind == vdom.KindComponent {
				c.componentRenders.Inc()
			}
		},
		OnUnmount: func(*vdom.VNode) { c.unmounts.Inc() },
		OnError:   func(error, *vdom.VNode) { c.renderErrors.Inc() },
		OnRunaway: func(*vdom.Component) { c.runaway.Inc() },
	}
}

// ObserveDocument counts every write to doc. The returned func stops
// counting.
func (c *Collector) ObserveDocument(doc *dom.Document) (cancel func()) {
	return doc.Observe(func(m dom.Mutation) {
		c.mutations.WithLabelValues(string(m.Op)).Inc()
	})
}

// JobHook returns a scheduler hook that counts jobs.
func (c *Collector) JobHook() func(reactive.JobInfo) {
	return func(info reactive.JobInfo) {
		c.jobs.WithLabelValues(info.Kind).Inc()
		if info.Panicked {
			c.jobPanics.WithLabelValues(info.Kind).Inc()
		}
	}
}

// FlushHook returns a scheduler hook that counts flushes.
func (c *Collector) FlushHook() func(reactive.FlushInfo) {
	return func(reactive.FlushInfo) { c.flushes.Inc() }
}

// Attach instruments r, its document and its runtime's scheduler.
func (c *Collector) Attach(r *vdom.Renderer) {
	r.AddHooks(c.Hooks())
	c.ObserveDocument(r.Document())
	r.Runtime().AddJobHook(c.JobHook())
	r.Runtime().AddFlushHook(c.FlushHook())
}

// Stats is a point-in-time reading of a Collector.
type Stats struct {
	Renders          float64            `json:"renders"`
	ComponentRenders float64            `json:"componentRenders"`
	RenderErrors     float64            `json:"renderErrors"`
	Runaway          float64            `json:"runaway"`
	Unmounts         float64            `json:"unmounts"`
	MountedNodes     float64            `json:"mountedNodes"`
	Mutations        map[string]float64 `json:"mutations"`
	Jobs             map[string]float64 `json:"jobs"`
	Flushes          float64            `json:"flushes"`
}

// Stats reads the current values.
func (c *Collector) Stats() Stats {
	return Stats{
		Renders:          value(c.renders),
		ComponentRenders: value(c.componentRenders),
		RenderErrors:     value(c.renderErrors),
		Runaway:          value(c.runaway),
		Unmounts:         value(c.unmounts),
		MountedNodes:     value(c.mountedNodes),
		Mutations:        byLabel(c.mutations, "op"),
		Jobs:             byLabel(c.jobs, "kind"),
		Flushes:          value(c.flushes),
	}
}

func value(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return 0
	}
	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	}
	return 0
}

func byLabel(vec *prometheus.CounterVec, label string) map[string]float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		vec.Collect(ch)
		close(ch)
	}()
	out := make(map[string]float64)
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		for _, lp := range pb.GetLabel() {
			if lp.GetName() == label {
				out[lp.GetValue()] += pb.GetCounter().GetValue()
			}
		}
	}
	return out
}
