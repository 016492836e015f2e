package quark

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quarkc-go/quark/pkg/metrics"
	"github.com/quarkc-go/quark/pkg/tracing"
)

// Config configures an App.
type Config struct {
	// Logger receives development diagnostics and recovered errors.
	// Default: slog.Default().
	Logger *slog.Logger

	// Debug enables development diagnostics: runaway renders, duplicate
	// keys, circular watcher updates and swallowed panics are logged.
	Debug bool

	// Container is the tag of the element trees are rendered into. It is
	// appended to the document body.
	// Default: "main".
	Container string

	// Metrics enables the Prometheus collector.
	Metrics bool

	// MetricsRegistry is where the collector registers. It is also the
	// gatherer behind the devtools /metrics endpoint.
	// Default: a fresh registry per App.
	MetricsRegistry *prometheus.Registry

	// MetricsOptions are passed to metrics.New.
	MetricsOptions []metrics.Option

	// Tracing enables OpenTelemetry spans around renders and flushes.
	Tracing bool

	// TracingOptions are passed to tracing.New.
	TracingOptions []tracing.Option

	// OnError is called with every recovered render, ref and element hook
	// panic.
	OnError func(err error)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Logger:    slog.Default(),
		Container: "main",
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Container == "" {
		c.Container = "main"
	}
	if c.Metrics && c.MetricsRegistry == nil {
		c.MetricsRegistry = prometheus.NewRegistry()
	}
	return c
}
