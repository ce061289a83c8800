package unduplicates

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/unduplicates/manifest"
)

// Option configures the plugin built by New.
type Option func(*config)

// config holds the settings collected from Options.
type config struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	meter    metric.Meter
	manifest *manifest.Manifest
}

// WithLogger sets the logger for the plugin.
// If not provided, log output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer. One span is started per event.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for the plugin's counters and
// histograms.
func WithMeter(meter metric.Meter) Option {
	return func(c *config) {
		c.meter = meter
	}
}

// WithManifest replaces the embedded plugin.yaml. The manifest supplies the
// plugin's name, version and configuration fields.
func WithManifest(m *manifest.Manifest) Option {
	return func(c *config) {
		c.manifest = m
	}
}
