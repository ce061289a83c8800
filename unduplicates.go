package unduplicates

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/zero-day-ai/unduplicates/event"
	"github.com/zero-day-ai/unduplicates/eventid"
	"github.com/zero-day-ai/unduplicates/health"
	"github.com/zero-day-ai/unduplicates/manifest"
	"github.com/zero-day-ai/unduplicates/plugin"
)

// Operation names used in errors.
const (
	opNew          = "New"
	opSetup        = "Setup"
	opProcessEvent = "ProcessEvent"
	opTeardown     = "Teardown"
)

// ConfigKeyMode is the configuration key selecting the dedup mode.
const ConfigKeyMode = "dedupMode"

// Health turns degraded above these shares of processed events.
const (
	maxFailureRate = 0.01
	maxSkipRate    = 0.5
)

//go:embed plugin.yaml
var manifestYAML []byte

// Plugin is the dedup plugin. It implements plugin.Plugin.
type Plugin struct {
	plugin.Plugin

	logger   *slog.Logger
	tracer   trace.Tracer
	inst     *instruments
	manifest *manifest.Manifest

	// set by Setup; read under the builder's lock
	deriver *eventid.Deriver

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

var _ plugin.Plugin = (*Plugin)(nil)

// New creates the dedup plugin. The returned plugin must be set up before it
// processes events.
func New(opts ...Option) (*Plugin, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.tracer == nil {
		cfg.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if cfg.meter == nil {
		cfg.meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}

	m := cfg.manifest
	if m == nil {
		parsed, err := manifest.Parse(manifestYAML)
		if err != nil {
			return nil, NewConfigurationError(opNew, err)
		}
		m = parsed
	} else if err := m.Validate(); err != nil {
		return nil, NewConfigurationError(opNew, err)
	}

	inst, err := newInstruments(cfg.meter)
	if err != nil {
		return nil, NewInternalError(opNew, err)
	}

	p := &Plugin{
		logger:   cfg.logger.With("component", m.Name),
		tracer:   cfg.tracer,
		inst:     inst,
		manifest: m,
	}

	pc := plugin.NewConfig()
	pc.SetName(m.Name)
	pc.SetVersion(m.Version)
	pc.SetDescription(m.Description)
	pc.SetConfigSchema(m.ConfigSchema())
	pc.SetSetupFunc(p.setup)
	pc.SetProcessEventFunc(p.processEvent)
	pc.SetTeardownFunc(p.teardown)
	pc.SetHealthFunc(p.health)

	built, err := plugin.New(pc)
	if err != nil {
		return nil, NewConfigurationError(opNew, err)
	}
	p.Plugin = built

	return p, nil
}

// Manifest returns the manifest the plugin was built from.
func (p *Plugin) Manifest() *manifest.Manifest {
	return p.manifest
}

// Setup reads the dedup mode from config. A missing mode uses the manifest
// default; an unknown one fails with KindConfiguration.
func (p *Plugin) Setup(ctx context.Context, config map[string]any) error {
	return classify(opSetup, p.Plugin.Setup(ctx, config))
}

// ProcessEvent stamps ev.UUID with the identifier derived from ev.
//
// Events without a timestamp are returned unchanged with a nil error. When
// the properties cannot be serialized, ev is returned unchanged with an
// error of kind KindSerialization.
func (p *Plugin) ProcessEvent(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
	out, err := p.Plugin.ProcessEvent(ctx, ev)
	return out, classify(opProcessEvent, err)
}

// Teardown stops the plugin. It may be set up again afterwards.
func (p *Plugin) Teardown(ctx context.Context) error {
	return classify(opTeardown, p.Plugin.Teardown(ctx))
}

func (p *Plugin) setup(ctx context.Context, config map[string]any) error {
	resolved := p.manifest.Resolve(config)

	mode := eventid.EventAndTimestamp
	if raw, ok := resolved[ConfigKeyMode]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return NewConfigurationError(opSetup, fmt.Errorf("%s must be a string, got %T", ConfigKeyMode, raw))
		}
		parsed, err := eventid.ParseMode(s)
		if err != nil {
			return NewConfigurationError(opSetup, err).WithContext(map[string]any{
				"allowed": eventid.Values(),
			})
		}
		mode = parsed
	}

	p.deriver = eventid.NewDeriver(mode)
	p.logger.InfoContext(ctx, "plugin configured", "dedup_mode", mode.String())
	return nil
}

func (p *Plugin) processEvent(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
	mode := p.deriver.Mode()

	ctx, span := p.tracer.Start(ctx, spanProcessEvent, trace.WithAttributes(
		attribute.Int64(attrTeamID, ev.TeamID),
		attribute.String(attrMode, mode.String()),
	))
	defer span.End()

	p.processed.Add(1)
	p.logger.DebugContext(ctx, "beginning processing",
		"correlation_id", uuid.NewString(),
		"team_id", ev.TeamID,
		"event", ev.Event,
		"timestamp", ev.Timestamp,
		"distinct_id", ev.DistinctID,
	)

	start := time.Now()
	id, err := p.deriver.Generate(ev)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	switch {
	case errors.Is(err, eventid.ErrMissingTimestamp):
		p.skipped.Add(1)
		span.SetAttributes(attribute.Bool(attrSkipped, true))
		p.inst.record(ctx, mode, outcomeSkipped, elapsed)
		p.logger.InfoContext(ctx, "received event without a timestamp, the event will not be processed because deduping will not work",
			"team_id", ev.TeamID,
			"event", ev.Event,
		)
		return ev, nil

	case err != nil:
		p.failed.Add(1)
		span.SetAttributes(attribute.Bool(attrSkipped, false))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.inst.record(ctx, mode, outcomeFailed, elapsed)
		p.logger.WarnContext(ctx, "failed to derive event uuid",
			"team_id", ev.TeamID,
			"event", ev.Event,
			"error", err,
		)
		return ev, NewSerializationError(opProcessEvent, err).WithContext(map[string]any{
			"team_id": ev.TeamID,
			"event":   ev.Event,
		})
	}

	ev.UUID = id.String()
	span.SetAttributes(attribute.Bool(attrSkipped, false))
	span.SetStatus(codes.Ok, "")
	p.inst.record(ctx, mode, outcomeDerived, elapsed)
	return ev, nil
}

func (p *Plugin) teardown(ctx context.Context) error {
	p.logger.InfoContext(ctx, "plugin stopped",
		"processed", p.processed.Load(),
		"skipped", p.skipped.Load(),
		"failed", p.failed.Load(),
	)
	p.deriver = nil
	return nil
}

func (p *Plugin) health(ctx context.Context) plugin.HealthStatus {
	processed, skipped, failed := p.processed.Load(), p.skipped.Load(), p.failed.Load()

	status := health.Combine(
		health.RateCheck("serialization failures", failed, processed, maxFailureRate),
		health.RateCheck("events without timestamp", skipped, processed, maxSkipRate),
	)
	if status.Details == nil {
		status.Details = make(map[string]any, 4)
	}
	status.Details["dedup_mode"] = p.deriver.Mode().String()
	status.Details["processed"] = processed
	status.Details["skipped"] = skipped
	status.Details["failed"] = failed
	return status
}
