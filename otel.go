package unduplicates

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/unduplicates/eventid"
)

// Span, instrument and attribute names.
const (
	instrumentationName = "github.com/zero-day-ai/unduplicates"

	spanProcessEvent = "unduplicates.process_event"

	metricEventsProcessed = "unduplicates.events.processed"
	metricDeriveDuration  = "unduplicates.derive.duration"

	attrTeamID  = "team_id"
	attrMode    = "dedup.mode"
	attrSkipped = "dedup.skipped"
	attrOutcome = "outcome"
)

// Values of the outcome attribute.
const (
	outcomeDerived = "derived"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// instruments holds the OpenTelemetry metric instruments for the plugin.
// These are created once in New and shared by all events.
type instruments struct {
	// processed counts events by mode and outcome
	processed metric.Int64Counter

	// duration records identifier derivation time in milliseconds
	duration metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	inst := &instruments{}
	var err error

	inst.processed, err = meter.Int64Counter(
		metricEventsProcessed,
		metric.WithDescription("Number of events seen by the dedup plugin"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create processed counter: %w", err)
	}

	inst.duration, err = meter.Float64Histogram(
		metricDeriveDuration,
		metric.WithDescription("Identifier derivation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return inst, nil
}

// record counts one event. The duration is only recorded for events that
// were hashed.
func (i *instruments) record(ctx context.Context, mode eventid.Mode, outcome string, durationMs float64) {
	i.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMode, mode.String()),
		attribute.String(attrOutcome, outcome),
	))

	if outcome == outcomeDerived {
		i.duration.Record(ctx, durationMs, metric.WithAttributes(
			attribute.String(attrMode, mode.String()),
		))
	}
}
