// Package unduplicates provides an event-pipeline plugin that stamps every
// event with a deterministic, content-derived UUID so a downstream store can
// collapse duplicate submissions of the same logical event.
//
// # Core Concepts
//
// The identifier is a version 5 layout UUID computed from the event itself.
// Two dedup modes control which fields take part:
//
//   - "Event and Timestamp": team id, distinct id, event name and timestamp
//   - "All Properties": the same fields plus the serialized property set
//
// Events without a timestamp are passed through untouched and logged.
// The derivation itself lives in package eventid; this package adapts it to a
// pipeline host through package plugin.
//
// # Getting Started
//
//	p, err := unduplicates.New(
//		unduplicates.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := p.Setup(ctx, map[string]any{"dedupMode": "All Properties"}); err != nil {
//		log.Fatal(err)
//	}
//	defer p.Teardown(ctx)
//
//	ev, err = p.ProcessEvent(ctx, ev)
//	// ev.UUID is now set
//
// # Configuration
//
// The accepted configuration is declared in the embedded plugin.yaml manifest
// and exposed through ConfigSchema. A missing dedupMode falls back to the
// manifest default, "Event and Timestamp". Any other value is rejected by
// Setup with an error of kind KindConfiguration.
//
// # Observability
//
// Each call opens an OpenTelemetry span named "unduplicates.process_event" and
// records the "unduplicates.events.processed" counter and the
// "unduplicates.derive.duration" histogram. Without WithTracer and WithMeter
// the no-op implementations are used.
//
// # Error Handling
//
// Errors returned by the plugin are *Error values carrying the failed
// operation and a kind, and they unwrap to the package sentinels:
//
//	if _, err := p.ProcessEvent(ctx, ev); errors.Is(err, unduplicates.ErrSerialization) {
//		// properties could not be serialized
//	}
package unduplicates
