package plugin

import (
	"context"
	"errors"

	"github.com/zero-day-ai/unduplicates/event"
	"github.com/zero-day-ai/unduplicates/schema"
)

var (
	// ErrNotInitialized is returned when events arrive before Setup.
	ErrNotInitialized = errors.New("plugin not initialized")

	// ErrAlreadyInitialized is returned by a second Setup call.
	ErrAlreadyInitialized = errors.New("plugin already initialized")
)

// Plugin is an event-processing plugin driven by a pipeline host.
//
// The host calls Setup once with the plugin's configuration, then
// ProcessEvent for each event, possibly from many goroutines, and finally
// Teardown.
type Plugin interface {
	// Name returns the unique identifier for the plugin.
	Name() string

	// Version returns the semantic version of the plugin.
	Version() string

	// Description returns a human-readable description of the plugin's purpose.
	Description() string

	// ConfigSchema describes the configuration map Setup accepts.
	ConfigSchema() schema.JSON

	// Setup validates config against ConfigSchema and prepares the plugin.
	Setup(ctx context.Context, config map[string]any) error

	// ProcessEvent handles one event and returns the event to pass on.
	ProcessEvent(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error)

	// Teardown releases whatever Setup acquired.
	Teardown(ctx context.Context) error

	// Health returns the current health status of the plugin.
	Health(ctx context.Context) HealthStatus
}

// Descriptor describes a plugin's metadata.
type Descriptor struct {
	Name         string      `json:"name"`
	Version      string      `json:"version"`
	Description  string      `json:"description,omitempty"`
	ConfigSchema schema.JSON `json:"config_schema"`
}

// ToDescriptor extracts the metadata of p.
func ToDescriptor(p Plugin) Descriptor {
	return Descriptor{
		Name:         p.Name(),
		Version:      p.Version(),
		Description:  p.Description(),
		ConfigSchema: p.ConfigSchema(),
	}
}
