package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/zero-day-ai/unduplicates/event"
	"github.com/zero-day-ai/unduplicates/schema"
)

// ProcessEventFunc handles one event.
type ProcessEventFunc func(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error)

// SetupFunc is called once with the validated configuration.
type SetupFunc func(ctx context.Context, config map[string]any) error

// TeardownFunc is called when the host unloads the plugin.
type TeardownFunc func(ctx context.Context) error

// HealthFunc reports health once the plugin is set up.
type HealthFunc func(ctx context.Context) HealthStatus

// Config holds the configuration for building a plugin.
// Use NewConfig to create a new configuration, then use the setter methods
// to configure the plugin before calling New to build it.
type Config struct {
	name         string
	version      string
	description  string
	configSchema schema.JSON
	processEvent ProcessEventFunc
	setupFunc    SetupFunc
	teardownFunc TeardownFunc
	healthFunc   HealthFunc
}

// NewConfig creates a new plugin configuration with no-op lifecycle hooks.
func NewConfig() *Config {
	return &Config{
		configSchema: schema.Object(map[string]schema.JSON{}),
		setupFunc: func(ctx context.Context, config map[string]any) error {
			return nil
		},
		teardownFunc: func(ctx context.Context) error {
			return nil
		},
		healthFunc: func(ctx context.Context) HealthStatus {
			return Healthy("plugin operational", nil)
		},
	}
}

// SetName sets the plugin name.
func (c *Config) SetName(name string) {
	c.name = name
}

// SetVersion sets the plugin version.
func (c *Config) SetVersion(version string) {
	c.version = version
}

// SetDescription sets the plugin description.
func (c *Config) SetDescription(desc string) {
	c.description = desc
}

// SetConfigSchema sets the schema Setup validates configuration against.
func (c *Config) SetConfigSchema(s schema.JSON) {
	c.configSchema = s
}

// SetProcessEventFunc sets the per-event handler. Required.
func (c *Config) SetProcessEventFunc(fn ProcessEventFunc) {
	c.processEvent = fn
}

// SetSetupFunc sets the setup hook.
func (c *Config) SetSetupFunc(fn SetupFunc) {
	c.setupFunc = fn
}

// SetTeardownFunc sets the teardown hook.
func (c *Config) SetTeardownFunc(fn TeardownFunc) {
	c.teardownFunc = fn
}

// SetHealthFunc sets the health hook used after Setup.
func (c *Config) SetHealthFunc(fn HealthFunc) {
	c.healthFunc = fn
}

// New creates a new Plugin from the configuration.
// Returns an error if the configuration is invalid.
func New(cfg *Config) (Plugin, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.name == "" {
		return nil, fmt.Errorf("plugin name is required")
	}

	if cfg.version == "" {
		return nil, fmt.Errorf("plugin version is required")
	}

	if cfg.processEvent == nil {
		return nil, fmt.Errorf("process event handler is required")
	}

	return &sdkPlugin{
		name:         cfg.name,
		version:      cfg.version,
		description:  cfg.description,
		configSchema: cfg.configSchema,
		processEvent: cfg.processEvent,
		setupFunc:    cfg.setupFunc,
		teardownFunc: cfg.teardownFunc,
		healthFunc:   cfg.healthFunc,
	}, nil
}

// sdkPlugin is the private implementation of the Plugin interface.
type sdkPlugin struct {
	name         string
	version      string
	description  string
	configSchema schema.JSON
	processEvent ProcessEventFunc
	setupFunc    SetupFunc
	teardownFunc TeardownFunc
	healthFunc   HealthFunc
	initialized  bool
	mu           sync.RWMutex
}

func (p *sdkPlugin) Name() string {
	return p.name
}

func (p *sdkPlugin) Version() string {
	return p.version
}

func (p *sdkPlugin) Description() string {
	return p.description
}

func (p *sdkPlugin) ConfigSchema() schema.JSON {
	return p.configSchema
}

// Setup validates config and runs the setup hook.
func (p *sdkPlugin) Setup(ctx context.Context, config map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return ErrAlreadyInitialized
	}

	if config == nil {
		config = map[string]any{}
	}
	if err := p.configSchema.Validate(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := p.setupFunc(ctx, config); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	p.initialized = true
	return nil
}

// ProcessEvent hands ev to the handler. Calls may run concurrently.
func (p *sdkPlugin) ProcessEvent(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return ev, ErrNotInitialized
	}
	if ev == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}

	return p.processEvent(ctx, ev)
}

// Teardown runs the teardown hook.
func (p *sdkPlugin) Teardown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return ErrNotInitialized
	}

	if err := p.teardownFunc(ctx); err != nil {
		return fmt.Errorf("teardown failed: %w", err)
	}

	p.initialized = false
	return nil
}

// Health returns the current health status of the plugin.
func (p *sdkPlugin) Health(ctx context.Context) HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return Unhealthy("plugin not initialized", nil)
	}

	return p.healthFunc(ctx)
}
