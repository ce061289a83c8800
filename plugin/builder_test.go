package plugin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/unduplicates/event"
	"github.com/zero-day-ai/unduplicates/schema"
)

func passThrough(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
	return ev, nil
}

func newTestConfig() *Config {
	cfg := NewConfig()
	cfg.SetName("testPlugin")
	cfg.SetVersion("1.0.0")
	cfg.SetDescription("A test plugin")
	cfg.SetProcessEventFunc(passThrough)
	return cfg
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "object", cfg.configSchema.Type)
	assert.NoError(t, cfg.setupFunc(context.Background(), nil))
	assert.NoError(t, cfg.teardownFunc(context.Background()))
	assert.True(t, cfg.healthFunc(context.Background()).IsHealthy())
	assert.Nil(t, cfg.processEvent)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func() *Config
		wantErr string
	}{
		{"nil config", func() *Config { return nil }, "config cannot be nil"},
		{"missing name", func() *Config {
			cfg := newTestConfig()
			cfg.SetName("")
			return cfg
		}, "plugin name is required"},
		{"missing version", func() *Config {
			cfg := newTestConfig()
			cfg.SetVersion("")
			return cfg
		}, "plugin version is required"},
		{"missing handler", func() *Config {
			cfg := newTestConfig()
			cfg.SetProcessEventFunc(nil)
			return cfg
		}, "process event handler is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg())
			assert.Nil(t, p)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPluginMetadata(t *testing.T) {
	cfg := newTestConfig()
	cfg.SetConfigSchema(schema.Object(map[string]schema.JSON{
		"mode": schema.Enum("a", "b"),
	}))

	p, err := New(cfg)
	require.NoError(t, err)

	d := ToDescriptor(p)
	assert.Equal(t, "testPlugin", d.Name)
	assert.Equal(t, "1.0.0", d.Version)
	assert.Equal(t, "A test plugin", d.Description)
	assert.Contains(t, d.ConfigSchema.Properties, "mode")
}

func TestPluginLifecycle(t *testing.T) {
	ctx := context.Background()
	var gotConfig map[string]any
	tornDown := false

	cfg := newTestConfig()
	cfg.SetSetupFunc(func(ctx context.Context, config map[string]any) error {
		gotConfig = config
		return nil
	})
	cfg.SetTeardownFunc(func(ctx context.Context) error {
		tornDown = true
		return nil
	})

	p, err := New(cfg)
	require.NoError(t, err)

	ev := &event.PluginEvent{Event: "test"}

	out, err := p.ProcessEvent(ctx, ev)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Same(t, ev, out)
	assert.True(t, p.Health(ctx).IsUnhealthy())
	assert.ErrorIs(t, p.Teardown(ctx), ErrNotInitialized)

	require.NoError(t, p.Setup(ctx, nil))
	assert.NotNil(t, gotConfig, "nil config is passed on as an empty map")
	assert.ErrorIs(t, p.Setup(ctx, nil), ErrAlreadyInitialized)
	assert.True(t, p.Health(ctx).IsHealthy())

	out, err = p.ProcessEvent(ctx, ev)
	require.NoError(t, err)
	assert.Same(t, ev, out)

	_, err = p.ProcessEvent(ctx, nil)
	assert.EqualError(t, err, "event cannot be nil")

	require.NoError(t, p.Teardown(ctx))
	assert.True(t, tornDown)

	_, err = p.ProcessEvent(ctx, ev)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestPluginSetupValidatesConfig(t *testing.T) {
	ctx := context.Background()
	called := false

	cfg := newTestConfig()
	cfg.SetConfigSchema(schema.Object(map[string]schema.JSON{
		"mode": schema.Enum("a", "b"),
	}, "mode"))
	cfg.SetSetupFunc(func(ctx context.Context, config map[string]any) error {
		called = true
		return nil
	})

	p, err := New(cfg)
	require.NoError(t, err)

	err = p.Setup(ctx, map[string]any{"mode": "c"})
	assert.ErrorContains(t, err, "invalid config")
	assert.False(t, called)

	err = p.Setup(ctx, map[string]any{})
	assert.ErrorContains(t, err, "required field mode is missing")

	require.NoError(t, p.Setup(ctx, map[string]any{"mode": "b"}))
	assert.True(t, called)
}

func TestPluginHookErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("setup", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.SetSetupFunc(func(ctx context.Context, config map[string]any) error { return boom })
		p, err := New(cfg)
		require.NoError(t, err)

		err = p.Setup(ctx, nil)
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "setup failed")
		assert.True(t, p.Health(ctx).IsUnhealthy())
	})

	t.Run("teardown", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.SetTeardownFunc(func(ctx context.Context) error { return boom })
		p, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, p.Setup(ctx, nil))

		err = p.Teardown(ctx)
		assert.ErrorIs(t, err, boom)
		assert.True(t, p.Health(ctx).IsHealthy(), "failed teardown keeps the plugin running")
	})

	t.Run("process", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.SetProcessEventFunc(func(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
			return ev, boom
		})
		p, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, p.Setup(ctx, nil))

		_, err = p.ProcessEvent(ctx, &event.PluginEvent{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestPluginCustomHealth(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig()
	cfg.SetHealthFunc(func(ctx context.Context) HealthStatus {
		return Degraded("slow", map[string]any{"lag": 3})
	})

	p, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, p.Setup(ctx, nil))

	h := p.Health(ctx)
	assert.True(t, h.IsDegraded())
	assert.Equal(t, "slow", h.Message)
	assert.Equal(t, 3, h.Details["lag"])
}

func TestPluginConcurrentProcessEvent(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	seen := 0

	cfg := newTestConfig()
	cfg.SetProcessEventFunc(func(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
		mu.Lock()
		seen++
		mu.Unlock()
		return ev, nil
	})

	p, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, p.Setup(ctx, nil))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.ProcessEvent(ctx, &event.PluginEvent{Event: "e"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, seen)
}
