// Package plugin provides a framework for building event-processing plugins.
//
// A Plugin is a component that:
//   - Has a unique name and version
//   - Declares the configuration it accepts as a JSON schema
//   - Is set up once, then transforms events one at a time
//   - Supports teardown and reports health status for monitoring
//
// # Creating a Plugin
//
// Plugins are created using the builder pattern with the Config type:
//
//	cfg := plugin.NewConfig()
//	cfg.SetName("tagger")
//	cfg.SetVersion("1.0.0")
//	cfg.SetConfigSchema(schema.Object(map[string]schema.JSON{
//	    "tag": schema.String(),
//	}, "tag"))
//
//	var tag string
//	cfg.SetSetupFunc(func(ctx context.Context, config map[string]any) error {
//	    tag = config["tag"].(string)
//	    return nil
//	})
//	cfg.SetProcessEventFunc(func(ctx context.Context, ev *event.PluginEvent) (*event.PluginEvent, error) {
//	    ev.Event = tag + ":" + ev.Event
//	    return ev, nil
//	})
//
//	p, err := plugin.New(cfg)
//
// # Lifecycle
//
// Setup validates the configuration map against the schema before calling
// the setup hook. ProcessEvent returns ErrNotInitialized until Setup has
// succeeded, and a second Setup returns ErrAlreadyInitialized. Teardown
// returns the plugin to the uninitialized state.
//
// ProcessEvent may be called from many goroutines; the builder holds a read
// lock around the handler so it never overlaps Setup or Teardown.
package plugin
