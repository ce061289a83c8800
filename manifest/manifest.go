// Package manifest loads plugin.yaml files. A manifest names a plugin and
// declares the configuration fields a host may set for it.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/unduplicates/schema"
)

// Field types a config entry may declare.
const (
	TypeString = "string"
	TypeChoice = "choice"
	TypeNumber = "number"
	TypeBool   = "bool"
)

// ErrInvalid is wrapped by every manifest validation failure.
var ErrInvalid = errors.New("invalid manifest")

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	// Categorization
	Tags []string `yaml:"tags,omitempty"`

	Config []Field `yaml:"config,omitempty"`

	// Additional metadata
	Author     string `yaml:"author,omitempty"`
	License    string `yaml:"license,omitempty"`
	Repository string `yaml:"repository,omitempty"`
}

// Field is one host-settable configuration entry.
type Field struct {
	Key      string   `yaml:"key"`
	Name     string   `yaml:"name,omitempty"`
	Type     string   `yaml:"type"`
	Choices  []string `yaml:"choices,omitempty"`
	Default  any      `yaml:"default,omitempty"`
	Hint     string   `yaml:"hint,omitempty"`
	Required bool     `yaml:"required,omitempty"`
}

// Load reads and parses a plugin manifest from the given path.
// If the path is a directory, it looks for plugin.yaml or plugin.yml in that directory.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	manifestPath := path
	if info.IsDir() {
		manifestPath = ""
		for _, name := range []string{"plugin.yaml", "plugin.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				manifestPath = candidate
				break
			}
		}
		if manifestPath == "" {
			return nil, fmt.Errorf("no plugin.yaml or plugin.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest is complete and that every field's
// default fits its declared type.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalid)
	}

	seen := make(map[string]bool, len(m.Config))
	for i, f := range m.Config {
		if f.Key == "" {
			return fmt.Errorf("%w: config[%d]: key is required", ErrInvalid, i)
		}
		if seen[f.Key] {
			return fmt.Errorf("%w: config key %s is declared twice", ErrInvalid, f.Key)
		}
		seen[f.Key] = true

		switch f.Type {
		case TypeString, TypeNumber, TypeBool:
		case TypeChoice:
			if len(f.Choices) == 0 {
				return fmt.Errorf("%w: config key %s: choice field has no choices", ErrInvalid, f.Key)
			}
		default:
			return fmt.Errorf("%w: config key %s: unknown type %q", ErrInvalid, f.Key, f.Type)
		}

		if f.Default != nil {
			if err := f.schema().Validate(f.Default); err != nil {
				return fmt.Errorf("%w: config key %s: default: %v", ErrInvalid, f.Key, err)
			}
		}
	}
	return nil
}

// Field returns the config field with the given key.
func (m *Manifest) Field(key string) (Field, bool) {
	for _, f := range m.Config {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// ConfigSchema describes the manifest's config fields as an object schema.
// Fields with a default are never required, since Resolve fills them in.
func (m *Manifest) ConfigSchema() schema.JSON {
	props := make(map[string]schema.JSON, len(m.Config))
	var required []string
	for _, f := range m.Config {
		props[f.Key] = f.schema()
		if f.Required && f.Default == nil {
			required = append(required, f.Key)
		}
	}

	s := schema.Object(props, required...)
	s.Title = m.Name
	s.Description = m.Description
	return s
}

// Resolve returns a copy of config with defaults filled in for missing or
// nil keys. Keys the manifest does not declare are kept.
func (m *Manifest) Resolve(config map[string]any) map[string]any {
	out := make(map[string]any, len(config)+len(m.Config))
	for k, v := range config {
		out[k] = v
	}
	for _, f := range m.Config {
		if v, ok := out[f.Key]; (!ok || v == nil) && f.Default != nil {
			out[f.Key] = f.Default
		}
	}
	return out
}

func (f Field) schema() schema.JSON {
	var s schema.JSON
	switch f.Type {
	case TypeChoice:
		choices := make([]any, len(f.Choices))
		for i, c := range f.Choices {
			choices[i] = c
		}
		s = schema.Enum(choices...)
		s.Type = "string"
	case TypeNumber:
		s = schema.Number()
	case TypeBool:
		s = schema.Bool()
	default:
		s = schema.String()
	}
	s.Title = f.Name
	s.Description = f.Hint
	s.Default = f.Default
	return s
}
