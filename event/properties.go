package event

import (
	"fmt"

	"github.com/zero-day-ai/unduplicates/stringify"
)

// Properties is a string-keyed map that remembers insertion order.
//
// Decoding from JSON keeps document order at every nesting level: nested
// objects become *Properties, arrays become []any and numbers json.Number.
// Escaped lone surrogates are kept, see stringify.Parse.
// A key that appears twice keeps its first position and its last value, as
// JSON.parse does.
//
// The zero value is an empty map ready to use. Properties is not safe for
// concurrent mutation.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties creates a Properties from alternating key/value arguments.
// It panics if a key is not a string or a value is missing.
func NewProperties(kv ...any) *Properties {
	if len(kv)%2 != 0 {
		panic("event: NewProperties requires key/value pairs")
	}
	p := &Properties{}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("event: property key must be a string, got %T", kv[i]))
		}
		p.Set(key, kv[i+1])
	}
	return p
}

// Set stores value under key. Existing keys keep their position.
func (p *Properties) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (p *Properties) Delete(key string) bool {
	if p == nil {
		return false
	}
	if _, exists := p.values[key]; !exists {
		return false
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns a copy of the keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (p *Properties) Range(fn func(key string, value any) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy. Nested *Properties, []any and map[string]any
// values are copied; other values are shared.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	c := &Properties{
		keys:   make([]string, len(p.keys)),
		values: make(map[string]any, len(p.values)),
	}
	copy(c.keys, p.keys)
	for k, v := range p.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

// MarshalJSON encodes the map with the same rules used for hashing.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return stringify.Append(nil, p)
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	v, err := stringify.Parse(data, func() stringify.ObjectBuilder { return &Properties{} })
	if err != nil {
		return fmt.Errorf("failed to decode properties: %w", err)
	}
	switch obj := v.(type) {
	case nil:
		*p = Properties{}
	case *Properties:
		*p = *obj
	default:
		return fmt.Errorf("properties must be a JSON object, got %T", v)
	}
	return nil
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Properties:
		return x.Clone()
	case []any:
		if x == nil {
			return x
		}
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = cloneValue(item)
		}
		return items
	case map[string]any:
		if x == nil {
			return x
		}
		m := make(map[string]any, len(x))
		for k, item := range x {
			m[k] = cloneValue(item)
		}
		return m
	default:
		return v
	}
}
