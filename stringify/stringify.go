package stringify

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf8"
)

// MaxDepth bounds the nesting of arrays and objects. Self-referencing maps
// and slices hit this limit instead of recursing forever.
const MaxDepth = 1000

// Undefined is the text ECMAScript template literals produce for an absent
// value. It is not valid JSON and is never returned by Stringify.
const Undefined = "undefined"

var (
	// ErrUnsupported indicates a value that has no JSON representation.
	ErrUnsupported = errors.New("stringify: unsupported value")

	// ErrTooDeep indicates nesting beyond MaxDepth, usually a cycle.
	ErrTooDeep = errors.New("stringify: maximum nesting depth exceeded")
)

// OrderedObject is an object whose keys keep their insertion order.
type OrderedObject interface {
	// Keys returns the keys in insertion order.
	Keys() []string

	// Get returns the value stored under key.
	Get(key string) (any, bool)
}

// Stringify returns the JSON.stringify rendering of v.
func Stringify(v any) (string, error) {
	b, err := Append(nil, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Append appends the JSON.stringify rendering of v to dst.
func Append(dst []byte, v any) ([]byte, error) {
	e := encoder{buf: dst}
	if err := e.encode(v, 0); err != nil {
		return dst, err
	}
	return e.buf, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) encode(v any, depth int) error {
	if depth > MaxDepth {
		return ErrTooDeep
	}

	switch x := v.(type) {
	case nil:
		e.buf = append(e.buf, "null"...)
	case bool:
		e.buf = strconv.AppendBool(e.buf, x)
	case string:
		e.buf = appendString(e.buf, x)
	case float64:
		e.buf = appendNumber(e.buf, x)
	case float32:
		e.buf = appendNumber(e.buf, float64(x))
	case int:
		e.buf = appendNumber(e.buf, float64(x))
	case int8:
		e.buf = appendNumber(e.buf, float64(x))
	case int16:
		e.buf = appendNumber(e.buf, float64(x))
	case int32:
		e.buf = appendNumber(e.buf, float64(x))
	case int64:
		e.buf = appendNumber(e.buf, float64(x))
	case uint:
		e.buf = appendNumber(e.buf, float64(x))
	case uint8:
		e.buf = appendNumber(e.buf, float64(x))
	case uint16:
		e.buf = appendNumber(e.buf, float64(x))
	case uint32:
		e.buf = appendNumber(e.buf, float64(x))
	case uint64:
		e.buf = appendNumber(e.buf, float64(x))
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("%w: number %q: %v", ErrUnsupported, string(x), err)
		}
		e.buf = appendNumber(e.buf, f)
	case []any:
		if x == nil {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		return e.encodeArray(x, depth)
	case map[string]any:
		if x == nil {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		return e.encodeMap(x, depth)
	case OrderedObject:
		if isNilPointer(x) {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		return e.encodeObject(x, depth)
	default:
		return e.encodeFallback(v, depth)
	}
	return nil
}

func (e *encoder) encodeArray(items []any, depth int) error {
	e.buf = append(e.buf, '[')
	for i, item := range items {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.encode(item, depth+1); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, ']')
	return nil
}

func (e *encoder) encodeMap(m map[string]any, depth int) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.buf = append(e.buf, '{')
	for i, k := range PropertyOrder(keys) {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = appendString(e.buf, k)
		e.buf = append(e.buf, ':')
		if err := e.encode(m[k], depth+1); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *encoder) encodeObject(obj OrderedObject, depth int) error {
	e.buf = append(e.buf, '{')
	for i, k := range PropertyOrder(obj.Keys()) {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		val, _ := obj.Get(k)
		e.buf = appendString(e.buf, k)
		e.buf = append(e.buf, ':')
		if err := e.encode(val, depth+1); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

// encodeFallback routes structs, typed slices/maps and json.Marshaler values
// through encoding/json, then re-encodes the decoded tree.
func (e *encoder) encodeFallback(v any, depth int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %T: %v", ErrUnsupported, v, err)
	}

	decoded, err := Parse(data, nil)
	if err != nil {
		return fmt.Errorf("%w: %T: %v", ErrUnsupported, v, err)
	}
	return e.encode(decoded, depth)
}

// PropertyOrder returns keys in ECMAScript own-property order: array-index
// keys ascending, then the rest in the order given.
func PropertyOrder(keys []string) []string {
	type indexKey struct {
		key string
		n   uint64
	}

	var indexed []indexKey
	rest := make([]string, 0, len(keys))
	for _, k := range keys {
		if n, ok := arrayIndex(k); ok {
			indexed = append(indexed, indexKey{key: k, n: n})
			continue
		}
		rest = append(rest, k)
	}
	if len(indexed) == 0 {
		return rest
	}

	sort.Slice(indexed, func(i, j int) bool { return indexed[i].n < indexed[j].n })
	ordered := make([]string, 0, len(keys))
	for _, ik := range indexed {
		ordered = append(ordered, ik.key)
	}
	return append(ordered, rest...)
}

// arrayIndex reports whether k is a canonical array index: a decimal integer
// in [0, 2^32-2] with no sign and no leading zeros.
func arrayIndex(k string) (uint64, bool) {
	if k == "" || len(k) > 10 || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	if err != nil || n > 4294967294 {
		return 0, false
	}
	return n, true
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

const hexDigits = "0123456789abcdef"

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				dst = append(dst, '\\', '"')
			case '\\':
				dst = append(dst, '\\', '\\')
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				if c < 0x20 {
					dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				} else {
					dst = append(dst, c)
				}
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			if sr, ok := surrogateAt(s, i); ok {
				dst = append(dst, '\\', 'u', 'd', hexDigits[sr>>8&0xf], hexDigits[sr>>4&0xf], hexDigits[sr&0xf])
				i += 3
				continue
			}
			dst = utf8.AppendRune(dst, utf8.RuneError)
			i++
			continue
		}
		dst = append(dst, s[i:i+size]...)
		i += size
	}
	return append(dst, '"')
}
