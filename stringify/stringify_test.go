package stringify

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderedMap is a minimal OrderedObject for tests.
type orderedMap struct {
	keys []string
	vals map[string]any
}

func newOrdered(kv ...any) *orderedMap {
	o := &orderedMap{vals: make(map[string]any)}
	for i := 0; i < len(kv); i += 2 {
		k := kv[i].(string)
		if _, ok := o.vals[k]; !ok {
			o.keys = append(o.keys, k)
		}
		o.vals[k] = kv[i+1]
	}
	return o
}

func (o *orderedMap) Keys() []string { return o.keys }

func (o *orderedMap) Get(k string) (any, bool) {
	v, ok := o.vals[k]
	return v, ok
}

func TestStringifyScalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"empty string", "", `""`},
		{"integer", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint8", uint8(255), "255"},
		{"float integral", 1.0, "1"},
		{"float fraction", 0.1, "0.1"},
		{"float32 widened", float32(0.1), "0.10000000149011612"},
		{"float32 integral", float32(16777216), "16777216"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"NaN", math.NaN(), "null"},
		{"positive infinity", math.Inf(1), "null"},
		{"negative infinity", math.Inf(-1), "null"},
		{"exponent threshold high", 1e21, "1e+21"},
		{"just below exponent threshold", 1e20, "100000000000000000000"},
		{"large integral", 123456789012345680000.0, "123456789012345680000"},
		{"exponent threshold low", 1e-7, "1e-7"},
		{"at low threshold", 1e-6, "0.000001"},
		{"small fraction", 2e-6, "0.000002"},
		{"huge", 1e300, "1e+300"},
		{"tiny", 1.5e-300, "1.5e-300"},
		{"int64 beyond float precision", int64(9007199254740993), "9007199254740992"},
		{"json number", json.Number("1.50"), "1.5"},
		{"json number overflow", json.Number("1e400"), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stringify(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringifyStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "hello", `"hello"`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"short escapes", "\b\f\n\r\t", `"\b\f\n\r\t"`},
		{"other controls", "\x00\x1f", `"\u0000\u001f"`},
		{"html is literal", "<a href='x'>&</a>", `"<a href='x'>&</a>"`},
		{"line separators are literal", "\u2028\u2029", "\"\u2028\u2029\""},
		{"delete is literal", "\x7f", "\"\x7f\""},
		{"non ascii", "é😀", `"é😀"`},
		{"invalid utf8", "a\xffb", "\"a\uFFFDb\""},
		{"wtf-8 high surrogate", "a\xed\xa0\x80b", `"a\ud800b"`},
		{"wtf-8 low surrogate", "\xed\xbf\xbf", `"\udfff"`},
		{"truncated surrogate", "\xed\xa0", "\"\uFFFD\uFFFD\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stringify(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Expected outputs were produced by node's JSON.stringify.
func TestStringifyMatchesJavaScript(t *testing.T) {
	obj := newOrdered(
		"a", 1e21,
		"b", 1e-7,
		"c", math.Copysign(0, -1),
		"d", 123456789012345680000.0,
		"e", 0.1,
		"f", " \x1f\b\t\"\\é😀",
		"g", 1.0,
		"h", 2e-6,
		"i", 1e300,
	)

	got, err := Stringify(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1e+21,"b":1e-7,"c":0,"d":123456789012345680000,"e":0.1,"f":" \u001f\b\t\"\\é😀","g":1,"h":0.000002,"i":1e+300}`, got)
}

func TestStringifyKeyOrder(t *testing.T) {
	t.Run("insertion order kept for named keys", func(t *testing.T) {
		got, err := Stringify(newOrdered("zeta", 1, "alpha", 2, "mid", 3))
		require.NoError(t, err)
		assert.Equal(t, `{"zeta":1,"alpha":2,"mid":3}`, got)
	})

	t.Run("array index keys first", func(t *testing.T) {
		got, err := Stringify(newOrdered(
			"10", 1, "9", 2, "01", 3, "4294967295", 4, "4294967294", 5, "-1", 6,
		))
		require.NoError(t, err)
		assert.Equal(t, `{"9":2,"10":1,"4294967294":5,"01":3,"4294967295":4,"-1":6}`, got)
	})

	t.Run("go maps are sorted", func(t *testing.T) {
		got, err := Stringify(map[string]any{"b": 1, "a": 2, "2": 3, "10": 4})
		require.NoError(t, err)
		assert.Equal(t, `{"2":3,"10":4,"a":2,"b":1}`, got)
	})
}

func TestStringifyNested(t *testing.T) {
	value := newOrdered(
		"$current_url", "https://example.com/?a=1&b=<2>",
		"items", []any{1, true, nil, "x"},
		"nested", newOrdered("z", 0.000001, "2", "two", "1", "one"),
		"empty", []any{},
		"none", (*orderedMap)(nil),
	)

	got, err := Stringify(value)
	require.NoError(t, err)
	assert.Equal(t, `{"$current_url":"https://example.com/?a=1&b=<2>","items":[1,true,null,"x"],"nested":{"1":"one","2":"two","z":0.000001},"empty":[],"none":null}`, got)
}

func TestStringifyFallback(t *testing.T) {
	type point struct {
		Y  float64 `json:"y"`
		X  float64 `json:"x"`
		ID string  `json:"id,omitempty"`
	}

	t.Run("struct keeps field order", func(t *testing.T) {
		got, err := Stringify(point{Y: 2.5, X: 1})
		require.NoError(t, err)
		assert.Equal(t, `{"y":2.5,"x":1}`, got)
	})

	t.Run("typed slice", func(t *testing.T) {
		got, err := Stringify([]string{"a", "<b>"})
		require.NoError(t, err)
		assert.Equal(t, `["a","<b>"]`, got)
	})

	t.Run("time value", func(t *testing.T) {
		ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		got, err := Stringify(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2020-01-01T00:00:00Z"`, got)
	})
}

func TestStringifyErrors(t *testing.T) {
	t.Run("channel", func(t *testing.T) {
		_, err := Stringify(map[string]any{"c": make(chan int)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupported))
	})

	t.Run("function", func(t *testing.T) {
		_, err := Stringify([]any{func() {}})
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("malformed json number", func(t *testing.T) {
		_, err := Stringify(json.Number("12abc"))
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("cycle", func(t *testing.T) {
		m := map[string]any{}
		m["self"] = m
		_, err := Stringify(m)
		assert.ErrorIs(t, err, ErrTooDeep)
	})
}

func TestAppend(t *testing.T) {
	dst := []byte("prefix_")
	out, err := Append(dst, []any{"x"})
	require.NoError(t, err)
	assert.Equal(t, `prefix_["x"]`, string(out))

	out, err = Append([]byte("keep"), make(chan int))
	require.Error(t, err)
	assert.Equal(t, "keep", string(out))
}

func TestPropertyOrder(t *testing.T) {
	assert.Equal(t, []string{"0", "3", "a", "00"}, PropertyOrder([]string{"a", "3", "00", "0"}))
	assert.Empty(t, PropertyOrder(nil))
}
