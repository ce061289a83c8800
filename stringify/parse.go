package stringify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ObjectBuilder receives the members of a decoded JSON object in document
// order.
type ObjectBuilder interface {
	Set(key string, value any)
}

// Parse decodes one JSON value the way JSON.parse does.
//
// Objects are built with newObject, or as an OrderedObject when newObject is
// nil. Arrays become []any and numbers json.Number. A key that appears twice
// keeps its first position and its last value.
//
// Escaped lone surrogates such as "\ud800" survive as WTF-8 bytes, which
// Append writes back as the same escape.
func Parse(data []byte, newObject func() ObjectBuilder) (any, error) {
	if newObject == nil {
		newObject = func() ObjectBuilder { return &object{values: make(map[string]any)} }
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := parser{data: data, dec: dec, newObject: newObject}

	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

type parser struct {
	data      []byte
	dec       *json.Decoder
	newObject func() ObjectBuilder
}

func (p *parser) value() (any, error) {
	start := p.dec.InputOffset()
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}

	switch x := tok.(type) {
	case string:
		return p.text(x, start), nil
	case json.Delim:
		return p.composite(x)
	}
	return tok, nil
}

func (p *parser) composite(delim json.Delim) (any, error) {
	switch delim {
	case '{':
		obj := p.newObject()
		for p.dec.More() {
			start := p.dec.InputOffset()
			kt, err := p.dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", kt)
			}
			key = p.text(key, start)
			val, err := p.value()
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			obj.Set(key, val)
		}
		if _, err := p.dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		items := make([]any, 0)
		for p.dec.More() {
			val, err := p.value()
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		if _, err := p.dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

// text re-reads the literal of a string token that encoding/json decoded with
// replacement characters, so escaped lone surrogates are not lost.
func (p *parser) text(s string, start int64) string {
	if !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}

	// Only separators and whitespace precede the opening quote.
	span := p.data[start:p.dec.InputOffset()]
	i := bytes.IndexByte(span, '"')
	j := bytes.LastIndexByte(span, '"')
	if i < 0 || j <= i {
		return s
	}
	if u, ok := unquote(span[i+1 : j]); ok {
		return u
	}
	return s
}

// unquote decodes the body of a JSON string literal. Surrogate pairs are
// joined; a lone surrogate is kept as its three-byte WTF-8 form.
func unquote(lit []byte) (string, bool) {
	buf := make([]byte, 0, len(lit))
	for i := 0; i < len(lit); {
		c := lit[i]
		if c != '\\' {
			r, size := utf8.DecodeRune(lit[i:])
			if r == utf8.RuneError && size == 1 {
				buf = utf8.AppendRune(buf, utf8.RuneError)
			} else {
				buf = append(buf, lit[i:i+size]...)
			}
			i += size
			continue
		}

		if i+1 >= len(lit) {
			return "", false
		}
		switch lit[i+1] {
		case '"', '\\', '/':
			buf = append(buf, lit[i+1])
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'u':
			r, ok := hex4(lit[i+2:])
			if !ok {
				return "", false
			}
			i += 6
			if !utf16.IsSurrogate(r) {
				buf = utf8.AppendRune(buf, r)
				continue
			}
			if r < 0xdc00 && i+1 < len(lit) && lit[i] == '\\' && lit[i+1] == 'u' {
				if lo, ok := hex4(lit[i+2:]); ok {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						buf = utf8.AppendRune(buf, pair)
						i += 6
						continue
					}
				}
			}
			buf = appendSurrogate(buf, r)
			continue
		default:
			return "", false
		}
		i += 2
	}
	return string(buf), true
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	n, err := strconv.ParseUint(string(b[:4]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// appendSurrogate writes r in WTF-8: the UTF-8 bit layout that UTF-8 itself
// forbids for surrogates.
func appendSurrogate(dst []byte, r rune) []byte {
	return append(dst, 0xed, 0x80|byte(r>>6)&0x3f, 0x80|byte(r)&0x3f)
}

// surrogateAt reports whether s[i:] starts with a WTF-8 encoded surrogate
// and returns it.
func surrogateAt(s string, i int) (rune, bool) {
	if i+2 >= len(s) || s[i] != 0xed || s[i+1] < 0xa0 || s[i+1] > 0xbf || s[i+2] < 0x80 || s[i+2] > 0xbf {
		return 0, false
	}
	return 0xd000 | rune(s[i+1]&0x3f)<<6 | rune(s[i+2]&0x3f), true
}

// object is the default ObjectBuilder.
type object struct {
	keys   []string
	values map[string]any
}

func (o *object) Set(key string, val any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = val
}

func (o *object) Keys() []string { return o.keys }

func (o *object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}
