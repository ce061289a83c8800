// Package stringify renders arbitrary property values as JSON text that is
// byte-identical to ECMAScript's JSON.stringify.
//
// Event identifiers in "All Properties" mode hash the serialized property set,
// and identifiers produced by other implementations of the plugin were computed
// from JSON.stringify output. Any difference in number formatting, string
// escaping or key order changes the identifier, so this package does not use
// encoding/json for output.
//
// # Value Mapping
//
// Values are encoded as a tagged variant:
//   - nil: null
//   - bool: true or false
//   - numbers: ECMAScript Number::toString of the float64 value (integers and
//     float32 are widened to float64 first, NaN and infinities become null,
//     -0 becomes 0)
//   - string: quoted, escaping only '"', '\' and control characters below U+0020;
//     invalid UTF-8 becomes U+FFFD except WTF-8 surrogates, which are written
//     as lowercase \udxxx escapes
//   - []any: array
//   - OrderedObject: object, keys in ECMAScript property order
//   - map[string]any: object, keys sorted (Go maps carry no insertion order)
//
// Anything else is passed through encoding/json first and the result is
// re-encoded with the rules above. Values encoding/json rejects (channels,
// functions, complex numbers) fail with ErrUnsupported.
//
// # Key Order
//
// ECMAScript objects list integer-like keys ("0" through "4294967294") first, in
// ascending numeric order, followed by all other keys in insertion order.
// OrderedObject values follow the same rule:
//
//	{"b":1,"2":2,"a":3,"1":4}  ->  {"1":4,"2":2,"b":1,"a":3}
package stringify
