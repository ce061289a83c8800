// Package schema provides a small JSON Schema model used to describe and
// validate plugin configuration.
//
// Only the keywords plugin configuration needs are supported: type (string,
// number, boolean, object), properties, required, enum, default and the string
// length and pattern constraints.
//
//	config := schema.Object(map[string]schema.JSON{
//		"dedupMode": schema.Enum("Event and Timestamp", "All Properties"),
//	})
//
//	err := config.Validate(map[string]any{"dedupMode": "All Properties"}) // nil
//	err = config.Validate(map[string]any{"dedupMode": "Everything"})      // error
//
// Keys that the schema does not describe are accepted as-is; hosts commonly
// pass settings meant for other plugins in the same map. A nil value for a
// required key counts as missing.
package schema
