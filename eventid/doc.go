// Package eventid derives deterministic identifiers for events.
//
// Two submissions of the same logical event get the same identifier, so a
// downstream store can treat equal identifiers as duplicates. The identifier is
// a SHA-1 digest of selected event fields, truncated to 16 bytes and shaped as
// a version 5 UUID:
//
//	xxxxxxxx-xxxx-5xxx-yxxx-xxxxxxxxxxxx   (y is one of 8, 9, a, b)
//
// # Modes
//
//   - EventAndTimestamp: team id, distinct id, event name and timestamp
//   - AllProperties: the above plus the JSON serialization of the properties
//
// The digest input is the namespace constant and the fields joined with
// underscores:
//
//	6ba7b812-9dad-11d1-80b4-00c04fd430c8_1_abc_test_2020-01-01T00:00:00Z
//
// Properties are serialized by package stringify, byte-compatible with
// JSON.stringify, and keep the key order the client sent.
//
// # Usage
//
//	d := eventid.NewDeriver(eventid.AllProperties)
//	id, err := d.Generate(ev)
//	switch {
//	case errors.Is(err, eventid.ErrMissingTimestamp):
//		// leave the event alone
//	case err != nil:
//		return err
//	}
//	ev.UUID = id.String()
//
// # Stability
//
// The output for a given input never changes: no randomness, no clock reads.
// The namespace constant, separators and serialization rules are part of the
// identifier format; changing any of them breaks deduplication against events
// that were already stored.
package eventid
