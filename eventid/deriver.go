package eventid

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zero-day-ai/unduplicates/event"
	"github.com/zero-day-ai/unduplicates/stringify"
)

// NamespaceOID prefixes every digest input. It is the RFC 4122 OID namespace
// in its textual form. Changing it changes every identifier ever issued.
const NamespaceOID = "6ba7b812-9dad-11d1-80b4-00c04fd430c8"

var (
	// ErrMissingTimestamp means the event has no timestamp and was not
	// assigned an identifier.
	ErrMissingTimestamp = errors.New("event has no timestamp")

	// ErrSerialization means the property set could not be serialized.
	ErrSerialization = errors.New("failed to serialize event properties")

	// ErrNilEvent is returned when no event is given.
	ErrNilEvent = errors.New("event is nil")
)

// Generator derives identifiers for events.
type Generator interface {
	// Generate returns the identifier for ev.
	//
	// Returns ErrMissingTimestamp when ev has no timestamp and
	// ErrSerialization when its properties cannot be serialized.
	Generate(ev *event.PluginEvent) (uuid.UUID, error)
}

// Deriver implements Generator for a fixed Mode.
//
// Derivation:
//  1. Build "<NamespaceOID>_<team_id>_<distinct_id>_<event>_<timestamp>",
//     appending "_<properties JSON>" in AllProperties mode. Missing fields
//     read "undefined" and null ones "null"
//  2. SHA-1 the UTF-8 bytes
//  3. Keep the first 16 bytes
//  4. Set the version nibble to 5 and the variant bits to 10
//
// A Deriver holds no mutable state and is safe for concurrent use.
type Deriver struct {
	mode Mode
}

// NewDeriver creates a Deriver for mode.
func NewDeriver(mode Mode) *Deriver {
	return &Deriver{mode: mode}
}

// Mode returns the mode the Deriver was created with.
func (d *Deriver) Mode() Mode {
	return d.mode
}

// Generate derives the identifier for ev.
func (d *Deriver) Generate(ev *event.PluginEvent) (uuid.UUID, error) {
	return Derive(ev, d.mode)
}

// Derive returns the identifier for ev under mode. Any identifier already
// stored in ev.UUID is ignored.
func Derive(ev *event.PluginEvent, mode Mode) (uuid.UUID, error) {
	input, err := Input(ev, mode)
	if err != nil {
		return uuid.Nil, err
	}
	sum := sha1.Sum([]byte(input))
	return FromDigest(sum[:]), nil
}

// Apply derives the identifier for ev and stores it in ev.UUID.
// On error ev is returned unchanged together with the error.
func Apply(ev *event.PluginEvent, mode Mode) (*event.PluginEvent, error) {
	id, err := Derive(ev, mode)
	if err != nil {
		return ev, err
	}
	ev.UUID = id.String()
	return ev, nil
}

// Input returns the exact string that is hashed for ev under mode.
func Input(ev *event.PluginEvent, mode Mode) (string, error) {
	if ev == nil {
		return "", ErrNilEvent
	}
	if !ev.HasTimestamp() {
		return "", ErrMissingTimestamp
	}

	var b strings.Builder
	b.WriteString(NamespaceOID)
	b.WriteByte('_')
	b.WriteString(interpolate(ev.Presence.TeamID, ev.TeamID == 0, strconv.FormatInt(ev.TeamID, 10)))
	b.WriteByte('_')
	b.WriteString(interpolate(ev.Presence.DistinctID, ev.DistinctID == "", ev.DistinctID))
	b.WriteByte('_')
	b.WriteString(interpolate(ev.Presence.Event, ev.Event == "", ev.Event))
	b.WriteByte('_')
	b.WriteString(ev.Timestamp)

	if mode == AllProperties {
		props, err := serializeProperties(ev)
		if err != nil {
			return "", err
		}
		b.WriteByte('_')
		b.WriteString(props)
	}

	return b.String(), nil
}

// FromDigest turns the first 16 bytes of a digest into a version 5, RFC 4122
// variant UUID. Shorter digests are zero padded.
func FromDigest(sum []byte) uuid.UUID {
	var id uuid.UUID
	copy(id[:], sum)
	id[6] = (id[6] & 0x0f) | 0x50
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// interpolate renders a field the way a template literal does: missing
// fields as "undefined", null ones as "null".
func interpolate(state event.FieldState, isZero bool, value string) string {
	if state.HasValue(isZero) {
		return value
	}
	if state == event.FieldNull {
		return "null"
	}
	return stringify.Undefined
}

// serializeProperties renders the property set. A missing set renders as
// "undefined" and a null one as "null".
func serializeProperties(ev *event.PluginEvent) (string, error) {
	if ev.Properties == nil {
		if ev.Presence.Properties == event.FieldNull {
			return "null", nil
		}
		return stringify.Undefined, nil
	}
	s, err := stringify.Stringify(ev.Properties)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return s, nil
}
