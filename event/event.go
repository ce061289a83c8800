package event

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/zero-day-ai/unduplicates/stringify"
)

// PluginEvent is an event record as the pipeline host hands it to plugins.
//
// The host owns the record. Plugins read the identifying fields and may set
// UUID; everything else passes through untouched.
type PluginEvent struct {
	// DistinctID identifies the user the event belongs to.
	DistinctID string `json:"distinct_id"`

	// IP is the client address, or nil when the host stripped it.
	IP *string `json:"ip"`

	// SiteURL is the URL of the instance that received the event.
	SiteURL string `json:"site_url"`

	// TeamID identifies the project (tenant).
	TeamID int64 `json:"team_id"`

	// Now is the ingestion time reported by the capture endpoint.
	Now string `json:"now"`

	// Event is the event name, e.g. "$pageview".
	Event string `json:"event"`

	// SentAt is the client send time, when the client reported one.
	SentAt string `json:"sent_at,omitempty"`

	// Properties carries the free-form event properties in the order the
	// client sent them. Nil when the field was missing or null, which
	// Presence.Properties tells apart.
	Properties *Properties `json:"properties,omitempty"`

	// Timestamp is the event time. Empty means the client did not set one.
	Timestamp string `json:"timestamp,omitempty"`

	// Offset is the client clock offset in milliseconds.
	Offset *int64 `json:"offset,omitempty"`

	Set     *Properties `json:"$set,omitempty"`
	SetOnce *Properties `json:"$set_once,omitempty"`

	// UUID is the event's unique identifier. Deduplicating plugins overwrite it.
	UUID string `json:"uuid,omitempty"`

	// Presence records how the identifying fields appeared in the decoded
	// JSON. The zero value means every field was present.
	Presence Presence `json:"-"`
}

// FieldState describes how a field appeared in the JSON record.
type FieldState uint8

const (
	// FieldPresent means the field held a value of its usual type.
	FieldPresent FieldState = iota

	// FieldAbsent means the key was missing.
	FieldAbsent

	// FieldNull means the key was present with a null value.
	FieldNull

	// FieldNumber means a text field arrived as a JSON number. The Go field
	// holds its ECMAScript string form.
	FieldNumber
)

// Presence holds the FieldState of each identifying field.
type Presence struct {
	TeamID     FieldState
	DistinctID FieldState
	Event      FieldState
	Properties FieldState
}

// plainEvent has PluginEvent's fields without its methods.
type plainEvent PluginEvent

// wireEvent overrides the identifying fields of plainEvent with raw values so
// that absent, null and numeric values can be told apart.
type wireEvent struct {
	*plainEvent
	TeamID     json.RawMessage `json:"team_id,omitempty"`
	DistinctID json.RawMessage `json:"distinct_id,omitempty"`
	Event      json.RawMessage `json:"event,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// UnmarshalJSON decodes the record and fills in Presence.
//
// team_id must be an integral number. distinct_id and event may be strings or
// numbers. Any of them may be null or missing.
func (e *PluginEvent) UnmarshalJSON(data []byte) error {
	w := wireEvent{plainEvent: (*plainEvent)(e)}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var err error
	if e.TeamID, e.Presence.TeamID, err = decodeTeamID(w.TeamID); err != nil {
		return err
	}
	if e.DistinctID, e.Presence.DistinctID, err = decodeText("distinct_id", w.DistinctID); err != nil {
		return err
	}
	if e.Event, e.Presence.Event, err = decodeText("event", w.Event); err != nil {
		return err
	}

	e.Properties = nil
	e.Presence.Properties = rawState(w.Properties)
	if e.Presence.Properties == FieldPresent {
		props := &Properties{}
		if err := props.UnmarshalJSON(w.Properties); err != nil {
			return err
		}
		e.Properties = props
	}
	return nil
}

// MarshalJSON encodes the record, writing absent and null identifying fields
// back the way they arrived.
func (e *PluginEvent) MarshalJSON() ([]byte, error) {
	w := wireEvent{plainEvent: (*plainEvent)(e)}

	w.TeamID = nullOrAbsent(e.Presence.TeamID)
	if e.Presence.TeamID.HasValue(e.TeamID == 0) {
		w.TeamID = strconv.AppendInt(nil, e.TeamID, 10)
	}

	var err error
	if w.DistinctID, err = encodeText(e.Presence.DistinctID, e.DistinctID); err != nil {
		return nil, err
	}
	if w.Event, err = encodeText(e.Presence.Event, e.Event); err != nil {
		return nil, err
	}

	w.Properties = nullOrAbsent(e.Presence.Properties)
	if e.Properties != nil {
		if w.Properties, err = e.Properties.MarshalJSON(); err != nil {
			return nil, err
		}
	}
	return json.Marshal(w)
}

// HasValue reports whether a field in state s carries a value, given whether
// its Go field holds the zero value. A field set after decoding counts as
// present.
func (s FieldState) HasValue(isZero bool) bool {
	return !isZero || s == FieldPresent || s == FieldNumber
}

func rawState(raw json.RawMessage) FieldState {
	switch {
	case len(raw) == 0:
		return FieldAbsent
	case string(raw) == "null":
		return FieldNull
	}
	return FieldPresent
}

func nullOrAbsent(state FieldState) json.RawMessage {
	if state == FieldNull {
		return json.RawMessage("null")
	}
	return nil
}

func encodeText(state FieldState, s string) (json.RawMessage, error) {
	switch {
	case !state.HasValue(s == ""):
		return nullOrAbsent(state), nil
	case state == FieldNumber && isNumber(s):
		return json.RawMessage(s), nil
	}
	return json.Marshal(s)
}

func isNumber(s string) bool {
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// maxSafeInteger is the largest integer a float64 holds exactly.
const maxSafeInteger = 1<<53 - 1

func decodeTeamID(raw json.RawMessage) (int64, FieldState, error) {
	state := rawState(raw)
	if state != FieldPresent {
		return 0, state, nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return 0, state, fmt.Errorf("team_id must be an integer, got %s", raw)
	}
	return int64(f), state, nil
}

func decodeText(field string, raw json.RawMessage) (string, FieldState, error) {
	state := rawState(raw)
	if state != FieldPresent {
		return "", state, nil
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", state, fmt.Errorf("%s: %w", field, err)
		}
		return s, FieldPresent, nil
	case c == '-' || (c >= '0' && c <= '9'):
		s, err := stringify.Stringify(json.Number(raw))
		if err != nil {
			return "", state, fmt.Errorf("%s: %w", field, err)
		}
		return s, FieldNumber, nil
	}
	return "", state, fmt.Errorf("%s must be a string or a number, got %s", field, raw)
}

// HasTimestamp reports whether the event carries a timestamp.
func (e *PluginEvent) HasTimestamp() bool {
	return e != nil && e.Timestamp != ""
}

// Clone returns a deep copy of the event.
func (e *PluginEvent) Clone() *PluginEvent {
	if e == nil {
		return nil
	}
	c := *e
	if e.IP != nil {
		ip := *e.IP
		c.IP = &ip
	}
	if e.Offset != nil {
		off := *e.Offset
		c.Offset = &off
	}
	c.Properties = e.Properties.Clone()
	c.Set = e.Set.Clone()
	c.SetOnce = e.SetOnce.Clone()
	return &c
}
