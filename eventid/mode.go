package eventid

import (
	"errors"
	"fmt"
)

// Mode selects which event fields feed the identifier.
type Mode int

const (
	// EventAndTimestamp hashes team, user, event name and timestamp.
	EventAndTimestamp Mode = iota

	// AllProperties additionally hashes the serialized property set.
	AllProperties
)

// Configuration values accepted for the dedupMode option.
const (
	EventAndTimestampValue = "Event and Timestamp"
	AllPropertiesValue     = "All Properties"
)

// ErrUnknownMode is returned by ParseMode for unrecognized values.
var ErrUnknownMode = errors.New("unknown dedup mode")

// ParseMode converts a dedupMode configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case EventAndTimestampValue:
		return EventAndTimestamp, nil
	case AllPropertiesValue:
		return AllProperties, nil
	}
	return EventAndTimestamp, fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownMode, s, EventAndTimestampValue, AllPropertiesValue)
}

// String returns the configuration value for m.
func (m Mode) String() string {
	switch m {
	case EventAndTimestamp:
		return EventAndTimestampValue
	case AllProperties:
		return AllPropertiesValue
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m == EventAndTimestamp || m == AllProperties
}

// Values lists the accepted configuration values in declaration order.
func Values() []string {
	return []string{EventAndTimestampValue, AllPropertiesValue}
}
