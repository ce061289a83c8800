package unduplicates

import (
	"errors"
	"fmt"

	"github.com/zero-day-ai/unduplicates/eventid"
	"github.com/zero-day-ai/unduplicates/plugin"
)

// Sentinel errors for the plugin.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the configuration passed to Setup, or the
	// manifest, is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotInitialized indicates an event arrived before Setup.
	ErrNotInitialized = plugin.ErrNotInitialized

	// ErrAlreadyInitialized indicates Setup was called twice.
	ErrAlreadyInitialized = plugin.ErrAlreadyInitialized

	// ErrMissingTimestamp indicates an event without a timestamp. The plugin
	// never returns it; such events are passed through.
	ErrMissingTimestamp = eventid.ErrMissingTimestamp

	// ErrSerialization indicates the event properties could not be serialized.
	ErrSerialization = eventid.ErrSerialization
)

// Error kinds categorize errors by their type.
const (
	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindLifecycle represents calls made in the wrong plugin state.
	KindLifecycle = "lifecycle"

	// KindSerialization represents property serialization failures.
	KindSerialization = "serialization"

	// KindInternal represents everything else.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
type Error struct {
	// Op is the operation that failed (e.g., "Setup", "ProcessEvent").
	Op string

	// Kind categorizes the error (e.g., KindConfiguration).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unduplicates: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("unduplicates: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("unduplicates: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target *Error by Kind, and by Op when the target sets one.
// Otherwise it delegates to the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with ctx merged into its context.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewConfigurationError creates a new Error with KindConfiguration.
// err is wrapped so that it also matches ErrInvalidConfig.
func NewConfigurationError(op string, err error) *Error {
	if !errors.Is(err, ErrInvalidConfig) {
		err = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Error{
		Op:   op,
		Kind: KindConfiguration,
		Err:  err,
	}
}

// NewSerializationError creates a new Error with KindSerialization.
func NewSerializationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindSerialization,
		Err:  err,
	}
}

// NewLifecycleError creates a new Error with KindLifecycle.
func NewLifecycleError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindLifecycle,
		Err:  err,
	}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}

// classify turns an error from the plugin builder into an *Error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, plugin.ErrNotInitialized), errors.Is(err, plugin.ErrAlreadyInitialized):
		return NewLifecycleError(op, err)
	case errors.Is(err, eventid.ErrSerialization):
		return NewSerializationError(op, err)
	case op == opSetup:
		return NewConfigurationError(op, err)
	}
	return NewInternalError(op, err)
}
