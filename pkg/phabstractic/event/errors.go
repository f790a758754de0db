package event

import (
	"errors"
	"fmt"
	"reflect"
)

// Binding errors.
var (
	// ErrMethodNotFound is returned when a bound object has no such method.
	ErrMethodNotFound = errors.New("method not found")

	// ErrFunctionNotFound is returned when no function is registered under
	// the namespace and name.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrTypeNotFound is returned when a static binding names a type that
	// was never registered.
	ErrTypeNotFound = errors.New("type not found")

	// ErrInvalidSignature is returned when a callable cannot accept an *Event.
	ErrInvalidSignature = errors.New("invalid handler signature")
)

// Event state errors.
var (
	// ErrNotReference is returned by SetDataReference for non-pointer values.
	ErrNotReference = errors.New("data reference must be a non-nil pointer")

	// ErrInvalidState is returned by SetStateWithMap for mistyped values.
	ErrInvalidState = errors.New("invalid state value")
)

// BindingError describes a handler binding that could not be resolved.
type BindingError struct {
	Object    any    // Instance, type name or nil
	Function  string // Method or function name
	Namespace string // Namespace for type and function lookups
	Err       error  // One of the binding sentinels
}

// Error implements error interface.
func (e *BindingError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Binding(), e.Err)
}

// Unwrap returns the underlying error.
func (e *BindingError) Unwrap() error {
	return e.Err
}

// Binding renders the binding target, e.g. "orders.Audit.Record" or
// "*main.Logger.Write".
func (e *BindingError) Binding() string {
	return describeBinding(e.Object, e.Function, e.Namespace)
}

func describeBinding(object any, function, namespace string) string {
	switch o := object.(type) {
	case nil:
		return qualify(namespace, function)
	case string:
		return qualify(namespace, o) + "." + function
	default:
		return reflect.TypeOf(o).String() + "." + function
	}
}

// EventError represents a handler failure while processing an event.
type EventError struct {
	Event   *Event // The event being handled
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements error interface.
func (e *EventError) Error() string {
	id := ""
	if e.Event != nil {
		id = e.Event.Identifier()
	}
	if e.Err != nil {
		return fmt.Sprintf("event %s: %s: %v", id, e.Message, e.Err)
	}
	return fmt.Sprintf("event %s: %s", id, e.Message)
}

// Unwrap returns the underlying error.
func (e *EventError) Unwrap() error {
	return e.Err
}
