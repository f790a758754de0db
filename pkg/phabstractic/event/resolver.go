package event

import (
	"fmt"
	"reflect"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/registry"
)

// Resolver maps namespaced names to free functions and to types whose
// methods back static bindings. Go has no lookup of functions or types by
// name, so callables a Handler binds by name must be registered first.
type Resolver struct {
	functions *registry.Registry[string, reflect.Value]
	types     *registry.Registry[string, reflect.Type]
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		functions: registry.New[string, reflect.Value](),
		types:     registry.New[string, reflect.Type](),
	}
}

// DefaultResolver is used by handlers created without WithResolver.
var DefaultResolver = NewResolver()

// RegisterFunction makes fn bindable as namespace.name. fn must accept a
// single *Event and return nothing, one value, or a value and an error.
// Registering a name again replaces the previous function.
func (r *Resolver) RegisterFunction(namespace, name string, fn any) error {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("%w: %s is %T", ErrInvalidSignature, qualify(namespace, name), fn)
	}
	if err := checkSignature(v.Type()); err != nil {
		return fmt.Errorf("%w: %s", err, qualify(namespace, name))
	}
	r.functions.Set(qualify(namespace, name), v)
	return nil
}

// RegisterType makes the type of prototype bindable as namespace.name.
// Static bindings call methods on a fresh zero value of the type; pass a
// pointer prototype to reach pointer-receiver methods.
func (r *Resolver) RegisterType(namespace, name string, prototype any) {
	r.types.Set(qualify(namespace, name), reflect.TypeOf(prototype))
}

// Function looks up a registered function.
func (r *Resolver) Function(namespace, name string) registry.Result[reflect.Value] {
	return r.functions.Lookup(qualify(namespace, name))
}

// Type looks up a registered type.
func (r *Resolver) Type(namespace, name string) registry.Result[reflect.Type] {
	return r.types.Lookup(qualify(namespace, name))
}

// Unregister removes both the function and the type registered as
// namespace.name.
func (r *Resolver) Unregister(namespace, name string) {
	r.functions.Remove(qualify(namespace, name))
	r.types.Remove(qualify(namespace, name))
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

var (
	eventPtrType = reflect.TypeOf((*Event)(nil))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// checkSignature accepts func(*Event), func(*Event) T and
// func(*Event) (T, error). A lone error result is treated as the error.
func checkSignature(t reflect.Type) error {
	if t.Kind() != reflect.Func || t.IsVariadic() || t.NumIn() != 1 || !eventPtrType.AssignableTo(t.In(0)) {
		return ErrInvalidSignature
	}
	switch t.NumOut() {
	case 0, 1:
		return nil
	case 2:
		if t.Out(1) == errorType {
			return nil
		}
	}
	return ErrInvalidSignature
}

// reflectInvoker adapts a validated function value into an invoker.
func reflectInvoker(fn reflect.Value) invoker {
	t := fn.Type()
	numOut := t.NumOut()
	errOnly := numOut == 1 && t.Out(0) == errorType
	return func(e *Event) (any, error) {
		out := fn.Call([]reflect.Value{reflect.ValueOf(e)})
		switch {
		case numOut == 0:
			return nil, nil
		case errOnly:
			err, _ := out[0].Interface().(error)
			return nil, err
		case numOut == 1:
			return out[0].Interface(), nil
		}
		err, _ := out[1].Interface().(error)
		return out[0].Interface(), err
	}
}
