package event

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/observability"
	"github.com/asherwunk/phabstractic/pkg/phabstractic/observer"
)

// invoker is the single entry point every binding resolves to.
type invoker func(e *Event) (any, error)

// BindingKind identifies what a Handler is bound to.
type BindingKind int

const (
	// Unbound handlers return NoValue.
	Unbound BindingKind = iota
	// Closure is a function value passed as the object.
	Closure
	// BoundMethod is a method on an object instance.
	BoundMethod
	// StaticMethod is a method on a registered type, named by string.
	StaticMethod
	// FreeFunction is a function registered under a namespace and name.
	FreeFunction
)

func (k BindingKind) String() string {
	switch k {
	case Closure:
		return "closure"
	case BoundMethod:
		return "method"
	case StaticMethod:
		return "static"
	case FreeFunction:
		return "function"
	default:
		return "unbound"
	}
}

// Result is what a Handler returned. NoValue means nothing was invoked,
// which is distinct from a callable that returned nil.
type Result struct {
	value   any
	invoked bool
	err     error
}

// NoValue is the result of handling with nothing bound.
var NoValue = Result{}

// Value returns the callable's return value and whether a callable ran.
func (r Result) Value() (any, bool) {
	return r.value, r.invoked
}

// Invoked reports whether a callable ran.
func (r Result) Invoked() bool {
	return r.invoked
}

// Err returns the error the callable returned, or a recovered panic.
func (r Result) Err() error {
	return r.err
}

// Handler invokes a callable with an event. The callable is one of:
//
//   - a closure: object is func(*Event), func(*Event) error,
//     func(*Event) T or func(*Event) (T, error); function and namespace
//     are ignored
//   - a bound method: object is an instance, function names its method
//   - a static method: object is a type name registered with the
//     Resolver under namespace, function names a method of that type
//   - a free function: object is nil, function names a function
//     registered with the Resolver under namespace
//
// Bindings are resolved and checked when set, never when called, so a
// misconfigured handler fails at construction or at the setter.
type Handler struct {
	mu        sync.RWMutex
	object    any
	function  string
	namespace string
	kind      BindingKind
	call      invoker

	resolver *Resolver
	logger   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithResolver sets the resolver for static and free-function bindings.
func WithResolver(r *Resolver) HandlerOption {
	return func(h *Handler) {
		if r != nil {
			h.resolver = r
		}
	}
}

// WithHandlerLogger sets the logger for handler failures.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler binds object, function and namespace. It returns a
// *BindingError if the binding cannot be resolved.
//
//	h, err := event.NewHandler(audit, "Record", "")
//	h, err := event.NewHandler("Mailer", "Send", "notify")
//	h, err := event.NewHandler(nil, "Log", "orders")
func NewHandler(object any, function, namespace string, opts ...HandlerOption) (*Handler, error) {
	h := &Handler{resolver: DefaultResolver}
	for _, opt := range opts {
		opt(h)
	}
	if err := h.rebind(object, function, namespace); err != nil {
		return nil, err
	}
	return h, nil
}

// NewClosureHandler binds fn directly. It panics if fn is not a valid
// handler function, which is a programming error.
func NewClosureHandler(fn any, opts ...HandlerOption) *Handler {
	h, err := NewHandler(fn, "", "", opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// SetObject rebinds with a new object. On error the old binding remains.
func (h *Handler) SetObject(object any) error {
	h.mu.RLock()
	function, namespace := h.function, h.namespace
	h.mu.RUnlock()
	return h.rebind(object, function, namespace)
}

// SetFunction rebinds with a new function name. On error the old binding remains.
func (h *Handler) SetFunction(function string) error {
	h.mu.RLock()
	object, namespace := h.object, h.namespace
	h.mu.RUnlock()
	return h.rebind(object, function, namespace)
}

// SetNamespace rebinds with a new namespace. On error the old binding remains.
func (h *Handler) SetNamespace(namespace string) error {
	h.mu.RLock()
	object, function := h.object, h.function
	h.mu.RUnlock()
	return h.rebind(object, function, namespace)
}

// Object returns the bound object, type name or closure.
func (h *Handler) Object() any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.object
}

// Function returns the bound function or method name.
func (h *Handler) Function() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.function
}

// Namespace returns the bound namespace.
func (h *Handler) Namespace() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.namespace
}

// Kind returns the resolved binding kind.
func (h *Handler) Kind() BindingKind {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.kind
}

func (h *Handler) rebind(object any, function, namespace string) error {
	kind, call, err := h.resolve(object, function, namespace)
	if err != nil {
		observability.LogBindingError(h.logger, describeBinding(object, function, namespace), err)
		return err
	}
	h.mu.Lock()
	h.object, h.function, h.namespace = object, function, namespace
	h.kind, h.call = kind, call
	h.mu.Unlock()
	return nil
}

func (h *Handler) resolve(object any, function, namespace string) (BindingKind, invoker, error) {
	fail := func(err error) (BindingKind, invoker, error) {
		return Unbound, nil, &BindingError{Object: object, Function: function, Namespace: namespace, Err: err}
	}

	switch o := object.(type) {
	case func(*Event) (any, error):
		if o == nil {
			return fail(ErrInvalidSignature)
		}
		return Closure, o, nil
	case func(*Event) error:
		if o == nil {
			return fail(ErrInvalidSignature)
		}
		return Closure, func(e *Event) (any, error) { return nil, o(e) }, nil
	case func(*Event) any:
		if o == nil {
			return fail(ErrInvalidSignature)
		}
		return Closure, func(e *Event) (any, error) { return o(e), nil }, nil
	case func(*Event):
		if o == nil {
			return fail(ErrInvalidSignature)
		}
		return Closure, func(e *Event) (any, error) { o(e); return nil, nil }, nil

	case nil:
		if function == "" {
			return Unbound, nil, nil
		}
		fn, ok := h.resolver.Function(namespace, function).Get()
		if !ok {
			return fail(ErrFunctionNotFound)
		}
		return FreeFunction, reflectInvoker(fn), nil

	case string:
		t, ok := h.resolver.Type(namespace, o).Get()
		if !ok {
			return fail(ErrTypeNotFound)
		}
		m, err := methodOf(zeroReceiver(t), function)
		if err != nil {
			return fail(err)
		}
		return StaticMethod, reflectInvoker(m), nil
	}

	v := reflect.ValueOf(object)
	if v.Kind() == reflect.Func {
		if v.IsNil() || checkSignature(v.Type()) != nil {
			return fail(ErrInvalidSignature)
		}
		return Closure, reflectInvoker(v), nil
	}
	m, err := methodOf(v, function)
	if err != nil {
		return fail(err)
	}
	return BoundMethod, reflectInvoker(m), nil
}

// zeroReceiver returns a usable receiver of type t: a pointer to a fresh
// zero value for pointer types, the zero value otherwise.
func zeroReceiver(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem())
	}
	return reflect.Zero(t)
}

func methodOf(v reflect.Value, name string) (reflect.Value, error) {
	if name == "" {
		return reflect.Value{}, ErrMethodNotFound
	}
	m := v.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, ErrMethodNotFound
	}
	if err := checkSignature(m.Type()); err != nil {
		return reflect.Value{}, err
	}
	return m, nil
}

// Handle invokes the bound callable with e. A panic in the callable is
// recovered and reported through Result.Err. A nil handler returns NoValue.
func (h *Handler) Handle(e *Event) (res Result) {
	if h == nil {
		return NoValue
	}
	h.mu.RLock()
	call := h.call
	h.mu.RUnlock()
	if call == nil {
		return NoValue
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{invoked: true, err: &EventError{
				Event:   e,
				Message: fmt.Sprintf("handler panic: %v", r),
			}}
		}
		if res.err != nil && e != nil {
			observability.LogHandlerError(h.logger, e.id, res.err)
		}
	}()

	value, err := call(e)
	if err != nil {
		err = &EventError{Event: e, Message: "handler failed", Err: err}
	}
	return Result{value: value, invoked: true, err: err}
}

// NotifyObserver handles event states. It returns false for any other
// state and for an unbound handler.
func (h *Handler) NotifyObserver(_ observer.Publisher, state any) bool {
	e, ok := state.(*Event)
	if !ok || e == nil {
		observability.LogStateRejected(h.logger, fmt.Sprintf("%T", state))
		return false
	}
	return h.Handle(e).Invoked()
}

var _ observer.Observer = (*Handler)(nil)
