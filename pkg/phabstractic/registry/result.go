package registry

// Result is the outcome of a lookup: either Found(value) or NotFound.
// A Found result may carry a nil or zero value; use Ok to tell them apart.
type Result[V any] struct {
	value V
	ok    bool
}

// Found wraps a value that was present.
func Found[V any](v V) Result[V] {
	return Result[V]{value: v, ok: true}
}

// NotFound returns the empty result.
func NotFound[V any]() Result[V] {
	return Result[V]{}
}

// Ok reports whether the lookup found a value.
func (r Result[V]) Ok() bool {
	return r.ok
}

// Get returns the value and whether it was found.
func (r Result[V]) Get() (V, bool) {
	return r.value, r.ok
}

// OrElse returns the value if found, otherwise fallback.
func (r Result[V]) OrElse(fallback V) V {
	if !r.ok {
		return fallback
	}
	return r.value
}
