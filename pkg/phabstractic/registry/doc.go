// Package registry provides a generic thread-safe store for values indexed by key.
//
// It backs the process-wide object lookup used across phabstractic: the
// handler resolver keeps its functions and types here, and the identity
// service keeps one counter per prefix.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.Set("one", 1)
//
//	if v, ok := r.Get("one"); ok {
//	    fmt.Println(v) // 1
//	}
//
// # Found and NotFound
//
// Lookup returns a Result so a missing key is never confused with a
// registered nil or zero value:
//
//	r := registry.New[string, any]()
//	r.Set("nothing", nil)
//
//	r.Lookup("nothing").Ok() // true, the value is nil
//	r.Lookup("missing").Ok() // false
//
// # Add versus Set
//
// Add refuses to overwrite and returns an error wrapping ErrKeyExists;
// Set always replaces.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Range iterates over a snapshot,
// and GetOrCreate calls its factory at most once per key.
//
// Default is a process-wide Registry[string, any] for callers that want
// singleton-style lookup without threading a registry through their code.
package registry
