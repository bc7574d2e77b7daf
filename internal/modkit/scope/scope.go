// Package scope carries request-scoped attributes across module boundaries.
// The EDR and proxy services put counterparty identity here once per flow;
// the audit recorder reads it back when an event leaves those fields empty
package scope

import "context"

// Scope holds cross boundary attributes
type Scope struct {
	Values map[string]string
}

type key struct{}

// With returns a child context whose scope is the parent's merged with kv.
// The parent's scope is never mutated: resolve flights hand their context to
// waiter goroutines, so siblings must not see each other's attributes
func With(ctx context.Context, kv map[string]string) context.Context {
	s := From(ctx)
	merged := make(map[string]string, len(s.Values)+len(kv))
	for k, v := range s.Values {
		merged[k] = v
	}
	for k, v := range kv {
		merged[k] = v
	}
	return context.WithValue(ctx, key{}, Scope{Values: merged})
}

// Get returns a value and a boolean
func Get(ctx context.Context, k string) (string, bool) {
	s := From(ctx)
	v, ok := s.Values[k]
	return v, ok
}

// From returns scope on ctx or an empty one
func From(ctx context.Context) Scope {
	v := ctx.Value(key{})
	if v == nil {
		return Scope{Values: make(map[string]string)}
	}
	s, _ := v.(Scope)
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	return s
}
