package command

import "context"

// Resolver computes a deferred value from the execution context.
type Resolver[T any] func(ctx context.Context, ec Context) (T, error)

// Value is a deferred value: either a literal T or a resolver function of
// the Context. The zero Value resolves to the zero T with no error.
type Value[T any] struct {
	literal T
	fn      Resolver[T]
	set     bool
}

// Literal wraps a concrete value.
func Literal[T any](v T) Value[T] {
	return Value[T]{literal: v, set: true}
}

// Deferred wraps a resolver function evaluated at projection time.
func Deferred[T any](fn Resolver[T]) Value[T] {
	return Value[T]{fn: fn, set: fn != nil}
}

// IsZero reports whether the value was never set.
func (v Value[T]) IsZero() bool { return !v.set }

// Resolve produces the concrete value. Resolver failures are returned as a
// *ResolutionError carrying the given node ID and property name so callers
// can scope the failure to a single value.
func (v Value[T]) Resolve(ctx context.Context, ec Context, nodeID, property string) (T, error) {
	if v.fn == nil {
		return v.literal, nil
	}
	out, err := v.fn(ctx, ec)
	if err != nil {
		var zero T
		return zero, &ResolutionError{NodeID: nodeID, Property: property, Err: err}
	}
	return out, nil
}
