package router

import (
	"context"
	"fmt"
	"sort"

	"github.com/jrpckit/jrpc/protocol"
)

// Handler is a named set of invocable methods bound to a namespace.
// Implementations declare their exposed method names explicitly; the
// dispatcher queries this capability set instead of reflecting over
// types.
//
// Handlers are shared read-only across concurrent requests and must be
// safe for unsynchronized concurrent calls after registration.
type Handler interface {
	// Names returns the exposed method names, local to the handler.
	Names() []string

	// Exposes reports whether the local method name is callable.
	Exposes(method string) bool

	// Invoke calls the local method with the decoded arguments.
	// Positional params arrive spread in order; keyed params arrive as
	// a single map[string]any argument; a missing params member means
	// no arguments.
	Invoke(ctx context.Context, method string, args []any) (any, error)
}

// MethodFunc is the signature of an exposed method.
type MethodFunc func(ctx context.Context, args ...any) (any, error)

// Arity wraps fn so that calls with an argument count other than n fail
// as an argument shape mismatch (reported as invalid params).
func Arity(n int, fn MethodFunc) MethodFunc {
	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) != n {
			return nil, fmt.Errorf("%w: got %d arguments, want %d", protocol.ErrInvalidArgs, len(args), n)
		}
		return fn(ctx, args...)
	}
}

// MethodSet is the map-backed Handler implementation. Methods are
// exposed during configuration; the set is read-only afterwards.
type MethodSet struct {
	methods map[string]MethodFunc
}

// NewMethodSet creates an empty method set.
func NewMethodSet() *MethodSet {
	return &MethodSet{methods: make(map[string]MethodFunc)}
}

// Expose registers fn under the given local method name, overwriting
// any previous registration. It returns the set for chaining.
func (s *MethodSet) Expose(name string, fn MethodFunc) *MethodSet {
	s.methods[name] = fn
	return s
}

// Names returns the exposed method names in sorted order.
func (s *MethodSet) Names() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exposes reports whether the local method name is callable.
func (s *MethodSet) Exposes(method string) bool {
	_, ok := s.methods[method]
	return ok
}

// Invoke calls the named method with the given arguments.
func (s *MethodSet) Invoke(ctx context.Context, method string, args []any) (any, error) {
	fn, ok := s.methods[method]
	if !ok {
		return nil, protocol.NewMethodNotFound(method)
	}
	return fn(ctx, args...)
}
