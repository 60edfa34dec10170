package router

import (
	"context"

	"github.com/jrpckit/jrpc/protocol"
)

// Built-in introspection method names.
const (
	MethodListMethods = "listMethods"
	MethodIsAlive     = "isAlive"
)

// system is the router's built-in introspection handler, mounted under
// the reserved system namespace.
type system struct {
	router *Router
}

func (s *system) Names() []string {
	return []string{MethodIsAlive, MethodListMethods}
}

func (s *system) Exposes(method string) bool {
	return method == MethodListMethods || method == MethodIsAlive
}

func (s *system) Invoke(_ context.Context, method string, _ []any) (any, error) {
	switch method {
	case MethodListMethods:
		return s.router.MethodNames(), nil
	case MethodIsAlive:
		return true, nil
	default:
		return nil, protocol.NewMethodNotFound(method)
	}
}
