package server

import (
	"context"

	"github.com/jrpckit/jrpc/protocol"
)

// HandlerFunc is the signature for per-request handlers. The pipeline
// wraps its dispatch step in this shape so middleware can observe and
// decorate every logical request, including each item of a batch.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware in order, executing first middleware first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
