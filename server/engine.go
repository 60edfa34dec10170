// Package server implements the request pipeline: dispatch, response
// construction and batch handling over a configured router.
package server

import (
	"context"

	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/router"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDiscloseDetails attaches underlying failure descriptions to
// application error responses. Off by default so internals never leak
// to external callers.
func WithDiscloseDetails() Option {
	return func(e *Engine) {
		e.disclose = true
	}
}

// WithMiddleware wraps the per-request handler with the given
// middleware, applied in order around every batch item.
func WithMiddleware(m ...Middleware) Option {
	return func(e *Engine) {
		e.middleware = append(e.middleware, m...)
	}
}

// WithObserver sets the lifecycle observer notified of decoded
// requests, responses and classified errors.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithConcurrency allows up to n batch items to execute concurrently.
// Aggregated output always preserves the original item order. The
// default processes items sequentially.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// Engine processes raw JSON-RPC payloads against a router. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	router      *router.Router
	dispatcher  *Dispatcher
	middleware  []Middleware
	observer    Observer
	disclose    bool
	concurrency int

	handle HandlerFunc
}

// New creates an engine over the given router.
func New(r *router.Router, opts ...Option) *Engine {
	e := &Engine{
		router:      r,
		observer:    NopObserver{},
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.dispatcher = NewDispatcher(r, e.disclose)
	e.handle = Chain(e.middleware...)(e.dispatchRequest)
	return e
}

// NewWithHandler creates an engine over a single bare handler, mounted
// as the default handler of a fresh router. This normalizes the
// "router or plain handler" configuration choice into a router.
func NewWithHandler(h router.Handler, opts ...Option) *Engine {
	r := router.New()
	// Register cannot fail for the empty path.
	_ = r.Register("", h)
	return New(r, opts...)
}

// Router returns the engine's router.
func (e *Engine) Router() *router.Router {
	return e.router
}

// dispatchRequest is the innermost handler wrapped by middleware.
func (e *Engine) dispatchRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	result, err := e.dispatcher.Dispatch(ctx, req.Method, req.Params)
	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(req.ID, result), nil
}
