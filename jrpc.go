// Package jrpc provides a framework for building JSON-RPC 2.0 servers.
//
// jrpc separates three concerns:
//   - protocol: envelopes, the error taxonomy and envelope validation
//   - router: namespace registration and method resolution
//   - server: the payload pipeline turning raw bytes into raw replies
//
// Basic usage:
//
//	math := jrpc.NewMethodSet().
//	    Expose("add", jrpc.Arity(2, func(ctx context.Context, args ...any) (any, error) {
//	        return args[0].(float64) + args[1].(float64), nil
//	    }))
//
//	r := jrpc.NewRouter()
//	r.Register("math", math)
//
//	engine := jrpc.New(r)
//	reply := engine.Process(ctx, payload)
//
//	jrpc.ServeHTTP(ctx, engine, ":8080")
package jrpc

import (
	"context"
	"time"

	"github.com/jrpckit/jrpc/middleware"
	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/router"
	"github.com/jrpckit/jrpc/server"
	"github.com/jrpckit/jrpc/transport"
)

// Re-export core types for convenience

// Engine processes raw JSON-RPC payloads.
type Engine = server.Engine

// Option configures an Engine.
type Option = server.Option

// Observer receives request lifecycle callbacks.
type Observer = server.Observer

// Router maps dotted method paths to handlers.
type Router = router.Router

// Handler exposes a set of invocable methods.
type Handler = router.Handler

// MethodSet is a map-backed Handler with a fluent registration API.
type MethodSet = router.MethodSet

// MethodFunc is the signature for individual methods.
type MethodFunc = router.MethodFunc

// Request is a decoded JSON-RPC request envelope.
type Request = protocol.Request

// Response is a JSON-RPC response envelope.
type Response = protocol.Response

// Error is a taxonomy error carried in response envelopes.
type Error = protocol.Error

// ErrInvalidArgs marks handler failures caused by the caller's
// arguments. Wrap it to get an invalid params response.
var ErrInvalidArgs = protocol.ErrInvalidArgs

// NewRouter creates a router with the reserved system namespace mounted.
func NewRouter() *Router {
	return router.New()
}

// NewMethodSet creates an empty method set.
func NewMethodSet() *MethodSet {
	return router.NewMethodSet()
}

// Arity wraps a method with a positional argument count check.
func Arity(n int, fn MethodFunc) MethodFunc {
	return router.Arity(n, fn)
}

// New creates an engine over the given router.
func New(r *Router, opts ...Option) *Engine {
	return server.New(r, opts...)
}

// NewWithHandler creates an engine over a single bare handler.
func NewWithHandler(h Handler, opts ...Option) *Engine {
	return server.NewWithHandler(h, opts...)
}

// Engine options re-exported for convenience.
var (
	WithDiscloseDetails = server.WithDiscloseDetails
	WithObserver        = server.WithObserver
	WithConcurrency     = server.WithConcurrency
)

// WithMiddleware wraps the engine's per-request handler with the given
// middleware, applied in order around every batch item.
func WithMiddleware(m ...Middleware) Option {
	converted := make([]server.Middleware, len(m))
	for i, mw := range m {
		converted[i] = asServerMiddleware(mw)
	}
	return server.WithMiddleware(converted...)
}

// asServerMiddleware bridges the middleware package's named function
// types onto the server's. The underlying signatures are identical.
func asServerMiddleware(m Middleware) server.Middleware {
	return func(next server.HandlerFunc) server.HandlerFunc {
		wrapped := m(middleware.HandlerFunc(next))
		return server.HandlerFunc(wrapped)
	}
}

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field
type NopLogger = middleware.NopLogger
type RateLimitOption = middleware.RateLimitOption

// RateLimit re-exports for convenience.
var (
	RateLimit            = middleware.RateLimit
	RateLimitByMethod    = middleware.RateLimitByMethod
	RateLimitByClient    = middleware.RateLimitByClient
	WithRateLimitKeyFunc = middleware.WithRateLimitKeyFunc
	WithRateLimitLogger  = middleware.WithRateLimitLogger
)

// SizeLimit re-exports for convenience.
type SizeLimitOption = middleware.SizeLimitOption

var (
	SizeLimit           = middleware.SizeLimit
	WithSizeLimitLogger = middleware.WithSizeLimitLogger
)

// Size limit presets.
const (
	KB = middleware.KB
	MB = middleware.MB
)

// HTTPOption configures the HTTP transport.
type HTTPOption = transport.HTTPOption

// ServeStdio runs the engine over the stdio transport, one payload per
// line. This blocks until the context is canceled or an error occurs.
func ServeStdio(ctx context.Context, e *Engine) error {
	t := transport.NewStdio()
	return t.Serve(ctx, e)
}

// ServeHTTP runs the engine over the HTTP transport.
// This blocks until the context is canceled or an error occurs.
func ServeHTTP(ctx context.Context, e *Engine, addr string, opts ...HTTPOption) error {
	t := transport.NewHTTP(addr, opts...)
	return t.Serve(ctx, e)
}

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return transport.WithReadTimeout(d)
}

// WithWriteTimeout sets the write timeout for HTTP responses.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return transport.WithWriteTimeout(d)
}

// WebSocketOption configures the WebSocket transport.
type WebSocketOption = transport.WebSocketOption

// ServeWebSocket runs the engine over the WebSocket transport.
// This blocks until the context is canceled or an error occurs.
func ServeWebSocket(ctx context.Context, e *Engine, addr string, opts ...WebSocketOption) error {
	t := transport.NewWebSocket(addr, opts...)
	return t.Serve(ctx, e)
}

// WithWebSocketReadTimeout sets the read timeout for WebSocket messages.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return transport.WithWebSocketReadTimeout(d)
}

// WithWebSocketWriteTimeout sets the write timeout for WebSocket messages.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return transport.WithWebSocketWriteTimeout(d)
}

// Middleware re-exports

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover returns middleware that catches panics and converts them to internal errors.
func Recover() Middleware {
	return middleware.Recover()
}

// RecoverWithHandler returns middleware that catches panics and calls the provided handler.
func RecoverWithHandler(handler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)) Middleware {
	return middleware.RecoverWithHandler(handler)
}

// Timeout returns middleware that enforces a request deadline.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that injects a unique request ID into the context.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs request details.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended production middleware stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// DefaultMiddlewareWithTimeout returns the default stack with a timeout middleware.
func DefaultMiddlewareWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return middleware.DefaultStackWithTimeout(logger, timeout)
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}
