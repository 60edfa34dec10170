// Package transport provides JSON-RPC transport implementations.
//
// This package implements the communication layer for JSON-RPC servers,
// supporting multiple transport protocols. Transports are payload
// oriented: they hand complete raw payloads to a Processor and relay
// the raw reply, so batch framing and error envelopes stay with the
// processing core.
//
// # Stdio Transport
//
// The stdio transport communicates via stdin/stdout with one payload
// per line, suitable for local tools and CLI integrations:
//
//	t := transport.NewStdio()
//	err := t.Serve(ctx, proc)
//
// # HTTP Transport
//
// The HTTP transport accepts payloads via POST and answers in the
// response body. A nil reply, produced by notifications, becomes
// 204 No Content:
//
//	t := transport.NewHTTP(":8080",
//	    transport.WithReadTimeout(30*time.Second),
//	    transport.WithWriteTimeout(30*time.Second),
//	)
//	err := t.Serve(ctx, proc)
//
// The HTTP transport exposes the following endpoints:
//   - POST /rpc - Handle JSON-RPC payloads
//   - GET /health - Health check endpoint
//
// # Processor Interface
//
// All transports expect a Processor that turns payloads into replies:
//
//	type Processor interface {
//	    Process(ctx context.Context, payload []byte) []byte
//	}
//
// # Usage with jrpc Package
//
// Most users should use the jrpc package's convenience functions:
//
//	jrpc.ServeStdio(ctx, engine)
//	jrpc.ServeHTTP(ctx, engine, ":8080")
package transport
