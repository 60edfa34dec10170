package transport

import (
	"context"
)

// Processor turns a raw JSON-RPC payload into a raw reply.
// A nil return means no reply body, which happens for notifications.
type Processor interface {
	Process(ctx context.Context, payload []byte) []byte
}

// ProcessorFunc is an adapter to allow ordinary functions as processors.
type ProcessorFunc func(ctx context.Context, payload []byte) []byte

// Process calls f(ctx, payload).
func (f ProcessorFunc) Process(ctx context.Context, payload []byte) []byte {
	return f(ctx, payload)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an error occurs.
	Serve(ctx context.Context, proc Processor) error

	// Addr returns the transport's address description.
	Addr() string
}
