package server

import (
	"context"

	"github.com/jrpckit/jrpc/protocol"
)

// Observer receives request lifecycle notifications for logging and
// tracing. Implementations are a side channel only: they must not
// influence processing, and their absence changes no outcome.
type Observer interface {
	// OnRequest is called with each decoded, validated request.
	OnRequest(ctx context.Context, req *protocol.Request)

	// OnResponse is called with each response envelope that will be
	// sent. Suppressed notification replies are not reported.
	OnResponse(ctx context.Context, resp *protocol.Response)

	// OnError is called with every classified failure, including those
	// whose reply is suppressed because the request was a notification.
	// req is nil when the failure occurred before an envelope could be
	// decoded.
	OnError(ctx context.Context, req *protocol.Request, err *protocol.Error)
}

// NopObserver is an Observer that ignores all notifications.
type NopObserver struct{}

func (NopObserver) OnRequest(context.Context, *protocol.Request)                    {}
func (NopObserver) OnResponse(context.Context, *protocol.Response)                  {}
func (NopObserver) OnError(context.Context, *protocol.Request, *protocol.Error) {}
