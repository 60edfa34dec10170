package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/transport"
)

// LocalTransport calls a Processor in-process, with no wire in between.
// Passing a server engine makes the client useful in tests and in
// programs that embed their own server.
type LocalTransport struct {
	proc transport.Processor
}

// NewLocalTransport creates a transport around an in-process processor.
func NewLocalTransport(proc transport.Processor) *LocalTransport {
	return &LocalTransport{proc: proc}
}

// Send submits a single request payload and decodes the reply.
func (t *LocalTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reply := t.proc.Process(ctx, data)
	if reply == nil {
		return nil, fmt.Errorf("no response for request %s", req.ID)
	}

	var resp protocol.Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

// Notify submits a notification payload. The processor suppresses the
// reply, so any payload coming back indicates a malformed notification.
func (t *LocalTransport) Notify(ctx context.Context, req *protocol.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	if reply := t.proc.Process(ctx, data); reply != nil {
		return fmt.Errorf("unexpected response to notification: %s", reply)
	}
	return nil
}

// Close is a no-op for in-process transports.
func (t *LocalTransport) Close() error {
	return nil
}
