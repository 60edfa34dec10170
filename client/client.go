// Package client provides a JSON-RPC 2.0 client for calling servers
// built on this module, or any other server speaking the same protocol.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jrpckit/jrpc/protocol"
)

// Transport defines the interface for client-side transport.
type Transport interface {
	// Send sends a request and waits for a response.
	Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
	// Notify sends a notification. No response is awaited.
	Notify(ctx context.Context, req *protocol.Request) error
	// Close closes the transport connection.
	Close() error
}

// Client is a JSON-RPC client bound to a transport. It assigns numeric
// request ids and surfaces protocol errors as *protocol.Error values.
type Client struct {
	transport Transport
	opts      clientOptions
	requestID atomic.Int64
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout time.Duration
}

// WithTimeout sets the default timeout for requests.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// New creates a new client with the given transport.
func New(transport Transport, opts ...Option) *Client {
	options := clientOptions{
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		transport: transport,
		opts:      options,
	}
}

// Call invokes a method with positional arguments and returns the
// decoded result. A server-side failure is returned as *protocol.Error.
func (c *Client) Call(ctx context.Context, method string, args ...any) (any, error) {
	var params any
	if len(args) > 0 {
		params = args
	}
	return c.call(ctx, method, params)
}

// CallKeyed invokes a method with a params object instead of a
// positional array. The server receives it as a single map argument.
func (c *Client) CallKeyed(ctx context.Context, method string, params map[string]any) (any, error) {
	var p any
	if params != nil {
		p = params
	}
	return c.call(ctx, method, p)
}

// Notify sends a notification. The server processes it but never
// replies, so only transport failures are reported.
func (c *Client) Notify(ctx context.Context, method string, args ...any) error {
	var params any
	if len(args) > 0 {
		params = args
	}

	req, err := c.buildRequest(nil, method, params)
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.transport.Notify(ctx, req)
}

// MethodNames returns the methods the server exposes, via the
// reserved system namespace.
func (c *Client) MethodNames(ctx context.Context) ([]string, error) {
	result, err := c.call(ctx, "system.listMethods", nil)
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}

	raw, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("list methods: invalid result type %T", result)
	}

	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("list methods: invalid entry type %T", r)
		}
		names = append(names, name)
	}
	return names, nil
}

// Alive probes the server's liveness method.
func (c *Client) Alive(ctx context.Context) error {
	if _, err := c.call(ctx, "system.isAlive", nil); err != nil {
		return fmt.Errorf("alive: %w", err)
	}
	return nil
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) call(ctx context.Context, method string, params any) (any, error) {
	id := c.requestID.Add(1)
	idRaw, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("marshal request id: %w", err)
	}

	req, err := c.buildRequest(idRaw, method, params)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return resp.Result, nil
}

func (c *Client) buildRequest(id json.RawMessage, method string, params any) (*protocol.Request, error) {
	var paramsRaw json.RawMessage
	if params != nil {
		var err error
		paramsRaw, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
	}

	return &protocol.Request{
		Version: protocol.Version,
		ID:      id,
		Method:  method,
		Params:  paramsRaw,
	}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.timeout > 0 {
		return context.WithTimeout(ctx, c.opts.timeout)
	}
	return ctx, func() {}
}
