// Package testutil provides testing utilities for JSON-RPC servers.
//
// This package helps developers exercise an engine in memory without
// standing up a transport: requests are marshaled into raw payloads,
// run through the full pipeline, and the reply is decoded back.
//
// Example usage:
//
//	func TestMyService(t *testing.T) {
//	    engine := jrpc.New(r)
//	    tc := testutil.NewTestClient(t, engine)
//
//	    result, err := tc.Call("billing.charge", []any{"acct-1", 100})
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	}
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/server"
)

// TestClient drives an engine in memory through its raw payload surface.
type TestClient struct {
	t      testing.TB
	engine *server.Engine
	reqID  int64
	mu     sync.Mutex
}

// NewTestClient creates a new test client for the given engine.
func NewTestClient(t testing.TB, engine *server.Engine) *TestClient {
	t.Helper()
	return &TestClient{
		t:      t,
		engine: engine,
	}
}

// nextID returns the next request ID.
func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// Process runs a raw payload through the engine and returns the raw reply.
func (tc *TestClient) Process(payload []byte) []byte {
	tc.t.Helper()
	return tc.engine.Process(context.Background(), payload)
}

// Call invokes a method and returns the decoded result. Params may be
// nil (no params member), a slice (positional) or a map (keyed).
func (tc *TestClient) Call(method string, params any) (any, error) {
	tc.t.Helper()

	resp, err := tc.CallRaw(method, params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// CallRaw invokes a method and returns the decoded response envelope.
func (tc *TestClient) CallRaw(method string, params any) (*protocol.Response, error) {
	tc.t.Helper()

	payload, err := tc.buildRequest(method, params, tc.nextID())
	if err != nil {
		return nil, err
	}

	reply := tc.engine.Process(context.Background(), payload)
	if reply == nil {
		return nil, fmt.Errorf("expected reply for call %q, got none", method)
	}

	var resp protocol.Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed reply: %w", err)
	}
	return &resp, nil
}

// Notify sends a notification. Any reply at all is a failure.
func (tc *TestClient) Notify(method string, params any) error {
	tc.t.Helper()

	payload, err := tc.buildRequest(method, params, nil)
	if err != nil {
		return err
	}

	if reply := tc.engine.Process(context.Background(), payload); reply != nil {
		return fmt.Errorf("notification %q produced a reply: %s", method, reply)
	}
	return nil
}

// Batch sends several requests as one payload and returns the decoded
// responses in reply order. A nil reply decodes as an empty slice.
func (tc *TestClient) Batch(reqs ...BatchItem) ([]*protocol.Response, error) {
	tc.t.Helper()

	items := make([]json.RawMessage, len(reqs))
	for i, r := range reqs {
		var id json.RawMessage
		if !r.Notification {
			id = tc.nextID()
		}
		payload, err := tc.buildRequest(r.Method, r.Params, id)
		if err != nil {
			return nil, err
		}
		items[i] = payload
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	reply := tc.engine.Process(context.Background(), payload)
	if reply == nil {
		return nil, nil
	}

	var resps []*protocol.Response
	if err := json.Unmarshal(reply, &resps); err != nil {
		return nil, fmt.Errorf("malformed batch reply: %w", err)
	}
	return resps, nil
}

// BatchItem describes one request of a batch payload.
type BatchItem struct {
	Method       string
	Params       any
	Notification bool
}

func (tc *TestClient) buildRequest(method string, params any, id json.RawMessage) ([]byte, error) {
	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		Version: protocol.Version,
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}
	return json.Marshal(req)
}

// AssertMethodExists asserts the engine's router resolves and exposes
// the given namespaced method name.
func (tc *TestClient) AssertMethodExists(name string) {
	tc.t.Helper()

	result, err := tc.Call("system.listMethods", nil)
	if err != nil {
		tc.t.Fatalf("system.listMethods failed: %v", err)
	}

	names, ok := result.([]any)
	if !ok {
		tc.t.Fatalf("unexpected listMethods result type: %T", result)
	}
	for _, n := range names {
		if n == name {
			return
		}
	}
	tc.t.Errorf("method %q not found in %v", name, names)
}

// AssertErrorCode asserts that a call fails with the given taxonomy code.
func (tc *TestClient) AssertErrorCode(method string, params any, code int) {
	tc.t.Helper()

	resp, err := tc.CallRaw(method, params)
	if err != nil {
		tc.t.Fatalf("call %q failed before dispatch: %v", method, err)
	}
	if resp.Error == nil {
		tc.t.Fatalf("call %q succeeded, want error code %d", method, code)
	}
	if resp.Error.Code != code {
		tc.t.Errorf("call %q error code = %d, want %d", method, resp.Error.Code, code)
	}
}
