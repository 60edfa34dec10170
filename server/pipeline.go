package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jrpckit/jrpc/protocol"
)

// Process runs one raw payload through the pipeline: decode, shape
// check, per-item validation and dispatch, and aggregation. The return
// value is the serialized response body, or nil when there is nothing
// to send (a notification, or a batch consisting only of
// notifications).
//
// Process never panics and never loses a failure: every outcome is
// either a well-formed envelope or a deliberate nil.
func (e *Engine) Process(ctx context.Context, payload []byte) []byte {
	trimmed := bytes.TrimSpace(payload)

	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return marshal(protocol.NewErrorResponse(nil, protocol.NewParseError("malformed JSON text")))
	}

	switch trimmed[0] {
	case '[':
		return e.processBatch(ctx, trimmed)
	case '{':
		resp := e.processItem(ctx, json.RawMessage(trimmed))
		if resp == nil {
			return nil
		}
		return marshal(resp)
	default:
		// A top-level scalar is well-formed JSON but not a request
		// shape at all.
		return marshal(protocol.NewErrorResponse(nil, protocol.NewInvalidRequest("payload is not an object or array")))
	}
}

func (e *Engine) processBatch(ctx context.Context, payload []byte) []byte {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return marshal(protocol.NewErrorResponse(nil, protocol.NewParseError(err.Error())))
	}

	// An empty batch is itself an invalid request, not an empty result.
	if len(items) == 0 {
		return marshal(protocol.NewErrorResponse(nil, protocol.NewInvalidRequest("empty batch")))
	}

	slots := make([]*protocol.Response, len(items))
	if e.concurrency > 1 && len(items) > 1 {
		var wg sync.WaitGroup
		sem := make(chan struct{}, e.concurrency)
		for i, item := range items {
			wg.Add(1)
			go func(i int, item json.RawMessage) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				slots[i] = e.processItem(ctx, item)
			}(i, item)
		}
		wg.Wait()
	} else {
		for i, item := range items {
			slots[i] = e.processItem(ctx, item)
		}
	}

	// Keep call results in original order; notifications leave no slot.
	responses := make([]*protocol.Response, 0, len(slots))
	for _, resp := range slots {
		if resp != nil {
			responses = append(responses, resp)
		}
	}

	if len(responses) == 0 {
		return nil
	}
	return marshal(responses)
}

// processItem handles one request envelope and returns its response,
// or nil when the item is a notification.
func (e *Engine) processItem(ctx context.Context, raw json.RawMessage) *protocol.Response {
	if !protocol.ValidRequest(raw) {
		err := protocol.NewInvalidRequest("malformed request envelope")
		resp := protocol.NewErrorResponse(protocol.RequestID(raw), err)
		e.observer.OnError(ctx, nil, err)
		e.observer.OnResponse(ctx, resp)
		return resp
	}

	var req protocol.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		// Validation guarantees a decodable envelope; this is a
		// pipeline defect, not a caller error.
		rpcErr := protocol.NewInternalError(err.Error())
		resp := protocol.NewErrorResponse(protocol.RequestID(raw), rpcErr)
		e.observer.OnError(ctx, nil, rpcErr)
		e.observer.OnResponse(ctx, resp)
		return resp
	}

	e.observer.OnRequest(ctx, &req)

	resp, err := e.invoke(ctx, &req)
	if err != nil {
		rpcErr := classify(err)
		e.observer.OnError(ctx, &req, rpcErr)
		// Absence of an id suppresses the reply regardless of outcome.
		if req.IsNotification() {
			return nil
		}
		resp = protocol.NewErrorResponse(req.ID, rpcErr)
		e.observer.OnResponse(ctx, resp)
		return resp
	}

	if req.IsNotification() {
		return nil
	}
	if resp == nil {
		resp = protocol.NewResponse(req.ID, nil)
	}
	// A result the encoder rejects (NaN, a channel, a cyclic value) is
	// this item's failure alone; the envelope and its id still stand.
	if resp.Error == nil {
		if _, err := json.Marshal(resp.Result); err != nil {
			rpcErr := protocol.NewInternalError(err.Error())
			e.observer.OnError(ctx, &req, rpcErr)
			resp = protocol.NewErrorResponse(req.ID, rpcErr)
		}
	}
	e.observer.OnResponse(ctx, resp)
	return resp
}

// invoke runs the middleware-wrapped handler, converting panics into
// errors so one item's failure cannot take down the payload.
func (e *Engine) invoke(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = protocol.NewInternalError(fmt.Sprintf("panic: %v", r))
		}
	}()
	return e.handle(ctx, req)
}

// classify maps a handler or middleware failure onto the taxonomy.
// Anything that is not already a taxonomy error is an internal error.
func classify(err error) *protocol.Error {
	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return protocol.NewInternalError(err.Error())
}

// marshal serializes a response value. Item results are checked before
// their envelopes are built, so this cannot fail for pipeline output;
// the fallback is a last resort for direct misuse.
func marshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(protocol.NewErrorResponse(nil, protocol.NewInternalError(err.Error())))
	}
	return data
}
