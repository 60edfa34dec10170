package server

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/router"
)

// Dispatcher resolves a validated request's method through the router
// and invokes the bound handler with arguments shaped by the request's
// params member.
type Dispatcher struct {
	router   *router.Router
	disclose bool
}

// NewDispatcher creates a dispatcher over the given router.
func NewDispatcher(r *router.Router, disclose bool) *Dispatcher {
	return &Dispatcher{router: r, disclose: disclose}
}

// Dispatch resolves and invokes method. Every failure is returned as a
// taxonomy error: an unresolvable or unexposed method is method not
// found (carrying the full namespaced name), an argument shape mismatch
// is invalid params, any other handler failure is an application error
// unless the handler deliberately raised a taxonomy error itself.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	h, local, ok := d.router.Resolve(method)
	if !ok || !h.Exposes(local) {
		return nil, protocol.NewMethodNotFound(method)
	}

	args, err := decodeArgs(params)
	if err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	result, err := h.Invoke(ctx, local, args)
	if err != nil {
		return nil, protocol.Wrap(err, d.disclose)
	}
	return result, nil
}

// decodeArgs maps the params member onto the call shape: absent params
// mean no arguments, an array is spread positionally in order, and an
// object becomes a single structured argument.
func decodeArgs(params json.RawMessage) ([]any, error) {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var positional []any
		if err := json.Unmarshal(trimmed, &positional); err != nil {
			return nil, err
		}
		return positional, nil
	case '{':
		var keyed map[string]any
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, err
		}
		return []any{keyed}, nil
	default:
		// The validator rejects scalar params before dispatch; this
		// guards direct Dispatch callers.
		return nil, protocol.NewInvalidParams("params must be an array or an object")
	}
}
