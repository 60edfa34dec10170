// Package protocol defines the JSON-RPC 2.0 message types, the error
// taxonomy and the envelope validation predicate.
//
// This package provides the low-level protocol structures used by jrpc.
// Most users should use the higher-level jrpc package instead.
//
// # Request and Response Types
//
// The package defines the core JSON-RPC 2.0 message types:
//
//	type Request struct {
//	    Version string          `json:"protocolVersion"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
//	type Response struct {
//	    Version string          `json:"protocolVersion"`
//	    Result  any             `json:"result,omitempty"`
//	    Error   *Error          `json:"error,omitempty"`
//	    ID      json.RawMessage `json:"id"`
//	}
//
// A request without an id member is a notification and never receives a
// reply. Ids are kept as raw JSON so the caller's id type is echoed
// exactly.
//
// # Error Taxonomy
//
// Every failure maps to exactly one fixed code:
//
//	CodeParseError       = -32700  // Malformed JSON text
//	CodeInvalidRequest   = -32600  // Invalid request envelope
//	CodeMethodNotFound   = -32601  // No such method
//	CodeInvalidParams    = -32602  // Argument shape or arity mismatch
//	CodeInternalError    = -32603  // Unclassified server failure
//	CodeApplicationError = -32000  // Failure raised by a handler
//
// Helper constructors create properly formed errors:
//
//	err := protocol.NewMethodNotFound("math.add")
//	err := protocol.NewInvalidParams("got 3 arguments, want 2")
//
// Wrap classifies arbitrary handler failures into the taxonomy;
// underlying detail is attached to application errors only when
// disclosure is enabled.
//
// # Validation
//
// ValidRequest is the total envelope predicate used by the pipeline:
// it never panics or errors, it just answers whether a decoded batch
// item has the required shape.
package protocol
