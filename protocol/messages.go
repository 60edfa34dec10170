package protocol

import "encoding/json"

// Version is the protocol version string required in every envelope.
const Version = "2.0"

// Request represents a JSON-RPC 2.0 request envelope.
//
// ID and Params are kept as raw JSON so the caller's id type (string,
// number or null) is echoed byte for byte, and so an absent id remains
// distinguishable from an explicit null.
type Request struct {
	Version string          `json:"protocolVersion"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification returns true if this request has no id member.
// Notifications never receive a reply, regardless of outcome.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response represents a JSON-RPC 2.0 response envelope. Exactly one of
// Result and Error is present on the wire.
type Response struct {
	Version string          `json:"protocolVersion"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// MarshalJSON emits the success or error form of the envelope. A nil
// handler result still serializes a result member, so the envelope
// always carries exactly one of result and error.
func (r *Response) MarshalJSON() ([]byte, error) {
	id := r.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	if r.Error != nil {
		return json.Marshal(struct {
			Version string          `json:"protocolVersion"`
			Error   *Error          `json:"error"`
			ID      json.RawMessage `json:"id"`
		}{r.Version, r.Error, id})
	}
	return json.Marshal(struct {
		Version string          `json:"protocolVersion"`
		Result  any             `json:"result"`
		ID      json.RawMessage `json:"id"`
	}{r.Version, r.Result, id})
}

// NewResponse creates a successful response echoing the request id.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{
		Version: Version,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates an error response. A nil id serializes as
// null, the required form when no request could be attributed.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{
		Version: Version,
		ID:      id,
		Error:   err,
	}
}
