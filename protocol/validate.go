package protocol

import (
	"bytes"
	"encoding/json"
)

// ValidRequest reports whether raw is a structurally valid request
// envelope: a JSON object whose protocolVersion is the string "2.0",
// whose method is a string, whose params (if present) is an array or
// object, and whose id (if present) is a string, a number or null.
//
// It is a total predicate: any input yields true or false, never an
// error.
func ValidRequest(raw json.RawMessage) bool {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return false
	}
	// JSON null decodes into a nil map without error.
	if members == nil {
		return false
	}

	version, ok := members["protocolVersion"]
	if !ok {
		return false
	}
	var v string
	if json.Unmarshal(version, &v) != nil || v != Version {
		return false
	}

	method, ok := members["method"]
	if !ok {
		return false
	}
	var m string
	if json.Unmarshal(method, &m) != nil {
		return false
	}

	if params, ok := members["params"]; ok {
		switch firstByte(params) {
		case '[', '{':
		default:
			return false
		}
	}

	if id, ok := members["id"]; ok && !validID(id) {
		return false
	}

	return true
}

// RequestID extracts the id member from a possibly malformed envelope,
// so an invalid request error can still be attributed to it. Returns
// nil when no well-typed id is readable.
func RequestID(raw json.RawMessage) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	if !validID(probe.ID) {
		return nil
	}
	return probe.ID
}

// validID reports whether raw is a string, a number or null.
func validID(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil
	case 'n':
		return bytes.Equal(raw, []byte("null"))
	default:
		var f float64
		return json.Unmarshal(raw, &f) == nil
	}
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
