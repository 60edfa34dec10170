// Package protocol implements the JSON-RPC 2.0 envelope layer.
package protocol

import (
	"errors"
	"fmt"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeApplicationError is the server-defined code for failures raised
	// by handler implementations.
	CodeApplicationError = -32000
)

// ErrInvalidArgs tags handler failures caused by an argument shape or
// arity mismatch. Errors wrapping it are reported as invalid params
// rather than application errors.
var ErrInvalidArgs = errors.New("invalid arguments")

// Error represents a JSON-RPC 2.0 error object. The wire message is a
// fixed template per error kind; detail holds the underlying failure
// description for logs and observers without exposing it to callers.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("jrpc: %s: %s (code: %d)", e.Message, e.detail, e.Code)
	}
	return fmt.Sprintf("jrpc: %s (code: %d)", e.Message, e.Code)
}

// Is implements errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of the error with additional data attached.
func (e *Error) WithData(data any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Data:    data,
		detail:  e.detail,
	}
}

// Detail returns the non-wire failure description, if any.
func (e *Error) Detail() string {
	return e.detail
}

// NewParseError creates a parse error (-32700).
func NewParseError(detail string) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error", detail: detail}
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest(detail string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Invalid Request", detail: detail}
}

// NewMethodNotFound creates a method not found error (-32601) carrying
// the full namespaced method name as detail.
func NewMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found", detail: method}
}

// NewInvalidParams creates an invalid params error (-32602).
func NewInvalidParams(detail string) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid params", detail: detail}
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(detail string) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error", detail: detail}
}

// NewApplicationError creates an application error (-32000) from a
// handler failure. The failure description is attached as data only
// when disclose is set; otherwise it stays detail-only.
func NewApplicationError(err error, disclose bool) *Error {
	e := &Error{Code: CodeApplicationError, Message: "Application error", detail: err.Error()}
	if disclose {
		e.Data = err.Error()
	}
	return e
}

// Wrap classifies an arbitrary handler failure into the taxonomy.
// Taxonomy errors pass through unchanged, preserving their code.
// Failures tagged with ErrInvalidArgs become invalid params; everything
// else becomes an application error gated by the disclose flag.
func Wrap(err error, disclose bool) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, ErrInvalidArgs) {
		return NewInvalidParams(err.Error())
	}
	return NewApplicationError(err, disclose)
}
