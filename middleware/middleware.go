package middleware

import "time"

// DefaultStack returns the recommended production middleware stack:
// panic recovery, request ID injection, and logging. The engine applies
// it around every batch item, so each logical request is recovered and
// logged on its own.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Logging(logger),
	}
}

// DefaultStackWithTimeout returns the default stack with a per-item
// deadline between request ID injection and logging.
func DefaultStackWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Timeout(timeout),
		Logging(logger),
	}
}
