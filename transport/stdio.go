package transport

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
)

// Stdio implements a line-delimited JSON-RPC transport over stdin/stdout.
// Each input line is a complete payload, single request or batch, and
// each non-empty reply is written as a single output line.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.errOut = w
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve reads payloads from stdin until EOF or ctx cancellation.
func (s *Stdio) Serve(ctx context.Context, proc Processor) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// The reader goroutine records any scan failure
				// before closing lines; surface it here.
				select {
				case err := <-scanErr:
					return err
				default:
					return nil // EOF
				}
			}
			if len(line) == 0 {
				continue
			}
			if reply := proc.Process(ctx, line); reply != nil {
				s.writeLine(reply)
			}
		}
	}
}

func (s *Stdio) writeLine(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.out.Write(data)
	_, _ = s.out.Write([]byte("\n"))
}
