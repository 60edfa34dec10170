package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jrpckit/jrpc/protocol"
)

// HTTP implements a JSON-RPC transport over HTTP POST.
// Each POST body is a complete payload, either a single request
// object or a batch array, and the response body carries the reply.
type HTTP struct {
	addr         string
	path         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxBodyBytes int64

	corsConfig      *CORSConfig
	shutdownTimeout time.Duration
	drainDelay      time.Duration

	mu         sync.RWMutex
	listenAddr string
	server     *http.Server
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.readTimeout = d
	}
}

// WithWriteTimeout sets the write timeout for HTTP responses.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.writeTimeout = d
	}
}

// WithPath sets the URL path that accepts JSON-RPC payloads.
// Default: /rpc
func WithPath(path string) HTTPOption {
	return func(h *HTTP) {
		h.path = path
	}
}

// WithMaxBodyBytes caps the size of accepted request bodies.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTP) {
		h.maxBodyBytes = n
	}
}

// NewHTTP creates a new HTTP transport.
func NewHTTP(addr string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		addr:            addr,
		path:            "/rpc",
		readTimeout:     30 * time.Second,
		writeTimeout:    30 * time.Second,
		maxBodyBytes:    4 << 20,
		shutdownTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Addr returns the configured address.
func (h *HTTP) Addr() string {
	return h.addr
}

// ListenAddr returns the actual address the server is listening on.
func (h *HTTP) ListenAddr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listenAddr
}

// Serve starts the HTTP server and handles requests until ctx is canceled.
func (h *HTTP) Serve(ctx context.Context, proc Processor) error {
	sm := NewShutdownManager(ShutdownConfig{
		Timeout:    h.shutdownTimeout,
		DrainDelay: h.drainDelay,
	})

	httpHandler := h.createHandler(proc, sm)

	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	h.mu.Lock()
	h.listenAddr = listener.Addr().String()
	h.server = &http.Server{
		Handler:      httpHandler,
		ReadTimeout:  h.readTimeout,
		WriteTimeout: h.writeTimeout,
	}
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout+h.drainDelay)
		defer cancel()
		if err := sm.Shutdown(drainCtx); err != nil {
			_ = h.server.Close()
			return err
		}
		if err := h.server.Shutdown(drainCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// createHandler builds the request mux, applying CORS when configured.
func (h *HTTP) createHandler(proc Processor, sm *ShutdownManager) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc(h.path, func(w http.ResponseWriter, r *http.Request) {
		h.handleRPC(w, r, proc, sm)
	})

	if h.corsConfig != nil {
		return CORSHandler(*h.corsConfig, mux)
	}
	return mux
}

// handleRPC handles a single JSON-RPC exchange over HTTP POST.
func (h *HTTP) handleRPC(w http.ResponseWriter, r *http.Request, proc Processor, sm *ShutdownManager) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !sm.TrackRequest() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	defer sm.CompleteRequest()

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	meta := protocol.RequestMeta{
		"remote_addr": r.RemoteAddr,
		"user_agent":  r.UserAgent(),
	}
	ctx := protocol.ContextWithRequestMeta(r.Context(), meta)

	reply := proc.Process(ctx, body)
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}
