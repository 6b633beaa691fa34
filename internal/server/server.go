// Package server exposes the analyzer over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/internal/explain"
	"github.com/lox/pokeradvisor/internal/vision"
	"github.com/rs/zerolog"
)

const (
	// Request body limits. Photos are sent inline as base64.
	maxJSONBody  = 64 << 10
	maxImageBody = 16 << 20

	shutdownTimeout = 10 * time.Second
)

// Server serves analysis requests
type Server struct {
	analyzer       *analyzer.Analyzer
	recognizer     *vision.Recognizer
	explainer      *explain.Fallback
	validator      *Validator
	upgrader       websocket.Upgrader
	allowedOrigins []string
	logger         *log.Logger
	access         zerolog.Logger
	clock          quartz.Clock

	mu          sync.RWMutex
	connections map[*Connection]struct{}
}

// Option configures a Server
type Option func(*Server)

// WithRecognizer enables POST /api/recognize.
func WithRecognizer(r *vision.Recognizer) Option {
	return func(s *Server) { s.recognizer = r }
}

// WithExplainer sets the remote explainer. Without one the template
// explanation is always returned.
func WithExplainer(e explain.Explainer) Option {
	return func(s *Server) { s.explainer = explain.WithFallback(e, s.logger) }
}

// WithAccessLog sets the JSON access logger.
func WithAccessLog(l zerolog.Logger) Option {
	return func(s *Server) { s.access = l }
}

// WithAllowedOrigins restricts browser and WebSocket origins. "*" allows all.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithClock sets the clock used for access log durations.
func WithClock(c quartz.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// NewServer creates a server around a.
func NewServer(a *analyzer.Analyzer, logger *log.Logger, opts ...Option) (*Server, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		analyzer:       a,
		validator:      validator,
		allowedOrigins: []string{"*"},
		logger:         logger.WithPrefix("server"),
		access:         zerolog.New(io.Discard),
		clock:          quartz.NewReal(),
		connections:    make(map[*Connection]struct{}),
	}
	s.explainer = explain.WithFallback(nil, s.logger)
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/explain", s.handleExplain)
	mux.HandleFunc("POST /api/recognize", s.handleRecognize)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return withRequestID(s.withAccessLog(s.withRecover(s.withCORS(mux))))
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully:
// open WebSocket connections are closed and in-flight requests drain.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	s.closeConnections()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ConnectionCount returns the number of open WebSocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	s.connections[c] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client disconnected", "total", total)
}

func (s *Server) closeConnections() {
	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		_ = c.Close() // Ignore close errors during shutdown
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleWebSocket upgrades the request and serves analyses over the socket
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s)
	s.register(client)
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister(client)
	}()
}
