// Package httpapi exposes the document question-answering service over
// HTTP. The surface is deliberately small: upload a document, ask a
// question, clear one user's cache, clear everything.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/retolabs/docqa/internal/core/ports/driving"
	"github.com/retolabs/docqa/internal/logger"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20

// Server serves the HTTP API.
type Server struct {
	ingest driving.IngestService
	answer driving.AnswerService
	cache  driving.CacheService

	maxUploadBytes int64
	readTimeout    time.Duration
	writeTimeout   time.Duration

	server   *http.Server
	listener net.Listener
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithMaxUploadBytes caps the accepted upload size.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithTimeouts sets the read and write timeouts of the listener.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// NewServer creates a server wired to the given services.
func NewServer(ingest driving.IngestService, answer driving.AnswerService, cache driving.CacheService, opts ...ServerOption) *Server {
	s := &Server{
		ingest:         ingest,
		answer:         answer,
		cache:          cache,
		maxUploadBytes: DefaultMaxUploadBytes,
		readTimeout:    30 * time.Second,
		// Answer generation waits on a remote model, so writes get a
		// generous bound.
		writeTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/askqa/{user_name}", s.handleAsk)
	mux.HandleFunc("GET /api/clearall-user/{user_name}", s.handleClearUser)
	mux.HandleFunc("GET /api/clearall", s.handleClearAll)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start begins listening on addr. It returns once the listener is
// bound; request serving continues in the background until Shutdown.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Warn("http server stopped: %v", err)
		}
	}()

	logger.Info("listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
