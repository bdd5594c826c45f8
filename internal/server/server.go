package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// Server is the hub's HTTP front end. It exists only for the http
// transport; stdio deployments never construct one.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	// Required dependencies.
	MCPServer *mcpserver.MCPServer
	Store     objstore.Gateway
	Scheme    keys.Scheme
	Logger    *slog.Logger

	// HTTP server settings.
	Addr                string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64
	Version             string
}

// New creates the HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	mux := http.NewServeMux()

	// MCP StreamableHTTP transport. The mcp-go handler speaks JSON-RPC
	// over POST and an SSE listening stream over GET on the same path.
	mcpHTTP := mcpserver.NewStreamableHTTPServer(cfg.MCPServer)
	mux.Handle("/mcp", maxBytesMiddleware(cfg.MaxRequestBodyBytes, mcpHTTP))

	mux.Handle("GET /healthz", healthHandler(cfg.Store, cfg.Scheme, cfg.Version))

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// healthHandler reports whether the object store answers. An absent
// registry document is still healthy (a fresh bucket has none); only a
// store error degrades the check.
func healthHandler(store objstore.Gateway, scheme keys.Scheme, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storeStatus := "connected"
		status := "healthy"
		httpStatus := http.StatusOK

		if _, err := store.Exists(r.Context(), scheme.Registry()); err != nil {
			storeStatus = "unreachable"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  status,
			"store":   storeStatus,
			"version": version,
		})
	})
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
