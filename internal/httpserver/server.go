// Package httpserver exposes the same JSON-RPC dispatcher over HTTP for
// hosts that prefer a network transport to stdio. It is optional: the
// server only starts when a listen port is configured.
package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/diigo-mcp/internal/config"
	"github.com/MrSnakeDoc/diigo-mcp/internal/httpserver/mw"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
	"github.com/MrSnakeDoc/diigo-mcp/internal/mcp"
	"github.com/MrSnakeDoc/diigo-mcp/internal/version"
)

// Server wraps the HTTP transport and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the HTTP server (router, middlewares, routes).
func New(cfg *config.Config, loggerClient logger.Logger, handler *mcp.Handler) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer) // never crash the process on panic
	// Tool calls paginate the full bookmark set upstream; allow for
	// several retried pages before cutting a request off.
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(mw.Log(loggerClient))

	r.Post("/mcp", rpcHandler(handler))
	r.Get("/healthz", healthz())

	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: loggerClient,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP transport listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP transport shutting down...")
	return s.http.Shutdown(ctx)
}

// rpcHandler bridges one POST body to the shared JSON-RPC dispatcher.
func rpcHandler(handler *mcp.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		var req mcp.Request
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, &mcp.Response{
				JSONRPC: "2.0",
				Error:   &mcp.RPCError{Code: -32700, Message: "Parse error"},
			})
			return
		}

		resp := handler.Handle(r.Context(), req)
		if resp == nil {
			// Notifications get no body.
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeJSON(w, resp)
	}
}

func healthz() http.HandlerFunc {
	type response struct {
		Status  string `json:"status"`
		Version string `json:"version,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, response{Status: "ok", Version: version.Version})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
