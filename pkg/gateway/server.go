package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"hermod-hq/hermod/pkg/backend"
	"hermod-hq/hermod/pkg/config"
	"hermod-hq/hermod/pkg/gateway/middleware"
	"hermod-hq/hermod/pkg/settings"
	"hermod-hq/hermod/pkg/telemetry/metrics"
)

// maxRequestBody caps inbound request bodies. Tool payloads are small; this
// only guards against a runaway client.
const maxRequestBody = 16 << 20

// Server is the HTTP face of the gateway: the RPC path, the status path,
// and optionally the metrics path.
type Server struct {
	config   config.GatewayConfig
	router   *Router
	registry *backend.Registry
	store    *settings.Store
	metrics  *metrics.Collector

	metricsEnabled bool
	metricsPath    string

	httpServer *http.Server
}

// NewServer wires the server from its parts. mc may be nil, in which case
// the metrics path is not served regardless of configuration.
func NewServer(cfg *config.Config, router *Router, registry *backend.Registry, store *settings.Store, mc *metrics.Collector) *Server {
	s := &Server{
		config:         cfg.Gateway,
		router:         router,
		registry:       registry,
		store:          store,
		metrics:        mc,
		metricsEnabled: cfg.Telemetry.Metrics.Enabled && mc != nil,
		metricsPath:    cfg.Telemetry.Metrics.Path,
	}

	s.httpServer = &http.Server{
		Addr:        cfg.Gateway.ListenAddress,
		Handler:     s.buildHandler(),
		ReadTimeout: cfg.Gateway.ReadTimeout,
		IdleTimeout: cfg.Gateway.IdleTimeout,
		// No write timeout: a forwarded request legitimately holds its
		// connection for the whole retry window.
	}

	return s
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRPC)
	mux.HandleFunc("/status", s.handleStatus)
	if s.metricsEnabled {
		mux.Handle(s.metricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	return handler
}

// Start serves until ctx is cancelled or the listener fails, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}
	return nil
}

// handleRPC serves the RPC path. The mux routes every unknown path here, so
// anything but the root is a 404.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	response := s.router.Route(r.Context(), body)

	// Local actions and protocol errors alike ride a 200: the envelope is
	// the contract, not the transport status.
	s.writeJSON(w, r, http.StatusOK, response)
}

// handleStatus serves the status path. Each query piggybacks a discovery
// refresh, rate-limited by the registry, so a dashboard polling status keeps
// membership current without a probe storm.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.metrics.RecordRequest("status")
	s.registry.Refresh(r.Context())

	status := BuildStatus(s.registry, s.store)
	body, err := json.Marshal(status)
	if err != nil {
		http.Error(w, "failed to encode status", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, r, http.StatusOK, body)
}

// writeJSON delivers a response on a best-effort basis. The client may have
// walked away during a long retry window; a failed write is its loss, not a
// gateway failure.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("client went away before the response was delivered",
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
	}
}
