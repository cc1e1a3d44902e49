package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/appliance-sim/internal/simulation"
)

const (
	defaultWSPath      = "/ws"
	defaultMetricsPath = "/metrics"

	rootMessage = "¡API de simulación de consumo energético funcionando! Accede a /consumo para ver los datos."
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/consumo", s.handleConsumo)
	r.Get("/consumo/{id}", s.handleConsumoByID)

	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = defaultWSPath
	}
	r.Get(wsPath, s.handleWebSocket)

	if s.metricsCfg.Enabled && s.collector != nil {
		path := s.metricsCfg.Path
		if path == "" {
			path = defaultMetricsPath
		}
		r.Method(http.MethodGet, path, s.collector.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/devices", s.handleListDevices)
		r.Get("/metrics", s.handleMetrics)
	})

	return r
}

// handleRoot is the plain-text liveness message.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(rootMessage))
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"mode":    s.mode,
	})
}

// handleListDevices returns the static appliance catalogue.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := simulation.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}
