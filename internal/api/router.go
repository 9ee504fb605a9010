package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	if s.metrics != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)
		r.Get("/system/metrics", s.handleMetrics)

		// WebSocket event stream (read-only)
		r.Get("/ws", s.handleWebSocket)

		r.With(bodySizeLimit(maxRequestBodySize)).Post("/auth/token", s.handleToken)
		r.Get("/facilities", s.handleListFacilities)

		r.Route("/facilities/{facility}", func(r chi.Router) {
			r.Get("/aisles", s.handleListAisles)
			r.Get("/aisles/{aisle}/leds", s.handleAisleLeds)
			r.Get("/locations/{id}", s.handleGetLocation)
			r.Get("/locations/{id}/leds", s.handleLocationLeds)
			r.Get("/locations/{id}/endcap", s.handleGetEndcap)
			r.Get("/controllers", s.handleListControllers)
			r.Get("/paths", s.handleListPaths)
			r.Get("/imports", s.handleListImports)

			// Mutating routes require a bearer token
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)

				// Aisle files are larger than JSON bodies
				r.With(bodySizeLimit(maxImportBodySize)).Post("/imports/aisles", s.handleImportAisles)

				r.Group(func(r chi.Router) {
					r.Use(bodySizeLimit(maxRequestBodySize))

					r.Post("/controllers", s.handleCreateController)
					r.Put("/locations/{id}/controller", s.handleSetController)
					r.Put("/locations/{id}/indicator", s.handleSetIndicator)
					r.Put("/locations/{id}/endcap", s.handleSetEndcap)
					r.Post("/locations/{id}/offset", s.handleOffsetTier)
					r.Put("/locations/{id}/path-segment", s.handleAssociateSegment)
					r.Post("/aliases", s.handleCreateAlias)
					r.Post("/paths", s.handleCreatePath)
					r.Post("/paths/{path}/segments", s.handleAddSegment)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"ws_clients":     s.hub.ClientCount(),
	}
	if s.mqtt != nil {
		body["mqtt_connected"] = s.mqtt.IsConnected()
	}
	writeJSON(w, http.StatusOK, body)
}
