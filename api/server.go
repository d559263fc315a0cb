/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  unique ID per request for tracing
  2. Recoverer:  panic recovery (500 instead of crash)
  3. CORS:       cross-origin requests for the dashboard frontend

SECURITY NOTE:
  No authentication middleware; auth is handled by the deployment's
  reverse proxy and is out of scope here.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
		})

		r.Route("/patterns", func(r chi.Router) {
			r.Get("/", h.ListPatterns)
			r.Post("/", h.CreatePattern)
		})

		r.Post("/schedules", h.CreateSchedule)
		r.Post("/payrecords", h.CreatePayRecord)
		r.Post("/bonuses", h.CreateBonus)
		r.Post("/overtime", h.CreateOvertime)

		r.Route("/staff", func(r chi.Router) {
			r.Get("/profiles", h.ListProfiles)
			r.Put("/{id}/profile", h.PutProfile)
		})

		r.Get("/reports/profitability", h.GetProfitabilityReport)
	})

	return r
}
