package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all routes: admin campaign management and the
// public tracking surface.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.Index)
	r.Get("/health", h.HealthCheck)

	// Admin surface
	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", h.CreateCampaign)
		r.Get("/{id}", h.GetCampaign)
		r.Post("/{id}/send", h.SendCampaign)
	})
	r.Get("/admin/dashboard/{id}", h.AdminDashboard)
	r.Get("/admin/report/{id}", h.CampaignReport)

	// Public tracking surface: reached from lure emails
	r.Get("/track/{token}", h.TrackClick)
	r.Post("/submit/{token}", h.SubmitCredentials)

	return r
}
