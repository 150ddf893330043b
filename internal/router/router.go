package router

import (
	"expirytrack-api/internal/handler"
	"expirytrack-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler            *handler.Handler
	ItemHandler        *handler.ItemHandler
	SpreadsheetHandler *handler.SpreadsheetHandler
	DashboardHandler   *handler.DashboardHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/stats", cfg.Handler.Stats)
		}

		if cfg.ItemHandler != nil {
			r.Route("/items", func(r chi.Router) {
				r.Post("/", cfg.ItemHandler.Save)
				r.Get("/", cfg.ItemHandler.List)
				r.Get("/all", cfg.ItemHandler.All)
				r.Get("/search", cfg.ItemHandler.Search)
				r.Get("/scan", cfg.ItemHandler.Scan)

				if cfg.SpreadsheetHandler != nil {
					r.Post("/import", cfg.SpreadsheetHandler.Import)
					r.Get("/export", cfg.SpreadsheetHandler.Export)
				}

				r.Route("/{barcode}", func(r chi.Router) {
					r.Patch("/", cfg.ItemHandler.Update)
					r.Delete("/", cfg.ItemHandler.Delete)
					r.Post("/edit", cfg.ItemHandler.BeginEdit)
					r.Put("/edit", cfg.ItemHandler.CommitEdit)
					r.Delete("/edit", cfg.ItemHandler.CancelEdit)
				})
			})
		}

		if cfg.DashboardHandler != nil {
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", cfg.DashboardHandler.Get)
				r.Post("/recompute", cfg.DashboardHandler.Recompute)
			})
		}
	})

	return r
}
