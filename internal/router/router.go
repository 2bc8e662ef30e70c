package router

import (
	"net/http"

	"product-api/internal/handler"
	"product-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	healthHandler *handler.HealthHandler,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Request ID -> Recovery -> Logging -> CORS
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", healthHandler.Check)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Post("/", productHandler.Create)
		r.Get("/sorted-by-price", productHandler.SortedByPrice)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", productHandler.GetByID)
			r.Put("/", productHandler.Update)
			r.Delete("/", productHandler.Delete)
			r.Get("/check-stock", productHandler.CheckStock)
		})
	})

	return r
}
