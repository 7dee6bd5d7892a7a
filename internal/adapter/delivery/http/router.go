// Package http provides the HTTP delivery layer for the URL shortener service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vadimbarashkov/shortly/internal/metrics"
)

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
//
// The redirect route is registered last so that /health, /metrics, /swagger
// and /api keep priority over the {shortCode} parameter.
func NewRouter(logger *httplog.Logger, useCase urlUseCase, m *metrics.Metrics, reg *prometheus.Registry, baseURL string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(m))

	validate := validator.New()
	h := newURLHandler(useCase, validate, m, baseURL)

	r.Get("/health", h.health)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.getStats)
		r.Get("/search", h.searchURLs)

		r.Route("/urls", func(r chi.Router) {
			r.Post("/", h.shortenURL)
			r.Get("/", h.listURLs)
			r.Post("/bulk-delete", h.bulkDelete)

			r.Route("/{shortCode}", func(r chi.Router) {
				r.Get("/", h.getURLDetails)
				r.Put("/", h.modifyURL)
				r.Delete("/", h.deactivateURL)
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusFound)
	})

	r.Get("/{shortCode}", h.redirect)

	return r
}
