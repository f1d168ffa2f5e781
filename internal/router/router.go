package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/actuallystonmai/bookshelf/internal/handler"
)

type Options struct {
	RequestTimeout    time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	AllowedOrigins    []string
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitRequests, opts.RateLimitWindow))
		}

		r.Get("/books", h.ListBooks)
		r.Get("/books/page-range", h.GetPageRange)
		r.Get("/books/{bookID}", h.GetBook)

		r.Get("/recommendations", h.GetRecommendations)
		r.Post("/recommendations", h.PostRecommendations)
		r.Post("/recommendations/batch", h.PostBatchRecommendations)
	})

	return r
}
