package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the full route tree.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pairs", func(r chi.Router) {
			r.Post("/", h.RegisterPair)
			r.Get("/", h.Pairs)
			r.Get("/lookup", h.Lookup)
		})

		r.Route("/books/{assetA}/{assetB}", func(r chi.Router) {
			r.Post("/orders", h.PlaceOrder)
			r.Delete("/orders/{side}", h.CancelOrder)
			r.Get("/side/{side}", h.Side)
			r.Get("/best/{side}", h.Best)
			r.Get("/spread", h.Spread)
		})
	})

	return r
}
