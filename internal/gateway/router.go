package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/api"
	"github.com/erazemk/shareit/internal/metrics"
)

// NewRouter creates the gateway router. Every public route of the server is
// mirrored here.
func NewRouter(g *Gateway, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(api.RequestID)
	r.Use(api.LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/", g.CreateUser)
		r.Get("/", g.Pass)
		r.Get("/{id}", g.ByID)
		r.Patch("/{id}", g.UpdateUser)
		r.Delete("/{id}", g.ByID)
	})

	r.Group(func(r chi.Router) {
		r.Use(api.RequireUser)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", g.CreateItem)
			r.Get("/", g.Paged)
			r.Get("/search", g.Search)
			r.Get("/{id}", g.ByID)
			r.Patch("/{id}", g.UpdateItem)
			r.Delete("/{id}", g.ByID)
			r.Post("/{id}/comment", g.Comment)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", g.CreateRequest)
			r.Get("/", g.Pass)
			r.Get("/all", g.Paged)
			r.Get("/{id}", g.ByID)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", g.CreateBooking)
			r.Get("/", g.Bookings)
			r.Get("/owner", g.Bookings)
			r.Get("/{id}", g.ByID)
			r.Patch("/{id}", g.Decide)
		})
	})

	return r
}
