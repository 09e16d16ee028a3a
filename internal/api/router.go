package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/metrics"
	"github.com/erazemk/shareit/internal/service"
)

// Services bundles the services the router dispatches to.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Requests *service.RequestService
	Bookings *service.BookingService
}

// NewServices creates all services over db.
func NewServices(db *sql.DB, logger *zap.Logger) *Services {
	return &Services{
		Users:    service.NewUserService(db, logger),
		Items:    service.NewItemService(db, logger),
		Requests: service.NewRequestService(db, logger),
		Bookings: service.NewBookingService(db, logger),
	}
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	usersHandler := &UsersHandler{Users: svc.Users}
	itemsHandler := &ItemsHandler{Items: svc.Items}
	requestsHandler := &RequestsHandler{Requests: svc.Requests}
	bookingsHandler := &BookingsHandler{Bookings: svc.Bookings}

	r.Get("/healthz", Health(db))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/", usersHandler.Create)
		r.Get("/", usersHandler.List)
		r.Get("/{id}", usersHandler.Get)
		r.Patch("/{id}", usersHandler.Update)
		r.Delete("/{id}", usersHandler.Delete)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", itemsHandler.Create)
			r.Get("/", itemsHandler.List)
			r.Get("/search", itemsHandler.Search)
			r.Get("/{id}", itemsHandler.Get)
			r.Patch("/{id}", itemsHandler.Update)
			r.Delete("/{id}", itemsHandler.Delete)
			r.Post("/{id}/comment", itemsHandler.Comment)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requestsHandler.Create)
			r.Get("/", requestsHandler.ListOwn)
			r.Get("/all", requestsHandler.ListOthers)
			r.Get("/{id}", requestsHandler.Get)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingsHandler.Create)
			r.Get("/", bookingsHandler.ListByBooker)
			r.Get("/owner", bookingsHandler.ListByOwner)
			r.Get("/{id}", bookingsHandler.Get)
			r.Patch("/{id}", bookingsHandler.Decide)
		})
	})

	return r
}

// Health handles GET /healthz. It reports 503 while the database is
// unreachable.
func Health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			Logger(r.Context()).Warn("health check failed", zap.Error(err))
			jsonError(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
