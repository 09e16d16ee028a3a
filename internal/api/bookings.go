package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/service"
)

// BookingsHandler handles booking endpoints.
type BookingsHandler struct {
	Bookings *service.BookingService
}

type bookingRequest struct {
	ItemID int64           `json:"itemId"`
	Start  model.LocalTime `json:"start"`
	End    model.LocalTime `json:"end"`
}

// Create handles POST /bookings.
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.Bookings.Create(r.Context(), GetUserID(r.Context()), service.NewBooking{
		ItemID: req.ItemID,
		Start:  req.Start.Time,
		End:    req.End.Time,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, booking)
}

// Decide handles PATCH /bookings/{id}?approved=.
func (h *BookingsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid booking id")
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := h.Bookings.Decide(r.Context(), GetUserID(r.Context()), id, approved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, booking)
}

// Get handles GET /bookings/{id}.
func (h *BookingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := h.Bookings.Get(r.Context(), GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, booking)
}

// ListByBooker handles GET /bookings.
func (h *BookingsHandler) ListByBooker(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Bookings.ListByBooker)
}

// ListByOwner handles GET /bookings/owner.
func (h *BookingsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Bookings.ListByOwner)
}

type bookingLister func(ctx context.Context, userID int64, state model.BookingState, page *model.Page) ([]model.Booking, error)

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request, fn bookingLister) {
	page, err := optionalPage(r)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	state := model.BookingState(r.URL.Query().Get("state"))
	bookings, err := fn(r.Context(), GetUserID(r.Context()), state, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, bookings)
}
