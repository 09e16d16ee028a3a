package api

import (
	"net/http"

	"github.com/erazemk/shareit/internal/service"
)

// RequestsHandler handles item request board endpoints.
type RequestsHandler struct {
	Requests *service.RequestService
}

type itemRequestRequest struct {
	Description string `json:"description"`
}

// Create handles POST /requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Requests.Create(r.Context(), GetUserID(r.Context()), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, created)
}

// Get handles GET /requests/{id}.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.Requests.Get(r.Context(), GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, req)
}

// ListOwn handles GET /requests.
func (h *RequestsHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListOwn(r.Context(), GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, reqs)
}

// ListOthers handles GET /requests/all.
func (h *RequestsHandler) ListOthers(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reqs, err := h.Requests.ListOthers(r.Context(), GetUserID(r.Context()), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusOK, reqs)
}
