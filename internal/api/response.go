package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/service"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			Logger(r.Context()).Warn("error encoding response", zap.Error(err))
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, r *http.Request, status int, message string) {
	jsonResponse(w, r, status, map[string]string{"error": message})
}

// writeError maps a service error onto an HTTP status. Errors without a kind
// are logged and reported as 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		Logger(r.Context()).Error("request failed", zap.Error(err))
		jsonError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidRequest):
		status = http.StatusBadRequest
	}
	if errors.Is(err, service.ErrForbidden) {
		Logger(r.Context()).Info("access denied", zap.String("reason", svcErr.Message))
	}
	jsonError(w, r, status, svcErr.Message)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// queryPage reads from/size, falling back to the defaults for missing
// values.
func queryPage(r *http.Request) (model.Page, error) {
	page := model.Page{From: model.DefaultFrom, Size: model.DefaultSize}
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, errors.New("invalid from")
		}
		page.From = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, errors.New("invalid size")
		}
		page.Size = n
	}
	return page, nil
}

// optionalPage is queryPage for listings that may be unpaged. It returns nil
// when neither from nor size is present.
func optionalPage(r *http.Request) (*model.Page, error) {
	q := r.URL.Query()
	if !q.Has("from") && !q.Has("size") {
		return nil, nil
	}
	page, err := queryPage(r)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
