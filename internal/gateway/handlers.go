package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/api"
	"github.com/erazemk/shareit/internal/model"
)

const maxRequestBody = 1 << 20

// Gateway validates client requests and relays the valid ones to the server.
type Gateway struct {
	client   *Client
	validate *Validator
	logger   *zap.Logger

	// Now returns the current time. Tests replace it.
	Now func() time.Time
}

// New creates a Gateway forwarding through client.
func New(client *Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		client:   client,
		validate: NewValidator(),
		logger:   logger.Named("gateway"),
		Now:      time.Now,
	}
}

// CreateUser handles POST /users.
func (g *Gateway) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in userCreate
	g.forwardBody(w, r, &in, nil)
}

// UpdateUser handles PATCH /users/{id}.
func (g *Gateway) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := g.pathID(w, r); !ok {
		return
	}
	var in userUpdate
	g.forwardBody(w, r, &in, nil)
}

// CreateItem handles POST /items.
func (g *Gateway) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in itemCreate
	g.forwardBody(w, r, &in, nil)
}

// UpdateItem handles PATCH /items/{id}.
func (g *Gateway) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := g.pathID(w, r); !ok {
		return
	}
	var in itemUpdate
	g.forwardBody(w, r, &in, nil)
}

// Comment handles POST /items/{id}/comment.
func (g *Gateway) Comment(w http.ResponseWriter, r *http.Request) {
	if _, ok := g.pathID(w, r); !ok {
		return
	}
	var in commentCreate
	g.forwardBody(w, r, &in, nil)
}

// CreateRequest handles POST /requests.
func (g *Gateway) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in requestCreate
	g.forwardBody(w, r, &in, nil)
}

// CreateBooking handles POST /bookings.
func (g *Gateway) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in bookingCreate
	g.forwardBody(w, r, &in, func() error {
		return in.checkWindow(g.Now())
	})
}

// Decide handles PATCH /bookings/{id}?approved=.
func (g *Gateway) Decide(w http.ResponseWriter, r *http.Request) {
	if _, ok := g.pathID(w, r); !ok {
		return
	}
	raw := r.URL.Query().Get("approved")
	if raw == "" {
		jsonError(w, r, http.StatusBadRequest, "approved is required")
		return
	}
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "approved must be true or false")
		return
	}
	g.forward(w, r, url.Values{"approved": {strconv.FormatBool(approved)}}, nil)
}

// ByID handles the plain GET and DELETE routes that only carry a path ID.
func (g *Gateway) ByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := g.pathID(w, r); !ok {
		return
	}
	g.forward(w, r, nil, nil)
}

// Pass forwards requests that carry neither a body nor parameters.
func (g *Gateway) Pass(w http.ResponseWriter, r *http.Request) {
	g.forward(w, r, nil, nil)
}

// Paged handles listings taking from and size.
func (g *Gateway) Paged(w http.ResponseWriter, r *http.Request) {
	query, ok := g.page(w, r)
	if !ok {
		return
	}
	g.forward(w, r, query, nil)
}

// Search handles GET /items/search.
func (g *Gateway) Search(w http.ResponseWriter, r *http.Request) {
	query, ok := g.page(w, r)
	if !ok {
		return
	}
	query.Set("text", r.URL.Query().Get("text"))
	g.forward(w, r, query, nil)
}

// Bookings handles GET /bookings and GET /bookings/owner.
func (g *Gateway) Bookings(w http.ResponseWriter, r *http.Request) {
	state, err := model.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	query, ok := g.page(w, r)
	if !ok {
		return
	}
	query.Set("state", string(state))
	g.forward(w, r, query, nil)
}

// forwardBody decodes the body into dst, validates it with the struct tags
// and the optional check, then relays the raw bytes.
func (g *Gateway) forwardBody(w http.ResponseWriter, r *http.Request, dst any, check func() error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := json.Unmarshal(body, dst); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := g.validate.Validate(dst); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if check != nil {
		if err := check(); err != nil {
			jsonError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	g.forward(w, r, nil, body)
}

// forward relays the request path to the server and copies the reply back.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, query url.Values, body []byte) {
	resp, err := g.client.Forward(r.Context(), r.Method, r.URL.Path, query, api.GetUserID(r.Context()), body)
	if err != nil {
		api.Logger(r.Context()).Error("forwarding request", zap.Error(err))
		jsonError(w, r, http.StatusBadGateway, "server unavailable")
		return
	}
	g.logger.Debug("relayed",
		zap.String("request_id", api.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", resp.Status),
	)

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		api.Logger(r.Context()).Warn("writing response", zap.Error(err))
	}
}

func (g *Gateway) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// page reads from and size with their defaults and rejects negative offsets
// and non-positive sizes.
func (g *Gateway) page(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	from, err := intParam(r, "from", model.DefaultFrom)
	if err == nil && from < 0 {
		err = errors.New("from must not be negative")
	}
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}

	size, err := intParam(r, "size", model.DefaultSize)
	if err == nil && size <= 0 {
		err = errors.New("size must be positive")
	}
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return url.Values{
		"from": {strconv.Itoa(from)},
		"size": {strconv.Itoa(size)},
	}, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func jsonError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		api.Logger(r.Context()).Warn("error encoding response", zap.Error(err))
	}
}
