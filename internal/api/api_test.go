package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/db"
	"github.com/erazemk/shareit/internal/model"
)

func setupTestServer(t *testing.T) (*httptest.Server, *Services) {
	t.Helper()
	database := db.NewTestDB(t)
	svc := NewServices(database, zap.NewNop())
	server := httptest.NewServer(NewRouter(database, svc, zap.NewNop()))
	t.Cleanup(server.Close)
	return server, svc
}

// sharerRequest builds a request on behalf of userID. A zero userID sends no
// identity header.
func sharerRequest(method, url string, userID int64, body any) (*http.Request, error) {
	var bodyReader io.Reader = bytes.NewReader(nil)
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		req.Header.Set(UserIDHeader, strconv.FormatInt(userID, 10))
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func do(t *testing.T, method, url string, userID int64, body, out any) int {
	t.Helper()
	req, err := sharerRequest(method, url, userID, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func createUser(t *testing.T, server *httptest.Server, name string) model.User {
	t.Helper()
	var u model.User
	status := do(t, "POST", server.URL+"/users", 0, map[string]string{
		"name": name, "email": name + "@example.com",
	}, &u)
	if status != http.StatusOK {
		t.Fatalf("create user %s: status %d", name, status)
	}
	return u
}

func createItem(t *testing.T, server *httptest.Server, ownerID int64, name string) model.Item {
	t.Helper()
	var it model.Item
	status := do(t, "POST", server.URL+"/items", ownerID, map[string]any{
		"name": name, "description": name + " for rent", "available": true,
	}, &it)
	if status != http.StatusOK {
		t.Fatalf("create item %s: status %d", name, status)
	}
	return it
}

func TestUsersAPIFlow(t *testing.T) {
	server, _ := setupTestServer(t)

	alice := createUser(t, server, "alice")
	createUser(t, server, "bob")

	var errBody map[string]string
	status := do(t, "POST", server.URL+"/users", 0, map[string]string{
		"name": "dup", "email": "alice@example.com",
	}, &errBody)
	if status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", status)
	}
	if errBody["error"] == "" {
		t.Error("expected error message in body")
	}

	status = do(t, "POST", server.URL+"/users", 0, map[string]string{"name": "x", "email": "nope"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for bad email, got %d", status)
	}

	var updated model.User
	status = do(t, "PATCH", fmt.Sprintf("%s/users/%d", server.URL, alice.ID), 0, map[string]string{"name": "Alice"}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on patch, got %d", status)
	}
	if updated.Name != "Alice" || updated.Email != "alice@example.com" {
		t.Errorf("unexpected user after patch: %+v", updated)
	}

	var users []model.User
	if status := do(t, "GET", server.URL+"/users", 0, nil, &users); status != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", status)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	if status := do(t, "DELETE", fmt.Sprintf("%s/users/%d", server.URL, alice.ID), 0, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", status)
	}
	if status := do(t, "GET", fmt.Sprintf("%s/users/%d", server.URL, alice.ID), 0, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
	if status := do(t, "GET", server.URL+"/users/abc", 0, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", status)
	}
}

func TestUserIDHeaderRequired(t *testing.T) {
	server, _ := setupTestServer(t)

	if status := do(t, "GET", server.URL+"/items", 0, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 without header, got %d", status)
	}

	req, _ := sharerRequest("GET", server.URL+"/bookings", 0, nil)
	req.Header.Set(UserIDHeader, "abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric header, got %d", resp.StatusCode)
	}
}

func TestItemsAPIFlow(t *testing.T) {
	server, _ := setupTestServer(t)
	owner := createUser(t, server, "owner")
	other := createUser(t, server, "other")

	item := createItem(t, server, owner.ID, "Drill")
	if !item.Available || item.Name != "Drill" {
		t.Errorf("unexpected item: %+v", item)
	}

	status := do(t, "POST", server.URL+"/items", owner.ID, map[string]any{"name": "No availability", "description": "d"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 without available, got %d", status)
	}

	itemURL := fmt.Sprintf("%s/items/%d", server.URL, item.ID)
	if status := do(t, "PATCH", itemURL, other.ID, map[string]any{"name": "Mine now"}, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for non-owner patch, got %d", status)
	}

	if status := do(t, "PATCH", itemURL, owner.ID, map[string]any{"name": " "}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for blank name patch, got %d", status)
	}

	var patched model.Item
	if status := do(t, "PATCH", itemURL, owner.ID, map[string]any{"available": false}, &patched); status != http.StatusOK {
		t.Fatalf("expected 200 on patch, got %d", status)
	}
	if patched.Available || patched.Name != "Drill" {
		t.Errorf("unexpected item after patch: %+v", patched)
	}

	var items []model.Item
	if status := do(t, "GET", server.URL+"/items?from=0&size=10", owner.ID, nil, &items); status != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", status)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}

	createItem(t, server, owner.ID, "Power saw")
	var found []model.Item
	do(t, "GET", server.URL+"/items/search?text=SAW", other.ID, nil, &found)
	if len(found) != 1 || found[0].Name != "Power saw" {
		t.Errorf("unexpected search result: %+v", found)
	}
	do(t, "GET", server.URL+"/items/search?text=", other.ID, nil, &found)
	if len(found) != 0 {
		t.Errorf("expected empty search for blank text, got %d", len(found))
	}

	var deleted bool
	if status := do(t, "DELETE", itemURL, owner.ID, nil, &deleted); status != http.StatusOK || !deleted {
		t.Errorf("expected 200 true on delete, got %d %v", status, deleted)
	}
	if status := do(t, "GET", itemURL, owner.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestBookingsAPIFlow(t *testing.T) {
	server, svc := setupTestServer(t)

	var skew atomic.Int64
	svc.Items.Now = func() time.Time { return time.Now().Add(time.Duration(skew.Load())) }

	owner := createUser(t, server, "owner")
	booker := createUser(t, server, "booker")
	stranger := createUser(t, server, "stranger")
	item := createItem(t, server, owner.ID, "Drill")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(24 * time.Hour)
	layout := "2006-01-02T15:04:05"

	status := do(t, "POST", server.URL+"/bookings", owner.ID, map[string]any{
		"itemId": item.ID, "start": start.Format(layout), "end": end.Format(layout),
	}, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 when booking own item, got %d", status)
	}

	var booking model.Booking
	status = do(t, "POST", server.URL+"/bookings", booker.ID, map[string]any{
		"itemId": item.ID, "start": start.Format(layout), "end": end.Format(layout),
	}, &booking)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on booking, got %d", status)
	}
	if booking.Status != model.BookingWaiting || !booking.Start.Equal(start) {
		t.Errorf("unexpected booking: %+v", booking)
	}
	if booking.Booker == nil || booking.Booker.ID != booker.ID || booking.Item == nil || booking.Item.ID != item.ID {
		t.Errorf("expected nested booker and item, got %+v %+v", booking.Booker, booking.Item)
	}

	bookingURL := fmt.Sprintf("%s/bookings/%d", server.URL, booking.ID)
	if status := do(t, "GET", bookingURL, stranger.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for stranger, got %d", status)
	}

	var approved model.Booking
	if status := do(t, "PATCH", bookingURL+"?approved=true", owner.ID, nil, &approved); status != http.StatusOK {
		t.Fatalf("expected 200 on approve, got %d", status)
	}
	if approved.Status != model.BookingApproved {
		t.Errorf("expected APPROVED, got %s", approved.Status)
	}
	if status := do(t, "PATCH", bookingURL+"?approved=false", owner.ID, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 on second decision, got %d", status)
	}
	if status := do(t, "PATCH", bookingURL+"?approved=maybe", owner.ID, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for bad approved flag, got %d", status)
	}

	var list []model.Booking
	do(t, "GET", server.URL+"/bookings/owner?state=future", owner.ID, nil, &list)
	if len(list) != 1 || list[0].ID != booking.ID {
		t.Errorf("unexpected owner bookings: %+v", list)
	}

	var errBody map[string]string
	status = do(t, "GET", server.URL+"/bookings?state=NOPE", booker.ID, nil, &errBody)
	if status != http.StatusBadRequest || errBody["error"] != "Unknown state: UNSUPPORTED_STATUS" {
		t.Errorf("expected unknown state error, got %d %v", status, errBody)
	}
	if status := do(t, "GET", server.URL+"/bookings?from=-1&size=10", booker.ID, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for negative from, got %d", status)
	}

	// The comment endpoint accepts the booker once the booking has ended.
	itemURL := fmt.Sprintf("%s/items/%d", server.URL, item.ID)
	if status := do(t, "POST", itemURL+"/comment", booker.ID, map[string]string{"text": "Solid"}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 before booking ends, got %d", status)
	}
	skew.Store(int64(time.Until(end.Add(time.Hour))))

	var comment model.Comment
	if status := do(t, "POST", itemURL+"/comment", booker.ID, map[string]string{"text": "Solid"}, &comment); status != http.StatusOK {
		t.Fatalf("expected 200 on comment, got %d", status)
	}
	if comment.AuthorName != "booker" {
		t.Errorf("expected author name 'booker', got %q", comment.AuthorName)
	}
}

func TestRequestsAPIFlow(t *testing.T) {
	server, _ := setupTestServer(t)
	alice := createUser(t, server, "alice")
	bob := createUser(t, server, "bob")

	var req model.ItemRequest
	if status := do(t, "POST", server.URL+"/requests", alice.ID, map[string]string{"description": "Need a tent"}, &req); status != http.StatusOK {
		t.Fatalf("expected 200 on create, got %d", status)
	}

	status := do(t, "POST", server.URL+"/items", bob.ID, map[string]any{
		"name": "Tent", "description": "2 person", "available": true, "requestId": req.ID,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on item create, got %d", status)
	}

	var got model.ItemRequest
	do(t, "GET", fmt.Sprintf("%s/requests/%d", server.URL, req.ID), bob.ID, nil, &got)
	if len(got.Items) != 1 || got.Items[0].Name != "Tent" {
		t.Errorf("unexpected request items: %+v", got.Items)
	}

	var own []model.ItemRequest
	do(t, "GET", server.URL+"/requests", alice.ID, nil, &own)
	if len(own) != 1 {
		t.Errorf("expected 1 own request, got %d", len(own))
	}

	var others []model.ItemRequest
	do(t, "GET", server.URL+"/requests/all?from=0&size=5", bob.ID, nil, &others)
	if len(others) != 1 || others[0].ID != req.ID {
		t.Errorf("unexpected other requests: %+v", others)
	}
}

func TestRequestIDAndHealth(t *testing.T) {
	server, _ := setupTestServer(t)

	req, _ := http.NewRequest("GET", server.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "shareit_http_requests_total") {
		t.Error("expected http metrics to be exposed")
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected generated request id")
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	writeError(rec, req, fmt.Errorf("loading user 1: %w", io.ErrUnexpectedEOF))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "EOF") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}
