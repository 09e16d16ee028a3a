package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/shareit/internal/api"
	"github.com/erazemk/shareit/internal/metrics"
)

// maxUpstreamBody bounds how much of an upstream response is buffered.
const maxUpstreamBody = 10 << 20

// Response is an upstream reply relayed to the client unchanged.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Client forwards validated requests to the server.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a Client for the server at serverURL.
func NewClient(serverURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", serverURL)
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// Forward sends a request to the server. userID is sent in the identity
// header when non-zero. The request ID in ctx, if any, is propagated.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, userID int64, body []byte) (*Response, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if userID > 0 {
		req.Header.Set(api.UserIDHeader, fmt.Sprint(userID))
	}
	if id := api.GetRequestID(ctx); id != "" {
		req.Header.Set(api.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstream(method, 0)
		return nil, fmt.Errorf("calling server: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(method, resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("reading upstream response: %w", err)
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
