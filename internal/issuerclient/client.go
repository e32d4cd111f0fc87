// Package issuerclient fetches issuance statistics from the issuer's HTTP API.
package issuerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/decodeproject/decode/internal/model"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned when the issuer replies with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("issuerclient: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("issuerclient: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the issuer's /api endpoints.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a client for the issuer at baseURL, e.g. http://127.0.0.1:3000.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("issuerclient: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("issuerclient: unsupported scheme %q", u.Scheme)
	}
	c := &Client{base: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetStats fetches GET /api/stats.
func (c *Client) GetStats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	if err := c.get(ctx, "/api/stats", &stats); err != nil {
		return model.Stats{}, err
	}
	if stats.Total == "" {
		return model.Stats{}, fmt.Errorf("issuerclient: stats response has no total")
	}
	return stats, nil
}

// IssuedByAttribute fetches GET /api/stats/attributes.
func (c *Client) IssuedByAttribute(ctx context.Context) ([]model.AttributeCount, error) {
	var body struct {
		Attributes []model.AttributeCount `json:"attributes"`
	}
	if err := c.get(ctx, "/api/stats/attributes", &body); err != nil {
		return nil, err
	}
	return body.Attributes, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return fmt.Errorf("issuerclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("issuerclient: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("issuerclient: decode %s: %w", path, err)
	}
	return nil
}
