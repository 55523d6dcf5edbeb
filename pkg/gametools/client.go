// Package gametools provides a lightweight client for the gametools.network
// Battlefield 4 statistics API.
package gametools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the BF4 root of the public gametools.network API.
const DefaultBaseURL = "https://api.gametools.network/bf4"

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

const userAgent = "bf4-stats-api/1.0"

// ErrNotFound is returned when the upstream reports that the player does not exist.
var ErrNotFound = errors.New("gametools: player not found")

// ErrInvalidBody is returned when the upstream answers 2xx with a body that is not JSON.
var ErrInvalidBody = errors.New("gametools: invalid JSON body")

// StatusError is returned for any non-2xx, non-404 upstream status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gametools: unexpected status %d from %s", e.StatusCode, e.URL)
}

// Client is the interface of the gametools API client.
type Client interface {
	// Stats fetches the player summary (/stats).
	Stats(ctx context.Context, name, platform string) (json.RawMessage, error)
	// AllData fetches the complete player record (/all).
	AllData(ctx context.Context, name, platform string) (json.RawMessage, error)
	// History fetches the player's stats time series (/statsarray).
	History(ctx context.Context, name, platform string) (json.RawMessage, error)
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealClient talks to the gametools API over HTTP.
type RealClient struct {
	BaseURL    string
	httpClient Doer
}

// Option configures a RealClient.
type Option func(*RealClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(d Doer) Option {
	return func(c *RealClient) {
		c.httpClient = d
	}
}

// NewClient creates a RealClient. An empty baseURL selects DefaultBaseURL and
// a non-positive timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *RealClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &RealClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats calls /stats/ with skip_battlelog=false.
func (c *RealClient) Stats(ctx context.Context, name, platform string) (json.RawMessage, error) {
	return c.get(ctx, c.StatsURL(name, platform))
}

// AllData calls /all/.
func (c *RealClient) AllData(ctx context.Context, name, platform string) (json.RawMessage, error) {
	return c.get(ctx, c.AllDataURL(name, platform))
}

// History calls /statsarray/.
func (c *RealClient) History(ctx context.Context, name, platform string) (json.RawMessage, error) {
	return c.get(ctx, c.HistoryURL(name, platform))
}

// StatsURL returns the upstream URL used by Stats.
func (c *RealClient) StatsURL(name, platform string) string {
	return c.endpoint("stats", name, platform) + "&skip_battlelog=false"
}

// AllDataURL returns the upstream URL used by AllData.
func (c *RealClient) AllDataURL(name, platform string) string {
	return c.endpoint("all", name, platform)
}

// HistoryURL returns the upstream URL used by History.
func (c *RealClient) HistoryURL(name, platform string) string {
	return c.endpoint("statsarray", name, platform)
}

// endpoint builds {base}/{path}/?name=...&platform=...
// The platform is forwarded verbatim.
func (c *RealClient) endpoint(path, name, platform string) string {
	return fmt.Sprintf("%s/%s/?name=%s&platform=%s", c.BaseURL, path, EscapeName(name), platform)
}

// EscapeName percent-encodes every reserved character in a player name.
// Spaces are encoded as %20 rather than '+'.
func EscapeName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

func (c *RealClient) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gametools: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gametools: read body from %s: %w", endpoint, err)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidBody
	}
	return json.RawMessage(body), nil
}

// IsEmpty reports whether payload decodes to a JSON value that carries no data:
// null, false, 0, "", {} or [].
func IsEmpty(payload json.RawMessage) bool {
	if len(payload) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
