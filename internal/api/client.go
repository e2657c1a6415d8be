package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paat-dev/paat/internal/cache"
	"github.com/paat-dev/paat/internal/models"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 90 * time.Second

	userAgent = "paat/1.x (+https://github.com/paat-dev/paat)"
)

// Cache interface for caching listing responses. The wait loop never
// goes through a cache; construct its client without one.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Client fetches sailings from the praamid.ee events endpoint. It is
// stateless apart from the embedded http.Client and safe for concurrent
// use by any number of wait engines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the service base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithDefaultCache enables caching with the default file cache
func WithDefaultCache() ClientOption {
	return func(c *Client) {
		fc, err := cache.NewFileCache(cache.DefaultCacheDir(), defaultCacheTTL)
		if err == nil {
			c.cache = fc
		}
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    BaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchSailings performs one authoritative round trip for all sailings
// on the given route and departure date, keyed by uid. A later
// duplicate uid in the source list wins. Transport-level failures
// return *TransportError; a body that does not decode as the events
// envelope returns *DecodeError. No retries happen here.
func (c *Client) FetchSailings(ctx context.Context, route models.Route, date time.Time) (models.SailingSet, error) {
	body, err := c.FetchSailingsRaw(ctx, route, date)
	if err != nil {
		return nil, err
	}

	var resp models.EventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewDecodeError(err)
	}

	return models.BuildSailingSet(&resp), nil
}

// FetchSailingsRaw fetches sailings and returns the raw response body.
func (c *Client) FetchSailingsRaw(ctx context.Context, route models.Route, date time.Time) ([]byte, error) {
	params := url.Values{}
	params.Set("direction", route.Abbreviation())
	params.Set("departure-date", date.Format(models.DateLayout))

	reqURL := c.baseURL + EndpointEvents + "?" + params.Encode()

	return c.doRequest(ctx, reqURL)
}

// doRequest performs an HTTP GET request with optional caching
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(reqURL); ok {
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(extractEndpoint(reqURL), 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransportError(extractEndpoint(reqURL), resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(extractEndpoint(reqURL), 0, err)
	}

	if c.cache != nil {
		_ = c.cache.Set(reqURL, body)
	}

	return body, nil
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
