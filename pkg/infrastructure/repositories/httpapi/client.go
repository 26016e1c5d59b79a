// Package httpapi implements the backend contracts over the dashboard's HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
)

const (
	// TunnelHeader suppresses the tunnelling proxy's browser interstitial
	TunnelHeader = "ngrok-skip-browser-warning"
	// RequestIDHeader carries a per-request uuid for log correlation
	RequestIDHeader = "X-Request-ID"

	DefaultTimeout      = 15 * time.Second
	DefaultUserAgent    = "skudiag/1.0"
	DefaultMaxBodyBytes = 10 << 20
)

// ErrMalformedResponse marks a 2xx response whose body could not be used
var ErrMalformedResponse = errors.New("malformed response")

// APIError is returned for non-2xx responses
type APIError struct {
	Endpoint   repositories.Endpoint
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Options configures a Client
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client talks to the backend. It does not retry.
type Client struct {
	baseURL      *url.URL
	client       *http.Client
	userAgent    string
	headers      map[string]string
	maxBodyBytes int64
	logger       *slog.Logger
}

// Verify interface compliance
var _ repositories.Backend = (*Client)(nil)

// NewClient validates opts and creates a client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", base.Scheme)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:      base,
		client:       opts.HTTPClient,
		userAgent:    opts.UserAgent,
		headers:      opts.Headers,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       opts.Logger,
	}, nil
}

type simulationRangeBody struct {
	MaxDay      *int `json:"maxDay"`
	MinDay      *int `json:"minDay"`
	LookbackMin *int `json:"lookbackMin"`
}

// GetSimulationRange fetches the simulation range. A missing or non-positive
// maxDay is reported as ErrMalformedResponse.
func (c *Client) GetSimulationRange(ctx context.Context) (*entities.SimulationRange, error) {
	var body simulationRangeBody
	if err := c.getJSON(ctx, repositories.EndpointSimulationRange, &body); err != nil {
		return nil, err
	}
	if body.MaxDay == nil {
		return nil, malformed(repositories.EndpointSimulationRange, errors.New("maxDay missing"))
	}

	rng := &entities.SimulationRange{
		MaxDay:      *body.MaxDay,
		MinDay:      body.MinDay,
		LookbackMin: body.LookbackMin,
	}
	if err := rng.Validate(); err != nil {
		return nil, malformed(repositories.EndpointSimulationRange, err)
	}
	return rng, nil
}

type rootCauseRequest struct {
	SKU entities.SKU `json:"sku"`
	Day int          `json:"day"`
}

// GetRootCause posts {sku, day} and decodes the diagnosis
func (c *Client) GetRootCause(ctx context.Context, sku entities.SKU, day int) (*entities.RootCauseResult, error) {
	payload, err := json.Marshal(rootCauseRequest{SKU: sku, Day: day})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, repositories.EndpointRootCause, c.endpointURL(repositories.EndpointRootCause), payload)
	if err != nil {
		return nil, err
	}

	var result *entities.RootCauseResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, malformed(repositories.EndpointRootCause, err)
	}
	if result == nil {
		return nil, malformed(repositories.EndpointRootCause, errors.New("empty body"))
	}
	return result, nil
}

// GetVendorPerformance fetches vendor performance. A JSON null body means no vendor data.
func (c *Client) GetVendorPerformance(ctx context.Context, sku entities.SKU) (*entities.VendorPerformance, error) {
	data, err := c.do(ctx, http.MethodGet, repositories.EndpointVendor, c.skuURL(repositories.EndpointVendor, sku), nil)
	if err != nil {
		return nil, err
	}

	var vendor *entities.VendorPerformance
	if err := json.Unmarshal(data, &vendor); err != nil {
		return nil, malformed(repositories.EndpointVendor, err)
	}
	return vendor, nil
}

// GetInventoryTrend fetches the daily series and checks it is aligned
func (c *Client) GetInventoryTrend(ctx context.Context, sku entities.SKU) (*entities.InventoryTrend, error) {
	data, err := c.do(ctx, http.MethodGet, repositories.EndpointTrend, c.skuURL(repositories.EndpointTrend, sku), nil)
	if err != nil {
		return nil, err
	}

	var trend *entities.InventoryTrend
	if err := json.Unmarshal(data, &trend); err != nil {
		return nil, malformed(repositories.EndpointTrend, err)
	}
	if trend == nil {
		return nil, malformed(repositories.EndpointTrend, errors.New("empty body"))
	}
	if err := trend.Validate(); err != nil {
		return nil, malformed(repositories.EndpointTrend, err)
	}
	return trend, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint repositories.Endpoint, out any) error {
	data, err := c.do(ctx, http.MethodGet, endpoint, c.endpointURL(endpoint), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed(endpoint, err)
	}
	return nil
}

func (c *Client) endpointURL(endpoint repositories.Endpoint) string {
	return c.baseURL.JoinPath(string(endpoint)).String()
}

func (c *Client) skuURL(endpoint repositories.Endpoint, sku entities.SKU) string {
	return c.baseURL.JoinPath(string(endpoint), url.PathEscape(string(sku))).String()
}

// do performs one request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method string, endpoint repositories.Endpoint, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(TunnelHeader, "true")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read one byte past the limit to detect oversized bodies
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	c.logger.Debug("backend request",
		"endpoint", endpoint,
		"method", method,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
	}
	if int64(len(data)) > c.maxBodyBytes {
		return nil, malformed(endpoint, fmt.Errorf("response exceeds %d bytes", c.maxBodyBytes))
	}
	return data, nil
}

func malformed(endpoint repositories.Endpoint, err error) error {
	return fmt.Errorf("%w from %s: %v", ErrMalformedResponse, endpoint, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
