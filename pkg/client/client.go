package client

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

	"github.com/gorilla/websocket"

	"github.com/terra-clan/portfolio-intel/internal/events"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// Client is a Go SDK for the portfolio-intel API
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new portfolio-intel client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		dialer: websocket.DefaultDialer,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a failed response from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Response wraps decoded data with the dataset version it came from
type Response[T any] struct {
	Data           T
	DatasetVersion string
}

// MarketList is the result of ListMarkets
type MarketList struct {
	Markets []models.MarketSummary `json:"markets"`
	Total   int                    `json:"total"`
}

// CompareOptions selects the markets of a comparison. With no IDs the
// server picks Initial plus one more market.
type CompareOptions struct {
	IDs     []string
	Initial string
}

// ListMarkets retrieves market summaries matching the filter
func (c *Client) ListMarkets(ctx context.Context, filter models.MarketFilter) (*Response[MarketList], error) {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Region != "" {
		query.Set("region", filter.Region)
	}

	return do[MarketList](ctx, c, http.MethodGet, withQuery("/api/v1/markets", query))
}

// GetMarket retrieves one market with all pillar stats and product statuses
func (c *Client) GetMarket(ctx context.Context, id string) (*Response[models.Market], error) {
	return do[models.Market](ctx, c, http.MethodGet, "/api/v1/markets/"+url.PathEscape(id))
}

// GetPillarDetail retrieves the product breakdown of one pillar in one market
func (c *Client) GetPillarDetail(ctx context.Context, marketID string, pillarID models.PillarID) (*Response[models.PillarDetail], error) {
	path := fmt.Sprintf("/api/v1/markets/%s/pillars/%s", url.PathEscape(marketID), url.PathEscape(string(pillarID)))
	return do[models.PillarDetail](ctx, c, http.MethodGet, path)
}

// Compare retrieves a side-by-side comparison of markets
func (c *Client) Compare(ctx context.Context, opts CompareOptions) (*Response[models.Comparison], error) {
	query := url.Values{}
	if len(opts.IDs) > 0 {
		query.Set("ids", strings.Join(opts.IDs, ","))
	}
	if opts.Initial != "" {
		query.Set("initial", opts.Initial)
	}

	return do[models.Comparison](ctx, c, http.MethodGet, withQuery("/api/v1/compare", query))
}

// Heatmap retrieves the cross-market pillar grid
func (c *Client) Heatmap(ctx context.Context) (*Response[models.Heatmap], error) {
	return do[models.Heatmap](ctx, c, http.MethodGet, "/api/v1/heatmap")
}

// ListPillars retrieves the catalog pillars in display order
func (c *Client) ListPillars(ctx context.Context) ([]models.Pillar, error) {
	resp, err := do[struct {
		Pillars []models.Pillar `json:"pillars"`
	}](ctx, c, http.MethodGet, "/api/v1/pillars")
	if err != nil {
		return nil, err
	}
	return resp.Data.Pillars, nil
}

// ListProducts retrieves catalog products, optionally limited to one pillar
func (c *Client) ListProducts(ctx context.Context, pillarID models.PillarID) ([]models.Product, error) {
	path := "/api/v1/products"
	if pillarID != "" {
		path = fmt.Sprintf("/api/v1/pillars/%s/products", url.PathEscape(string(pillarID)))
	}

	resp, err := do[struct {
		Products []models.Product `json:"products"`
	}](ctx, c, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return resp.Data.Products, nil
}

// Dataset retrieves information about the dataset currently served
func (c *Client) Dataset(ctx context.Context) (*models.DatasetInfo, error) {
	resp, err := do[models.DatasetInfo](ctx, c, http.MethodGet, "/api/v1/dataset")
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Reload asks the server to synthesize a new dataset
func (c *Client) Reload(ctx context.Context) (*models.DatasetInfo, error) {
	resp, err := do[models.DatasetInfo](ctx, c, http.MethodPost, "/api/v1/dataset/reload")
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := do[json.RawMessage](ctx, c, http.MethodGet, "/health")
	return err
}

// streamMessage mirrors the frames written by the server's stream endpoint
type streamMessage struct {
	Type  string        `json:"type"`
	Event *events.Event `json:"event,omitempty"`
	Data  string        `json:"data,omitempty"`
}

// Watch calls fn for every dataset event until ctx is done or the
// connection drops. The first call carries the version served at connect
// time and a nil event.
func (c *Client) Watch(ctx context.Context, fn func(version string, event *events.Event)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/stream"

	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream read failed: %w", err)
		}

		switch msg.Type {
		case "connected":
			fn(msg.Data, nil)
		case "event":
			if msg.Event != nil {
				fn(msg.Event.Version, msg.Event)
			}
		case "error":
			return fmt.Errorf("stream error: %s", msg.Data)
		}
	}
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// do performs an HTTP request and decodes the response envelope
func do[T any](ctx context.Context, c *Client, method, path string) (*Response[T], error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown_error", Message: http.StatusText(resp.StatusCode)}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return nil, apiErr
	}

	return &Response[T]{
		Data:           result.Data,
		DatasetVersion: resp.Header.Get("X-Dataset-Version"),
	}, nil
}
