// Package pos implements the HTTP client for the external order-management
// (point-of-sale) API.
//
// The upstream is treated as an opaque collaborator: orders go out as JSON
// via POST /orders, lookups come back via GET /orders/{id}, and everything
// else (retries, queueing, fulfilment) is the upstream's business. Each
// submission is exactly one HTTP attempt; a [resilience.Breaker] in front
// makes a dead upstream fail fast instead of stalling live voice calls.
package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ordervox/ordervox/internal/order"
	"github.com/ordervox/ordervox/internal/resilience"
)

// Compile-time interface assertion.
var _ order.Gateway = (*Client)(nil)

const (
	defaultTimeout = 30 * time.Second
	ordersEndpoint = "/orders"
)

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithAPIKey sets the bearer token sent in the Authorization header of every
// request. An empty key sends no header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-request HTTP timeout. Default: 30 s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client (useful in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBreaker replaces the default circuit breaker configuration.
func WithBreaker(cfg resilience.Config) Option {
	return func(c *Client) {
		if cfg.Name == "" {
			cfg.Name = "pos"
		}
		c.breaker = resilience.New(cfg)
	}
}

// Client talks to the order-management API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// New creates a [Client] for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    resilience.New(resilience.Config{Name: "pos"}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Create implements [order.Gateway.Create]: one POST of the purchase order,
// no retries.
func (c *Client) Create(ctx context.Context, req *order.CreateOrderRequest) order.GatewayResult {
	body, err := json.Marshal(req)
	if err != nil {
		return order.GatewayResult{Error: fmt.Sprintf("encode order: %v", err)}
	}

	var result order.GatewayResult
	err = c.breaker.Do(func() error {
		var callErr error
		result, callErr = c.postOrder(ctx, body)
		return callErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrOpen) {
			return order.GatewayResult{Error: "order service unavailable"}
		}
		return order.GatewayResult{Error: err.Error()}
	}
	return result
}

// postOrder performs the HTTP POST. It returns a Go error only for
// transport-level failures (those count against the breaker); an upstream
// rejection is a valid response carried in the result.
func (c *Client) postOrder(ctx context.Context, body []byte) (order.GatewayResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+ordersEndpoint, bytes.NewReader(body))
	if err != nil {
		return order.GatewayResult{}, fmt.Errorf("pos: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return order.GatewayResult{}, fmt.Errorf("pos: create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return order.GatewayResult{}, fmt.Errorf("pos: create order: upstream returned %s", resp.Status)
	}

	data, msg := decodeBody(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		if msg == "" {
			msg = fmt.Sprintf("upstream rejected order (%s)", resp.Status)
		}
		return order.GatewayResult{Data: data, Error: msg}, nil
	}

	return order.GatewayResult{
		OK:      true,
		OrderID: orderIDFrom(data),
		Data:    data,
	}, nil
}

// GetByID implements [order.Gateway.GetByID]. A 404 is a normal negative
// result, not a transport failure, and does not count against the breaker.
func (c *Client) GetByID(ctx context.Context, id string) order.GatewayResult {
	var result order.GatewayResult
	err := c.breaker.Do(func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+ordersEndpoint+"/"+id, nil)
		if err != nil {
			return fmt.Errorf("pos: build request: %w", err)
		}
		c.authorize(httpReq)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("pos: get order %q: %w", id, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("pos: get order %q: upstream returned %s", id, resp.Status)
		}

		data, msg := decodeBody(resp.Body)
		if resp.StatusCode >= http.StatusBadRequest {
			if msg == "" {
				msg = fmt.Sprintf("order %q not found", id)
			}
			result = order.GatewayResult{Data: data, Error: msg}
			return nil
		}
		result = order.GatewayResult{OK: true, OrderID: orderIDFrom(data), Data: data}
		return nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrOpen) {
			return order.GatewayResult{Error: "order service unavailable"}
		}
		return order.GatewayResult{Error: err.Error()}
	}
	return result
}

// Healthy reports whether the client's breaker would admit a call. Used by
// the readiness probe.
func (c *Client) Healthy() bool {
	return c.breaker.Healthy()
}

// authorize attaches the bearer token when one is configured.
func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// decodeBody parses an upstream JSON body, returning the payload and any
// error/message field found in it. A malformed body yields a nil payload.
func decodeBody(r io.Reader) (map[string]any, string) {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, ""
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ""
	}
	for _, key := range []string{"error", "message"} {
		if s, ok := data[key].(string); ok && s != "" {
			return data, s
		}
	}
	return data, ""
}

// orderIDFrom extracts the upstream order identifier from a response
// payload, accepting either "id" or "orderId".
func orderIDFrom(data map[string]any) string {
	for _, key := range []string{"id", "orderId"} {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
