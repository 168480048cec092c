// Package oracle is the HTTP client for the external burnout prediction
// service. The model behind it is opaque; this package owns only the wire
// contract and the failure typing.
package oracle

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

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

const defaultTimeout = 10 * time.Second

// ErrUnavailable wraps any network, timeout or server-side failure. It
// satisfies errors.Is against risk.ErrPredictionUnavailable so callers need
// only one sentinel.
var ErrUnavailable = fmt.Errorf("oracle: %w", risk.ErrPredictionUnavailable)

// Client talks to the prediction service.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ risk.Predictor = (*Client)(nil)
var _ risk.MetricsProvider = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a client with sensible defaults.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oracle: base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Predict posts the feature vector and passes the response through
// unchanged. Any transport or 5xx failure returns ErrUnavailable; a 4xx is
// a contract error and surfaces as-is.
func (c *Client) Predict(ctx context.Context, req risk.PredictionRequest) (risk.Prediction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("oracle: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("oracle: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return risk.Prediction{}, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	case resp.StatusCode >= 400:
		return risk.Prediction{}, fmt.Errorf("oracle: rejected request: %s", resp.Status)
	}

	var pred risk.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return risk.Prediction{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return pred, nil
}

// Metrics fetches the oracle's opaque metrics payload, passed through
// unmodified.
func (c *Client) Metrics(ctx context.Context) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/metrics", nil)
	if err != nil {
		return nil, fmt.Errorf("oracle: build request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	return json.RawMessage(payload), nil
}
