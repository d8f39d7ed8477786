// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"recipechat/internal/logging"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the Recipe RAG API base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// QueryTimeout bounds a full streaming query, long generations included
	// (default: 2m)
	QueryTimeout time.Duration

	// MaxAttempts is the total invocation budget per call (default: 2)
	MaxAttempts int

	// RetryDelay is the backoff base delay (default: 1s)
	RetryDelay time.Duration

	// QueriesPerSecond throttles outbound queries; 0 disables throttling
	QueriesPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://127.0.0.1:8000",
		Timeout:      30 * time.Second,
		QueryTimeout: 2 * time.Minute,
		MaxAttempts:  DefaultMaxAttempts,
		RetryDelay:   DefaultBaseDelay,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the Recipe RAG API. The backend is opaque: the
// client only knows the query, stats, and health operations.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	retryer    *Retryer
	limiter    *rate.Limiter
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
// Zero fields fall back to defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = 2 * time.Minute
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultBaseDelay
	}

	var limiter *rate.Limiter
	if config.QueriesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.QueriesPerSecond), 1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retryer:    NewRetryer(config.MaxAttempts, config.RetryDelay),
		limiter:    limiter,
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// HEALTH & STATS
// =============================================================================

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	if err := c.getJSON(ctx, "/api/health", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats calls GET /api/stats.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var result StatsResponse
	if err := c.getJSON(ctx, "/api/stats", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Kind: KindClient, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, readDetail(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Kind: KindDecode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// =============================================================================
// QUERY (NON-STREAMING)
// =============================================================================

// Query sends a non-streaming question and returns the complete result.
// Transient failures are retried per the client's retry policy.
func (c *Client) Query(ctx context.Context, question string) (*QueryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.QueryTimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var result QueryResponse
	err := c.retryer.Do(ctx, func(ctx context.Context) error {
		return c.postQuery(ctx, QueryRequest{Question: question, Stream: false}, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) postQuery(ctx context.Context, reqBody QueryRequest, out *QueryResponse) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Kind: KindClient, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Kind: KindClient, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// The per-call context carries the deadline; the shared client's short
	// timeout would cut long generations off.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, readDetail(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Kind: KindDecode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// =============================================================================
// QUERY (STREAMING)
// =============================================================================

// QueryStream sends a streaming question and delivers decoded events to the
// callback in arrival order.
//
// Retries cover connection establishment only: once the backend starts
// emitting records, a failure surfaces to the caller instead of re-running
// the stream, so already-rendered content is never duplicated.
func (c *Client) QueryStream(ctx context.Context, question string, callback StreamCallback) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.QueryTimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(QueryRequest{Question: question, Stream: true})
	if err != nil {
		return &ClientError{Kind: KindClient, Message: "failed to marshal request", Cause: err}
	}

	var resp *http.Response
	err = c.retryer.Do(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/query", bytes.NewReader(body))
		if reqErr != nil {
			return &ClientError{Kind: KindClient, Message: "failed to create request", Cause: reqErr}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		r, doErr := (&http.Client{}).Do(req)
		if doErr != nil {
			return transportError(doErr)
		}
		if r.StatusCode != http.StatusOK {
			detail := readDetail(r)
			r.Body.Close()
			return statusError(r.StatusCode, detail)
		}
		resp = r
		return nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logging.L().Debug().Str("question", question).Msg("stream connected")
	return NewStreamReader(resp.Body).Process(ctx, callback)
}

// =============================================================================
// HELPERS
// =============================================================================

// wait blocks on the rate limiter, if one is configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	return nil
}

// transportError classifies a round-trip failure.
func transportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Kind: KindClient, Message: "request canceled", Cause: err}
	}
	return &ClientError{Kind: KindNetwork, Message: "backend is unreachable", Cause: err}
}

// readDetail extracts the FastAPI error detail from a non-2xx response.
func readDetail(resp *http.Response) string {
	var be backendError
	if err := json.NewDecoder(resp.Body).Decode(&be); err != nil {
		return ""
	}
	return be.Detail
}
