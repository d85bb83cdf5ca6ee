// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the Herbie API base URL, without a trailing slash.
	BaseURL string

	// WordPressURL is the base URL of the WordPress site that hosts the
	// auth endpoint. Empty disables user-info lookups.
	WordPressURL string

	// Token is the Bearer token for authenticated requests. Empty means
	// the client operates unauthenticated and conversations stay local.
	Token string

	// Timeout for non-streaming requests (default: 30s).
	Timeout time.Duration

	// StreamTimeout for establishing the answer stream connection; once
	// headers arrive the body may flow for much longer (default: 15s).
	StreamTimeout time.Duration

	// RequestsPerSecond throttles outbound calls so a busy UI cannot
	// hammer the backend (default: 8).
	RequestsPerSecond float64

	// Burst is the rate-limiter burst size (default: 4).
	Burst int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:           30 * time.Second,
		StreamTimeout:     15 * time.Second,
		RequestsPerSecond: 8,
		Burst:             4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Herbie backend API.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// streamClient has no overall timeout; an answer stream stays open as
	// long as the backend keeps producing tokens. Only the wait for
	// response headers is bounded.
	streamClient *http.Client

	limiter *rate.Limiter
}

// NewClient creates a backend client. A nil config uses defaults; zero
// fields in a non-nil config are filled with defaults.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = 15 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 8
	}
	if config.Burst == 0 {
		config.Burst = 4
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: config.StreamTimeout,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// Authenticated reports whether the client holds a Bearer token.
func (c *Client) Authenticated() bool {
	return c.config.Token != ""
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// envelope is the {success, data} wrapper the backend puts around every
// REST response. Error responses carry message instead of data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// newRequest builds a request with auth and content headers applied.
func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &ActionError{
				Reason:     ReasonRequest,
				Message:    "failed to encode request body",
				StatusCode: http.StatusInternalServerError,
				cause:      err,
			}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, normalizeError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

// doEnvelope performs a request against the API base URL, unwraps the
// response envelope, and decodes data into out (which may be nil when the
// caller only cares about success).
func (c *Client) doEnvelope(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return normalizeError(err)
	}

	req, err := c.newRequest(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalizeError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return normalizeError(err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = env.Message
		}
		return serverError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return &ActionError{
			Reason:     ReasonResponse,
			Message:    "failed to decode response",
			StatusCode: resp.StatusCode,
			cause:      decodeErr,
		}
	}
	if !env.Success {
		return serverError(resp.StatusCode, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &ActionError{
				Reason:     ReasonResponse,
				Message:    "failed to decode response data",
				StatusCode: resp.StatusCode,
				cause:      err,
			}
		}
	}
	return nil
}

// parseTime decodes the backend's RFC 3339 timestamps, falling back to a
// secondary value and finally the current time so records always sort.
func parseTime(primary, fallback string) time.Time {
	for _, s := range []string{primary, fallback} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
