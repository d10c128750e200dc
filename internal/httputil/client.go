// Copyright 2026 Isaacveg. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/isaacveg/paper-spider/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 100 * time.Millisecond
	defaultUserAgent = "paper-spider/0.1 (+https://github.com/isaacveg/paper-spider)"
)

// Client wraps http.Client with the request discipline every adapter needs:
// a flat inter-request delay enforced by a token bucket, a User-Agent header,
// and 429 retries. It deliberately swallows per-attempt failures — a timeout,
// a non-2xx status, or a malformed body all surface as "no data" so the
// adapter's fallback logic can proceed.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxRetries int
}

// NewClient builds a Client from cfg, filling in defaults for zero values.
func NewClient(cfg types.SourceConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay := cfg.RequestDelay
	if delay == 0 {
		delay = defaultDelay
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		userAgent:  userAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// Get fetches url and returns the response body, or (nil, false) when the
// attempt produced no usable data.
func (c *Client) Get(ctx context.Context, url string) ([]byte, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// GetJSON fetches url and decodes the body into v. A transport failure or
// unparsable body reports false and leaves v untouched.
func (c *Client) GetJSON(ctx context.Context, url string, v any) bool {
	body, ok := c.Get(ctx, url)
	if !ok {
		return false
	}
	return json.Unmarshal(body, v) == nil
}
