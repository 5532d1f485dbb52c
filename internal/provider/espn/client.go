// Package espn fetches NFL data from the public ESPN site and core APIs and
// normalizes it into provider records.
//
// ESPN needs no auth. Requests go through a token bucket limiter and are
// retried with jittered exponential backoff on transport errors, 429 and 5xx.
package espn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/gamecenter/nfl-data/internal/metrics"
)

const userAgent = "nfl-data/1.0 (+https://github.com/gamecenter/nfl-data)"

// Client is the shared HTTP client for all ESPN endpoints.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	newBackOff func() backoff.BackOff
	metrics    metrics.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request outcomes.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBackOff sets the retry interval bounds.
func WithBackOff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = max
			return b
		}
	}
}

// NewClient creates an ESPN HTTP client with rate limiting and retries.
// maxRetries is the number of attempts after the first one.
func NewClient(timeout time.Duration, requestsPerMinute, maxRetries int, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: maxRetries,
		metrics:    metrics.Nop{},
		logger:     logger,
	}
	WithBackOff(500*time.Millisecond, 5*time.Second)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError is a non-2xx upstream response.
type statusError struct {
	url  string
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ESPN %s returned %d: %s", e.url, e.code, e.body)
}

// retryable reports whether a status code is worth another attempt.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// getJSON performs a rate-limited, retried GET and decodes the body into a
// generic document. endpoint labels metrics and logs.
func (c *Client) getJSON(ctx context.Context, endpoint, url string) (map[string]interface{}, error) {
	start := time.Now()
	attempt := 0

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			c.metrics.IncUpstreamRetries(endpoint)
			c.logger.Debug("Retrying ESPN request", "endpoint", endpoint, "url", url, "attempt", attempt)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}
		return c.do(ctx, url)
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		outcome := "transport_error"
		var se *statusError
		if errors.As(err, &se) {
			outcome = "http_error"
		}
		c.metrics.ObserveUpstream(endpoint, outcome, time.Since(start))
		return nil, err
	}

	var doc map[string]interface{}
	if err := sonic.Unmarshal(body, &doc); err != nil {
		c.metrics.ObserveUpstream(endpoint, "decode_error", time.Since(start))
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if doc == nil {
		c.metrics.ObserveUpstream(endpoint, "decode_error", time.Since(start))
		return nil, fmt.Errorf("decode %s: body is not a JSON object", url)
	}

	c.metrics.ObserveUpstream(endpoint, "ok", time.Since(start))
	return doc, nil
}

// do performs a single attempt. Errors that must not be retried are wrapped
// with backoff.Permanent.
func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("http request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{url: url, code: resp.StatusCode, body: truncate(body, 200)}
		if !retryable(resp.StatusCode) {
			return nil, backoff.Permanent(se)
		}
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
			c.logger.Warn("ESPN asked to back off", "url", url, "retry_after_seconds", secs)
			return nil, errors.Join(se, backoff.RetryAfter(secs))
		}
		return nil, se
	}

	return body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
