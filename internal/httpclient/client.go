// Package httpclient fetches catalog documents over HTTP with retries
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/stacklok/asset-librarian/internal/versions"
)

const (
	// DefaultTimeout is the default timeout for one HTTP attempt
	DefaultTimeout = 30 * time.Second

	// DefaultMaxTries is the default number of attempts per request
	DefaultMaxTries = 4

	// MaxResponseSize is the maximum allowed response size (256MB)
	MaxResponseSize = 256 * 1024 * 1024
)

// Client is an interface for HTTP operations
type Client interface {
	// Get performs an HTTP GET request and returns the response body
	Get(ctx context.Context, url string) ([]byte, error)
}

// DefaultClient retries transient failures with exponential backoff
type DefaultClient struct {
	client          *http.Client
	maxTries        uint
	initialInterval time.Duration
}

var _ Client = (*DefaultClient)(nil)

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithTimeout sets the timeout of each attempt
func WithTimeout(timeout time.Duration) Option {
	return func(c *DefaultClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithMaxTries sets the number of attempts, including the first one
func WithMaxTries(tries uint) Option {
	return func(c *DefaultClient) {
		if tries > 0 {
			c.maxTries = tries
		}
	}
}

// WithInitialInterval sets the wait before the first retry
func WithInitialInterval(d time.Duration) Option {
	return func(c *DefaultClient) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// NewDefaultClient creates a client with DefaultTimeout and DefaultMaxTries
func NewDefaultClient(opts ...Option) *DefaultClient {
	c := &DefaultClient{
		client:          &http.Client{Timeout: DefaultTimeout},
		maxTries:        DefaultMaxTries,
		initialInterval: backoff.DefaultInitialInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request. Network errors, 429 and 5xx responses are
// retried; other failures are returned immediately.
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		slog.Warn("Catalog request failed",
			"url", url,
			"attempt", attempt,
			"error", err)
		return nil, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
	)
}

func (c *DefaultClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", versions.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, url, resp.Status)
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize))
	}

	// read one extra byte to detect bodies over the limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response size exceeds maximum allowed size of %d bytes",
			MaxResponseSize))
	}

	return body, nil
}
