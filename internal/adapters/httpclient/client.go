package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"walking-route-service/internal/platform/obs"
)

// StatusError is returned for any response with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Client wraps http.Client with status checking, optional retries and metrics.
// One Client is built per provider so metrics carry the provider label.
type Client struct {
	Provider    string
	HTTP        *http.Client
	MaxAttempts int
	Backoff     time.Duration
	Metrics     *obs.Metrics
}

// New returns a client that makes a single attempt per call.
func New(provider string, timeout time.Duration, metrics *obs.Metrics) *Client {
	return &Client{
		Provider:    provider,
		HTTP:        &http.Client{Timeout: timeout},
		MaxAttempts: 1,
		Backoff:     200 * time.Millisecond,
		Metrics:     metrics,
	}
}

// NewRequest builds a GET-style request accepting JSON.
func NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err == nil && resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		err = &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	c.observe(start, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) observe(start time.Time, err error) {
	if c.Metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.Metrics.ProviderRequests.WithLabelValues(c.Provider, outcome).Inc()
	c.Metrics.ProviderDuration.WithLabelValues(c.Provider).Observe(time.Since(start).Seconds())
}

// Do sends the request built by makeReq. When MaxAttempts > 1, transient
// failures (network errors, 429, 5xx) are retried with exponential backoff
// while respecting context cancellation. The caller owns the response body.
func (c *Client) Do(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := c.Backoff

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !Retryable(err) || attempt == attempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// Retryable reports whether err is a transient transport or server failure.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
