package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 8 * time.Second

// Client posts notification payloads. By default each call makes exactly
// one attempt; alerts are never retried.
type Client struct {
	http *retryablehttp.Client
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Default: 8s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.HTTPClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying transport client.
// Its Timeout is kept as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.HTTPClient = hc
	}
}

// New creates a Client with a single attempt per request.
func New(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil // failures are reported by the caller
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = DefaultTimeout

	c := &Client{http: rc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.HTTPClient.Timeout
}

// PostForm sends form as application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, target string, form url.Values) error {
	return c.post(ctx, target, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// PostJSON marshals payload and sends it as application/json.
func (c *Client) PostJSON(ctx context.Context, target string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("httpclient: marshal: %w", err)
	}
	return c.post(ctx, target, "application/json", body)
}

// post sends body and returns *APIError for non-2xx responses.
// Transport errors are stripped of the request URL, which may carry secrets.
func (c *Client) post(ctx context.Context, target, contentType string, body []byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", redact(err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("httpclient: post: %w", redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}

func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
