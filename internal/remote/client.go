package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pressroom.app/pressroom/common/logger"
)

// Dispatch failure kinds. Callers classify with errors.Is / errors.As.
var (
	ErrNetwork           = errors.New("network failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotConfigured     = errors.New("endpoint not configured")
)

// StatusError is a non-2xx reply from a remote collaborator.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

const (
	// maxErrorBody caps how much of a failed reply is kept on the error.
	maxErrorBody = 512

	// DefaultMaxBody is the largest reply read from a remote endpoint.
	DefaultMaxBody int64 = 8 << 20
)

// Client posts JSON to the tunnel-hosted inference, explanation, analysis and
// classifier endpoints.
type Client struct {
	http    *http.Client
	name    string
	maxBody int64
}

// New returns a client whose every request is bounded by timeout.
// name labels spans and logs ("generate", "explain", ...).
func New(name string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		name:    name,
		maxBody: DefaultMaxBody,
	}
}

// WithHTTPClient swaps the transport, for tests that point at httptest servers.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithMaxBody changes the reply size limit. Larger replies fail with
// ErrMalformedResponse.
func (c *Client) WithMaxBody(n int64) *Client {
	if n > 0 {
		c.maxBody = n
	}
	return c
}

// PostJSON sends payload and decodes the reply into out.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out any) error {
	if url == "" {
		return fmt.Errorf("%s: %w", c.name, ErrNotConfigured)
	}

	sc := logger.StartSpan(ctx, "remote."+c.name, trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(attribute.String("remote.endpoint", url))

	err := c.post(ctx, url, payload, out)
	if err != nil {
		sc.Fail(err)
	}
	return err
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", c.name, ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return fmt.Errorf("%s: read body: %w: %w", c.name, ErrNetwork, err)
	}
	if int64(len(raw)) > c.maxBody {
		return fmt.Errorf("%s: reply exceeds %d bytes: %w", c.name, c.maxBody, ErrMalformedResponse)
	}

	slog.DebugContext(ctx, "remote call completed",
		"endpoint", c.name,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Endpoint:   c.name,
			StatusCode: resp.StatusCode,
			Body:       logger.Truncate(string(bytes.TrimSpace(raw)), maxErrorBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %w", c.name, ErrMalformedResponse, err)
	}
	return nil
}

// IsRetryable reports whether another attempt could succeed: transport
// failures, rate limiting and server errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return false
}

// Describe renders err as the short text shown inline to users in place of
// a model answer.
func Describe(err error) string {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP %d", statusErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	case errors.Is(err, ErrNotConfigured):
		return "endpoint not configured"
	case errors.Is(err, ErrNetwork):
		return "connection failed"
	case errors.Is(err, ErrMalformedResponse):
		return "unexpected response body"
	default:
		return err.Error()
	}
}
