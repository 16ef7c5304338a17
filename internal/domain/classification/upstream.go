package classification

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// Upstream is a generative model endpoint
type Upstream interface {
	Name() string
	// Complete sends a text-only prompt and returns the model's reply
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	// Describe sends a prompt with one image attached
	Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

var (
	ErrNotConfigured     = errors.New("classification service not configured")
	ErrEmptyCompletion   = errors.New("upstream returned no content")
	ErrMalformedResponse = errors.New("upstream returned a malformed response")
)

// HTTPError is a non-2xx upstream reply
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
}

func classifyRequestError(ctx context.Context, service string, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("%s timeout: %w", service, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("%s network error: %w", service, err)
	}
	return fmt.Errorf("%s request error: %w", service, err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}

// reason turns an upstream error into the short text carried by a fallback
func reason(err error) string {
	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "Classification service not configured"
	case isTimeoutError(context.Background(), err):
		return "Classification timed out"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Upstream returned status %d", httpErr.StatusCode)
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrEmptyCompletion):
		return "Invalid response structure from AI model"
	default:
		return "Classification failed"
	}
}
