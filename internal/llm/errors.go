package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrRateLimitExhausted means every retry attempt was rate limited.
type ErrRateLimitExhausted struct {
	Attempts int
	Err      error
}

func (e *ErrRateLimitExhausted) Error() string {
	return fmt.Sprintf("still rate limited after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ErrRateLimitExhausted) Unwrap() error { return e.Err }

// ErrInvalidResponse carries output that failed to parse or to match the
// requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return "invalid model response: " + e.Err.Error()
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers outages, transport failures and any API
// error that is not a rate limit. Status is 0 when no HTTP status was seen.
type ErrProviderUnavailable struct {
	Status int
	Err    error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Err == nil:
		return "inference provider unavailable"
	case e.Status != 0:
		return fmt.Sprintf("inference provider unavailable (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("inference provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means output stopped at the token limit. Content is
// the partial output.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated at max tokens"
}

// ErrUnsupportedContent is returned before any network call when an
// attachment's media type cannot be carried by the provider.
type ErrUnsupportedContent struct {
	Provider  string
	MediaType string
}

func (e *ErrUnsupportedContent) Error() string {
	return fmt.Sprintf("%s provider cannot send %q documents", e.Provider, e.MediaType)
}

// IsRateLimited reports whether err, or anything it wraps, is a single
// rate-limit signal.
func IsRateLimited(err error) bool {
	var rl *ErrRateLimit
	return errors.As(err, &rl)
}

// classifyStatus maps an SDK error with a known HTTP status onto the typed
// errors above. Context errors pass through untouched so callers can tell
// a cancellation from an outage.
func classifyStatus(err error, status int, retryAfter time.Duration) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	}
	return &ErrProviderUnavailable{Status: status, Err: err}
}
