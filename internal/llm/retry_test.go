package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// recordingRetry wraps inner with a retry decorator whose sleeps are
// recorded instead of performed.
func recordingRetry(inner Provider, cfg RetryConfig) (*RetryProvider, *[]time.Duration) {
	var waits []time.Duration
	r := newRetryProvider(inner, cfg, nil)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p, waits := recordingRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 || len(*waits) != 0 {
		t.Fatalf("expected 1 call and no waits, got %d calls, %d waits", mock.CallCount(), len(*waits))
	}
}

func TestRetry_RateLimitedTwiceThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p, waits := recordingRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
	if len(*waits) != 2 {
		t.Fatalf("expected exactly 2 delays, got %d", len(*waits))
	}
	if (*waits)[0] != 100*time.Millisecond || (*waits)[1] != 200*time.Millisecond {
		t.Fatalf("expected delays doubling from 100ms, got %v", *waits)
	}
	if (*waits)[1] <= (*waits)[0] {
		t.Fatalf("expected strictly increasing delays, got %v", *waits)
	}
}

func TestRetry_RateLimitExhausted(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p, waits := recordingRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var exhausted *ErrRateLimitExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ErrRateLimitExhausted, got: %T (%v)", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", exhausted.Attempts)
	}
	// The original signal stays reachable.
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatal("expected wrapped ErrRateLimit")
	}
	if mock.CallCount() != 3 || len(*waits) != 2 {
		t.Fatalf("expected 3 calls and 2 waits, got %d calls, %d waits", mock.CallCount(), len(*waits))
	}
}

func TestRetry_NonRateLimitNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", &ErrProviderUnavailable{Err: errors.New("down")}},
		{"invalid response", &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}},
		{"max tokens", &ErrMaxTokensExceeded{Content: json.RawMessage(`{}`)}},
		{"unsupported content", &ErrUnsupportedContent{Provider: "openai", MediaType: "application/pdf"}},
		{"plain", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(
				MockResponse{Err: tt.err},
				MockResponse{Content: json.RawMessage(`{"ok":true}`)},
			)
			p, waits := recordingRetry(mock, retryConfig())

			_, err := p.Generate(context.Background(), Request{})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected original error, got: %v", err)
			}
			if mock.CallCount() != 1 {
				t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
			}
			if len(*waits) != 0 {
				t.Fatalf("expected no delays, got %v", *waits)
			}
		})
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	p := WithRetry(mock, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RetryAfterIsAFloor(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 5 * time.Second, Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p, waits := recordingRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 5*time.Second {
		t.Fatalf("expected a single 5s wait, got %v", *waits)
	}
}

func TestRetry_BackoffCappedAtMaxWait(t *testing.T) {
	cfg := retryConfig()
	cfg.MaxWait = 150 * time.Millisecond
	r := newRetryProvider(NewMockProvider(), cfg, nil)

	rl := &ErrRateLimit{}
	if got := r.backoff(0, rl); got != 100*time.Millisecond {
		t.Fatalf("attempt 0: expected 100ms, got %v", got)
	}
	if got := r.backoff(3, rl); got != 150*time.Millisecond {
		t.Fatalf("attempt 3: expected cap at 150ms, got %v", got)
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig(), nil)
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}
