package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. Exactly one of Content and Err is
// normally set.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error

	// Release, when non-nil, blocks the call until it is closed or ctx
	// ends. Tests use it to hold a request in flight.
	Release chan struct{}
}

// MockJSON scripts a successful reply.
func MockJSON(content string) MockResponse {
	return MockResponse{Content: json.RawMessage(content)}
}

// MockProvider replays scripted responses in order and records every
// request with its purpose. Content still goes through schema validation,
// so a bad script fails the same way a bad model reply would.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse

	Calls    []Request
	Purposes []string
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	next, ok := m.record(ctx, req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}

	if next.Release != nil {
		select {
		case <-next.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if next.Err != nil {
		return nil, next.Err
	}

	content, err := finish(req, next.Content, StopEnd)
	if err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: next.Usage, Model: m.ModelID(), StopReason: StopEnd}, nil
}

// record logs the call and pops the next scripted response.
func (m *MockProvider) record(ctx context.Context, req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, PurposeFrom(ctx))
	if len(m.script) == 0 {
		return MockResponse{}, false
	}
	next := m.script[0]
	m.script = m.script[1:]
	return next, true
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, resp)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
