package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyaudit/internal/store"
)

type recordingRepo struct {
	store.EventRepo

	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Content: []byte(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}})
	p := WithLogging(mock, "gemini", repo, nil)

	req := UserRequest("system prompt", "user prompt", nil)
	req.Attachments = []Attachment{{Name: "notes.pdf", MediaType: "application/pdf", Data: []byte("%PDF-1.7")}}
	_, err := p.Generate(WithPurpose(context.Background(), PurposeTopics), req)
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, "gemini", ev.Provider)
	assert.Equal(t, "mock", ev.Model)
	assert.Equal(t, PurposeTopics, ev.Purpose)
	assert.True(t, ev.Success)
	assert.Equal(t, 12, ev.InputTokens)
	assert.Contains(t, ev.RequestBody, "[system]\nsystem prompt")
	assert.Contains(t, ev.RequestBody, "[attachment notes.pdf: application/pdf, 8 bytes]")
	assert.NotContains(t, ev.RequestBody, "%PDF")
	assert.Equal(t, `{"ok":true}`, ev.ResponseBody)
}

func TestLoggingProvider_RecordsFailureAndWarns(t *testing.T) {
	repo := &recordingRepo{}
	log, hook := test.NewNullLogger()
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	p := WithLogging(mock, "openai", repo, log)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)

	require.Len(t, repo.events, 1)
	assert.False(t, repo.events[0].Success)
	assert.Contains(t, repo.events[0].ErrorMessage, "rate limited")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, PurposeUnknown, hook.LastEntry().Data["purpose"])
}

func TestLoggingProvider_RepoFailureDoesNotFailCall(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockJSON(`{}`)), "mock", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestLoggingProvider_RecordsAfterCancel(t *testing.T) {
	repo := &recordingRepo{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := WithLogging(NewMockProvider(MockResponse{Content: []byte(`{}`), Release: make(chan struct{})}), "mock", repo, nil)

	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, repo.events, 1)
}

func TestCapBody(t *testing.T) {
	short := "abc"
	assert.Equal(t, short, capBody(short))

	long := strings.Repeat("x", maxCapturedBody+10)
	got := capBody(long)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 100)))
	assert.Contains(t, got, "(10 bytes omitted)")
}
