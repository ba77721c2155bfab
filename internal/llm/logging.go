package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyaudit/internal/store"
)

// maxCapturedBody caps request and response text stored per event.
const maxCapturedBody = 64 << 10

// LoggingProvider records each call in the request event log and emits a
// structured log line for it.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      logrus.FieldLogger
}

// WithLogging decorates p. repo may be nil, in which case calls are only
// logged.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log logrus.FieldLogger) Provider {
	if log == nil {
		log = discardLogger()
	}
	return &LoggingProvider{inner: p, provider: providerName, events: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	ev := l.event(ctx, req, resp, err, time.Since(start))

	entry := l.log.WithFields(logrus.Fields{
		"provider":   ev.Provider,
		"purpose":    ev.Purpose,
		"model":      ev.Model,
		"latency_ms": ev.LatencyMs,
		"tokens_in":  ev.InputTokens,
		"tokens_out": ev.OutputTokens,
	})
	if err != nil {
		entry.WithError(err).Warn("llm request failed")
	} else {
		entry.Debug("llm request")
	}

	if l.events != nil {
		// Survive a cancelled request context so aborted calls are still recorded.
		if recErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); recErr != nil {
			l.log.WithError(recErr).Warn("could not record llm request event")
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) event(ctx context.Context, req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: capBody(describeRequest(req)),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = capBody(string(resp.Content))
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	return ev
}

// describeRequest renders a request for the event log. Attachments are
// listed by name and size only.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	for _, a := range req.Attachments {
		fmt.Fprintf(&b, "[attachment %s: %s, %d bytes]\n\n", a.Name, a.MediaType, len(a.Data))
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}

func capBody(s string) string {
	if len(s) <= maxCapturedBody {
		return s
	}
	return s[:maxCapturedBody] + fmt.Sprintf("\n... (%d bytes omitted)", len(s)-maxCapturedBody)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
