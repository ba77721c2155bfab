package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"topics":["Thermodynamics"]}`},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 30,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:      "You identify study topics.",
		Messages:    []Message{{Role: RoleUser, Content: "List the topics."}},
		Attachments: []Attachment{{Name: "notes.pdf", MediaType: "application/pdf", Data: []byte("%PDF-1.4")}},
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 80 {
		t.Fatalf("expected 80 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if string(resp.Content) != `{"topics":["Thermodynamics"]}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestAnthropicProvider_RateLimitCarriesRetryAfter(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "rate_limit_error",
				"message": "Rate limited",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.RetryAfter.Seconds() != 7 {
		t.Fatalf("expected 7s retry-after, got %v", rl.RetryAfter)
	}
}

func TestAnthropicAttachmentBlock(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		wantErr   bool
	}{
		{"pdf", "application/pdf", false},
		{"markdown", "text/markdown", false},
		{"plain text", "text/plain", false},
		{"png", "image/png", false},
		{"jpeg", "image/jpeg", false},
		{"tiff", "image/tiff", true},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := anthropicAttachmentBlock(Attachment{Name: "f", MediaType: tt.mediaType, Data: []byte("x")})
			if tt.wantErr {
				var unsupported *ErrUnsupportedContent
				if !errors.As(err, &unsupported) {
					t.Fatalf("expected ErrUnsupportedContent, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildAnthropicMessages_AttachmentsBeforeText(t *testing.T) {
	msgs, err := buildAnthropicMessages(
		[]Message{{Role: RoleUser, Content: "prompt"}},
		[]Attachment{{Name: "a.txt", MediaType: "text/plain", Data: []byte("hello")}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 || len(msgs[0].Content) != 2 {
		t.Fatalf("expected one message with 2 blocks, got %+v", msgs)
	}
	if msgs[0].Content[0].OfDocument == nil {
		t.Fatal("expected document block first")
	}
	if msgs[0].Content[1].OfText == nil || msgs[0].Content[1].OfText.Text != "prompt" {
		t.Fatal("expected prompt text block last")
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}

	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
