package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates one structured completion per call. Implementations
// are the vendor adapters plus the retry and logging decorators that wrap
// them.
type Provider interface {
	// Generate runs req. When req.Schema is set the returned Content is
	// JSON that already passed schema validation.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Request is a single inference call. Study sessions are single-turn, so
// Messages normally holds one user message and Attachments ride along
// with it.
type Request struct {
	System      string
	Messages    []Message
	Attachments []Attachment

	// Schema selects the provider's native structured-output mode. Nil
	// means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// UserRequest builds the common shape: a system prompt, one user turn and
// an optional response schema.
func UserRequest(system, user string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
		Schema:   schema,
	}
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is a document sent inline with the last user message.
type Attachment struct {
	Name      string
	MediaType string
	Data      []byte
}

// AttachmentKind groups media types by how adapters encode them.
type AttachmentKind int

const (
	KindOther AttachmentKind = iota
	KindText
	KindPDF
	KindImage
)

func (a Attachment) Kind() AttachmentKind {
	switch {
	case strings.HasPrefix(a.MediaType, "text/"):
		return KindText
	case a.MediaType == "application/pdf":
		return KindPDF
	case strings.HasPrefix(a.MediaType, "image/"):
		return KindImage
	}
	return KindOther
}

// Schema is a named JSON Schema. Name doubles as the OpenAI schema name
// and the compiled-schema cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the provider-neutral reason generation ended.
type StopReason = string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
