package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterTitle   = "StudyAudit"
	openRouterSite    = "https://github.com/abhisek/studyaudit"
)

// openRouterModels lets the short tier names used for the native
// providers work against OpenRouter too.
var openRouterModels = map[string]string{
	"gemini-flash":  "google/gemini-2.5-flash",
	"gemini-pro":    "google/gemini-2.5-pro",
	"claude-sonnet": "anthropic/claude-sonnet-4.5",
	"claude-haiku":  "anthropic/claude-haiku-4.5",
	"gpt-4o":        "openai/gpt-4o",
	"gpt-4o-mini":   "openai/gpt-4o-mini",
}

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible endpoint and
// tags requests with the app attribution headers OpenRouter reads.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(apiKey, model, baseURL string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = attributed{next: http.DefaultClient}

	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(model, openRouterModels),
		name:   "openrouter",
	}}, nil
}

type attributed struct {
	next *http.Client
}

func (a attributed) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", openRouterSite)
	req.Header.Set("X-Title", openRouterTitle)
	return a.next.Do(req)
}
