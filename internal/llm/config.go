package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "anthropic", "openai", "openrouter", "mock"
	Provider string `mapstructure:"provider"`

	Gemini     ProviderConfig `mapstructure:"gemini"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Retry      RetryConfig    `mapstructure:"retry"`

	// Timeout is the maximum duration for a single logical request
	// (including retries). Default: 90s.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxTokens is the response budget used when a call site does not
	// set its own.
	MaxTokens int `mapstructure:"max_tokens"`
}

// ProviderConfig holds the per-provider settings. Model is the fast tier,
// ProModel the higher-capability tier.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	ProModel string `mapstructure:"pro_model"`
	BaseURL  string `mapstructure:"base_url"` // Optional. OpenAI-compatible endpoints only.
}

// RetryConfig configures retry behavior for rate-limited calls.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
	Jitter      float64       `mapstructure:"jitter"` // fraction, 0 disables
}

// Tier selects between a provider's fast and pro models.
type Tier string

const (
	TierFast Tier = "fast"
	TierPro  Tier = "pro"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: ProviderConfig{
			Model:    "gemini-flash",
			ProModel: "gemini-pro",
		},
		Anthropic: ProviderConfig{
			Model:    "claude-haiku",
			ProModel: "claude-sonnet",
		},
		OpenAI: ProviderConfig{
			Model:    "gpt-4o-mini",
			ProModel: "gpt-4o",
		},
		OpenRouter: ProviderConfig{
			Model:    "google/gemini-2.5-flash",
			ProModel: "google/gemini-2.5-pro",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 2 * time.Second,
			MaxWait:     30 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:   90 * time.Second,
		MaxTokens: 8192,
	}
}

// Selected returns the ProviderConfig for the configured provider.
func (c Config) Selected() ProviderConfig {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic
	case "openai":
		return c.OpenAI
	case "openrouter":
		return c.OpenRouter
	default:
		return c.Gemini
	}
}

// ModelFor returns the model name for the given tier, falling back to the
// fast model when no pro model is configured.
func (p ProviderConfig) ModelFor(tier Tier) string {
	if tier == TierPro && p.ProModel != "" {
		return p.ProModel
	}
	return p.Model
}

// Discover fills in a provider from the standard API key env vars when
// none of the configured providers has a key. Probe order is
// Gemini → OpenAI → Anthropic → OpenRouter.
func (c Config) Discover() (Config, bool) {
	if c.Provider == "mock" || c.Selected().APIKey != "" {
		return c, true
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		c.Provider = "gemini"
		c.Gemini.APIKey = k
		return c, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.Provider = "openai"
		c.OpenAI.APIKey = k
		return c, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		c.Provider = "anthropic"
		c.Anthropic.APIKey = k
		return c, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		c.Provider = "openrouter"
		c.OpenRouter.APIKey = k
		return c, true
	}

	return c, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini", "anthropic", "openai", "openrouter":
		if c.Selected().APIKey == "" {
			return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
