package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyaudit/internal/store"
)

// Providers holds one Provider per model tier.
type Providers struct {
	Fast Provider
	Pro  Provider
}

// For returns the provider for tier.
func (p Providers) For(tier Tier) Provider {
	if tier == TierPro && p.Pro != nil {
		return p.Pro
	}
	return p.Fast
}

// NewProviders creates the fast and pro tier providers from configuration.
// Each is wrapped caller → retry → logging → base.
func NewProviders(ctx context.Context, cfg Config, eventRepo store.EventRepo, log logrus.FieldLogger) (Providers, error) {
	fast, err := NewProvider(ctx, cfg, TierFast, eventRepo, log)
	if err != nil {
		return Providers{}, err
	}
	pro, err := NewProvider(ctx, cfg, TierPro, eventRepo, log)
	if err != nil {
		return Providers{}, err
	}
	return Providers{Fast: fast, Pro: pro}, nil
}

// NewProvider creates a single-tier Provider from configuration, wrapped
// with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, tier Tier, eventRepo store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	var base Provider
	var err error

	pc := cfg.Selected()
	model := pc.ModelFor(tier)

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, pc.APIKey, model)
	case "anthropic":
		base, err = NewAnthropicProvider(pc.APIKey, model)
	case "openai":
		base, err = NewOpenAIProvider(pc.APIKey, model, pc.BaseURL)
	case "openrouter":
		base, err = NewOpenRouterProvider(pc.APIKey, model, pc.BaseURL)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	return WithRetry(logged, cfg.Retry, log), nil
}
