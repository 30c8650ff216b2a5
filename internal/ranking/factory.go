package ranking

import (
	"context"
	"fmt"

	"hire/internal/config"

	"go.uber.org/zap"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// New builds the configured ranker wrapped in a circuit breaker. It returns a
// nil Ranker and no error when no provider is configured.
func New(ctx context.Context, cfg config.RankingConfig, log *zap.Logger) (Ranker, error) {
	var gen generator
	switch cfg.Provider {
	case "":
		return nil, nil
	case ProviderOpenAI:
		g, err := NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	case ProviderGemini:
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("unknown ranking provider %q", cfg.Provider)
	}

	llm := NewLLMRanker(gen, cfg.Provider, log)
	return NewBreakerRanker(llm, cfg.BreakerFailures, cfg.BreakerCooldown, log), nil
}
