package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/pkg/log"
)

// NewProvider creates the appropriate Provider based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (Provider, error) {
	model := cfg.GetModel()
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, model), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, model), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, model), nil
	case "custom":
		if cfg.CustomOpenAIBaseURL == "" {
			return nil, fmt.Errorf("custom provider requires CUSTOM_OPENAI_BASE_URL")
		}
		return NewCustomOpenAI(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
