package config

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/annabot/pkg/log"
)

type LLMConfig struct {
	mu sync.RWMutex

	Provider string        `env:"ANNA_LLM_PROVIDER" envDefault:"ollama"`
	Model    string        `env:"ANNA_LLM_MODEL" envDefault:"llama3.1:8b-instruct-q4_K_M"`
	Timeout  time.Duration `env:"ANNA_LLM_TIMEOUT" envDefault:"30s"`

	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://127.0.0.1:11434"`
	OllamaAPIKey  string `env:"OLLAMA_API_KEY"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

// GetModel (thread-safe)
func (c *LLMConfig) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Model
}

func (c *LLMConfig) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model name is empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Model = model
	return nil
}
