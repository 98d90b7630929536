package installer

import (
	"strings"

	"github.com/joho/godotenv"

	"github.com/sandevgo/annabot/internal/config"
)

// Keys the wizard writes. They match the env tags in internal/config.
const (
	KeyAgentName      = "ANNA_AGENT_NAME"
	KeyUserName       = "ANNA_USER_NAME"
	KeyProvider       = "ANNA_LLM_PROVIDER"
	KeyModel          = "ANNA_LLM_MODEL"
	KeyOllamaURL      = "OLLAMA_BASE_URL"
	KeyOllamaKey      = "OLLAMA_API_KEY"
	KeyOpenAIKey      = "OPENAI_API_KEY"
	KeyAnthropicKey   = "ANTHROPIC_API_KEY"
	KeyOpenRouterKey  = "OPENROUTER_API_KEY"
	KeyCustomURL      = "CUSTOM_OPENAI_BASE_URL"
	KeyCustomKey      = "CUSTOM_OPENAI_API_KEY"
	KeyEnableCLI      = "ANNA_ENABLE_CLI"
	KeyEnableTelegram = "ANNA_ENABLE_TELEGRAM"
	KeyTelegramToken  = "TELEGRAM_TOKEN"
	KeyTelegramOwner  = "TELEGRAM_OWNER_ID"
	KeyMemoryEnabled  = "ANNA_MEMORY_ENABLED"
	KeyEmbeddingURL   = "ANNA_EMBEDDING_URL"
	KeyEmbeddingModel = "ANNA_EMBEDDING_MODEL"
	KeyDebug          = "ANNA_DEBUG"
)

const (
	DefaultOllamaURL      = "http://127.0.0.1:11434"
	DefaultEmbeddingModel = "nomic-embed-text"
)

type InstallState struct {
	// Dir receives .env and the runtime files.
	Dir     string
	EnvVars map[string]string
}

func NewInstallState(dir string) *InstallState {
	return &InstallState{
		Dir:     dir,
		EnvVars: make(map[string]string),
	}
}

func (s *InstallState) Provider() string {
	return strings.ToLower(s.EnvVars[KeyProvider])
}

func (s *InstallState) TelegramEnabled() bool {
	return s.EnvVars[KeyEnableTelegram] == "true"
}

// LLMConfig describes the provider chosen so far.
func (s *InstallState) LLMConfig() *config.LLMConfig {
	return &config.LLMConfig{
		Provider:            s.Provider(),
		Model:               s.EnvVars[KeyModel],
		OllamaBaseURL:       s.OllamaURL(),
		OllamaAPIKey:        s.EnvVars[KeyOllamaKey],
		OpenAIAPIKey:        s.EnvVars[KeyOpenAIKey],
		AnthropicAPIKey:     s.EnvVars[KeyAnthropicKey],
		OpenRouterAPIKey:    s.EnvVars[KeyOpenRouterKey],
		CustomOpenAIBaseURL: s.EnvVars[KeyCustomURL],
		CustomOpenAIAPIKey:  s.EnvVars[KeyCustomKey],
	}
}

func (s *InstallState) OllamaURL() string {
	if u := s.EnvVars[KeyOllamaURL]; u != "" {
		return u
	}
	return DefaultOllamaURL
}

// EmbeddingModel is the model memory search will pull and use.
func (s *InstallState) EmbeddingModel() string {
	if m := s.EnvVars[KeyEmbeddingModel]; m != "" {
		return m
	}
	return DefaultEmbeddingModel
}

// Dotenv renders the non-empty values as .env content.
func (s *InstallState) Dotenv() (string, error) {
	vars := make(map[string]string, len(s.EnvVars))
	for k, v := range s.EnvVars {
		if v != "" {
			vars[k] = v
		}
	}
	out, err := godotenv.Marshal(vars)
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}
