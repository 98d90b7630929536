package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/annabot/pkg/log"
)

// Files kept under the runtime directory.
const (
	DatabaseFile    = "anna.db"
	PersonalityFile = "personality.yaml"
	MCPConfigFile   = "mcp_config.json"
	HistoryFile     = ".cli_history"
)

type AppConfig struct {
	AgentName string `env:"ANNA_AGENT_NAME" envDefault:"Anna"`
	UserName  string `env:"ANNA_USER_NAME" envDefault:"Sir"`

	// Decision loop
	TickInterval   time.Duration `env:"ANNA_TICK_INTERVAL" envDefault:"1s"`
	BufferCapacity int           `env:"ANNA_BUFFER_CAPACITY" envDefault:"20"`
	QueueSize      int           `env:"ANNA_QUEUE_SIZE" envDefault:"256"`

	// Prompt assembly
	MaxResponseChars int `env:"ANNA_MAX_RESPONSE_CHARS" envDefault:"300"`
	PromptMaxTokens  int `env:"ANNA_PROMPT_MAX_TOKENS" envDefault:"3000"`

	// Transport Flags
	EnableTelegram bool `env:"ANNA_ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ANNA_ENABLE_CLI" envDefault:"true"`

	// Tools
	ClockInterval     time.Duration `env:"ANNA_CLOCK_INTERVAL" envDefault:"5m"`
	EnableFetch       bool          `env:"ANNA_ENABLE_FETCH" envDefault:"true"`
	PersonalityReload time.Duration `env:"ANNA_PERSONALITY_RELOAD_DEBOUNCE" envDefault:"500ms"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return GetRuntimePath()
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(GetRuntimePath(), DatabaseFile)
}

func (c AppConfig) GetPersonalityPath() string {
	return filepath.Join(GetRuntimePath(), PersonalityFile)
}

func (c AppConfig) GetMCPConfigPath() string {
	return filepath.Join(GetRuntimePath(), MCPConfigFile)
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(GetRuntimePath(), HistoryFile)
}
