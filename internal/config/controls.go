package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/annabot/pkg/log"
)

// ControlsConfig holds the initial values of the runtime controls.
type ControlsConfig struct {
	ChatEngagement      bool          `env:"ANNA_CHAT_ENGAGEMENT" envDefault:"true"`
	ContentFilter       bool          `env:"ANNA_CONTENT_FILTER" envDefault:"true"`
	MemorySearch        bool          `env:"ANNA_MEMORY_SEARCH" envDefault:"true"`
	LimitProcessing     bool          `env:"ANNA_LIMIT_PROCESSING" envDefault:"false"`
	MinResponseInterval time.Duration `env:"ANNA_MIN_RESPONSE_INTERVAL" envDefault:"0s"`
	KillPhrase          string        `env:"ANNA_KILL_PHRASE" envDefault:"shut down sleep now"`
	DisabledTools       []string      `env:"ANNA_DISABLED_TOOLS" envSeparator:","`
}

func NewControlsConfig(ctx context.Context) *ControlsConfig {
	c := &ControlsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Controls config")
	}
	return c
}
