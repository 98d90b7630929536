package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/annabot/pkg/log"
)

// DecisionConfig mirrors the decision rule thresholds.
type DecisionConfig struct {
	GreetingCooldown time.Duration `env:"ANNA_GREETING_COOLDOWN" envDefault:"10s"`

	UserWaitMin time.Duration `env:"ANNA_USER_WAIT_MIN" envDefault:"8s"`
	UserWaitMax time.Duration `env:"ANNA_USER_WAIT_MAX" envDefault:"15s"`

	SaturationMinThoughts       int           `env:"ANNA_SATURATION_MIN_THOUGHTS" envDefault:"6"`
	SaturationMinNonObservation int           `env:"ANNA_SATURATION_MIN_NON_OBSERVATION" envDefault:"3"`
	SaturationIdle              time.Duration `env:"ANNA_SATURATION_IDLE" envDefault:"25s"`

	FlowIdle              time.Duration `env:"ANNA_FLOW_IDLE" envDefault:"30s"`
	FlowMinConversational int           `env:"ANNA_FLOW_MIN_CONVERSATIONAL" envDefault:"2"`

	AccumulatedMinThoughts int           `env:"ANNA_ACCUMULATED_MIN_THOUGHTS" envDefault:"4"`
	AccumulatedIdle        time.Duration `env:"ANNA_ACCUMULATED_IDLE" envDefault:"45s"`

	Commands  []string `env:"ANNA_COMMAND_PHRASES" envSeparator:"," envDefault:"search,tell me,explain,show me"`
	Greetings []string `env:"ANNA_GREETINGS" envSeparator:"," envDefault:"hi,hello,hey,sup"`
}

func NewDecisionConfig(ctx context.Context) *DecisionConfig {
	c := &DecisionConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Decision config")
	}
	return c
}

type ChatConfig struct {
	Capacity        int           `env:"ANNA_CHAT_CAPACITY" envDefault:"20"`
	QuestionMaxAge  time.Duration `env:"ANNA_CHAT_QUESTION_MAX_AGE" envDefault:"30s"`
	AccumulationMin int           `env:"ANNA_CHAT_ACCUMULATION_MIN" envDefault:"3"`
	Cooldown        time.Duration `env:"ANNA_CHAT_COOLDOWN" envDefault:"60s"`
	HardCap         int           `env:"ANNA_CHAT_HARD_CAP" envDefault:"5"`
	SummarySize     int           `env:"ANNA_CHAT_SUMMARY_SIZE" envDefault:"5"`
}

func NewChatConfig(ctx context.Context) *ChatConfig {
	c := &ChatConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Chat config")
	}
	return c
}
