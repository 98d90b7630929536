package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecisionConfig_Defaults(t *testing.T) {
	c := NewDecisionConfig(context.Background())

	assert.Equal(t, 10*time.Second, c.GreetingCooldown)
	assert.Equal(t, 8*time.Second, c.UserWaitMin)
	assert.Equal(t, 15*time.Second, c.UserWaitMax)
	assert.Equal(t, 6, c.SaturationMinThoughts)
	assert.Equal(t, 45*time.Second, c.AccumulatedIdle)
	assert.Equal(t, []string{"search", "tell me", "explain", "show me"}, c.Commands)
	assert.Equal(t, []string{"hi", "hello", "hey", "sup"}, c.Greetings)
}

func TestNewDecisionConfig_Overrides(t *testing.T) {
	t.Setenv("ANNA_USER_WAIT_MIN", "2s")
	t.Setenv("ANNA_GREETINGS", "yo,hiya")

	c := NewDecisionConfig(context.Background())
	assert.Equal(t, 2*time.Second, c.UserWaitMin)
	assert.Equal(t, []string{"yo", "hiya"}, c.Greetings)
}

func TestNewControlsConfig(t *testing.T) {
	t.Setenv("ANNA_DISABLED_TOOLS", "fetch,clock")
	t.Setenv("ANNA_LIMIT_PROCESSING", "true")

	c := NewControlsConfig(context.Background())
	assert.True(t, c.ChatEngagement)
	assert.True(t, c.LimitProcessing)
	assert.Equal(t, "shut down sleep now", c.KillPhrase)
	assert.Equal(t, []string{"fetch", "clock"}, c.DisabledTools)
}

func TestLLMConfig_Model(t *testing.T) {
	c := NewLLMConfig(context.Background())
	assert.Equal(t, "ollama", c.Provider)
	assert.Equal(t, 30*time.Second, c.Timeout)

	require.NoError(t, c.SetModel("  mistral  "))
	assert.Equal(t, "mistral", c.GetModel())
	assert.Error(t, c.SetModel(" "))
	assert.Equal(t, "mistral", c.GetModel())
}

func TestGetRuntimePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ANNA_RUNTIME_PATH", dir)

	c := NewAppConfig(context.Background())
	assert.Equal(t, dir, c.GetRuntimePath())
	assert.Equal(t, filepath.Join(dir, "anna.db"), c.GetDatabasePath())
	assert.Equal(t, filepath.Join(dir, "personality.yaml"), c.GetPersonalityPath())
	assert.Equal(t, filepath.Join(dir, ".env"), GetEnvPath())
}

func TestGetRuntimePath_RelativeIsHomeBased(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ANNA_RUNTIME_PATH", "")

	assert.Equal(t, filepath.Join(home, ".anna"), GetRuntimePath())
}
