package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/internal/providers/embed"
	"github.com/sandevgo/annabot/internal/providers/llm"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInputStep(t *testing.T) {
	tests := []struct {
		name    string
		spec    InputSpec
		input   string
		want    string
		wantSet bool
		wantErr bool
	}{
		{name: "typed value", spec: InputSpec{Key: "K"}, input: "Bob", want: "Bob", wantSet: true},
		{name: "required empty", spec: InputSpec{Key: "K"}, wantErr: true},
		{name: "default", spec: InputSpec{Key: "K", Placeholder: "Anna", UseDefault: true}, want: "Anna", wantSet: true},
		{name: "optional empty", spec: InputSpec{Key: "K", Optional: true}},
		{name: "validation", spec: InputSpec{Key: "K", Validate: validateInt}, input: "abc", wantErr: true},
		{name: "valid number", spec: InputSpec{Key: "K", Validate: validateInt}, input: "42", want: "42", wantSet: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewInstallState(t.TempDir())
			step := NewInputStep(tt.spec)
			if tt.input != "" {
				step, _ = step.Update(typed(tt.input), state, 80, 24)
			}
			next, _ := step.Update(enter, state, 80, 24)

			if tt.wantErr {
				assert.NotNil(t, next)
				assert.Contains(t, next.View(state), "\n")
				_, ok := state.EnvVars["K"]
				assert.False(t, ok)
				return
			}
			assert.Nil(t, next)
			got, ok := state.EnvVars["K"]
			assert.Equal(t, tt.wantSet, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChannelStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewChannelStep()
	step, _ = step.Update(down, state, 80, 24)
	next, _ := step.Update(enter, state, 80, 24)

	assert.Nil(t, next)
	assert.Equal(t, "false", state.EnvVars[KeyEnableCLI])
	assert.Equal(t, "true", state.EnvVars[KeyEnableTelegram])
	assert.True(t, state.TelegramEnabled())
}

func TestWizard_SkipsStepsThatDoNotApply(t *testing.T) {
	steps := []Step{
		NewProviderStep(),
		NewInputStep(InputSpec{Key: KeyOllamaURL, Placeholder: DefaultOllamaURL, UseDefault: true, When: providerIs("ollama")}),
		NewInputStep(InputSpec{Key: KeyOpenAIKey, When: providerIs("openai")}),
	}
	var m tea.Model = initialModel(t.TempDir(), steps)

	m, _ = m.Update(enter)
	assert.Equal(t, 1, m.(model).currentStep)

	m, cmd := m.Update(enter)
	wm := m.(model)
	assert.Equal(t, len(steps), wm.currentStep)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "ollama", wm.state.Provider())
	assert.Equal(t, DefaultOllamaURL, wm.state.EnvVars[KeyOllamaURL])
	_, asked := wm.state.EnvVars[KeyOpenAIKey]
	assert.False(t, asked)
}

func TestWizard_CtrlCQuits(t *testing.T) {
	m, _ := initialModel(t.TempDir(), []Step{NewProviderStep()}).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.(model).quitting)
	assert.Equal(t, "Installation cancelled.\n", m.View())
}

func TestModelStep(t *testing.T) {
	calls := 0
	step := newModelStep(func(ctx context.Context, state *InstallState) ([]llm.Model, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("unauthorized")
		}
		return []llm.Model{{ID: "llama3.2:3b"}, {ID: "qwen2.5:7b", Name: "Qwen"}}, nil
	})
	state := NewInstallState(t.TempDir())

	_, cmd := step.Update(nextMsg{}, state, 80, 24)
	require.NotNil(t, cmd)
	_, _ = step.Update(cmd(), state, 80, 24)
	assert.Contains(t, step.View(state), "unauthorized")

	_, cmd = step.Update(enter, state, 80, 24)
	_, cmd = step.Update(cmd(), state, 80, 24)
	_, _ = step.Update(cmd(), state, 80, 24)
	assert.Equal(t, 2, calls)

	next, _ := step.Update(enter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, "llama3.2:3b", state.EnvVars[KeyModel])
}

func TestModelStep_SkipKeepsDefault(t *testing.T) {
	step := newModelStep(func(ctx context.Context, state *InstallState) ([]llm.Model, error) {
		return nil, nil
	})
	state := NewInstallState(t.TempDir())

	_, cmd := step.Update(nextMsg{}, state, 80, 24)
	_, _ = step.Update(cmd(), state, 80, 24)
	assert.Contains(t, step.View(state), "no models")

	next, _ := step.Update(typed("s"), state, 80, 24)
	assert.Nil(t, next)
	_, set := state.EnvVars[KeyModel]
	assert.False(t, set)
}

func TestPullStep(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		step := newPullStep(func(ctx context.Context, state *InstallState, onProgress func(embed.PullProgress)) error {
			onProgress(embed.PullProgress{Status: "pulling manifest"})
			return nil
		})
		state := NewInstallState(t.TempDir())
		state.EnvVars[KeyOllamaURL] = "http://gpu-box:11434"

		_, cmd := step.Update(nextMsg{}, state, 80, 24)
		next, _ := step.Update(cmd(), state, 80, 24)

		assert.Nil(t, next)
		assert.Equal(t, DefaultEmbeddingModel, state.EnvVars[KeyEmbeddingModel])
		assert.Equal(t, "http://gpu-box:11434", state.EnvVars[KeyEmbeddingURL])
		assert.Equal(t, "true", state.EnvVars[KeyMemoryEnabled])
	})

	t.Run("skip after failure disables memory", func(t *testing.T) {
		step := newPullStep(func(ctx context.Context, state *InstallState, onProgress func(embed.PullProgress)) error {
			return errors.New("connection refused")
		})
		state := NewInstallState(t.TempDir())

		_, cmd := step.Update(nextMsg{}, state, 80, 24)
		_, _ = step.Update(cmd(), state, 80, 24)
		assert.Contains(t, step.View(state), "connection refused")

		next, _ := step.Update(typed("s"), state, 80, 24)
		assert.Nil(t, next)
		assert.Equal(t, "false", state.EnvVars[KeyMemoryEnabled])
	})
}

func TestFinalize(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.EnvVars[KeyEnableTelegram] = "true"
	finalize(state)

	assert.Equal(t, "false", state.EnvVars[KeyEnableTelegram])
	assert.Equal(t, "true", state.EnvVars[KeyEnableCLI])
	assert.Equal(t, "0", state.EnvVars[KeyDebug])
}

func TestSaveEnvAndFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime")
	state := NewInstallState(dir)
	state.EnvVars[KeyProvider] = "ollama"
	state.EnvVars[KeyTelegramOwner] = "12345"
	state.EnvVars[KeyAgentName] = "Nova"
	state.EnvVars[KeyOllamaKey] = ""

	require.NoError(t, saveEnv(state))
	assert.ErrorIs(t, saveEnv(state), ErrEnvExists)

	written, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeyProvider:      "ollama",
		KeyTelegramOwner: "12345",
		KeyAgentName:     "Nova",
	}, written)

	require.NoError(t, initializeFiles(context.Background(), state))
	persona, err := os.ReadFile(filepath.Join(dir, config.PersonalityFile))
	require.NoError(t, err)
	assert.Contains(t, string(persona), "agent_name: Nova")
	assert.FileExists(t, filepath.Join(dir, config.MCPConfigFile))
}

func TestInstallState_LLMConfig(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.EnvVars[KeyProvider] = "OpenAI"
	state.EnvVars[KeyOpenAIKey] = "sk-test"

	cfg := state.LLMConfig()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, DefaultOllamaURL, cfg.OllamaBaseURL)
}
