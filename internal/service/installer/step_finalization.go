package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep computes derived values and final env var formatting
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return next
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func finalize(state *InstallState) {
	if state.EnvVars[KeyTelegramToken] == "" {
		state.EnvVars[KeyEnableTelegram] = "false"
	}
	if state.EnvVars[KeyEnableCLI] == "" {
		state.EnvVars[KeyEnableCLI] = "true"
	}
	if state.EnvVars[KeyDebug] == "" {
		state.EnvVars[KeyDebug] = "0"
	}
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
