package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/internal/providers/mcp"
	"github.com/sandevgo/annabot/internal/service/personality"
)

var ErrEnvExists = errors.New(".env file already exists")

// SaveEnvStep writes the collected configuration to .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return next
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.err != nil {
		return s, nil
	}
	if err := saveEnv(state); err != nil {
		s.err = err
		return s, nil
	}
	s.saved = true
	return nil, nil
}

func saveEnv(state *InstallState) error {
	if err := os.MkdirAll(state.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(state.Dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf("%w at %s", ErrEnvExists, envPath)
	}

	content, err := state.Dotenv()
	if err != nil {
		return fmt.Errorf("failed to render .env: %w", err)
	}
	return os.WriteFile(envPath, []byte(content), 0600)
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// InitializeFilesStep writes the default persona and MCP server list unless they exist.
type InitializeFilesStep struct {
	err  error
	done bool
}

func NewInitializeFilesStep() Step {
	return &InitializeFilesStep{}
}

func (s *InitializeFilesStep) Init() tea.Cmd {
	return next
}

func (s *InitializeFilesStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.err != nil {
		return s, nil
	}
	if err := initializeFiles(context.Background(), state); err != nil {
		s.err = err
		return s, nil
	}
	s.done = true
	return nil, nil
}

func initializeFiles(ctx context.Context, state *InstallState) error {
	if err := os.MkdirAll(state.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	agentName := state.EnvVars[KeyAgentName]
	if agentName == "" {
		agentName = "Anna"
	}
	userName := state.EnvVars[KeyUserName]
	if userName == "" {
		userName = "Sir"
	}

	persona := personality.NewFile(filepath.Join(state.Dir, config.PersonalityFile), agentName, userName)
	if err := persona.Load(ctx); err != nil {
		return err
	}

	if _, err := mcp.NewFileStorage(filepath.Join(state.Dir, config.MCPConfigFile)).Load(ctx); err != nil {
		return err
	}
	return nil
}

func (s *InitializeFilesStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Runtime files initialized successfully!\n"
	}
	return "Initializing runtime files...\n"
}
