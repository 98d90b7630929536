// Package installer runs the first-time setup wizard that writes the runtime directory.
package installer

import (
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrInterrupted = errors.New("installation interrupted")

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Step represents a single step in the installation wizard
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

// conditional steps are skipped when Skip reports true for the answers so far.
type conditional interface {
	Skip(state *InstallState) bool
}

func providerIs(names ...string) func(*InstallState) bool {
	return func(s *InstallState) bool {
		for _, n := range names {
			if s.Provider() == n {
				return true
			}
		}
		return false
	}
}

func validateInt(v string) error {
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		return errors.New("must be a number")
	}
	return nil
}

func getSteps() []Step {
	return []Step{
		NewInputStep(InputSpec{Key: KeyAgentName, Title: "What should the agent be called?", Placeholder: "Anna", UseDefault: true}),
		NewInputStep(InputSpec{Key: KeyUserName, Title: "How should the agent address you?", Placeholder: "Sir", UseDefault: true}),
		NewProviderStep(),
		NewInputStep(InputSpec{Key: KeyOllamaURL, Title: "Ollama Base URL", Placeholder: DefaultOllamaURL, UseDefault: true, When: providerIs("ollama")}),
		NewInputStep(InputSpec{Key: KeyOllamaKey, Title: "Ollama API Key", Placeholder: "press enter to skip", Optional: true, When: providerIs("ollama")}),
		NewInputStep(InputSpec{Key: KeyCustomURL, Title: "Custom OpenAI Base URL", Placeholder: "https://api.example.com", When: providerIs("custom")}),
		NewInputStep(InputSpec{Key: KeyCustomKey, Title: "Custom OpenAI API Key", Placeholder: "press enter to skip", Secret: true, Optional: true, When: providerIs("custom")}),
		NewInputStep(InputSpec{Key: KeyOpenAIKey, Title: "OpenAI API Key", Placeholder: "sk-...", Secret: true, When: providerIs("openai")}),
		NewInputStep(InputSpec{Key: KeyAnthropicKey, Title: "Anthropic API Key", Placeholder: "sk-ant-...", Secret: true, When: providerIs("anthropic")}),
		NewInputStep(InputSpec{Key: KeyOpenRouterKey, Title: "OpenRouter API Key", Placeholder: "sk-or-v1-...", Secret: true, When: providerIs("openrouter")}),
		NewModelStep(),
		NewChannelStep(),
		NewInputStep(InputSpec{Key: KeyTelegramToken, Title: "Telegram Bot Token", Placeholder: "123456789:ABCDEF...", Secret: true, When: (*InstallState).TelegramEnabled}),
		NewInputStep(InputSpec{Key: KeyTelegramOwner, Title: "Telegram User ID (Owner)", Placeholder: "123456789", Validate: validateInt, When: (*InstallState).TelegramEnabled}),
		NewPullStep(),
		NewFinalizationStep(),
		NewSaveEnvStep(),
		NewInitializeFilesStep(),
	}
}

type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

type modelsMsg []list.Item
type errMsg error
type nextMsg struct{}

func next() tea.Msg { return nextMsg{} }

// model is the main Bubble Tea model that orchestrates the steps
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	width       int
	height      int
}

func initialModel(dir string, steps []Step) model {
	return model{
		steps: steps,
		state: NewInstallState(dir),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if nextStep == nil {
		return m.advance()
	}

	// A step may hand over to a different step for branching.
	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}
	return m, cmd
}

// advance moves to the next step that applies to the collected answers.
func (m model) advance() (tea.Model, tea.Cmd) {
	for {
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		if c, ok := m.steps[m.currentStep].(conditional); ok && c.Skip(m.state) {
			continue
		}
		return m, m.steps[m.currentStep].Init()
	}
}

func (m model) View() string {
	if m.quitting {
		return "Installation cancelled.\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}

	return titleStyle.Render("Setting up AnnaBot") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI and writes the collected configuration into dir.
func RunWizard(dir string) (*InstallState, error) {
	p := tea.NewProgram(initialModel(dir, getSteps()), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.quitting {
		return nil, ErrInterrupted
	}

	return finalModel.state, nil
}
