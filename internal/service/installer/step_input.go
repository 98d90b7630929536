package installer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputSpec describes one free-text answer.
type InputSpec struct {
	Key         string
	Title       string
	Placeholder string
	Secret      bool
	// Optional accepts an empty answer and writes nothing.
	Optional bool
	// UseDefault turns an empty answer into the placeholder.
	UseDefault bool
	When       func(*InstallState) bool
	Validate   func(string) error
}

// InputStep collects a single value into Key.
type InputStep struct {
	spec  InputSpec
	input textinput.Model
	err   error
}

func NewInputStep(spec InputSpec) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = spec.Placeholder
	if spec.Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &InputStep{spec: spec, input: ti}
}

func (s *InputStep) Skip(state *InstallState) bool {
	return s.spec.When != nil && !s.spec.When(state)
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val, err := s.resolve(strings.TrimSpace(s.input.Value()))
		if err != nil {
			s.err = err
			return s, nil
		}
		if val != "" {
			state.EnvVars[s.spec.Key] = val
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) resolve(val string) (string, error) {
	if val == "" {
		switch {
		case s.spec.UseDefault:
			return s.spec.Placeholder, nil
		case s.spec.Optional:
			return "", nil
		default:
			return "", errors.New("a value is required")
		}
	}
	if s.spec.Validate != nil {
		if err := s.spec.Validate(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *InputStep) View(state *InstallState) string {
	hint := "(press enter to confirm)"
	if s.spec.Optional {
		hint = "(optional, press enter to skip)"
	}
	out := fmt.Sprintf("%s:\n\n%s\n\n", s.spec.Title, s.input.View())
	if s.err != nil {
		out += errorStyle.Render(s.err.Error()) + "\n\n"
	}
	return out + hintStyle.Render(hint) + "\n"
}
