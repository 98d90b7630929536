package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	id    string
	title string
}

// SelectStep picks one of a fixed set of choices.
type SelectStep struct {
	title   string
	choices []choice
	cursor  int
	apply   func(state *InstallState, id string)
}

func NewProviderStep() Step {
	return &SelectStep{
		title: "Select your AI Provider",
		choices: []choice{
			{"ollama", "Ollama (local)"},
			{"openai", "OpenAI"},
			{"anthropic", "Anthropic"},
			{"openrouter", "OpenRouter"},
			{"custom", "Custom OpenAI-compatible endpoint"},
		},
		apply: func(state *InstallState, id string) {
			state.EnvVars[KeyProvider] = id
		},
	}
}

func NewChannelStep() Step {
	return &SelectStep{
		title: "Where should the agent talk?",
		choices: []choice{
			{"cli", "Terminal"},
			{"telegram", "Telegram"},
			{"both", "Terminal and Telegram"},
		},
		apply: func(state *InstallState, id string) {
			state.EnvVars[KeyEnableCLI] = fmt.Sprint(id != "telegram")
			state.EnvVars[KeyEnableTelegram] = fmt.Sprint(id != "cli")
		},
	}
}

func (s *SelectStep) Init() tea.Cmd {
	return nil
}

func (s *SelectStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor].id)
			return nil, nil
		}
	}
	return s, nil
}

func (s *SelectStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + ":\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render("❯ "+c.title) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+c.title) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("(press ctrl+c to quit)") + "\n")
	return b.String()
}
