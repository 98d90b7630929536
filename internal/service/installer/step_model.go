package installer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/annabot/internal/providers/llm"
)

type modelLister func(ctx context.Context, state *InstallState) ([]llm.Model, error)

func listProviderModels(ctx context.Context, state *InstallState) ([]llm.Model, error) {
	p, err := llm.NewProvider(ctx, state.LLMConfig())
	if err != nil {
		return nil, err
	}
	return p.Models(ctx)
}

// ModelStep lets the user pick one of the models the chosen provider serves.
type ModelStep struct {
	list     list.Model
	fetch    modelLister
	loading  bool
	fetching bool // the request is sent once per attempt
	err      error
}

func NewModelStep() Step {
	return newModelStep(listProviderModels)
}

func newModelStep(fetch modelLister) *ModelStep {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select AI Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		fetch:   fetch,
		loading: true,
	}
}

func (s *ModelStep) Init() tea.Cmd {
	return next
}

func (s *ModelStep) load(state *InstallState) tea.Cmd {
	s.fetching = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		models, err := s.fetch(ctx, state)
		if err != nil {
			return errMsg(err)
		}
		if len(models) == 0 {
			return errMsg(errors.New("provider returned no models"))
		}

		items := make([]list.Item, 0, len(models))
		for _, mod := range models {
			title := mod.Name
			if title == "" {
				title = mod.ID
			}
			items = append(items, item{id: mod.ID, title: title, desc: "ID: " + mod.ID})
		}
		return modelsMsg(items)
	}
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.loading && !s.fetching {
		return s, s.load(state)
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			switch msg.String() {
			case "enter":
				s.err = nil
				s.loading = true
				return s, next
			case "s":
				// keep the configured default model
				return nil, nil
			}
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.EnvVars[KeyModel] = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			"\n\nCheck your API key and connection.\n\n" +
			hintStyle.Render("(press enter to retry, s to keep the default model)") + "\n"
	}
	if s.loading {
		return fmt.Sprintf("Fetching models from %s...\n", state.Provider())
	}
	return s.list.View()
}
