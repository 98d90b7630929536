package installer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/annabot/internal/providers/embed"
)

type progressMsg float64
type pullDoneMsg string

type puller func(ctx context.Context, state *InstallState, onProgress func(embed.PullProgress)) error

func pullEmbeddingModel(ctx context.Context, state *InstallState, onProgress func(embed.PullProgress)) error {
	return embed.NewOllama(state.OllamaURL(), state.EnvVars[KeyOllamaKey], state.EmbeddingModel()).Pull(ctx, onProgress)
}

// PullStep downloads the embedding model used by memory search. Skipping it
// turns memory search off.
type PullStep struct {
	progress progress.Model
	pull     puller
	updates  chan tea.Msg
	err      error
	done     bool
}

func NewPullStep() Step {
	return newPullStep(pullEmbeddingModel)
}

func newPullStep(pull puller) *PullStep {
	return &PullStep{
		progress: progress.New(progress.WithDefaultGradient()),
		pull:     pull,
		updates:  make(chan tea.Msg),
	}
}

func (s *PullStep) Init() tea.Cmd {
	return next
}

func (s *PullStep) start(state *InstallState) tea.Cmd {
	model := state.EmbeddingModel()
	go func() {
		err := s.pull(context.Background(), state, func(p embed.PullProgress) {
			if p.Total > 0 {
				s.updates <- progressMsg(float64(p.Completed) / float64(p.Total))
			}
		})
		if err != nil {
			s.updates <- errMsg(err)
			return
		}
		s.updates <- pullDoneMsg(model)
	}()
	return s.waitForActivity()
}

func (s *PullStep) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		return <-s.updates
	}
}

func (s *PullStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if width > 10 {
		s.progress.Width = width - 10
	}

	switch msg := msg.(type) {
	case nextMsg:
		return s, s.start(state)

	case progressMsg:
		return s, tea.Batch(s.waitForActivity(), s.progress.SetPercent(float64(msg)))

	case pullDoneMsg:
		state.EnvVars[KeyEmbeddingModel] = string(msg)
		state.EnvVars[KeyEmbeddingURL] = state.OllamaURL()
		state.EnvVars[KeyMemoryEnabled] = "true"
		s.done = true
		return nil, nil

	case errMsg:
		s.err = msg
		return s, nil

	case progress.FrameMsg:
		progressModel, cmd := s.progress.Update(msg)
		s.progress = progressModel.(progress.Model)
		return s, cmd

	case tea.KeyMsg:
		if s.err == nil {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			s.err = nil
			return s, next
		case "s":
			state.EnvVars[KeyMemoryEnabled] = "false"
			return nil, nil
		}
	}

	return s, nil
}

func (s *PullStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Pull failed: %v", s.err)) + "\n\n" +
			hintStyle.Render("(press enter to retry, s to continue without memory)") + "\n"
	}
	if s.done {
		return fmt.Sprintf("Embedding model %s is ready.\n", state.EmbeddingModel())
	}

	return fmt.Sprintf("Pulling embedding model %s from %s...\n\n", state.EmbeddingModel(), state.OllamaURL()) +
		s.progress.View() + "\n"
}
