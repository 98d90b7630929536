// Package cli is the local terminal adapter: typed lines become user input and
// spoken responses are printed.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/ui"
	"github.com/sandevgo/annabot/pkg/log"
)

var _ core.Speaker = (*ReadLine)(nil)

type eventSink interface {
	Submit(ev core.Event) bool
}

type ReadLine struct {
	sink      eventSink
	router    core.CmdRouter
	persona   core.PersonalityProvider
	rl        *readline.Instance
	onExit    func()

	mu  sync.Mutex
	out io.Writer
}

// NewReadLine reads the agent's name from persona for every line, so a
// reloaded personality takes effect at once.
func NewReadLine(sink eventSink, router core.CmdRouter, persona core.PersonalityProvider, historyPath string) (*ReadLine, error) {
	if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		sink:      sink,
		router:    router,
		persona:   persona,
		rl:        rl,
		onExit:    func() {},
		out:       rl.Stdout(),
	}, nil
}

// OnExit sets what runs when the user leaves with exit, Ctrl+C or Ctrl+D.
func (r *ReadLine) OnExit(fn func()) {
	if fn != nil {
		r.onExit = fn
	}
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit.")

	err := r.loop(ctx)
	if ctx.Err() == nil {
		r.onExit()
	}
	return err
}

func (r *ReadLine) loop(ctx context.Context) error {
	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		r.handleLine(ctx, line)
	}
}

func (r *ReadLine) handleLine(ctx context.Context, line string) {
	if line == "" {
		return
	}

	if out, ok := r.router.Execute(ctx, line); ok {
		r.print(ui.System(out))
		return
	}

	if !r.sink.Submit(Classify(line, r.agentName())) {
		log.FromCtx(ctx).Warn().Msg("agent queue full, dropping input")
	}
}

// Classify turns a typed line into an event. Addressing the agent by name,
// with or without a leading @, makes it a direct mention.
func Classify(line, agentName string) core.Event {
	source := core.SourceUserInput
	name := strings.ToLower(strings.TrimSpace(agentName))
	if name != "" && strings.Contains(strings.ToLower(line), name) {
		source = core.SourceDirectMention
	}
	return core.NewEvent(source, line)
}

func (r *ReadLine) Speak(_ context.Context, resp core.SpokenResponse) error {
	r.print(ui.Speech(r.agentName(), resp.Text))
	return nil
}

func (r *ReadLine) agentName() string {
	if r.persona == nil {
		return ""
	}
	return r.persona.Personality().AgentName
}

func (r *ReadLine) print(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, text)
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
