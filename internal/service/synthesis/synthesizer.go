// Package synthesis turns a decision to speak into cleaned response text.
package synthesis

import (
	"context"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/thought"
	"github.com/sandevgo/annabot/pkg/log"
)

type Synthesizer struct {
	llm     core.Completer
	prompts *PromptBuilder
	timeout time.Duration
	model   func() string
	system  string
}

// New creates a Synthesizer. model is read on every call so runtime model
// switches take effect on the next response.
func New(llm core.Completer, prompts *PromptBuilder, timeout time.Duration, model func() string) *Synthesizer {
	if model == nil {
		model = func() string { return "" }
	}
	return &Synthesizer{
		llm:     llm,
		prompts: prompts,
		timeout: timeout,
		model:   model,
	}
}

// WithSystemPrompt sets the system prompt sent with every completion.
func (s *Synthesizer) WithSystemPrompt(system string) *Synthesizer {
	s.system = system
	return s
}

// Window selects the thoughts that feed the prompt for reason r.
func Window(snap thought.Snapshot, r core.Reason) []core.Thought {
	return snap.Last(WindowSize(TierFor(r)))
}

// Generate builds the prompt, calls the model and cleans the reply.
// ok is false when the call failed, timed out or returned nothing speakable;
// errors never leave this method.
func (s *Synthesizer) Generate(ctx context.Context, in PromptInput) (text string, ok bool) {
	logger := log.FromCtx(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("llm completion panicked")
			text, ok = "", false
		}
	}()

	prompt := s.prompts.Build(in)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.llm.Complete(callCtx, core.CompletionRequest{
		Prompt:  prompt,
		System:  s.system,
		Model:   s.model(),
		Timeout: s.timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Str("reason", string(in.Reason)).Dur("took", time.Since(start)).Msg("llm completion failed")
		return "", false
	}

	text = Clean(raw, in.Personality.AgentName)
	if IsDegenerate(text) {
		logger.Debug().Str("raw", raw).Msg("discarding degenerate model output")
		return "", false
	}
	return text, true
}
