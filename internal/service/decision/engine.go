// Package decision decides whether the agent should speak now and why.
package decision

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/chat"
	"github.com/sandevgo/annabot/internal/service/thought"
	"github.com/sandevgo/annabot/pkg/clock"
)

// Decision is the outcome of one evaluation. Urgency is advisory, 0..10.
type Decision struct {
	Respond bool
	Reason  core.Reason
	Urgency int
}

var urgency = map[core.Reason]int{
	core.ReasonDirectMention:      10,
	core.ReasonDirectQuestion:     8,
	core.ReasonCommand:            8,
	core.ReasonUserWaiting:        7,
	core.ReasonGreeting:           5,
	core.ReasonThoughtBufferFull:  5,
	core.ReasonConversationFlow:   4,
	core.ReasonAccumulatedContext: 3,
}

func respond(r core.Reason) Decision {
	return Decision{Respond: true, Reason: r, Urgency: urgency[r]}
}

type Engine struct {
	th        Thresholds
	agentName string
	persona   core.PersonalityProvider
	clock     clock.Clock
}

// NewEngine builds an engine. Command and greeting phrases are matched
// case-insensitively.
func NewEngine(th Thresholds, agentName string, clk clock.Clock) (*Engine, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decision thresholds: %w", err)
	}
	if clk == nil {
		clk = clock.Real()
	}
	th.Commands = normalize(th.Commands)
	th.Greetings = normalize(th.Greetings)
	return &Engine{
		th:        th,
		agentName: strings.ToLower(strings.TrimSpace(agentName)),
		clock:     clk,
	}, nil
}

// WithPersonality makes the engine read the agent's name from p on every
// evaluation. The name given to NewEngine stays the fallback.
func (e *Engine) WithPersonality(p core.PersonalityProvider) *Engine {
	e.persona = p
	return e
}

func (e *Engine) name() string {
	if e.persona != nil {
		if n := strings.ToLower(strings.TrimSpace(e.persona.Personality().AgentName)); n != "" {
			return n
		}
	}
	return e.agentName
}

func normalize(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// ShouldRespond evaluates the primary rule table against the buffer.
func (e *Engine) ShouldRespond(b *thought.Buffer) Decision {
	now := e.clock.Now()
	return e.Evaluate(b.Snapshot(), now)
}

// Evaluate applies the primary rules in order; the first match wins.
func (e *Engine) Evaluate(s thought.Snapshot, now time.Time) Decision {
	if d, done := e.explicit(s, now); done {
		return d
	}
	return e.ambient(s, now)
}

// Decide merges the chat engagement path into the rule table. Chat is consulted
// after explicit user intent and the user-waiting window, and before the idle
// fallbacks.
func (e *Engine) Decide(s thought.Snapshot, c chat.Assessment, now time.Time) Decision {
	if d, done := e.explicit(s, now); done {
		return d
	}
	if c.ShouldEngage {
		return Decision{Respond: true, Reason: c.Reason, Urgency: c.Level}
	}
	return e.ambient(s, now)
}

// explicit covers rules 1-4. done=false means evaluation should continue.
func (e *Engine) explicit(s thought.Snapshot, now time.Time) (Decision, bool) {
	if s.Len() == 0 {
		return Decision{Reason: core.ReasonNone}, true
	}

	if s.Has(core.SourceDirectMention) {
		return respond(core.ReasonDirectMention), true
	}

	sinceResponse := now.Sub(s.LastResponse)

	if latest, ok := s.LatestUserThought(); ok {
		if r := e.classifyUserText(latest.OriginalText, sinceResponse); r != core.ReasonNone {
			return respond(r), true
		}
	}

	if s.HasUserInteraction() && !s.LastUserInteraction.Before(s.LastResponse) {
		wait := now.Sub(s.LastUserInteraction)
		if wait > e.th.UserWaitMin && wait < e.th.UserWaitMax {
			return respond(core.ReasonUserWaiting), true
		}
	}

	return Decision{}, false
}

// ambient covers rules 5-8.
func (e *Engine) ambient(s thought.Snapshot, now time.Time) Decision {
	sinceResponse := now.Sub(s.LastResponse)

	if s.Len() >= e.th.SaturationMinThoughts && sinceResponse > e.th.SaturationIdle {
		nonObservation := s.Count(func(t core.Thought) bool {
			return t.Source != core.SourceObservation
		})
		if nonObservation >= e.th.SaturationMinNonObservation {
			return respond(core.ReasonThoughtBufferFull)
		}
	}

	if sinceResponse > e.th.FlowIdle {
		conversational := s.Count(func(t core.Thought) bool {
			return t.Source.IsConversational()
		})
		if conversational >= e.th.FlowMinConversational {
			return respond(core.ReasonConversationFlow)
		}
	}

	if s.Len() >= e.th.AccumulatedMinThoughts && sinceResponse >= e.th.AccumulatedIdle {
		return respond(core.ReasonAccumulatedContext)
	}

	return Decision{Reason: core.ReasonAccumulating}
}

func (e *Engine) classifyUserText(text string, sinceResponse time.Duration) core.Reason {
	txt := strings.ToLower(text)
	if txt == "" {
		return core.ReasonNone
	}

	if name := e.name(); strings.Contains(txt, "?") || (name != "" && strings.Contains(txt, name)) {
		return core.ReasonDirectQuestion
	}

	for _, cmd := range e.th.Commands {
		if strings.Contains(txt, cmd) {
			return core.ReasonCommand
		}
	}

	if sinceResponse > e.th.GreetingCooldown && e.isGreeting(txt) {
		return core.ReasonGreeting
	}
	return core.ReasonNone
}

func (e *Engine) isGreeting(txt string) bool {
	words := strings.FieldsFunc(txt, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, w := range words {
		for _, g := range e.th.Greetings {
			if w == g {
				return true
			}
		}
	}
	return false
}
