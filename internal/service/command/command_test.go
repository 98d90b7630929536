package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/agent"
	"github.com/sandevgo/annabot/internal/service/decision"
	"github.com/sandevgo/annabot/internal/service/state"
	"github.com/sandevgo/annabot/internal/service/tools"
	"github.com/sandevgo/annabot/pkg/clock"
)

type fakeModels struct {
	model string
}

func (f *fakeModels) GetModel() string { return f.model }

func (f *fakeModels) SetModel(_ context.Context, model string) error {
	if model == "broken" {
		return errors.New("no such model")
	}
	f.model = model
	return nil
}

type fixedStatus agent.Status

func (f fixedStatus) Status() agent.Status { return agent.Status(f) }

type fixture struct {
	router   *Router
	controls *state.Controls
	events   []core.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.controls = state.NewControls(state.Options{ChatEngagement: true}, &fakeModels{model: "llama3"})

	clk := clock.NewFake(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	reg, err := tools.NewRegistry(f.controls, tools.Entry{
		Tool:       tools.NewClock(time.Minute, clk),
		Capability: "time of day",
		Default:    true,
	})
	require.NoError(t, err)

	f.router = New(NewCommands(Deps{
		Controls: f.controls,
		Tools:    reg,
		Status: fixedStatus{
			Thoughts:     3,
			Capacity:     20,
			Model:        "llama3",
			LastDecision: decision.Decision{Respond: true, Reason: core.ReasonGreeting},
		},
		Models: func(context.Context) ([]string, error) { return []string{"mistral", "llama3"}, nil },
		Submit: func(ev core.Event) bool {
			f.events = append(f.events, ev)
			return true
		},
	}))
	return f
}

func (f *fixture) run(t *testing.T, input string) string {
	t.Helper()
	out, ok := f.router.Execute(context.Background(), input)
	require.True(t, ok, input)
	return out
}

func TestRouter_PlainTextIsNotACommand(t *testing.T) {
	f := newFixture(t)
	_, ok := f.router.Execute(context.Background(), "hello anna")
	assert.False(t, ok)
}

func TestRouter_UnknownAndHelp(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Unknown command: /dance", f.run(t, "/dance now"))

	help := f.run(t, "/help")
	for _, name := range []string{"/controls", "/model", "/status", "/tools", "/help"} {
		assert.Contains(t, help, name)
	}

	names := make([]string, 0)
	for _, cmd := range f.router.ListCommands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"controls", "model", "status", "tools"}, names)
}

func TestRouter_StripsBotSuffix(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "/status@anna_bot"), "3/20")
}

func TestModelCommand(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "/model"), "llama3")
	assert.Contains(t, f.run(t, "/model list"), "`llama3` (current)")
	assert.Contains(t, f.run(t, "/model mistral"), "mistral")
	assert.Equal(t, "mistral", f.controls.Model())

	out := f.run(t, "/model broken")
	assert.Contains(t, out, "failed to set model")
	assert.Equal(t, "mistral", f.controls.Model())
}

func TestControlsCommand(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, "/controls")
	assert.Contains(t, out, "chat_engagement")
	assert.Contains(t, out, "min_response_interval")

	f.run(t, "/controls set chat_engagement off")
	assert.False(t, f.controls.ChatEngagement())

	f.run(t, "/controls set min_response_interval 20s")
	assert.Equal(t, 20*time.Second, f.controls.MinResponseInterval())

	assert.Contains(t, f.run(t, "/controls set volume 11"), "unknown control")
	assert.Contains(t, f.run(t, "/controls set"), "Usage")
}

func TestToolsCommand(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "/tools"), "**clock** (on) time of day")

	out := f.run(t, "/tools run clock date")
	assert.Equal(t, "Saturday, March 14, 2026", out)
	require.Len(t, f.events, 1)
	assert.Equal(t, core.SourceToolResult, f.events[0].Source)
	assert.Equal(t, out, f.events[0].Data)

	f.run(t, "/tools disable clock")
	assert.Contains(t, f.run(t, "/tools"), "**clock** (off)")
	assert.Contains(t, f.run(t, "/tools run clock"), "disabled")
	assert.Len(t, f.events, 1)

	assert.Contains(t, f.run(t, "/tools enable radio"), "unknown tool")
	assert.Contains(t, f.run(t, "/tools run"), "Usage")
}

func TestStatusCommand(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "/status")
	assert.Contains(t, out, "greeting")
	assert.Contains(t, out, "never")
}
