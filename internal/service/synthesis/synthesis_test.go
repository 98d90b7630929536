package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/thought"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		reason  core.Reason
		tier    core.Tier
		window  int
		lengths string
	}{
		{core.ReasonDirectMention, core.TierDirect, 3, "1-2"},
		{core.ReasonDirectQuestion, core.TierDirect, 3, "1-2"},
		{core.ReasonGreeting, core.TierDirect, 3, "1-2"},
		{core.ReasonCommand, core.TierDirect, 3, "1-2"},
		{core.ReasonThoughtBufferFull, core.TierThoughtful, 7, "2-4"},
		{core.ReasonConversationFlow, core.TierThoughtful, 7, "2-4"},
		{core.ReasonAccumulatedContext, core.TierThoughtful, 7, "2-4"},
		{core.ReasonUserWaiting, core.TierStandard, 5, "2-3"},
		{core.ReasonChatMention, core.TierStandard, 5, "2-3"},
		{core.Reason("something_new"), core.TierStandard, 5, "2-3"},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			tier := TierFor(tt.reason)
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.window, WindowSize(tier))
			assert.Equal(t, tt.lengths, SentenceRange(tier))
		})
	}
}

func TestInstruction(t *testing.T) {
	assert.Equal(t, "Greet them warmly.", Instruction(core.ReasonGreeting))
	assert.Equal(t, defaultInstruction, Instruction(core.ReasonAccumulating))
}

func TestWindow(t *testing.T) {
	buf, err := thought.NewBuffer(20, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		buf.Add(strings.Repeat("x", i+1), core.SourceObservation, "")
	}
	snap := buf.Snapshot()

	assert.Len(t, Window(snap, core.ReasonDirectMention), 3)
	assert.Len(t, Window(snap, core.ReasonUserWaiting), 5)
	assert.Len(t, Window(snap, core.ReasonAccumulatedContext), 7)
	assert.Equal(t, "xxxxxxxxxx", Window(snap, core.ReasonGreeting)[2].Content)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello Sir.", "Hello Sir."},
		{"think block", "<think>plan the reply</think>Hi there!", "Hi there!"},
		{"multiline think", "<THINK>\nstep 1\nstep 2\n</THINK>\nSure thing.", "Sure thing."},
		{"unterminated think", "Okay.<think>still going", "Okay."},
		{"emoji", "That was great 😀 wow", "That was great wow"},
		{"html tags", "I <b>love</b> this &amp; that", "I love this & that"},
		{"agent label", "Anna: I'm here", "I'm here"},
		{"quoted reply", "\"Hey Sir\"", "Hey Sir"},
		{"inner quotes kept", `He said "hi"`, `He said "hi"`},
		{"only thinking", "<think>nothing to say</think>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in, "Anna"))
		})
	}
}

func TestIsDegenerate(t *testing.T) {
	for _, s := range []string{"", ".", "...", "***", "  ...  "} {
		assert.True(t, IsDegenerate(s), "%q", s)
	}
	for _, s := range []string{"ok", "..!", "Hi."} {
		assert.False(t, IsDegenerate(s), "%q", s)
	}
}

func TestEcho(t *testing.T) {
	assert.Equal(t, `I just said: "Hello Sir"`, Echo("Hello Sir"))

	exact := strings.Repeat("a", 150)
	assert.Equal(t, `I just said: "`+exact+`"`, Echo(exact))

	long := strings.Repeat("é", 200)
	got := Echo(long)
	inner := strings.TrimSuffix(strings.TrimPrefix(got, `I just said: "`), `"`)
	assert.Equal(t, 150, utf8.RuneCountInString(inner))
	assert.True(t, strings.HasSuffix(inner, "..."))
	assert.True(t, utf8.ValidString(got))
}

func testPersonality() core.Personality {
	return core.Personality{AgentName: "Anna", UserName: "Sir", Prompt: "## Core Identity\nYou are Anna."}
}

func TestPromptBuilder_Layout(t *testing.T) {
	ts := time.Date(2025, 3, 1, 14, 30, 5, 0, time.UTC)
	in := PromptInput{
		Personality: testPersonality(),
		Reason:      core.ReasonDirectQuestion,
		Thoughts: []core.Thought{
			{Content: "Sir said: what level is this?", Source: core.SourceUserInput, Timestamp: ts},
			{Content: `{"tool": "search"}`, Source: core.SourceToolResult, Timestamp: ts},
			{Content: "<think>hidden</think>", Source: core.SourceInternal, Timestamp: ts},
		},
		Memories: []core.MemorySnippet{
			{Text: "Sir likes racing games", Similarity: 0.8, Date: ts},
			{Text: "undated", Similarity: 0.5},
		},
		ChatSummary: "[twitch] bob: hi anna [MENTIONED YOU]",
	}

	prompt := NewPromptBuilder(EstimateTokens, 0, 700).Build(in)

	assert.True(t, strings.HasPrefix(prompt, "## Core Identity\nYou are Anna.\n\n## Your Stream of Consciousness\n"))
	assert.Contains(t, prompt, "- [14:30:05] Sir said: what level is this?\n")
	assert.NotContains(t, prompt, `"tool"`)
	assert.NotContains(t, prompt, "hidden")
	assert.Contains(t, prompt, "- (2025-03-01) Sir likes racing games\n- undated\n")
	assert.Contains(t, prompt, "## Live Chat\n[twitch] bob: hi anna [MENTIONED YOU]\n")
	assert.Contains(t, prompt, "## Situation\nAnswer the question clearly using ONLY what you actually observe.")
	assert.Contains(t, prompt, "Reply in 1-2 sentences, under 700 characters.")
	assert.Contains(t, prompt, "Speak in first person as Anna.")
	assert.Contains(t, prompt, "Address Sir by name")

	stream := prompt[strings.Index(prompt, "## Your Stream"):strings.Index(prompt, "## Relevant")]
	assert.Less(t, strings.Index(stream, "Stream"), strings.Index(stream, "Sir said"))
}

func TestPromptBuilder_Budget(t *testing.T) {
	var thoughts []core.Thought
	for i := 0; i < 7; i++ {
		thoughts = append(thoughts, core.Thought{Content: "thought " + strings.Repeat("word ", 50) + string(rune('A'+i))})
	}
	in := PromptInput{
		Personality: testPersonality(),
		Reason:      core.ReasonAccumulatedContext,
		Thoughts:    thoughts,
		Memories:    []core.MemorySnippet{{Text: strings.Repeat("memory ", 50)}},
	}

	full := NewPromptBuilder(EstimateTokens, 0, 700).Build(in)
	budget := EstimateTokens(full) / 2
	trimmed := NewPromptBuilder(EstimateTokens, budget, 700).Build(in)

	assert.LessOrEqual(t, EstimateTokens(trimmed), budget)
	assert.NotContains(t, trimmed, "## Relevant Memories", "memories go first")
	assert.Contains(t, trimmed, "G\n", "newest thought kept")
	assert.NotContains(t, trimmed, "A\n", "oldest thought dropped")

	tiny := NewPromptBuilder(EstimateTokens, 1, 700).Build(in)
	assert.Contains(t, tiny, "G\n", "never drops the newest thought")
}

type fakeLLM struct {
	reply string
	err   error
	block bool
	got   core.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	f.got = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func input() PromptInput {
	return PromptInput{
		Personality: testPersonality(),
		Reason:      core.ReasonGreeting,
		Thoughts:    []core.Thought{{Content: "Sir said: hey", Source: core.SourceUserInput}},
	}
}

func TestSynthesizer_Generate(t *testing.T) {
	llm := &fakeLLM{reply: "<think>be nice</think>Hey Sir! 👋 Good to see you."}
	s := New(llm, NewPromptBuilder(EstimateTokens, 0, 700), time.Second, func() string { return "llama3.1" }).
		WithSystemPrompt("be brief")

	text, ok := s.Generate(context.Background(), input())

	require.True(t, ok)
	assert.Equal(t, "Hey Sir! Good to see you.", text)
	assert.Equal(t, "llama3.1", llm.got.Model)
	assert.Equal(t, "be brief", llm.got.System)
	assert.Contains(t, llm.got.Prompt, "Greet them warmly.")
}

func TestSynthesizer_FailuresYieldNothing(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"error", &fakeLLM{err: errors.New("connection refused")}},
		{"empty", &fakeLLM{reply: ""}},
		{"dot", &fakeLLM{reply: "."}},
		{"ellipsis", &fakeLLM{reply: "..."}},
		{"stars", &fakeLLM{reply: "***"}},
		{"only thinking", &fakeLLM{reply: "<think>hmm</think>"}},
		{"timeout", &fakeLLM{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.llm, NewPromptBuilder(EstimateTokens, 0, 700), 20*time.Millisecond, nil)
			text, ok := s.Generate(context.Background(), input())
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

type panicLLM struct{}

func (panicLLM) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	panic("driver bug")
}

func TestSynthesizer_RecoversFromPanic(t *testing.T) {
	s := New(panicLLM{}, NewPromptBuilder(nil, 0, 700), time.Second, nil)
	text, ok := s.Generate(context.Background(), input())
	assert.False(t, ok)
	assert.Empty(t, text)
}
