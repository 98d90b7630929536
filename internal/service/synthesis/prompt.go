package synthesis

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/annabot/internal/core"
)

// PromptInput is everything one response prompt is assembled from.
type PromptInput struct {
	Personality core.Personality
	Reason      core.Reason
	Thoughts    []core.Thought
	Memories    []core.MemorySnippet
	ChatSummary string
}

type PromptBuilder struct {
	count     TokenCounter
	maxTokens int
	maxChars  int
}

// NewPromptBuilder limits prompts to maxTokens as measured by count.
// maxChars is the reply length stated in the constraints.
func NewPromptBuilder(count TokenCounter, maxTokens, maxChars int) *PromptBuilder {
	if count == nil {
		count = EstimateTokens
	}
	return &PromptBuilder{count: count, maxTokens: maxTokens, maxChars: maxChars}
}

// Build renders the prompt, dropping the oldest thoughts and then the weakest
// memories until it fits the token budget. The newest thought is always kept.
func (p *PromptBuilder) Build(in PromptInput) string {
	thoughts := visibleThoughts(in.Thoughts)
	memories := in.Memories

	prompt := p.render(in, thoughts, memories)
	for p.maxTokens > 0 && p.count(prompt) > p.maxTokens {
		switch {
		case len(memories) > 0:
			memories = memories[:len(memories)-1]
		case len(thoughts) > 1:
			thoughts = thoughts[1:]
		default:
			return prompt
		}
		prompt = p.render(in, thoughts, memories)
	}
	return prompt
}

func (p *PromptBuilder) render(in PromptInput, thoughts []core.Thought, memories []core.MemorySnippet) string {
	tier := TierFor(in.Reason)
	agent := nameOr(in.Personality.AgentName, "the assistant")
	user := nameOr(in.Personality.UserName, "the user")

	var sb strings.Builder
	if s := strings.TrimSpace(in.Personality.Prompt); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Your Stream of Consciousness\n")
	if len(thoughts) == 0 {
		sb.WriteString("(nothing in particular)\n")
	}
	for _, t := range thoughts {
		fmt.Fprintf(&sb, "- [%s] %s\n", t.Timestamp.Format(time.TimeOnly), t.Content)
	}

	if len(memories) > 0 {
		sb.WriteString("\n## Relevant Memories\n")
		for _, m := range memories {
			if m.Date.IsZero() {
				fmt.Fprintf(&sb, "- %s\n", m.Text)
				continue
			}
			fmt.Fprintf(&sb, "- (%s) %s\n", m.Date.Format(time.DateOnly), m.Text)
		}
	}

	if in.ChatSummary != "" {
		sb.WriteString("\n## Live Chat\n")
		sb.WriteString(in.ChatSummary)
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Situation\n")
	sb.WriteString(Instruction(in.Reason))
	sb.WriteString("\n\n## Constraints\n")
	fmt.Fprintf(&sb, "- Reply in %s sentences, under %d characters.\n", SentenceRange(tier), p.maxChars)
	fmt.Fprintf(&sb, "- Speak in first person as %s.\n", agent)
	fmt.Fprintf(&sb, "- Address %s by name when replying to them.\n", user)
	sb.WriteString("- Do not prefix the reply with labels, names or headings.\n")
	sb.WriteString("- Only reference things that actually appear above.\n")
	return sb.String()
}

// visibleThoughts drops markup or JSON fragments that slipped into the buffer.
func visibleThoughts(in []core.Thought) []core.Thought {
	out := make([]core.Thought, 0, len(in))
	for _, t := range in {
		c := strings.TrimSpace(t.Content)
		if c == "" || strings.HasPrefix(c, "<") || strings.HasPrefix(c, "{") {
			continue
		}
		out = append(out, t)
	}
	return out
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
