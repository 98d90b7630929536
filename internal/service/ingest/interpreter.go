// Package ingest turns raw events into thoughts.
package ingest

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inbucket/html2text"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/clock"
)

const maxToolResultRunes = 500

var artifactPrefixes = []string{"<thought about", "<think>", `{"tool":`}

// Interpreter renders events as first-person thought content.
type Interpreter struct {
	userName string
	clock    clock.Clock
}

func NewInterpreter(userName string, clk clock.Clock) *Interpreter {
	if userName == "" {
		userName = "User"
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Interpreter{userName: userName, clock: clk}
}

// Normalize fills defaults for a malformed event.
func (i *Interpreter) Normalize(ev core.Event) core.Event {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = i.clock.Now()
	}
	ev.Data = strings.TrimSpace(ev.Data)
	return ev
}

// Interpret returns the thought for ev. The second value is false when the
// event carries nothing worth keeping.
func (i *Interpreter) Interpret(ev core.Event) (core.Thought, bool) {
	ev = i.Normalize(ev)
	if ev.Data == "" || IsArtifact(ev.Data) {
		return core.Thought{}, false
	}

	content := i.render(ev)
	if strings.TrimSpace(content) == "" {
		return core.Thought{}, false
	}

	return core.Thought{
		Content:      content,
		Source:       ev.Source,
		Timestamp:    ev.Timestamp,
		OriginalText: ev.Data,
	}, true
}

func (i *Interpreter) render(ev core.Event) string {
	switch ev.Source {
	case core.SourceUserInput, core.SourceDirectMention:
		return fmt.Sprintf("%s said: %s", i.userName, ev.Data)
	case core.SourceVisionResult:
		return "I see: " + ev.Data
	case core.SourceObservation:
		return "I notice: " + ev.Data
	case core.SourceTimer:
		return "Time check: " + ev.Data
	case core.SourceToolResult:
		text := toolText(ev.Data)
		if text == "" {
			return ""
		}
		return "Tool result: " + text
	case core.SourceSearch:
		return "I looked it up: " + ev.Data
	case core.SourceMemory:
		return "I remember: " + ev.Data
	}
	return ev.Data
}

// RenderChat formats a chat line for the thought buffer.
func RenderChat(platform, username, message string) string {
	return fmt.Sprintf("[%s] %s: %s", platform, username, strings.TrimSpace(message))
}

// ChatSource picks the thought source for a chat line.
func ChatSource(message string, hasMention bool) core.Source {
	switch {
	case hasMention:
		return core.SourceChatMention
	case strings.Contains(message, "?"):
		return core.SourceChatQuestion
	}
	return core.SourceChatMessage
}

// IsArtifact reports model scaffolding that leaked into an event payload.
func IsArtifact(data string) bool {
	for _, p := range artifactPrefixes {
		if strings.HasPrefix(data, p) {
			return true
		}
	}
	return false
}

func toolText(data string) string {
	if strings.Contains(data, "<") {
		if text, err := html2text.FromString(data, html2text.Options{OmitLinks: true}); err == nil {
			data = text
		}
	}
	data = strings.Join(strings.Fields(data), " ")
	return truncateRunes(data, maxToolResultRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Stamp is a convenience for adapters building events at a known time.
func Stamp(source core.Source, data string, at time.Time) core.Event {
	ev := core.NewEvent(source, data)
	ev.Timestamp = at
	return ev
}
