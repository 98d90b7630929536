package synthesis

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"github.com/microcosm-cc/bluemonday"
)

var (
	thinkBlock    = regexp.MustCompile(`(?is)<think>.*?</think>`)
	openThink     = regexp.MustCompile(`(?is)<think>.*$`)
	spaces        = regexp.MustCompile(`[ \t]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	strictPolicy  = bluemonday.StrictPolicy()
	degenerateOut = map[string]struct{}{"": {}, ".": {}, "...": {}, "***": {}}
)

// StripThinking removes <think> blocks, including one left unterminated.
func StripThinking(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	return openThink.ReplaceAllString(s, "")
}

// StripMarkup drops any HTML-like tags the model emitted and decodes entities.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

func RemoveEmoji(s string) string {
	return gomoji.RemoveEmojis(s)
}

// Clean turns raw model output into speakable text. agentName, when set, is
// stripped as a leading "Name:" label.
func Clean(raw, agentName string) string {
	s := StripThinking(raw)
	s = StripMarkup(s)
	s = RemoveEmoji(s)
	s = strings.TrimSpace(s)
	if agentName != "" {
		label := strings.ToLower(agentName) + ":"
		if strings.HasPrefix(strings.ToLower(s), label) {
			s = strings.TrimSpace(s[len(label):])
		}
	}
	s = spaces.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// IsDegenerate reports empty or placeholder output that must not be spoken.
func IsDegenerate(s string) bool {
	_, ok := degenerateOut[strings.TrimSpace(s)]
	return ok
}

const (
	echoLimit  = 150
	echoPrefix = `I just said: "`
)

// Echo builds the thought recording what the agent just said.
func Echo(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > echoLimit {
		r := []rune(text)
		text = string(r[:echoLimit-3]) + "..."
	}
	return echoPrefix + text + `"`
}
