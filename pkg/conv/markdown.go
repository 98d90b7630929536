// Package conv renders agent text for chat platforms that accept a small HTML subset.
package conv

import (
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// TelegramMaxLen stays under the 4096 byte message cap.
const TelegramMaxLen = 4000

var telegramPolicy = newTelegramPolicy()

// https://core.telegram.org/bots/api#html-style
func newTelegramPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").OnElements("code")
	return p
}

// TelegramHTML renders md and drops every tag Telegram would reject.
func TelegramHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := telegramPolicy.SanitizeBytes(markdown.Render(p.Parse([]byte(md)), r))
	return strings.TrimSpace(string(out))
}

// TelegramMessages renders md and cuts it into sendable messages.
func TelegramMessages(md string) []string {
	out := TelegramHTML(md)
	if out == "" {
		return nil
	}
	return Split(out, TelegramMaxLen)
}

// Split cuts text into parts of at most max bytes. A newline past the first
// third of a part is preferred as the cut; runes are never split.
func Split(text string, max int) []string {
	if max <= 0 || len(text) <= max {
		return []string{text}
	}

	var parts []string
	for len(text) > max {
		cut := max
		if idx := strings.LastIndex(text[:max], "\n"); idx > max/3 {
			cut = idx
		}
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = max
		}
		parts = append(parts, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
