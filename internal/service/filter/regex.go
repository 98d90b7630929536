// Package filter replaces objectionable phrases in outgoing text.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sandevgo/annabot/internal/core"
)

const Replacement = "[filtered]"

// Category is a named group of patterns.
type Category struct {
	Name     string
	Patterns []string
}

func DefaultCategories() []Category {
	return []Category{
		{
			Name: "profanity",
			Patterns: []string{
				`\bf+u+c+k+\w*`, `\bs+h+i+t+\w*`, `\bb+i+t+c+h+\w*`, `\ba+s+s+h+o+l+e+\w*`,
				`\bd+a+m+n+\w*`, `\bc+r+a+p+\w*`, `\bp+i+s+s+\w*`, `\bc+u+n+t+\w*`,
				`\bd+i+c+k+\w*`, `\bs+l+u+t+\w*`, `\bw+h+o+r+e+\w*`,
			},
		},
		{
			Name:     "hate_speech",
			Patterns: []string{`kill yourself`, `\bkys\b`, `die in a fire`, `\br+e+t+a+r+d+\w*`},
		},
		{
			Name: "controversial",
			Patterns: []string{
				`holocaust.{0,20}(hoax|fake|didn)`,
				`(white|black|racial).{0,30}supremac`,
				`(nazi|hitler).{0,20}(right|good|based)`,
				`(genocide|ethnic cleansing).{0,20}(justified|good)`,
			},
		},
	}
}

type compiled struct {
	name     string
	patterns []*regexp.Regexp
}

var _ core.ContentFilter = (*Regex)(nil)

// Regex is a case-insensitive pattern filter. Safe for concurrent use.
type Regex struct {
	categories []compiled
}

func NewRegex(categories []Category) (*Regex, error) {
	r := &Regex{}
	for _, c := range categories {
		cc := compiled{name: c.Name}
		for _, p := range c.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("compile %s pattern %q: %w", c.Name, p, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		r.categories = append(r.categories, cc)
	}
	return r, nil
}

// Filter replaces every match with Replacement. Reason lists the matched
// categories, comma separated, in declaration order.
func (r *Regex) Filter(text string) core.FilterResult {
	res := core.FilterResult{Text: text}
	var matched []string
	for _, c := range r.categories {
		hit := false
		for _, re := range c.patterns {
			if re.MatchString(res.Text) {
				res.Text = re.ReplaceAllString(res.Text, Replacement)
				hit = true
			}
		}
		if hit {
			matched = append(matched, c.name)
		}
	}
	res.Filtered = len(matched) > 0
	res.Reason = strings.Join(matched, ",")
	return res
}

// Nop passes text through unchanged.
type Nop struct{}

func (Nop) Filter(text string) core.FilterResult {
	return core.FilterResult{Text: text}
}
