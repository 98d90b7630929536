package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegex_Filter(t *testing.T) {
	f, err := NewRegex(DefaultCategories())
	require.NoError(t, err)

	tests := []struct {
		name     string
		in       string
		want     string
		filtered bool
		reason   string
	}{
		{"clean text", "what a lovely day", "what a lovely day", false, ""},
		{"profanity", "well SHIT that hurt", "well [filtered] that hurt", true, "profanity"},
		{"stretched profanity", "fuuuck", "[filtered]", true, "profanity"},
		{"threat phrase", "just kys already", "just [filtered] already", true, "hate_speech"},
		{"two categories", "damn, kill yourself", "[filtered], [filtered]", true, "profanity,hate_speech"},
		{"word boundary", "the class passed", "the class passed", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Filter(tt.in)
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, tt.filtered, res.Filtered)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestNewRegex_BadPattern(t *testing.T) {
	_, err := NewRegex([]Category{{Name: "broken", Patterns: []string{"("}}})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	res := Nop{}.Filter("anything goes")
	assert.Equal(t, "anything goes", res.Text)
	assert.False(t, res.Filtered)
}
