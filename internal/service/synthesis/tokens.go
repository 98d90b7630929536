package synthesis

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures prompt size.
type TokenCounter func(text string) int

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

// TiktokenCounter counts cl100k_base tokens. If the encoding cannot be loaded
// it falls back to a words-based estimate.
func TiktokenCounter() TokenCounter {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	if tkErr != nil {
		return EstimateTokens
	}
	return func(text string) int {
		if text == "" {
			return 0
		}
		return len(tk.Encode(text, nil, nil))
	}
}

// EstimateTokens approximates a token count as 4/3 of the word count.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}
