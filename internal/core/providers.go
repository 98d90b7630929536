package core

import (
	"context"
	"time"
)

type CompletionRequest struct {
	Prompt  string
	System  string
	Model   string
	Timeout time.Duration
}

// Completer is the LLM text completion collaborator.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MemorySearcher returns up to k snippets ranked by similarity to query.
type MemorySearcher interface {
	Search(ctx context.Context, query string, k int) ([]MemorySnippet, error)
}

// MemoryRecorder persists conversation lines for later search. Remember must not block.
type MemoryRecorder interface {
	Remember(ctx context.Context, role, text string)
}

type Personality struct {
	AgentName string
	UserName  string
	Prompt    string
}

type PersonalityProvider interface {
	Personality() Personality
}

type FilterResult struct {
	Text     string
	Filtered bool
	Reason   string
}

type ContentFilter interface {
	Filter(text string) FilterResult
}

// Speaker delivers a spoken response to one output channel.
type Speaker interface {
	Speak(ctx context.Context, resp SpokenResponse) error
}
