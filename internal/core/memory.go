package core

import (
	"context"
	"time"
)

// MemorySnippet is one ranked hit from memory search.
type MemorySnippet struct {
	Text       string
	Similarity float32
	Date       time.Time
}

// MemoryRecord is a stored memory with its embedding.
type MemoryRecord struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MemoryRepository stores memories and their embeddings.
type MemoryRepository interface {
	Add(ctx context.Context, rec MemoryRecord) (int64, error)
	Unembedded(ctx context.Context, limit int) ([]MemoryRecord, error)
	SetEmbedding(ctx context.Context, id int64, vec []float32) error
	// Embedded returns up to limit embedded memories, newest first.
	Embedded(ctx context.Context, limit int) ([]MemoryRecord, error)
}
