package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/annabot/internal/core"
)

func newTestRepo(t *testing.T) *MemoryRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "anna.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMemoryRepo(db)
}

func TestMemoryRepo_EmbeddingLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	at := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	id1, err := repo.Add(ctx, core.MemoryRecord{SessionID: "s1", Role: core.RoleUser, Content: "I like racing games", CreatedAt: at})
	require.NoError(t, err)
	id2, err := repo.Add(ctx, core.MemoryRecord{SessionID: "s1", Role: core.RoleAssistant, Content: "Ooh, me too"})
	require.NoError(t, err)

	pending, err := repo.Unembedded(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, id1, pending[0].ID)
	assert.Equal(t, "I like racing games", pending[0].Content)
	assert.True(t, at.Equal(pending[0].CreatedAt))
	assert.Nil(t, pending[0].Embedding)

	require.NoError(t, repo.SetEmbedding(ctx, id1, []float32{0.5, -1, 2}))
	require.NoError(t, repo.SetEmbedding(ctx, id2, []float32{1, 0, 0}))

	pending, err = repo.Unembedded(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	embedded, err := repo.Embedded(ctx, 10)
	require.NoError(t, err)
	require.Len(t, embedded, 2)
	assert.Equal(t, id2, embedded[0].ID, "newest first")
	assert.Equal(t, []float32{0.5, -1, 2}, embedded[1].Embedding)

	total, withVec, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, withVec)
}

func TestMemoryRepo_AddWithEmbedding(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Add(ctx, core.MemoryRecord{SessionID: "s", Role: core.RoleUser, Content: "x", Embedding: []float32{1, 2}})
	require.NoError(t, err)

	embedded, err := repo.Embedded(ctx, 1)
	require.NoError(t, err)
	require.Len(t, embedded, 1)
	assert.Equal(t, []float32{1, 2}, embedded[0].Embedding)
}

func TestVectorCodec(t *testing.T) {
	blob, err := serializeVector([]float32{1.5, -2.25})
	require.NoError(t, err)
	assert.Len(t, blob, 8)

	vec, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.25}, vec)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
