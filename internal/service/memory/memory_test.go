package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/annabot/internal/core"
)

type memRepo struct {
	mu   sync.Mutex
	recs []core.MemoryRecord
}

func (m *memRepo) Add(_ context.Context, rec core.MemoryRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.recs) + 1)
	m.recs = append(m.recs, rec)
	return rec.ID, nil
}

func (m *memRepo) Unembedded(_ context.Context, limit int) ([]core.MemoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.MemoryRecord
	for _, r := range m.recs {
		if r.Embedding == nil && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) SetEmbedding(_ context.Context, id int64, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[id-1].Embedding = vec
	return nil
}

func (m *memRepo) Embedded(_ context.Context, limit int) ([]core.MemoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.MemoryRecord
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.recs[i].Embedding != nil {
			out = append(out, m.recs[i])
		}
	}
	return out, nil
}

func (m *memRepo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

// keywordEmbedder maps text onto three axes: games, food, weather.
type keywordEmbedder struct {
	err error
}

func (k keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	vec := []float32{0, 0, 0}
	for word, axis := range map[string]int{"game": 0, "racing": 0, "pizza": 1, "food": 1, "rain": 2} {
		if contains(text, word) {
			vec[axis]++
		}
	}
	return vec, nil
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, float32(0), Cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestSearcher_RanksAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	day := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"racing game night", "pizza food", "game and pizza", "rain all day"} {
		_, _ = repo.Add(ctx, core.MemoryRecord{Content: text, CreatedAt: day})
	}

	w := NewEmbedderWorker(repo, keywordEmbedder{}, time.Minute)
	n, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	s := NewSearcher(repo, keywordEmbedder{}, DefaultMinSimilarity, 0)
	hits, err := s.Search(ctx, "that racing game", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "racing game night", hits[0].Text)
	assert.Equal(t, "game and pizza", hits[1].Text)
	assert.Equal(t, day, hits[0].Date)

	hits, err = s.Search(ctx, "that racing game", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearcher_EmptyQuery(t *testing.T) {
	s := NewSearcher(&memRepo{}, keywordEmbedder{}, DefaultMinSimilarity, 0)
	hits, err := s.Search(context.Background(), "  ", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearcher_EmbedFailure(t *testing.T) {
	s := NewSearcher(&memRepo{}, keywordEmbedder{err: errors.New("ollama down")}, DefaultMinSimilarity, 0)
	_, err := s.Search(context.Background(), "pizza", 3)
	assert.Error(t, err)
}

func TestRecorder_WritesAndFlushes(t *testing.T) {
	repo := &memRepo{}
	r := NewRecorder(repo, "session-1")

	r.Remember(context.Background(), core.RoleUser, "  ")
	r.Remember(context.Background(), core.RoleUser, "hello Anna")
	r.Remember(context.Background(), core.RoleAssistant, "hey Sir")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return repo.len() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, "session-1", repo.recs[0].SessionID)
	assert.Equal(t, core.RoleAssistant, repo.recs[1].Role)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	repo := &memRepo{}
	r := NewRecorder(repo, "s")
	for i := 0; i < recorderQueueSize+10; i++ {
		r.Remember(context.Background(), core.RoleUser, "line")
	}
	assert.Len(t, r.queue, recorderQueueSize)
}
