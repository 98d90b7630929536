// Package memory records conversation lines and searches them by meaning.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sandevgo/annabot/internal/core"
)

const (
	DefaultMinSimilarity = 0.3
	DefaultScanLimit     = 2000
)

var _ core.MemorySearcher = (*Searcher)(nil)

// Searcher ranks stored memories by cosine similarity to the query.
type Searcher struct {
	repo          core.MemoryRepository
	embedder      core.Embedder
	minSimilarity float32
	scanLimit     int
}

func NewSearcher(repo core.MemoryRepository, embedder core.Embedder, minSimilarity float32, scanLimit int) *Searcher {
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	return &Searcher{
		repo:          repo,
		embedder:      embedder,
		minSimilarity: minSimilarity,
		scanLimit:     scanLimit,
	}
}

func (s *Searcher) Search(ctx context.Context, query string, k int) ([]core.MemorySnippet, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return nil, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	recs, err := s.repo.Embedded(ctx, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	hits := make([]core.MemorySnippet, 0, k)
	for _, rec := range recs {
		sim := Cosine(qvec, rec.Embedding)
		if sim < s.minSimilarity {
			continue
		}
		hits = append(hits, core.MemorySnippet{
			Text:       rec.Content,
			Similarity: sim,
			Date:       rec.CreatedAt,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when they cannot be compared.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
