package embed

import (
	"context"

	"github.com/sandevgo/annabot/internal/core"
)

// Prefixed adds a task prefix before embedding. Asymmetric models encode
// queries and stored passages with different prefixes.
type Prefixed struct {
	core.Embedder
	Prefix string
}

// NewDualEncoder returns the query and passage encoders for one model.
func NewDualEncoder(e core.Embedder, queryPrefix, passagePrefix string) (query, passage core.Embedder) {
	return Prefixed{Embedder: e, Prefix: queryPrefix}, Prefixed{Embedder: e, Prefix: passagePrefix}
}

func (p Prefixed) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.Embedder.Embed(ctx, p.Prefix+text)
}
