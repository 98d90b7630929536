package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/annabot/pkg/log"
)

type MemoryConfig struct {
	Enabled        bool          `env:"ANNA_MEMORY_ENABLED" envDefault:"true"`
	EmbeddingURL   string        `env:"ANNA_EMBEDDING_URL" envDefault:"http://127.0.0.1:11434"`
	EmbeddingModel string        `env:"ANNA_EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	EmbeddingKey   string        `env:"ANNA_EMBEDDING_API_KEY"`
	TopK           int           `env:"ANNA_MEMORY_TOP_K" envDefault:"3"`
	MinSimilarity  float32       `env:"ANNA_MEMORY_MIN_SIMILARITY" envDefault:"0.3"`
	SearchTimeout  time.Duration `env:"ANNA_MEMORY_SEARCH_TIMEOUT" envDefault:"2s"`
	EmbedInterval  time.Duration `env:"ANNA_MEMORY_EMBED_INTERVAL" envDefault:"5s"`
	ScanLimit      int           `env:"ANNA_MEMORY_SCAN_LIMIT" envDefault:"2000"`

	// Task prefixes for asymmetric embedding models; the defaults suit nomic-embed-text.
	QueryPrefix    string `env:"ANNA_EMBEDDING_QUERY_PREFIX" envDefault:"search_query: "`
	DocumentPrefix string `env:"ANNA_EMBEDDING_DOCUMENT_PREFIX" envDefault:"search_document: "`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	return c
}
