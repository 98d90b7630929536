package memory

import (
	"context"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
)

const (
	EmbedderBatchSize    = 30
	EmbedderPollInterval = 5 * time.Second
)

// EmbedderWorker backfills embeddings for stored memories.
type EmbedderWorker struct {
	repo      core.MemoryRepository
	embedder  core.Embedder
	interval  time.Duration
	batchSize int
}

func NewEmbedderWorker(repo core.MemoryRepository, embedder core.Embedder, interval time.Duration) *EmbedderWorker {
	if interval <= 0 {
		interval = EmbedderPollInterval
	}
	return &EmbedderWorker{
		repo:      repo,
		embedder:  embedder,
		interval:  interval,
		batchSize: EmbedderBatchSize,
	}
}

func (w *EmbedderWorker) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "embedder_worker").Logger()
	logger.Info().Msg("starting embedding worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down embedding worker")
			return nil
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				logger.Error().Err(err).Msg("embedding batch failed")
			}
		}
	}
}

func (w *EmbedderWorker) Shutdown(ctx context.Context) error {
	return nil
}

// ProcessBatch embeds one batch of pending memories and returns how many were stored.
func (w *EmbedderWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := log.FromCtx(ctx)

	recs, err := w.repo.Unembedded(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, rec := range recs {
		vec, err := w.embedder.Embed(ctx, rec.Content)
		if err != nil {
			logger.Warn().
				Err(err).
				Int64("memory_id", rec.ID).
				Msg("failed to embed memory")
			continue
		}

		if len(vec) == 0 {
			logger.Warn().Int64("memory_id", rec.ID).Msg("no embedding generated for memory")
			continue
		}

		if err := w.repo.SetEmbedding(ctx, rec.ID, vec); err != nil {
			logger.Error().
				Err(err).
				Int64("memory_id", rec.ID).
				Msg("failed to save embedding")
			continue
		}
		done++
	}

	return done, nil
}
