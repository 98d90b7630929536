package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
)

var _ core.MemoryRepository = (*MemoryRepo)(nil)

type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

func (r *MemoryRepo) Add(ctx context.Context, rec core.MemoryRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var blob []byte
	if len(rec.Embedding) > 0 {
		var err error
		if blob, err = serializeVector(rec.Embedding); err != nil {
			return 0, err
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO memories (session_id, role, content, embedding, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Role, rec.Content, blob, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert memory: %w", err)
	}
	return res.LastInsertId()
}

func (r *MemoryRepo) Unembedded(ctx context.Context, limit int) ([]core.MemoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, embedding, created_at FROM memories
		 WHERE embedding IS NULL ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unembedded memories: %w", err)
	}
	return scanMemories(rows)
}

func (r *MemoryRepo) SetEmbedding(ctx context.Context, id int64, vec []float32) error {
	blob, err := serializeVector(vec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE memories SET embedding = ? WHERE id = ?`, blob, id); err != nil {
		return fmt.Errorf("failed to update memory embedding: %w", err)
	}
	return nil
}

func (r *MemoryRepo) Embedded(ctx context.Context, limit int) ([]core.MemoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, embedding, created_at FROM memories
		 WHERE embedding IS NOT NULL ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	recs, err := scanMemories(rows)
	if err != nil {
		return nil, err
	}
	log.FromCtx(ctx).Debug().Int("count", len(recs)).Msg("loaded embedded memories")
	return recs, nil
}

// Count returns the total number of memories and how many carry an embedding.
func (r *MemoryRepo) Count(ctx context.Context) (total, embedded int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(embedding) FROM memories`).Scan(&total, &embedded)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return total, embedded, nil
}

func scanMemories(rows *sql.Rows) ([]core.MemoryRecord, error) {
	defer rows.Close()

	var recs []core.MemoryRecord
	for rows.Next() {
		var rec core.MemoryRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Role, &rec.Content, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		if len(blob) > 0 {
			vec, err := deserializeVector(blob)
			if err != nil {
				return nil, err
			}
			rec.Embedding = vec
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
