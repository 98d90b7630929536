package memory

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
)

const recorderQueueSize = 64

type entry struct {
	role string
	text string
	at   time.Time
}

var _ core.MemoryRecorder = (*Recorder)(nil)

// Recorder queues conversation lines and writes them on its own goroutine.
type Recorder struct {
	repo      core.MemoryRepository
	sessionID string
	queue     chan entry
}

func NewRecorder(repo core.MemoryRepository, sessionID string) *Recorder {
	return &Recorder{
		repo:      repo,
		sessionID: sessionID,
		queue:     make(chan entry, recorderQueueSize),
	}
}

// Remember enqueues text. It drops the line when the queue is full.
func (r *Recorder) Remember(ctx context.Context, role, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	select {
	case r.queue <- entry{role: role, text: text, at: time.Now()}:
	default:
		log.FromCtx(ctx).Warn().Str("role", role).Msg("memory queue full, dropping line")
	}
}

// Start writes queued lines until ctx is cancelled, then flushes what is left.
func (r *Recorder) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.flush(context.WithoutCancel(ctx))
			return nil
		case e := <-r.queue:
			r.write(ctx, e)
		}
	}
}

func (r *Recorder) Shutdown(ctx context.Context) error {
	return nil
}

func (r *Recorder) flush(ctx context.Context) {
	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, e entry) {
	_, err := r.repo.Add(ctx, core.MemoryRecord{
		SessionID: r.sessionID,
		Role:      e.role,
		Content:   e.text,
		CreatedAt: e.at,
	})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("role", e.role).Msg("failed to store memory")
	}
}
