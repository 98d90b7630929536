package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/srv"
)

const DefaultQueueSize = 256

type killSwitch interface {
	IsKillPhrase(text string) bool
}

type chatLine struct {
	platform string
	username string
	message  string
	mention  bool
}

type item struct {
	event *core.Event
	chat  *chatLine
}

var _ srv.Service = (*Loop)(nil)

// Loop is the single consumer of the session. Producers hand events over
// through Submit and SubmitChat from any goroutine.
type Loop struct {
	session  *Session
	kill     killSwitch
	interval time.Duration
	stop     func()
	queue    chan item

	mu       sync.RWMutex
	speakers []core.Speaker
}

// NewLoop creates a loop that ticks every interval. stop is called when the
// user speaks the kill phrase.
func NewLoop(session *Session, kill killSwitch, interval time.Duration, stop func(), speakers ...core.Speaker) (*Loop, error) {
	if session == nil {
		return nil, errors.New("agent loop needs a session")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	if stop == nil {
		stop = func() {}
	}
	return &Loop{
		session:  session,
		kill:     kill,
		interval: interval,
		stop:     stop,
		queue:    make(chan item, DefaultQueueSize),
		speakers: speakers,
	}, nil
}

// SetQueueSize replaces the event queue. Call it before Start.
func (l *Loop) SetQueueSize(n int) {
	if n > 0 {
		l.queue = make(chan item, n)
	}
}

// AddSpeaker registers another output channel.
func (l *Loop) AddSpeaker(sp core.Speaker) {
	l.mu.Lock()
	l.speakers = append(l.speakers, sp)
	l.mu.Unlock()
}

// Submit queues ev. A direct mention also preempts a generation in flight.
// It returns false when the queue is full.
func (l *Loop) Submit(ev core.Event) bool {
	if ev.Source == core.SourceDirectMention {
		l.session.Preempt()
	}
	select {
	case l.queue <- item{event: &ev}:
		return true
	default:
		return false
	}
}

// Emit adapts Submit to the tool loop callback.
func (l *Loop) Emit(ev core.Event) {
	l.Submit(ev)
}

func (l *Loop) SubmitChat(platform, username, message string, mention bool) bool {
	select {
	case l.queue <- item{chat: &chatLine{platform, username, message, mention}}:
		return true
	default:
		return false
	}
}

// Start blocks, draining the queue and ticking until ctx ends or the kill
// phrase arrives.
func (l *Loop) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "agent")
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", l.interval).Msg("cognitive loop started")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("cognitive loop stopped")
			return nil
		case it := <-l.queue:
			if l.handle(ctx, it) {
				return nil
			}
			if l.drain(ctx) {
				return nil
			}
			l.tick(ctx)
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) Shutdown(ctx context.Context) error {
	return nil
}

// drain handles everything already queued so one tick sees the whole batch.
func (l *Loop) drain(ctx context.Context) bool {
	for {
		select {
		case it := <-l.queue:
			if l.handle(ctx, it) {
				return true
			}
		default:
			return false
		}
	}
}

// handle ingests one item and reports whether the loop must stop.
func (l *Loop) handle(ctx context.Context, it item) bool {
	switch {
	case it.event != nil:
		ev := *it.event
		if ev.Source.IsUserOrigin() && l.kill != nil && l.kill.IsKillPhrase(ev.Data) {
			log.FromCtx(ctx).Warn().Msg("kill phrase received, shutting down")
			l.stop()
			return true
		}
		l.session.IngestEvent(ctx, ev)
	case it.chat != nil:
		c := it.chat
		l.session.IngestChatMessage(ctx, c.platform, c.username, c.message, c.mention)
	}
	return false
}

func (l *Loop) tick(ctx context.Context) {
	resp, ok := l.session.Tick(ctx)
	if !ok {
		return
	}

	l.mu.RLock()
	speakers := append([]core.Speaker(nil), l.speakers...)
	l.mu.RUnlock()

	for _, sp := range speakers {
		if err := sp.Speak(ctx, resp); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msgf("%T failed to speak", sp)
		}
	}
}
