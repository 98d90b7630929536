// Package agent runs the cognitive loop: ingest, decide, speak.
package agent

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/chat"
	"github.com/sandevgo/annabot/internal/service/decision"
	"github.com/sandevgo/annabot/internal/service/ingest"
	"github.com/sandevgo/annabot/internal/service/state"
	"github.com/sandevgo/annabot/internal/service/synthesis"
	"github.com/sandevgo/annabot/internal/service/thought"
	"github.com/sandevgo/annabot/pkg/clock"
	"github.com/sandevgo/annabot/pkg/log"
)

const (
	DefaultMemoryK       = 3
	DefaultMemoryTimeout = 2 * time.Second
	DefaultChatSummary   = 5
)

// Params wires a Session. Memory, Recorder and Filter may be nil.
type Params struct {
	Buffer      *thought.Buffer
	Tracker     *chat.Tracker
	Engine      *decision.Engine
	Synthesizer *synthesis.Synthesizer
	Interpreter *ingest.Interpreter
	Controls    *state.Controls
	Personality core.PersonalityProvider
	Filter      core.ContentFilter
	Memory      core.MemorySearcher
	Recorder    core.MemoryRecorder
	Clock       clock.Clock

	MemoryK       int
	MemoryTimeout time.Duration
	ChatSummary   int
}

// Session owns the thought buffer and chat tracker of one agent. Ingestion
// and Tick are meant to be driven from a single goroutine (see Loop); Preempt
// and Status are safe from anywhere.
type Session struct {
	p       Params
	limiter *rate.Limiter

	mu        sync.Mutex
	interval  time.Duration
	inflight  context.CancelFunc
	last      decision.Decision
	lastSpoke time.Time
}

func NewSession(p Params) (*Session, error) {
	var missing []string
	for name, v := range map[string]any{
		"buffer":      p.Buffer,
		"tracker":     p.Tracker,
		"engine":      p.Engine,
		"synthesizer": p.Synthesizer,
		"interpreter": p.Interpreter,
		"controls":    p.Controls,
		"personality": p.Personality,
	} {
		if isNil(v) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.New("agent session is missing " + strings.Join(missing, ", "))
	}

	if p.Clock == nil {
		p.Clock = clock.Real()
	}
	if p.MemoryK <= 0 {
		p.MemoryK = DefaultMemoryK
	}
	if p.MemoryTimeout <= 0 {
		p.MemoryTimeout = DefaultMemoryTimeout
	}
	if p.ChatSummary <= 0 {
		p.ChatSummary = DefaultChatSummary
	}

	interval := p.Controls.MinResponseInterval()
	return &Session{
		p:        p,
		limiter:  rate.NewLimiter(limitFor(interval), 1),
		interval: interval,
	}, nil
}

// IngestEvent interprets ev and appends the resulting thought. It reports
// whether a thought was added.
func (s *Session) IngestEvent(ctx context.Context, ev core.Event) bool {
	logger := log.FromCtx(ctx)

	if s.p.Controls.LimitProcessing() && ev.Source.Priority() < core.PriorityMedium {
		logger.Debug().Str("source", ev.Source.String()).Msg("dropping low priority event")
		return false
	}

	th, ok := s.p.Interpreter.Interpret(ev)
	if !ok {
		logger.Debug().Str("source", ev.Source.String()).Msg("event produced no thought")
		return false
	}

	if _, ok := s.p.Buffer.Add(th.Content, th.Source, th.OriginalText); !ok {
		return false
	}
	if th.Source.IsUserOrigin() && s.p.Recorder != nil {
		s.p.Recorder.Remember(ctx, core.RoleUser, th.OriginalText)
	}
	logger.Debug().
		Str("source", th.Source.String()).
		Int("len", s.p.Buffer.Len()).
		Msg("thought added")
	return true
}

// IngestChatMessage tracks a chat line and mirrors it into the thought buffer.
// A message naming the agent counts as a mention.
func (s *Session) IngestChatMessage(ctx context.Context, platform, username, message string, hasMention bool) (core.ChatMessage, bool) {
	message = strings.TrimSpace(message)
	if message == "" || !s.p.Controls.ChatEngagement() {
		return core.ChatMessage{}, false
	}

	name := strings.ToLower(s.p.Personality.Personality().AgentName)
	if name != "" && strings.Contains(strings.ToLower(message), name) {
		hasMention = true
	}

	msg := s.p.Tracker.Add(platform, username, message, hasMention)
	s.p.Buffer.Add(ingest.RenderChat(platform, username, message), ingest.ChatSource(message, hasMention), message)

	log.FromCtx(ctx).Debug().
		Str("platform", platform).
		Str("user", username).
		Bool("mention", hasMention).
		Msg("chat message tracked")
	return msg, true
}

// Preempt cancels a generation that is in flight, if any.
func (s *Session) Preempt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		return false
	}
	s.inflight()
	s.inflight = nil
	return true
}

// Tick runs one decision and, when warranted, one synthesis. ok is false when
// the agent stays silent; a failed generation leaves buffer and timers untouched.
func (s *Session) Tick(ctx context.Context) (core.SpokenResponse, bool) {
	logger := log.FromCtx(ctx)
	if s.p.Controls.Paused() {
		return core.SpokenResponse{}, false
	}

	now := s.p.Clock.Now()
	snap := s.p.Buffer.Snapshot()

	var assessment chat.Assessment
	var pending []core.ChatMessage
	if s.p.Controls.ChatEngagement() {
		assessment = s.p.Tracker.Assess()
		pending = s.p.Tracker.Unengaged(0)
	}

	d := s.p.Engine.Decide(snap, assessment, now)
	s.setLast(d)
	if !d.Respond {
		logger.Debug().Str("reason", string(d.Reason)).Int("len", snap.Len()).Msg("staying silent")
		return core.SpokenResponse{}, false
	}

	reservation, allowed := s.reserve(d.Reason, now)
	if !allowed {
		logger.Debug().Str("reason", string(d.Reason)).Msg("response rate limited")
		return core.SpokenResponse{}, false
	}

	personality := s.p.Personality.Personality()
	in := synthesis.PromptInput{
		Personality: personality,
		Reason:      d.Reason,
		Thoughts:    synthesis.Window(snap, d.Reason),
		Memories:    s.recall(ctx, snap),
	}
	if d.Reason.IsChat() {
		in.ChatSummary = s.p.Tracker.Summary(s.p.ChatSummary)
	}

	genCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.inflight = cancel
	s.mu.Unlock()

	text, ok := s.p.Synthesizer.Generate(genCtx, in)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()
	cancel()

	if !ok {
		if reservation != nil {
			reservation.CancelAt(now)
		}
		logger.Info().Str("reason", string(d.Reason)).Msg("no response this cycle")
		return core.SpokenResponse{}, false
	}

	resp := core.SpokenResponse{
		Text:   text,
		Reason: d.Reason,
		Tier:   synthesis.TierFor(d.Reason),
	}
	if s.p.Filter != nil && s.p.Controls.ContentFilter() {
		fr := s.p.Filter.Filter(text)
		resp.Text, resp.Filtered, resp.FilterReason = fr.Text, fr.Filtered, fr.Reason
		if fr.Filtered {
			logger.Warn().Str("categories", fr.Reason).Msg("response filtered")
		}
	}

	s.commit(snap, d.Reason, pending, resp.Text)
	resp.At = s.p.Buffer.LastResponseTime()

	if s.p.Recorder != nil {
		s.p.Recorder.Remember(ctx, core.RoleAssistant, resp.Text)
	}
	logger.Info().
		Str("reason", string(d.Reason)).
		Str("tier", string(resp.Tier)).
		Int("urgency", d.Urgency).
		Msg("responding")
	return resp, true
}

// commit resets the buffer past the snapshot, records the echo and marks the
// answered chat messages.
func (s *Session) commit(snap thought.Snapshot, reason core.Reason, pending []core.ChatMessage, spoken string) {
	s.p.Buffer.ClearThrough(snap.LastSeq())
	s.p.Buffer.Add(synthesis.Echo(spoken), core.SourceResponseEcho, spoken)
	now := s.p.Clock.Now()
	s.p.Buffer.MarkResponded(now)

	if reason.IsChat() && len(pending) > 0 {
		ids := make([]int64, len(pending))
		for i, m := range pending {
			ids[i] = m.ID
		}
		s.p.Tracker.MarkEngaged(ids...)
		s.p.Tracker.PruneEngaged()
	}

	s.mu.Lock()
	s.lastSpoke = now
	s.mu.Unlock()
}

// recall queries memory for context. Any failure degrades to no memories.
func (s *Session) recall(ctx context.Context, snap thought.Snapshot) []core.MemorySnippet {
	if s.p.Memory == nil || !s.p.Controls.MemorySearch() {
		return nil
	}

	query := ""
	if t, ok := snap.LatestUserThought(); ok {
		query = t.OriginalText
	} else if last := snap.Last(1); len(last) == 1 {
		query = last[0].Content
	}
	if query == "" {
		return nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.p.MemoryTimeout)
	defer cancel()

	hits, err := s.p.Memory.Search(searchCtx, query, s.p.MemoryK)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("memory search failed")
		return nil
	}
	return hits
}

// reserve takes a token from the response limiter. Mentions bypass it.
func (s *Session) reserve(reason core.Reason, now time.Time) (*rate.Reservation, bool) {
	if reason == core.ReasonDirectMention || reason == core.ReasonChatMention {
		return nil, true
	}

	interval := s.p.Controls.MinResponseInterval()
	s.mu.Lock()
	if interval != s.interval {
		s.limiter.SetLimitAt(now, limitFor(interval))
		s.interval = interval
	}
	s.mu.Unlock()

	r := s.limiter.ReserveN(now, 1)
	if !r.OK() || r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, false
	}
	return r, true
}

func limitFor(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}

func (s *Session) setLast(d decision.Decision) {
	s.mu.Lock()
	s.last = d
	s.mu.Unlock()
}

// Status is a point-in-time view for operators.
type Status struct {
	Thoughts     int
	Capacity     int
	LastResponse time.Time
	LastUser     time.Time
	LastDecision decision.Decision
	LastSpoke    time.Time
	Chat         chat.Stats
	Generating   bool
	Model        string
}

func (s *Session) Status() Status {
	snap := s.p.Buffer.Snapshot()
	s.mu.Lock()
	last, spoke, generating := s.last, s.lastSpoke, s.inflight != nil
	s.mu.Unlock()

	return Status{
		Thoughts:     snap.Len(),
		Capacity:     snap.Capacity,
		LastResponse: snap.LastResponse,
		LastUser:     snap.LastUserInteraction,
		LastDecision: last,
		LastSpoke:    spoke,
		Chat:         s.p.Tracker.Stats(),
		Generating:   generating,
		Model:        s.p.Controls.Model(),
	}
}

func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *thought.Buffer:
		return x == nil
	case *chat.Tracker:
		return x == nil
	case *decision.Engine:
		return x == nil
	case *synthesis.Synthesizer:
		return x == nil
	case *ingest.Interpreter:
		return x == nil
	case *state.Controls:
		return x == nil
	}
	return false
}
