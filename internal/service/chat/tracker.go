// Package chat tracks live-chat messages separately from the thought buffer
// and decides when the agent should engage with them.
package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/clock"
)

type Thresholds struct {
	// Capacity bounds stored messages; the oldest is evicted first.
	Capacity int
	// QuestionMaxAge is how long an unanswered question stays urgent.
	QuestionMaxAge time.Duration
	// AccumulationMin unengaged messages trigger engagement once Cooldown has passed.
	AccumulationMin int
	Cooldown        time.Duration
	// HardCap unengaged messages trigger engagement regardless of Cooldown.
	HardCap int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Capacity:        20,
		QuestionMaxAge:  30 * time.Second,
		AccumulationMin: 3,
		Cooldown:        60 * time.Second,
		HardCap:         5,
	}
}

const (
	LevelMention      = 9
	LevelQuestion     = 7
	LevelAccumulation = 6
)

// Assessment is the tracker's engagement verdict at one instant.
type Assessment struct {
	ShouldEngage bool
	Level        int
	Reason       core.Reason
	Unengaged    int
}

type Stats struct {
	Total          int
	Unengaged      int
	Engaged        int
	Mentions       int
	Questions      int
	LastChat       time.Time
	LastEngagement time.Time
}

// Tracker stores chat messages in arrival order. Safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	clock clock.Clock
	th    Thresholds

	msgs   []core.ChatMessage
	nextID int64

	lastChat       time.Time
	lastEngagement time.Time
}

func NewTracker(th Thresholds, clk clock.Clock) (*Tracker, error) {
	if th.Capacity <= 0 {
		return nil, fmt.Errorf("chat tracker capacity must be positive, got %d", th.Capacity)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Tracker{
		clock: clk,
		th:    th,
		msgs:  make([]core.ChatMessage, 0, th.Capacity),
	}, nil
}

// Add stores a new unengaged message and returns it with its assigned id.
func (t *Tracker) Add(platform, username, message string, hasMention bool) core.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	t.nextID++
	msg := core.ChatMessage{
		ID:         t.nextID,
		Platform:   platform,
		Username:   username,
		Message:    message,
		Timestamp:  now,
		HasMention: hasMention,
	}

	if len(t.msgs) == t.th.Capacity {
		copy(t.msgs, t.msgs[1:])
		t.msgs = t.msgs[:len(t.msgs)-1]
	}
	t.msgs = append(t.msgs, msg)
	t.lastChat = now
	return msg
}

// Unengaged returns up to max of the newest unengaged messages, oldest first.
func (t *Tracker) Unengaged(max int) []core.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.unengaged(max)
}

func (t *Tracker) unengaged(max int) []core.ChatMessage {
	var out []core.ChatMessage
	for _, m := range t.msgs {
		if !m.Engaged {
			out = append(out, m)
		}
	}
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}

func (t *Tracker) UnengagedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, m := range t.msgs {
		if !m.Engaged {
			n++
		}
	}
	return n
}

func (t *Tracker) ShouldEngage() bool {
	return t.Assess().ShouldEngage
}

// Urgency returns the advisory level and reason for the decision engine.
func (t *Tracker) Urgency() (int, core.Reason) {
	a := t.Assess()
	return a.Level, a.Reason
}

// Assess evaluates engagement and urgency from one consistent view of the store.
func (t *Tracker) Assess() Assessment {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.clock.Now()
	pending := t.unengaged(0)
	if len(pending) == 0 {
		return Assessment{Reason: core.ReasonNoChat}
	}

	var mention, freshQuestion, anyQuestion bool
	for _, m := range pending {
		if m.HasMention {
			mention = true
		}
		if strings.Contains(m.Message, "?") {
			anyQuestion = true
			if now.Sub(m.Timestamp) < t.th.QuestionMaxAge {
				freshQuestion = true
			}
		}
	}

	count := len(pending)
	sinceEngagement := now.Sub(t.lastEngagement)
	if t.lastEngagement.IsZero() {
		sinceEngagement = time.Duration(1<<63 - 1)
	}

	a := Assessment{Unengaged: count}
	a.ShouldEngage = mention ||
		freshQuestion ||
		(count >= t.th.AccumulationMin && sinceEngagement > t.th.Cooldown) ||
		count >= t.th.HardCap

	switch {
	case mention:
		a.Level, a.Reason = LevelMention, core.ReasonChatMention
	case anyQuestion:
		a.Level, a.Reason = LevelQuestion, core.ReasonChatQuestion
	case count >= t.th.AccumulationMin:
		a.Level, a.Reason = LevelAccumulation, core.ReasonChatAccumulation
	default:
		a.Level, a.Reason = 0, core.ReasonNoUrgentChat
	}
	return a
}

// MarkEngaged marks the given message ids, or every stored message when no id
// is given. Already engaged or unknown ids are ignored. It returns how many
// messages changed state.
func (t *Tracker) MarkEngaged(ids ...int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var want map[int64]struct{}
	if len(ids) > 0 {
		want = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			want[id] = struct{}{}
		}
	}

	changed := 0
	for i := range t.msgs {
		if t.msgs[i].Engaged {
			continue
		}
		if want != nil {
			if _, ok := want[t.msgs[i].ID]; !ok {
				continue
			}
		}
		t.msgs[i].Engaged = true
		changed++
	}
	t.lastEngagement = t.clock.Now()
	return changed
}

// PruneEngaged drops engaged messages, keeping the order of the rest.
func (t *Tracker) PruneEngaged() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.msgs[:0]
	for _, m := range t.msgs {
		if !m.Engaged {
			kept = append(kept, m)
		}
	}
	removed := len(t.msgs) - len(kept)
	for i := len(kept); i < len(t.msgs); i++ {
		t.msgs[i] = core.ChatMessage{}
	}
	t.msgs = kept
	return removed
}

// Clear drops every message.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = t.msgs[:0]
}

// TimeSinceLastChat reports the age of the newest message; ok is false if none arrived yet.
func (t *Tracker) TimeSinceLastChat() (time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastChat.IsZero() {
		return 0, false
	}
	return t.clock.Now().Sub(t.lastChat), true
}

func (t *Tracker) HasRecentActivity(window time.Duration) bool {
	since, ok := t.TimeSinceLastChat()
	return ok && since < window
}

func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Stats{
		Total:          len(t.msgs),
		LastChat:       t.lastChat,
		LastEngagement: t.lastEngagement,
	}
	for _, m := range t.msgs {
		if m.Engaged {
			s.Engaged++
			continue
		}
		s.Unengaged++
		if m.HasMention {
			s.Mentions++
		}
		if strings.Contains(m.Message, "?") {
			s.Questions++
		}
	}
	return s
}

// Summary renders up to max unengaged messages for prompt context.
func (t *Tracker) Summary(max int) string {
	pending := t.Unengaged(max)
	if len(pending) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, m := range pending {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s] %s: %s", m.Platform, m.Username, m.Message)
		if m.HasMention {
			sb.WriteString(" [MENTIONED YOU]")
		}
	}
	return sb.String()
}
