package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*Tracker, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(t0)
	tr, err := NewTracker(DefaultThresholds(), clk)
	require.NoError(t, err)
	return tr, clk
}

func TestNewTracker_InvalidCapacity(t *testing.T) {
	th := DefaultThresholds()
	th.Capacity = 0
	_, err := NewTracker(th, nil)
	assert.Error(t, err)
}

func TestTracker_EmptyAssessment(t *testing.T) {
	tr, _ := newTestTracker(t)

	a := tr.Assess()
	assert.False(t, a.ShouldEngage)
	assert.Equal(t, 0, a.Level)
	assert.Equal(t, core.ReasonNoChat, a.Reason)
}

func TestTracker_AccumulationNeedsThree(t *testing.T) {
	tr, clk := newTestTracker(t)
	tr.Add("twitch", "old", "first", false)
	tr.MarkEngaged()

	clk.Advance(61 * time.Second)
	tr.Add("twitch", "bob", "nice run", false)
	tr.Add("twitch", "eve", "gg", false)
	assert.False(t, tr.ShouldEngage(), "two messages are not enough")

	tr.Add("twitch", "mia", "lol", false)
	assert.True(t, tr.ShouldEngage())

	level, reason := tr.Urgency()
	assert.Equal(t, LevelAccumulation, level)
	assert.Equal(t, core.ReasonChatAccumulation, reason)
}

func TestTracker_AccumulationRespectsCooldown(t *testing.T) {
	tr, clk := newTestTracker(t)
	tr.Add("twitch", "old", "first", false)
	tr.MarkEngaged()

	clk.Advance(30 * time.Second)
	for i := 0; i < 3; i++ {
		tr.Add("twitch", "bob", fmt.Sprintf("msg %d", i), false)
	}
	assert.False(t, tr.ShouldEngage(), "cooldown not yet elapsed")

	tr.Add("twitch", "bob", "msg 3", false)
	tr.Add("twitch", "bob", "msg 4", false)
	assert.True(t, tr.ShouldEngage(), "hard cap ignores cooldown")
}

func TestTracker_NeverEngagedCountsAsCooledDown(t *testing.T) {
	tr, _ := newTestTracker(t)
	for i := 0; i < 3; i++ {
		tr.Add("youtube", "bob", fmt.Sprintf("msg %d", i), false)
	}
	assert.True(t, tr.ShouldEngage())
}

func TestTracker_MentionWins(t *testing.T) {
	tr, _ := newTestTracker(t)
	for i := 0; i < 10; i++ {
		tr.Add("twitch", "viewer", fmt.Sprintf("chatter %d", i), false)
	}
	tr.Add("twitch", "bob", "anna say hi", true)

	assert.True(t, tr.ShouldEngage())
	level, reason := tr.Urgency()
	assert.Equal(t, LevelMention, level)
	assert.Equal(t, core.ReasonChatMention, reason)
}

func TestTracker_QuestionFreshness(t *testing.T) {
	tr, clk := newTestTracker(t)
	tr.Add("discord", "old", "seed", false)
	tr.MarkEngaged()

	tr.Add("discord", "bob", "what game is this?", false)
	assert.True(t, tr.ShouldEngage())
	level, reason := tr.Urgency()
	assert.Equal(t, LevelQuestion, level)
	assert.Equal(t, core.ReasonChatQuestion, reason)

	clk.Advance(31 * time.Second)
	assert.False(t, tr.ShouldEngage(), "stale question alone does not trigger")
	_, reason = tr.Urgency()
	assert.Equal(t, core.ReasonChatQuestion, reason, "urgency still reports the question")
}

func TestTracker_LowChatterIsNotUrgent(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Add("twitch", "bob", "hello chat", false)

	level, reason := tr.Urgency()
	assert.Equal(t, 0, level)
	assert.Equal(t, core.ReasonNoUrgentChat, reason)
}

func TestTracker_MarkEngagedIdempotent(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Add("twitch", "a", "one", false)
	tr.Add("twitch", "b", "two?", false)
	tr.Add("twitch", "c", "three", true)

	assert.Equal(t, 3, tr.MarkEngaged())
	assert.Equal(t, 0, tr.UnengagedCount())

	assert.Equal(t, 0, tr.MarkEngaged())
	assert.Equal(t, 0, tr.UnengagedCount())
}

func TestTracker_MarkEngagedByID(t *testing.T) {
	tr, _ := newTestTracker(t)
	a := tr.Add("twitch", "a", "one", false)
	b := tr.Add("twitch", "b", "two", false)
	c := tr.Add("twitch", "c", "three", false)

	assert.Equal(t, 2, tr.MarkEngaged(a.ID, c.ID, 999))
	assert.Equal(t, 0, tr.MarkEngaged(a.ID))

	pending := tr.Unengaged(0)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	stats := tr.Stats()
	assert.Equal(t, 3, stats.Total, "marking does not drop or reorder")
	assert.Equal(t, 2, stats.Engaged)
}

func TestTracker_EvictsOldest(t *testing.T) {
	th := DefaultThresholds()
	th.Capacity = 3
	tr, err := NewTracker(th, clock.NewFake(t0))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		tr.Add("twitch", "bob", fmt.Sprintf("m%d", i), false)
	}

	pending := tr.Unengaged(0)
	require.Len(t, pending, 3)
	assert.Equal(t, "m2", pending[0].Message)
	assert.Equal(t, "m4", pending[2].Message)

	newest := tr.Unengaged(2)
	assert.Equal(t, "m3", newest[0].Message)
}

func TestTracker_PruneEngaged(t *testing.T) {
	tr, _ := newTestTracker(t)
	a := tr.Add("twitch", "a", "one", false)
	tr.Add("twitch", "b", "two", false)
	tr.MarkEngaged(a.ID)

	assert.Equal(t, 1, tr.PruneEngaged())
	assert.Equal(t, 1, tr.Stats().Total)
	assert.Equal(t, 1, tr.UnengagedCount())
}

func TestTracker_ActivityAndSummary(t *testing.T) {
	tr, clk := newTestTracker(t)
	_, ok := tr.TimeSinceLastChat()
	assert.False(t, ok)
	assert.Empty(t, tr.Summary(5))

	tr.Add("twitch", "bob", "hi anna", true)
	tr.Add("youtube", "eve", "first time here", false)
	clk.Advance(10 * time.Second)

	since, ok := tr.TimeSinceLastChat()
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, since)
	assert.True(t, tr.HasRecentActivity(time.Minute))
	assert.False(t, tr.HasRecentActivity(5*time.Second))

	assert.Equal(t,
		"[twitch] bob: hi anna [MENTIONED YOU]\n[youtube] eve: first time here",
		tr.Summary(5))

	stats := tr.Stats()
	assert.Equal(t, 2, stats.Unengaged)
	assert.Equal(t, 1, stats.Mentions)
	assert.Equal(t, 0, stats.Questions)
}
