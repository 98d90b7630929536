package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/state"
)

type collectSpeaker struct {
	mu    sync.Mutex
	spoke []core.SpokenResponse
}

func (c *collectSpeaker) Speak(_ context.Context, resp core.SpokenResponse) error {
	c.mu.Lock()
	c.spoke = append(c.spoke, resp)
	c.mu.Unlock()
	return nil
}

func (c *collectSpeaker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spoke)
}

func TestLoop_SpeaksOnMention(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, state.Options{ChatEngagement: true})
	sp := &collectSpeaker{}
	l, err := NewLoop(f.session, f.controls, 10*time.Millisecond, nil, sp)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- l.Start(ctx) }()

	require.True(t, l.Submit(core.NewEvent(core.SourceDirectMention, "Anna?")))
	require.Eventually(t, func() bool { return sp.count() == 1 }, time.Second, 5*time.Millisecond)

	require.True(t, l.SubmitChat("telegram", "bob", "anna you rock", false))
	require.Eventually(t, func() bool { return sp.count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, core.ReasonChatMention, sp.spoke[1].Reason)
}

func TestLoop_KillPhrase(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, state.Options{})
	stopped := make(chan struct{})
	l, err := NewLoop(f.session, f.controls, time.Hour, func() { close(stopped) })
	require.NoError(t, err)

	done := make(chan error)
	go func() { done <- l.Start(context.Background()) }()

	l.Emit(core.NewEvent(core.SourceUserInput, "okay Anna, shut down sleep now"))

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop was not called")
	}
	require.NoError(t, <-done)
	assert.Equal(t, 0, f.buf.Len())
}

func TestLoop_SubmitFullQueue(t *testing.T) {
	f := newFixture(t, state.Options{})
	l, err := NewLoop(f.session, f.controls, time.Hour, nil)
	require.NoError(t, err)

	for i := 0; i < DefaultQueueSize; i++ {
		require.True(t, l.Submit(core.NewEvent(core.SourceVisionResult, "x")))
	}
	assert.False(t, l.Submit(core.NewEvent(core.SourceVisionResult, "x")))
	assert.False(t, l.SubmitChat("telegram", "bob", "hi", false))
}

func TestLoop_SetQueueSize(t *testing.T) {
	f := newFixture(t, state.Options{})
	l, err := NewLoop(f.session, f.controls, time.Hour, nil)
	require.NoError(t, err)
	l.SetQueueSize(2)

	assert.True(t, l.Submit(core.NewEvent(core.SourceVisionResult, "a")))
	assert.True(t, l.SubmitChat("telegram", "bob", "hi", false))
	assert.False(t, l.Submit(core.NewEvent(core.SourceVisionResult, "b")))
}

func TestNewLoop_RejectsBadConfig(t *testing.T) {
	f := newFixture(t, state.Options{})

	tests := []struct {
		name     string
		session  *Session
		interval time.Duration
	}{
		{"zero interval", f.session, 0},
		{"negative interval", f.session, -time.Second},
		{"no session", nil, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLoop(tt.session, f.controls, tt.interval, nil)
			assert.Error(t, err)
			assert.Nil(t, l)
		})
	}
}
