// Package thought holds the bounded, chronologically ordered thought buffer
// together with the user-interaction and response timers derived from it.
package thought

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/clock"
)

var ErrInvalidCapacity = errors.New("thought buffer capacity must be positive")

// Buffer is a fixed-capacity ring of thoughts. Once full, each Add evicts the
// oldest entry. All methods are safe for concurrent use; writers are serialised
// by a single mutex so readers always observe thoughts and timers together.
type Buffer struct {
	mu    sync.RWMutex
	clock clock.Clock

	items []core.Thought
	head  int
	size  int
	seq   uint64

	lastUser     time.Time
	lastResponse time.Time
}

func NewBuffer(capacity int, clk clock.Clock) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Buffer{
		clock:        clk,
		items:        make([]core.Thought, capacity),
		lastResponse: clk.Now(),
	}, nil
}

// Add appends a thought stamped with the current time. Blank content is
// dropped and reported with ok=false; nothing else can make Add fail.
func (b *Buffer) Add(content string, source core.Source, originalText string) (core.Thought, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return core.Thought{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	b.seq++
	t := core.Thought{
		Seq:          b.seq,
		Content:      content,
		Source:       source,
		Timestamp:    now,
		OriginalText: originalText,
	}

	capacity := len(b.items)
	if b.size < capacity {
		b.items[(b.head+b.size)%capacity] = t
		b.size++
	} else {
		b.items[b.head] = t
		b.head = (b.head + 1) % capacity
	}

	if source.IsUserOrigin() {
		b.lastUser = now
	}
	return t, true
}

// Get returns a copy of the newest lastN thoughts, oldest first.
// lastN <= 0 returns everything.
func (b *Buffer) Get(lastN int) []core.Thought {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tail(lastN)
}

func (b *Buffer) tail(lastN int) []core.Thought {
	if lastN <= 0 || lastN > b.size {
		lastN = b.size
	}
	out := make([]core.Thought, lastN)
	start := b.size - lastN
	for i := 0; i < lastN; i++ {
		out[i] = b.at(start + i)
	}
	return out
}

// at returns the i-th thought counting from the oldest. Caller holds the lock.
func (b *Buffer) at(i int) core.Thought {
	return b.items[(b.head+i)%len(b.items)]
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Buffer) Cap() int {
	return len(b.items)
}

// Clear drops every thought. Timers are left untouched.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Buffer) reset() {
	for i := range b.items {
		b.items[i] = core.Thought{}
	}
	b.head = 0
	b.size = 0
}

// ClearThrough drops every thought with Seq <= seq and keeps anything appended
// later. It returns the number of thoughts removed.
func (b *Buffer) ClearThrough(seq uint64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for b.size > 0 && b.items[b.head].Seq <= seq {
		b.items[b.head] = core.Thought{}
		b.head = (b.head + 1) % len(b.items)
		b.size--
		removed++
	}
	if b.size == 0 {
		b.head = 0
	}
	return removed
}

func (b *Buffer) LastUserInteraction() (time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUser, !b.lastUser.IsZero()
}

func (b *Buffer) LastResponseTime() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastResponse
}

// MarkResponded advances the response timer to at. Earlier times are ignored.
func (b *Buffer) MarkResponded(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if at.After(b.lastResponse) {
		b.lastResponse = at
	}
}

// Snapshot captures thoughts and timers under one read lock.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Thoughts:            b.tail(0),
		LastUserInteraction: b.lastUser,
		LastResponse:        b.lastResponse,
		Capacity:            len(b.items),
	}
}
