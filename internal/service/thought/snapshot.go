package thought

import (
	"time"

	"github.com/sandevgo/annabot/internal/core"
)

// Snapshot is an immutable view of a Buffer at one instant.
type Snapshot struct {
	Thoughts            []core.Thought
	LastUserInteraction time.Time
	LastResponse        time.Time
	Capacity            int
}

func (s Snapshot) Len() int {
	return len(s.Thoughts)
}

func (s Snapshot) HasUserInteraction() bool {
	return !s.LastUserInteraction.IsZero()
}

// Last returns the newest n thoughts, oldest first.
func (s Snapshot) Last(n int) []core.Thought {
	if n <= 0 || n >= len(s.Thoughts) {
		return s.Thoughts
	}
	return s.Thoughts[len(s.Thoughts)-n:]
}

// LatestUserThought returns the newest thought that came from the local user.
func (s Snapshot) LatestUserThought() (core.Thought, bool) {
	for i := len(s.Thoughts) - 1; i >= 0; i-- {
		if s.Thoughts[i].Source.IsUserOrigin() {
			return s.Thoughts[i], true
		}
	}
	return core.Thought{}, false
}

func (s Snapshot) Has(source core.Source) bool {
	for _, t := range s.Thoughts {
		if t.Source == source {
			return true
		}
	}
	return false
}

func (s Snapshot) Count(match func(core.Thought) bool) int {
	n := 0
	for _, t := range s.Thoughts {
		if match(t) {
			n++
		}
	}
	return n
}

// LastSeq is the sequence number of the newest thought, or 0 when empty.
func (s Snapshot) LastSeq() uint64 {
	if len(s.Thoughts) == 0 {
		return 0
	}
	return s.Thoughts[len(s.Thoughts)-1].Seq
}
