package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is one observed external occurrence, consumed once by ingestion.
type Event struct {
	ID        string
	Source    Source
	Data      string
	Timestamp time.Time
}

func NewEvent(source Source, data string) Event {
	return Event{
		ID:        uuid.NewString(),
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Thought is one interpreted unit of internal state.
type Thought struct {
	// Seq increases by one per appended thought within a buffer.
	Seq          uint64
	Content      string
	Source       Source
	Timestamp    time.Time
	OriginalText string
}

// ChatMessage is a live-chat line tracked for engagement.
type ChatMessage struct {
	ID         int64
	Platform   string
	Username   string
	Message    string
	Timestamp  time.Time
	HasMention bool
	Engaged    bool
}
