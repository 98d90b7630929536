package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		tag  string
		want Source
	}{
		{"user_input", SourceUserInput},
		{"  Direct_Mention ", SourceDirectMention},
		{"chat_direct_mention", SourceChatMention},
		{"observation", SourceObservation},
		{"response_echo", SourceResponseEcho},
		{"", SourceUnknown},
		{"telepathy", SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSource(tt.tag))
		})
	}
}

func TestSource_RoundTripNames(t *testing.T) {
	for s := SourceUnknown; s < sourceCount; s++ {
		assert.Equal(t, s, ParseSource(s.String()), s.String())
	}
	assert.Equal(t, "unknown", Source(200).String())
}

func TestSource_Classes(t *testing.T) {
	assert.True(t, SourceUserInput.IsUserOrigin())
	assert.True(t, SourceDirectMention.IsUserOrigin())
	assert.False(t, SourceChatMention.IsUserOrigin())

	for _, s := range []Source{SourceUserInput, SourceDirectMention, SourceSearch, SourceMemory} {
		assert.True(t, s.IsConversational(), s.String())
	}
	assert.False(t, SourceObservation.IsConversational())

	assert.True(t, SourceChatQuestion.IsChat())
	assert.False(t, SourceTimer.IsChat())
}

func TestSource_Priority(t *testing.T) {
	assert.Equal(t, PriorityCritical, SourceDirectMention.Priority())
	assert.Equal(t, PriorityCritical, SourceChatMention.Priority())
	assert.Equal(t, PriorityHigh, SourceUserInput.Priority())
	assert.Equal(t, PriorityMedium, SourceMemory.Priority())
	assert.Equal(t, PriorityLow, SourceObservation.Priority())
	assert.Equal(t, "critical", PriorityCritical.String())
}

func TestReason_IsChat(t *testing.T) {
	assert.True(t, ReasonChatMention.IsChat())
	assert.True(t, ReasonChatAccumulation.IsChat())
	assert.False(t, ReasonDirectMention.IsChat())
	assert.False(t, ReasonNoUrgentChat.IsChat())
}
