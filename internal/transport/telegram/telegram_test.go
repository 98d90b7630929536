package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/annabot/internal/core"
)

func TestIsMention(t *testing.T) {
	names := addressNames(&tele.User{Username: "Anna_Bot"}, "Anna")

	tests := []struct {
		text string
		want bool
	}{
		{"hey @anna_bot what's up", true},
		{"ANNA are you there", true},
		{"just chatting", false},
		{"@other_bot hi", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, isMention(tt.text, names))
		})
	}
}

func TestAddressNames(t *testing.T) {
	assert.Equal(t, []string{"@anna_bot"}, addressNames(&tele.User{Username: "anna_bot"}, " "))
	assert.Equal(t, []string{"anna"}, addressNames(nil, "Anna"))
	assert.Empty(t, addressNames(&tele.User{}, ""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "bob", displayName(&tele.User{Username: "bob", FirstName: "Robert"}))
	assert.Equal(t, "Robert Paulson", displayName(&tele.User{FirstName: "Robert", LastName: "Paulson"}))
	assert.Equal(t, "user42", displayName(&tele.User{ID: 42}))
}

func TestUnprompted(t *testing.T) {
	tests := []struct {
		reason core.Reason
		want   bool
	}{
		{core.ReasonDirectMention, false},
		{core.ReasonChatQuestion, false},
		{core.ReasonUserWaiting, false},
		{core.ReasonThoughtBufferFull, true},
		{core.ReasonConversationFlow, true},
		{core.ReasonChatAccumulation, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.want, unprompted(tt.reason))
		})
	}
}
