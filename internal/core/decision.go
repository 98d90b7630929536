package core

import "time"

// Reason names why the agent decided to speak (or not).
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonDirectMention      Reason = "direct_mention"
	ReasonDirectQuestion     Reason = "direct_question"
	ReasonCommand            Reason = "command"
	ReasonGreeting           Reason = "greeting"
	ReasonUserWaiting        Reason = "user_waiting"
	ReasonThoughtBufferFull  Reason = "thought_buffer_full"
	ReasonConversationFlow   Reason = "conversation_flow"
	ReasonAccumulatedContext Reason = "accumulated_context"
	ReasonAccumulating       Reason = "accumulating"

	ReasonChatMention      Reason = "chat_mention"
	ReasonChatQuestion     Reason = "chat_question"
	ReasonChatAccumulation Reason = "chat_accumulation"
	ReasonNoUrgentChat     Reason = "no_urgent_chat"
	ReasonNoChat           Reason = "no_chat"
)

// IsChat reports whether the reason came from the chat engagement path.
func (r Reason) IsChat() bool {
	switch r {
	case ReasonChatMention, ReasonChatQuestion, ReasonChatAccumulation:
		return true
	}
	return false
}

// Tier is the verbosity bucket chosen from a Reason.
type Tier string

const (
	TierDirect     Tier = "direct"
	TierStandard   Tier = "standard"
	TierThoughtful Tier = "thoughtful"
)

// SpokenResponse is what one successful tick hands to the output adapters.
type SpokenResponse struct {
	Text         string
	Reason       Reason
	Tier         Tier
	Filtered     bool
	FilterReason string
	At           time.Time
}
