package synthesis

import "github.com/sandevgo/annabot/internal/core"

// TierFor maps the triggering reason to a verbosity tier.
func TierFor(r core.Reason) core.Tier {
	switch r {
	case core.ReasonDirectMention, core.ReasonDirectQuestion, core.ReasonGreeting, core.ReasonCommand:
		return core.TierDirect
	case core.ReasonThoughtBufferFull, core.ReasonConversationFlow, core.ReasonAccumulatedContext:
		return core.TierThoughtful
	}
	return core.TierStandard
}

// WindowSize is how many recent thoughts a tier feeds into the prompt.
func WindowSize(t core.Tier) int {
	switch t {
	case core.TierDirect:
		return 3
	case core.TierThoughtful:
		return 7
	}
	return 5
}

// SentenceRange is the target reply length for a tier.
func SentenceRange(t core.Tier) string {
	switch t {
	case core.TierDirect:
		return "1-2"
	case core.TierThoughtful:
		return "2-4"
	}
	return "2-3"
}

var instructions = map[core.Reason]string{
	core.ReasonDirectMention:      "You were directly addressed. Respond naturally using ONLY real data.",
	core.ReasonDirectQuestion:     "Answer the question clearly using ONLY what you actually observe.",
	core.ReasonCommand:            "Acknowledge and act on the request.",
	core.ReasonThoughtBufferFull:  "You've processed a lot. Share your informed perspective.",
	core.ReasonConversationFlow:   "You've been thinking. Add meaningful input.",
	core.ReasonAccumulatedContext: "You have substantial context. Provide a thoughtful response.",
	core.ReasonUserWaiting:        "The user is waiting. Respond based on REAL observations.",
	core.ReasonGreeting:           "Greet them warmly.",
	core.ReasonChatMention:        "Someone in chat mentioned you. Reply to them by their chat name.",
	core.ReasonChatQuestion:       "There is a question in chat. Answer it briefly and name who asked.",
	core.ReasonChatAccumulation:   "Chat has been busy. Join the conversation naturally.",
}

const defaultInstruction = "Respond naturally based on your thoughts."

// Instruction returns the situation text for a reason.
func Instruction(r core.Reason) string {
	if s, ok := instructions[r]; ok {
		return s
	}
	return defaultInstruction
}
