package core

import "strings"

// Source tags where an event or thought came from. The set is closed;
// unrecognised wire tags parse to SourceUnknown.
type Source uint8

const (
	SourceUnknown Source = iota
	SourceUserInput
	SourceDirectMention
	SourceChatMessage
	SourceChatMention
	SourceChatQuestion
	SourceVisionResult
	SourceTimer
	SourceToolResult
	SourceObservation
	SourceToolContext
	SourceSearch
	SourceMemory
	SourceInternal
	SourceResponseEcho

	sourceCount
)

var sourceNames = [sourceCount]string{
	SourceUnknown:       "unknown",
	SourceUserInput:     "user_input",
	SourceDirectMention: "direct_mention",
	SourceChatMessage:   "chat_message",
	SourceChatMention:   "chat_mention",
	SourceChatQuestion:  "chat_question",
	SourceVisionResult:  "vision_result",
	SourceTimer:         "timer",
	SourceToolResult:    "tool_result",
	SourceObservation:   "observation",
	SourceToolContext:   "tool_context",
	SourceSearch:        "search",
	SourceMemory:        "memory",
	SourceInternal:      "internal",
	SourceResponseEcho:  "response_echo",
}

func (s Source) String() string {
	if s < sourceCount {
		return sourceNames[s]
	}
	return sourceNames[SourceUnknown]
}

// ParseSource maps a wire tag to a Source. Matching ignores case and surrounding space.
func ParseSource(tag string) Source {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, name := range sourceNames {
		if name == tag {
			return Source(i)
		}
	}
	// Legacy chat converter tag.
	if tag == "chat_direct_mention" {
		return SourceChatMention
	}
	return SourceUnknown
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(text []byte) error {
	*s = ParseSource(string(text))
	return nil
}

// IsUserOrigin reports whether the thought came straight from the local user.
func (s Source) IsUserOrigin() bool {
	return s == SourceUserInput || s == SourceDirectMention
}

// IsConversational reports sources that count towards conversational flow.
func (s Source) IsConversational() bool {
	switch s {
	case SourceUserInput, SourceDirectMention, SourceSearch, SourceMemory:
		return true
	}
	return false
}

func (s Source) IsChat() bool {
	switch s {
	case SourceChatMessage, SourceChatMention, SourceChatQuestion:
		return true
	}
	return false
}

func (s Source) Priority() Priority {
	switch s {
	case SourceDirectMention, SourceChatMention:
		return PriorityCritical
	case SourceUserInput, SourceChatQuestion:
		return PriorityHigh
	case SourceChatMessage, SourceSearch, SourceMemory, SourceToolResult:
		return PriorityMedium
	}
	return PriorityLow
}
