package core

const (
	AppName       = "AnnaBot"
	AppUserAgent  = "AnnaBot/0.1"
	RepositoryURL = "https://github.com/sandevgo/annabot"
	AppVersion    = "0.1.0"
)

// Priority is the coarse importance attached to a thought source.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return "unknown"
}
