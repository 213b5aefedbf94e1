package model

// Status is the dispatch state of a conversation.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusThinking Status = "thinking"
)

// CanTransition reports whether moving from s to next is allowed.
// Only idle->thinking (submit) and thinking->idle (settle) exist.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusIdle:
		return next == StatusThinking
	case StatusThinking:
		return next == StatusIdle
	default:
		return false
	}
}

// Busy reports whether a dispatch is outstanding.
func (s Status) Busy() bool {
	return s == StatusThinking
}
