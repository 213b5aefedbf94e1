package model

import (
	"time"
)

// EventType represents the type of conversation event.
type EventType string

const (
	EventTypeStatus EventType = "status"
	EventTypeTurn   EventType = "turn"
)

// StatusEvent announces a status transition.
type StatusEvent struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// TurnEvent announces a newly appended turn.
type TurnEvent struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Turn           Turn   `json:"turn"`
}

// HeartbeatEvent represents a heartbeat event.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
