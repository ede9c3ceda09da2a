package model

import (
	"time"
)

// EventType represents the type of conversation event.
type EventType string

const (
	EventTypeRestarted EventType = "restarted"
	EventTypeCompleted EventType = "completed"
)

// ConversationEvent represents a notable event in a conversation.
type ConversationEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Type      EventType `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
