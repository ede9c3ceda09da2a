package model

import (
	"time"
)

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// MessageKind tells the presentation layer which affordance to render.
type MessageKind string

const (
	KindPlain                MessageKind = "plain"
	KindOptionsPrompt        MessageKind = "options_prompt"
	KindSyllabusActionPrompt MessageKind = "syllabus_action_prompt"
	KindRestartPrompt        MessageKind = "restart_prompt"
)

// ChatMessage is one entry of a conversation transcript. Messages are
// immutable once created.
type ChatMessage struct {
	ID               string      `json:"id"`
	Sender           Sender      `json:"sender"`
	Text             string      `json:"text"`
	Kind             MessageKind `json:"kind,omitempty"`
	Options          []string    `json:"options,omitempty"`
	SyllabusContent  string      `json:"syllabus_content,omitempty"`
	MatchedTeacherID string      `json:"matched_teacher_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// SendMessageRequest is the request to submit visitor text.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// ActionRequest is the request to fire a conversation action.
type ActionRequest struct {
	Action Action `json:"action"`
}

// TurnResponse is returned after a message or action: the messages appended
// to the transcript by that turn and the resulting step.
type TurnResponse struct {
	Messages []ChatMessage `json:"messages"`
	Step     Step          `json:"step"`
}

// SessionResponse describes a chat session.
type SessionResponse struct {
	ID        string        `json:"id"`
	Step      Step          `json:"step"`
	Thinking  bool          `json:"thinking"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// ErrorEvent represents an error event on the SSE stream.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ThinkingEvent is sent on the SSE stream while the backend is working.
type ThinkingEvent struct {
	Step Step `json:"step"`
}
