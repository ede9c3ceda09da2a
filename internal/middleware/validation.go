package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gforma/lead-assistant/internal/model"
)

// MaxMessageLength bounds visitor text, in bytes.
const MaxMessageLength = 4000

// ValidateMessageContent validates visitor text.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ValidateAction validates a conversation action name.
func ValidateAction(action model.Action) error {
	switch action {
	case model.ActionShowExample, model.ActionGenerateSyllabus, model.ActionRestart:
		return nil
	case "":
		return errors.New("action cannot be empty")
	default:
		return errors.New("unknown action")
	}
}
