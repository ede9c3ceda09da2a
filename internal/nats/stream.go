package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gforma/lead-assistant/internal/model"
)

const (
	// StreamName is the name of the leads stream.
	StreamName = "LEADS"

	// SubjectPrefix is the prefix for all lead subjects.
	SubjectPrefix = "leads"

	// LeadCapturedSubject carries every captured lead.
	LeadCapturedSubject = SubjectPrefix + ".captured"
)

// publisher is the subset of jetstream.JetStream used for publishing.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
	js     publisher
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client, js: client.JetStream()}
}

// EnsureStream ensures the leads stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Captured training leads and conversation events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for a conversation event.
func EventSubject(sessionID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.events.%s.%s", SubjectPrefix, sessionID, eventType)
}

// PublishLead publishes a captured lead. The lead id is used as the message
// id so JetStream drops duplicates.
func (m *StreamManager) PublishLead(ctx context.Context, lead *model.Lead) (uint64, error) {
	data, err := json.Marshal(lead)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal lead: %w", err)
	}

	ack, err := m.js.Publish(ctx, LeadCapturedSubject, data, jetstream.WithMsgID(lead.ID))
	if err != nil {
		return 0, fmt.Errorf("failed to publish lead: %w", err)
	}

	return ack.Sequence, nil
}

// PublishEvent publishes a conversation event.
func (m *StreamManager) PublishEvent(ctx context.Context, event *model.ConversationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := m.js.Publish(ctx, EventSubject(event.SessionID, event.Type), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
