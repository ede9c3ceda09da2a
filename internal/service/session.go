package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/conversation"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/model"
	"github.com/gforma/lead-assistant/pkg/logger"
	"github.com/gforma/lead-assistant/pkg/metrics"
)

// SessionService owns one conversation engine per chat session.
type SessionService struct {
	gateway   conversation.Gateway
	directory conversation.Matcher
	sink      lead.Sink
	events    conversation.EventPublisher
	logger    *logger.Logger
	idleTTL   time.Duration

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	engine    *conversation.Engine
	createdAt time.Time
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithEvents publishes conversation events from every session.
func WithEvents(p conversation.EventPublisher) SessionOption {
	return func(s *SessionService) {
		s.events = p
	}
}

// WithIdleTTL sets how long a session may stay untouched before Sweep drops it.
func WithIdleTTL(ttl time.Duration) SessionOption {
	return func(s *SessionService) {
		s.idleTTL = ttl
	}
}

// NewSessionService creates a new session service.
func NewSessionService(
	gateway conversation.Gateway,
	directory conversation.Matcher,
	sink lead.Sink,
	log *logger.Logger,
	opts ...SessionOption,
) *SessionService {
	s := &SessionService{
		gateway:   gateway,
		directory: directory,
		sink:      sink,
		logger:    log,
		idleTTL:   2 * time.Hour,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session and returns its greeting.
func (s *SessionService) Create(ctx context.Context) (*model.SessionResponse, error) {
	id := uuid.Must(uuid.NewV7()).String()

	opts := []conversation.Option{conversation.WithLogger(s.logger)}
	if s.events != nil {
		opts = append(opts, conversation.WithEventPublisher(s.events))
	}

	sess := &session{
		engine:    conversation.New(id, s.gateway, s.directory, s.sink, opts...),
		createdAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	s.logger.Info("session created", zap.String("session_id", id))

	return describe(sess), nil
}

// Get returns the session's step, thinking flag and transcript.
func (s *SessionService) Get(ctx context.Context, id string) (*model.SessionResponse, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return describe(sess), nil
}

// Delete drops a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, exists := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	metrics.SessionsActive.Set(float64(count))
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Send submits visitor text to a session.
func (s *SessionService) Send(ctx context.Context, id string, req *model.SendMessageRequest) (*model.TurnResponse, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	msgs, err := sess.engine.Submit(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	return &model.TurnResponse{Messages: msgs, Step: sess.engine.Step()}, nil
}

// Act fires an action on a session.
func (s *SessionService) Act(ctx context.Context, id string, req *model.ActionRequest) (*model.TurnResponse, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	msgs, err := sess.engine.Act(ctx, req.Action)
	if err != nil {
		return nil, err
	}

	return &model.TurnResponse{Messages: msgs, Step: sess.engine.Step()}, nil
}

// Sweep drops sessions idle since before now minus the idle TTL and returns
// how many were removed.
func (s *SessionService) Sweep(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.engine.Thinking() {
			continue
		}
		if sess.engine.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		metrics.SessionsActive.Set(float64(count))
		s.logger.Info("idle sessions swept", zap.Int("removed", removed), zap.Int("remaining", count))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func describe(sess *session) *model.SessionResponse {
	return &model.SessionResponse{
		ID:        sess.engine.ID(),
		Step:      sess.engine.Step(),
		Thinking:  sess.engine.Thinking(),
		Messages:  sess.engine.Messages(),
		CreatedAt: sess.createdAt,
	}
}
