// Package conversation implements the scripted lead-capture dialogue: a state
// machine that walks a visitor from company name to contact details.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/inference"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/model"
	"github.com/gforma/lead-assistant/pkg/logger"
	"github.com/gforma/lead-assistant/pkg/metrics"
)

var (
	// ErrBusy is returned while a previous input is still being processed.
	ErrBusy = errors.New("conversation: busy")
	// ErrCompleted is returned for input after the lead has been captured.
	ErrCompleted = errors.New("conversation: completed")
	// ErrActionNotAllowed is returned for an action the current step does not offer.
	ErrActionNotAllowed = errors.New("conversation: action not allowed in current step")
	// ErrEmptyInput is returned for blank visitor text.
	ErrEmptyInput = errors.New("conversation: empty input")
	// ErrUnknownAction is returned for an unrecognized action.
	ErrUnknownAction = errors.New("conversation: unknown action")
)

// Gateway is the inference surface the engine depends on.
type Gateway interface {
	DeduceSector(ctx context.Context, companyName string) (string, bool)
	AnalyzeChallenge(ctx context.Context, userText string) inference.ChallengeAnalysis
	GenerateSyllabus(ctx context.Context, company, sector, department, challenge string) string
}

// Matcher finds a trainer for a training need.
type Matcher interface {
	FindMatch(query string) (model.Teacher, bool)
}

// EventPublisher receives notable conversation events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *model.ConversationEvent) error
}

// Engine owns the state and transcript of one conversation. Reads are safe
// from any goroutine; at most one Submit or Act runs at a time.
type Engine struct {
	id        string
	gateway   Gateway
	directory Matcher
	sink      lead.Sink
	events    EventPublisher
	logger    *logger.Logger

	gate     sync.Mutex
	thinking atomic.Bool

	mu         sync.RWMutex
	state      model.ConversationState
	transcript []model.ChatMessage
	lastActive time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEventPublisher publishes restart and completion events.
func WithEventPublisher(p EventPublisher) Option {
	return func(e *Engine) {
		e.events = p
	}
}

var (
	newMessageID = func() string { return uuid.Must(uuid.NewV7()).String() }
	clock        = time.Now
)

// New creates an engine in the initial step with the greeting already in the
// transcript.
func New(id string, gateway Gateway, directory Matcher, sink lead.Sink, opts ...Option) *Engine {
	e := &Engine{
		id:        id,
		gateway:   gateway,
		directory: directory,
		sink:      sink,
		logger:    logger.Global(),
		state:     model.InitialState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithSession(id)

	greeting := e.botMessage(greetingText)
	greeting.Kind = model.KindOptionsPrompt
	greeting.Options = []string{showExampleOption}
	e.transcript = []model.ChatMessage{greeting}
	e.lastActive = clock()

	return e
}

// ID returns the session id the engine was created with.
func (e *Engine) ID() string {
	return e.id
}

// State returns a copy of the conversation state.
func (e *Engine) State() model.ConversationState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Step returns the current step.
func (e *Engine) Step() model.Step {
	return e.State().Step
}

// Messages returns a copy of the transcript.
func (e *Engine) Messages() []model.ChatMessage {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]model.ChatMessage, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// Thinking reports whether an inference call is in flight.
func (e *Engine) Thinking() bool {
	return e.thinking.Load()
}

// LastActive returns when the engine last accepted input.
func (e *Engine) LastActive() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastActive
}

// Submit processes visitor text and returns the messages it appended to the
// transcript, the visitor's own message first.
func (e *Engine) Submit(ctx context.Context, text string) ([]model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	if !e.gate.TryLock() {
		return nil, ErrBusy
	}
	defer e.gate.Unlock()

	if e.Step() == model.StepCompleted {
		return nil, ErrCompleted
	}

	t := e.beginTurn()
	t.emit(e.userMessage(text))

	switch e.Step() {
	case model.StepInit, model.StepAwaitingCompanyName:
		e.handleCompanyName(ctx, t, text)
	case model.StepAwaitingSectorConfirmation:
		e.handleSectorConfirmation(t, text)
	case model.StepAwaitingSectorManual:
		e.handleSectorManual(t, text)
	case model.StepAwaitingDepartmentAndChallenge:
		e.handleDepartmentAndChallenge(ctx, t, text)
	case model.StepOfferingSyllabus:
		t.emit(e.botMessage(useSyllabusText))
	case model.StepAwaitingContactInfo:
		e.handleContactInfo(ctx, t, text)
	}

	return t.messages, nil
}

// Act fires a non-text action and returns the messages it appended.
func (e *Engine) Act(ctx context.Context, action model.Action) ([]model.ChatMessage, error) {
	switch action {
	case model.ActionShowExample, model.ActionGenerateSyllabus, model.ActionRestart:
	default:
		return nil, ErrUnknownAction
	}

	if !e.gate.TryLock() {
		return nil, ErrBusy
	}
	defer e.gate.Unlock()

	step := e.Step()
	if action == model.ActionRestart {
		return e.restart(ctx), nil
	}
	if step == model.StepCompleted {
		return nil, ErrCompleted
	}

	t := e.beginTurn()
	switch action {
	case model.ActionShowExample:
		if step != model.StepInit {
			return nil, ErrActionNotAllowed
		}
		t.emit(e.userMessage(showExampleUserText))
		t.emit(e.botMessage(exampleText))
	case model.ActionGenerateSyllabus:
		if step != model.StepOfferingSyllabus {
			return nil, ErrActionNotAllowed
		}
		e.handleGenerateSyllabus(ctx, t)
	}

	return t.messages, nil
}

// Restart discards all progress and starts over.
func (e *Engine) Restart(ctx context.Context) ([]model.ChatMessage, error) {
	return e.Act(ctx, model.ActionRestart)
}

func (e *Engine) restart(ctx context.Context) []model.ChatMessage {
	from := e.Step()
	msg := e.botMessage(restartText)

	e.mu.Lock()
	e.state = model.InitialState()
	e.transcript = []model.ChatMessage{msg}
	e.lastActive = clock()
	e.mu.Unlock()

	e.recordTransition(from, model.StepInit)
	e.publish(ctx, model.EventTypeRestarted, string(from))

	return []model.ChatMessage{msg}
}

// turn collects the messages appended by one Submit or Act call.
type turn struct {
	engine   *Engine
	messages []model.ChatMessage
}

func (e *Engine) beginTurn() *turn {
	e.mu.Lock()
	e.lastActive = clock()
	e.mu.Unlock()
	return &turn{engine: e}
}

func (t *turn) emit(msg model.ChatMessage) {
	t.engine.mu.Lock()
	t.engine.transcript = append(t.engine.transcript, msg)
	t.engine.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// update mutates the state under the write lock and records a step change.
func (e *Engine) update(fn func(s *model.ConversationState)) {
	e.mu.Lock()
	from := e.state.Step
	fn(&e.state)
	to := e.state.Step
	e.mu.Unlock()

	if from != to {
		e.recordTransition(from, to)
	}
}

func (e *Engine) recordTransition(from, to model.Step) {
	metrics.RecordTransition(string(from), string(to))
	e.logger.Debug("conversation transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
}

// infer runs fn with the thinking flag raised. The caller's cancellation is
// detached so a dropped client cannot leave the state half-updated; the
// gateway enforces its own timeout.
func (e *Engine) infer(ctx context.Context, fn func(ctx context.Context)) {
	e.thinking.Store(true)
	defer e.thinking.Store(false)
	fn(context.WithoutCancel(ctx))
}

func (e *Engine) publish(ctx context.Context, typ model.EventType, reason string) {
	if e.events == nil {
		return
	}
	event := &model.ConversationEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: e.id,
		Type:      typ,
		Reason:    reason,
		CreatedAt: clock().UTC(),
	}
	if err := e.events.PublishEvent(context.WithoutCancel(ctx), event); err != nil {
		e.logger.Warn("failed to publish conversation event",
			zap.String("event_type", string(typ)),
			zap.Error(err),
		)
	}
}

func (e *Engine) botMessage(text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        newMessageID(),
		Sender:    model.SenderBot,
		Text:      text,
		Kind:      model.KindPlain,
		CreatedAt: clock().UTC(),
	}
}

func (e *Engine) userMessage(text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        newMessageID(),
		Sender:    model.SenderUser,
		Text:      text,
		Kind:      model.KindPlain,
		CreatedAt: clock().UTC(),
	}
}
