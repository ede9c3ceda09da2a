// Package inference wraps the language-model backend behind the three
// operations the conversation needs. Every operation degrades to a documented
// fallback instead of returning an error.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/llm"
	"github.com/gforma/lead-assistant/pkg/logger"
	"github.com/gforma/lead-assistant/pkg/metrics"
)

// Operation names used in logs, spans and metrics.
const (
	OpDeduceSector     = "deduce_sector"
	OpAnalyzeChallenge = "analyze_challenge"
	OpGenerateSyllabus = "generate_syllabus"
)

// Outcomes recorded per operation.
const (
	outcomeOK          = "ok"
	outcomeFallback    = "fallback"
	outcomeUnavailable = "unavailable"
)

// Default values substituted when the backend cannot help.
const (
	FallbackDepartment     = "General"
	SyllabusMissingKey     = "Error: API Key faltante."
	SyllabusBackendError   = "Error al generar temario."
	SyllabusEmptyResponse  = "No se pudo generar el temario."
	defaultTimeout         = 30 * time.Second
	syllabusMaxTokens      = 1024
	classificationMaxToken = 256
)

var errEmptyResponse = errors.New("inference: empty response")

// ChallengeAnalysis is the structured reading of a visitor's training need.
// Department and Challenge are nil when the backend could not extract them.
type ChallengeAnalysis struct {
	Department *string `json:"department"`
	Challenge  *string `json:"challenge"`
	IsVague    bool    `json:"isVague"`
}

// Gateway implements the inference operations on top of an llm.Client.
// A nil client means no credential is configured.
type Gateway struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
	tracer  trace.Tracer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(g *Gateway) {
		g.model = strings.TrimSpace(model)
	}
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a gateway. client may be nil.
func NewGateway(client llm.Client, opts ...Option) *Gateway {
	g := &Gateway{
		client:  client,
		timeout: defaultTimeout,
		logger:  logger.Global(),
		tracer:  otel.Tracer("github.com/gforma/lead-assistant/internal/inference"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether a backend is configured.
func (g *Gateway) Available() bool {
	return g.client != nil
}

// DeduceSector asks the backend for the sector of a company. It returns false
// when the backend answers the UNKNOWN sentinel, answers nothing, fails or
// is not configured.
func (g *Gateway) DeduceSector(ctx context.Context, companyName string) (string, bool) {
	ctx, finish := g.begin(ctx, OpDeduceSector)

	if g.client == nil {
		finish(outcomeUnavailable, nil)
		return "", false
	}

	text, err := g.complete(ctx, &llm.CompletionRequest{
		Model:     g.model,
		Messages:  []llm.ChatMessage{{Role: llm.RoleUser, Content: sectorPrompt(companyName)}},
		MaxTokens: classificationMaxToken,
	})
	if err != nil {
		finish(outcomeFallback, err)
		return "", false
	}

	sector := normalizeSector(text)
	if sector == "" || sector == unknownSector {
		finish(outcomeOK, nil)
		return "", false
	}

	finish(outcomeOK, nil)
	return sector, true
}

// AnalyzeChallenge extracts department and challenge from free text.
//
// A transport error or an unparseable answer yields {IsVague: false,
// Challenge: userText, Department: "General"} so the conversation keeps
// moving. Without a credential the analysis is empty and the caller's own
// defaults apply. An empty answer yields {IsVague: true}, which makes the
// engine ask again.
func (g *Gateway) AnalyzeChallenge(ctx context.Context, userText string) ChallengeAnalysis {
	ctx, finish := g.begin(ctx, OpAnalyzeChallenge)

	if g.client == nil {
		finish(outcomeUnavailable, nil)
		return ChallengeAnalysis{}
	}

	text, err := g.complete(ctx, &llm.CompletionRequest{
		Model:          g.model,
		Messages:       []llm.ChatMessage{{Role: llm.RoleUser, Content: challengePrompt(userText)}},
		MaxTokens:      classificationMaxToken,
		ResponseSchema: challengeSchema,
	})
	if errors.Is(err, errEmptyResponse) {
		finish(outcomeFallback, err)
		return ChallengeAnalysis{IsVague: true}
	}
	if err != nil {
		finish(outcomeFallback, err)
		return heuristicAnalysis(userText)
	}

	analysis, err := parseChallengeAnalysis(text)
	if err != nil {
		finish(outcomeFallback, err)
		return heuristicAnalysis(userText)
	}

	finish(outcomeOK, nil)
	return analysis
}

// GenerateSyllabus drafts a five-item curriculum. On failure it returns a
// user-facing placeholder rather than an error.
func (g *Gateway) GenerateSyllabus(ctx context.Context, company, sector, department, challenge string) string {
	ctx, finish := g.begin(ctx, OpGenerateSyllabus)

	if g.client == nil {
		finish(outcomeUnavailable, nil)
		return SyllabusMissingKey
	}

	text, err := g.complete(ctx, &llm.CompletionRequest{
		Model:       g.model,
		Messages:    []llm.ChatMessage{{Role: llm.RoleUser, Content: syllabusPrompt(company, sector, department, challenge)}},
		MaxTokens:   syllabusMaxTokens,
		Temperature: 0.4,
	})
	if errors.Is(err, errEmptyResponse) {
		finish(outcomeFallback, err)
		return SyllabusEmptyResponse
	}
	if err != nil {
		finish(outcomeFallback, err)
		return SyllabusBackendError
	}

	finish(outcomeOK, nil)
	return text
}

// complete performs one bounded backend call and returns the trimmed text.
func (g *Gateway) complete(ctx context.Context, req *llm.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errEmptyResponse
	}
	if resp.TokensIn > 0 || resp.TokensOut > 0 {
		metrics.RecordTokens(resp.Model, resp.TokensIn, resp.TokensOut)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// begin opens a span and returns a function that records the outcome.
func (g *Gateway) begin(ctx context.Context, op string) (context.Context, func(outcome string, err error)) {
	start := time.Now()
	ctx, span := g.tracer.Start(ctx, "inference."+op)
	span.SetAttributes(attribute.String("inference.operation", op))
	if g.client != nil {
		span.SetAttributes(attribute.String("llm.provider", g.client.Name()))
	}

	return ctx, func(outcome string, err error) {
		span.SetAttributes(attribute.String("inference.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		metrics.RecordInference(op, outcome, time.Since(start).Seconds())

		switch outcome {
		case outcomeFallback:
			g.logger.Warn("inference fallback",
				zap.String("operation", op),
				zap.Error(err),
			)
		case outcomeUnavailable:
			g.logger.Debug("inference backend not configured", zap.String("operation", op))
		}
	}
}

func heuristicAnalysis(userText string) ChallengeAnalysis {
	department := FallbackDepartment
	challenge := userText
	return ChallengeAnalysis{
		Department: &department,
		Challenge:  &challenge,
		IsVague:    false,
	}
}

// rawAnalysis mirrors ChallengeAnalysis with isVague optional so a missing
// required field can be told apart from false.
type rawAnalysis struct {
	Department *string `json:"department"`
	Challenge  *string `json:"challenge"`
	IsVague    *bool   `json:"isVague"`
}

func parseChallengeAnalysis(text string) (ChallengeAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return ChallengeAnalysis{}, err
	}
	if raw.IsVague == nil {
		return ChallengeAnalysis{}, errors.New("inference: isVague missing from response")
	}
	return ChallengeAnalysis{
		Department: nonEmpty(raw.Department),
		Challenge:  nonEmpty(raw.Challenge),
		IsVague:    *raw.IsVague,
	}, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func normalizeSector(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Trim(s, "\"'`*")
	return strings.TrimSpace(s)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
