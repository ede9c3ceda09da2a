// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a provider is constructed without a credential.
var ErrMissingAPIKey = errors.New("llm: API key is required")

// CompletionRequest represents a single-shot completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64

	// ResponseSchema, when set, asks the provider for a JSON object matching
	// the schema. Providers without native schema support fall back to JSON
	// mode plus an instruction carrying the schema.
	ResponseSchema *Schema
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// SchemaType is a JSON schema primitive type.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
)

// Schema is the provider-neutral subset of JSON schema used for structured output.
type Schema struct {
	Name        string             `json:"-"`
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSON renders the schema as JSON text for prompt-based enforcement.
func (s *Schema) JSON() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// schemaInstruction is appended to prompts for providers that cannot enforce
// a schema natively.
func schemaInstruction(s *Schema) string {
	return fmt.Sprintf("Responde únicamente con un objeto JSON válido que cumpla este schema, sin texto adicional: %s", s.JSON())
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a new LLM client based on provider.
func NewClient(ctx context.Context, provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
