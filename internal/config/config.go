// Package config provides environment configuration for the lead assistant.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// LLM settings
	LLMProvider      string
	LLMModel         string
	GeminiAPIKey     string
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	LLMAPIKeyParam   string
	AWSRegion        string
	InferenceTimeout time.Duration

	// Catalog
	TeacherCatalogPath string

	// Admin gate
	AdminPassword string
	JWTSecret     string
	JWTExpiration time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORS (empty allows any http or https origin)
	AllowedOrigins []string

	// Sessions
	SessionIdleTTL time.Duration

	// NATS settings (empty URL disables publishing)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// LLM
		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:         getEnv("LLM_MODEL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		LLMAPIKeyParam:   getEnv("LLM_API_KEY_PARAM", ""),
		AWSRegion:        getEnv("AWS_REGION", ""),
		InferenceTimeout: getDurationEnv("INFERENCE_TIMEOUT", 30*time.Second),

		// Catalog
		TeacherCatalogPath: getEnv("TEACHER_CATALOG_PATH", ""),

		// Admin
		AdminPassword: getEnv("ADMIN_PASSWORD", "GForma2026"),
		JWTSecret:     getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 30*time.Minute),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// CORS
		AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),

		// Sessions
		SessionIdleTTL: getDurationEnv("SESSION_IDLE_TTL", 2*time.Hour),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("PORT cannot be empty")
	}
	switch c.LLMProvider {
	case "gemini", "anthropic", "openai":
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider)
	}
	if c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD cannot be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if c.RateLimitRequests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.InferenceTimeout <= 0 {
		return errors.New("INFERENCE_TIMEOUT must be > 0")
	}
	return nil
}

// ProviderAPIKey returns the credential configured for the selected provider.
func (c *Config) ProviderAPIKey() string {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
