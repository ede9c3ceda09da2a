package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "gemini", cfg.LLMProvider)
	require.Equal(t, "legacy-key", cfg.GeminiAPIKey)
	require.Equal(t, "legacy-key", cfg.ProviderAPIKey())
	require.Equal(t, 30*time.Second, cfg.InferenceTimeout)
	require.Empty(t, cfg.NATSURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("SESSION_IDLE_TTL", "15m")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.ServerPort)
	require.Equal(t, "openai", cfg.LLMProvider)
	require.Equal(t, "sk-test", cfg.ProviderAPIKey())
	require.Equal(t, 10, cfg.RateLimitRequests)
	require.Equal(t, 15*time.Minute, cfg.SessionIdleTTL)
	require.True(t, cfg.TracingEnabled)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "llama")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "llama")
}

func TestGetHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	require.Equal(t, 3, getIntEnv("X_INT", 3))
	require.False(t, getBoolEnv("X_BOOL", false))
	require.Equal(t, time.Second, getDurationEnv("X_DUR", time.Second))
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("X_LIST", " https://gforma.es, ,http://localhost:5173 ")
	require.Equal(t, []string{"https://gforma.es", "http://localhost:5173"}, getListEnv("X_LIST"))

	t.Setenv("X_LIST", "")
	require.Nil(t, getListEnv("X_LIST"))
}
