// Package logger provides structured logging utilities.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every production log line.
const ServiceName = "gforma-lead-assistant"

// EnvDevelopment selects the human-readable console logger.
const EnvDevelopment = "development"

// Logger is a wrapper around zap.Logger.
type Logger struct {
	*zap.Logger
}

// New creates a JSON logger on stdout. Unknown levels fall back to info.
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.InitialFields = map[string]any{"service": ServiceName}

	return build(cfg)
}

// NewDevelopment creates a colored console logger at debug level.
func NewDevelopment() (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	return build(cfg)
}

// ForEnvironment picks the console logger for development and the JSON
// logger everywhere else.
func ForEnvironment(env, level string) (*Logger, error) {
	if env == EnvDevelopment {
		return NewDevelopment()
	}
	return New(level)
}

// NewNop returns a logger that discards everything. Used by tests and the CLI.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func build(cfg zap.Config) (*Logger, error) {
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: z}, nil
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithSession scopes a logger to one chat session.
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.With(zap.String("session_id", sessionID))
}

// WithRequest scopes a logger to one HTTP request.
func (l *Logger) WithRequest(correlationID, remoteAddr string) *Logger {
	return l.With(
		zap.String("correlation_id", correlationID),
		zap.String("remote_addr", remoteAddr),
	)
}

func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

var global = defaultGlobal()

func defaultGlobal() *Logger {
	l, err := ForEnvironment(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		return NewNop()
	}
	return l
}

// Global returns the process-wide logger.
func Global() *Logger {
	return global
}

// SetGlobal replaces the process-wide logger. Call it before starting goroutines.
func SetGlobal(l *Logger) {
	global = l
}
