package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), "level=%q", in)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	l, err := New("warn")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestGlobal_SetAndGet(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	nop := NewNop()
	SetGlobal(nop)
	require.Same(t, nop, Global())
	require.NotNil(t, nop.WithSession("abc"))
}

func TestForEnvironment(t *testing.T) {
	prod, err := ForEnvironment("production", "error")
	require.NoError(t, err)
	require.False(t, prod.Core().Enabled(zapcore.WarnLevel))

	dev, err := ForEnvironment(EnvDevelopment, "error")
	require.NoError(t, err)
	require.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}
