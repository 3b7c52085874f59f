package log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)

	l, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, l.GetLevel())
}

func TestFieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	child := l.With(Component("sim"))
	child.Info("tick", Int("frame", 3), Float64("altitude", 1.5), Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "sim", ctx["component"])
	assert.Equal(t, int64(3), ctx["frame"])
	assert.Equal(t, 1.5, ctx["altitude"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestWithContextAddsSession(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	l.WithContext(ContextWithSession(context.Background(), "abc")).Warn("hello")
	l.WithContext(context.Background()).Warn("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].ContextMap()["session_id"])
	assert.NotContains(t, entries[1].ContextMap(), "session_id")
}

func TestSetLevelIsShared(t *testing.T) {
	l := NewNop()
	child := l.With(Component("x"))
	l.SetLevel(LevelError)
	assert.Equal(t, LevelError, child.GetLevel())
}
