package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(Config{Level: "debug", Format: format})
		require.NoError(t, err)
		require.NotNil(t, l)
		l.Debug("hello")
	}
}

func TestZapLogger_FieldsAndScopes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFromCore(core).Named("issues").With(String("component", "service"))

	l.Debug("dropped")
	l.Info("created",
		Int64("issue_id", 7),
		Float64("score", 61.5),
		Bool("duplicate", false),
		Duration("took", 2*time.Millisecond),
		Any("tags", []string{"a"}),
	)
	l.Error("failed", Err(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "created", first.Message)
	assert.Equal(t, "issues", first.LoggerName)
	ctx := first.ContextMap()
	assert.Equal(t, "service", ctx["component"])
	assert.Equal(t, int64(7), ctx["issue_id"])
	assert.Equal(t, 61.5, ctx["score"])
	assert.Equal(t, false, ctx["duplicate"])
	assert.Equal(t, 2*time.Millisecond, ctx["took"])

	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("x", String("k", "v"))
	assert.Equal(t, l, l.With(Int("n", 1)).Named("y"))
	assert.NoError(t, l.Sync())
}
