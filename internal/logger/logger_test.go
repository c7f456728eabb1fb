package logger

import (
	"bytes"
	"context"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want charmlog.Level
	}{
		{"debug", charmlog.DebugLevel},
		{"INFO", charmlog.InfoLevel},
		{"warn", charmlog.WarnLevel},
		{"warning", charmlog.WarnLevel},
		{"error", charmlog.ErrorLevel},
		{"bogus", charmlog.InfoLevel},
		{"", charmlog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: "info", Output: &buf})
		ctx := ContextWithLogger(context.Background(), l)

		got := FromContext(ctx)
		require.Same(t, l, got)

		got.Info("hello", "stage", "retrieval")
		assert.Contains(t, buf.String(), "hello")
		assert.Contains(t, buf.String(), "stage=retrieval")
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("ignores wrong value type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ctxKey{}, "not a logger")
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Output: &buf, JSON: true})
	l.Debug("stage finished", "elapsed_ms", 12)

	assert.Contains(t, buf.String(), `"msg":"stage finished"`)
	assert.Contains(t, buf.String(), `"elapsed_ms":12`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "warn", Output: &buf})
	l.Info("dropped")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
