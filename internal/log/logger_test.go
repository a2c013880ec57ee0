package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerComponentAndOperationError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	dash := logger.WithComponent(ComponentDashboard)
	assert.Equal(t, ComponentDashboard, dash.Component())

	dash.OperationError(context.Background(), "summary", "user-1", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "component=dashboard")
	assert.NotContains(t, out, "component=app")
	assert.Contains(t, out, "operation=summary")
	assert.Contains(t, out, "user_id=user-1")
	assert.Contains(t, out, "error=boom")
}
