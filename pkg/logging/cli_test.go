package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandlerLevels(t *testing.T) {
	tests := map[string]struct {
		handlerLevel slog.Level
		log          func(*slog.Logger)
		logged       bool
		color        string
	}{
		"info logged green":   {slog.LevelInfo, func(l *slog.Logger) { l.Info("m") }, true, colorGreen},
		"warn logged yellow":  {slog.LevelInfo, func(l *slog.Logger) { l.Warn("m") }, true, colorYellow},
		"error logged red":    {slog.LevelInfo, func(l *slog.Logger) { l.Error("m") }, true, colorRed},
		"debug filtered":      {slog.LevelInfo, func(l *slog.Logger) { l.Debug("m") }, false, ""},
		"debug level passes":  {slog.LevelDebug, func(l *slog.Logger) { l.Debug("m") }, true, colorGreen},
		"error level filters": {slog.LevelError, func(l *slog.Logger) { l.Info("m") }, false, ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewCLIHandler(&buf, tc.handlerLevel))
			tc.log(logger)

			if !tc.logged {
				assert.Zero(t, buf.Len())
				return
			}
			assert.Contains(t, buf.String(), "m")
			assert.Contains(t, buf.String(), tc.color)
			assert.Contains(t, buf.String(), colorReset)
		})
	}
}

func TestCLIHandlerAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Info("scored", "rows", 24, "mean", 0.31)

	out := buf.String()
	assert.Contains(t, out, "scored:")
	assert.Contains(t, out, "rows=24")
	assert.Contains(t, out, "mean=0.31")
}

func TestCLIHandlerGroupPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo)).WithGroup("server")

	logger.Info("started")
	assert.Contains(t, buf.String(), "[server] started")
}

func TestCLIHandlerEmptyGroup(t *testing.T) {
	h := NewCLIHandler(&bytes.Buffer{}, slog.LevelInfo)
	assert.Equal(t, slog.Handler(h), h.WithGroup(""))
}

func TestNewCLILogger(t *testing.T) {
	require.NotNil(t, NewCLILogger("debug"))
	require.NotNil(t, NewCLILogger("nonsense"))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"DEBUG":    slog.LevelDebug,
		"  warn  ": slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"info":     slog.LevelInfo,
		"":         slog.LevelInfo,
		"whatever": slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLogLevel(input), input)
	}
}
