package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetupProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Env: "production", Output: &buf})

	LoggerWrapper().Debug("hidden")
	LoggerWrapper().Info("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "debug", Format: "text", Output: &buf})

	ctx := With(context.Background(), "trace_id", "t-1")
	From(ctx).Info("hello")

	assert.Contains(t, buf.String(), "trace_id=t-1")
}

func TestNewContextOverridesProcessLogger(t *testing.T) {
	var process, scoped bytes.Buffer
	Setup(Options{Level: "info", Format: "text", Output: &process})
	own := slog.New(slog.NewTextHandler(&scoped, nil))

	ctx := With(NewContext(context.Background(), own), "user_id", "u-1")
	From(ctx).Info("scoped")
	From(context.Background()).Info("global")

	assert.Contains(t, scoped.String(), "user_id=u-1")
	assert.NotContains(t, scoped.String(), "global")
	assert.Contains(t, process.String(), "global")
	assert.NotContains(t, process.String(), "scoped")
}
