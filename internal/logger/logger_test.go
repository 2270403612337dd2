package logger

import (
	"context"
	"devconnector/internal/config"
	"devconnector/internal/reqctx"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("whatever"))
}

func TestInitLogger_CreatesLogDir(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLogger(&config.Config{LogDir: dir, LogLevel: "info"}))

	_, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.NotNil(t, Log)
}

func TestWithCtx_AddsRequestFields(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	core, logs := observer.New(zapcore.InfoLevel)
	Log = zap.New(core)

	uid := uuid.New()
	ctx := reqctx.WithRequestID(context.Background(), "rid-1")
	ctx = reqctx.WithUserID(ctx, uid)

	WithCtx(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, uid.String(), fields["user_id"])
}
