package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.With("recording_id", "r-1").Warn(ctx, "wrn")
	log.Error(ctx, "err", "d", "x")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["a"])
	assert.Equal(t, "inf", entries[1].Message)
	assert.Equal(t, "r-1", entries[2].ContextMap()["recording_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(FormatJSON, &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	l, err = New(FormatZap, &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = New("xml", &buf)
	assert.Error(t, err)
}

func TestZapLogger_ContextAttributes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core))

	ctx := ContextWith(context.Background(), "request_id", "req-9")
	log.Info(ctx, "recording created", "recording_id", "r-2")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "r-2", entries[0].ContextMap()["recording_id"])
}
