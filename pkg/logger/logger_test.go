package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		t.Run(mode, func(t *testing.T) {
			l, err := New(mode, "info")
			require.NoError(t, err)
			require.NotNil(t, l.SugaredLogger)
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("dev", "loud")
	require.Error(t, err)
}

func TestLogger_WithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "catalog")

	l.Warn("skipping record", "path", "/lib/arm.json")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "skipping record", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "catalog", fields["component"])
	assert.Equal(t, "/lib/arm.json", fields["path"])
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.Debug("d")
	l.Info("i", "k", 1)
	l.Warn("w")
	l.Error("e")
	l.Sync()
}
