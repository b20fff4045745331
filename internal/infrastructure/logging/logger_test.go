package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func fileLogger(t *testing.T, cfg Config) (*Logger, func() string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "bridge.log")
	cfg.OutputPaths = []string{out}
	logger, err := New(cfg)
	require.NoError(t, err)
	return logger, func() string {
		_ = logger.Sync()
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return string(data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestFromLevel(t *testing.T) {
	logger := FromLevel("warn", false)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger = FromLevel("loud", true)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "invalid level falls back to the development default")
}

func TestProductionWritesJSON(t *testing.T) {
	logger, read := fileLogger(t, Config{Level: "info", Fields: map[string]string{"service": "webbridge"}})

	logger.Component("dispatch").Info("Binding call", zap.String("binding", "add"))

	out := read()
	assert.Contains(t, out, `"logger":"dispatch"`)
	assert.Contains(t, out, `"binding":"add"`)
	assert.Contains(t, out, `"message":"Binding call"`)
	assert.Contains(t, out, `"service":"webbridge"`)
}

func TestSetLevelReachesChildren(t *testing.T) {
	logger, read := fileLogger(t, Config{Level: "warn"})
	child := logger.Component("ws")

	child.Info("hidden")
	require.NoError(t, logger.SetLevel("debug"))
	child.Debug("shown")

	out := read()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "shown"))
	assert.Equal(t, zapcore.DebugLevel, logger.Level().Level())

	assert.Error(t, logger.SetLevel("loud"))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Component("x").Info("discarded") })
}
