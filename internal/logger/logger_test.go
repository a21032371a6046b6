package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	log, err := NewLogger("warn", "json", "thermal-monitor")
	require.NoError(t, err)
	defer log.Sync()

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_UnknownLevelFallsBack(t *testing.T) {
	log, err := NewLogger("loud", "json", "")
	require.NoError(t, err)
	defer log.Sync()

	// 无法解析的级别回退到 info
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	log, err := NewLogger("debug", "console", "thermal-monitor")
	require.NoError(t, err)
	defer log.Sync()

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
