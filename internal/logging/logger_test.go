package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enabled zapcore.Level
		off     zapcore.Level
	}{
		{"debug level", "debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn level", "warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"info level", "info", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, "console")
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.off))
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json")
	require.Error(t, err)
}

func TestOrNop(t *testing.T) {
	logger := OrNop(nil)
	require.NotNil(t, logger)
	logger.Info("discarded")
}
