package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"defaults to info", Config{}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"json warn", Config{Level: "warn", Format: "json"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{"console debug", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.muted))
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}
