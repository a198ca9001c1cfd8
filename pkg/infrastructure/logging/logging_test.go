package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/vsinha/jvalloc/pkg/infrastructure/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     config.LoggingConfig
		verbose bool
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"json info", config.LoggingConfig{Level: "info", Format: "json"}, false, zapcore.InfoLevel, zapcore.DebugLevel},
		{"console warn", config.LoggingConfig{Level: "warn", Format: "console"}, false, zapcore.WarnLevel, zapcore.InfoLevel},
		{"verbose forces debug", config.LoggingConfig{Level: "error", Format: "json"}, true, zapcore.DebugLevel, zapcore.InvalidLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.cfg, tc.verbose)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.enabled))
			if tc.muted != zapcore.InvalidLevel {
				assert.False(t, logger.Core().Enabled(tc.muted))
			}
		})
	}
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud", Format: "json"}, false)
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(config.LoggingConfig{Level: "info", Format: "xml"}, false)
	assert.ErrorContains(t, err, "invalid log format")
}
