package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewModes(t *testing.T) {
	tests := []struct {
		mode    string
		debugOn bool
		warnOn  bool
		infoOn  bool
	}{
		{"dev", true, true, true},
		{"", true, true, true},
		{"quiet", false, true, false},
		{"prod", false, true, true},
		{"off", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			l, err := New(tt.mode)
			require.NoError(t, err)
			core := l.SugaredLogger.Desugar().Core()
			assert.Equal(t, tt.debugOn, core.Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.infoOn, core.Enabled(zapcore.InfoLevel))
			assert.Equal(t, tt.warnOn, core.Enabled(zapcore.WarnLevel))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))

	// Nop loggers accept calls without output.
	l.With("k", "v").Info("hello", "n", 1)
	l.Sync()
}
