package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsNopLogger(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	// Must be safe to use before Init.
	l.Log.Info("no-op")
}

func TestInit(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"Info", false},
		{"warn", false},
		{"error", false},
		{"nonsense", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New()
			err := l.Init(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, l.Log)
			_ = l.Log.Sync()
		})
	}
}
