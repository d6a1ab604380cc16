package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &errOut)

	logger.Debug("hidden")
	logger.Info("tick", Fields{"chord": "Am"})
	logger.Error(errors.New("boom"), "decode failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[INFO] tick chord=Am")
	assert.Contains(t, errOut.String(), "[ERROR] decode failed: boom")
}

func TestWithFieldsSharesLevel(t *testing.T) {
	var out bytes.Buffer
	parent := NewDefaultLoggerWithWriters(&out, &out)
	child := parent.WithFields(Fields{"component": "session"})

	parent.SetLevel(DebugLevel)
	child.Debug("visible")

	assert.Contains(t, out.String(), "[DEBUG] visible component=session")
}

func TestWithContextPicksUpFields(t *testing.T) {
	var out bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &out)

	ctx := ContextWithFields(context.Background(), Fields{"session": "a"})
	ctx = ContextWithFields(ctx, Fields{"frame": 3})
	logger.WithContext(ctx).Info("pushed")

	assert.Contains(t, out.String(), "frame=3 session=a")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetGlobalLoggerNilInstallsNoOp(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
