package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "persona.log")

	l, err := New("info", path)
	require.NoError(t, err)

	l.Info("session created", "id", "20250101_120000")
	l.Debug("not written at info level")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session created")
	assert.Contains(t, string(data), "20250101_120000")
	assert.False(t, strings.Contains(string(data), "not written"))
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New("loud", "")
	assert.Error(t, err)
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "session")

	l.Warn("write failed", "path", "/tmp/x")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "write failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "session", fields["component"])
	assert.Equal(t, "/tmp/x", fields["path"])
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.Error("ignored", "k", 1)
	l.With("a", "b").Info("ignored")
}
