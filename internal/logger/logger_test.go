package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("hidden %d", 1)
	l.Info("hidden too")
	l.Warn("scanner: %s", "slow keg")
	l.Error("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "warn: scanner: slow keg\n")
	assert.Contains(t, out, "error: boom\n")
}

func TestSetVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	l.SetVerbose(false)
	l.Debug("nope")
	assert.Empty(t, buf.String())

	l.SetVerbose(true)
	l.Debug("history: bash has no data")
	assert.Equal(t, "history: bash has no data\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  Level
		valid bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{" warning ", LevelWarn, true},
		{"error", LevelError, true},
		{"quiet", LevelQuiet, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFileLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh.log")
	l := New(nil, LevelInfo)
	require.NoError(t, l.EnableFileLogging(path))

	l.Info("refresh: brew update succeeded")
	l.Debug("filtered")
	l.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "INFO: refresh: brew update succeeded")
}
