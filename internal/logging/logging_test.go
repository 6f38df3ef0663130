package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(LogConfig{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	logger.Info().Msg("quiet")
	logger.Warn().Str("path", "/marketdata/quotes").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "/marketdata/quotes")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tdam.log")

	logger, closer, err := New(LogConfig{Level: "debug", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	logger.Debug().Str("attempt", "first").Msg("request")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"attempt":"first"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestNew_NoWriters(t *testing.T) {
	logger, closer, err := New(LogConfig{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, closer)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestNew_BadLevel(t *testing.T) {
	_, closer, err := New(LogConfig{Level: "chatty", Console: &bytes.Buffer{}})
	assert.Error(t, err)
	assert.NotNil(t, closer)
}
