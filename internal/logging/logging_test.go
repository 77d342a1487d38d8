package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Format: "json", Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug().Str("operation", "convert").Msg("run started")
	out := buf.String()
	assert.Contains(t, out, `"operation":"convert"`)
	assert.Contains(t, out, `"message":"run started"`)
	assert.Contains(t, out, `"level":"debug"`)
}

func TestNewConsoleWithoutTTYHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "console", Console: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewAutoFormatWritesJSONWhenNotATerminal(t *testing.T) {
	for _, format := range []string{"auto", ""} {
		var buf bytes.Buffer
		logger, _, err := New(Options{Format: format, Console: &buf})
		require.NoError(t, err)

		logger.Info().Str("operation", "merge").Msg("hello")
		assert.Contains(t, buf.String(), `"operation":"merge"`, format)
		assert.Contains(t, buf.String(), `"message":"hello"`, format)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	require.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Format: "json", Console: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestFileSinkAppendsAndTrims(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	var seed strings.Builder
	for i := range 20 {
		fmt.Fprintf(&seed, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(seed.String()), 0o644))

	var console bytes.Buffer
	logger, closer, err := New(Options{Format: "json", Console: &console, Dir: dir, MaxLines: 5})
	require.NoError(t, err)
	logger.Info().Msg("appended")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "line 15", lines[0])
	assert.Contains(t, lines[5], "appended")
	assert.Contains(t, console.String(), "appended")
}

func TestTrimLogFileLeavesShortFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.log")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))
	require.NoError(t, trimLogFile(path, 10))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))

	require.NoError(t, trimLogFile(filepath.Join(t.TempDir(), "missing.log"), 10))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithContext(context.Background(), logger)
	FromContext(ctx).Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")
}
