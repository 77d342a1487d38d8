package main

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fremen-fi/audioshell/internal/history"
	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/operation"
	"github.com/fremen-fi/audioshell/internal/worker"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// isolate points the per-user config directory at a temp dir.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("AppData", filepath.Join(home, "AppData"))
	t.Setenv("AUDIOSHELL_DEV", "")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "audioshell dev\n", out)
}

func TestConfigInitShowAndPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "config", "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--path", path, "--overwrite")
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[worker]")
	assert.Contains(t, out, "error_marker = 'Worker Error: '")

	out, err = execute(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestHistoryEmptyNamesDatabase(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "config.toml"), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No operations recorded yet in ")
	assert.Contains(t, out, "history.db")
}

func TestRunRejectsIncompleteForm(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh as the worker")
	}
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := execute(t, "config", "init", "--path", path)
	require.NoError(t, err)

	// sh stands in for the worker so resolving it succeeds everywhere the
	// test suite runs.
	t.Setenv("AUDIOSHELL_WORKER", "sh")
	_, err = execute(t, "--config", path, "run", "--operation", "merge")
	var verr *operation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Missing, "input path")
}

func TestRelayEvents(t *testing.T) {
	color.NoColor = true
	events := make(chan launcher.Event, 5)
	events <- launcher.Event{Kind: launcher.EventStarted}
	events <- launcher.Event{Kind: launcher.EventOutput, Chunk: worker.Chunk{Stream: worker.Stdout, Text: "MERGE OPERATION STARTED...\n"}}
	events <- launcher.Event{Kind: launcher.EventOutput, Chunk: worker.Chunk{Stream: worker.Stderr, Text: "Worker Error: clipping\n"}}
	events <- launcher.Event{Kind: launcher.EventOutput, Chunk: worker.Chunk{Stream: worker.Stdout, Text: "done\n"}}
	events <- launcher.Event{Kind: launcher.EventFinished, Outcome: launcher.Outcome{ExitCode: 1}}
	close(events)

	var stdout, stderr bytes.Buffer
	outcome := relayEvents(events, &stdout, &stderr)

	assert.Equal(t, "MERGE OPERATION STARTED...\ndone\n", stdout.String())
	assert.Equal(t, "Worker Error: clipping\n", stderr.String())
	assert.False(t, outcome.Success)
	assert.Equal(t, 1, outcome.ExitCode)
}

func TestRenderHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []history.Entry{
		{
			ID:         "0b8e5a52-9c4e-4d1e-9a52-2f1f3c1d7a10",
			Request:    operation.Request{InputPath: "/home/ada/takes/day1/take1.wav", OutputPath: "/home/ada/takes/day1", Operation: operation.Split},
			StartedAt:  now.Add(-2 * time.Hour),
			FinishedAt: now.Add(-2*time.Hour + 1500*time.Millisecond),
			Finished:   true,
			Success:    true,
			Transcript: strings.Repeat("x", 2048),
		},
		{
			ID:        "f00d",
			Request:   operation.Request{InputPath: "/in", OutputPath: "/out", Operation: operation.Merge},
			StartedAt: now.Add(-time.Minute),
		},
	}

	out := renderHistory(entries, now)
	assert.Contains(t, out, "0b8e5a52")
	assert.NotContains(t, out, "0b8e5a52-9c4e")
	assert.Contains(t, out, "SPLIT")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "running")
}

func TestPrintEntry(t *testing.T) {
	var out bytes.Buffer
	started := time.Now().Add(-time.Minute)
	printEntry(&out, history.Entry{
		ID:         "abc",
		Request:    operation.Request{InputPath: "/in.wav", OutputPath: "/out", Operation: operation.Convert},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Finished:   true,
		ExitCode:   2,
		Transcript: "Worker Error: Invalid operation",
	})
	text := out.String()
	assert.Contains(t, text, "Status:     failed")
	assert.Contains(t, text, "Exit code:  2 (unknown operation)")
	assert.True(t, strings.HasSuffix(text, "Worker Error: Invalid operation\n"))
}
