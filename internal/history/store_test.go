package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/fremen-fi/audioshell/internal/history"
	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/operation"
	"github.com/fremen-fi/audioshell/internal/worker"
)

type splitExecutor struct{}

func (splitExecutor) Run(_ context.Context, _ worker.Command, _ []string, onChunk func(worker.Chunk)) (worker.Exit, error) {
	onChunk(worker.Chunk{Stream: worker.Stdout, Text: "split done\n"})
	return worker.Exit{Code: 0}, nil
}

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRun(id string, started time.Time) launcher.Run {
	return launcher.Run{
		ID:        id,
		StartedAt: started,
		Request: operation.Request{
			InputPath:  "/audio/in.wav",
			OutputPath: "/audio/out",
			Operation:  operation.Convert,
		},
	}
}

func TestBeginAndComplete(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	started := time.UnixMilli(1_700_000_000_000)
	run := newRun("6f1c2a9e-0000-4000-8000-000000000001", started)

	require.NoError(t, store.Begin(ctx, run))
	entry, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, entry.Finished)
	assert.Equal(t, "running", entry.Status())
	assert.Equal(t, run.Request, entry.Request)
	assert.True(t, started.Equal(entry.StartedAt))

	outcome := launcher.Outcome{RunID: run.ID, ExitCode: 1, Duration: 3 * time.Second}
	require.NoError(t, store.Complete(ctx, run, outcome, "Worker Error: Error: unsupported sample rate\n"))

	entry, err = store.Get(ctx, "6f1c2a9e")
	require.NoError(t, err)
	assert.True(t, entry.Finished)
	assert.False(t, entry.Success)
	assert.Equal(t, 1, entry.ExitCode)
	assert.Equal(t, "failed", entry.Status())
	assert.True(t, started.Add(3*time.Second).Equal(entry.FinishedAt))
	assert.Contains(t, entry.Transcript, "unsupported sample rate")
}

func TestCompleteStoresCancelAndError(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	run := newRun("run-canceled", time.Now())
	require.NoError(t, store.Begin(ctx, run))
	require.NoError(t, store.Complete(ctx, run, launcher.Outcome{
		ExitCode: -1,
		Canceled: true,
		Err:      errors.New("worker canceled"),
	}, ""))

	entry, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, entry.Canceled)
	assert.Equal(t, "canceled", entry.Status())
	assert.Equal(t, "worker canceled", entry.Error)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	base := time.UnixMilli(1_700_000_000_000)
	for i, id := range []string{"a-first", "b-second", "c-third"} {
		run := newRun(id, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Begin(ctx, run))
		require.NoError(t, store.Complete(ctx, run, launcher.Outcome{Success: true}, "done\n"))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c-third", all[0].ID)
	assert.Equal(t, "a-first", all[2].ID)
	assert.Equal(t, "success", all[0].Status())

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, history.ErrNotFound))
	_, err = store.Get(ctx, "")
	assert.True(t, errors.Is(err, history.ErrNotFound))

	require.NoError(t, store.Begin(ctx, newRun("abc-1", time.Now())))
	require.NoError(t, store.Begin(ctx, newRun("abc-2", time.Now())))
	_, err = store.Get(ctx, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestGetMatchesPrefixLiterally(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Begin(ctx, newRun("a_b-1", time.Now())))
	require.NoError(t, store.Begin(ctx, newRun("axb-2", time.Now())))

	entry, err := store.Get(ctx, "a_")
	require.NoError(t, err)
	assert.Equal(t, "a_b-1", entry.ID)

	_, err = store.Get(ctx, "%")
	assert.True(t, errors.Is(err, history.ErrNotFound))
	_, err = store.Get(ctx, "_")
	assert.True(t, errors.Is(err, history.ErrNotFound))
}

func TestStoreAsLauncherRecorder(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	l := launcher.New(worker.Command{Path: "worker"}, launcher.WithExecutor(splitExecutor{}), launcher.WithRecorder(store))

	events, err := l.Submit(ctx, operation.Request{InputPath: "/audio/in.wav", OutputPath: "/audio/out", Operation: operation.Split})
	require.NoError(t, err)
	var runID string
	for ev := range events {
		runID = ev.RunID
	}

	entry, err := store.Get(ctx, runID)
	require.NoError(t, err)
	assert.True(t, entry.Success)
	assert.Equal(t, operation.Split, entry.Request.Operation)
	assert.Equal(t, "split done\n", entry.Transcript)
}
