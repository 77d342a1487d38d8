package worker

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/fremen-fi/audioshell/platform"
)

// Stream identifies which pipe a chunk came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Chunk is one line of worker output, newline included when the worker
// wrote one. Stderr chunks carry the error marker prefix.
type Chunk struct {
	Stream Stream
	Text   string
}

// Exit is how the worker process ended.
type Exit struct {
	Code int
}

func (e Exit) Success() bool { return e.Code == 0 }

// ErrCanceled is returned by Run when ctx ended before the worker exited.
var ErrCanceled = errors.Base("worker canceled")

// Executor runs the worker and forwards its output. onChunk is never called
// concurrently and never after Run returns. A nonzero exit is reported in
// Exit, not as an error; errors mean the worker could not be started, was
// canceled, or could not be reaped.
type Executor interface {
	Run(ctx context.Context, cmd Command, args []string, onChunk func(Chunk)) (Exit, error)
}

// ProcessExecutor runs the worker as a child process.
type ProcessExecutor struct {
	ErrorMarker string
	// WaitDelay bounds how long Wait keeps pipes open after a cancel.
	WaitDelay time.Duration
}

func (p ProcessExecutor) Run(ctx context.Context, command Command, args []string, onChunk func(Chunk)) (Exit, error) {
	cmd := exec.CommandContext(ctx, command.Path, args...) //nolint:gosec
	platform.Prepare(cmd)
	cmd.Cancel = func() error { return platform.Terminate(cmd) }
	cmd.WaitDelay = p.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Exit{Code: -1}, errors.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Exit{Code: -1}, errors.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Exit{Code: -1}, errors.Errorf("start worker: %w", err)
	}

	var mu sync.Mutex
	emit := func(c Chunk) {
		mu.Lock()
		defer mu.Unlock()
		onChunk(c)
	}

	var g errgroup.Group
	g.Go(func() error { return relay(stdout, Stdout, "", emit) })
	g.Go(func() error { return relay(stderr, Stderr, p.ErrorMarker, emit) })
	readErr := g.Wait()
	waitErr := cmd.Wait()

	return exitOf(ctx, cmd.ProcessState, waitErr, readErr)
}

// exitOf turns the result of Wait into an Exit. A worker that exited
// successfully keeps that status even if ctx was cancelled before it was
// reaped.
func exitOf(ctx context.Context, state *os.ProcessState, waitErr, readErr error) (Exit, error) {
	switch {
	case state != nil && state.Success():
		if readErr != nil {
			return Exit{Code: 0}, errors.Errorf("read worker output: %w", readErr)
		}
		return Exit{Code: 0}, nil
	case ctx.Err() != nil:
		return Exit{Code: -1}, errors.WrapWith(ctx.Err(), ErrCanceled)
	case state != nil:
		return Exit{Code: state.ExitCode()}, nil
	default:
		return Exit{Code: -1}, errors.Errorf("wait worker: %w", waitErr)
	}
}

// relay forwards r line by line, flushing a trailing partial line at EOF.
func relay(r io.Reader, stream Stream, prefix string, emit func(Chunk)) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			emit(Chunk{Stream: stream, Text: prefix + line})
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return nil
		}
		return err
	}
}
