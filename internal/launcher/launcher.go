// Package launcher runs one worker operation at a time and relays its
// progress as a stream of events: started, zero or more output chunks, and a
// single terminal finished event.
package launcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/fremen-fi/audioshell/internal/operation"
	"github.com/fremen-fi/audioshell/internal/worker"
)

// ErrBusy is returned by Submit while a run is still active.
var ErrBusy = errors.Base("an operation is already running")

// State is the launcher's position in its Idle -> Running -> Idle cycle.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Recorder persists runs. Errors are logged and never fail a run.
type Recorder interface {
	Begin(ctx context.Context, run Run) error
	Complete(ctx context.Context, run Run, outcome Outcome, transcript string) error
}

// Run identifies an accepted submission.
type Run struct {
	ID        string
	Request   operation.Request
	StartedAt time.Time
}

// Outcome is how a run ended. Success is true only for a zero exit code.
type Outcome struct {
	RunID    string
	Success  bool
	ExitCode int
	Canceled bool
	Err      error
	Duration time.Duration
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithExecutor replaces the process executor, mainly for tests.
func WithExecutor(exec worker.Executor) Option {
	return func(l *Launcher) {
		if exec != nil {
			l.exec = exec
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Launcher) { l.log = logger }
}

func WithRecorder(rec Recorder) Option {
	return func(l *Launcher) { l.rec = rec }
}

// WithTranscriptLimit caps the bytes of output kept for logs and history.
// Zero keeps nothing; a negative limit keeps everything.
func WithTranscriptLimit(n int) Option {
	return func(l *Launcher) { l.transcriptLimit = n }
}

// WithBuffer sets the event channel buffer size.
func WithBuffer(n int) Option {
	return func(l *Launcher) {
		if n >= 0 {
			l.buffer = n
		}
	}
}

// Launcher owns the single worker slot of a window.
type Launcher struct {
	cmd             worker.Command
	exec            worker.Executor
	log             zerolog.Logger
	rec             Recorder
	transcriptLimit int
	buffer          int

	mu     sync.Mutex
	state  State
	active *Run
	cancel context.CancelFunc
}

// New constructs a launcher for the resolved worker command.
func New(cmd worker.Command, opts ...Option) *Launcher {
	l := &Launcher{
		cmd:             cmd,
		exec:            worker.ProcessExecutor{},
		log:             zerolog.Nop(),
		transcriptLimit: 256 * 1024,
		buffer:          64,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports whether a run is active.
func (l *Launcher) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Active returns the current run, if any.
func (l *Launcher) Active() (Run, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return Run{}, false
	}
	return *l.active, true
}

// Submit validates req and, if no run is active, starts the worker. The
// returned channel yields EventStarted, any number of EventOutput and exactly
// one EventFinished, then closes. The caller must drain it. The launcher is
// back to Idle before EventFinished is delivered. Cancelling ctx cancels the
// run just like Cancel.
func (l *Launcher) Submit(ctx context.Context, req operation.Request) (<-chan Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.state == Running {
		l.mu.Unlock()
		return nil, errors.WithStack(ErrBusy)
	}
	runCtx, cancel := context.WithCancel(ctx)
	run := Run{ID: uuid.NewString(), Request: req, StartedAt: time.Now()}
	l.state = Running
	l.active = &run
	l.cancel = cancel
	cmd, exec := l.cmd, l.exec
	l.mu.Unlock()

	events := make(chan Event, l.buffer)
	go l.execute(runCtx, cancel, cmd, exec, run, events)
	return events, nil
}

// SetWorker swaps the worker used by later runs. A nil executor keeps the
// current one. The active run, if any, is not affected.
func (l *Launcher) SetWorker(cmd worker.Command, exec worker.Executor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cmd = cmd
	if exec != nil {
		l.exec = exec
	}
}

// Cancel stops the active run's worker. It reports whether a run was active.
func (l *Launcher) Cancel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Running || l.cancel == nil {
		return false
	}
	l.cancel()
	return true
}

func (l *Launcher) execute(ctx context.Context, cancel context.CancelFunc, cmd worker.Command, exec worker.Executor, run Run, events chan<- Event) {
	defer close(events)
	defer cancel()

	logger := l.log.With().
		Str("run_id", run.ID).
		Str("operation", string(run.Request.Operation)).
		Str("input", run.Request.InputPath).
		Str("output", run.Request.OutputPath).
		Logger()

	if l.rec != nil {
		if err := l.rec.Begin(context.WithoutCancel(ctx), run); err != nil {
			logger.Warn().Err(err).Msg("record run start")
		}
	}

	events <- Event{Kind: EventStarted, RunID: run.ID}
	logger.Info().Str("worker", cmd.String()).Msg("operation started")

	transcript := newTranscript(l.transcriptLimit)
	exit, err := exec.Run(ctx, cmd, cmd.Argv(run.Request), func(chunk worker.Chunk) {
		transcript.write(chunk.Text)
		events <- Event{Kind: EventOutput, RunID: run.ID, Chunk: chunk}
	})

	outcome := Outcome{
		RunID:    run.ID,
		ExitCode: exit.Code,
		Success:  err == nil && exit.Success(),
		Duration: time.Since(run.StartedAt),
	}
	switch {
	case errors.Is(err, worker.ErrCanceled):
		outcome.Canceled = true
		outcome.Err = err
	case err != nil:
		outcome.Err = err
		// A worker that never started still gets an explanation in the
		// output box before the failure notice.
		msg := "Failed to launch worker: " + err.Error() + "\n"
		if exit.Code != -1 {
			msg = "Worker output error: " + err.Error() + "\n"
		}
		chunk := worker.Chunk{Stream: worker.Stderr, Text: msg}
		transcript.write(chunk.Text)
		events <- Event{Kind: EventOutput, RunID: run.ID, Chunk: chunk}
	}

	l.logOutcome(logger, outcome, transcript.String())
	if l.rec != nil {
		if err := l.rec.Complete(context.WithoutCancel(ctx), run, outcome, transcript.String()); err != nil {
			logger.Warn().Err(err).Msg("record run outcome")
		}
	}

	l.mu.Lock()
	l.state = Idle
	l.active = nil
	l.cancel = nil
	l.mu.Unlock()

	events <- Event{Kind: EventFinished, RunID: run.ID, Outcome: outcome}
}

func (l *Launcher) logOutcome(logger zerolog.Logger, outcome Outcome, transcript string) {
	ev := logger.Info()
	msg := "operation finished"
	switch {
	case outcome.Canceled:
		ev = logger.Warn()
		msg = "operation canceled"
	case !outcome.Success:
		ev = logger.Error().Err(outcome.Err)
		msg = "operation failed"
		if outcome.Err == nil {
			ev = ev.Str("reason", worker.ExitReason(outcome.ExitCode))
		}
	}
	ev.Int("exit_code", outcome.ExitCode).
		Dur("duration", outcome.Duration).
		Msg(msg)
	if transcript != "" {
		logger.Debug().Str("transcript", strings.TrimRight(transcript, "\n")).Msg("worker output")
	}
}
