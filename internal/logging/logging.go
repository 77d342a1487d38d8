// Package logging builds the zerolog loggers used by the shell and the CLI.
//
// The "auto" format writes human readable lines to a terminal and JSON
// anywhere else. An optional log file under the config directory receives JSON
// lines and is trimmed to a fixed number of lines each time it is opened.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// FileName is the log file created inside Options.Dir.
const FileName = "audioshell.log"

// Options describes logger construction parameters.
type Options struct {
	Level    string
	Format   string
	Console  io.Writer
	Dir      string
	MaxLines int
}

// New constructs a logger. The returned closer releases the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" || format == "auto" {
		format = "json"
		if isTerminal(console) {
			format = "console"
		}
	}

	var writers []io.Writer
	switch format {
	case "console":
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(console),
		})
	case "json":
		writers = append(writers, console)
	default:
		return zerolog.Nop(), nopCloser{}, errors.Errorf("log format: unsupported value %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		file, err := openLogFile(filepath.Join(opts.Dir, FileName), opts.MaxLines)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		writers = append(writers, file)
		closer = file
	}

	out := writers[0]
	if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}
	logger := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
	return logger, closer, nil
}

// ParseLevel maps config level names to zerolog levels, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger attached to ctx, or a disabled one.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
