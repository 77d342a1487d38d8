package main

import (
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fremen-fi/audioshell/internal/config"
	"github.com/fremen-fi/audioshell/internal/history"
	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/logging"
	"github.com/fremen-fi/audioshell/internal/worker"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		c.configPath = resolved
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the logger for a command. Console output goes to console;
// the log file under the config directory always receives a copy.
func (c *commandContext) newLogger(console io.Writer) (zerolog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  console,
		Dir:      cfg.Logging.Dir,
		MaxLines: cfg.Logging.MaxLines,
	})
}

// openHistory returns nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

// newLauncher wires the worker command, history and logger into a launcher.
func (c *commandContext) newLauncher(cmd worker.Command, logger zerolog.Logger, store *history.Store) (*launcher.Launcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := []launcher.Option{
		launcher.WithExecutor(newExecutor(cfg)),
		launcher.WithLogger(logger),
		launcher.WithTranscriptLimit(cfg.History.TranscriptLimit),
	}
	if store != nil {
		opts = append(opts, launcher.WithRecorder(store))
	}
	return launcher.New(cmd, opts...), nil
}

func newExecutor(cfg *config.Config) worker.Executor {
	return worker.ProcessExecutor{ErrorMarker: cfg.Worker.ErrorMarker}
}
