package config

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Worker.DevMode {
		if c.Worker.Interpreter == "" {
			problems = append(problems, "worker.interpreter is required in dev mode")
		}
		if c.Worker.Script == "" {
			problems = append(problems, "worker.script is required in dev mode")
		}
	} else if c.Worker.Executable == "" {
		problems = append(problems, "worker.executable is required")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	if c.Logging.MaxLines < 0 {
		problems = append(problems, "logging.max_lines must not be negative")
	}

	if c.History.Enabled && c.History.Path == "" {
		problems = append(problems, "history.path is required when history is enabled")
	}
	if c.History.TranscriptLimit < 0 {
		problems = append(problems, "history.transcript_limit must not be negative")
	}

	if c.Window.Width < 0 || c.Window.Height < 0 {
		problems = append(problems, "window size must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Errorf("invalid config: %s", strings.Join(problems, "; "))
}
