package config

import (
	"os"
	"path/filepath"
)

// DefaultErrorMarker prefixes every chunk the worker writes to stderr.
const DefaultErrorMarker = "Worker Error: "

// Default returns the baseline configuration. Paths that depend on the user
// config directory are left empty here and filled by normalize.
func Default() Config {
	cfg := Config{
		Worker: Worker{
			Executable:  "audio_operations",
			Interpreter: "python",
			Script:      "audio_operations.py",
			ErrorMarker: DefaultErrorMarker,
		},
		Logging: Logging{
			Level:    "info",
			Format:   "auto",
			MaxLines: 1000,
		},
		History: History{
			Enabled:         true,
			TranscriptLimit: 256 * 1024,
		},
		Window: Window{
			Title:  "Audio Operations",
			Width:  580,
			Height: 830,
		},
	}
	if dir, err := Dir(); err == nil {
		cfg.Logging.Dir = dir
		cfg.History.Path = filepath.Join(dir, "history.db")
	}
	if exe, err := os.Executable(); err == nil {
		// The packaged worker ships next to the shell binary.
		bundled := filepath.Join(filepath.Dir(exe), "backend", "audio_operations")
		if _, err := os.Stat(bundled); err == nil {
			cfg.Worker.Executable = bundled
		}
	}
	return cfg
}

// Sample renders the default configuration as TOML for `config init`.
func Sample() ([]byte, error) {
	cfg := Default()
	return encode(fileName, &cfg)
}
