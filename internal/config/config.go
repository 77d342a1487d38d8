// Package config loads, normalizes, and validates audioshell settings.
//
// Settings live in a TOML file under the user's config directory. YAML and
// JSON files are accepted when the path carries that extension. Missing files
// are not an error: defaults apply, and environment overrides are honoured
// either way.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	appDir   = "audioshell"
	fileName = "config.toml"

	EnvDev    = "AUDIOSHELL_DEV"
	EnvWorker = "AUDIOSHELL_WORKER"
)

// Worker describes how the external audio worker is launched. In
// development mode the interpreter runs the script; otherwise the standalone
// executable runs directly.
type Worker struct {
	Executable  string `toml:"executable" yaml:"executable" json:"executable"`
	Interpreter string `toml:"interpreter" yaml:"interpreter" json:"interpreter"`
	Script      string `toml:"script" yaml:"script" json:"script"`
	DevMode     bool   `toml:"dev_mode" yaml:"dev_mode" json:"dev_mode"`
	ErrorMarker string `toml:"error_marker" yaml:"error_marker" json:"error_marker"`
}

type Logging struct {
	Level    string `toml:"level" yaml:"level" json:"level"`
	Format   string `toml:"format" yaml:"format" json:"format"`
	Dir      string `toml:"dir" yaml:"dir" json:"dir"`
	MaxLines int    `toml:"max_lines" yaml:"max_lines" json:"max_lines"`
}

type History struct {
	Enabled         bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Path            string `toml:"path" yaml:"path" json:"path"`
	TranscriptLimit int    `toml:"transcript_limit" yaml:"transcript_limit" json:"transcript_limit"`
}

type Window struct {
	Title  string  `toml:"title" yaml:"title" json:"title"`
	Width  float32 `toml:"width" yaml:"width" json:"width"`
	Height float32 `toml:"height" yaml:"height" json:"height"`
}

// State holds values remembered between sessions.
type State struct {
	LastOutputDir string `toml:"last_output_dir" yaml:"last_output_dir" json:"last_output_dir"`
}

// Config encapsulates all configuration values for audioshell.
type Config struct {
	Worker  Worker  `toml:"worker" yaml:"worker" json:"worker"`
	Logging Logging `toml:"logging" yaml:"logging" json:"logging"`
	History History `toml:"history" yaml:"history" json:"history"`
	Window  Window  `toml:"window" yaml:"window" json:"window"`
	State   State   `toml:"state" yaml:"state" json:"state"`
}

// Dir returns the per-user directory holding config, logs and history.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// DefaultPath returns the absolute path of the default configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the file at path (or the default location when empty), applies
// defaults and environment overrides, and validates the result. It returns
// the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved := path
	if strings.TrimSpace(resolved) == "" {
		var err error
		resolved, err = DefaultPath()
		if err != nil {
			return nil, "", false, err
		}
	} else {
		var err error
		resolved, err = expandPath(resolved)
		if err != nil {
			return nil, "", false, err
		}
	}

	exists := false
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		exists = true
		if err := decode(resolved, data, &cfg); err != nil {
			return nil, resolved, true, errors.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, resolved, false, errors.Errorf("read config %s: %w", resolved, err)
	}

	applyEnv(&cfg)
	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// SaveState records state in the file at path. Every other key is written
// back exactly as the file has it: defaults, env overrides and expanded
// paths from Load never reach the disk.
func SaveState(path string, state State) error {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &doc); err != nil {
			return errors.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return errors.Errorf("read config %s: %w", path, err)
	}
	doc["state"] = state

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("create config dir: %w", err)
	}
	out, err := encode(path, doc)
	if err != nil {
		return errors.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".json":
		return json.Unmarshal(data, v)
	default:
		return toml.Unmarshal(data, v)
	}
}

func encode(path string, v any) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(v)
	case ".json":
		return json.MarshalIndent(v, "", "  ")
	default:
		return toml.Marshal(v)
	}
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvDev); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "development":
			cfg.Worker.DevMode = true
		case "0", "false", "no", "production":
			cfg.Worker.DevMode = false
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorker)); v != "" {
		cfg.Worker.Executable = v
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Worker.Executable, err = expandPath(c.Worker.Executable); err != nil {
		return err
	}
	if c.Worker.Script, err = expandPath(c.Worker.Script); err != nil {
		return err
	}
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return err
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return err
	}
	c.Worker.Interpreter = strings.TrimSpace(c.Worker.Interpreter)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// expandPath resolves a leading ~ to the home directory. Bare command names
// (no separator) are left alone so they can be found on PATH.
func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("expand %s: %w", path, err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
