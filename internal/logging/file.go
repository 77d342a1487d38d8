package logging

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// openLogFile opens path for appending after keeping only its last maxLines
// lines. maxLines <= 0 disables trimming.
func openLogFile(path string, maxLines int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Errorf("ensure log directory: %w", err)
	}
	if err := trimLogFile(path, maxLines); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func trimLogFile(path string, maxLines int) error {
	if maxLines <= 0 {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Errorf("read log file %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= maxLines {
		return nil
	}
	kept := strings.Join(lines[len(lines)-maxLines:], "")
	if err := os.WriteFile(path, []byte(kept), 0o644); err != nil {
		return errors.Errorf("trim log file %s: %w", path, err)
	}
	return nil
}
