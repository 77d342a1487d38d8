package operation

import (
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Request is a submitted form: what to run and where.
type Request struct {
	InputPath  string
	OutputPath string
	Operation  Operation
}

// ValidationError is returned when a request is incomplete or names an
// operation outside the supported set.
type ValidationError struct {
	Missing   []string
	Operation Operation
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if e.Operation != "" && !e.Operation.Valid() {
		parts = append(parts, fmt.Sprintf("unsupported operation %q", string(e.Operation)))
	}
	return "form is not fully filled: " + strings.Join(parts, "; ")
}

// Validate checks that all three fields are present and the operation is
// supported.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(string(r.Operation)) == "" {
		missing = append(missing, "operation")
	}
	if strings.TrimSpace(r.InputPath) == "" {
		missing = append(missing, "input path")
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		missing = append(missing, "output path")
	}
	if len(missing) == 0 && r.Operation.Valid() {
		return nil
	}
	return &ValidationError{Missing: missing, Operation: r.Operation}
}

// Normalize resolves both paths to clean absolute paths using the platform
// separator.
func (r Request) Normalize() (Request, error) {
	in, err := filepath.Abs(filepath.Clean(r.InputPath))
	if err != nil {
		return r, errors.Errorf("normalize input path: %w", err)
	}
	out, err := filepath.Abs(filepath.Clean(r.OutputPath))
	if err != nil {
		return r, errors.Errorf("normalize output path: %w", err)
	}
	r.InputPath = in
	r.OutputPath = out
	return r, nil
}

// Args is the worker's positional argument vector.
func (r Request) Args() []string {
	return []string{r.InputPath, r.OutputPath, string(r.Operation)}
}
