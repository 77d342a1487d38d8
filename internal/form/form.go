// Package form holds the editable state of the operation window.
package form

import (
	"sync"

	"github.com/fremen-fi/audioshell/internal/operation"
	"github.com/fremen-fi/audioshell/internal/paths"
)

// Target is the form field a picker result is meant for.
type Target int

const (
	TargetInput Target = iota
	TargetOutput
)

const (
	WarnInput  = "Please Select Valid Input Path"
	WarnOutput = "Please Select Valid Output Folder"

	// DefaultOutputHint is shown while the output folder is still derived
	// from the input.
	DefaultOutputHint = "Same as input. Click to change."

	idleLabel = "START"
)

// State is the form of one window. It is safe for concurrent use.
type State struct {
	mu            sync.Mutex
	input         string
	output        string
	op            operation.Operation
	defaultOutput bool
	locked        bool
}

func New() *State {
	return &State{}
}

// SetInput stores the input path. While the output is unset or still the
// derived default it follows the input. A path that cannot be inspected is
// still stored and its error returned; the output is left alone.
func (s *State) SetInput(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = path
	if path == "" {
		if s.defaultOutput {
			s.output = ""
			s.defaultOutput = false
		}
		return nil
	}
	if s.output != "" && !s.defaultOutput {
		return nil
	}
	out, err := paths.DefaultOutput(path)
	if err != nil {
		return err
	}
	s.output = out
	s.defaultOutput = true
	return nil
}

// SetOutput stores an explicitly chosen output folder.
func (s *State) SetOutput(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = path
	s.defaultOutput = false
}

func (s *State) SetOperation(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.op = operation.Parse(name)
}

// ApplySelection stores a picker result in target. A cancelled picker keeps
// the previous value; if there is none, a warning for the user is returned.
func (s *State) ApplySelection(target Target, sel paths.Selection) (string, error) {
	if sel.Canceled || !sel.Selected || sel.Path == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch target {
		case TargetInput:
			if s.input == "" {
				return WarnInput, nil
			}
		case TargetOutput:
			if s.output == "" {
				return WarnOutput, nil
			}
		}
		return "", nil
	}
	if target == TargetOutput {
		s.SetOutput(sel.Path)
		return "", nil
	}
	return "", s.SetInput(sel.Path)
}

func (s *State) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *State) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// OutputIsDefault reports whether the output was derived from the input.
func (s *State) OutputIsDefault() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultOutput
}

func (s *State) Operation() operation.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.op
}

// Request builds the submission from the current fields.
func (s *State) Request() operation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return operation.Request{InputPath: s.input, OutputPath: s.output, Operation: s.op}
}

// SubmitLabel is the caption of the submit button.
func (s *State) SubmitLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.op.Valid() {
		return s.op.Label()
	}
	return idleLabel
}

// Lock freezes the form for the duration of a run.
func (s *State) Lock() {
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
}

func (s *State) Unlock() {
	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
}

func (s *State) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.locked
}
