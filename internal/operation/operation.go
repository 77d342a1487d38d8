package operation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Operation is one of the fixed batch actions the worker understands.
type Operation string

const (
	Merge   Operation = "merge"
	Split   Operation = "split"
	Conform Operation = "conform"
	Convert Operation = "convert"
)

var all = []Operation{Merge, Split, Conform, Convert}

var descriptions = map[Operation]string{
	Merge:   "Merge mono files into one multichannel file",
	Split:   "Split multichannel files into mono files",
	Conform: "Conform audio files into a .mov container",
	Convert: "Convert audio files to another format",
}

var upper = cases.Upper(language.Und)

// All returns the supported operations in menu order.
func All() []Operation {
	out := make([]Operation, len(all))
	copy(out, all)
	return out
}

// Names returns the operation names, for select widgets and flag help.
func Names() []string {
	names := make([]string, 0, len(all))
	for _, op := range all {
		names = append(names, string(op))
	}
	return names
}

// Parse trims and lower-cases s. The result is not guaranteed to be valid.
func Parse(s string) Operation {
	return Operation(strings.ToLower(strings.TrimSpace(s)))
}

func (o Operation) Valid() bool {
	_, ok := descriptions[o]
	return ok
}

// Label is the submit button text for the operation.
func (o Operation) Label() string {
	return upper.String(string(o))
}

func (o Operation) Description() string {
	return descriptions[o]
}

func (o Operation) String() string {
	return string(o)
}
