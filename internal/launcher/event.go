package launcher

import (
	"strings"

	"github.com/fremen-fi/audioshell/internal/worker"
)

// EventKind tags the three messages of a run.
type EventKind int

const (
	EventStarted EventKind = iota
	EventOutput
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is one message relayed to the UI. Chunk is set for EventOutput,
// Outcome for EventFinished.
type Event struct {
	Kind    EventKind
	RunID   string
	Chunk   worker.Chunk
	Outcome Outcome
}

// transcript keeps the head of a run's output up to limit bytes.
type transcript struct {
	limit     int
	b         strings.Builder
	truncated bool
}

func newTranscript(limit int) *transcript {
	return &transcript{limit: limit}
}

func (t *transcript) write(s string) {
	if t.limit < 0 {
		t.b.WriteString(s)
		return
	}
	room := t.limit - t.b.Len()
	if room <= 0 {
		t.truncated = t.truncated || s != ""
		return
	}
	if len(s) > room {
		s = s[:room]
		t.truncated = true
	}
	t.b.WriteString(s)
}

func (t *transcript) String() string {
	if t.limit == 0 {
		return ""
	}
	if t.truncated {
		return t.b.String() + "\n[output truncated]\n"
	}
	return t.b.String()
}
