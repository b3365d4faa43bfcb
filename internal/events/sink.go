package events

import (
	"fmt"
	"io"
)

// Sink is the interface engine components log through. Log is expected to
// be cheap and non-blocking; Suppress lets snapshot replay silence emission
// without every caller needing to know it is replaying.
type Sink interface {
	Log(e Event)
	Events() []Event
	Suppress(bool)
}

// MemoryLog stores events in memory for test assertions and for resume
// replay bookkeeping. It is the direct analog of the teacher's
// MemoryLogger.
type MemoryLog struct {
	events     []Event
	seq        int
	suppressed bool
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

func (l *MemoryLog) Log(e Event) {
	if l.suppressed {
		return
	}
	l.seq++
	e.Seq = l.seq
	l.events = append(l.events, e)
}

func (l *MemoryLog) Events() []Event { return l.events }

func (l *MemoryLog) Suppress(on bool) { l.suppressed = on }

// OfType returns all logged events of the given Type, in emission order.
func (l *MemoryLog) OfType(t Type) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recently logged event, or the zero Event if none.
func (l *MemoryLog) Last() Event {
	if len(l.events) == 0 {
		return Event{}
	}
	return l.events[len(l.events)-1]
}

// TextLog wraps a MemoryLog and also writes a formatted line per event to
// w, the way the teacher's TextLogger wraps its MemoryLogger.
type TextLog struct {
	MemoryLog
	w io.Writer
}

func NewTextLog(w io.Writer) *TextLog { return &TextLog{w: w} }

func (l *TextLog) Log(e Event) {
	l.MemoryLog.Log(e)
	if !l.suppressed {
		fmt.Fprintln(l.w, Format(e))
	}
}

// Format renders a single event as a human-readable line.
func Format(e Event) string {
	step := e.Step
	for len(step) < 18 {
		step += " "
	}
	return fmt.Sprintf("T%-2d %s| %s", e.Turn, step, e.Details)
}

// FormatAll renders every event in a log, one per line.
func FormatAll(events []Event) string {
	var out string
	for _, e := range events {
		out += Format(e) + "\n"
	}
	return out
}
