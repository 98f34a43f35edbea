// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"go.uber.org/zap"

	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

// EventKind names a port of the search.
type EventKind int

const (
	// Call: a goal was selected for resolution.
	Call EventKind = iota + 1
	// Match: a clause head unified with the selected goal.
	Match
	// Fail: every candidate for the goal has been tried.
	Fail
	// Cutoff: the goal was abandoned at the depth budget.
	Cutoff
)

func (k EventKind) String() string {
	switch k {
	case Call:
		return "call"
	case Match:
		return "match"
	case Fail:
		return "fail"
	case Cutoff:
		return "cutoff"
	}
	return "unknown"
}

// Event describes one step of the search. Goal has the substitution current
// at the port applied. Clause is set for Match events only.
type Event struct {
	Kind   EventKind
	Goal   term.Term
	Depth  int
	Clause *kb.Clause
}

// Tracer observes a search. Trace is called synchronously from the goroutine
// consuming the answers.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(Event)

// Trace calls f(e).
func (f TracerFunc) Trace(e Event) {
	f(e)
}

// NewLogTracer returns a tracer that logs every event at debug level.
func NewLogTracer(logger *zap.Logger) Tracer {
	return TracerFunc(func(e Event) {
		if ce := logger.Check(zap.DebugLevel, "resolve"); ce != nil {
			fields := []zap.Field{
				zap.Stringer("port", e.Kind),
				zap.Stringer("goal", e.Goal),
				zap.Int("depth", e.Depth),
			}
			if e.Clause != nil {
				fields = append(fields, zap.Stringer("clause", e.Clause))
			}
			ce.Write(fields...)
		}
	})
}
