package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/turing/internal/ir"
)

// Decision tells a suspended Session how to continue.
type Decision int

const (
	// DecisionStep applies one more transition and suspends again.
	DecisionStep Decision = iota + 1

	// DecisionContinue runs to completion without further suspension.
	DecisionContinue
)

// ErrInvalidDecision is returned by Resume for a value that is neither
// DecisionStep nor DecisionContinue.
var ErrInvalidDecision = errors.New("invalid decision")

// ParseDecision maps the interactive commands "n" (next step) and "c"
// (continue to the end) to a Decision. Surrounding whitespace is ignored.
func ParseDecision(s string) (Decision, error) {
	switch strings.TrimSpace(s) {
	case "n":
		return DecisionStep, nil
	case "c":
		return DecisionContinue, nil
	}
	return 0, fmt.Errorf("%w %q: enter 'n' (next step) or 'c' (go to the end)", ErrInvalidDecision, strings.TrimSpace(s))
}

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case DecisionStep:
		return "step"
	case DecisionContinue:
		return "continue"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Snapshot is what a caller sees while a Session is suspended.
type Snapshot struct {
	Seq    int64     // Applied transitions so far
	State  string    // Current state
	Symbol ir.Symbol // Symbol under the carriage
	Head   int       // Carriage offset
	Tape   string    // Tape rendering with blanks elided
	Last   *ir.Rule  // Last executed rule, nil before the first step
	Halted bool
}

// Session drives an Engine one external decision at a time.
//
// The session is suspended whenever Resume returns; nothing happens until
// the caller resumes it again. There is no cancellation other than not
// resuming.
type Session struct {
	engine *Engine
}

// Session returns a single-step driver for e.
func (e *Engine) Session() *Session {
	return &Session{engine: e}
}

// Done reports whether the machine has halted.
func (s *Session) Done() bool {
	return s.engine.Halted()
}

// Snapshot returns the current view of the machine.
func (s *Session) Snapshot() Snapshot {
	e := s.engine
	snap := Snapshot{
		Seq:    e.clock.Current(),
		State:  e.state,
		Symbol: e.tape.Read(),
		Head:   e.tape.Head(),
		Tape:   e.tape.Render(),
		Halted: e.Halted(),
	}
	if e.last != nil {
		rule := *e.last
		snap.Last = &rule
	}
	return snap
}

// Resume continues the machine according to d and suspends again.
//
// DecisionStep applies one transition; on a halted machine it does
// nothing. DecisionContinue runs until halt. Any other value fails with
// ErrInvalidDecision without touching the machine.
func (s *Session) Resume(ctx context.Context, d Decision) (Snapshot, error) {
	switch d {
	case DecisionStep:
		if s.Done() {
			return s.Snapshot(), nil
		}
		if _, err := s.engine.Step(ctx); err != nil {
			return s.Snapshot(), err
		}
	case DecisionContinue:
		if _, err := s.engine.Run(ctx); err != nil {
			return s.Snapshot(), err
		}
	default:
		return s.Snapshot(), fmt.Errorf("%w: %v", ErrInvalidDecision, d)
	}
	return s.Snapshot(), nil
}
