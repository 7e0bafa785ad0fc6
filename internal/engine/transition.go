package engine

import (
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
)

// Config is the machine configuration: the current state name and the
// symbol under the carriage. It is the sole input to a lookup.
type Config struct {
	State  string
	Symbol ir.Symbol
}

// Transition is the result of a lookup: the matched rule and the state the
// machine moves to.
type Transition struct {
	Rule ir.Rule
	Next string
}

// Next computes the transition for c without touching any tape.
//
// Returns ErrHalted when c is in the halt state, and a LookupError when the
// table has no rule for c.
func Next(t *program.Table, c Config) (Transition, error) {
	if c.State == ir.HaltState {
		return Transition{}, ErrHalted
	}

	rule, ok := t.Lookup(c.State, c.Symbol)
	if !ok {
		return Transition{}, &LookupError{State: c.State, Symbol: c.Symbol}
	}
	return Transition{Rule: rule, Next: rule.Resolve(c.State)}, nil
}
