package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/tape"
)

// Recorder receives every applied step, in order. A Recorder error aborts
// the run.
type Recorder interface {
	RecordStep(ctx context.Context, step ir.Step) error
}

// Engine executes a transition table over a tape.
//
// INVARIANTS:
//   - the table never changes after construction
//   - the tape is mutated only by Step
//   - steps are stamped 1, 2, 3, ... by the engine's clock
type Engine struct {
	table    *program.Table
	tape     *tape.Tape
	start    string
	state    string
	clock    *Clock
	quota    *QuotaEnforcer
	maxSteps int64
	recorder Recorder
	runID    string
	last     *ir.Rule
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithStartState sets the initial state. Default: "0".
func WithStartState(state string) EngineOption {
	return func(e *Engine) {
		e.start = state
	}
}

// WithMaxSteps bounds the number of transitions. Default: 0, unlimited.
func WithMaxSteps(maxSteps int64) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithRecorder registers a Recorder for applied steps.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithRunID sets the id reported in logs and quota errors.
func WithRunID(id string) EngineOption {
	return func(e *Engine) {
		e.runID = id
	}
}

// New creates an Engine for table over tp. The tape is rewound to its
// leftmost cell; the engine owns it from now on.
func New(table *program.Table, tp *tape.Tape, opts ...EngineOption) *Engine {
	e := &Engine{
		table: table,
		tape:  tp,
		start: ir.DefaultStartState,
		clock: NewClock(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.state = e.start
	e.quota = NewQuotaEnforcer(e.maxSteps, e.clock)
	e.tape.Rewind()
	return e
}

// Result summarizes a finished or aborted run.
type Result struct {
	RunID  string
	State  string // Final state, "halt" on success
	Steps  int64  // Applied transitions
	Output string // Tape rendering with blanks elided
}

// Halted reports whether the machine is in the halt state.
func (e *Engine) Halted() bool {
	return e.state == ir.HaltState
}

// Config returns the current machine configuration.
func (e *Engine) Config() Config {
	return Config{State: e.state, Symbol: e.tape.Read()}
}

// Steps returns the number of applied transitions.
func (e *Engine) Steps() int64 {
	return e.clock.Current()
}

// LastRule returns the most recently applied rule.
func (e *Engine) LastRule() (ir.Rule, bool) {
	if e.last == nil {
		return ir.Rule{}, false
	}
	return *e.last, true
}

// Output returns the tape rendering with blank cells elided.
func (e *Engine) Output() string {
	return e.tape.Render()
}

// Tape returns the engine's tape for inspection. Callers must not mutate it.
func (e *Engine) Tape() *tape.Tape {
	return e.tape
}

// Step applies exactly one transition.
//
// Returns ErrHalted if the machine has already halted. On any other error
// the run is over: the engine state is left as it was before the failed
// transition, except that a failed move keeps the symbol already written.
func (e *Engine) Step(ctx context.Context) (ir.Step, error) {
	cfg := e.Config()
	tr, err := Next(e.table, cfg)
	if err != nil {
		var le *LookupError
		if errors.As(err, &le) {
			le.Seq = e.clock.Current()
		}
		return ir.Step{}, err
	}

	if err := e.quota.Check(e.runID); err != nil {
		return ir.Step{}, err
	}

	e.tape.Write(tr.Rule.Write)
	if err := e.tape.Move(tr.Rule.Move); err != nil {
		return ir.Step{}, &ResourceError{
			Resource: "tape",
			State:    cfg.State,
			Seq:      e.clock.Current(),
			Err:      err,
		}
	}
	e.state = tr.Next

	rule := tr.Rule
	e.last = &rule

	step := ir.Step{
		Seq:   e.clock.Next(),
		State: cfg.State,
		Read:  cfg.Symbol,
		Rule:  tr.Rule,
		Head:  e.tape.Head(),
		Next:  tr.Next,
	}

	slog.Debug("step applied",
		"run", e.runID,
		"seq", step.Seq,
		"rule", step.Rule.String(),
		"head", step.Head,
	)

	if e.recorder != nil {
		if err := e.recorder.RecordStep(ctx, step); err != nil {
			return step, err
		}
	}
	return step, nil
}

// Run applies transitions until the machine halts.
//
// The context is checked between transitions; a transition in progress is
// never interrupted. The returned Result is valid on error too and reflects
// the tape as the failure left it.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	slog.Debug("run starting", "run", e.runID, "start", e.start, "rules", e.table.Len())

	for !e.Halted() {
		if err := ctx.Err(); err != nil {
			return e.result(), err
		}
		if _, err := e.Step(ctx); err != nil {
			return e.result(), err
		}
	}

	slog.Debug("run halted", "run", e.runID, "steps", e.clock.Current())
	return e.result(), nil
}

func (e *Engine) result() *Result {
	return &Result{
		RunID:  e.runID,
		State:  e.state,
		Steps:  e.clock.Current(),
		Output: e.tape.Render(),
	}
}
