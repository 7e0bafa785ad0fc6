package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/turing/internal/ir"
)

// Assertion validates the recorded trace or the final tape.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check a rule was applied
	// - "trace_order": Check states were visited in order
	// - "trace_count": Check the number of steps taken from a state
	// - "final_tape": Check the tape and carriage after the run
	Type string `yaml:"type"`

	// Rule is the applied rule in table notation (used by trace_contains).
	Rule string `yaml:"rule,omitempty"`

	// States is the expected visiting order (used by trace_order).
	States []string `yaml:"states,omitempty"`

	// State is the state to count steps from (used by trace_count).
	State string `yaml:"state,omitempty"`

	// Count is the expected number of steps (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Tape is the expected tape with the carriage cell in brackets
	// (used by final_tape).
	Tape string `yaml:"tape,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalTape     = "final_tape"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Trace    []ir.Step // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, step := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s (head %d)\n", step.Seq, step.Rule, step.Head)
	}

	return buf.String()
}

// validateAssertion checks that an assertion carries the fields its type
// needs.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Rule == "" {
			return fmt.Errorf("%s requires rule", a.Type)
		}
	case AssertTraceOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("%s requires states", a.Type)
		}
	case AssertTraceCount:
		if a.State == "" {
			return fmt.Errorf("%s requires state", a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s count must not be negative", a.Type)
		}
	case AssertFinalTape:
		if a.Tape == "" {
			return fmt.Errorf("%s requires tape", a.Type)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages, empty when all hold.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalTape:
			err = assertFinalTape(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

// assertTraceContains checks that the rule was applied at least once.
// Rules compare in table notation with whitespace normalized.
func assertTraceContains(trace []ir.Step, a Assertion) error {
	want := strings.Join(strings.Fields(a.Rule), " ")
	for _, step := range trace {
		if step.Rule.String() == want {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("rule %q applied", want),
		Actual:   "rule never applied",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the states were visited in the given order.
// Other states may be visited in between.
func assertTraceOrder(trace []ir.Step, a Assertion) error {
	next := 0
	for _, step := range trace {
		if next < len(a.States) && step.State == a.States[next] {
			next++
		}
	}
	if next == len(a.States) {
		return nil
	}

	visited := make([]string, len(trace))
	for i, step := range trace {
		visited[i] = step.State
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("states in order %v", a.States),
		Actual:   fmt.Sprintf("visited %v, missing %q", visited, a.States[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks how many steps were taken from a state.
func assertTraceCount(trace []ir.Step, a Assertion) error {
	count := 0
	for _, step := range trace {
		if step.State == a.State {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d steps from state %q", a.Count, a.State),
		Actual:   fmt.Sprintf("%d steps", count),
		Trace:    trace,
	}
}

// assertFinalTape checks the tape with its carriage marker.
func assertFinalTape(result *Result, a Assertion) error {
	if result.Tape == a.Tape {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalTape,
		Expected: a.Tape,
		Actual:   result.Tape,
		Trace:    result.Trace,
	}
}
