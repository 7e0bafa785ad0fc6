package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

func trace(states ...string) []ir.Step {
	steps := make([]ir.Step, len(states))
	for i, s := range states {
		steps[i] = ir.Step{
			Seq:   int64(i + 1),
			State: s,
			Read:  '1',
			Rule:  ir.Rule{State: s, Read: '1', Write: '0', Move: ir.Left, Next: ir.WildcardState},
			Next:  s,
		}
	}
	return steps
}

func TestAssertTraceContains(t *testing.T) {
	tr := trace("carry", "done")

	assert.NoError(t, assertTraceContains(tr, Assertion{Rule: "carry 1 0 l *"}))
	assert.NoError(t, assertTraceContains(tr, Assertion{Rule: "  carry  1 0   l *  "}))

	err := assertTraceContains(tr, Assertion{Rule: "carry 0 1 * done"})
	require.Error(t, err)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "[1] carry 1 0 l *")
}

func TestAssertTraceOrder(t *testing.T) {
	tr := trace("right", "right", "carry", "carry", "done")

	assert.NoError(t, assertTraceOrder(tr, Assertion{States: []string{"right", "done"}}))
	assert.NoError(t, assertTraceOrder(tr, Assertion{States: []string{"right", "carry", "done"}}))

	err := assertTraceOrder(tr, Assertion{States: []string{"done", "right"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "right"`)
}

func TestAssertTraceCount(t *testing.T) {
	tr := trace("right", "carry", "carry")

	assert.NoError(t, assertTraceCount(tr, Assertion{State: "carry", Count: 2}))
	assert.NoError(t, assertTraceCount(tr, Assertion{State: "done", Count: 0}))

	err := assertTraceCount(tr, Assertion{State: "right", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Actual: 1 steps")
}

func TestAssertFinalTape(t *testing.T) {
	result := &Result{Tape: "1[1]00_"}

	assert.NoError(t, assertFinalTape(result, Assertion{Tape: "1[1]00_"}))

	err := assertFinalTape(result, Assertion{Tape: "[1]100_"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: [1]100_")
}

func TestEvaluateAssertions_CollectsFailures(t *testing.T) {
	result := &Result{Trace: trace("carry"), Tape: "[0]"}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, State: "carry", Count: 1},
		{Type: AssertFinalTape, Tape: "[1]"},
		{Type: "trace_sorted"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertion 1:")
	assert.Contains(t, errs[1], `assertion 2: unknown assertion type "trace_sorted"`)
}
