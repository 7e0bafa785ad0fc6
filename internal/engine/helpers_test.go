package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/tape"
)

// mustTable parses a text table or fails the test.
func mustTable(t *testing.T, src string) *program.Table {
	t.Helper()
	table, err := program.ParseString(src)
	require.NoError(t, err)
	return table
}

// mustTape builds a tape from input or fails the test.
func mustTape(t *testing.T, input string, opts ...tape.Option) *tape.Tape {
	t.Helper()
	tp, err := tape.FromString(input, opts...)
	require.NoError(t, err)
	return tp
}

// runMachine runs table over input to completion.
func runMachine(t *testing.T, src, input string, opts ...EngineOption) (*Result, error) {
	t.Helper()
	e := New(mustTable(t, src), mustTape(t, input), opts...)
	return e.Run(context.Background())
}

// memRecorder keeps recorded steps in memory.
type memRecorder struct {
	steps []ir.Step
	err   error
}

func (r *memRecorder) RecordStep(_ context.Context, step ir.Step) error {
	if r.err != nil {
		return r.err
	}
	r.steps = append(r.steps, step)
	return nil
}
