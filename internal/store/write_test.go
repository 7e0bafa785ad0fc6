package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

func TestWriteRun_Defaults(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, ir.RunRunning, run.Status)
	assert.Equal(t, ir.EngineVersion, run.EngineVersion)
	assert.Equal(t, ir.IRVersion, run.IRVersion)
	assert.Equal(t, "01", run.Input)
	assert.Equal(t, "0", run.StartState)
}

func TestWriteRun_Limits(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.MaxSteps = 100
	run.MaxCells = 64
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.MaxSteps)
	assert.Equal(t, 64, got.MaxCells)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRun("run-1")
	require.NoError(t, s.WriteRun(ctx, first))

	second := createTestRun("run-1")
	second.Input = "changed"
	require.NoError(t, s.WriteRun(ctx, second))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "01", run.Input)
}

func TestWriteStep_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	want := []ir.Step{
		createTestStep(1, '0', "0"),
		createTestStep(2, '1', "halt"),
	}
	// Written out of order; read back by seq.
	require.NoError(t, s.WriteStep(ctx, "run-1", want[1]))
	require.NoError(t, s.WriteStep(ctx, "run-1", want[0]))
	require.NoError(t, s.WriteStep(ctx, "run-1", want[0]))

	got, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteStep_WildcardsAndUnicode(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	step := ir.Step{
		Seq:   1,
		State: "q",
		Read:  'λ',
		Rule:  ir.Rule{State: "q", Read: ir.Wildcard, Write: ir.Wildcard, Move: ir.Stay, Next: ir.WildcardState},
		Head:  -3,
		Next:  "q",
	}
	require.NoError(t, s.WriteStep(ctx, "run-1", step))

	got, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, step, got[0])
}

func TestWriteStep_RequiresRun(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteStep(context.Background(), "missing", createTestStep(1, '0', "0"))
	assert.Error(t, err)
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	require.NoError(t, s.FinishRun(ctx, "run-1", ir.RunHalted, "11", 2, "", ""))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, ir.RunHalted, run.Status)
	assert.Equal(t, "11", run.Output)
	assert.Equal(t, int64(2), run.Steps)

	// A second outcome does not overwrite the first.
	require.NoError(t, s.FinishRun(ctx, "run-1", ir.RunFailed, "", 0, "X", "y"))
	run, err = s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, ir.RunHalted, run.Status)
}

func TestFinishRun_Failed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	require.NoError(t, s.FinishRun(ctx, "run-1", ir.RunFailed, "0", 0,
		"LOOKUP_MISSING_RULE", "there is no state 0 with symbol 1"))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, ir.RunFailed, run.Status)
	assert.Equal(t, "LOOKUP_MISSING_RULE", run.ErrorCode)
}

func TestFinishRun_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.FinishRun(ctx, "missing", ir.RunHalted, "", 0, "", "")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))
	err = s.FinishRun(ctx, "run-1", ir.RunRunning, "", 0, "", "")
	assert.Error(t, err)
}
