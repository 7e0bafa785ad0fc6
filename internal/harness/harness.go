package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/store"
	"github.com/roach88/turing/internal/tape"
	"github.com/roach88/turing/internal/testutil"
)

// ScenarioRunID is the run id every scenario is recorded under.
const ScenarioRunID = "scenario-run"

// harness holds the per-scenario execution context.
type harness struct {
	store  *store.Store
	runIDs engine.RunIDGenerator
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database
//  2. Load the machine and build the tape
//  3. Record the run and drive the engine, in single steps first if asked
//  4. Read the trace back from the store
//  5. Check the expect clause and assertions
//
// Load and run errors are outcomes, reported in the Result and checked
// against Expect.Error. The returned error is reserved for failures of the
// harness itself.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &harness{
		store:  st,
		runIDs: testutil.NewFixedRunIDGenerator(ScenarioRunID),
	}

	ctx := context.Background()
	result := NewResult()

	m, err := scenario.machine()
	if err != nil {
		if !program.IsLoadError(err) {
			return nil, fmt.Errorf("failed to load machine: %w", err)
		}
		result.Err = err
		result.ErrorCode = engine.ErrorCode(err)
		h.check(scenario, result)
		return result, nil
	}

	if err := h.execute(ctx, scenario, m, result); err != nil {
		return nil, err
	}
	h.check(scenario, result)
	return result, nil
}

// execute runs the machine and fills result from the recorded run.
func (h *harness) execute(ctx context.Context, scenario *Scenario, m *program.Machine, result *Result) error {
	input := scenario.Input
	if input == "" {
		input = m.Input
	}
	start := scenario.Start
	if start == "" {
		start = m.StartState(ir.DefaultStartState)
	}
	result.State = start

	var tapeOpts []tape.Option
	if scenario.MaxCells > 0 {
		tapeOpts = append(tapeOpts, tape.WithMaxCells(scenario.MaxCells))
	}
	tp, err := tape.FromString(input, tapeOpts...)
	if err != nil {
		if !tape.IsLimitError(err) {
			return fmt.Errorf("failed to build tape: %w", err)
		}
		result.Err = &engine.ResourceError{Resource: "tape", State: start, Err: err}
		result.ErrorCode = engine.ErrorCode(result.Err)
		return nil
	}

	runID := h.runIDs.Generate()
	if err := h.store.WriteRun(ctx, ir.RunRecord{
		ID:          runID,
		TableHash:   m.Table.Hash(),
		TableSource: m.Table.Text(),
		StartState:  start,
		Input:       input,
		MaxSteps:    scenario.MaxSteps,
		MaxCells:    scenario.MaxCells,
	}); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	eng := engine.New(m.Table, tp,
		engine.WithStartState(start),
		engine.WithMaxSteps(scenario.MaxSteps),
		engine.WithRecorder(store.NewRunRecorder(h.store, runID)),
		engine.WithRunID(runID),
	)

	runErr := drive(ctx, eng, scenario.SingleSteps)
	slog.Debug("scenario run finished", "scenario", scenario.Name, "steps", eng.Steps(), "error", runErr)

	result.Output = eng.Output()
	result.Tape = eng.Tape().String()
	result.State = eng.Config().State
	result.Steps = eng.Steps()
	result.Err = runErr
	result.ErrorCode = engine.ErrorCode(runErr)

	status := ir.RunHalted
	var errMessage string
	if runErr != nil {
		status = ir.RunFailed
		errMessage = runErr.Error()
	}
	if err := h.store.FinishRun(ctx, runID, status, result.Output, result.Steps, result.ErrorCode, errMessage); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	steps, err := h.store.ReadSteps(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = steps
	return nil
}

// drive runs eng to completion. With singleSteps > 0 the first transitions
// are taken one at a time through a debug session.
func drive(ctx context.Context, eng *engine.Engine, singleSteps int) error {
	if singleSteps == 0 {
		_, err := eng.Run(ctx)
		return err
	}

	session := eng.Session()
	for i := 0; i < singleSteps && !session.Done(); i++ {
		if _, err := session.Resume(ctx, engine.DecisionStep); err != nil {
			return err
		}
	}
	_, err := session.Resume(ctx, engine.DecisionContinue)
	return err
}

// check evaluates the expect clause and assertions against result.
func (h *harness) check(scenario *Scenario, result *Result) {
	for _, msg := range checkExpect(scenario.Expect, result) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
}

// checkExpect compares the outcome of a run with the expect clause.
func checkExpect(expect Expect, result *Result) []string {
	var errs []string

	switch {
	case expect.Error == "" && result.Err != nil:
		errs = append(errs, fmt.Sprintf("expected success, got error: %v", result.Err))
	case expect.Error != "" && result.ErrorCode != expect.Error:
		got := "success"
		if result.Err != nil {
			got = result.Err.Error()
		}
		errs = append(errs, fmt.Sprintf("expected error %s, got %s", expect.Error, got))
	}

	if expect.Output != nil && *expect.Output != result.Output {
		errs = append(errs, fmt.Sprintf("expected output %q, got %q", *expect.Output, result.Output))
	}
	if expect.Steps != nil && *expect.Steps != result.Steps {
		errs = append(errs, fmt.Sprintf("expected %d steps, got %d", *expect.Steps, result.Steps))
	}
	if expect.State != "" && expect.State != result.State {
		errs = append(errs, fmt.Sprintf("expected final state %q, got %q", expect.State, result.State))
	}
	return errs
}
