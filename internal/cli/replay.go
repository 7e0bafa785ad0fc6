package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/store"
	"github.com/roach88/turing/internal/tape"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
	Table    string // optional - runs of one table hash only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string       `json:"run_id"`
	Status        ir.RunStatus `json:"status"`
	Steps         int64        `json:"steps"`
	Replayed      int64        `json:"replayed_steps"`
	TraceHash     string       `json:"trace_hash"`
	Partial       bool         `json:"partial,omitempty"` // Run never finished; only recorded steps compared
	Deterministic bool         `json:"deterministic"`
	Mismatch      string       `json:"mismatch,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute recorded runs and verify determinism",
		Long: `Re-execute runs recorded with 'turing run --db' and verify that each
one takes exactly the recorded steps and ends with the recorded tape and
outcome.

Each run is replayed from the table source, start state, input and limits
stored with it. Runs that never finished are compared up to their last
recorded step.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  turing replay --db ./runs.db
  turing replay --db ./runs.db --run 0192d4e0-...
  turing replay --db ./runs.db --table 3f1c...
  turing replay --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	cmd.Flags().StringVar(&opts.Table, "table", "", "replay only runs of the table with this hash")
	cmd.MarkFlagsMutuallyExclusive("run", "table")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose, cmd.ErrOrStderr())
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []ir.RunRecord
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []ir.RunRecord{run}
	} else {
		if opts.Table != "" {
			runs, err = st.ListRunsByTable(ctx, opts.Table)
		} else {
			runs, err = st.ListRuns(ctx)
		}
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	if len(runs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Runs:             []ReplayRunResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database.")
		return nil
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	for _, run := range runs {
		runResult, err := replayAndVerifyRun(ctx, st, run)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replayRecorder keeps replayed steps in memory.
type replayRecorder struct {
	steps []ir.Step
}

func (r *replayRecorder) RecordStep(_ context.Context, step ir.Step) error {
	r.steps = append(r.steps, step)
	return nil
}

// replayAndVerifyRun re-executes run and compares it with its recorded
// steps. The returned error is reserved for store failures; differences
// are reported in the result.
func replayAndVerifyRun(ctx context.Context, st *store.Store, run ir.RunRecord) (ReplayRunResult, error) {
	recorded, err := st.ReadSteps(ctx, run.ID)
	if err != nil {
		return ReplayRunResult{}, err
	}

	result := ReplayRunResult{
		RunID:  run.ID,
		Status: run.Status,
		Steps:  int64(len(recorded)),
	}

	// A run that was interrupted or is still running has no recorded
	// outcome; only its steps can be compared.
	result.Partial = run.Status == ir.RunRunning || (run.Status == ir.RunFailed && run.ErrorCode == "")
	if result.Partial && len(recorded) == 0 {
		result.Deterministic = true
		return result, nil
	}

	mismatch := func(format string, args ...any) (ReplayRunResult, error) {
		result.Mismatch = fmt.Sprintf(format, args...)
		return result, nil
	}

	table, err := program.ParseString(run.TableSource)
	if err != nil {
		return mismatch("stored table does not load: %v", err)
	}
	if table.Hash() != run.TableHash {
		return mismatch("table hash %s does not match stored %s", table.Hash(), run.TableHash)
	}

	var tapeOpts []tape.Option
	if run.MaxCells > 0 {
		tapeOpts = append(tapeOpts, tape.WithMaxCells(run.MaxCells))
	}
	tp, err := tape.FromString(run.Input, tapeOpts...)
	if err != nil {
		return mismatch("stored input does not load: %v", err)
	}

	maxSteps := run.MaxSteps
	if result.Partial {
		maxSteps = int64(len(recorded))
	}

	rec := &replayRecorder{}
	eng := engine.New(table, tp,
		engine.WithStartState(run.StartState),
		engine.WithMaxSteps(maxSteps),
		engine.WithRecorder(rec),
		engine.WithRunID(run.ID),
	)
	res, runErr := eng.Run(ctx)
	result.Replayed = int64(len(rec.steps))

	output := run.Output
	replayedOutput := res.Output
	if result.Partial {
		output, replayedOutput = "", ""
	}

	want, err := ir.TraceHash(recorded, output)
	if err != nil {
		return ReplayRunResult{}, err
	}
	got, err := ir.TraceHash(rec.steps, replayedOutput)
	if err != nil {
		return ReplayRunResult{}, err
	}
	result.TraceHash = got

	switch {
	case want != got:
		return mismatch("trace differs: replayed %d step(s) ending in %q, recorded %d ending in %q",
			len(rec.steps), res.Output, len(recorded), run.Output)
	case result.Partial:
	case engine.ErrorCode(runErr) != run.ErrorCode:
		return mismatch("outcome differs: replayed %q, recorded %q", engine.ErrorCode(runErr), run.ErrorCode)
	}

	result.Deterministic = true
	return result, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeNonDeterministic,
			Message: "replay differs from the recorded runs",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replaying %d run(s)...\n\n", result.TotalRuns)
	for _, run := range result.Runs {
		mark := "✓"
		if !run.Deterministic {
			mark = "✗"
		}
		suffix := ""
		if run.Partial {
			suffix = ", partial"
		}
		fmt.Fprintf(w, "%s %s: %d step(s), %s%s\n", mark, run.RunID, run.Steps, run.Status, suffix)
		if run.Mismatch != "" {
			fmt.Fprintf(w, "  %s\n", run.Mismatch)
		}
		if verbose && run.TraceHash != "" {
			fmt.Fprintf(w, "  trace %s\n", run.TraceHash)
		}
	}

	fmt.Fprintln(w)
	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Determinism verification failed")
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ All runs deterministic")
	return nil
}
