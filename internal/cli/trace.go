package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	State    string // optional - filter to steps taken from this state
}

// TraceStep represents a single step in the trace timeline.
type TraceStep struct {
	Seq   int64  `json:"seq"`
	State string `json:"state"`
	Read  string `json:"read"`
	Rule  string `json:"rule"`
	Line  int    `json:"line,omitempty"`
	Head  int    `json:"head"`
	Next  string `json:"next"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      ir.RunRecord `json:"run"`
	Timeline []TraceStep  `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalSteps int            `json:"total_steps"`
	ByState    map[string]int `json:"by_state"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded steps of a run",
		Long: `Show a run recorded with 'turing run --db'.

The output includes:
- Run: table hash, start state, input, status and final tape
- Timeline: every applied step with the rule that matched
- Stats: steps per state

Examples:
  turing trace --db ./runs.db --run 0192d4e0-...
  turing trace --db ./runs.db --run 0192d4e0-... --state carry
  turing trace --db ./runs.db --run 0192d4e0-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to trace (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.State, "state", "", "only show steps taken from this state")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	steps, err := st.ReadSteps(ctx, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{
		Run:      run,
		Timeline: buildTimeline(steps, opts.State),
		Stats:    TraceStats{TotalSteps: len(steps), ByState: make(map[string]int)},
	}
	for _, step := range steps {
		result.Stats.ByState[step.State]++
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTimeline converts stored steps to timeline entries, keeping only
// steps taken from stateFilter when it is set.
func buildTimeline(steps []ir.Step, stateFilter string) []TraceStep {
	timeline := make([]TraceStep, 0, len(steps))
	for _, step := range steps {
		if stateFilter != "" && step.State != stateFilter {
			continue
		}
		timeline = append(timeline, TraceStep{
			Seq:   step.Seq,
			State: step.State,
			Read:  step.Read.String(),
			Rule:  step.Rule.String(),
			Line:  step.Rule.Line,
			Head:  step.Head,
			Next:  step.Next,
		})
	}
	return timeline
}

func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.Run.ID,
	})
}

func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()
	run := result.Run

	fmt.Fprintf(w, "Trace for Run: %s\n", run.ID)
	fmt.Fprintf(w, "Status: %s\n", run.Status)
	fmt.Fprintf(w, "Start:  %s\n", run.StartState)
	fmt.Fprintf(w, "Input:  %q\n", run.Input)
	fmt.Fprintf(w, "Output: %q\n", run.Output)
	if run.ErrorCode != "" {
		fmt.Fprintf(w, "Error:  %s\n", run.ErrorMessage)
	}
	if verbose {
		fmt.Fprintf(w, "Table:  %s\n", run.TableHash)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timeline:")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no steps)")
	}
	for _, step := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s -> %s (head %d)\n", step.Seq, step.Rule, step.Next, step.Head)
		if verbose && step.Line > 0 {
			fmt.Fprintf(w, "       line %d\n", step.Line)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "  Total Steps: %d\n", result.Stats.TotalSteps)
	return nil
}
