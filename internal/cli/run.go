package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Start       string
	Debug       bool
	MaxSteps    int64
	MaxCells    int
	Database    string
	InputString string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunResult is the outcome of a run.
type RunResult struct {
	RunID     string       `json:"run_id,omitempty"`
	Output    string       `json:"output"`
	State     string       `json:"state"`
	Steps     int64        `json:"steps"`
	Status    ir.RunStatus `json:"status"`
	ErrorCode string       `json:"error_code,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <table> [input]",
		Short: "Run a machine over an input tape",
		Long: `Run a Turing machine until it halts and print the final tape.

The table is a text table, or a .yaml/.yml or .cue machine document that
may also carry a start state and an input. The input is read from the
input file, from --input-string, or from the machine document, in that
order. Blank cells are left out of the printed tape.

With --debug the machine stops before every step: enter 'n' to run one
step or 'c' to run to the end.

With --db every step is recorded in a SQLite database for trace and
replay.

Exit codes:
  0 - Machine halted
  1 - Run failed (no rule for a state and symbol, tape exhausted, step quota)
  2 - Command error (unreadable or malformed table, bad flags)

Examples:
  turing run ./machines/increment.tm ./input.txt
  turing run ./machines/increment.tm --input-string 1011 --start right
  turing run ./machines/increment.yaml --debug
  turing run ./machines/increment.cue --db ./runs.db --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", `start state (default: the machine's, else "0")`)
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "stop before every step")
	cmd.Flags().Int64Var(&opts.MaxSteps, "max-steps", 0, "fail after this many steps (0 = unlimited)")
	cmd.Flags().IntVar(&opts.MaxCells, "max-cells", 0, "tape cell limit (0 = default)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.InputString, "input-string", "", "tape input given inline")

	return cmd
}

func runMachine(opts *RunOptions, args []string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Debug && opts.Format == "json" {
		_ = formatter.Error(ErrCodeUsage, "--debug requires text format", nil)
		return NewExitError(ExitCommandError, "--debug requires text format")
	}

	m, err := loadMachine(args[0], formatter)
	if err != nil {
		return formatter.Fail("failed to load machine", err, nil)
	}

	start := opts.Start
	if start == "" {
		start = m.StartState(ir.DefaultStartState)
	}

	src := TapeSource{
		String:    opts.InputString,
		HasString: cmd.Flags().Changed("input-string"),
		MaxCells:  opts.MaxCells,
	}
	if len(args) > 1 {
		src.Path = args[1]
	}
	input, tp, err := src.load(m, start)
	if err != nil {
		return formatter.Fail("failed to load input", err, nil)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	runID := runIDs.Generate()

	engineOpts := []engine.EngineOption{
		engine.WithStartState(start),
		engine.WithMaxSteps(opts.MaxSteps),
		engine.WithRunID(runID),
	}

	var st *store.Store
	if opts.Database != "" {
		slog.Debug("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := st.WriteRun(ctx, ir.RunRecord{
			ID:          runID,
			TableHash:   m.Table.Hash(),
			TableSource: m.Table.Text(),
			StartState:  start,
			Input:       input,
			MaxSteps:    opts.MaxSteps,
			MaxCells:    opts.MaxCells,
		}); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		engineOpts = append(engineOpts, engine.WithRecorder(store.NewRunRecorder(st, runID)))
	}

	eng := engine.New(m.Table, tp, engineOpts...)

	slog.Debug("run starting", "run", runID, "start", start, "rules", m.Table.Len())
	var runErr error
	if opts.Debug {
		runErr = debugRun(ctx, eng, newDebugTerminal(cmd.InOrStdin(), cmd.OutOrStdout()))
	} else {
		_, runErr = eng.Run(ctx)
	}

	result := RunResult{
		Output: eng.Output(),
		State:  eng.Config().State,
		Steps:  eng.Steps(),
		Status: ir.RunHalted,
	}
	var errMessage string
	if runErr != nil {
		result.Status = ir.RunFailed
		result.ErrorCode = engine.ErrorCode(runErr)
		errMessage = runErr.Error()
	}
	if st != nil {
		result.RunID = runID
		// The context may already be cancelled; the run must still be closed.
		if err := st.FinishRun(context.WithoutCancel(ctx), runID, result.Status, result.Output, result.Steps, result.ErrorCode, errMessage); err != nil {
			slog.Error("failed to finish run", "run", runID, "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			slog.Info("run interrupted", "steps", result.Steps)
		}
		return formatter.Fail("run failed", runErr, result)
	}

	slog.Debug("run halted", "run", runID, "steps", result.Steps)
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Output)
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
