package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Rules     int      `json:"rules"`
	States    []string `json:"states"`
	Start     string   `json:"start"`
	Hash      string   `json:"hash"`
	StoppedAt int      `json:"stopped_at,omitempty"` // Line where text parsing stopped
	Warnings  []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <table>",
		Short: "Check a machine without running it",
		Long: `Load a machine and report its rules and states.

Load errors (unknown directions, malformed documents) fail with exit
code 2. Suspicious but loadable tables produce warnings:
  - text parsing stopped before the end of the file
  - a state is entered but has no rules
  - the start state has no rules`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, err := program.LoadFile(path)
	if err != nil {
		return formatter.Fail("validation failed", err, nil)
	}

	result := validateMachine(m)
	formatter.VerboseLog("Validated %d rule(s) from %s", result.Rules, path)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Table valid: %d rule(s), %d state(s)\n", result.Rules, len(result.States))
	fmt.Fprintf(w, "  States: %s\n", strings.Join(result.States, ", "))
	fmt.Fprintf(w, "  Start:  %s\n", result.Start)
	fmt.Fprintf(w, "  Hash:   %s\n", result.Hash)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning)
	}
	return nil
}

// validateMachine summarizes m and collects warnings about it.
func validateMachine(m *program.Machine) ValidationResult {
	t := m.Table
	result := ValidationResult{
		Valid:  true,
		Rules:  t.Len(),
		States: t.States(),
		Start:  m.StartState(ir.DefaultStartState),
		Hash:   t.Hash(),
	}

	if stop, ok := t.Stopped(); ok {
		result.StoppedAt = stop.Line
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("parsing stopped at line %d: %q", stop.Line, stop.Text))
	}

	defined := make(map[string]bool, len(result.States))
	for _, s := range result.States {
		defined[s] = true
	}
	if !defined[result.Start] {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("start state %q has no rules", result.Start))
	}
	for _, target := range t.Targets() {
		if target != ir.HaltState && !defined[target] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("state %q is entered but has no rules", target))
		}
	}
	return result
}
