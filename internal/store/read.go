package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/turing/internal/ir"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// selectRuns lists the runs columns in scanRun order.
const selectRuns = `
	SELECT id, table_hash, table_source, start_state, input, max_steps, max_cells, status, output, steps,
	       error_code, error_message, engine_version, ir_version
	FROM runs`

// ReadRun returns the run record with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs ordered by id.
// Returns an empty slice (not nil) when there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunRecord, error) {
	return s.queryRuns(ctx, selectRuns+` ORDER BY id COLLATE BINARY ASC`)
}

// ListRunsByTable returns the runs of the table with the given content
// hash, ordered by id.
func (s *Store) ListRunsByTable(ctx context.Context, tableHash string) ([]ir.RunRecord, error) {
	return s.queryRuns(ctx, selectRuns+` WHERE table_hash = ? ORDER BY id COLLATE BINARY ASC`, tableHash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the steps of a run in seq order.
// Returns an empty slice (not nil) when the run has no steps.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]ir.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, state, read_symbol, rule_read, rule_write, rule_move, rule_next,
		       rule_line, head, next_state
		FROM steps
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []ir.Step{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	var status string
	err := row.Scan(
		&run.ID,
		&run.TableHash,
		&run.TableSource,
		&run.StartState,
		&run.Input,
		&run.MaxSteps,
		&run.MaxCells,
		&status,
		&run.Output,
		&run.Steps,
		&run.ErrorCode,
		&run.ErrorMessage,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err != nil {
		return ir.RunRecord{}, err
	}
	run.Status = ir.RunStatus(status)
	return run, nil
}

func scanStep(row scanner) (ir.Step, error) {
	var (
		step                      ir.Step
		read, ruleRead, ruleWrite string
		ruleMove                  string
	)
	err := row.Scan(
		&step.Seq,
		&step.State,
		&read,
		&ruleRead,
		&ruleWrite,
		&ruleMove,
		&step.Rule.Next,
		&step.Rule.Line,
		&step.Head,
		&step.Next,
	)
	if err != nil {
		return ir.Step{}, fmt.Errorf("scan step: %w", err)
	}

	step.Rule.State = step.State
	if err := step.Read.UnmarshalText([]byte(read)); err != nil {
		return ir.Step{}, fmt.Errorf("step %d: read_symbol: %w", step.Seq, err)
	}
	if err := step.Rule.Read.UnmarshalText([]byte(ruleRead)); err != nil {
		return ir.Step{}, fmt.Errorf("step %d: rule_read: %w", step.Seq, err)
	}
	if err := step.Rule.Write.UnmarshalText([]byte(ruleWrite)); err != nil {
		return ir.Step{}, fmt.Errorf("step %d: rule_write: %w", step.Seq, err)
	}
	if err := step.Rule.Move.UnmarshalText([]byte(ruleMove)); err != nil {
		return ir.Step{}, fmt.Errorf("step %d: rule_move: %w", step.Seq, err)
	}
	return step, nil
}
