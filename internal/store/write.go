package store

import (
	"context"
	"fmt"

	"github.com/roach88/turing/internal/ir"
)

// WriteRun inserts a run record. Uses ON CONFLICT(id) DO NOTHING for
// idempotency - writing the same run id twice keeps the first record.
//
// A new run is normally written with status running and finished later
// with FinishRun.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	if run.Status == "" {
		run.Status = ir.RunRunning
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}
	if run.IRVersion == "" {
		run.IRVersion = ir.IRVersion
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, table_hash, table_source, start_state, input, max_steps, max_cells,
		 status, output, steps, error_code, error_message, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.TableHash,
		run.TableSource,
		run.StartState,
		run.Input,
		run.MaxSteps,
		run.MaxCells,
		string(run.Status),
		run.Output,
		run.Steps,
		run.ErrorCode,
		run.ErrorMessage,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteStep appends one applied transition of a run.
// Uses ON CONFLICT DO NOTHING for idempotency on (run_id, seq).
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteStep(ctx context.Context, runID string, step ir.Step) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, seq, state, read_symbol, rule_read, rule_write, rule_move, rule_next,
		 rule_line, head, next_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		step.Seq,
		step.State,
		step.Read.String(),
		step.Rule.Read.String(),
		step.Rule.Write.String(),
		step.Rule.Move.Notation(),
		step.Rule.Next,
		step.Rule.Line,
		step.Head,
		step.Next,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run. Only a run that is still running
// is updated; finishing a run twice keeps the first outcome.
func (s *Store) FinishRun(ctx context.Context, id string, status ir.RunStatus, output string, steps int64, errCode, errMessage string) error {
	if status == ir.RunRunning {
		return fmt.Errorf("finish run %s: status must be %q or %q", id, ir.RunHalted, ir.RunFailed)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, output = ?, steps = ?, error_code = ?, error_message = ?
		WHERE id = ? AND status = 'running'
	`,
		string(status), output, steps, errCode, errMessage, id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n == 0 {
		if _, err := s.ReadRun(ctx, id); err != nil {
			return fmt.Errorf("finish run %s: %w", id, err)
		}
	}
	return nil
}
