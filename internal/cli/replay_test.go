package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
	"github.com/roach88/turing/internal/testutil"
)

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, _, err := executeCommand(t, "", "replay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "", "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found")
}

func TestReplay_HaltedRun(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.BinaryIncrementTable, "1011", "--start", "right")

	out, _, err := executeCommand(t, "", "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+runID+": 9 step(s), halted")
	assert.Contains(t, out, "✓ All runs deterministic")
}

func TestReplay_FailedRuns(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input string
		extra []string
	}{
		{"lookup", testutil.IncrementTable, "00", nil},
		{"tape", testutil.RunawayTable, "", []string{"--max-cells", "8"}},
		{"quota", testutil.RunawayTable, "", []string{"--max-steps", "20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath, runID := recordRun(t, tt.src, tt.input, tt.extra...)

			out, _, err := executeCommand(t, "", "replay", "--db", dbPath, "--run", runID, "--format", "json")
			require.NoError(t, err)

			var resp struct {
				Status string       `json:"status"`
				Data   ReplayResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "ok", resp.Status)
			require.Len(t, resp.Data.Runs, 1)
			run := resp.Data.Runs[0]
			assert.True(t, run.Deterministic, run.Mismatch)
			assert.Equal(t, ir.RunFailed, run.Status)
			assert.False(t, run.Partial)
			assert.Equal(t, run.Steps, run.Replayed)
		})
	}
}

func TestReplay_TamperedStep(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.IncrementTable, "01")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE steps SET head = 99 WHERE run_id = ? AND seq = 1`, runID)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "", "replay", "--db", dbPath)
	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, out, "✗ "+runID)
	assert.Contains(t, out, "trace differs")
	assert.Contains(t, out, "✗ Determinism verification failed")
}

func TestReplay_TamperedTable(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.IncrementTable, "01")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE runs SET table_source = '0 * 1 r halt' WHERE id = ?`, runID)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "", "replay", "--db", dbPath, "--format", "json")
	requireExitCode(t, err, ExitFailure)

	var resp struct {
		Status string       `json:"status"`
		Error  *CLIError    `json:"error"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNonDeterministic, resp.Error.Code)
	assert.False(t, resp.Data.AllDeterministic)
	assert.Contains(t, resp.Data.Runs[0].Mismatch, "table hash")
}

func TestReplay_UnfinishedRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	table, err := parseTestTable(testutil.RunawayTable)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.WriteRun(ctx, ir.RunRecord{
		ID:          "run-1",
		TableHash:   table.Hash(),
		TableSource: table.Text(),
		StartState:  "0",
	}))
	rule := table.Rules()[0]
	for seq := int64(1); seq <= 3; seq++ {
		require.NoError(t, st.WriteStep(ctx, "run-1", ir.Step{
			Seq: seq, State: "0", Read: ir.Blank, Rule: rule, Head: int(seq), Next: "0",
		}))
	}
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "", "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ run-1: 3 step(s), running, partial")
}

func TestReplay_RunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, _, err = executeCommand(t, "", "replay", "--db", dbPath, "--run", "missing")
	requireExitCode(t, err, ExitCommandError)
}

func TestReplay_TableFilter(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.IncrementTable, "01")
	table := testutil.WriteFile(t, t.TempDir(), "binary.tm", testutil.BinaryIncrementTable)
	_, _, err := executeCommand(t, "", "run", table, "--input-string", "1011", "--start", "right", "--db", dbPath)
	require.NoError(t, err)

	inc, err := parseTestTable(testutil.IncrementTable)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "", "replay", "--db", dbPath, "--table", inc.Hash())
	require.NoError(t, err)
	assert.Contains(t, out, "Replaying 1 run(s)")
	assert.Contains(t, out, "✓ "+runID)

	out, _, err = executeCommand(t, "", "replay", "--db", dbPath, "--table", "unknown")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found")

	_, _, err = executeCommand(t, "", "replay", "--db", dbPath, "--table", inc.Hash(), "--run", runID)
	require.Error(t, err)
}
