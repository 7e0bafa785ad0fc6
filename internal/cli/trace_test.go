package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/store"
	"github.com/roach88/turing/internal/testutil"
)

// recordRun runs table over input with --db and returns the database path
// and run id.
func recordRun(t *testing.T, src, input string, extra ...string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	table := testutil.WriteFile(t, dir, "machine.tm", src)
	dbPath := filepath.Join(dir, "runs.db")

	args := append([]string{"run", table, "--input-string", input, "--db", dbPath}, extra...)
	_, _, _ = executeCommand(t, "", args...)
	return dbPath, onlyRun(t, dbPath).ID
}

func TestTraceMissingFlags(t *testing.T) {
	_, _, err := executeCommand(t, "", "trace", "--db", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTrace_Text(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.IncrementTable, "01")

	out, _, err := executeCommand(t, "", "trace", "--db", dbPath, "--run", runID)
	require.NoError(t, err)

	assert.Contains(t, out, "Trace for Run: "+runID)
	assert.Contains(t, out, "Status: halted")
	assert.Contains(t, out, `Output: "11"`)
	assert.Contains(t, out, "[1] 0 0 1 r 0 -> 0 (head 1)")
	assert.Contains(t, out, "[2] 0 1 1 r halt -> halt (head 2)")
	assert.Contains(t, out, "Total Steps: 2")
}

func TestTrace_FailedRun(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.IncrementTable, "00")

	out, _, err := executeCommand(t, "", "trace", "--db", dbPath, "--run", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: failed")
	assert.Contains(t, out, "Error:  LOOKUP_MISSING_RULE")
}

func TestTrace_StateFilter(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.BinaryIncrementTable, "1011", "--start", "right")

	out, _, err := executeCommand(t, "", "trace", "--db", dbPath, "--run", runID, "--state", "carry", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		RunID  string      `json:"run_id"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, runID, resp.RunID)
	require.Len(t, resp.Data.Timeline, 3)
	for _, step := range resp.Data.Timeline {
		assert.Equal(t, "carry", step.State)
	}
	assert.Equal(t, 9, resp.Data.Stats.TotalSteps)
	assert.Equal(t, 5, resp.Data.Stats.ByState["right"])
	assert.Equal(t, "1100", resp.Data.Run.Output)
}

func TestTrace_RunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "", "trace", "--db", dbPath, "--run", "nope")
	requireExitCode(t, err, ExitCommandError)
	assert.Contains(t, out, "Error [E002]: run not found: nope")
}

func TestBuildTimeline(t *testing.T) {
	dbPath, runID := recordRun(t, testutil.IncrementTable, "01")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	steps, err := st.ReadSteps(t.Context(), runID)
	require.NoError(t, err)

	timeline := buildTimeline(steps, "")
	require.Len(t, timeline, 2)
	assert.Equal(t, TraceStep{Seq: 1, State: "0", Read: "0", Rule: "0 0 1 r 0", Line: 1, Head: 1, Next: "0"}, timeline[0])
	assert.Empty(t, buildTimeline(steps, "other"))
}
