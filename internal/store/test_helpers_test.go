package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/turing/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a running run record with minimal required fields.
func createTestRun(id string) ir.RunRecord {
	return ir.RunRecord{
		ID:          id,
		TableHash:   "test-hash",
		TableSource: "0 0 1 r 0\n0 1 1 r halt\n",
		StartState:  "0",
		Input:       "01",
	}
}

// createTestStep creates a step of the increment table.
func createTestStep(seq int64, read ir.Symbol, next string) ir.Step {
	return ir.Step{
		Seq:   seq,
		State: "0",
		Read:  read,
		Rule:  ir.Rule{State: "0", Read: read, Write: '1', Move: ir.Right, Next: next, Line: int(seq)},
		Head:  int(seq),
		Next:  next,
	}
}
