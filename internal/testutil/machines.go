// Package testutil holds fixtures shared by tests across packages: sample
// machines in every supported file format and deterministic generators.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// IncrementTable rewrites a leading 0 to 1 and halts on the first 1.
// Input "01" becomes "11" in two steps.
const IncrementTable = "0 0 1 r 0\n0 1 1 r halt\n"

// BinaryIncrementTable adds one to a binary number. The carriage starts on
// the most significant digit.
const BinaryIncrementTable = `right 0 0 r *
right 1 1 r *
right _ _ l carry
carry 1 0 l *
carry 0 1 * done
carry _ 1 * done
done * * * halt
`

// WildcardTable prefers the exact rule for A and falls back to the
// wildcard rule for every other symbol. Input "A" yields "1".
const WildcardTable = `0 A B r 0
0 * 1 l halt
`

// RunawayTable moves right forever and never halts.
const RunawayTable = "0 * * r 0\n"

// BinaryIncrementYAML is BinaryIncrementTable as a YAML machine document.
const BinaryIncrementYAML = `start: right
input: "1011"
rules:
  - {state: right, read: "0", write: "0", move: r, next: "*"}
  - {state: right, read: "1", write: "1", move: r, next: "*"}
  - {state: right, read: _, write: _, move: l, next: carry}
  - {state: carry, read: "1", write: "0", move: l, next: "*"}
  - {state: carry, read: "0", write: "1", move: "*", next: done}
  - {state: carry, read: _, write: "1", move: "*", next: done}
  - {state: done, read: "*", write: "*", move: "*", next: halt}
`

// BinaryIncrementCUE is BinaryIncrementTable as a CUE machine document.
const BinaryIncrementCUE = `start: "right"
input: "1011"
rules: [
	{state: "right", read: "0", write: "0", move: "r", next: "*"},
	{state: "right", read: "1", write: "1", move: "r", next: "*"},
	{state: "right", read: "_", write: "_", move: "l", next: "carry"},
	{state: "carry", read: "1", write: "0", move: "l", next: "*"},
	{state: "carry", read: "0", write: "1", move: "*", next: "done"},
	{state: "carry", read: "_", write: "1", move: "*", next: "done"},
	{state: "done", read: "*", write: "*", move: "*", next: "halt"},
]
`

// WriteFile writes content to name inside dir and returns the full path.
// A missing dir is created.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
