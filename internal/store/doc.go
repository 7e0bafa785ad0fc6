// Package store provides SQLite-backed durable storage for emulator runs.
//
// The store implements an append-only log with:
//   - Runs: one record per execution, holding the canonical table text,
//     start state and input needed to execute it again
//   - Steps: every applied transition of a run, keyed by (run_id, seq)
//
// # Critical Patterns
//
// Logical Time:
//   - Step ordering uses the seq INTEGER (the engine's logical clock),
//     NEVER timestamps
//   - Enables replay to compare step sequences exactly
//
// Deterministic Query Results:
//   - Step queries use ORDER BY seq ASC
//   - Run listings use ORDER BY id ASC COLLATE BINARY; UUIDv7 ids sort by
//     creation time
//
// Idempotent Writes:
//   - Inserts use ON CONFLICT DO NOTHING, so writing a record twice is harmless
//   - FinishRun only moves a run out of the running status once
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Steps must reference an existing run
package store
