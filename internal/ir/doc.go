// Package ir provides the value types shared by every other package of the
// emulator: tape symbols, move directions, transition rules, and the
// records of executed steps and runs.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Symbols are single runes; '_' is blank and '*' is the wildcard
//   - Logical clocks (Step.Seq) only, never wall-clock timestamps
//   - All JSON tags use snake_case
package ir
