// Package engine drives a Turing machine over a tape.
//
// ARCHITECTURE:
//
// Pure Transition:
// Next(table, config) looks up the rule for the current (state, symbol)
// configuration and resolves the next state. It never touches the tape,
// so lookup precedence can be tested with no tape at all.
//
// Step:
// Engine.Step applies one transition as an isolated side effect:
// 1. Next() finds the rule for the current configuration
// 2. The rule's write symbol is stored (the wildcard leaves the cell)
// 3. The carriage moves (a missing neighbor is materialized)
// 4. The state becomes the rule's next state ("*" keeps the current one)
// 5. The step is stamped with the logical clock and handed to the Recorder
//
// Run and Session:
// Run steps until the state is "halt". A Session drives the same engine one
// decision at a time: after each transition it returns to the caller, which
// later resumes it with DecisionStep or DecisionContinue. The engine does
// no work while suspended and never reads input itself.
//
// Errors:
// A missing rule (LookupError), tape exhaustion (ResourceError) and an
// exceeded step quota (StepsExceededError) abort the run immediately.
// None of them is retried.
//
// Everything runs on the caller's goroutine. The engine owns its tape for
// the duration of the run and is not safe for concurrent use.
package engine
