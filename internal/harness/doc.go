// Package harness runs Turing machine scenarios as executable tests.
//
// A scenario names a machine, a tape input and the outcome it expects. The
// harness runs the machine through the real engine, records every step in
// a fresh in-memory store and checks the result against the scenario.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: binary_increment
//	description: "Adds one to a binary number"
//	table_file: machines/increment.tm   # or an inline `table: |` block
//	start: right                        # default: the machine's, else "0"
//	input: "1011"
//	max_steps: 1000                     # 0 means unlimited
//	max_cells: 0                        # 0 means the tape default
//	single_steps: 3                     # drive N single steps, then continue
//	expect:
//	  output: "1100"
//	  steps: 9
//	  state: halt
//	assertions:
//	  - type: trace_contains
//	    rule: "carry 1 0 l *"
//	  - type: trace_order
//	    states: [right, carry, done]
//	  - type: trace_count
//	    state: carry
//	    count: 3
//	  - type: final_tape
//	    tape: "1[1]00_"
//
// A scenario that expects a failure names the error code instead of an
// output:
//
//	expect:
//	  error: LOOKUP_MISSING_RULE
//	  state: "0"
//
// # Assertion Types
//
//   - trace_contains: a rule was applied at least once
//   - trace_order: states were visited in the given order, gaps allowed
//   - trace_count: exactly N steps were taken from a state
//   - final_tape: the tape with its carriage marker after the run
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run id and a fresh in-memory SQLite
// database, so the recorded trace is byte-identical across executions and
// can be compared against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/increment.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
