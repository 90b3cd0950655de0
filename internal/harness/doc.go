// Package harness provides conformance testing for the constant
// propagation pass.
//
// The harness compiles CUE-authored functions, runs the pass over them
// with a scenario's configuration, and checks assertions on the
// transformed functions and the diagnostics.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - functions.cue
//	config:
//	  diagnostics: true
//	  assert_config: debug
//	assertions:
//	  - type: returns
//	    function: add
//	    value: "8"
//	  - type: diagnostic
//	    id: division_by_zero
//	    severity: error
//	    line: 3
//
// # Assertion Types
//
//   - diagnostic: a matching diagnostic was emitted (id, severity, line, message filters)
//   - no_diagnostics: nothing was emitted
//   - diagnostic_count: exactly count matching diagnostics
//   - returns: the function returns a literal with the given text
//   - folded: exactly count instructions were folded
//   - instruction_count: count instructions remain
//   - invalidation: the invalidation summary, e.g. "instructions|branches"
//   - no_op: no instruction with the given mnemonic remains
//
// # Deterministic Testing
//
// Runs are recorded in an in-memory history store under fixed run IDs,
// and diagnostics are read back from it. Diagnostic sequence numbers
// continue across the functions of a scenario. Golden files hold the
// printed IR after the pass, which renumbers values in layout order.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/checked_add.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
