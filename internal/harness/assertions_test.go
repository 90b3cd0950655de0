package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/ir"
)

func intPtr(n int) *int { return &n }

func testResult() *Result {
	r := NewResult()
	r.Functions = []FunctionResult{
		{
			Name:         "f",
			Returns:      "42",
			Folded:       2,
			After:        2,
			Invalidation: "instructions",
			Ops:          map[string]int{"integer_literal": 1, "return": 1},
		},
		{
			Name:         "g",
			Invalidation: "nothing",
			Ops:          map[string]int{"builtin": 1},
			Diagnostics: []diag.Diagnostic{
				{ID: diag.DivisionByZero, Severity: diag.Error, Message: "division by zero", Pos: ir.Pos{File: "a.swift", Line: 4, Col: 1}},
				{ID: diag.WarningIntToFPInexact, Severity: diag.Warning, Message: "inexact", Pos: ir.Pos{File: "a.swift", Line: 5, Col: 1}},
			},
		},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertReturns, Function: "f", Value: "42"},
		{Type: AssertFolded, Function: "f", Count: intPtr(2)},
		{Type: AssertInstructionCount, Function: "f", Count: intPtr(2)},
		{Type: AssertInvalidation, Function: "g", Value: "nothing"},
		{Type: AssertNoOp, Function: "f", Op: "builtin"},
		{Type: AssertNoDiagnostics, Function: "f"},
		{Type: AssertDiagnostic, ID: "division_by_zero", Severity: "error", Line: 4},
		{Type: AssertDiagnostic, Function: "g", ID: "warning_int_to_fp_inexact", Message: "inex"},
		{Type: AssertDiagnosticCount, Count: intPtr(2)},
		{Type: AssertDiagnosticCount, Severity: "warning", Count: intPtr(1)},
	}
	assert.Empty(t, EvaluateAssertions(testResult(), assertions))
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"wrong value", Assertion{Type: AssertReturns, Function: "f", Value: "41"}, "Actual: 42"},
		{"no literal", Assertion{Type: AssertReturns, Function: "g", Value: "1"}, "no literal returned"},
		{"wrong count", Assertion{Type: AssertFolded, Function: "f", Count: intPtr(3)}, "Expected: f: 3"},
		{"op remains", Assertion{Type: AssertNoOp, Function: "g", Op: "builtin"}, "Actual: 1 x builtin"},
		{"missing diagnostic", Assertion{Type: AssertDiagnostic, ID: "division_by_zero", Line: 9}, "id=division_by_zero line=9"},
		{"diagnostics present", Assertion{Type: AssertNoDiagnostics}, "2 diagnostics"},
		{"diagnostic count", Assertion{Type: AssertDiagnosticCount, ID: "division_by_zero", Count: intPtr(0)}, "Actual: 1"},
		{"unknown type", Assertion{Type: "final_state"}, `unknown assertion type "final_state"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_ListsDiagnostics(t *testing.T) {
	err := &AssertionError{
		Type:     AssertDiagnostic,
		Expected: "id=x",
		Actual:   "not emitted",
		Diagnostics: []diag.Diagnostic{
			{ID: diag.DivisionByZero, Message: "division by zero", Pos: ir.Pos{File: "a.swift", Line: 1, Col: 2}},
		},
	}
	want := "Assertion failed: diagnostic\n" +
		"  Expected: id=x\n" +
		"  Actual: not emitted\n" +
		"\nDiagnostics:\n" +
		"  [1] a.swift:1:2: error: division by zero (division_by_zero)\n"
	assert.Equal(t, want, err.Error())
}
