package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/constprop/internal/diag"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	// Diagnostics are the diagnostics in scope, for context.
	Diagnostics []diag.Diagnostic
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Diagnostics) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for i, d := range e.Diagnostics {
			fmt.Fprintf(&buf, "  [%d] %s (%s)\n", i+1, d, d.ID)
		}
	}

	return buf.String()
}

// matchDiagnostic reports whether d satisfies every filter set on a.
func matchDiagnostic(d diag.Diagnostic, a Assertion) bool {
	if a.ID != "" && string(d.ID) != a.ID {
		return false
	}
	if a.Severity != "" && d.Severity.String() != a.Severity {
		return false
	}
	if a.Line != 0 && d.Pos.Line != a.Line {
		return false
	}
	if a.Message != "" && !strings.Contains(d.Message, a.Message) {
		return false
	}
	return true
}

func describeFilter(a Assertion) string {
	parts := []string{}
	if a.ID != "" {
		parts = append(parts, "id="+a.ID)
	}
	if a.Severity != "" {
		parts = append(parts, "severity="+a.Severity)
	}
	if a.Line != 0 {
		parts = append(parts, fmt.Sprintf("line=%d", a.Line))
	}
	if a.Message != "" {
		parts = append(parts, fmt.Sprintf("message~%q", a.Message))
	}
	if a.Function != "" {
		parts = append(parts, "function="+a.Function)
	}
	if len(parts) == 0 {
		return "any diagnostic"
	}
	return strings.Join(parts, " ")
}

// assertDiagnostic checks that at least one diagnostic matches.
func assertDiagnostic(result *Result, a Assertion) error {
	diags := result.Diagnostics(a.Function)
	for _, d := range diags {
		if matchDiagnostic(d, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:        AssertDiagnostic,
		Expected:    describeFilter(a),
		Actual:      "not emitted",
		Diagnostics: diags,
	}
}

// assertNoDiagnostics checks that nothing was emitted.
func assertNoDiagnostics(result *Result, a Assertion) error {
	diags := result.Diagnostics(a.Function)
	if len(diags) == 0 {
		return nil
	}
	return &AssertionError{
		Type:        AssertNoDiagnostics,
		Expected:    "no diagnostics",
		Actual:      fmt.Sprintf("%d diagnostics", len(diags)),
		Diagnostics: diags,
	}
}

// assertDiagnosticCount checks the number of matching diagnostics.
func assertDiagnosticCount(result *Result, a Assertion) error {
	diags := result.Diagnostics(a.Function)
	count := 0
	for _, d := range diags {
		if matchDiagnostic(d, a) {
			count++
		}
	}
	if count == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:        AssertDiagnosticCount,
		Expected:    fmt.Sprintf("%d x %s", *a.Count, describeFilter(a)),
		Actual:      fmt.Sprintf("%d", count),
		Diagnostics: diags,
	}
}

// assertFunction checks a property of one function's result.
func assertFunction(result *Result, a Assertion) error {
	f := result.Function(a.Function)
	if f == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("function %s", a.Function),
			Actual:   "no such function",
		}
	}

	var expected, actual string
	switch a.Type {
	case AssertReturns:
		expected, actual = a.Value, f.Returns
		if actual == "" {
			actual = "no literal returned"
		}
	case AssertFolded:
		expected, actual = fmt.Sprint(*a.Count), fmt.Sprint(f.Folded)
	case AssertInstructionCount:
		expected, actual = fmt.Sprint(*a.Count), fmt.Sprint(f.After)
	case AssertInvalidation:
		expected, actual = a.Value, f.Invalidation
	case AssertNoOp:
		expected, actual = "0 x "+a.Op, fmt.Sprintf("%d x %s", f.Ops[a.Op], a.Op)
	}
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:        a.Type,
		Expected:    fmt.Sprintf("%s: %s", a.Function, expected),
		Actual:      actual + "\n\n" + f.IR,
		Diagnostics: f.Diagnostics,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertDiagnostic:
			err = assertDiagnostic(result, assertion)
		case AssertNoDiagnostics:
			err = assertNoDiagnostics(result, assertion)
		case AssertDiagnosticCount:
			err = assertDiagnosticCount(result, assertion)
		case AssertReturns, AssertFolded, AssertInstructionCount, AssertInvalidation, AssertNoOp:
			err = assertFunction(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
