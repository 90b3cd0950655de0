package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"checked_add", "string_concat"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_DiagnosticsReadBack(t *testing.T) {
	result, err := Run(loadTestScenario(t, "checked_add"))
	require.NoError(t, err)

	div := result.Function("div")
	require.NotNil(t, div)
	require.Len(t, div.Diagnostics, 1)
	d := div.Diagnostics[0]
	assert.Equal(t, "division by zero", d.Message)
	assert.Equal(t, "main.swift", d.Pos.File)
	assert.Equal(t, 15, d.Pos.Col)
	assert.Equal(t, int64(1), d.Seq)

	assert.Equal(t, 1, result.Function("add").Ops["integer_literal"])
	assert.Nil(t, result.Function("missing"))
}

func TestRun_FailingAssertions(t *testing.T) {
	s := loadTestScenario(t, "checked_add")
	two := 2
	s.Assertions = []Assertion{
		{Type: AssertReturns, Function: "add", Value: "9"},
		{Type: AssertFolded, Function: "div", Count: &two},
		{Type: AssertNoDiagnostics},
		{Type: AssertNoOp, Function: "div", Op: "builtin"},
		{Type: AssertReturns, Function: "missing", Value: "1"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Expected: add: 9")
	assert.Contains(t, result.Errors[0], "Actual: 8")
	assert.Contains(t, result.Errors[2], "division by zero")
	assert.Contains(t, result.Errors[3], "1 x builtin")
	assert.Contains(t, result.Errors[4], "no such function")
}

func TestRun_DiagnosticsOff(t *testing.T) {
	s := loadTestScenario(t, "checked_add")
	s.Config.Diagnostics = false
	s.Assertions = []Assertion{{Type: AssertNoDiagnostics}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CompileError(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "bad.cue")
	writeFile(t, spec, `function: f: blocks: [{label: "entry", insts: [{op: "return", args: ["x"]}]}]`)

	_, err := Run(&Scenario{Name: "bad", Specs: []string{spec}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undefined value "x"`)
}

func TestRun_NoFunctions(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "empty.cue")
	writeFile(t, spec, `other: 1`)

	_, err := Run(&Scenario{Name: "empty", Specs: []string{spec}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no functions declared")
}

func TestSnapshot(t *testing.T) {
	result := NewResult()
	result.Functions = append(result.Functions,
		FunctionResult{Name: "a", IR: "sil @a {\n}\n", Invalidation: "nothing"},
		FunctionResult{Name: "b", IR: "sil @b {\n}\n", Folded: 1, Before: 3, After: 2, Invalidation: "instructions"},
	)

	want := "sil @a {\n}\n// folded: 0, instructions: 0 -> 0, invalidated: nothing\n\n" +
		"sil @b {\n}\n// folded: 1, instructions: 3 -> 2, invalidated: instructions\n"
	assert.Equal(t, want, string(Snapshot(result)))
}
