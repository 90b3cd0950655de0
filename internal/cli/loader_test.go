package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFunctions(t *testing.T) {
	res, err := LoadFunctions(specsDir, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	require.Len(t, res.Functions, 2)
	assert.Equal(t, "add", res.Functions[0].Name)
	assert.Equal(t, "div", res.Functions[1].Name)

	res, err = LoadFunctions(specsDir, "div")
	require.NoError(t, err)
	require.Len(t, res.Functions, 1)
	assert.Equal(t, "div", res.Functions[0].Name)
}

func TestLoadFunctions_Errors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		only string
		code string
	}{
		{"missing", "testdata/nope", "", ErrCodeNotFound},
		{"not a directory", "testdata/specs/arith.cue", "", ErrCodeNotFound},
		{"no files", t.TempDir(), "", ErrCodeNoFiles},
		{"no functions", writeSpecs(t, "other: 1\n"), "", ErrCodeNoFunctions},
		{"unknown function", specsDir, "mul", ErrCodeNoFunctions},
		{"duplicate label", writeSpecs(t, `function: f: blocks: [
	{label: "entry", insts: [{op: "unreachable"}]},
	{label: "entry", insts: [{op: "unreachable"}]},
]`), "", ErrCodeNaming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFunctions(tt.dir, tt.only)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tt.code, le.Code)
		})
	}
}

func TestLoadErrorPosition(t *testing.T) {
	dir := writeSpecs(t, `function: f: blocks: [{label: "entry", insts: [{op: "return", args: ["x"]}]}]`)

	_, err := LoadFunctions(dir, "")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeOperands, le.Code)
	require.True(t, le.Pos.IsValid())
	assert.Contains(t, le.Error(), "specs.cue:")
	assert.Contains(t, le.Error(), `E110: function.f: undefined value "x"`)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"cue":     ErrCodeSchema,
		"op":      ErrCodeInvalidOp,
		"type":    ErrCodeInvalidType,
		"value":   ErrCodeInvalidValue,
		"args":    ErrCodeOperands,
		"label":   ErrCodeNaming,
		"builtin": ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}
