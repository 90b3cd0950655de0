package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/ir"
)

func compile(t *testing.T, src string) ([]*ir.Function, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("input.cue"))
	require.NoError(t, v.Err())
	return CompileFunctions(v)
}

func TestCompileFunctionsBasic(t *testing.T) {
	fns, err := compile(t, `
		function: add: {
			blocks: [{
				label: "entry"
				insts: [
					{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 5},
					{name: "b", op: "integer_literal", type: "Builtin.Int8", value: "0x03"},
					{name: "t", op: "integer_literal", type: "Builtin.Int1", value: 1},
					{name: "s", op: "builtin", builtin: "uadd_with_overflow_Int8",
						type: "(Builtin.Int8, Builtin.Int1)", args: ["a", "b", "t"]},
					{name: "v", op: "tuple_extract", args: ["s"], index: 0},
					{op: "return", args: ["v"]},
				]
			}]
		}
		function: other: {
			specialization: true
			blocks: [{label: "entry", insts: [{op: "unreachable"}]}]
		}
	`)
	require.NoError(t, err)
	require.Len(t, fns, 2)

	fn := fns[0]
	assert.Equal(t, "add", fn.Name)
	assert.False(t, fn.Specialization)
	require.NoError(t, ir.Verify(fn))

	insts := fn.Instructions()
	require.Len(t, insts, 6)
	b, ok := insts[1].IntLiteral()
	require.True(t, ok)
	assert.Equal(t, "3", b.Text(true))
	assert.Equal(t, ir.UAddOver, insts[3].Builtin.Kind)
	assert.Same(t, insts[4], fn.Entry().Terminator().Operand(0))

	assert.Equal(t, "other", fns[1].Name)
	assert.True(t, fns[1].Specialization)
}

func TestCompileFunctionLocations(t *testing.T) {
	fns, err := compile(t, `
		function: conv: {
			blocks: [{
				label: "entry"
				insts: [
					{name: "x", op: "float_literal", type: "Builtin.FPIEEE64", value: "1e400",
						loc: {file: "main.swift", line: 2, col: 9, expr: {kind: "float_literal", digits: "1e400"}}},
					{name: "y", op: "builtin", builtin: "fptrunc_FPIEEE64_FPIEEE32", type: "Builtin.FPIEEE32", args: ["x"],
						loc: {file: "main.swift", line: 2, col: 9, expr: {
							kind: "constructor", type: "Float", implicit: true
							args: [{kind: "float_literal", digits: "1e400", type: "Double",
								range: {start: {line: 2, col: 15}, end: {line: 2, col: 20}}}]
						}}},
					{op: "return", args: ["y"]},
				]
			}]
		}
	`)
	require.NoError(t, err)
	insts := fns[0].Instructions()

	assert.True(t, insts[0].Float.IsInf())
	assert.Equal(t, ir.Pos{File: "main.swift", Line: 2, Col: 9}, insts[0].Loc.Pos)

	call := insts[1].Loc.ConstructorCall()
	require.NotNil(t, call)
	assert.Equal(t, "Float", call.Type)
	assert.True(t, call.Implicit)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "1e400", call.Args[0].Digits)
	assert.Equal(t, ir.Pos{File: "main.swift", Line: 2, Col: 15}, call.Args[0].Range.Start)
}

func TestCompileFunctionBlocksAndCasts(t *testing.T) {
	fns, err := compile(t, `
		function: cast: {
			structs: Point: [{name: "x", type: "Builtin.Int8"}, {name: "y", type: "Builtin.Int8"}]
			blocks: [{
				label: "entry"
				args: [{name: "p", type: "Point"}, {name: "o", type: "Animal"}]
				insts: [
					{name: "y", op: "struct_extract", args: ["p"], field: "y"},
					{op: "checked_cast_br", args: ["o"], cast: "Dog", targets: ["ok", "fail"]},
				]
			}, {
				label: "ok"
				args: [{name: "d", type: "Dog"}]
				insts: [{op: "br", targets: ["fail"]}]
			}, {
				label: "fail"
				insts: [{op: "unreachable"}]
			}]
		}
	`)
	require.NoError(t, err)
	fn := fns[0]
	require.NoError(t, ir.Verify(fn))
	require.Len(t, fn.Blocks(), 3)

	extract := fn.Entry().Instructions()[0]
	assert.Equal(t, 1, extract.Field)
	term := fn.Entry().Terminator()
	assert.Equal(t, ir.CheckedCastBranch, term.Kind())
	assert.Equal(t, "Dog", term.CastType.String())
	assert.Equal(t, "ok", term.Targets[0].Label)
}

func TestCompileFunctionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown field",
			src:  `function: f: blocks: [{label: "entry", insts: [{op: "unreachable", colour: "red"}]}]`,
			want: "not allowed",
		},
		{
			name: "unknown op",
			src:  `function: f: blocks: [{label: "entry", insts: [{op: "jump"}]}]`,
		},
		{
			name: "no blocks",
			src:  `function: f: blocks: []`,
		},
		{
			name: "undefined value",
			src:  `function: f: blocks: [{label: "entry", insts: [{op: "return", args: ["x"]}]}]`,
			want: `undefined value "x"`,
		},
		{
			name: "undefined block",
			src:  `function: f: blocks: [{label: "entry", insts: [{op: "br", targets: ["nowhere"]}]}]`,
			want: `undefined block "nowhere"`,
		},
		{
			name: "duplicate value",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 1},
				{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 2},
			]}]`,
			want: `value "a" defined twice`,
		},
		{
			name: "literal too wide",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 256},
			]}]`,
			want: "256 does not fit in Builtin.Int8",
		},
		{
			name: "literal type",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "integer_literal", type: "Builtin.FPIEEE32", value: 1},
			]}]`,
			want: "needs a Builtin.IntN type",
		},
		{
			name: "bad type",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "alloc_stack", type: "(Builtin.Int8"},
			]}]`,
			want: "type",
		},
		{
			name: "arity",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 1},
				{op: "return", args: ["a", "a"]},
			]}]`,
			want: "return takes 1 operands, got 2",
		},
		{
			name: "naming a terminator",
			src:  `function: f: blocks: [{label: "entry", insts: [{name: "u", op: "unreachable"}]}]`,
			want: "unreachable has no result to name",
		},
		{
			name: "widening checked truncation",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 1},
				{name: "t", op: "builtin", builtin: "s_to_s_checked_trunc_Int8_Int32",
					type: "(Builtin.Int32, Builtin.Int1)", args: ["a"]},
			]}]`,
			want: "cannot widen Builtin.Int8 to Builtin.Int32",
		},
		{
			name: "resizing sign conversion",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "integer_literal", type: "Builtin.Int8", value: 1},
				{name: "t", op: "builtin", builtin: "s_to_u_checked_conversion_Int16",
					type: "(Builtin.Int16, Builtin.Int1)", args: ["a"]},
			]}]`,
			want: "cannot change width from Builtin.Int8 to Builtin.Int16",
		},
		{
			name: "checked truncation of a float",
			src: `function: f: blocks: [{label: "entry", insts: [
				{name: "a", op: "float_literal", type: "Builtin.FPIEEE32", value: "1.5"},
				{name: "t", op: "builtin", builtin: "u_to_u_checked_trunc_Int32_Int8",
					type: "(Builtin.Int8, Builtin.Int1)", args: ["a"]},
			]}]`,
			want: "needs a Builtin.IntN operand",
		},
		{
			name: "missing struct field",
			src: `function: f: {
				structs: P: [{name: "x", type: "Builtin.Int8"}]
				blocks: [{label: "entry", args: [{name: "p", type: "P"}], insts: [
					{name: "z", op: "struct_extract", args: ["p"], field: "z"},
				]}]
			}`,
			want: `no field "z" in P`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	_, err := compile(t, `function: f: blocks: [{label: "entry", insts: [{op: "return", args: ["x"]}]}]`)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "args", ce.Field)
	assert.True(t, ce.Pos.IsValid())
	assert.Equal(t, "input.cue", ce.Pos.Filename())
}

func TestCompileFunctionsNone(t *testing.T) {
	fns, err := compile(t, `other: 1`)
	require.NoError(t, err)
	assert.Empty(t, fns)
}
