package local

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/ir"
)

func TestConcatenateStrings_Literals(t *testing.T) {
	_, b := newEntry(t)
	l := b.StringLiteral(str, "foo")
	r := b.StringLiteral(str, "bar")
	cat := b.Apply("+", []string{SemanticsConcat}, str, l, r)
	b.Return(cat)

	res := ConcatenateStrings(cat)

	require.NotNil(t, res)
	assert.Equal(t, ir.StringLiteral, res.Kind())
	assert.Equal(t, "foobar", res.Str)
	// Uses are left to the caller.
	assert.True(t, cat.HasUses())
}

func TestConcatenateStrings_MadeFromLiterals(t *testing.T) {
	_, b := newEntry(t)
	madeOf := func(s string) *ir.Instruction {
		return b.Apply("String.init", []string{SemanticsMakeUTF8}, str, b.StringLiteral(rawStr, s))
	}
	l, r := madeOf("foo"), madeOf("bar")
	cat := b.Apply("+", []string{SemanticsConcat}, str, l, r)
	b.Return(cat)

	res := ConcatenateStrings(cat)

	require.NotNil(t, res)
	assert.True(t, res.HasSemantics(SemanticsMakeUTF8))
	assert.Equal(t, "String.init", res.Callee)
	assert.Equal(t, ir.Type(str), res.Type())
	require.Equal(t, 1, res.NumOperands())
	assert.Equal(t, "foobar", res.Operand(0).Str)
	assert.Equal(t, ir.Type(rawStr), res.Operand(0).Type())
}

func TestConcatenateStrings_NotConstant(t *testing.T) {
	f, b := newEntry(t)
	l := b.StringLiteral(str, "foo")
	r := f.Entry().AddArgument(str)
	cat := b.Apply("+", []string{SemanticsConcat}, str, l, r)
	b.Return(cat)

	assert.Nil(t, ConcatenateStrings(cat))
}

func TestConcatenateStrings_OtherCalls(t *testing.T) {
	_, b := newEntry(t)
	l := b.StringLiteral(str, "foo")
	call := b.Apply("print", nil, ir.Unit, l, l)
	b.Unreachable()

	assert.False(t, IsStringConcat(call))
	assert.Nil(t, ConcatenateStrings(call))
}
