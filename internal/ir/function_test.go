package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/apint"
)

var i8 = IntType{Width: 8}

func newEntry(t *testing.T) (*Function, *Builder) {
	t.Helper()
	f := NewFunction("test")
	return f, NewBuilder(f.NewBlock(""))
}

func TestBuilder_TracksUses(t *testing.T) {
	f, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 5))
	y := b.IntegerLiteral(i8, apint.FromInt64(8, 3))
	flag := b.IntegerLiteral(Int1, apint.Bool(true))
	add := b.Builtin("uadd_with_overflow_Int8", TupleType{Elems: []Type{i8, Int1}}, x, y, flag)
	sum := b.TupleExtract(add, 0)
	b.Return(sum)

	assert.Equal(t, 1, x.NumUses())
	assert.Equal(t, []*Instruction{add}, x.Users())
	assert.Equal(t, []Use{{User: add.ID(), Index: 1}}, y.Uses())
	assert.Equal(t, []*Instruction{x, y, flag}, add.Operands())
	assert.Equal(t, Type(i8), sum.Type())
	assert.Equal(t, "bb0", f.Entry().Label)
	assert.Len(t, f.Instructions(), 6)
	require.NoError(t, Verify(f))
}

func TestReplaceAllUsesWith(t *testing.T) {
	f, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	y := b.IntegerLiteral(i8, apint.FromInt64(8, 2))
	and := b.Builtin("and_Int8", i8, x, x)
	b.Return(and)

	x.ReplaceAllUsesWith(y)

	assert.False(t, x.HasUses())
	assert.Equal(t, 2, y.NumUses())
	assert.Equal(t, []*Instruction{y, y}, and.Operands())
	require.NoError(t, Verify(f))
}

func TestReplaceAllUsesWith_SelfPanics(t *testing.T) {
	_, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	assert.Panics(t, func() { x.ReplaceAllUsesWith(x) })
}

func TestErase(t *testing.T) {
	f, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	neg := b.Builtin("xor_Int8", i8, x, x)
	b.Return(x)

	neg.Erase()

	assert.True(t, neg.IsErased())
	assert.Nil(t, f.Value(neg.ID()))
	assert.Equal(t, 1, x.NumUses())
	assert.Len(t, f.Entry().Instructions(), 2)
	require.NoError(t, Verify(f))
}

func TestErase_WithUsesPanics(t *testing.T) {
	_, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	b.Return(x)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ierr, ok := r.(*InvariantError)
		require.True(t, ok)
		assert.Equal(t, "erase", ierr.Op)
		assert.Contains(t, ierr.Error(), "1 uses remain")
	}()
	x.Erase()
}

func TestDropAllReferences(t *testing.T) {
	_, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	or := b.Builtin("or_Int8", i8, x, x)

	or.DropAllReferences()

	assert.False(t, x.HasUses())
	assert.Equal(t, 0, or.NumOperands())
}

func TestNewBuilderBefore_InsertsInPlace(t *testing.T) {
	f, b := newEntry(t)
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	ret := b.Return(x)

	y := NewBuilderBefore(ret).IntegerLiteral(i8, apint.FromInt64(8, 2))

	insts := f.Entry().Instructions()
	require.Len(t, insts, 3)
	assert.Equal(t, y, insts[1])
	assert.Equal(t, ret, f.Entry().Terminator())
}

func TestIsTriviallyDead(t *testing.T) {
	_, b := newEntry(t)
	zero := b.IntegerLiteral(Int1, apint.Bool(false))
	one := b.IntegerLiteral(Int1, apint.Bool(true))
	deadFail := b.CondFail(zero, "")
	liveFail := b.CondFail(one, "")
	unused := b.IntegerLiteral(i8, apint.FromInt64(8, 7))
	call := b.Apply("sideEffect", nil, Unit)
	pure := b.Apply("pure", []string{"readnone"}, Unit)

	assert.True(t, deadFail.IsTriviallyDead())
	assert.False(t, liveFail.IsTriviallyDead())
	assert.True(t, unused.IsTriviallyDead())
	assert.False(t, zero.IsTriviallyDead())
	assert.False(t, call.IsTriviallyDead())
	assert.True(t, pure.IsTriviallyDead())
}

func TestStructExtract(t *testing.T) {
	_, b := newEntry(t)
	st := &StructType{Name: "Int8", Fields: []Field{{Name: "_value", Type: i8}}}
	x := b.IntegerLiteral(i8, apint.FromInt64(8, 1))
	s := b.Struct(st, x)
	e := b.StructExtract(s, "_value")

	assert.Equal(t, 0, e.Field)
	assert.Equal(t, Type(i8), e.Type())
	assert.Panics(t, func() { b.StructExtract(s, "missing") })
}

func TestVerify_ReportsMissingTerminator(t *testing.T) {
	f, b := newEntry(t)
	b.IntegerLiteral(i8, apint.FromInt64(8, 1))

	err := Verify(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing terminator")
}

func TestIntegerLiteral_WidthMismatchPanics(t *testing.T) {
	_, b := newEntry(t)
	assert.Panics(t, func() { b.IntegerLiteral(i8, apint.FromInt64(16, 1)) })
}
