// Package testutil provides IR fixtures and deterministic helpers shared by
// tests of the pass and its outer layers.
package testutil

import (
	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/ir"
)

// Int returns the builtin integer type of the given width.
func Int(width uint) ir.IntType { return ir.IntType{Width: width} }

// Literal adds an integer literal of type t holding v.
func Literal(b *ir.Builder, t ir.IntType, v int64) *ir.Instruction {
	return b.IntegerLiteral(t, apint.FromInt64(t.Width, v))
}

// NewFunction returns a function with an empty entry block and a builder
// positioned at its end.
func NewFunction(name string) (*ir.Function, *ir.Builder) {
	fn := ir.NewFunction(name)
	return fn, ir.NewBuilder(fn.NewBlock("entry"))
}

// CheckedArith builds a function returning the value of a checked
// arithmetic builtin applied to two literals, with overflow reporting on:
//
//	%0 = integer_literal $Builtin.IntN, lhs
//	%1 = integer_literal $Builtin.IntN, rhs
//	%2 = integer_literal $Builtin.Int1, 1
//	%3 = builtin "<op>_IntN"(%0, %1, %2)
//	%4 = tuple_extract %3, 0
//	return %4
//
// op is a checked builtin name without type suffix, e.g. "sadd_with_overflow".
func CheckedArith(name, op string, width uint, lhs, rhs int64) *ir.Function {
	fn, b := NewFunction(name)
	t := Int(width)
	x := Literal(b, t, lhs)
	y := Literal(b, t, rhs)
	report := Literal(b, ir.Int1, 1)
	res := b.Builtin(op+"_"+builtinSuffix(t), ir.TupleType{Elems: []ir.Type{t, ir.Int1}}, x, y, report)
	b.Return(b.TupleExtract(res, 0))
	return fn
}

// Divide builds a function returning lhs op rhs for a division builtin
// such as "sdiv" or "urem".
func Divide(name, op string, width uint, lhs, rhs int64) *ir.Function {
	fn, b := NewFunction(name)
	t := Int(width)
	x := Literal(b, t, lhs)
	y := Literal(b, t, rhs)
	b.Return(b.Builtin(op+"_"+builtinSuffix(t), t, x, y))
	return fn
}

// builtinSuffix is the type suffix builtin names carry, e.g. "Int8".
func builtinSuffix(t ir.IntType) string {
	return t.String()[len("Builtin."):]
}
