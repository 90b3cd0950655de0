package eval

import (
	"fmt"
	"math/big"

	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/ir"
)

// UnsupportedError is the panic value raised when an evaluator is asked
// for an operation it has no semantics for. It signals a gap in the
// folder's dispatch, not a problem with the program being folded.
type UnsupportedError struct {
	Func string
	Op   ir.BuiltinKind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("eval: %s has no semantics for %s", e.Func, e.Op)
}

func unsupported(fn string, op ir.BuiltinKind) {
	panic(&UnsupportedError{Func: fn, Op: op})
}

// BitOp applies a bitwise or shift operation. Shift amounts must be less
// than the operand width; callers reject larger amounts first.
func BitOp(op ir.BuiltinKind, a, b apint.Int) apint.Int {
	switch op {
	case ir.And:
		return a.And(b)
	case ir.Or:
		return a.Or(b)
	case ir.Xor:
		return a.Xor(b)
	case ir.Shl:
		return a.Shl(b)
	case ir.LShr:
		return a.LShr(b)
	case ir.AShr:
		return a.AShr(b)
	}
	unsupported("BitOp", op)
	return apint.Int{}
}

// ShiftTooLarge reports whether amount shifts out every bit of a
// width-bit value.
func ShiftTooLarge(amount apint.Int, width uint) bool {
	return amount.Unsigned().Cmp(new(big.Int).SetUint64(uint64(width))) >= 0
}

// Compare evaluates an integer comparison to a 1-bit result.
func Compare(op ir.BuiltinKind, a, b apint.Int) apint.Int {
	var r bool
	switch op {
	case ir.ICmpEQ:
		r = a.Equal(b)
	case ir.ICmpNE:
		r = !a.Equal(b)
	case ir.ICmpULT:
		r = a.ULT(b)
	case ir.ICmpULE:
		r = a.ULE(b)
	case ir.ICmpUGT:
		r = a.UGT(b)
	case ir.ICmpUGE:
		r = a.UGE(b)
	case ir.ICmpSLT:
		r = a.SLT(b)
	case ir.ICmpSLE:
		r = a.SLE(b)
	case ir.ICmpSGT:
		r = a.SGT(b)
	case ir.ICmpSGE:
		r = a.SGE(b)
	default:
		unsupported("Compare", op)
	}
	return apint.Bool(r)
}

// WithOverflow evaluates an overflow-checked add, sub or mul. The result
// wraps; the flag is set iff the exact result does not fit.
func WithOverflow(op ir.BuiltinKind, a, b apint.Int) (apint.Int, bool) {
	switch op {
	case ir.SAddOver:
		return a.SAddOv(b)
	case ir.UAddOver:
		return a.UAddOv(b)
	case ir.SSubOver:
		return a.SSubOv(b)
	case ir.USubOver:
		return a.USubOv(b)
	case ir.SMulOver:
		return a.SMulOv(b)
	case ir.UMulOver:
		return a.UMulOv(b)
	}
	unsupported("WithOverflow", op)
	return apint.Int{}, false
}

// IsSignedOverflowOp reports whether op checks for signed overflow.
func IsSignedOverflowOp(op ir.BuiltinKind) bool {
	return op == ir.SAddOver || op == ir.SSubOver || op == ir.SMulOver
}

// Operator returns the source spelling of an overflow-checked operation.
func Operator(op ir.BuiltinKind) string {
	switch op {
	case ir.SAddOver, ir.UAddOver:
		return "+"
	case ir.SSubOver, ir.USubOver:
		return "-"
	case ir.SMulOver, ir.UMulOver:
		return "*"
	}
	unsupported("Operator", op)
	return ""
}

// Divide evaluates sdiv, srem, udiv or urem. The divisor must be
// non-zero. Signed operations report overflow for MinSigned / -1; the
// unsigned ones never overflow.
func Divide(op ir.BuiltinKind, a, b apint.Int) (apint.Int, bool) {
	switch op {
	case ir.SDiv:
		return a.SDivOv(b)
	case ir.SRem:
		overflow := a.IsMinSigned() && b.IsAllOnes()
		return a.SRem(b), overflow
	case ir.UDiv:
		return a.UDiv(b), false
	case ir.URem:
		return a.URem(b), false
	}
	unsupported("Divide", op)
	return apint.Int{}, false
}

// IsRemainder reports whether op is srem or urem.
func IsRemainder(op ir.BuiltinKind) bool { return op == ir.SRem || op == ir.URem }

// Cast changes v to width. Equal widths are the identity for every cast
// kind, including plain trunc/zext/sext.
func Cast(op ir.BuiltinKind, v apint.Int, width uint) apint.Int {
	if v.Width() == width {
		return v
	}
	switch op {
	case ir.Trunc, ir.TruncOrBitCast:
		return v.Trunc(width)
	case ir.ZExt, ir.ZExtOrBitCast:
		return v.ZExt(width)
	case ir.SExt, ir.SExtOrBitCast:
		return v.SExt(width)
	}
	unsupported("Cast", op)
	return apint.Int{}
}

// SourceSigned reports whether a checked conversion reads its operand as
// signed.
func SourceSigned(op ir.BuiltinKind) bool {
	return op == ir.SToSCheckedTrunc || op == ir.SToUCheckedTrunc || op == ir.SUCheckedConversion
}

// DestSigned reports whether a checked conversion produces a signed value.
func DestSigned(op ir.BuiltinKind) bool {
	return op == ir.SToSCheckedTrunc || op == ir.UToSCheckedTrunc || op == ir.USCheckedConversion
}

// CheckedConversion narrows v to width (or reinterprets it, for the
// same-width sign conversions) and reports whether information was lost.
//
// The narrowing kinds truncate and compare the re-extended result with
// the source. A value headed for a signed destination from an unsigned
// source must also leave the destination's sign bit clear, so it is
// checked at width-1. The same-width conversions overflow iff the sign
// bit is set.
func CheckedConversion(op ir.BuiltinKind, v apint.Int, width uint) (apint.Int, bool) {
	switch op {
	case ir.SUCheckedConversion, ir.USCheckedConversion:
		return v, v.IsNegative()
	case ir.SToSCheckedTrunc, ir.UToUCheckedTrunc, ir.SToUCheckedTrunc:
		r := v.Trunc(width)
		var back apint.Int
		if op == ir.SToSCheckedTrunc {
			back = r.SExt(v.Width())
		} else {
			back = r.ZExt(v.Width())
		}
		return r, !back.Equal(v)
	case ir.UToSCheckedTrunc:
		r := v.Trunc(width)
		if width == 1 {
			return r, !v.IsZero()
		}
		back := v.Trunc(width - 1).ZExt(v.Width())
		return r, !back.Equal(v)
	}
	unsupported("CheckedConversion", op)
	return apint.Int{}, false
}

// CountLeadingZeros returns the number of leading zero bits of v as a
// value of v's width.
func CountLeadingZeros(v apint.Int) apint.Int {
	return apint.FromUint64(v.Width(), uint64(v.CountLeadingZeros()))
}
