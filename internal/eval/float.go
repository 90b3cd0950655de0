package eval

import (
	"errors"

	"github.com/roach88/constprop/internal/apfloat"
	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/ir"
)

// ErrNegativeToUnsigned is returned by FPToInt for a negative, non-zero
// value converted to an unsigned integer.
var ErrNegativeToUnsigned = errors.New("negative value converted to unsigned integer")

// FloatBinary evaluates fadd, fsub, fmul or fdiv, rounding to nearest
// with ties to even.
func FloatBinary(op ir.BuiltinKind, a, b apfloat.Float) (apfloat.Float, apfloat.Status) {
	switch op {
	case ir.FAdd:
		return a.Add(b)
	case ir.FSub:
		return a.Sub(b)
	case ir.FMul:
		return a.Mul(b)
	case ir.FDiv:
		return a.Div(b)
	}
	unsupported("FloatBinary", op)
	return apfloat.Float{}, apfloat.OK
}

// IntToFP converts v, read as signed or unsigned, to the nearest value in
// sem. Results too large for sem become infinity with Overflow set.
func IntToFP(v apint.Int, signed bool, sem apfloat.Semantics) (apfloat.Float, apfloat.Status) {
	if signed {
		return apfloat.FromInt(sem, v.Signed())
	}
	return apfloat.FromInt(sem, v.Unsigned())
}

// FPToInt converts f to a width-bit integer, truncating toward zero.
// Unsigned conversions reject negative non-zero input with
// ErrNegativeToUnsigned before any rounding; -0.5 is rejected even though
// it truncates to 0. Out-of-range, infinite and NaN inputs raise
// InvalidOp.
func FPToInt(f apfloat.Float, width uint, signed bool) (apint.Int, apfloat.Status, error) {
	if !signed && f.IsNegative() && !f.IsZero() && !f.IsNaN() {
		return apint.Int{}, apfloat.OK, ErrNegativeToUnsigned
	}
	r, status := f.ToInteger(width, signed)
	return r, status, nil
}

// FPTrunc converts f to the narrower format to, rounding to nearest with
// ties to even.
func FPTrunc(f apfloat.Float, to apfloat.Semantics) (apfloat.Float, apfloat.Status) {
	return f.Convert(to)
}

// IsLossyUnderflow reports whether converting src to dst lands below
// dst's normal range and drops set significand bits doing so. Rounding
// loss that any normal value would suffer does not count.
func IsLossyUnderflow(src apfloat.Float, dst apfloat.Semantics) bool {
	if src.IsNaN() || src.IsZero() || src.IsInf() {
		return false
	}
	srcSem := src.Semantics()
	if srcSem.BitWidth() <= dst.BitWidth() {
		return false
	}
	if src.IsDenormal() {
		return true
	}
	return lossyUnderflow(src.Ilogb(), src.SignificandBits(), srcSem, dst)
}

// lossyUnderflow works on the binary fraction 1.significand x 2^exp.
func lossyUnderflow(exp int, significand uint64, src, dst apfloat.Semantics) bool {
	if exp >= dst.MinExponent() {
		return false
	}
	// Smaller than the smallest subnormal of dst.
	if exp < dst.MinExponent()-int(dst.SignificandBits()) {
		return true
	}
	trunc := significand >> (src.SignificandBits() - dst.SignificandBits())

	// The implicit integer bit takes one significand bit in subnormal form.
	loss := uint(dst.MinExponent() - exp + 1)
	mask := ^uint64(0)
	if loss < 64 {
		mask = uint64(1)<<loss - 1
	}
	return trunc&mask != 0
}
