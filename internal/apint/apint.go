// Package apint provides fixed-width, arbitrary-precision integers.
//
// An Int is a bit pattern of a given width. It carries no signedness of its
// own: operations that care (comparisons, division, extension, printing)
// come in signed and unsigned variants, the way two's-complement hardware
// and compiler IRs treat integers.
//
// Values are immutable. Every operation returns a new Int; the underlying
// big.Int is never shared with callers.
//
// Two Ints of different widths are never implicitly comparable. Binary
// operations on mismatched widths panic with a *WidthError.
package apint

import (
	"fmt"
	"math/big"
)

// Int is an immutable two's-complement integer of a fixed bit width.
//
// The zero value is not valid; construct with New, FromInt64 or FromUint64.
type Int struct {
	width uint
	bits  *big.Int // always in [0, 2^width)
}

// WidthError reports a width mismatch or an invalid width.
// It is raised by panic: mismatched widths are a programming error in the
// caller, never a property of the folded program.
type WidthError struct {
	Op    string
	Left  uint
	Right uint
}

func (e *WidthError) Error() string {
	if e.Right == 0 {
		return fmt.Sprintf("apint: %s: invalid width %d", e.Op, e.Left)
	}
	return fmt.Sprintf("apint: %s: width mismatch (%d vs %d)", e.Op, e.Left, e.Right)
}

var bigOne = big.NewInt(1)

// New creates an Int of the given width from v, wrapping modulo 2^width.
// Negative v is interpreted in two's complement.
func New(width uint, v *big.Int) Int {
	if width == 0 {
		panic(&WidthError{Op: "new", Left: width})
	}
	return Int{width: width, bits: wrap(width, new(big.Int).Set(v))}
}

// FromInt64 creates an Int of the given width from a signed value.
func FromInt64(width uint, v int64) Int {
	return New(width, big.NewInt(v))
}

// FromUint64 creates an Int of the given width from an unsigned value.
func FromUint64(width uint, v uint64) Int {
	return New(width, new(big.Int).SetUint64(v))
}

// Bool creates a 1-bit Int holding 1 for true and 0 for false.
func Bool(b bool) Int {
	if b {
		return FromUint64(1, 1)
	}
	return FromUint64(1, 0)
}

// MaxSigned returns the largest signed value representable in width bits.
func MaxSigned(width uint) Int {
	v := new(big.Int).Lsh(bigOne, width-1)
	return New(width, v.Sub(v, bigOne))
}

// MinSigned returns the smallest signed value representable in width bits.
func MinSigned(width uint) Int {
	return New(width, new(big.Int).Lsh(bigOne, width-1))
}

// AllOnes returns the Int with every bit set.
func AllOnes(width uint) Int {
	return New(width, big.NewInt(-1))
}

// wrap reduces v modulo 2^width in place and returns it.
func wrap(width uint, v *big.Int) *big.Int {
	mod := new(big.Int).Lsh(bigOne, width)
	v.Mod(v, mod) // Euclidean modulus: result is non-negative
	return v
}

func (a Int) check(op string, b Int) {
	if a.width != b.width {
		panic(&WidthError{Op: op, Left: a.width, Right: b.width})
	}
}

// Width returns the bit width.
func (a Int) Width() uint { return a.width }

// Unsigned returns the value interpreted as an unsigned integer.
func (a Int) Unsigned() *big.Int { return new(big.Int).Set(a.bits) }

// Signed returns the value interpreted as a two's-complement signed integer.
func (a Int) Signed() *big.Int {
	v := new(big.Int).Set(a.bits)
	if a.IsNegative() {
		v.Sub(v, new(big.Int).Lsh(bigOne, a.width))
	}
	return v
}

// Uint64 returns the low 64 bits of the value.
func (a Int) Uint64() uint64 {
	lo := new(big.Int).And(a.bits, new(big.Int).SetUint64(^uint64(0)))
	return lo.Uint64()
}

// Bit reports whether bit i is set.
func (a Int) Bit(i uint) bool { return a.bits.Bit(int(i)) == 1 }

// IsZero reports whether all bits are clear.
func (a Int) IsZero() bool { return a.bits.Sign() == 0 }

// IsOne reports whether the value is exactly 1.
func (a Int) IsOne() bool { return a.bits.Cmp(bigOne) == 0 }

// IsNegative reports whether the sign bit is set.
func (a Int) IsNegative() bool { return a.Bit(a.width - 1) }

// IsStrictlyPositive reports whether the signed value is greater than zero.
func (a Int) IsStrictlyPositive() bool { return !a.IsNegative() && !a.IsZero() }

// IsMaxSigned reports whether the value is the largest signed value of its width.
func (a Int) IsMaxSigned() bool { return a.Equal(MaxSigned(a.width)) }

// IsMinSigned reports whether the value is the smallest signed value of its width.
func (a Int) IsMinSigned() bool { return a.Equal(MinSigned(a.width)) }

// IsAllOnes reports whether every bit is set.
func (a Int) IsAllOnes() bool { return a.Equal(AllOnes(a.width)) }

// Equal reports whether a and b hold the same bits. Widths must match.
func (a Int) Equal(b Int) bool {
	a.check("eq", b)
	return a.bits.Cmp(b.bits) == 0
}

// CountLeadingZeros returns the number of leading zero bits.
func (a Int) CountLeadingZeros() uint {
	return a.width - uint(a.bits.BitLen())
}

// Text formats the value in base 10, interpreting it as signed or unsigned.
func (a Int) Text(signed bool) string {
	if signed {
		return a.Signed().String()
	}
	return a.bits.String()
}

// String formats the value as an unsigned decimal followed by its width.
func (a Int) String() string {
	return fmt.Sprintf("%s:i%d", a.bits.String(), a.width)
}

// Bitwise operations.

func (a Int) And(b Int) Int {
	a.check("and", b)
	return Int{width: a.width, bits: new(big.Int).And(a.bits, b.bits)}
}

func (a Int) Or(b Int) Int {
	a.check("or", b)
	return Int{width: a.width, bits: new(big.Int).Or(a.bits, b.bits)}
}

func (a Int) Xor(b Int) Int {
	a.check("xor", b)
	return Int{width: a.width, bits: new(big.Int).Xor(a.bits, b.bits)}
}

// shiftAmount clamps the shift amount to the width; shifting by the width or
// more clears every bit (or fills with the sign bit for AShr).
func (a Int) shiftAmount(b Int) uint {
	if b.bits.BitLen() > 32 || b.bits.Uint64() >= uint64(a.width) {
		return a.width
	}
	return uint(b.bits.Uint64())
}

// Shl shifts left by the unsigned value of b.
func (a Int) Shl(b Int) Int {
	a.check("shl", b)
	return New(a.width, new(big.Int).Lsh(a.bits, a.shiftAmount(b)))
}

// LShr shifts right by the unsigned value of b, filling with zeros.
func (a Int) LShr(b Int) Int {
	a.check("lshr", b)
	return Int{width: a.width, bits: new(big.Int).Rsh(a.bits, a.shiftAmount(b))}
}

// AShr shifts right by the unsigned value of b, filling with the sign bit.
func (a Int) AShr(b Int) Int {
	a.check("ashr", b)
	// big.Int.Rsh on a negative value rounds toward negative infinity, which
	// is exactly an arithmetic shift.
	return New(a.width, new(big.Int).Rsh(a.Signed(), a.shiftAmount(b)))
}

// Comparisons.

func (a Int) ULT(b Int) bool {
	a.check("ult", b)
	return a.bits.Cmp(b.bits) < 0
}

func (a Int) ULE(b Int) bool {
	a.check("ule", b)
	return a.bits.Cmp(b.bits) <= 0
}

func (a Int) UGT(b Int) bool {
	a.check("ugt", b)
	return a.bits.Cmp(b.bits) > 0
}

func (a Int) UGE(b Int) bool {
	a.check("uge", b)
	return a.bits.Cmp(b.bits) >= 0
}

func (a Int) SLT(b Int) bool {
	a.check("slt", b)
	return a.Signed().Cmp(b.Signed()) < 0
}

func (a Int) SLE(b Int) bool {
	a.check("sle", b)
	return a.Signed().Cmp(b.Signed()) <= 0
}

func (a Int) SGT(b Int) bool {
	a.check("sgt", b)
	return a.Signed().Cmp(b.Signed()) > 0
}

func (a Int) SGE(b Int) bool {
	a.check("sge", b)
	return a.Signed().Cmp(b.Signed()) >= 0
}

// fitsSigned reports whether v is representable as a signed width-bit value.
func fitsSigned(width uint, v *big.Int) bool {
	lim := new(big.Int).Lsh(bigOne, width-1)
	if v.Cmp(lim) >= 0 {
		return false
	}
	return v.Cmp(lim.Neg(lim)) >= 0
}

// fitsUnsigned reports whether v is representable as an unsigned width-bit value.
func fitsUnsigned(width uint, v *big.Int) bool {
	return v.Sign() >= 0 && uint(v.BitLen()) <= width
}

// Overflow-checked arithmetic. Each returns the wrapped result and whether
// the infinite-precision result fell outside the width and signedness.

func (a Int) SAddOv(b Int) (Int, bool) {
	a.check("sadd", b)
	r := new(big.Int).Add(a.Signed(), b.Signed())
	return New(a.width, r), !fitsSigned(a.width, r)
}

func (a Int) UAddOv(b Int) (Int, bool) {
	a.check("uadd", b)
	r := new(big.Int).Add(a.bits, b.bits)
	return New(a.width, r), !fitsUnsigned(a.width, r)
}

func (a Int) SSubOv(b Int) (Int, bool) {
	a.check("ssub", b)
	r := new(big.Int).Sub(a.Signed(), b.Signed())
	return New(a.width, r), !fitsSigned(a.width, r)
}

func (a Int) USubOv(b Int) (Int, bool) {
	a.check("usub", b)
	r := new(big.Int).Sub(a.bits, b.bits)
	return New(a.width, r), !fitsUnsigned(a.width, r)
}

func (a Int) SMulOv(b Int) (Int, bool) {
	a.check("smul", b)
	r := new(big.Int).Mul(a.Signed(), b.Signed())
	return New(a.width, r), !fitsSigned(a.width, r)
}

func (a Int) UMulOv(b Int) (Int, bool) {
	a.check("umul", b)
	r := new(big.Int).Mul(a.bits, b.bits)
	return New(a.width, r), !fitsUnsigned(a.width, r)
}

// Division. The divisor must be non-zero; dividing by zero panics, the same
// as big.Int.

// SDivOv divides as signed values, truncating toward zero. It reports
// overflow for the single case MinSigned / -1.
func (a Int) SDivOv(b Int) (Int, bool) {
	a.check("sdiv", b)
	overflow := a.IsMinSigned() && b.IsAllOnes()
	return New(a.width, new(big.Int).Quo(a.Signed(), b.Signed())), overflow
}

// SRem is the signed remainder; the result takes the sign of the dividend.
func (a Int) SRem(b Int) Int {
	a.check("srem", b)
	return New(a.width, new(big.Int).Rem(a.Signed(), b.Signed()))
}

func (a Int) UDiv(b Int) Int {
	a.check("udiv", b)
	return Int{width: a.width, bits: new(big.Int).Quo(a.bits, b.bits)}
}

func (a Int) URem(b Int) Int {
	a.check("urem", b)
	return Int{width: a.width, bits: new(big.Int).Rem(a.bits, b.bits)}
}

// Width changes.

// Trunc keeps the low width bits. width must not exceed the current width.
func (a Int) Trunc(width uint) Int {
	if width > a.width {
		panic(&WidthError{Op: "trunc", Left: a.width, Right: width})
	}
	return New(width, a.bits)
}

// ZExt zero-extends to width. width must not be smaller than the current width.
func (a Int) ZExt(width uint) Int {
	if width < a.width {
		panic(&WidthError{Op: "zext", Left: a.width, Right: width})
	}
	return Int{width: width, bits: new(big.Int).Set(a.bits)}
}

// SExt sign-extends to width. width must not be smaller than the current width.
func (a Int) SExt(width uint) Int {
	if width < a.width {
		panic(&WidthError{Op: "sext", Left: a.width, Right: width})
	}
	return New(width, a.Signed())
}
