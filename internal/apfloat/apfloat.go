// Package apfloat implements IEEE 754 binary floating point in software.
//
// A Float carries its format (Semantics) and is computed with exact
// round-to-nearest-ties-to-even behaviour, including gradual underflow
// into subnormals and overflow to infinity, independently of the host FPU.
// This is what lets the folder evaluate the 80-bit x87 format, which has
// no Go counterpart.
//
// Every operation that may round reports the IEEE exception flags it
// raised as a Status.
package apfloat

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/roach88/constprop/internal/apint"
)

type class uint8

const (
	classZero class = iota
	classFinite
	classInf
	classNaN
)

// Float is an immutable IEEE binary floating-point value.
type Float struct {
	sem Semantics
	cls class
	neg bool
	mag *big.Float // |x| for classFinite, exactly representable in sem
}

// Zero returns a zero of the given sign.
func Zero(sem Semantics, neg bool) Float {
	return Float{sem: sem, cls: classZero, neg: neg}
}

// Inf returns an infinity of the given sign.
func Inf(sem Semantics, neg bool) Float {
	return Float{sem: sem, cls: classInf, neg: neg}
}

// NaN returns a quiet NaN.
func NaN(sem Semantics) Float {
	return Float{sem: sem, cls: classNaN}
}

// FromFloat64 converts a host float64 into sem.
func FromFloat64(sem Semantics, f float64) (Float, Status) {
	if f != f {
		return NaN(sem), OK
	}
	x := new(big.Float).SetFloat64(f) // exact; panics only for NaN
	if x.IsInf() {
		return Inf(sem, x.Signbit()), OK
	}
	if x.Sign() == 0 {
		return Zero(sem, x.Signbit()), OK
	}
	return round(sem, x.Signbit(), x.Abs(x), true)
}

// FromInt converts an integer (treated as the exact value v) into sem.
func FromInt(sem Semantics, v *big.Int) (Float, Status) {
	if v.Sign() == 0 {
		return Zero(sem, false), OK
	}
	x := new(big.Float).SetInt(v) // precision grows to fit v exactly
	return round(sem, v.Sign() < 0, x.Abs(x), true)
}

// Parse reads a decimal ("1.5e10") or hexadecimal ("0x1.8p3") literal, with
// an optional sign and '_' digit separators, and rounds it into sem.
func Parse(sem Semantics, text string) (Float, Status, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	switch strings.ToLower(s) {
	case "inf", "infinity":
		return Inf(sem, neg), OK, nil
	case "nan":
		return NaN(sem), OK, nil
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Float{}, OK, fmt.Errorf("apfloat: invalid float literal %q", text)
	}
	if r.Sign() == 0 {
		return Zero(sem, neg), OK, nil
	}
	x := new(big.Float).SetPrec(sem.Precision() + 3).SetMode(big.ToZero).SetRat(r)
	f, st := round(sem, neg, x, x.Acc() == big.Exact)
	return f, st, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(sem Semantics, text string) Float {
	f, _, err := Parse(sem, text)
	if err != nil {
		panic(err)
	}
	return f
}

// round converts the positive magnitude x into sem using round to nearest,
// ties to even. If exact is false, x is a value truncated toward zero with
// at least sem.Precision()+2 bits and the true magnitude is strictly larger.
func round(sem Semantics, neg bool, x *big.Float, exact bool) (Float, Status) {
	var status Status
	y := x
	if !exact {
		status |= Inexact
		// Append a sticky bit below x's last bit so the true value and y
		// round the same way at any precision lower than x's.
		e := x.MantExp(nil)
		p := x.Prec()
		y = new(big.Float).SetPrec(p + 1).Set(x)
		y.Add(y, new(big.Float).SetMantExp(big.NewFloat(1), e-int(p)-1))
	}

	prec := int(sem.Precision())
	minE := sem.MinExponent()
	e := y.MantExp(nil) - 1

	var z *big.Float
	if e < minE {
		pe := prec - (minE - e)
		if pe >= 1 {
			z = new(big.Float).SetPrec(uint(pe)).SetMode(big.ToNearestEven).Set(y)
		} else {
			// Below half of the smallest subnormal rounds to zero; the exact
			// midpoint also rounds to zero, which is even.
			q := minE - prec + 1
			z = new(big.Float)
			if pe == 0 && y.Cmp(new(big.Float).SetMantExp(big.NewFloat(1), q-1)) > 0 {
				z.SetMantExp(big.NewFloat(1), q)
			}
		}
		if z.Cmp(y) != 0 {
			status |= Inexact | Underflow
		}
	} else {
		z = new(big.Float).SetPrec(uint(prec)).SetMode(big.ToNearestEven).Set(y)
		if z.Acc() != big.Exact {
			status |= Inexact
		}
	}

	if z.Sign() == 0 {
		return Zero(sem, neg), status
	}
	if z.MantExp(nil)-1 > sem.MaxExponent() {
		return Inf(sem, neg), status | Overflow | Inexact
	}
	return Float{sem: sem, cls: classFinite, neg: neg, mag: new(big.Float).SetPrec(uint(prec)).Set(z)}, status
}

// Semantics returns the format of f.
func (f Float) Semantics() Semantics { return f.sem }

func (f Float) IsNaN() bool      { return f.cls == classNaN }
func (f Float) IsInf() bool      { return f.cls == classInf }
func (f Float) IsZero() bool     { return f.cls == classZero }
func (f Float) IsFinite() bool   { return f.cls == classZero || f.cls == classFinite }
func (f Float) IsNegative() bool { return f.neg }

// IsDenormal reports whether f is a non-zero value below the normal range.
func (f Float) IsDenormal() bool {
	return f.cls == classFinite && f.Ilogb() < f.sem.MinExponent()
}

// Ilogb returns the unbiased binary exponent of a finite non-zero value,
// so that 1 <= |f| / 2^Ilogb < 2.
func (f Float) Ilogb() int {
	if f.cls != classFinite {
		panic("apfloat: Ilogb of non-finite or zero value")
	}
	return f.mag.MantExp(nil) - 1
}

// Neg returns f with its sign flipped.
func (f Float) Neg() Float {
	if f.cls == classNaN {
		return f
	}
	f.neg = !f.neg
	return f
}

// SignificandBits returns the stored fraction field of f's bit pattern:
// the low SignificandBits() bits, excluding any integer bit.
func (f Float) SignificandBits() uint64 {
	if f.cls != classFinite {
		return 0
	}
	sig := int(f.sem.SignificandBits())
	e := f.Ilogb()
	if e < f.sem.MinExponent() {
		e = f.sem.MinExponent()
	}
	m := new(big.Float).SetMantExp(f.mag, sig-e)
	i, _ := m.Int(nil)
	frac := new(big.Int).Lsh(big.NewInt(1), uint(sig))
	frac.Sub(frac, big.NewInt(1))
	return i.And(i, frac).Uint64()
}

// Identical reports whether f and g have the same format, class, sign and
// magnitude. Unlike IEEE equality, NaN is identical to NaN and -0 differs
// from +0.
func (f Float) Identical(g Float) bool {
	if f.sem != g.sem || f.cls != g.cls || f.neg != g.neg {
		return false
	}
	if f.cls != classFinite {
		return true
	}
	return f.mag.Cmp(g.mag) == 0
}

// Float64 returns the nearest float64 and its accuracy.
func (f Float) Float64() (float64, big.Accuracy) {
	switch f.cls {
	case classNaN:
		return math.NaN(), big.Exact
	case classInf:
		if f.neg {
			return math.Inf(-1), big.Exact
		}
		return math.Inf(1), big.Exact
	case classZero:
		if f.neg {
			return math.Copysign(0, -1), big.Exact
		}
		return 0, big.Exact
	}
	v := new(big.Float).Set(f.mag)
	if f.neg {
		v.Neg(v)
	}
	return v.Float64()
}

// Text formats f with the shortest decimal that identifies it uniquely.
func (f Float) Text() string {
	sign := ""
	if f.neg {
		sign = "-"
	}
	switch f.cls {
	case classNaN:
		return "nan"
	case classInf:
		return sign + "inf"
	case classZero:
		return sign + "0"
	}
	return sign + f.mag.Text('g', -1)
}

// IntegerText formats f without an exponent or fraction, rounding toward
// zero. It makes the distance between an integer and its float image
// visible, e.g. 16777217 becomes "16777216" in binary32.
func (f Float) IntegerText() string {
	if f.cls != classFinite {
		return f.Text()
	}
	sign := ""
	if f.neg {
		sign = "-"
	}
	i, _ := f.mag.Int(nil)
	return sign + i.String()
}

func (f Float) String() string {
	return fmt.Sprintf("%s:%s", f.Text(), f.sem)
}

// ToInteger converts f to a width-bit integer, truncating toward zero.
// Values that are NaN, infinite or out of range raise InvalidOp; a
// discarded fraction raises Inexact.
func (f Float) ToInteger(width uint, signed bool) (apint.Int, Status) {
	zero := apint.FromUint64(width, 0)
	switch f.cls {
	case classNaN, classInf:
		return zero, InvalidOp
	case classZero:
		return zero, OK
	}
	t, acc := f.mag.Int(nil)
	if f.neg {
		t.Neg(t)
	}
	var status Status
	if acc != big.Exact {
		status |= Inexact
	}
	lim := new(big.Int).Lsh(big.NewInt(1), width)
	lo := new(big.Int)
	hi := new(big.Int).Sub(lim, big.NewInt(1))
	if signed {
		half := new(big.Int).Rsh(lim, 1)
		lo.Neg(half)
		hi.Sub(half, big.NewInt(1))
	}
	if t.Cmp(lo) < 0 || t.Cmp(hi) > 0 {
		return zero, InvalidOp
	}
	return apint.New(width, t), status
}
