package apfloat

import (
	"fmt"
	"math/big"
)

func (f Float) check(op string, g Float) {
	if f.sem != g.sem {
		panic(fmt.Sprintf("apfloat: %s: semantics mismatch (%s vs %s)", op, f.sem, g.sem))
	}
}

// signed returns the exact signed value of a finite non-zero f.
func (f Float) signed(prec uint) *big.Float {
	v := new(big.Float).SetPrec(prec).Set(f.mag)
	if f.neg {
		v.Neg(v)
	}
	return v
}

// Add returns f+g rounded to nearest even.
func (f Float) Add(g Float) (Float, Status) {
	f.check("add", g)
	switch {
	case f.cls == classNaN || g.cls == classNaN:
		return NaN(f.sem), OK
	case f.cls == classInf && g.cls == classInf:
		if f.neg != g.neg {
			return NaN(f.sem), InvalidOp
		}
		return f, OK
	case f.cls == classInf:
		return f, OK
	case g.cls == classInf:
		return g, OK
	case f.cls == classZero && g.cls == classZero:
		return Zero(f.sem, f.neg && g.neg), OK
	case f.cls == classZero:
		return g, OK
	case g.cls == classZero:
		return f, OK
	}

	// Wide enough to hold the sum exactly.
	gap := f.Ilogb() - g.Ilogb()
	if gap < 0 {
		gap = -gap
	}
	prec := uint(gap) + 2*f.sem.Precision() + 2
	sum := new(big.Float).SetPrec(prec).Add(f.signed(prec), g.signed(prec))
	if sum.Sign() == 0 {
		return Zero(f.sem, false), OK
	}
	neg := sum.Signbit()
	return round(f.sem, neg, sum.Abs(sum), true)
}

// Sub returns f-g rounded to nearest even.
func (f Float) Sub(g Float) (Float, Status) {
	f.check("sub", g)
	return f.Add(g.Neg())
}

// Mul returns f*g rounded to nearest even.
func (f Float) Mul(g Float) (Float, Status) {
	f.check("mul", g)
	neg := f.neg != g.neg
	switch {
	case f.cls == classNaN || g.cls == classNaN:
		return NaN(f.sem), OK
	case (f.cls == classInf && g.cls == classZero) || (f.cls == classZero && g.cls == classInf):
		return NaN(f.sem), InvalidOp
	case f.cls == classInf || g.cls == classInf:
		return Inf(f.sem, neg), OK
	case f.cls == classZero || g.cls == classZero:
		return Zero(f.sem, neg), OK
	}
	prod := new(big.Float).SetPrec(2 * f.sem.Precision()).Mul(f.mag, g.mag)
	return round(f.sem, neg, prod, true)
}

// Div returns f/g rounded to nearest even.
func (f Float) Div(g Float) (Float, Status) {
	f.check("div", g)
	neg := f.neg != g.neg
	switch {
	case f.cls == classNaN || g.cls == classNaN:
		return NaN(f.sem), OK
	case f.cls == classInf && g.cls == classInf,
		f.cls == classZero && g.cls == classZero:
		return NaN(f.sem), InvalidOp
	case f.cls == classInf:
		return Inf(f.sem, neg), OK
	case g.cls == classInf || f.cls == classZero:
		return Zero(f.sem, neg), OK
	case g.cls == classZero:
		return Inf(f.sem, neg), DivByZero
	}
	q := new(big.Float).SetPrec(f.sem.Precision() + 3).SetMode(big.ToZero)
	q.Quo(f.mag, g.mag)
	return round(f.sem, neg, q, q.Acc() == big.Exact)
}

// Convert rounds f into another format.
func (f Float) Convert(to Semantics) (Float, Status) {
	switch f.cls {
	case classNaN:
		return NaN(to), OK
	case classInf:
		return Inf(to, f.neg), OK
	case classZero:
		return Zero(to, f.neg), OK
	}
	return round(to, f.neg, f.mag, true)
}

// Compare orders two non-NaN values: -1, 0 or +1. Zeros compare equal
// regardless of sign. The second result is false if either value is NaN.
func (f Float) Compare(g Float) (int, bool) {
	f.check("cmp", g)
	if f.cls == classNaN || g.cls == classNaN {
		return 0, false
	}
	return f.ordinal().Cmp(g.ordinal()), true
}

func (f Float) ordinal() *big.Float {
	switch f.cls {
	case classInf:
		return new(big.Float).SetInf(f.neg)
	case classZero:
		return new(big.Float)
	}
	return f.signed(f.mag.Prec())
}
