package apfloat

import "fmt"

// Semantics identifies an IEEE 754 binary interchange format.
type Semantics uint8

const (
	// IEEEsingle is binary32: 8 exponent bits, 23 fraction bits.
	IEEEsingle Semantics = iota + 1
	// IEEEdouble is binary64: 11 exponent bits, 52 fraction bits.
	IEEEdouble
	// X87DoubleExtended is the 80-bit x87 format: 15 exponent bits, an
	// explicit integer bit, 63 fraction bits.
	X87DoubleExtended
)

type layout struct {
	bits        uint
	expBits     uint
	sigBits     uint // excludes the integer part
	explicitInt bool
}

var layouts = map[Semantics]layout{
	IEEEsingle:        {bits: 32, expBits: 8, sigBits: 23},
	IEEEdouble:        {bits: 64, expBits: 11, sigBits: 52},
	X87DoubleExtended: {bits: 80, expBits: 15, sigBits: 63, explicitInt: true},
}

func (s Semantics) layout() layout {
	l, ok := layouts[s]
	if !ok {
		panic(fmt.Sprintf("apfloat: unknown semantics %d", s))
	}
	return l
}

// SemanticsForWidth returns the format stored in the given number of bits.
func SemanticsForWidth(bits uint) (Semantics, bool) {
	for s, l := range layouts {
		if l.bits == bits {
			return s, true
		}
	}
	return 0, false
}

// BitWidth is the storage size in bits.
func (s Semantics) BitWidth() uint { return s.layout().bits }

// ExponentBits is the width of the biased exponent field.
func (s Semantics) ExponentBits() uint { return s.layout().expBits }

// SignificandBits is the number of stored fraction bits, not counting the
// integer part.
func (s Semantics) SignificandBits() uint { return s.layout().sigBits }

// ExplicitIntegerPart reports whether the integer bit is stored.
func (s Semantics) ExplicitIntegerPart() bool { return s.layout().explicitInt }

// Precision is the number of significant bits of a normal value.
func (s Semantics) Precision() uint { return s.layout().sigBits + 1 }

// MinExponent is the unbiased exponent of the smallest normal value.
func (s Semantics) MinExponent() int {
	return -(1 << (s.layout().expBits - 1)) + 2
}

// MaxExponent is the unbiased exponent of the largest finite value.
func (s Semantics) MaxExponent() int {
	return (1 << (s.layout().expBits - 1)) - 1
}

func (s Semantics) String() string {
	switch s {
	case IEEEsingle:
		return "IEEE32"
	case IEEEdouble:
		return "IEEE64"
	case X87DoubleExtended:
		return "IEEE80"
	default:
		return fmt.Sprintf("Semantics(%d)", uint8(s))
	}
}

// Status is the set of IEEE exception flags raised by an operation.
type Status uint8

// OK means the result is exact.
const OK Status = 0

const (
	InvalidOp Status = 1 << iota
	DivByZero
	Overflow
	Underflow
	Inexact
)

// Has reports whether every flag in f is raised.
func (s Status) Has(f Status) bool { return s&f == f && f != 0 }

func (s Status) String() string {
	if s == OK {
		return "ok"
	}
	names := []struct {
		f    Status
		name string
	}{
		{InvalidOp, "invalid"},
		{DivByZero, "divbyzero"},
		{Overflow, "overflow"},
		{Underflow, "underflow"},
		{Inexact, "inexact"},
	}
	out := ""
	for _, n := range names {
		if s&n.f != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}
