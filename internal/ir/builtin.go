package ir

import (
	"strconv"
	"strings"

	"github.com/roach88/constprop/internal/apfloat"
)

// BuiltinKind identifies a builtin operation independently of the types it
// is instantiated at.
type BuiltinKind uint8

const (
	BuiltinUnknown BuiltinKind = iota

	// Bitwise and shifts.
	And
	Or
	Xor
	Shl
	LShr
	AShr

	// Plain wrapping arithmetic, never folded here.
	Add
	Sub
	Mul

	// Division.
	SDiv
	SRem
	UDiv
	URem
	ExactSDiv
	ExactUDiv

	// Floating point arithmetic.
	FAdd
	FSub
	FMul
	FDiv
	FRem

	// Integer comparisons.
	ICmpEQ
	ICmpNE
	ICmpULT
	ICmpULE
	ICmpUGT
	ICmpUGE
	ICmpSLT
	ICmpSLE
	ICmpSGT
	ICmpSGE

	// Arithmetic returning (result, overflow).
	SAddOver
	UAddOver
	SSubOver
	USubOver
	SMulOver
	UMulOver

	// Width casts.
	Trunc
	ZExt
	SExt
	TruncOrBitCast
	ZExtOrBitCast
	SExtOrBitCast

	// Checked narrowing conversions returning (result, overflow).
	SToSCheckedTrunc
	UToUCheckedTrunc
	SToUCheckedTrunc
	UToSCheckedTrunc
	SUCheckedConversion
	USCheckedConversion

	// Float conversions.
	IntToFPWithOverflow
	SIToFP
	UIToFP
	FPToSI
	FPToUI
	FPTrunc

	AssumeNonNegative
	AssertConf
	CondUnreachable

	// Intrinsics only.
	Expect
	Ctlz
)

// Category groups builtin kinds by how they are folded.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryBinaryWithOverflow
	CategoryBinary
	CategoryPredicate
	CategoryCast
	CategoryCheckedConversion
	CategoryIntToFP
	CategoryFPTrunc
	CategoryFPToInt
	CategoryAssumeNonNegative
	CategoryConfiguration
	CategoryIntrinsic
)

var builtinNames = map[string]BuiltinKind{
	"and":  And,
	"or":   Or,
	"xor":  Xor,
	"shl":  Shl,
	"lshr": LShr,
	"ashr": AShr,

	"add": Add,
	"sub": Sub,
	"mul": Mul,

	"sdiv":       SDiv,
	"srem":       SRem,
	"udiv":       UDiv,
	"urem":       URem,
	"sdiv_exact": ExactSDiv,
	"udiv_exact": ExactUDiv,

	"fadd": FAdd,
	"fsub": FSub,
	"fmul": FMul,
	"fdiv": FDiv,
	"frem": FRem,

	"cmp_eq":  ICmpEQ,
	"cmp_ne":  ICmpNE,
	"cmp_ult": ICmpULT,
	"cmp_ule": ICmpULE,
	"cmp_ugt": ICmpUGT,
	"cmp_uge": ICmpUGE,
	"cmp_slt": ICmpSLT,
	"cmp_sle": ICmpSLE,
	"cmp_sgt": ICmpSGT,
	"cmp_sge": ICmpSGE,

	"sadd_with_overflow": SAddOver,
	"uadd_with_overflow": UAddOver,
	"ssub_with_overflow": SSubOver,
	"usub_with_overflow": USubOver,
	"smul_with_overflow": SMulOver,
	"umul_with_overflow": UMulOver,

	"trunc":          Trunc,
	"zext":           ZExt,
	"sext":           SExt,
	"truncOrBitCast": TruncOrBitCast,
	"zextOrBitCast":  ZExtOrBitCast,
	"sextOrBitCast":  SExtOrBitCast,

	"s_to_s_checked_trunc":      SToSCheckedTrunc,
	"u_to_u_checked_trunc":      UToUCheckedTrunc,
	"s_to_u_checked_trunc":      SToUCheckedTrunc,
	"u_to_s_checked_trunc":      UToSCheckedTrunc,
	"s_to_u_checked_conversion": SUCheckedConversion,
	"u_to_s_checked_conversion": USCheckedConversion,

	"itofp_with_overflow": IntToFPWithOverflow,
	"sitofp":              SIToFP,
	"uitofp":              UIToFP,
	"fptosi":              FPToSI,
	"fptoui":              FPToUI,
	"fptrunc":             FPTrunc,

	"assumeNonNegative":        AssumeNonNegative,
	"assert_configuration":     AssertConf,
	"conditionallyUnreachable": CondUnreachable,
}

// intrinsicNames are the "int_" prefixed LLVM-style intrinsics.
var intrinsicNames = map[string]BuiltinKind{
	"expect":             Expect,
	"ctlz":               Ctlz,
	"sadd_with_overflow": SAddOver,
	"uadd_with_overflow": UAddOver,
	"ssub_with_overflow": SSubOver,
	"usub_with_overflow": USubOver,
	"smul_with_overflow": SMulOver,
	"umul_with_overflow": UMulOver,
}

var kindNames = func() map[BuiltinKind]string {
	m := make(map[BuiltinKind]string, len(builtinNames)+2)
	for name, k := range builtinNames {
		m[k] = name
	}
	m[Expect] = "expect"
	m[Ctlz] = "ctlz"
	return m
}()

func (k BuiltinKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Category returns the folding category of a non-intrinsic builtin.
func (k BuiltinKind) Category() Category {
	switch k {
	case SAddOver, UAddOver, SSubOver, USubOver, SMulOver, UMulOver:
		return CategoryBinaryWithOverflow
	case And, Or, Xor, Shl, LShr, AShr, Add, Sub, Mul,
		SDiv, SRem, UDiv, URem, ExactSDiv, ExactUDiv,
		FAdd, FSub, FMul, FDiv, FRem:
		return CategoryBinary
	case ICmpEQ, ICmpNE, ICmpULT, ICmpULE, ICmpUGT, ICmpUGE,
		ICmpSLT, ICmpSLE, ICmpSGT, ICmpSGE:
		return CategoryPredicate
	case Trunc, ZExt, SExt, TruncOrBitCast, ZExtOrBitCast, SExtOrBitCast:
		return CategoryCast
	case SToSCheckedTrunc, UToUCheckedTrunc, SToUCheckedTrunc, UToSCheckedTrunc,
		SUCheckedConversion, USCheckedConversion:
		return CategoryCheckedConversion
	case IntToFPWithOverflow, SIToFP, UIToFP:
		return CategoryIntToFP
	case FPTrunc:
		return CategoryFPTrunc
	case FPToSI, FPToUI:
		return CategoryFPToInt
	case AssumeNonNegative:
		return CategoryAssumeNonNegative
	case AssertConf, CondUnreachable:
		return CategoryConfiguration
	case Expect, Ctlz:
		return CategoryIntrinsic
	}
	return CategoryNone
}

// IsShift reports whether k is one of the shift operations.
func (k BuiltinKind) IsShift() bool { return k == Shl || k == LShr || k == AShr }

// BuiltinInfo describes a builtin call: the operation, whether it was
// spelled as an "int_" intrinsic, and the types encoded in its name.
type BuiltinInfo struct {
	Name      string
	Kind      BuiltinKind
	Intrinsic bool
	Types     []Type
}

// Category returns the folding category. Every intrinsic is
// CategoryIntrinsic regardless of kind.
func (b BuiltinInfo) Category() Category {
	if b.Intrinsic {
		return CategoryIntrinsic
	}
	return b.Kind.Category()
}

// ParseBuiltinName decodes a builtin name such as "sadd_with_overflow_Int8",
// "s_to_u_checked_trunc_Int2048_Int8" or "int_expect_Int1". Unknown names
// yield BuiltinUnknown.
func ParseBuiltinName(name string) BuiltinInfo {
	info := BuiltinInfo{Name: name}
	parts := strings.Split(name, "_")
	end := len(parts)
	var types []Type
	for end > 1 {
		t, ok := builtinTypeSuffix(parts[end-1])
		if !ok {
			break
		}
		types = append([]Type{t}, types...)
		end--
	}
	info.Types = types

	base := strings.Join(parts[:end], "_")
	if rest, ok := strings.CutPrefix(base, "int_"); ok {
		if k, ok := intrinsicNames[rest]; ok {
			info.Kind = k
			info.Intrinsic = true
			return info
		}
	}
	info.Kind = builtinNames[base]
	return info
}

func builtinTypeSuffix(s string) (Type, bool) {
	switch {
	case s == "Word":
		return IntType{Width: 64}, true
	case strings.HasPrefix(s, "Int"):
		w, err := strconv.ParseUint(s[len("Int"):], 10, 32)
		if err != nil || w == 0 {
			return nil, false
		}
		return IntType{Width: uint(w)}, true
	case strings.HasPrefix(s, "FPIEEE"):
		w, err := strconv.ParseUint(s[len("FPIEEE"):], 10, 32)
		if err != nil {
			return nil, false
		}
		sem, ok := apfloat.SemanticsForWidth(uint(w))
		if !ok {
			return nil, false
		}
		return FloatType{Sem: sem}, true
	}
	return nil, false
}
