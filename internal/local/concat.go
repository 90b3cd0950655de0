package local

import "github.com/roach88/constprop/internal/ir"

const (
	// SemanticsConcat marks a function concatenating two strings.
	SemanticsConcat = "string.concat"
	// SemanticsMakeUTF8 marks a function building a string from a literal.
	SemanticsMakeUTF8 = "string.makeUTF8"
)

// IsStringConcat reports whether inst calls a string concatenation.
func IsStringConcat(inst *ir.Instruction) bool {
	return inst.HasSemantics(SemanticsConcat)
}

// ConcatenateStrings folds a concatenation of two string constants. A
// constant is either a string literal or a string.makeUTF8 call on one.
//
// On success it returns the new constant, built immediately before apply,
// in the same form as the left operand. Uses of apply are not touched.
func ConcatenateStrings(apply *ir.Instruction) *ir.Instruction {
	if !IsStringConcat(apply) || apply.NumOperands() < 2 {
		return nil
	}
	lhs, rhs := apply.Operand(0), apply.Operand(1)
	l, ok := stringConstant(lhs)
	if !ok {
		return nil
	}
	r, ok := stringConstant(rhs)
	if !ok {
		return nil
	}

	b := ir.NewBuilderBefore(apply)
	if lhs.Kind() == ir.StringLiteral {
		return b.StringLiteral(apply.Type(), l.Str+r.Str)
	}
	lit := b.StringLiteral(l.Type(), l.Str+r.Str)
	return b.Apply(lhs.Callee, lhs.Semantics, apply.Type(), lit)
}

// stringConstant returns the literal behind a string constant.
func stringConstant(v *ir.Instruction) (*ir.Instruction, bool) {
	switch {
	case v.Kind() == ir.StringLiteral:
		return v, true
	case v.HasSemantics(SemanticsMakeUTF8) && v.NumOperands() == 1 && v.Operand(0).Kind() == ir.StringLiteral:
		return v.Operand(0), true
	}
	return nil, false
}
