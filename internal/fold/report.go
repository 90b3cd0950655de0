package fold

import (
	"strings"

	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/ir"
)

// report emits m at pos and marks the attempt as having reported.
func (f *Folder) report(state *ErrorState, pos ir.Pos, m diag.Message) *diag.InFlight {
	*state = ErrorRecorded
	return f.diags.Diagnose(pos, m)
}

// floatLiteralExpr finds the float literal a float_literal instruction was
// written as, looking through single-argument initializer calls left
// behind by earlier folds of Float(...) constructions. With implicitOnly
// set, only compiler-synthesised calls are looked through.
func floatLiteralExpr(lit *ir.Instruction, implicitOnly bool) *ir.SourceExpr {
	e := lit.Loc.Expr
	for e != nil && e.Kind == ir.ExprConstructorCall && len(e.Args) == 1 {
		if implicitOnly && !e.Implicit {
			break
		}
		e = e.Args[0]
	}
	if e == nil || e.Kind != ir.ExprFloatLiteral {
		return nil
	}
	return e
}

// LiteralText returns the source spelling of a float literal, falling
// back to the shortest decimal form of its value.
func LiteralText(lit *ir.Instruction) string {
	if e := floatLiteralExpr(lit, false); e != nil {
		if e.Negative {
			return "-" + e.Digits
		}
		return e.Digits
	}
	return lit.Float.Text()
}

// isHexLiteral reports whether a float literal was written in hex-float
// notation.
func isHexLiteral(lit *ir.Instruction) bool {
	e := floatLiteralExpr(lit, true)
	return e != nil && strings.HasPrefix(e.Digits, "0x")
}

// maybeExplicitConversion guesses whether a float conversion may be part
// of a conversion the user wrote out, in which case precision warnings are
// suppressed. Without an implicit initializer call to go on, it assumes
// yes. An implicit Double(...) is also a yes: it can be the intermediate
// step of an explicit conversion to another float type. The guess is
// known to be imprecise in both directions.
func maybeExplicitConversion(inst *ir.Instruction) bool {
	call := inst.Loc.ConstructorCall()
	if call == nil || !call.Implicit {
		return true
	}
	return call.Type == "Double"
}

// userConversionTypes returns the user-facing source and destination
// types of a single-argument call, or empty strings.
func userConversionTypes(inst *ir.Instruction) (src, dst string) {
	call := inst.Loc.Apply()
	if call == nil || len(call.Args) != 1 {
		return "", ""
	}
	return call.Args[0].Type, call.Type
}

// callType is the user-facing result type of the call at inst, or
// fallback when there is none.
func callType(inst *ir.Instruction, fallback ir.Type) string {
	if call := inst.Loc.Apply(); call != nil && call.Type != "" {
		return call.Type
	}
	return fallback.String()
}

// operatorOperands returns the operand type of a binary operator call,
// when both sides have the same type, and the operands' source ranges.
// Passing the left side inout, as += does, does not change its type.
func operatorOperands(inst *ir.Instruction) (typ string, ranges []ir.Range) {
	call := inst.Loc.Apply()
	if call == nil || len(call.Args) != 2 {
		return "", nil
	}
	lhs, rhs := call.Args[0], call.Args[1]
	if lhs.Type == rhs.Type {
		typ = rhs.Type
	}
	return typ, []ir.Range{lhs.Range, rhs.Range}
}
