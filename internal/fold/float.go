package fold

import (
	"errors"

	"github.com/roach88/constprop/internal/apfloat"
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/eval"
	"github.com/roach88/constprop/internal/ir"
)

func floatSemantics(t ir.Type) apfloat.Semantics {
	return t.(ir.FloatType).Sem
}

func (f *Folder) foldFloatBinary(inst *ir.Instruction, op ir.BuiltinKind) *ir.Instruction {
	lhs, rhs := inst.Operand(0), inst.Operand(1)
	if lhs.Kind() != ir.FloatLiteral || rhs.Kind() != ir.FloatLiteral {
		return nil
	}
	res, _ := eval.FloatBinary(op, lhs.Float, rhs.Float)
	return ir.NewBuilderBefore(inst).FloatLiteral(inst.Type(), res)
}

func (f *Folder) foldIntToFP(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	src, ok := inst.Operand(0).IntLiteral()
	if !ok {
		return nil
	}
	sem := floatSemantics(inst.Type())

	if op := inst.Builtin.Kind; op != ir.IntToFPWithOverflow {
		// Plain conversions round silently.
		res, status := eval.IntToFP(src, op == ir.SIToFP, sem)
		if status.Has(apfloat.Overflow) {
			return nil
		}
		return ir.NewBuilderBefore(inst).FloatLiteral(inst.Type(), res)
	}

	res, status := eval.IntToFP(src, true, sem)
	overflow := status.Has(apfloat.Overflow)
	inexact := status.Has(apfloat.Inexact)
	if overflow || inexact {
		// Rounding is expected in an explicit conversion; overflow never is.
		if state.Participating() && (overflow || !maybeExplicitConversion(inst)) {
			typ := callType(inst, inst.Type())
			srcText := src.Text(true)
			if overflow {
				f.report(state, inst.Loc.Pos, diag.LiteralOverflow(typ, srcText))
			} else {
				f.report(state, inst.Loc.Pos, diag.IntToFPInexact(typ, srcText, res.IntegerText()))
			}
		}
		if overflow {
			return nil
		}
	}
	return ir.NewBuilderBefore(inst).FloatLiteral(inst.Type(), res)
}

func (f *Folder) foldFPTrunc(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	lit := inst.Operand(0)
	if lit.Kind() != ir.FloatLiteral {
		return nil
	}
	dst := floatSemantics(inst.Type())
	res, status := eval.FPTrunc(lit.Float, dst)

	if state.Participating() && !maybeExplicitConversion(inst) {
		overflow := status.Has(apfloat.Overflow)
		tiny := eval.IsLossyUnderflow(lit.Float, dst)
		hex := status != apfloat.OK && isHexLiteral(lit)
		if overflow || tiny || hex {
			text := LiteralText(lit)
			typ := callType(inst, inst.Type())
			var m diag.Message
			switch {
			case overflow:
				m = diag.FloatTruncOverflow(text, typ, res.IsNegative())
			case hex:
				m = diag.FloatTruncHexInexact(text, typ, res.IsNegative())
			default:
				m = diag.FloatTruncUnderflow(text, typ, res.IsNegative())
			}
			f.report(state, inst.Loc.Pos, m)
		}
	}

	if status.Has(apfloat.InvalidOp) || status.Has(apfloat.DivByZero) ||
		status.Has(apfloat.Underflow) || res.IsDenormal() {
		return nil
	}
	return ir.NewBuilderBefore(inst).FloatLiteral(inst.Type(), res)
}

func (f *Folder) foldFPToInt(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	lit := inst.Operand(0)
	if lit.Kind() != ir.FloatLiteral {
		return nil
	}
	toUnsigned := inst.Builtin.Kind == ir.FPToUI
	res, status, err := eval.FPToInt(lit.Float, intWidth(inst.Type()), !toUnsigned)

	call := inst.Loc.Apply()
	typ := callType(inst, inst.Type())
	switch {
	case errors.Is(err, eval.ErrNegativeToUnsigned):
		if state.Participating() {
			f.report(state, inst.Loc.Pos, diag.NegativeFloatToUnsigned(LiteralText(lit), typ, call == nil))
		}
		return nil

	case status.Has(apfloat.InvalidOp):
		if state.Participating() {
			implicit := call != nil && call.Implicit
			f.report(state, inst.Loc.Pos, diag.FloatToInt(LiteralText(lit), typ, implicit))
		}
		return nil

	case status != apfloat.OK && status != apfloat.Inexact:
		return nil
	}
	return intLiteral(inst, inst.Type(), res)
}
