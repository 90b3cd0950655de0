package fold

import (
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/eval"
	"github.com/roach88/constprop/internal/ir"
)

func (f *Folder) foldIntrinsic(inst *ir.Instruction) *ir.Instruction {
	switch kind := inst.Builtin.Kind; kind {
	case ir.Expect:
		if inst.Operand(0).Kind() == ir.IntegerLiteral {
			return inst.Operand(0)
		}
		return nil

	case ir.Ctlz:
		v, ok := inst.Operand(0).IntLiteral()
		if !ok {
			return nil
		}
		// ctlz(0) is only defined when the second operand says so.
		if v.IsZero() {
			if undef, ok := inst.Operand(1).IntLiteral(); !ok || !undef.IsZero() {
				return nil
			}
		}
		return intLiteral(inst, inst.Operand(0).Type(), eval.CountLeadingZeros(v))

	case ir.SAddOver, ir.UAddOver, ir.SSubOver, ir.USubOver, ir.SMulOver, ir.UMulOver:
		return f.foldWithOverflow(inst, kind, false, nil)
	}
	return nil
}

// foldBuiltinWithOverflow folds the builtin form, whose third operand
// asks for overflow to be reported.
func (f *Folder) foldBuiltinWithOverflow(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	report := false
	if inst.NumOperands() > 2 {
		flag, ok := inst.Operand(2).IntLiteral()
		report = ok && flag.IsOne()
	}
	return f.foldWithOverflow(inst, inst.Builtin.Kind, report, state)
}

func (f *Folder) foldWithOverflow(inst *ir.Instruction, op ir.BuiltinKind, report bool, state *ErrorState) *ir.Instruction {
	lhs, ok1 := inst.Operand(0).IntLiteral()
	rhs, ok2 := inst.Operand(1).IntLiteral()
	if !ok1 || !ok2 {
		return nil
	}
	res, overflow := eval.WithOverflow(op, lhs, rhs)

	if overflow && report && state != nil && state.Participating() {
		if inst.Function().Specialization {
			// Specializations are not what the user wrote; say nothing and
			// leave the operation alone.
			f.logger.Debug("overflow in specialization not reported",
				"function", inst.Function().Name,
				"builtin", inst.Builtin.Name)
			return nil
		}
		signed := eval.IsSignedOverflowOp(op)
		lhsText, rhsText := lhs.Text(signed), rhs.Text(signed)
		opText := eval.Operator(op)

		typ, ranges := operatorOperands(inst)
		var m diag.Message
		if typ != "" {
			m = diag.ArithmeticOverflow(lhsText, opText, rhsText, typ)
		} else {
			m = diag.ArithmeticOverflowGeneric(lhsText, opText, rhsText, signed, lhs.Width())
		}
		d := f.report(state, inst.Loc.Pos, m)
		for _, r := range ranges {
			d.Highlight(r)
		}
		// The operation is known to trap; substituting its wrapped value
		// would hide that from later passes.
		return nil
	}
	return resultWithOverflow(inst, res, overflow)
}

func (f *Folder) foldBinary(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	switch op := inst.Builtin.Kind; op {
	case ir.And, ir.Or, ir.Xor, ir.Shl, ir.LShr, ir.AShr:
		return f.foldBitOp(inst, op, state)
	case ir.SDiv, ir.SRem, ir.UDiv, ir.URem:
		return f.foldDivision(inst, op, state)
	case ir.FAdd, ir.FSub, ir.FMul, ir.FDiv:
		return f.foldFloatBinary(inst, op)
	case ir.ExactSDiv, ir.ExactUDiv, ir.FRem, ir.Add, ir.Sub, ir.Mul:
		return nil
	}
	return nil
}

func (f *Folder) foldBitOp(inst *ir.Instruction, op ir.BuiltinKind, state *ErrorState) *ir.Instruction {
	lhs, ok1 := inst.Operand(0).IntLiteral()
	rhs, ok2 := inst.Operand(1).IntLiteral()
	if !ok1 || !ok2 {
		return nil
	}
	if op.IsShift() && eval.ShiftTooLarge(rhs, lhs.Width()) {
		if state.Participating() {
			f.report(state, inst.Operand(1).Loc.Pos, diag.ShiftTooLarge())
		}
		return nil
	}
	return intLiteral(inst, inst.Type(), eval.BitOp(op, lhs, rhs))
}

func (f *Folder) foldDivision(inst *ir.Instruction, op ir.BuiltinKind, state *ErrorState) *ir.Instruction {
	den, ok := inst.Operand(1).IntLiteral()
	if !ok {
		return nil
	}
	if den.IsZero() {
		if state.Participating() {
			f.report(state, inst.Loc.Pos, diag.DivByZero())
		}
		return nil
	}
	num, ok := inst.Operand(0).IntLiteral()
	if !ok {
		return nil
	}
	res, overflow := eval.Divide(op, num, den)
	if overflow {
		if state.Participating() {
			opText := "/"
			if eval.IsRemainder(op) {
				opText = "%"
			}
			f.report(state, inst.Loc.Pos, diag.DivOverflow(num.Text(true), opText, den.Text(true)))
		}
		return nil
	}
	return intLiteral(inst, inst.Type(), res)
}

func (f *Folder) foldCast(inst *ir.Instruction) *ir.Instruction {
	v, ok := inst.Operand(0).IntLiteral()
	if !ok {
		return nil
	}
	return intLiteral(inst, inst.Type(), eval.Cast(inst.Builtin.Kind, v, intWidth(inst.Type())))
}

func (f *Folder) foldCheckedConversion(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	src, ok := inst.Operand(0).IntLiteral()
	if !ok {
		return nil
	}
	op := inst.Builtin.Kind
	srcTy := inst.Operand(0).Type()
	dstTy := ir.TupleElementType(inst.Type(), 0)
	dstInt, ok := dstTy.(ir.IntType)
	if !ok || dstInt.Width > src.Width() {
		return nil
	}
	if (op == ir.SUCheckedConversion || op == ir.USCheckedConversion) && dstInt.Width != src.Width() {
		return nil
	}

	res, overflow := eval.CheckedConversion(op, src, dstInt.Width)
	if !overflow {
		return resultWithOverflow(inst, res, false)
	}
	if !state.Participating() {
		return nil
	}

	userSrc, userDst := userConversionTypes(inst)
	orSrc := func() string {
		if userSrc != "" {
			return userSrc
		}
		return srcTy.String()
	}
	orDst := func() string {
		if userDst != "" {
			return userDst
		}
		return dstTy.String()
	}
	srcSigned, dstSigned := eval.SourceSigned(op), eval.DestSigned(op)
	literal := src.Width() == ir.LiteralWidth
	pos := inst.Loc.Pos

	var m diag.Message
	switch {
	case !pos.IsValid() && literal:
		m = diag.LiteralOverflowWarn(orDst())
	case !pos.IsValid():
		m = diag.ConversionOverflowWarn(orSrc(), orDst())
	case literal && userDst != "":
		text := src.Text(srcSigned)
		if srcSigned && !dstSigned && src.IsNegative() {
			m = diag.NegativeLiteralOverflowUnsigned(userDst, text)
		} else {
			m = diag.LiteralOverflow(userDst, text)
		}
	case literal:
		m = diag.LiteralOverflowBuiltin(dstSigned, dstTy.String(), src.Text(srcSigned))
	case op == ir.SUCheckedConversion:
		m = diag.ConversionSignError(orDst())
	case userSrc != "":
		m = diag.ConversionOverflow(userSrc, userDst)
	default:
		m = diag.ConversionOverflowBuiltin(srcSigned, srcTy.String(), dstSigned, dstTy.String())
	}
	f.report(state, pos, m)
	return nil
}

// foldAssumeNonNegative returns the literal operand. A negative literal is
// still returned, after reporting the broken assumption.
func (f *Folder) foldAssumeNonNegative(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	lit := inst.Operand(0)
	v, ok := lit.IntLiteral()
	if !ok {
		return nil
	}
	if v.IsNegative() && state.Participating() {
		f.report(state, inst.Loc.Pos, diag.NegativeAssumption(v.Text(true)))
	}
	return lit
}
