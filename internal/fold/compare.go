package fold

import (
	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/eval"
	"github.com/roach88/constprop/internal/ir"
)

// foldCompare folds comparisons of two literals, plus comparisons whose
// outcome follows from one operand alone.
func (f *Folder) foldCompare(inst *ir.Instruction) *ir.Instruction {
	op := inst.Builtin.Kind
	lhs, rhs := inst.Operand(0), inst.Operand(1)
	if a, ok := lhs.IntLiteral(); ok {
		if b, ok := rhs.IntLiteral(); ok {
			return intLiteral(inst, inst.Type(), eval.Compare(op, a, b))
		}
	}
	r, ok := compareKnown(op, lhs, rhs)
	if !ok {
		return nil
	}
	return intLiteral(inst, inst.Type(), apint.Bool(r))
}

// compareKnown decides comparisons that do not need both values.
func compareKnown(op ir.BuiltinKind, lhs, rhs *ir.Instruction) (result, ok bool) {
	switch op {
	// Unsigned values against zero.
	case ir.ICmpULT:
		if isZero(rhs) {
			return false, true
		}
	case ir.ICmpUGT:
		if isZero(lhs) {
			return false, true
		}
	case ir.ICmpUGE:
		if isZero(rhs) {
			return true, true
		}
	case ir.ICmpULE:
		if isZero(lhs) {
			return true, true
		}

	// Values assumed non-negative against zero.
	case ir.ICmpSLT:
		if lhs.IsBuiltin(ir.AssumeNonNegative) && isZero(rhs) {
			return false, true
		}
	case ir.ICmpSGT:
		if isZero(lhs) && rhs.IsBuiltin(ir.AssumeNonNegative) {
			return false, true
		}
	case ir.ICmpSGE:
		if lhs.IsBuiltin(ir.AssumeNonNegative) && isZero(rhs) {
			return true, true
		}
	case ir.ICmpSLE:
		if isZero(lhs) && rhs.IsBuiltin(ir.AssumeNonNegative) {
			return true, true
		}
	}

	// Nothing signed exceeds the signed maximum.
	switch {
	case op == ir.ICmpSLT && isMaxSigned(lhs), op == ir.ICmpSGT && isMaxSigned(rhs):
		return false, true
	case op == ir.ICmpSGE && isMaxSigned(lhs), op == ir.ICmpSLE && isMaxSigned(rhs):
		return true, true
	}

	// x >> n with n > 0 has a clear sign bit, so it never exceeds the
	// signed maximum in either reading.
	switch op {
	case ir.ICmpUGE, ir.ICmpSGE:
		if isMaxSigned(lhs) && isPositiveLShr(rhs) {
			return true, true
		}
	case ir.ICmpULE, ir.ICmpSLE:
		if isPositiveLShr(lhs) && isMaxSigned(rhs) {
			return true, true
		}
	case ir.ICmpULT, ir.ICmpSLT:
		if isMaxSigned(lhs) && isPositiveLShr(rhs) {
			return false, true
		}
	case ir.ICmpUGT, ir.ICmpSGT:
		if isPositiveLShr(lhs) && isMaxSigned(rhs) {
			return false, true
		}
	}

	// The value of an unsigned operation that traps on overflow is never
	// negative.
	switch op {
	case ir.ICmpSLT:
		if isCheckedUnsignedResult(lhs) && isZero(rhs) {
			return false, true
		}
	case ir.ICmpSGE:
		if isCheckedUnsignedResult(lhs) && isZero(rhs) {
			return true, true
		}
	}
	return false, false
}

func isZero(v *ir.Instruction) bool {
	lit, ok := v.IntLiteral()
	return ok && lit.IsZero()
}

func isOne(v *ir.Instruction) bool {
	lit, ok := v.IntLiteral()
	return ok && lit.IsOne()
}

func isMaxSigned(v *ir.Instruction) bool {
	lit, ok := v.IntLiteral()
	return ok && lit.IsMaxSigned()
}

func isPositiveLShr(v *ir.Instruction) bool {
	if !v.IsBuiltin(ir.LShr) {
		return false
	}
	n, ok := v.Operand(1).IntLiteral()
	return ok && n.IsStrictlyPositive()
}

// isCheckedUnsignedResult matches element 0 of an unsigned add, sub or mul
// whose overflow is reported.
func isCheckedUnsignedResult(v *ir.Instruction) bool {
	if v.Kind() != ir.TupleExtract || v.Field != 0 {
		return false
	}
	op := v.Operand(0)
	if op.Kind() != ir.Builtin || op.Builtin.Intrinsic || op.NumOperands() < 3 {
		return false
	}
	switch op.Builtin.Kind {
	case ir.UAddOver, ir.USubOver, ir.UMulOver:
		return isOne(op.Operand(2))
	}
	return false
}
