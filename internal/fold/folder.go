package fold

import (
	"log/slog"

	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/ir"
)

// Folder evaluates single instructions whose operands are literals.
//
// Fold never rewrites uses. A successful fold returns the replacement
// value, which is either an existing value (an operand, an aggregate
// element) or a new instruction inserted immediately before the folded
// one. The caller replaces uses and deletes what became dead.
type Folder struct {
	diags  *diag.Engine
	logger *slog.Logger
}

// Option configures a Folder.
type Option func(*Folder)

// WithLogger sets the logger fold decisions are traced to.
func WithLogger(l *slog.Logger) Option {
	return func(f *Folder) { f.logger = l }
}

// New returns a Folder reporting into diags. A nil engine gets a private
// one, for callers that only ever fold with Disabled.
func New(diags *diag.Engine, opts ...Option) *Folder {
	f := &Folder{diags: diags, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	if f.diags == nil {
		f.diags = diag.NewEngine(diag.WithLogger(f.logger))
	}
	return f
}

// Diagnostics returns the engine the folder reports into.
func (f *Folder) Diagnostics() *diag.Engine { return f.diags }

// Fold tries to compute inst from its operands. It returns nil when inst
// cannot be folded. state is read to decide whether to report problems
// and set to ErrorRecorded when a diagnostic is emitted.
func (f *Folder) Fold(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	switch inst.Kind() {
	case ir.Builtin:
		return f.foldBuiltin(inst, state)

	case ir.TupleExtract:
		if tuple := inst.Operand(0); tuple.Kind() == ir.Tuple {
			return tuple.Operand(inst.Field)
		}

	case ir.StructExtract:
		if st := inst.Operand(0); st.Kind() == ir.Struct {
			return st.Operand(inst.Field)
		}

	case ir.IndexAddr, ir.IndexRawPointer:
		if idx, ok := inst.Operand(1).IntLiteral(); ok && idx.IsZero() {
			return inst.Operand(0)
		}
	}
	return nil
}

func (f *Folder) foldBuiltin(inst *ir.Instruction, state *ErrorState) *ir.Instruction {
	info := inst.Builtin
	switch info.Category() {
	case ir.CategoryIntrinsic:
		return f.foldIntrinsic(inst)
	case ir.CategoryBinaryWithOverflow:
		return f.foldBuiltinWithOverflow(inst, state)
	case ir.CategoryBinary:
		return f.foldBinary(inst, state)
	case ir.CategoryPredicate:
		return f.foldCompare(inst)
	case ir.CategoryCast:
		return f.foldCast(inst)
	case ir.CategoryCheckedConversion:
		return f.foldCheckedConversion(inst, state)
	case ir.CategoryIntToFP:
		return f.foldIntToFP(inst, state)
	case ir.CategoryFPTrunc:
		return f.foldFPTrunc(inst, state)
	case ir.CategoryFPToInt:
		return f.foldFPToInt(inst, state)
	case ir.CategoryAssumeNonNegative:
		return f.foldAssumeNonNegative(inst, state)
	case ir.CategoryConfiguration, ir.CategoryNone:
		// Configuration builtins are rewritten by the engine, not folded.
		return nil
	}
	return nil
}

func intLiteral(before *ir.Instruction, t ir.Type, v apint.Int) *ir.Instruction {
	return ir.NewBuilderBefore(before).IntegerLiteral(t, v)
}

// resultWithOverflow builds the (value, overflow) pair that checked
// operations return.
func resultWithOverflow(inst *ir.Instruction, v apint.Int, overflow bool) *ir.Instruction {
	b := ir.NewBuilderBefore(inst)
	val := b.IntegerLiteral(ir.TupleElementType(inst.Type(), 0), v)
	flag := b.IntegerLiteral(ir.TupleElementType(inst.Type(), 1), apint.Bool(overflow))
	return b.Tuple(val, flag)
}

func intWidth(t ir.Type) uint {
	return t.(ir.IntType).Width
}
