package local

import "github.com/roach88/constprop/internal/ir"

// ReplaceFunc replaces every use of inst with v.
type ReplaceFunc func(inst, v *ir.Instruction)

// EraseFunc erases inst, which has no uses left.
type EraseFunc func(inst *ir.Instruction)

// CastOptimizer simplifies checked casts whose outcome is known from the
// types alone. It never rewrites uses or erases instructions itself; it
// goes through the actions it was built with.
type CastOptimizer struct {
	replace ReplaceFunc
	erase   EraseFunc
}

// NewCastOptimizer returns a CastOptimizer using the given actions. Nil
// actions default to plain ReplaceAllUsesWith and Erase.
func NewCastOptimizer(replace ReplaceFunc, erase EraseFunc) *CastOptimizer {
	if replace == nil {
		replace = func(inst, v *ir.Instruction) { inst.ReplaceAllUsesWith(v) }
	}
	if erase == nil {
		erase = func(inst *ir.Instruction) { inst.Erase() }
	}
	return &CastOptimizer{replace: replace, erase: erase}
}

// Optimize dispatches on the cast kind. It returns the instruction that
// took the cast's place, or nil if nothing changed.
func (o *CastOptimizer) Optimize(inst *ir.Instruction) *ir.Instruction {
	switch inst.Kind() {
	case ir.UnconditionalCheckedCast:
		return o.OptimizeUnconditionalCheckedCast(inst)
	case ir.UnconditionalCheckedCastAddr:
		return o.OptimizeUnconditionalCheckedCastAddr(inst)
	case ir.CheckedCastBranch:
		return o.SimplifyCheckedCastBranch(inst)
	case ir.CheckedCastAddrBranch:
		return o.SimplifyCheckedCastAddrBranch(inst)
	}
	return nil
}

// castOutcome classifies a cast from src to target.
type castOutcome int

const (
	castUnknown castOutcome = iota
	castSucceeds
	castFails
)

func classify(src, target ir.Type) castOutcome {
	if ir.SameType(src, target) {
		return castSucceeds
	}
	// Nominal types may be related through subclassing or conformance;
	// everything else is structural and known to differ.
	if isNominal(src) || isNominal(target) {
		return castUnknown
	}
	return castFails
}

func isNominal(t ir.Type) bool {
	switch t.(type) {
	case ir.NominalType, *ir.StructType:
		return true
	}
	return false
}

// OptimizeUnconditionalCheckedCast removes a cast to the value's own type.
// The returned instruction is the cast's operand.
func (o *CastOptimizer) OptimizeUnconditionalCheckedCast(inst *ir.Instruction) *ir.Instruction {
	v := inst.Operand(0)
	if classify(v.Type(), inst.CastType) != castSucceeds {
		return nil
	}
	o.replace(inst, v)
	o.erase(inst)
	return v
}

// OptimizeUnconditionalCheckedCastAddr turns a same-type address cast into
// a copy.
func (o *CastOptimizer) OptimizeUnconditionalCheckedCastAddr(inst *ir.Instruction) *ir.Instruction {
	src, dst := inst.Operand(0), inst.Operand(1)
	if classify(pointee(src.Type()), inst.CastType) != castSucceeds {
		return nil
	}
	cp := ir.NewBuilderBefore(inst).CopyAddr(src, dst)
	o.erase(inst)
	return cp
}

// SimplifyCheckedCastBranch replaces a cast branch whose outcome is known
// with an unconditional branch to the matching successor.
func (o *CastOptimizer) SimplifyCheckedCastBranch(inst *ir.Instruction) *ir.Instruction {
	v := inst.Operand(0)
	success, failure := inst.Targets[0], inst.Targets[1]

	var br *ir.Instruction
	switch classify(v.Type(), inst.CastType) {
	case castSucceeds:
		br = ir.NewBuilderBefore(inst).Branch(success, v)
	case castFails:
		br = ir.NewBuilderBefore(inst).Branch(failure)
	default:
		return nil
	}
	o.erase(inst)
	return br
}

// SimplifyCheckedCastAddrBranch is SimplifyCheckedCastBranch for casts
// through memory. A cast that succeeds becomes a copy and a branch.
func (o *CastOptimizer) SimplifyCheckedCastAddrBranch(inst *ir.Instruction) *ir.Instruction {
	src, dst := inst.Operand(0), inst.Operand(1)
	success, failure := inst.Targets[0], inst.Targets[1]

	b := ir.NewBuilderBefore(inst)
	var br *ir.Instruction
	switch classify(pointee(src.Type()), inst.CastType) {
	case castSucceeds:
		b.CopyAddr(src, dst)
		br = b.Branch(success)
	case castFails:
		br = b.Branch(failure)
	default:
		return nil
	}
	o.erase(inst)
	return br
}

func pointee(t ir.Type) ir.Type {
	if at, ok := t.(ir.AddressType); ok {
		return at.Elem
	}
	return t
}
