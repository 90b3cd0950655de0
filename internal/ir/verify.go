package ir

import (
	"errors"
	"fmt"
	"slices"
)

// Verify checks the structural invariants of f: every block ends in exactly
// one terminator, every operand refers to a live value, and use lists agree
// with operand lists in both directions.
func Verify(f *Function) error {
	var errs []error
	for _, b := range f.blocks {
		for _, a := range b.Args() {
			errs = append(errs, verifyUses(f, a)...)
		}
		insts := b.Instructions()
		if len(insts) == 0 || !insts[len(insts)-1].IsTerminator() {
			errs = append(errs, fmt.Errorf("block %s: missing terminator", b.Label))
		}
		for n, inst := range insts {
			if inst.IsTerminator() && n != len(insts)-1 {
				errs = append(errs, fmt.Errorf("block %s: terminator %%%d is not last", b.Label, inst.id))
			}
			if inst.block != b {
				errs = append(errs, fmt.Errorf("%%%d: parent block mismatch", inst.id))
			}
			for k, id := range inst.ops {
				op := f.Value(id)
				if op == nil {
					errs = append(errs, fmt.Errorf("%%%d: operand %d refers to erased value %%%d", inst.id, k, id))
					continue
				}
				if !slices.Contains(op.uses, Use{User: inst.id, Index: k}) {
					errs = append(errs, fmt.Errorf("%%%d: operand %d missing from use list of %%%d", inst.id, k, id))
				}
			}
			for _, t := range inst.Targets {
				if t.fn != f {
					errs = append(errs, fmt.Errorf("%%%d: branch target %s belongs to another function", inst.id, t.Label))
				}
			}
			errs = append(errs, verifyUses(f, inst)...)
		}
	}
	return errors.Join(errs...)
}

func verifyUses(f *Function, v *Instruction) []error {
	var errs []error
	for _, u := range v.uses {
		user := f.Value(u.User)
		if user == nil || u.Index >= len(user.ops) || user.ops[u.Index] != v.id {
			errs = append(errs, fmt.Errorf("%%%d: stale use by %%%d operand %d", v.id, u.User, u.Index))
		}
	}
	return errs
}
