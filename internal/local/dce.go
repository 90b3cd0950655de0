package local

import "github.com/roach88/constprop/internal/ir"

// DeleteTriviallyDead erases every root that is trivially dead, or every
// root when force is set, along with any operand that becomes trivially
// dead as a result. Block arguments are never erased.
//
// It returns the IDs of the erased instructions. A forced root that is
// still used panics with *ir.InvariantError.
func DeleteTriviallyDead(roots []*ir.Instruction, force bool) []ir.ID {
	seen := make(map[ir.ID]bool)
	var dead []*ir.Instruction
	for _, r := range roots {
		if !deletable(r) || seen[r.ID()] {
			continue
		}
		if force || r.IsTriviallyDead() {
			seen[r.ID()] = true
			dead = append(dead, r)
		}
	}

	// Detach everything first so erase order does not matter.
	for i := 0; i < len(dead); i++ {
		inst := dead[i]
		ops := inst.Operands()
		inst.DropAllReferences()
		for _, op := range ops {
			if !deletable(op) || seen[op.ID()] || !op.IsTriviallyDead() {
				continue
			}
			seen[op.ID()] = true
			dead = append(dead, op)
		}
	}

	removed := make([]ir.ID, 0, len(dead))
	for _, inst := range dead {
		removed = append(removed, inst.ID())
		inst.Erase()
	}
	return removed
}

func deletable(inst *ir.Instruction) bool {
	return inst != nil && !inst.IsErased() && inst.Kind() != ir.Argument
}
