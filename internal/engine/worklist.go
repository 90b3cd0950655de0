package engine

import "github.com/roach88/constprop/internal/ir"

// worklist is an insertion-ordered set of instructions popped from the
// back (LIFO).
//
// Remove only drops set membership; the stale slot is skipped when it
// reaches the back. An instruction removed and inserted again gets a new
// slot at the back, so the stale one can never be popped in its place.
type worklist struct {
	items   []*ir.Instruction
	members map[ir.ID]struct{}
}

func newWorklist() *worklist {
	return &worklist{
		items:   make([]*ir.Instruction, 0, 64),
		members: make(map[ir.ID]struct{}),
	}
}

// Insert adds inst unless it is already present. Returns whether it was
// added.
func (w *worklist) Insert(inst *ir.Instruction) bool {
	if _, ok := w.members[inst.ID()]; ok {
		return false
	}
	w.members[inst.ID()] = struct{}{}
	w.items = append(w.items, inst)
	return true
}

// Remove drops id from the set if present.
func (w *worklist) Remove(id ir.ID) {
	delete(w.members, id)
}

// Contains reports whether id is pending.
func (w *worklist) Contains(id ir.ID) bool {
	_, ok := w.members[id]
	return ok
}

// Pop removes and returns the most recently inserted instruction.
// Returns (nil, false) if the list is empty.
func (w *worklist) Pop() (*ir.Instruction, bool) {
	for len(w.items) > 0 {
		n := len(w.items) - 1
		inst := w.items[n]
		// Nil out the slot so the backing array does not keep erased
		// instructions alive.
		w.items[n] = nil
		w.items = w.items[:n]
		if _, ok := w.members[inst.ID()]; ok {
			delete(w.members, inst.ID())
			return inst, true
		}
	}
	return nil, false
}

// Len returns the number of pending instructions.
func (w *worklist) Len() int {
	return len(w.members)
}
