// Package local holds small instruction-level transformations that the
// folding engine delegates to: the dead-instruction sweep, the checked-cast
// simplifier and string literal concatenation.
//
// Each works on one instruction (and what hangs off it) at a time and
// reports what it changed, so a caller tracking instructions elsewhere can
// keep its bookkeeping in step.
package local
