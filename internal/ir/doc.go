// Package ir provides the typed SSA intermediate representation the
// constant propagation pass operates on.
//
// A Function is an arena: it owns its blocks and every value defined in
// them, and hands out stable IDs. Instructions refer to their operands and
// users by ID, never by owning pointer, so rewriting the graph in place is
// a matter of editing ID lists.
//
// This package depends only on the literal value packages (apint, apfloat).
//
// Key constraints:
//   - An instruction can only be erased once nothing uses it
//   - Literal payloads are immutable; folding creates new instructions
//   - Printing renumbers values in layout order, so output is stable
package ir
