// Package engine drives constant propagation over one function to a
// fixpoint.
//
// ARCHITECTURE:
//
// Work-list:
// A LIFO set of instructions. Seeding queues every used literal, every
// configuration builtin (when assert configuration replacement is on),
// every checked cast and every string concatenation call. Popping
// dispatches on the instruction:
//   - assert_configuration is replaced by the configured literal
//   - conditionallyUnreachable is deleted
//   - string concatenations are folded into a single constant
//   - checked casts go to the cast optimizer
//   - anything else has each of its users folded
//
// Every successful fold queues the value it produced, so propagation is
// transitive. Folded users are swept for dead code once all users of the
// popped instruction have been visited; the sweep reports what it erased
// so the work-list never holds an erased instruction.
//
// Collaborators:
// The dead code sweep, the cast optimizer and the string concatenation
// folder are injected (see EngineOption) and default to package local.
//
// Diagnostics:
// With diagnostics on, each fold attempt starts in fold.NoError. A user
// whose attempt reported is added to the error set and never folded again
// in the same run, which keeps diagnostics to one per instruction even
// when the user is reached through several operands.
//
// CRITICAL PATTERNS:
//
// Single owner:
// The engine is single-threaded and owns the function for the duration of
// Run. Use lists are snapshotted before any user is rewritten.
//
// Invariant breaches:
// Conditions that indicate a bug in the pass rather than in the program
// panic with *InternalError. That includes a run that pops more than
// WithMaxSteps instructions.
package engine
