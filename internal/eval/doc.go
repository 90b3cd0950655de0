// Package eval is the numeric evaluator behind constant folding.
//
// Every function is pure: it neither emits diagnostics nor touches the
// IR, and callers check preconditions (non-zero divisor, shift amount in
// range) before calling. Asking for an operation kind outside a
// function's domain panics with *UnsupportedError.
package eval
