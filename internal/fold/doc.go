// Package fold folds one instruction at a time.
//
// A Folder looks at an instruction's operands and, when they are literals
// (or match a handful of algebraic patterns), returns the value the
// instruction computes. Problems found along the way, such as a division
// by zero or an arithmetic overflow that is certain to trap, are reported
// through a diag.Engine when the caller's ErrorState allows it; such
// instructions are left alone.
package fold
