// Package diag holds the diagnostics produced while folding: the message
// catalog, the collecting Engine, and the canonical encoding used to
// fingerprint a diagnostic for storage.
//
// Messages are built by the catalog constructors (DivByZero,
// ArithmeticOverflow, ...) and attached to a position with
// Engine.Diagnose. Each recorded diagnostic gets a sequence number from
// the engine's Clock, so emission order is explicit even after the
// diagnostics are stored and re-read.
package diag
