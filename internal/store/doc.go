// Package store provides SQLite-backed history of constant propagation
// runs and the diagnostics they emitted.
//
// The store is append-only:
//   - Runs: one record per function per pass invocation, with the pass
//     configuration, fold statistics and the printed IR after the pass
//   - Diagnostics: every diagnostic of a run, keyed by its fingerprint
//
// # Critical Patterns
//
// Idempotent writes
//   - runs are keyed by run ID, diagnostics by (run_id, fingerprint)
//   - both use ON CONFLICT DO NOTHING, so re-recording a run is a no-op
//
// Logical ordering
//   - runs are ordered by a seq column assigned at insert time, NEVER by
//     timestamps; diagnostics keep the seq they were emitted with
//   - all queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Diagnostic fingerprints are computed by diag.Fingerprint over canonical
// JSON with domain separation.
package store
