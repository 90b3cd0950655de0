package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/constprop/internal/diag"
)

// WriteRun inserts a run record. The run's Seq is ignored; the store
// assigns the next sequence number.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if err := writeRun(ctx, s.db, run); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteDiagnostic inserts one diagnostic of a run, keyed by its
// fingerprint. A diagnostic already recorded for the run is ignored.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteDiagnostic(ctx context.Context, runID, function string, d diag.Diagnostic) error {
	if err := writeDiagnostic(ctx, s.db, runID, function, d); err != nil {
		return fmt.Errorf("write diagnostic: %w", err)
	}
	return nil
}

// Record writes a run and its diagnostics in one transaction.
func (s *Store) Record(ctx context.Context, run Run, diags []diag.Diagnostic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	if err := writeRun(ctx, tx, run); err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	for _, d := range diags {
		if err := writeDiagnostic(ctx, tx, run.ID, run.Function, d); err != nil {
			return fmt.Errorf("record run %s: %w", run.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run %s: commit: %w", run.ID, err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeRun(ctx context.Context, db execer, run Run) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, function, diagnostics, assert_config, folded, before_count, after_count, invalidation, ir)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Function,
		run.Diagnostics,
		run.AssertConfig,
		run.Folded,
		run.Before,
		run.After,
		run.Invalidation,
		run.IR,
	)
	return err
}

func writeDiagnostic(ctx context.Context, db execer, runID, function string, d diag.Diagnostic) error {
	fp, err := diag.Fingerprint(function, d)
	if err != nil {
		return err
	}
	args, err := marshalArgs(d.Args)
	if err != nil {
		return err
	}
	ranges, err := marshalRanges(d.Ranges)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO diagnostics
		(run_id, fingerprint, seq, diag_id, severity, message, args, file, line, col, ranges)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		fp,
		d.Seq,
		string(d.ID),
		d.Severity.String(),
		d.Message,
		args,
		d.Pos.File,
		d.Pos.Line,
		d.Pos.Col,
		ranges,
	)
	return err
}
