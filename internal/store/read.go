package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/constprop/internal/diag"
)

const runColumns = `id, seq, function, diagnostics, assert_config, folded, before_count, after_count, invalidation, ir`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns all runs, optionally restricted to one function, in
// the order they were recorded.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, function string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if function != "" {
		query += ` WHERE function = ?`
		args = append(args, function)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadDiagnostics returns the diagnostics of a run in emission order.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadDiagnostics(ctx context.Context, runID string) ([]diag.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, diag_id, severity, message, args, file, line, col, ranges
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY seq ASC, fingerprint COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []diag.Diagnostic{}
	for rows.Next() {
		d, err := scanDiagnostic(rows)
		if err != nil {
			return nil, err
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

// CountDiagnostics returns the number of diagnostics of severity sev
// recorded for a run.
func (s *Store) CountDiagnostics(ctx context.Context, runID string, sev diag.Severity) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM diagnostics WHERE run_id = ? AND severity = ?
	`, runID, sev.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count diagnostics: %w", err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	if err := row.Scan(
		&run.ID, &run.Seq, &run.Function, &run.Diagnostics, &run.AssertConfig,
		&run.Folded, &run.Before, &run.After, &run.Invalidation, &run.IR,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

func scanDiagnostic(row scanner) (diag.Diagnostic, error) {
	var d diag.Diagnostic
	var id, severity, args, ranges string
	if err := row.Scan(
		&d.Seq, &id, &severity, &d.Message, &args,
		&d.Pos.File, &d.Pos.Line, &d.Pos.Col, &ranges,
	); err != nil {
		return d, fmt.Errorf("scan diagnostic: %w", err)
	}
	d.ID = diag.ID(id)

	var err error
	if d.Severity, err = diag.ParseSeverity(severity); err != nil {
		return d, fmt.Errorf("scan diagnostic: %w", err)
	}
	if d.Args, err = unmarshalArgs(args); err != nil {
		return d, fmt.Errorf("scan diagnostic: %w", err)
	}
	if d.Ranges, err = unmarshalRanges(ranges); err != nil {
		return d, fmt.Errorf("scan diagnostic: %w", err)
	}
	return d, nil
}
