package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string
	Function string
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	Seq          int64  `json:"seq"`
	ID           string `json:"id"`
	Function     string `json:"function"`
	Diagnostics  bool   `json:"diagnostics"`
	AssertConfig string `json:"assert_config"`
	Folded       int    `json:"folded"`
	Before       int    `json:"before"`
	After        int    `json:"after"`
	Invalidation string `json:"invalidation"`
}

// RunDetail is a run with its IR and diagnostics.
type RunDetail struct {
	Run         RunSummary         `json:"run"`
	IR          string             `json:"ir"`
	Diagnostics []DiagnosticReport `json:"diagnostics"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded pass runs",
		Long: `List the runs recorded by "constprop fold --db", oldest first, or show
one run's folded IR and diagnostics.

Examples:
  constprop history --db ./history.db
  constprop history --db ./history.db --function main
  constprop history --db ./history.db --run 0190b6c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", env.Str(EnvDatabase), "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run")
	cmd.Flags().StringVar(&opts.Function, "function", "", "only list runs of the named function")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.RunID != "" {
		return showRun(ctx, st, opts.RunID, f)
	}

	runs, err := st.ListRuns(ctx, opts.Function)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, newRunSummary(r))
	}
	if opts.Format == "json" {
		return f.Success(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%4d  %s  %-20s folded %d, instructions %d -> %d, invalidated %s\n",
			s.Seq, s.ID, s.Function, s.Folded, s.Before, s.After, s.Invalidation)
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, id string, f *OutputFormatter) error {
	run, err := st.ReadRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	diags, err := st.ReadDiagnostics(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read diagnostics", err)
	}
	errs, err := st.CountDiagnostics(ctx, id, diag.Error)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count diagnostics", err)
	}

	detail := RunDetail{
		Run:         newRunSummary(run),
		IR:          run.IR,
		Diagnostics: make([]DiagnosticReport, 0, len(diags)),
	}
	for _, d := range diags {
		detail.Diagnostics = append(detail.Diagnostics, newDiagnosticReport(d))
	}
	if f.Format == "json" {
		return f.Success(detail)
	}

	fmt.Fprintf(f.Writer, "run %s (#%d) of %s\n", run.ID, run.Seq, run.Function)
	fmt.Fprintf(f.Writer, "diagnostics: %t, assert configuration: %s\n", run.Diagnostics, run.AssertConfig)
	fmt.Fprint(f.Writer, run.IR)
	fmt.Fprintf(f.Writer, "// folded: %d, instructions: %d -> %d, invalidated: %s\n",
		run.Folded, run.Before, run.After, run.Invalidation)
	for _, d := range diags {
		f.Diagnostic(d)
	}
	fmt.Fprintf(f.Writer, "%d error(s), %d warning(s)\n", errs, len(diags)-errs)
	return nil
}

func newRunSummary(r store.Run) RunSummary {
	return RunSummary{
		Seq:          r.Seq,
		ID:           r.ID,
		Function:     r.Function,
		Diagnostics:  r.Diagnostics,
		AssertConfig: r.AssertConfig,
		Folded:       r.Folded,
		Before:       r.Before,
		After:        r.After,
		Invalidation: r.Invalidation,
	}
}
