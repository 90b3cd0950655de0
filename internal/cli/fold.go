package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/roach88/constprop/internal/constprop"
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/engine"
	"github.com/roach88/constprop/internal/store"
)

// FoldOptions holds flags for the fold command.
type FoldOptions struct {
	*RootOptions
	Function     string
	Diagnostics  bool
	AssertConfig string
	Database     string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// FunctionReport is the outcome of the pass over one function.
type FunctionReport struct {
	Name         string             `json:"name"`
	RunID        string             `json:"run_id,omitempty"`
	IR           string             `json:"ir"`
	Folded       int                `json:"folded"`
	Before       int                `json:"before"`
	After        int                `json:"after"`
	Invalidation string             `json:"invalidation"`
	Diagnostics  []DiagnosticReport `json:"diagnostics"`

	diags []diag.Diagnostic
}

// DiagnosticReport is the JSON form of a diagnostic.
type DiagnosticReport struct {
	Seq      int64    `json:"seq"`
	ID       string   `json:"id"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Pos      string   `json:"pos"`
	Args     []string `json:"args,omitempty"`
}

// FoldResult holds the reports of all functions in one invocation.
type FoldResult struct {
	Functions []FunctionReport `json:"functions"`
	Errors    int              `json:"errors"`
	Warnings  int              `json:"warnings"`
}

// NewFoldCommand creates the fold command.
func NewFoldCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FoldOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fold <specs-dir>",
		Short: "Run constant propagation and print the folded IR",
		Long: `Compile the functions declared in a directory of CUE specs, run
constant folding and propagation over each one, and print the result:
the transformed IR, fold statistics, the invalidation summary and any
diagnostics.

With --db every run and its diagnostics are recorded in a SQLite
history database (created if missing); see "constprop history".

Flag defaults come from CONSTPROP_DIAGNOSTICS, CONSTPROP_ASSERT_CONFIG
and CONSTPROP_DB.

Examples:
  constprop fold ./specs
  constprop fold ./specs --function main --diagnostics
  constprop fold ./specs --assert-config release --db ./history.db
  constprop fold ./specs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFold(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Function, "function", "", "only fold the named function")
	cmd.Flags().BoolVar(&opts.Diagnostics, "diagnostics", env.Bool(constprop.EnvDiagnostics), "report errors and warnings")
	cmd.Flags().StringVar(&opts.AssertConfig, "assert-config", env.Str(constprop.EnvAssertConfig, "disabled"),
		"assert configuration (disabled|debug|release|unchecked)")
	cmd.Flags().StringVar(&opts.Database, "db", env.Str(EnvDatabase), "record runs in this SQLite database")

	return cmd
}

func runFold(ctx context.Context, opts *FoldOptions, specsDir string, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, err := foldSpecs(ctx, opts, specsDir, logger)
	if err != nil {
		return reportLoadError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	for i, r := range result.Functions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, r.IR)
		fmt.Fprintf(w, "// folded: %d, instructions: %d -> %d, invalidated: %s\n",
			r.Folded, r.Before, r.After, r.Invalidation)
		for _, d := range r.diags {
			f.Diagnostic(d)
		}
		if r.RunID != "" {
			f.VerboseLog("recorded run %s", r.RunID)
		}
	}
	return nil
}

// passConfig builds the pass configuration from the environment and the
// command's flags.
func passConfig(diagnostics bool, assertConfig string, logger *slog.Logger) (constprop.Config, error) {
	cfg, err := constprop.ConfigFromEnv()
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "invalid environment", err)
	}
	ac, err := engine.ParseAssertConfig(assertConfig)
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "invalid --assert-config", err)
	}
	cfg.Diagnostics = diagnostics
	cfg.AssertConfig = ac
	cfg.Logger = logger
	return cfg, nil
}

// foldSpecs compiles specsDir, runs the pass over every function and
// records the runs when a database is configured.
func foldSpecs(ctx context.Context, opts *FoldOptions, specsDir string, logger *slog.Logger) (*FoldResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := passConfig(opts.Diagnostics, opts.AssertConfig, logger)
	if err != nil {
		return nil, err
	}

	loaded, err := LoadFunctions(specsDir, opts.Function)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load specs", err)
	}
	logger.Info("specs compiled", "dir", specsDir, "files", loaded.FileCount, "functions", len(loaded.Functions))

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}
	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = store.UUIDv7Generator{}
	}

	pass := constprop.New(cfg)
	result := &FoldResult{Functions: make([]FunctionReport, 0, len(loaded.Functions))}
	for _, fn := range loaded.Functions {
		res, err := pass.Run(fn)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "constant propagation produced malformed IR", err)
		}

		report := FunctionReport{
			Name:         fn.Name,
			IR:           fn.String(),
			Folded:       res.Folded,
			Before:       res.Before,
			After:        res.After,
			Invalidation: res.Invalidation.String(),
			Diagnostics:  make([]DiagnosticReport, 0, len(res.Diagnostics)),
			diags:        res.Diagnostics,
		}
		for _, d := range res.Diagnostics {
			report.Diagnostics = append(report.Diagnostics, newDiagnosticReport(d))
		}
		result.Errors += res.Count(diag.Error)
		result.Warnings += res.Count(diag.Warning)

		if st != nil {
			run := store.NewRun(runIDs.Generate(), cfg, res, report.IR)
			if err := st.Record(ctx, run, res.Diagnostics); err != nil {
				return nil, WrapExitError(ExitCommandError, "failed to record run", err)
			}
			report.RunID = run.ID
		}
		result.Functions = append(result.Functions, report)
	}
	return result, nil
}

func newDiagnosticReport(d diag.Diagnostic) DiagnosticReport {
	return DiagnosticReport{
		Seq:      d.Seq,
		ID:       string(d.ID),
		Severity: d.Severity.String(),
		Message:  d.Message,
		Pos:      d.Pos.String(),
		Args:     d.Args,
	}
}

// reportLoadError prints a spec loading failure as a JSON error response
// when JSON output is selected. err is returned unchanged.
func reportLoadError(f *OutputFormatter, err error) error {
	var le *LoadError
	if f.Format != "json" || !errors.As(err, &le) {
		return err
	}
	var details map[string]any
	if le.Pos.IsValid() {
		details = map[string]any{
			"file": le.Pos.Filename(),
			"line": le.Pos.Line(),
			"col":  le.Pos.Column(),
		}
	}
	if writeErr := f.Error(le.Code, le.Message, details); writeErr != nil {
		return writeErr
	}
	return err
}
