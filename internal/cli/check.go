package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/roach88/constprop/internal/constprop"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Function     string
	AssertConfig string
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Diagnostics []DiagnosticReport `json:"diagnostics"`
	Errors      int                `json:"errors"`
	Warnings    int                `json:"warnings"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <specs-dir>",
		Short: "Report constant-folding diagnostics",
		Long: `Run constant propagation with diagnostics enabled and print only the
diagnostics, in emission order.

Exit codes:
  0 - No errors (warnings allowed)
  1 - At least one error was diagnosed
  2 - Command error (invalid paths, bad specs, etc.)

Examples:
  constprop check ./specs
  constprop check ./specs --function main --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Function, "function", "", "only check the named function")
	cmd.Flags().StringVar(&opts.AssertConfig, "assert-config", env.Str(constprop.EnvAssertConfig, "disabled"),
		"assert configuration (disabled|debug|release|unchecked)")

	return cmd
}

func runCheck(opts *CheckOptions, specsDir string, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	fold := &FoldOptions{
		RootOptions:  opts.RootOptions,
		Function:     opts.Function,
		Diagnostics:  true,
		AssertConfig: opts.AssertConfig,
	}
	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	result, err := foldSpecs(cmd.Context(), fold, specsDir, logger)
	if err != nil {
		return reportLoadError(f, err)
	}

	check := CheckResult{
		Diagnostics: []DiagnosticReport{},
		Errors:      result.Errors,
		Warnings:    result.Warnings,
	}
	for _, r := range result.Functions {
		check.Diagnostics = append(check.Diagnostics, r.Diagnostics...)
	}

	if opts.Format == "json" {
		if err := f.Success(check); err != nil {
			return err
		}
	} else {
		for _, r := range result.Functions {
			for _, d := range r.diags {
				f.Diagnostic(d)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d error(s), %d warning(s) in %d function(s)\n",
			check.Errors, check.Warnings, len(result.Functions))
	}

	if check.Errors > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d error(s) diagnosed", check.Errors))
	}
	return nil
}
