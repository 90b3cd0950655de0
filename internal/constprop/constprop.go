// Package constprop is the constant propagation pass: it configures an
// engine.Engine for each function, runs it, and summarizes the outcome.
package constprop

import (
	"fmt"
	"log/slog"

	"github.com/xyproto/env/v2"

	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/engine"
	"github.com/roach88/constprop/internal/ir"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvDiagnostics  = "CONSTPROP_DIAGNOSTICS"
	EnvAssertConfig = "CONSTPROP_ASSERT_CONFIG"
	EnvVerify       = "CONSTPROP_VERIFY"
	EnvMaxSteps     = "CONSTPROP_MAX_STEPS"
)

// Config holds the switches of one pass invocation.
type Config struct {
	// Diagnostics enables user-facing errors and warnings.
	Diagnostics bool

	// AssertConfig is the value assert_configuration calls fold to.
	AssertConfig engine.AssertConfig

	// Verify checks the function's structure after the pass.
	Verify bool

	// MaxSteps bounds the work-list pops per function; zero means no
	// limit.
	MaxSteps int

	Logger *slog.Logger

	// Visit, if set, sees every instruction popped from the work-list.
	Visit engine.VisitFunc
}

// DefaultConfig returns the configuration of a silent optimization run:
// no diagnostics, assert configuration left alone, verification on.
func DefaultConfig() Config {
	return Config{
		AssertConfig: engine.AssertDisabled,
		Verify:       true,
		Logger:       slog.Default(),
	}
}

// ConfigFromEnv returns DefaultConfig overridden by the CONSTPROP_*
// environment variables. The environment is re-read on every call.
func ConfigFromEnv() (Config, error) {
	env.Load()
	cfg := DefaultConfig()
	cfg.Diagnostics = env.Bool(EnvDiagnostics)
	cfg.MaxSteps = env.Int(EnvMaxSteps, 0)
	if env.Has(EnvVerify) {
		cfg.Verify = env.Bool(EnvVerify)
	}
	ac, err := engine.ParseAssertConfig(env.Str(EnvAssertConfig, "disabled"))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", EnvAssertConfig, err)
	}
	cfg.AssertConfig = ac
	return cfg, nil
}

// Result summarizes the pass over one function.
type Result struct {
	Function     string
	Invalidation engine.Invalidation
	Diagnostics  []diag.Diagnostic
	// Folded counts instructions replaced by a computed value.
	Folded int
	// Before and After count instructions around the run.
	Before int
	After  int
}

// Count returns the number of diagnostics of severity s.
func (r Result) Count(s diag.Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic was produced.
func (r Result) HasErrors() bool { return r.Count(diag.Error) > 0 }

// Pass runs constant propagation over any number of functions. Diagnostic
// sequence numbers continue across functions, so diagnostics from one Pass
// are totally ordered.
type Pass struct {
	cfg   Config
	clock *diag.Clock
	opts  []engine.EngineOption
}

// New returns a Pass. Extra engine options are applied after those derived
// from cfg, so they can replace collaborators.
func New(cfg Config, opts ...engine.EngineOption) *Pass {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pass{cfg: cfg, clock: diag.NewClock(), opts: opts}
}

// Config returns the pass configuration.
func (p *Pass) Config() Config { return p.cfg }

// Run folds fn in place. The error is non-nil only when verification is
// on and the function is malformed afterwards. Internal invariant
// breaches panic.
func (p *Pass) Run(fn *ir.Function) (Result, error) {
	logger := p.cfg.Logger.With("function", fn.Name)
	res := Result{Function: fn.Name, Before: fn.NumInstructions()}

	logger.Info("constant propagation starting",
		"instructions", res.Before,
		"diagnostics", p.cfg.Diagnostics,
		"assert_config", p.cfg.AssertConfig.String())

	diags := diag.NewEngine(diag.WithClock(p.clock), diag.WithLogger(logger))
	opts := []engine.EngineOption{
		engine.WithDiagnostics(p.cfg.Diagnostics),
		engine.WithAssertConfiguration(p.cfg.AssertConfig),
		engine.WithLogger(logger),
		engine.WithDiagnosticEngine(diags),
		engine.WithMaxSteps(p.cfg.MaxSteps),
	}
	if p.cfg.Visit != nil {
		opts = append(opts, engine.WithVisit(p.cfg.Visit))
	}
	e := engine.New(fn, append(opts, p.opts...)...)

	res.Invalidation = e.Run()
	res.Folded = e.Folded()
	res.Diagnostics = diags.Diagnostics()
	res.After = fn.NumInstructions()

	logger.Info("constant propagation finished",
		"folded", res.Folded,
		"instructions", res.After,
		"errors", res.Count(diag.Error),
		"warnings", res.Count(diag.Warning),
		"invalidated", res.Invalidation.String())

	if p.cfg.Verify {
		if err := ir.Verify(fn); err != nil {
			return res, fmt.Errorf("verify %s after constant propagation: %w", fn.Name, err)
		}
	}
	return res, nil
}

// RunAll runs the pass over fns in order and stops at the first error.
func (p *Pass) RunAll(fns []*ir.Function) ([]Result, error) {
	results := make([]Result, 0, len(fns))
	for _, fn := range fns {
		res, err := p.Run(fn)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Run is New(cfg).Run(fn).
func Run(fn *ir.Function, cfg Config) (Result, error) {
	return New(cfg).Run(fn)
}
