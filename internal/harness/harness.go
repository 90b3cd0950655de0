package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/constprop/internal/compiler"
	"github.com/roach88/constprop/internal/constprop"
	"github.com/roach88/constprop/internal/engine"
	"github.com/roach88/constprop/internal/ir"
	"github.com/roach88/constprop/internal/store"
	"github.com/roach88/constprop/internal/testutil"
)

// Harness runs scenarios against the constant propagation pass.
type Harness struct {
	store  *store.Store
	runIDs store.RunIDGenerator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory history store; every function's
// run is recorded there and its diagnostics are read back, so scenarios
// also cover what gets recorded.
//
// Execution flow:
// 1. Compile the scenario's CUE specs into functions
// 2. Run the pass over each function with the scenario's configuration
// 3. Record each run and read its diagnostics back
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	fns, err := compileSpecs(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile specs: %w", err)
	}

	h := &Harness{
		store:  st,
		runIDs: testutil.SequentialRunIDs(scenario.Name, len(fns)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result := NewResult()
	if err := h.execute(context.Background(), scenario.Config, fns, result); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, sc ScenarioConfig, fns []*ir.Function, result *Result) error {
	ac, err := engine.ParseAssertConfig(sc.AssertConfig)
	if err != nil {
		return err
	}
	cfg := constprop.DefaultConfig()
	cfg.Diagnostics = sc.Diagnostics
	cfg.AssertConfig = ac
	cfg.Logger = h.logger

	pass := constprop.New(cfg)
	for _, fn := range fns {
		res, err := pass.Run(fn)
		if err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}

		printed := fn.String()
		run := store.NewRun(h.runIDs.Generate(), cfg, res, printed)
		if err := h.store.Record(ctx, run, res.Diagnostics); err != nil {
			return err
		}
		diags, err := h.store.ReadDiagnostics(ctx, run.ID)
		if err != nil {
			return err
		}

		result.Functions = append(result.Functions, FunctionResult{
			Name:         fn.Name,
			IR:           printed,
			Returns:      returnedLiteral(fn),
			Folded:       res.Folded,
			Before:       res.Before,
			After:        res.After,
			Invalidation: res.Invalidation.String(),
			Ops:          countOps(fn),
			Diagnostics:  diags,
		})
	}
	return nil
}

// compileSpecs unifies the given CUE files and compiles their functions.
func compileSpecs(paths []string) ([]*ir.Function, error) {
	ctx := cuecontext.New()
	var v cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fv := ctx.CompileBytes(data, cue.Filename(path))
		if err := fv.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if i == 0 {
			v = fv
		} else {
			v = v.Unify(fv)
		}
	}
	fns, err := compiler.CompileFunctions(v)
	if err != nil {
		return nil, err
	}
	if len(fns) == 0 {
		return nil, fmt.Errorf("no functions declared in %v", paths)
	}
	return fns, nil
}

func returnedLiteral(fn *ir.Function) string {
	for _, b := range fn.Blocks() {
		ret := b.Terminator()
		if ret == nil || ret.Kind() != ir.Return {
			continue
		}
		v := ret.Operand(0)
		switch v.Kind() {
		case ir.IntegerLiteral:
			return v.Int.Text(v.Int.Width() > 1)
		case ir.FloatLiteral:
			return v.Float.Text()
		}
		return ""
	}
	return ""
}

func countOps(fn *ir.Function) map[string]int {
	ops := make(map[string]int)
	for _, inst := range fn.Instructions() {
		ops[inst.Kind().String()]++
	}
	return ops
}
