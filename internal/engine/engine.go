package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/fold"
	"github.com/roach88/constprop/internal/ir"
	"github.com/roach88/constprop/internal/local"
)

// CastOptimizer simplifies one checked cast. It returns the instruction
// that took the cast's place, or nil when the cast was left alone.
type CastOptimizer interface {
	Optimize(inst *ir.Instruction) *ir.Instruction
}

// CastOptimizerFactory builds a CastOptimizer that performs every use
// replacement and erasure through the given actions, so the engine can
// keep its work-list and invalidation summary current.
type CastOptimizerFactory func(replace local.ReplaceFunc, erase local.EraseFunc) CastOptimizer

// StringConcatenator folds a string concatenation call, returning the new
// constant built before it, or nil. It must not touch the call's uses.
type StringConcatenator func(apply *ir.Instruction) *ir.Instruction

// DeadCodeSweeper erases roots that are dead (or all roots when force is
// set) together with operands that become dead, and returns what it
// erased.
type DeadCodeSweeper func(roots []*ir.Instruction, force bool) []ir.ID

// VisitFunc is called for every instruction popped from the work-list.
type VisitFunc func(inst *ir.Instruction)

// Engine runs constant propagation over one function to a fixpoint.
//
// The function is mutated in place. An Engine is single-use: seed it with
// InitializeWorklist, drain it with ProcessWorkList (or call Run for
// both), then read Folded and Diagnostics.
//
// INVARIANTS:
//   - Every instruction on the work-list is live; erasure removes it.
//   - A user that reported a diagnostic is never folded again in the run.
//   - Only instructions without remaining uses are erased.
type Engine struct {
	fn           *ir.Function
	diagnostics  bool
	assertConfig AssertConfig
	logger       *slog.Logger
	visit        VisitFunc

	diags            *diag.Engine
	folder           *fold.Folder
	newCastOptimizer CastOptimizerFactory
	concat           StringConcatenator
	sweep            DeadCodeSweeper

	worklist *worklist
	quota    stepQuota
	errorSet map[ir.ID]struct{}
	inv      Invalidation
	folded   int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDiagnostics turns user-facing diagnostics on or off. Off by default.
func WithDiagnostics(enabled bool) EngineOption {
	return func(e *Engine) {
		e.diagnostics = enabled
	}
}

// WithAssertConfiguration sets the value assert_configuration calls are
// replaced with. Default: AssertDisabled.
func WithAssertConfiguration(c AssertConfig) EngineOption {
	return func(e *Engine) {
		e.assertConfig = c
	}
}

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithVisit installs a callback invoked for each popped instruction.
func WithVisit(fn VisitFunc) EngineOption {
	return func(e *Engine) {
		e.visit = fn
	}
}

// WithDiagnosticEngine makes the engine report into d instead of a
// private diagnostic engine.
func WithDiagnosticEngine(d *diag.Engine) EngineOption {
	return func(e *Engine) {
		e.diags = d
	}
}

// WithMaxSteps bounds the number of instructions popped from the
// work-list; a run that exceeds it panics with ErrCodeStepsExceeded.
// Zero, the default, means no limit.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		e.quota.max = n
	}
}

// WithCastOptimizer replaces the checked-cast simplifier.
func WithCastOptimizer(f CastOptimizerFactory) EngineOption {
	return func(e *Engine) {
		e.newCastOptimizer = f
	}
}

// WithStringConcatenator replaces the string concatenation folder.
func WithStringConcatenator(c StringConcatenator) EngineOption {
	return func(e *Engine) {
		e.concat = c
	}
}

// WithDeadCodeSweeper replaces the dead-instruction sweep.
func WithDeadCodeSweeper(s DeadCodeSweeper) EngineOption {
	return func(e *Engine) {
		e.sweep = s
	}
}

// New creates an Engine for fn. Collaborators not supplied through
// options default to the implementations in package local.
func New(fn *ir.Function, opts ...EngineOption) *Engine {
	e := &Engine{
		fn:           fn,
		assertConfig: AssertDisabled,
		logger:       slog.Default(),
		concat:       local.ConcatenateStrings,
		sweep:        local.DeleteTriviallyDead,
		newCastOptimizer: func(replace local.ReplaceFunc, erase local.EraseFunc) CastOptimizer {
			return local.NewCastOptimizer(replace, erase)
		},
		worklist: newWorklist(),
		errorSet: make(map[ir.ID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.diags == nil {
		e.diags = diag.NewEngine(diag.WithLogger(e.logger))
	}
	e.folder = fold.New(e.diags, fold.WithLogger(e.logger))
	return e
}

// Function returns the function being processed.
func (e *Engine) Function() *ir.Function { return e.fn }

// Diagnostics returns the engine diagnostics are reported into.
func (e *Engine) Diagnostics() *diag.Engine { return e.diags }

// Folded returns the number of instructions folded so far.
func (e *Engine) Folded() int { return e.folded }

// Pending returns the number of instructions waiting on the work-list.
func (e *Engine) Pending() int { return e.worklist.Len() }

// Run seeds the work-list and processes it to a fixpoint.
func (e *Engine) Run() Invalidation {
	e.InitializeWorklist()
	return e.ProcessWorkList()
}

// InitializeWorklist scans every instruction once and queues the ones that
// can start propagation: used literals, configuration builtins (when
// replacement is enabled), checked casts and string concatenations.
//
// Infinite float literals are diagnosed here, whether or not they are
// folded later: they come from source literals too large for any float
// type.
func (e *Engine) InitializeWorklist() {
	for _, inst := range e.fn.Instructions() {
		if inst.Kind() == ir.FloatLiteral && e.diagnostics && inst.Float.IsInf() {
			e.diags.Diagnose(inst.Loc.Pos, diag.FloatLiteralOverflow(fold.LiteralText(inst), inst.Float.IsNegative()))
		}

		switch {
		case inst.IsLiteral() && inst.HasUses():
		case e.assertConfig.Enabled() && (inst.IsBuiltin(ir.AssertConf) || inst.IsBuiltin(ir.CondUnreachable)):
		case inst.Kind().IsCheckedCast():
		case local.IsStringConcat(inst):
		default:
			continue
		}
		e.worklist.Insert(inst)
	}
	e.logger.Debug("work-list seeded",
		"function", e.fn.Name,
		"pending", e.worklist.Len())
}

// ProcessWorkList pops instructions until the work-list is empty and
// returns what the run invalidated.
func (e *Engine) ProcessWorkList() Invalidation {
	castOpt := e.newCastOptimizer(e.replaceForCast, e.eraseForCast)

	for {
		inst, ok := e.worklist.Pop()
		if !ok {
			break
		}
		if inst.IsErased() {
			panic(internalError(ErrCodeStaleWorklist, inst, "erased instruction popped from work-list"))
		}
		e.quota.check(inst)

		e.logger.Debug("visiting",
			"function", e.fn.Name,
			"inst", int(inst.ID()),
			"kind", inst.Kind().String())
		if e.visit != nil {
			e.visit(inst)
		}

		// Configuration builtins are replaced even when nothing downstream
		// ends up folding.
		if e.assertConfig.Enabled() {
			if inst.IsBuiltin(ir.AssertConf) {
				e.replaceAssertConf(inst)
				continue
			}
			if inst.IsBuiltin(ir.CondUnreachable) {
				e.removeUnreachable(inst)
				continue
			}
		}

		if inst.Kind() == ir.Apply {
			e.foldConcatenation(inst)
			continue
		}

		if inst.Kind().IsCheckedCast() {
			if res := castOpt.Optimize(inst); res != nil && res.Kind().IsCheckedCast() {
				e.worklist.Insert(res)
			}
			continue
		}

		e.foldUsers(inst)
	}
	return e.inv
}

func (e *Engine) replaceAssertConf(inst *ir.Instruction) {
	t, ok := inst.Type().(ir.IntType)
	if !ok {
		panic(internalError(ErrCodeBadAssertConfig, inst, "assert_configuration returns %v", inst.Type()))
	}
	lit := ir.NewBuilderBefore(inst).IntegerLiteral(t, apint.FromInt64(t.Width, int64(e.assertConfig)))
	inst.ReplaceAllUsesWith(lit)
	e.worklist.Insert(lit)
	e.forget(e.sweep([]*ir.Instruction{inst}, false))
	e.inv.Instructions = true
}

func (e *Engine) removeUnreachable(inst *ir.Instruction) {
	if inst.HasUses() {
		panic(internalError(ErrCodeUnreachableUsed, inst, "conditionallyUnreachable has %d uses", inst.NumUses()))
	}
	e.forget(e.sweep([]*ir.Instruction{inst}, true))
	e.inv.Instructions = true
}

// foldConcatenation replaces a concatenation of two string constants with
// the combined constant and deletes operands nothing else uses.
func (e *Engine) foldConcatenation(apply *ir.Instruction) {
	c := e.concat(apply)
	if c == nil {
		return
	}
	apply.ReplaceAllUsesWith(c)

	ops := apply.Operands()
	apply.DropAllReferences()
	for _, op := range ops {
		if op == nil || op.IsErased() || op.HasUses() || op.Kind() == ir.Argument {
			continue
		}
		e.worklist.Remove(op.ID())
		e.forget(e.sweep([]*ir.Instruction{op}, true))
	}

	// Only concatenations can fold further on a new string constant.
	for _, user := range c.Users() {
		if local.IsStringConcat(user) {
			e.worklist.Insert(user)
		}
	}
	e.forget(e.sweep([]*ir.Instruction{apply}, true))

	e.logger.Debug("folded string concatenation",
		"function", e.fn.Name,
		"inst", int(apply.ID()),
		"into", int(c.ID()))
	e.inv.Instructions = true
}

// foldUsers tries to fold every direct user of inst.
func (e *Engine) foldUsers(inst *ir.Instruction) {
	var folded []*ir.Instruction
	inFolded := make(map[ir.ID]bool)
	markFolded := func(i *ir.Instruction) {
		if !inFolded[i.ID()] {
			inFolded[i.ID()] = true
			folded = append(folded, i)
		}
	}

	seen := make(map[ir.ID]bool)
	for _, user := range inst.Users() {
		if seen[user.ID()] || user.IsErased() {
			continue
		}
		seen[user.ID()] = true

		// A user that already reported is not folded again, so the same
		// problem is never diagnosed twice.
		if _, reported := e.errorSet[user.ID()]; reported {
			continue
		}

		switch user.Kind() {
		case ir.Struct, ir.Tuple:
			// Aggregates fold through their extracts.
			e.worklist.Insert(user)
			continue
		case ir.CondFail:
			// A cond_fail on a literal false is dead; the sweep decides.
			markFolded(user)
		}

		state := fold.StateFor(e.diagnostics)
		c := e.folder.Fold(user, &state)
		if state.Recorded() {
			e.errorSet[user.ID()] = struct{}{}
		}
		if c == nil {
			continue
		}

		markFolded(user)
		e.folded++
		e.inv.Instructions = true
		e.logger.Debug("folded",
			"function", e.fn.Name,
			"inst", int(user.ID()),
			"into", int(c.ID()))

		// Resolve extracts from a folded tuple directly to the element.
		if c.Kind() == ir.Tuple {
			for _, tu := range user.Users() {
				if tu.Kind() != ir.TupleExtract || tu.IsErased() || tu.NumOperands() == 0 {
					continue
				}
				v := c.Operand(tu.Field)
				tu.ReplaceAllUsesWith(v)
				tu.DropAllReferences()
				markFolded(tu)
				e.enqueue(v)
			}
			if !user.HasUses() {
				markFolded(c)
			}
		}

		user.ReplaceAllUsesWith(c)
		e.enqueue(c)
	}

	if len(folded) > 0 {
		e.inv.Instructions = true
	}
	e.forget(e.sweep(folded, false))
}

// enqueue queues a value produced by a fold. Block arguments have no users
// to fold through the work-list.
func (e *Engine) enqueue(v *ir.Instruction) {
	if v == nil || v.IsErased() || !v.HasResult() || v.Kind() == ir.Argument {
		return
	}
	e.worklist.Insert(v)
}

// forget drops erased instructions from the work-list.
func (e *Engine) forget(erased []ir.ID) {
	for _, id := range erased {
		e.worklist.Remove(id)
	}
}

func (e *Engine) replaceForCast(inst, v *ir.Instruction) {
	e.inv.Instructions = true
	inst.ReplaceAllUsesWith(v)
}

func (e *Engine) eraseForCast(inst *ir.Instruction) {
	if inst.IsTerminator() {
		e.inv.Branches = true
	}
	e.inv.Instructions = true
	e.worklist.Remove(inst.ID())
	inst.Erase()
}

// String describes the engine state for debugging.
func (e *Engine) String() string {
	return fmt.Sprintf("engine(%s: pending=%d folded=%d diagnostics=%d)",
		e.fn.Name, e.worklist.Len(), e.folded, e.diags.Len())
}
