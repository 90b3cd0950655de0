package constprop

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/engine"
	"github.com/roach88/constprop/internal/ir"
)

var i8 = ir.IntType{Width: 8}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func lit(b *ir.Builder, v int64) *ir.Instruction {
	return b.IntegerLiteral(i8, apint.FromInt64(8, v))
}

// divide builds `return a / b`.
func divide(name string, a, b int64) *ir.Function {
	fn := ir.NewFunction(name)
	bld := ir.NewBuilder(fn.NewBlock("entry"))
	bld.Return(bld.Builtin("sdiv_Int8", i8, lit(bld, a), lit(bld, b)))
	return fn
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Diagnostics)
	assert.Equal(t, engine.AssertDisabled, cfg.AssertConfig)
	assert.True(t, cfg.Verify)
	assert.Zero(t, cfg.MaxSteps)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvDiagnostics, "true")
	t.Setenv(EnvAssertConfig, "release")
	t.Setenv(EnvVerify, "false")
	t.Setenv(EnvMaxSteps, "500")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Diagnostics)
	assert.Equal(t, engine.AssertRelease, cfg.AssertConfig)
	assert.False(t, cfg.Verify)
	assert.Equal(t, 500, cfg.MaxSteps)
}

func TestConfigFromEnv_Reread(t *testing.T) {
	t.Setenv(EnvAssertConfig, "debug")
	t.Setenv(EnvMaxSteps, "10")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, engine.AssertDebug, cfg.AssertConfig)
	assert.Equal(t, 10, cfg.MaxSteps)

	t.Setenv(EnvAssertConfig, "unchecked")
	t.Setenv(EnvMaxSteps, "20")
	cfg, err = ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, engine.AssertUnchecked, cfg.AssertConfig)
	assert.Equal(t, 20, cfg.MaxSteps)
}

func TestConfigFromEnv_BadAssertConfig(t *testing.T) {
	t.Setenv(EnvAssertConfig, "sometimes")

	_, err := ConfigFromEnv()
	assert.ErrorContains(t, err, EnvAssertConfig)
}

func TestRun_Folds(t *testing.T) {
	fn := divide("half", 84, 2)

	res, err := Run(fn, quietConfig())
	require.NoError(t, err)

	assert.Equal(t, "half", res.Function)
	assert.Equal(t, 1, res.Folded)
	assert.Equal(t, 4, res.Before)
	assert.Equal(t, 2, res.After)
	assert.True(t, res.Invalidation.Instructions)
	assert.Empty(t, res.Diagnostics)
	assert.False(t, res.HasErrors())

	v, ok := fn.Entry().Terminator().Operand(0).IntLiteral()
	require.True(t, ok)
	assert.Equal(t, "42", v.Text(true))
}

func TestRun_Diagnostics(t *testing.T) {
	cfg := quietConfig()
	cfg.Diagnostics = true

	res, err := Run(divide("bad", 1, 0), cfg)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.DivisionByZero, res.Diagnostics[0].ID)
	assert.True(t, res.HasErrors())
	assert.Equal(t, 1, res.Count(diag.Error))
	assert.Equal(t, 0, res.Count(diag.Warning))
	assert.Equal(t, res.Before, res.After)
}

func TestPass_SequenceContinuesAcrossFunctions(t *testing.T) {
	cfg := quietConfig()
	cfg.Diagnostics = true
	p := New(cfg)

	results, err := p.RunAll([]*ir.Function{divide("a", 1, 0), divide("b", 6, 3), divide("c", 2, 0)})
	require.NoError(t, err)
	require.Len(t, results, 3)

	first, last := results[0].Diagnostics[0], results[2].Diagnostics[0]
	assert.Less(t, first.Seq, last.Seq)
	assert.Empty(t, results[1].Diagnostics)
}

func TestPass_Visit(t *testing.T) {
	cfg := quietConfig()
	var visited int
	cfg.Visit = func(*ir.Instruction) { visited++ }

	_, err := New(cfg).Run(divide("v", 9, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, visited, "one divisor literal and the folded quotient")
}

func TestPass_EngineOptionsOverride(t *testing.T) {
	var swept bool
	p := New(quietConfig(), engine.WithDeadCodeSweeper(func(roots []*ir.Instruction, force bool) []ir.ID {
		swept = true
		return nil
	}))

	fn := divide("keep", 8, 2)
	res, err := p.Run(fn)
	require.NoError(t, err)

	assert.True(t, swept)
	assert.Greater(t, res.After, res.Before, "nothing erased without a sweeper")
	v, ok := fn.Entry().Terminator().Operand(0).IntLiteral()
	require.True(t, ok)
	assert.Equal(t, "4", v.Text(true))
}
