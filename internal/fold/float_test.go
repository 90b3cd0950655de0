package fold

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/ir"
)

// spelled attaches the source spelling of a float literal.
func spelled(lit *ir.Instruction, digits string, negative bool) *ir.Instruction {
	lit.Loc.Expr = &ir.SourceExpr{Kind: ir.ExprFloatLiteral, Digits: digits, Negative: negative}
	return lit
}

func implicitInit(typ string) ir.Location {
	return ir.Location{Pos: here, Expr: &ir.SourceExpr{Kind: ir.ExprConstructorCall, Type: typ, Implicit: true}}
}

func requireFloat(t *testing.T, v *ir.Instruction, want string) {
	t.Helper()
	require.NotNil(t, v)
	require.Equal(t, ir.FloatLiteral, v.Kind())
	assert.Equal(t, want, v.Float.Text())
}

func TestFold_FloatBinary(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"fadd", "1.5", "2.25", "3.75"},
		{"fsub", "1.5", "2.25", "-0.75"},
		{"fmul", "1.5", "-2", "-3"},
		{"fdiv", "1", "4", "0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			inst := fx.b.Builtin(tt.name+"_FPIEEE64", f64, fx.float(f64, tt.a), fx.float(f64, tt.b))
			res, _ := fx.fold(inst, NoError)
			requireFloat(t, res, tt.want)
		})
	}
}

func TestFold_FRemIsNotFolded(t *testing.T) {
	fx := newFixture(t)
	inst := fx.b.Builtin("frem_FPIEEE64", f64, fx.float(f64, "7"), fx.float(f64, "2"))
	res, _ := fx.fold(inst, NoError)
	assert.Nil(t, res)
}

func TestFold_FPToInt(t *testing.T) {
	t.Run("truncates", func(t *testing.T) {
		fx := newFixture(t)
		res, _ := fx.fold(fx.b.Builtin("fptosi_FPIEEE64_Int32", i32, fx.float(f64, "-3.9")), NoError)
		requireInt(t, res, -3)
	})

	t.Run("out of range", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "1e10"), "1e10", false)
		inst := fx.b.Builtin("fptosi_FPIEEE64_Int32", i32, lit)
		inst.Loc = ir.Location{Pos: here}

		res, state := fx.fold(inst, NoError)
		assert.Nil(t, res)
		assert.Equal(t, ErrorRecorded, state)
		assert.Equal(t, []string{"invalid conversion: '1e10' overflows 'Builtin.Int32'"}, fx.messages())
	})

	t.Run("out of range through an implicit call", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "300"), "300.0", false)
		inst := fx.b.Builtin("fptoui_FPIEEE64_Int8", i8, lit)
		inst.Loc = implicitInit("UInt8")

		fx.fold(inst, NoError)
		assert.Equal(t, []string{"invalid implicit conversion: '300.0' overflows 'UInt8'"}, fx.messages())
	})

	t.Run("negative to unsigned", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "-1.5"), "1.5", true)
		inst := fx.b.Builtin("fptoui_FPIEEE64_Int8", i8, lit)
		inst.Loc = ir.Location{Pos: here}

		res, _ := fx.fold(inst, NoError)
		assert.Nil(t, res)
		assert.Equal(t, []string{"negative literal '-1.5' cannot be converted to unsigned 'Builtin.Int8'"}, fx.messages())
	})

	t.Run("negative to unsigned user type", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("fptoui_FPIEEE64_Int8", i8, fx.float(f64, "-0.5"))
		inst.Loc = implicitInit("UInt8")

		fx.fold(inst, NoError)
		assert.Equal(t, []string{"negative literal '-0.5' cannot be converted to 'UInt8'"}, fx.messages())
	})

	t.Run("negative zero to unsigned", func(t *testing.T) {
		fx := newFixture(t)
		res, _ := fx.fold(fx.b.Builtin("fptoui_FPIEEE64_Int8", i8, fx.float(f64, "-0")), NoError)
		requireInt(t, res, 0)
	})

	t.Run("disabled", func(t *testing.T) {
		fx := newFixture(t)
		res, _ := fx.fold(fx.b.Builtin("fptosi_FPIEEE64_Int8", i8, fx.float(f64, "nan")), Disabled)
		assert.Nil(t, res)
		assert.Zero(t, fx.diags.Len())
	})
}

func TestFold_FPTrunc(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, fx.float(f64, "0.5"))
		inst.Loc = implicitInit("Float")
		res, state := fx.fold(inst, NoError)
		requireFloat(t, res, "0.5")
		assert.Equal(t, ir.Type(f32), res.Type())
		assert.Equal(t, NoError, state)
	})

	t.Run("overflow warns and folds", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "1e39"), "1e39", false)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, lit)
		inst.Loc = implicitInit("Float")

		res, state := fx.fold(inst, NoError)
		require.NotNil(t, res)
		assert.True(t, res.Float.IsInf())
		assert.Equal(t, ErrorRecorded, state)
		got := fx.diags.Diagnostics()
		require.Len(t, got, 1)
		assert.Equal(t, diag.Warning, got[0].Severity)
		assert.Equal(t, "'1e39' overflows to inf during conversion to 'Float'", got[0].Message)
	})

	t.Run("explicit conversions stay silent", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, fx.float(f64, "-1e39"))
		res, _ := fx.fold(inst, NoError)
		require.NotNil(t, res)
		assert.Equal(t, "-inf", res.Float.Text())
		assert.Zero(t, fx.diags.Len())
	})

	t.Run("implicit Double may be explicit", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, fx.float(f64, "1e39"))
		inst.Loc = implicitInit("Double")
		fx.fold(inst, NoError)
		assert.Zero(t, fx.diags.Len())
	})

	t.Run("hex literal loses precision", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "0x1.000001p0"), "0x1.000001p0", false)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, lit)
		inst.Loc = implicitInit("Float")

		res, _ := fx.fold(inst, NoError)
		assert.NotNil(t, res)
		assert.Equal(t, []string{"'0x1.000001p0' loses precision during conversion to 'Float'"}, fx.messages())
	})

	t.Run("decimal rounding is not reported", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "0.1"), "0.1", false)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, lit)
		inst.Loc = implicitInit("Float")

		res, _ := fx.fold(inst, NoError)
		assert.NotNil(t, res)
		assert.Zero(t, fx.diags.Len())
	})

	t.Run("tiny value underflows", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "1e-50"), "1e-50", false)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, lit)
		inst.Loc = implicitInit("Float")

		fx.fold(inst, NoError)
		got := fx.diags.Diagnostics()
		require.Len(t, got, 1)
		assert.Equal(t, diag.WarningFloatTruncUnderflow, got[0].ID)
		assert.Equal(t, "'1e-50' underflows and loses precision during conversion to 'Float'", got[0].Message)
	})

	t.Run("negative tiny value keeps its sign", func(t *testing.T) {
		fx := newFixture(t)
		lit := spelled(fx.float(f64, "-1e-50"), "1e-50", false)
		inst := fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, lit)
		inst.Loc = implicitInit("Float")

		fx.fold(inst, NoError)
		got := fx.diags.Diagnostics()
		require.Len(t, got, 1)
		assert.Equal(t, "'-1e-50' underflows and loses precision during conversion to 'Float'", got[0].Message)
	})

	t.Run("denormal results are not folded", func(t *testing.T) {
		fx := newFixture(t)
		res, _ := fx.fold(fx.b.Builtin("fptrunc_FPIEEE64_FPIEEE32", f32, fx.float(f64, "0x1p-130")), Disabled)
		assert.Nil(t, res)
	})
}

func TestFold_IntToFPWithOverflow(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("itofp_with_overflow_Int2048_FPIEEE32", f32, fx.lit(i2048, -42))
		inst.Loc = implicitInit("Float")
		res, state := fx.fold(inst, NoError)
		requireFloat(t, res, "-42")
		assert.Equal(t, NoError, state)
	})

	t.Run("inexact warns and folds", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("itofp_with_overflow_Int2048_FPIEEE32", f32, fx.lit(i2048, 16777217))
		inst.Loc = implicitInit("Float")

		res, state := fx.fold(inst, NoError)
		require.NotNil(t, res)
		assert.Equal(t, "16777216", res.Float.IntegerText())
		assert.Equal(t, ErrorRecorded, state)
		assert.Equal(t, []string{"'16777217' is not exactly representable as 'Float'; it becomes '16777216'"}, fx.messages())
	})

	t.Run("inexact in an explicit conversion", func(t *testing.T) {
		fx := newFixture(t)
		inst := fx.b.Builtin("itofp_with_overflow_Int2048_FPIEEE32", f32, fx.lit(i2048, 16777217))
		res, _ := fx.fold(inst, NoError)
		assert.NotNil(t, res)
		assert.Zero(t, fx.diags.Len())
	})

	t.Run("overflow is always reported", func(t *testing.T) {
		fx := newFixture(t)
		big2 := new(big.Int).Lsh(big.NewInt(1), 200)
		inst := fx.b.Builtin("itofp_with_overflow_Int2048_FPIEEE32", f32,
			fx.b.IntegerLiteral(i2048, apint.New(ir.LiteralWidth, big2)))
		inst.Loc = ir.Location{Pos: here}

		res, _ := fx.fold(inst, NoError)
		assert.Nil(t, res)
		assert.Equal(t, []string{
			"integer literal '" + big2.String() + "' overflows when stored into 'Builtin.FPIEEE32'",
		}, fx.messages())
	})
}

func TestFold_PlainIntToFP(t *testing.T) {
	fx := newFixture(t)
	res, _ := fx.fold(fx.b.Builtin("sitofp_Int8_FPIEEE32", f32, fx.lit(i8, -1)), NoError)
	requireFloat(t, res, "-1")

	res, _ = fx.fold(fx.b.Builtin("uitofp_Int8_FPIEEE32", f32, fx.lit(i8, -1)), NoError)
	requireFloat(t, res, "255")
	assert.Zero(t, fx.diags.Len())
}
