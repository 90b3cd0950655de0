package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_Text(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		id   ID
		sev  Severity
		text string
	}{
		{"arith", ArithmeticOverflow("127", "+", "1", "Int8"), ArithmeticOperationOverflow, Error,
			"arithmetic operation '127 + 1' (on type 'Int8') results in an overflow"},
		{"arith generic", ArithmeticOverflowGeneric("255", "+", "1", false, 8), ArithmeticOperationOverflowGenericType, Error,
			"arithmetic operation '255 + 1' (on unsigned 8-bit integer type) results in an overflow"},
		{"div overflow", DivOverflow("-128", "%", "-1"), DivisionOverflow, Error,
			"division '-128 % -1' results in an overflow"},
		{"shift", ShiftTooLarge(), ShiftingAllSignificantBits, Error,
			"shift amount is greater than or equal to type size in bits"},
		{"conversion", ConversionOverflow("Int16", "Int8"), IntegerConversionOverflow, Error,
			"integer overflows when converted from 'Int16' to 'Int8'"},
		{"conversion builtin", ConversionOverflowBuiltin(true, "Builtin.Int16", false, "Builtin.Int8"),
			IntegerConversionOverflowBuiltinTypes, Error,
			"integer overflows when converted from signed 'Builtin.Int16' to unsigned 'Builtin.Int8'"},
		{"conversion warn", ConversionOverflowWarn("Builtin.Int16", "Builtin.Int8"), IntegerConversionOverflowWarn, Warning,
			"integer overflows when converted from 'Builtin.Int16' to 'Builtin.Int8'"},
		{"sign", ConversionSignError("UInt8"), IntegerConversionSignError, Error,
			"negative integer cannot be converted to unsigned type 'UInt8'"},
		{"negative literal", NegativeLiteralOverflowUnsigned("UInt8", "-1"), NegativeIntegerLiteralOverflowUnsigned, Error,
			"negative integer '-1' overflows when stored into unsigned type 'UInt8'"},
		{"literal", LiteralOverflow("Int8", "300"), IntegerLiteralOverflow, Error,
			"integer literal '300' overflows when stored into 'Int8'"},
		{"literal builtin", LiteralOverflowBuiltin(true, "Builtin.Int8", "300"), IntegerLiteralOverflowBuiltinTypes, Error,
			"integer literal '300' overflows when stored into signed 'Builtin.Int8'"},
		{"fp to int implicit", FloatToInt("1e20", "Int32", true), FloatToIntOverflow, Error,
			"invalid implicit conversion: '1e20' overflows 'Int32'"},
		{"fp to int", FloatToInt("1e20", "Int32", false), FloatToIntOverflow, Error,
			"invalid conversion: '1e20' overflows 'Int32'"},
		{"negative fp", NegativeFloatToUnsigned("-1.5", "Builtin.Int8", true), NegativeFPLiteralOverflowUnsigned, Error,
			"negative literal '-1.5' cannot be converted to unsigned 'Builtin.Int8'"},
		{"trunc overflow", FloatTruncOverflow("-1e39", "Float", true), WarningFloatTruncOverflow, Warning,
			"'-1e39' overflows to -inf during conversion to 'Float'"},
		{"hex inexact", FloatTruncHexInexact("0x1.0000000001p0", "Float", false), WarningFloatTruncHexInexact, Warning,
			"'0x1.0000000001p0' loses precision during conversion to 'Float'"},
		{"negative hex inexact", FloatTruncHexInexact("0x1.0000000001p0", "Float", true), WarningFloatTruncHexInexact, Warning,
			"'-0x1.0000000001p0' loses precision during conversion to 'Float'"},
		{"underflow", FloatTruncUnderflow("1e-50", "Float", false), WarningFloatTruncUnderflow, Warning,
			"'1e-50' underflows and loses precision during conversion to 'Float'"},
		{"negative underflow", FloatTruncUnderflow("-1e-50", "Float", true), WarningFloatTruncUnderflow, Warning,
			"'-1e-50' underflows and loses precision during conversion to 'Float'"},
		{"max builtin", FloatLiteralOverflow("1e5000", false), WarningFloatOverflowsMaxBuiltin, Warning,
			"'1e5000' overflows to inf because its magnitude exceeds the limits of a float literal"},
		{"int to fp", IntToFPInexact("Float", "16777217", "16777216"), WarningIntToFPInexact, Warning,
			"'16777217' is not exactly representable as 'Float'; it becomes '16777216'"},
		{"assumption", NegativeAssumption("-3"), WrongNonNegativeAssumption, Error,
			"assumed non-negative value '-3' is negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, tt.msg.ID)
			assert.Equal(t, tt.sev, tt.msg.Severity)
			assert.Equal(t, tt.text, tt.msg.Text)
		})
	}
}

func TestCatalog_ArgsKeepOperands(t *testing.T) {
	m := ArithmeticOverflow("127", "+", "1", "Int8")
	assert.Equal(t, []string{"127", "+", "1", "'Int8'"}, m.Args)
	assert.Empty(t, DivByZero().Args)
}
