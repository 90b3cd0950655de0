package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// ID names a diagnostic kind. IDs are stable: they are stored in run
// history and matched by conformance scenarios.
type ID string

const (
	ArithmeticOperationOverflow            ID = "arithmetic_operation_overflow"
	ArithmeticOperationOverflowGenericType ID = "arithmetic_operation_overflow_generic_type"
	DivisionOverflow                       ID = "division_overflow"
	DivisionByZero                         ID = "division_by_zero"
	ShiftingAllSignificantBits             ID = "shifting_all_significant_bits"

	IntegerConversionOverflow              ID = "integer_conversion_overflow"
	IntegerConversionOverflowBuiltinTypes  ID = "integer_conversion_overflow_builtin_types"
	IntegerConversionOverflowWarn          ID = "integer_conversion_overflow_warn"
	IntegerConversionSignError             ID = "integer_conversion_sign_error"
	NegativeIntegerLiteralOverflowUnsigned ID = "negative_integer_literal_overflow_unsigned"
	IntegerLiteralOverflow                 ID = "integer_literal_overflow"
	IntegerLiteralOverflowBuiltinTypes     ID = "integer_literal_overflow_builtin_types"
	IntegerLiteralOverflowWarn             ID = "integer_literal_overflow_warn"

	FloatToIntOverflow                ID = "float_to_int_overflow"
	NegativeFPLiteralOverflowUnsigned ID = "negative_fp_literal_overflow_unsigned"
	WarningFloatTruncOverflow         ID = "warning_float_trunc_overflow"
	WarningFloatTruncUnderflow        ID = "warning_float_trunc_underflow"
	WarningFloatTruncHexInexact       ID = "warning_float_trunc_hex_inexact"
	WarningFloatOverflowsMaxBuiltin   ID = "warning_float_overflows_maxbuiltin"
	WarningIntToFPInexact             ID = "warning_int_to_fp_inexact"

	WrongNonNegativeAssumption ID = "wrong_non_negative_assumption"
)

// Message is a fully rendered diagnostic body, not yet attached to a
// position. Args keeps the interpolated operands in order so that
// consumers can match on them without parsing Text.
type Message struct {
	ID       ID
	Severity Severity
	Args     []string
	Text     string
}

func newMessage(id ID, sev Severity, format string, args ...string) Message {
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return Message{ID: id, Severity: sev, Args: args, Text: fmt.Sprintf(format, vals...)}
}

func quote(s string) string { return "'" + s + "'" }

// signedText puts the sign of a negative value on literal text that was
// spelled without it.
func signedText(text string, negative bool) string {
	if negative && !strings.HasPrefix(text, "-") {
		return "-" + text
	}
	return text
}

func signedness(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}

func minus(neg bool) string {
	if neg {
		return "-"
	}
	return ""
}

// ArithmeticOverflow reports a checked operation that always overflows,
// naming the user-facing type.
func ArithmeticOverflow(lhs, op, rhs, typ string) Message {
	return newMessage(ArithmeticOperationOverflow, Error,
		"arithmetic operation '%s %s %s' (on type %s) results in an overflow",
		lhs, op, rhs, quote(typ))
}

// ArithmeticOverflowGeneric is ArithmeticOverflow when only the builtin
// integer type is known.
func ArithmeticOverflowGeneric(lhs, op, rhs string, signed bool, width uint) Message {
	return newMessage(ArithmeticOperationOverflowGenericType, Error,
		"arithmetic operation '%s %s %s' (on %s %s-bit integer type) results in an overflow",
		lhs, op, rhs, signedness(signed), strconv.FormatUint(uint64(width), 10))
}

func DivOverflow(lhs, op, rhs string) Message {
	return newMessage(DivisionOverflow, Error, "division '%s %s %s' results in an overflow", lhs, op, rhs)
}

func DivByZero() Message {
	return newMessage(DivisionByZero, Error, "division by zero")
}

func ShiftTooLarge() Message {
	return newMessage(ShiftingAllSignificantBits, Error,
		"shift amount is greater than or equal to type size in bits")
}

func ConversionOverflow(src, dst string) Message {
	return newMessage(IntegerConversionOverflow, Error,
		"integer overflows when converted from %s to %s", quote(src), quote(dst))
}

func ConversionOverflowBuiltin(srcSigned bool, src string, dstSigned bool, dst string) Message {
	return newMessage(IntegerConversionOverflowBuiltinTypes, Error,
		"integer overflows when converted from %s %s to %s %s",
		signedness(srcSigned), quote(src), signedness(dstSigned), quote(dst))
}

// ConversionOverflowWarn is emitted instead of an error when the
// conversion has no source location to point at.
func ConversionOverflowWarn(src, dst string) Message {
	return newMessage(IntegerConversionOverflowWarn, Warning,
		"integer overflows when converted from %s to %s", quote(src), quote(dst))
}

func ConversionSignError(dst string) Message {
	return newMessage(IntegerConversionSignError, Error,
		"negative integer cannot be converted to unsigned type %s", quote(dst))
}

func NegativeLiteralOverflowUnsigned(dst, literal string) Message {
	return newMessage(NegativeIntegerLiteralOverflowUnsigned, Error,
		"negative integer '%s' overflows when stored into unsigned type %s", literal, quote(dst))
}

func LiteralOverflow(dst, literal string) Message {
	return newMessage(IntegerLiteralOverflow, Error,
		"integer literal '%s' overflows when stored into %s", literal, quote(dst))
}

func LiteralOverflowBuiltin(dstSigned bool, dst, literal string) Message {
	return newMessage(IntegerLiteralOverflowBuiltinTypes, Error,
		"integer literal '%s' overflows when stored into %s %s", literal, signedness(dstSigned), quote(dst))
}

func LiteralOverflowWarn(dst string) Message {
	return newMessage(IntegerLiteralOverflowWarn, Warning,
		"integer literal overflows when stored into %s", quote(dst))
}

func FloatToInt(text, typ string, implicit bool) Message {
	kind := "invalid conversion"
	if implicit {
		kind = "invalid implicit conversion"
	}
	return newMessage(FloatToIntOverflow, Error, "%s: '%s' overflows %s", kind, text, quote(typ))
}

func NegativeFloatToUnsigned(text, typ string, unsignedPrefix bool) Message {
	prefix := ""
	if unsignedPrefix {
		prefix = "unsigned "
	}
	return newMessage(NegativeFPLiteralOverflowUnsigned, Error,
		"negative literal '%s' cannot be converted to %s%s", text, prefix, quote(typ))
}

func FloatTruncOverflow(text, typ string, negative bool) Message {
	return newMessage(WarningFloatTruncOverflow, Warning,
		"'%s' overflows to %sinf during conversion to %s", text, minus(negative), quote(typ))
}

func FloatTruncUnderflow(text, typ string, negative bool) Message {
	return newMessage(WarningFloatTruncUnderflow, Warning,
		"'%s' underflows and loses precision during conversion to %s", signedText(text, negative), quote(typ))
}

func FloatTruncHexInexact(text, typ string, negative bool) Message {
	return newMessage(WarningFloatTruncHexInexact, Warning,
		"'%s' loses precision during conversion to %s", signedText(text, negative), quote(typ))
}

// FloatLiteralOverflow reports a float literal too large for the widest
// builtin float format.
func FloatLiteralOverflow(text string, negative bool) Message {
	return newMessage(WarningFloatOverflowsMaxBuiltin, Warning,
		"'%s' overflows to %sinf because its magnitude exceeds the limits of a float literal",
		text, minus(negative))
}

func IntToFPInexact(typ, src, dst string) Message {
	return newMessage(WarningIntToFPInexact, Warning,
		"'%s' is not exactly representable as %s; it becomes '%s'", src, quote(typ), dst)
}

func NegativeAssumption(value string) Message {
	return newMessage(WrongNonNegativeAssumption, Error,
		"assumed non-negative value '%s' is negative", value)
}
