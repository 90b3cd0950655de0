package diag

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/ir"
)

func quietEngine() *Engine {
	return NewEngine(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestEngine_RecordsInOrder(t *testing.T) {
	e := quietEngine()
	pos := ir.Pos{File: "a.swift", Line: 3, Col: 9}

	e.Diagnose(pos, DivByZero())
	e.Diagnose(ir.Pos{}, FloatTruncUnderflow("1e-40", "Float", false))

	got := e.Diagnostics()
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, DivisionByZero, got[0].ID)
	assert.Equal(t, Error, got[0].Severity)
	assert.Equal(t, "a.swift:3:9: error: division by zero", got[0].String())
	assert.Equal(t, "<unknown>: warning: '1e-40' underflows and loses precision during conversion to 'Float'", got[1].String())
	assert.Equal(t, 1, e.Count(Error))
	assert.Equal(t, 1, e.Count(Warning))
	assert.True(t, e.HasErrors())
}

func TestEngine_DiagnosticsIsACopy(t *testing.T) {
	e := quietEngine()
	e.Diagnose(ir.Pos{}, DivByZero())

	got := e.Diagnostics()
	got[0].Message = "changed"

	assert.Equal(t, "division by zero", e.Diagnostics()[0].Message)
}

func TestEngine_HighlightDropsInvalidRanges(t *testing.T) {
	e := quietEngine()
	valid := ir.Range{Start: ir.Pos{File: "a", Line: 1, Col: 1}, End: ir.Pos{File: "a", Line: 1, Col: 4}}

	e.Diagnose(valid.Start, ArithmeticOverflow("127", "+", "1", "Int8")).
		Highlight(valid).
		Highlight(ir.Range{})

	assert.Equal(t, []ir.Range{valid}, e.Diagnostics()[0].Ranges)
}

func TestEngine_WithClockContinuesNumbering(t *testing.T) {
	e := NewEngine(WithClock(NewClockAt(41)), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	e.Diagnose(ir.Pos{}, DivByZero())
	assert.Equal(t, int64(42), e.Diagnostics()[0].Seq)
}

func TestEngine_NoErrorsWithOnlyWarnings(t *testing.T) {
	e := quietEngine()
	e.Diagnose(ir.Pos{}, LiteralOverflowWarn("Int8"))
	assert.False(t, e.HasErrors())
	assert.Equal(t, 1, e.Len())
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("warning")
	require.NoError(t, err)
	assert.Equal(t, Warning, s)

	s, err = ParseSeverity(Error.String())
	require.NoError(t, err)
	assert.Equal(t, Error, s)

	_, err = ParseSeverity("note")
	assert.Error(t, err)
}
