package ir

import "fmt"

// Pos is a position in a source file. Line and Col are 1-based; the zero
// Pos is invalid.
type Pos struct {
	File string
	Line int
	Col  int
}

// IsValid reports whether p points into a file.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Range is a half-open source span.
type Range struct {
	Start Pos
	End   Pos
}

// IsValid reports whether the range has a valid start.
func (r Range) IsValid() bool { return r.Start.IsValid() }

// ExprKind classifies the source expression an instruction was lowered from.
type ExprKind uint8

const (
	ExprOther ExprKind = iota
	// ExprCall is a call of a function or operator.
	ExprCall
	// ExprConstructorCall is a call of a type's initializer, e.g. Float(x).
	ExprConstructorCall
	ExprIntegerLiteral
	ExprFloatLiteral
)

var exprKindNames = map[ExprKind]string{
	ExprOther:           "other",
	ExprCall:            "call",
	ExprConstructorCall: "constructor",
	ExprIntegerLiteral:  "integer_literal",
	ExprFloatLiteral:    "float_literal",
}

func (k ExprKind) String() string { return exprKindNames[k] }

// ParseExprKind maps the names produced by String back to kinds.
func ParseExprKind(s string) (ExprKind, bool) {
	for k, name := range exprKindNames {
		if name == s {
			return k, true
		}
	}
	return ExprOther, false
}

// SourceExpr is the read-only slice of the front end's typed syntax tree
// that diagnostics consult: the user-facing type of an expression, whether
// the compiler synthesised it, its arguments and literal spelling.
type SourceExpr struct {
	Kind     ExprKind
	Type     string // user-facing type name, e.g. "Int8"
	Implicit bool
	InOut    bool // passed as &x
	Args     []*SourceExpr
	Digits   string // literal spelling without its sign
	Negative bool
	Range    Range
}

// IsApply reports whether e is a call of any kind.
func (e *SourceExpr) IsApply() bool {
	return e != nil && (e.Kind == ExprCall || e.Kind == ExprConstructorCall)
}

// Location ties an instruction to the source construct it came from.
type Location struct {
	Pos  Pos
	Expr *SourceExpr
}

// Apply returns the call expression at this location, or nil.
func (l Location) Apply() *SourceExpr {
	if l.Expr.IsApply() {
		return l.Expr
	}
	return nil
}

// ConstructorCall returns the initializer call at this location, or nil.
func (l Location) ConstructorCall() *SourceExpr {
	if l.Expr != nil && l.Expr.Kind == ExprConstructorCall {
		return l.Expr
	}
	return nil
}
