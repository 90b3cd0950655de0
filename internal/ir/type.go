package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/constprop/internal/apfloat"
)

// Type is a sealed interface over the IR's value types.
// Only IntType, FloatType, TupleType, *StructType, NominalType,
// AddressType and RawPointerType implement it.
type Type interface {
	fmt.Stringer
	irType() // Sealed
}

// IntType is a builtin integer of a fixed bit width. Integer literals
// coming straight from source use width 2048.
type IntType struct {
	Width uint
}

func (IntType) irType() {}

func (t IntType) String() string { return fmt.Sprintf("Builtin.Int%d", t.Width) }

// LiteralWidth is the bit width front ends give to unconverted integer
// literals.
const LiteralWidth = 2048

// FloatType is a builtin IEEE binary floating-point type.
type FloatType struct {
	Sem apfloat.Semantics
}

func (FloatType) irType() {}

func (t FloatType) String() string { return fmt.Sprintf("Builtin.FPIEEE%d", t.Sem.BitWidth()) }

// TupleType is an ordered product of element types. The empty tuple is the
// unit type.
type TupleType struct {
	Elems []Type
}

func (TupleType) irType() {}

func (t TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Field is a named struct member.
type Field struct {
	Name string
	Type Type
}

// StructType is a nominal struct with stored fields, e.g. Int8 wrapping
// a Builtin.Int8 named _value.
type StructType struct {
	Name   string
	Fields []Field
}

func (*StructType) irType() {}

func (t *StructType) String() string { return t.Name }

// FieldIndex returns the index of the named field, or -1.
func (t *StructType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// NominalType is an opaque named type (a class or protocol existential)
// that only participates in casts and calls.
type NominalType struct {
	Name string
}

func (NominalType) irType() {}

func (t NominalType) String() string { return t.Name }

// AddressType is the address of a value of type Elem.
type AddressType struct {
	Elem Type
}

func (AddressType) irType() {}

func (t AddressType) String() string { return "*" + t.Elem.String() }

// RawPointerType is Builtin.RawPointer.
type RawPointerType struct{}

func (RawPointerType) irType() {}

func (RawPointerType) String() string { return "Builtin.RawPointer" }

// Int1 is the boolean type produced by comparisons.
var Int1 = IntType{Width: 1}

// Unit is the empty tuple type.
var Unit = TupleType{}

// SameType reports whether a and b denote the same type. Named types are
// identified by name.
func SameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// TypeError reports a malformed type string.
type TypeError struct {
	Input  string
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type %q: %s", e.Input, e.Reason)
}

// ParseType parses the textual form of a type as printed by String.
// Identifiers are resolved against structs first and otherwise become a
// NominalType.
func ParseType(s string, structs map[string]*StructType) (Type, error) {
	p := &typeParser{src: s, structs: structs}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, &TypeError{Input: s, Reason: fmt.Sprintf("unexpected %q", p.src[p.pos:])}
	}
	return t, nil
}

type typeParser struct {
	src     string
	pos     int
	structs map[string]*StructType
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) fail(reason string) error {
	return &TypeError{Input: p.src, Reason: reason}
}

func (p *typeParser) parse() (Type, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.fail("unexpected end of input")
	}
	switch p.src[p.pos] {
	case '(':
		p.pos++
		var elems []Type
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ')' {
			p.pos++
			return TupleType{}, nil
		}
		for {
			e, err := p.parse()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, p.fail("unterminated tuple")
			}
			if p.src[p.pos] == ')' {
				p.pos++
				return TupleType{Elems: elems}, nil
			}
			if p.src[p.pos] != ',' {
				return nil, p.fail(fmt.Sprintf("expected ',' at offset %d", p.pos))
			}
			p.pos++
		}
	case '*':
		p.pos++
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		return AddressType{Elem: elem}, nil
	}

	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return nil, p.fail(fmt.Sprintf("unexpected %q", p.src[p.pos:]))
	}
	if strings.HasPrefix(name, "Builtin.") {
		return parseBuiltinType(name, p)
	}
	if st, ok := p.structs[name]; ok {
		return st, nil
	}
	return NominalType{Name: name}, nil
}

func parseBuiltinType(name string, p *typeParser) (Type, error) {
	rest := strings.TrimPrefix(name, "Builtin.")
	switch {
	case rest == "RawPointer":
		return RawPointerType{}, nil
	case rest == "Word":
		return IntType{Width: 64}, nil
	case strings.HasPrefix(rest, "Int"):
		w, err := strconv.ParseUint(rest[len("Int"):], 10, 32)
		if err != nil || w == 0 {
			return nil, p.fail("bad integer width")
		}
		return IntType{Width: uint(w)}, nil
	case strings.HasPrefix(rest, "FPIEEE"):
		w, err := strconv.ParseUint(rest[len("FPIEEE"):], 10, 32)
		if err != nil {
			return nil, p.fail("bad float width")
		}
		sem, ok := apfloat.SemanticsForWidth(uint(w))
		if !ok {
			return nil, p.fail(fmt.Sprintf("unsupported float width %d", w))
		}
		return FloatType{Sem: sem}, nil
	}
	return nil, p.fail("unknown builtin type")
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
