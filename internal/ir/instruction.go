package ir

import (
	"fmt"
	"slices"

	"github.com/roach88/constprop/internal/apfloat"
	"github.com/roach88/constprop/internal/apint"
)

// ID identifies a value within its Function. IDs are never reused, so an ID
// held across mutations either resolves to the same instruction or to
// nothing once it has been erased.
type ID int

// Kind is the opcode of an instruction.
type Kind uint8

const (
	KindInvalid Kind = iota
	Argument
	IntegerLiteral
	FloatLiteral
	StringLiteral
	Builtin
	Tuple
	TupleExtract
	Struct
	StructExtract
	IndexAddr
	IndexRawPointer
	Apply
	CondFail
	AllocStack
	CopyAddr
	UnconditionalCheckedCast
	UnconditionalCheckedCastAddr
	CheckedCastBranch
	CheckedCastAddrBranch
	Return
	Branch
	CondBranch
	Unreachable
)

var kindMnemonics = map[Kind]string{
	Argument:                     "argument",
	IntegerLiteral:               "integer_literal",
	FloatLiteral:                 "float_literal",
	StringLiteral:                "string_literal",
	Builtin:                      "builtin",
	Tuple:                        "tuple",
	TupleExtract:                 "tuple_extract",
	Struct:                       "struct",
	StructExtract:                "struct_extract",
	IndexAddr:                    "index_addr",
	IndexRawPointer:              "index_raw_pointer",
	Apply:                        "apply",
	CondFail:                     "cond_fail",
	AllocStack:                   "alloc_stack",
	CopyAddr:                     "copy_addr",
	UnconditionalCheckedCast:     "unconditional_checked_cast",
	UnconditionalCheckedCastAddr: "unconditional_checked_cast_addr",
	CheckedCastBranch:            "checked_cast_br",
	CheckedCastAddrBranch:        "checked_cast_addr_br",
	Return:                       "return",
	Branch:                       "br",
	CondBranch:                   "cond_br",
	Unreachable:                  "unreachable",
}

func (k Kind) String() string {
	if s, ok := kindMnemonics[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a mnemonic back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindMnemonics {
		if name == s {
			return k, true
		}
	}
	return KindInvalid, false
}

// IsTerminator reports whether instructions of kind k end a block.
func (k Kind) IsTerminator() bool {
	switch k {
	case Return, Branch, CondBranch, Unreachable, CheckedCastBranch, CheckedCastAddrBranch:
		return true
	}
	return false
}

// IsCheckedCast reports whether k is one of the four checked cast kinds.
func (k Kind) IsCheckedCast() bool {
	switch k {
	case CheckedCastBranch, CheckedCastAddrBranch,
		UnconditionalCheckedCast, UnconditionalCheckedCastAddr:
		return true
	}
	return false
}

// Use is one operand slot of User that refers to a value.
type Use struct {
	User  ID
	Index int
}

// Instruction is a node of a Function's instruction stream. Block
// arguments are Instructions of kind Argument.
//
// Operands and users are held as IDs into the owning Function.
type Instruction struct {
	fn     *Function
	block  *Block
	id     ID
	kind   Kind
	typ    Type
	ops    []ID
	uses   []Use
	erased bool

	Loc Location

	Int       apint.Int     // IntegerLiteral
	Float     apfloat.Float // FloatLiteral
	Str       string        // StringLiteral
	Builtin   BuiltinInfo   // Builtin
	Field     int           // TupleExtract, StructExtract
	Callee    string        // Apply
	Semantics []string      // Apply: semantics attributes of the callee
	CastType  Type          // checked casts: the target type
	Targets   []*Block      // terminators
	Message   string        // CondFail
}

func (i *Instruction) ID() ID              { return i.id }
func (i *Instruction) Kind() Kind          { return i.kind }
func (i *Instruction) Type() Type          { return i.typ }
func (i *Instruction) Block() *Block       { return i.block }
func (i *Instruction) Function() *Function { return i.fn }
func (i *Instruction) IsErased() bool      { return i.erased }

// HasResult reports whether the instruction produces a value.
func (i *Instruction) HasResult() bool { return i.typ != nil }

// NumOperands returns the number of operand slots.
func (i *Instruction) NumOperands() int { return len(i.ops) }

// Operand returns the value in operand slot n.
func (i *Instruction) Operand(n int) *Instruction {
	return i.fn.values[i.ops[n]]
}

// Operands returns the operand values in order.
func (i *Instruction) Operands() []*Instruction {
	out := make([]*Instruction, len(i.ops))
	for n, id := range i.ops {
		out[n] = i.fn.values[id]
	}
	return out
}

// Uses returns a snapshot of the uses of i's result.
func (i *Instruction) Uses() []Use { return slices.Clone(i.uses) }

// Users returns a snapshot of the instructions using i, one entry per use.
func (i *Instruction) Users() []*Instruction {
	out := make([]*Instruction, len(i.uses))
	for n, u := range i.uses {
		out[n] = i.fn.values[u.User]
	}
	return out
}

// HasUses reports whether anything uses i's result.
func (i *Instruction) HasUses() bool { return len(i.uses) > 0 }

// NumUses returns the number of uses of i's result.
func (i *Instruction) NumUses() int { return len(i.uses) }

// IsLiteral reports whether i is an integer or float literal.
func (i *Instruction) IsLiteral() bool {
	return i.kind == IntegerLiteral || i.kind == FloatLiteral
}

// IsTerminator reports whether i ends its block.
func (i *Instruction) IsTerminator() bool { return i.kind.IsTerminator() }

// IsBuiltin reports whether i is a non-intrinsic call of builtin k.
func (i *Instruction) IsBuiltin(k BuiltinKind) bool {
	return i.kind == Builtin && !i.Builtin.Intrinsic && i.Builtin.Kind == k
}

// HasSemantics reports whether i is an apply of a function carrying the
// semantics attribute attr.
func (i *Instruction) HasSemantics(attr string) bool {
	return i.kind == Apply && slices.Contains(i.Semantics, attr)
}

// IntLiteral returns the value of an integer literal operand, if it is one.
func (i *Instruction) IntLiteral() (apint.Int, bool) {
	if i == nil || i.kind != IntegerLiteral {
		return apint.Int{}, false
	}
	return i.Int, true
}

func (i *Instruction) addUse(u Use) { i.uses = append(i.uses, u) }

func (i *Instruction) removeUse(u Use) {
	if n := slices.Index(i.uses, u); n >= 0 {
		i.uses = slices.Delete(i.uses, n, n+1)
	}
}

// SetOperand points operand slot n at v.
func (i *Instruction) SetOperand(n int, v *Instruction) {
	i.fn.checkOwned("set operand", v)
	old := i.fn.values[i.ops[n]]
	u := Use{User: i.id, Index: n}
	if old != nil {
		old.removeUse(u)
	}
	i.ops[n] = v.id
	v.addUse(u)
}

// ReplaceAllUsesWith rewrites every use of i to use v instead.
func (i *Instruction) ReplaceAllUsesWith(v *Instruction) {
	if i == v {
		panic(&InvariantError{Op: "replace all uses", Inst: i.id, Detail: "value replaced with itself"})
	}
	for _, u := range i.Uses() {
		i.fn.values[u.User].SetOperand(u.Index, v)
	}
}

// DropAllReferences detaches i from its operands. The operand slots are
// cleared; i must not be used as a user afterwards except to be erased.
func (i *Instruction) DropAllReferences() {
	for n, id := range i.ops {
		if op := i.fn.values[id]; op != nil {
			op.removeUse(Use{User: i.id, Index: n})
		}
	}
	i.ops = nil
}

// Erase removes i from its block and function. It panics with an
// *InvariantError if i still has uses.
func (i *Instruction) Erase() {
	if i.erased {
		panic(&InvariantError{Op: "erase", Inst: i.id, Detail: "already erased"})
	}
	if len(i.uses) > 0 {
		panic(&InvariantError{Op: "erase", Inst: i.id, Detail: fmt.Sprintf("%d uses remain", len(i.uses))})
	}
	i.DropAllReferences()
	if i.block != nil {
		if i.kind == Argument {
			i.block.args = deleteID(i.block.args, i.id)
		} else {
			i.block.insts = deleteID(i.block.insts, i.id)
		}
	}
	i.fn.values[i.id] = nil
	i.erased = true
	i.block = nil
}

func deleteID(ids []ID, id ID) []ID {
	if n := slices.Index(ids, id); n >= 0 {
		return slices.Delete(ids, n, n+1)
	}
	return ids
}

// MayHaveSideEffects reports whether removing i could change observable
// behaviour even when its result is unused.
func (i *Instruction) MayHaveSideEffects() bool {
	switch i.kind {
	case Argument, IntegerLiteral, FloatLiteral, StringLiteral,
		Tuple, TupleExtract, Struct, StructExtract,
		IndexAddr, IndexRawPointer, AllocStack:
		return false
	case Builtin:
		if i.Builtin.Kind == BuiltinUnknown || i.Builtin.Kind == CondUnreachable {
			return true
		}
		return false
	case Apply:
		return !i.HasSemantics("readnone")
	}
	return true
}

// IsTriviallyDead reports whether i can be deleted without changing the
// program: it is unused and side-effect free, or it is a cond_fail on a
// literal false.
func (i *Instruction) IsTriviallyDead() bool {
	if len(i.uses) > 0 || i.IsTerminator() {
		return false
	}
	if i.kind == CondFail {
		if lit, ok := i.Operand(0).IntLiteral(); ok && lit.IsZero() {
			return true
		}
		return false
	}
	return !i.MayHaveSideEffects()
}

// TupleElementType returns element n of a tuple-typed value.
func TupleElementType(t Type, n int) Type {
	tt, ok := t.(TupleType)
	if !ok || n < 0 || n >= len(tt.Elems) {
		panic(&InvariantError{Op: "tuple element", Detail: fmt.Sprintf("%s has no element %d", t, n)})
	}
	return tt.Elems[n]
}
