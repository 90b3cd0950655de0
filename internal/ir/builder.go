package ir

import (
	"fmt"

	"github.com/roach88/constprop/internal/apfloat"
	"github.com/roach88/constprop/internal/apint"
)

// Builder creates instructions at an insertion point: either at the end of
// a block or immediately before an existing instruction.
type Builder struct {
	block  *Block
	before *Instruction
	// Loc is attached to every instruction the builder creates.
	Loc Location
}

// NewBuilder appends to the end of b.
func NewBuilder(b *Block) *Builder {
	return &Builder{block: b}
}

// NewBuilderBefore inserts before inst and inherits its location.
func NewBuilderBefore(inst *Instruction) *Builder {
	return &Builder{block: inst.block, before: inst, Loc: inst.Loc}
}

// At returns a copy of the builder using loc.
func (b *Builder) At(loc Location) *Builder {
	c := *b
	c.Loc = loc
	return &c
}

func (b *Builder) insert(inst *Instruction) *Instruction {
	inst.Loc = b.Loc
	if b.before != nil {
		b.block.insertAt(b.block.indexOf(b.before), inst)
	} else {
		b.block.insertAt(len(b.block.insts), inst)
	}
	return inst
}

func (b *Builder) create(kind Kind, typ Type, ops ...*Instruction) *Instruction {
	return b.block.fn.newInstruction(kind, typ, ops...)
}

// IntegerLiteral creates an integer literal of type t. The value's width
// must match t.
func (b *Builder) IntegerLiteral(t Type, v apint.Int) *Instruction {
	it, ok := t.(IntType)
	if !ok || it.Width != v.Width() {
		panic(&InvariantError{Op: "integer_literal", Inst: -1, Detail: fmt.Sprintf("value %s does not fit type %s", v, t)})
	}
	inst := b.create(IntegerLiteral, t)
	inst.Int = v
	return b.insert(inst)
}

// FloatLiteral creates a float literal of type t.
func (b *Builder) FloatLiteral(t Type, v apfloat.Float) *Instruction {
	ft, ok := t.(FloatType)
	if !ok || ft.Sem != v.Semantics() {
		panic(&InvariantError{Op: "float_literal", Inst: -1, Detail: fmt.Sprintf("value %s does not fit type %s", v, t)})
	}
	inst := b.create(FloatLiteral, t)
	inst.Float = v
	return b.insert(inst)
}

// StringLiteral creates a string literal of type t.
func (b *Builder) StringLiteral(t Type, s string) *Instruction {
	inst := b.create(StringLiteral, t)
	inst.Str = s
	return b.insert(inst)
}

// Builtin creates a call of the named builtin returning t.
func (b *Builder) Builtin(name string, t Type, args ...*Instruction) *Instruction {
	inst := b.create(Builtin, t, args...)
	inst.Builtin = ParseBuiltinName(name)
	return b.insert(inst)
}

// Tuple aggregates elems; the type is derived from the element types.
func (b *Builder) Tuple(elems ...*Instruction) *Instruction {
	types := make([]Type, len(elems))
	for n, e := range elems {
		types[n] = e.typ
	}
	return b.insert(b.create(Tuple, TupleType{Elems: types}, elems...))
}

// TupleExtract projects element n out of a tuple value.
func (b *Builder) TupleExtract(tuple *Instruction, n int) *Instruction {
	inst := b.create(TupleExtract, TupleElementType(tuple.typ, n), tuple)
	inst.Field = n
	return b.insert(inst)
}

// Struct aggregates one value per field of t.
func (b *Builder) Struct(t *StructType, fields ...*Instruction) *Instruction {
	if len(fields) != len(t.Fields) {
		panic(&InvariantError{Op: "struct", Inst: -1, Detail: fmt.Sprintf("%s has %d fields, got %d", t.Name, len(t.Fields), len(fields))})
	}
	return b.insert(b.create(Struct, t, fields...))
}

// StructExtract projects the named field out of a struct value.
func (b *Builder) StructExtract(v *Instruction, field string) *Instruction {
	st, ok := v.typ.(*StructType)
	if !ok {
		panic(&InvariantError{Op: "struct_extract", Inst: v.id, Detail: fmt.Sprintf("%s is not a struct", v.typ)})
	}
	n := st.FieldIndex(field)
	if n < 0 {
		panic(&InvariantError{Op: "struct_extract", Inst: v.id, Detail: fmt.Sprintf("%s has no field %s", st.Name, field)})
	}
	inst := b.create(StructExtract, st.Fields[n].Type, v)
	inst.Field = n
	return b.insert(inst)
}

// IndexAddr offsets an address by index elements.
func (b *Builder) IndexAddr(base, index *Instruction) *Instruction {
	return b.insert(b.create(IndexAddr, base.typ, base, index))
}

// IndexRawPointer offsets a raw pointer by index bytes.
func (b *Builder) IndexRawPointer(base, index *Instruction) *Instruction {
	return b.insert(b.create(IndexRawPointer, base.typ, base, index))
}

// Apply calls a function by name. semantics lists the callee's semantics
// attributes, e.g. "string.concat".
func (b *Builder) Apply(callee string, semantics []string, t Type, args ...*Instruction) *Instruction {
	inst := b.create(Apply, t, args...)
	inst.Callee = callee
	inst.Semantics = semantics
	return b.insert(inst)
}

// CondFail traps if cond is true.
func (b *Builder) CondFail(cond *Instruction, message string) *Instruction {
	inst := b.create(CondFail, nil, cond)
	inst.Message = message
	return b.insert(inst)
}

// AllocStack allocates a stack slot for a value of type t.
func (b *Builder) AllocStack(t Type) *Instruction {
	return b.insert(b.create(AllocStack, AddressType{Elem: t}))
}

// CopyAddr copies the value at src to dst.
func (b *Builder) CopyAddr(src, dst *Instruction) *Instruction {
	return b.insert(b.create(CopyAddr, nil, src, dst))
}

// UnconditionalCheckedCast casts v to target, trapping on failure.
func (b *Builder) UnconditionalCheckedCast(v *Instruction, target Type) *Instruction {
	inst := b.create(UnconditionalCheckedCast, target, v)
	inst.CastType = target
	return b.insert(inst)
}

// UnconditionalCheckedCastAddr casts the value at src into dst.
func (b *Builder) UnconditionalCheckedCastAddr(src, dst *Instruction) *Instruction {
	inst := b.create(UnconditionalCheckedCastAddr, nil, src, dst)
	inst.CastType = addressElem(dst.typ)
	return b.insert(inst)
}

// CheckedCastBranch branches to success with the cast value as its
// argument, or to failure.
func (b *Builder) CheckedCastBranch(v *Instruction, target Type, success, failure *Block) *Instruction {
	inst := b.create(CheckedCastBranch, nil, v)
	inst.CastType = target
	inst.Targets = []*Block{success, failure}
	return b.insert(inst)
}

// CheckedCastAddrBranch casts the value at src into dst and branches.
func (b *Builder) CheckedCastAddrBranch(src, dst *Instruction, success, failure *Block) *Instruction {
	inst := b.create(CheckedCastAddrBranch, nil, src, dst)
	inst.CastType = addressElem(dst.typ)
	inst.Targets = []*Block{success, failure}
	return b.insert(inst)
}

// Return exits the function with v.
func (b *Builder) Return(v *Instruction) *Instruction {
	return b.insert(b.create(Return, nil, v))
}

// Branch jumps to dest passing args as its block arguments.
func (b *Builder) Branch(dest *Block, args ...*Instruction) *Instruction {
	inst := b.create(Branch, nil, args...)
	inst.Targets = []*Block{dest}
	return b.insert(inst)
}

// CondBranch jumps to ifTrue or ifFalse depending on cond.
func (b *Builder) CondBranch(cond *Instruction, ifTrue, ifFalse *Block) *Instruction {
	inst := b.create(CondBranch, nil, cond)
	inst.Targets = []*Block{ifTrue, ifFalse}
	return b.insert(inst)
}

// Unreachable marks the end of a block that cannot be reached.
func (b *Builder) Unreachable() *Instruction {
	return b.insert(b.create(Unreachable, nil))
}

func addressElem(t Type) Type {
	if at, ok := t.(AddressType); ok {
		return at.Elem
	}
	return t
}
