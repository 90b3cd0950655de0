package ir

import (
	"fmt"
	"slices"
)

// InvariantError reports a violated structural invariant of the IR, such
// as erasing a value that is still used. It is raised by panic: it signals
// a bug in a transformation, never a property of the input program.
type InvariantError struct {
	Op     string
	Inst   ID
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ir: %s %%%d: %s", e.Op, e.Inst, e.Detail)
}

// Function is an arena owning blocks and every value defined in them.
type Function struct {
	Name string
	// Specialization marks compiler-generated specialized copies of a
	// function. Diagnostics are not reported for them.
	Specialization bool

	blocks []*Block
	values []*Instruction // indexed by ID; nil once erased
}

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// NewBlock appends a block. An empty label is replaced by "bbN".
func (f *Function) NewBlock(label string) *Block {
	if label == "" {
		label = fmt.Sprintf("bb%d", len(f.blocks))
	}
	b := &Block{fn: f, Label: label}
	f.blocks = append(f.blocks, b)
	return b
}

// Blocks returns the blocks in layout order.
func (f *Function) Blocks() []*Block { return slices.Clone(f.blocks) }

// Entry returns the first block, or nil.
func (f *Function) Entry() *Block {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// BlockByLabel finds a block by label.
func (f *Function) BlockByLabel(label string) *Block {
	for _, b := range f.blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// Value resolves id, returning nil if it was erased or never existed.
func (f *Function) Value(id ID) *Instruction {
	if id < 0 || int(id) >= len(f.values) {
		return nil
	}
	return f.values[id]
}

// Instructions returns a snapshot of every non-argument instruction in
// block layout order.
func (f *Function) Instructions() []*Instruction {
	var out []*Instruction
	for _, b := range f.blocks {
		out = append(out, b.Instructions()...)
	}
	return out
}

// NumInstructions counts live non-argument instructions.
func (f *Function) NumInstructions() int {
	n := 0
	for _, b := range f.blocks {
		n += len(b.insts)
	}
	return n
}

func (f *Function) checkOwned(op string, v *Instruction) {
	if v == nil || v.fn != f || v.erased {
		id := ID(-1)
		if v != nil {
			id = v.id
		}
		panic(&InvariantError{Op: op, Inst: id, Detail: "operand is not a live value of " + f.Name})
	}
}

// newInstruction allocates an instruction and registers it as a user of
// ops. It is not yet placed in a block.
func (f *Function) newInstruction(kind Kind, typ Type, ops ...*Instruction) *Instruction {
	inst := &Instruction{fn: f, id: ID(len(f.values)), kind: kind, typ: typ}
	f.values = append(f.values, inst)
	inst.ops = make([]ID, len(ops))
	for n, op := range ops {
		f.checkOwned(kind.String(), op)
		inst.ops[n] = op.id
		op.addUse(Use{User: inst.id, Index: n})
	}
	return inst
}

// Block is a straight-line sequence of instructions ending in a terminator.
type Block struct {
	fn    *Function
	Label string
	args  []ID
	insts []ID
}

// Function returns the owning function.
func (b *Block) Function() *Function { return b.fn }

// AddArgument appends a block argument of type t.
func (b *Block) AddArgument(t Type) *Instruction {
	arg := b.fn.newInstruction(Argument, t)
	arg.block = b
	b.args = append(b.args, arg.id)
	return arg
}

// Args returns the block arguments.
func (b *Block) Args() []*Instruction {
	out := make([]*Instruction, len(b.args))
	for n, id := range b.args {
		out[n] = b.fn.values[id]
	}
	return out
}

// Instructions returns a snapshot of the block's instructions in order.
func (b *Block) Instructions() []*Instruction {
	out := make([]*Instruction, len(b.insts))
	for n, id := range b.insts {
		out[n] = b.fn.values[id]
	}
	return out
}

// Terminator returns the last instruction if it is a terminator.
func (b *Block) Terminator() *Instruction {
	if len(b.insts) == 0 {
		return nil
	}
	last := b.fn.values[b.insts[len(b.insts)-1]]
	if !last.IsTerminator() {
		return nil
	}
	return last
}

func (b *Block) insertAt(n int, inst *Instruction) {
	inst.block = b
	b.insts = slices.Insert(b.insts, n, inst.id)
}

func (b *Block) indexOf(inst *Instruction) int {
	n := slices.Index(b.insts, inst.id)
	if n < 0 {
		panic(&InvariantError{Op: "insert", Inst: inst.id, Detail: "instruction is not in block " + b.Label})
	}
	return n
}
