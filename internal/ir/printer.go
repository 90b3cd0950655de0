package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print writes f in a SIL-like textual form. Values are renumbered
// sequentially in layout order, so the output is stable across
// transformations that allocate new IDs.
func Print(w io.Writer, f *Function) error {
	_, err := io.WriteString(w, f.String())
	return err
}

func (f *Function) String() string {
	p := &printer{names: make(map[ID]string)}
	for _, b := range f.blocks {
		for _, a := range b.Args() {
			p.name(a)
		}
		for _, inst := range b.Instructions() {
			if inst.HasResult() {
				p.name(inst)
			}
		}
	}

	attr := ""
	if f.Specialization {
		attr = "[specialization] "
	}
	fmt.Fprintf(&p.sb, "sil %s@%s {\n", attr, f.Name)
	for _, b := range f.blocks {
		p.block(b)
	}
	p.sb.WriteString("}\n")
	return p.sb.String()
}

type printer struct {
	sb    strings.Builder
	names map[ID]string
	next  int
}

func (p *printer) name(v *Instruction) {
	p.names[v.id] = "%" + strconv.Itoa(p.next)
	p.next++
}

func (p *printer) ref(v *Instruction) string {
	if v == nil {
		return "<erased>"
	}
	if n, ok := p.names[v.id]; ok {
		return n
	}
	return fmt.Sprintf("%%<%d>", v.id)
}

func (p *printer) typed(v *Instruction) string {
	if v == nil {
		return "<erased>"
	}
	return p.ref(v) + " : $" + v.typ.String()
}

func (p *printer) typedList(vs []*Instruction) string {
	parts := make([]string, len(vs))
	for n, v := range vs {
		parts[n] = p.typed(v)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) block(b *Block) {
	p.sb.WriteString(b.Label)
	if args := b.Args(); len(args) > 0 {
		p.sb.WriteString("(" + p.typedList(args) + ")")
	}
	p.sb.WriteString(":\n")
	for _, inst := range b.Instructions() {
		p.sb.WriteString("  ")
		if inst.HasResult() {
			p.sb.WriteString(p.ref(inst) + " = ")
		}
		p.sb.WriteString(p.body(inst))
		p.sb.WriteString("\n")
	}
}

func (p *printer) body(i *Instruction) string {
	ops := i.Operands()
	switch i.kind {
	case IntegerLiteral:
		signed := i.Int.Width() > 1
		return fmt.Sprintf("integer_literal $%s, %s", i.typ, i.Int.Text(signed))
	case FloatLiteral:
		return fmt.Sprintf("float_literal $%s, %s", i.typ, i.Float.Text())
	case StringLiteral:
		return fmt.Sprintf("string_literal $%s, %s", i.typ, strconv.Quote(i.Str))
	case Builtin:
		return fmt.Sprintf("builtin %q(%s) : $%s", i.Builtin.Name, p.typedList(ops), i.typ)
	case Tuple:
		return fmt.Sprintf("tuple (%s)", p.typedList(ops))
	case TupleExtract:
		return fmt.Sprintf("tuple_extract %s, %d", p.typed(ops[0]), i.Field)
	case Struct:
		return fmt.Sprintf("struct $%s (%s)", i.typ, p.typedList(ops))
	case StructExtract:
		st := ops[0].typ.(*StructType)
		return fmt.Sprintf("struct_extract %s, #%s.%s", p.typed(ops[0]), st.Name, st.Fields[i.Field].Name)
	case IndexAddr, IndexRawPointer:
		return fmt.Sprintf("%s %s", i.kind, p.typedList(ops))
	case Apply:
		attrs := ""
		if len(i.Semantics) > 0 {
			quoted := make([]string, len(i.Semantics))
			for n, s := range i.Semantics {
				quoted[n] = strconv.Quote(s)
			}
			attrs = " [semantics " + strings.Join(quoted, ", ") + "]"
		}
		return fmt.Sprintf("apply @%s(%s) : $%s%s", i.Callee, p.typedList(ops), i.typ, attrs)
	case CondFail:
		if i.Message == "" {
			return "cond_fail " + p.typed(ops[0])
		}
		return fmt.Sprintf("cond_fail %s, %q", p.typed(ops[0]), i.Message)
	case AllocStack:
		return "alloc_stack $" + addressElem(i.typ).String()
	case CopyAddr:
		return fmt.Sprintf("copy_addr %s to %s", p.ref(ops[0]), p.typed(ops[1]))
	case UnconditionalCheckedCast:
		return fmt.Sprintf("unconditional_checked_cast %s to $%s", p.typed(ops[0]), i.CastType)
	case UnconditionalCheckedCastAddr:
		return fmt.Sprintf("unconditional_checked_cast_addr %s to %s", p.typed(ops[0]), p.typed(ops[1]))
	case CheckedCastBranch:
		return fmt.Sprintf("checked_cast_br %s to $%s, %s, %s", p.typed(ops[0]), i.CastType, i.Targets[0].Label, i.Targets[1].Label)
	case CheckedCastAddrBranch:
		return fmt.Sprintf("checked_cast_addr_br %s to %s, %s, %s", p.typed(ops[0]), p.typed(ops[1]), i.Targets[0].Label, i.Targets[1].Label)
	case Return:
		return "return " + p.typed(ops[0])
	case Branch:
		if len(ops) == 0 {
			return "br " + i.Targets[0].Label
		}
		return fmt.Sprintf("br %s(%s)", i.Targets[0].Label, p.typedList(ops))
	case CondBranch:
		return fmt.Sprintf("cond_br %s, %s, %s", p.ref(ops[0]), i.Targets[0].Label, i.Targets[1].Label)
	case Unreachable:
		return "unreachable"
	}
	return i.kind.String()
}
