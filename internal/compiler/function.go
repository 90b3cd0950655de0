package compiler

import (
	"math/big"

	"cuelang.org/go/cue"

	"github.com/roach88/constprop/internal/apfloat"
	"github.com/roach88/constprop/internal/apint"
	"github.com/roach88/constprop/internal/ir"
)

// CompileFunctions compiles every field of the "function" struct in v, in
// declaration order.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`function: main: { blocks: [...] }`)
//	fns, err := CompileFunctions(v)
func CompileFunctions(v cue.Value) ([]*ir.Function, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	fnsVal := v.LookupPath(cue.ParsePath("function"))
	if !fnsVal.Exists() {
		return nil, nil
	}
	iter, err := fnsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var fns []*ir.Function
	for iter.Next() {
		fn, err := CompileFunction(iter.Value())
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// CompileFunction compiles one function value. The function is named
// after the last label of v's path.
//
// The first block is the entry block. Values are referenced by name and
// must be defined before they are used, in block order; block arguments
// of every block are defined up front.
func CompileFunction(v cue.Value) (fn *ir.Function, err error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := validateSchema(v); err != nil {
		return nil, err
	}

	name := "function"
	if labels := v.Path().Selectors(); len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	c := &functionCompiler{
		fn:      ir.NewFunction(name),
		structs: make(map[string]*ir.StructType),
		values:  make(map[string]*ir.Instruction),
		blocks:  make(map[string]*ir.Block),
	}

	// The IR builder panics on malformed instructions; report those as
	// errors at the instruction being compiled.
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*ir.InvariantError)
			if !ok {
				panic(r)
			}
			fn, err = nil, &CompileError{Field: c.field, Message: ie.Error(), Pos: c.pos.Pos()}
		}
	}()

	if spec := v.LookupPath(cue.ParsePath("specialization")); spec.Exists() {
		if c.fn.Specialization, err = spec.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if err := c.compileStructs(v.LookupPath(cue.ParsePath("structs"))); err != nil {
		return nil, err
	}
	if err := c.compileBlocks(v.LookupPath(cue.ParsePath("blocks"))); err != nil {
		return nil, err
	}
	return c.fn, nil
}

type functionCompiler struct {
	fn      *ir.Function
	structs map[string]*ir.StructType
	values  map[string]*ir.Instruction
	blocks  map[string]*ir.Block

	// field and pos locate the instruction being compiled.
	field string
	pos   cue.Value
}

func (c *functionCompiler) compileStructs(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	// Declare every struct before resolving field types so structs can
	// refer to each other.
	type pending struct {
		st     *ir.StructType
		fields cue.Value
	}
	var all []pending
	for iter.Next() {
		st := &ir.StructType{Name: iter.Label()}
		c.structs[st.Name] = st
		all = append(all, pending{st, iter.Value()})
	}
	for _, p := range all {
		fields, err := p.fields.List()
		if err != nil {
			return formatCUEError(err)
		}
		for fields.Next() {
			fv := fields.Value()
			name, err := lookupString(fv, "name")
			if err != nil {
				return err
			}
			t, err := c.parseType(fv, "type")
			if err != nil {
				return err
			}
			p.st.Fields = append(p.st.Fields, ir.Field{Name: name, Type: t})
		}
	}
	return nil
}

func (c *functionCompiler) compileBlocks(v cue.Value) error {
	list, err := v.List()
	if err != nil {
		return formatCUEError(err)
	}
	type pending struct {
		block *ir.Block
		insts cue.Value
	}
	var all []pending
	for list.Next() {
		bv := list.Value()
		label, err := lookupString(bv, "label")
		if err != nil {
			return err
		}
		if _, dup := c.blocks[label]; dup {
			return errorf(bv.Pos(), "label", "duplicate block %q", label)
		}
		block := c.fn.NewBlock(label)
		c.blocks[label] = block

		if args := bv.LookupPath(cue.ParsePath("args")); args.Exists() {
			iter, err := args.List()
			if err != nil {
				return formatCUEError(err)
			}
			for iter.Next() {
				av := iter.Value()
				name, err := lookupString(av, "name")
				if err != nil {
					return err
				}
				t, err := c.parseType(av, "type")
				if err != nil {
					return err
				}
				if err := c.define(av, name, block.AddArgument(t)); err != nil {
					return err
				}
			}
		}
		all = append(all, pending{block, bv.LookupPath(cue.ParsePath("insts"))})
	}

	for _, p := range all {
		iter, err := p.insts.List()
		if err != nil {
			return formatCUEError(err)
		}
		b := ir.NewBuilder(p.block)
		for iter.Next() {
			if err := c.compileInst(b, iter.Value()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *functionCompiler) compileInst(b *ir.Builder, v cue.Value) error {
	op, err := lookupString(v, "op")
	if err != nil {
		return err
	}
	kind, ok := ir.ParseKind(op)
	if !ok || kind == ir.Argument {
		return errorf(v.Pos(), "op", "unknown instruction %q", op)
	}
	c.field, c.pos = op, v

	loc, err := c.location(v.LookupPath(cue.ParsePath("loc")))
	if err != nil {
		return err
	}
	b = b.At(loc)

	args, err := c.operands(v)
	if err != nil {
		return err
	}
	targets, err := c.targets(v)
	if err != nil {
		return err
	}
	arity := func(n int) error {
		if len(args) != n {
			return errorf(v.Pos(), "args", "%s takes %d operands, got %d", op, n, len(args))
		}
		return nil
	}
	branches := func(n int) error {
		if len(targets) != n {
			return errorf(v.Pos(), "targets", "%s takes %d targets, got %d", op, n, len(targets))
		}
		return nil
	}

	var inst *ir.Instruction
	switch kind {
	case ir.IntegerLiteral:
		inst, err = c.integerLiteral(b, v)
	case ir.FloatLiteral:
		inst, err = c.floatLiteral(b, v)
	case ir.StringLiteral:
		var t ir.Type
		var s string
		if t, err = c.parseType(v, "type"); err == nil {
			if s, err = lookupString(v, "value"); err == nil {
				inst = b.StringLiteral(t, s)
			}
		}

	case ir.Builtin:
		var t ir.Type
		var name string
		if t, err = c.parseType(v, "type"); err == nil {
			if name, err = lookupString(v, "builtin"); err == nil {
				if err = checkConversion(v, ir.ParseBuiltinName(name), t, args); err == nil {
					inst = b.Builtin(name, t, args...)
				}
			}
		}
	case ir.Apply:
		var t ir.Type
		var callee string
		var sem []string
		if t, err = c.parseType(v, "type"); err != nil {
			break
		}
		if callee, err = lookupString(v, "callee"); err != nil {
			break
		}
		if sem, err = lookupStrings(v, "semantics"); err != nil {
			break
		}
		inst = b.Apply(callee, sem, t, args...)

	case ir.Tuple:
		inst = b.Tuple(args...)
	case ir.TupleExtract:
		if err = arity(1); err != nil {
			break
		}
		var n int64
		if n, err = lookupInt(v, "index"); err != nil {
			break
		}
		tt, ok := args[0].Type().(ir.TupleType)
		if !ok || int(n) >= len(tt.Elems) {
			return errorf(v.Pos(), "index", "no element %d in %s", n, args[0].Type())
		}
		inst = b.TupleExtract(args[0], int(n))
	case ir.Struct:
		var t ir.Type
		if t, err = c.parseType(v, "type"); err != nil {
			break
		}
		st, ok := t.(*ir.StructType)
		if !ok {
			return errorf(v.Pos(), "type", "%s is not a declared struct", t)
		}
		if err = arity(len(st.Fields)); err != nil {
			break
		}
		inst = b.Struct(st, args...)
	case ir.StructExtract:
		if err = arity(1); err != nil {
			break
		}
		var field string
		if field, err = lookupString(v, "field"); err != nil {
			break
		}
		st, ok := args[0].Type().(*ir.StructType)
		if !ok || st.FieldIndex(field) < 0 {
			return errorf(v.Pos(), "field", "no field %q in %s", field, args[0].Type())
		}
		inst = b.StructExtract(args[0], field)
	case ir.IndexAddr, ir.IndexRawPointer:
		if err = arity(2); err != nil {
			break
		}
		if kind == ir.IndexAddr {
			inst = b.IndexAddr(args[0], args[1])
		} else {
			inst = b.IndexRawPointer(args[0], args[1])
		}

	case ir.CondFail:
		if err = arity(1); err != nil {
			break
		}
		var msg string
		if msg, err = optionalString(v, "message"); err == nil {
			inst = b.CondFail(args[0], msg)
		}
	case ir.AllocStack:
		var t ir.Type
		if t, err = c.parseType(v, "type"); err == nil {
			inst = b.AllocStack(t)
		}
	case ir.CopyAddr:
		if err = arity(2); err == nil {
			inst = b.CopyAddr(args[0], args[1])
		}

	case ir.UnconditionalCheckedCast:
		if err = arity(1); err != nil {
			break
		}
		var t ir.Type
		if t, err = c.parseType(v, "cast"); err == nil {
			inst = b.UnconditionalCheckedCast(args[0], t)
		}
	case ir.UnconditionalCheckedCastAddr:
		if err = arity(2); err == nil {
			inst = b.UnconditionalCheckedCastAddr(args[0], args[1])
		}
	case ir.CheckedCastBranch:
		if err = arity(1); err != nil {
			break
		}
		if err = branches(2); err != nil {
			break
		}
		var t ir.Type
		if t, err = c.parseType(v, "cast"); err == nil {
			inst = b.CheckedCastBranch(args[0], t, targets[0], targets[1])
		}
	case ir.CheckedCastAddrBranch:
		if err = arity(2); err != nil {
			break
		}
		if err = branches(2); err == nil {
			inst = b.CheckedCastAddrBranch(args[0], args[1], targets[0], targets[1])
		}

	case ir.Return:
		if err = arity(1); err == nil {
			inst = b.Return(args[0])
		}
	case ir.Branch:
		if err = branches(1); err == nil {
			inst = b.Branch(targets[0], args...)
		}
	case ir.CondBranch:
		if err = arity(1); err != nil {
			break
		}
		if err = branches(2); err == nil {
			inst = b.CondBranch(args[0], targets[0], targets[1])
		}
	case ir.Unreachable:
		inst = b.Unreachable()

	default:
		return errorf(v.Pos(), "op", "unsupported instruction %q", op)
	}
	if err != nil {
		return err
	}

	name, err := optionalString(v, "name")
	if err != nil || name == "" {
		return err
	}
	if !inst.HasResult() {
		return errorf(v.Pos(), "name", "%s has no result to name", op)
	}
	return c.define(v, name, inst)
}

func (c *functionCompiler) integerLiteral(b *ir.Builder, v cue.Value) (*ir.Instruction, error) {
	t, err := c.parseType(v, "type")
	if err != nil {
		return nil, err
	}
	it, ok := t.(ir.IntType)
	if !ok {
		return nil, errorf(v.Pos(), "type", "integer_literal needs a Builtin.IntN type, got %s", t)
	}

	val := v.LookupPath(cue.ParsePath("value"))
	if !val.Exists() {
		return nil, errorf(v.Pos(), "value", "integer_literal needs a value")
	}
	var n *big.Int
	if val.IncompleteKind() == cue.IntKind {
		if n, err = val.Int(nil); err != nil {
			return nil, formatCUEError(err)
		}
	} else {
		s, err := val.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var ok bool
		if n, ok = new(big.Int).SetString(s, 0); !ok {
			return nil, errorf(val.Pos(), "value", "invalid integer %q", s)
		}
	}

	// Accept anything representable in the width either signed or
	// unsigned.
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), it.Width-1))
	hi := new(big.Int).Lsh(big.NewInt(1), it.Width)
	if n.Cmp(lo) < 0 || n.Cmp(hi) >= 0 {
		return nil, errorf(val.Pos(), "value", "%s does not fit in %s", n, t)
	}
	return b.IntegerLiteral(it, apint.New(it.Width, n)), nil
}

func (c *functionCompiler) floatLiteral(b *ir.Builder, v cue.Value) (*ir.Instruction, error) {
	t, err := c.parseType(v, "type")
	if err != nil {
		return nil, err
	}
	ft, ok := t.(ir.FloatType)
	if !ok {
		return nil, errorf(v.Pos(), "type", "float_literal needs a Builtin.FPIEEEn type, got %s", t)
	}
	val := v.LookupPath(cue.ParsePath("value"))
	var text string
	switch {
	case !val.Exists():
		return nil, errorf(v.Pos(), "value", "float_literal needs a value")
	case val.IncompleteKind() == cue.IntKind:
		n, err := val.Int(nil)
		if err != nil {
			return nil, formatCUEError(err)
		}
		text = n.String()
	default:
		if text, err = val.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	f, _, err := apfloat.Parse(ft.Sem, text)
	if err != nil {
		return nil, errorf(val.Pos(), "value", "%v", err)
	}
	return b.FloatLiteral(ft, f), nil
}

func (c *functionCompiler) operands(v cue.Value) ([]*ir.Instruction, error) {
	names, err := lookupStrings(v, "args")
	if err != nil {
		return nil, err
	}
	ops := make([]*ir.Instruction, len(names))
	for n, name := range names {
		op, ok := c.values[name]
		if !ok {
			return nil, errorf(v.Pos(), "args", "undefined value %q", name)
		}
		ops[n] = op
	}
	return ops, nil
}

func (c *functionCompiler) targets(v cue.Value) ([]*ir.Block, error) {
	labels, err := lookupStrings(v, "targets")
	if err != nil {
		return nil, err
	}
	blocks := make([]*ir.Block, len(labels))
	for n, label := range labels {
		b, ok := c.blocks[label]
		if !ok {
			return nil, errorf(v.Pos(), "targets", "undefined block %q", label)
		}
		blocks[n] = b
	}
	return blocks, nil
}

func (c *functionCompiler) define(v cue.Value, name string, inst *ir.Instruction) error {
	if _, dup := c.values[name]; dup {
		return errorf(v.Pos(), "name", "value %q defined twice", name)
	}
	c.values[name] = inst
	return nil
}

func (c *functionCompiler) parseType(v cue.Value, field string) (ir.Type, error) {
	s, err := lookupString(v, field)
	if err != nil {
		return nil, err
	}
	t, err := ir.ParseType(s, c.structs)
	if err != nil {
		return nil, errorf(v.LookupPath(cue.ParsePath(field)).Pos(), field, "%v", err)
	}
	return t, nil
}

// location compiles an optional loc value.
func (c *functionCompiler) location(v cue.Value) (ir.Location, error) {
	var loc ir.Location
	if !v.Exists() {
		return loc, nil
	}
	pos, err := position(v)
	if err != nil {
		return loc, err
	}
	loc.Pos = pos
	if ev := v.LookupPath(cue.ParsePath("expr")); ev.Exists() {
		if loc.Expr, err = sourceExpr(ev, pos.File); err != nil {
			return loc, err
		}
	}
	return loc, nil
}

func position(v cue.Value) (ir.Pos, error) {
	var p ir.Pos
	var err error
	if p.File, err = optionalString(v, "file"); err != nil {
		return p, err
	}
	line, err := optionalInt(v, "line")
	if err != nil {
		return p, err
	}
	col, err := optionalInt(v, "col")
	if err != nil {
		return p, err
	}
	p.Line, p.Col = int(line), int(col)
	return p, nil
}

func sourceExpr(v cue.Value, file string) (*ir.SourceExpr, error) {
	kindName, err := lookupString(v, "kind")
	if err != nil {
		return nil, err
	}
	kind, ok := ir.ParseExprKind(kindName)
	if !ok {
		return nil, errorf(v.Pos(), "kind", "unknown expression kind %q", kindName)
	}
	e := &ir.SourceExpr{Kind: kind}
	if e.Type, err = optionalString(v, "type"); err != nil {
		return nil, err
	}
	if e.Digits, err = optionalString(v, "digits"); err != nil {
		return nil, err
	}
	if e.Implicit, err = optionalBool(v, "implicit"); err != nil {
		return nil, err
	}
	if e.InOut, err = optionalBool(v, "inout"); err != nil {
		return nil, err
	}
	if e.Negative, err = optionalBool(v, "negative"); err != nil {
		return nil, err
	}

	if rv := v.LookupPath(cue.ParsePath("range")); rv.Exists() {
		start, err := position(rv.LookupPath(cue.ParsePath("start")))
		if err != nil {
			return nil, err
		}
		end, err := position(rv.LookupPath(cue.ParsePath("end")))
		if err != nil {
			return nil, err
		}
		if start.File == "" {
			start.File = file
		}
		if end.File == "" {
			end.File = file
		}
		e.Range = ir.Range{Start: start, End: end}
	}

	if av := v.LookupPath(cue.ParsePath("args")); av.Exists() {
		iter, err := av.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			arg, err := sourceExpr(iter.Value(), file)
			if err != nil {
				return nil, err
			}
			e.Args = append(e.Args, arg)
		}
	}
	return e, nil
}

func lookupString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", errorf(v.Pos(), field, "%s is required", field)
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	if !v.LookupPath(cue.ParsePath(field)).Exists() {
		return "", nil
	}
	return lookupString(v, field)
}

func lookupInt(v cue.Value, field string) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, errorf(v.Pos(), field, "%s is required", field)
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

func optionalInt(v cue.Value, field string) (int64, error) {
	if !v.LookupPath(cue.ParsePath(field)).Exists() {
		return 0, nil
	}
	return lookupInt(v, field)
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func lookupStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}


// checkConversion rejects checked conversions the folder cannot evaluate:
// a truncation must not widen and a sign conversion must keep its width.
func checkConversion(v cue.Value, info ir.BuiltinInfo, t ir.Type, args []*ir.Instruction) error {
	if info.Category() != ir.CategoryCheckedConversion {
		return nil
	}
	if len(args) != 1 {
		return errorf(v.Pos(), "args", "%s takes 1 operands, got %d", info.Name, len(args))
	}
	src, ok := args[0].Type().(ir.IntType)
	if !ok {
		return errorf(v.Pos(), "type", "%s needs a Builtin.IntN operand, got %s", info.Name, args[0].Type())
	}
	tt, ok := t.(ir.TupleType)
	if !ok || len(tt.Elems) != 2 {
		return errorf(v.Pos(), "type", "%s returns (Builtin.IntN, Builtin.Int1), got %s", info.Name, t)
	}
	dst, ok := tt.Elems[0].(ir.IntType)
	if !ok {
		return errorf(v.Pos(), "type", "%s returns (Builtin.IntN, Builtin.Int1), got %s", info.Name, t)
	}
	switch info.Kind {
	case ir.SUCheckedConversion, ir.USCheckedConversion:
		if dst.Width != src.Width {
			return errorf(v.Pos(), "type", "%s cannot change width from %s to %s", info.Name, src, dst)
		}
	default:
		if dst.Width > src.Width {
			return errorf(v.Pos(), "type", "%s cannot widen %s to %s", info.Name, src, dst)
		}
	}
	return nil
}
