package compiler

import (
	"cuelang.org/go/cue"
)

// schemaSource constrains the shape of a function before it is compiled.
// Definitions are closed, so misspelled fields are rejected with their
// position.
const schemaSource = `
#Function: {
	specialization?: bool
	structs?: [string]: [...#Field]
	blocks: [#Block, ...#Block]
}

#Field: {
	name: string
	type: string
}

#Block: {
	label: string
	args?: [...#Field]
	insts: [...#Inst]
}

#Op: "integer_literal" | "float_literal" | "string_literal" | "builtin" |
	"tuple" | "tuple_extract" | "struct" | "struct_extract" |
	"index_addr" | "index_raw_pointer" | "apply" | "cond_fail" |
	"alloc_stack" | "copy_addr" |
	"unconditional_checked_cast" | "unconditional_checked_cast_addr" |
	"checked_cast_br" | "checked_cast_addr_br" |
	"return" | "br" | "cond_br" | "unreachable"

#Inst: {
	name?:      string
	op:         #Op
	type?:      string
	value?:     int | string
	builtin?:   string
	callee?:    string
	semantics?: [...string]
	args?:      [...string]
	index?:     int & >=0
	field?:     string
	cast?:      string
	targets?:   [...string]
	message?:   string
	loc?:       #Loc
}

#Pos: {
	file?: string
	line:  int & >=0
	col:   int & >=0
}

#Loc: {
	file?: string
	line?: int & >=0
	col?:  int & >=0
	expr?: #Expr
}

#Expr: {
	kind:      "other" | "call" | "constructor" | "integer_literal" | "float_literal"
	type?:     string
	implicit?: bool
	inout?:    bool
	digits?:   string
	negative?: bool
	range?: {
		start: #Pos
		end:   #Pos
	}
	args?: [...#Expr]
}
`

// validateSchema unifies v with #Function and checks the result is
// concrete.
func validateSchema(v cue.Value) error {
	schema := v.Context().CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Function"))
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}
