// Package compiler lowers internal/ir's type-switch-consumed Program
// into internal/bytecode chunks plus a dispatch.MethodTable (spec.md
// §4.8/§4.9). The teacher's original compiler walked its own
// parser.Expr/parser.Stmt tree through the Visitor/Accept pattern
// (internal/compiler/compiler.go, stmt_compiler.go, now rewritten); the
// ir package closes its Stmt/Expr sets with an unexported marker method
// instead, so this compiler consumes them with ordinary Go type
// switches, the same idiom internal/infer and internal/effects already
// use against the same IR.
//
// Grounded on the teacher's stmt_compiler.go for bytecode shape: 1-byte
// constant/local-slot operands, 2-byte jump offsets patched after the
// fact, and a sub-compiler-per-function-body style for nested chunks.
package compiler

import (
	"juliavm/internal/bytecode"
	"juliavm/internal/diag"
	"juliavm/internal/dispatch"
	"juliavm/internal/ir"
	"juliavm/internal/types"
)

// CompiledFunction is one entry in the call table the VM indexes by
// FuncIndex (spec.md §3.5: "that index is the calling convention inside
// the VM").
type CompiledFunction struct {
	Name   string
	Arity  int
	Params []string
	Chunk  *bytecode.Chunk

	// CapturedNames records, in the exact order pushClosure assigned
	// them local slots after the parameters, the enclosing-scope names a
	// closure body captures. A plain function (no captures) leaves this
	// nil; the VM uses it to place a ClosureValue's captured values into
	// the right slot when it starts a new frame.
	CapturedNames []string
}

// Program is everything the VM needs to execute a compiled unit: the
// top-level statement chunk, every compiled function body indexed by
// FuncIndex, the multiple-dispatch method table those indices feed,
// and struct field layouts for OpMakeStruct/OpGetField.
type Program struct {
	Main      *bytecode.Chunk
	Functions []*CompiledFunction
	Methods   *dispatch.MethodTable
	Structs   map[string]*ir.StructDef

	// BuildID is a fresh identifier per Compile call; cmd/juliavm
	// writes it into the header of the -b bytecode file. Neither
	// --stats nor the AoT path (internal/codegen) outputs it.
	BuildID string
}

// Compiler holds the state shared across every function body compiled
// out of one ir.Program: the struct/abstract/enum name table (so
// parameter annotations resolve to real types.JuliaType values instead
// of widening everything to Any) and the function index assignment
// dispatch.Method.FuncIndex needs to already exist before any call site
// compiles.
type Compiler struct {
	named     map[string]*types.JuliaType
	funcIndex map[*ir.Function]int
	functions []*CompiledFunction
	methods   *dispatch.MethodTable
	structs   map[string]*ir.StructDef
}

// Compile builds a complete bytecode Program from a lowered ir.Program.
func Compile(prog *ir.Program) *Program {
	c := &Compiler{
		named:     builtinNamedTypes(),
		funcIndex: map[*ir.Function]int{},
		methods:   dispatch.New(),
		structs:   map[string]*ir.StructDef{},
	}
	c.registerStructsAndAbstracts(prog)
	c.registerMethods(prog)

	for _, fn := range prog.Functions {
		c.functions[c.funcIndex[fn]].Chunk = c.compileFunctionBody(fn)
	}

	fc := newFuncCompiler(c, nil)
	for _, s := range prog.Main.Stmts {
		fc.compileStmt(s)
	}
	fc.emitOp(bytecode.OpReturn)

	return &Program{
		Main:      fc.chunk,
		Functions: c.functions,
		Methods:   c.methods,
		Structs:   c.structs,
		BuildID:   diag.NewBuildID(),
	}
}

// registerStructsAndAbstracts extends the name table with every
// user-declared struct/abstract type (spec.md §3.1) before any method
// signature is resolved, so a method declared with `p::Point` sees
// Point rather than widening it to Any.
func (c *Compiler) registerStructsAndAbstracts(prog *ir.Program) {
	for _, sd := range prog.Structs {
		super := c.named["Any"]
		if sd.Supertype != nil {
			if t, ok := c.named[sd.Supertype.Name]; ok {
				super = t
			}
		}
		c.named[sd.Name] = types.StructWithSupertype(sd.Name, super)
		c.structs[sd.Name] = sd
	}
	for _, ad := range prog.AbstractTypes {
		super := c.named["Any"]
		if ad.Supertype != nil {
			if t, ok := c.named[ad.Supertype.Name]; ok {
				super = t
			}
		}
		c.named[ad.Name] = types.AbstractUser(ad.Name, super)
	}
	for _, ed := range prog.Enums {
		c.named[ed.Name] = types.Enum(ed.Name)
	}
}

func builtinNamedTypes() map[string]*types.JuliaType {
	return map[string]*types.JuliaType{
		"Any":            types.Any,
		"Number":         types.NumberT,
		"Real":           types.RealT,
		"Integer":        types.IntegerT,
		"Signed":         types.SignedT,
		"Unsigned":       types.UnsignedT,
		"Bool":           types.BoolT,
		"AbstractFloat":  types.AbstractFloat,
		"AbstractString": types.AbstractStr,
		"String":         types.StringT,
		"AbstractArray":  types.AbstractArray,
		"Function":       types.FunctionT,
		"IO":             types.IOT,
		"IOBuffer":       types.IOBufferT,
		"Char":           types.CharT,
		"Nothing":        types.NothingT,
		"Missing":        types.MissingT,
		"Symbol":         types.SymbolT,
		"Int8":           types.I8T,
		"Int16":          types.I16T,
		"Int32":          types.I32T,
		"Int64":          types.I64T,
		"Int128":         types.I128T,
		"BigInt":         types.BigIntT,
		"UInt8":          types.U8T,
		"UInt16":         types.U16T,
		"UInt32":         types.U32T,
		"UInt64":         types.U64T,
		"UInt128":        types.U128T,
		"Float16":        types.F16T,
		"Float32":        types.F32T,
		"Float64":        types.F64T,
		"BigFloat":       types.BigFloatT,
	}
}

// defineFunction registers and compiles a function declared somewhere
// other than the program's top level (e.g. a local helper nested
// inside another function's body), appending it to the same function
// and method tables top-level declarations use and returning its
// FuncIndex.
func (c *Compiler) defineFunction(fn *ir.Function) int {
	idx := len(c.functions)
	c.funcIndex[fn] = idx
	c.functions = append(c.functions, &CompiledFunction{
		Name:   fn.Name,
		Arity:  len(fn.Params),
		Params: paramNames(fn.Params),
	})

	paramTypes := make([]*types.JuliaType, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = c.resolveType(p.TypeAnnotation)
	}
	c.methods.AddMethod(&dispatch.Method{
		Name:       fn.Name,
		ParamTypes: paramTypes,
		TypeParams: typeParamsOf(fn.TypeParams),
		FuncIndex:  idx,
	})

	c.functions[idx].Chunk = c.compileFunctionBody(fn)
	return idx
}

// resolveType turns lowering's unresolved TypeRef into a real
// types.JuliaType, widening Vector/Array to AbstractArray and
// Dict/Tuple to Any, since a dispatch signature doesn't need to
// distinguish between element types
// (spec.md §4.8 ranks on the declared parameter type itself, not its
// element type parameter).
func (c *Compiler) resolveType(tr *ir.TypeRef) *types.JuliaType {
	if tr == nil {
		return types.Any
	}
	switch tr.Name {
	case "Vector", "Array":
		return types.AbstractArray
	case "Dict":
		return types.Any
	case "Tuple":
		return types.Any
	case "Union":
		if len(tr.Args) == 0 {
			return types.Any
		}
		acc := c.resolveType(tr.Args[0])
		for _, a := range tr.Args[1:] {
			acc = types.Union(acc, c.resolveType(a))
		}
		return acc
	}
	if t, ok := c.named[tr.Name]; ok {
		return t
	}
	return types.Any
}
