package compiler

import (
	"math/big"
	"strings"

	"juliavm/internal/bytecode"
	"juliavm/internal/ir"
	"juliavm/internal/value"
)

// compileExpr compiles e so that exactly one value is left on the
// stack, mirroring every Visit*Expr method the teacher's compiler
// followed (internal/compiler/stmt_compiler.go).
func (fc *FuncCompiler) compileExpr(e ir.Expr) {
	switch ex := e.(type) {
	case *ir.Literal:
		fc.compileLiteral(ex)

	case *ir.Var:
		fc.emitLoadName(ex.Name)

	case *ir.BinaryOp:
		fc.compileExpr(ex.Left)
		fc.compileExpr(ex.Right)
		fc.emitBinaryOp(ex.Op)

	case *ir.UnaryOp:
		fc.compileExpr(ex.Operand)
		switch ex.Op {
		case "-":
			fc.emitOp(bytecode.OpNegate)
		case "!":
			fc.emitOp(bytecode.OpNot)
		}

	case *ir.Call:
		fc.compileCall(ex)

	case *ir.ModuleCall:
		fc.compileCall(ex.Call)

	case *ir.Builtin:
		fc.compileBuiltinCall(ex.Name, ex.Args)

	case *ir.Index:
		fc.compileExpr(ex.Recv)
		for _, i := range ex.Indices {
			fc.compileExpr(i)
		}
		fc.emitOp(bytecode.OpIndex)

	case *ir.FieldAccess:
		fc.compileExpr(ex.Recv)
		idx := constIdx(fc.chunk, ex.Field)
		fc.emitOp(bytecode.OpGetField)
		fc.emitByte(byte(idx))

	case *ir.Range:
		fc.compileExpr(ex.Start)
		fc.compileExpr(ex.Stop)
		if ex.Step != nil {
			fc.compileExpr(ex.Step)
		} else {
			fc.emitOp(bytecode.OpNil)
		}
		fc.emitOp(bytecode.OpMakeRange)

	case *ir.Ternary:
		fc.compileExpr(ex.Cond)
		elseJump := fc.emitJump(bytecode.OpJumpIfFalse)
		fc.compileExpr(ex.Then)
		endJump := fc.emitJump(bytecode.OpJump)
		fc.patchJump(elseJump)
		fc.compileExpr(ex.Else)
		fc.patchJump(endJump)

	case *ir.ArrayLiteral:
		for _, el := range ex.Elements {
			fc.compileExpr(el)
		}
		fc.emitOp(bytecode.OpArray)
		fc.emitByte(byte(len(ex.Elements) >> 8))
		fc.emitByte(byte(len(ex.Elements) & 0xff))

	case *ir.TupleLiteral:
		for _, el := range ex.Elements {
			fc.compileExpr(el)
		}
		fc.emitOp(bytecode.OpMakeTuple)
		fc.emitByte(byte(len(ex.Elements) >> 8))
		fc.emitByte(byte(len(ex.Elements) & 0xff))

	case *ir.NamedTupleLiteral:
		for _, el := range ex.Elements {
			fc.compileExpr(el)
		}
		namesIdx := constIdx(fc.chunk, ex.Names)
		fc.emitOp(bytecode.OpMakeNamedTuple)
		fc.emitByte(byte(namesIdx))
		fc.emitByte(byte(len(ex.Elements) >> 8))
		fc.emitByte(byte(len(ex.Elements) & 0xff))

	case *ir.DictLiteral:
		for _, p := range ex.Pairs {
			fc.compileExpr(p.Key)
			fc.compileExpr(p.Value)
		}
		fc.emitOp(bytecode.OpMap)
		fc.emitByte(byte(len(ex.Pairs) >> 8))
		fc.emitByte(byte(len(ex.Pairs) & 0xff))

	case *ir.Comprehension:
		fc.compileComprehension(ex)

	case *ir.MultiComprehension:
		fc.compileMultiComprehension(ex)

	case *ir.Generator:
		fc.compileGenerator(ex)

	case *ir.LetBlock:
		fc.compileLetBlock(ex)

	case *ir.StringConcat:
		for i, p := range ex.Parts {
			fc.compileExpr(p)
			if i > 0 {
				fc.emitOp(bytecode.OpConcat)
			}
		}
		if len(ex.Parts) == 0 {
			idx := constIdx(fc.chunk, "")
			fc.emitOp(bytecode.OpConstant)
			fc.emitByte(byte(idx))
		}

	case *ir.AssignExpr:
		fc.compileExpr(ex.Value)
		fc.emitOp(bytecode.OpDup)
		fc.emitStoreName(ex.Target)

	case *ir.ReturnExpr:
		if ex.Value != nil {
			fc.compileExpr(ex.Value)
		} else {
			fc.emitOp(bytecode.OpNil)
		}
		fc.emitOp(bytecode.OpReturn)

	case *ir.TypedEmptyArray:
		fc.emitOp(bytecode.OpArray)
		fc.emitByte(0)
		fc.emitByte(0)

	case *ir.SliceAll:
		fc.emitOp(bytecode.OpNil)

	case *ir.FunctionRef:
		idx := constIdx(fc.chunk, FunctionRefConst{Name: ex.Name, Index: fc.global.funcIndexByName(ex.Name)})
		fc.emitOp(bytecode.OpConstant)
		fc.emitByte(byte(idx))

	case *ir.Lambda:
		fc.compileLambda(ex)

	case *ir.BreakExpr:
		if l := fc.currentLoop(); l != nil {
			jmp := fc.emitJump(bytecode.OpJump)
			l.breakJumps = append(l.breakJumps, jmp)
		}
		fc.emitOp(bytecode.OpNil)

	case *ir.ContinueExpr:
		if l := fc.currentLoop(); l != nil {
			fc.emitLoopBack(l.continueTarget)
		}
		fc.emitOp(bytecode.OpNil)

	case *ir.New:
		for _, a := range ex.Args {
			fc.compileExpr(a)
		}
		fieldOrder := fc.global.fieldOrderOf(ex.TypeName)
		nameIdx := constIdx(fc.chunk, ex.TypeName)
		fieldsIdx := constIdx(fc.chunk, fieldOrder)
		fc.emitOp(bytecode.OpMakeStruct)
		fc.emitByte(byte(nameIdx))
		fc.emitByte(byte(fieldsIdx))
		fc.emitByte(byte(len(ex.Args)))

	case *ir.DynamicTypeConstruct:
		for _, a := range ex.Args {
			fc.compileExpr(a)
		}
		fc.compileExpr(ex.TypeExpr)
		fc.emitOp(bytecode.OpCall)
		fc.emitByte(byte(len(ex.Args)))
		fc.emitByte(0)

	case *ir.QuoteLiteral:
		// Meta-programming quote blocks are consumed ahead of this
		// stage by internal/macro; a QuoteLiteral reaching the compiler
		// is an expression value (spec.md §4.3's Expr/QuoteNode values),
		// represented as nil until internal/vm grows a quoted-AST value
		// kind to hold ex.Body's statements.
		fc.emitOp(bytecode.OpNil)

	default:
		fc.emitOp(bytecode.OpNil)
	}
}

func (fc *FuncCompiler) compileLiteral(lit *ir.Literal) {
	var v interface{}
	switch lit.Kind {
	case ir.LitNothing:
		v = value.Nothing
	case ir.LitMissing:
		v = value.Missing
	case ir.LitBool:
		v = lit.B
	case ir.LitInt:
		v = value.I64(lit.I)
	case ir.LitFloat:
		v = lit.F
	case ir.LitBigInt:
		n := new(big.Int)
		n.SetString(strings.ReplaceAll(lit.Raw, "_", ""), 10)
		v = value.BigInt{V: n}
	case ir.LitChar:
		v = value.Char(rune(lit.I))
	case ir.LitString:
		v = lit.S
	case ir.LitSymbol:
		v = value.Symbol(lit.S)
	default:
		v = value.Nothing
	}
	idx := constIdx(fc.chunk, v)
	fc.emitOp(bytecode.OpConstant)
	fc.emitByte(byte(idx))
}

// compileCall distinguishes a statically-known multi-method name
// (compiled to OpDispatchCall, resolved against the method table at
// runtime by argument type per spec.md §4.8) from calling an arbitrary
// value — a parameter holding a closure, a lambda literal, the result
// of another call — which compiles to the teacher's original OpCall
// convention: arguments then the callee value, in that order.
func (fc *FuncCompiler) compileCall(call *ir.Call) {
	// lowering has no dedicated struct-construction node (spec.md §3.1's
	// `T(args...)` default-constructor form lowers through the same
	// path as any other call, e.g. internal/lowering.go's lowerCall),
	// so a callee name matching a declared struct is a constructor call
	// and must build the instance directly rather than dispatching.
	if v, ok := call.Callee.(*ir.Var); ok && fc.resolveLocal(v.Name) < 0 {
		if _, isStruct := fc.global.structs[v.Name]; isStruct {
			for _, a := range call.Args {
				fc.compileExpr(a)
			}
			fieldOrder := fc.global.fieldOrderOf(v.Name)
			nameIdx := constIdx(fc.chunk, v.Name)
			fieldsIdx := constIdx(fc.chunk, fieldOrder)
			fc.emitOp(bytecode.OpMakeStruct)
			fc.emitByte(byte(nameIdx))
			fc.emitByte(byte(fieldsIdx))
			fc.emitByte(byte(len(call.Args)))
			return
		}
	}
	if v, ok := call.Callee.(*ir.Var); ok && fc.global.methods.MethodsFor(v.Name) != nil && fc.resolveLocal(v.Name) < 0 {
		for _, a := range call.Args {
			fc.compileExpr(a)
		}
		fc.compileKwArgs(call.KwArgs)
		nameIdx := constIdx(fc.chunk, v.Name)
		fc.emitOp(bytecode.OpDispatchCall)
		fc.emitByte(byte(nameIdx))
		fc.emitByte(byte(len(call.Args)))
		fc.emitByte(byte(len(call.KwArgs)))
		return
	}

	for _, a := range call.Args {
		fc.compileExpr(a)
	}
	fc.compileKwArgs(call.KwArgs)
	fc.compileExpr(call.Callee)
	fc.emitOp(bytecode.OpCall)
	fc.emitByte(byte(len(call.Args)))
	fc.emitByte(byte(len(call.KwArgs)))
}

func (fc *FuncCompiler) compileKwArgs(kwargs map[string]ir.Expr) {
	for name, val := range kwargs {
		nameIdx := constIdx(fc.chunk, name)
		fc.emitOp(bytecode.OpConstant)
		fc.emitByte(byte(nameIdx))
		fc.compileExpr(val)
	}
}

// compileBuiltinCall invokes a name lowering already resolved to a
// known compiler intrinsic (println, push!, length, ...) rather than a
// user method: the same OpCall convention as an ordinary value call,
// with the callee a sentinel FunctionRefConst{Index: -1} the VM
// recognizes as "look this up in the native builtin table by name"
// rather than the compiled function table.
func (fc *FuncCompiler) compileBuiltinCall(name string, args []ir.Expr) {
	for _, a := range args {
		fc.compileExpr(a)
	}
	fc.emitNativeCall(name, len(args))
}

// emitNativeCall assumes argCount values are already on the stack and
// invokes the named native builtin through the ordinary OpCall
// convention, with the callee a sentinel FunctionRefConst{Index: -1}
// the VM recognizes as a native-table lookup rather than a compiled
// function index.
func (fc *FuncCompiler) emitNativeCall(name string, argCount int) {
	idx := constIdx(fc.chunk, FunctionRefConst{Name: name, Index: -1})
	fc.emitOp(bytecode.OpConstant)
	fc.emitByte(byte(idx))
	fc.emitOp(bytecode.OpCall)
	fc.emitByte(byte(argCount))
	fc.emitByte(0)
}

func (c *Compiler) funcIndexByName(name string) int {
	for fn, idx := range c.funcIndex {
		if fn.Name == name {
			return idx
		}
	}
	return -1
}

func (c *Compiler) fieldOrderOf(typeName string) []string {
	sd, ok := c.structs[typeName]
	if !ok {
		return nil
	}
	out := make([]string, len(sd.Fields))
	for i, f := range sd.Fields {
		out[i] = f.Name
	}
	return out
}
