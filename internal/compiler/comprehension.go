// Comprehensions, generators, and let-blocks (spec.md §3.1/§4.5)
// compile to closures plus a native call rather than new bytecode
// forms: a comprehension's element count
// isn't known until the iterable is walked, and this instruction set
// has no dynamic-length array-build opcode (OpArray's size is an
// immediate baked in at compile time), so building the result is left
// to the native helper the VM registers under these names.
package compiler

import (
	"juliavm/internal/bytecode"
	"juliavm/internal/ir"
)

func (fc *FuncCompiler) compileComprehension(ex *ir.Comprehension) {
	fc.compileExpr(ex.Iter)
	fc.pushExprClosure([]string{ex.Var}, ex.Result)
	if ex.Filter != nil {
		fc.pushExprClosure([]string{ex.Var}, ex.Filter)
	} else {
		fc.emitOp(bytecode.OpNil)
	}
	fc.emitNativeCall("__comprehension", 3)
}

func (fc *FuncCompiler) compileMultiComprehension(ex *ir.MultiComprehension) {
	for _, it := range ex.Iters {
		fc.compileExpr(it)
	}
	fc.pushExprClosure(ex.Vars, ex.Result)
	if ex.Filter != nil {
		fc.pushExprClosure(ex.Vars, ex.Filter)
	} else {
		fc.emitOp(bytecode.OpNil)
	}
	fc.emitNativeCall("__comprehension_multi", len(ex.Iters)+2)
}

func (fc *FuncCompiler) compileGenerator(ex *ir.Generator) {
	fc.compileExpr(ex.Iter)
	fc.pushExprClosure([]string{ex.Var}, ex.Result)
	if ex.Filter != nil {
		fc.pushExprClosure([]string{ex.Var}, ex.Filter)
	} else {
		fc.emitOp(bytecode.OpNil)
	}
	fc.emitNativeCall("__generator", 3)
}

// compileLetBlock gives each binding a fresh local slot (or global,
// at top level) the way an ordinary assignment does; `let` scoping
// narrower than its enclosing function is a refinement this flat
// locals model doesn't yet express (spec.md's let-block invariant is
// only about shadowing producing fresh bindings, which assignment
// already gives each name).
func (fc *FuncCompiler) compileLetBlock(ex *ir.LetBlock) {
	for _, b := range ex.Bindings {
		fc.compileExpr(b.Value)
		fc.emitStoreName(b.Target)
	}
	for _, s := range ex.Body.Stmts {
		fc.compileStmt(s)
	}
	fc.emitOp(bytecode.OpNil)
}
