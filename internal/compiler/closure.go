// Closure compilation. The runtime representation (value.ClosureValue)
// captures by value into a name->Value snapshot rather than holding
// live upvalue cells, so the compiler's job is simpler than the
// teacher's never-finished VisitLambdaExpr (internal/compiler/
// stmt_compiler.go's "TODO: Implement lambda compilation"): find which
// enclosing locals a lambda body actually references, push their
// current values in a fixed order, and let OpClosure zip them with
// their names into the captured map at closure-creation time.
package compiler

import (
	"juliavm/internal/bytecode"
	"juliavm/internal/ir"
)

func (fc *FuncCompiler) compileLambda(lam *ir.Lambda) {
	bound := map[string]bool{}
	for _, p := range lam.Params {
		bound[p] = true
	}
	free := map[string]bool{}
	collectFreeVarsBlock(lam.Body, bound, free)
	fc.pushClosure(lam.Params, free, func(sub *FuncCompiler) {
		for _, s := range lam.Body.Stmts {
			sub.compileStmt(s)
		}
		sub.emitOp(bytecode.OpNil)
		sub.emitOp(bytecode.OpReturn)
	})
}

// pushExprClosure builds and pushes a closure whose entire body is
// `return body`, the shape every comprehension/generator result or
// filter expression needs (spec.md §3.1's comprehension/generator
// values, compiled as ordinary closures rather than new opcodes).
func (fc *FuncCompiler) pushExprClosure(params []string, body ir.Expr) {
	bound := map[string]bool{}
	for _, p := range params {
		bound[p] = true
	}
	free := map[string]bool{}
	collectFreeVarsExpr(body, bound, free)
	fc.pushClosure(params, free, func(sub *FuncCompiler) {
		sub.compileStmt(ir.ReturnStmt{Value: body})
	})
}

// pushClosure compiles compileBody into a fresh function chunk scoped
// over params plus whatever names in free resolve to a local in fc,
// then emits the OpClosure sequence that captures those names by
// value and leaves the resulting closure on fc's stack.
func (fc *FuncCompiler) pushClosure(params []string, free map[string]bool, compileBody func(*FuncCompiler)) {
	var captured []string
	for name := range free {
		if fc.resolveLocal(name) >= 0 {
			captured = append(captured, name)
		}
	}

	sub := newFuncCompiler(fc.global, fc)
	sub.isFunctionBody = true
	sub.locals = append(sub.locals, params...)
	sub.locals = append(sub.locals, captured...)
	compileBody(sub)

	fnIdx := fc.global.registerAnonymousFunction(sub.chunk, len(params), params, captured)

	for _, name := range captured {
		fc.emitLoadName(name)
	}
	fnConst := constIdx(fc.chunk, fnIdx)
	namesConst := constIdx(fc.chunk, captured)
	fc.emitOp(bytecode.OpClosure)
	fc.emitByte(byte(fnConst))
	fc.emitByte(byte(len(captured)))
	fc.emitByte(byte(namesConst))
}

func (c *Compiler) registerAnonymousFunction(chunk *bytecode.Chunk, arity int, params []string, captured []string) int {
	idx := len(c.functions)
	c.functions = append(c.functions, &CompiledFunction{
		Name:          "<lambda>",
		Arity:         arity,
		Params:        params,
		Chunk:         chunk,
		CapturedNames: captured,
	})
	return idx
}

// collectFreeVarsBlock walks a lambda/comprehension body collecting
// every Var reference not already bound by a param or a local
// assignment target, covering the statement/expression shapes lowering
// actually produces inside single-expression and block lambda bodies.
func collectFreeVarsBlock(b *ir.Block, bound map[string]bool, free map[string]bool) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		collectFreeVarsStmt(s, bound, free)
	}
}

func collectFreeVarsStmt(s ir.Stmt, bound map[string]bool, free map[string]bool) {
	switch st := s.(type) {
	case ir.AssignStmt:
		collectFreeVarsExpr(st.Value, bound, free)
		bound[st.Target] = true
	case ir.AddAssignStmt:
		collectFreeVarsExpr(st.Value, bound, free)
		if !bound[st.Target] {
			free[st.Target] = true
		}
	case ir.ReturnStmt:
		collectFreeVarsExpr(st.Value, bound, free)
	case ir.ExprStmt:
		collectFreeVarsExpr(st.Value, bound, free)
	case ir.IfStmt:
		collectFreeVarsExpr(st.Cond, bound, free)
		collectFreeVarsBlock(st.Then, bound, free)
		collectFreeVarsBlock(st.Else, bound, free)
	case ir.WhileStmt:
		collectFreeVarsExpr(st.Cond, bound, free)
		collectFreeVarsBlock(st.Body, bound, free)
	case ir.ForStmt:
		collectFreeVarsExpr(st.Range, bound, free)
		bound[st.Var] = true
		collectFreeVarsBlock(st.Body, bound, free)
	case ir.ForEachStmt:
		collectFreeVarsExpr(st.Iter, bound, free)
		bound[st.Var] = true
		collectFreeVarsBlock(st.Body, bound, free)
	case ir.ForEachTupleStmt:
		collectFreeVarsExpr(st.Iter, bound, free)
		for _, v := range st.Vars {
			bound[v] = true
		}
		collectFreeVarsBlock(st.Body, bound, free)
	case ir.BlockStmt:
		collectFreeVarsBlock(st.Body, bound, free)
	case ir.IndexAssignStmt:
		collectFreeVarsExpr(st.Target, bound, free)
		collectFreeVarsExpr(st.Value, bound, free)
	case ir.FieldAssignStmt:
		collectFreeVarsExpr(st.Target, bound, free)
		collectFreeVarsExpr(st.Value, bound, free)
	case ir.DestructuringAssignStmt:
		collectFreeVarsExpr(st.Value, bound, free)
		for _, t := range st.Targets {
			bound[t] = true
		}
	case ir.DictAssignStmt:
		collectFreeVarsExpr(st.Dict, bound, free)
		collectFreeVarsExpr(st.Key, bound, free)
		collectFreeVarsExpr(st.Value, bound, free)
	case ir.TryStmt:
		collectFreeVarsBlock(st.Body, bound, free)
		collectFreeVarsBlock(st.CatchBody, bound, free)
		collectFreeVarsBlock(st.Finally, bound, free)
	}
}

func collectFreeVarsExpr(e ir.Expr, bound map[string]bool, free map[string]bool) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *ir.Var:
		if !bound[ex.Name] {
			free[ex.Name] = true
		}
	case *ir.BinaryOp:
		collectFreeVarsExpr(ex.Left, bound, free)
		collectFreeVarsExpr(ex.Right, bound, free)
	case *ir.UnaryOp:
		collectFreeVarsExpr(ex.Operand, bound, free)
	case *ir.Call:
		collectFreeVarsExpr(ex.Callee, bound, free)
		for _, a := range ex.Args {
			collectFreeVarsExpr(a, bound, free)
		}
		for _, a := range ex.KwArgs {
			collectFreeVarsExpr(a, bound, free)
		}
	case *ir.ModuleCall:
		collectFreeVarsExpr(ex.Call, bound, free)
	case *ir.Builtin:
		for _, a := range ex.Args {
			collectFreeVarsExpr(a, bound, free)
		}
	case *ir.Index:
		collectFreeVarsExpr(ex.Recv, bound, free)
		for _, i := range ex.Indices {
			collectFreeVarsExpr(i, bound, free)
		}
	case *ir.FieldAccess:
		collectFreeVarsExpr(ex.Recv, bound, free)
	case *ir.Range:
		collectFreeVarsExpr(ex.Start, bound, free)
		collectFreeVarsExpr(ex.Stop, bound, free)
		collectFreeVarsExpr(ex.Step, bound, free)
	case *ir.Ternary:
		collectFreeVarsExpr(ex.Cond, bound, free)
		collectFreeVarsExpr(ex.Then, bound, free)
		collectFreeVarsExpr(ex.Else, bound, free)
	case *ir.ArrayLiteral:
		for _, el := range ex.Elements {
			collectFreeVarsExpr(el, bound, free)
		}
	case *ir.TupleLiteral:
		for _, el := range ex.Elements {
			collectFreeVarsExpr(el, bound, free)
		}
	case *ir.NamedTupleLiteral:
		for _, el := range ex.Elements {
			collectFreeVarsExpr(el, bound, free)
		}
	case *ir.DictLiteral:
		for _, p := range ex.Pairs {
			collectFreeVarsExpr(p.Key, bound, free)
			collectFreeVarsExpr(p.Value, bound, free)
		}
	case *ir.Comprehension:
		inner := copyBound(bound)
		inner[ex.Var] = true
		collectFreeVarsExpr(ex.Iter, bound, free)
		collectFreeVarsExpr(ex.Result, inner, free)
		collectFreeVarsExpr(ex.Filter, inner, free)
	case *ir.MultiComprehension:
		inner := copyBound(bound)
		for _, v := range ex.Vars {
			inner[v] = true
		}
		for _, it := range ex.Iters {
			collectFreeVarsExpr(it, bound, free)
		}
		collectFreeVarsExpr(ex.Result, inner, free)
		collectFreeVarsExpr(ex.Filter, inner, free)
	case *ir.Generator:
		inner := copyBound(bound)
		inner[ex.Var] = true
		collectFreeVarsExpr(ex.Iter, bound, free)
		collectFreeVarsExpr(ex.Result, inner, free)
		collectFreeVarsExpr(ex.Filter, inner, free)
	case *ir.LetBlock:
		inner := copyBound(bound)
		for _, b := range ex.Bindings {
			collectFreeVarsExpr(b.Value, inner, free)
			inner[b.Target] = true
		}
		collectFreeVarsBlock(ex.Body, inner, free)
	case *ir.StringConcat:
		for _, p := range ex.Parts {
			collectFreeVarsExpr(p, bound, free)
		}
	case *ir.AssignExpr:
		collectFreeVarsExpr(ex.Value, bound, free)
		bound[ex.Target] = true
	case *ir.ReturnExpr:
		collectFreeVarsExpr(ex.Value, bound, free)
	case *ir.Lambda:
		inner := copyBound(bound)
		for _, p := range ex.Params {
			inner[p] = true
		}
		collectFreeVarsBlock(ex.Body, inner, free)
	case *ir.New:
		for _, a := range ex.Args {
			collectFreeVarsExpr(a, bound, free)
		}
	case *ir.DynamicTypeConstruct:
		collectFreeVarsExpr(ex.TypeExpr, bound, free)
		for _, a := range ex.Args {
			collectFreeVarsExpr(a, bound, free)
		}
	}
}

func copyBound(b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(b)+2)
	for k, v := range b {
		out[k] = v
	}
	return out
}
