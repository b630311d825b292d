// FuncCompiler compiles one function body (or the top-level Main
// block) into its own bytecode.Chunk, tracking local-variable slots
// the way the teacher's StmtCompiler did (a flat name slice plus
// index-as-slot), but switching on ir.Stmt/ir.Expr concrete types
// instead of dispatching through parser.Stmt.Accept.
package compiler

import (
	"juliavm/internal/bytecode"
	"juliavm/internal/ir"
)

// loopCtx tracks the two patch points a loop body's break/continue
// statements need: the bytecode offset a `continue` loops back to, and
// the list of `break` jump placeholders to patch once the whole loop
// has been compiled.
type loopCtx struct {
	continueTarget int
	breakJumps     []int
}

type FuncCompiler struct {
	global         *Compiler
	parent         *FuncCompiler
	chunk          *bytecode.Chunk
	fileName       string
	locals         []string
	loops          []loopCtx
	isFunctionBody bool
}

func newFuncCompiler(global *Compiler, parent *FuncCompiler) *FuncCompiler {
	return &FuncCompiler{global: global, parent: parent, chunk: bytecode.NewChunk()}
}

func (c *Compiler) compileFunctionBody(fn *ir.Function) *bytecode.Chunk {
	fc := newFuncCompiler(c, nil)
	fc.isFunctionBody = true
	for _, p := range fn.Params {
		fc.locals = append(fc.locals, p.Name)
	}
	for _, s := range fn.Body.Stmts {
		fc.compileStmt(s)
	}
	fc.emitOp(bytecode.OpNil)
	fc.emitOp(bytecode.OpReturn)
	return fc.chunk
}

func (fc *FuncCompiler) emitOp(op bytecode.OpCode) {
	fc.chunk.WriteOp(op)
}

func (fc *FuncCompiler) emitByte(b byte) {
	fc.chunk.WriteByte(b)
}

// emitJump writes op followed by a 2-byte placeholder offset and
// returns the position of the high byte, to be patched by patchJump
// once the jump target is known.
func (fc *FuncCompiler) emitJump(op bytecode.OpCode) int {
	fc.emitOp(op)
	pos := len(fc.chunk.Code)
	fc.emitByte(0)
	fc.emitByte(0)
	return pos
}

func (fc *FuncCompiler) patchJump(pos int) {
	offset := len(fc.chunk.Code) - pos - 2
	fc.chunk.Code[pos] = byte(offset >> 8)
	fc.chunk.Code[pos+1] = byte(offset & 0xff)
}

// emitLoopBack emits OpLoop jumping back to start.
func (fc *FuncCompiler) emitLoopBack(start int) {
	fc.emitOp(bytecode.OpLoop)
	offset := len(fc.chunk.Code) - start + 2
	fc.emitByte(byte(offset >> 8))
	fc.emitByte(byte(offset & 0xff))
}

func (fc *FuncCompiler) pushLoop(continueTarget int) {
	fc.loops = append(fc.loops, loopCtx{continueTarget: continueTarget})
}

func (fc *FuncCompiler) popLoop() loopCtx {
	l := fc.loops[len(fc.loops)-1]
	fc.loops = fc.loops[:len(fc.loops)-1]
	return l
}

func (fc *FuncCompiler) currentLoop() *loopCtx {
	if len(fc.loops) == 0 {
		return nil
	}
	return &fc.loops[len(fc.loops)-1]
}

// resolveLocal returns the slot index of name among this function's
// locals, or -1 if name must be a global.
func (fc *FuncCompiler) resolveLocal(name string) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i] == name {
			return i
		}
	}
	return -1
}

func (fc *FuncCompiler) declareLocal(name string) int {
	fc.locals = append(fc.locals, name)
	return len(fc.locals) - 1
}

func constIdx(ch *bytecode.Chunk, v interface{}) int {
	return ch.AddConstant(v)
}

// emitLoadName resolves name to a local or a global load.
func (fc *FuncCompiler) emitLoadName(name string) {
	if slot := fc.resolveLocal(name); slot >= 0 {
		fc.emitOp(bytecode.OpGetLocal)
		fc.emitByte(byte(slot))
		return
	}
	idx := constIdx(fc.chunk, name)
	fc.emitOp(bytecode.OpGetGlobal)
	fc.emitByte(byte(idx))
}

// emitStoreName resolves name to a local-slot store, declaring a fresh
// local the first time an assignment target isn't already one (spec.md
// §4.3: assignment inside a function introduces a local unless the name
// is already bound).
func (fc *FuncCompiler) emitStoreName(name string) {
	if slot := fc.resolveLocal(name); slot >= 0 {
		fc.emitOp(bytecode.OpSetLocal)
		fc.emitByte(byte(slot))
		return
	}
	if fc.isFunctionBody {
		slot := fc.declareLocal(name)
		fc.emitOp(bytecode.OpSetLocal)
		fc.emitByte(byte(slot))
		return
	}
	idx := constIdx(fc.chunk, name)
	fc.emitOp(bytecode.OpDefineGlobal)
	fc.emitByte(byte(idx))
}

func (fc *FuncCompiler) compileStmt(s ir.Stmt) {
	switch st := s.(type) {
	case ir.AssignStmt:
		fc.compileExpr(st.Value)
		fc.emitStoreName(st.Target)

	case ir.AddAssignStmt:
		fc.emitLoadName(st.Target)
		fc.compileExpr(st.Value)
		fc.emitBinaryOp(addAssignOp(st.Op))
		fc.emitStoreName(st.Target)

	case ir.ReturnStmt:
		if st.Value != nil {
			fc.compileExpr(st.Value)
		} else {
			fc.emitOp(bytecode.OpNil)
		}
		fc.emitOp(bytecode.OpReturn)

	case ir.IfStmt:
		fc.compileExpr(st.Cond)
		elseJump := fc.emitJump(bytecode.OpJumpIfFalse)
		for _, s2 := range st.Then.Stmts {
			fc.compileStmt(s2)
		}
		endJump := fc.emitJump(bytecode.OpJump)
		fc.patchJump(elseJump)
		if st.Else != nil {
			for _, s2 := range st.Else.Stmts {
				fc.compileStmt(s2)
			}
		}
		fc.patchJump(endJump)

	case ir.WhileStmt:
		loopStart := len(fc.chunk.Code)
		fc.pushLoop(loopStart)
		fc.compileExpr(st.Cond)
		exitJump := fc.emitJump(bytecode.OpJumpIfFalse)
		for _, s2 := range st.Body.Stmts {
			fc.compileStmt(s2)
		}
		fc.emitLoopBack(loopStart)
		fc.patchJump(exitJump)
		l := fc.popLoop()
		for _, bj := range l.breakJumps {
			fc.patchJump(bj)
		}

	case ir.ForStmt:
		fc.compileForRange(st)

	case ir.ForEachStmt:
		fc.compileForEach(st)

	case ir.ForEachTupleStmt:
		fc.compileForEachTuple(st)

	case ir.BreakStmt:
		if l := fc.currentLoop(); l != nil {
			jmp := fc.emitJump(bytecode.OpJump)
			l.breakJumps = append(l.breakJumps, jmp)
		}

	case ir.ContinueStmt:
		if l := fc.currentLoop(); l != nil {
			fc.emitLoopBack(l.continueTarget)
		}

	case ir.BlockStmt:
		for _, s2 := range st.Body.Stmts {
			fc.compileStmt(s2)
		}

	case ir.TryStmt:
		fc.compileTry(st)

	case ir.TimedStmt:
		for _, s2 := range st.Body.Stmts {
			fc.compileStmt(s2)
		}
		if st.Target != "" {
			fc.emitOp(bytecode.OpNil)
			fc.emitStoreName(st.Target)
		}

	case ir.TestSetStmt:
		for _, s2 := range st.Body.Stmts {
			fc.compileStmt(s2)
		}

	case ir.FunctionDefStmt:
		fc.compileNestedFunctionDef(st.Fn)

	case ir.ExprStmt:
		fc.compileExpr(st.Value)
		fc.emitOp(bytecode.OpPop)

	case ir.IndexAssignStmt:
		idx, ok := st.Target.(*ir.Index)
		if !ok {
			return
		}
		fc.compileExpr(idx.Recv)
		for _, ix := range idx.Indices {
			fc.compileExpr(ix)
		}
		fc.compileExpr(st.Value)
		fc.emitOp(bytecode.OpSetIndex)
		fc.emitOp(bytecode.OpPop)

	case ir.FieldAssignStmt:
		fa, ok := st.Target.(*ir.FieldAccess)
		if !ok {
			return
		}
		fc.compileExpr(fa.Recv)
		fc.compileExpr(st.Value)
		fidx := constIdx(fc.chunk, fa.Field)
		fc.emitOp(bytecode.OpSetField)
		fc.emitByte(byte(fidx))
		fc.emitOp(bytecode.OpPop)

	case ir.DestructuringAssignStmt:
		fc.compileExpr(st.Value)
		fc.emitOp(bytecode.OpUnpack)
		fc.emitByte(byte(len(st.Targets)))
		for i := len(st.Targets) - 1; i >= 0; i-- {
			fc.emitStoreName(st.Targets[i])
		}

	case ir.DictAssignStmt:
		fc.compileExpr(st.Dict)
		fc.compileExpr(st.Key)
		fc.compileExpr(st.Value)
		fc.emitOp(bytecode.OpMapSet)
		fc.emitOp(bytecode.OpPop)

	case ir.UsingStmt:
		idx := constIdx(fc.chunk, st.Import.Path)
		fc.emitOp(bytecode.OpImport)
		fc.emitByte(byte(idx))
		fc.emitOp(bytecode.OpPop)

	case ir.ExportStmt:
		// Export is a compile-time visibility declaration (spec.md
		// §3.2's Module shape); it emits no runtime instructions.

	case ir.LabelStmt, ir.GotoStmt:
		// Unstructured control transfer is outside this language's
		// operation set (spec.md's Non-goals); declarations parse but
		// compile to nothing rather than erroring, matching how
		// lowering already passes them through uninterpreted.

	case ir.EnumDefStmt:
		// Nothing to emit: registerStructsAndAbstracts registers the
		// enum's type name from Program.Enums, and no variant name gets
		// a runtime binding.

	case ir.TestStmt:
		fc.compileExpr(st.Cond)
		fc.emitOp(bytecode.OpNot)
		failJump := fc.emitJump(bytecode.OpJumpIfFalse)
		idx := constIdx(fc.chunk, "test assertion failed")
		fc.emitOp(bytecode.OpConstant)
		fc.emitByte(byte(idx))
		fc.emitOp(bytecode.OpThrow)
		fc.patchJump(failJump)

	case ir.TestThrowsStmt:
		fc.emitOp(bytecode.OpTry)
		catchPos := len(fc.chunk.Code)
		fc.emitByte(0)
		fc.emitByte(0)
		for _, s2 := range st.Body.Stmts {
			fc.compileStmt(s2)
		}
		fc.emitOp(bytecode.OpPop) // no exception thrown: fail the assertion
		idx := constIdx(fc.chunk, "expected an exception, none was thrown")
		fc.emitOp(bytecode.OpConstant)
		fc.emitByte(byte(idx))
		fc.emitOp(bytecode.OpThrow)
		fc.patchJump(catchPos)
		fc.emitOp(bytecode.OpPop) // discard the caught exception value

	default:
		// Unknown statement kinds never reach the compiler: lowering
		// only ever constructs the cases above.
	}
}

func addAssignOp(op string) string {
	return op[:len(op)-1] // "+=" -> "+"
}

func (fc *FuncCompiler) emitBinaryOp(op string) {
	switch op {
	case "+":
		fc.emitOp(bytecode.OpAdd)
	case "-":
		fc.emitOp(bytecode.OpSub)
	case "*":
		fc.emitOp(bytecode.OpMul)
	case "/":
		fc.emitOp(bytecode.OpDiv)
	case "%":
		fc.emitOp(bytecode.OpMod)
	case "==":
		fc.emitOp(bytecode.OpEqual)
	case "!=":
		fc.emitOp(bytecode.OpNotEqual)
	case ">":
		fc.emitOp(bytecode.OpGreater)
	case "<":
		fc.emitOp(bytecode.OpLess)
	case ">=":
		fc.emitOp(bytecode.OpGreaterEqual)
	case "<=":
		fc.emitOp(bytecode.OpLessEqual)
	case "&&":
		fc.emitOp(bytecode.OpAnd)
	case "||":
		fc.emitOp(bytecode.OpOr)
	case "..":
		fc.emitOp(bytecode.OpConcat)
	}
}

func (fc *FuncCompiler) compileForRange(st ir.ForStmt) {
	fc.compileExpr(st.Range)
	fc.emitOp(bytecode.OpIterStart)
	loopStart := len(fc.chunk.Code)
	fc.pushLoop(loopStart)
	fc.emitOp(bytecode.OpIterNext)
	exitJump := fc.emitJump(bytecode.OpJumpIfFalse)
	fc.emitStoreName(st.Var)
	for _, s2 := range st.Body.Stmts {
		fc.compileStmt(s2)
	}
	fc.emitLoopBack(loopStart)
	fc.patchJump(exitJump)
	fc.emitOp(bytecode.OpIterEnd)
	l := fc.popLoop()
	for _, bj := range l.breakJumps {
		fc.patchJump(bj)
	}
}

func (fc *FuncCompiler) compileForEach(st ir.ForEachStmt) {
	fc.compileExpr(st.Iter)
	fc.emitOp(bytecode.OpIterStart)
	loopStart := len(fc.chunk.Code)
	fc.pushLoop(loopStart)
	fc.emitOp(bytecode.OpIterNext)
	exitJump := fc.emitJump(bytecode.OpJumpIfFalse)
	fc.emitStoreName(st.Var)
	for _, s2 := range st.Body.Stmts {
		fc.compileStmt(s2)
	}
	fc.emitLoopBack(loopStart)
	fc.patchJump(exitJump)
	fc.emitOp(bytecode.OpIterEnd)
	l := fc.popLoop()
	for _, bj := range l.breakJumps {
		fc.patchJump(bj)
	}
}

func (fc *FuncCompiler) compileForEachTuple(st ir.ForEachTupleStmt) {
	fc.compileExpr(st.Iter)
	fc.emitOp(bytecode.OpIterStart)
	loopStart := len(fc.chunk.Code)
	fc.pushLoop(loopStart)
	fc.emitOp(bytecode.OpIterNext)
	exitJump := fc.emitJump(bytecode.OpJumpIfFalse)
	fc.emitOp(bytecode.OpUnpack)
	fc.emitByte(byte(len(st.Vars)))
	for i := len(st.Vars) - 1; i >= 0; i-- {
		fc.emitStoreName(st.Vars[i])
	}
	for _, s2 := range st.Body.Stmts {
		fc.compileStmt(s2)
	}
	fc.emitLoopBack(loopStart)
	fc.patchJump(exitJump)
	fc.emitOp(bytecode.OpIterEnd)
	l := fc.popLoop()
	for _, bj := range l.breakJumps {
		fc.patchJump(bj)
	}
}

func (fc *FuncCompiler) compileTry(st ir.TryStmt) {
	fc.emitOp(bytecode.OpTry)
	catchPos := len(fc.chunk.Code)
	fc.emitByte(0)
	fc.emitByte(0)

	for _, s2 := range st.Body.Stmts {
		fc.compileStmt(s2)
	}
	endJump := fc.emitJump(bytecode.OpJump)
	fc.patchJump(catchPos)

	if st.CatchBody != nil {
		if st.CatchVar != "" {
			fc.emitStoreName(st.CatchVar)
		} else {
			fc.emitOp(bytecode.OpPop)
		}
		for _, s2 := range st.CatchBody.Stmts {
			fc.compileStmt(s2)
		}
	} else {
		fc.emitOp(bytecode.OpPop)
	}
	fc.patchJump(endJump)

	if st.Finally != nil {
		for _, s2 := range st.Finally.Stmts {
			fc.compileStmt(s2)
		}
	}
}

// compileNestedFunctionDef compiles a function declared inside another
// block (e.g. a local helper inside a function body), registering it
// into the same global function table and method table top-level
// declarations use, then binds its name in the enclosing scope to a
// plain function reference value.
func (fc *FuncCompiler) compileNestedFunctionDef(fn *ir.Function) {
	idx := fc.global.defineFunction(fn)
	fidx := constIdx(fc.chunk, FunctionRefConst{Name: fn.Name, Index: idx})
	fc.emitOp(bytecode.OpConstant)
	fc.emitByte(byte(fidx))
	fc.emitStoreName(fn.Name)
}

// FunctionRefConst is the constant-pool payload for a bare function
// value (no captures) — the VM's constant table carries interface{}
// values, so a named struct here stands in for value.FunctionValue
// without internal/compiler importing internal/value for a single
// shape (avoiding a dependency the rest of the package doesn't need).
type FunctionRefConst struct {
	Name  string
	Index int
}
