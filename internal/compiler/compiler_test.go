package compiler

import (
	"testing"

	"juliavm/internal/bytecode"
	"juliavm/internal/lexer"
	"juliavm/internal/lowering"
	"juliavm/internal/parser"
)

func compileSrc(t *testing.T, src string) *Program {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	root := parser.New(toks, "test.jl").Parse()
	l := lowering.New("test.jl")
	prog := l.LowerFile(root)
	if !l.Diags.Empty() {
		t.Fatalf("unexpected diagnostics lowering %q: %v", src, l.Diags.Items())
	}
	return Compile(prog)
}

func containsOp(code []byte, op bytecode.OpCode) bool {
	for _, b := range code {
		if bytecode.OpCode(b) == op {
			return true
		}
	}
	return false
}

func TestCompileFunctionRegistersMethod(t *testing.T) {
	out := compileSrc(t, "function add(x::Int64, y::Int64) return x + y end\nadd(1, 2)")
	if len(out.Functions) != 1 || out.Functions[0].Name != "add" {
		t.Fatalf("expected one compiled function named add, got %+v", out.Functions)
	}
	if out.Functions[0].Arity != 2 {
		t.Fatalf("expected arity 2, got %d", out.Functions[0].Arity)
	}
	methods := out.Methods.MethodsFor("add")
	if len(methods) != 1 {
		t.Fatalf("expected 1 registered method for add, got %d", len(methods))
	}
	if !containsOp(out.Functions[0].Chunk.Code, bytecode.OpAdd) {
		t.Fatal("expected the function body to compile an OpAdd")
	}
	if !containsOp(out.Main.Code, bytecode.OpDispatchCall) {
		t.Fatal("expected the call site to compile to OpDispatchCall since add has a registered method")
	}
}

func TestCompileBuiltinCallUsesOpCallConvention(t *testing.T) {
	out := compileSrc(t, "println(1)")
	if !containsOp(out.Main.Code, bytecode.OpCall) {
		t.Fatal("expected println(...) to compile to the OpCall convention")
	}
	if containsOp(out.Main.Code, bytecode.OpDispatchCall) {
		t.Fatal("println is a builtin, not a registered multi-method, so it must not use OpDispatchCall")
	}
}

func TestCompileLambdaEmitsClosure(t *testing.T) {
	out := compileSrc(t, "f = x -> x * x")
	if !containsOp(out.Main.Code, bytecode.OpClosure) {
		t.Fatal("expected a lambda literal to compile to OpClosure")
	}
	if len(out.Functions) != 1 || out.Functions[0].Name != "<lambda>" {
		t.Fatalf("expected one anonymous function registered, got %+v", out.Functions)
	}
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	out := compileSrc(t, "if x < 1\ny = 1\nelse\ny = 2\nend")
	if !containsOp(out.Main.Code, bytecode.OpJumpIfFalse) || !containsOp(out.Main.Code, bytecode.OpJump) {
		t.Fatal("expected if/else to compile both a conditional and an unconditional jump")
	}
}

func TestCompileStructLiteralEmitsMakeStruct(t *testing.T) {
	out := compileSrc(t, "struct Point\nx\ny\nend\np = Point(1, 2)")
	if !containsOp(out.Main.Code, bytecode.OpMakeStruct) {
		t.Fatal("expected a `new` struct construction to compile to OpMakeStruct")
	}
}

func TestCompileWhileLoopBreakPatchesJump(t *testing.T) {
	out := compileSrc(t, "while true\nbreak\nend")
	if !containsOp(out.Main.Code, bytecode.OpLoop) {
		t.Fatal("expected a while loop to compile a backward OpLoop jump")
	}
}
