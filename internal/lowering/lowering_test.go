package lowering

import (
	"testing"

	"juliavm/internal/ir"
	"juliavm/internal/lexer"
	"juliavm/internal/parser"
)

func lower(t *testing.T, src string) *ir.Program {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	root := parser.New(toks, "test.jl").Parse()
	l := New("test.jl")
	prog := l.LowerFile(root)
	if !l.Diags.Empty() {
		t.Fatalf("unexpected diagnostics lowering %q: %v", src, l.Diags.Items())
	}
	return prog
}

func TestLowerFunctionDecl(t *testing.T) {
	prog := lower(t, "function double(x::Int64) return x * 2 end")
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "double" || len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if fn.Params[0].TypeAnnotation == nil || fn.Params[0].TypeAnnotation.Name != "Int64" {
		t.Fatalf("expected Int64 param annotation, got %+v", fn.Params[0].TypeAnnotation)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(ir.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ir.BinaryOp)
	if !ok || bin.Op != "*" {
		t.Fatalf("expected '*' BinaryOp return value, got %+v", ret.Value)
	}
}

func TestBeginBlockFlattens(t *testing.T) {
	prog := lower(t, "x = 1\nbegin\ny = 2\nz = 3\nend")
	if len(prog.Main.Stmts) != 3 {
		t.Fatalf("expected begin...end to flatten into 3 statements, got %d", len(prog.Main.Stmts))
	}
}

func TestLowerIfElseif(t *testing.T) {
	prog := lower(t, "if x < 1\ny = 1\nelseif x < 2\ny = 2\nelse\ny = 3\nend")
	ifs, ok := prog.Main.Stmts[0].(ir.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Main.Stmts[0])
	}
	if ifs.Else == nil || len(ifs.Else.Stmts) != 1 {
		t.Fatal("expected elseif to lower into a nested IfStmt wrapped in Else")
	}
	nested, ok := ifs.Else.Stmts[0].(ir.IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt for elseif, got %T", ifs.Else.Stmts[0])
	}
	if nested.Else == nil {
		t.Fatal("expected final else branch on nested if")
	}
}

func TestLowerFieldAssign(t *testing.T) {
	prog := lower(t, "p.x = 5")
	fa, ok := prog.Main.Stmts[0].(ir.FieldAssignStmt)
	if !ok {
		t.Fatalf("expected FieldAssignStmt, got %T", prog.Main.Stmts[0])
	}
	if fe, _ := fa.Target.(*ir.FieldAccess); fe == nil || fe.Field != "x" {
		t.Fatalf("expected field 'x', got %#v", fa.Target)
	}
}

func TestLowerForEachTuple(t *testing.T) {
	prog := lower(t, "for (a, b) in pairs\nx = a\nend")
	fe, ok := prog.Main.Stmts[0].(ir.ForEachTupleStmt)
	if !ok {
		t.Fatalf("expected ForEachTupleStmt, got %T", prog.Main.Stmts[0])
	}
	if len(fe.Vars) != 2 || fe.Vars[0] != "a" || fe.Vars[1] != "b" {
		t.Fatalf("unexpected vars: %v", fe.Vars)
	}
}

func TestLowerBuiltinCall(t *testing.T) {
	prog := lower(t, "println(1)")
	stmt, ok := prog.Main.Stmts[0].(ir.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Main.Stmts[0])
	}
	b, ok := stmt.Value.(*ir.Builtin)
	if !ok || b.Name != "println" {
		t.Fatalf("expected println Builtin, got %+v", stmt.Value)
	}
}

func TestLowerSingleExprLambda(t *testing.T) {
	prog := lower(t, "f = x -> x * x")
	assign, ok := prog.Main.Stmts[0].(ir.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", prog.Main.Stmts[0])
	}
	lam, ok := assign.Value.(*ir.Lambda)
	if !ok {
		t.Fatalf("expected Lambda, got %T", assign.Value)
	}
	if len(lam.Params) != 1 || lam.Params[0] != "x" {
		t.Fatalf("expected one param x, got %v", lam.Params)
	}
	if len(lam.Body.Stmts) != 1 {
		t.Fatalf("expected a single-statement body, got %d", len(lam.Body.Stmts))
	}
	ret, ok := lam.Body.Stmts[0].(ir.ReturnStmt)
	if !ok {
		t.Fatalf("expected the expr body wrapped in a ReturnStmt, got %T", lam.Body.Stmts[0])
	}
	if _, ok := ret.Value.(*ir.BinaryOp); !ok {
		t.Fatalf("expected '*' BinaryOp return value, got %+v", ret.Value)
	}
}

func TestLowerSingleParamLambdaAmongCallArgs(t *testing.T) {
	prog := lower(t, "map(a, b -> a + b, arr)")
	stmt, ok := prog.Main.Stmts[0].(ir.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Main.Stmts[0])
	}
	call, ok := stmt.Value.(*ir.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", stmt.Value)
	}
	if len(call.Args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*ir.Var); !ok {
		t.Fatalf("expected the bare identifier a as the first arg, got %+v", call.Args[0])
	}
	lam, ok := call.Args[1].(*ir.Lambda)
	if !ok {
		t.Fatalf("expected the second arg to lower to a Lambda, got %+v", call.Args[1])
	}
	if len(lam.Params) != 1 || lam.Params[0] != "b" {
		t.Fatalf("expected lambda param b, got %v", lam.Params)
	}
}

func TestLowerStructDecl(t *testing.T) {
	prog := lower(t, "struct Point\nx\ny\nend")
	if len(prog.Structs) != 1 || prog.Structs[0].Name != "Point" || len(prog.Structs[0].Fields) != 2 {
		t.Fatalf("unexpected struct decl: %+v", prog.Structs)
	}
}
