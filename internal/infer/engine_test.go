package infer

import (
	"testing"

	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/types"
	"juliavm/internal/value"
)

// grounded on analyzer.rs's test_stable_int_function: a function with a
// fully-typed Int64 parameter that returns it unchanged is stable.
func TestStableIntFunction(t *testing.T) {
	fn := &ir.Function{
		Name: "identity_int",
		Params: []ir.TypedParam{
			{Name: "x", TypeAnnotation: &ir.TypeRef{Name: "Int64"}},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Var{Name: "x"}},
		}},
	}
	e := NewEngine(DefaultConfig())
	report := e.AnalyzeFunction(fn, nil)
	if !report.IsStable() {
		t.Fatalf("expected identity_int to be stable, got return type %v reasons %v", report.ReturnType, report.Reasons)
	}
}

// grounded on analyzer.rs's test_unstable_untyped_function: a function
// whose untyped parameter is returned with no narrowing usage infers to
// Top and is unstable, tagged UntypedParameters.
func TestUnstableUntypedFunction(t *testing.T) {
	fn := &ir.Function{
		Name: "echo",
		Params: []ir.TypedParam{
			{Name: "x"},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Var{Name: "x"}},
		}},
	}
	e := NewEngine(DefaultConfig())
	report := e.AnalyzeFunction(fn, nil)
	if report.IsStable() {
		t.Fatalf("expected echo to be unstable, got %v", report.ReturnType)
	}
	found := false
	for _, r := range report.Reasons {
		if r.Kind == UntypedParameters {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UntypedParameters reason, got %v", report.Reasons)
	}
}

func TestConditionalBranchMismatchProducesUnion(t *testing.T) {
	fn := &ir.Function{
		Name: "maybe_string",
		Params: []ir.TypedParam{
			{Name: "flag", TypeAnnotation: &ir.TypeRef{Name: "Bool"}},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.IfStmt{
				Cond: &ir.Var{Name: "flag"},
				Then: &ir.Block{Stmts: []ir.Stmt{
					ir.ReturnStmt{Value: &ir.Literal{Kind: ir.LitInt, I: 1}},
				}},
				Else: &ir.Block{Stmts: []ir.Stmt{
					ir.ReturnStmt{Value: &ir.Literal{Kind: ir.LitString, S: "no"}},
				}},
			},
		}},
	}
	e := NewEngine(DefaultConfig())
	report := e.AnalyzeFunction(fn, nil)
	if report.ReturnType.Kind != lattice.KUnion {
		t.Fatalf("expected a Union return type from mismatched branches, got %v", report.ReturnType)
	}
	found := false
	for _, r := range report.Reasons {
		if r.Kind == ReturnsUnion {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ReturnsUnion reason, got %v", report.Reasons)
	}
}

func TestArithmeticOnTypedIntParamsIsStable(t *testing.T) {
	fn := &ir.Function{
		Name: "add",
		Params: []ir.TypedParam{
			{Name: "a", TypeAnnotation: &ir.TypeRef{Name: "Int64"}},
			{Name: "b", TypeAnnotation: &ir.TypeRef{Name: "Int64"}},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.BinaryOp{
				Op:    "+",
				Left:  &ir.Var{Name: "a"},
				Right: &ir.Var{Name: "b"},
			}},
		}},
	}
	e := NewEngine(DefaultConfig())
	report := e.AnalyzeFunction(fn, nil)
	if !report.IsStable() {
		t.Fatalf("expected add(a::Int64,b::Int64) to be stable, got %v reasons %v", report.ReturnType, report.Reasons)
	}
}

func TestKnownReturnsResolveCalleeType(t *testing.T) {
	caller := &ir.Function{
		Name: "caller",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Call{Callee: &ir.Var{Name: "callee"}}},
		}},
	}
	e := NewEngine(DefaultConfig())
	known := map[string]lattice.LatticeType{"callee": lattice.Const(value.I64(7), types.I64T)}
	report := e.AnalyzeFunction(caller, known)
	if report.ReturnType.Kind != lattice.KConst {
		t.Fatalf("expected caller to inherit callee's Const return type, got %v", report.ReturnType)
	}
}

func TestAnalyzeProgramOrdersCalleesBeforeCallers(t *testing.T) {
	callee := &ir.Function{
		Name: "one",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Literal{Kind: ir.LitInt, I: 1}},
		}},
	}
	caller := &ir.Function{
		Name: "two",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Call{Callee: &ir.Var{Name: "one"}}},
		}},
	}
	prog := &ir.Program{Functions: []*ir.Function{callee, caller}}
	e := NewEngine(DefaultConfig())
	report := e.AnalyzeProgram(prog)
	if len(report.Functions) != 2 {
		t.Fatalf("expected 2 function reports, got %d", len(report.Functions))
	}
	var twoReport *FunctionReport
	for _, f := range report.Functions {
		if f.FunctionName == "two" {
			twoReport = f
		}
	}
	if twoReport == nil {
		t.Fatal("expected a report for function two")
	}
	if twoReport.ReturnType.Kind != lattice.KConst {
		t.Fatalf("expected two's return type to resolve through one's known return, got %v", twoReport.ReturnType)
	}
}
