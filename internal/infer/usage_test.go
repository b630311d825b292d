package infer

import (
	"testing"

	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/tfunc"
)

func newTestRegistry() *tfunc.Registry {
	r := tfunc.New()
	tfunc.RegisterAll(r)
	return r
}

// grounded on analyzer.rs's test_usage_analysis_infers_numeric_type:
// an untyped parameter used as the left operand of `+` narrows to Number.
func TestUsageAnalysisInfersNumericType(t *testing.T) {
	fn := &ir.Function{
		Name: "addone",
		Params: []ir.TypedParam{
			{Name: "x"},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.BinaryOp{
				Op:   "+",
				Left: &ir.Var{Name: "x"},
				Right: &ir.Literal{Kind: ir.LitInt, I: 1},
			}},
		}},
	}
	constraints := InferParameterConstraints(fn, newTestRegistry())
	x := constraints["x"]
	if x.Kind != lattice.KConcrete || x.Concrete == nil || !x.Concrete.IsNumber {
		t.Fatalf("expected x to narrow to Number abstraction, got %v", x)
	}
}

// grounded on analyzer.rs's test_usage_analysis_infers_integer_from_indexing:
// an untyped parameter used as an array index narrows to Int64.
func TestUsageAnalysisInfersIntegerFromIndexing(t *testing.T) {
	fn := &ir.Function{
		Name: "at",
		Params: []ir.TypedParam{
			{Name: "arr"},
			{Name: "i"},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Index{
				Recv:    &ir.Var{Name: "arr"},
				Indices: []ir.Expr{&ir.Var{Name: "i"}},
			}},
		}},
	}
	constraints := InferParameterConstraints(fn, newTestRegistry())
	i := constraints["i"]
	if i.Kind != lattice.KConcrete || i.Concrete == nil || i.Concrete.T == nil || i.Concrete.T.Name != "Int64" {
		t.Fatalf("expected i to narrow to Int64, got %v", i)
	}
}

func TestUsageAnalysisLeavesTypedParametersAlone(t *testing.T) {
	fn := &ir.Function{
		Name: "typed",
		Params: []ir.TypedParam{
			{Name: "x", TypeAnnotation: &ir.TypeRef{Name: "Int64"}},
		},
		Body: &ir.Block{},
	}
	constraints := InferParameterConstraints(fn, newTestRegistry())
	if len(constraints) != 0 {
		t.Fatalf("expected no constraints computed for an already-typed parameter, got %v", constraints)
	}
}

func TestUsageAnalysisComparisonDoesNotNarrow(t *testing.T) {
	fn := &ir.Function{
		Name: "cmp",
		Params: []ir.TypedParam{
			{Name: "a"},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.BinaryOp{
				Op:   "==",
				Left: &ir.Var{Name: "a"},
				Right: &ir.Literal{Kind: ir.LitInt, I: 0},
			}},
		}},
	}
	constraints := InferParameterConstraints(fn, newTestRegistry())
	a := constraints["a"]
	if a.Kind != lattice.KTop {
		t.Fatalf("expected comparison not to narrow its operand, got %v", a)
	}
}
