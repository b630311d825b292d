package effects

import (
	"testing"

	"juliavm/internal/ir"
)

func TestMergeIsConjunctionOfGuarantees(t *testing.T) {
	a := Effects{Terminates: true, NoThrow: true, NoMutate: true, NoIO: true}
	b := Effects{Terminates: true, NoThrow: false, NoMutate: true, NoIO: true}
	m := a.Merge(b)
	if m.NoThrow {
		t.Fatal("expected NoThrow to be false once any merged side can throw")
	}
	if !m.Terminates || !m.NoMutate || !m.NoIO {
		t.Fatalf("expected remaining guarantees to survive the merge, got %+v", m)
	}
}

func TestTotalIsFoldable(t *testing.T) {
	if !Total().IsFoldable() {
		t.Fatal("expected Total (no observed effects) to be foldable")
	}
}

func TestArbitraryIsNotFoldable(t *testing.T) {
	if Arbitrary().IsFoldable() {
		t.Fatal("expected Arbitrary (conservative default) to be unfoldable")
	}
}

func TestInferBuiltinEffectsFlagsMutationAndIO(t *testing.T) {
	if InferBuiltinEffects("push!").NoMutate {
		t.Fatal("expected push! to be flagged as mutating")
	}
	if InferBuiltinEffects("println").NoIO {
		t.Fatal("expected println to be flagged as performing I/O")
	}
	if !InferBuiltinEffects("sqrt").IsFoldable() {
		t.Fatal("expected sqrt to remain foldable")
	}
}

// grounded on propagation.rs's test_propagate_effects_simple: a pure
// function (returns a literal) and its caller should both end up
// foldable once the worklist converges.
func TestPropagateSimpleCallChainIsFoldable(t *testing.T) {
	pureFn := &ir.Function{
		Name: "pure",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Literal{Kind: ir.LitInt, I: 42}},
		}},
	}
	callerFn := &ir.Function{
		Name: "caller",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Call{Callee: &ir.Var{Name: "pure"}}},
		}},
	}
	result := Propagate([]*ir.Function{pureFn, callerFn})

	pureEff, ok := result["pure"]
	if !ok {
		t.Fatal("expected an effects entry for pure")
	}
	if !pureEff.IsFoldable() {
		t.Fatalf("expected pure to be foldable, got %+v", pureEff)
	}

	callerEff, ok := result["caller"]
	if !ok {
		t.Fatal("expected an effects entry for caller")
	}
	if !callerEff.IsFoldable() {
		t.Fatalf("expected caller to be foldable once pure's effects propagate, got %+v", callerEff)
	}
}

func TestPropagateLoopNeverTerminates(t *testing.T) {
	fn := &ir.Function{
		Name: "spin",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.WhileStmt{
				Cond: &ir.Literal{Kind: ir.LitBool, B: true},
				Body: &ir.Block{},
			},
		}},
	}
	result := Propagate([]*ir.Function{fn})
	if result["spin"].Terminates {
		t.Fatal("expected a while-true body to be marked non-terminating")
	}
}

func TestPropagateMutatingBuiltinIsNotFoldable(t *testing.T) {
	fn := &ir.Function{
		Name: "mutates",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ExprStmt{Value: &ir.Builtin{Name: "push!", Args: []ir.Expr{
				&ir.Var{Name: "arr"}, &ir.Literal{Kind: ir.LitInt, I: 1},
			}}},
			ir.ReturnStmt{Value: &ir.Literal{Kind: ir.LitNothing}},
		}},
	}
	result := Propagate([]*ir.Function{fn})
	if result["mutates"].IsFoldable() {
		t.Fatal("expected a function calling push! to be unfoldable")
	}
}

func TestPropagateUnresolvedCalleeStaysArbitrary(t *testing.T) {
	fn := &ir.Function{
		Name: "callsExternal",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Call{Callee: &ir.Var{Name: "not_in_program"}}},
		}},
	}
	result := Propagate([]*ir.Function{fn})
	if result["callsExternal"].IsFoldable() {
		t.Fatal("expected a call to an unresolved function to stay unfoldable")
	}
}
