package callgraph

import (
	"testing"

	"juliavm/internal/ir"
)

func simpleFunction(name string) *ir.Function {
	return &ir.Function{
		Name: name,
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: &ir.Literal{Kind: ir.LitInt, I: 42}},
		}},
	}
}

func functionCalling(name, calledName string) *ir.Function {
	call := &ir.Call{Callee: &ir.Var{Name: calledName}}
	return &ir.Function{
		Name: name,
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.ReturnStmt{Value: call},
		}},
	}
}

func TestBuildSimpleCallGraph(t *testing.T) {
	fns := []*ir.Function{simpleFunction("f"), functionCalling("g", "f")}
	g := BuildFromIR(fns)

	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if len(g.Nodes[1].Callees) != 1 || g.Nodes[1].Callees[0] != 0 {
		t.Fatalf("expected g to call f (id 0), got %v", g.Nodes[1].Callees)
	}
	if len(g.Nodes[0].Callers) != 1 || g.Nodes[0].Callers[0] != 1 {
		t.Fatalf("expected f to be called by g (id 1), got %v", g.Nodes[0].Callers)
	}
}

func TestTopologicalOrderRootsFirst(t *testing.T) {
	fns := []*ir.Function{
		simpleFunction("f"),
		functionCalling("g", "f"),
		functionCalling("h", "g"),
	}
	g := BuildFromIR(fns)
	order := g.TopologicalOrder()
	if len(order) != 3 {
		t.Fatalf("expected all 3 functions in order, got %v", order)
	}
	if order[0] != 2 || order[1] != 1 || order[2] != 0 {
		t.Fatalf("expected h,g,f order (roots first), got %v", order)
	}
}

func TestReverseTopologicalOrder(t *testing.T) {
	fns := []*ir.Function{
		simpleFunction("f"),
		functionCalling("g", "f"),
	}
	g := BuildFromIR(fns)
	rev := g.ReverseTopologicalOrder()
	if len(rev) != 2 || rev[0] != 0 || rev[1] != 1 {
		t.Fatalf("expected [0,1] (dependencies first), got %v", rev)
	}
}

func TestDirectRecursionDetected(t *testing.T) {
	fns := []*ir.Function{functionCalling("f", "f")}
	g := BuildFromIR(fns)
	if !g.IsRecursive(0) {
		t.Fatal("expected direct self-call to be detected as recursive")
	}
}

func TestGetFunctionID(t *testing.T) {
	fns := []*ir.Function{simpleFunction("foo"), simpleFunction("bar")}
	g := BuildFromIR(fns)

	if id, ok := g.GetFunctionID("foo"); !ok || id != 0 {
		t.Fatalf("expected foo -> 0, got %d,%v", id, ok)
	}
	if id, ok := g.GetFunctionID("bar"); !ok || id != 1 {
		t.Fatalf("expected bar -> 1, got %d,%v", id, ok)
	}
	if _, ok := g.GetFunctionID("baz"); ok {
		t.Fatal("expected baz to be absent")
	}
}

func TestDetectSCCsGroupsMutualRecursion(t *testing.T) {
	// f calls g, g calls f: mutual recursion, one SCC of size 2.
	fns := []*ir.Function{functionCalling("f", "g"), functionCalling("g", "f")}
	g := BuildFromIR(fns)
	sccs := g.DetectSCCs()

	var found bool
	for _, scc := range sccs {
		if len(scc) == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected one 2-member SCC for mutual recursion, got %v", sccs)
	}
}

func TestDetectSCCsSingletonsForAcyclicGraph(t *testing.T) {
	fns := []*ir.Function{simpleFunction("f"), functionCalling("g", "f")}
	g := BuildFromIR(fns)
	sccs := g.DetectSCCs()
	for _, scc := range sccs {
		if len(scc) != 1 {
			t.Fatalf("expected all singleton SCCs in an acyclic graph, got %v", sccs)
		}
	}
	if len(sccs) != 2 {
		t.Fatalf("expected 2 SCCs, got %d", len(sccs))
	}
}

func TestWalksNestedControlFlow(t *testing.T) {
	inner := &ir.Call{Callee: &ir.Var{Name: "helper"}}
	fn := &ir.Function{
		Name: "outer",
		Body: &ir.Block{Stmts: []ir.Stmt{
			ir.IfStmt{
				Cond: &ir.Literal{Kind: ir.LitBool, B: true},
				Then: &ir.Block{Stmts: []ir.Stmt{ir.ExprStmt{Value: inner}}},
			},
		}},
	}
	helper := simpleFunction("helper")
	g := BuildFromIR([]*ir.Function{helper, fn})
	if len(g.Edges) != 1 || g.Edges[0].Caller != 1 || g.Edges[0].Callee != 0 {
		t.Fatalf("expected outer -> helper edge through nested if-block, got %v", g.Edges)
	}
}
