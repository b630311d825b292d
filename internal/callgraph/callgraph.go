// Package callgraph builds the interprocedural call graph inference
// walks to order per-function analysis: which function calls which,
// Tarjan-SCC-grouped and topologically (and reverse-topologically)
// sorted, with direct/indirect recursion detection for
// internal/infer's fixed-point iteration (spec.md §4.5).
//
// Grounded on original_source/.../compile/ipo/call_graph.rs: the same
// FuncNode/CallEdge/CallGraph shape, the same BuildFromIR scan (one
// function per statement/expression kind, collecting called names into
// a per-function set), and the same Kahn's-algorithm topological sort
// — extended here with an actual Tarjan SCC pass (the Rust file's own
// doc comment defers recursive-group handling to a sibling
// `detect_sccs` not in the retrieved slice; spec.md §4.5 names Tarjan
// explicitly, so SCCs are built directly against the teacher's
// graph-building idiom rather than reinvented from scratch).
package callgraph

import "juliavm/internal/ir"

// FuncNode is one function in the call graph.
type FuncNode struct {
	FuncID  int
	Name    string
	Callers []int
	Callees []int
}

// CallEdge records one call site's caller -> callee relationship.
type CallEdge struct {
	Caller int
	Callee int
}

// CallGraph is the interprocedural call graph over a Program's
// functions.
type CallGraph struct {
	Nodes     []FuncNode
	Edges     []CallEdge
	nameToID  map[string]int
}

// BuildFromIR scans every function body for calls to other known
// functions (calls to unknown names — builtins, closures, methods
// resolved only at dispatch time — are not edges here).
func BuildFromIR(functions []*ir.Function) *CallGraph {
	g := &CallGraph{nameToID: map[string]int{}}
	for idx, fn := range functions {
		g.Nodes = append(g.Nodes, FuncNode{FuncID: idx, Name: fn.Name})
		g.nameToID[fn.Name] = idx
	}
	for callerID, fn := range functions {
		called := extractCalledFunctions(fn.Body)
		for name := range called {
			calleeID, ok := g.nameToID[name]
			if !ok {
				continue
			}
			g.Edges = append(g.Edges, CallEdge{Caller: callerID, Callee: calleeID})
			g.Nodes[callerID].Callees = append(g.Nodes[callerID].Callees, calleeID)
			g.Nodes[calleeID].Callers = append(g.Nodes[calleeID].Callers, callerID)
		}
	}
	return g
}

func (g *CallGraph) GetFunctionID(name string) (int, bool) {
	id, ok := g.nameToID[name]
	return id, ok
}

func (g *CallGraph) GetNode(funcID int) (FuncNode, bool) {
	if funcID < 0 || funcID >= len(g.Nodes) {
		return FuncNode{}, false
	}
	return g.Nodes[funcID], true
}

// TopologicalOrder returns function IDs roots-first (callers before
// callees) via Kahn's algorithm (functions with no callers start the
// queue). Cyclic groups
// (mutual/direct recursion) are left out of this result — use
// DetectSCCs to recover them.
func (g *CallGraph) TopologicalOrder() []int {
	inDegree := make([]int, len(g.Nodes))
	for i, n := range g.Nodes {
		inDegree[i] = len(n.Callers)
	}
	var queue []int
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	var result []int
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)
		for _, callee := range g.Nodes[id].Callees {
			inDegree[callee]--
			if inDegree[callee] == 0 {
				queue = append(queue, callee)
			}
		}
	}
	return result
}

// ReverseTopologicalOrder returns function IDs leaves-first (callees
// before callers).
func (g *CallGraph) ReverseTopologicalOrder() []int {
	order := g.TopologicalOrder()
	out := make([]int, len(order))
	for i, id := range order {
		out[len(order)-1-i] = id
	}
	return out
}

// IsRecursive reports whether funcID calls itself directly or
// transitively through other functions.
func (g *CallGraph) IsRecursive(funcID int) bool {
	visited := map[int]bool{}
	var dfs func(current int) bool
	dfs = func(current int) bool {
		if visited[current] {
			return false
		}
		visited[current] = true
		node, ok := g.GetNode(current)
		if !ok {
			return false
		}
		for _, callee := range node.Callees {
			if callee == funcID {
				return true
			}
			if dfs(callee) {
				return true
			}
		}
		return false
	}
	return dfs(funcID)
}

// DetectSCCs partitions the graph into strongly connected components
// via Tarjan's algorithm, each returned in reverse-topological order of
// discovery (an SCC's dependencies come before it, matching
// ReverseTopologicalOrder's leaves-first convention once flattened). A
// singleton SCC containing a function that doesn't call itself is a
// single ordinary function; a singleton that does call itself is
// direct self-recursion; an SCC with more than one member is a mutual-
// recursion group inference must analyze together as one fixed-point
// unit (spec.md §4.5).
func (g *CallGraph) DetectSCCs() [][]int {
	t := &tarjan{
		g:       g,
		index:   map[int]int{},
		lowlink: map[int]int{},
		onStack: map[int]bool{},
	}
	for _, n := range g.Nodes {
		if _, seen := t.index[n.FuncID]; !seen {
			t.strongConnect(n.FuncID)
		}
	}
	return t.sccs
}

type tarjan struct {
	g        *CallGraph
	index    map[int]int
	lowlink  map[int]int
	onStack  map[int]bool
	stack    []int
	counter  int
	sccs     [][]int
}

func (t *tarjan) strongConnect(v int) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	node, _ := t.g.GetNode(v)
	for _, w := range node.Callees {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []int
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

func extractCalledFunctions(block *ir.Block) map[string]bool {
	called := map[string]bool{}
	if block == nil {
		return called
	}
	for _, stmt := range block.Stmts {
		extractCallsFromStmt(stmt, called)
	}
	return called
}

func mergeBlock(block *ir.Block, into map[string]bool) {
	for name := range extractCalledFunctions(block) {
		into[name] = true
	}
}

func extractCallsFromStmt(stmt ir.Stmt, called map[string]bool) {
	switch s := stmt.(type) {
	case ir.AssignStmt:
		extractCallsFromExpr(s.Value, called)
	case ir.AddAssignStmt:
		extractCallsFromExpr(s.Value, called)
	case ir.ReturnStmt:
		if s.Value != nil {
			extractCallsFromExpr(s.Value, called)
		}
	case ir.ExprStmt:
		extractCallsFromExpr(s.Value, called)
	case ir.IfStmt:
		extractCallsFromExpr(s.Cond, called)
		mergeBlock(s.Then, called)
		mergeBlock(s.Else, called)
	case ir.WhileStmt:
		extractCallsFromExpr(s.Cond, called)
		mergeBlock(s.Body, called)
	case ir.ForStmt:
		extractCallsFromExpr(s.Range, called)
		mergeBlock(s.Body, called)
	case ir.ForEachStmt:
		extractCallsFromExpr(s.Iter, called)
		mergeBlock(s.Body, called)
	case ir.ForEachTupleStmt:
		extractCallsFromExpr(s.Iter, called)
		mergeBlock(s.Body, called)
	case ir.BlockStmt:
		mergeBlock(s.Body, called)
	case ir.TryStmt:
		mergeBlock(s.Body, called)
		mergeBlock(s.CatchBody, called)
		mergeBlock(s.Finally, called)
	case ir.TimedStmt:
		mergeBlock(s.Body, called)
	case ir.TestSetStmt:
		mergeBlock(s.Body, called)
	case ir.TestStmt:
		extractCallsFromExpr(s.Cond, called)
	case ir.TestThrowsStmt:
		mergeBlock(s.Body, called)
	case ir.IndexAssignStmt:
		extractCallsFromExpr(s.Target, called)
		extractCallsFromExpr(s.Value, called)
	case ir.FieldAssignStmt:
		extractCallsFromExpr(s.Target, called)
		extractCallsFromExpr(s.Value, called)
	case ir.DestructuringAssignStmt:
		extractCallsFromExpr(s.Value, called)
	case ir.DictAssignStmt:
		extractCallsFromExpr(s.Dict, called)
		extractCallsFromExpr(s.Key, called)
		extractCallsFromExpr(s.Value, called)
	case ir.BreakStmt, ir.ContinueStmt, ir.UsingStmt, ir.ExportStmt,
		ir.FunctionDefStmt, ir.LabelStmt, ir.GotoStmt, ir.EnumDefStmt:
		// No nested calls.
	}
}

func extractCallsFromExpr(expr ir.Expr, called map[string]bool) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ir.Call:
		if name, ok := e.Callee.(*ir.Var); ok {
			called[name.Name] = true
		}
		for _, a := range e.Args {
			extractCallsFromExpr(a, called)
		}
		for _, v := range e.KwArgs {
			extractCallsFromExpr(v, called)
		}
	case *ir.ModuleCall:
		extractCallsFromExpr(e.Call, called)
	case *ir.BinaryOp:
		extractCallsFromExpr(e.Left, called)
		extractCallsFromExpr(e.Right, called)
	case *ir.UnaryOp:
		extractCallsFromExpr(e.Operand, called)
	case *ir.FieldAccess:
		extractCallsFromExpr(e.Recv, called)
	case *ir.Ternary:
		extractCallsFromExpr(e.Cond, called)
		extractCallsFromExpr(e.Then, called)
		extractCallsFromExpr(e.Else, called)
	case *ir.ArrayLiteral:
		for _, el := range e.Elements {
			extractCallsFromExpr(el, called)
		}
	case *ir.TupleLiteral:
		for _, el := range e.Elements {
			extractCallsFromExpr(el, called)
		}
	case *ir.NamedTupleLiteral:
		for _, el := range e.Elements {
			extractCallsFromExpr(el, called)
		}
	case *ir.Index:
		extractCallsFromExpr(e.Recv, called)
		for _, idx := range e.Indices {
			extractCallsFromExpr(idx, called)
		}
	case *ir.Range:
		extractCallsFromExpr(e.Start, called)
		if e.Step != nil {
			extractCallsFromExpr(e.Step, called)
		}
		extractCallsFromExpr(e.Stop, called)
	case *ir.Comprehension:
		extractCallsFromExpr(e.Result, called)
		extractCallsFromExpr(e.Iter, called)
		if e.Filter != nil {
			extractCallsFromExpr(e.Filter, called)
		}
	case *ir.MultiComprehension:
		extractCallsFromExpr(e.Result, called)
		for _, it := range e.Iters {
			extractCallsFromExpr(it, called)
		}
		if e.Filter != nil {
			extractCallsFromExpr(e.Filter, called)
		}
	case *ir.Generator:
		extractCallsFromExpr(e.Result, called)
		extractCallsFromExpr(e.Iter, called)
		if e.Filter != nil {
			extractCallsFromExpr(e.Filter, called)
		}
	case *ir.DictLiteral:
		for _, p := range e.Pairs {
			extractCallsFromExpr(p.Key, called)
			extractCallsFromExpr(p.Value, called)
		}
	case *ir.Pair:
		extractCallsFromExpr(e.Key, called)
		extractCallsFromExpr(e.Value, called)
	case *ir.LetBlock:
		for _, b := range e.Bindings {
			extractCallsFromExpr(b.Value, called)
		}
		mergeBlock(e.Body, called)
	case *ir.StringConcat:
		for _, p := range e.Parts {
			extractCallsFromExpr(p, called)
		}
	case *ir.AssignExpr:
		extractCallsFromExpr(e.Value, called)
	case *ir.ReturnExpr:
		if e.Value != nil {
			extractCallsFromExpr(e.Value, called)
		}
	case *ir.Builtin:
		for _, a := range e.Args {
			extractCallsFromExpr(a, called)
		}
	case *ir.New:
		for _, a := range e.Args {
			extractCallsFromExpr(a, called)
		}
	case *ir.DynamicTypeConstruct:
		extractCallsFromExpr(e.TypeExpr, called)
		for _, a := range e.Args {
			extractCallsFromExpr(a, called)
		}
	default:
		// Literal, Var, FunctionRef, SliceAll, BreakExpr, ContinueExpr,
		// TypedEmptyArray, QuoteLiteral: no nested calls.
	}
}
