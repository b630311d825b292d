package effects

import (
	"juliavm/internal/callgraph"
	"juliavm/internal/ir"
)

// maxIterations bounds the worklist fixpoint so a bug in effect
// computation (one that keeps producing a "changed" result forever)
// can't hang analysis — spec.md §4.7's "cap iterations to prevent
// pathological cycles".
const maxIterations = 100

// Propagate computes a fixed-point effects summary for every function
// in functions, propagating callee effects to callers via a worklist
// over the reverse call graph (internal/callgraph, reused rather than
// rebuilt — propagation.rs's own CallGraphNode/add_call/get_callees is
// exactly internal/callgraph.FuncNode/BuildFromIR/Callers under a
// different name).
func Propagate(functions []*ir.Function) map[string]Effects {
	g := callgraph.BuildFromIR(functions)

	byID := make([]Effects, len(functions))
	inWorklist := make([]bool, len(functions))
	worklist := make([]int, 0, len(functions))
	for i := range functions {
		byID[i] = Arbitrary()
		worklist = append(worklist, i)
		inWorklist[i] = true
	}

	iteration := 0
	for len(worklist) > 0 {
		iteration++
		if iteration > maxIterations {
			break
		}
		id := worklist[0]
		worklist = worklist[1:]
		inWorklist[id] = false

		newEff := computeFunctionEffects(functions[id], g, byID)
		if newEff != byID[id] {
			byID[id] = newEff
			if node, ok := g.GetNode(id); ok {
				for _, callerID := range node.Callers {
					if !inWorklist[callerID] {
						worklist = append(worklist, callerID)
						inWorklist[callerID] = true
					}
				}
			}
		}
	}

	result := make(map[string]Effects, len(functions))
	for i, fn := range functions {
		result[fn.Name] = byID[i]
	}
	return result
}

func computeFunctionEffects(fn *ir.Function, g *callgraph.CallGraph, byID []Effects) Effects {
	return computeBlockEffects(fn.Body, g, byID)
}

func computeBlockEffects(block *ir.Block, g *callgraph.CallGraph, byID []Effects) Effects {
	result := Total()
	if block == nil {
		return result
	}
	for _, stmt := range block.Stmts {
		result = result.Merge(computeStmtEffects(stmt, g, byID))
	}
	return result
}

func loopEffects(eff Effects) Effects {
	eff.Terminates = false
	return eff
}

func computeStmtEffects(stmt ir.Stmt, g *callgraph.CallGraph, byID []Effects) Effects {
	switch s := stmt.(type) {
	case ir.AssignStmt:
		return computeExprEffects(s.Value, g, byID)
	case ir.AddAssignStmt:
		return computeExprEffects(s.Value, g, byID)
	case ir.ExprStmt:
		return computeExprEffects(s.Value, g, byID)
	case ir.ForStmt:
		eff := computeExprEffects(s.Range, g, byID)
		eff = eff.Merge(computeBlockEffects(s.Body, g, byID))
		return loopEffects(eff)
	case ir.ForEachStmt:
		eff := computeExprEffects(s.Iter, g, byID)
		eff = eff.Merge(computeBlockEffects(s.Body, g, byID))
		return loopEffects(eff)
	case ir.ForEachTupleStmt:
		eff := computeExprEffects(s.Iter, g, byID)
		eff = eff.Merge(computeBlockEffects(s.Body, g, byID))
		return loopEffects(eff)
	case ir.WhileStmt:
		eff := computeExprEffects(s.Cond, g, byID)
		eff = eff.Merge(computeBlockEffects(s.Body, g, byID))
		return loopEffects(eff)
	case ir.IfStmt:
		eff := computeExprEffects(s.Cond, g, byID)
		eff = eff.Merge(computeBlockEffects(s.Then, g, byID))
		eff = eff.Merge(computeBlockEffects(s.Else, g, byID))
		return eff
	case ir.ReturnStmt:
		if s.Value == nil {
			return Total()
		}
		return computeExprEffects(s.Value, g, byID)
	case ir.BlockStmt:
		return computeBlockEffects(s.Body, g, byID)
	case ir.TryStmt:
		eff := computeBlockEffects(s.Body, g, byID)
		eff = eff.Merge(computeBlockEffects(s.CatchBody, g, byID))
		eff = eff.Merge(computeBlockEffects(s.Finally, g, byID))
		// A try block's whole purpose is surviving a throw from its
		// body, so the statement as a whole never propagates one.
		eff.NoThrow = true
		return eff
	case ir.TimedStmt:
		return computeBlockEffects(s.Body, g, byID)
	case ir.TestSetStmt:
		return computeBlockEffects(s.Body, g, byID)
	case ir.IndexAssignStmt:
		eff := computeExprEffects(s.Target, g, byID)
		eff.NoMutate = false
		return eff.Merge(computeExprEffects(s.Value, g, byID))
	case ir.FieldAssignStmt:
		eff := computeExprEffects(s.Target, g, byID)
		eff.NoMutate = false
		return eff.Merge(computeExprEffects(s.Value, g, byID))
	case ir.DictAssignStmt:
		eff := computeExprEffects(s.Dict, g, byID)
		eff.NoMutate = false
		eff = eff.Merge(computeExprEffects(s.Key, g, byID))
		return eff.Merge(computeExprEffects(s.Value, g, byID))
	case ir.DestructuringAssignStmt:
		return computeExprEffects(s.Value, g, byID)
	default:
		return Total()
	}
}

func computeExprEffects(expr ir.Expr, g *callgraph.CallGraph, byID []Effects) Effects {
	if expr == nil {
		return Total()
	}
	switch e := expr.(type) {
	case *ir.Call:
		callee := Arbitrary()
		if v, ok := e.Callee.(*ir.Var); ok {
			if id, ok := g.GetFunctionID(v.Name); ok && id < len(byID) {
				callee = byID[id]
			}
		}
		result := callee
		for _, a := range e.Args {
			result = result.Merge(computeExprEffects(a, g, byID))
		}
		for _, a := range e.KwArgs {
			result = result.Merge(computeExprEffects(a, g, byID))
		}
		return result
	case *ir.ModuleCall:
		return computeExprEffects(e.Call, g, byID)
	case *ir.Builtin:
		result := InferBuiltinEffects(e.Name)
		for _, a := range e.Args {
			result = result.Merge(computeExprEffects(a, g, byID))
		}
		return result
	case *ir.BinaryOp:
		return computeExprEffects(e.Left, g, byID).Merge(computeExprEffects(e.Right, g, byID))
	case *ir.UnaryOp:
		return computeExprEffects(e.Operand, g, byID)
	case *ir.ArrayLiteral:
		result := Total()
		for _, el := range e.Elements {
			result = result.Merge(computeExprEffects(el, g, byID))
		}
		return result
	case *ir.TupleLiteral:
		result := Total()
		for _, el := range e.Elements {
			result = result.Merge(computeExprEffects(el, g, byID))
		}
		return result
	case *ir.NamedTupleLiteral:
		result := Total()
		for _, el := range e.Elements {
			result = result.Merge(computeExprEffects(el, g, byID))
		}
		return result
	case *ir.Range:
		result := computeExprEffects(e.Start, g, byID).Merge(computeExprEffects(e.Stop, g, byID))
		if e.Step != nil {
			result = result.Merge(computeExprEffects(e.Step, g, byID))
		}
		return result
	case *ir.Index:
		result := computeExprEffects(e.Recv, g, byID)
		for _, idx := range e.Indices {
			result = result.Merge(computeExprEffects(idx, g, byID))
		}
		return result
	case *ir.FieldAccess:
		return computeExprEffects(e.Recv, g, byID)
	case *ir.Comprehension:
		return computeExprEffects(e.Result, g, byID)
	case *ir.Generator:
		return computeExprEffects(e.Result, g, byID)
	case *ir.MultiComprehension:
		return computeExprEffects(e.Result, g, byID)
	case *ir.Ternary:
		eff := computeExprEffects(e.Cond, g, byID)
		eff = eff.Merge(computeExprEffects(e.Then, g, byID))
		return eff.Merge(computeExprEffects(e.Else, g, byID))
	case *ir.StringConcat:
		result := Total()
		for _, p := range e.Parts {
			result = result.Merge(computeExprEffects(p, g, byID))
		}
		return result
	case *ir.AssignExpr:
		return computeExprEffects(e.Value, g, byID)
	case *ir.DictLiteral:
		result := Total()
		for _, p := range e.Pairs {
			result = result.Merge(computeExprEffects(p.Key, g, byID))
			result = result.Merge(computeExprEffects(p.Value, g, byID))
		}
		return result
	default:
		return InferLeafEffects()
	}
}
