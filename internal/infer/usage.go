package infer

import (
	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/tfunc"
	"juliavm/internal/types"
)

// InferParameterConstraints infers a LatticeType constraint for each of
// fn's untyped parameters purely from how they're used in its body —
// e.g. `x` used as the left operand of `+` narrows to the Number
// abstraction; `i` used as an array index narrows to Int64 (spec.md
// §4.6 point 1: "usage-based parameter inference").
//
// Grounded on original_source/.../compile/abstract_interp/
// usage_analysis.rs (referenced by type_stability/analyzer.rs's
// `usage_analysis::infer_parameter_constraints` call; the two worked
// examples in analyzer.rs's own test module — `x` used in `x + 1`
// narrows to Number, `i` used in `arr[i]` narrows to Int64 — are
// reproduced as this package's own tests).
func InferParameterConstraints(fn *ir.Function, registry *tfunc.Registry) map[string]lattice.LatticeType {
	constraints := map[string]lattice.LatticeType{}
	untyped := map[string]bool{}
	for _, p := range fn.Params {
		if p.TypeAnnotation == nil {
			untyped[p.Name] = true
			constraints[p.Name] = lattice.Top
		}
	}
	if len(untyped) == 0 {
		return constraints
	}
	walkBlockForUsage(fn.Body, untyped, constraints, registry)
	return constraints
}

func narrow(constraints map[string]lattice.LatticeType, name string, with lattice.LatticeType) {
	cur, ok := constraints[name]
	if !ok || cur.Kind == lattice.KTop {
		constraints[name] = with
		return
	}
	constraints[name] = lattice.Meet(cur, with)
}

func walkBlockForUsage(block *ir.Block, untyped map[string]bool, constraints map[string]lattice.LatticeType, r *tfunc.Registry) {
	if block == nil {
		return
	}
	for _, stmt := range block.Stmts {
		walkStmtForUsage(stmt, untyped, constraints, r)
	}
}

func walkStmtForUsage(stmt ir.Stmt, untyped map[string]bool, constraints map[string]lattice.LatticeType, r *tfunc.Registry) {
	switch s := stmt.(type) {
	case ir.AssignStmt:
		walkExprForUsage(s.Value, untyped, constraints, r)
	case ir.AddAssignStmt:
		walkExprForUsage(s.Value, untyped, constraints, r)
		if untyped[s.Target] {
			narrow(constraints, s.Target, lattice.NumberAbstract())
		}
	case ir.ReturnStmt:
		if s.Value != nil {
			walkExprForUsage(s.Value, untyped, constraints, r)
		}
	case ir.ExprStmt:
		walkExprForUsage(s.Value, untyped, constraints, r)
	case ir.IfStmt:
		walkExprForUsage(s.Cond, untyped, constraints, r)
		walkBlockForUsage(s.Then, untyped, constraints, r)
		walkBlockForUsage(s.Else, untyped, constraints, r)
	case ir.WhileStmt:
		walkExprForUsage(s.Cond, untyped, constraints, r)
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.ForStmt:
		walkExprForUsage(s.Range, untyped, constraints, r)
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.ForEachStmt:
		walkExprForUsage(s.Iter, untyped, constraints, r)
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.ForEachTupleStmt:
		walkExprForUsage(s.Iter, untyped, constraints, r)
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.BlockStmt:
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.TryStmt:
		walkBlockForUsage(s.Body, untyped, constraints, r)
		walkBlockForUsage(s.CatchBody, untyped, constraints, r)
		walkBlockForUsage(s.Finally, untyped, constraints, r)
	case ir.TimedStmt:
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.TestSetStmt:
		walkBlockForUsage(s.Body, untyped, constraints, r)
	case ir.IndexAssignStmt:
		walkExprForUsage(s.Target, untyped, constraints, r)
		walkExprForUsage(s.Value, untyped, constraints, r)
	case ir.FieldAssignStmt:
		walkExprForUsage(s.Target, untyped, constraints, r)
		walkExprForUsage(s.Value, untyped, constraints, r)
	case ir.DictAssignStmt:
		walkExprForUsage(s.Dict, untyped, constraints, r)
		walkExprForUsage(s.Key, untyped, constraints, r)
		walkExprForUsage(s.Value, untyped, constraints, r)
	}
}

func walkExprForUsage(expr ir.Expr, untyped map[string]bool, constraints map[string]lattice.LatticeType, r *tfunc.Registry) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ir.BinaryOp:
		if r.Has(e.Op) {
			if v, ok := e.Left.(*ir.Var); ok && untyped[v.Name] {
				narrow(constraints, v.Name, operandConstraint(e.Op))
			}
			if v, ok := e.Right.(*ir.Var); ok && untyped[v.Name] {
				narrow(constraints, v.Name, operandConstraint(e.Op))
			}
		}
		walkExprForUsage(e.Left, untyped, constraints, r)
		walkExprForUsage(e.Right, untyped, constraints, r)
	case *ir.UnaryOp:
		walkExprForUsage(e.Operand, untyped, constraints, r)
	case *ir.Index:
		walkExprForUsage(e.Recv, untyped, constraints, r)
		for _, idx := range e.Indices {
			if v, ok := idx.(*ir.Var); ok && untyped[v.Name] {
				narrow(constraints, v.Name, lattice.FromType(types.I64T))
			}
			walkExprForUsage(idx, untyped, constraints, r)
		}
	case *ir.Call:
		for _, a := range e.Args {
			walkExprForUsage(a, untyped, constraints, r)
		}
	case *ir.Builtin:
		for _, a := range e.Args {
			walkExprForUsage(a, untyped, constraints, r)
		}
	case *ir.FieldAccess:
		walkExprForUsage(e.Recv, untyped, constraints, r)
	case *ir.Ternary:
		walkExprForUsage(e.Cond, untyped, constraints, r)
		walkExprForUsage(e.Then, untyped, constraints, r)
		walkExprForUsage(e.Else, untyped, constraints, r)
	case *ir.Range:
		walkExprForUsage(e.Start, untyped, constraints, r)
		walkExprForUsage(e.Stop, untyped, constraints, r)
		if e.Step != nil {
			walkExprForUsage(e.Step, untyped, constraints, r)
		}
	}
}

// operandConstraint narrows a binary operator's Var operand: numeric
// operators constrain to Number, comparisons don't narrow their
// operand's own type (a comparison accepts any two comparable values).
func operandConstraint(op string) lattice.LatticeType {
	switch op {
	case "+", "-", "*", "/", "%", "^", "÷":
		return lattice.NumberAbstract()
	default:
		return lattice.Top
	}
}
