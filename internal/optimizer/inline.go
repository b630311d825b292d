package optimizer

import "juliavm/internal/aotir"

// runInline replaces call sites to single-statement, non-recursive,
// Pure functions with a substituted copy of their return expression,
// the cheapest form of inlining that still pays for itself: anything
// with real control flow in its body is left as a call rather than
// risk duplicating a loop or branch at every call site.
func runInline(prog *aotir.AotProgram, cfg PassConfig) int {
	candidates := map[string]*aotir.AotFunction{}
	for _, fn := range prog.Functions {
		if isInlineCandidate(fn) {
			candidates[fn.Name] = fn
		}
	}
	total := 0
	for _, fn := range prog.Functions {
		fn.Body, _ = mapStmtExprs(fn.Body, func(e aotir.AotExpr) (aotir.AotExpr, bool) {
			call, ok := e.(aotir.AotCall)
			if !ok {
				return e, false
			}
			callee, ok := candidates[call.Callee]
			if !ok || callee == fn || len(callee.Params) != len(call.Args) {
				return e, false
			}
			ret := callee.Body[0].(aotir.AotReturn)
			subst := map[string]aotir.AotExpr{}
			for i, p := range callee.Params {
				subst[p.Name] = call.Args[i]
			}
			total++
			return substituteExpr(ret.Value, subst), true
		})
	}
	return total
}

// isInlineCandidate accepts exactly the functions score-worthy enough
// to duplicate at every call site: a single bare `return expr`, no
// recursion (the expression can't call the function's own name), and
// no prior dynamic fallback (an un-Pure body isn't safe to splice into
// another function's typed tree).
func isInlineCandidate(fn *aotir.AotFunction) bool {
	if !fn.Pure || len(fn.Body) != 1 {
		return false
	}
	ret, ok := fn.Body[0].(aotir.AotReturn)
	if !ok || ret.Value == nil {
		return false
	}
	return !callsName(ret.Value, fn.Name)
}

func callsName(e aotir.AotExpr, name string) bool {
	found := false
	mapExpr(e, func(ex aotir.AotExpr) (aotir.AotExpr, bool) {
		if c, ok := ex.(aotir.AotCall); ok && c.Callee == name {
			found = true
		}
		return ex, false
	})
	return found
}

func substituteExpr(e aotir.AotExpr, subst map[string]aotir.AotExpr) aotir.AotExpr {
	out, _ := mapExpr(e, func(ex aotir.AotExpr) (aotir.AotExpr, bool) {
		if v, ok := ex.(aotir.AotVar); ok {
			if repl, found := subst[v.Name]; found {
				return repl, true
			}
		}
		return ex, false
	})
	return out
}
