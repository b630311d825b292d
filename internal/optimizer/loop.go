package optimizer

import "juliavm/internal/aotir"

// loopOptFunction applies loop-invariant code motion and small-trip-
// count unrolling to every While/For loop in fn, recursing into
// nested bodies first so an inner loop is optimized before its
// invariant statements are considered for hoisting out of an outer
// one.
func loopOptFunction(fn *aotir.AotFunction, cfg PassConfig) int {
	n := 0
	fn.Body = loopOptStmts(fn.Body, cfg, &n)
	return n
}

func loopOptStmts(stmts []aotir.AotStmt, cfg PassConfig, total *int) []aotir.AotStmt {
	out := make([]aotir.AotStmt, 0, len(stmts))
	for _, s := range stmts {
		switch st := s.(type) {
		case aotir.AotFor:
			st.Body = loopOptStmts(st.Body, cfg, total)
			if cfg.EnableUnroll {
				if unrolled, ok := tryUnroll(st, cfg.UnrollLimit); ok {
					*total++
					out = append(out, unrolled...)
					continue
				}
			}
			if cfg.EnableLICM {
				hoisted, rest := hoistInvariants(st.Var, st.Body)
				if len(hoisted) > 0 {
					*total += len(hoisted)
					out = append(out, hoisted...)
					st.Body = rest
				}
			}
			out = append(out, st)
		case aotir.AotWhile:
			st.Body = loopOptStmts(st.Body, cfg, total)
			if cfg.EnableLICM {
				hoisted, rest := hoistInvariants("", st.Body)
				if len(hoisted) > 0 {
					*total += len(hoisted)
					out = append(out, hoisted...)
					st.Body = rest
				}
			}
			out = append(out, st)
		case aotir.AotIf:
			st.Then = loopOptStmts(st.Then, cfg, total)
			st.Else = loopOptStmts(st.Else, cfg, total)
			out = append(out, st)
		default:
			out = append(out, s)
		}
	}
	return out
}

// tryUnroll expands a counted loop whose Start/Stop/Step are all
// constant and whose trip count is within limit into straight-line
// copies of Body with the induction variable substituted by its
// per-iteration literal value.
func tryUnroll(fr aotir.AotFor, limit int) ([]aotir.AotStmt, bool) {
	start, sok := fr.Start.(aotir.AotLiteral)
	stop, pok := fr.Stop.(aotir.AotLiteral)
	if !sok || !pok || start.Kind != stop.Kind {
		return nil, false
	}
	step := int64(1)
	if fr.Step != nil {
		sLit, ok := fr.Step.(aotir.AotLiteral)
		if !ok {
			return nil, false
		}
		step = sLit.I
	}
	if step == 0 {
		return nil, false
	}
	if limit <= 0 {
		limit = 8
	}
	var out []aotir.AotStmt
	count := 0
	for i := start.I; (step > 0 && i <= stop.I) || (step < 0 && i >= stop.I); i += step {
		count++
		if count > limit {
			return nil, false
		}
		out = append(out, substituteStmts(fr.Body, fr.Var, intLit(i))...)
	}
	return out, true
}

// hoistInvariants pulls plain assignments whose value expression
// doesn't mention loopVar and whose target is never itself reassigned
// elsewhere in body out before the loop; anything referencing loopVar
// (or appearing after a statement that isn't a simple invariant
// assignment) stays put, since later statements might depend on
// execution order this pass doesn't otherwise reason about.
func hoistInvariants(loopVar string, body []aotir.AotStmt) ([]aotir.AotStmt, []aotir.AotStmt) {
	reassigned := map[string]int{}
	for _, s := range body {
		if a, ok := s.(aotir.AotAssign); ok {
			reassigned[a.Target]++
		}
	}
	var hoisted, rest []aotir.AotStmt
	movable := true
	for _, s := range body {
		a, ok := s.(aotir.AotAssign)
		if !movable || !ok || reassigned[a.Target] != 1 || referencesVar(a.Value, loopVar) || referencesAnyAssigned(a.Value, reassigned) {
			movable = false
			rest = append(rest, s)
			continue
		}
		hoisted = append(hoisted, a)
	}
	return hoisted, rest
}

func referencesVar(e aotir.AotExpr, name string) bool {
	if name == "" {
		return false
	}
	found := false
	mapExpr(e, func(ex aotir.AotExpr) (aotir.AotExpr, bool) {
		if v, ok := ex.(aotir.AotVar); ok && v.Name == name {
			found = true
		}
		return ex, false
	})
	return found
}

func referencesAnyAssigned(e aotir.AotExpr, reassigned map[string]int) bool {
	found := false
	mapExpr(e, func(ex aotir.AotExpr) (aotir.AotExpr, bool) {
		if v, ok := ex.(aotir.AotVar); ok {
			if _, inLoop := reassigned[v.Name]; inLoop {
				found = true
			}
		}
		return ex, false
	})
	return found
}

// substituteStmts replaces every AotVar named name with value across
// stmts (used by unrolling to bake the induction variable's
// per-iteration literal into the copied body).
func substituteStmts(stmts []aotir.AotStmt, name string, value aotir.AotExpr) []aotir.AotStmt {
	out, _ := mapStmtExprs(stmts, func(e aotir.AotExpr) (aotir.AotExpr, bool) {
		if v, ok := e.(aotir.AotVar); ok && v.Name == name {
			return value, true
		}
		return e, false
	})
	return out
}
