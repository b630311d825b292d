package optimizer

import (
	"fmt"
	"strings"

	"juliavm/internal/aotir"
)

// cseFunction finds, within one straight-line statement list, a second
// assignment whose right-hand side is structurally identical to an
// earlier one still in scope (no assignment to either operand has
// happened in between) and rewrites it to reference the earlier
// result's variable instead of recomputing it. Only pure arithmetic
// (AotBinary/AotUnary over vars and literals) is considered: calls may
// have side effects or return a new struct reference each time, so
// they are never deduplicated here.
func cseFunction(fn *aotir.AotFunction) int {
	n := 0
	fn.Body = cseStmts(fn.Body, &n)
	return n
}

func cseStmts(stmts []aotir.AotStmt, total *int) []aotir.AotStmt {
	seen := map[string]string{} // expr signature -> variable holding it
	out := make([]aotir.AotStmt, len(stmts))
	for i, s := range stmts {
		switch st := s.(type) {
		case aotir.AotAssign:
			invalidate(seen, st.Target)
			if sig, ok := cseSignature(st.Value); ok {
				if holder, found := seen[sig]; found {
					st.Value = aotir.AotVar{Name: holder, Type: st.Value.TypeOf()}
					*total++
				} else if !strings.Contains(sig, "var("+st.Target+")") {
					// x = x + 1 reassigns its own operand, so it is not reusable
					seen[sig] = st.Target
				}
			}
			out[i] = st
		case aotir.AotIf:
			st.Then = cseStmts(st.Then, total)
			st.Else = cseStmts(st.Else, total)
			out[i] = st
			invalidateAll(seen)
		case aotir.AotWhile:
			st.Body = cseStmts(st.Body, total)
			out[i] = st
			invalidateAll(seen)
		case aotir.AotFor:
			st.Body = cseStmts(st.Body, total)
			out[i] = st
			invalidateAll(seen)
		default:
			out[i] = s
		}
	}
	return out
}

// invalidate drops every cached signature that either names name as an
// operand (var(name) appears in its rendering) or is itself held in
// name, since reassigning name makes both stale.
func invalidate(seen map[string]string, name string) {
	needle := "var(" + name + ")"
	for sig, holder := range seen {
		if holder == name || strings.Contains(sig, needle) {
			delete(seen, sig)
		}
	}
}

func invalidateAll(seen map[string]string) {
	for k := range seen {
		delete(seen, k)
	}
}

// cseSignature returns a stable textual rendering of e when e is a
// side-effect-free arithmetic expression, so two structurally equal
// trees produce an equal string.
func cseSignature(e aotir.AotExpr) (string, bool) {
	switch ex := e.(type) {
	case aotir.AotLiteral:
		return fmt.Sprintf("lit(%v,%v,%v,%q)", ex.Kind, ex.I, ex.F, ex.S), true
	case aotir.AotVar:
		return "var(" + ex.Name + ")", true
	case aotir.AotBinary:
		l, lok := cseSignature(ex.Left)
		r, rok := cseSignature(ex.Right)
		if !lok || !rok {
			return "", false
		}
		return fmt.Sprintf("bin(%s,%s,%s)", ex.Op, l, r), true
	case aotir.AotUnary:
		o, ok := cseSignature(ex.Operand)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("un(%s,%s)", ex.Op, o), true
	default:
		return "", false
	}
}
