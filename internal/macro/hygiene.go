package macro

import (
	"strconv"

	"juliavm/internal/cst"
)

// bindingSites collects every identifier a macro body introduces as a
// new local binding: assignment, compound-assignment and destructuring
// targets, for-loop variables, let-block bindings, and parameters of
// nested functions. Only these get renamed — renaming every
// identifier would also rename calls to ordinary functions the
// expansion needs to keep calling (spec.md §4.3 hygiene covers
// "names the macro introduces", not every name it mentions).
func bindingSites(n *cst.Node, params map[string]bool, out map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case cst.KAssign:
		if name := n.Field(cst.FieldName); name != nil && !params[name.Text] {
			out[name.Text] = true
		}
	case cst.KCompoundAssign:
		if len(n.Children) > 0 && !params[n.Children[0].Text] {
			out[n.Children[0].Text] = true
		}
	case cst.KDestructuringAssign:
		for i := 0; i < len(n.Children)-1; i++ {
			if !params[n.Children[i].Text] {
				out[n.Children[i].Text] = true
			}
		}
	case cst.KForEachStmt:
		nonBody := n.Children[:len(n.Children)-1]
		for _, c := range nonBody[:len(nonBody)-1] {
			if !params[c.Text] {
				out[c.Text] = true
			}
		}
	case cst.KLetBlock:
		body := n.Field(cst.FieldBody)
		for _, c := range n.Children {
			if c == body || len(c.Children) == 0 {
				continue
			}
			if !params[c.Children[0].Text] {
				out[c.Children[0].Text] = true
			}
		}
	case cst.KParam:
		if len(n.Children) > 0 && !params[n.Children[0].Text] {
			out[n.Children[0].Text] = true
		}
	}
	// esc(x) opts its whole argument subtree out of hygiene collection:
	// names it binds are meant to resolve at the call site, not the
	// macro's own scope.
	if isEscCall(n) {
		return
	}
	for _, c := range n.Children {
		bindingSites(c, params, out)
	}
}

func isEscCall(n *cst.Node) bool {
	if n.Kind != cst.KCallExpr {
		return false
	}
	callee := n.Field(cst.FieldCallee)
	return callee != nil && callee.Kind == cst.KIdent && callee.Text == "esc"
}

// gensymNames allocates one fresh, collision-proof name per binding
// site name, all sharing the expansion's counter so two expansions of
// the same macro never produce the same fresh name twice.
func gensymNames(bound map[string]bool, counter *int) map[string]string {
	renamed := make(map[string]string, len(bound))
	for name := range bound {
		*counter++
		renamed[name] = "#" + name + "#" + strconv.Itoa(*counter)
	}
	return renamed
}
