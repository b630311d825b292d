package macro

import "juliavm/internal/cst"

// maxExpansionDepth bounds recursive macro-of-a-macro expansion so a
// macro that (by mistake) expands to a call to itself can't loop
// forever; ordinary nesting depths never come close to this.
const maxExpansionDepth = 64

// Expand registers every KMacroDecl under root, then rewrites every
// KMacroCallExpr reachable from root (including ones introduced by an
// earlier expansion) into its expanded form. The returned tree has no
// KMacroDecl or user-macro KMacroCallExpr nodes left; compiler
// intrinsics are left as KMacroCallExpr for lowering to handle.
func Expand(root *cst.Node) (*cst.Node, *Registry) {
	r := NewRegistry()
	stripped := CollectDecls(root, r)
	counter := 0
	return expandNode(stripped, r, &counter, 0), r
}

func expandNode(n *cst.Node, r *Registry, counter *int, depth int) *cst.Node {
	if n == nil {
		return nil
	}
	if n.Kind == cst.KMacroCallExpr && depth < maxExpansionDepth {
		if name := n.Field(cst.FieldName); name != nil {
			if def, ok := r.Lookup(name.Text); ok {
				expanded := expandCall(n, def, counter)
				return expandNode(expanded, r, counter, depth+1)
			}
		}
	}
	out := &cst.Node{Kind: n.Kind, Span: n.Span, Text: n.Text}
	if n.Fields != nil {
		out.Fields = make(map[cst.Field]int, len(n.Fields))
		for f, idx := range n.Fields {
			out.Fields[f] = idx
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, expandNode(c, r, counter, depth))
	}
	return out
}

// expandCall substitutes call's arguments for def's parameters inside
// a copy of def.Body, renames every other name the body binds to a
// fresh gensym (skipping inside esc(...)), and returns the rewritten
// body's first statement if it is a single-expression block, else the
// block itself (a macro call used in expression position must itself
// produce one expression; spec.md §9 keeps macro bodies single-block).
func expandCall(call *cst.Node, def *Def, counter *int) *cst.Node {
	args := call.Children[1:]
	params := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		params[p] = true
	}
	argByParam := make(map[string]*cst.Node, len(def.Params))
	for i, p := range def.Params {
		if i < len(args) {
			argByParam[p] = args[i]
		}
	}

	bound := map[string]bool{}
	bindingSites(def.Body, params, bound)
	renamed := gensymNames(bound, counter)

	rewritten := rewriteBody(def.Body, argByParam, renamed)
	if rewritten.Kind == cst.KBlock && len(rewritten.Children) == 1 {
		return rewritten.Children[0]
	}
	return rewritten
}

// rewriteBody copies n, substituting argByParam for parameter
// references and renamed for hygienically-bound names; esc(x) unwraps
// to a verbatim copy of x with neither substitution applied to names
// already resolved at the call site (x's own identifiers still get
// substituted if they happen to be parameters, since esc's purpose is
// only to suppress renaming, not parameter binding).
func rewriteBody(n *cst.Node, argByParam map[string]*cst.Node, renamed map[string]string) *cst.Node {
	if n == nil {
		return nil
	}
	if isEscCall(n) && len(n.Children) > 1 {
		return rewriteBody(n.Children[1], argByParam, nil)
	}
	if n.Kind == cst.KIdent {
		if arg, ok := argByParam[n.Text]; ok {
			return cloneNode(arg)
		}
		if fresh, ok := renamed[n.Text]; ok {
			return &cst.Node{Kind: n.Kind, Span: n.Span, Text: fresh}
		}
		return &cst.Node{Kind: n.Kind, Span: n.Span, Text: n.Text}
	}
	out := &cst.Node{Kind: n.Kind, Span: n.Span, Text: n.Text}
	if n.Fields != nil {
		out.Fields = make(map[cst.Field]int, len(n.Fields))
		for f, idx := range n.Fields {
			out.Fields[f] = idx
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, rewriteBody(c, argByParam, renamed))
	}
	return out
}

func cloneNode(n *cst.Node) *cst.Node {
	if n == nil {
		return nil
	}
	out := &cst.Node{Kind: n.Kind, Span: n.Span, Text: n.Text}
	if n.Fields != nil {
		out.Fields = make(map[cst.Field]int, len(n.Fields))
		for f, idx := range n.Fields {
			out.Fields[f] = idx
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, cloneNode(c))
	}
	return out
}
