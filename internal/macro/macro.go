// Package macro expands user-defined macro calls at the CST level
// (spec.md §4.3/§9); Expand maps a CST to an expanded CST, and no
// pipeline stage calls it before lowering. A macro body is
// ordinary source text; expansion substitutes call arguments for
// parameters, renames every other identifier the body introduces so it
// can never collide with a name at the call site, and leaves anything
// wrapped in esc(...) untouched so the macro can deliberately splice
// call-site identifiers back in.
//
// The compiler-intrinsic forms (@__FILE__, @__LINE__, @label, @goto,
// @simd, @inbounds, @view, @static, @enum, @isdefined, ...) are never
// registered here: lowering handles those calls itself
// (internal/lowering.lowerMacroCall gives @__FILE__, @__LINE__ and
// @isdefined their meaning and lowers every other one to an opaque
// "@name" builtin call), the same way the teacher's
// compiler special-cased its own builtin call names rather than
// routing them through a generic macro table.
package macro

import "juliavm/internal/cst"

// intrinsicNames lists macro-call names lowering handles on its own;
// Expand leaves calls to these alone even if a same-named def exists,
// since the lowering stage owns their semantics exclusively.
var intrinsicNames = map[string]bool{
	"__FILE__": true, "__DIR__": true, "__LINE__": true, "__MODULE__": true,
	"label": true, "goto": true, "simd": true, "inbounds": true,
	"view": true, "static": true, "enum": true, "isdefined": true,
}

// Def is a registered macro: its parameter names and its unexpanded
// body, both still plain CST (spec.md §4.3's "macros operate on
// syntax, not values").
type Def struct {
	Name   string
	Params []string
	Body   *cst.Node
}

// Registry maps a macro name to its definition, by source order; a
// later `macro` decl with the same name shadows an earlier one, as it
// would in an ordinary top-level redefinition.
type Registry struct {
	byName map[string]*Def
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Def{}}
}

func (r *Registry) Define(d *Def) {
	r.byName[d.Name] = d
}

func (r *Registry) Lookup(name string) (*Def, bool) {
	if intrinsicNames[name] {
		return nil, false
	}
	d, ok := r.byName[name]
	return d, ok
}

// CollectDecls walks root for KMacroDecl nodes, registers each one, and
// returns a copy of root's children with every KMacroDecl removed —
// macro definitions themselves carry no runtime behavior once
// registered (spec.md §9: "a macro declaration is erased after the
// macros it defines are collected").
func CollectDecls(root *cst.Node, r *Registry) *cst.Node {
	out := &cst.Node{Kind: root.Kind, Span: root.Span, Text: root.Text}
	for _, c := range root.Children {
		if c.Kind == cst.KMacroDecl {
			r.Define(declFromNode(c))
			continue
		}
		out.Children = append(out.Children, c)
	}
	return out
}

func declFromNode(n *cst.Node) *Def {
	name := n.Field(cst.FieldName)
	body := n.Field(cst.FieldBody)
	d := &Def{Name: name.Text, Body: body}
	for _, c := range n.Children {
		if c == name || c == body {
			continue
		}
		d.Params = append(d.Params, c.Text)
	}
	return d
}
