package codegen

import (
	"juliavm/internal/aotir"
	"juliavm/internal/types"
)

type localDecl struct {
	name string
	typ  *types.JuliaType
}

// collectLocals walks every statement reachable from stmts — including
// nested if/while/for bodies — and returns one entry per distinct
// assigned name, in first-seen order, using the type of its first
// assignment. See emitFunction for why these are hoisted to var
// declarations instead of letting Go's := infer them block-locally.
func collectLocals(stmts []aotir.AotStmt) []localDecl {
	seen := map[string]bool{}
	var out []localDecl
	var walk func([]aotir.AotStmt)
	add := func(name string, typ *types.JuliaType) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, localDecl{name: name, typ: typ})
	}
	walk = func(body []aotir.AotStmt) {
		for _, s := range body {
			switch st := s.(type) {
			case aotir.AotAssign:
				add(st.Target, st.Value.TypeOf())
			case aotir.AotIf:
				walk(st.Then)
				walk(st.Else)
			case aotir.AotWhile:
				walk(st.Body)
			case aotir.AotFor:
				add(st.Var, types.Primitive("Int64"))
				walk(st.Body)
			}
		}
	}
	walk(stmts)
	return out
}
