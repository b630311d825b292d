package codegen

import (
	"fmt"
	"strings"

	"juliavm/internal/aotir"
	"juliavm/internal/ir"
)

// funcEmitter renders one AotFunction's body as Go statements, tracking
// which locals have already been declared via collectLocals so
// assignments always emit plain `=` (see emitFunction).
type funcEmitter struct {
	cfg      CodegenConfig
	declared map[string]bool
}

func (e *funcEmitter) emitFunction(sb *strings.Builder, fn *aotir.AotFunction) {
	if e.cfg.Comments {
		fmt.Fprintf(sb, "// %s is emitted from a compiled function of the same name.\n", fn.Name)
	}
	e.declared = map[string]bool{}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", p.Name, goType(p.Type))
		e.declared[p.Name] = true
	}
	fmt.Fprintf(sb, "func %s(%s) %s {\n", fn.Name, strings.Join(params, ", "), goType(fn.ReturnType))

	// Every local gets a var declaration up front rather than relying on
	// := at first use: this language's locals are function-scoped flat
	// slots (internal/compiler's FuncCompiler gives each one a slot
	// number exactly once, however many nested if/while blocks assign
	// it), but Go's := inside a nested { } block would instead shadow a
	// same-named outer variable — declaring up front sidesteps that
	// mismatch entirely.
	for _, local := range collectLocals(fn.Body) {
		if e.declared[local.name] {
			continue
		}
		e.declared[local.name] = true
		fmt.Fprintf(sb, "\tvar %s %s\n", local.name, goType(local.typ))
	}

	e.emitStmts(sb, fn.Body, 1)
	sb.WriteString("}\n\n")
}

func (e *funcEmitter) indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("\t", depth))
}

func (e *funcEmitter) emitStmts(sb *strings.Builder, stmts []aotir.AotStmt, depth int) {
	for _, s := range stmts {
		e.emitStmt(sb, s, depth)
	}
}

func (e *funcEmitter) emitStmt(sb *strings.Builder, s aotir.AotStmt, depth int) {
	e.indent(sb, depth)
	switch st := s.(type) {
	case aotir.AotAssign:
		fmt.Fprintf(sb, "%s = %s\n", st.Target, e.expr(st.Value))
	case aotir.AotReturn:
		if st.Value == nil {
			sb.WriteString("return\n")
		} else {
			fmt.Fprintf(sb, "return %s\n", e.expr(st.Value))
		}
	case aotir.AotIf:
		fmt.Fprintf(sb, "if %s {\n", e.expr(st.Cond))
		e.emitStmts(sb, st.Then, depth+1)
		e.indent(sb, depth)
		if len(st.Else) > 0 {
			sb.WriteString("} else {\n")
			e.emitStmts(sb, st.Else, depth+1)
			e.indent(sb, depth)
		}
		sb.WriteString("}\n")
	case aotir.AotWhile:
		fmt.Fprintf(sb, "for %s {\n", e.expr(st.Cond))
		e.emitStmts(sb, st.Body, depth+1)
		e.indent(sb, depth)
		sb.WriteString("}\n")
	case aotir.AotFor:
		step := "1"
		cmp := "<="
		if st.Step != nil {
			step = e.expr(st.Step)
			if lit, ok := st.Step.(aotir.AotLiteral); ok && lit.Kind == ir.LitInt && lit.I < 0 {
				cmp = ">="
			}
		}
		fmt.Fprintf(sb, "for %s = %s; %s %s %s; %s += %s {\n",
			st.Var, e.expr(st.Start), st.Var, cmp, e.expr(st.Stop), st.Var, step)
		e.emitStmts(sb, st.Body, depth+1)
		e.indent(sb, depth)
		sb.WriteString("}\n")
	case aotir.AotExprStmt:
		fmt.Fprintf(sb, "_ = %s\n", e.expr(st.Value))
	case aotir.AotDynamicStmt:
		sb.WriteString("panic(\"dynamic statement unsupported in ahead-of-time output\")\n")
	default:
		sb.WriteString("panic(\"codegen: unrecognized statement\")\n")
	}
}

func (e *funcEmitter) expr(x aotir.AotExpr) string {
	switch v := x.(type) {
	case aotir.AotLiteral:
		return e.literal(v)
	case aotir.AotVar:
		return v.Name
	case aotir.AotBinary:
		return e.binary(v)
	case aotir.AotUnary:
		return fmt.Sprintf("(%s%s)", v.Op, e.expr(v.Operand))
	case aotir.AotCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = e.expr(a)
		}
		return fmt.Sprintf("%s(%s)", v.Callee, strings.Join(args, ", "))
	case aotir.AotIndex:
		// spec.md arrays are 1-based; Go slices are 0-based, so every
		// emitted index subtracts one rather than re-deriving the
		// offset at every call site the way internal/vm's OpIndex does.
		if len(v.Indices) == 1 {
			return fmt.Sprintf("%s[(%s)-1]", e.expr(v.Recv), e.expr(v.Indices[0]))
		}
		return "aotUnsupported[any]()"
	case aotir.AotFieldAccess:
		return fmt.Sprintf("%s.%s", e.expr(v.Recv), exportedName(v.Field))
	case aotir.AotDynamicExpr:
		return fmt.Sprintf("aotUnsupported[%s]()", goType(v.Type))
	default:
		return "aotUnsupported[any]()"
	}
}

func (e *funcEmitter) literal(l aotir.AotLiteral) string {
	switch l.Kind {
	case ir.LitInt:
		return fmt.Sprintf("int64(%d)", l.I)
	case ir.LitFloat:
		return fmt.Sprintf("float64(%v)", l.F)
	case ir.LitBool:
		if l.B {
			return "true"
		}
		return "false"
	case ir.LitString:
		return quoteString(l.S)
	case ir.LitChar:
		return quoteRune(rune(l.I))
	case ir.LitNothing, ir.LitMissing:
		return "nil"
	default:
		return "aotUnsupported[any]()"
	}
}

func (e *funcEmitter) binary(b aotir.AotBinary) string {
	l, r := e.expr(b.Left), e.expr(b.Right)
	switch b.Op {
	case "/":
		return fmt.Sprintf("(float64(%s) / float64(%s))", l, r)
	case "%":
		if strings.Contains(goType(b.Left.TypeOf()), "float") || strings.Contains(goType(b.Right.TypeOf()), "float") {
			return fmt.Sprintf("math.Mod(float64(%s), float64(%s))", l, r)
		}
		return fmt.Sprintf("(%s %% %s)", l, r)
	default:
		return fmt.Sprintf("(%s %s %s)", l, b.Op, r)
	}
}
