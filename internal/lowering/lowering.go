// Package lowering walks the CST (juliavm/internal/cst) and produces
// core IR (juliavm/internal/ir), per spec.md §4.3. Responsibilities:
// macro expansion for the compiler-intrinsic forms, scope flattening
// (`begin...end` introduces no scope, `let` does), and collecting
// top-level functions/structs/usings so later stages don't re-walk the
// tree.
//
// Grounded on the teacher's lowering-adjacent compiler passes
// (internal/compiler/stmt_compiler.go, read for its "one function per
// statement kind, diagnostics bag on the side" shape) and generalized
// to emit IR nodes instead of bytecode directly, since the spec
// interposes a typed core-IR stage between parsing and codegen.
package lowering

import (
	"strconv"
	"strings"

	"juliavm/internal/cst"
	"juliavm/internal/diag"
	"juliavm/internal/ir"
)

type Lowerer struct {
	file  string
	Diags *diag.Bag
	// gensym counts fresh hygienic names per macro expansion so two
	// expansions of the same macro never collide (spec.md §4.3 hygiene).
	gensym int
}

func New(file string) *Lowerer {
	return &Lowerer{file: file, Diags: &diag.Bag{}}
}

// LowerFile walks a KSourceFile node into a Program. Top-level
// FunctionDef/StructDef/etc. are collected; everything else becomes
// part of Main.
func (l *Lowerer) LowerFile(root *cst.Node) *ir.Program {
	prog := &ir.Program{Main: &ir.Block{Span: root.Span}}
	for _, child := range root.Children {
		l.lowerTopLevel(child, prog)
	}
	return prog
}

func (l *Lowerer) lowerTopLevel(n *cst.Node, prog *ir.Program) {
	switch n.Kind {
	case cst.KFunctionDecl:
		prog.Functions = append(prog.Functions, l.lowerFunctionDecl(n))
	case cst.KStructDecl:
		prog.Structs = append(prog.Structs, l.lowerStructDecl(n))
	case cst.KAbstractDecl:
		prog.AbstractTypes = append(prog.AbstractTypes, l.lowerAbstractDecl(n))
	case cst.KEnumDecl:
		prog.Enums = append(prog.Enums, l.lowerEnumDecl(n))
	case cst.KModuleDecl:
		prog.Modules = append(prog.Modules, l.lowerModuleDecl(n))
	case cst.KMacroDecl:
		prog.Macros = append(prog.Macros, l.lowerMacroDecl(n))
	case cst.KUsingStmt:
		prog.Usings = append(prog.Usings, l.usingImport(n))
	case cst.KExportStmt:
		// Top-level export with no enclosing module has no effect and
		// is dropped here.
	default:
		prog.Main.Stmts = append(prog.Main.Stmts, l.flattenStmt(n)...)
	}
}

// flattenStmt lowers one CST statement node, returning possibly more
// than one ir.Stmt: a bare KBlock (from `begin...end`) flattens into
// its parent's statement list instead of nesting (spec.md §4.3).
func (l *Lowerer) flattenStmt(n *cst.Node) []ir.Stmt {
	if n.Kind == cst.KBlock {
		var out []ir.Stmt
		for _, c := range n.Children {
			out = append(out, l.flattenStmt(c)...)
		}
		return out
	}
	return []ir.Stmt{l.lowerStmt(n)}
}

func (l *Lowerer) lowerBlock(n *cst.Node) *ir.Block {
	b := &ir.Block{Span: n.Span}
	for _, c := range n.Children {
		b.Stmts = append(b.Stmts, l.flattenStmt(c)...)
	}
	return b
}

func (l *Lowerer) lowerStmt(n *cst.Node) ir.Stmt {
	switch n.Kind {
	case cst.KAssign:
		return l.lowerAssign(n)
	case cst.KCompoundAssign:
		return l.lowerCompoundAssign(n)
	case cst.KReturnStmt:
		var v ir.Expr
		if len(n.Children) > 0 {
			v = l.lowerExpr(n.Children[0])
		}
		return ir.ReturnStmt{StmtPos: ir.StmtPos{Span: n.Span}, Value: v}
	case cst.KBreakStmt:
		return ir.BreakStmt{StmtPos: ir.StmtPos{Span: n.Span}}
	case cst.KContinueStmt:
		return ir.ContinueStmt{StmtPos: ir.StmtPos{Span: n.Span}}
	case cst.KIfExpr:
		return l.lowerIf(n)
	case cst.KWhileStmt:
		cond := l.lowerExpr(n.Field(cst.FieldCondition))
		body := l.lowerBlock(n.Field(cst.FieldBody))
		return ir.WhileStmt{StmtPos: ir.StmtPos{Span: n.Span}, Cond: cond, Body: body}
	case cst.KForEachStmt:
		return l.lowerForEach(n)
	case cst.KLetBlock:
		return l.lowerLetStmt(n)
	case cst.KTryStmt:
		return l.lowerTry(n)
	case cst.KThrowStmt:
		return ir.ExprStmt{StmtPos: ir.StmtPos{Span: n.Span}, Value: &ir.Call{
			ExprPos: ir.ExprPos{Span: n.Span},
			Callee:   &ir.FunctionRef{ExprPos: ir.ExprPos{Span: n.Span}, Name: "throw"},
			Args:     []ir.Expr{l.lowerExpr(n.Children[0])},
		}}
	case cst.KFunctionDecl:
		return ir.FunctionDefStmt{StmtPos: ir.StmtPos{Span: n.Span}, Fn: l.lowerFunctionDecl(n)}
	case cst.KUsingStmt:
		return ir.UsingStmt{StmtPos: ir.StmtPos{Span: n.Span}, Import: l.usingImport(n)}
	case cst.KExportStmt:
		names := make([]string, len(n.Children))
		for i, c := range n.Children {
			names[i] = c.Text
		}
		return ir.ExportStmt{StmtPos: ir.StmtPos{Span: n.Span}, Names: names}
	case cst.KIndexAssign:
		return ir.IndexAssignStmt{
			StmtPos: ir.StmtPos{Span: n.Span},
			Target: &ir.Index{ExprPos: ir.ExprPos{Span: n.Children[0].Span}, Recv: l.lowerExpr(n.Children[0]), Indices: []ir.Expr{l.lowerExpr(n.Children[1])}},
			Value:  l.lowerExpr(n.Children[2]),
		}
	case cst.KFieldAssign:
		recv := n.Field(cst.FieldTarget)
		return ir.FieldAssignStmt{
			StmtPos: ir.StmtPos{Span: n.Span},
			Target: &ir.FieldAccess{ExprPos: ir.ExprPos{Span: recv.Span}, Recv: l.lowerExpr(recv), Field: n.Field(cst.FieldName).Text},
			Value:  l.lowerExpr(n.Field(cst.FieldValue)),
		}
	case cst.KDestructuringAssign:
		targets := make([]string, len(n.Children)-1)
		for i := 0; i < len(n.Children)-1; i++ {
			targets[i] = n.Children[i].Text
		}
		return ir.DestructuringAssignStmt{StmtPos: ir.StmtPos{Span: n.Span}, Targets: targets, Value: l.lowerExpr(n.Children[len(n.Children)-1])}
	case cst.KExprStmt:
		return ir.ExprStmt{StmtPos: ir.StmtPos{Span: n.Span}, Value: l.lowerExpr(n.Children[0])}
	case cst.KError:
		l.Diags.Add(diag.NewParseError("malformed statement", l.file, n.Span))
		return ir.ExprStmt{StmtPos: ir.StmtPos{Span: n.Span}, Value: &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitNothing}}
	default:
		// Fallback: treat any bare expression-shaped node as a statement.
		return ir.ExprStmt{StmtPos: ir.StmtPos{Span: n.Span}, Value: l.lowerExpr(n)}
	}
}

func (l *Lowerer) lowerAssign(n *cst.Node) ir.Stmt {
	target := n.Field(cst.FieldName)
	value := n.Field(cst.FieldValue)
	return ir.AssignStmt{StmtPos: ir.StmtPos{Span: n.Span}, Target: target.Text, Value: l.lowerExpr(value)}
}

func (l *Lowerer) lowerCompoundAssign(n *cst.Node) ir.Stmt {
	return ir.AddAssignStmt{StmtPos: ir.StmtPos{Span: n.Span}, Op: n.Text, Target: n.Children[0].Text, Value: l.lowerExpr(n.Children[1])}
}

func (l *Lowerer) lowerIf(n *cst.Node) ir.Stmt {
	cond := l.lowerExpr(n.Field(cst.FieldCondition))
	then := l.lowerBlock(n.Field(cst.FieldThen))
	var elseBlock *ir.Block
	if els := n.Field(cst.FieldElse); els != nil {
		if els.Kind == cst.KIfExpr {
			// elseif chain: wrap the nested if in a one-statement block.
			elseBlock = &ir.Block{Span: els.Span, Stmts: []ir.Stmt{l.lowerIf(els)}}
		} else {
			elseBlock = l.lowerBlock(els)
		}
	}
	return ir.IfStmt{StmtPos: ir.StmtPos{Span: n.Span}, Cond: cond, Then: then, Else: elseBlock}
}

func (l *Lowerer) lowerForEach(n *cst.Node) ir.Stmt {
	body := n.Field(cst.FieldBody)
	// Distinguish `for v in iter` (3 children: var, iter, body) from the
	// tuple form `for (a,b) in iter` (N names, iter, body).
	nonBody := n.Children[:len(n.Children)-1]
	if len(nonBody) == 2 {
		return ir.ForEachStmt{StmtPos: ir.StmtPos{Span: n.Span}, Var: nonBody[0].Text, Iter: l.lowerExpr(nonBody[1]), Body: l.lowerBlock(body)}
	}
	vars := make([]string, len(nonBody)-1)
	for i := 0; i < len(nonBody)-1; i++ {
		vars[i] = nonBody[i].Text
	}
	return ir.ForEachTupleStmt{StmtPos: ir.StmtPos{Span: n.Span}, Vars: vars, Iter: l.lowerExpr(nonBody[len(nonBody)-1]), Body: l.lowerBlock(body)}
}

func (l *Lowerer) lowerLetStmt(n *cst.Node) ir.Stmt {
	body := n.Field(cst.FieldBody)
	var bindings []ir.AssignStmt
	for _, c := range n.Children {
		if c == body {
			continue
		}
		bindings = append(bindings, ir.AssignStmt{StmtPos: ir.StmtPos{Span: c.Span}, Target: c.Children[0].Text, Value: l.lowerExpr(c.Children[1])})
	}
	return ir.ExprStmt{StmtPos: ir.StmtPos{Span: n.Span}, Value: &ir.LetBlock{ExprPos: ir.ExprPos{Span: n.Span}, Bindings: bindings, Body: l.lowerBlock(body)}}
}

func (l *Lowerer) lowerTry(n *cst.Node) ir.Stmt {
	body := l.lowerBlock(n.Children[0])
	t := ir.TryStmt{StmtPos: ir.StmtPos{Span: n.Span}, Body: body}
	rest := n.Children[1:]
	idx := 0
	if idx < len(rest) && rest[idx].Kind == cst.KIdent {
		t.CatchVar = rest[idx].Text
		idx++
	}
	if idx < len(rest) && rest[idx].Kind == cst.KBlock {
		// ambiguous whether this block is the catch body or finally body;
		// presence of a catch var or a preceding `catch` always yields a
		// catch body first in the parser's child ordering.
		t.CatchBody = l.lowerBlock(rest[idx])
		idx++
	}
	if idx < len(rest) {
		t.Finally = l.lowerBlock(rest[idx])
	}
	return t
}

func (l *Lowerer) lowerFunctionDecl(n *cst.Node) *ir.Function {
	name := n.Field(cst.FieldName)
	body := n.Field(cst.FieldBody)
	fn := &ir.Function{Name: name.Text, Body: l.lowerBlock(body), Span: n.Span}
	for _, c := range n.Children {
		if c == name || c == body {
			continue
		}
		switch c.Kind {
		case cst.KWhereClause:
			fn.TypeParams = append(fn.TypeParams, c.Children[0].Text)
		case cst.KParam:
			fn.Params = append(fn.Params, l.lowerParam(c))
		case cst.KTypeAnnotation:
			fn.ReturnType = l.lowerTypeRef(c)
		}
	}
	return fn
}

func (l *Lowerer) lowerParam(n *cst.Node) ir.TypedParam {
	p := ir.TypedParam{Name: n.Children[0].Text, Span: n.Span}
	if len(n.Children) > 1 {
		p.TypeAnnotation = l.lowerTypeRef(n.Children[1])
	}
	return p
}

// lowerTypeRef converts a KTypeAnnotation node (parser.typeExpr: a name
// leaf followed by zero or more nested type-parameter KTypeAnnotation
// children, e.g. `Vector{Int64}`) into a TypeRef.
func (l *Lowerer) lowerTypeRef(n *cst.Node) *ir.TypeRef {
	if n == nil {
		return nil
	}
	t := &ir.TypeRef{Name: n.Children[0].Text, Span: n.Span}
	for _, c := range n.Children[1:] {
		t.Args = append(t.Args, l.lowerTypeRef(c))
	}
	return t
}

func (l *Lowerer) lowerStructDecl(n *cst.Node) *ir.StructDef {
	name := n.Field(cst.FieldName)
	def := &ir.StructDef{Name: name.Text, Span: n.Span}
	for _, c := range n.Children {
		if c == name {
			continue
		}
		switch c.Kind {
		case cst.KTypeAnnotation:
			def.Supertype = l.lowerTypeRef(c)
		case cst.KParam:
			def.Fields = append(def.Fields, l.lowerParam(c))
		}
	}
	return def
}

func (l *Lowerer) lowerAbstractDecl(n *cst.Node) *ir.AbstractDef {
	name := n.Field(cst.FieldName)
	def := &ir.AbstractDef{Name: name.Text, Span: n.Span}
	for _, c := range n.Children {
		if c != name {
			def.Supertype = l.lowerTypeRef(c)
		}
	}
	return def
}

func (l *Lowerer) lowerEnumDecl(n *cst.Node) *ir.EnumDef {
	name := n.Field(cst.FieldName)
	def := &ir.EnumDef{Name: name.Text, Span: n.Span}
	for _, c := range n.Children {
		if c == name {
			continue
		}
		def.Variants = append(def.Variants, c.Text)
		def.Values = append(def.Values, nil)
	}
	return def
}

func (l *Lowerer) lowerModuleDecl(n *cst.Node) *ir.Module {
	name := n.Field(cst.FieldName)
	body := n.Field(cst.FieldBody)
	mod := &ir.Module{Name: name.Text, Body: l.lowerBlock(body)}
	for _, stmt := range mod.Body.Stmts {
		switch s := stmt.(type) {
		case ir.FunctionDefStmt:
			mod.Functions = append(mod.Functions, s.Fn)
		case ir.UsingStmt:
			mod.Usings = append(mod.Usings, s.Import)
		case ir.ExportStmt:
			mod.Exports = append(mod.Exports, s.Names...)
		}
	}
	return mod
}

func (l *Lowerer) lowerMacroDecl(n *cst.Node) *ir.MacroDef {
	name := n.Field(cst.FieldName)
	body := n.Field(cst.FieldBody)
	def := &ir.MacroDef{Name: name.Text, Span: n.Span}
	for _, c := range n.Children {
		if c == name || c == body {
			continue
		}
		def.Params = append(def.Params, c.Text)
	}
	def.Body = l.lowerBlock(body)
	return def
}

func (l *Lowerer) usingImport(n *cst.Node) ir.UsingImport {
	path := make([]string, len(n.Children))
	for i, c := range n.Children {
		path[i] = c.Text
	}
	return ir.UsingImport{Path: path, Span: n.Span}
}

// --- expressions ---

func (l *Lowerer) lowerExpr(n *cst.Node) ir.Expr {
	if n == nil {
		return &ir.Literal{Kind: ir.LitNothing}
	}
	switch n.Kind {
	case cst.KLiteral:
		return l.lowerLiteral(n)
	case cst.KSymbolLit:
		return &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitSymbol, S: n.Text}
	case cst.KInterpString:
		return l.lowerInterpString(n)
	case cst.KIdent:
		return &ir.Var{ExprPos: ir.ExprPos{Span: n.Span}, Name: n.Text}
	case cst.KBinaryExpr:
		return &ir.BinaryOp{ExprPos: ir.ExprPos{Span: n.Span}, Op: n.Text, Left: l.lowerExpr(n.Children[0]), Right: l.lowerExpr(n.Children[1])}
	case cst.KUnaryExpr:
		return &ir.UnaryOp{ExprPos: ir.ExprPos{Span: n.Span}, Op: n.Text, Operand: l.lowerExpr(n.Children[0])}
	case cst.KRangeExpr:
		return &ir.Range{ExprPos: ir.ExprPos{Span: n.Span}, Start: l.lowerExpr(n.Children[0]), Stop: l.lowerExpr(n.Children[1])}
	case cst.KTernaryExpr:
		return &ir.Ternary{ExprPos: ir.ExprPos{Span: n.Span}, Cond: l.lowerExpr(n.Children[0]), Then: l.lowerExpr(n.Children[1]), Else: l.lowerExpr(n.Children[2])}
	case cst.KCallExpr:
		return l.lowerCall(n)
	case cst.KIndexExpr:
		idx := &ir.Index{ExprPos: ir.ExprPos{Span: n.Span}, Recv: l.lowerExpr(n.Children[0])}
		for _, c := range n.Children[1:] {
			idx.Indices = append(idx.Indices, l.lowerExpr(c))
		}
		return idx
	case cst.KFieldExpr:
		return &ir.FieldAccess{ExprPos: ir.ExprPos{Span: n.Span}, Recv: l.lowerExpr(n.Children[0]), Field: n.Children[1].Text}
	case cst.KTypeAnnotation:
		// Bare type-annotation expr (e.g. `x::Int64` used as a value
		// context cast); lowers to its receiver, annotation checked later.
		return l.lowerExpr(n.Children[0])
	case cst.KSliceAll:
		return &ir.SliceAll{ExprPos: ir.ExprPos{Span: n.Span}}
	case cst.KArrayLiteral:
		arr := &ir.ArrayLiteral{ExprPos: ir.ExprPos{Span: n.Span}}
		for _, c := range n.Children {
			arr.Elements = append(arr.Elements, l.lowerExpr(c))
		}
		return arr
	case cst.KTupleLiteral:
		t := &ir.TupleLiteral{ExprPos: ir.ExprPos{Span: n.Span}}
		for _, c := range n.Children {
			t.Elements = append(t.Elements, l.lowerExpr(c))
		}
		return t
	case cst.KDictLiteral:
		d := &ir.DictLiteral{ExprPos: ir.ExprPos{Span: n.Span}}
		for _, c := range n.Children {
			d.Pairs = append(d.Pairs, ir.Pair{ExprPos: ir.ExprPos{Span: c.Span}, Key: l.lowerExpr(c.Children[0]), Value: l.lowerExpr(c.Children[1])})
		}
		return d
	case cst.KPairExpr:
		return &ir.Pair{ExprPos: ir.ExprPos{Span: n.Span}, Key: l.lowerExpr(n.Children[0]), Value: l.lowerExpr(n.Children[1])}
	case cst.KMacroCallExpr:
		return l.lowerMacroCall(n)
	case cst.KQuoteExpr:
		return &ir.QuoteLiteral{ExprPos: ir.ExprPos{Span: n.Span}, Body: l.lowerBlock(n)}
	case cst.KFunctionRef:
		return l.lowerLambda(n)
	case cst.KError:
		l.Diags.Add(diag.NewParseError("malformed expression", l.file, n.Span))
		return &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitNothing}
	default:
		l.Diags.Add(diag.NewUnsupportedFeature(string(rune(n.Kind)), "unrecognized CST node in expression position", l.file, n.Span))
		return &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitNothing}
	}
}

func (l *Lowerer) lowerLiteral(n *cst.Node) ir.Expr {
	lit := n.Text
	base := ir.ExprPos{Span: n.Span}
	switch {
	case lit == "nothing":
		return &ir.Literal{ExprPos: base, Kind: ir.LitNothing}
	case lit == "missing":
		return &ir.Literal{ExprPos: base, Kind: ir.LitMissing}
	case lit == "true" || lit == "false":
		return &ir.Literal{ExprPos: base, Kind: ir.LitBool, B: lit == "true"}
	case strings.HasPrefix(lit, "\""):
		return &ir.Literal{ExprPos: base, Kind: ir.LitString, S: strings.Trim(lit, "\"")}
	case strings.HasPrefix(lit, "'"):
		unq := strings.Trim(lit, "'")
		r := []rune(unq)
		c := rune(0)
		if len(r) > 0 {
			c = r[0]
		}
		return &ir.Literal{ExprPos: base, Kind: ir.LitChar, I: int64(c)}
	case strings.ContainsAny(lit, ".eEpP") && !strings.HasPrefix(lit, "0x"):
		f, _ := strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
		return &ir.Literal{ExprPos: base, Kind: ir.LitFloat, Raw: lit, F: f}
	default:
		clean := strings.ReplaceAll(lit, "_", "")
		i, err := strconv.ParseInt(clean, 0, 64)
		if err != nil {
			return &ir.Literal{ExprPos: base, Kind: ir.LitBigInt, Raw: lit}
		}
		return &ir.Literal{ExprPos: base, Kind: ir.LitInt, Raw: lit, I: i}
	}
}

// lowerInterpString splits `"a=$x b"`-style interpolation tokens into a
// StringConcat of literal and Var sub-expressions; a `$(...)` part
// becomes a Var named by its raw inner text, not a parsed expression.
// The scanner
// hands the parser the raw lexeme including `$...` markers; lowering is
// where actual splitting happens so the lexer/parser stay
// interpolation-shape agnostic (spec.md §4.1 emits only the token).
func (l *Lowerer) lowerInterpString(n *cst.Node) ir.Expr {
	raw := strings.Trim(n.Text, "\"")
	sc := &ir.StringConcat{ExprPos: ir.ExprPos{Span: n.Span}}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			sc.Parts = append(sc.Parts, &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitString, S: lit.String()})
			lit.Reset()
		}
	}
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '$' && i+1 < len(runes) {
			flush()
			j := i + 1
			if runes[j] == '(' {
				depth := 1
				j++
				start := j
				for j < len(runes) && depth > 0 {
					if runes[j] == '(' {
						depth++
					} else if runes[j] == ')' {
						depth--
					}
					if depth > 0 {
						j++
					}
				}
				sc.Parts = append(sc.Parts, &ir.Var{ExprPos: ir.ExprPos{Span: n.Span}, Name: string(runes[start:j])})
				i = j
				continue
			}
			start := j
			for j < len(runes) && (isIdentRune(runes[j])) {
				j++
			}
			sc.Parts = append(sc.Parts, &ir.Var{ExprPos: ir.ExprPos{Span: n.Span}, Name: string(runes[start:j])})
			i = j - 1
			continue
		}
		lit.WriteRune(runes[i])
	}
	flush()
	return sc
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// lowerLambda converts a parsed `params -> body` node (parser.tryLambda's
// KFunctionRef) into an ir.Lambda: every child but the one in the
// FieldBody slot is a bare parameter name; a non-block body becomes a
// one-statement return block so a Lambda's Body matches a Function's.
func (l *Lowerer) lowerLambda(n *cst.Node) ir.Expr {
	body := n.Field(cst.FieldBody)
	var params []string
	for _, c := range n.Children {
		if c == body {
			continue
		}
		params = append(params, c.Text)
	}
	var blk *ir.Block
	if body.Kind == cst.KBlock {
		blk = l.lowerBlock(body)
	} else {
		blk = &ir.Block{Span: body.Span, Stmts: []ir.Stmt{
			ir.ReturnStmt{StmtPos: ir.StmtPos{Span: body.Span}, Value: l.lowerExpr(body)},
		}}
	}
	return &ir.Lambda{ExprPos: ir.ExprPos{Span: n.Span}, Params: params, Body: blk}
}

func (l *Lowerer) lowerCall(n *cst.Node) ir.Expr {
	callee := n.Field(cst.FieldCallee)
	call := &ir.Call{ExprPos: ir.ExprPos{Span: n.Span}, Callee: l.lowerExpr(callee)}
	for _, c := range n.Children {
		if c == callee {
			continue
		}
		call.Args = append(call.Args, l.lowerExpr(c))
	}
	if callee.Kind == cst.KIdent {
		if name, isBuiltin := builtinNames[callee.Text]; isBuiltin {
			return &ir.Builtin{ExprPos: ir.ExprPos{Span: n.Span}, Name: name, Args: call.Args}
		}
	}
	return call
}

// builtinNames lists the compiler-intrinsic call names lowering
// resolves directly to ir.Builtin rather than a user-function Call
// (spec.md §4.6's "Builtin" expr constructor exists precisely so the
// inference/dispatch stages can special-case these without a method
// table lookup).
var builtinNames = map[string]string{
	"println": "println", "print": "print", "length": "length",
	"push!": "push!", "pop!": "pop!", "append!": "append!",
	"string": "string", "typeof": "typeof", "isa": "isa",
	"throw": "throw", "error": "error", "collect": "collect",
}

func (l *Lowerer) lowerMacroCall(n *cst.Node) ir.Expr {
	name := n.Field(cst.FieldName)
	switch name.Text {
	case "__FILE__":
		return &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitString, S: l.file}
	case "__LINE__":
		return &ir.Literal{ExprPos: ir.ExprPos{Span: n.Span}, Kind: ir.LitInt, I: int64(n.Span.Line)}
	case "isdefined":
		if len(n.Children) > 1 {
			return &ir.Builtin{ExprPos: ir.ExprPos{Span: n.Span}, Name: "isdefined", Args: []ir.Expr{l.lowerExpr(n.Children[1])}}
		}
	}
	// Unrecognized macro: lowered as an opaque builtin call over its
	// (already-lowered) argument expressions. The macro package's Expand
	// does user-macro expansion on the CST, but no pipeline stage calls
	// it before lowering, so user-macro calls arrive here unexpanded.
	call := &ir.Builtin{ExprPos: ir.ExprPos{Span: n.Span}, Name: "@" + name.Text}
	for _, c := range n.Children[1:] {
		call.Args = append(call.Args, l.lowerExpr(c))
	}
	return call
}

// gensymName produces a fresh hygienic identifier distinct from any
// source-level name (spec.md §4.3 macro hygiene).
func (l *Lowerer) gensymName(base string) string {
	l.gensym++
	return "#" + base + "#" + strconv.Itoa(l.gensym)
}

