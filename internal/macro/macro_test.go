package macro

import (
	"testing"

	"juliavm/internal/cst"
)

func ident(text string) *cst.Node {
	return &cst.Node{Kind: cst.KIdent, Text: text}
}

func call(callee *cst.Node, args ...*cst.Node) *cst.Node {
	n := &cst.Node{Kind: cst.KCallExpr, Children: append([]*cst.Node{callee}, args...)}
	n.WithField(cst.FieldCallee, 0)
	return n
}

// macroDecl builds `macro name(params...) body end` as CST, matching
// lowerMacroDecl's expected shape: name field, body field, remaining
// children are bare param leaves.
func macroDecl(name string, body *cst.Node, params ...string) *cst.Node {
	children := []*cst.Node{ident(name)}
	fields := map[cst.Field]int{cst.FieldName: 0}
	for _, p := range params {
		children = append(children, ident(p))
	}
	children = append(children, body)
	fields[cst.FieldBody] = len(children) - 1
	return &cst.Node{Kind: cst.KMacroDecl, Children: children, Fields: fields}
}

func macroCall(name string, args ...*cst.Node) *cst.Node {
	children := append([]*cst.Node{ident(name)}, args...)
	n := &cst.Node{Kind: cst.KMacroCallExpr, Children: children}
	n.WithField(cst.FieldName, 0)
	return n
}

func TestCollectDeclsRegistersAndErasesMacroDecl(t *testing.T) {
	body := &cst.Node{Kind: cst.KBlock, Children: []*cst.Node{ident("x")}}
	decl := macroDecl("double", body, "x")
	root := &cst.Node{Kind: cst.KSourceFile, Children: []*cst.Node{decl, ident("y")}}

	r := NewRegistry()
	out := CollectDecls(root, r)

	if len(out.Children) != 1 || out.Children[0].Text != "y" {
		t.Fatalf("expected macro decl erased from output, got %+v", out.Children)
	}
	def, ok := r.Lookup("double")
	if !ok {
		t.Fatal("expected double to be registered")
	}
	if len(def.Params) != 1 || def.Params[0] != "x" {
		t.Fatalf("expected one param x, got %v", def.Params)
	}
}

func TestExpandSubstitutesParameter(t *testing.T) {
	// macro wrap(x) x + 1 end
	body := &cst.Node{Kind: cst.KBlock, Children: []*cst.Node{
		&cst.Node{Kind: cst.KBinaryExpr, Text: "+", Children: []*cst.Node{ident("x"), &cst.Node{Kind: cst.KLiteral, Text: "1"}}},
	}}
	decl := macroDecl("wrap", body, "x")
	use := macroCall("wrap", &cst.Node{Kind: cst.KLiteral, Text: "41"})
	root := &cst.Node{Kind: cst.KSourceFile, Children: []*cst.Node{decl, use}}

	out, _ := Expand(root)
	if len(out.Children) != 1 {
		t.Fatalf("expected macro decl erased and one expanded node left, got %d", len(out.Children))
	}
	bin := out.Children[0]
	if bin.Kind != cst.KBinaryExpr {
		t.Fatalf("expected the expansion to be the binary expr, got %v", bin.Kind)
	}
	if bin.Children[0].Text != "41" {
		t.Fatalf("expected parameter x substituted with the call argument, got %q", bin.Children[0].Text)
	}
}

func TestExpandRenamesIntroducedLocal(t *testing.T) {
	// macro make_tmp() tmp = 1; tmp end
	assign := &cst.Node{Kind: cst.KAssign, Children: []*cst.Node{ident("tmp"), &cst.Node{Kind: cst.KLiteral, Text: "1"}}}
	assign.WithField(cst.FieldName, 0)
	assign.WithField(cst.FieldValue, 1)
	body := &cst.Node{Kind: cst.KBlock, Children: []*cst.Node{assign, ident("tmp")}}
	decl := macroDecl("make_tmp", body)
	use := macroCall("make_tmp")
	root := &cst.Node{Kind: cst.KSourceFile, Children: []*cst.Node{decl, use}}

	out, _ := Expand(root)
	block := out.Children[0]
	if block.Kind != cst.KBlock || len(block.Children) != 2 {
		t.Fatalf("expected a two-statement block, got %+v", block)
	}
	assignTarget := block.Children[0].Field(cst.FieldName).Text
	reference := block.Children[1].Text
	if assignTarget == "tmp" {
		t.Fatal("expected the locally-bound tmp to be renamed away from its source name")
	}
	if assignTarget != reference {
		t.Fatalf("expected both occurrences of tmp renamed to the same fresh name, got %q and %q", assignTarget, reference)
	}
}

func TestExpandTwoCallsGetDistinctFreshNames(t *testing.T) {
	assign := &cst.Node{Kind: cst.KAssign, Children: []*cst.Node{ident("tmp"), &cst.Node{Kind: cst.KLiteral, Text: "1"}}}
	assign.WithField(cst.FieldName, 0)
	assign.WithField(cst.FieldValue, 1)
	body := &cst.Node{Kind: cst.KBlock, Children: []*cst.Node{assign, ident("tmp")}}
	decl := macroDecl("make_tmp", body)
	root := &cst.Node{Kind: cst.KSourceFile, Children: []*cst.Node{decl, macroCall("make_tmp"), macroCall("make_tmp")}}

	out, _ := Expand(root)
	first := out.Children[0].Children[0].Field(cst.FieldName).Text
	second := out.Children[1].Children[0].Field(cst.FieldName).Text
	if first == second {
		t.Fatalf("expected two independent expansions to pick distinct fresh names, both got %q", first)
	}
}

func TestExpandEscSuppressesRenaming(t *testing.T) {
	// macro leak() esc(tmp) end  -- tmp here must resolve at the call site
	escCall := call(ident("esc"), ident("tmp"))
	body := &cst.Node{Kind: cst.KBlock, Children: []*cst.Node{escCall}}
	decl := macroDecl("leak", body)
	root := &cst.Node{Kind: cst.KSourceFile, Children: []*cst.Node{decl, macroCall("leak")}}

	out, _ := Expand(root)
	result := out.Children[0]
	if result.Kind != cst.KIdent || result.Text != "tmp" {
		t.Fatalf("expected esc(tmp) to expand to the bare identifier tmp, got %+v", result)
	}
}

func TestExpandLeavesIntrinsicMacroCallsAlone(t *testing.T) {
	root := &cst.Node{Kind: cst.KSourceFile, Children: []*cst.Node{macroCall("__LINE__")}}
	out, _ := Expand(root)
	if out.Children[0].Kind != cst.KMacroCallExpr {
		t.Fatal("expected a compiler-intrinsic macro call to pass through unexpanded")
	}
}
