package parser

import (
	"testing"

	"juliavm/internal/cst"
	"juliavm/internal/lexer"
)

func parse(src string) *cst.Node {
	toks := lexer.NewScanner(src).ScanTokens()
	return New(toks, "test.jl").Parse()
}

func TestParseArithmeticExpr(t *testing.T) {
	root := parse("1 + 2 * 3")
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(root.Children))
	}
	stmt := root.Children[0]
	if stmt.Kind != cst.KExprStmt {
		t.Fatalf("expected expr statement, got %v", stmt.Kind)
	}
	bin := stmt.Children[0]
	if bin.Kind != cst.KBinaryExpr || bin.Text != "+" {
		t.Fatalf("expected top-level '+' (precedence climbing), got %v %q", bin.Kind, bin.Text)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	root := parse("function double(x::Int64) x * 2 end")
	if root.Children[0].Kind != cst.KFunctionDecl {
		t.Fatalf("expected function decl, got %v", root.Children[0].Kind)
	}
}

func TestParseIfElse(t *testing.T) {
	root := parse("if x < 1 y = 1 else y = 2 end")
	ifn := root.Children[0]
	if ifn.Kind != cst.KIfExpr {
		t.Fatalf("expected if expr, got %v", ifn.Kind)
	}
	if ifn.Field(cst.FieldElse) == nil {
		t.Fatal("expected else branch")
	}
}

// TestParserNeverPanics covers spec.md §8's parser totality invariant:
// every byte sequence yields a CST and a diagnostic list, never a panic.
func TestParserNeverPanics(t *testing.T) {
	inputs := []string{
		"", "function", "if", "struct X", "1 +", "end end end",
		"for x in", "try catch end", "[1, 2,", "{a => ",
		"@macro", "let x = end",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("parsing %q panicked: %v", in, r)
				}
			}()
			root := parse(in)
			if root == nil {
				t.Fatalf("parsing %q returned nil root", in)
			}
		}()
	}
}

func TestParseSingleParamLambda(t *testing.T) {
	root := parse("x -> x * x")
	lam := root.Children[0].Children[0]
	if lam.Kind != cst.KFunctionRef {
		t.Fatalf("expected a lambda KFunctionRef, got %v", lam.Kind)
	}
	if len(lam.Children) != 2 || lam.Children[0].Text != "x" {
		t.Fatalf("expected one param x plus a body, got %+v", lam.Children)
	}
	if lam.Field(cst.FieldBody) != lam.Children[1] {
		t.Fatal("expected the second child to be the body field")
	}
}

func TestParseMultiParamLambda(t *testing.T) {
	root := parse("(a, b) -> a + b")
	lam := root.Children[0].Children[0]
	if lam.Kind != cst.KFunctionRef {
		t.Fatalf("expected a lambda KFunctionRef, got %v", lam.Kind)
	}
	if len(lam.Children) != 3 || lam.Children[0].Text != "a" || lam.Children[1].Text != "b" {
		t.Fatalf("expected params a,b plus a body, got %+v", lam.Children)
	}
}

func TestParseParenthesizedExprIsNotMistakenForLambda(t *testing.T) {
	root := parse("(1 + 2) * 3")
	stmt := root.Children[0].Children[0]
	if stmt.Kind != cst.KBinaryExpr || stmt.Text != "*" {
		t.Fatalf("expected an ordinary parenthesized arithmetic expr, got %v %q", stmt.Kind, stmt.Text)
	}
}

func TestParseTupleLiteralIsNotMistakenForLambda(t *testing.T) {
	root := parse("(a, b)")
	tup := root.Children[0].Children[0]
	if tup.Kind != cst.KTupleLiteral {
		t.Fatalf("expected a tuple literal when no '->' follows, got %v", tup.Kind)
	}
}

func TestSpanContainment(t *testing.T) {
	root := parse("function f(x) x + 1 end")
	if !root.CheckSpanContainment() {
		t.Fatal("expected every child span to be contained in its parent's span")
	}
}
