package lexer

import (
	"testing"

	"juliavm/internal/token"
)

func TestScanTokensArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []token.Kind
	}{
		{
			name:     "simple expression",
			src:      "1 + 2 * 3",
			expected: []token.Kind{token.Int, token.Plus, token.Int, token.Star, token.Int, token.EOF},
		},
		{
			name:     "function def",
			src:      "function double(x::Int64) x * 2 end",
			expected: []token.Kind{token.Function, token.Ident, token.LParen, token.Ident, token.DoubleColon, token.Ident, token.RParen, token.Ident, token.Star, token.Int, token.End, token.EOF},
		},
		{
			name:     "radix prefixes",
			src:      "0x1F + 0b101 + 0o17",
			expected: []token.Kind{token.Int, token.Plus, token.Int, token.Plus, token.Int, token.EOF},
		},
		{
			name:     "compound assign",
			src:      "x += 1",
			expected: []token.Kind{token.Ident, token.PlusAssign, token.Int, token.EOF},
		},
		{
			name:     "broadcast operator",
			src:      "a .+ b",
			expected: []token.Kind{token.Ident, token.DotOp, token.Ident, token.EOF},
		},
		{
			name:     "block comment is skipped",
			src:      "1 #= nested #= comment =# here =# + 2",
			expected: []token.Kind{token.Int, token.Plus, token.Int, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := NewScanner(tt.src).ScanTokens()
			if len(toks) != len(tt.expected) {
				t.Fatalf("got %d tokens, want %d: %v", len(toks), len(tt.expected), toks)
			}
			for i, k := range tt.expected {
				if toks[i].Kind != k {
					t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
				}
			}
		})
	}
}

// TestScanTokensNeverPanics checks that scanning malformed or truncated
// input (unterminated literals, a bare radix prefix, comment-only text)
// reports errors through tokens instead of panicking.
func TestScanTokensNeverPanics(t *testing.T) {
	inputs := []string{"", "   ", "###", "\"unterminated", "'x", "0x", "@macro", "1_000_000"}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("scanning %q panicked: %v", in, r)
				}
			}()
			NewScanner(in).ScanTokens()
		}()
	}
}

func TestIsCompoundAssignment(t *testing.T) {
	if !token.IsCompoundAssignment(token.PlusAssign) {
		t.Error("+= should be compound assignment")
	}
	if token.IsCompoundAssignment(token.Assign) {
		t.Error("= should not be compound assignment")
	}
}
