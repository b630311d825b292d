package optimizer

import (
	"juliavm/internal/aotir"
	"juliavm/internal/ir"
	"juliavm/internal/types"
)

// strengthReduceFunction rewrites arithmetic identities into cheaper
// operations: x+0/x-0/x*1/1*x collapse to x, x*0/0*x collapse to a
// zero literal, wherever the literal's own numeric kind already
// matches the surviving operand's type — anything that would require
// reasoning about cross-kind promotion (Int64+Float64 literal, say) is
// left alone rather than risk silently changing the result's type.
// Constant folding already handles literal-literal pairs, so this pass
// only fires when exactly one side is a literal identity and the
// other is an arbitrary expression.
func strengthReduceFunction(fn *aotir.AotFunction) int {
	body, n := mapStmtExprs(fn.Body, strengthReduceNode)
	fn.Body = body
	return n
}

func strengthReduceNode(e aotir.AotExpr) (aotir.AotExpr, bool) {
	b, ok := e.(aotir.AotBinary)
	if !ok {
		return e, false
	}
	lLit, lIsLit := b.Left.(aotir.AotLiteral)
	rLit, rIsLit := b.Right.(aotir.AotLiteral)

	switch b.Op {
	case "+":
		if rIsLit && isZero(rLit) && sameKind(rLit, b.Left) {
			return b.Left, true
		}
		if lIsLit && isZero(lLit) && sameKind(lLit, b.Right) {
			return b.Right, true
		}
	case "-":
		if rIsLit && isZero(rLit) && sameKind(rLit, b.Left) {
			return b.Left, true
		}
	case "*":
		if rIsLit && isOne(rLit) && sameKind(rLit, b.Left) {
			return b.Left, true
		}
		if lIsLit && isOne(lLit) && sameKind(lLit, b.Right) {
			return b.Right, true
		}
		if rIsLit && isZero(rLit) && sameKind(rLit, b.Left) {
			return zeroLike(rLit), true
		}
		if lIsLit && isZero(lLit) && sameKind(lLit, b.Right) {
			return zeroLike(lLit), true
		}
	}
	// "/" deliberately has no x/1 -> x rule: this language's "/" always
	// produces Float64 (resultType in internal/aotir), even for two
	// integer operands, so collapsing it to a bare Int64-typed operand
	// would change the value's type, not just its cost.
	return e, false
}

func isZero(l aotir.AotLiteral) bool {
	return (l.Kind == ir.LitInt && l.I == 0) || (l.Kind == ir.LitFloat && l.F == 0)
}

func isOne(l aotir.AotLiteral) bool {
	return (l.Kind == ir.LitInt && l.I == 1) || (l.Kind == ir.LitFloat && l.F == 1)
}

// sameKind reports whether literal l's own type matches other's
// inferred type, the guard that keeps every rule above from silently
// promoting or narrowing a mixed Int64/Float64 pair.
func sameKind(l aotir.AotLiteral, other aotir.AotExpr) bool {
	ot := other.TypeOf()
	if ot == nil || l.Type == nil {
		return false
	}
	return types.Equal(l.Type, ot)
}

func zeroLike(l aotir.AotLiteral) aotir.AotExpr {
	if l.Kind == ir.LitInt {
		return intLit(0)
	}
	return floatLit(0)
}
