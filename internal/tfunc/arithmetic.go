package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerArithmetic registers the binary arithmetic/comparison
// operators (original_source/.../tfuncs/mod.rs's register_arithmetic).
func registerArithmetic(r *Registry) {
	r.Register("+", tfuncAdd)
	r.Register("-", tfuncSub)
	r.Register("*", tfuncMul)
	r.Register("/", tfuncDiv)
	r.Register("==", tfuncEq)
	r.Register("<", tfuncLt)
	r.Register("<=", tfuncLe)
	r.Register(">", tfuncGt)
	r.Register(">=", tfuncGe)
	r.Register("!", tfuncNot)
}

func tfuncAdd(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) != 2 {
		return lattice.Top
	}
	return widestNumeric(arg(args, 0), arg(args, 1))
}

func tfuncSub(args []lattice.LatticeType) lattice.LatticeType { return tfuncAdd(args) }
func tfuncMul(args []lattice.LatticeType) lattice.LatticeType { return tfuncAdd(args) }

// tfuncDiv always widens to Float64: Julia's `/` always produces a
// float even for two Int64 operands.
func tfuncDiv(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) != 2 || !isNumberLike(arg(args, 0)) || !isNumberLike(arg(args, 1)) {
		return lattice.Top
	}
	return lattice.FromType(types.F64T)
}

func tfuncComparison(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) != 2 {
		return lattice.Top
	}
	return lattice.FromType(types.BoolT)
}

func tfuncEq(args []lattice.LatticeType) lattice.LatticeType { return tfuncComparison(args) }
func tfuncLt(args []lattice.LatticeType) lattice.LatticeType { return tfuncComparison(args) }
func tfuncLe(args []lattice.LatticeType) lattice.LatticeType { return tfuncComparison(args) }
func tfuncGt(args []lattice.LatticeType) lattice.LatticeType { return tfuncComparison(args) }
func tfuncGe(args []lattice.LatticeType) lattice.LatticeType { return tfuncComparison(args) }

func tfuncNot(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) != 1 {
		return lattice.Top
	}
	return lattice.FromType(types.BoolT)
}
