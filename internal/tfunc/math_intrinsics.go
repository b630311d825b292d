package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerMathIntrinsics registers integer/float math intrinsics
// (original_source/.../tfuncs/math_intrinsics.rs, referenced by
// register_math_intrinsics in mod.rs).
func registerMathIntrinsics(r *Registry) {
	r.Register("sign", tfuncSameAsArg0Type)
	r.Register("div", tfuncDivIntegral)
	r.Register("rem", tfuncDivIntegral)
	r.Register("mod", tfuncDivIntegral)
	r.Register("floor", tfuncSameAsArg0Type)
	r.Register("ceil", tfuncSameAsArg0Type)
	r.Register("round", tfuncSameAsArg0Type)
	r.Register("<<", tfuncSameAsArg0Type)
	r.Register(">>", tfuncSameAsArg0Type)
	r.Register("&", tfuncBitwise)
	r.Register("|", tfuncBitwise)
	r.Register("xor", tfuncBitwise)
}

func tfuncDivIntegral(args []lattice.LatticeType) lattice.LatticeType {
	// div/rem/mod preserve integer-ness: Julia's div(x,y) on two
	// integers stays integral even though / always floats.
	if len(args) == 2 && isNumberLike(arg(args, 0)) && isNumberLike(arg(args, 1)) {
		return widestNumeric(arg(args, 0), arg(args, 1))
	}
	return lattice.Top
}

func tfuncBitwise(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) != 2 {
		return lattice.Top
	}
	if arg(args, 0).String() == "Bool" && arg(args, 1).String() == "Bool" {
		return lattice.FromType(types.BoolT)
	}
	return widestNumeric(arg(args, 0), arg(args, 1))
}
