package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerStringOps registers string-manipulation transfer functions
// (original_source/.../tfuncs/mod.rs's register_string_ops) — every
// one of these returns String, Bool or (split) Array{String} regardless
// of argument shape.
func registerStringOps(r *Registry) {
	r.Register("string", tfuncString)
	r.Register("uppercase", tfuncStringIdentity)
	r.Register("lowercase", tfuncStringIdentity)
	r.Register("replace", tfuncStringIdentity)
	r.Register("split", tfuncSplit)
	r.Register("join", tfuncStringIdentity)
	r.Register("startswith", tfuncStringBool)
	r.Register("endswith", tfuncStringBool)
	r.Register("contains", tfuncStringBool)
}

func tfuncString(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.StringT)
}

func tfuncStringIdentity(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.StringT)
}

func tfuncStringBool(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.BoolT)
}

func tfuncSplit(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.Array(lattice.FromType(types.StringT))
}
