package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerIteratorOps registers iteration-protocol transfer functions
// (original_source/.../tfuncs/mod.rs's register_iterator_ops). `length`
// is registered by array_ops.go; iterator_ops provides everything else
// the protocol needs.
func registerIteratorOps(r *Registry) {
	r.Register("iterate", tfuncIterate)
	r.Register("eachindex", tfuncEachindex)
	r.Register("enumerate", tfuncEnumerate)
	r.Register("zip", tfuncZip)
}

func tfuncIterate(args []lattice.LatticeType) lattice.LatticeType {
	// iterate(x) -> Union{Nothing, Tuple{eltype, state}}; state is
	// opaque to inference (Top) so the pair widens the state slot to
	// Top rather than guessing a concrete representation.
	elem := elemOf(arg(args, 0))
	pair := lattice.Tuple([]lattice.LatticeType{elem, lattice.Top})
	return lattice.Join(lattice.FromType(types.NothingT), pair)
}

func tfuncEachindex(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.LatticeType{Kind: lattice.KConcrete, Concrete: &lattice.ConcreteType{IsRange: true, Elem: f64OrI64(types.I64T)}}
}

func f64OrI64(t *types.JuliaType) *lattice.LatticeType {
	l := lattice.FromType(t)
	return &l
}

func tfuncEnumerate(args []lattice.LatticeType) lattice.LatticeType {
	elem := elemOf(arg(args, 0))
	pair := lattice.Tuple([]lattice.LatticeType{lattice.FromType(types.I64T), elem})
	return lattice.Array(pair)
}

func tfuncZip(args []lattice.LatticeType) lattice.LatticeType {
	elems := make([]lattice.LatticeType, 0, len(args))
	for _, a := range args {
		elems = append(elems, elemOf(a))
	}
	return lattice.Array(lattice.Tuple(elems))
}
