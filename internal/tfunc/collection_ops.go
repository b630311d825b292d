package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerCollectionOps registers Dict/Set transfer functions
// (original_source/.../tfuncs/mod.rs's register_collection_ops).
func registerCollectionOps(r *Registry) {
	r.Register("keys", tfuncKeys)
	r.Register("values", tfuncValues)
	r.Register("pairs", tfuncPairs)
	r.Register("haskey", tfuncBool)
	r.Register("get", tfuncGet)
	r.Register("get!", tfuncGet)

	r.Register("delete!", tfuncSameArray)
	r.Register("merge", tfuncSameArray)
	r.Register("merge!", tfuncSameArray)

	r.Register("isempty", tfuncBool)
	r.Register("in", tfuncBool)
	r.Register("∈", tfuncBool)
	r.Register("eltype", tfuncEltype)
	r.Register("keytype", tfuncKeytype)
	r.Register("valtype", tfuncValtype)

	r.Register("Set", tfuncMakeSet)
	r.Register("Dict", tfuncMakeDict)

	r.Register("union", tfuncSameArray)
	r.Register("intersect", tfuncSameArray)
	r.Register("setdiff", tfuncSameArray)
	r.Register("symdiff", tfuncSameArray)
	r.Register("issubset", tfuncBool)
	r.Register("⊆", tfuncBool)
}

func tfuncBool(args []lattice.LatticeType) lattice.LatticeType { return lattice.FromType(types.BoolT) }

func dictOf(l lattice.LatticeType) *lattice.ConcreteType {
	if l.Kind == lattice.KConcrete && l.Concrete != nil && l.Concrete.IsDict {
		return l.Concrete
	}
	return nil
}

func tfuncKeys(args []lattice.LatticeType) lattice.LatticeType {
	if c := dictOf(arg(args, 0)); c != nil && c.Key != nil {
		return lattice.Array(*c.Key)
	}
	return lattice.Array(lattice.Top)
}

func tfuncValues(args []lattice.LatticeType) lattice.LatticeType {
	if c := dictOf(arg(args, 0)); c != nil && c.Val != nil {
		return lattice.Array(*c.Val)
	}
	return lattice.Array(lattice.Top)
}

func tfuncPairs(args []lattice.LatticeType) lattice.LatticeType {
	if c := dictOf(arg(args, 0)); c != nil && c.Key != nil && c.Val != nil {
		return lattice.Array(lattice.Tuple([]lattice.LatticeType{*c.Key, *c.Val}))
	}
	return lattice.Array(lattice.Top)
}

func tfuncGet(args []lattice.LatticeType) lattice.LatticeType {
	if c := dictOf(arg(args, 0)); c != nil && c.Val != nil {
		if len(args) >= 3 {
			return lattice.Join(*c.Val, arg(args, 2))
		}
		return *c.Val
	}
	return lattice.Top
}

func tfuncEltype(args []lattice.LatticeType) lattice.LatticeType {
	return elemOf(arg(args, 0))
}

func tfuncKeytype(args []lattice.LatticeType) lattice.LatticeType {
	if c := dictOf(arg(args, 0)); c != nil && c.Key != nil {
		return *c.Key
	}
	return lattice.Top
}

func tfuncValtype(args []lattice.LatticeType) lattice.LatticeType {
	if c := dictOf(arg(args, 0)); c != nil && c.Val != nil {
		return *c.Val
	}
	return lattice.Top
}

func tfuncMakeSet(args []lattice.LatticeType) lattice.LatticeType {
	elem := lattice.Top
	if len(args) > 0 {
		elem = elemOf(arg(args, 0))
	}
	return lattice.LatticeType{Kind: lattice.KConcrete, Concrete: &lattice.ConcreteType{IsSet: true, Elem: &elem}}
}

func tfuncMakeDict(args []lattice.LatticeType) lattice.LatticeType {
	k, v := lattice.Top, lattice.Top
	return lattice.DictType(k, v)
}
