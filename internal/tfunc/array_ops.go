package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerArrayOps registers array indexing, mutation, sorting,
// creation, range construction, HOF and reduction transfer functions
// (original_source/.../tfuncs/mod.rs's register_array_ops).
func registerArrayOps(r *Registry) {
	r.Register("getindex", tfuncGetindex)
	r.Register("setindex!", tfuncSetindex)
	r.Register("length", tfuncLength)
	r.Register("first", tfuncFirst)
	r.Register("last", tfuncLast)
	r.Register("size", tfuncSize)

	r.Register("push!", tfuncSameArray)
	r.Register("pop!", tfuncFirst)
	r.Register("append!", tfuncSameArray)
	r.Register("prepend!", tfuncSameArray)
	r.Register("insert!", tfuncSameArray)
	r.Register("deleteat!", tfuncSameArray)
	r.Register("popfirst!", tfuncFirst)
	r.Register("pushfirst!", tfuncSameArray)
	r.Register("empty!", tfuncSameArray)
	r.Register("resize!", tfuncSameArray)
	r.Register("splice!", tfuncSameArray)
	r.Register("fill!", tfuncSameArray)

	r.Register("sort", tfuncSameArray)
	r.Register("sort!", tfuncSameArray)
	r.Register("reverse", tfuncSameArray)
	r.Register("reverse!", tfuncSameArray)
	r.Register("unique", tfuncSameArray)
	r.Register("unique!", tfuncSameArray)

	r.Register("fill", tfuncFill)
	r.Register("zeros", tfuncZerosOnes)
	r.Register("ones", tfuncZerosOnes)
	r.Register("similar", tfuncSameArray)
	r.Register("copy", tfuncSameArray)
	r.Register("deepcopy", tfuncSameArray)

	r.Register(":", tfuncColon)
	r.Register("colon", tfuncColon)
	r.Register("range", tfuncColon)

	r.Register("map", tfuncMap)
	r.Register("filter", tfuncSameArray)

	r.Register("reduce", tfuncReduceLike)
	r.Register("foldl", tfuncReduceLike)
	r.Register("foldr", tfuncReduceLike)
	r.Register("sum", tfuncElemOrTop)
	r.Register("prod", tfuncElemOrTop)
	r.Register("maximum", tfuncElemOrTop)
	r.Register("minimum", tfuncElemOrTop)
	r.Register("any", func(args []lattice.LatticeType) lattice.LatticeType { return lattice.FromType(types.BoolT) })
	r.Register("all", func(args []lattice.LatticeType) lattice.LatticeType { return lattice.FromType(types.BoolT) })
	r.Register("collect", tfuncSameArray)
}

func elemOf(l lattice.LatticeType) lattice.LatticeType {
	if l.Kind == lattice.KConcrete && l.Concrete != nil && l.Concrete.IsArray && l.Concrete.Elem != nil {
		return *l.Concrete.Elem
	}
	return lattice.Top
}

func tfuncGetindex(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) < 1 {
		return lattice.Top
	}
	recv := arg(args, 0)
	if recv.Kind == lattice.KConcrete && recv.Concrete != nil {
		if recv.Concrete.IsDict && recv.Concrete.Val != nil {
			return *recv.Concrete.Val
		}
		if recv.Concrete.IsArray {
			return elemOf(recv)
		}
	}
	return lattice.Top
}

func tfuncSetindex(args []lattice.LatticeType) lattice.LatticeType { return tfuncSameArray(args) }

func tfuncLength(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.I64T)
}

func tfuncFirst(args []lattice.LatticeType) lattice.LatticeType  { return elemOf(arg(args, 0)) }
func tfuncLast(args []lattice.LatticeType) lattice.LatticeType   { return elemOf(arg(args, 0)) }
func tfuncElemOrTop(args []lattice.LatticeType) lattice.LatticeType {
	e := elemOf(arg(args, 0))
	if e.Kind == lattice.KTop {
		return lattice.Top
	}
	return e
}

func tfuncSize(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.Tuple([]lattice.LatticeType{lattice.FromType(types.I64T)})
}

func tfuncSameArray(args []lattice.LatticeType) lattice.LatticeType { return arg(args, 0) }

func tfuncFill(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.Array(arg(args, 0))
}

func tfuncZerosOnes(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) == 0 {
		return lattice.Array(lattice.FromType(types.F64T))
	}
	// zeros(Type, dims...) or zeros(n): first arg is either an eltype
	// witness or a dimension count, inference can't tell apart without
	// a DataType value — default to Float64, Julia's own default eltype.
	return lattice.Array(lattice.FromType(types.F64T))
}

func tfuncColon(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.LatticeType{Kind: lattice.KConcrete, Concrete: &lattice.ConcreteType{IsRange: true, Elem: rangeElem(args)}}
}

func rangeElem(args []lattice.LatticeType) *lattice.LatticeType {
	e := lattice.FromType(types.I64T)
	for _, a := range args {
		if a.String() == "Float64" {
			e = lattice.FromType(types.F64T)
		}
	}
	return &e
}

func tfuncMap(args []lattice.LatticeType) lattice.LatticeType {
	// map(f, arr): inference doesn't evaluate f here, so the resulting
	// element type is unknown; dispatch/inference of the call to f
	// itself narrows this further in internal/infer.
	return lattice.Array(lattice.Top)
}

func tfuncReduceLike(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) < 2 {
		return lattice.Top
	}
	return elemOf(arg(args, 1))
}
