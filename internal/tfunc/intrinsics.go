package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerIntrinsics registers type-conversion, type-query, math, and
// I/O intrinsics (original_source/.../tfuncs/mod.rs's
// register_intrinsics).
func registerIntrinsics(r *Registry) {
	r.Register("isa", tfuncIsa)
	r.Register("typeof", tfuncTypeof)
	r.Register("convert", tfuncConvert)
	r.Register("promote", tfuncPromote)

	r.Register("Int8", toConcrete(types.I8T))
	r.Register("Int16", toConcrete(types.I16T))
	r.Register("Int32", toConcrete(types.I32T))
	r.Register("Int64", toConcrete(types.I64T))
	r.Register("Int128", toConcrete(types.I128T))
	r.Register("UInt8", toConcrete(types.U8T))
	r.Register("UInt16", toConcrete(types.U16T))
	r.Register("UInt32", toConcrete(types.U32T))
	r.Register("UInt64", toConcrete(types.U64T))
	r.Register("UInt128", toConcrete(types.U128T))

	r.Register("Float32", toConcrete(types.F32T))
	r.Register("Float64", toConcrete(types.F64T))

	r.Register("Bool", toConcrete(types.BoolT))
	r.Register("String", toConcrete(types.StringT))
	r.Register("Char", toConcrete(types.CharT))

	r.Register("zero", tfuncSameAsArg0Type)
	r.Register("one", tfuncSameAsArg0Type)
	r.Register("typemin", tfuncSameAsArg0Type)
	r.Register("typemax", tfuncSameAsArg0Type)

	r.Register("sqrt", tfuncSqrt)
	r.Register("abs", tfuncAbs)
	r.Register("sin", toFloat64)
	r.Register("cos", toFloat64)
	r.Register("exp", toFloat64)
	r.Register("log", toFloat64)
	r.Register("min", tfuncMinMax)
	r.Register("max", tfuncMinMax)

	r.Register("println", tfuncNothing)
	r.Register("print", tfuncNothing)
}

func toConcrete(t *types.JuliaType) Fn {
	return func(args []lattice.LatticeType) lattice.LatticeType { return lattice.FromType(t) }
}

func toFloat64(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.F64T)
}

func tfuncIsa(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.BoolT)
}

func tfuncTypeof(args []lattice.LatticeType) lattice.LatticeType {
	// typeof always returns a DataType, itself modeled as the abstract
	// type witness rather than a lattice leaf of its own — Top is the
	// honest answer here since the lattice doesn't carry a DataType
	// kind distinct from Const/Concrete.
	return lattice.Top
}

func tfuncConvert(args []lattice.LatticeType) lattice.LatticeType {
	// convert(T, x): return type tracks the requested T, which
	// inference only knows when T is a Const of a DataType value —
	// otherwise fall back to Top.
	if len(args) > 0 && arg(args, 0).Kind == lattice.KConst {
		return lattice.FromType(arg(args, 0).ConstType)
	}
	return lattice.Top
}

func tfuncPromote(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) == 0 {
		return lattice.Top
	}
	out := arg(args, 0)
	for _, a := range args[1:] {
		out = widestNumeric(out, a)
	}
	return lattice.Tuple(args)
}

func tfuncSameAsArg0Type(args []lattice.LatticeType) lattice.LatticeType {
	return arg(args, 0)
}

func tfuncSqrt(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.F64T)
}

func tfuncAbs(args []lattice.LatticeType) lattice.LatticeType {
	return arg(args, 0)
}

func tfuncMinMax(args []lattice.LatticeType) lattice.LatticeType {
	if len(args) != 2 {
		return lattice.Top
	}
	return widestNumeric(arg(args, 0), arg(args, 1))
}

func tfuncNothing(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.NothingT)
}
