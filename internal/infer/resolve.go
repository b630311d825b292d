package infer

import (
	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// namedTypes maps a declared type name to the nominal JuliaType it
// denotes, covering every primitive/abstract name the lexer/parser can
// produce for a parameter annotation. Parametric names (Vector{T},
// Dict{K,V}, ...) are handled structurally in resolveTypeRef instead.
var namedTypes = map[string]*types.JuliaType{
	"Any":            types.Any,
	"Number":         types.NumberT,
	"Real":           types.RealT,
	"Integer":        types.IntegerT,
	"Signed":         types.SignedT,
	"Unsigned":       types.UnsignedT,
	"Bool":           types.BoolT,
	"AbstractFloat":  types.AbstractFloat,
	"AbstractString": types.AbstractStr,
	"String":         types.StringT,
	"AbstractArray":  types.AbstractArray,
	"Function":       types.FunctionT,
	"IO":             types.IOT,
	"IOBuffer":       types.IOBufferT,
	"Char":           types.CharT,
	"Nothing":        types.NothingT,
	"Missing":        types.MissingT,
	"Symbol":         types.SymbolT,
	"Int8":           types.I8T,
	"Int16":          types.I16T,
	"Int32":          types.I32T,
	"Int64":          types.I64T,
	"Int128":         types.I128T,
	"BigInt":         types.BigIntT,
	"UInt8":          types.U8T,
	"UInt16":         types.U16T,
	"UInt32":         types.U32T,
	"UInt64":         types.U64T,
	"UInt128":        types.U128T,
	"Float16":        types.F16T,
	"Float32":        types.F32T,
	"Float64":        types.F64T,
	"BigFloat":       types.BigFloatT,
}

// resolveTypeRef turns a parser-level TypeRef into a lattice
// constraint. Parametric containers resolve to their corresponding
// Concrete shape; anything unrecognized (a user struct name not yet
// seen, a TypeVar-bound generic) widens to Top rather than guessing.
func resolveTypeRef(tr *ir.TypeRef) lattice.LatticeType {
	if tr == nil {
		return lattice.Top
	}
	switch tr.Name {
	case "Vector", "Array":
		if len(tr.Args) >= 1 {
			return lattice.Array(resolveTypeRef(tr.Args[0]))
		}
		return lattice.Array(lattice.Top)
	case "Dict":
		if len(tr.Args) == 2 {
			return lattice.DictType(resolveTypeRef(tr.Args[0]), resolveTypeRef(tr.Args[1]))
		}
		return lattice.DictType(lattice.Top, lattice.Top)
	case "Tuple":
		elems := make([]lattice.LatticeType, 0, len(tr.Args))
		for _, a := range tr.Args {
			elems = append(elems, resolveTypeRef(a))
		}
		return lattice.Tuple(elems)
	case "Union":
		if len(tr.Args) == 0 {
			return lattice.Top
		}
		acc := resolveTypeRef(tr.Args[0])
		for _, a := range tr.Args[1:] {
			acc = lattice.Join(acc, resolveTypeRef(a))
		}
		return acc
	}
	if t, ok := namedTypes[tr.Name]; ok {
		return lattice.FromType(t)
	}
	return lattice.Top
}
