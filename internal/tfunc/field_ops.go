package tfunc

import (
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerFieldOps registers struct field-access transfer functions
// (original_source/.../tfuncs/mod.rs's register_field_ops). getfield
// additionally gets a contextual registration since its precise return
// type needs the struct's declared field layout, not just its own
// argument types (mirrors the Rust registry's ContextualTransferFn
// split for the same function).
func registerFieldOps(r *Registry) {
	r.Register("getfield", tfuncGetfield)
	r.Register("setfield!", tfuncSetfield)
	r.Register("fieldnames", tfuncFieldnames)
	r.Register("fieldtypes", tfuncFieldtypes)

	r.RegisterContextual("getfield", tfuncGetfieldContextual)
}

func tfuncGetfield(args []lattice.LatticeType) lattice.LatticeType {
	// Without struct-table context, getfield's result type is unknown;
	// the contextual variant above is what internal/infer actually
	// calls whenever a struct table is in scope.
	return lattice.Top
}

func tfuncGetfieldContextual(args []lattice.LatticeType, ctx *Context) lattice.LatticeType {
	if ctx == nil || ctx.ResolveField == nil || len(args) < 2 {
		return lattice.Top
	}
	recv := arg(args, 0)
	if recv.Kind != lattice.KConcrete || recv.Concrete == nil || recv.Concrete.StructName == "" {
		return lattice.Top
	}
	fieldArg := arg(args, 1)
	if fieldArg.Kind != lattice.KConst {
		return lattice.Top
	}
	fieldName, ok := fieldArg.ConstValue.(string)
	if !ok {
		return lattice.Top
	}
	return ctx.ResolveField(recv.Concrete.StructName, fieldName)
}

func tfuncSetfield(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.NothingT)
}

func tfuncFieldnames(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.Array(lattice.FromType(types.SymbolT))
}

func tfuncFieldtypes(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.Array(lattice.Top)
}
