package dispatch

import "juliavm/internal/types"

// coreArithmeticOps names the primitive operators the VM's fast built-in
// path handles directly for primitive numeric operands, bypassing the
// method table entirely (spec.md §4.8's "Built-in numerics exception").
var coreArithmeticOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"==": true, "<": true, "<=": true, ">": true, ">=": true,
	"!": true, "%": true, "÷": true,
}

// BypassesDispatch reports whether a call to name with argTypes should
// skip method-table resolution and go through the VM's built-in
// numeric fast path instead, preserving narrow-type semantics like
// `Float32 + Bool -> Float32` that a generalized method table would
// otherwise widen. A user-defined method on a primitive numeric type
// does NOT shadow this path (spec.md §4.8, an intentional trade-off —
// see SPEC_FULL.md's Open Question decisions).
func BypassesDispatch(name string, argTypes []*types.JuliaType) bool {
	if !coreArithmeticOps[name] || len(argTypes) == 0 {
		return false
	}
	for _, t := range argTypes {
		if !isPrimitiveNumeric(t) {
			return false
		}
	}
	return true
}

// isPrimitiveNumeric includes Bool, which dispatches through this same
// fast path despite being carved out of Signed/Unsigned (spec.md §3.1):
// it is still <: Integer <: Real <: Number.
func isPrimitiveNumeric(t *types.JuliaType) bool {
	if t == nil || t.Kind != types.KPrimitive {
		return false
	}
	return types.IsSubtypeOf(t, types.NumberT)
}
