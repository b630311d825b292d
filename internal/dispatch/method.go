// Package dispatch implements Julia-style multiple dispatch over the
// nominal type hierarchy (spec.md §4.8): a method table keyed by
// function name, specificity-ranked signature matching, and parametric
// unification for methods declared with `where`-bound type parameters.
//
// Grounded on spec.md §4.8's method-table/rank/failure rules directly
// (no dispatch-specific source file was retrieved in original_source/;
// tests/dispatch_tests.rs only exercises dispatch end-to-end through
// the VM) and on internal/types' Specificity/IsSubtypeOf/Substitute for
// the structural operations dispatch is built from.
package dispatch

import "juliavm/internal/types"

// TypeParam is a method's declared `where T <: Bound` type parameter;
// Bound is nil when unconstrained (defaults to Any).
type TypeParam struct {
	Name  string
	Bound *types.JuliaType
}

// Method is one entry in a name's method table: its declared parameter
// signature, any type parameters that signature references, the
// pre-inferred return type, and the global function index the compiler
// resolves a static call site to.
type Method struct {
	Name       string
	ParamTypes []*types.JuliaType
	TypeParams []TypeParam
	ReturnType *types.JuliaType
	FuncIndex  int
}

func boundOf(tp TypeParam) *types.JuliaType {
	if tp.Bound != nil {
		return tp.Bound
	}
	return types.Any
}
