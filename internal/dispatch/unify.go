package dispatch

import "juliavm/internal/types"

// unify attempts to match a (possibly parametric) method parameter
// type against a concrete argument type, recording any TypeVar bindings
// it discovers into bindings. A TypeVar seen twice must bind
// consistently (the same type both times, spec.md §3.1's parametric
// equality requirement); anything else falls back to ordinary
// subtyping.
func unify(param, arg *types.JuliaType, bindings map[string]*types.JuliaType) bool {
	if param == nil || arg == nil {
		return false
	}
	if param.Kind == types.KTypeVar {
		if prior, ok := bindings[param.Name]; ok {
			return types.Equal(prior, arg)
		}
		if param.Bound != nil && !types.IsSubtypeOf(arg, param.Bound) {
			return false
		}
		bindings[param.Name] = arg
		return true
	}
	switch param.Kind {
	case types.KVector, types.KMatrix, types.KArrayT, types.KSet, types.KUnitRange, types.KStepRange:
		if arg.Kind != param.Kind || arg.Elem == nil {
			return false
		}
		return unify(param.Elem, arg.Elem, bindings)
	case types.KDict:
		if arg.Kind != types.KDict {
			return false
		}
		return unify(param.Key, arg.Key, bindings) && unify(param.Val, arg.Val, bindings)
	case types.KTuple:
		if arg.Kind != types.KTuple || len(param.Params) != len(arg.Params) {
			return false
		}
		for i := range param.Params {
			if !unify(param.Params[i], arg.Params[i], bindings) {
				return false
			}
		}
		return true
	default:
		return types.IsSubtypeOf(arg, param)
	}
}

// matchSignature checks whether argTypes satisfies m's full parameter
// vector, returning the TypeVar bindings discovered (empty for a
// non-parametric method) and whether every declared type parameter's
// bound was honored.
func matchSignature(m *Method, argTypes []*types.JuliaType) (map[string]*types.JuliaType, bool) {
	if len(m.ParamTypes) != len(argTypes) {
		return nil, false
	}
	bindings := map[string]*types.JuliaType{}
	for i, p := range m.ParamTypes {
		if !unify(p, argTypes[i], bindings) {
			return nil, false
		}
	}
	for _, tp := range m.TypeParams {
		bound, ok := bindings[tp.Name]
		if !ok {
			continue // unconstrained type parameter not referenced by any arg position
		}
		if !types.IsSubtypeOf(bound, boundOf(tp)) {
			return nil, false
		}
	}
	return bindings, true
}
