package dispatch

import (
	"fmt"

	"juliavm/internal/types"
)

// MethodError is the diagnostic dispatch resolution raises when no
// method matches (spec.md §4.8: "Failure yields a dispatch error
// surfaced as a MethodError-kind diagnostic").
type MethodError struct {
	Name     string
	ArgTypes []*types.JuliaType
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("MethodError: no method matching %s(%s)", e.Name, argTypesString(e.ArgTypes))
}

func argTypesString(ts []*types.JuliaType) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		if t == nil {
			s += "Any"
			continue
		}
		s += t.String()
	}
	return s
}

// candidate pairs a matching method with the specificity score of its
// declared parameter types and the type-variable bindings this call's
// arguments produced.
type candidate struct {
	method   *Method
	score    int
	bindings map[string]*types.JuliaType
}

// Dispatch resolves name(argTypes...) against t to the unique most
// specific matching method (spec.md §4.8's Rank rule). Ties are broken
// in MethodTable declaration order, which makes selection deterministic
// for a fixed table and argument types (spec.md's
// "method dispatch determinism" invariant) without ever surfacing an
// ambiguity error.
func Dispatch(t *MethodTable, name string, argTypes []*types.JuliaType) (*Method, map[string]*types.JuliaType, error) {
	methods := t.MethodsFor(name)
	var candidates []candidate
	for _, m := range methods {
		bindings, ok := matchSignature(m, argTypes)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{method: m, score: specificityScore(m), bindings: bindings})
	}
	if len(candidates) == 0 {
		return nil, nil, &MethodError{Name: name, ArgTypes: argTypes}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return best.method, best.bindings, nil
}

// specificityScore sums each declared parameter's specificity
// (spec.md §3.1's ordering), plus the arity bonus Specificity already
// gives tuples; ties within the same score resolve by declaration
// order in Dispatch.
func specificityScore(m *Method) int {
	total := 0
	for _, p := range m.ParamTypes {
		total += types.Specificity(p)
	}
	return total
}
