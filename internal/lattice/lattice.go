// Package lattice implements the abstract type lattice used by
// inference (spec.md §3.4, §4.4): LatticeType = Bottom | Const |
// Concrete | Union | Conditional | Top, with join/meet/subtype
// operations a fixed-point analysis can iterate to convergence.
//
// Grounded on internal/types' JuliaType (the lattice's Concrete leaves
// mirror JuliaType leaves) and, for the Bottom-propagation discipline
// every transfer function must honor, on
// original_source/.../compile/tfuncs/mod.rs (read via its function
// list in spec.md §4.4; every registered tfunc there short-circuits to
// Bottom before touching its operands).
package lattice

import (
	"fmt"

	"juliavm/internal/types"
	"juliavm/internal/value"
)

type Kind int

const (
	KBottom Kind = iota
	KConst
	KConcrete
	KUnion
	KConditional
	KTop
)

// LatticeType is a tagged struct mirroring JuliaType's own shape
// (internal/types.JuliaType), extended with Const/Union/Conditional.
type LatticeType struct {
	Kind Kind

	// KConst
	ConstValue value.Value
	ConstType  *types.JuliaType // the concrete type of ConstValue

	// KConcrete
	Concrete *ConcreteType

	// KUnion
	Options []LatticeType

	// KConditional
	CondVar  string
	CondThen *LatticeType
	CondElse *LatticeType
}

// ConcreteType mirrors JuliaType leaves plus structural cases the
// lattice needs that JuliaType itself doesn't carry abstractly
// (spec.md §3.4).
type ConcreteType struct {
	T       *types.JuliaType // non-structural leaf (Int64, String, Bool, ...)
	Elem    *LatticeType     // Array{element}
	Key     *LatticeType     // Dict{k,...}
	Val     *LatticeType     // Dict{...,v}
	IsDict  bool
	IsSet   bool
	IsRange bool
	IsArray bool
	StructName string
	StructID   int
	Elements   []LatticeType // Tuple{elements}
	IsTuple    bool
	IsNumber   bool // abstract "Number" placeholder used by arithmetic tfuncs
}

var Bottom = LatticeType{Kind: KBottom}
var Top = LatticeType{Kind: KTop}

func FromType(t *types.JuliaType) LatticeType {
	if t == nil {
		return Top
	}
	return LatticeType{Kind: KConcrete, Concrete: &ConcreteType{T: t}}
}

func Const(v value.Value, t *types.JuliaType) LatticeType {
	return LatticeType{Kind: KConst, ConstValue: v, ConstType: t}
}

func NumberAbstract() LatticeType {
	return LatticeType{Kind: KConcrete, Concrete: &ConcreteType{IsNumber: true}}
}

func Array(elem LatticeType) LatticeType {
	return LatticeType{Kind: KConcrete, Concrete: &ConcreteType{IsArray: true, Elem: &elem}}
}

func DictType(k, v LatticeType) LatticeType {
	return LatticeType{Kind: KConcrete, Concrete: &ConcreteType{IsDict: true, Key: &k, Val: &v}}
}

func Tuple(elems []LatticeType) LatticeType {
	return LatticeType{Kind: KConcrete, Concrete: &ConcreteType{IsTuple: true, Elements: elems}}
}

func (l LatticeType) String() string {
	switch l.Kind {
	case KBottom:
		return "Bottom"
	case KTop:
		return "Any"
	case KConst:
		return fmt.Sprintf("Const(%v)", l.ConstValue)
	case KConcrete:
		return l.Concrete.String()
	case KUnion:
		s := "Union{"
		for i, o := range l.Options {
			if i > 0 {
				s += ","
			}
			s += o.String()
		}
		return s + "}"
	case KConditional:
		return fmt.Sprintf("Conditional(%s)", l.CondVar)
	}
	return "?"
}

func (c *ConcreteType) String() string {
	switch {
	case c.IsArray:
		return "Array{" + c.Elem.String() + "}"
	case c.IsDict:
		return "Dict{" + c.Key.String() + "," + c.Val.String() + "}"
	case c.IsSet:
		return "Set{" + c.Elem.String() + "}"
	case c.IsTuple:
		return "Tuple"
	case c.IsNumber:
		return "Number"
	case c.StructName != "":
		return "Struct{" + c.StructName + "}"
	case c.T != nil:
		return c.T.Name
	}
	return "?"
}

// widen discards a Const's precise value, keeping only its type; used
// by loop fixed-point iteration to prevent infinite constant-ascent
// chains (spec.md §4.6 point 2).
func Widen(l LatticeType) LatticeType {
	if l.Kind == KConst {
		return FromType(l.ConstType)
	}
	return l
}

// Join computes the least upper bound. Bottom is absorbing on the
// "more precise" side; Top absorbs on the "less precise" side. Two
// distinct concretes widen into a flattened, deduplicated union
// (spec.md §3.4).
func Join(a, b LatticeType) LatticeType {
	if a.Kind == KBottom {
		return b
	}
	if b.Kind == KBottom {
		return a
	}
	if a.Kind == KTop || b.Kind == KTop {
		return Top
	}
	if equalType(a, b) {
		return a
	}
	opts := flattenUnion(a)
	opts = append(opts, flattenUnion(b)...)
	return dedupUnion(opts)
}

// Meet computes the greatest lower bound, used by parameter
// constraint-intersection during usage analysis (spec.md §4.6 point 1).
func Meet(a, b LatticeType) LatticeType {
	if a.Kind == KTop {
		return b
	}
	if b.Kind == KTop {
		return a
	}
	if equalType(a, b) {
		return a
	}
	if Subtype(a, b) {
		return a
	}
	if Subtype(b, a) {
		return b
	}
	return Bottom
}

// Subtype is the lattice's `<=?` relation (spec.md §3.4).
func Subtype(a, b LatticeType) bool {
	if a.Kind == KBottom {
		return true
	}
	if b.Kind == KTop {
		return true
	}
	if a.Kind == KUnion {
		for _, o := range a.Options {
			if !Subtype(o, b) {
				return false
			}
		}
		return true
	}
	if b.Kind == KUnion {
		for _, o := range b.Options {
			if Subtype(a, o) {
				return true
			}
		}
		return false
	}
	if a.Kind == KConst {
		return Subtype(FromType(a.ConstType), b)
	}
	if b.Kind == KConst {
		return false
	}
	if a.Kind == KConcrete && b.Kind == KConcrete {
		return concreteSubtype(a.Concrete, b.Concrete)
	}
	return false
}

func concreteSubtype(a, b *ConcreteType) bool {
	if b.IsNumber {
		if a.IsNumber {
			return true
		}
		return a.T != nil && types.IsSubtypeOf(a.T, types.NumberT)
	}
	if a.IsArray && b.IsArray {
		return Subtype(*a.Elem, *b.Elem)
	}
	if a.IsDict && b.IsDict {
		return Subtype(*a.Key, *b.Key) && Subtype(*a.Val, *b.Val)
	}
	if a.IsTuple && b.IsTuple {
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Subtype(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	}
	if a.StructName != "" && b.StructName != "" {
		return a.StructName == b.StructName
	}
	if a.T != nil && b.T != nil {
		return types.IsSubtypeOf(a.T, b.T)
	}
	return false
}

func equalType(a, b LatticeType) bool {
	return a.String() == b.String()
}

func flattenUnion(l LatticeType) []LatticeType {
	if l.Kind == KUnion {
		return append([]LatticeType{}, l.Options...)
	}
	return []LatticeType{l}
}

func dedupUnion(opts []LatticeType) LatticeType {
	var out []LatticeType
	seen := map[string]bool{}
	for _, o := range opts {
		k := o.String()
		if !seen[k] {
			seen[k] = true
			out = append(out, o)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return LatticeType{Kind: KUnion, Options: out}
}
