// Package types implements JuliaType: the nominal, serializable,
// structurally-compared type model of spec.md §3.1 — concrete
// primitives, parametric containers, the fixed abstract hierarchy,
// user-declared structs/abstracts/enums, meta/quoting types, the
// algebraic Union/Bottom/TypeOf forms, and UnionAll/TypeVar binders.
//
// Grounded on the teacher's *Function/struct registration shape
// (internal/vm's plain-struct value model) generalized into a single
// tagged representation, since Julia's type lattice is naturally a
// closed tagged union rather than an open interface hierarchy.
package types

import (
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	KBottom Kind = iota
	KAny
	KPrimitive
	KAbstract
	KVector
	KMatrix
	KArrayT // generic Array{T,N}
	KTuple
	KNamedTuple
	KDict
	KSet
	KUnitRange
	KStepRange
	KStruct
	KAbstractUser
	KEnum
	KUnion
	KTypeOf
	KTypeVar
	KUnionAll
	KTypeMeta // the singleton metatype "Type"
	KDataType
	KExpr
	KQuoteNode
	KLineNumberNode
	KGlobalRef
	KModule
	KPairs
	KGenerator
)

// JuliaType is the tagged representation. Only the fields relevant to
// Kind are populated; all else is zero.
type JuliaType struct {
	Kind   Kind
	Name   string       // primitive/abstract/struct/enum/typevar name
	Parent *JuliaType   // AbstractUser's declared parent, or nil (-> Any)
	Elem   *JuliaType   // Vector/Matrix/Array/UnitRange/StepRange/Set/TypeOf element
	Key    *JuliaType   // Dict key type
	Val    *JuliaType   // Dict value type
	Params []*JuliaType // Tuple elements / Union members / NamedTuple field types
	Fields []string     // NamedTuple field names, parallel to Params
	Bound  *JuliaType   // TypeVar upper bound (nil = Any)
	Body   *JuliaType   // UnionAll body
}

func (t *JuliaType) Var() *JuliaType { return t } // TypeVar binder identity convenience

// --- constructors ---

var bottomSingleton = &JuliaType{Kind: KBottom, Name: "Union{}"}
var anySingleton = &JuliaType{Kind: KAny, Name: "Any"}

func Bottom() *JuliaType { return bottomSingleton }
func AnyType() *JuliaType { return anySingleton }

func Primitive(name string) *JuliaType { return &JuliaType{Kind: KPrimitive, Name: name} }

func Abstract(name string, parent *JuliaType) *JuliaType {
	return &JuliaType{Kind: KAbstract, Name: name, Parent: parent}
}

func Struct(name string) *JuliaType { return &JuliaType{Kind: KStruct, Name: name} }

// StructWithSupertype declares a struct under an explicit abstract
// supertype (e.g. `struct Complex <: Number`, spec.md §3.1's
// "Complex{T} is <: Number but NOT <: Real" carve-out).
func StructWithSupertype(name string, parent *JuliaType) *JuliaType {
	return &JuliaType{Kind: KStruct, Name: name, Parent: parent}
}

func AbstractUser(name string, parent *JuliaType) *JuliaType {
	return &JuliaType{Kind: KAbstractUser, Name: name, Parent: parent}
}

func Enum(name string) *JuliaType { return &JuliaType{Kind: KEnum, Name: name} }

func VectorOf(elem *JuliaType) *JuliaType { return &JuliaType{Kind: KVector, Elem: elem} }
func MatrixOf(elem *JuliaType) *JuliaType { return &JuliaType{Kind: KMatrix, Elem: elem} }
func ArrayOf(elem *JuliaType) *JuliaType  { return &JuliaType{Kind: KArrayT, Elem: elem} }

func TupleOf(elems []*JuliaType) *JuliaType { return &JuliaType{Kind: KTuple, Params: elems} }

func NamedTupleOf(fields []string, elems []*JuliaType) *JuliaType {
	return &JuliaType{Kind: KNamedTuple, Fields: fields, Params: elems}
}

func DictOf(k, v *JuliaType) *JuliaType { return &JuliaType{Kind: KDict, Key: k, Val: v} }
func SetOf(elem *JuliaType) *JuliaType  { return &JuliaType{Kind: KSet, Elem: elem} }
func UnitRangeOf(elem *JuliaType) *JuliaType { return &JuliaType{Kind: KUnitRange, Elem: elem} }
func StepRangeOf(elem *JuliaType) *JuliaType { return &JuliaType{Kind: KStepRange, Elem: elem} }

// Union flattens and deduplicates nested unions; Union{} == Bottom, and
// a singleton union collapses to its member (spec.md §3.1).
func Union(members ...*JuliaType) *JuliaType {
	flat := flattenUnion(members)
	if len(flat) == 0 {
		return Bottom()
	}
	if len(flat) == 1 {
		return flat[0]
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].String() < flat[j].String() })
	return &JuliaType{Kind: KUnion, Params: flat}
}

func flattenUnion(members []*JuliaType) []*JuliaType {
	seen := map[string]*JuliaType{}
	var walk func(*JuliaType)
	walk = func(t *JuliaType) {
		if t == nil || t.Kind == KBottom {
			return
		}
		if t.Kind == KUnion {
			for _, m := range t.Params {
				walk(m)
			}
			return
		}
		seen[t.String()] = t
	}
	for _, m := range members {
		walk(m)
	}
	out := make([]*JuliaType, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	return out
}

func TypeOf(t *JuliaType) *JuliaType { return &JuliaType{Kind: KTypeOf, Elem: t} }

func TypeVar(name string, upperBound *JuliaType) *JuliaType {
	return &JuliaType{Kind: KTypeVar, Name: name, Bound: upperBound}
}

func UnionAllOf(v *JuliaType, body *JuliaType) *JuliaType {
	return &JuliaType{Kind: KUnionAll, Params: []*JuliaType{v}, Body: body}
}

// --- the fixed abstract hierarchy (spec.md §3.1) ---

var (
	Any           = AnyType()
	NumberT       = Abstract("Number", Any)
	RealT         = Abstract("Real", NumberT)
	IntegerT      = Abstract("Integer", RealT)
	SignedT       = Abstract("Signed", IntegerT)
	UnsignedT     = Abstract("Unsigned", IntegerT)
	BoolT         = Primitive("Bool") // special-cased: <: Integer, NOT <: Signed/Unsigned
	AbstractFloat = Abstract("AbstractFloat", RealT)
	AbstractStr   = Abstract("AbstractString", Any)
	StringT       = Primitive("String")
	AbstractArray = Abstract("AbstractArray", Any)
	FunctionT     = Abstract("Function", Any)
	IOT           = Abstract("IO", Any)
	IOBufferT     = Struct("IOBuffer")

	CharT    = Primitive("Char")
	NothingT = Primitive("Nothing")
	MissingT = Primitive("Missing")
	SymbolT  = Primitive("Symbol")

	I8T, I16T, I32T, I64T, I128T, BigIntT = Primitive("Int8"), Primitive("Int16"), Primitive("Int32"), Primitive("Int64"), Primitive("Int128"), Primitive("BigInt")
	U8T, U16T, U32T, U64T, U128T          = Primitive("UInt8"), Primitive("UInt16"), Primitive("UInt32"), Primitive("UInt64"), Primitive("UInt128")
	F16T, F32T, F64T, BigFloatT           = Primitive("Float16"), Primitive("Float32"), Primitive("Float64"), Primitive("BigFloat")
)

var signedInts = map[string]bool{"Int8": true, "Int16": true, "Int32": true, "Int64": true, "Int128": true, "BigInt": true}
var unsignedInts = map[string]bool{"UInt8": true, "UInt16": true, "UInt32": true, "UInt64": true, "UInt128": true}
var floatNames = map[string]bool{"Float16": true, "Float32": true, "Float64": true, "BigFloat": true}

// parentOf returns the immediate nominal supertype of a concrete leaf,
// implementing the fixed hierarchy:
//   Any -> Number -> Real -> {Integer -> {Signed, Unsigned, Bool}, AbstractFloat}
//   Any -> AbstractString -> String
//   Any -> AbstractArray -> (Array | Vector | Matrix)
//   Any -> Function, Any -> IO -> IOBuffer
func parentOf(t *JuliaType) *JuliaType {
	switch t.Kind {
	case KAny, KBottom:
		return nil
	case KAbstract, KAbstractUser:
		if t.Parent != nil {
			return t.Parent
		}
		return Any
	case KPrimitive:
		switch {
		case t.Name == "Bool":
			return IntegerT // Bool <: Integer, but NOT Signed/Unsigned
		case signedInts[t.Name]:
			return SignedT
		case unsignedInts[t.Name]:
			return UnsignedT
		case floatNames[t.Name]:
			return AbstractFloat
		case t.Name == "String":
			return AbstractStr
		default:
			return Any // Char, Nothing, Missing, Symbol
		}
	case KVector, KMatrix, KArrayT:
		return AbstractArray
	case KStruct:
		if t.Parent != nil {
			return t.Parent
		}
		if t.Name == "IOBuffer" {
			return IOT
		}
		return Any
	case KEnum:
		return Any
	default:
		return Any
	}
}

func ancestors(t *JuliaType) []*JuliaType {
	var chain []*JuliaType
	cur := t
	for cur != nil {
		chain = append(chain, cur)
		if cur.Kind == KAny {
			break
		}
		cur = parentOf(cur)
		if cur == nil {
			chain = append(chain, Any)
			break
		}
	}
	return chain
}

// IsSubtypeOf implements `<:` per spec.md §3.1's invariants: Any is a
// strict supertype of everything but itself, Bottom a strict subtype of
// everything, tuples are covariant, containers/structs are invariant,
// and unions distribute on both sides.
func IsSubtypeOf(a, b *JuliaType) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == KBottom {
		return true
	}
	if b.Kind == KAny {
		return true
	}
	if b.Kind == KBottom {
		return a.Kind == KBottom
	}
	// T <: Union{A,B} iff T <: A or T <: B
	if b.Kind == KUnion {
		for _, m := range b.Params {
			if IsSubtypeOf(a, m) {
				return true
			}
		}
		return false
	}
	// Union{A,B} <: U iff A <: U and B <: U
	if a.Kind == KUnion {
		for _, m := range a.Params {
			if !IsSubtypeOf(m, b) {
				return false
			}
		}
		return true
	}
	if a.Kind != b.Kind {
		// a concrete leaf can still satisfy an abstract ancestor of a
		// different Kind tag (e.g. KPrimitive Int64 <: KAbstract Integer)
		return subtypeViaAncestors(a, b)
	}
	switch a.Kind {
	case KAny:
		return true
	case KPrimitive, KAbstract, KAbstractUser, KStruct, KEnum:
		if a.Name == b.Name {
			return true
		}
		return subtypeViaAncestors(a, b)
	case KVector:
		return identicalOrBothAny(a.Elem, b.Elem) // invariant
	case KMatrix:
		return identicalOrBothAny(a.Elem, b.Elem)
	case KArrayT:
		return identicalOrBothAny(a.Elem, b.Elem)
	case KDict:
		return identicalOrBothAny(a.Key, b.Key) && identicalOrBothAny(a.Val, b.Val)
	case KSet:
		return identicalOrBothAny(a.Elem, b.Elem)
	case KUnitRange, KStepRange:
		return identicalOrBothAny(a.Elem, b.Elem)
	case KTuple:
		// Tuple{T...} is covariant and must match arity exactly.
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !IsSubtypeOf(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case KNamedTuple:
		if len(a.Params) != len(b.Params) || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i] != b.Fields[i] || !IsSubtypeOf(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case KTypeOf:
		return Equal(a.Elem, b.Elem)
	case KTypeVar:
		return a.Name == b.Name
	default:
		return Equal(a, b)
	}
}

func identicalOrBothAny(a, b *JuliaType) bool {
	if a == nil {
		a = Any
	}
	if b == nil {
		b = Any
	}
	return Equal(a, b)
}

func subtypeViaAncestors(a, b *JuliaType) bool {
	for _, anc := range ancestors(a) {
		if Equal(anc, b) {
			return true
		}
	}
	return false
}

// Equal is structural equality (not subtyping).
func Equal(a, b *JuliaType) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}

// Substitute implements τ[x := σ]: replaces TypeVar(x,_) with σ
// recursively; a UnionAll binder shadows the variable in its body
// (spec.md §3.1/§8).
func Substitute(t *JuliaType, name string, with *JuliaType) *JuliaType {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KTypeVar:
		if t.Name == name {
			return with
		}
		return t
	case KUnionAll:
		if len(t.Params) == 1 && t.Params[0].Name == name {
			return t // shadowed
		}
		return UnionAllOf(t.Params[0], Substitute(t.Body, name, with))
	case KVector:
		return VectorOf(Substitute(t.Elem, name, with))
	case KMatrix:
		return MatrixOf(Substitute(t.Elem, name, with))
	case KArrayT:
		return ArrayOf(Substitute(t.Elem, name, with))
	case KSet:
		return SetOf(Substitute(t.Elem, name, with))
	case KUnitRange:
		return UnitRangeOf(Substitute(t.Elem, name, with))
	case KStepRange:
		return StepRangeOf(Substitute(t.Elem, name, with))
	case KDict:
		return DictOf(Substitute(t.Key, name, with), Substitute(t.Val, name, with))
	case KTuple:
		out := make([]*JuliaType, len(t.Params))
		for i, p := range t.Params {
			out[i] = Substitute(p, name, with)
		}
		return TupleOf(out)
	case KNamedTuple:
		out := make([]*JuliaType, len(t.Params))
		for i, p := range t.Params {
			out[i] = Substitute(p, name, with)
		}
		return NamedTupleOf(t.Fields, out)
	case KUnion:
		out := make([]*JuliaType, len(t.Params))
		for i, p := range t.Params {
			out[i] = Substitute(p, name, with)
		}
		return Union(out...)
	case KTypeOf:
		return TypeOf(Substitute(t.Elem, name, with))
	default:
		return t
	}
}

// Instantiate applies a UnionAll to one concrete type argument, i.e.
// `UnionAll{T,Body}(σ) -> Body[T := σ]`.
func Instantiate(ua *JuliaType, arg *JuliaType) *JuliaType {
	if ua.Kind != KUnionAll {
		return ua
	}
	v := ua.Params[0]
	return Substitute(ua.Body, v.Name, arg)
}

// Specificity implements the dispatch tie-break order of spec.md §3.1/
// §4.8: larger is more specific; concrete leaves rank above abstract
// ancestors; tuples rank per-element with a small arity bonus; Any is
// least specific.
func Specificity(t *JuliaType) int {
	switch t.Kind {
	case KBottom:
		return 1 << 20
	case KAny:
		return 0
	case KTypeVar:
		return 1
	case KUnion:
		best := 0
		for _, m := range t.Params {
			if s := Specificity(m); s > best {
				best = s
			}
		}
		return best / 2 // a union is less specific than any one member
	case KAbstract, KAbstractUser:
		return 10 + len(ancestors(t))
	case KTuple:
		total := 5 // arity bonus
		for _, p := range t.Params {
			total += Specificity(p)
		}
		return total
	case KTypeOf:
		return 1000 // TypeOf(C) ranks above the bare metatype Type
	default:
		return 100 + len(ancestors(t)) // concrete leaf
	}
}

func (t *JuliaType) String() string {
	switch t.Kind {
	case KBottom:
		return "Union{}"
	case KAny:
		return "Any"
	case KPrimitive, KAbstract, KAbstractUser, KStruct, KEnum:
		return t.Name
	case KVector:
		return fmt.Sprintf("Vector{%s}", t.Elem.String())
	case KMatrix:
		return fmt.Sprintf("Matrix{%s}", t.Elem.String())
	case KArrayT:
		return fmt.Sprintf("Array{%s}", t.Elem.String())
	case KDict:
		return fmt.Sprintf("Dict{%s,%s}", t.Key.String(), t.Val.String())
	case KSet:
		return fmt.Sprintf("Set{%s}", t.Elem.String())
	case KUnitRange:
		return fmt.Sprintf("UnitRange{%s}", t.Elem.String())
	case KStepRange:
		return fmt.Sprintf("StepRange{%s}", t.Elem.String())
	case KTuple:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("Tuple{%s}", strings.Join(parts, ","))
	case KNamedTuple:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = fmt.Sprintf("%s::%s", t.Fields[i], p.String())
		}
		return fmt.Sprintf("NamedTuple{%s}", strings.Join(parts, ","))
	case KUnion:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("Union{%s}", strings.Join(parts, ","))
	case KTypeOf:
		return fmt.Sprintf("Type{%s}", t.Elem.String())
	case KTypeVar:
		if t.Bound != nil {
			return fmt.Sprintf("%s<:%s", t.Name, t.Bound.String())
		}
		return t.Name
	case KUnionAll:
		return fmt.Sprintf("UnionAll{%s,%s}", t.Params[0].String(), t.Body.String())
	case KTypeMeta:
		return "Type"
	case KDataType:
		return "DataType"
	case KExpr:
		return "Expr"
	case KQuoteNode:
		return "QuoteNode"
	case KLineNumberNode:
		return "LineNumberNode"
	case KGlobalRef:
		return "GlobalRef"
	case KModule:
		return "Module"
	case KPairs:
		return "Pairs"
	case KGenerator:
		return "Generator"
	default:
		return "?"
	}
}
