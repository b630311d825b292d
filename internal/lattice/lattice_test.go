package lattice

import (
	"testing"

	"juliavm/internal/types"
	"juliavm/internal/value"
)

func TestJoinBottomAbsorbs(t *testing.T) {
	i64 := FromType(types.I64T)
	if got := Join(Bottom, i64); got.String() != i64.String() {
		t.Fatalf("Join(Bottom, Int64) = %v, want %v", got, i64)
	}
	if got := Join(i64, Bottom); got.String() != i64.String() {
		t.Fatalf("Join(Int64, Bottom) = %v, want %v", got, i64)
	}
}

func TestJoinTopAbsorbs(t *testing.T) {
	i64 := FromType(types.I64T)
	if got := Join(Top, i64); got.Kind != KTop {
		t.Fatalf("Join(Top, Int64) = %v, want Top", got)
	}
}

func TestJoinSameTypeIsIdempotent(t *testing.T) {
	a := FromType(types.I64T)
	b := FromType(types.I64T)
	if got := Join(a, b); got.Kind != KConcrete || got.String() != "Int64" {
		t.Fatalf("Join(Int64, Int64) = %v, want Int64", got)
	}
}

func TestJoinDistinctTypesFormsUnion(t *testing.T) {
	a := FromType(types.I64T)
	b := FromType(types.StringT)
	got := Join(a, b)
	if got.Kind != KUnion || len(got.Options) != 2 {
		t.Fatalf("Join(Int64, String) = %v, want 2-option union", got)
	}
}

func TestJoinFlattensNestedUnions(t *testing.T) {
	a := Join(FromType(types.I64T), FromType(types.StringT))
	b := FromType(types.BoolT)
	got := Join(a, b)
	if got.Kind != KUnion || len(got.Options) != 3 {
		t.Fatalf("expected flattened 3-option union, got %v", got)
	}
}

func TestJoinDedupesRepeatedOptions(t *testing.T) {
	a := Join(FromType(types.I64T), FromType(types.StringT))
	got := Join(a, FromType(types.I64T))
	if got.Kind != KUnion || len(got.Options) != 2 {
		t.Fatalf("expected dedup to 2-option union, got %v", got)
	}
}

func TestMeetTopIsIdentity(t *testing.T) {
	i64 := FromType(types.I64T)
	if got := Meet(Top, i64); got.String() != i64.String() {
		t.Fatalf("Meet(Top, Int64) = %v, want %v", got, i64)
	}
}

func TestMeetDisjointIsBottom(t *testing.T) {
	a := FromType(types.I64T)
	b := FromType(types.StringT)
	if got := Meet(a, b); got.Kind != KBottom {
		t.Fatalf("Meet(Int64, String) = %v, want Bottom", got)
	}
}

func TestMeetSubtypePicksMoreSpecific(t *testing.T) {
	num := NumberAbstract()
	i64 := FromType(types.I64T)
	if got := Meet(num, i64); got.String() != i64.String() {
		t.Fatalf("Meet(Number, Int64) = %v, want Int64", got)
	}
}

func TestSubtypeBottomIsUniversal(t *testing.T) {
	if !Subtype(Bottom, FromType(types.StringT)) {
		t.Fatal("Bottom should be a subtype of everything")
	}
}

func TestSubtypeTopIsUniversalSuper(t *testing.T) {
	if !Subtype(FromType(types.StringT), Top) {
		t.Fatal("everything should be a subtype of Top")
	}
}

func TestSubtypeNumberAbstract(t *testing.T) {
	i64 := FromType(types.I64T)
	if !Subtype(i64, NumberAbstract()) {
		t.Fatal("Int64 should be a subtype of the Number abstraction")
	}
	if Subtype(FromType(types.StringT), NumberAbstract()) {
		t.Fatal("String should not be a subtype of Number")
	}
}

func TestSubtypeUnionMember(t *testing.T) {
	u := Join(FromType(types.I64T), FromType(types.StringT))
	if !Subtype(FromType(types.I64T), u) {
		t.Fatal("Int64 should be a subtype of Union{Int64,String}")
	}
	if Subtype(FromType(types.BoolT), u) {
		t.Fatal("Bool should not be a subtype of Union{Int64,String}")
	}
}

func TestSubtypeUnionOfUnion(t *testing.T) {
	u := Join(FromType(types.I64T), FromType(types.StringT))
	if !Subtype(u, u) {
		t.Fatal("a union should be a subtype of itself")
	}
}

func TestSubtypeConstWidens(t *testing.T) {
	c := Const(value.I64(5), types.I64T)
	if !Subtype(c, FromType(types.I64T)) {
		t.Fatal("Const(5)::Int64 should be a subtype of Int64")
	}
	if Subtype(FromType(types.I64T), c) {
		t.Fatal("Int64 should not be a subtype of a Const")
	}
}

func TestSubtypeArrayCovariantElem(t *testing.T) {
	ai64 := Array(FromType(types.I64T))
	anum := Array(NumberAbstract())
	if !Subtype(ai64, anum) {
		t.Fatal("Array{Int64} should be a subtype of Array{Number}")
	}
}

func TestSubtypeTupleElementwise(t *testing.T) {
	a := Tuple([]LatticeType{FromType(types.I64T), FromType(types.StringT)})
	b := Tuple([]LatticeType{NumberAbstract(), FromType(types.StringT)})
	if !Subtype(a, b) {
		t.Fatal("Tuple{Int64,String} should be a subtype of Tuple{Number,String}")
	}
	c := Tuple([]LatticeType{FromType(types.I64T)})
	if Subtype(a, c) {
		t.Fatal("tuples of different arity should not be subtypes")
	}
}

func TestWidenDiscardsConstValue(t *testing.T) {
	c := Const(value.I64(5), types.I64T)
	w := Widen(c)
	if w.Kind != KConcrete || w.String() != "Int64" {
		t.Fatalf("Widen(Const(5)) = %v, want Int64", w)
	}
}

func TestWidenLeavesConcreteAlone(t *testing.T) {
	i64 := FromType(types.I64T)
	if got := Widen(i64); got.String() != i64.String() {
		t.Fatalf("Widen(Int64) = %v, want Int64", got)
	}
}

func TestDictSubtypeKeyAndVal(t *testing.T) {
	a := DictType(FromType(types.StringT), FromType(types.I64T))
	b := DictType(FromType(types.StringT), NumberAbstract())
	if !Subtype(a, b) {
		t.Fatal("Dict{String,Int64} should be a subtype of Dict{String,Number}")
	}
}
