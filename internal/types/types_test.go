package types

import "testing"

func TestBoolIntegerCarveOut(t *testing.T) {
	if !IsSubtypeOf(BoolT, IntegerT) {
		t.Error("Bool <: Integer expected")
	}
	if IsSubtypeOf(BoolT, SignedT) {
		t.Error("Bool <: Signed not expected")
	}
	if IsSubtypeOf(BoolT, UnsignedT) {
		t.Error("Bool <: Unsigned not expected")
	}
}

func TestComplexNotReal(t *testing.T) {
	complexT := StructWithSupertype("Complex", NumberT)
	if !IsSubtypeOf(complexT, NumberT) {
		t.Error("Complex <: Number expected")
	}
	if IsSubtypeOf(complexT, RealT) {
		t.Error("Complex <: Real not expected")
	}
}

func TestTupleCovarianceVectorInvariance(t *testing.T) {
	if !IsSubtypeOf(TupleOf([]*JuliaType{I64T}), TupleOf([]*JuliaType{NumberT})) {
		t.Error("Tuple{Int} <: Tuple{Number} expected (covariant)")
	}
	if IsSubtypeOf(VectorOf(I64T), VectorOf(NumberT)) {
		t.Error("Vector{Int} <: Vector{Number} not expected (invariant)")
	}
}

func TestAnyBottomExtremes(t *testing.T) {
	if !IsSubtypeOf(I64T, Any) {
		t.Error("everything <: Any")
	}
	if IsSubtypeOf(Any, I64T) {
		t.Error("Any is not <: a concrete leaf")
	}
	if !IsSubtypeOf(Bottom(), I64T) {
		t.Error("Bottom <: everything")
	}
}

func TestUnionSubtypeRules(t *testing.T) {
	u := Union(I64T, F64T)
	if !IsSubtypeOf(I64T, u) {
		t.Error("Int64 <: Union{Int64,Float64} expected")
	}
	if !IsSubtypeOf(u, NumberT) {
		t.Error("Union{Int64,Float64} <: Number expected")
	}
	if IsSubtypeOf(u, I64T) {
		t.Error("Union{Int64,Float64} <: Int64 not expected")
	}
}

func TestUnionEmptyIsBottom(t *testing.T) {
	if Union().Kind != KBottom {
		t.Error("Union{} should collapse to Bottom")
	}
}

func TestSubstituteIdempotentWhenAbsent(t *testing.T) {
	tv := TypeVar("T", nil)
	once := Substitute(I64T, "T", tv)
	twice := Substitute(once, "T", tv)
	if once.String() != twice.String() {
		t.Error("substitute should be idempotent when var does not appear")
	}
}

func TestInstantiateUnionAll(t *testing.T) {
	tv := TypeVar("T", nil)
	ua := UnionAllOf(tv, VectorOf(tv))
	got := Instantiate(ua, I64T)
	if got.String() != "Vector{Int64}" {
		t.Errorf("got %s, want Vector{Int64}", got.String())
	}
}

func TestSpecificityStrictness(t *testing.T) {
	if Specificity(I64T) <= Specificity(IntegerT) {
		t.Error("concrete leaf must rank strictly above its abstract supertype")
	}
}

func TestReflexivityAndTransitivity(t *testing.T) {
	if !IsSubtypeOf(I64T, I64T) {
		t.Error("reflexivity expected")
	}
	if !(IsSubtypeOf(I64T, IntegerT) && IsSubtypeOf(IntegerT, RealT) && IsSubtypeOf(I64T, RealT)) {
		t.Error("transitivity expected")
	}
}
