package tfunc

import (
	"testing"

	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

func i64() lattice.LatticeType    { return lattice.FromType(types.I64T) }
func f64() lattice.LatticeType    { return lattice.FromType(types.F64T) }
func str() lattice.LatticeType    { return lattice.FromType(types.StringT) }
func boolT() lattice.LatticeType  { return lattice.FromType(types.BoolT) }

func structType(name string) lattice.LatticeType {
	return lattice.LatticeType{Kind: lattice.KConcrete, Concrete: &lattice.ConcreteType{StructName: name}}
}

func newRegistry() *Registry {
	r := New()
	RegisterAll(r)
	return r
}

func TestRegisterAllPopulatesCoreNames(t *testing.T) {
	r := newRegistry()
	if r.Len() < 20 {
		t.Fatalf("expected > 20 registered tfuncs, got %d", r.Len())
	}
	for _, name := range []string{"+", "getindex", "length", "string", "sqrt", "isa"} {
		if !r.Has(name) {
			t.Errorf("expected %q to be registered", name)
		}
	}
}

func TestInferAddIntInt(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("+", []lattice.LatticeType{i64(), i64()})
	if got.String() != "Int64" {
		t.Fatalf("+(Int64,Int64) = %v, want Int64", got)
	}
}

func TestInferAddMixedWidensToNumber(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("+", []lattice.LatticeType{i64(), f64()})
	if got.String() != "Number" {
		t.Fatalf("+(Int64,Float64) = %v, want Number", got)
	}
}

func TestInferDivAlwaysFloats(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("/", []lattice.LatticeType{i64(), i64()})
	if got.String() != "Float64" {
		t.Fatalf("/(Int64,Int64) = %v, want Float64", got)
	}
}

func TestInferGetindexArrayElem(t *testing.T) {
	r := newRegistry()
	arr := lattice.Array(f64())
	got := r.InferReturnType("getindex", []lattice.LatticeType{arr, i64()})
	if got.String() != "Float64" {
		t.Fatalf("getindex(Array{Float64},Int64) = %v, want Float64", got)
	}
}

func TestInferLengthIsInt64(t *testing.T) {
	r := newRegistry()
	arr := lattice.Array(i64())
	got := r.InferReturnType("length", []lattice.LatticeType{arr})
	if got.String() != "Int64" {
		t.Fatalf("length(Array{Int64}) = %v, want Int64", got)
	}
}

func TestInferStringAlwaysString(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("string", []lattice.LatticeType{i64(), str()})
	if got.String() != "String" {
		t.Fatalf("string(Int64,String) = %v, want String", got)
	}
}

func TestInferSqrtIsFloat64(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("sqrt", []lattice.LatticeType{i64()})
	if got.String() != "Float64" {
		t.Fatalf("sqrt(Int64) = %v, want Float64", got)
	}
}

func TestInferIsaIsBool(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("isa", []lattice.LatticeType{i64(), lattice.Top})
	if got.String() != boolT().String() {
		t.Fatalf("isa(Int64,Any) = %v, want Bool", got)
	}
}

func TestInferUnknownFunctionIsTop(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("not_a_real_function", []lattice.LatticeType{i64()})
	if got.Kind != lattice.KTop {
		t.Fatalf("expected Top for unknown function, got %v", got)
	}
}

func TestInferPropagatesBottom(t *testing.T) {
	r := newRegistry()
	got := r.InferReturnType("+", []lattice.LatticeType{lattice.Bottom, i64()})
	if got.Kind != lattice.KBottom {
		t.Fatalf("expected Bottom to propagate, got %v", got)
	}
}

func TestInferComplexRealImag(t *testing.T) {
	r := newRegistry()
	c := structType("Complex{Float64}")
	if got := r.InferReturnType("real", []lattice.LatticeType{c}); got.String() != "Float64" {
		t.Fatalf("real(Complex{Float64}) = %v, want Float64", got)
	}
	ci := structType("Complex{Int64}")
	if got := r.InferReturnType("imag", []lattice.LatticeType{ci}); got.String() != "Int64" {
		t.Fatalf("imag(Complex{Int64}) = %v, want Int64", got)
	}
}

func TestInferReimReturnsTuple(t *testing.T) {
	r := newRegistry()
	c := structType("Complex{Float64}")
	got := r.InferReturnType("reim", []lattice.LatticeType{c})
	if got.Kind != lattice.KConcrete || got.Concrete == nil || !got.Concrete.IsTuple {
		t.Fatalf("reim(Complex{Float64}) = %v, want a Tuple", got)
	}
}

func TestGetfieldContextualResolvesFieldType(t *testing.T) {
	r := newRegistry()
	ctx := &Context{
		ResolveField: func(structName, field string) lattice.LatticeType {
			if structName == "Point" && field == "x" {
				return f64()
			}
			return lattice.Top
		},
	}
	recv := structType("Point")
	fieldConst := lattice.Const("x", types.SymbolT)
	got := r.InferReturnTypeContextual("getfield", []lattice.LatticeType{recv, fieldConst}, ctx)
	if got.String() != "Float64" {
		t.Fatalf("getfield(Point,:x) = %v, want Float64", got)
	}
}

func TestEachindexIsRange(t *testing.T) {
	r := newRegistry()
	arr := lattice.Array(i64())
	got := r.InferReturnType("eachindex", []lattice.LatticeType{arr})
	if got.Kind != lattice.KConcrete || got.Concrete == nil || !got.Concrete.IsRange {
		t.Fatalf("eachindex(Array) = %v, want a Range", got)
	}
}
