package dispatch

import (
	"testing"

	"juliavm/internal/types"
)

func TestDispatchPicksMoreSpecificConcreteOverAbstract(t *testing.T) {
	table := New()
	table.AddMethod(&Method{Name: "area", ParamTypes: []*types.JuliaType{types.RealT}, ReturnType: types.F64T, FuncIndex: 0})
	table.AddMethod(&Method{Name: "area", ParamTypes: []*types.JuliaType{types.I64T}, ReturnType: types.I64T, FuncIndex: 1})

	m, _, err := Dispatch(table, "area", []*types.JuliaType{types.I64T})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if m.FuncIndex != 1 {
		t.Fatalf("expected the Int64-specific method to win, got FuncIndex %d", m.FuncIndex)
	}
}

func TestDispatchFallsBackToAbstractMethod(t *testing.T) {
	table := New()
	table.AddMethod(&Method{Name: "area", ParamTypes: []*types.JuliaType{types.RealT}, ReturnType: types.F64T, FuncIndex: 0})

	m, _, err := Dispatch(table, "area", []*types.JuliaType{types.F64T})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if m.FuncIndex != 0 {
		t.Fatalf("expected the Real method to match Float64, got FuncIndex %d", m.FuncIndex)
	}
}

func TestDispatchNoMatchYieldsMethodError(t *testing.T) {
	table := New()
	table.AddMethod(&Method{Name: "area", ParamTypes: []*types.JuliaType{types.StringT}, FuncIndex: 0})

	_, _, err := Dispatch(table, "area", []*types.JuliaType{types.I64T})
	if err == nil {
		t.Fatal("expected a MethodError for no matching signature")
	}
	if _, ok := err.(*MethodError); !ok {
		t.Fatalf("expected *MethodError, got %T", err)
	}
}

func TestDispatchWrongArityDoesNotMatch(t *testing.T) {
	table := New()
	table.AddMethod(&Method{Name: "pair", ParamTypes: []*types.JuliaType{types.I64T, types.I64T}, FuncIndex: 0})

	_, _, err := Dispatch(table, "pair", []*types.JuliaType{types.I64T})
	if err == nil {
		t.Fatal("expected a MethodError for arity mismatch")
	}
}

func TestDispatchParametricUnificationBindsTypeVar(t *testing.T) {
	table := New()
	tv := types.TypeVar("T", types.NumberT)
	table.AddMethod(&Method{
		Name:       "double",
		ParamTypes: []*types.JuliaType{tv},
		TypeParams: []TypeParam{{Name: "T", Bound: types.NumberT}},
		FuncIndex:  0,
	})

	m, bindings, err := Dispatch(table, "double", []*types.JuliaType{types.I64T})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if m.FuncIndex != 0 {
		t.Fatalf("expected the parametric method to match, got FuncIndex %d", m.FuncIndex)
	}
	if bindings["T"] != types.I64T {
		t.Fatalf("expected T to bind to Int64, got %v", bindings["T"])
	}
}

func TestDispatchParametricUnificationRejectsOutOfBoundArg(t *testing.T) {
	table := New()
	tv := types.TypeVar("T", types.NumberT)
	table.AddMethod(&Method{
		Name:       "double",
		ParamTypes: []*types.JuliaType{tv},
		TypeParams: []TypeParam{{Name: "T", Bound: types.NumberT}},
		FuncIndex:  0,
	})

	_, _, err := Dispatch(table, "double", []*types.JuliaType{types.StringT})
	if err == nil {
		t.Fatal("expected a MethodError since String is not <: Number")
	}
}

func TestDispatchTuplesUnifySameTypeVarAcrossElements(t *testing.T) {
	table := New()
	tv := types.TypeVar("T", nil)
	table.AddMethod(&Method{
		Name:       "same_pair",
		ParamTypes: []*types.JuliaType{types.TupleOf([]*types.JuliaType{tv, tv})},
		TypeParams: []TypeParam{{Name: "T"}},
		FuncIndex:  0,
	})

	_, _, err := Dispatch(table, "same_pair", []*types.JuliaType{types.TupleOf([]*types.JuliaType{types.I64T, types.I64T})})
	if err != nil {
		t.Fatalf("expected (Int64,Int64) to unify T=Int64 in both slots: %v", err)
	}

	_, _, err = Dispatch(table, "same_pair", []*types.JuliaType{types.TupleOf([]*types.JuliaType{types.I64T, types.StringT})})
	if err == nil {
		t.Fatal("expected (Int64,String) to fail unification since T can't bind to both")
	}
}

func TestBypassesDispatchForPrimitiveNumerics(t *testing.T) {
	if !BypassesDispatch("+", []*types.JuliaType{types.F32T, types.BoolT}) {
		t.Fatal("expected Float32+Bool to bypass method dispatch")
	}
}

func TestBypassesDispatchFalseForUserStruct(t *testing.T) {
	point := types.Struct("Point")
	if BypassesDispatch("+", []*types.JuliaType{point, point}) {
		t.Fatal("expected a user struct operand not to bypass dispatch")
	}
}

func TestBypassesDispatchFalseForNonArithmeticName(t *testing.T) {
	if BypassesDispatch("area", []*types.JuliaType{types.I64T}) {
		t.Fatal("expected a non-operator name never to bypass dispatch")
	}
}
