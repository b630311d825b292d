package value

import "juliavm/internal/types"

// TypeOf maps a runtime Value to the types.JuliaType dispatch and the
// `typeof`/`isa` builtins reason about (spec.md §4.8 resolves a call
// against the *runtime* type of each argument, not its static
// annotation). Grounded on the teacher's ValueType(val) string
// classifier (internal/vm/vm_enhanced.go's OpTypeOf handling): the same
// type switch over every concrete Value variant, but returning a
// *types.JuliaType the dispatch table can rank instead of a display
// string.
func TypeOf(v Value) *types.JuliaType {
	switch val := v.(type) {
	case nil, NothingT:
		return types.NothingT
	case MissingT:
		return types.MissingT
	case bool:
		return types.BoolT
	case I8:
		return types.I8T
	case I16:
		return types.I16T
	case I32:
		return types.I32T
	case I64:
		return types.I64T
	case U8:
		return types.U8T
	case U16:
		return types.U16T
	case U32:
		return types.U32T
	case U64:
		return types.U64T
	case I128:
		return types.I128T
	case U128:
		return types.U128T
	case BigInt:
		return types.BigIntT
	case F16:
		return types.F16T
	case F32:
		return types.F32T
	case float64:
		return types.F64T
	case BigFloat:
		return types.BigFloatT
	case Char:
		return types.CharT
	case Symbol:
		return types.SymbolT
	case string:
		return types.StringT
	case *ArrayValue:
		return types.VectorOf(val.Elem)
	case TupleValue:
		elems := make([]*types.JuliaType, len(val))
		for i, e := range val {
			elems[i] = TypeOf(e)
		}
		return types.TupleOf(elems)
	case *NamedTupleValue:
		elems := make([]*types.JuliaType, len(val.Values))
		for i, e := range val.Values {
			elems[i] = TypeOf(e)
		}
		return types.NamedTupleOf(val.Names, elems)
	case *DictValue:
		return types.DictOf(val.KeyT, val.ValT)
	case *SetValue:
		return types.SetOf(val.Elem)
	case RangeValue:
		if val.Step != nil {
			return types.StepRangeOf(TypeOf(val.Start))
		}
		return types.UnitRangeOf(TypeOf(val.Start))
	case StructRef:
		return types.Any
	case StructInstance:
		return val.Type
	case *StructInstance:
		return val.Type
	case StructInline:
		return types.Struct(val.TypeName)
	case *ClosureValue, FunctionValue:
		return types.FunctionT
	case *GeneratorValue:
		return types.Any
	case IOValue:
		return types.IOT
	case *IOBuffer:
		return types.IOBufferT
	default:
		return types.Any
	}
}
