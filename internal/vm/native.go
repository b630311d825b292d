// Compiler-intrinsic builtins (println, length, push!, ...) plus the
// __comprehension/__comprehension_multi/__generator helpers
// internal/compiler/comprehension.go compiles comprehensions and
// generators down to, grounded on the teacher's registerBuiltins
// (internal/vm/vm.go): a name-keyed table of Go functions invoked
// through the same OpCall convention as a closure value, rather than
// each builtin getting its own opcode.
package vm

import (
	"fmt"

	"juliavm/internal/types"
	"juliavm/internal/value"
)

func builtinNatives() map[string]NativeFunc {
	return map[string]NativeFunc{
		"println":              nativePrintln,
		"print":                nativePrint,
		"length":               nativeLength,
		"push!":                nativePush,
		"pop!":                 nativePop,
		"append!":              nativeAppend,
		"string":               nativeString,
		"typeof":               nativeTypeof,
		"isa":                  nativeIsa,
		"throw":                nativeThrow,
		"error":                nativeError,
		"collect":              nativeCollect,
		"isdefined":            nativeIsdefined,
		"__comprehension":      nativeComprehension,
		"__comprehension_multi": nativeMultiComprehension,
		"__generator":          nativeGenerator,
		"rand":                 nativeRand,
	}
}

// nativeRand implements rand()/rand(n) against the VM's injected
// rng.Source: no arguments returns a Float64 in [0, 1), one integer
// argument returns a uniformly chosen Int64 in [0, n).
func nativeRand(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	switch len(args) {
	case 0:
		return vm.rng.NextF64(), nil
	case 1:
		n, ok := args[0].(value.I64)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("MethodError: no method matching rand(::%T)", args[0])
		}
		return value.I64(vm.rng.NextU64() % uint64(n)), nil
	default:
		return nil, fmt.Errorf("MethodError: rand expects 0 or 1 arguments, got %d", len(args))
	}
}

func nativePrintln(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = toDisplayString(a)
	}
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += " "
		}
		s += p
	}
	vm.out(s + "\n")
	return value.Nothing, nil
}

func nativePrint(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	for _, a := range args {
		vm.out(toDisplayString(a))
	}
	return value.Nothing, nil
}

func nativeLength(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("MethodError: length expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *value.ArrayValue:
		return value.I64(v.Data.Len()), nil
	case value.TupleValue:
		return value.I64(len(v)), nil
	case *value.NamedTupleValue:
		return value.I64(len(v.Values)), nil
	case *value.DictValue:
		return value.I64(v.Len()), nil
	case *value.SetValue:
		return value.I64(v.Len()), nil
	case string:
		return value.I64(len([]rune(v))), nil
	case value.RangeValue:
		return value.I64(len(rangeValues(v))), nil
	}
	return nil, fmt.Errorf("MethodError: no method matching length(::%T)", args[0])
}

func nativePush(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("MethodError: push! expects an array argument")
	}
	arr, ok := args[0].(*value.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("MethodError: no method matching push!(::%T, ...)", args[0])
	}
	for _, v := range args[1:] {
		arr.Data = arr.Data.Append(v)
	}
	arr.Shape = []int{arr.Data.Len()}
	return arr, nil
}

func nativePop(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	arr, ok := args[0].(*value.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("MethodError: no method matching pop!(::%T)", args[0])
	}
	n := arr.Data.Len()
	if n == 0 {
		return nil, fmt.Errorf("ArgumentError: array must be non-empty")
	}
	last := arr.Data.Get(n - 1)
	rebuilt := make(value.AnyData, n-1)
	for i := 0; i < n-1; i++ {
		rebuilt[i] = arr.Data.Get(i)
	}
	arr.Data = rebuilt
	arr.Shape = []int{arr.Data.Len()}
	return last, nil
}

func nativeAppend(vm *VM, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("MethodError: append! expects 2 arguments")
	}
	arr, ok := args[0].(*value.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("MethodError: no method matching append!(::%T, ...)", args[0])
	}
	other := newIterator(args[1])
	for {
		v, ok := other.next()
		if !ok {
			break
		}
		arr.Data = arr.Data.Append(v)
	}
	arr.Shape = []int{arr.Data.Len()}
	return arr, nil
}

func nativeString(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	s := ""
	for _, a := range args {
		s += toDisplayString(a)
	}
	return s, nil
}

func nativeTypeof(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("MethodError: typeof expects 1 argument")
	}
	if ref, ok := args[0].(value.StructRef); ok {
		return vm.heap.Get(ref).Type.String(), nil
	}
	return value.TypeOf(args[0]).String(), nil
}

func nativeIsa(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("MethodError: isa expects 2 arguments")
	}
	want, ok := args[1].(string)
	if !ok {
		return false, nil
	}
	if ref, ok := args[0].(value.StructRef); ok {
		return vm.heap.Get(ref).Type.String() == want, nil
	}
	return value.TypeOf(args[0]).String() == want, nil
}

func nativeThrow(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	var v value.Value = value.Nothing
	if len(args) > 0 {
		v = args[0]
	}
	return nil, &RuntimeError{Value: v, Message: toDisplayString(v)}
}

func nativeError(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	msg := ""
	for _, a := range args {
		msg += toDisplayString(a)
	}
	return nil, &RuntimeError{Value: msg, Message: msg}
}

func nativeCollect(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("MethodError: collect expects 1 argument")
	}
	it := newIterator(args[0])
	var out []value.Value
	for {
		v, ok := it.next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	data := make(value.AnyData, len(out))
	copy(data, out)
	return value.NewVector(data, types.Any), nil
}

// nativeIsdefined receives the argument already evaluated by the
// ordinary OpGetGlobal/OpGetLocal load path, so it can only tell "never
// assigned" (Go's nil interface{}, the zero value of the globals map)
// from "assigned, even to nothing" (value.Nothing is a real struct).
func nativeIsdefined(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return false, nil
	}
	return args[0] != nil, nil
}

// nativeComprehension/nativeMultiComprehension/nativeGenerator realize
// the native-call convention internal/compiler/comprehension.go targets
// instead of a dedicated opcode: walk the iterable(s), invoke the
// result closure (and, if present, the filter closure) through the
// VM's normal call mechanism, and collect survivors into an array.
func nativeComprehension(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("MethodError: comprehension expects (iter, result, filter)")
	}
	it := newIterator(args[0])
	result := args[1]
	filter := args[2]
	var out []value.Value
	for {
		v, ok := it.next()
		if !ok {
			break
		}
		if filter != value.Nothing && filter != nil {
			keep, err := vm.callValue(filter, []value.Value{v})
			if err != nil {
				return nil, err
			}
			if !truthy(keep) {
				continue
			}
		}
		r, err := vm.callValue(result, []value.Value{v})
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	data := make(value.AnyData, len(out))
	copy(data, out)
	return value.NewVector(data, types.Any), nil
}

func nativeMultiComprehension(vm *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("MethodError: multi-comprehension expects (iters..., result, filter)")
	}
	result := args[len(args)-2]
	filter := args[len(args)-1]
	iters := make([]*iterState, len(args)-2)
	for i, a := range args[:len(args)-2] {
		iters[i] = newIterator(a)
	}
	var out []value.Value
	for {
		vals := make([]value.Value, len(iters))
		done := false
		for i, it := range iters {
			v, ok := it.next()
			if !ok {
				done = true
				break
			}
			vals[i] = v
		}
		if done {
			break
		}
		if filter != value.Nothing && filter != nil {
			keep, err := vm.callValue(filter, vals)
			if err != nil {
				return nil, err
			}
			if !truthy(keep) {
				continue
			}
		}
		r, err := vm.callValue(result, vals)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	data := make(value.AnyData, len(out))
	copy(data, out)
	return value.NewVector(data, types.Any), nil
}

// nativeGenerator wraps the iterable and result closure into a lazy
// value.GeneratorValue, evaluated element-by-element wherever it is
// consumed (for loops, collect). GeneratorValue has no field for a
// filter closure, so a filtered generator expression (`x for x in xs if
// p(x)`) drops the filter here rather than evaluating it lazily —
// collect(filter) upstream of the generator is the workaround until
// GeneratorValue grows a predicate slot.
func nativeGenerator(_ *VM, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("MethodError: generator expects (iter, result, filter)")
	}
	closure, ok := args[1].(*value.ClosureValue)
	if !ok {
		return nil, fmt.Errorf("MethodError: generator result must be a closure")
	}
	return &value.GeneratorValue{Underlying: args[0], FuncIndex: closure.FnIndex}, nil
}

// callValue invokes a closure/function Value synchronously to
// completion, used by native helpers (comprehensions, generators) that
// need a result before they can return to the interpreter loop
// themselves, unlike an ordinary OpCall which just starts a frame and
// lets the loop resume it.
func (vm *VM) callValue(callee value.Value, args []value.Value) (value.Value, error) {
	var idx int
	var captured map[string]value.Value
	switch c := callee.(type) {
	case *value.ClosureValue:
		idx = c.FnIndex
		captured = c.Captured
	case value.FunctionValue:
		idx = c.Index
	default:
		return nil, fmt.Errorf("MethodError: %T is not callable", callee)
	}

	savedFrameDepth := len(vm.frames)
	if err := vm.invokeCompiled(idx, args, captured); err != nil {
		return nil, err
	}
	for len(vm.frames) > savedFrameDepth {
		if err := vm.step(); err != nil {
			return nil, err
		}
	}
	return vm.pop(), nil
}
