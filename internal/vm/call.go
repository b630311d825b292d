// Call-site execution: OpCall (native/closure/plain-function callee)
// and OpDispatchCall (multiple-dispatch resolution against a
// dispatch.MethodTable), grounded on the teacher's own call handling
// (internal/vm/vm.go's OpCall case) but split across three callee
// shapes this language's calling convention distinguishes
// (internal/compiler's compileCall/compileBuiltinCall).
package vm

import (
	"fmt"

	"juliavm/internal/compiler"
	"juliavm/internal/dispatch"
	"juliavm/internal/types"
	"juliavm/internal/value"
)

func (vm *VM) popKwArgs(n int) map[string]value.Value {
	kwargs := map[string]value.Value{}
	for i := 0; i < n; i++ {
		val := vm.pop()
		name, _ := vm.pop().(string)
		kwargs[name] = val
	}
	return kwargs
}

func (vm *VM) popArgs(n int) []value.Value {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	return args
}

func (vm *VM) execCall() error {
	argCount := int(vm.readByte())
	kwargCount := int(vm.readByte())
	callee := vm.pop()
	kwargs := vm.popKwArgs(kwargCount)
	args := vm.popArgs(argCount)

	switch c := callee.(type) {
	case compiler.FunctionRefConst:
		native, ok := vm.natives[c.Name]
		if !ok {
			return fmt.Errorf("UndefVarError: %s is not defined", c.Name)
		}
		result, err := native(vm, args, kwargs)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil

	case value.FunctionValue:
		return vm.invokeCompiled(c.Index, args, nil)

	case *value.ClosureValue:
		return vm.invokeClosure(c, args)

	case *value.GeneratorValue:
		return vm.invokeCompiled(c.FuncIndex, append([]value.Value{c.Underlying}, args...), nil)

	default:
		return fmt.Errorf("MethodError: objects of type %T are not callable", callee)
	}
}

// invokeCompiled pushes a fresh frame bound to functions[idx], seeding
// its locals with args followed by captured (for a closure's function
// body); the interpreter loop picks the new frame up on its next
// iteration rather than this call recursing into the loop itself.
func (vm *VM) invokeCompiled(idx int, args []value.Value, captured map[string]value.Value) error {
	if idx < 0 || idx >= len(vm.functions) {
		return fmt.Errorf("UndefVarError: function index %d is not defined", idx)
	}
	fn := vm.functions[idx]
	locals := make([]value.Value, 0, len(args)+len(fn.CapturedNames))
	locals = append(locals, args...)
	for _, name := range fn.CapturedNames {
		locals = append(locals, captured[name])
	}
	vm.pushFrame(newFrame(fn.Chunk, fn.Name, locals))
	return nil
}

func (vm *VM) invokeClosure(c *value.ClosureValue, args []value.Value) error {
	return vm.invokeCompiled(c.FnIndex, args, c.Captured)
}

func (vm *VM) execDispatchCall() error {
	nameIdx := int(vm.readByte())
	argCount := int(vm.readByte())
	kwargCount := int(vm.readByte())
	name := vm.constant(nameIdx).(string)

	_ = vm.popKwArgs(kwargCount) // dispatch.Method carries no keyword-parameter slots yet
	args := vm.popArgs(argCount)

	argTypes := vm.argTypesOf(args)
	method, _, err := dispatch.Dispatch(vm.methods, name, argTypes)
	if err != nil {
		return err
	}
	return vm.invokeCompiled(method.FuncIndex, args, nil)
}

// argTypesOf resolves each argument's runtime type for dispatch; a
// StructRef is looked up on the heap instead of going through
// value.TypeOf directly, since TypeOf alone has no heap access to find
// out which concrete struct a reference points to.
func (vm *VM) argTypesOf(args []value.Value) []*types.JuliaType {
	out := make([]*types.JuliaType, len(args))
	for i, a := range args {
		if ref, ok := a.(value.StructRef); ok {
			out[i] = vm.heap.Get(ref).Type
			continue
		}
		out[i] = value.TypeOf(a)
	}
	return out
}

func (vm *VM) execClosure() {
	fnIdx := int(vm.readByte())
	capCount := int(vm.readByte())
	namesIdx := int(vm.readByte())

	fnConst := vm.constant(fnIdx).(int)
	names := vm.constant(namesIdx).([]string)

	captured := map[string]value.Value{}
	for i := capCount - 1; i >= 0; i-- {
		captured[names[i]] = vm.pop()
	}

	fn := vm.functions[fnConst]
	vm.push(&value.ClosureValue{FnIndex: fnConst, Name: fn.Name, Captured: captured})
}
