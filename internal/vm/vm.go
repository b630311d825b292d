// Package vm executes the bytecode internal/compiler produces
// (spec.md §4.9/§4.10): a stack machine operating on internal/value's
// Value representation, resolving OpDispatchCall sites against
// internal/dispatch's method table and OpCall sites against either a
// native builtin, a plain compiled function, or a value.ClosureValue.
//
// Grounded on the teacher's EnhancedVM (internal/vm/vm.go): the same
// flat value stack plus a growable call-frame slice, the same
// fetch-decode-switch main loop, and the same try/catch unwinding
// scheme (a TryFrame stack recording where to resume). The teacher's
// many competing hand-optimized variants of this same loop
// (vm_enhanced.go, vm_super.go, vm_production.go, vm_cached.go,
// vm_fast.go, vm_hotfix.go, vm_optimized_v2.go, vm_stack_fix.go,
// vm_stack_manager.go, vm_super_loops.go, vm_super_strings.go) are
// folded into this one implementation rather than ported file-by-file:
// they are successive drafts of the identical execution loop, and
// keeping only the most complete one is what actually adapting the
// teacher's design means here (see DESIGN.md).
package vm

import (
	"fmt"
	"time"

	"juliavm/internal/bytecode"
	"juliavm/internal/compiler"
	"juliavm/internal/dispatch"
	"juliavm/internal/rng"
	"juliavm/internal/types"
	"juliavm/internal/value"
)

// VM is one execution of a compiler.Program: a value stack shared
// across every frame, a growable frame stack, globals keyed by name,
// the struct heap spec.md §3.5 requires for by-reference struct
// mutation, and the dispatch/function tables the compiler produced.
type VM struct {
	stack    []value.Value
	frames   []*CallFrame
	globals  map[string]value.Value
	tryStack []TryFrame

	functions []*compiler.CompiledFunction
	methods   *dispatch.MethodTable

	// structTypes gives each struct name a *types.JuliaType identity for
	// isa/typeof on struct instances; the fuller supertype chain the
	// compiler resolved for dispatch purposes (internal/compiler's
	// registerStructsAndAbstracts) isn't reconstructed here since method
	// resolution is already baked into FuncIndex by compile time.
	structTypes map[string]*types.JuliaType

	heap *value.StructHeap

	natives map[string]NativeFunc

	rng rng.Source

	out func(string)
}

// NativeFunc is the signature every builtin/compiler-intrinsic is
// invoked through (spec.md §4.6's Builtin expr, plus the
// __comprehension/__generator helpers internal/compiler/comprehension.go
// compiles comprehensions down to).
type NativeFunc func(vm *VM, args []value.Value, kwargs map[string]value.Value) (value.Value, error)

// New builds a VM ready to run prog.Main, with prog's function table,
// method table, and struct layouts already wired in.
func New(prog *compiler.Program) *VM {
	vm := &VM{
		stack:     make([]value.Value, 0, 1024),
		globals:   map[string]value.Value{},
		functions: prog.Functions,
		methods:   prog.Methods,
		heap:      value.NewStructHeap(),
		out:       defaultOut,
		rng:       rng.NewSeeded(time.Now().UnixNano()),
	}
	vm.structTypes = map[string]*types.JuliaType{}
	for name := range prog.Structs {
		vm.structTypes[name] = types.Struct(name)
	}
	vm.natives = builtinNatives()
	return vm
}

// SetOutput redirects println/print output (used by tests to capture
// what a program prints instead of writing to stdout).
func (vm *VM) SetOutput(fn func(string)) { vm.out = fn }

// SetRNG swaps in a deterministic source for rand()/rand(n), letting a
// caller replay a run bit-for-bit instead of living with the
// time-seeded default New gives every VM.
func (vm *VM) SetRNG(src rng.Source) { vm.rng = src }

func defaultOut(s string) { fmt.Print(s) }

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack)
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v
}

func (vm *VM) peek(offset int) value.Value {
	return vm.stack[len(vm.stack)-1-offset]
}

func (vm *VM) frame() *CallFrame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) pushFrame(f *CallFrame) { vm.frames = append(vm.frames, f) }

func (vm *VM) popFrame() *CallFrame {
	n := len(vm.frames)
	f := vm.frames[n-1]
	vm.frames = vm.frames[:n-1]
	return f
}

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := f.chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort() int {
	f := vm.frame()
	hi := int(f.chunk.Code[f.ip])
	lo := int(f.chunk.Code[f.ip+1])
	f.ip += 2
	return (hi << 8) | lo
}

func (vm *VM) constant(idx int) interface{} {
	return vm.frame().chunk.Constants[idx]
}

// Run executes prog.Main (and, transitively, every function/closure it
// calls) to completion, returning the last value left on the stack by
// the top-level statement sequence.
func (vm *VM) Run(main *bytecode.Chunk) (value.Value, error) {
	vm.pushFrame(newFrame(main, "<main>", nil))
	return vm.loop()
}

// RuntimeError is the Value a throw(...) call (or a failed @test/
// @test_throws assertion) produces; it is caught by value, the same as
// any other Value, and rethrown uncaught as a Go error from Run.
type RuntimeError struct {
	Value   value.Value
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func (vm *VM) loop() (value.Value, error) {
	for len(vm.frames) > 0 {
		if err := vm.step(); err != nil {
			return nil, err
		}
	}
	if len(vm.stack) == 0 {
		return value.Nothing, nil
	}
	return vm.pop(), nil
}

// step executes exactly one instruction of the frame currently on top
// (or pops an exhausted frame, pushing its implicit nothing result),
// leaving vm.frames shorter by one whenever a function body falls off
// its chunk without an explicit OpReturn. Split out from loop so a
// native helper invoking a closure synchronously (callValue, for
// comprehensions/generators) can drive the same execution one
// instruction at a time down to a target frame depth.
func (vm *VM) step() error {
	f := vm.frame()
	if f.ip >= len(f.chunk.Code) {
		vm.popFrame()
		if len(vm.frames) > 0 {
			vm.push(value.Nothing)
		}
		return nil
	}

	op := bytecode.OpCode(f.chunk.Code[f.ip])
	f.ip++

	switch op {
	case bytecode.OpConstant:
		idx := vm.readByte()
		vm.push(vm.resolveConstant(vm.constant(int(idx))))

	case bytecode.OpNil:
		vm.push(value.Nothing)

	case bytecode.OpPop:
		vm.pop()

	case bytecode.OpDup:
		vm.push(vm.peek(0))

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		b := vm.pop()
		a := vm.pop()
		res, err := arith(op, a, b)
		if err != nil {
			if e, ok := vm.throwGo(err); ok {
				vm.stack = e
				return nil
			}
			return err
		}
		vm.push(res)

	case bytecode.OpNegate:
		a := vm.pop()
		res, err := negate(a)
		if err != nil {
			return err
		}
		vm.push(res)

	case bytecode.OpNot:
		vm.push(!truthy(vm.pop()))

	case bytecode.OpEqual:
		b := vm.pop()
		a := vm.pop()
		vm.push(valuesEqual(a, b))

	case bytecode.OpNotEqual:
		b := vm.pop()
		a := vm.pop()
		vm.push(!valuesEqual(a, b))

	case bytecode.OpGreater, bytecode.OpLess, bytecode.OpGreaterEqual, bytecode.OpLessEqual:
		b := vm.pop()
		a := vm.pop()
		res, err := compare(op, a, b)
		if err != nil {
			return err
		}
		vm.push(res)

	case bytecode.OpAnd:
		b := vm.pop()
		a := vm.pop()
		vm.push(truthy(a) && truthy(b))

	case bytecode.OpOr:
		b := vm.pop()
		a := vm.pop()
		vm.push(truthy(a) || truthy(b))

	case bytecode.OpConcat:
		b := vm.pop()
		a := vm.pop()
		vm.push(toDisplayString(a) + toDisplayString(b))

	case bytecode.OpJump:
		off := vm.readShort()
		f.ip += off

	case bytecode.OpJumpIfFalse:
		off := vm.readShort()
		if !truthy(vm.peek(0)) {
			f.ip += off
		}
		vm.pop()

	case bytecode.OpLoop:
		off := vm.readShort()
		f.ip -= off

	case bytecode.OpGetLocal:
		slot := int(vm.readByte())
		vm.push(f.getLocal(slot))

	case bytecode.OpSetLocal:
		slot := int(vm.readByte())
		f.setLocal(slot, vm.peek(0))

	case bytecode.OpGetGlobal:
		idx := vm.readByte()
		name := vm.constant(int(idx)).(string)
		vm.push(vm.globals[name])

	case bytecode.OpSetGlobal, bytecode.OpDefineGlobal:
		idx := vm.readByte()
		name := vm.constant(int(idx)).(string)
		vm.globals[name] = vm.peek(0)

	case bytecode.OpCall:
		if err := vm.execCall(); err != nil {
			if e, ok := vm.throwGo(err); ok {
				vm.stack = e
				return nil
			}
			return err
		}

	case bytecode.OpDispatchCall:
		if err := vm.execDispatchCall(); err != nil {
			if e, ok := vm.throwGo(err); ok {
				vm.stack = e
				return nil
			}
			return err
		}

	case bytecode.OpClosure:
		vm.execClosure()

	case bytecode.OpReturn:
		ret := value.Value(value.Nothing)
		if len(vm.stack) > 0 {
			ret = vm.pop()
		}
		vm.popFrame()
		vm.push(ret)

	case bytecode.OpArray:
		n := vm.readShort()
		vm.execArray(n)

	case bytecode.OpMakeTuple:
		n := vm.readShort()
		elems := make(value.TupleValue, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		vm.push(elems)

	case bytecode.OpMakeNamedTuple:
		namesIdx := vm.readByte()
		n := vm.readShort()
		names := vm.constant(int(namesIdx)).([]string)
		elems := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		vm.push(&value.NamedTupleValue{Names: names, Values: elems})

	case bytecode.OpMakeRange:
		step := vm.pop()
		stop := vm.pop()
		start := vm.pop()
		if step == value.Nothing {
			step = nil
		}
		vm.push(value.RangeValue{Start: start, Stop: stop, Step: step})

	case bytecode.OpMap:
		n := vm.readShort()
		d := value.NewDict(types.Any, types.Any)
		pairs := make([][2]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v := vm.pop()
			k := vm.pop()
			pairs[i] = [2]value.Value{k, v}
		}
		for _, p := range pairs {
			d.Set(toDisplayString(p[0]), p[0], p[1])
		}
		vm.push(d)

	case bytecode.OpMapGet:
		k := vm.pop()
		d := vm.pop().(*value.DictValue)
		v, ok := d.Get(toDisplayString(k))
		if !ok {
			vm.push(value.Nothing)
		} else {
			vm.push(v)
		}

	case bytecode.OpMapSet:
		v := vm.pop()
		k := vm.pop()
		d := vm.pop().(*value.DictValue)
		d.Set(toDisplayString(k), k, v)
		vm.push(v)

	case bytecode.OpIndex:
		idx := vm.pop()
		recv := vm.pop()
		v, err := indexValue(recv, idx)
		if err != nil {
			return err
		}
		vm.push(v)

	case bytecode.OpSetIndex:
		val := vm.pop()
		idx := vm.pop()
		recv := vm.pop()
		if err := setIndexValue(recv, idx, val); err != nil {
			return err
		}
		vm.push(val)

	case bytecode.OpGetField:
		idx := vm.readByte()
		field := vm.constant(int(idx)).(string)
		recv := vm.pop()
		v, err := vm.getField(recv, field)
		if err != nil {
			return err
		}
		vm.push(v)

	case bytecode.OpSetField:
		idx := vm.readByte()
		field := vm.constant(int(idx)).(string)
		val := vm.pop()
		recv := vm.pop()
		if err := vm.setField(recv, field, val); err != nil {
			return err
		}
		vm.push(val)

	case bytecode.OpMakeStruct:
		nameIdx := vm.readByte()
		fieldsIdx := vm.readByte()
		argc := vm.readByte()
		name := vm.constant(int(nameIdx)).(string)
		fieldOrder := vm.constant(int(fieldsIdx)).([]string)
		args := make([]value.Value, argc)
		for i := int(argc) - 1; i >= 0; i-- {
			args[i] = vm.pop()
		}
		vm.push(vm.makeStruct(name, fieldOrder, args))

	case bytecode.OpUnpack:
		n := int(vm.readByte())
		src := vm.pop()
		vals := unpackValue(src, n)
		for i := n - 1; i >= 0; i-- {
			vm.push(vals[i])
		}

	case bytecode.OpIterStart:
		it := vm.pop()
		vm.push(newIterator(it))

	case bytecode.OpIterNext:
		iter := vm.peek(0).(*iterState)
		v, ok := iter.next()
		if !ok {
			vm.push(false)
		} else {
			vm.push(v)
			vm.push(true)
		}

	case bytecode.OpIterEnd:
		vm.pop()

	case bytecode.OpTypeOf:
		v := vm.pop()
		vm.push(value.TypeOf(v).String())

	case bytecode.OpIsType:
		name := vm.pop()
		v := vm.pop()
		vm.push(value.TypeOf(v).String() == toDisplayString(name))

	case bytecode.OpPrint:
		vm.out(toDisplayString(vm.pop()))

	case bytecode.OpThrow:
		v := vm.pop()
		if e, ok := vm.throwValue(v); ok {
			vm.stack = e
			return nil
		}
		return &RuntimeError{Value: v, Message: toDisplayString(v)}

	case bytecode.OpTry:
		off := vm.readShort()
		vm.tryStack = append(vm.tryStack, TryFrame{
			catchIP:    f.ip + off,
			stackDepth: len(vm.stack),
			frameDepth: len(vm.frames),
		})

	case bytecode.OpImport:
		idx := vm.readByte()
		_ = vm.constant(int(idx))
		vm.push(value.Nothing)

	default:
		vm.push(value.Nothing)
	}
	return nil
}

// resolveConstant converts a compiler.FunctionRefConst constant-pool
// payload to the runtime callable Value it denotes (a native sentinel
// stays a FunctionRefConst for execCall to recognize; a real function
// index becomes a value.FunctionValue), leaving every other constant
// kind untouched.
func (vm *VM) resolveConstant(c interface{}) value.Value {
	if ref, ok := c.(compiler.FunctionRefConst); ok {
		if ref.Index < 0 {
			return ref
		}
		return value.FunctionValue{Name: ref.Name, Index: ref.Index}
	}
	return c
}

// throwGo adapts a Go error raised by an arithmetic/index/field helper,
// or a *RuntimeError a native throw()/error() call produced, into the
// same try/catch unwinding path OpThrow uses — a *RuntimeError keeps
// the exact Value a user threw, everything else becomes a message-only
// RuntimeError — returning the updated stack to resume from and true
// if a try frame caught it.
func (vm *VM) throwGo(err error) ([]value.Value, bool) {
	if re, ok := err.(*RuntimeError); ok {
		if re.Value != nil {
			return vm.throwValue(re.Value)
		}
		return vm.throwValue(re)
	}
	return vm.throwValue(&RuntimeError{Message: err.Error()})
}

func (vm *VM) throwValue(v value.Value) ([]value.Value, bool) {
	if len(vm.tryStack) == 0 {
		return nil, false
	}
	t := vm.tryStack[len(vm.tryStack)-1]
	vm.tryStack = vm.tryStack[:len(vm.tryStack)-1]
	for len(vm.frames) > t.frameDepth {
		vm.popFrame()
	}
	vm.frame().ip = t.catchIP
	stack := vm.stack[:t.stackDepth]
	stack = append(stack, v)
	return stack, true
}
