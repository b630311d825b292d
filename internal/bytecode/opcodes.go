// Package bytecode defines the stack-machine instruction set the
// compiler emits and the VM executes (spec.md §4.9/§4.10), adapted
// from the teacher's own opcode set: the general array/map/string/
// control-flow instructions carry over unchanged, concurrency
// primitives are dropped (spec.md §5's Non-goals exclude tasks and
// channels), and struct/tuple/range/dispatch/broadcast opcodes are
// added for this language's value model.
package bytecode

type OpCode byte

const (
	OpConstant OpCode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNegate
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpNil
	OpPop
	OpDup
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpCall
	OpClosure
	OpGetUpvalue
	OpSetUpvalue
	OpReturn
	
	// New opcodes for arrays
	OpArray
	OpIndex
	OpSetIndex
	OpArrayLen
	
	// New opcodes for maps
	OpMap
	OpMapGet
	OpMapSet
	OpMapDelete
	OpMapKeys
	OpMapValues
	
	// New opcodes for strings
	OpConcat
	OpStringLen
	OpSubstring
	OpToString
	
	// New opcodes for control flow
	OpAnd
	OpOr
	OpNot
	
	// New opcodes for iteration
	OpIterStart
	OpIterNext
	OpIterEnd
	
	// New opcodes for imports
	OpImport
	OpExport
	
	// New opcodes for error handling
	OpTry
	OpCatch
	OpThrow
	
	// New opcodes for type checking
	OpTypeOf
	OpIsType
	
	// New opcodes for optimization
	OpLoadFast      // Optimized local variable access
	OpStoreFast     // Optimized local variable storage
	OpBuildList     // Build list with known size
	OpBuildMap      // Build map with known size
	OpUnpack        // Unpack array/tuple
	OpSpread        // Spread operator
	
	// Struct/field access (§3.1 struct fields, §4.9 field get/set)
	OpGetField
	OpSetField
	OpMakeStruct

	// Tuple/range/named-tuple construction (§3.1 container literals)
	OpMakeTuple
	OpMakeNamedTuple
	OpMakeRange

	// Multiple-dispatch call, distinct from a plain builtin/closure call
	// so the VM knows to resolve against a method table instead of
	// invoking a single fixed function (§4.8).
	OpDispatchCall

	// Elementwise broadcast over one or more array/range operands
	// (§4.9's dot-call semantics). Declared only: the compiler never
	// emits it and the VM has no case for it.
	OpBroadcastCall
)
