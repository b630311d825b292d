package vm

import (
	"juliavm/internal/bytecode"
	"juliavm/internal/value"
)

// CallFrame is one activation record, grounded on the teacher's
// EnhancedCallFrame (internal/vm/vm.go): each frame owns its own local
// slots rather than sharing one global stack region, so a closure call
// and its caller never alias local-slot indices.
type CallFrame struct {
	chunk   *bytecode.Chunk
	ip      int
	locals  []value.Value
	fnName  string
}

// TryFrame records where to resume on a thrown error, mirroring the
// teacher's TryFrame (internal/vm/vm.go): a catch offset plus the
// stack/frame depth to unwind back to before the catch block runs.
type TryFrame struct {
	catchIP    int
	stackDepth int
	frameDepth int
}

func newFrame(chunk *bytecode.Chunk, fnName string, locals []value.Value) *CallFrame {
	return &CallFrame{chunk: chunk, locals: locals, fnName: fnName}
}

func (f *CallFrame) getLocal(slot int) value.Value {
	if slot < 0 || slot >= len(f.locals) {
		return nil
	}
	return f.locals[slot]
}

func (f *CallFrame) setLocal(slot int, v value.Value) {
	for len(f.locals) <= slot {
		f.locals = append(f.locals, nil)
	}
	f.locals[slot] = v
}
