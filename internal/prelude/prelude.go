// Package prelude implements the loader interface spec.md §6 names for
// the two text blobs the core language consumes at startup: a default
// prelude (loaded unless --minimal-prelude is given) and a minimal
// one. Their contents are explicitly out of scope — this package only
// owns parse -> lower -> deduplicate-against-user-names -> mark
// is_base_extension, the same four steps cmd/juliavm runs over
// whatever source an embedder supplies.
//
// Grounded on the teacher's own bootstrapping of built-in Sentra code
// before a user program runs (internal/vmregister/stdlib.go parses and
// registers a fixed set of builtin definitions at VM startup); this
// package generalizes that one-shot "run some bundled source first"
// idiom into a reusable Load/Merge pair operating on this module's own
// lexer/parser/lowering pipeline instead of re-entering the VM.
package prelude

import (
	"fmt"

	"juliavm/internal/ir"
	"juliavm/internal/lexer"
	"juliavm/internal/lowering"
	"juliavm/internal/parser"
)

// Kind selects which of the two blobs spec.md §6 names to load.
type Kind int

const (
	Default Kind = iota
	Minimal
)

func (k Kind) String() string {
	if k == Minimal {
		return "minimal"
	}
	return "default"
}

// Load parses and lowers source (the prelude text itself, supplied by
// the caller since this package owns none), drops any definition whose
// name the user's own program already defines, and marks every
// surviving function IsBaseExtension so later stages (internal/infer's
// UserFunctionsOnly, internal/compiler's BaseFunctionCount split) can
// tell it apart from user code.
func Load(kind Kind, source string, userDefined map[string]bool) (*ir.Program, error) {
	toks := lexer.NewScanner(source).ScanTokens()
	root := parser.New(toks, kind.String()+"-prelude").Parse()
	low := lowering.New(kind.String() + "-prelude")
	prog := low.LowerFile(root)
	if !low.Diags.Empty() {
		return nil, fmt.Errorf("prelude: failed to lower %s prelude: %v", kind, low.Diags.Items())
	}
	dedup(prog, userDefined)
	markBaseExtension(prog)
	return prog, nil
}

func dedup(prog *ir.Program, userDefined map[string]bool) {
	if len(userDefined) == 0 {
		return
	}
	kept := prog.Functions[:0]
	for _, fn := range prog.Functions {
		if userDefined[fn.Name] {
			continue
		}
		kept = append(kept, fn)
	}
	prog.Functions = kept
}

func markBaseExtension(prog *ir.Program) {
	for _, fn := range prog.Functions {
		fn.IsBaseExtension = true
	}
}

// Merge prepends prelude's surviving functions/structs ahead of user's
// own, and records how many of the combined Functions slice came from
// the prelude so downstream BaseFunctionCount-aware stages (infer,
// compiler) skip them by default.
func Merge(prelude, user *ir.Program) *ir.Program {
	if prelude == nil {
		user.BaseFunctionCount = 0
		return user
	}
	out := &ir.Program{
		Functions:     append(append([]*ir.Function{}, prelude.Functions...), user.Functions...),
		Structs:       append(append([]*ir.StructDef{}, prelude.Structs...), user.Structs...),
		AbstractTypes: append(append([]*ir.AbstractDef{}, prelude.AbstractTypes...), user.AbstractTypes...),
		Enums:         append(append([]*ir.EnumDef{}, prelude.Enums...), user.Enums...),
		Modules:       user.Modules,
		Usings:        user.Usings,
		Macros:        user.Macros,
		Main:          user.Main,
	}
	out.BaseFunctionCount = len(prelude.Functions)
	return out
}

// UserDefinedNames collects the top-level function names a lowered
// user program declares, the set Load's dedup step checks against so a
// user's own `length` definition shadows the prelude's instead of
// colliding with it.
func UserDefinedNames(user *ir.Program) map[string]bool {
	names := make(map[string]bool, len(user.Functions))
	for _, fn := range user.Functions {
		names[fn.Name] = true
	}
	return names
}
