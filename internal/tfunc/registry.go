// Package tfunc implements the transfer-function registry type inference
// consults to compute a call's return type from its argument types
// (spec.md §4.4). A transfer function encodes the type-level semantics
// of one builtin/operator name; the registry maps names to functions
// the way the teacher's VM maps builtin names to their Go
// implementations (internal/vm/vm.go's repeated `builtins[name] = fn`
// registration blocks), generalized from "compute a Value" to "compute
// a LatticeType".
//
// Grounded on original_source/.../compile/tfuncs/mod.rs: the same
// category split (arithmetic, array_ops, string_ops, intrinsics,
// field_ops, iterator_ops, collection_ops, math_intrinsics,
// complex_ops) and the same register_all entry point, re-expressed as
// Go registration functions instead of Rust module-qualified calls.
package tfunc

import "juliavm/internal/lattice"

// Fn computes a call's return type from its (already-inferred)
// argument types.
type Fn func(args []lattice.LatticeType) lattice.LatticeType

// ContextualFn is a transfer function that additionally needs access
// to struct-field layout (e.g. getfield resolving a field's declared
// type from the struct table) — mirrors tfuncs/mod.rs's
// ContextualTransferFn/TFuncContext split from the plain TransferFn.
type ContextualFn func(args []lattice.LatticeType, ctx *Context) lattice.LatticeType

// Context carries whatever a contextual transfer function needs beyond
// its argument types. StructFields maps a struct type name to its
// field name -> declared-type-name table, populated by
// internal/lowering's struct declarations.
type Context struct {
	StructFields map[string]map[string]string
	ResolveField func(structName, field string) lattice.LatticeType
}

// Registry maps an operation name to its transfer function(s).
type Registry struct {
	plain      map[string]Fn
	contextual map[string]ContextualFn
}

func New() *Registry {
	return &Registry{
		plain:      map[string]Fn{},
		contextual: map[string]ContextualFn{},
	}
}

func (r *Registry) Register(name string, fn Fn) {
	r.plain[name] = fn
}

func (r *Registry) RegisterContextual(name string, fn ContextualFn) {
	r.contextual[name] = fn
}

func (r *Registry) Has(name string) bool {
	_, ok := r.plain[name]
	if ok {
		return true
	}
	_, ok = r.contextual[name]
	return ok
}

func (r *Registry) Len() int {
	n := len(r.plain)
	for name := range r.contextual {
		if _, ok := r.plain[name]; !ok {
			n++
		}
	}
	return n
}

// InferReturnType looks up name's transfer function and applies it to
// args. A Bottom argument propagates straight to Bottom before any
// transfer function runs — spec.md §4.4's Bottom-propagation
// discipline, also the first check every tfunc in
// original_source/.../compile/tfuncs/mod.rs's sibling files performs.
// An unregistered name infers to Top (unknown, assume nothing).
func (r *Registry) InferReturnType(name string, args []lattice.LatticeType) lattice.LatticeType {
	for _, a := range args {
		if a.Kind == lattice.KBottom {
			return lattice.Bottom
		}
	}
	if fn, ok := r.plain[name]; ok {
		return fn(args)
	}
	return lattice.Top
}

// InferReturnTypeContextual is InferReturnType for names registered via
// RegisterContextual, falling back to the plain registration (and then
// Top) when no contextual function was registered for name.
func (r *Registry) InferReturnTypeContextual(name string, args []lattice.LatticeType, ctx *Context) lattice.LatticeType {
	for _, a := range args {
		if a.Kind == lattice.KBottom {
			return lattice.Bottom
		}
	}
	if fn, ok := r.contextual[name]; ok {
		return fn(args, ctx)
	}
	return r.InferReturnType(name, args)
}

// RegisterAll populates registry with every transfer function this
// package implements, mirroring tfuncs/mod.rs's register_all.
func RegisterAll(r *Registry) {
	registerArithmetic(r)
	registerArrayOps(r)
	registerStringOps(r)
	registerIntrinsics(r)
	registerFieldOps(r)
	registerIteratorOps(r)
	registerCollectionOps(r)
	registerMathIntrinsics(r)
	registerComplexOps(r)
}

func arg(args []lattice.LatticeType, i int) lattice.LatticeType {
	if i < 0 || i >= len(args) {
		return lattice.Top
	}
	return args[i]
}

func isNumberLike(l lattice.LatticeType) bool {
	return lattice.Subtype(l, lattice.NumberAbstract())
}

func widestNumeric(a, b lattice.LatticeType) lattice.LatticeType {
	if !isNumberLike(a) || !isNumberLike(b) {
		return lattice.Top
	}
	if a.String() == b.String() {
		return a
	}
	// Distinct numeric concretes widen to the Number abstraction rather
	// than forming a precise promotion lattice (spec.md §4.4 leaves
	// numeric promotion to the dispatch layer, not inference).
	return lattice.NumberAbstract()
}
