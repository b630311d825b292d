package effects

import "strings"

// bangMutators names builtins whose trailing `!` is Julia's own
// convention for "this mutates its argument" — mirrored here as the
// NoMutate=false set. Anything ending in `!` is mutating even if not
// listed explicitly, since user-defined functions follow the same
// convention.
var bangMutators = map[string]bool{
	"setindex!": true, "delete!": true, "merge!": true, "get!": true,
}

// ioBuiltins names builtins with observable I/O.
var ioBuiltins = map[string]bool{
	"println": true, "print": true,
}

// InferBuiltinEffects returns the leaf effects of calling a known
// builtin/intrinsic by name, before merging in its argument effects.
// Everything terminates and never throws at this layer (a genuine
// runtime error, e.g. out-of-bounds getindex, is a VM-level panic
// outside this static approximation, matching propagation.rs's own
// silence on Stmt/Expr variants it doesn't special-case).
func InferBuiltinEffects(name string) Effects {
	e := Total()
	if strings.HasSuffix(name, "!") || bangMutators[name] {
		e.NoMutate = false
	}
	if ioBuiltins[name] {
		e.NoIO = false
	}
	return e
}

// InferLeafEffects returns the effects of a leaf expression that carries
// no calls of its own (literals, variable references, field accesses on
// already-evaluated receivers, ...): always Total, since sequencing in
// via Merge happens at the statement/expression-walk layer.
func InferLeafEffects() Effects {
	return Total()
}
