// Package optimizer implements the six AoT IR optimization passes
// spec.md §4.10 names: constant folding, dead code elimination,
// strength reduction, common subexpression elimination, loop
// invariant code motion + unrolling, and inlining. Each pass runs
// per-function to a fixed point (or PassConfig's iteration cap,
// whichever comes first), and Run repeats that fold/strength-reduce/
// CSE/DCE/loop-opt round after inlining, since inlining a
// call site routinely exposes new constant-foldable and dead code the
// first round never saw.
//
// Grounded on the same worklist-to-fixed-point discipline
// internal/effects.Propagate already uses for effect inference
// (internal/effects/propagation.go) and on
// original_source/.../compile/effects/propagation.rs's fixed iteration
// bound per function, generalized from "propagate one fact" to "run a
// pass until it stops changing anything."
package optimizer

import "juliavm/internal/aotir"

// PassConfig bounds how hard the pipeline works per function: an
// iteration cap for the fold/DCE/SR/CSE fixed-point loop, a trip-count
// ceiling for loop unrolling, and toggles for LICM and unrolling (both
// on in DefaultConfig; turning them off lets an embedder opt out of
// code growth it doesn't want).
type PassConfig struct {
	MaxIterations int
	UnrollLimit   int
	EnableLICM    bool
	EnableUnroll  bool
}

func DefaultConfig() PassConfig {
	return PassConfig{MaxIterations: 8, UnrollLimit: 8, EnableLICM: true, EnableUnroll: true}
}

// Stats records how many rewrites each pass made, across every
// function in the program, for cmd/juliavm's --stats "optimizations
// applied" counter.
type Stats struct {
	ConstantFold   int
	DeadCodeElim   int
	StrengthReduce int
	CommonSubexpr  int
	LoopOpt        int
	Inline         int
}

func (s Stats) Total() int {
	return s.ConstantFold + s.DeadCodeElim + s.StrengthReduce + s.CommonSubexpr + s.LoopOpt + s.Inline
}

// Run executes the full pipeline in place over prog's functions and
// returns the aggregate change counts.
func Run(prog *aotir.AotProgram, cfg PassConfig) Stats {
	var stats Stats
	for _, fn := range prog.Functions {
		runLocalFixedPoint(fn, cfg, &stats)
	}
	stats.Inline += runInline(prog, cfg)
	for _, fn := range prog.Functions {
		runLocalFixedPoint(fn, cfg, &stats)
	}
	return stats
}

// runLocalFixedPoint repeats fold -> strength-reduce -> CSE -> DCE ->
// loop-opt over one function until nothing changes or MaxIterations is
// hit, mirroring the "run until changed==false" shape every pass in
// this package exposes individually.
func runLocalFixedPoint(fn *aotir.AotFunction, cfg PassConfig, stats *Stats) {
	iterCap := cfg.MaxIterations
	if iterCap <= 0 {
		iterCap = 1
	}
	for i := 0; i < iterCap; i++ {
		changed := false
		if n := foldFunction(fn); n > 0 {
			stats.ConstantFold += n
			changed = true
		}
		if n := strengthReduceFunction(fn); n > 0 {
			stats.StrengthReduce += n
			changed = true
		}
		if n := cseFunction(fn); n > 0 {
			stats.CommonSubexpr += n
			changed = true
		}
		if n := deadCodeEliminate(fn); n > 0 {
			stats.DeadCodeElim += n
			changed = true
		}
		if n := loopOptFunction(fn, cfg); n > 0 {
			stats.LoopOpt += n
			changed = true
		}
		if !changed {
			break
		}
	}
}
