// Package infer implements inter-procedural type-stability analysis:
// given a lowered core-IR program, infer each function's return type by
// abstract interpretation over the lattice and classify it stable or
// unstable, attaching a reason code to every unstable verdict.
//
// Grounded on original_source/.../compile/type_stability/analyzer.rs's
// TypeStabilityAnalyzer (struct shape, AnalysisConfig, and its
// per-statement/per-expression interpretation walk), adapted into the
// teacher's registry-and-report idiom already established by
// internal/tfunc and internal/callgraph.
package infer

import (
	"juliavm/internal/callgraph"
	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/tfunc"
	"juliavm/internal/types"
)

// AnalysisConfig mirrors the Rust analyzer's AnalysisConfig: knobs
// controlling which functions get analyzed and how strictly untyped
// parameters are treated.
type AnalysisConfig struct {
	// IncludeBaseFunctions analyzes functions that shadow/extend base
	// (Julia-stdlib) methods; off by default since those are usually
	// intentionally polymorphic.
	IncludeBaseFunctions bool
	// UserFunctionsOnly skips BaseFunctionCount leading entries of
	// Program.Functions (the prelude's own base-method definitions).
	UserFunctionsOnly bool
	// StrictParameterTyping treats any untyped parameter as an
	// automatic UntypedParameters instability instead of first trying
	// usage-based narrowing.
	StrictParameterTyping bool
}

func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{UserFunctionsOnly: true}
}

// Engine runs type-stability analysis over a program's functions.
type Engine struct {
	cfg      AnalysisConfig
	registry *tfunc.Registry
}

func NewEngine(cfg AnalysisConfig) *Engine {
	r := tfunc.New()
	tfunc.RegisterAll(r)
	return &Engine{cfg: cfg, registry: r}
}

// AnalyzeProgram analyzes every eligible function in prog and returns an
// aggregate report. Functions are visited in reverse-topological call
// order (callees before callers) when a call graph can be built, so a
// callee's inferred return type is available when its caller is
// analyzed — an approximation of the Rust analyzer's fixed-point IPO
// pass without a full cross-function worklist.
func (e *Engine) AnalyzeProgram(prog *ir.Program) *ProgramReport {
	report := NewProgramReport()
	start := 0
	if e.cfg.UserFunctionsOnly && !e.cfg.IncludeBaseFunctions {
		start = prog.BaseFunctionCount
	}
	eligible := prog.Functions[start:]

	order := make([]int, len(eligible))
	for i := range order {
		order[i] = i
	}
	if g := callgraph.BuildFromIR(eligible); g != nil {
		if rev := g.ReverseTopologicalOrder(); len(rev) == len(eligible) {
			order = rev
		}
	}

	known := map[string]lattice.LatticeType{}
	results := make([]*FunctionReport, len(eligible))
	for _, idx := range order {
		fn := eligible[idx]
		fr := e.AnalyzeFunction(fn, known)
		results[idx] = fr
		known[fn.Name] = fr.ReturnType
	}
	for _, fr := range results {
		if fr != nil {
			report.AddFunction(fr)
		}
	}
	return report
}

// AnalyzeFunction infers fn's return type and builds its FunctionReport.
// knownReturns supplies already-inferred return types of other
// functions in the same program, so calls to previously-analyzed
// functions resolve to a concrete type instead of falling back to Top.
func (e *Engine) AnalyzeFunction(fn *ir.Function, knownReturns map[string]lattice.LatticeType) *FunctionReport {
	env := map[string]lattice.LatticeType{}
	sig := make([]ParamSignature, 0, len(fn.Params))
	var untypedNames []string

	constraints := InferParameterConstraints(fn, e.registry)
	var inferredParams []InferredParam

	for _, p := range fn.Params {
		var t lattice.LatticeType
		switch {
		case p.TypeAnnotation != nil:
			t = resolveTypeRef(p.TypeAnnotation)
		case e.cfg.StrictParameterTyping:
			t = lattice.Top
			untypedNames = append(untypedNames, p.Name)
		default:
			if c, ok := constraints[p.Name]; ok && c.Kind != lattice.KTop {
				t = c
				inferredParams = append(inferredParams, InferredParam{Name: p.Name, Type: t.String()})
			} else {
				t = lattice.Top
				untypedNames = append(untypedNames, p.Name)
			}
		}
		env[p.Name] = t
		sig = append(sig, ParamSignature{Name: p.Name, Type: t})
	}

	interp := &interpreter{registry: e.registry, knownReturns: knownReturns}
	returns := interp.walkBlock(fn.Body, env)
	retType := joinAll(returns)

	fr := NewFunctionReport(fn.Name, fn.Span.Line, sig, retType)
	if len(untypedNames) > 0 {
		fr.AddReason(Reason{Kind: UntypedParameters, ParamNames: untypedNames})
	}
	if len(inferredParams) > 0 {
		fr.AddReason(Reason{Kind: InferredParameterTypes, Inferred: inferredParams})
	}
	switch retType.Kind {
	case lattice.KTop:
		fr.AddReason(Reason{Kind: ReturnsTop})
	case lattice.KUnion:
		members := make([]string, 0, len(retType.Options))
		for _, m := range retType.Options {
			members = append(members, m.String())
		}
		fr.AddReason(Reason{Kind: ReturnsUnion, UnionMembers: members})
	}
	return fr
}

func joinAll(rets []lattice.LatticeType) lattice.LatticeType {
	if len(rets) == 0 {
		return lattice.FromType(types.NothingT)
	}
	acc := rets[0]
	for _, t := range rets[1:] {
		acc = lattice.Join(acc, t)
	}
	return acc
}
