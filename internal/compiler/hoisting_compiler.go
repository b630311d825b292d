// Originally the teacher's two-pass HoistingCompiler: a pre-scan that
// collected every function declaration out of a statement list so a
// call site appearing before its callee's definition still resolved
// (collectFunctions/precompileFunctions). ir.Program.Functions already
// separates every top-level function from Main.Stmts during lowering,
// which supersedes that scan entirely — there is no "is this statement
// secretly a function declaration" search left to do.
//
// What still needs a pass over every function before any body compiles
// is multiple dispatch (spec.md §4.8): a call to f(x) must resolve
// against every method of f, including ones declared later in the
// file, so every ir.Function needs its dispatch.Method registered and
// its FuncIndex assigned before the first function body is compiled.
// registerMethods is that adapted pass: same "collect everything, then
// compile bodies" two-phase shape the teacher used for name hoisting,
// repurposed here for method-table population.
package compiler

import (
	"juliavm/internal/dispatch"
	"juliavm/internal/ir"
	"juliavm/internal/types"
)

func (c *Compiler) registerMethods(prog *ir.Program) {
	for _, fn := range prog.Functions {
		idx := len(c.functions)
		c.funcIndex[fn] = idx
		c.functions = append(c.functions, &CompiledFunction{
			Name:   fn.Name,
			Arity:  len(fn.Params),
			Params: paramNames(fn.Params),
		})

		paramTypes := make([]*types.JuliaType, len(fn.Params))
		for i, p := range fn.Params {
			paramTypes[i] = c.resolveType(p.TypeAnnotation)
		}
		var returnType *types.JuliaType
		if fn.ReturnType != nil {
			returnType = c.resolveType(fn.ReturnType)
		}
		c.methods.AddMethod(&dispatch.Method{
			Name:       fn.Name,
			ParamTypes: paramTypes,
			TypeParams: typeParamsOf(fn.TypeParams),
			ReturnType: returnType,
			FuncIndex:  idx,
		})
	}
}

func paramNames(params []ir.TypedParam) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func typeParamsOf(names []string) []dispatch.TypeParam {
	out := make([]dispatch.TypeParam, len(names))
	for i, n := range names {
		out[i] = dispatch.TypeParam{Name: n}
	}
	return out
}
