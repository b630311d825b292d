package infer

import (
	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/tfunc"
	"juliavm/internal/types"
	"juliavm/internal/value"
)

// interpreter performs a single-pass abstract interpretation of a
// function body over the lattice, threading a mutable environment of
// local-variable types and accumulating every return expression's
// inferred type along the way. A while loop's body is walked a second
// time over the environment merged after its first pass, and for-loop
// bodies are walked once; there is no full fixed point — adequate for the
// common case of a loop variable whose type doesn't itself change
// shape across iterations (spec.md §4.6's worked examples never need
// more).
type interpreter struct {
	registry     *tfunc.Registry
	knownReturns map[string]lattice.LatticeType
}

type env = map[string]lattice.LatticeType

func cloneEnv(e env) env {
	c := make(env, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// mergeEnv joins every key present in either branch back into dst,
// so a variable assigned a Concrete type in only one branch widens to
// Union{ThatType, its prior type} in the merged env.
func mergeEnv(dst, a, b env) {
	for k, v := range a {
		if prior, ok := dst[k]; ok {
			dst[k] = lattice.Join(prior, v)
		} else {
			dst[k] = v
		}
	}
	for k, v := range b {
		if prior, ok := dst[k]; ok {
			dst[k] = lattice.Join(prior, v)
		} else {
			dst[k] = v
		}
	}
}

func (it *interpreter) walkBlock(block *ir.Block, e env) []lattice.LatticeType {
	if block == nil {
		return nil
	}
	var returns []lattice.LatticeType
	for _, stmt := range block.Stmts {
		returns = append(returns, it.walkStmt(stmt, e)...)
	}
	return returns
}

func (it *interpreter) walkStmt(stmt ir.Stmt, e env) []lattice.LatticeType {
	switch s := stmt.(type) {
	case ir.AssignStmt:
		e[s.Target] = it.exprType(s.Value, e)
		return nil
	case ir.AddAssignStmt:
		prior := e[s.Target]
		rhs := it.exprType(s.Value, e)
		e[s.Target] = lattice.Widen(lattice.Join(prior, rhs))
		return nil
	case ir.ReturnStmt:
		if s.Value == nil {
			return []lattice.LatticeType{lattice.FromType(types.NothingT)}
		}
		return []lattice.LatticeType{it.exprType(s.Value, e)}
	case ir.ExprStmt:
		it.exprType(s.Value, e)
		return nil
	case ir.IfStmt:
		thenEnv := cloneEnv(e)
		elseEnv := cloneEnv(e)
		thenRet := it.walkBlock(s.Then, thenEnv)
		elseRet := it.walkBlock(s.Else, elseEnv)
		mergeEnv(e, thenEnv, elseEnv)
		return append(thenRet, elseRet...)
	case ir.WhileStmt:
		bodyEnv := cloneEnv(e)
		rets := it.walkBlock(s.Body, bodyEnv)
		before := cloneEnv(e)
		mergeEnv(e, before, bodyEnv)
		rets = append(rets, it.walkBlock(s.Body, e)...)
		return rets
	case ir.ForStmt:
		bodyEnv := cloneEnv(e)
		bodyEnv[s.Var] = rangeElemType(it.exprType(s.Range, e))
		rets := it.walkBlock(s.Body, bodyEnv)
		before := cloneEnv(e)
		mergeEnv(e, before, bodyEnv)
		return rets
	case ir.ForEachStmt:
		bodyEnv := cloneEnv(e)
		bodyEnv[s.Var] = elemType(it.exprType(s.Iter, e))
		rets := it.walkBlock(s.Body, bodyEnv)
		before := cloneEnv(e)
		mergeEnv(e, before, bodyEnv)
		return rets
	case ir.ForEachTupleStmt:
		bodyEnv := cloneEnv(e)
		tupleElem := elemType(it.exprType(s.Iter, e))
		for _, name := range s.Vars {
			bodyEnv[name] = tupleElem
		}
		rets := it.walkBlock(s.Body, bodyEnv)
		before := cloneEnv(e)
		mergeEnv(e, before, bodyEnv)
		return rets
	case ir.BlockStmt:
		return it.walkBlock(s.Body, e)
	case ir.TryStmt:
		bodyEnv := cloneEnv(e)
		rets := it.walkBlock(s.Body, bodyEnv)
		catchEnv := cloneEnv(e)
		if s.CatchVar != "" {
			catchEnv[s.CatchVar] = lattice.Top
		}
		rets = append(rets, it.walkBlock(s.CatchBody, catchEnv)...)
		mergeEnv(e, bodyEnv, catchEnv)
		rets = append(rets, it.walkBlock(s.Finally, e)...)
		return rets
	case ir.TimedStmt:
		rets := it.walkBlock(s.Body, e)
		e[s.Target] = lattice.FromType(types.F64T)
		return rets
	case ir.TestSetStmt:
		return it.walkBlock(s.Body, e)
	case ir.IndexAssignStmt:
		it.exprType(s.Value, e)
		return nil
	case ir.FieldAssignStmt:
		it.exprType(s.Value, e)
		return nil
	case ir.DictAssignStmt:
		it.exprType(s.Value, e)
		return nil
	case ir.DestructuringAssignStmt:
		rhs := it.exprType(s.Value, e)
		for _, name := range s.Targets {
			e[name] = elemType(rhs)
		}
		return nil
	case ir.FunctionDefStmt:
		return nil
	default:
		return nil
	}
}

// exprType evaluates the lattice type of an IR expression under env e,
// resolving calls through the transfer-function registry first and
// falling back to cross-function return types (knownReturns) for
// user-defined callees, then Top when nothing is known.
func (it *interpreter) exprType(expr ir.Expr, e env) lattice.LatticeType {
	if expr == nil {
		return lattice.Top
	}
	switch x := expr.(type) {
	case *ir.Literal:
		return literalType(x)
	case *ir.Var:
		if t, ok := e[x.Name]; ok {
			return t
		}
		return lattice.Top
	case *ir.BinaryOp:
		args := []lattice.LatticeType{it.exprType(x.Left, e), it.exprType(x.Right, e)}
		if it.registry.Has(x.Op) {
			return it.registry.InferReturnType(x.Op, args)
		}
		return lattice.Top
	case *ir.UnaryOp:
		arg := it.exprType(x.Operand, e)
		if it.registry.Has(x.Op) {
			return it.registry.InferReturnType(x.Op, []lattice.LatticeType{arg})
		}
		return arg
	case *ir.Call:
		argTypes := make([]lattice.LatticeType, 0, len(x.Args))
		for _, a := range x.Args {
			argTypes = append(argTypes, it.exprType(a, e))
		}
		if v, ok := x.Callee.(*ir.Var); ok {
			if it.registry.Has(v.Name) {
				return it.registry.InferReturnType(v.Name, argTypes)
			}
			if ret, ok := it.knownReturns[v.Name]; ok {
				return ret
			}
		}
		return lattice.Top
	case *ir.ModuleCall:
		return it.exprType(x.Call, e)
	case *ir.Builtin:
		argTypes := make([]lattice.LatticeType, 0, len(x.Args))
		for _, a := range x.Args {
			argTypes = append(argTypes, it.exprType(a, e))
		}
		if it.registry.Has(x.Name) {
			return it.registry.InferReturnType(x.Name, argTypes)
		}
		return lattice.Top
	case *ir.Index:
		recv := it.exprType(x.Recv, e)
		return elemType(recv)
	case *ir.FieldAccess:
		return lattice.Top
	case *ir.Ternary:
		return lattice.Join(it.exprType(x.Then, e), it.exprType(x.Else, e))
	case *ir.Range:
		return lattice.FromType(types.UnitRangeOf(types.I64T))
	case *ir.ArrayLiteral:
		if len(x.Elements) == 0 {
			return lattice.Array(lattice.Top)
		}
		acc := it.exprType(x.Elements[0], e)
		for _, el := range x.Elements[1:] {
			acc = lattice.Join(acc, it.exprType(el, e))
		}
		return lattice.Array(acc)
	case *ir.TupleLiteral:
		elems := make([]lattice.LatticeType, 0, len(x.Elements))
		for _, el := range x.Elements {
			elems = append(elems, it.exprType(el, e))
		}
		return lattice.Tuple(elems)
	case *ir.NamedTupleLiteral:
		elems := make([]lattice.LatticeType, 0, len(x.Elements))
		for _, el := range x.Elements {
			elems = append(elems, it.exprType(el, e))
		}
		return lattice.Tuple(elems)
	case *ir.DictLiteral:
		if len(x.Pairs) == 0 {
			return lattice.DictType(lattice.Top, lattice.Top)
		}
		k := it.exprType(x.Pairs[0].Key, e)
		v := it.exprType(x.Pairs[0].Value, e)
		for _, p := range x.Pairs[1:] {
			k = lattice.Join(k, it.exprType(p.Key, e))
			v = lattice.Join(v, it.exprType(p.Value, e))
		}
		return lattice.DictType(k, v)
	case *ir.Comprehension:
		return lattice.Array(it.exprType(x.Result, e))
	case *ir.Generator:
		return lattice.Array(it.exprType(x.Result, e))
	case *ir.MultiComprehension:
		return lattice.Array(it.exprType(x.Result, e))
	case *ir.StringConcat:
		return lattice.FromType(types.StringT)
	case *ir.TypedEmptyArray:
		return lattice.Array(resolveTypeRef(x.ElemType))
	case *ir.New:
		return lattice.Top
	case *ir.FunctionRef:
		return lattice.FromType(types.FunctionT)
	default:
		return lattice.Top
	}
}

func literalType(l *ir.Literal) lattice.LatticeType {
	switch l.Kind {
	case ir.LitNothing:
		return lattice.FromType(types.NothingT)
	case ir.LitMissing:
		return lattice.FromType(types.MissingT)
	case ir.LitBool:
		return lattice.Const(l.B, types.BoolT)
	case ir.LitInt:
		return lattice.Const(value.I64(l.I), types.I64T)
	case ir.LitFloat:
		return lattice.Const(l.F, types.F64T)
	case ir.LitBigInt:
		return lattice.FromType(types.BigIntT)
	case ir.LitChar:
		return lattice.FromType(types.CharT)
	case ir.LitString:
		return lattice.Const(l.S, types.StringT)
	case ir.LitSymbol:
		return lattice.FromType(types.SymbolT)
	default:
		return lattice.Top
	}
}

// elemType extracts an Array/Dict/Tuple's element type for iteration
// and indexing purposes, widening to Top for anything else.
func elemType(l lattice.LatticeType) lattice.LatticeType {
	if l.Kind != lattice.KConcrete || l.Concrete == nil {
		return lattice.Top
	}
	c := l.Concrete
	switch {
	case c.IsArray || c.IsSet:
		if c.Elem != nil {
			return *c.Elem
		}
	case c.IsDict:
		if c.Val != nil {
			return *c.Val
		}
	case c.IsTuple:
		if len(c.Elements) > 0 {
			acc := c.Elements[0]
			for _, el := range c.Elements[1:] {
				acc = lattice.Join(acc, el)
			}
			return acc
		}
	}
	return lattice.Top
}

func rangeElemType(l lattice.LatticeType) lattice.LatticeType {
	if l.Kind == lattice.KConcrete && l.Concrete != nil && l.Concrete.IsRange && l.Concrete.Elem != nil {
		return *l.Concrete.Elem
	}
	return lattice.FromType(types.I64T)
}
