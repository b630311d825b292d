package aotir

import (
	"juliavm/internal/ir"
	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// builder walks one ir.Program converting each function body into its
// AotFunction form. env maps parameters to their types, then records
// each assignment target's and for-loop variable's type as the walk
// reaches it.
type builder struct {
	env map[string]*types.JuliaType
}

var primitiveNames = map[string]*types.JuliaType{
	"Int8": types.Primitive("Int8"), "Int16": types.Primitive("Int16"),
	"Int32": types.Primitive("Int32"), "Int64": types.Primitive("Int64"),
	"Int128": types.Primitive("Int128"), "UInt8": types.Primitive("UInt8"),
	"UInt16": types.Primitive("UInt16"), "UInt32": types.Primitive("UInt32"),
	"UInt64": types.Primitive("UInt64"), "Float16": types.Primitive("Float16"),
	"Float32": types.Primitive("Float32"), "Float64": types.Primitive("Float64"),
	"Bool": types.Primitive("Bool"), "String": types.Primitive("String"),
	"Char": types.Primitive("Char"), "Symbol": types.Primitive("Symbol"),
}

// resolveTypeRef only needs to handle the leaf primitive annotations a
// Go-source backend can actually give a concrete Go type to; anything
// structural (Vector{T}, user structs, type params) widens to Any here
// — codegen's dynamic fallback covers those instead of this package
// reimplementing internal/compiler's full name-table resolution.
func resolveTypeRef(ref *ir.TypeRef) *types.JuliaType {
	if ref == nil {
		return types.AnyType()
	}
	if t, ok := primitiveNames[ref.Name]; ok {
		return t
	}
	return types.AnyType()
}

func latticeToJulia(l lattice.LatticeType) *types.JuliaType {
	switch l.Kind {
	case lattice.KConcrete:
		if l.Concrete != nil && l.Concrete.T != nil {
			return l.Concrete.T
		}
		return types.AnyType()
	case lattice.KConst:
		return l.ConstType
	default:
		return types.AnyType()
	}
}

func (b *builder) buildFunction(fn *ir.Function, inferredReturn *types.JuliaType) *AotFunction {
	params := make([]AotParam, len(fn.Params))
	saved := b.env
	b.env = map[string]*types.JuliaType{}
	for k, v := range saved {
		b.env[k] = v
	}
	for i, p := range fn.Params {
		t := resolveTypeRef(p.TypeAnnotation)
		params[i] = AotParam{Name: p.Name, Type: t}
		b.env[p.Name] = t
	}
	ret := inferredReturn
	if ret == nil {
		ret = resolveTypeRef(fn.ReturnType)
	}
	out := &AotFunction{Name: fn.Name, Params: params, ReturnType: ret, Pure: true}
	out.Body = b.buildBlock(fn.Body, out)
	b.env = saved
	return out
}

func (b *builder) buildBlock(block *ir.Block, owner *AotFunction) []AotStmt {
	if block == nil {
		return nil
	}
	out := make([]AotStmt, 0, len(block.Stmts))
	for _, s := range block.Stmts {
		out = append(out, b.buildStmt(s, owner))
	}
	return out
}

func (b *builder) buildStmt(stmt ir.Stmt, owner *AotFunction) AotStmt {
	switch s := stmt.(type) {
	case *ir.AssignStmt:
		v := b.buildExpr(s.Value, owner)
		b.env[s.Target] = v.TypeOf()
		return AotAssign{Target: s.Target, Value: v}
	case *ir.ReturnStmt:
		if s.Value == nil {
			return AotReturn{}
		}
		return AotReturn{Value: b.buildExpr(s.Value, owner)}
	case *ir.IfStmt:
		return AotIf{
			Cond: b.buildExpr(s.Cond, owner),
			Then: b.buildBlock(s.Then, owner),
			Else: b.buildBlock(s.Else, owner),
		}
	case *ir.WhileStmt:
		return AotWhile{Cond: b.buildExpr(s.Cond, owner), Body: b.buildBlock(s.Body, owner)}
	case *ir.ForStmt:
		r, ok := s.Range.(*ir.Range)
		if !ok {
			owner.Pure = false
			return AotDynamicStmt{Orig: stmt}
		}
		b.env[s.Var] = types.Primitive("Int64")
		var step AotExpr
		if r.Step != nil {
			step = b.buildExpr(r.Step, owner)
		}
		return AotFor{
			Var:   s.Var,
			Start: b.buildExpr(r.Start, owner),
			Stop:  b.buildExpr(r.Stop, owner),
			Step:  step,
			Body:  b.buildBlock(s.Body, owner),
		}
	case *ir.ExprStmt:
		return AotExprStmt{Value: b.buildExpr(s.Value, owner)}
	default:
		owner.Pure = false
		return AotDynamicStmt{Orig: stmt}
	}
}

func (b *builder) buildExpr(expr ir.Expr, owner *AotFunction) AotExpr {
	switch e := expr.(type) {
	case *ir.Literal:
		return b.buildLiteral(e)
	case *ir.Var:
		t, ok := b.env[e.Name]
		if !ok {
			t = types.AnyType()
		}
		return AotVar{Name: e.Name, Type: t}
	case *ir.BinaryOp:
		left := b.buildExpr(e.Left, owner)
		right := b.buildExpr(e.Right, owner)
		return AotBinary{Op: e.Op, Left: left, Right: right, Type: resultType(e.Op, left.TypeOf(), right.TypeOf())}
	case *ir.UnaryOp:
		operand := b.buildExpr(e.Operand, owner)
		return AotUnary{Op: e.Op, Operand: operand, Type: operand.TypeOf()}
	case *ir.Call:
		name, ok := calleeName(e.Callee)
		if !ok || len(e.KwArgs) > 0 {
			owner.Pure = false
			return AotDynamicExpr{Orig: expr, Type: types.AnyType()}
		}
		args := make([]AotExpr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.buildExpr(a, owner)
		}
		return AotCall{Callee: name, Args: args, Type: types.AnyType()}
	case *ir.Builtin:
		args := make([]AotExpr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.buildExpr(a, owner)
		}
		return AotCall{Callee: e.Name, Args: args, Type: types.AnyType()}
	case *ir.Index:
		indices := make([]AotExpr, len(e.Indices))
		for i, idx := range e.Indices {
			indices[i] = b.buildExpr(idx, owner)
		}
		return AotIndex{Recv: b.buildExpr(e.Recv, owner), Indices: indices, Type: types.AnyType()}
	case *ir.FieldAccess:
		return AotFieldAccess{Recv: b.buildExpr(e.Recv, owner), Field: e.Field, Type: types.AnyType()}
	default:
		owner.Pure = false
		return AotDynamicExpr{Orig: expr, Type: types.AnyType()}
	}
}

func (b *builder) buildLiteral(l *ir.Literal) AotExpr {
	out := AotLiteral{Kind: l.Kind, Raw: l.Raw, I: l.I, F: l.F, B: l.B, S: l.S}
	switch l.Kind {
	case ir.LitInt:
		out.Type = types.Primitive("Int64")
	case ir.LitFloat:
		out.Type = types.Primitive("Float64")
	case ir.LitBool:
		out.Type = types.Primitive("Bool")
	case ir.LitString:
		out.Type = types.Primitive("String")
	case ir.LitChar:
		out.Type = types.Primitive("Char")
	default:
		out.Type = types.AnyType()
	}
	return out
}

// resultType widens to Any whenever the operands disagree or either
// side is already dynamic; arithmetic between two identical concrete
// numeric types keeps that type, matching the widening ladder
// internal/vm/arith.go applies at runtime closely enough for codegen's
// purposes (it only needs a type to pick a Go operator, not the full
// promotion table).
func resultType(op string, left, right *types.JuliaType) *types.JuliaType {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return types.Primitive("Bool")
	case "/":
		// Integer division always widens to Float64 (internal/vm/arith.go's
		// arithInt OpDiv does the same), so codegen never emits Go's
		// truncating integer "/" for what is, in this language, always a
		// floating-point result.
		return types.Primitive("Float64")
	}
	if left != nil && right != nil && types.Equal(left, right) {
		return left
	}
	return types.AnyType()
}

func calleeName(e ir.Expr) (string, bool) {
	if v, ok := e.(*ir.Var); ok {
		return v.Name, true
	}
	return "", false
}
