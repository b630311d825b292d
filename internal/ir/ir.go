// Package ir defines the core intermediate representation produced by
// lowering (spec.md §3.2, §4.3): Program/Module/Function/Stmt/Expr/
// Block. Every node carries a span for diagnostics, matching the CST's
// own discipline (juliavm/internal/cst).
//
// Grounded on the teacher's AST shape (internal/parser/ast.go, deleted
// during the rework but read for its Node-with-kind-tag layout) and
// generalized into the spec's richer statement/expression sets using
// the same "one Go type per tagged node, a Kind enum for exhaustiveness
// checks" idiom already established in internal/cst.
package ir

import "juliavm/internal/diag"

// Program is the top-level compilation unit (spec.md §3.2).
type Program struct {
	Functions        []*Function
	Structs          []*StructDef
	AbstractTypes    []*AbstractDef
	Enums            []*EnumDef
	Modules          []*Module
	Usings           []UsingImport
	Macros           []*MacroDef
	Main             *Block
	BaseFunctionCount int // splits preloaded library functions from user functions
}

func (p *Program) FunctionByName(name string) (*Function, int) {
	for i, f := range p.Functions {
		if f.Name == name {
			return f, i
		}
	}
	return nil, -1
}

// Module mirrors spec.md §3.2's Module shape; nested modules recurse
// via Submodules.
type Module struct {
	Name        string
	Body        *Block
	Functions   []*Function
	Structs     []*StructDef
	Submodules  []*Module
	Usings      []UsingImport
	Exports     []string
}

type UsingImport struct {
	Path []string // e.g. ["Dates"] or ["Base", "Iterators"]
	Span diag.Span
}

// TypedParam is a function parameter with an optional declared type.
type TypedParam struct {
	Name           string
	TypeAnnotation *TypeRef // nil when untyped
	Default        Expr     // nil when required
	IsVararg       bool
	Span           diag.Span
}

// TypeRef is lowering's unresolved reference to a JuliaType by name
// plus type-parameter arguments (e.g. `Vector{Int64}`); internal/types
// resolves it once abstract/struct declarations are all visible.
type TypeRef struct {
	Name string
	Args []*TypeRef
	Span diag.Span
}

// Function is a single compilable unit with a stable index assigned
// once it is registered into a Program (spec.md §3.5: "that index is
// the calling convention inside the VM").
type Function struct {
	Name           string
	Params         []TypedParam
	KwParams       []TypedParam
	TypeParams     []string
	ReturnType     *TypeRef // nil when unannotated
	Body           *Block
	IsBaseExtension bool
	Span           diag.Span
}

type StructDef struct {
	Name       string
	TypeParams []string
	Supertype  *TypeRef // nil defaults to Any
	Fields     []TypedParam
	IsMutable  bool
	Span       diag.Span
}

type AbstractDef struct {
	Name      string
	Supertype *TypeRef
	Span      diag.Span
}

type EnumDef struct {
	Name     string
	Variants []string
	Values   []Expr // nil entries use the implicit 0,1,2,... sequence
	Span     diag.Span
}

type MacroDef struct {
	Name   string
	Params []string
	Body   *Block
	Span   diag.Span
}

// Block is an ordered statement list carrying its own span (spec.md
// §3.2). Julia's bare `begin...end` never produces one of these on its
// own: lowering flattens it into the enclosing list (spec.md §4.3).
type Block struct {
	Stmts []Stmt
	Span  diag.Span
}

// --- statements ---

// Stmt is implemented by every IR statement constructor named in
// spec.md §3.2. The unexported method closes the set so a missing case
// in a switch is caught by `default: panic` review, mirroring cst's
// NodeKind exhaustiveness discipline without an enum (a Stmt carries
// its own rich payload, unlike cst.Node's generic Children).
type Stmt interface {
	stmtNode()
	SpanOf() diag.Span
}

type StmtPos struct{ Span diag.Span }

func (StmtPos) stmtNode()            {}
func (s StmtPos) SpanOf() diag.Span  { return s.Span }

type AssignStmt struct {
	StmtPos
	Target string
	Value  Expr
}

type AddAssignStmt struct {
	StmtPos
	Op     string // "+=", "-=", "*=", ...
	Target string
	Value  Expr
}

type ReturnStmt struct {
	StmtPos
	Value Expr // nil for bare `return`
}

type IfStmt struct {
	StmtPos
	Cond Expr
	Then *Block
	Else *Block // nil, or a single-statement Block holding a nested IfStmt for elseif
}

type WhileStmt struct {
	StmtPos
	Cond Expr
	Body *Block
}

type ForStmt struct {
	StmtPos
	Var   string
	Range Expr
	Body  *Block
}

type ForEachStmt struct {
	StmtPos
	Var  string
	Iter Expr
	Body *Block
}

type ForEachTupleStmt struct {
	StmtPos
	Vars []string
	Iter Expr
	Body *Block
}

type BreakStmt struct{ StmtPos }
type ContinueStmt struct{ StmtPos }

type BlockStmt struct {
	StmtPos
	Body *Block
}

type TryStmt struct {
	StmtPos
	Body      *Block
	CatchVar  string // "" when uncaught variable is omitted
	CatchBody *Block // nil when no catch
	Finally   *Block // nil when no finally
}

type TimedStmt struct {
	StmtPos
	Target string // variable receiving elapsed time, "" if discarded
	Body   *Block
}

type TestSetStmt struct {
	StmtPos
	Name string
	Body *Block
}

type FunctionDefStmt struct {
	StmtPos
	Fn *Function
}

type ExprStmt struct {
	StmtPos
	Value Expr
}

type IndexAssignStmt struct {
	StmtPos
	Target Expr // Index expr
	Value  Expr
}

type FieldAssignStmt struct {
	StmtPos
	Target Expr // FieldAccess expr
	Value  Expr
}

type DestructuringAssignStmt struct {
	StmtPos
	Targets []string
	Value   Expr
}

type DictAssignStmt struct {
	StmtPos
	Dict  Expr
	Key   Expr
	Value Expr
}

type UsingStmt struct {
	StmtPos
	Import UsingImport
}

type ExportStmt struct {
	StmtPos
	Names []string
}

type LabelStmt struct {
	StmtPos
	Name string
}

type GotoStmt struct {
	StmtPos
	Label string
}

type EnumDefStmt struct {
	StmtPos
	Def *EnumDef
}

type TestStmt struct {
	StmtPos
	Cond Expr
}

type TestThrowsStmt struct {
	StmtPos
	ExceptionType *TypeRef // nil to match any
	Body          *Block
}

// --- expressions ---

type Expr interface {
	exprNode()
	SpanOf() diag.Span
}

type ExprPos struct{ Span diag.Span }

func (ExprPos) exprNode()           {}
func (e ExprPos) SpanOf() diag.Span { return e.Span }

// LiteralKind tags the constant kind held by a Literal expr.
type LiteralKind int

const (
	LitNothing LiteralKind = iota
	LitMissing
	LitBool
	LitInt
	LitFloat
	LitBigInt
	LitChar
	LitString
	LitSymbol
)

type Literal struct {
	ExprPos
	Kind LiteralKind
	Raw  string // original lexeme, for BigInt/BigFloat parsing downstream
	I    int64
	F    float64
	B    bool
	S    string
}

type Var struct {
	ExprPos
	Name string
}

type BinaryOp struct {
	ExprPos
	Op          string
	Left, Right Expr
}

type UnaryOp struct {
	ExprPos
	Op      string
	Operand Expr
}

type Call struct {
	ExprPos
	Callee Expr
	Args   []Expr
	KwArgs map[string]Expr
}

type ModuleCall struct {
	ExprPos
	Module string
	Call   *Call
}

// Builtin is a call lowering has resolved to a known compiler
// intrinsic (println, length, push!, ...) rather than a user function,
// so later stages can special-case it without a name lookup.
type Builtin struct {
	ExprPos
	Name string
	Args []Expr
}

type Index struct {
	ExprPos
	Recv    Expr
	Indices []Expr
}

type FieldAccess struct {
	ExprPos
	Recv  Expr
	Field string
}

type Range struct {
	ExprPos
	Start, Stop Expr
	Step        Expr // nil for unit ranges
}

type Ternary struct {
	ExprPos
	Cond, Then, Else Expr
}

type ArrayLiteral struct {
	ExprPos
	Elements []Expr
}

type TupleLiteral struct {
	ExprPos
	Elements []Expr
}

type NamedTupleLiteral struct {
	ExprPos
	Names    []string
	Elements []Expr
}

type DictLiteral struct {
	ExprPos
	Pairs []Pair
}

type Pair struct {
	ExprPos
	Key, Value Expr
}

type Comprehension struct {
	ExprPos
	Result   Expr
	Var      string
	Iter     Expr
	Filter   Expr // nil when no `if` clause
}

type MultiComprehension struct {
	ExprPos
	Result Expr
	Vars   []string
	Iters  []Expr
	Filter Expr
}

type Generator struct {
	ExprPos
	Result Expr
	Var    string
	Iter   Expr
	Filter Expr
}

type LetBlock struct {
	ExprPos
	Bindings []AssignStmt
	Body     *Block
}

type StringConcat struct {
	ExprPos
	Parts []Expr // alternating Literal(string) and interpolated Expr
}

type AssignExpr struct {
	ExprPos
	Target string
	Value  Expr
}

type ReturnExpr struct {
	ExprPos
	Value Expr
}

type TypedEmptyArray struct {
	ExprPos
	ElemType *TypeRef
}

type SliceAll struct{ ExprPos }

type FunctionRef struct {
	ExprPos
	Name string
}

// Lambda is an anonymous function literal (spec.md §3.1's Closure
// value; `x -> x*x` / `(a,b) -> a+b`). A single-expression body is
// wrapped into a one-statement ReturnStmt block during lowering so a
// Lambda's Body always has the same shape as a named Function's.
type Lambda struct {
	ExprPos
	Params []string
	Body   *Block
}

type BreakExpr struct{ ExprPos }
type ContinueExpr struct{ ExprPos }

type New struct {
	ExprPos
	TypeName string
	Args     []Expr
}

// DynamicTypeConstruct models `T(args...)` where `T` is a runtime
// DataType value rather than a statically named type.
type DynamicTypeConstruct struct {
	ExprPos
	TypeExpr Expr
	Args     []Expr
}

type QuoteLiteral struct {
	ExprPos
	Body *Block
}
