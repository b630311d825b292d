// Package parser implements a recursive-descent / precedence-climbing
// parser producing a CST (spec.md §2 L2, §4.2). Grounded directly on
// the teacher's Parser: a flat token slice with a `current` cursor,
// `match`/`check`/`consume`/`advance` helpers, and a precedence table
// driving binary-expression parsing. Error recovery emits cst.KError
// nodes and, where a statement makes no progress, skips one token and
// tries again; the parser never panics (spec.md §4.2, §8 parser
// totality).
package parser

import (
	"fmt"

	"juliavm/internal/cst"
	"juliavm/internal/diag"
	"juliavm/internal/token"
)

type Parser struct {
	tokens  []token.Token
	current int
	file    string
	Diags   *diag.Bag
}

func New(tokens []token.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file, Diags: &diag.Bag{}}
}

// Parse produces a KSourceFile CST node. It never panics: every byte
// sequence yields a CST and a (possibly empty) diagnostic list.
func (p *Parser) Parse() *cst.Node {
	start := p.span()
	var stmts []*cst.Node
	for !p.isAtEnd() {
		if p.isAtEnd() {
			break
		}
		before := p.current
		stmts = append(stmts, p.topLevelItem())
		if p.current == before {
			// Safety valve: guarantee forward progress on malformed input.
			stmts = append(stmts, p.errorNode("unexpected token", p.span()))
			p.advance()
		}
	}
	return cst.New(cst.KSourceFile, start.Merge(p.prevSpan()), stmts...)
}

func (p *Parser) topLevelItem() *cst.Node {
	switch p.peek().Kind {
	case token.Function:
		return p.functionDecl()
	case token.Struct:
		return p.structDecl()
	case token.Abstract:
		return p.abstractDecl()
	case token.Enum:
		return p.enumDecl()
	case token.Module:
		return p.moduleDecl()
	case token.Macro:
		return p.macroDecl()
	case token.Using:
		return p.usingStmt()
	case token.Export:
		return p.exportStmt()
	default:
		return p.statement()
	}
}

// --- declarations ---

func (p *Parser) functionDecl() *cst.Node {
	start := p.span()
	p.advance() // 'function'
	name := p.consumeIdentLeaf("expect function name")
	typeParams := p.maybeTypeParams()
	p.consume(token.LParen, "expect '(' after function name")
	var params []*cst.Node
	for !p.check(token.RParen) && !p.isAtEnd() {
		params = append(params, p.param())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RParen, "expect ')' after parameters")
	var retType *cst.Node
	if p.match(token.DoubleColon) {
		retType = p.typeExpr()
	}
	body := p.blockUntilEnd()
	p.consume(token.End, "expect 'end' to close function")
	children := append([]*cst.Node{name}, typeParams...)
	children = append(children, params...)
	n := cst.New(cst.KFunctionDecl, start.Merge(p.prevSpan()), append(children, body)...)
	n.WithField(cst.FieldName, 0)
	n.WithField(cst.FieldBody, len(n.Children)-1)
	if retType != nil {
		n.Children = append(n.Children, retType)
		n.WithField(cst.FieldType, len(n.Children)-1)
	}
	return n
}

func (p *Parser) maybeTypeParams() []*cst.Node {
	if !p.match(token.Where) {
		return nil
	}
	var out []*cst.Node
	for {
		name := p.consumeIdentLeaf("expect type parameter name")
		if p.match(token.Subtype) {
			bound := p.typeExpr()
			out = append(out, cst.New(cst.KWhereClause, name.Span.Merge(bound.Span), name, bound))
		} else {
			out = append(out, cst.New(cst.KWhereClause, name.Span, name))
		}
		if !p.match(token.Comma) {
			break
		}
	}
	return out
}

func (p *Parser) param() *cst.Node {
	start := p.span()
	name := p.consumeIdentLeaf("expect parameter name")
	if p.match(token.DoubleColon) {
		ty := p.typeExpr()
		return cst.New(cst.KParam, start.Merge(p.prevSpan()), name, ty)
	}
	return cst.New(cst.KParam, start.Merge(p.prevSpan()), name)
}

func (p *Parser) typeExpr() *cst.Node {
	start := p.span()
	name := p.consumeIdentLeaf("expect type name")
	if p.match(token.LBrace) {
		var args []*cst.Node
		for !p.check(token.RBrace) && !p.isAtEnd() {
			args = append(args, p.typeExpr())
			if !p.match(token.Comma) {
				break
			}
		}
		p.consume(token.RBrace, "expect '}' to close type parameters")
		return cst.New(cst.KTypeAnnotation, start.Merge(p.prevSpan()), append([]*cst.Node{name}, args...)...)
	}
	return cst.New(cst.KTypeAnnotation, start.Merge(p.prevSpan()), name)
}

func (p *Parser) structDecl() *cst.Node {
	start := p.span()
	p.advance() // 'struct'
	name := p.consumeIdentLeaf("expect struct name")
	var parent *cst.Node
	if p.match(token.Subtype) {
		parent = p.typeExpr()
	}
	var fields []*cst.Node
	for !p.check(token.End) && !p.isAtEnd() {
		fields = append(fields, p.param())
		p.match(token.Comma)
	}
	p.consume(token.End, "expect 'end' to close struct")
	children := []*cst.Node{name}
	if parent != nil {
		children = append(children, parent)
	}
	children = append(children, fields...)
	n := cst.New(cst.KStructDecl, start.Merge(p.prevSpan()), children...)
	n.WithField(cst.FieldName, 0)
	return n
}

func (p *Parser) abstractDecl() *cst.Node {
	start := p.span()
	p.advance()
	name := p.consumeIdentLeaf("expect abstract type name")
	var parent *cst.Node
	if p.match(token.Subtype) {
		parent = p.typeExpr()
	}
	children := []*cst.Node{name}
	if parent != nil {
		children = append(children, parent)
	}
	n := cst.New(cst.KAbstractDecl, start.Merge(p.prevSpan()), children...)
	n.WithField(cst.FieldName, 0)
	return n
}

func (p *Parser) enumDecl() *cst.Node {
	start := p.span()
	p.advance() // '@enum' is lexed as At then Ident "enum"? handled by lowering's macro path too.
	name := p.consumeIdentLeaf("expect enum name")
	var members []*cst.Node
	for p.check(token.Ident) {
		members = append(members, p.identLeaf())
	}
	n := cst.New(cst.KEnumDecl, start.Merge(p.prevSpan()), append([]*cst.Node{name}, members...)...)
	n.WithField(cst.FieldName, 0)
	return n
}

func (p *Parser) moduleDecl() *cst.Node {
	start := p.span()
	p.advance() // 'module'
	name := p.consumeIdentLeaf("expect module name")
	body := p.blockUntilEnd()
	p.consume(token.End, "expect 'end' to close module")
	n := cst.New(cst.KModuleDecl, start.Merge(p.prevSpan()), name, body)
	n.WithField(cst.FieldName, 0)
	n.WithField(cst.FieldBody, 1)
	return n
}

func (p *Parser) macroDecl() *cst.Node {
	start := p.span()
	p.advance() // 'macro'
	name := p.consumeIdentLeaf("expect macro name")
	p.consume(token.LParen, "expect '(' after macro name")
	var params []*cst.Node
	for !p.check(token.RParen) && !p.isAtEnd() {
		params = append(params, p.identLeaf())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RParen, "expect ')' after macro parameters")
	body := p.blockUntilEnd()
	p.consume(token.End, "expect 'end' to close macro")
	children := append([]*cst.Node{name}, params...)
	n := cst.New(cst.KMacroDecl, start.Merge(p.prevSpan()), append(children, body)...)
	n.WithField(cst.FieldName, 0)
	n.WithField(cst.FieldBody, len(n.Children)-1)
	return n
}

func (p *Parser) usingStmt() *cst.Node {
	start := p.span()
	p.advance()
	names := []*cst.Node{p.consumeIdentLeaf("expect module name after using")}
	for p.match(token.Dot) {
		names = append(names, p.consumeIdentLeaf("expect identifier after '.'"))
	}
	return cst.New(cst.KUsingStmt, start.Merge(p.prevSpan()), names...)
}

func (p *Parser) exportStmt() *cst.Node {
	start := p.span()
	p.advance()
	var names []*cst.Node
	for p.check(token.Ident) {
		names = append(names, p.identLeaf())
		if !p.match(token.Comma) {
			break
		}
	}
	return cst.New(cst.KExportStmt, start.Merge(p.prevSpan()), names...)
}

// --- statements ---

func (p *Parser) blockUntilEnd() *cst.Node {
	start := p.span()
	var stmts []*cst.Node
	for !p.check(token.End) && !p.check(token.Else) && !p.check(token.Elseif) &&
		!p.check(token.Catch) && !p.check(token.Finally) && !p.isAtEnd() {
		before := p.current
		stmts = append(stmts, p.statement())
		if p.current == before {
			stmts = append(stmts, p.errorNode("unexpected token in block", p.span()))
			p.advance()
		}
	}
	return cst.New(cst.KBlock, start.Merge(p.prevSpan()), stmts...)
}

func (p *Parser) statement() *cst.Node {
	switch p.peek().Kind {
	case token.If:
		return p.ifStmt()
	case token.While:
		return p.whileStmt()
	case token.For:
		return p.forStmt()
	case token.Try:
		return p.tryStmt()
	case token.Throw:
		return p.throwStmt()
	case token.Return:
		return p.returnStmt()
	case token.Break:
		sp := p.span()
		p.advance()
		return cst.New(cst.KBreakStmt, sp)
	case token.Continue:
		sp := p.span()
		p.advance()
		return cst.New(cst.KContinueStmt, sp)
	case token.Let:
		return p.letStmt()
	case token.Function:
		return p.functionDecl()
	case token.Struct:
		return p.structDecl()
	case token.Begin:
		// `begin...end` introduces NO new scope (spec.md §4.3); lowering
		// flattens it, but the parser still needs a node to hold it.
		start := p.span()
		p.advance()
		b := p.blockUntilEnd()
		p.consume(token.End, "expect 'end' to close begin block")
		return cst.New(cst.KBlock, start.Merge(p.prevSpan()), b.Children...)
	default:
		return p.simpleOrAssignStmt()
	}
}

func (p *Parser) letStmt() *cst.Node {
	start := p.span()
	p.advance()
	var bindings []*cst.Node
	for {
		name := p.consumeIdentLeaf("expect variable name")
		p.consume(token.Assign, "expect '=' in let binding")
		val := p.expression()
		bindings = append(bindings, cst.New(cst.KAssign, name.Span.Merge(val.Span), name, val))
		if !p.match(token.Comma) {
			break
		}
	}
	body := p.blockUntilEnd()
	p.consume(token.End, "expect 'end' to close let block")
	n := cst.New(cst.KLetBlock, start.Merge(p.prevSpan()), append(bindings, body)...)
	n.WithField(cst.FieldBody, len(n.Children)-1)
	return n
}

func (p *Parser) ifStmt() *cst.Node {
	start := p.span()
	p.advance()
	cond := p.expression()
	then := p.blockUntilEnd()
	var elseBranch *cst.Node
	if p.check(token.Elseif) {
		elseBranch = p.ifStmt() // ifStmt unconditionally consumes one leading token
	} else if p.match(token.Else) {
		elseBranch = p.blockUntilEnd()
		p.consume(token.End, "expect 'end' to close if")
	} else {
		p.consume(token.End, "expect 'end' to close if")
	}
	n := cst.New(cst.KIfExpr, start.Merge(p.prevSpan()), cond, then)
	n.WithField(cst.FieldCondition, 0)
	n.WithField(cst.FieldThen, 1)
	if elseBranch != nil {
		n.Children = append(n.Children, elseBranch)
		n.WithField(cst.FieldElse, 2)
	}
	return n
}

func (p *Parser) whileStmt() *cst.Node {
	start := p.span()
	p.advance()
	cond := p.expression()
	body := p.blockUntilEnd()
	p.consume(token.End, "expect 'end' to close while")
	n := cst.New(cst.KWhileStmt, start.Merge(p.prevSpan()), cond, body)
	n.WithField(cst.FieldCondition, 0)
	n.WithField(cst.FieldBody, 1)
	return n
}

func (p *Parser) forStmt() *cst.Node {
	start := p.span()
	p.advance()
	// Either `for v in iter` or `for (a,b) in iter`; both build a
	// KForEachStmt, the tuple form with one name leaf per element ahead
	// of the iterator and body -- detect a leading '(' to distinguish.
	if p.check(token.LParen) {
		p.advance()
		var names []*cst.Node
		for !p.check(token.RParen) && !p.isAtEnd() {
			names = append(names, p.identLeaf())
			if !p.match(token.Comma) {
				break
			}
		}
		p.consume(token.RParen, "expect ')' after tuple pattern")
		p.consume(token.In, "expect 'in' in for loop")
		iter := p.expression()
		body := p.blockUntilEnd()
		p.consume(token.End, "expect 'end' to close for")
		n := cst.New(cst.KForEachStmt, start.Merge(p.prevSpan()), append(names, iter, body)...)
		n.WithField(cst.FieldBody, len(n.Children)-1)
		return n
	}
	v := p.identLeaf()
	p.consume(token.In, "expect 'in' in for loop")
	iter := p.expression()
	body := p.blockUntilEnd()
	p.consume(token.End, "expect 'end' to close for")
	n := cst.New(cst.KForEachStmt, start.Merge(p.prevSpan()), v, iter, body)
	n.WithField(cst.FieldBody, 2)
	return n
}

func (p *Parser) tryStmt() *cst.Node {
	start := p.span()
	p.advance()
	body := p.blockUntilEnd()
	var catchVar, catchBody, finallyBody *cst.Node
	if p.match(token.Catch) {
		if p.check(token.Ident) {
			catchVar = p.identLeaf()
		}
		catchBody = p.blockUntilEnd()
	}
	if p.match(token.Finally) {
		finallyBody = p.blockUntilEnd()
	}
	p.consume(token.End, "expect 'end' to close try")
	children := []*cst.Node{body}
	if catchVar != nil {
		children = append(children, catchVar)
	}
	if catchBody != nil {
		children = append(children, catchBody)
	}
	if finallyBody != nil {
		children = append(children, finallyBody)
	}
	return cst.New(cst.KTryStmt, start.Merge(p.prevSpan()), children...)
}

func (p *Parser) throwStmt() *cst.Node {
	start := p.span()
	p.advance()
	val := p.expression()
	return cst.New(cst.KThrowStmt, start.Merge(val.Span), val)
}

func (p *Parser) returnStmt() *cst.Node {
	start := p.span()
	p.advance()
	if p.atStmtBoundary() {
		return cst.New(cst.KReturnStmt, start)
	}
	val := p.expression()
	return cst.New(cst.KReturnStmt, start.Merge(val.Span), val)
}

func (p *Parser) atStmtBoundary() bool {
	switch p.peek().Kind {
	case token.End, token.Else, token.Elseif, token.Catch, token.Finally, token.EOF, token.Semicolon:
		return true
	}
	return false
}

// simpleOrAssignStmt handles plain/compound/index/field/destructuring
// assignment, falling back to a bare expression statement.
func (p *Parser) simpleOrAssignStmt() *cst.Node {
	start := p.span()
	expr := p.expression()
	switch p.peek().Kind {
	case token.Assign:
		p.advance()
		rhs := p.expression()
		return p.buildAssign(start, expr, rhs)
	case token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign:
		opTok := p.advance()
		rhs := p.expression()
		n := cst.New(cst.KCompoundAssign, start.Merge(rhs.Span), expr, rhs)
		n.Text = string(opTok.Kind)
		return n
	}
	p.match(token.Semicolon)
	return cst.New(cst.KExprStmt, start.Merge(p.prevSpan()), expr)
}

func (p *Parser) buildAssign(start diag.Span, lhs, rhs *cst.Node) *cst.Node {
	switch lhs.Kind {
	case cst.KIndexExpr:
		return cst.New(cst.KIndexAssign, start.Merge(rhs.Span), lhs.Children[0], lhs.Children[1], rhs)
	case cst.KFieldExpr:
		n := cst.New(cst.KFieldAssign, start.Merge(rhs.Span), lhs.Children[0], lhs.Children[1], rhs)
		n.WithField(cst.FieldTarget, 0)
		n.WithField(cst.FieldName, 1)
		n.WithField(cst.FieldValue, 2)
		return n
	case cst.KTupleLiteral:
		return cst.New(cst.KDestructuringAssign, start.Merge(rhs.Span), append(append([]*cst.Node{}, lhs.Children...), rhs)...)
	default:
		n := cst.New(cst.KAssign, start.Merge(rhs.Span), lhs, rhs)
		n.WithField(cst.FieldName, 0)
		n.WithField(cst.FieldValue, 1)
		return n
	}
}

// --- expressions (precedence climbing) ---

func (p *Parser) expression() *cst.Node {
	if n, ok := p.tryLambda(); ok {
		return n
	}
	return p.ternary()
}

// tryLambda recognizes `ident -> body` and `(ident, ...) -> body`
// (spec.md §3.1's Closure value, built from anonymous-function syntax)
// ahead of ordinary expression parsing, backtracking to start if the
// lookahead doesn't pan out — neither form overlaps a bare identifier
// or parenthesized (tuple) expression until the '->' token itself.
func (p *Parser) tryLambda() (*cst.Node, bool) {
	start := p.current
	var params []*cst.Node
	switch p.peek().Kind {
	case token.Ident:
		if !p.checkAt(1, token.Arrow) {
			return nil, false
		}
		params = append(params, p.identLeaf())
	case token.LParen:
		p.advance()
		for !p.check(token.RParen) && !p.isAtEnd() {
			if !p.check(token.Ident) {
				p.current = start
				return nil, false
			}
			params = append(params, p.identLeaf())
			if !p.match(token.Comma) {
				break
			}
		}
		if !p.match(token.RParen) || !p.check(token.Arrow) {
			p.current = start
			return nil, false
		}
	default:
		return nil, false
	}
	p.advance() // '->'
	var body *cst.Node
	if p.check(token.Begin) {
		p.advance()
		body = p.blockUntilEnd()
		p.consume(token.End, "expect 'end' to close lambda body")
	} else {
		body = p.ternary()
	}
	children := append(params, body)
	n := cst.New(cst.KFunctionRef, children[0].Span.Merge(body.Span), children...)
	n.WithField(cst.FieldBody, len(n.Children)-1)
	return n, true
}

func (p *Parser) checkAt(offset int, k token.Kind) bool {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return false
	}
	return p.tokens[idx].Kind == k
}

func (p *Parser) ternary() *cst.Node {
	cond := p.binary(0)
	if p.match(token.Question) {
		then := p.ternary()
		p.consume(token.Colon, "expect ':' in ternary")
		els := p.ternary()
		return cst.New(cst.KTernaryExpr, cond.Span.Merge(els.Span), cond, then, els)
	}
	return cond
}

func (p *Parser) binary(minPrec int) *cst.Node {
	left := p.unary()
	for {
		info, ok := token.Precedence[p.peek().Kind]
		if !ok || info.Precedence < minPrec {
			break
		}
		opTok := p.advance()
		nextMin := info.Precedence + 1
		if info.Assoc == token.RightAssoc {
			nextMin = info.Precedence
		}
		right := p.binary(nextMin)
		if opTok.Kind == token.DotDot {
			left = cst.New(cst.KRangeExpr, left.Span.Merge(right.Span), left, right)
			continue
		}
		n := cst.New(cst.KBinaryExpr, left.Span.Merge(right.Span), left, right)
		n.Text = opTok.Lexeme
		left = n
	}
	return left
}

func (p *Parser) unary() *cst.Node {
	switch p.peek().Kind {
	case token.Minus, token.Not, token.Plus, token.Amp:
		startSpan := p.span()
		opTok := p.advance()
		operand := p.unary()
		n := cst.New(cst.KUnaryExpr, startSpan.Merge(operand.Span), operand)
		n.Text = opTok.Lexeme
		return n
	}
	return p.postfix()
}

func (p *Parser) postfix() *cst.Node {
	expr := p.primary()
	for {
		switch p.peek().Kind {
		case token.LParen:
			expr = p.finishCall(expr)
		case token.LBracket:
			p.advance()
			if p.match(token.Colon) && p.check(token.RBracket) {
				p.advance()
				expr = cst.New(cst.KSliceAll, expr.Span.Merge(p.prevSpan()), expr)
				continue
			}
			idx := p.expression()
			p.consume(token.RBracket, "expect ']' after index")
			expr = cst.New(cst.KIndexExpr, expr.Span.Merge(p.prevSpan()), expr, idx)
		case token.Dot:
			p.advance()
			field := p.identLeaf()
			expr = cst.New(cst.KFieldExpr, expr.Span.Merge(field.Span), expr, field)
		case token.DoubleColon:
			p.advance()
			ty := p.typeExpr()
			expr = cst.New(cst.KTypeAnnotation, expr.Span.Merge(ty.Span), expr, ty)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee *cst.Node) *cst.Node {
	p.advance() // '('
	var args []*cst.Node
	for !p.check(token.RParen) && !p.isAtEnd() {
		args = append(args, p.expression())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RParen, "expect ')' after arguments")
	n := cst.New(cst.KCallExpr, callee.Span.Merge(p.prevSpan()), append([]*cst.Node{callee}, args...)...)
	n.WithField(cst.FieldCallee, 0)
	return n
}

func (p *Parser) primary() *cst.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.Int, token.Float, token.Float32, token.BigIntLit, token.String, token.Char, token.True, token.False, token.Nothing, token.Missing:
		p.advance()
		return cst.Leaf(cst.KLiteral, p.prevSpan(), tok.Lexeme)
	case token.InterpStr:
		return p.interpString()
	case token.Symbol:
		p.advance()
		return cst.Leaf(cst.KSymbolLit, p.prevSpan(), tok.Lexeme)
	case token.Ident:
		return p.identLeaf()
	case token.LParen:
		p.advance()
		first := p.expression()
		if p.match(token.Comma) {
			elems := []*cst.Node{first}
			for !p.check(token.RParen) && !p.isAtEnd() {
				elems = append(elems, p.expression())
				if !p.match(token.Comma) {
					break
				}
			}
			p.consume(token.RParen, "expect ')' to close tuple")
			return cst.New(cst.KTupleLiteral, first.Span.Merge(p.prevSpan()), elems...)
		}
		p.consume(token.RParen, "expect ')'")
		return first
	case token.LBracket:
		return p.arrayLiteral()
	case token.LBrace:
		return p.dictOrSetLiteral()
	case token.At:
		return p.macroCall()
	default:
		sp := p.span()
		p.advance()
		return p.errorNode("expect expression", sp)
	}
}

func (p *Parser) interpString() *cst.Node {
	tok := p.advance()
	return cst.Leaf(cst.KInterpString, p.prevSpan(), tok.Lexeme)
}

func (p *Parser) arrayLiteral() *cst.Node {
	start := p.span()
	p.advance()
	var elems []*cst.Node
	for !p.check(token.RBracket) && !p.isAtEnd() {
		elems = append(elems, p.expression())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RBracket, "expect ']' to close array literal")
	return cst.New(cst.KArrayLiteral, start.Merge(p.prevSpan()), elems...)
}

func (p *Parser) dictOrSetLiteral() *cst.Node {
	start := p.span()
	p.advance()
	var pairs []*cst.Node
	for !p.check(token.RBrace) && !p.isAtEnd() {
		k := p.expression()
		if p.match(token.FatArrow) {
			v := p.expression()
			pairs = append(pairs, cst.New(cst.KPairExpr, k.Span.Merge(v.Span), k, v))
		} else {
			pairs = append(pairs, k)
		}
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RBrace, "expect '}' to close literal")
	kind := cst.KDictLiteral
	if len(pairs) > 0 && pairs[0].Kind != cst.KPairExpr {
		kind = cst.KArrayLiteral // set-like literal; lowered as a plain array literal
	}
	return cst.New(kind, start.Merge(p.prevSpan()), pairs...)
}

func (p *Parser) macroCall() *cst.Node {
	start := p.span()
	p.advance() // '@'
	name := p.consumeIdentLeaf("expect macro name after '@'")
	var args []*cst.Node
	for !p.atStmtBoundary() && !p.check(token.LParen) && p.canStartExpr() {
		args = append(args, p.expression())
	}
	if p.match(token.LParen) {
		for !p.check(token.RParen) && !p.isAtEnd() {
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
		p.consume(token.RParen, "expect ')' to close macro call")
	}
	n := cst.New(cst.KMacroCallExpr, start.Merge(p.prevSpan()), append([]*cst.Node{name}, args...)...)
	n.WithField(cst.FieldName, 0)
	return n
}

func (p *Parser) canStartExpr() bool {
	switch p.peek().Kind {
	case token.Int, token.Float, token.Float32, token.String, token.Char, token.Ident, token.LBracket, token.LBrace, token.Minus, token.Not:
		return true
	}
	return false
}

// --- token helpers ---

func (p *Parser) peek() token.Token  { return p.tokens[p.current] }
func (p *Parser) prev() token.Token  { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool      { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.prev()
}

func (p *Parser) check(k token.Kind) bool { return !p.isAtEnd() && p.peek().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(k token.Kind, msg string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.Diags.Add(diag.NewParseError(fmt.Sprintf("%s (got %s)", msg, p.peek().Kind), p.file, p.span()))
	return p.peek()
}

func (p *Parser) consumeIdentLeaf(msg string) *cst.Node {
	tok := p.consume(token.Ident, msg)
	return cst.Leaf(cst.KIdent, diag.Span{Start: tok.Start, End: tok.End, Line: tok.Line, Col: tok.Col}, tok.Lexeme)
}

func (p *Parser) identLeaf() *cst.Node {
	tok := p.consume(token.Ident, "expect identifier")
	return cst.Leaf(cst.KIdent, diag.Span{Start: tok.Start, End: tok.End, Line: tok.Line, Col: tok.Col}, tok.Lexeme)
}

func (p *Parser) errorNode(msg string, sp diag.Span) *cst.Node {
	p.Diags.Add(diag.NewParseError(msg, p.file, sp))
	return cst.New(cst.KError, sp)
}

func (p *Parser) span() diag.Span {
	t := p.peek()
	return diag.Span{Start: t.Start, End: t.End, Line: t.Line, Col: t.Col}
}

func (p *Parser) prevSpan() diag.Span {
	if p.current == 0 {
		// nothing consumed yet (empty input): use the current token
		return p.span()
	}
	t := p.prev()
	return diag.Span{Start: t.Start, End: t.End, Line: t.Line, Col: t.Col}
}
