// Package parser implements a recursive-descent parser for C1/Minako
// source text. It is the single client of both internal/ast and
// internal/symtab: it drives the AST Builder to allocate nodes and
// the Symbol Table to resolve names and assign slots, producing a
// finished Arena an Evaluator can run directly (spec §6 "Parser
// contract").
//
// Precedence, loosest to tightest: assignment, ||, &&, equality
// (==, !=), relational (< > <= >=), additive (+ -), multiplicative
// (* /), unary (-), primary.
package parser

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/minako/internal/ast"
	"github.com/cwbudde/minako/internal/diag"
	"github.com/cwbudde/minako/internal/lexer"
	"github.com/cwbudde/minako/internal/symtab"
)

// Parser holds all state needed to turn a token stream into a
// finished Arena: the lexer it pulls tokens from, the arena and
// symbol table it populates, and accumulated diagnostics.
type Parser struct {
	lex    *lexer.Lexer
	arena  *ast.Arena
	syms   *symtab.Table
	source string
	file   string
	errors []*diag.Error

	cur, peek lexer.Token

	currentFunc *symtab.Symbol // non-nil while parsing a function body; used to type-check `return`
}

// New creates a Parser over source. file is used only for diagnostic
// headers; pass "" if there is none.
func New(source, file string) *Parser {
	p := &Parser{
		lex:    lexer.New(source),
		arena:  ast.New(),
		syms:   symtab.New(),
		source: source,
		file:   file,
	}
	p.advance()
	p.advance()
	return p
}

// Parse runs the parser to completion and returns the finished Arena.
// A non-empty error slice means the Arena is not safe to evaluate;
// the caller must not run it (spec §6: "interpreter does not execute
// the AST when the parser fails").
func Parse(source, file string) (*ast.Arena, []*diag.Error) {
	p := New(source, file)
	errs := p.Run()
	return p.arena, errs
}

// Run parses the program this Parser was constructed over and returns
// the accumulated diagnostics, if any. Callers that also want the
// symbol table (for --dump-symtab/inspect) construct a Parser with
// New and call Run directly instead of using the Parse convenience
// function.
func (p *Parser) Run() []*diag.Error {
	p.parseProgram()
	return p.errors
}

// Arena returns the Arena this Parser populates.
func (p *Parser) Arena() *ast.Arena { return p.arena }

// Symbols returns the symbol table this Parser populates. Valid to
// inspect only after Run has returned.
func (p *Parser) Symbols() *symtab.Table { return p.syms }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, diag.New(pos, fmt.Sprintf(format, args...), p.source, p.file))
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.cur
	if p.cur.Type != tt {
		p.errorf(p.cur.Pos, "expected %s, got %s %q", tt, p.cur.Type, p.cur.Literal)
	}
	p.advance()
	return tok
}

// isTypeToken reports whether tok begins a type name.
func isTypeToken(tt lexer.TokenType) bool {
	switch tt {
	case lexer.INT_TYPE, lexer.FLOAT_TYPE, lexer.BOOL_TYPE, lexer.STRING_TYPE, lexer.VOID_TYPE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseType() ast.Type {
	switch p.cur.Type {
	case lexer.INT_TYPE:
		p.advance()
		return ast.Integer
	case lexer.FLOAT_TYPE:
		p.advance()
		return ast.Float
	case lexer.BOOL_TYPE:
		p.advance()
		return ast.Boolean
	case lexer.STRING_TYPE:
		p.advance()
		return ast.String
	case lexer.VOID_TYPE:
		p.advance()
		return ast.Void
	default:
		p.errorf(p.cur.Pos, "expected a type, got %s %q", p.cur.Type, p.cur.Literal)
		p.advance()
		return ast.Void
	}
}

// parseProgram consumes top-level global-variable and function
// declarations, then finishes the Program node at id 0 (spec §4.1
// init / §6 Parser contract).
func (p *Parser) parseProgram() {
	body := p.arena.Empty(ast.TagSequence)

	for p.cur.Type != lexer.EOF {
		if !isTypeToken(p.cur.Type) {
			p.errorf(p.cur.Pos, "expected a declaration, got %s %q", p.cur.Type, p.cur.Literal)
			p.advance()
			continue
		}

		typ := p.parseType()
		name := p.expect(lexer.IDENT).Literal

		if p.cur.Type == lexer.LPAREN {
			p.parseFunction(typ, name)
			continue
		}

		sym := symtab.NewSymbol(name, typ)
		if err := p.syms.Insert(sym); err != nil {
			p.errorf(p.cur.Pos, "%v", err)
		}
		p.expect(lexer.SEMICOLON)
	}

	p.arena.Append(body, p.callMain())
	p.arena.SetRoot(body, p.syms.MaxGlobals())
}

// callMain synthesizes the implicit call to `main` that starts
// execution, the way the original grammar's top-level driver wires
// the program entry point in rather than requiring user source to
// call it explicitly. Returns 0 (no statement) and records a parse
// error if `main` was never declared.
func (p *Parser) callMain() ast.ID {
	sym, ok := p.syms.Lookup("main")
	if !ok || !sym.IsFunction {
		p.errorf(p.cur.Pos, "program has no function %q", "main")
		return 0
	}
	argsSeq := p.arena.Empty(ast.TagSequence)
	call := p.arena.Pair(ast.TagCall, argsSeq, sym.BodyID)
	p.arena.Node(call).Type = sym.Type
	return call
}

func (p *Parser) parseFunction(returnType ast.Type, name string) {
	fn := symtab.NewSymbol(name, returnType)
	fn.IsFunction = true
	if err := p.syms.Insert(fn); err != nil {
		p.errorf(p.cur.Pos, "%v", err)
	}

	bodyPlaceholder := p.arena.Empty(ast.TagSequence)
	fnID := p.arena.Function(bodyPlaceholder)
	fn.BodyID = fnID

	p.syms.Enter()
	p.expect(lexer.LPAREN)

	var params []*symtab.Symbol
	if p.cur.Type != lexer.RPAREN {
		for {
			ptyp := p.parseType()
			pname := p.expect(lexer.IDENT).Literal
			psym := symtab.NewSymbol(pname, ptyp)
			if err := p.syms.Insert(psym); err != nil {
				p.errorf(p.cur.Pos, "%v", err)
			}
			params = append(params, psym)
			if p.cur.Type != lexer.COMMA {
				break
			}
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)

	// Param() prepends, so declare right-to-left to get source order
	// back out through ParamFirst/ParamNext (spec §4.2).
	for i := len(params) - 1; i >= 0; i-- {
		symtab.Param(fn, params[i])
	}

	outerFunc := p.currentFunc
	p.currentFunc = fn

	body := p.parseBlockInto()
	p.arena.Node(fnID).First = body
	p.arena.SetFunctionLocals(fnID, p.syms.MaxLocals())

	p.currentFunc = outerFunc
	p.syms.Leave()
}

// parseBlockInto parses `{ stmt* }` and returns the id of the
// Sequence node holding its statements; it does not open its own
// symtab scope, so callers that need one (functions, nested blocks)
// call syms.Enter()/Leave() around it themselves. Function bodies
// reuse the function's own scope rather than nesting an extra one.
func (p *Parser) parseBlockInto() ast.ID {
	p.expect(lexer.LBRACE)
	seq := p.arena.Empty(ast.TagSequence)
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		p.arena.Append(seq, p.parseStatement())
	}
	p.expect(lexer.RBRACE)
	return seq
}

func (p *Parser) parseBlock() ast.ID {
	p.syms.Enter()
	seq := p.parseBlockInto()
	p.syms.Leave()
	return seq
}

func (p *Parser) parseStatement() ast.ID {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.INT_TYPE, lexer.FLOAT_TYPE, lexer.BOOL_TYPE, lexer.STRING_TYPE:
		return p.parseLocalDecl()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLocalDecl() ast.ID {
	typ := p.parseType()
	name := p.expect(lexer.IDENT).Literal
	sym := symtab.NewSymbol(name, typ)
	if err := p.syms.Insert(sym); err != nil {
		p.errorf(p.cur.Pos, "%v", err)
	}
	p.expect(lexer.SEMICOLON)
	return 0 // a bare declaration with no initializer emits no statement node
}

func (p *Parser) parseIf() ast.ID {
	p.advance() // if
	p.expect(lexer.LPAREN)
	pos := p.cur.Pos
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.checkBoolean(cond, pos, "if condition")
	cons := p.parseStatement()

	var alt ast.ID
	if p.cur.Type == lexer.ELSE {
		p.advance()
		alt = p.parseStatement()
	}

	if alt == 0 {
		return p.arena.Pair(ast.TagIf, cond, cons)
	}
	id := p.arena.Pair(ast.TagIf, cond, cons)
	p.arena.Node(cons).Next = alt
	return id
}

func (p *Parser) parseWhile() ast.ID {
	p.advance() // while
	p.expect(lexer.LPAREN)
	pos := p.cur.Pos
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.checkBoolean(cond, pos, "while condition")
	body := p.parseStatement()

	id := p.arena.Tag(ast.TagWhile, cond)
	p.arena.Node(id).Last = body
	return id
}

func (p *Parser) parseDoWhile() ast.ID {
	p.advance() // do
	body := p.parseStatement()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	pos := p.cur.Pos
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.expect(lexer.SEMICOLON)
	p.checkBoolean(cond, pos, "do-while condition")

	id := p.arena.Tag(ast.TagDoWhile, cond)
	p.arena.Node(id).Last = body
	return id
}

func (p *Parser) parseFor() ast.ID {
	p.advance() // for
	p.expect(lexer.LPAREN)

	p.syms.Enter()
	init := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	condPos := p.cur.Pos
	cond := p.parseExpr()
	p.checkBoolean(cond, condPos, "for condition")
	p.expect(lexer.SEMICOLON)
	step := p.parseExpr()
	p.expect(lexer.RPAREN)

	body := p.parseStatement()
	p.syms.Leave()

	return p.arena.For(init, cond, step, body)
}

func (p *Parser) parseReturn() ast.ID {
	pos := p.cur.Pos
	p.advance() // return
	var expr ast.ID
	if p.cur.Type != lexer.SEMICOLON {
		expr = p.parseExpr()
		expr = p.coerceTo(p.returnType(), expr, pos)
	}
	p.expect(lexer.SEMICOLON)
	return p.arena.Tag(ast.TagReturn, expr)
}

func (p *Parser) returnType() ast.Type {
	if p.currentFunc == nil {
		return ast.Void
	}
	return p.currentFunc.Type
}

func (p *Parser) parsePrint() ast.ID {
	p.advance() // print
	p.expect(lexer.LPAREN)
	expr := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.expect(lexer.SEMICOLON)
	return p.arena.Tag(ast.TagPrint, expr)
}

func (p *Parser) parseExprStatement() ast.ID {
	expr := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	return expr
}

// --- Expressions, loosest to tightest precedence ---

func (p *Parser) parseExpr() ast.ID {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.ID {
	if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.ASSIGN {
		name := p.cur
		p.advance() // ident
		p.advance() // =
		target := p.resolveVariable(name)
		value := p.parseAssignment()
		value = p.coerceTo(p.arena.Node(target).Type, value, name.Pos)
		return p.arena.Pair(ast.TagAssign, target, value)
	}
	return p.parseLogOr()
}

func (p *Parser) parseLogOr() ast.ID {
	left := p.parseLogAnd()
	for p.cur.Type == lexer.PIPE_PIPE {
		pos := p.cur.Pos
		p.advance()
		right := p.parseLogAnd()
		p.checkBoolean(left, pos, "||")
		p.checkBoolean(right, pos, "||")
		left = p.arena.Pair(ast.TagLogOr, left, right)
		p.arena.Node(left).Type = ast.Boolean
	}
	return left
}

func (p *Parser) parseLogAnd() ast.ID {
	left := p.parseEquality()
	for p.cur.Type == lexer.AMP_AMP {
		pos := p.cur.Pos
		p.advance()
		right := p.parseEquality()
		p.checkBoolean(left, pos, "&&")
		p.checkBoolean(right, pos, "&&")
		left = p.arena.Pair(ast.TagLogAnd, left, right)
		p.arena.Node(left).Type = ast.Boolean
	}
	return left
}

func (p *Parser) parseEquality() ast.ID {
	left := p.parseRelational()
	for p.cur.Type == lexer.EQ_EQ || p.cur.Type == lexer.NOT_EQ {
		tag := ast.TagEqt
		if p.cur.Type == lexer.NOT_EQ {
			tag = ast.TagNeq
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseRelational()
		left, right = p.coercePair(left, right, pos)
		p.checkComparable(left, pos)
		id := p.arena.Pair(tag, left, right)
		p.arena.Node(id).Type = ast.Boolean
		left = id
	}
	return left
}

func (p *Parser) parseRelational() ast.ID {
	left := p.parseAdditive()
	for {
		var tag ast.Tag
		switch p.cur.Type {
		case lexer.LESS:
			tag = ast.TagLst
		case lexer.GREATER:
			tag = ast.TagGrt
		case lexer.LESS_EQ:
			tag = ast.TagLeq
		case lexer.GREATER_EQ:
			tag = ast.TagGeq
		default:
			return left
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseAdditive()
		left, right = p.coercePair(left, right, pos)
		p.checkOrdered(left, pos)
		id := p.arena.Pair(tag, left, right)
		p.arena.Node(id).Type = ast.Boolean
		left = id
	}
}

func (p *Parser) parseAdditive() ast.ID {
	left := p.parseMultiplicative()
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		tag := ast.TagPlus
		if p.cur.Type == lexer.MINUS {
			tag = ast.TagMinus
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseMultiplicative()
		left = p.arithmeticNode(tag, left, right, pos)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.ID {
	left := p.parseUnary()
	for p.cur.Type == lexer.ASTERISK || p.cur.Type == lexer.SLASH {
		tag := ast.TagTimes
		if p.cur.Type == lexer.SLASH {
			tag = ast.TagDivide
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseUnary()
		left = p.arithmeticNode(tag, left, right, pos)
	}
	return left
}

func (p *Parser) parseUnary() ast.ID {
	if p.cur.Type == lexer.MINUS {
		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		p.checkNumeric(operand, pos)
		id := p.arena.Tag(ast.TagUminus, operand)
		p.arena.Node(id).Type = p.arena.Node(operand).Type
		return id
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.ID {
	tok := p.cur
	switch tok.Type {
	case lexer.INT:
		p.advance()
		return p.arena.Integer(parseIntLiteral(tok.Literal))
	case lexer.FLOAT:
		p.advance()
		return p.arena.Float(parseFloatLiteral(tok.Literal))
	case lexer.STRING:
		p.advance()
		return p.arena.String(tok.Literal)
	case lexer.TRUE:
		p.advance()
		return p.arena.Boolean(true)
	case lexer.FALSE:
		p.advance()
		return p.arena.Boolean(false)
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(lexer.RPAREN)
		return expr
	case lexer.IDENT:
		if p.peek.Type == lexer.LPAREN {
			return p.parseCall()
		}
		return p.resolveVariable(tok)
	default:
		p.errorf(tok.Pos, "unexpected token %s %q in expression", tok.Type, tok.Literal)
		p.advance()
		return p.arena.Integer(0)
	}
}

func (p *Parser) parseCall() ast.ID {
	name := p.cur
	p.advance() // ident
	p.expect(lexer.LPAREN)

	sym, ok := p.syms.Lookup(name.Literal)
	if !ok || !sym.IsFunction {
		p.errorf(name.Pos, "call to undeclared function %q", name.Literal)
	}

	argsSeq := p.arena.Empty(ast.TagSequence)
	var param *symtab.Symbol
	if ok && sym.IsFunction {
		param = symtab.ParamFirst(sym)
	}
	if p.cur.Type != lexer.RPAREN {
		for {
			arg := p.parseExpr()
			if param != nil {
				arg = p.coerceTo(param.Type, arg, name.Pos)
				param = param.ParamNext
			}
			p.arena.Append(argsSeq, arg)
			if p.cur.Type != lexer.COMMA {
				break
			}
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)

	var fnID ast.ID
	var retType ast.Type
	if ok {
		fnID = sym.BodyID
		retType = sym.Type
	}
	call := p.arena.Pair(ast.TagCall, argsSeq, fnID)
	p.arena.Node(call).Type = retType
	return call
}

func (p *Parser) resolveVariable(tok lexer.Token) ast.ID {
	sym, ok := p.syms.Lookup(tok.Literal)
	if !ok {
		p.errorf(tok.Pos, "undeclared identifier %q", tok.Literal)
		return p.arena.Variable(true, 0, ast.Void)
	}
	if sym.IsFunction {
		p.errorf(tok.Pos, "%q is a function, not a variable", tok.Literal)
		return p.arena.Variable(true, 0, ast.Void)
	}
	return p.arena.Variable(sym.IsGlobal, sym.Pos, sym.Type)
}

// --- type checking / coercion helpers (spec §4.3.8, §9) ---

// coerceTo wraps expr in a Cast(Float, expr) if target is Float and
// expr is an Integer; any other mismatch is a parse error, since the
// evaluator never coerces (spec §4.3.8).
func (p *Parser) coerceTo(target ast.Type, expr ast.ID, pos lexer.Position) ast.ID {
	exprType := p.arena.Node(expr).Type
	if exprType == target {
		return expr
	}
	if target == ast.Float && exprType == ast.Integer {
		return p.arena.Cast(ast.Float, expr)
	}
	p.errorf(pos, "cannot use %s value where %s is expected", exprType, target)
	return expr
}

// coercePair aligns two operands to a common type for a binary
// arithmetic or comparison operator, inserting an Integer→Float Cast
// on whichever side needs it.
func (p *Parser) coercePair(left, right ast.ID, pos lexer.Position) (ast.ID, ast.ID) {
	lt, rt := p.arena.Node(left).Type, p.arena.Node(right).Type
	if lt == rt {
		return left, right
	}
	if lt == ast.Float && rt == ast.Integer {
		return left, p.arena.Cast(ast.Float, right)
	}
	if lt == ast.Integer && rt == ast.Float {
		return p.arena.Cast(ast.Float, left), right
	}
	p.errorf(pos, "mismatched operand types %s and %s", lt, rt)
	return left, right
}

func (p *Parser) arithmeticNode(tag ast.Tag, left, right ast.ID, pos lexer.Position) ast.ID {
	left, right = p.coercePair(left, right, pos)
	p.checkNumeric(left, pos)
	resultType := p.arena.Node(left).Type
	id := p.arena.Pair(tag, left, right)
	p.arena.Node(id).Type = resultType
	return id
}

func (p *Parser) checkNumeric(id ast.ID, pos lexer.Position) {
	t := p.arena.Node(id).Type
	if t != ast.Integer && t != ast.Float {
		p.errorf(pos, "expected a numeric operand, got %s", t)
	}
}

func (p *Parser) checkBoolean(id ast.ID, pos lexer.Position, context string) {
	if t := p.arena.Node(id).Type; t != ast.Boolean {
		p.errorf(pos, "%s must be a bool expression, got %s", context, t)
	}
}

// checkComparable rejects the String/Void operand types spec §9 flags
// as an open question, resolved here in favor of a parser-level
// rejection (see DESIGN.md).
func (p *Parser) checkComparable(id ast.ID, pos lexer.Position) {
	t := p.arena.Node(id).Type
	if t == ast.String || t == ast.Void {
		p.errorf(pos, "%s operands cannot be compared", t)
	}
}

func (p *Parser) checkOrdered(id ast.ID, pos lexer.Position) {
	t := p.arena.Node(id).Type
	if t != ast.Integer && t != ast.Float {
		p.errorf(pos, "ordering comparison requires a numeric operand, got %s", t)
	}
}

// parseIntLiteral and parseFloatLiteral convert already-validated
// lexer literals; the lexer only ever produces well-formed digit
// sequences, so a conversion error here indicates a lexer/parser
// contract bug, not a user-facing one.
func parseIntLiteral(lit string) int32 {
	v, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		panic("parser: lexer produced an invalid integer literal: " + lit)
	}
	return int32(v)
}

func parseFloatLiteral(lit string) float32 {
	v, err := strconv.ParseFloat(lit, 32)
	if err != nil {
		panic("parser: lexer produced an invalid float literal: " + lit)
	}
	return float32(v)
}
