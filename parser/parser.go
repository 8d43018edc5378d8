package parser

import (
	"fmt"
	"strconv"

	"github.com/aetherscript/aether/lexer"
)

// ParseError carries the offending token's position and a human-readable
// expectation, per the grammar's parse-error contract.
type ParseError struct {
	Line, Column int
	Message      string
	// Lex is set when the offending token is lexer.ILLEGAL, so callers
	// can report errs.LexError instead of errs.ParseError per the
	// error-kind table's "illegal character" trigger.
	Lex bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Position implements errs.ParseFailure.
func (e *ParseError) Position() (int, int) { return e.Line, e.Column }

// IsLexError implements errs.ParseFailure.
func (e *ParseError) IsLexError() bool { return e.Lex }

// Parser is a Pratt-style recursive-descent parser over a lexer.Lexer.
type Parser struct {
	lex *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*ParseError
}

// New creates a Parser ready to call Parse.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{lex: l}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.curToken = p.peekToken
	p.peekToken = p.lex.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.peekToken.Type, p.peekToken.Literal)
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, &ParseError{
		Line:    p.peekToken.Line,
		Column:  p.peekToken.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) here() pos { return pos{Line: p.curToken.Line, Column: p.curToken.Column} }

// Parse consumes the entire token stream and returns the resulting
// Program, or the first accumulated parse error.
func Parse(source string) (*Program, error) {
	p := New(lexer.New(source))
	prog := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return prog, nil
}

// ParseProgram parses top-level statements until EOF.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{}
	for !p.curIs(lexer.EOF) {
		if len(p.errors) > 0 {
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.next()
	}
	return prog
}

func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.SET:
		return p.parseSetStatement()
	case lexer.FUNC:
		return p.parseFuncStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return &BreakStatement{pos: p.here()}
	case lexer.CONTINUE:
		return &ContinueStatement{pos: p.here()}
	case lexer.IMPORT:
		return p.parseImportStatement()
	case lexer.EXPORT:
		return p.parseExportStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseSetStatement() Statement {
	start := p.here()
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	// `Set NAME[i] v` (bracket directly after the name) assigns into an
	// element; `Set NAME [..]` (bracket after whitespace) binds an array
	// literal.
	var index Expression
	if p.peekIs(lexer.LBRACKET) && p.peekToken.Line == p.curToken.Line &&
		p.peekToken.Column == p.curToken.Column+len(p.curToken.Literal) {
		p.next() // [
		p.next()
		index = p.parseExpression(LOWEST)
		if !p.expect(lexer.RBRACKET) {
			return nil
		}
	}

	p.next()
	value := p.parseExpression(LOWEST)
	return &SetStatement{pos: start, Name: name, Index: index, Value: value}
}

func (p *Parser) parseFuncStatement() Statement {
	start := p.here()
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	var params []string
	for !p.peekIs(lexer.RPAREN) {
		if !p.expect(lexer.IDENT) {
			return nil
		}
		params = append(params, p.curToken.Literal)
		if p.peekIs(lexer.COMMA) {
			p.next()
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return &FuncStatement{pos: start, Name: name, Params: params, Body: body}
}

// parseBlock assumes curToken is LBRACE and consumes through the
// matching RBRACE, leaving curToken on RBRACE.
func (p *Parser) parseBlock() *BlockStatement {
	block := &BlockStatement{pos: p.here()}
	p.next()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	if !p.curIs(lexer.RBRACE) {
		p.errorf("unterminated block, expected }")
	}
	return block
}

func (p *Parser) parseIfStatement() Statement {
	start := p.here()
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	then := p.parseBlock()

	stmt := &IfStatement{pos: start, Condition: cond, Then: then}

	if p.peekIs(lexer.ELSE) {
		p.next()
		if p.peekIs(lexer.IF) {
			p.next()
			stmt.Else = p.parseIfStatement()
		} else if p.expect(lexer.LBRACE) {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseForStatement() Statement {
	start := p.here()
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expect(lexer.IN) {
		return nil
	}
	p.next()
	iter := p.parseExpression(LOWEST)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return &ForStatement{pos: start, Name: name, Iterable: iter, Body: body}
}

func (p *Parser) parseWhileStatement() Statement {
	start := p.here()
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return &WhileStatement{pos: start, Condition: cond, Body: body}
}

func (p *Parser) parseReturnStatement() Statement {
	start := p.here()
	if p.peekIs(lexer.RBRACE) || p.peekIs(lexer.EOF) {
		return &ReturnStatement{pos: start}
	}
	p.next()
	val := p.parseExpression(LOWEST)
	return &ReturnStatement{pos: start, Value: val}
}

func (p *Parser) parseImportStatement() Statement {
	start := p.here()
	var names []string
	if !p.expect(lexer.IDENT) {
		return nil
	}
	names = append(names, p.curToken.Literal)
	for p.peekIs(lexer.COMMA) {
		p.next()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		names = append(names, p.curToken.Literal)
	}
	if !p.expect(lexer.FROM) {
		return nil
	}
	if !p.expect(lexer.STRING) {
		return nil
	}
	return &ImportStatement{pos: start, Names: names, Path: p.curToken.Literal}
}

func (p *Parser) parseExportStatement() Statement {
	start := p.here()
	if !p.expect(lexer.IDENT) {
		return nil
	}
	return &ExportStatement{pos: start, Name: p.curToken.Literal}
}

func (p *Parser) parseExpressionStatement() Statement {
	start := p.here()
	expr := p.parseExpression(LOWEST)
	return &ExpressionStatement{pos: start, Expression: expr}
}

// parseExpression is the Pratt loop: parse a prefix expression, then
// repeatedly fold in infix/postfix operators whose precedence exceeds
// minPrecedence.
func (p *Parser) parseExpression(minPrecedence int) Expression {
	left := p.parsePrefix()

	for !p.peekIs(lexer.SEMI) && minPrecedence < p.peekPrecedence() {
		p.next()
		left = p.parseInfix(left)
	}
	return left
}

// peekPrecedence is precedenceOf with one line-sensitivity rule: a call
// or index suffix must open on the same line as the expression it
// extends. Statements have no terminator, so a "(" or "[" at the start
// of the next line begins a new statement rather than extending the
// previous one.
func (p *Parser) peekPrecedence() int {
	if (p.peekToken.Type == lexer.LPAREN || p.peekToken.Type == lexer.LBRACKET) &&
		p.peekToken.Line != p.curToken.Line {
		return LOWEST
	}
	return precedenceOf(p.peekToken.Type)
}

func (p *Parser) parsePrefix() Expression {
	switch p.curToken.Type {
	case lexer.NUMBER:
		return p.parseNumberLiteral()
	case lexer.STRING:
		return &StringLiteral{pos: p.here(), Value: p.curToken.Literal}
	case lexer.TRUE:
		return &BooleanLiteral{pos: p.here(), Value: true}
	case lexer.FALSE:
		return &BooleanLiteral{pos: p.here(), Value: false}
	case lexer.NULL:
		return &NullLiteral{pos: p.here()}
	case lexer.IDENT:
		return &Identifier{pos: p.here(), Name: p.curToken.Literal}
	case lexer.NOT, lexer.MINUS:
		return p.parseUnary()
	case lexer.LPAREN:
		return p.parseGrouped()
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseDictLiteral()
	case lexer.ILLEGAL:
		p.errors = append(p.errors, &ParseError{
			Line:    p.curToken.Line,
			Column:  p.curToken.Column,
			Message: fmt.Sprintf("illegal character %q", p.curToken.Literal),
			Lex:     true,
		})
		return &NullLiteral{pos: p.here()}
	default:
		p.errorf("unexpected token %s (%q) in expression position", p.curToken.Type, p.curToken.Literal)
		return &NullLiteral{pos: p.here()}
	}
}

func (p *Parser) parseNumberLiteral() Expression {
	start := p.here()
	lit := p.curToken.Literal
	isFloat := false
	for _, c := range lit {
		if c == '.' {
			isFloat = true
			break
		}
	}
	if isFloat {
		f, _ := strconv.ParseFloat(lit, 64)
		return &FloatLiteral{pos: start, Value: f}
	}
	return &IntegerLiteral{pos: start, Digits: lit}
}

func (p *Parser) parseUnary() Expression {
	start := p.here()
	op := p.curToken.Literal
	p.next()
	right := p.parseExpression(PREFIX)
	return &UnaryExpression{pos: start, Operator: op, Right: right}
}

func (p *Parser) parseGrouped() Expression {
	p.next()
	expr := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return expr
	}
	return expr
}

func (p *Parser) parseArrayLiteral() Expression {
	start := p.here()
	lit := &ArrayLiteral{pos: start}
	for !p.peekIs(lexer.RBRACKET) {
		p.next()
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
		if p.peekIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return lit
}

func (p *Parser) parseDictLiteral() Expression {
	start := p.here()
	lit := &DictLiteral{pos: start}
	for !p.peekIs(lexer.RBRACE) {
		p.next()
		key := p.parseExpression(LOWEST)
		if !p.expect(lexer.COLON) {
			break
		}
		p.next()
		val := p.parseExpression(LOWEST)
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, val)
		if p.peekIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

func (p *Parser) parseInfix(left Expression) Expression {
	switch p.curToken.Type {
	case lexer.LPAREN:
		return p.parseCall(left)
	case lexer.LBRACKET:
		return p.parseIndex(left)
	case lexer.DOT:
		return p.parseField(left)
	case lexer.QUESTION:
		return p.parseTernary(left)
	default:
		return p.parseBinary(left)
	}
}

func (p *Parser) parseBinary(left Expression) Expression {
	start := p.here()
	op := p.curToken.Literal
	prec := precedenceOf(p.curToken.Type)
	p.next()
	right := p.parseExpression(prec)
	return &BinaryExpression{pos: start, Operator: op, Left: left, Right: right}
}

func (p *Parser) parseCall(callee Expression) Expression {
	start := p.here()
	call := &CallExpression{pos: start, Callee: callee}
	for !p.peekIs(lexer.RPAREN) {
		p.next()
		call.Args = append(call.Args, p.parseExpression(LOWEST))
		if p.peekIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return call
}

func (p *Parser) parseIndex(left Expression) Expression {
	start := p.here()
	p.next()
	idx := p.parseExpression(LOWEST)
	p.expect(lexer.RBRACKET)
	return &IndexExpression{pos: start, Left: left, Index: idx}
}

func (p *Parser) parseField(left Expression) Expression {
	start := p.here()
	if !p.expect(lexer.IDENT) {
		return left
	}
	return &FieldExpression{pos: start, Left: left, Name: p.curToken.Literal}
}

func (p *Parser) parseTernary(cond Expression) Expression {
	start := p.here()
	p.next()
	then := p.parseExpression(LOWEST)
	if !p.expect(lexer.COLON) {
		return then
	}
	p.next()
	els := p.parseExpression(TERNARY)
	return &TernaryExpression{pos: start, Condition: cond, Then: then, Else: els}
}
