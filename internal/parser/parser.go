// Package parser turns a mumei token stream into an ordered sequence of
// top-level items. The parser never recovers from a malformed input:
// the first error encountered is fatal and is returned immediately.
package parser

import (
	"fmt"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/lexer"
)

// ParseError is returned on the first malformed construct the parser
// encounters.
type ParseError struct {
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

func newParseError(pos ast.Pos, format string, args ...any) *ParseError {
	return &ParseError{Line: pos.Line, Col: pos.Col, Message: fmt.Sprintf(format, args...)}
}

// Parser is a recursive-descent parser over a lexer.Lexer.
type Parser struct {
	l    *lexer.Lexer
	file string

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]func() (ast.Expr, error)
	infixParseFns  map[lexer.TokenType]func(ast.Expr) (ast.Expr, error)
}

// New creates a Parser over l. file is attached to the parser's own
// synthesized positions (the lexer already stamps token positions).
func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, file: file}

	p.prefixParseFns = map[lexer.TokenType]func() (ast.Expr, error){
		lexer.INT:    p.parseNumber,
		lexer.FLOAT:  p.parseFloat,
		lexer.TRUE:   p.parseBool,
		lexer.FALSE:  p.parseBool,
		lexer.IDENT:  p.parseIdentExpr,
		lexer.LPAREN: p.parseGroupedExpr,
		lexer.MINUS:  p.parseUnaryMinus,
		lexer.LBRACE: p.parseBlock,
		lexer.LET:    p.parseLet,
		lexer.IF:     p.parseIf,
		lexer.WHILE:  p.parseWhile,
	}

	p.infixParseFns = map[lexer.TokenType]func(ast.Expr) (ast.Expr, error){
		lexer.PLUS:  p.parseBinaryOp,
		lexer.MINUS: p.parseBinaryOp,
		lexer.STAR:  p.parseBinaryOp,
		lexer.SLASH: p.parseBinaryOp,
		lexer.EQ:    p.parseBinaryOp,
		lexer.NEQ:   p.parseBinaryOp,
		lexer.LT:    p.parseBinaryOp,
		lexer.GT:    p.parseBinaryOp,
		lexer.LTE:   p.parseBinaryOp,
		lexer.GTE:   p.parseBinaryOp,
		lexer.AND:   p.parseBinaryOp,
		lexer.OR:    p.parseBinaryOp,
		lexer.DOT:   p.parseFieldAccess,
	}

	// prime curToken/peekToken
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curPos() ast.Pos {
	return ast.Pos{Line: p.curToken.Line, Col: p.curToken.Column, File: p.file}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expect advances past the current token if it has type t, otherwise
// returns a ParseError and leaves the cursor in place.
func (p *Parser) expect(t lexer.TokenType) error {
	if !p.curTokenIs(t) {
		return newParseError(p.curPos(), "expected %s, got %s %q", t, p.curToken.Type, p.curToken.Literal)
	}
	p.nextToken()
	return nil
}

// Precedence levels, lowest to highest:
// || < && < comparison < additive < multiplicative < unary < primary.
const (
	LOWEST int = iota
	OR
	AND
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	DOTACCESS
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:    OR,
	lexer.AND:   AND,
	lexer.EQ:    EQUALS,
	lexer.NEQ:   EQUALS,
	lexer.LT:    LESSGREATER,
	lexer.GT:    LESSGREATER,
	lexer.LTE:   LESSGREATER,
	lexer.GTE:   LESSGREATER,
	lexer.PLUS:  SUM,
	lexer.MINUS: SUM,
	lexer.STAR:  PRODUCT,
	lexer.SLASH: PRODUCT,
	lexer.DOT:   DOTACCESS,
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the whole token stream into an ordered Item list.
// It stops at the first error.
func (p *Parser) ParseProgram() ([]ast.Item, error) {
	var items []ast.Item
	for !p.curTokenIs(lexer.EOF) {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		return nil, newParseError(p.curPos(), "unexpected token %s %q in expression", p.curToken.Type, p.curToken.Literal)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	// Every prefix/infix function leaves curToken one past the construct
	// it just parsed, so the loop below reads curToken (not peekToken)
	// to decide whether an infix operator follows.
	for !p.curTokenIs(lexer.SEMICOLON) && precedence < p.curPrecedence() {
		infix, ok := p.infixParseFns[p.curToken.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}
