package parser

import (
	"strconv"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/lexer"
)

func (p *Parser) parseNumber() (ast.Expr, error) {
	pos := p.curPos()
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		return nil, newParseError(pos, "invalid integer literal %q", p.curToken.Literal)
	}
	p.nextToken()
	return &ast.Number{Value: v, Pos: pos}, nil
}

func (p *Parser) parseFloat() (ast.Expr, error) {
	pos := p.curPos()
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		return nil, newParseError(pos, "invalid float literal %q", p.curToken.Literal)
	}
	p.nextToken()
	return &ast.Float{Value: v, Pos: pos}, nil
}

func (p *Parser) parseBool() (ast.Expr, error) {
	pos := p.curPos()
	v := p.curTokenIs(lexer.TRUE)
	p.nextToken()
	return &ast.Bool{Value: v, Pos: pos}, nil
}

func (p *Parser) parseUnaryMinus() (ast.Expr, error) {
	pos := p.curPos()
	p.nextToken()
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Lhs: &ast.Number{Value: 0, Pos: pos}, Op: ast.Sub, Rhs: operand, Pos: pos}, nil
}

func (p *Parser) parseGroupedExpr() (ast.Expr, error) {
	p.nextToken() // consume '('
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseIdentExpr disambiguates the four surface forms an identifier
// can start: a bare Variable, a Call, an ArrayAccess, or (when the
// name is capitalized, following the type/struct naming convention) a
// StructInit.
func (p *Parser) parseIdentExpr() (ast.Expr, error) {
	pos := p.curPos()
	name := p.curToken.Literal

	switch {
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken() // consume ident, cur is '('
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args, Pos: pos}, nil

	case p.peekTokenIs(lexer.LBRACKET):
		p.nextToken() // cur is '['
		p.nextToken() // consume '[', cur is index expr
		index, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ArrayAccess{Name: name, Index: index, Pos: pos}, nil

	case p.peekTokenIs(lexer.LBRACE) && isTypeName(name):
		p.nextToken() // cur is '{'
		return p.parseStructInit(name, pos)

	default:
		p.nextToken() // consume ident
		return &ast.Variable{Name: name, Pos: pos}, nil
	}
}

func isTypeName(name string) bool {
	r := []rune(name)
	return len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z'
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	p.nextToken() // consume '(', cur is first arg or ')'
	if p.curTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args, nil
	}
	for {
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseStructInit(typeName string, pos ast.Pos) (ast.Expr, error) {
	var fields []ast.FieldInit
	p.nextToken() // consume '{', cur is first field name or '}'
	for !p.curTokenIs(lexer.RBRACE) {
		if !p.curTokenIs(lexer.IDENT) {
			return nil, newParseError(p.curPos(), "expected field name, got %s %q", p.curToken.Type, p.curToken.Literal)
		}
		fieldName := p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldInit{Name: fieldName, Value: value})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.StructInit{TypeName: typeName, Fields: fields, Pos: pos}, nil
}

func (p *Parser) parseFieldAccess(left ast.Expr) (ast.Expr, error) {
	pos := p.curPos()
	p.nextToken() // consume '.', cur is field name
	if !p.curTokenIs(lexer.IDENT) {
		return nil, newParseError(p.curPos(), "expected field name after '.', got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	field := p.curToken.Literal
	p.nextToken()
	return &ast.FieldAccess{Target: left, Field: field, Pos: pos}, nil
}

var binaryOps = map[lexer.TokenType]ast.Operator{
	lexer.PLUS:  ast.Add,
	lexer.MINUS: ast.Sub,
	lexer.STAR:  ast.Mul,
	lexer.SLASH: ast.Div,
	lexer.EQ:    ast.Eq,
	lexer.NEQ:   ast.Neq,
	lexer.LT:    ast.Lt,
	lexer.GT:    ast.Gt,
	lexer.LTE:   ast.Le,
	lexer.GTE:   ast.Ge,
	lexer.AND:   ast.And,
	lexer.OR:    ast.Or,
}

func (p *Parser) parseBinaryOp(left ast.Expr) (ast.Expr, error) {
	pos := p.curPos()
	op := binaryOps[p.curToken.Type]
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Lhs: left, Op: op, Rhs: right, Pos: pos}, nil
}

// parseBlock parses `{ stmt ; stmt ; ... lastExpr }`. Each statement
// may omit its trailing semicolon only if it is the block's final
// expression.
func (p *Parser) parseBlock() (ast.Expr, error) {
	pos := p.curPos()
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Expr
	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			return nil, newParseError(p.curPos(), "unterminated block, missing '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts, Pos: pos}, nil
}

// parseLet parses `let name = value`, the statement form (Body is
// always nil; sequencing comes from the enclosing Block).
func (p *Parser) parseLet() (ast.Expr, error) {
	pos := p.curPos()
	if err := p.expect(lexer.LET); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.IDENT) {
		return nil, newParseError(p.curPos(), "expected identifier after 'let', got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	name := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Let{Var: name, Value: value, Pos: pos}, nil
}

// parseStatement parses one Block statement. A bare `name = value` is
// an Assign, detected ahead of parseExpression so parseIdentExpr
// never has to special-case '=' while parsing a general expression.
func (p *Parser) parseStatement() (ast.Expr, error) {
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.ASSIGN) {
		pos := p.curPos()
		name := p.curToken.Literal
		p.nextToken() // consume ident, cur is '='
		p.nextToken() // consume '=', cur is value
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Var: name, Value: value, Pos: pos}, nil
	}
	return p.parseExpression(LOWEST)
}

// parseIf parses `if cond then a else b` or the braced form
// `if cond { a } else { b }`.
func (p *Parser) parseIf() (ast.Expr, error) {
	pos := p.curPos()
	if err := p.expect(lexer.IF); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	var thenExpr ast.Expr
	if p.curTokenIs(lexer.LBRACE) {
		thenExpr, err = p.parseBlock()
	} else {
		if err := p.expect(lexer.THEN); err != nil {
			return nil, err
		}
		thenExpr, err = p.parseExpression(LOWEST)
	}
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.ELSE); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.IfThenElse{Cond: cond, Then: thenExpr, Else: elseExpr, Pos: pos}, nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	pos := p.curPos()
	if err := p.expect(lexer.WHILE); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	var invariant ast.Expr
	if p.curTokenIs(lexer.INVARIANT) {
		p.nextToken()
		invariant, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Invariant: invariant, Body: body, Pos: pos}, nil
}
