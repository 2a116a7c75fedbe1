package parser

import (
	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/lexer"
)

func (p *Parser) parseItem() (ast.Item, error) {
	switch p.curToken.Type {
	case lexer.TYPE:
		return p.parseTypeDef()
	case lexer.STRUCT:
		return p.parseStructDef()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.ATOM:
		return p.parseAtom()
	default:
		return nil, newParseError(p.curPos(), "expected 'type', 'struct', 'import', or 'atom', got %s %q", p.curToken.Type, p.curToken.Literal)
	}
}

// parseTypeDef parses `type Name = BaseType where Expr ;`. The
// refinement's operand is always bound to the name "v".
func (p *Parser) parseTypeDef() (ast.Item, error) {
	pos := p.curPos()
	if err := p.expect(lexer.TYPE); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.IDENT) {
		return nil, newParseError(p.curPos(), "expected type name, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	name := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.IDENT) {
		return nil, newParseError(p.curPos(), "expected base type, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	baseType := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.WHERE); err != nil {
		return nil, err
	}
	predicate, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.RefinedType{Name: name, BaseType: baseType, Operand: "v", Predicate: predicate, Pos: pos}, nil
}

// parseStructDef parses `struct Name { field: Type, ... }`.
func (p *Parser) parseStructDef() (ast.Item, error) {
	pos := p.curPos()
	if err := p.expect(lexer.STRUCT); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.IDENT) {
		return nil, newParseError(p.curPos(), "expected struct name, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	name := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.Field
	for !p.curTokenIs(lexer.RBRACE) {
		if !p.curTokenIs(lexer.IDENT) {
			return nil, newParseError(p.curPos(), "expected field name, got %s %q", p.curToken.Type, p.curToken.Literal)
		}
		fieldName := p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		if !p.curTokenIs(lexer.IDENT) {
			return nil, newParseError(p.curPos(), "expected field type, got %s %q", p.curToken.Type, p.curToken.Literal)
		}
		fieldType := ast.TypeRef{Name: p.curToken.Literal, Pos: p.curPos()}
		p.nextToken()
		fields = append(fields, ast.Field{Name: fieldName, Type: fieldType})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.StructDef{Name: name, Fields: fields, Pos: pos}, nil
}

// parseImport parses `import "path" [as alias] ;`.
func (p *Parser) parseImport() (ast.Item, error) {
	pos := p.curPos()
	if err := p.expect(lexer.IMPORT); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.STRING) {
		return nil, newParseError(p.curPos(), "expected import path string, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	path := p.curToken.Literal
	p.nextToken()
	alias := ""
	if p.curTokenIs(lexer.AS) {
		p.nextToken()
		if !p.curTokenIs(lexer.IDENT) {
			return nil, newParseError(p.curPos(), "expected alias after 'as', got %s %q", p.curToken.Type, p.curToken.Literal)
		}
		alias = p.curToken.Literal
		p.nextToken()
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Import{Path: path, Alias: alias, Pos: pos}, nil
}

// parseAtom parses `atom Name(params) requires Expr ensures Expr { body }`.
func (p *Parser) parseAtom() (ast.Item, error) {
	pos := p.curPos()
	if err := p.expect(lexer.ATOM); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.IDENT) {
		return nil, newParseError(p.curPos(), "expected atom name, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	name := p.curToken.Literal
	p.nextToken()

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.REQUIRES); err != nil {
		return nil, err
	}
	requires, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.ENSURES); err != nil {
		return nil, err
	}
	ensures, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Atom{Name: name, Params: params, Requires: requires, Ensures: ensures, Body: body, Pos: pos}, nil
}

// parseParams parses `( name [: Type] , ... )`.
func (p *Parser) parseParams() ([]ast.Param, error) {
	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.curTokenIs(lexer.RPAREN) {
		if !p.curTokenIs(lexer.IDENT) {
			return nil, newParseError(p.curPos(), "expected parameter name, got %s %q", p.curToken.Type, p.curToken.Literal)
		}
		name := p.curToken.Literal
		p.nextToken()
		var typeRef *ast.TypeRef
		if p.curTokenIs(lexer.COLON) {
			p.nextToken()
			if !p.curTokenIs(lexer.IDENT) {
				return nil, newParseError(p.curPos(), "expected parameter type, got %s %q", p.curToken.Type, p.curToken.Literal)
			}
			typeRef = &ast.TypeRef{Name: p.curToken.Literal, Pos: p.curPos()}
			p.nextToken()
		}
		params = append(params, ast.Param{Name: name, Type: typeRef})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}
