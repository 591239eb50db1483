package parser

import (
	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/internal/token"
)

// Declaration parsing methods for the Parser.
// This file contains methods that parse:
// - Declaration modifiers (export, declare, const)
// - Namespace and module blocks
// - Enum declarations and their members

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.SEMICOLON, token.ILLEGAL:
		// Empty statement, or a token the lexer already reported.
		return nil
	case token.EXPORT, token.DECLARE, token.CONST, token.ENUM, token.NAMESPACE, token.MODULE:
		return p.parseDeclaration()
	default:
		p.setTokenError(p.curToken, errors.E1001,
			"unexpected %s (expected a namespace or enum declaration)", tokenDescription(p.curToken))
		return nil
	}
}

// parseDeclaration consumes the modifiers in the order TypeScript allows
// them ("export declare const enum") and dispatches on the keyword.
func (p *Parser) parseDeclaration() ast.Stmt {
	start := p.curToken.StartPosition
	var exported, declare, isConst bool
	if p.curTokenIs(token.EXPORT) {
		exported = true
		p.nextToken()
	}
	if p.curTokenIs(token.DECLARE) {
		declare = true
		p.nextToken()
	}
	if p.curTokenIs(token.CONST) {
		isConst = true
		if !p.expectPeek("const enum declaration", token.ENUM) {
			return nil
		}
	}
	declare = declare || p.ambientDepth > 0

	switch p.curToken.Type {
	case token.ENUM:
		return p.parseEnum(start, exported, declare, isConst)
	case token.NAMESPACE, token.MODULE:
		return p.parseNamespace(start, exported, declare)
	default:
		p.setTokenError(p.curToken, errors.E1001,
			"unexpected %s (expected \"enum\" or \"namespace\")", tokenDescription(p.curToken))
		return nil
	}
}

func (p *Parser) parseNamespace(start token.Position, exported, declare bool) ast.Stmt {
	keyword := p.curToken.Literal
	context := keyword + " declaration"
	if !p.expectPeek(context, token.IDENT) {
		return nil
	}
	names := []*ast.Ident{p.newIdent(p.curToken)}
	for p.peekTokenIs(token.PERIOD) {
		p.nextToken()
		if !p.expectPeek(context, token.IDENT) {
			return nil
		}
		names = append(names, p.newIdent(p.curToken))
	}
	if !p.expectPeek(context, token.LBRACE) {
		return nil
	}
	if p.depth >= p.maxDepth {
		p.setTokenError(p.curToken, errors.E1009, "maximum nesting depth exceeded")
		return nil
	}
	ns := &ast.NamespaceDecl{
		Start:    start,
		Keyword:  keyword,
		Names:    names,
		Declare:  declare,
		Exported: exported,
		Lbrace:   p.curToken.StartPosition,
	}

	p.depth++
	if declare {
		p.ambientDepth++
	}
	p.nextToken() // move past '{'
	ns.Body = p.parseStatements(token.RBRACE)
	if declare {
		p.ambientDepth--
	}
	p.depth--

	if !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, errors.E1007,
				"unexpected end of file while parsing %s %s (expected \"}\")", keyword, ns.Name())
		}
		return nil
	}
	ns.Rbrace = p.curToken.StartPosition
	return ns
}

func (p *Parser) parseEnum(start token.Position, exported, declare, isConst bool) ast.Stmt {
	enumPos := p.curToken.StartPosition
	if !p.expectPeek("enum declaration", token.IDENT) {
		return nil
	}
	name := p.newIdent(p.curToken)
	if !p.expectPeek("enum declaration", token.LBRACE) {
		return nil
	}
	decl := &ast.EnumDecl{
		Start:    start,
		EnumPos:  enumPos,
		Name:     name,
		Declare:  declare,
		Const:    isConst,
		Exported: exported,
		Lbrace:   p.curToken.StartPosition,
	}
	p.nextToken() // move past '{'

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, errors.E1007,
				"unexpected end of file while parsing enum %s (expected \"}\")", name.Name)
			return nil
		}
		if p.tooManyErrors() || p.cancelled() {
			return nil
		}
		if member := p.parseEnumMember(); member != nil {
			decl.Members = append(decl.Members, member)
			p.nextToken()
		} else {
			p.skipEnumMember()
		}
		switch {
		case p.curTokenIs(token.COMMA):
			p.nextToken()
		case p.curTokenIs(token.RBRACE), p.curTokenIs(token.EOF):
		default:
			p.setTokenError(p.curToken, errors.E1001,
				"unexpected %s while parsing enum %s (expected \",\" or \"}\")",
				tokenDescription(p.curToken), name.Name)
			p.skipEnumMember()
			if p.curTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
	}
	decl.Rbrace = p.curToken.StartPosition
	return decl
}

// parseEnumMember parses "Name" or "Name = expr". Keywords are valid member
// names. On return curToken is the last token of the member.
func (p *Parser) parseEnumMember() *ast.EnumMember {
	if !p.curTokenIs(token.IDENT) && !token.IsKeyword(p.curToken.Type) {
		p.setTokenError(p.curToken, errors.E1006,
			"expected enum member name, got %s", tokenDescription(p.curToken))
		return nil
	}
	member := &ast.EnumMember{Name: p.newIdent(p.curToken)}
	if !p.peekTokenIs(token.ASSIGN) {
		return member
	}
	p.nextToken() // move to '='
	p.nextToken() // move to the initializer
	member.Init = p.parseExpression(LOWEST)
	if member.Init == nil {
		return nil
	}
	return member
}

// skipEnumMember advances to the next member separator or the closing
// brace of the enum body, skipping over parenthesized groups.
func (p *Parser) skipEnumMember() {
	parens := 0
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LPAREN:
			parens++
		case token.RPAREN:
			if parens > 0 {
				parens--
			}
		case token.COMMA, token.RBRACE:
			if parens == 0 {
				return
			}
		}
		p.advanceToken()
	}
}
