package parser

import (
	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/internal/token"
)

// Expression parsing methods for the Parser. Enum initializers are constant
// expressions: literals, member references, parentheses and the arithmetic,
// bitwise and shift operators.

func (p *Parser) parseExpression(precedence int) ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.setTokenError(p.curToken, errors.E1009, "maximum nesting depth exceeded")
		return nil
	}
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}
	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		if left = infix(left); left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdent() ast.Expr {
	return p.newIdent(p.curToken)
}

func (p *Parser) parseNumber() ast.Expr {
	return &ast.Number{ValuePos: p.curToken.StartPosition, Raw: p.curToken.Literal}
}

func (p *Parser) parseString() ast.Expr {
	return &ast.String{
		ValuePos: p.curToken.StartPosition,
		EndPos:   p.curToken.EndPosition,
		Value:    p.curToken.Literal,
	}
}

// illegalToken stands in for a token the lexer rejected. The lexer error is
// already recorded, so no second error is added here.
func (p *Parser) illegalToken() ast.Expr {
	return &ast.BadExpr{From: p.curToken.StartPosition, To: p.curToken.EndPosition}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	lparen := p.curToken.StartPosition
	p.nextToken() // move past '('
	x := p.parseExpression(LOWEST)
	if x == nil {
		return nil
	}
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return nil
	}
	return &ast.Paren{Lparen: lparen, X: x, Rparen: p.curToken.StartPosition}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	opTok := p.curToken
	p.nextToken()
	x := p.parseExpression(PREFIX)
	if x == nil {
		return nil
	}
	// As in TypeScript, "-2 ** 2" is rejected rather than guessed at.
	if p.peekTokenIs(token.POW) {
		p.setTokenError(opTok, errors.E1003,
			"unary %q is not allowed on the left side of \"**\"; use parentheses", opTok.Literal)
		return nil
	}
	return &ast.Prefix{OpPos: opTok.StartPosition, Op: opTok.Literal, X: x}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	precedence := p.currentPrecedence()
	// ** is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2)
	if p.curTokenIs(token.POW) {
		precedence--
	}
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: opPos, Op: op, Y: right}
}
