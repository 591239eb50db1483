// Package parser is used to generate the abstract syntax tree (AST) for a
// declaration file.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/internal/lexer"
	"github.com/deepnoodle-ai/classgen/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// statementStarts are the tokens that may begin a declaration. Error
// recovery resumes at the next one of these.
var statementStarts = map[token.Type]bool{
	token.EXPORT:    true,
	token.DECLARE:   true,
	token.CONST:     true,
	token.ENUM:      true,
	token.NAMESPACE: true,
	token.MODULE:    true,
}

// Parse the provided input as declaration source and return the AST. This is
// shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	// Resolve the filename first so that lexer errors in the first tokens
	// carry it.
	var probe Parser
	for _, opt := range options {
		opt(&probe)
	}
	l := lexer.New(input)
	if probe.filename != "" {
		l.SetFilename(probe.filename)
	}
	return New(l, options...).Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name recorded on positions and errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []ParserError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	// number of enclosing "declare namespace" blocks
	ambientDepth int

	filename string
	depth    int
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" && l.Filename() == "" {
		l.SetFilename(p.filename)
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]

	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.PLUS, p.parsePrefixExpr)
	p.registerPrefix(token.TILDE, p.parsePrefixExpr)
	p.registerPrefix(token.ILLEGAL, p.illegalToken)

	for typ := range precedences {
		p.registerInfix(typ, p.parseInfixExpr)
	}
	return p
}

// advanceToken moves to the next token from the lexer without error checking.
// Used internally by synchronize() during error recovery.
func (p *Parser) advanceToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, _ = p.l.Next()
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken.
func (p *Parser) nextToken() error {
	var err error
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, err = p.l.Next()
	if err == nil {
		return nil
	}
	// The lexer encountered an error. We consider all lexer errors
	// "syntax errors" and parsing will now be considered broken.
	p.addError(NewSyntaxError(ErrorOpts{
		Code:          lexerErrorCode(err),
		Cause:         err,
		File:          p.l.Filename(),
		StartPosition: p.peekToken.StartPosition,
		EndPosition:   p.peekToken.EndPosition,
		SourceCode:    p.l.GetLineText(p.peekToken),
	}))
	return err
}

func lexerErrorCode(err error) errors.ErrorCode {
	msg := err.Error()
	switch {
	case msg == "unterminated string literal":
		return errors.E1002
	case strings.HasPrefix(msg, "unterminated"):
		return errors.E1007
	case strings.HasPrefix(msg, "invalid escape sequence"):
		return errors.E1010
	default:
		return errors.E1003
	}
}

// Parse the program that is provided via the lexer.
// Returns the AST and any errors encountered. If there are errors, the AST
// may be partial (containing only successfully parsed statements).
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stmts := p.parseStatements(token.EOF)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	program := &ast.Program{Stmts: stmts}
	if p.hasErrors() {
		return program, NewErrors(p.errors)
	}
	return program, nil
}

// parseStatements parses declarations until the end token (EOF at the top
// level, RBRACE inside a namespace). A failed declaration is skipped and
// parsing resumes at the next declaration so that further errors are
// reported in the same pass.
func (p *Parser) parseStatements(end token.Type) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.curTokenIs(end) && !p.curTokenIs(token.EOF) {
		if p.tooManyErrors() || p.cancelled() {
			break
		}
		mark := len(p.errors)
		stmt := p.parseStatement()
		switch {
		case len(p.errors) > mark && stmt == nil:
			p.synchronize()
		case stmt != nil:
			stmts = append(stmts, stmt)
			p.nextToken()
		default:
			p.nextToken()
		}
	}
	return stmts
}

func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) addError(err ParserError) {
	p.errors = append(p.errors, err)
}

func (p *Parser) hasErrors() bool {
	return len(p.errors) > 0
}

func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// synchronize skips tokens until the start of the next declaration, a
// closing brace of an enclosing block, or the end of input. Braces opened
// while skipping are matched so that a broken declaration's body is skipped
// as a whole.
func (p *Parser) synchronize() {
	depth := 0
	p.advanceToken()
	for !p.curTokenIs(token.EOF) {
		switch {
		case p.curTokenIs(token.LBRACE):
			depth++
		case p.curTokenIs(token.RBRACE):
			if depth == 0 {
				return
			}
			depth--
		case depth == 0 && statementStarts[p.curToken.Type]:
			return
		}
		p.advanceToken()
	}
}

// cancelled checks if the parsing context has been cancelled.
func (p *Parser) cancelled() bool {
	if p.ctx == nil {
		return false
	}
	return p.ctx.Err() != nil
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	p.setTokenError(t, errors.E1004, "expected expression, got %s", tokenDescription(t))
}

// peekError records an error because the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	code := errors.E1001
	switch {
	case expected == token.IDENT:
		code = errors.E1006
	case expected == token.RBRACE && got.Type == token.EOF:
		code = errors.E1007
	}
	p.setTokenError(got, code, "unexpected %s while parsing %s (expected %s)",
		tokenDescription(got), context, tokenTypeDescription(expected))
}

func (p *Parser) setTokenError(t token.Token, code errors.ErrorCode, msg string, args ...any) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          code,
		Message:       fmt.Sprintf(msg, args...),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek validates if the next token is of the given type, and advances if
// it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// peekPrecedence returns the precedence of the next token.
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// currentPrecedence returns the precedence of the current token.
func (p *Parser) currentPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}
