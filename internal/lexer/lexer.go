// Package lexer provides a lexer for the TypeScript declaration subset
// understood by classgen: namespaces, enums and constant expressions.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deepnoodle-ai/classgen/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	input     string
	position  int  // byte offset of ch
	nextPos   int  // byte offset of the rune after ch
	ch        rune // current character
	line      int
	lineStart int
	file      string
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// SetFilename sets the filename recorded on every token position.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Filename returns the filename recorded on token positions.
func (l *Lexer) Filename() string {
	return l.file
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.nextPos
	}
	if l.nextPos >= len(l.input) {
		l.position = len(l.input)
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.nextPos:])
	l.position = l.nextPos
	l.nextPos += size
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.nextPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.nextPos:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.file,
	}
}

func (l *Lexer) token(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   l.pos(),
	}
}

// Next returns the next token from the input. At the end of the input an
// EOF token is returned repeatedly.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return l.token(token.ILLEGAL, "", l.pos()), err
	}
	start := l.pos()
	ch := l.ch
	switch {
	case ch == 0 && l.position >= len(l.input):
		return l.token(token.EOF, "", start), nil
	case ch == '"' || ch == '\'':
		return l.readString(ch)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekChar())):
		return l.readNumber(), nil
	case isIdentifierStart(ch):
		ident := l.readIdentifier()
		return l.token(token.LookupIdentifier(ident), ident, start), nil
	}
	typ, literal := l.readOperator()
	if typ == token.ILLEGAL {
		return l.token(token.ILLEGAL, literal, start),
			fmt.Errorf("unexpected character %q", literal)
	}
	return l.token(typ, literal, start), nil
}

func (l *Lexer) readOperator() (token.Type, string) {
	ch := l.ch
	l.readChar()
	switch ch {
	case '{':
		return token.LBRACE, "{"
	case '}':
		return token.RBRACE, "}"
	case '(':
		return token.LPAREN, "("
	case ')':
		return token.RPAREN, ")"
	case ',':
		return token.COMMA, ","
	case ';':
		return token.SEMICOLON, ";"
	case ':':
		return token.COLON, ":"
	case '.':
		return token.PERIOD, "."
	case '=':
		return token.ASSIGN, "="
	case '+':
		return token.PLUS, "+"
	case '-':
		return token.MINUS, "-"
	case '/':
		return token.SLASH, "/"
	case '%':
		return token.MOD, "%"
	case '&':
		return token.AMPERSAND, "&"
	case '|':
		return token.BITOR, "|"
	case '^':
		return token.CARET, "^"
	case '~':
		return token.TILDE, "~"
	case '*':
		if l.ch == '*' {
			l.readChar()
			return token.POW, "**"
		}
		return token.ASTERISK, "*"
	case '<':
		if l.ch == '<' {
			l.readChar()
			return token.LT_LT, "<<"
		}
	case '>':
		if l.ch == '>' {
			l.readChar()
			if l.ch == '>' {
				l.readChar()
				return token.GT_GT_GT, ">>>"
			}
			return token.GT_GT, ">>"
		}
	}
	return token.ILLEGAL, string(ch)
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\ufeff':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.position < len(l.input) {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for {
				if l.position >= len(l.input) {
					return fmt.Errorf("unterminated block comment")
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentifierPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber keeps the raw literal text. Interpretation of the literal
// (radix, range, integer vs floating point) is left to the consumer.
func (l *Lexer) readNumber() token.Token {
	start := l.pos()
	begin := l.position
	if l.ch == '0' && strings.ContainsRune("xXoObB", l.peekChar()) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.token(token.NUMBER, l.input[begin:l.position], start)
	}
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.token(token.NUMBER, l.input[begin:l.position], start)
}

func (l *Lexer) readString(quote rune) (token.Token, error) {
	start := l.pos()
	l.readChar()
	var out strings.Builder
	for {
		switch {
		case l.position >= len(l.input) || l.ch == '\n':
			return l.token(token.ILLEGAL, out.String(), start),
				fmt.Errorf("unterminated string literal")
		case l.ch == quote:
			l.readChar()
			return l.token(token.STRING, out.String(), start), nil
		case l.ch == '\\':
			l.readChar()
			if err := l.readEscape(&out); err != nil {
				return l.token(token.ILLEGAL, out.String(), start), err
			}
		default:
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) readEscape(out *strings.Builder) error {
	ch := l.ch
	l.readChar()
	switch ch {
	case 'n':
		out.WriteByte('\n')
	case 't':
		out.WriteByte('\t')
	case 'r':
		out.WriteByte('\r')
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case 'v':
		out.WriteByte('\v')
	case '0':
		out.WriteByte(0)
	case '\\', '\'', '"', '`':
		out.WriteRune(ch)
	case 'x':
		return l.readHexEscape(out, 2)
	case 'u':
		return l.readHexEscape(out, 4)
	default:
		return fmt.Errorf("invalid escape sequence \"\\%c\"", ch)
	}
	return nil
}

func (l *Lexer) readHexEscape(out *strings.Builder, digits int) error {
	start := l.position
	for i := 0; i < digits; i++ {
		if !isHexDigit(l.ch) {
			return fmt.Errorf("invalid escape sequence: expected %d hex digits", digits)
		}
		l.readChar()
	}
	value, err := strconv.ParseUint(l.input[start:l.position], 16, 32)
	if err != nil {
		return err
	}
	out.WriteRune(rune(value))
	return nil
}

func isIdentifierStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentifierPart(ch rune) bool {
	return isIdentifierStart(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// GetLineText returns the full line of source text containing the token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	rest := l.input[start:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimRight(rest, "\r")
}
