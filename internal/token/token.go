// Package token defines language keywords and tokens used when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	AMPERSAND Type = "&"
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	BITOR     Type = "|"
	CARET     Type = "^"
	COLON     Type = ":"
	COMMA     Type = ","
	CONST     Type = "CONST"
	DECLARE   Type = "DECLARE"
	ENUM      Type = "ENUM"
	EOF       Type = "EOF"
	EXPORT    Type = "EXPORT"
	GT_GT     Type = ">>"
	GT_GT_GT  Type = ">>>"
	IDENT     Type = "IDENT"
	ILLEGAL   Type = "ILLEGAL"
	LBRACE    Type = "{"
	LPAREN    Type = "("
	LT_LT     Type = "<<"
	MINUS     Type = "-"
	MOD       Type = "%"
	MODULE    Type = "MODULE"
	NAMESPACE Type = "NAMESPACE"
	NUMBER    Type = "NUMBER"
	PERIOD    Type = "."
	PLUS      Type = "+"
	POW       Type = "**"
	RBRACE    Type = "}"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	STRING    Type = "STRING"
	TILDE     Type = "~"
)

// Reserved keywords
var keywords = map[string]Type{
	"const":     CONST,
	"declare":   DECLARE,
	"enum":      ENUM,
	"export":    EXPORT,
	"module":    MODULE,
	"namespace": NAMESPACE,
}

// LookupIdentifier used to determinate whether identifier is keyword nor not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether the token type is a reserved keyword. Keywords
// are still accepted as member names inside an enum body.
func IsKeyword(t Type) bool {
	for _, kw := range keywords {
		if kw == t {
			return true
		}
	}
	return false
}
