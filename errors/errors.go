// Package errors defines the structured diagnostics produced while parsing
// declarations and generating class files, and renders them with source
// context.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/classgen/ast"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename  string
	Line      int    // 1-based line number
	Column    int    // 1-based column number
	EndColumn int    // 1-based inclusive end column on the same line; 0 if unknown
	Source    string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// LocationOf computes the location of a node within the given source text.
// The filename falls back to the one recorded on the node's position.
func LocationOf(node ast.Node, filename, source string) SourceLocation {
	if node == nil {
		return SourceLocation{Filename: filename}
	}
	start := node.Pos()
	end := node.End()
	if filename == "" {
		filename = start.File
	}
	loc := SourceLocation{
		Filename: filename,
		Line:     start.LineNumber(),
		Column:   start.ColumnNumber(),
		Source:   lineAt(source, start.LineStart),
	}
	if end.Line == start.Line && end.Column > start.Column {
		loc.EndColumn = end.Column
	}
	return loc
}

func lineAt(source string, offset int) string {
	if offset < 0 || offset > len(source) {
		return ""
	}
	rest := source[offset:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimRight(rest, "\r")
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// writeLocation appends the "location: ..." trailer used by Error().
func writeLocation(b *strings.Builder, loc SourceLocation) {
	if loc.Filename == "" && loc.Line == 0 {
		return
	}
	b.WriteString("\n\nlocation: ")
	if loc.Filename != "" {
		b.WriteString(loc.Filename)
		b.WriteString(":")
	}
	fmt.Fprintf(b, "%d:%d", loc.Line, loc.Column)
	fmt.Fprintf(b, " (line %d, column %d)", loc.Line, loc.Column)
}

func sourceLines(loc SourceLocation) []SourceLineEntry {
	if loc.Source == "" {
		return nil
	}
	return []SourceLineEntry{{Number: loc.Line, Text: loc.Source, IsMain: true}}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}
