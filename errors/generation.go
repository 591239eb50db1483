package errors

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/classgen/ast"
)

// GenerationError reports that a declaration could not be turned into a
// class file. It keeps the source text and the failing declaration so the
// reporting layer can render a located diagnostic without re-parsing.
type GenerationError struct {
	Source   string   // complete source text of the file
	Filename string   // source filename, may be empty
	Node     ast.Node // the declaration that failed
	Message  string   // includes the fully qualified name attempted
	Cause    error    // the underlying encoding failure
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("generation error: ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	writeLocation(&b, e.Location())
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Code returns the diagnostic code for this error.
func (e *GenerationError) Code() ErrorCode {
	return E2011
}

// Location returns the location of the failing declaration.
func (e *GenerationError) Location() SourceLocation {
	return LocationOf(e.Node, e.Filename, e.Source)
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *GenerationError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display. When the
// cause points at a more specific node, such as a single enum member, the
// source line shown is that node's line.
func (e *GenerationError) ToFormatted() *FormattedError {
	loc := e.Location()
	fe := &FormattedError{
		Code:      E2011,
		Kind:      "error",
		Message:   e.Message,
		Filename:  loc.Filename,
		Line:      loc.Line,
		Column:    loc.Column,
		EndColumn: loc.EndColumn,
	}
	var encErr *EncodingError
	if As(e.Cause, &encErr) {
		fe.Note = encErr.Message
		if encErr.Cause != nil {
			fe.Note += ": " + encErr.Cause.Error()
		}
		if len(encErr.Suggestions) > 0 {
			fe.Hint = FormatSuggestions(encErr.Suggestions)
		}
		if encErr.Node != nil {
			loc = LocationOf(encErr.Node, e.Filename, e.Source)
			fe.Line, fe.Column, fe.EndColumn = loc.Line, loc.Column, loc.EndColumn
		}
	} else if e.Cause != nil {
		fe.Note = e.Cause.Error()
	}
	fe.SourceLines = sourceLines(loc)
	return fe
}

// NameCollisionError reports that two declarations resolve to the same fully
// qualified class name. The second declaration is never inserted.
type NameCollisionError struct {
	Name     string         // fully qualified name, dot separated
	Location SourceLocation // the rejected declaration
	Previous SourceLocation // the declaration that produced the existing class
}

// Error implements the error interface.
func (e *NameCollisionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generation error: duplicate class name %q", e.Name)
	if !e.Previous.IsZero() {
		fmt.Fprintf(&b, " (previously generated at %s)", e.Previous)
	}
	writeLocation(&b, e.Location)
	return b.String()
}

// Code returns the diagnostic code for this error.
func (e *NameCollisionError) Code() ErrorCode {
	return E2012
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *NameCollisionError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *NameCollisionError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:        E2012,
		Kind:        "error",
		Message:     fmt.Sprintf("duplicate class name %q", e.Name),
		Filename:    e.Location.Filename,
		Line:        e.Location.Line,
		Column:      e.Location.Column,
		EndColumn:   e.Location.EndColumn,
		SourceLines: sourceLines(e.Location),
	}
	if !e.Previous.IsZero() {
		fe.Note = "previously generated at " + e.Previous.String()
	}
	return fe
}

// EncodingError is returned by a class encoder when it cannot produce valid
// bytes for a declaration, for example when the constant pool overflows or a
// member initializer cannot be evaluated.
type EncodingError struct {
	Node        ast.Node // the most specific offending node, may be nil
	Message     string
	Cause       error
	Suggestions []Suggestion
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// NewEncodingError returns an EncodingError located at the given node.
func NewEncodingError(node ast.Node, format string, args ...any) *EncodingError {
	return &EncodingError{Node: node, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedDeclarationError reports a declaration kind that has no
// generator.
type UnsupportedDeclarationError struct {
	Location SourceLocation
	Kind     string
}

func (e *UnsupportedDeclarationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generation error: unsupported declaration %s", e.Kind)
	writeLocation(&b, e.Location)
	return b.String()
}

// Code returns the diagnostic code for this error.
func (e *UnsupportedDeclarationError) Code() ErrorCode {
	return E2013
}
