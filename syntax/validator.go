// Package syntax checks parsed declaration files against restrictions that
// go beyond what the parser accepts, such as requiring every enum member to
// carry a literal initializer.
package syntax

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/internal/token"
)

// ValidationError represents a syntax restriction violation.
type ValidationError struct {
	Message  string         // description of the violation
	Node     ast.Node       // the offending node
	Position token.Position // source location
	Source   string         // complete source text, when known
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// Code returns the diagnostic code for this error.
func (e *ValidationError) Code() errors.ErrorCode {
	return errors.E1011
}

// ToFormatted converts to the FormattedError type for display.
func (e *ValidationError) ToFormatted() *errors.FormattedError {
	loc := errors.LocationOf(e.Node, e.Position.File, e.Source)
	fe := &errors.FormattedError{
		Code:      errors.E1011,
		Kind:      "syntax error",
		Message:   e.Message,
		Filename:  loc.Filename,
		Line:      loc.Line,
		Column:    loc.Column,
		EndColumn: loc.EndColumn,
	}
	if loc.Source != "" {
		fe.SourceLines = []errors.SourceLineEntry{{Number: loc.Line, Text: loc.Source, IsMain: true}}
	}
	return fe
}

// ValidationErrors wraps multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// NewValidationErrors creates a ValidationErrors from a slice of errors.
func NewValidationErrors(errs []ValidationError) *ValidationErrors {
	return &ValidationErrors{Errors: errs}
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
		for _, err := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", err.Error())
		}
		return b.String()
	}
}

// Unwrap returns every violation, so that errors.Flatten reports each one
// separately.
func (e *ValidationErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i := range e.Errors {
		out[i] = &e.Errors[i]
	}
	return out
}

// Validator inspects an AST and returns validation errors.
// Validators should not modify the AST.
type Validator interface {
	// Validate checks the AST and returns any validation errors.
	// Multiple errors may be returned to show all violations at once.
	Validate(program *ast.Program) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Program) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(p *ast.Program) []ValidationError {
	return f(p)
}

// Check runs every validator over program and returns nil or a
// *ValidationErrors holding all violations. source fills in the source
// line of each violation for display.
func Check(program *ast.Program, source string, validators ...Validator) error {
	var all []ValidationError
	for _, v := range validators {
		for _, ve := range v.Validate(program) {
			if ve.Source == "" {
				ve.Source = source
			}
			all = append(all, ve)
		}
	}
	if len(all) == 0 {
		return nil
	}
	return NewValidationErrors(all)
}
