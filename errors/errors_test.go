package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/internal/token"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

const source = "namespace a.b {\n  enum Color { Red = 1 / 0 }\n}\n"

func enumNode() (*ast.EnumDecl, *ast.Infix) {
	line := token.Position{Line: 1, LineStart: 16}
	at := func(col int) token.Position {
		p := line
		p.Column = col
		p.Char = line.LineStart + col
		return p
	}
	div := &ast.Infix{
		X:     &ast.Number{ValuePos: at(21), Raw: "1"},
		OpPos: at(23),
		Op:    "/",
		Y:     &ast.Number{ValuePos: at(25), Raw: "0"},
	}
	decl := &ast.EnumDecl{
		Start:   at(2),
		EnumPos: at(2),
		Name:    &ast.Ident{NamePos: at(7), Name: "Color"},
		Members: []*ast.EnumMember{{Name: &ast.Ident{NamePos: at(15), Name: "Red"}, Init: div}},
		Rbrace:  at(27),
	}
	return decl, div
}

func TestLocationOf(t *testing.T) {
	decl, div := enumNode()
	loc := LocationOf(decl, "colors.ts", source)
	require.Equal(t, "colors.ts", loc.Filename)
	require.Equal(t, 2, loc.Line)
	require.Equal(t, 3, loc.Column)
	require.Equal(t, 28, loc.EndColumn)
	require.Equal(t, "  enum Color { Red = 1 / 0 }", loc.Source)
	require.Equal(t, "colors.ts:2:3", loc.String())

	loc = LocationOf(div, "", source)
	require.Equal(t, "2:22", loc.String())
	require.Equal(t, 26, loc.EndColumn)

	require.True(t, LocationOf(nil, "x.ts", source).IsZero())
}

func TestGenerationError(t *testing.T) {
	decl, div := enumNode()
	cause := &EncodingError{Node: div, Message: "division by zero in enum initializer"}
	err := &GenerationError{
		Source:   source,
		Filename: "colors.ts",
		Node:     decl,
		Message:  "failed to generate bytecode for enum: a.b.Color",
		Cause:    cause,
	}
	require.Equal(t, "generation error: failed to generate bytecode for enum: a.b.Color: "+
		"division by zero in enum initializer\n\nlocation: colors.ts:2:3 (line 2, column 3)", err.Error())
	require.Equal(t, E2011, err.Code())

	var target *EncodingError
	require.True(t, As(err, &target))
	require.Same(t, cause, target)

	expected := `error[E2011]: failed to generate bytecode for enum: a.b.Color
  --> colors.ts:2:22
   |
 2 |   enum Color { Red = 1 / 0 }
   |                      ^^^^^
   |
   = note: division by zero in enum initializer
`
	require.Equal(t, expected, err.FriendlyErrorMessage())
}

func TestGenerationErrorPlainCause(t *testing.T) {
	decl, _ := enumNode()
	sentinel := New("constant pool overflow")
	err := &GenerationError{Source: source, Node: decl, Message: "failed", Cause: fmt.Errorf("wrapped: %w", sentinel)}
	require.True(t, Is(err, sentinel))
	fe := err.ToFormatted()
	require.Equal(t, "wrapped: constant pool overflow", fe.Note)
	require.Equal(t, 2, fe.Line)
	require.Equal(t, 3, fe.Column)
}

func TestNameCollisionError(t *testing.T) {
	err := &NameCollisionError{
		Name:     "Color",
		Location: SourceLocation{Filename: "b.ts", Line: 3, Column: 1, Source: "enum Color { A }"},
		Previous: SourceLocation{Filename: "a.ts", Line: 1, Column: 1},
	}
	require.Equal(t, "generation error: duplicate class name \"Color\" (previously generated at a.ts:1:1)"+
		"\n\nlocation: b.ts:3:1 (line 3, column 1)", err.Error())
	require.Equal(t, E2012, err.Code())
	msg := err.FriendlyErrorMessage()
	require.Contains(t, msg, "error[E2012]: duplicate class name \"Color\"")
	require.Contains(t, msg, "note: previously generated at a.ts:1:1")
}

func TestEncodingErrorSuggestions(t *testing.T) {
	decl, _ := enumNode()
	ref := decl.Members[0].Name
	encErr := NewEncodingError(ref, "cannot reference enum member %q before it is defined", "Rd")
	encErr.Suggestions = SuggestSimilar("Rd", []string{"Red", "Green"})
	require.Equal(t, "cannot reference enum member \"Rd\" before it is defined", encErr.Error())
	err := &GenerationError{Source: source, Node: decl, Message: "failed", Cause: encErr}
	require.Equal(t, "Did you mean 'Red'?", err.ToFormatted().Hint)
}

func TestFormatErrorMultiple(t *testing.T) {
	var result *multierror.Error
	result = multierror.Append(result,
		&NameCollisionError{Name: "A", Location: SourceLocation{Line: 1, Column: 1}},
		New("plain failure"),
	)
	out := NewFormatter(false).FormatError(result.ErrorOrNil())
	require.True(t, strings.HasPrefix(out, "error[E2012]: duplicate class name \"A\""))
	require.Contains(t, out, "error[2/2]: plain failure")
	require.True(t, strings.HasSuffix(out, "found 2 errors\n"))
	require.Len(t, Flatten(result), 2)
	require.Equal(t, "", NewFormatter(false).FormatError(nil))
}

func TestFormatterColor(t *testing.T) {
	fe := &FormattedError{Kind: "error", Message: "boom", Line: 1, Column: 1}
	colored := NewFormatter(true).Format(fe)
	require.Contains(t, colored, "\x1b[")
	plain := NewFormatter(false).Format(fe)
	require.NotContains(t, plain, "\x1b[")
	require.Equal(t, "error: boom\n  --> 1:1\n", plain)
}

func TestSuggestSimilar(t *testing.T) {
	tests := []struct {
		target     string
		candidates []string
		expected   []string
	}{
		{"Gren", []string{"Green", "Blue", "Purple"}, []string{"Green"}},
		{"red", []string{"Red", "Rod", "Bed"}, []string{"Red", "Bed", "Rod"}},
		{"Xyzzy", []string{"Red", "Green"}, nil},
		{"", []string{"Red"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got []string
			for _, s := range SuggestSimilar(tt.target, tt.candidates) {
				got = append(got, s.Value)
			}
			require.Equal(t, tt.expected, got)
		})
	}
	require.Equal(t, "Did you mean one of: 'A', 'B'?", FormatSuggestions([]Suggestion{{Value: "A"}, {Value: "B"}}))
}

func TestErrorCodes(t *testing.T) {
	require.Equal(t, "class encoding failed", E2011.Description())
	require.Equal(t, "generate", E2012.Category())
	require.Equal(t, "parse", E1001.Category())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())

	codes := Codes()
	require.Len(t, codes, 12)
	require.Equal(t, E1001, codes[0])
	require.Equal(t, E2013, codes[len(codes)-1])
}
