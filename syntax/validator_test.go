package syntax

import (
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/parser"
	"github.com/deepnoodle-ai/wonton/assert"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(context.Background(), source, parser.WithFilename("test.ts"))
	assert.Nil(t, err)
	return program
}

func messages(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func TestZeroRulesAllowEverything(t *testing.T) {
	program := parse(t, `
declare namespace n { enum A { X } }
const enum B { Y = 1 << 2, Z = "z" }
`)
	errs := NewRulesValidator(Rules{}).Validate(program)
	assert.Len(t, errs, 0)
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		rules    Rules
		source   string
		expected []string
	}{
		{
			"ambient",
			Rules{DisallowAmbient: true},
			"declare enum A { X }\nenum B { Y }",
			[]string{"ambient enum A is not allowed"},
		},
		{
			"const",
			Rules{DisallowConst: true},
			"const enum A { X }",
			[]string{"const enum A is not allowed"},
		},
		{
			"namespaces",
			Rules{DisallowNamespaces: true},
			"module a.b { enum A { X } }",
			[]string{"module blocks are not allowed"},
		},
		{
			"strings",
			Rules{DisallowStrings: true},
			`enum A { X = "x", Y = "y" }`,
			[]string{"string member X is not allowed", "string member Y is not allowed"},
		},
		{
			"computed",
			Rules{DisallowComputed: true},
			"enum A { X = -1, Y = (2), Z = X | 4, W = ~1 }",
			[]string{"member Z has a computed initializer", "member W has a computed initializer"},
		},
		{
			"initializers",
			Rules{RequireInitializers: true},
			"enum A { X = 1, Y }",
			[]string{"member Y has no initializer"},
		},
		{
			"max members",
			Rules{MaxMembers: 2},
			"enum A { X, Y }\nenum B { X, Y, Z }",
			[]string{"enum B has 3 members, the limit is 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewRulesValidator(tt.rules).Validate(parse(t, tt.source))
			assert.Equal(t, messages(errs), tt.expected)
		})
	}
}

func TestValidationErrorPosition(t *testing.T) {
	program := parse(t, "enum A {\n  X = 1,\n  Y\n}")
	errs := NewRulesValidator(Strict).Validate(program)
	assert.Len(t, errs, 1)
	assert.Equal(t, errs[0].Error(), "member Y has no initializer at test.ts:3:3")
}

func TestValidatorFunc(t *testing.T) {
	called := false
	v := ValidatorFunc(func(p *ast.Program) []ValidationError {
		called = true
		return nil
	})
	assert.Nil(t, Check(parse(t, "enum A { X }"), "", v))
	assert.True(t, called)
}

func TestCheck(t *testing.T) {
	source := "enum A { X, Y }"
	err := Check(parse(t, source), source, NewRulesValidator(Strict))
	assert.NotNil(t, err)

	var verrs *ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.Errors, 2)
	assert.True(t, strings.HasPrefix(err.Error(), "2 validation errors:\n"))

	flat := errors.Flatten(err)
	assert.Len(t, flat, 2)
	formatted := flat[1].(errors.FormattableError).ToFormatted()
	assert.Equal(t, formatted.Code, errors.E1011)
	assert.Equal(t, formatted.Message, "member Y has no initializer")
	assert.Equal(t, formatted.Line, 1)
	assert.Equal(t, formatted.Column, 13)
	assert.Len(t, formatted.SourceLines, 1)
	assert.Equal(t, formatted.SourceLines[0].Text, source)

	out := errors.NewFormatter(false).FormatError(err)
	assert.Contains(t, out, "E1011")
	assert.Contains(t, out, "found 2 errors")
}
