package syntax

import (
	"fmt"

	"github.com/deepnoodle-ai/classgen/ast"
)

// Rules lists the restrictions enforced by a RulesValidator. The zero value
// allows everything the parser accepts.
type Rules struct {
	DisallowAmbient     bool // "declare enum" and declare blocks
	DisallowConst       bool // "const enum"
	DisallowNamespaces  bool // namespace and module blocks
	DisallowStrings     bool // string valued members
	DisallowComputed    bool // initializers other than a literal or a negated number
	RequireInitializers bool // every member spells out its value
	MaxMembers          int  // 0 means unlimited
}

// Strict is the rule set used by "classgen build --strict": every member
// value is written out as a literal.
var Strict = Rules{
	DisallowComputed:    true,
	RequireInitializers: true,
}

// RulesValidator validates an AST against a Rules configuration.
type RulesValidator struct {
	rules Rules
}

// NewRulesValidator creates a validator for the given rules.
func NewRulesValidator(rules Rules) *RulesValidator {
	return &RulesValidator{rules: rules}
}

// Validate checks the AST against the rules.
func (v *RulesValidator) Validate(program *ast.Program) []ValidationError {
	var errs []ValidationError
	for node := range ast.Preorder(program) {
		errs = append(errs, v.checkNode(node)...)
	}
	return errs
}

func violation(node ast.Node, format string, args ...any) ValidationError {
	return ValidationError{
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Position: node.Pos(),
	}
}

func (v *RulesValidator) checkNode(node ast.Node) []ValidationError {
	var errs []ValidationError
	switch n := node.(type) {
	case *ast.NamespaceDecl:
		if v.rules.DisallowNamespaces {
			errs = append(errs, violation(n, "%s blocks are not allowed", n.Keyword))
		}
		if v.rules.DisallowAmbient && n.Declare {
			errs = append(errs, violation(n, "ambient declarations are not allowed"))
		}

	case *ast.EnumDecl:
		if v.rules.DisallowAmbient && n.Declare {
			errs = append(errs, violation(n, "ambient enum %s is not allowed", n.Name.Name))
		}
		if v.rules.DisallowConst && n.Const {
			errs = append(errs, violation(n, "const enum %s is not allowed", n.Name.Name))
		}
		if v.rules.MaxMembers > 0 && len(n.Members) > v.rules.MaxMembers {
			errs = append(errs, violation(n, "enum %s has %d members, the limit is %d",
				n.Name.Name, len(n.Members), v.rules.MaxMembers))
		}

	case *ast.EnumMember:
		switch init := n.Init.(type) {
		case nil:
			if v.rules.RequireInitializers {
				errs = append(errs, violation(n, "member %s has no initializer", n.Name.Name))
			}
		case *ast.String:
			if v.rules.DisallowStrings {
				errs = append(errs, violation(init, "string member %s is not allowed", n.Name.Name))
			}
		default:
			if v.rules.DisallowComputed && !isLiteral(init) {
				errs = append(errs, violation(init, "member %s has a computed initializer", n.Name.Name))
			}
		}
	}
	return errs
}

// isLiteral reports whether x is a number, optionally negated or
// parenthesized.
func isLiteral(x ast.Expr) bool {
	switch n := x.(type) {
	case *ast.Number:
		return true
	case *ast.Paren:
		return isLiteral(n.X)
	case *ast.Prefix:
		if n.Op != "-" && n.Op != "+" {
			return false
		}
		_, ok := n.X.(*ast.Number)
		return ok
	}
	return false
}
