package codegen

import (
	"math"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/errors"
)

// Kind is the value type shared by all members of an enum.
type Kind int

const (
	Numeric Kind = iota
	String
)

func (k Kind) String() string {
	if k == String {
		return "string"
	}
	return "numeric"
}

// Member is an analyzed enum member.
type Member struct {
	Name     string // name as declared
	JavaName string // name of the generated constant field
	Ordinal  int
	Int      int32  // value of a numeric member
	Str      string // value of a string member
	Node     *ast.EnumMember
}

// Value returns the member's value as an int32 or a string.
func (m Member) Value(kind Kind) any {
	if kind == String {
		return m.Str
	}
	return m.Int
}

// Enum is the result of analyzing an enum declaration.
type Enum struct {
	Kind    Kind
	Members []Member
}

// reservedNames are fields every generated enum class declares.
var reservedNames = map[string]bool{"$VALUES": true}

// JavaName returns the constant name used for a member in Java.
func JavaName(name string) string {
	return strings.ToUpper(name)
}

// Analyze determines the kind and value of every member. Numeric members
// without an initializer take the previous numeric value plus one, starting
// at zero. Initializers are evaluated as Java int expressions and may refer
// to members declared earlier in the same enum.
func Analyze(decl *ast.EnumDecl) (*Enum, error) {
	if len(decl.Members) == 0 {
		return nil, errors.NewEncodingError(decl, "empty enums are not supported")
	}
	a := &analyzer{decl: decl, defined: map[string]int32{}}
	enum := &Enum{}
	javaNames := map[string]string{}
	var kindSet bool
	var next int32
	for i, node := range decl.Members {
		m := Member{
			Name:     node.Name.Name,
			JavaName: JavaName(node.Name.Name),
			Ordinal:  i,
			Node:     node,
		}
		if prev, ok := javaNames[m.JavaName]; ok {
			if prev == m.Name {
				return nil, errors.NewEncodingError(node.Name, "duplicate enum member %q", m.Name)
			}
			return nil, errors.NewEncodingError(node.Name,
				"enum members %q and %q both map to the Java constant %q", prev, m.Name, m.JavaName)
		}
		if reservedNames[m.JavaName] {
			return nil, errors.NewEncodingError(node.Name,
				"enum member %q conflicts with the generated field %s", m.Name, m.JavaName)
		}
		javaNames[m.JavaName] = m.Name

		kind := Numeric
		if _, ok := node.Init.(*ast.String); ok {
			kind = String
		}
		if kindSet && kind != enum.Kind {
			if node.Init == nil {
				return nil, errors.NewEncodingError(node, "string enum members must have explicit values")
			}
			return nil, errors.NewEncodingError(node.Init,
				"heterogeneous enums (mixed numeric and string values) are not supported")
		}
		enum.Kind, kindSet = kind, true

		switch init := node.Init.(type) {
		case *ast.String:
			m.Str = init.Value
		case nil:
			m.Int = next
		default:
			v, err := a.eval(init)
			if err != nil {
				return nil, err
			}
			m.Int = v
		}
		if kind == Numeric {
			next = m.Int + 1
			a.defined[m.Name] = m.Int
		}
		enum.Members = append(enum.Members, m)
	}
	return enum, nil
}

type analyzer struct {
	decl    *ast.EnumDecl
	defined map[string]int32
}

func (a *analyzer) eval(expr ast.Expr) (int32, error) {
	switch x := expr.(type) {
	case *ast.Number:
		return parseInt(x)
	case *ast.Ident:
		return a.lookup(x)
	case *ast.Paren:
		return a.eval(x.X)
	case *ast.Prefix:
		v, err := a.eval(x.X)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case "-":
			return -v, nil
		case "+":
			return v, nil
		case "~":
			return ^v, nil
		}
		return 0, errors.NewEncodingError(x, "unsupported unary operator %q in enum initializer", x.Op)
	case *ast.Infix:
		return a.evalInfix(x)
	case *ast.String:
		return 0, errors.NewEncodingError(x,
			"heterogeneous enums (mixed numeric and string values) are not supported")
	case *ast.BadExpr:
		return 0, errors.NewEncodingError(x, "invalid enum initializer")
	default:
		return 0, errors.NewEncodingError(expr,
			"unsupported expression in enum initializer; only literals, arithmetic, bitwise operators and earlier members are allowed")
	}
}

func (a *analyzer) evalInfix(x *ast.Infix) (int32, error) {
	l, err := a.eval(x.X)
	if err != nil {
		return 0, err
	}
	r, err := a.eval(x.Y)
	if err != nil {
		return 0, err
	}
	switch x.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/", "%":
		if r == 0 {
			return 0, errors.NewEncodingError(x, "division by zero in enum initializer")
		}
		if x.Op == "/" {
			return l / r, nil
		}
		return l % r, nil
	case "**":
		return pow(l, r), nil
	case "&":
		return l & r, nil
	case "|":
		return l | r, nil
	case "^":
		return l ^ r, nil
	case "<<":
		return l << (r & 31), nil
	case ">>":
		return l >> (r & 31), nil
	case ">>>":
		return int32(uint32(l) >> (r & 31)), nil
	}
	return 0, errors.NewEncodingError(x, "unsupported binary operator %q in enum initializer", x.Op)
}

func (a *analyzer) lookup(id *ast.Ident) (int32, error) {
	if v, ok := a.defined[id.Name]; ok {
		return v, nil
	}
	var all []string
	for _, m := range a.decl.Members {
		if m.Name.Name == id.Name {
			return 0, errors.NewEncodingError(id,
				"cannot reference enum member %q before it is defined", id.Name)
		}
		all = append(all, m.Name.Name)
	}
	err := errors.NewEncodingError(id, "unknown enum member %q", id.Name)
	err.Suggestions = errors.SuggestSimilar(id.Name, all)
	return 0, err
}

// pow matches a Java (int) cast of Math.pow: NaN becomes zero and values
// outside the int range saturate.
func pow(base, exp int32) int32 {
	f := math.Pow(float64(base), float64(exp))
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func parseInt(n *ast.Number) (int32, error) {
	raw := strings.ReplaceAll(n.Raw, "_", "")
	base := 10
	if len(raw) > 2 && raw[0] == '0' {
		switch raw[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			raw = raw[2:]
		}
	}
	if base == 10 && strings.ContainsAny(raw, ".eE") {
		return 0, errors.NewEncodingError(n,
			"floating-point enum values are not supported; enum values must be integers or strings")
	}
	v, err := strconv.ParseInt(raw, base, 32)
	if err != nil {
		return 0, &errors.EncodingError{
			Node:    n,
			Message: "invalid enum numeric value " + n.Raw,
			Cause:   numError(err),
		}
	}
	return int32(v), nil
}

// numError drops strconv's repetition of the input from the message.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
