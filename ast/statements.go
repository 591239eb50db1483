package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/classgen/internal/token"
)

// NamespaceDecl is a "namespace a.b { ... }" or "module a { ... }" block.
// A dotted name opens one nested namespace per segment.
type NamespaceDecl struct {
	Start    token.Position // position of the first modifier or keyword
	Keyword  string         // "namespace" or "module"
	Names    []*Ident       // dotted name segments, outermost first
	Declare  bool           // true for "declare namespace" or inside one
	Exported bool
	Lbrace   token.Position
	Body     []Stmt
	Rbrace   token.Position
}

func (s *NamespaceDecl) stmtNode() {}

func (s *NamespaceDecl) Pos() token.Position { return s.Start }
func (s *NamespaceDecl) End() token.Position { return s.Rbrace.Advance(1) }

// Name returns the dotted namespace name.
func (s *NamespaceDecl) Name() string {
	parts := make([]string, 0, len(s.Names))
	for _, n := range s.Names {
		parts = append(parts, n.Name)
	}
	return strings.Join(parts, ".")
}

func (s *NamespaceDecl) String() string {
	var out bytes.Buffer
	if s.Exported {
		out.WriteString("export ")
	}
	if s.Declare {
		out.WriteString("declare ")
	}
	out.WriteString(s.Keyword + " " + s.Name() + " {")
	for _, stmt := range s.Body {
		out.WriteString("\n")
		out.WriteString(stmt.String())
	}
	out.WriteString("\n}")
	return out.String()
}

// EnumDecl is an enum declaration. When Declare is true the enum is ambient:
// it exists for type checking only and is erased before code generation.
type EnumDecl struct {
	Start    token.Position // position of the first modifier or keyword
	EnumPos  token.Position // position of the "enum" keyword
	Name     *Ident
	Members  []*EnumMember
	Declare  bool // "declare enum", or any enum inside a declare block
	Const    bool // "const enum"
	Exported bool
	Lbrace   token.Position
	Rbrace   token.Position
}

func (s *EnumDecl) stmtNode() {}
func (s *EnumDecl) declNode() {}

func (s *EnumDecl) Pos() token.Position { return s.Start }
func (s *EnumDecl) End() token.Position { return s.Rbrace.Advance(1) }

func (s *EnumDecl) String() string {
	var out bytes.Buffer
	if s.Exported {
		out.WriteString("export ")
	}
	if s.Declare {
		out.WriteString("declare ")
	}
	if s.Const {
		out.WriteString("const ")
	}
	out.WriteString("enum " + s.Name.Name + " {")
	for i, m := range s.Members {
		if i > 0 {
			out.WriteString(",")
		}
		out.WriteString(" " + m.String())
	}
	out.WriteString(" }")
	return out.String()
}

// EnumMember is a single "Name" or "Name = init" entry of an enum body.
type EnumMember struct {
	Name *Ident
	Init Expr // nil when no initializer is given
}

func (m *EnumMember) Pos() token.Position { return m.Name.Pos() }
func (m *EnumMember) End() token.Position {
	if m.Init != nil {
		return m.Init.End()
	}
	return m.Name.End()
}

func (m *EnumMember) String() string {
	if m.Init == nil {
		return m.Name.Name
	}
	return m.Name.Name + " = " + m.Init.String()
}
