package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range children(node) {
		Walk(v, child)
	}
}

// Inspect traverses an AST in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

func children(node Node) []Node {
	var out []Node
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			out = append(out, stmt)
		}
	case *NamespaceDecl:
		for _, name := range n.Names {
			out = append(out, name)
		}
		for _, stmt := range n.Body {
			out = append(out, stmt)
		}
	case *EnumDecl:
		if n.Name != nil {
			out = append(out, n.Name)
		}
		for _, m := range n.Members {
			out = append(out, m)
		}
	case *EnumMember:
		if n.Name != nil {
			out = append(out, n.Name)
		}
		if n.Init != nil {
			out = append(out, n.Init)
		}
	case *Paren:
		if n.X != nil {
			out = append(out, n.X)
		}
	case *Prefix:
		if n.X != nil {
			out = append(out, n.X)
		}
	case *Infix:
		if n.X != nil {
			out = append(out, n.X)
		}
		if n.Y != nil {
			out = append(out, n.Y)
		}

	// Leaves and error recovery nodes
	case *Ident, *Number, *String, *BadExpr, *BadStmt:
	}
	return out
}
