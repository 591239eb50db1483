package compiler

import "strings"

// QualifiedName joins a package and an identifier with a dot. At the top
// level, where the package is empty, it is the identifier alone.
func QualifiedName(pkg, ident string) string {
	if pkg == "" {
		return ident
	}
	return pkg + "." + ident
}

// BinaryName converts a dotted qualified name into the slash separated form
// used inside class files: "a.b.Color" becomes "a/b/Color".
func BinaryName(qualified string) string {
	return strings.ReplaceAll(qualified, ".", "/")
}

// NamespaceContext tracks the namespace blocks enclosing the declaration
// being generated. Segments are pushed on entry to a namespace block and
// popped on exit.
type NamespaceContext struct {
	segments []string
}

// Push enters a namespace segment.
func (n *NamespaceContext) Push(segment string) {
	n.segments = append(n.segments, segment)
}

// Pop leaves the innermost namespace segment.
func (n *NamespaceContext) Pop() {
	if len(n.segments) > 0 {
		n.segments = n.segments[:len(n.segments)-1]
	}
}

// Depth returns the number of segments currently pushed.
func (n *NamespaceContext) Depth() int {
	return len(n.segments)
}

// CurrentPackage returns the dotted package name, or "" at the top level.
func (n *NamespaceContext) CurrentPackage() string {
	return strings.Join(n.segments, ".")
}
