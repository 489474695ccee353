package syntax

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Start returns the byte offset where n begins.
func Start(n sitter.Node) int {
	return int(n.StartByte())
}

// End returns the byte offset where n ends.
func End(n sitter.Node) int {
	return int(n.EndByte())
}

// Text returns the slice of src covered by n, or "" when out of range.
func Text(n sitter.Node, src []byte) string {
	start, end := Start(n), End(n)
	if start < 0 || end > len(src) || start > end {
		return ""
	}

	return string(src[start:end])
}

// NamedChildren returns the named children of n in order.
func NamedChildren(n sitter.Node) []sitter.Node {
	children := make([]sitter.Node, 0, n.NamedChildCount())

	for idx := range n.NamedChildCount() {
		children = append(children, n.NamedChild(idx))
	}

	return children
}

// Children returns all children of n, anonymous tokens included.
func Children(n sitter.Node) []sitter.Node {
	children := make([]sitter.Node, 0, n.ChildCount())

	for idx := range n.ChildCount() {
		children = append(children, n.Child(idx))
	}

	return children
}

// Field returns the child stored under the given field name, or a null node.
func Field(n sitter.Node, name string) sitter.Node {
	return n.ChildByFieldName(name)
}

// FirstOfType returns the first named child of n with the given type.
func FirstOfType(n sitter.Node, typ string) sitter.Node {
	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == typ {
			return child
		}
	}

	return sitter.Node{}
}

// FindDescendant returns the first node of the given type in pre-order, n included.
func FindDescendant(n sitter.Node, typ string) sitter.Node {
	if n.Type() == typ {
		return n
	}

	for idx := range n.NamedChildCount() {
		found := FindDescendant(n.NamedChild(idx), typ)
		if !found.IsNull() {
			return found
		}
	}

	return sitter.Node{}
}

// HasToken reports whether n has a direct anonymous child spelled tok.
func HasToken(n sitter.Node, tok string) bool {
	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if !child.IsNamed() && child.Type() == tok {
			return true
		}
	}

	return false
}

// Walk visits n and its descendants in pre-order. Returning false skips the subtree.
func Walk(n sitter.Node, visit func(sitter.Node) bool) {
	if n.IsNull() || !visit(n) {
		return
	}

	for idx := range n.ChildCount() {
		Walk(n.Child(idx), visit)
	}
}

// HasError reports whether n contains an ERROR node or a node inserted as
// missing by error recovery.
func HasError(n sitter.Node) bool {
	return !n.IsNull() && n.HasError()
}
