// Package markup holds the template as an index-addressed arena of nodes.
// Nodes refer to each other by NodeID only; passes mutate the arena in place
// and the printer renders the final tree as JSX.
package markup

// NodeID addresses a node in a Tree.
type NodeID int

// NoNode is the null NodeID.
const NoNode NodeID = -1

// Kind discriminates node shapes.
type Kind int

// Node kinds.
const (
	KindRoot Kind = iota
	KindElement
	KindText
	KindExpr
	KindFragment
	KindLoop
	KindCond
	KindSlot
)

// Expr is a source expression plus whether it has been rewritten already.
type Expr struct {
	Text string
	Done bool
}

// Pending returns an unresolved expression.
func Pending(text string) Expr {
	return Expr{Text: text}
}

// Final returns an expression that must not be rewritten again.
func Final(text string) Expr {
	return Expr{Text: text, Done: true}
}

// AttrKind discriminates attribute shapes.
type AttrKind int

// Attribute kinds.
const (
	// AttrRaw is an attribute as written in the source, not yet normalized.
	AttrRaw AttrKind = iota
	AttrStatic
	AttrBool
	AttrExpr
	AttrSpread
	AttrHandler
	AttrRender
	AttrDirectives
)

// Handler is an event callback. Direct is used as-is when there are no statements.
type Handler struct {
	Param      string
	Direct     Expr
	Statements []Expr
}

// Descriptor describes a custom directive applied through the directive host.
type Descriptor struct {
	Name      string
	Arg       string
	Modifiers []string
	Value     Expr
	Binding   string
}

// Attr is one attribute of an element.
type Attr struct {
	Kind     AttrKind
	Name     string
	Value    string
	HasValue bool

	Expr        Expr
	Handler     *Handler
	Render      NodeID
	Params      string
	Descriptors []Descriptor
}

// LoopForm selects how a loop is lowered.
type LoopForm int

// Loop forms.
const (
	LoopArray LoopForm = iota
	LoopObject
	LoopRange
)

// Loop is a lowered list rendering.
type Loop struct {
	Form    LoopForm
	Source  Expr
	Pattern string
	Key     string
	Index   string
}

// Branch is one arm of a conditional chain. Test is empty for the else arm.
// The arm's body is the Cond node's child at the same position.
type Branch struct {
	Test    Expr
	HasTest bool
	Boolean bool
}

// Cond is a lowered if / else-if / else chain.
type Cond struct {
	Branches []Branch
	// Group is the wrapper component used for chains with else-if arms.
	Group string
}

// grouped reports whether the chain prints as a wrapper element rather than
// a logical or ternary expression.
func (c *Cond) grouped() bool {
	if len(c.Branches) == 1 {
		return false
	}

	return len(c.Branches) != 2 || c.Branches[1].HasTest
}

// Slot is a slot outlet. Callee is the function to call; DynamicName, when
// set, selects the slot at runtime. Fallback is used when the call yields nothing.
type Slot struct {
	Callee      string
	DynamicName Expr
	PropsPrefix string
	Fallback    string
}

// Node is one arena entry.
type Node struct {
	Kind     Kind
	Parent   NodeID
	Children []NodeID

	Tag   string
	Attrs []*Attr
	Text  string
	Expr  Expr

	Loop *Loop
	Cond *Cond
	Slot *Slot

	// Locals are names bound for this node's subtree (loop aliases, slot params).
	Locals []string
	// LoopInterior marks an element rendered once per loop iteration. It is
	// set by loop lowering and cleared once refs are lowered.
	LoopInterior bool
	// Pre marks a subtree that is kept literally.
	Pre bool
	// Show is the v-show condition merged into the style at cleanup.
	Show *Expr
	// Models are pending two-way bindings collected during attribute normalization.
	Models []Model
}

// Model is a pending two-way binding on an element.
type Model struct {
	Arg       string
	Value     string
	Modifiers []string
}

// Tree is the arena.
type Tree struct {
	nodes []*Node
	Root  NodeID
	// StandIns maps stand-in identifiers to the interpolation text they replaced.
	StandIns map[string]string
}

// NewTree returns a tree holding only a root node.
func NewTree() *Tree {
	t := &Tree{StandIns: make(map[string]string)}
	t.Root = t.add(&Node{Kind: KindRoot, Parent: NoNode})

	return t
}

func (t *Tree) add(n *Node) NodeID {
	t.nodes = append(t.nodes, n)

	return NodeID(len(t.nodes) - 1)
}

// Node returns the node for id.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// Len returns the number of arena slots, detached nodes included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// NewNode allocates a detached node of the given kind.
func (t *Tree) NewNode(kind Kind) NodeID {
	return t.add(&Node{Kind: kind, Parent: NoNode})
}

// NewElement allocates a detached element.
func (t *Tree) NewElement(tag string) NodeID {
	return t.add(&Node{Kind: KindElement, Tag: tag, Parent: NoNode})
}

// NewText allocates a detached text node.
func (t *Tree) NewText(text string) NodeID {
	return t.add(&Node{Kind: KindText, Text: text, Parent: NoNode})
}

// NewExpr allocates a detached expression container.
func (t *Tree) NewExpr(expr Expr) NodeID {
	return t.add(&Node{Kind: KindExpr, Expr: expr, Parent: NoNode})
}

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.Detach(child)
	t.nodes[parent].Children = append(t.nodes[parent].Children, child)
	t.nodes[child].Parent = parent
}

// Detach removes id from its parent's child list.
func (t *Tree) Detach(id NodeID) {
	parent := t.nodes[id].Parent
	if parent == NoNode {
		return
	}

	p := t.nodes[parent]
	for i, c := range p.Children {
		if c == id {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)

			break
		}
	}

	t.nodes[id].Parent = NoNode
}

// Replace puts replacement where old sits in its parent and detaches old.
func (t *Tree) Replace(old, replacement NodeID) {
	parent := t.nodes[old].Parent
	if parent == NoNode {
		return
	}

	t.Detach(replacement)

	p := t.nodes[parent]
	for i, c := range p.Children {
		if c == old {
			p.Children[i] = replacement

			break
		}
	}

	t.nodes[replacement].Parent = parent
	t.nodes[old].Parent = NoNode
}

// Wrap replaces id with wrapper and makes id wrapper's only child.
func (t *Tree) Wrap(id, wrapper NodeID) {
	t.Replace(id, wrapper)
	t.AppendChild(wrapper, id)
}

// Attached reports whether id is reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		if cur == t.Root {
			return true
		}
	}

	return false
}

// Walk visits the attached tree in pre-order, entering render-prop fragments
// after an element's children. Returning false skips the subtree.
func (t *Tree) Walk(visit func(id NodeID) bool) {
	t.walk(t.Root, visit)
}

func (t *Tree) walk(id NodeID, visit func(id NodeID) bool) {
	if !visit(id) {
		return
	}

	n := t.nodes[id]

	for _, child := range append([]NodeID(nil), n.Children...) {
		t.walk(child, visit)
	}

	for _, attr := range n.Attrs {
		if attr.Kind == AttrRender && attr.Render != NoNode {
			t.walk(attr.Render, visit)
		}
	}
}

// Collect returns the attached nodes of the given kind in pre-order, skipping
// literal (v-pre) subtrees.
func (t *Tree) Collect(kind Kind) []NodeID {
	var out []NodeID

	t.Walk(func(id NodeID) bool {
		n := t.nodes[id]
		if n.Pre {
			return false
		}

		if n.Kind == kind {
			out = append(out, id)
		}

		return true
	})

	return out
}

// ScopeLocals returns the names bound by id's ancestors, id included.
func (t *Tree) ScopeLocals(id NodeID) []string {
	var out []string

	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		out = append(out, t.nodes[cur].Locals...)
	}

	return out
}

// Attr returns the first attribute named name, or nil.
func (n *Node) Attr(name string) *Attr {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a
		}
	}

	return nil
}

// RemoveAttr deletes every attribute named name and returns the first one removed.
func (n *Node) RemoveAttr(name string) *Attr {
	var removed *Attr

	kept := n.Attrs[:0]

	for _, a := range n.Attrs {
		if a.Name == name {
			if removed == nil {
				removed = a
			}

			continue
		}

		kept = append(kept, a)
	}

	n.Attrs = kept

	return removed
}

// IsWhitespace reports whether n is a text node holding only whitespace.
func (n *Node) IsWhitespace() bool {
	if n.Kind != KindText {
		return false
	}

	for _, r := range n.Text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}

	return true
}
