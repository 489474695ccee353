package markup

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[ \t\r\n]+`)
	simpleExpr    = regexp.MustCompile(`^[\w$.?\[\]'"]+$`)
	identifierRe  = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

	jsxTextEscaper = strings.NewReplacer("{", "{'{'}", "}", "{'}'}", "<", "&lt;", ">", "&gt;")
	jsStringEscape = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
)

// Print renders the tree as one JSX expression. An empty template yields "".
func Print(t *Tree) string {
	p := &printer{tree: t}
	kids := p.visible(t.Node(t.Root))

	switch len(kids) {
	case 0:
		return ""
	case 1:
		return p.expr(kids[0].id, kids[0].text)
	default:
		return "<>" + p.children(kids) + "</>"
	}
}

// PrintNode renders a single node in expression position.
func PrintNode(t *Tree, id NodeID) string {
	p := &printer{tree: t}

	return p.expr(id, t.Node(id).Text)
}

type printer struct {
	tree *Tree
}

type visibleChild struct {
	id   NodeID
	text string
}

// visible returns the children worth printing, with text condensed the way
// the source framework collapses template whitespace.
func (p *printer) visible(n *Node) []visibleChild {
	preserve := n.Pre || n.Tag == "pre" || n.Tag == "textarea"
	out := make([]visibleChild, 0, len(n.Children))

	for i, id := range n.Children {
		child := p.tree.Node(id)
		if child.Kind != KindText {
			out = append(out, visibleChild{id: id})

			continue
		}

		text := child.Text
		if !preserve {
			text = condense(text, i == 0, i == len(n.Children)-1)
		}

		if text != "" {
			out = append(out, visibleChild{id: id, text: text})
		}
	}

	return out
}

func condense(raw string, first, last bool) string {
	collapsed := whitespaceRun.ReplaceAllString(raw, " ")
	if strings.TrimSpace(collapsed) == "" {
		if strings.ContainsAny(raw, "\n\r") || first || last {
			return ""
		}

		return collapsed
	}

	if first && strings.ContainsAny(raw[:len(raw)-len(strings.TrimLeft(raw, " \t\r\n"))], "\n\r") {
		collapsed = strings.TrimLeft(collapsed, " ")
	}

	if last && strings.ContainsAny(raw[len(strings.TrimRight(raw, " \t\r\n")):], "\n\r") {
		collapsed = strings.TrimRight(collapsed, " ")
	}

	return collapsed
}

func (p *printer) children(kids []visibleChild) string {
	var sb strings.Builder

	for _, kid := range kids {
		sb.WriteString(p.child(kid.id, kid.text))
	}

	return sb.String()
}

// child prints a node in JSX child position.
func (p *printer) child(id NodeID, text string) string {
	n := p.tree.Node(id)

	switch n.Kind {
	case KindElement, KindFragment:
		return p.element(n)
	case KindText:
		if p.preserving(n) {
			return "{" + JSString(text) + "}"
		}

		return jsxTextEscaper.Replace(text)
	case KindCond:
		if n.Cond.grouped() {
			return p.cond(n)
		}
	case KindRoot, KindExpr, KindLoop, KindSlot:
	}

	return "{" + p.expr(id, text) + "}"
}

func (p *printer) preserving(n *Node) bool {
	if n.Parent == NoNode {
		return false
	}

	parent := p.tree.Node(n.Parent)

	return parent.Pre || parent.Tag == "pre" || parent.Tag == "textarea"
}

// expr prints a node in expression position.
func (p *printer) expr(id NodeID, text string) string {
	n := p.tree.Node(id)

	switch n.Kind {
	case KindElement, KindFragment:
		return p.element(n)
	case KindText:
		return JSString(text)
	case KindExpr:
		return n.Expr.Text
	case KindLoop:
		return p.loop(n)
	case KindCond:
		return p.cond(n)
	case KindSlot:
		return p.slot(n)
	case KindRoot:
	}

	return ""
}

func (p *printer) element(n *Node) string {
	tag := n.Tag
	if n.Kind == KindFragment && tag == "" && len(n.Attrs) == 0 {
		return "<>" + p.children(p.visible(n)) + "</>"
	}

	if tag == "" {
		tag = "Fragment"
	}

	var sb strings.Builder

	sb.WriteString("<" + tag)

	for _, a := range n.Attrs {
		if printed := p.attr(a); printed != "" {
			sb.WriteString(" " + printed)
		}
	}

	kids := p.visible(n)
	if len(kids) == 0 {
		sb.WriteString(" />")

		return sb.String()
	}

	sb.WriteString(">")
	sb.WriteString(p.children(kids))
	sb.WriteString("</" + tag + ">")

	return sb.String()
}

func (p *printer) attr(a *Attr) string {
	switch a.Kind {
	case AttrRaw, AttrStatic:
		if !a.HasValue && a.Kind == AttrRaw {
			return a.Name
		}

		if strings.ContainsAny(a.Value, "\"&\n") {
			return a.Name + "={" + JSString(a.Value) + "}"
		}

		return a.Name + `="` + a.Value + `"`
	case AttrBool:
		return a.Name
	case AttrExpr:
		return a.Name + "={" + a.Expr.Text + "}"
	case AttrSpread:
		return "{..." + a.Expr.Text + "}"
	case AttrHandler:
		return a.Name + "={" + PrintHandler(a.Handler) + "}"
	case AttrRender:
		return a.Name + "={(" + a.Params + ") => " + p.render(a.Render) + "}"
	case AttrDirectives:
		return a.Name + "={" + PrintDescriptors(a.Descriptors) + "}"
	}

	return ""
}

// render prints a slot fragment, unwrapping it when it holds one element.
func (p *printer) render(id NodeID) string {
	n := p.tree.Node(id)

	kids := p.visible(n)
	if len(kids) == 1 && p.tree.Node(kids[0].id).Kind == KindElement {
		return p.element(p.tree.Node(kids[0].id))
	}

	return "<>" + p.children(kids) + "</>"
}

func (p *printer) body(n *Node) string {
	if len(n.Children) == 0 {
		return "null"
	}

	return p.expr(n.Children[0], p.tree.Node(n.Children[0]).Text)
}

func (p *printer) loop(n *Node) string {
	l := n.Loop
	src := Paren(l.Source.Text)

	index := l.Index
	if index == "" {
		index = "index"
	}

	body := p.body(n)

	switch l.Form {
	case LoopObject:
		return src + " && Object.entries(" + l.Source.Text + ").map(([" + l.Key + ", " + l.Pattern + "], " +
			index + ") => " + body + ")"
	case LoopRange:
		return "Array.from({ length: " + l.Source.Text + " }, (_, i) => i + 1).map((" + l.Pattern + ", " +
			index + ") => " + body + ")"
	case LoopArray:
	}

	return src + " && " + src + ".map((" + l.Pattern + ", " + index + ") => " + body + ")"
}

func (p *printer) branch(n *Node, i int) string {
	if i >= len(n.Children) {
		return "null"
	}

	return p.expr(n.Children[i], p.tree.Node(n.Children[i]).Text)
}

func (p *printer) cond(n *Node) string {
	c := n.Cond

	switch {
	case c.grouped():
	case len(c.Branches) == 1:
		b := c.Branches[0]
		if b.Boolean {
			return Paren(b.Test.Text) + " && " + p.branch(n, 0)
		}

		return "!!" + Paren(b.Test.Text) + " && " + p.branch(n, 0)
	default:
		return Paren(c.Branches[0].Test.Text) + " ? " + p.branch(n, 0) + " : " + p.branch(n, 1)
	}

	group := c.Group
	if group == "" {
		group = "ConditionalGroup"
	}

	var sb strings.Builder

	sb.WriteString("<" + group + ">")

	for i, b := range c.Branches {
		if b.HasTest {
			sb.WriteString("{" + Paren(b.Test.Text) + " && " + p.branch(n, i) + "}")
		} else {
			sb.WriteString("{" + p.branch(n, i) + "}")
		}
	}

	sb.WriteString("</" + group + ">")

	return sb.String()
}

func (p *printer) slot(n *Node) string {
	s := n.Slot

	callee := s.Callee
	if s.DynamicName.Text != "" {
		callee = s.PropsPrefix + "['template_' + " + Paren(s.DynamicName.Text) + "]?."
	}

	out := callee + "(" + SlotArgs(n.Attrs) + ")"

	if s.Fallback != "" {
		out += " || " + s.Fallback
	}

	if kids := p.visible(n); len(kids) > 0 {
		if len(kids) == 1 && p.tree.Node(kids[0].id).Kind == KindElement {
			out += " || " + p.element(p.tree.Node(kids[0].id))
		} else {
			out += " || <>" + p.children(kids) + "</>"
		}
	}

	return out
}

// SlotArgs renders outlet attributes as the object passed to a slot function.
func SlotArgs(attrs []*Attr) string {
	fields := make([]string, 0, len(attrs))

	for _, a := range attrs {
		key := a.Name
		if !identifierRe.MatchString(key) {
			key = JSString(key)
		}

		switch a.Kind {
		case AttrStatic, AttrRaw:
			if !a.HasValue {
				fields = append(fields, key+": true")
			} else {
				fields = append(fields, key+": "+JSString(a.Value))
			}
		case AttrBool:
			fields = append(fields, key+": true")
		case AttrExpr:
			if key == a.Expr.Text {
				fields = append(fields, key)
			} else {
				fields = append(fields, key+": "+a.Expr.Text)
			}
		case AttrSpread:
			fields = append(fields, "..."+a.Expr.Text)
		case AttrHandler:
			fields = append(fields, key+": "+PrintHandler(a.Handler))
		case AttrRender, AttrDirectives:
		}
	}

	if len(fields) == 0 {
		return ""
	}

	return "{ " + strings.Join(fields, ", ") + " }"
}

// PrintHandler renders an event callback.
func PrintHandler(h *Handler) string {
	if len(h.Statements) == 0 {
		return h.Direct.Text
	}

	var sb strings.Builder

	sb.WriteString("(" + h.Param + ") => { ")

	for _, stmt := range h.Statements {
		text := strings.TrimRight(strings.TrimSpace(stmt.Text), ";")
		if text == "" {
			continue
		}

		if strings.HasSuffix(text, "}") {
			sb.WriteString(text + " ")
		} else {
			sb.WriteString(text + "; ")
		}
	}

	sb.WriteString("}")

	return sb.String()
}

// PrintDescriptors renders the directive descriptor array for the directive host.
func PrintDescriptors(descs []Descriptor) string {
	items := make([]string, 0, len(descs))

	for _, d := range descs {
		fields := []string{"name: " + JSString(d.Name)}

		if d.Arg != "" {
			fields = append(fields, "arg: "+JSString(d.Arg))
		}

		flags := make([]string, 0, len(d.Modifiers))
		for _, m := range d.Modifiers {
			flags = append(flags, m+": true")
		}

		if len(flags) > 0 {
			fields = append(fields, "modifiers: { "+strings.Join(flags, ", ")+" }")
		} else {
			fields = append(fields, "modifiers: {}")
		}

		if d.Value.Text != "" {
			fields = append(fields, "value: "+d.Value.Text)
		}

		if d.Binding != "" {
			fields = append(fields, "directive: "+d.Binding)
		}

		items = append(items, "{ "+strings.Join(fields, ", ")+" }")
	}

	return "[" + strings.Join(items, ", ") + "]"
}

// JSString quotes s as a single-quoted JavaScript string literal.
func JSString(s string) string {
	return "'" + jsStringEscape.Replace(s) + "'"
}

// Paren wraps text in parentheses unless it is a plain member path or literal.
func Paren(text string) string {
	text = strings.TrimSpace(text)
	if simpleExpr.MatchString(text) {
		return text
	}

	return "(" + text + ")"
}
