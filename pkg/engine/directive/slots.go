package directive

import (
	"fmt"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
)

type slotTarget struct {
	name   string
	params string
}

type slotForms int

const (
	// slotDirective is v-slot[:name] or #name.
	slotDirective slotForms = 1 << iota
	// slotLegacy is the older slot="name" / slot-scope pair.
	slotLegacy
)

// takeSlot removes the slot-selection attributes of the given forms from n.
func (e *Engine) takeSlot(n *markup.Node, forms slotForms) (slotTarget, bool) {
	target := slotTarget{name: "default"}
	found := false
	kept := n.Attrs[:0]

	for _, a := range n.Attrs {
		name := a.Name

		switch {
		case forms&slotDirective != 0 &&
			(name == "v-slot" || strings.HasPrefix(name, "v-slot:") || strings.HasPrefix(name, "#")):
			arg := strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(name, "v-slot"), ":"), "#")
			if strings.HasPrefix(arg, "[") {
				e.rep.Warn(diag.CodeUnsupportedForm, "dynamic slot name %q is not supported; using the default slot", arg)
			} else if arg != "" {
				target.name = arg
			}

			target.params = a.Value
			found = true
		case forms&slotLegacy != 0 && name == "slot" && a.HasValue:
			target.name = a.Value
			found = true
		case forms&slotLegacy != 0 && (name == "slot-scope" || (name == "scope" && n.Tag == "template")):
			target.params = a.Value
			found = true
		default:
			kept = append(kept, a)
		}
	}

	n.Attrs = kept

	return target, found
}

// hoistSlotContent moves slot templates and slot-assigned children of a
// component into render-prop attributes on that component.
func (e *Engine) hoistSlotContent() {
	for _, id := range e.elements() {
		n := e.tree.Node(id)
		if n.Tag == "template" || !e.isComponent(n) {
			continue
		}

		for _, child := range append([]markup.NodeID(nil), n.Children...) {
			c := e.tree.Node(child)
			if c.Kind != markup.KindElement {
				continue
			}

			forms := slotLegacy
			if c.Tag == "template" {
				forms |= slotDirective
			}

			target, ok := e.takeSlot(c, forms)
			if !ok {
				continue
			}

			content := []markup.NodeID{child}
			if c.Tag == "template" && !hasConditional(c) {
				content = append([]markup.NodeID(nil), c.Children...)
				e.tree.Detach(child)
			}

			e.hoist(id, target, content)
		}

		if target, ok := e.takeSlot(n, slotDirective); ok {
			e.hoist(id, target, append([]markup.NodeID(nil), n.Children...))
		}
	}
}

func hasConditional(n *markup.Node) bool {
	return n.Attr("v-if") != nil || n.Attr("v-else-if") != nil || n.Attr("v-else") != nil
}

func (e *Engine) hoist(host markup.NodeID, target slotTarget, content []markup.NodeID) {
	locals, err := resolve.BindingNames(target.params)
	if err != nil {
		e.rep.Warn(diag.CodeUnsupportedForm, "slot scope %q does not parse: %v", target.params, err)
	}

	frag := e.tree.NewNode(markup.KindFragment)
	for _, c := range content {
		e.tree.AppendChild(frag, c)
	}

	fn := e.tree.Node(frag)
	fn.Locals = locals
	fn.Parent = host

	hn := e.tree.Node(host)
	hn.Attrs = append(hn.Attrs, &markup.Attr{
		Kind:   markup.AttrRender,
		Name:   slotProp(target.name),
		Render: frag,
		Params: strings.TrimSpace(target.params),
	})
}

// lowerSlotOutlets replaces slot tags with calls to the matching render prop.
func (e *Engine) lowerSlotOutlets() {
	props := e.syms.PropsBinding

	for _, id := range e.elements() {
		n := e.tree.Node(id)
		if n.Kind != markup.KindElement || n.Tag != "slot" {
			continue
		}

		outlet := e.tree.NewNode(markup.KindSlot)
		on := e.tree.Node(outlet)
		dynamic := false

		nameAttr := n.RemoveAttr("name")

		switch {
		case nameAttr != nil && nameAttr.Kind == markup.AttrExpr:
			on.Slot = &markup.Slot{PropsPrefix: props, DynamicName: nameAttr.Expr}
			dynamic = true
		case nameAttr == nil || nameAttr.Value == "" || nameAttr.Value == "default":
			on.Slot = &markup.Slot{
				Callee:   props + "." + slotProp("default") + "?.",
				Fallback: props + ".children",
			}
		default:
			alias := "Slot" + resolve.Pascal(nameAttr.Value)
			prop := slotProp(nameAttr.Value)
			e.acq.Once("slot:"+nameAttr.Value, func() string {
				return fmt.Sprintf("const %s = %s[%s];", alias, props, markup.JSString(prop))
			})

			on.Slot = &markup.Slot{Callee: alias + "?."}
		}

		on.Attrs = n.Attrs
		e.tree.Replace(id, outlet)

		if dynamic {
			continue
		}

		for _, c := range append([]markup.NodeID(nil), n.Children...) {
			e.tree.AppendChild(outlet, c)
		}
	}
}
