package directive

import (
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
)

// lowerModels expands two-way bindings according to the element shape.
func (e *Engine) lowerModels() {
	for _, id := range e.elements() {
		n := e.tree.Node(id)

		for _, m := range n.Models {
			e.lowerModel(n, m)
		}

		n.Models = nil
	}
}

func (e *Engine) lowerModel(n *markup.Node, m markup.Model) {
	target := strings.TrimSpace(m.Value)
	tag := n.Tag
	native := IsNativeTag(tag) && m.Arg == "" && (tag == "input" || tag == "textarea" || tag == "select")

	if !native {
		prop := "modelValue"
		if m.Arg != "" {
			prop = resolve.Camel(m.Arg)
		}

		setAttr(n, &markup.Attr{Kind: markup.AttrExpr, Name: prop, Expr: markup.Pending(target), Render: markup.NoNode})
		trim := hasModifier(m.Modifiers, "trim")
		numeric := hasModifier(m.Modifiers, "number")
		prependHandler(n, resolve.HandlerProp("update:"+prop), "value", func(param string) string {
			return target + " = " + modelRead(param, trim, numeric)
		})

		return
	}

	switch inputType := staticValue(n, "type"); {
	case tag == "input" && inputType == "checkbox":
		setAttr(n, &markup.Attr{Kind: markup.AttrExpr, Name: "checked", Expr: markup.Pending(target), Render: markup.NoNode})
		prependHandler(n, "onChange", eventParam, func(param string) string {
			return target + " = " + param + ".target.checked"
		})
	case tag == "input" && inputType == "radio":
		value := valueExpr(n)
		setAttr(n, &markup.Attr{
			Kind:   markup.AttrExpr,
			Name:   "checked",
			Expr:   markup.Pending(target + " === " + value),
			Render: markup.NoNode,
		})
		prependHandler(n, "onChange", eventParam, func(string) string {
			return target + " = " + value
		})
	case tag == "input" && inputType == "file":
		prependHandler(n, "onChange", eventParam, func(param string) string {
			return target + " = " + param + ".target.files"
		})
	case tag == "select":
		setAttr(n, &markup.Attr{Kind: markup.AttrExpr, Name: "value", Expr: markup.Pending(target), Render: markup.NoNode})

		multiple := n.Attr("multiple") != nil
		prependHandler(n, "onChange", eventParam, func(param string) string {
			if multiple {
				return target + " = Array.from(" + param + ".target.selectedOptions, (option) => option.value)"
			}

			return target + " = " + param + ".target.value"
		})
	default:
		setAttr(n, &markup.Attr{Kind: markup.AttrExpr, Name: "value", Expr: markup.Pending(target), Render: markup.NoNode})

		numeric := hasModifier(m.Modifiers, "number") || inputType == "number" || inputType == "range"
		trim := hasModifier(m.Modifiers, "trim")
		prependHandler(n, "onChange", eventParam, func(param string) string {
			return target + " = " + modelRead(param+".target.value", trim, numeric)
		})
	}
}

// modelRead applies the .trim and .number modifiers to the value read by an
// update handler.
func modelRead(read string, trim, numeric bool) string {
	if trim {
		read += ".trim()"
	}

	if numeric {
		read = "Number(" + read + ")"
	}

	return read
}

func staticValue(n *markup.Node, name string) string {
	if a := n.Attr(name); a != nil && a.Kind == markup.AttrStatic {
		return strings.ToLower(a.Value)
	}

	return ""
}

// valueExpr returns the radio value as expression text.
func valueExpr(n *markup.Node) string {
	a := n.Attr("value")

	switch {
	case a == nil:
		return "null"
	case a.Kind == markup.AttrExpr:
		return markup.Paren(a.Expr.Text)
	default:
		return markup.JSString(a.Value)
	}
}

func setAttr(n *markup.Node, attr *markup.Attr) {
	for i, a := range n.Attrs {
		if a.Name == attr.Name {
			n.Attrs[i] = attr

			return
		}
	}

	n.Attrs = append(n.Attrs, attr)
}

// prependHandler adds an assignment ahead of an existing handler body, or
// creates the handler. stmt receives the handler's parameter name.
func prependHandler(n *markup.Node, name, param string, stmt func(param string) string) {
	existing := n.Attr(name)
	if existing == nil || existing.Kind != markup.AttrHandler {
		n.Attrs = append(n.Attrs, &markup.Attr{
			Kind:    markup.AttrHandler,
			Name:    name,
			Handler: &markup.Handler{Param: param, Statements: []markup.Expr{markup.Pending(stmt(param))}},
			Render:  markup.NoNode,
		})

		return
	}

	h := existing.Handler
	if h.Param == "" {
		h.Param = param
	}

	if len(h.Statements) == 0 && h.Direct.Text != "" {
		h.Statements = []markup.Expr{markup.Pending(callWith(h.Direct.Text, h.Param))}
		h.Direct = markup.Expr{}
	}

	h.Statements = append([]markup.Expr{markup.Pending(stmt(h.Param))}, h.Statements...)
}
