package directive

import (
	"fmt"
	"slices"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
)

const eventParam = "event"

// parsedName is an attribute name split into directive parts.
type parsedName struct {
	directive string
	arg       string
	dynamic   bool
	modifiers []string
}

// parseName splits `v-name:arg.mod` and the `:`, `@`, `#` and `.` shorthands.
// Plain attributes report an empty directive.
func parseName(name string) parsedName {
	var p parsedName

	var rest string

	switch {
	case strings.HasPrefix(name, "v-"):
		body := name[2:]

		cut := strings.IndexAny(body, ":.")
		if cut < 0 {
			return parsedName{directive: body}
		}

		p.directive = body[:cut]
		if body[cut] == '.' {
			p.modifiers = splitModifiers(body[cut:])

			return p
		}

		rest = body[cut+1:]
	case strings.HasPrefix(name, ":"):
		p.directive, rest = "bind", name[1:]
	case strings.HasPrefix(name, "@"):
		p.directive, rest = "on", name[1:]
	case strings.HasPrefix(name, "#"):
		p.directive, rest = "slot", name[1:]
	case strings.HasPrefix(name, ".") && len(name) > 1:
		p.directive, rest = "bind", name[1:]
		p.modifiers = []string{"prop"}
	default:
		return p
	}

	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end > 0 {
			p.arg, p.dynamic = rest[1:end], true
			p.modifiers = append(p.modifiers, splitModifiers(rest[end+1:])...)

			return p
		}
	}

	arg, mods, _ := strings.Cut(rest, ".")
	p.arg = arg

	if mods != "" {
		p.modifiers = append(p.modifiers, splitModifiers("."+mods)...)
	}

	return p
}

func splitModifiers(s string) []string {
	var out []string

	for _, m := range strings.Split(strings.TrimPrefix(s, "."), ".") {
		if m != "" {
			out = append(out, m)
		}
	}

	return out
}

func hasModifier(mods []string, name string) bool {
	return slices.Contains(mods, name)
}

// normalizeAttrs turns raw attributes into target attributes and collects
// models, v-show conditions and custom directive descriptors.
func (e *Engine) normalizeAttrs() {
	for _, id := range e.elements() {
		n := e.tree.Node(id)
		component := e.isComponent(n)

		var (
			out   []*markup.Attr
			descs []markup.Descriptor
		)

		for _, a := range n.Attrs {
			if a.Kind != markup.AttrRaw {
				out = append(out, a)

				continue
			}

			p := parseName(a.Name)

			switch p.directive {
			case "":
				out = append(out, staticAttr(a))
			case "bind":
				if attr := e.binding(n, a, p); attr != nil {
					out = append(out, attr)
				}
			case "on":
				if attr := e.event(a, p, component); attr != nil {
					out = append(out, attr)
				}
			case "model":
				n.Models = append(n.Models, markup.Model{Arg: p.arg, Value: a.Value, Modifiers: p.modifiers})
			case "show":
				show := markup.Pending(a.Value)
				n.Show = &show
			case "text":
				e.replaceChildren(id, markup.Pending(a.Value))
			case "html":
				e.replaceChildren(id, markup.Expr{})
				out = append(out, &markup.Attr{
					Kind: markup.AttrExpr,
					Name: "dangerouslySetInnerHTML",
					Expr: markup.Pending("{ __html: " + a.Value + " }"),
				})
			case "once", "cloak", "memo":
			case "slot", "if", "else-if", "else", "for", "pre":
				e.rep.Warn(diag.CodeUnsupportedForm, "%s on <%s> is not in a supported position; dropped", a.Name, n.Tag)
			default:
				descs = append(descs, e.descriptor(a, p))
			}
		}

		n.Attrs = out

		if n.Kind == markup.KindFragment {
			continue
		}

		if len(descs) > 0 {
			e.wrapDirectiveHost(id, descs)
		}
	}
}

func staticAttr(a *markup.Attr) *markup.Attr {
	if !a.HasValue {
		return &markup.Attr{Kind: markup.AttrBool, Name: a.Name, Render: markup.NoNode}
	}

	return &markup.Attr{Kind: markup.AttrStatic, Name: a.Name, Value: a.Value, HasValue: true, Render: markup.NoNode}
}

func (e *Engine) binding(n *markup.Node, a *markup.Attr, p parsedName) *markup.Attr {
	value := strings.TrimSpace(a.Value)

	switch {
	case p.arg == "":
		return &markup.Attr{Kind: markup.AttrSpread, Expr: markup.Pending(value), Render: markup.NoNode}
	case p.dynamic:
		return &markup.Attr{
			Kind:   markup.AttrSpread,
			Expr:   markup.Pending("{ [" + p.arg + "]: " + markup.LowerFilters(value) + " }"),
			Render: markup.NoNode,
		}
	}

	arg := p.arg
	if hasModifier(p.modifiers, "camel") {
		arg = resolve.Camel(arg)
	}

	if value == "" {
		value = resolve.Camel(arg)
	}

	if hasModifier(p.modifiers, "sync") {
		n.Models = append(n.Models, markup.Model{Arg: arg, Value: value})

		return nil
	}

	return &markup.Attr{Kind: markup.AttrExpr, Name: arg, Expr: markup.Pending(markup.LowerFilters(value)), Render: markup.NoNode}
}

func (e *Engine) replaceChildren(id markup.NodeID, expr markup.Expr) {
	n := e.tree.Node(id)
	for _, c := range append([]markup.NodeID(nil), n.Children...) {
		e.tree.Detach(c)
	}

	if expr.Text != "" {
		e.tree.AppendChild(id, e.tree.NewExpr(expr))
	}
}

func (e *Engine) descriptor(a *markup.Attr, p parsedName) markup.Descriptor {
	d := markup.Descriptor{Name: p.directive, Modifiers: p.modifiers, Binding: e.syms.LocalDirectives[p.directive]}

	if p.dynamic {
		e.rep.Warn(diag.CodeUnknownDirective, "directive v-%s has a dynamic argument; argument dropped", p.directive)
	} else {
		d.Arg = p.arg
	}

	if v := strings.TrimSpace(a.Value); v != "" {
		d.Value = markup.Pending(v)
	}

	return d
}

// wrapDirectiveHost wraps the element in the directive host component. The
// host takes over the element's key so list identity is preserved.
func (e *Engine) wrapDirectiveHost(id markup.NodeID, descs []markup.Descriptor) {
	host := e.tree.NewElement("DirectiveHost")
	hn := e.tree.Node(host)
	hn.Attrs = []*markup.Attr{{Kind: markup.AttrDirectives, Name: "directives", Descriptors: descs, Render: markup.NoNode}}

	if key := e.tree.Node(id).RemoveAttr("key"); key != nil {
		hn.Attrs = append([]*markup.Attr{key}, hn.Attrs...)
	}

	e.tree.Wrap(id, host)
	e.syms.AddAdapterImport("DirectiveHost")
}

var nativeEvents = map[string]string{
	"click": "onClick", "dblclick": "onDoubleClick", "contextmenu": "onContextMenu",
	"mousedown": "onMouseDown", "mouseup": "onMouseUp", "mousemove": "onMouseMove",
	"mouseenter": "onMouseEnter", "mouseleave": "onMouseLeave", "mouseover": "onMouseOver", "mouseout": "onMouseOut",
	"keydown": "onKeyDown", "keyup": "onKeyUp", "keypress": "onKeyPress",
	"input": "onInput", "change": "onChange", "submit": "onSubmit", "reset": "onReset",
	"focus": "onFocus", "blur": "onBlur", "focusin": "onFocusIn", "focusout": "onFocusOut",
	"scroll": "onScroll", "wheel": "onWheel", "select": "onSelect", "load": "onLoad", "error": "onError",
	"touchstart": "onTouchStart", "touchmove": "onTouchMove", "touchend": "onTouchEnd", "touchcancel": "onTouchCancel",
	"pointerdown": "onPointerDown", "pointerup": "onPointerUp", "pointermove": "onPointerMove",
	"dragstart": "onDragStart", "drag": "onDrag", "dragend": "onDragEnd", "dragenter": "onDragEnter",
	"dragleave": "onDragLeave", "dragover": "onDragOver", "drop": "onDrop",
	"compositionstart": "onCompositionStart", "compositionupdate": "onCompositionUpdate",
	"compositionend": "onCompositionEnd", "animationstart": "onAnimationStart", "animationend": "onAnimationEnd",
	"transitionend": "onTransitionEnd", "copy": "onCopy", "cut": "onCut", "paste": "onPaste",
}

// EventProp returns the handler attribute name for an event.
func EventProp(event string, component bool) string {
	if !component {
		if prop, ok := nativeEvents[strings.ToLower(event)]; ok {
			return prop
		}
	}

	return resolve.HandlerProp(event)
}

func (e *Engine) event(a *markup.Attr, p parsedName, component bool) *markup.Attr {
	if p.arg == "" || p.dynamic {
		e.rep.Warn(diag.CodeUnsupportedForm, "%s: object or dynamic event bindings are not supported; dropped", a.Name)

		return nil
	}

	name := EventProp(p.arg, component)
	if hasModifier(p.modifiers, "capture") {
		name += "Capture"
	}

	guards := e.modifierGuards(p.arg, p.modifiers)
	value := strings.TrimSpace(a.Value)
	h := &markup.Handler{Param: eventParam}

	switch {
	case value == "" && len(guards) == 0:
		return nil
	case value == "":
		h.Statements = guards
	case resolve.IsHandlerReference(value) && len(guards) == 0:
		h.Direct = markup.Pending(value)
	case resolve.IsHandlerReference(value):
		h.Statements = append(guards, markup.Pending(callWith(value, eventParam)))
	default:
		h.Statements = append(guards, markup.Pending(value))
	}

	return &markup.Attr{Kind: markup.AttrHandler, Name: name, Handler: h, Render: markup.NoNode}
}

// callWith renders a call of a handler reference or function expression.
func callWith(fn, arg string) string {
	if resolve.IsFunctionExpression(fn) {
		return "(" + fn + ")(" + arg + ")"
	}

	return fn + "(" + arg + ")"
}

var keyAliases = map[string][]string{
	"enter":  {"Enter"},
	"tab":    {"Tab"},
	"delete": {"Backspace", "Delete"},
	"esc":    {"Escape"},
	"space":  {" "},
	"up":     {"ArrowUp"},
	"down":   {"ArrowDown"},
	"left":   {"ArrowLeft"},
	"right":  {"ArrowRight"},
}

var mouseButtons = map[string]string{"left": "0", "middle": "1", "right": "2"}

var systemKeys = map[string]string{"ctrl": "ctrlKey", "alt": "altKey", "shift": "shiftKey", "meta": "metaKey"}

// modifierGuards lowers each event modifier to a statement run before the
// handler body, in modifier order.
func (e *Engine) modifierGuards(event string, mods []string) []markup.Expr {
	keyEvent := strings.HasPrefix(strings.ToLower(event), "key")

	var out []markup.Expr

	for _, m := range mods {
		switch {
		case m == "stop":
			out = append(out, markup.Final("event.stopPropagation();"))
		case m == "prevent":
			out = append(out, markup.Final("event.preventDefault();"))
		case m == "self":
			out = append(out, markup.Final("if (event.target !== event.currentTarget) return;"))
		case m == "once":
			flag := "__once" + resolve.Pascal(event)
			out = append(out, markup.Final(fmt.Sprintf(
				"if (event.currentTarget.%[1]s) return; event.currentTarget.%[1]s = true;", flag)))
		case systemKeys[m] != "":
			out = append(out, markup.Final(fmt.Sprintf("if (!event.%s) return;", systemKeys[m])))
		case !keyEvent && mouseButtons[m] != "":
			out = append(out, markup.Final(fmt.Sprintf("if (event.button !== %s) return;", mouseButtons[m])))
		case m == "capture" || m == "passive" || m == "native" || m == "exact":
		case keyEvent:
			out = append(out, markup.Final(keyGuard(m)))
		default:
			e.rep.Warn(diag.CodeUnsupportedForm, "event modifier .%s on %s is not supported; ignored", m, event)
		}
	}

	return out
}

func keyGuard(modifier string) string {
	keys, ok := keyAliases[modifier]
	if !ok {
		keys = []string{resolve.Pascal(modifier)}
	}

	if len(keys) == 1 {
		return fmt.Sprintf("if (event.key !== %s) return;", markup.JSString(keys[0]))
	}

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = markup.JSString(k)
	}

	return fmt.Sprintf("if (![%s].includes(event.key)) return;", strings.Join(quoted, ", "))
}
