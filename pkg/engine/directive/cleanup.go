package directive

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

var identifierName = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

var attrRenames = map[string]string{
	"class": "className", "for": "htmlFor", "tabindex": "tabIndex", "readonly": "readOnly",
	"maxlength": "maxLength", "minlength": "minLength", "colspan": "colSpan", "rowspan": "rowSpan",
	"autocomplete": "autoComplete", "autofocus": "autoFocus", "contenteditable": "contentEditable",
	"crossorigin": "crossOrigin", "enctype": "encType", "novalidate": "noValidate",
	"spellcheck": "spellCheck", "srcset": "srcSet", "usemap": "useMap", "accesskey": "accessKey",
	"cellpadding": "cellPadding", "cellspacing": "cellSpacing", "frameborder": "frameBorder",
	"allowfullscreen": "allowFullScreen", "datetime": "dateTime", "inputmode": "inputMode",
	"http-equiv": "httpEquiv", "accept-charset": "acceptCharset",
}

var uncontrolledTypes = map[string]bool{
	"checkbox": true, "radio": true, "submit": true, "button": true, "reset": true, "hidden": true, "image": true,
}

// cleanup merges class and style bindings, converts attribute names and
// swaps value-only inputs for the semi-controlled wrapper.
func (e *Engine) cleanup(ctx context.Context) {
	e.tree.Walk(func(id markup.NodeID) bool {
		n := e.tree.Node(id)
		if n.Kind != markup.KindElement && n.Kind != markup.KindFragment {
			return true
		}

		if n.Tag == "template" {
			e.asFragment(n)
		}

		if n.Kind == markup.KindFragment {
			if len(n.Attrs) > 0 && n.Tag == "" {
				n.Tag = "Fragment"
				e.syms.AddImport(e.syms.FrameworkSource, "Fragment", false)
			}

			return true
		}

		e.mergeClass(n)
		e.mergeStyle(ctx, n)
		renameAttrs(n)
		e.semiControlled(n)

		return true
	})
}

func (e *Engine) mergeClass(n *markup.Node) {
	var (
		static []string
		exprs  []string
		at     = -1
	)

	kept := n.Attrs[:0]

	for _, a := range n.Attrs {
		if a.Name != "class" || (a.Kind != markup.AttrStatic && a.Kind != markup.AttrExpr && a.Kind != markup.AttrRaw) {
			kept = append(kept, a)

			continue
		}

		if at < 0 {
			at = len(kept)
		}

		if a.Kind == markup.AttrExpr {
			exprs = append(exprs, a.Expr.Text)
		} else if v := strings.Join(strings.Fields(a.Value), " "); v != "" {
			static = append(static, v)
		}
	}

	n.Attrs = kept

	if at < 0 {
		return
	}

	var merged *markup.Attr

	if len(exprs) == 0 {
		merged = &markup.Attr{
			Kind: markup.AttrStatic, Name: "className", Value: strings.Join(static, " "), HasValue: true,
			Render: markup.NoNode,
		}
	} else {
		args := make([]string, 0, len(exprs)+1)
		if len(static) > 0 {
			args = append(args, markup.JSString(strings.Join(static, " ")))
		}

		args = append(args, exprs...)
		merged = &markup.Attr{
			Kind: markup.AttrExpr, Name: "className", Expr: markup.Final("classNames(" + strings.Join(args, ", ") + ")"),
			Render: markup.NoNode,
		}

		e.syms.AddAdapterImport("classNames")
	}

	n.Attrs = insertAttr(n.Attrs, at, merged)
}

func (e *Engine) mergeStyle(ctx context.Context, n *markup.Node) {
	var parts []string

	at := -1
	kept := n.Attrs[:0]

	for _, a := range n.Attrs {
		if a.Name != "style" || (a.Kind != markup.AttrStatic && a.Kind != markup.AttrExpr && a.Kind != markup.AttrRaw) {
			kept = append(kept, a)

			continue
		}

		if at < 0 {
			at = len(kept)
		}

		if a.Kind == markup.AttrExpr {
			parts = append(parts, a.Expr.Text)
		} else if obj := StyleObject(ctx, a.Value); obj != "" {
			parts = append(parts, obj)
		}
	}

	n.Attrs = kept

	if n.Show != nil {
		if at < 0 {
			at = len(n.Attrs)
		}

		parts = append(parts, "{ display: "+markup.Paren(n.Show.Text)+" ? '' : 'none' }")
		n.Show = nil
	}

	if len(parts) == 0 {
		return
	}

	value := parts[0]
	if len(parts) > 1 {
		value = "mergeStyles(" + strings.Join(parts, ", ") + ")"
		e.syms.AddAdapterImport("mergeStyles")
	}

	n.Attrs = insertAttr(n.Attrs, at, &markup.Attr{
		Kind: markup.AttrExpr, Name: "style", Expr: markup.Final(value), Render: markup.NoNode,
	})
}

func insertAttr(attrs []*markup.Attr, at int, attr *markup.Attr) []*markup.Attr {
	if at > len(attrs) {
		at = len(attrs)
	}

	out := make([]*markup.Attr, 0, len(attrs)+1)
	out = append(out, attrs[:at]...)
	out = append(out, attr)

	return append(out, attrs[at:]...)
}

func renameAttrs(n *markup.Node) {
	native := IsNativeTag(n.Tag)

	for _, a := range n.Attrs {
		switch a.Kind {
		case markup.AttrStatic, markup.AttrBool, markup.AttrExpr:
		case markup.AttrRaw, markup.AttrSpread, markup.AttrHandler, markup.AttrRender, markup.AttrDirectives:
			continue
		}

		if renamed, ok := attrRenames[a.Name]; ok && native {
			a.Name = renamed

			continue
		}

		if strings.HasPrefix(a.Name, "data-") || strings.HasPrefix(a.Name, "aria-") {
			continue
		}

		if strings.ContainsAny(a.Name, "-:") {
			a.Name = resolve.Camel(a.Name)
		}
	}
}

func (e *Engine) semiControlled(n *markup.Node) {
	if n.Tag != "input" && n.Tag != "textarea" && n.Tag != "select" {
		return
	}

	if n.Attr("value") == nil || n.Attr("onChange") != nil || n.Attr("onInput") != nil {
		return
	}

	if uncontrolledTypes[staticValue(n, "type")] {
		return
	}

	n.Attrs = append([]*markup.Attr{{
		Kind: markup.AttrStatic, Name: "as", Value: n.Tag, HasValue: true, Render: markup.NoNode,
	}}, n.Attrs...)
	n.Tag = "SemiControlledInput"
	e.syms.AddAdapterImport("SemiControlledInput")
}

// StyleObject converts an inline CSS declaration list into an object literal.
// Custom properties keep their name as a quoted key.
func StyleObject(ctx context.Context, css string) string {
	decls := parseDeclarations(ctx, css)
	if len(decls) == 0 {
		return ""
	}

	fields := make([]string, 0, len(decls))

	for _, d := range decls {
		fields = append(fields, styleKey(d[0])+": "+markup.JSString(d[1]))
	}

	return "{ " + strings.Join(fields, ", ") + " }"
}

func styleKey(property string) string {
	switch {
	case strings.HasPrefix(property, "--"):
		return markup.JSString(property)
	case strings.HasPrefix(property, "-ms-"):
		return resolve.Camel(property[1:])
	case strings.HasPrefix(property, "-"):
		return resolve.Pascal(property)
	}

	return resolve.Camel(property)
}

// parseDeclarations returns property/value pairs in source order using the
// CSS grammar, falling back to a plain split when the text does not parse.
func parseDeclarations(ctx context.Context, css string) [][2]string {
	src := "x{" + css + "}"

	tree, err := syntax.Parse(ctx, syntax.CSS, []byte(src))
	if err != nil || tree.HasError() {
		if tree != nil {
			tree.Close()
		}

		return splitDeclarations(css)
	}
	defer tree.Close()

	var out [][2]string

	syntax.Walk(tree.Root, func(n sitter.Node) bool {
		if n.Type() != "declaration" {
			return true
		}

		text := syntax.Text(n, tree.Source)

		prop, value, ok := strings.Cut(text, ":")
		if ok {
			out = append(out, [2]string{
				strings.TrimSpace(prop),
				strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";")),
			})
		}

		return false
	})

	return out
}

func splitDeclarations(css string) [][2]string {
	var out [][2]string

	for _, decl := range strings.Split(css, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(prop) != "" {
			out = append(out, [2]string{strings.TrimSpace(prop), strings.TrimSpace(value)})
		}
	}

	return out
}
