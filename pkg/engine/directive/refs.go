package directive

import (
	"fmt"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
)

// lowerRefs turns static ref names into callbacks storing the element or
// component handle. Loop-interior markers are cleared afterwards.
func (e *Engine) lowerRefs() {
	for _, id := range e.elements() {
		n := e.tree.Node(id)

		a := n.Attr("ref")
		if a == nil || a.Kind != markup.AttrStatic || a.Value == "" {
			continue
		}

		target := e.refTarget(a.Value)
		param := e.refParam(target)

		handle := param
		if e.isComponent(n) {
			handle = "toComponentRef(" + param + ")"
			e.syms.AddAdapterImport("toComponentRef")
		}

		var body string
		if e.inLoop(id) {
			body = fmt.Sprintf("(%[3]s) => { if (!%[3]s) return; if (!Array.isArray(%[1]s)) %[1]s = []; %[1]s.push(%[2]s); }",
				target, handle, param)
		} else {
			body = fmt.Sprintf("(%s) => { %s = %s; }", param, target, handle)
		}

		setAttr(n, &markup.Attr{Kind: markup.AttrExpr, Name: "ref", Expr: markup.Final(body), Render: markup.NoNode})
	}

	e.tree.Walk(func(id markup.NodeID) bool {
		e.tree.Node(id).LoopInterior = false

		return true
	})
}

func (e *Engine) refTarget(name string) string {
	if e.syms.Style == symbols.StyleComposition && e.syms.Classify(name) == symbols.KindRef {
		return name + ".value"
	}

	table := e.res.RefsBinding()
	if identifierName.MatchString(name) {
		return table + "." + name
	}

	return table + "[" + markup.JSString(name) + "]"
}

// refParam names the callback parameter so it shadows neither the assigned
// target nor any component symbol.
func (e *Engine) refParam(target string) string {
	root := target
	if i := strings.IndexAny(root, ".["); i >= 0 {
		root = root[:i]
	}

	param := "el"
	for n := 1; param == root || e.syms.Classify(param) != symbols.KindNone; n++ {
		param = fmt.Sprintf("el%d", n)
	}

	return param
}

// inLoop reports whether id or an ancestor carries the loop-interior marker.
func (e *Engine) inLoop(id markup.NodeID) bool {
	for cur := id; cur != markup.NoNode; cur = e.tree.Node(cur).Parent {
		if e.tree.Node(cur).LoopInterior {
			return true
		}
	}

	return false
}
