package directive

import (
	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
)

// resolveExpressions rewrites every pending expression in the tree exactly once.
func (e *Engine) resolveExpressions() {
	e.tree.Walk(func(id markup.NodeID) bool {
		n := e.tree.Node(id)
		if n.Pre {
			return false
		}

		locals := e.tree.ScopeLocals(id)

		switch n.Kind {
		case markup.KindExpr:
			e.expr(&n.Expr, locals)
		case markup.KindLoop:
			e.expr(&n.Loop.Source, e.tree.ScopeLocals(n.Parent))
		case markup.KindCond:
			for i := range n.Cond.Branches {
				e.expr(&n.Cond.Branches[i].Test, locals)
			}
		case markup.KindSlot:
			e.expr(&n.Slot.DynamicName, locals)
			e.attrs(n.Attrs, locals)
		case markup.KindElement, markup.KindFragment:
			e.attrs(n.Attrs, locals)

			if n.Show != nil {
				e.expr(n.Show, locals)
			}
		case markup.KindRoot, markup.KindText:
		}

		return true
	})
}

func (e *Engine) attrs(attrs []*markup.Attr, locals []string) {
	for _, a := range attrs {
		switch a.Kind {
		case markup.AttrExpr, markup.AttrSpread:
			e.expr(&a.Expr, locals)
		case markup.AttrHandler:
			e.expr(&a.Handler.Direct, locals)

			scoped := append(append([]string(nil), locals...), a.Handler.Param)
			for i := range a.Handler.Statements {
				e.stmts(&a.Handler.Statements[i], scoped)
			}
		case markup.AttrDirectives:
			for i := range a.Descriptors {
				e.expr(&a.Descriptors[i].Value, locals)
			}
		case markup.AttrRaw, markup.AttrStatic, markup.AttrBool, markup.AttrRender:
		}
	}
}

func (e *Engine) expr(x *markup.Expr, locals []string) {
	if x.Done || x.Text == "" {
		return
	}

	out, err := e.res.Expression(x.Text, locals...)
	if err != nil {
		e.rep.Warn(diag.CodeExpression, "expression %q kept as written: %v", x.Text, err)
	}

	x.Text, x.Done = out, true
}

func (e *Engine) stmts(x *markup.Expr, locals []string) {
	if x.Done || x.Text == "" {
		return
	}

	out, err := e.res.Statements(x.Text, locals...)
	if err != nil {
		e.rep.Warn(diag.CodeExpression, "handler %q kept as written: %v", x.Text, err)
	}

	x.Text, x.Done = out, true
}
