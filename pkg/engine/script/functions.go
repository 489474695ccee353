package script

import (
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// methods declares methods or filters as hoisted functions. All names are
// registered before any body is rendered.
func (p *Pipeline) methods(opt option, filters bool) {
	if opt.value.Type() != "object" {
		p.rep.Warn(diag.CodeUnsupportedForm, "%s declaration is not an object literal", opt.key)

		return
	}

	for _, m := range members(opt.value) {
		if m.Type() == "spread_element" {
			if !filters && p.storeMethods(m) {
				continue
			}

			p.rep.Warn(diag.CodeUnsupportedForm, "spread in %s is not converted: %s", opt.key, p.text(m))

			continue
		}

		name, ok := p.propertyKey(m)
		if !ok {
			continue
		}

		f, ok := functionOf(valueOf(m))
		if !ok {
			p.rep.Warn(diag.CodeUnsupportedForm, "%s member %q is not a function; skipped", opt.key, name)

			continue
		}

		if !p.register(symbols.KindMethod, name) {
			continue
		}

		p.later(func() string { return p.declaration(name, f) })
	}
}

func (p *Pipeline) computed(opt option) {
	if opt.value.Type() != "object" {
		p.rep.Warn(diag.CodeUnsupportedForm, "computed declaration is not an object literal")

		return
	}

	for _, m := range members(opt.value) {
		if m.Type() == "spread_element" {
			if !p.storeComputed(m) {
				p.rep.Warn(diag.CodeUnsupportedForm, "spread in computed is not converted: %s", p.text(m))
			}

			continue
		}

		name, ok := p.propertyKey(m)
		if !ok {
			continue
		}

		value := valueOf(m)

		var render func() string

		if f, ok := functionOf(value); ok {
			render = func() string { return p.arrow(f) }
		} else if value.Type() == "object" {
			render = func() string { return p.accessors(value) }
		} else {
			p.rep.Warn(diag.CodeUnsupportedForm, "computed %q is neither a getter nor a get/set pair", name)

			continue
		}

		if !p.register(symbols.KindComputed, name) {
			continue
		}

		p.syms.AddAdapterImport("useComputed")
		p.later(func() string { return fmt.Sprintf("const %s = useComputed(%s);", name, render()) })
	}
}

// accessors renders a { get, set } computed definition with arrow accessors.
func (p *Pipeline) accessors(obj sitter.Node) string {
	var parts []string

	for _, accessor := range []string{"get", "set"} {
		m, ok := p.member(obj, accessor)
		if !ok {
			continue
		}

		if f, ok := functionOf(valueOf(m)); ok {
			parts = append(parts, accessor+": "+p.arrow(f))
		}
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

type watcher struct {
	callback func() string
	options  []string
}

func (p *Pipeline) watch(opt option) {
	if opt.value.Type() != "object" {
		p.rep.Warn(diag.CodeUnsupportedForm, "watch declaration is not an object literal")

		return
	}

	for _, m := range members(opt.value) {
		path, ok := p.propertyKey(m)
		if !ok {
			p.rep.Warn(diag.CodeUnsupportedForm, "watch key %q is not static; skipped", p.text(m))

			continue
		}

		value := valueOf(m)

		candidates := []sitter.Node{value}
		if value.Type() == "array" {
			candidates = syntax.NamedChildren(value)
		}

		for _, c := range candidates {
			w, ok := p.watcher(m, unwrap(c))
			if !ok {
				p.rep.Warn(diag.CodeUnsupportedForm, "watcher for %q has no handler; skipped", path)

				continue
			}

			p.syms.AddAdapterImport("useWatch")
			p.later(func() string {
				args := []string{"() => " + p.instance(path), w.callback()}
				if len(w.options) > 0 {
					args = append(args, "{ "+strings.Join(w.options, ", ")+" }")
				}

				return "useWatch(" + strings.Join(args, ", ") + ");"
			})
		}
	}
}

// watcher reads one handler: a function, a method name, or a definition
// object carrying handler plus deep/immediate flags.
func (p *Pipeline) watcher(member, value sitter.Node) (watcher, bool) {
	if member.Type() == "method_definition" {
		value = member
	}

	if f, ok := functionOf(value); ok {
		return watcher{callback: func() string { return p.arrow(f) }}, true
	}

	switch value.Type() {
	case "string":
		method := unquote(p.text(value))

		return watcher{callback: func() string { return p.instance(method) }}, true
	case "object":
		handler, ok := p.member(value, "handler")
		if !ok {
			return watcher{}, false
		}

		w, ok := p.watcher(handler, valueOf(handler))
		if !ok {
			return watcher{}, false
		}

		for _, flag := range []string{"deep", "immediate", "flush"} {
			if m, ok := p.member(value, flag); ok {
				w.options = append(w.options, flag+": "+p.text(valueOf(m)))
			}
		}

		return w, true
	}

	return watcher{}, false
}

func (p *Pipeline) lifecycle(opt option) {
	hook := lifecycleHooks[opt.key]

	f, ok := functionOf(opt.value)
	if !ok {
		p.rep.Warn(diag.CodeUnsupportedForm, "lifecycle hook %q is not a function; skipped", opt.key)

		return
	}

	p.syms.AddAdapterImport(hook)
	p.later(func() string { return fmt.Sprintf("%s(%s);", hook, p.arrow(f)) })
}
