package script

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// rawPropsParam names the component parameter when defaults are merged into props.
const rawPropsParam = "rawProps"

type propDefault struct {
	name  string
	value string
}

func (p *Pipeline) props(opt option) {
	var defaults []propDefault

	switch v := opt.value; v.Type() {
	case "array":
		for _, name := range p.stringItems(v) {
			p.register(symbols.KindProp, name)
		}
	case "object":
		for _, m := range members(v) {
			name, ok := p.propertyKey(m)
			if !ok {
				p.rep.Warn(diag.CodeUnsupportedForm, "prop %q has a computed name; skipped", p.text(m))

				continue
			}

			if !p.register(symbols.KindProp, name) {
				continue
			}

			if d, ok := p.propDefault(valueOf(m)); ok {
				defaults = append(defaults, propDefault{name: name, value: d})
			}
		}
	default:
		p.rep.Warn(diag.CodeUnsupportedForm, "props declaration is neither an array nor an object")
	}

	p.mergeDefaults(defaults)
}

// propDefault returns the default of a prop definition object. Factories for
// non-function props are invoked.
func (p *Pipeline) propDefault(def sitter.Node) (string, bool) {
	if def.Type() != "object" {
		return "", false
	}

	m, ok := p.member(def, "default")
	if !ok {
		return "", false
	}

	isFunctionType := false
	if typ, ok := p.member(def, "type"); ok {
		isFunctionType = p.text(valueOf(typ)) == "Function"
	}

	if f, ok := functionOf(valueOf(m)); ok && !isFunctionType {
		return "(" + p.arrow(f) + ")()", true
	}

	return p.render(valueOf(m)), true
}

func (p *Pipeline) mergeDefaults(defaults []propDefault) {
	if len(defaults) == 0 {
		return
	}

	fields := make([]string, 0, len(defaults))
	for _, d := range defaults {
		fields = append(fields, objectKey(d.name)+": "+d.value)
	}

	p.syms.PropsParam = rawPropsParam
	p.syms.AddAdapterImport("mergeDefaults")
	p.sink.PrependStatement(fmt.Sprintf("const %s = mergeDefaults(%s, { %s });",
		p.syms.PropsBinding, rawPropsParam, strings.Join(fields, ", ")))
}

var identifierName = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

func objectKey(name string) string {
	if identifierName.MatchString(name) {
		return name
	}

	return markup.JSString(name)
}

// data registers every field of the returned object in the reactive group
// and declares the group. Statements ahead of the return are kept.
func (p *Pipeline) data(opt option) error {
	var (
		lead []sitter.Node
		obj  sitter.Node
	)

	if f, ok := functionOf(opt.value); ok {
		lead, obj = returned(f)
	} else {
		obj = opt.value
	}

	if obj.IsNull() || obj.Type() != "object" {
		kind := "nothing"
		if !obj.IsNull() {
			kind = obj.Type()
		}

		return fmt.Errorf("%w: returns %s", ErrDataNotObject, kind)
	}

	registered := 0

	for _, m := range members(obj) {
		name, ok := p.propertyKey(m)
		if !ok {
			p.rep.Warn(diag.CodeUnsupportedForm, "data member %q cannot be classified; kept unregistered", p.text(m))

			continue
		}

		if p.registerReactive(name) {
			registered++
		}
	}

	for _, stmt := range lead {
		p.later(func() string { return p.render(stmt) })
	}

	if registered == 0 && len(members(obj)) == 0 {
		return nil
	}

	p.syms.AddAdapterImport("useReactive")
	p.later(func() string {
		return fmt.Sprintf("const %s = useReactive(%s);", p.syms.StateContainer, p.render(obj))
	})

	return nil
}

func (p *Pipeline) inject(opt option) {
	type injection struct{ name, key, fallback string }

	var list []injection

	switch v := opt.value; v.Type() {
	case "array":
		for _, name := range p.stringItems(v) {
			list = append(list, injection{name: name, key: markup.JSString(name)})
		}
	case "object":
		for _, m := range members(v) {
			name, ok := p.propertyKey(m)
			if !ok {
				continue
			}

			in := injection{name: name, key: markup.JSString(name)}

			switch def := valueOf(m); def.Type() {
			case "string":
				in.key = p.text(def)
			case "object":
				if from, ok := p.member(def, "from"); ok {
					in.key = p.text(valueOf(from))
				}

				if fallback, ok := p.member(def, "default"); ok {
					in.fallback = p.text(valueOf(fallback))
				}
			}

			list = append(list, in)
		}
	default:
		p.rep.Warn(diag.CodeUnsupportedForm, "inject declaration is neither an array nor an object")

		return
	}

	for _, in := range list {
		if !p.register(symbols.KindMethod, in.name) {
			continue
		}

		args := in.key
		if in.fallback != "" {
			args += ", " + in.fallback
		}

		p.syms.AddAdapterImport("useInject")
		p.later(func() string { return fmt.Sprintf("const %s = useInject(%s);", in.name, args) })
	}
}

func (p *Pipeline) provide(opt option) {
	var (
		lead []sitter.Node
		obj  = opt.value
	)

	if f, ok := functionOf(opt.value); ok {
		lead, obj = returned(f)
	}

	if obj.IsNull() || obj.Type() != "object" {
		p.rep.Warn(diag.CodeUnsupportedForm, "provide does not yield an object literal; skipped")

		return
	}

	for _, stmt := range lead {
		p.later(func() string { return p.render(stmt) })
	}

	p.syms.AddAdapterImport("useProvide")

	for _, m := range members(obj) {
		var key string

		switch m.Type() {
		case "pair":
			k := syntax.Field(m, "key")
			if k.Type() == "computed_property_name" && k.NamedChildCount() > 0 {
				key = p.render(k.NamedChild(0))
			} else if name, ok := p.propertyKey(m); ok {
				key = markup.JSString(name)
			}
		case "shorthand_property_identifier", "method_definition":
			name, _ := p.propertyKey(m)
			key = markup.JSString(name)
		default:
			p.rep.Warn(diag.CodeUnsupportedForm, "provided member %q skipped", p.text(m))

			continue
		}

		p.later(func() string {
			value := p.text(m)

			switch m.Type() {
			case "pair":
				value = p.render(valueOf(m))
			case "method_definition":
				if f, ok := functionOf(m); ok {
					value = p.arrow(f)
				}
			}

			return fmt.Sprintf("useProvide(%s, %s);", key, value)
		})
	}
}

var vueSuffix = regexp.MustCompile(`\.vue(['"])`)

func (p *Pipeline) components(opt option) {
	if opt.value.Type() != "object" {
		p.rep.Warn(diag.CodeUnsupportedForm, "components declaration is not an object literal")

		return
	}

	for _, m := range members(opt.value) {
		key, ok := p.propertyKey(m)
		if !ok {
			continue
		}

		value := valueOf(m)

		switch {
		case m.Type() == "shorthand_property_identifier":
			p.syms.RegisterComponent(key, key)
		case value.Type() == "identifier":
			p.syms.RegisterComponent(key, p.text(value))
		case value.Type() == "member_expression":
			local := resolve.Pascal(key)
			p.sink.AppendModuleStatement(fmt.Sprintf("const %s = %s;", local, p.text(value)))
			p.syms.RegisterComponent(key, local)
		case isAsyncComponent(value):
			local := resolve.Pascal(key)
			loader := vueSuffix.ReplaceAllString(p.text(value), p.opts.TargetExtension+"$1")

			p.syms.AddImport(p.syms.FrameworkSource, "lazy", false)
			p.sink.AppendModuleStatement(fmt.Sprintf("const %s = lazy(%s);", local, loader))
			p.syms.RegisterComponent(key, local)
		default:
			p.rep.Warn(diag.CodeUnsupportedForm, "component %q is not a plain reference; skipped", key)
		}
	}
}

func isAsyncComponent(n sitter.Node) bool {
	if _, ok := functionOf(n); !ok {
		return false
	}

	found := false

	syntax.Walk(n, func(c sitter.Node) bool {
		if c.Type() == "import" {
			found = true
		}

		return !found
	})

	return found
}

func (p *Pipeline) directives(opt option) {
	if opt.value.Type() != "object" {
		p.rep.Warn(diag.CodeUnsupportedForm, "directives declaration is not an object literal")

		return
	}

	for _, m := range members(opt.value) {
		key, ok := p.propertyKey(m)
		if !ok {
			continue
		}

		name := kebab(key)

		if m.Type() == "shorthand_property_identifier" {
			p.syms.LocalDirectives[name] = key

			continue
		}

		binding := "v" + resolve.Pascal(name)
		value := p.render(valueOf(m))

		if f, ok := functionOf(m); ok && m.Type() == "method_definition" {
			value = p.arrow(f)
		}

		p.sink.AppendModuleStatement(fmt.Sprintf("const %s = %s;", binding, value))
		p.syms.LocalDirectives[name] = binding
	}
}
