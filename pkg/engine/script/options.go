package script

import (
	"fmt"
	"maps"
	"slices"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/levenshtein"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// OptionKind classifies a member of an options object. The declaration order
// is the processing order.
type OptionKind int

// Option kinds in processing order. OptionUnknown sorts last.
const (
	OptionProps OptionKind = iota
	OptionData
	OptionInject
	OptionComponents
	OptionMethods
	OptionFilters
	OptionComputed
	OptionDirectives
	OptionWatch
	OptionLifecycle
	OptionEmits
	OptionProvide
	OptionName
	OptionUnknown
)

func (k OptionKind) String() string {
	switch k {
	case OptionProps:
		return "props"
	case OptionData:
		return "data"
	case OptionInject:
		return "inject"
	case OptionComponents:
		return "components"
	case OptionMethods:
		return "methods"
	case OptionFilters:
		return "filters"
	case OptionComputed:
		return "computed"
	case OptionDirectives:
		return "directives"
	case OptionWatch:
		return "watch"
	case OptionLifecycle:
		return "lifecycle"
	case OptionEmits:
		return "emits"
	case OptionProvide:
		return "provide"
	case OptionName:
		return "name"
	case OptionUnknown:
	}

	return "unknown"
}

// lifecycleHooks maps lifecycle options to the adapter hook replacing them.
var lifecycleHooks = map[string]string{
	"beforeCreate":  "useOnce",
	"created":       "useOnce",
	"beforeMount":   "onBeforeMount",
	"mounted":       "onMounted",
	"beforeUpdate":  "onBeforeUpdate",
	"updated":       "onUpdated",
	"activated":     "onActivated",
	"deactivated":   "onDeactivated",
	"beforeDestroy": "onBeforeUnmount",
	"beforeUnmount": "onBeforeUnmount",
	"destroyed":     "onUnmounted",
	"unmounted":     "onUnmounted",
	"errorCaptured": "onErrorCaptured",
}

var optionKinds = map[string]OptionKind{
	"props":      OptionProps,
	"data":       OptionData,
	"inject":     OptionInject,
	"components": OptionComponents,
	"methods":    OptionMethods,
	"filters":    OptionFilters,
	"computed":   OptionComputed,
	"directives": OptionDirectives,
	"watch":      OptionWatch,
	"emits":      OptionEmits,
	"provide":    OptionProvide,
	"name":       OptionName,
}

// knownOptions lists every recognized option name for misspelling hints.
var knownOptions = slices.Concat(slices.Collect(maps.Keys(optionKinds)), slices.Collect(maps.Keys(lifecycleHooks)))

// KindOf classifies an option name.
func KindOf(name string) OptionKind {
	if kind, ok := optionKinds[name]; ok {
		return kind
	}

	if _, ok := lifecycleHooks[name]; ok {
		return OptionLifecycle
	}

	return OptionUnknown
}

type option struct {
	kind  OptionKind
	key   string
	node  sitter.Node
	value sitter.Node
}

// options converts a script whose default export is an options object.
func (p *Pipeline) options() error {
	var obj sitter.Node

	for _, stmt := range syntax.NamedChildren(p.root) {
		switch {
		case stmt.Type() == "import_statement":
			p.importStatement(stmt)
		case stmt.Type() == "export_statement" && syntax.HasToken(stmt, "default"):
			found, err := p.exportedObject(stmt)
			if err != nil {
				return err
			}

			obj = found
		default:
			p.sink.AppendModuleStatement(p.render(stmt))
		}
	}

	if obj.IsNull() {
		return nil
	}

	opts := p.collect(obj)

	for _, opt := range opts {
		if err := p.dispatch(opt); err != nil {
			return err
		}
	}

	p.shadowAssignments(obj)
	p.flush()

	return nil
}

// exportedObject finds the options object of a default export:
// a literal, defineComponent({...}) or Vue.extend({...}).
func (p *Pipeline) exportedObject(stmt sitter.Node) (sitter.Node, error) {
	value := syntax.Field(stmt, "value")
	if value.IsNull() {
		value = syntax.Field(stmt, "declaration")
	}

	value = unwrap(value)

	if value.Type() == "call_expression" {
		args := syntax.Field(value, "arguments")
		if args.NamedChildCount() > 0 {
			value = unwrap(args.NamedChild(0))
		}
	}

	if value.Type() != "object" {
		return sitter.Node{}, fmt.Errorf("%w: found %s", ErrUnsupportedOptions, value.Type())
	}

	return value, nil
}

// collect lists the members of obj in processing order. Unknown members keep
// their source order at the end.
func (p *Pipeline) collect(obj sitter.Node) []option {
	var out []option

	for _, m := range members(obj) {
		key, ok := p.propertyKey(m)
		if !ok {
			p.rep.Warn(diag.CodeUnsupportedForm, "option %q is not a static member; skipped", p.text(m))

			continue
		}

		out = append(out, option{kind: KindOf(key), key: key, node: m, value: valueOf(m)})
	}

	slices.SortStableFunc(out, func(a, b option) int {
		return int(a.kind) - int(b.kind)
	})

	return out
}

func (p *Pipeline) dispatch(opt option) error {
	switch opt.kind {
	case OptionProps:
		p.props(opt)
	case OptionData:
		return p.data(opt)
	case OptionInject:
		p.inject(opt)
	case OptionComponents:
		p.components(opt)
	case OptionMethods:
		p.methods(opt, false)
	case OptionFilters:
		p.methods(opt, true)
	case OptionComputed:
		p.computed(opt)
	case OptionDirectives:
		p.directives(opt)
	case OptionWatch:
		p.watch(opt)
	case OptionLifecycle:
		p.lifecycle(opt)
	case OptionEmits:
		p.emits(opt.value)
	case OptionProvide:
		p.provide(opt)
	case OptionName:
		p.name(opt.value)
	case OptionUnknown:
		if guess := levenshtein.Suggest(opt.key, knownOptions); guess != "" {
			p.rep.Warn(diag.CodeUnknownOption, "option %q is not converted; did you mean %q?", opt.key, guess)
		} else {
			p.rep.Warn(diag.CodeUnknownOption, "option %q is not converted", opt.key)
		}
	}

	return nil
}

// moduleOptions reads the default export of a module script next to a
// composition-style block.
func (p *Pipeline) moduleOptions(obj sitter.Node) {
	for _, opt := range p.collect(obj) {
		switch opt.kind {
		case OptionName:
			p.name(opt.value)
		case OptionComponents:
			p.components(opt)
		case OptionProps, OptionData, OptionInject, OptionMethods, OptionFilters, OptionComputed,
			OptionDirectives, OptionWatch, OptionLifecycle, OptionEmits, OptionProvide, OptionUnknown:
			p.rep.Warn(diag.CodeUnknownOption, "option %q next to a setup block is not converted", opt.key)
		}
	}
}

func (p *Pipeline) name(value sitter.Node) {
	if value.Type() != "string" {
		p.rep.Warn(diag.CodeUnsupportedForm, "component name is not a string literal; kept %q", p.syms.Name)

		return
	}

	if name := resolve.Pascal(unquote(p.text(value))); name != "" {
		p.syms.Name = name
	}
}

func (p *Pipeline) emits(value sitter.Node) {
	var names []string

	switch value.Type() {
	case "array":
		names = p.stringItems(value)
	case "object":
		for _, m := range members(value) {
			if key, ok := p.propertyKey(m); ok {
				names = append(names, key)
			}
		}
	default:
		p.rep.Warn(diag.CodeUnsupportedForm, "emits declaration is neither an array nor an object")
	}

	for _, name := range names {
		if !slices.Contains(p.syms.Emits, name) {
			p.syms.Emits = append(p.syms.Emits, name)
		}
	}
}
