package script

import (
	"fmt"
	"slices"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// declaringAPIs put the declared variable into a bucket.
var declaringAPIs = map[string]symbols.Kind{
	"ref":        symbols.KindRef,
	"shallowRef": symbols.KindRef,
	"customRef":  symbols.KindRef,
	"toRef":      symbols.KindRef,
	"computed":   symbols.KindComputed,
}

// macros are compiler-provided functions that need no import.
var macros = map[string]bool{
	"defineProps": true, "defineEmits": true, "defineExpose": true, "defineOptions": true,
	"withDefaults": true, "defineSlots": true, "defineModel": true,
}

// composition walks a setup block statement by statement.
func (p *Pipeline) composition() error {
	declared := map[string]bool{p.syms.PropsBinding: true}

	for _, stmt := range syntax.NamedChildren(p.root) {
		switch stmt.Type() {
		case "import_statement":
			p.importStatement(stmt)
		case "interface_declaration", "type_alias_declaration", "enum_declaration":
			p.sink.AppendModuleStatement(p.text(stmt))
		case "lexical_declaration", "variable_declaration":
			p.setupDeclaration(stmt, declared)
		case "expression_statement":
			p.setupExpression(stmt)
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if name := syntax.Field(stmt, "name"); !name.IsNull() {
				declared[p.text(name)] = true
			}

			p.sink.AppendStatement(p.render(stmt))
		default:
			p.sink.AppendStatement(p.render(stmt))
		}
	}

	return nil
}

// api returns the canonical framework or macro name called by call.
func (p *Pipeline) api(call sitter.Node) string {
	if call.Type() != "call_expression" {
		return ""
	}

	fn := syntax.Field(call, "function")
	if fn.Type() != "identifier" {
		return ""
	}

	name := p.text(fn)
	if canonical, ok := p.apis[name]; ok {
		return canonical
	}

	if macros[name] {
		return name
	}

	return ""
}

func (p *Pipeline) setupDeclaration(stmt sitter.Node, declared map[string]bool) {
	declarators := syntax.NamedChildren(stmt)
	if len(declarators) != 1 || declarators[0].Type() != "variable_declarator" {
		p.declareAll(stmt, declared)
		p.sink.AppendStatement(p.render(stmt))

		return
	}

	d := declarators[0]
	name := syntax.Field(d, "name")
	value := unwrap(syntax.Field(d, "value"))
	api := p.api(value)

	switch {
	case api == "defineProps" || api == "withDefaults":
		p.defineProps(value, name)
	case api == "defineEmits":
		p.defineEmits(value)
		p.emitBinding(name)
	case api == "useSlots" || api == "useAttrs":
		p.syms.AddAdapterImport(api)
		p.sink.AppendStatement(fmt.Sprintf("const %s = %s(%s);", p.text(name), api, p.syms.PropsBinding))
	case api == "toRefs" && name.Type() == "object_pattern":
		names, _ := resolve.BindingNames(p.text(name))
		for _, n := range names {
			p.register(symbols.KindRef, n)
		}

		p.sink.AppendStatement(p.render(stmt))
	case api == "defineModel":
		p.rep.Warn(diag.CodeUnsupportedForm, "defineModel is not converted; declare a prop and an update event instead")
		p.sink.AppendStatement(p.render(stmt))
	case declaringAPIs[api] != symbols.KindNone && name.Type() == "identifier":
		p.register(declaringAPIs[api], p.text(name))
		p.sink.AppendStatement(p.render(stmt))
	case p.once(value, declared):
		keyword := "const"
		if syntax.HasToken(stmt, "let") {
			keyword = "let"
		}

		init := p.render(value)
		if value.Type() == "object" {
			init = "(" + init + ")"
		}

		p.syms.AddAdapterImport("useOnce")
		p.sink.AppendStatement(fmt.Sprintf("%s %s = useOnce(() => %s);", keyword, p.render(name), init))
	default:
		p.sink.AppendStatement(p.render(stmt))
	}

	if name.Type() == "identifier" {
		if local := p.text(name); isDirectiveBinding(local) {
			p.syms.LocalDirectives[kebab(local[1:])] = local
		}
	}

	p.declareAll(stmt, declared)
}

func isDirectiveBinding(name string) bool {
	return len(name) > 1 && name[0] == 'v' && name[1] >= 'A' && name[1] <= 'Z'
}

func (p *Pipeline) declareAll(stmt sitter.Node, declared map[string]bool) {
	for _, d := range syntax.NamedChildren(stmt) {
		if d.Type() != "variable_declarator" {
			continue
		}

		names, err := resolve.BindingNames(p.text(syntax.Field(d, "name")))
		if err != nil {
			continue
		}

		for _, n := range names {
			declared[n] = true
		}
	}
}

// once reports whether an initializer is evaluated for its value only and
// depends on nothing declared in the block, so it can be computed once.
func (p *Pipeline) once(value sitter.Node, declared map[string]bool) bool {
	switch value.Type() {
	case "call_expression":
		fn := syntax.Field(value, "function")
		root := fn
		for root.Type() == "member_expression" {
			root = syntax.Field(root, "object")
		}

		callee := p.text(root)
		if strings.HasPrefix(callee, "use") || p.apis[callee] != "" || macros[callee] || fn.Type() == "import" {
			return false
		}
	case "new_expression", "object", "array":
	default:
		return false
	}

	independent := true

	syntax.Walk(value, func(n sitter.Node) bool {
		switch n.Type() {
		case "identifier", "shorthand_property_identifier":
			if declared[p.text(n)] {
				independent = false
			}
		case "arrow_function", "function_expression", "function":
			return false
		}

		return independent
	})

	return independent
}

func (p *Pipeline) setupExpression(stmt sitter.Node) {
	call := unwrap(stmt.NamedChild(0))

	switch api := p.api(call); api {
	case "defineProps", "withDefaults":
		p.defineProps(call, sitter.Node{})
	case "defineEmits":
		p.defineEmits(call)
	case "defineOptions":
		args := syntax.NamedChildren(syntax.Field(call, "arguments"))
		if len(args) > 0 && unwrap(args[0]).Type() == "object" {
			if m, ok := p.member(unwrap(args[0]), "name"); ok {
				p.name(valueOf(m))
			}
		}
	case "defineExpose":
		p.syms.AddAdapterImport("useExpose")
		p.sink.AppendStatement("useExpose" + p.render(syntax.Field(call, "arguments")) + ";")
	case "defineSlots":
	default:
		p.sink.AppendStatement(p.render(stmt))
	}
}

// defineProps registers the declared props from the runtime argument or the
// type argument, and merges withDefaults defaults.
func (p *Pipeline) defineProps(call, name sitter.Node) {
	var defaults []propDefault

	if p.api(call) == "withDefaults" {
		args := syntax.NamedChildren(syntax.Field(call, "arguments"))
		if len(args) == 0 {
			return
		}

		call = unwrap(args[0])

		if len(args) > 1 && unwrap(args[1]).Type() == "object" {
			for _, m := range members(unwrap(args[1])) {
				if key, ok := p.propertyKey(m); ok {
					value := p.render(valueOf(m))
					if f, isFn := functionOf(valueOf(m)); isFn {
						value = "(" + p.arrow(f) + ")()"
					}

					defaults = append(defaults, propDefault{name: key, value: value})
				}
			}
		}
	}

	args := syntax.NamedChildren(syntax.Field(call, "arguments"))

	switch {
	case len(args) > 0:
		defaults = append(defaults, p.runtimeProps(unwrap(args[0]))...)
	default:
		for _, prop := range p.typeProps(call) {
			p.register(symbols.KindProp, prop)
		}
	}

	p.mergeDefaults(defaults)

	if name.IsNull() {
		return
	}

	if local := p.text(name); local != p.syms.PropsBinding {
		p.sink.AppendStatement(fmt.Sprintf("const %s = %s;", local, p.syms.PropsBinding))
	}
}

func (p *Pipeline) runtimeProps(decl sitter.Node) []propDefault {
	var defaults []propDefault

	switch decl.Type() {
	case "array":
		for _, prop := range p.stringItems(decl) {
			p.register(symbols.KindProp, prop)
		}
	case "object":
		for _, m := range members(decl) {
			prop, ok := p.propertyKey(m)
			if !ok || !p.register(symbols.KindProp, prop) {
				continue
			}

			if d, ok := p.propDefault(valueOf(m)); ok {
				defaults = append(defaults, propDefault{name: prop, value: d})
			}
		}
	}

	return defaults
}

// typeProps lists the property names of a props type argument: an inline
// object type or a reference to an interface or type alias in the block.
func (p *Pipeline) typeProps(call sitter.Node) []string {
	typeArgs := syntax.Field(call, "type_arguments")
	if typeArgs.IsNull() {
		typeArgs = syntax.FirstOfType(call, "type_arguments")
	}

	if typeArgs.IsNull() || typeArgs.NamedChildCount() == 0 {
		return nil
	}

	arg := typeArgs.NamedChild(0)
	if arg.Type() == "type_identifier" {
		arg = p.typeDeclaration(p.text(arg))
	}

	var out []string

	syntax.Walk(arg, func(n sitter.Node) bool {
		if n.Type() == "property_signature" {
			if key := syntax.Field(n, "name"); !key.IsNull() {
				out = append(out, unquote(p.text(key)))
			}

			return false
		}

		return true
	})

	return out
}

func (p *Pipeline) typeDeclaration(name string) sitter.Node {
	for _, stmt := range syntax.NamedChildren(p.root) {
		if stmt.Type() == "export_statement" {
			stmt = syntax.Field(stmt, "declaration")
		}

		switch stmt.Type() {
		case "interface_declaration":
			if p.text(syntax.Field(stmt, "name")) == name {
				return syntax.Field(stmt, "body")
			}
		case "type_alias_declaration":
			if p.text(syntax.Field(stmt, "name")) == name {
				return syntax.Field(stmt, "value")
			}
		}
	}

	return sitter.Node{}
}

// defineEmits records declared events from an array, an object or a
// call-signature type argument.
func (p *Pipeline) defineEmits(call sitter.Node) {
	args := syntax.NamedChildren(syntax.Field(call, "arguments"))
	if len(args) > 0 {
		p.emits(unwrap(args[0]))

		return
	}

	typeArgs := syntax.FirstOfType(call, "type_arguments")

	syntax.Walk(typeArgs, func(n sitter.Node) bool {
		var event string

		switch n.Type() {
		case "call_signature":
			params := syntax.NamedChildren(syntax.Field(n, "parameters"))
			if len(params) > 0 {
				if lit := syntax.FindDescendant(params[0], "literal_type"); !lit.IsNull() {
					event = unquote(p.text(lit))
				}
			}
		case "property_signature":
			event = unquote(p.text(syntax.Field(n, "name")))
		default:
			return true
		}

		if event != "" && !slices.Contains(p.syms.Emits, event) {
			p.syms.Emits = append(p.syms.Emits, event)
		}

		return false
	})
}

// emitBinding declares the emit function under the user's chosen name.
func (p *Pipeline) emitBinding(name sitter.Node) {
	local := p.text(name)
	if local == p.res.EmitBinding() {
		return
	}

	p.sink.AppendStatement(fmt.Sprintf("const %s = emit;", local))
}
