package script

import (
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// storeBinding is one name produced by a store map helper.
type storeBinding struct {
	local  string
	target string
	// fn is set for mapState entries given as functions of the state.
	fn sitter.Node
}

// storeCall recognizes `...mapX([namespace,] names)` and returns the
// canonical helper name, the namespace and the bindings.
func (p *Pipeline) storeCall(spread sitter.Node) (string, string, []storeBinding, bool) {
	call := unwrap(spread.NamedChild(0))
	if call.Type() != "call_expression" {
		return "", "", nil, false
	}

	helper, ok := p.vuex[p.text(syntax.Field(call, "function"))]
	if !ok {
		return "", "", nil, false
	}

	args := syntax.NamedChildren(syntax.Field(call, "arguments"))

	namespace := ""
	if len(args) > 1 && args[0].Type() == "string" {
		namespace = unquote(p.text(args[0]))
		args = args[1:]
	}

	if len(args) == 0 {
		return "", "", nil, false
	}

	var bindings []storeBinding

	switch list := unwrap(args[0]); list.Type() {
	case "array":
		for _, name := range p.stringItems(list) {
			bindings = append(bindings, storeBinding{local: name, target: name})
		}
	case "object":
		for _, m := range members(list) {
			local, ok := p.propertyKey(m)
			if !ok {
				continue
			}

			value := valueOf(m)
			if value.Type() == "string" {
				bindings = append(bindings, storeBinding{local: local, target: unquote(p.text(value))})
			} else if _, isFn := functionOf(value); isFn {
				bindings = append(bindings, storeBinding{local: local, fn: value})
			}
		}
	default:
		return "", "", nil, false
	}

	return helper, namespace, bindings, true
}

func (p *Pipeline) store() string {
	binding, _ := p.res.Lookup("$store")

	return binding
}

// storeComputed lowers mapState and mapGetters into computed values.
func (p *Pipeline) storeComputed(spread sitter.Node) bool {
	helper, namespace, bindings, ok := p.storeCall(spread)
	if !ok || (helper != "mapState" && helper != "mapGetters") {
		return false
	}

	for _, b := range bindings {
		if !p.register(symbols.KindComputed, b.local) {
			continue
		}

		p.syms.AddAdapterImport("useComputed")
		p.later(func() string {
			var read string

			switch {
			case helper == "mapGetters" && namespace != "":
				read = fmt.Sprintf("%s.getters[%s]", p.store(), markup.JSString(namespace+"/"+b.target))
			case helper == "mapGetters":
				read = p.store() + ".getters." + b.target
			case b.fn.IsNull():
				read = p.storeState(namespace) + "." + b.target
			default:
				read = fmt.Sprintf("(%s)(%s)", p.render(b.fn), p.storeState(namespace))
			}

			return fmt.Sprintf("const %s = useComputed(() => %s);", b.local, read)
		})
	}

	return true
}

func (p *Pipeline) storeState(namespace string) string {
	state := p.store() + ".state"
	if namespace != "" {
		state += "." + namespace
	}

	return state
}

// storeMethods lowers mapActions and mapMutations into dispatching functions.
func (p *Pipeline) storeMethods(spread sitter.Node) bool {
	helper, namespace, bindings, ok := p.storeCall(spread)
	if !ok || (helper != "mapActions" && helper != "mapMutations") {
		return false
	}

	verb := "dispatch"
	if helper == "mapMutations" {
		verb = "commit"
	}

	for _, b := range bindings {
		if b.target == "" || !p.register(symbols.KindMethod, b.local) {
			continue
		}

		target := b.target
		if namespace != "" {
			target = namespace + "/" + target
		}

		p.later(func() string {
			return fmt.Sprintf("function %s(...args) { return %s.%s(%s, ...args); }",
				b.local, p.store(), verb, markup.JSString(target))
		})
	}

	return true
}
