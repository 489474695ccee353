package script

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// frameworkSources are import sources whose bindings are replaced by the adapter.
var frameworkSources = map[string]bool{
	"vue": true, "@vue/composition-api": true, "@vue/runtime-core": true, "@vue/reactivity": true,
}

// adapterPackages re-home router and store imports under the adapter.
var adapterPackages = map[string]string{
	"vue-router": "/router",
	"vuex":       "/vuex",
}

var storeHelpers = map[string]bool{
	"mapState": true, "mapGetters": true, "mapActions": true, "mapMutations": true,
}

// frameworkAPIs maps framework exports to the adapter export replacing them.
// An empty replacement drops the binding.
var frameworkAPIs = map[string]string{
	"ref":             "useReference",
	"shallowRef":      "useReference",
	"customRef":       "useReference",
	"computed":        "useComputed",
	"reactive":        "useReactive",
	"shallowReactive": "useReactive",
	"readonly":        "useReadonly",
	"shallowReadonly": "useReadonly",
	"watch":           "useWatch",
	"watchEffect":     "useWatchEffect",
	"watchPostEffect": "useWatchEffect",
	"provide":         "useProvide",
	"inject":          "useInject",

	"getCurrentInstance": "useInstance",
	"useSlots":           "useSlots",
	"useAttrs":           "useAttrs",

	"onBeforeMount":   "onBeforeMount",
	"onMounted":       "onMounted",
	"onBeforeUpdate":  "onBeforeUpdate",
	"onUpdated":       "onUpdated",
	"onBeforeUnmount": "onBeforeUnmount",
	"onUnmounted":     "onUnmounted",
	"onActivated":     "onActivated",
	"onDeactivated":   "onDeactivated",
	"onErrorCaptured": "onErrorCaptured",

	"nextTick":   "nextTick",
	"toRef":      "toRef",
	"toRefs":     "toRefs",
	"unref":      "unref",
	"isRef":      "isRef",
	"toRaw":      "toRaw",
	"markRaw":    "markRaw",
	"triggerRef": "triggerRef",

	"defineComponent": "",
	"PropType":        "",
}

type specifier struct {
	name  string
	local string
	// kind is "default", "namespace" or "named".
	kind string
}

func (p *Pipeline) specifiers(n sitter.Node) []specifier {
	clause := syntax.FirstOfType(n, "import_clause")
	if clause.IsNull() {
		return nil
	}

	var out []specifier

	for _, child := range syntax.NamedChildren(clause) {
		switch child.Type() {
		case "identifier":
			out = append(out, specifier{name: "default", local: p.text(child), kind: "default"})
		case "namespace_import":
			if id := syntax.FirstOfType(child, "identifier"); !id.IsNull() {
				out = append(out, specifier{name: "*", local: p.text(id), kind: "namespace"})
			}
		case "named_imports":
			for _, spec := range syntax.NamedChildren(child) {
				if spec.Type() != "import_specifier" {
					continue
				}

				name := p.text(syntax.Field(spec, "name"))
				local := name

				if alias := syntax.Field(spec, "alias"); !alias.IsNull() {
					local = p.text(alias)
				}

				out = append(out, specifier{name: unquote(name), local: local, kind: "named"})
			}
		}
	}

	return out
}

// importStatement routes one import: framework bindings become adapter
// imports, router and store imports move under the adapter, component imports
// register the child component and point at the converted file.
func (p *Pipeline) importStatement(n sitter.Node) {
	source := syntax.Field(n, "source")
	from := unquote(p.text(source))
	typeOnly := syntax.HasToken(n, "type")

	switch {
	case frameworkSources[from]:
		if !typeOnly {
			p.frameworkImport(n)
		}
	case adapterPackages[from] != "":
		p.adapterPackageImport(n, p.syms.AdapterSource+adapterPackages[from])
	case strings.HasSuffix(from, ".vue"):
		for _, spec := range p.specifiers(n) {
			if spec.kind == "default" {
				p.syms.RegisterComponent(spec.local, spec.local)
			}
		}

		ed := syntax.NewEditor(p.src)
		ed.Replace(syntax.Start(source)+1, syntax.End(source)-1,
			strings.TrimSuffix(from, ".vue")+p.opts.TargetExtension)
		p.sink.AppendModuleStatement(ed.Span(syntax.Start(n), syntax.End(n)))
	case !typeOnly && (from == p.syms.AdapterSource || from == p.syms.FrameworkSource ||
		strings.HasPrefix(from, p.syms.AdapterSource+"/")):
		p.registryImport(n, from)
	default:
		p.sink.AppendModuleStatement(p.text(n))
	}
}

// registryImport merges an import of a package the converter itself imports
// from into the import registry, so each binding is declared once.
func (p *Pipeline) registryImport(n sitter.Node, source string) {
	specs := p.specifiers(n)
	if len(specs) == 0 {
		p.syms.AddSideEffectImport(source)

		return
	}

	for _, spec := range specs {
		switch {
		case spec.kind == "default":
			p.syms.AddImport(source, spec.local, true)
		case spec.kind == "namespace":
			p.syms.AddNamespaceImport(source, spec.local)
		case spec.local != spec.name:
			p.syms.AddAliasedImport(source, spec.name, spec.local)
		default:
			p.syms.AddImport(source, spec.name, false)
		}
	}
}

func (p *Pipeline) frameworkImport(n sitter.Node) {
	for _, spec := range p.specifiers(n) {
		if spec.kind != "named" {
			continue
		}

		p.apis[spec.local] = spec.name

		hook, known := frameworkAPIs[spec.name]

		switch {
		case !known:
			p.rep.Warn(diag.CodeUnsupportedForm, "framework export %q has no adapter mapping; imported from the adapter as is",
				spec.name)

			hook = spec.name
		case hook == "":
			continue
		}

		p.syms.AddAdapterImport(hook)

		if spec.local != hook {
			p.renames[spec.local] = hook
		}
	}
}

func (p *Pipeline) adapterPackageImport(n sitter.Node, source string) {
	for _, spec := range p.specifiers(n) {
		switch {
		case spec.kind == "named" && storeHelpers[spec.name]:
			p.vuex[spec.local] = spec.name
		case spec.kind == "named" && spec.local != spec.name:
			p.syms.AddAliasedImport(source, spec.name, spec.local)
		case spec.kind == "named":
			p.syms.AddImport(source, spec.name, false)
		case spec.kind == "namespace":
			p.syms.AddNamespaceImport(source, spec.local)
		}
	}
}
