package directive

import (
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
)

// normalizeTags renames child-component tags to their registered names.
func (e *Engine) normalizeTags() {
	for _, id := range e.elements() {
		n := e.tree.Node(id)
		if IsNativeTag(n.Tag) {
			continue
		}

		if target, ok := e.syms.ComponentFor(n.Tag); ok {
			n.Tag = target
		}
	}
}

// passThroughs substitutes the dynamic component tag and framework tags with
// adapter components, renaming attributes per the tag rule.
func (e *Engine) passThroughs() {
	for _, id := range e.elements() {
		n := e.tree.Node(id)

		if fold(n.Tag) == "component" && hasAnyAttr(n.Attrs, "is", ":is", "v-bind:is") {
			n.Tag = "DynamicComponent"
			e.syms.AddAdapterImport("DynamicComponent")

			continue
		}

		rule, ok := e.tags[fold(n.Tag)]
		if !ok {
			continue
		}

		n.Tag = rule.Tag
		if rule.Source != "" {
			e.syms.AddImport(rule.Source, rule.Tag, rule.Default)
		}

		for _, a := range n.Attrs {
			prefix, base := splitBindPrefix(a.Name)
			if renamed, ok := rule.Attrs[base]; ok {
				a.Name = prefix + renamed
			}
		}
	}
}

func hasAnyAttr(attrs []*markup.Attr, names ...string) bool {
	for _, a := range attrs {
		for _, name := range names {
			if a.Name == name {
				return true
			}
		}
	}

	return false
}

// splitBindPrefix separates a binding prefix from an attribute name.
func splitBindPrefix(name string) (string, string) {
	for _, prefix := range []string{"v-bind:", ":"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return prefix, rest
		}
	}

	return "", name
}
