package script

import (
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// shadowAssignments gives every instance field that is assigned but never
// declared a backing reference, so reads and writes of it agree.
func (p *Pipeline) shadowAssignments(obj sitter.Node) {
	aliases := make(map[string]bool)

	syntax.Walk(obj, func(n sitter.Node) bool {
		if n.Type() == "variable_declarator" {
			name, value := syntax.Field(n, "name"), syntax.Field(n, "value")
			if name.Type() == "identifier" && !value.IsNull() && value.Type() == "this" {
				aliases[p.text(name)] = true
			}
		}

		return true
	})

	syntax.Walk(obj, func(n sitter.Node) bool {
		var target sitter.Node

		switch n.Type() {
		case "class_declaration", "class":
			return false
		case "assignment_expression", "augmented_assignment_expression":
			target = syntax.Field(n, "left")
		case "update_expression":
			target = syntax.Field(n, "argument")
		default:
			return true
		}

		if name, ok := p.instanceField(target, aliases); ok {
			p.shadow(name)
		}

		return true
	})
}

func (p *Pipeline) instanceField(n sitter.Node, aliases map[string]bool) (string, bool) {
	n = unwrap(n)
	if n.Type() != "member_expression" {
		return "", false
	}

	object := syntax.Field(n, "object")
	property := syntax.Field(n, "property")

	isInstance := object.Type() == "this" || (object.Type() == "identifier" && aliases[p.text(object)])
	if !isInstance || property.Type() != "property_identifier" {
		return "", false
	}

	return p.text(property), true
}

func (p *Pipeline) shadow(name string) {
	if strings.HasPrefix(name, "$") || p.syms.Classify(name) != symbols.KindNone || p.syms.IsGlobalProperty(name) {
		return
	}

	if _, ok := p.syms.SelfAlias(name); ok {
		return
	}

	ref := name + "Ref"
	if err := p.syms.AddSelfAlias(name, ref); err != nil {
		return
	}

	p.sink.Once("reference:"+name, func() string {
		p.syms.AddAdapterImport("useReference")

		return fmt.Sprintf("const %s = useReference();", ref)
	})
}
