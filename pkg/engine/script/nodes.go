package script

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/syntax"
)

// function is the shape shared by methods, function expressions and arrows.
type function struct {
	params    sitter.Node
	body      sitter.Node
	async     bool
	generator bool
	// expression is set for arrows with an expression body.
	expression bool
}

func functionOf(n sitter.Node) (function, bool) {
	n = unwrap(n)

	switch n.Type() {
	case "method_definition", "function_expression", "function", "generator_function", "arrow_function":
	default:
		return function{}, false
	}

	f := function{
		params:    syntax.Field(n, "parameters"),
		body:      syntax.Field(n, "body"),
		async:     syntax.HasToken(n, "async"),
		generator: syntax.HasToken(n, "*") || n.Type() == "generator_function",
	}

	if f.params.IsNull() {
		f.params = syntax.Field(n, "parameter")
	}

	f.expression = f.body.Type() != "statement_block"

	return f, !f.body.IsNull()
}

// members returns the property nodes of an object literal, skipping comments.
func members(obj sitter.Node) []sitter.Node {
	var out []sitter.Node

	for _, child := range syntax.NamedChildren(obj) {
		if child.Type() != "comment" {
			out = append(out, child)
		}
	}

	return out
}

// propertyKey returns the static key of an object member.
func (p *Pipeline) propertyKey(n sitter.Node) (string, bool) {
	var key sitter.Node

	switch n.Type() {
	case "shorthand_property_identifier":
		return p.text(n), true
	case "pair":
		key = syntax.Field(n, "key")
	case "method_definition":
		key = syntax.Field(n, "name")
	default:
		return "", false
	}

	switch key.Type() {
	case "property_identifier", "number", "private_property_identifier":
		return p.text(key), true
	case "string":
		return unquote(p.text(key)), true
	}

	return "", false
}

// valueOf returns the value carried by an object member. Methods are their
// own value.
func valueOf(n sitter.Node) sitter.Node {
	if n.Type() == "pair" {
		return unwrap(syntax.Field(n, "value"))
	}

	return n
}

// member returns the first member of obj with the given static key.
func (p *Pipeline) member(obj sitter.Node, name string) (sitter.Node, bool) {
	for _, m := range members(obj) {
		if key, ok := p.propertyKey(m); ok && key == name {
			return m, true
		}
	}

	return sitter.Node{}, false
}

func (p *Pipeline) params(f function) string {
	if f.params.IsNull() {
		return "()"
	}

	text := p.render(f.params)
	if f.params.Type() != "formal_parameters" {
		return "(" + text + ")"
	}

	return text
}

// arrow renders f as an arrow function, or as a function expression for
// generators.
func (p *Pipeline) arrow(f function) string {
	prefix := ""
	if f.async {
		prefix = "async "
	}

	if f.generator {
		return prefix + "function* " + p.params(f) + " " + p.render(f.body)
	}

	return prefix + p.params(f) + " => " + p.render(f.body)
}

// declaration renders f as a named function declaration.
func (p *Pipeline) declaration(name string, f function) string {
	prefix := ""
	if f.async {
		prefix = "async "
	}

	keyword := "function "
	if f.generator {
		keyword = "function* "
	}

	body := p.render(f.body)
	if f.expression {
		body = "{ return " + body + "; }"
	}

	return prefix + keyword + name + p.params(f) + " " + body
}

// returned splits a function body into the statements ahead of its final
// return and the returned expression. Expression-bodied arrows have no
// leading statements.
func returned(f function) ([]sitter.Node, sitter.Node) {
	if f.expression {
		return nil, unwrap(f.body)
	}

	var (
		lead []sitter.Node
		ret  sitter.Node
	)

	for _, stmt := range syntax.NamedChildren(f.body) {
		if stmt.Type() == "return_statement" {
			ret = stmt

			break
		}

		if stmt.Type() != "comment" {
			lead = append(lead, stmt)
		}
	}

	if ret.IsNull() || ret.NamedChildCount() == 0 {
		return lead, sitter.Node{}
	}

	return lead, unwrap(ret.NamedChild(0))
}

// stringItems returns the values of string literals in an array literal.
func (p *Pipeline) stringItems(arr sitter.Node) []string {
	var out []string

	for _, item := range syntax.NamedChildren(arr) {
		if item.Type() == "string" {
			out = append(out, unquote(p.text(item)))
		}
	}

	return out
}
