package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// Expression rewrites a template expression; locals are names bound by
// enclosing loops or slot scopes.
func (r *Resolver) Expression(text string, locals ...string) (string, error) {
	return r.Expr(text, Options{Mode: ModeTemplate, Locals: locals})
}

// Statements rewrites an inline template statement list such as an event handler body.
func (r *Resolver) Statements(text string, locals ...string) (string, error) {
	return r.Stmts(text, Options{Mode: ModeTemplate, Locals: locals})
}

// Expr parses text as a single expression and rewrites it.
func (r *Resolver) Expr(text string, opts Options) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}

	if captured, ok := r.standIns[trimmed]; ok && opts.Mode == ModeTemplate && !slices.Contains(opts.Locals, trimmed) {
		return r.Expr(captured, opts)
	}

	wrapped := "(" + trimmed + "\n)"

	return r.rewriteText(wrapped, 1, 1+len(trimmed), opts)
}

// Stmts parses text as a statement list and rewrites it.
func (r *Resolver) Stmts(text string, opts Options) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}

	return r.rewriteText(trimmed, 0, len(trimmed), opts)
}

func (r *Resolver) rewriteText(src string, start, end int, opts Options) (string, error) {
	tree, err := syntax.Parse(context.Background(), r.lang, []byte(src))
	if err != nil {
		return src[start:end], err
	}
	defer tree.Close()

	if tree.HasError() {
		return src[start:end], fmt.Errorf("%w: %s", ErrSyntax, src[start:end])
	}

	w := r.newWalker(tree.Source, opts)
	w.visit(tree.Root)

	return w.ed.Span(start, end), nil
}

// Node rewrites a subtree of an already parsed script and returns its text.
func (r *Resolver) Node(n sitter.Node, src []byte, opts Options) string {
	w := r.newWalker(src, opts)
	w.visit(n)

	return w.ed.Span(syntax.Start(n), syntax.End(n))
}

type walker struct {
	r       *Resolver
	opts    Options
	src     []byte
	ed      *syntax.Editor
	scopes  []map[string]bool
	aliases map[string]bool
	inClass int
}

func (r *Resolver) newWalker(src []byte, opts Options) *walker {
	root := make(map[string]bool, len(opts.Locals))
	for _, l := range opts.Locals {
		root[l] = true
	}

	return &walker{
		r:       r,
		opts:    opts,
		src:     src,
		ed:      syntax.NewEditor(src),
		scopes:  []map[string]bool{root},
		aliases: make(map[string]bool),
	}
}

func (w *walker) text(n sitter.Node) string {
	return syntax.Text(n, w.src)
}

func (w *walker) push() {
	w.scopes = append(w.scopes, make(map[string]bool))
}

func (w *walker) pop() {
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *walker) declare(name string) {
	w.scopes[len(w.scopes)-1][name] = true
}

func (w *walker) bound(name string) bool {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if w.scopes[i][name] {
			return true
		}
	}

	return false
}

var skippedTypes = map[string]bool{
	"comment":                     true,
	"string":                      true,
	"number":                      true,
	"regex":                       true,
	"property_identifier":         true,
	"private_property_identifier": true,
	"statement_identifier":        true,
	"type_identifier":             true,
	"type_annotation":             true,
	"type_arguments":              true,
	"type_parameters":             true,
	"interface_declaration":       true,
	"type_alias_declaration":      true,
	"predefined_type":             true,
	"import_statement":            true,
	"hash_bang_line":              true,
}

func (w *walker) visitChildren(n sitter.Node) {
	for idx := range n.NamedChildCount() {
		w.visit(n.NamedChild(idx))
	}
}

func (w *walker) visit(n sitter.Node) {
	if n.IsNull() {
		return
	}

	typ := n.Type()
	if skippedTypes[typ] {
		return
	}

	switch typ {
	case "identifier":
		w.identifier(n)
	case "shorthand_property_identifier":
		w.shorthand(n)
	case "this":
		w.this(n)
	case "member_expression":
		w.member(n)
	case "subscript_expression":
		w.subscript(n)
	case "call_expression":
		w.call(n)
	case "arrow_function", "function_expression", "function", "generator_function",
		"function_declaration", "generator_function_declaration", "method_definition":
		w.function(n)
	case "lexical_declaration", "variable_declaration":
		w.declaration(n)
	case "variable_declarator":
		w.declarator(n)
	case "statement_block", "for_statement":
		w.push()
		w.visitChildren(n)
		w.pop()
	case "for_in_statement":
		w.forIn(n)
	case "catch_clause":
		w.push()
		w.pattern(syntax.Field(n, "parameter"))
		w.visit(syntax.Field(n, "body"))
		w.pop()
	case "class_declaration", "class":
		w.class(n)
	case "pair":
		if key := syntax.Field(n, "key"); key.Type() == "computed_property_name" {
			w.visit(key)
		}

		w.visit(syntax.Field(n, "value"))
	case "as_expression", "satisfies_expression":
		if n.NamedChildCount() > 0 {
			w.visit(n.NamedChild(0))
		}
	default:
		w.visitChildren(n)
	}
}

func (w *walker) identifier(n sitter.Node) {
	name := w.text(n)

	if w.bound(name) {
		return
	}

	if rename, ok := w.opts.Renames[name]; ok {
		w.ed.Replace(syntax.Start(n), syntax.End(n), rename)

		return
	}

	if w.opts.Mode == ModeScript {
		if w.aliases[name] {
			w.ed.Replace(syntax.Start(n), syntax.End(n), w.r.InstanceBinding())
		}

		return
	}

	if name == "$event" {
		w.ed.Replace(syntax.Start(n), syntax.End(n), "event")

		return
	}

	if captured, ok := w.r.standIns[name]; ok {
		res, err := w.r.Expr(captured, Options{Mode: ModeTemplate, Locals: w.locals()})
		if err != nil {
			w.r.rep.Warn(diag.CodeExpression, "cannot rewrite expression %q: %v", captured, err)
		}

		w.ed.Replace(syntax.Start(n), syntax.End(n), "("+res+")")

		return
	}

	if res, ok := w.r.Lookup(name); ok && res != name {
		w.ed.Replace(syntax.Start(n), syntax.End(n), res)
	}
}

func (w *walker) locals() []string {
	var out []string

	for _, scope := range w.scopes {
		for name := range scope {
			out = append(out, name)
		}
	}

	return out
}

func (w *walker) shorthand(n sitter.Node) {
	if w.opts.Mode != ModeTemplate {
		return
	}

	name := w.text(n)
	if w.bound(name) {
		return
	}

	if res, ok := w.r.Lookup(name); ok && res != name {
		w.ed.Replace(syntax.Start(n), syntax.End(n), name+": "+res)
	}
}

func (w *walker) isInstance(n sitter.Node) bool {
	if w.opts.Mode != ModeScript {
		return false
	}

	switch n.Type() {
	case "this":
		return w.inClass == 0
	case "identifier":
		return w.aliases[w.text(n)]
	}

	return false
}

func (w *walker) this(n sitter.Node) {
	if w.isInstance(n) {
		w.ed.Replace(syntax.Start(n), syntax.End(n), w.r.InstanceBinding())
	}
}

func (w *walker) member(n sitter.Node) {
	object := syntax.Field(n, "object")
	property := syntax.Field(n, "property")

	if w.isInstance(object) && property.Type() == "property_identifier" {
		w.ed.Replace(syntax.Start(n), syntax.End(n), w.r.Instance(w.text(property)))

		return
	}

	w.visit(object)
}

func (w *walker) subscript(n sitter.Node) {
	object := syntax.Field(n, "object")

	if w.isInstance(object) {
		w.ed.Replace(syntax.Start(object), syntax.End(object), w.r.InstanceBinding())
	} else {
		w.visit(object)
	}

	w.visit(syntax.Field(n, "index"))
}

// builtinCallee returns the $-name of a built-in method call, or "".
func (w *walker) builtinCallee(fn sitter.Node) string {
	switch fn.Type() {
	case "identifier":
		name := w.text(fn)
		if w.opts.Mode == ModeTemplate && strings.HasPrefix(name, "$") && !w.bound(name) {
			return name
		}
	case "member_expression":
		property := syntax.Field(fn, "property")
		if w.isInstance(syntax.Field(fn, "object")) && strings.HasPrefix(w.text(property), "$") {
			return w.text(property)
		}
	}

	return ""
}

func (w *walker) call(n sitter.Node) {
	fn := syntax.Field(n, "function")
	args := syntax.Field(n, "arguments")

	switch w.builtinCallee(fn) {
	case "$emit":
		w.lowerCall(n, args, w.emitCall)

		return
	case "$set":
		w.lowerCall(n, args, func(parts []string) string {
			if len(parts) < 3 {
				return ""
			}

			return fmt.Sprintf("(%s[%s] = %s)", parts[0], parts[1], parts[2])
		})

		return
	case "$delete":
		w.lowerCall(n, args, func(parts []string) string {
			if len(parts) < 2 {
				return ""
			}

			return fmt.Sprintf("delete %s[%s]", parts[0], parts[1])
		})

		return
	case "$watch":
		w.r.rep.Warn(diag.CodeUnsupportedForm, "imperative $watch is not converted; use a watch option instead")
	}

	w.visit(fn)
	w.visit(args)
}

// lowerCall rewrites the arguments, then replaces the whole call with build's
// output. An empty result keeps the call untouched.
func (w *walker) lowerCall(n, args sitter.Node, build func([]string) string) {
	var parts []string

	for _, arg := range syntax.NamedChildren(args) {
		if arg.Type() == "comment" {
			continue
		}

		w.visit(arg)
		parts = append(parts, w.ed.Span(syntax.Start(arg), syntax.End(arg)))
	}

	if out := build(parts); out != "" {
		w.ed.Replace(syntax.Start(n), syntax.End(n), out)
	}
}

func (w *walker) emitCall(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	event, ok := unquote(parts[0])
	if !ok {
		return fmt.Sprintf("%s(%s)", w.r.EmitBinding(), strings.Join(parts, ", "))
	}

	syms := w.r.Context()
	if !slices.Contains(syms.Emits, event) {
		syms.Emits = append(syms.Emits, event)
	}

	return fmt.Sprintf("%s.%s?.(%s)", syms.PropsBinding, HandlerProp(event), strings.Join(parts[1:], ", "))
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"' || s[0] == '`') && s[len(s)-1] == s[0] {
		inner := s[1 : len(s)-1]
		if s[0] == '`' && strings.Contains(inner, "${") {
			return "", false
		}

		return inner, true
	}

	return "", false
}

func (w *walker) function(n sitter.Node) {
	name := syntax.Field(n, "name")
	declared := n.Type() == "function_declaration" || n.Type() == "generator_function_declaration"

	if declared && !name.IsNull() {
		w.declare(w.text(name))
	}

	if n.Type() == "method_definition" {
		if key := name; key.Type() == "computed_property_name" {
			w.visit(key)
		}
	}

	w.push()

	if !declared && !name.IsNull() && n.Type() != "method_definition" {
		w.declare(w.text(name))
	}

	if param := syntax.Field(n, "parameter"); !param.IsNull() {
		w.pattern(param)
	}

	if params := syntax.Field(n, "parameters"); !params.IsNull() {
		w.pattern(params)
	}

	w.visit(syntax.Field(n, "body"))
	w.pop()
}

// declaration handles `const vm = this` aliases in script mode: the alias is
// recorded and the declaration removed.
func (w *walker) declaration(n sitter.Node) {
	if w.opts.Mode == ModeScript && w.inClass == 0 {
		declarators := syntax.NamedChildren(n)
		allAliases := len(declarators) > 0

		for _, d := range declarators {
			if d.Type() != "variable_declarator" || !w.isThisAlias(d) {
				allAliases = false

				break
			}
		}

		if allAliases {
			for _, d := range declarators {
				w.aliases[w.text(syntax.Field(d, "name"))] = true
			}

			w.ed.Delete(syntax.Start(n), w.deletionEnd(n))

			return
		}
	}

	w.visitChildren(n)
}

func (w *walker) isThisAlias(d sitter.Node) bool {
	value := syntax.Field(d, "value")
	name := syntax.Field(d, "name")

	return !value.IsNull() && value.Type() == "this" && name.Type() == "identifier"
}

// deletionEnd extends a removal over the trailing newline so no blank line remains.
func (w *walker) deletionEnd(n sitter.Node) int {
	end := syntax.End(n)

	for end < len(w.src) && (w.src[end] == ' ' || w.src[end] == '\t') {
		end++
	}

	if end < len(w.src) && w.src[end] == '\n' {
		end++

		for end < len(w.src) && (w.src[end] == ' ' || w.src[end] == '\t') {
			end++
		}
	}

	return end
}

func (w *walker) declarator(n sitter.Node) {
	w.pattern(syntax.Field(n, "name"))
	w.visit(syntax.Field(n, "value"))
}

func (w *walker) forIn(n sitter.Node) {
	w.push()

	left := syntax.Field(n, "left")
	if syntax.HasToken(n, "const") || syntax.HasToken(n, "let") || syntax.HasToken(n, "var") {
		w.pattern(left)
	} else {
		w.visit(left)
	}

	w.visit(syntax.Field(n, "right"))
	w.visit(syntax.Field(n, "body"))
	w.pop()
}

func (w *walker) class(n sitter.Node) {
	if name := syntax.Field(n, "name"); !name.IsNull() && n.Type() == "class_declaration" {
		w.declare(w.text(name))
	}

	w.inClass++
	w.visit(syntax.Field(n, "body"))
	w.inClass--
}

// pattern declares the names bound by a binding pattern and rewrites any
// default values or computed keys inside it.
func (w *walker) pattern(n sitter.Node) {
	if n.IsNull() {
		return
	}

	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		w.declare(w.text(n))
	case "object_pattern", "array_pattern", "formal_parameters":
		for _, child := range syntax.NamedChildren(n) {
			w.pattern(child)
		}
	case "pair_pattern":
		if key := syntax.Field(n, "key"); key.Type() == "computed_property_name" {
			w.visit(key)
		}

		w.pattern(syntax.Field(n, "value"))
	case "assignment_pattern", "object_assignment_pattern":
		w.pattern(syntax.Field(n, "left"))
		w.visit(syntax.Field(n, "right"))
	case "rest_pattern":
		if n.NamedChildCount() > 0 {
			w.pattern(n.NamedChild(0))
		}
	case "required_parameter", "optional_parameter":
		w.pattern(syntax.Field(n, "pattern"))
		w.visit(syntax.Field(n, "value"))
	case "comment":
	default:
		w.visit(n)
	}
}
