// Package script converts a component's script block into statements of the
// target function component. Options-style objects are dispatched option by
// option in a fixed order; composition-style blocks are walked statement by
// statement. Both register every declared name in the symbol context before
// the template is converted.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// Fatal script errors.
var (
	ErrScriptParse        = errors.New("script does not parse")
	ErrDataNotObject      = errors.New("data must return an object literal")
	ErrUnsupportedOptions = errors.New("default export is not an options object")
)

// DefaultTargetExtension replaces .vue in rewritten import specifiers.
const DefaultTargetExtension = ".jsx"

// Sink receives the statements produced for the component.
type Sink interface {
	resolve.Acquirer
	AppendStatement(stmt string)
	PrependStatement(stmt string)
	AppendModuleStatement(stmt string)
}

// Options tunes a pipeline.
type Options struct {
	Language        syntax.Language
	TargetExtension string
}

// Pipeline converts one script block. It is not safe for concurrent use.
type Pipeline struct {
	syms *symbols.Context
	res  *resolve.Resolver
	sink Sink
	rep  *diag.Reporter
	opts Options

	src  []byte
	root sitter.Node

	// apis maps local names of imported framework APIs to their canonical name.
	apis map[string]string
	// renames maps those local names to the adapter export that replaces them.
	renames map[string]string
	// vuex maps local names of store helpers to their canonical name.
	vuex map[string]string

	pending []func() string
}

// New returns a pipeline writing into sink.
func New(syms *symbols.Context, res *resolve.Resolver, sink Sink, rep *diag.Reporter, opts Options) *Pipeline {
	if opts.Language == "" {
		opts.Language = syntax.JavaScript
	}

	if opts.TargetExtension == "" {
		opts.TargetExtension = DefaultTargetExtension
	}

	return &Pipeline{
		syms:    syms,
		res:     res,
		sink:    sink,
		rep:     rep,
		opts:    opts,
		apis:    make(map[string]string),
		renames: make(map[string]string),
		vuex:    make(map[string]string),
	}
}

// Run converts src according to the context's script style.
func (p *Pipeline) Run(ctx context.Context, src string) error {
	tree, err := p.parse(ctx, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	p.res.SetLanguage(p.opts.Language)

	if p.syms.Style == symbols.StyleComposition {
		return p.composition()
	}

	return p.options()
}

// RunModule converts the plain script that accompanies a composition-style
// block: imports and declarations stay at module scope, and a default export
// may only contribute the component name.
func (p *Pipeline) RunModule(ctx context.Context, src string) error {
	tree, err := p.parse(ctx, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	for _, stmt := range syntax.NamedChildren(p.root) {
		switch stmt.Type() {
		case "import_statement":
			p.importStatement(stmt)
		case "export_statement":
			if !syntax.HasToken(stmt, "default") {
				p.sink.AppendModuleStatement(p.text(stmt))

				continue
			}

			obj, objErr := p.exportedObject(stmt)
			if objErr != nil {
				return objErr
			}

			p.moduleOptions(obj)
		default:
			p.sink.AppendModuleStatement(p.text(stmt))
		}
	}

	return nil
}

func (p *Pipeline) parse(ctx context.Context, src string) (*syntax.Tree, error) {
	tree, err := syntax.Parse(ctx, p.opts.Language, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptParse, err)
	}

	if tree.HasError() {
		line := errorLine(tree.Root)
		tree.Close()

		return nil, fmt.Errorf("%w: near line %d", ErrScriptParse, line)
	}

	p.src = tree.Source
	p.root = tree.Root

	return tree, nil
}

func errorLine(root sitter.Node) int {
	line := 0

	syntax.Walk(root, func(n sitter.Node) bool {
		if line > 0 {
			return false
		}

		missing := !n.IsNamed() && n.ChildCount() == 0 && n.StartByte() == n.EndByte()
		if n.Type() == "ERROR" || missing {
			line = int(n.StartPoint().Row) + 1 //nolint:gosec // tree-sitter coordinates fit in int

			return false
		}

		return true
	})

	return line
}

func (p *Pipeline) text(n sitter.Node) string {
	return syntax.Text(n, p.src)
}

// render rewrites instance access inside n.
func (p *Pipeline) render(n sitter.Node) string {
	return p.res.Node(n, p.src, resolve.Options{Mode: resolve.ModeScript, Renames: p.renames})
}

// instance resolves a dotted instance path such as "a.b" through the resolver.
func (p *Pipeline) instance(path string) string {
	out, err := p.res.Expr("this."+path, resolve.Options{Mode: resolve.ModeScript})
	if err != nil {
		p.rep.Warn(diag.CodeExpression, "watch source %q kept as written: %v", path, err)
	}

	return out
}

func (p *Pipeline) later(render func() string) {
	p.pending = append(p.pending, render)
}

func (p *Pipeline) flush() {
	for _, render := range p.pending {
		p.sink.AppendStatement(render())
	}

	p.pending = nil
}

func (p *Pipeline) register(kind symbols.Kind, name string) bool {
	if err := p.syms.Register(kind, name); err != nil {
		p.rep.Warn(diag.CodeDuplicateSymbol, "%s %q ignored: %v", kind, name, err)

		return false
	}

	return true
}

func (p *Pipeline) registerReactive(name string) bool {
	if err := p.syms.RegisterReactive(name, p.syms.StateContainer); err != nil {
		p.rep.Warn(diag.CodeDuplicateSymbol, "data field %q ignored: %v", name, err)

		return false
	}

	return true
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"' || s[0] == '`') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}

	return s
}

func unwrap(n sitter.Node) sitter.Node {
	for !n.IsNull() && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}

	return n
}

// kebab converts a camelCase name to kebab-case.
func kebab(s string) string {
	var sb strings.Builder

	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}

			sb.WriteRune(r + ('a' - 'A'))

			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
