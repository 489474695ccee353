package markup

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// ErrTemplateParse is returned when the preprocessed template does not parse.
var ErrTemplateParse = errors.New("template parse error")

var standInPattern = regexp.MustCompile(regexp.QuoteMeta(resolve.StandInPrefix) + `\d+__`)

// Parse builds a tree from template markup. Interpolations are captured into
// stand-in identifiers first so the markup grammar never sees expression text.
func Parse(ctx context.Context, template string) (*Tree, error) {
	b := &builder{tree: NewTree(), literal: make(map[string]string)}

	src := b.preprocess(template)

	parsed, err := syntax.Parse(ctx, syntax.HTML, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateParse, err)
	}
	defer parsed.Close()

	if parsed.HasError() {
		return nil, ErrTemplateParse
	}

	b.src = parsed.Source
	b.content(b.tree.Root, parsed.Root, 0, len(b.src), false)

	if b.err != nil {
		return nil, b.err
	}

	return b.tree, nil
}

type builder struct {
	tree    *Tree
	src     []byte
	literal map[string]string
	err     error
}

// preprocess replaces every {{ ... }} in text content with a stand-in
// identifier. Tags and comments are copied untouched.
func (b *builder) preprocess(template string) string {
	var sb strings.Builder

	for i := 0; i < len(template); {
		switch {
		case strings.HasPrefix(template[i:], "<!--"):
			end := strings.Index(template[i+4:], "-->")
			if end < 0 {
				sb.WriteString(template[i:])

				return sb.String()
			}

			sb.WriteString(template[i : i+4+end+3])
			i += 4 + end + 3
		case template[i] == '<' && i+1 < len(template) && isTagStart(template[i+1]):
			end := tagEnd(template, i)
			sb.WriteString(template[i:end])
			i = end
		case strings.HasPrefix(template[i:], "{{"):
			end := strings.Index(template[i+2:], "}}")
			if end < 0 {
				sb.WriteString(template[i:])

				return sb.String()
			}

			inner := template[i+2 : i+2+end]
			sb.WriteString(b.capture(inner))
			i += 2 + end + 2
		default:
			sb.WriteByte(template[i])
			i++
		}
	}

	return sb.String()
}

func (b *builder) capture(inner string) string {
	name := resolve.StandInPrefix + strconv.Itoa(len(b.tree.StandIns)) + "__"
	b.tree.StandIns[name] = LowerFilters(strings.TrimSpace(inner))
	b.literal[name] = inner

	return name
}

func isTagStart(c byte) bool {
	return c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tagEnd returns the offset just past the '>' closing the tag at start,
// skipping quoted attribute values.
func tagEnd(s string, start int) int {
	var quote byte

	for i := start + 1; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}

	return len(s)
}

func (b *builder) content(parent NodeID, container sitter.Node, start, end int, pre bool) {
	cursor := start

	for _, child := range syntax.NamedChildren(container) {
		if syntax.Start(child) < start || syntax.End(child) > end {
			continue
		}

		switch child.Type() {
		case "element", "script_element", "style_element":
			b.text(parent, cursor, syntax.Start(child), pre)
			b.element(parent, child, pre)
			cursor = syntax.End(child)
		case "comment", "doctype":
			b.text(parent, cursor, syntax.Start(child), pre)
			cursor = syntax.End(child)
		case "erroneous_end_tag":
			if b.err == nil {
				b.err = fmt.Errorf("%w: unexpected %s", ErrTemplateParse, syntax.Text(child, b.src))
			}

			cursor = syntax.End(child)
		}
	}

	b.text(parent, cursor, end, pre)
}

func (b *builder) element(parent NodeID, n sitter.Node, pre bool) {
	tag := syntax.FirstOfType(n, "start_tag")
	selfClosing := false

	if tag.IsNull() {
		tag = syntax.FirstOfType(n, "self_closing_tag")
		selfClosing = true
	}

	if tag.IsNull() {
		return
	}

	id := b.tree.NewElement(syntax.Text(syntax.FirstOfType(tag, "tag_name"), b.src))
	node := b.tree.Node(id)
	node.Attrs = b.attributes(tag)
	node.Pre = pre

	if node.RemoveAttr("v-pre") != nil {
		node.Pre = true
	}

	b.tree.AppendChild(parent, id)

	if selfClosing {
		return
	}

	contentEnd := syntax.End(n)
	if end := syntax.FirstOfType(n, "end_tag"); !end.IsNull() {
		contentEnd = syntax.Start(end)
	}

	if raw := syntax.FirstOfType(n, "raw_text"); !raw.IsNull() {
		b.tree.AppendChild(id, b.tree.NewText(syntax.Text(raw, b.src)))

		return
	}

	b.content(id, n, syntax.End(tag), contentEnd, node.Pre)
}

func (b *builder) attributes(tag sitter.Node) []*Attr {
	var attrs []*Attr

	for _, a := range syntax.NamedChildren(tag) {
		if a.Type() != "attribute" {
			continue
		}

		attr := &Attr{
			Kind:   AttrRaw,
			Name:   syntax.Text(syntax.FirstOfType(a, "attribute_name"), b.src),
			Render: NoNode,
		}

		if quoted := syntax.FirstOfType(a, "quoted_attribute_value"); !quoted.IsNull() {
			attr.HasValue = true
			attr.Value = html.UnescapeString(syntax.Text(syntax.FirstOfType(quoted, "attribute_value"), b.src))
		} else if bare := syntax.FirstOfType(a, "attribute_value"); !bare.IsNull() {
			attr.HasValue = true
			attr.Value = html.UnescapeString(syntax.Text(bare, b.src))
		}

		attrs = append(attrs, attr)
	}

	return attrs
}

// text splits the gap [start, end) into literal text and interpolation nodes.
func (b *builder) text(parent NodeID, start, end int, pre bool) {
	if start >= end {
		return
	}

	gap := string(b.src[start:end])

	if pre {
		restored := standInPattern.ReplaceAllStringFunc(gap, func(name string) string {
			return "{{" + b.literal[name] + "}}"
		})
		b.tree.AppendChild(parent, b.tree.NewText(restored))

		return
	}

	cursor := 0

	for _, loc := range standInPattern.FindAllStringIndex(gap, -1) {
		if loc[0] > cursor {
			b.tree.AppendChild(parent, b.tree.NewText(gap[cursor:loc[0]]))
		}

		b.tree.AppendChild(parent, b.tree.NewExpr(Pending(b.tree.StandIns[gap[loc[0]:loc[1]]])))
		cursor = loc[1]
	}

	if cursor < len(gap) {
		b.tree.AppendChild(parent, b.tree.NewText(gap[cursor:]))
	}
}

// LowerFilters rewrites a filter chain `value | fmt | pad(2)` into nested
// calls `pad(fmt(value), 2)`. Text without a top-level single pipe is returned as-is.
func LowerFilters(expr string) string {
	parts := splitPipes(expr)
	if len(parts) == 1 {
		return expr
	}

	out := strings.TrimSpace(parts[0])

	for _, filter := range parts[1:] {
		filter = strings.TrimSpace(filter)

		open := strings.IndexByte(filter, '(')
		if open > 0 && strings.HasSuffix(filter, ")") {
			name := strings.TrimSpace(filter[:open])

			if args := strings.TrimSpace(filter[open+1 : len(filter)-1]); args != "" {
				out = name + "(" + out + ", " + args + ")"
			} else {
				out = name + "(" + out + ")"
			}

			continue
		}

		out = filter + "(" + out + ")"
	}

	return out
}

func splitPipes(expr string) []string {
	var (
		parts []string
		depth int
		quote byte
		last  int
	)

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '|' && depth == 0:
			prevPipe := i > 0 && expr[i-1] == '|'
			nextPipe := i+1 < len(expr) && expr[i+1] == '|'

			if !prevPipe && !nextPipe {
				parts = append(parts, expr[last:i])
				last = i + 1
			}
		}
	}

	return append(parts, expr[last:])
}
