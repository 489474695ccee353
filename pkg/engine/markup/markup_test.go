package markup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
)

func TestParse_InterpolationAndAttributes(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), `<div class="a" :title="tip">Hello {{ name }}!</div>`)
	require.NoError(t, err)

	root := tree.Node(tree.Root)
	require.Len(t, root.Children, 1)

	div := tree.Node(root.Children[0])
	assert.Equal(t, markup.KindElement, div.Kind)
	assert.Equal(t, "div", div.Tag)
	require.Len(t, div.Attrs, 2)
	assert.Equal(t, ":title", div.Attrs[1].Name)
	assert.Equal(t, "tip", div.Attrs[1].Value)

	require.Len(t, div.Children, 3)
	assert.Equal(t, "Hello ", tree.Node(div.Children[0]).Text)
	assert.Equal(t, markup.KindExpr, tree.Node(div.Children[1]).Kind)
	assert.Equal(t, "name", tree.Node(div.Children[1]).Expr.Text)
	assert.Len(t, tree.StandIns, 1)
}

func TestParse_ComparisonInsideInterpolation(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), `<p>{{ a < b ? 'lt' : 'ge' }}</p>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>{a < b ? 'lt' : 'ge'}</p>", markup.Print(tree))
}

func TestParse_Filters(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), `<span>{{ price | currency('$') | upper }}</span>`)
	require.NoError(t, err)
	assert.Equal(t, "<span>{upper(currency(price, '$'))}</span>", markup.Print(tree))
}

func TestLowerFilters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a || b", markup.LowerFilters("a || b"))
	assert.Equal(t, "fmt(value)", markup.LowerFilters("value | fmt"))
	assert.Equal(t, "pad(fmt(value), 2)", markup.LowerFilters("value | fmt | pad(2)"))
	assert.Equal(t, "'a|b'", markup.LowerFilters("'a|b'"))
}

func TestPrint_WhitespaceAndComments(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), "<ul>\n  <li>a</li>\n  <!-- note -->\n  <li>b c</li>\n</ul>")
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li><li>b c</li></ul>", markup.Print(tree))
}

func TestPrint_MultipleRootsAndEscaping(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), `<br/><span>{ x }</span>`)
	require.NoError(t, err)
	assert.Equal(t, "<><br /><span>{'{'} x {'}'}</span></>", markup.Print(tree))
}

func TestParse_Pre(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), `<span v-pre>{{ raw }}</span>`)
	require.NoError(t, err)

	span := tree.Node(tree.Node(tree.Root).Children[0])
	assert.True(t, span.Pre)
	assert.Nil(t, span.Attr("v-pre"))
	assert.Equal(t, "<span>{'{{ raw }}'}</span>", markup.Print(tree))
}

func TestParse_Error(t *testing.T) {
	t.Parallel()

	_, err := markup.Parse(t.Context(), `<div></span>`)
	require.ErrorIs(t, err, markup.ErrTemplateParse)
}

func TestPrint_Empty(t *testing.T) {
	t.Parallel()

	tree, err := markup.Parse(t.Context(), "\n  \n")
	require.NoError(t, err)
	assert.Empty(t, markup.Print(tree))
}

func TestTree_Operations(t *testing.T) {
	t.Parallel()

	tree := markup.NewTree()
	ul := tree.NewElement("ul")
	li := tree.NewElement("li")
	tree.AppendChild(tree.Root, ul)
	tree.AppendChild(ul, li)

	loop := tree.NewNode(markup.KindLoop)
	tree.Wrap(li, loop)
	tree.Node(loop).Locals = []string{"item", "index"}

	assert.Equal(t, []markup.NodeID{loop}, tree.Node(ul).Children)
	assert.Equal(t, loop, tree.Node(li).Parent)
	assert.Equal(t, []string{"item", "index"}, tree.ScopeLocals(li))
	assert.True(t, tree.Attached(li))

	tree.Detach(loop)
	assert.False(t, tree.Attached(li))
	assert.Empty(t, tree.Node(ul).Children)
}

func TestPrint_Loop(t *testing.T) {
	t.Parallel()

	tree := markup.NewTree()
	ul := tree.NewElement("ul")
	tree.AppendChild(tree.Root, ul)

	li := tree.NewElement("li")
	tree.Node(li).Attrs = []*markup.Attr{{Kind: markup.AttrExpr, Name: "key", Expr: markup.Final("item.id")}}
	tree.AppendChild(li, tree.NewExpr(markup.Final("item.text")))

	loop := tree.NewNode(markup.KindLoop)
	tree.Node(loop).Loop = &markup.Loop{Form: markup.LoopArray, Source: markup.Final("items"), Pattern: "item"}
	tree.AppendChild(ul, loop)
	tree.AppendChild(loop, li)

	assert.Equal(t, "<ul>{items && items.map((item, index) => <li key={item.id}>{item.text}</li>)}</ul>",
		markup.Print(tree))

	tree.Node(loop).Loop.Form = markup.LoopObject
	tree.Node(loop).Loop.Key = "key"
	tree.Node(loop).Loop.Source = markup.Final("obj")
	assert.Equal(t,
		"<ul>{obj && Object.entries(obj).map(([key, item], index) => <li key={item.id}>{item.text}</li>)}</ul>",
		markup.Print(tree))
}

func TestPrint_Conditionals(t *testing.T) {
	t.Parallel()

	build := func(branches ...markup.Branch) *markup.Tree {
		tree := markup.NewTree()
		cond := tree.NewNode(markup.KindCond)
		tree.AppendChild(tree.Root, cond)

		for i := range branches {
			body := tree.NewElement("p")
			tree.AppendChild(body, tree.NewText(string(rune('a'+i))))
			tree.AppendChild(cond, body)
		}

		tree.Node(cond).Cond = &markup.Cond{Branches: branches}

		return tree
	}

	ifOnly := build(markup.Branch{Test: markup.Final("show"), HasTest: true})
	assert.Equal(t, "!!show && <p>a</p>", markup.Print(ifOnly))

	boolean := build(markup.Branch{Test: markup.Final("count > 0"), HasTest: true, Boolean: true})
	assert.Equal(t, "(count > 0) && <p>a</p>", markup.Print(boolean))

	ternary := build(markup.Branch{Test: markup.Final("ok"), HasTest: true}, markup.Branch{})
	assert.Equal(t, "ok ? <p>a</p> : <p>b</p>", markup.Print(ternary))

	chain := build(
		markup.Branch{Test: markup.Final("a"), HasTest: true},
		markup.Branch{Test: markup.Final("b"), HasTest: true},
		markup.Branch{},
	)
	assert.Equal(t, "<ConditionalGroup>{a && <p>a</p>}{b && <p>b</p>}{<p>c</p>}</ConditionalGroup>",
		markup.Print(chain))
}

func TestPrint_AttributesAndHandlers(t *testing.T) {
	t.Parallel()

	tree := markup.NewTree()
	btn := tree.NewElement("button")
	tree.AppendChild(tree.Root, btn)
	tree.Node(btn).Attrs = []*markup.Attr{
		{Kind: markup.AttrStatic, Name: "title", Value: `say "hi"`, HasValue: true},
		{Kind: markup.AttrBool, Name: "disabled"},
		{Kind: markup.AttrSpread, Expr: markup.Final("attrs")},
		{Kind: markup.AttrHandler, Name: "onClick", Handler: &markup.Handler{
			Param:      "event",
			Statements: []markup.Expr{markup.Final("event.stopPropagation();"), markup.Final("save()")},
		}},
	}

	assert.Equal(t,
		`<button title={'say "hi"'} disabled {...attrs} onClick={(event) => { event.stopPropagation(); save(); }} />`,
		markup.Print(tree))
}

func TestPrintDescriptors(t *testing.T) {
	t.Parallel()

	out := markup.PrintDescriptors([]markup.Descriptor{{
		Name:      "tooltip",
		Arg:       "bottom",
		Modifiers: []string{"persistent"},
		Value:     markup.Final("'hi'"),
	}})
	assert.Equal(t, "[{ name: 'tooltip', arg: 'bottom', modifiers: { persistent: true }, value: 'hi' }]", out)
}

func TestPrint_SlotOutlet(t *testing.T) {
	t.Parallel()

	tree := markup.NewTree()
	slot := tree.NewNode(markup.KindSlot)
	tree.AppendChild(tree.Root, slot)
	tree.Node(slot).Slot = &markup.Slot{Callee: "props.template_default?.", Fallback: "props.children"}

	assert.Equal(t, "props.template_default?.() || props.children", markup.Print(tree))

	tree.Node(slot).Attrs = []*markup.Attr{
		{Kind: markup.AttrExpr, Name: "item", Expr: markup.Final("item")},
		{Kind: markup.AttrStatic, Name: "label", Value: "x", HasValue: true},
	}
	tree.Node(slot).Slot = &markup.Slot{Callee: "SlotHeader?."}
	assert.Equal(t, "SlotHeader?.({ item, label: 'x' })", markup.Print(tree))
}

func TestJSStringAndParen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `'it\'s\n'`, markup.JSString("it's\n"))
	assert.Equal(t, "user.name", markup.Paren("user.name"))
	assert.Equal(t, "(a || b)", markup.Paren("a || b"))
}
