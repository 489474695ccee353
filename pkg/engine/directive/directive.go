// Package directive lowers template directives into target markup. The
// passes run in a fixed order over one markup tree; later passes rely on
// nodes and markers produced by earlier ones.
package directive

import (
	"context"
	"errors"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
)

// Fatal template errors.
var (
	ErrLoopSyntax      = errors.New("invalid loop expression")
	ErrConditionSyntax = errors.New("invalid conditional expression")
)

// TagRule substitutes a source tag with a target component.
type TagRule struct {
	Tag     string            `json:"tag"               mapstructure:"tag"     yaml:"tag"`
	Source  string            `json:"source"            mapstructure:"source"  yaml:"source"`
	Default bool              `json:"default,omitempty" mapstructure:"default" yaml:"default,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"   mapstructure:"attrs"   yaml:"attrs,omitempty"`
}

// DefaultTagRules returns the built-in substitutions for framework tags.
func DefaultTagRules(adapter string) map[string]TagRule {
	return map[string]TagRule{
		"transition":       {Tag: "Transition", Source: adapter},
		"transition-group": {Tag: "TransitionGroup", Source: adapter},
		"keep-alive":       {Tag: "KeepAlive", Source: adapter},
		"teleport":         {Tag: "Teleport", Source: adapter},
		"router-view":      {Tag: "RouterView", Source: adapter + "/router"},
		"router-link": {
			Tag:    "RouterLink",
			Source: adapter + "/router",
			Attrs:  map[string]string{"active-class": "activeClassName", "exact-active-class": "exactActiveClassName"},
		},
	}
}

// Engine runs the directive passes for one file.
type Engine struct {
	syms *symbols.Context
	res  *resolve.Resolver
	acq  resolve.Acquirer
	rep  *diag.Reporter
	tags map[string]TagRule
	tree *markup.Tree
}

// New returns an engine. Tag rule keys are matched case-insensitively with
// hyphens ignored.
func New(syms *symbols.Context, res *resolve.Resolver, acq resolve.Acquirer, rep *diag.Reporter,
	tags map[string]TagRule,
) *Engine {
	folded := make(map[string]TagRule, len(tags))
	for tag, rule := range tags {
		folded[fold(tag)] = rule
	}

	return &Engine{syms: syms, res: res, acq: acq, rep: rep, tags: folded}
}

// Run lowers every directive in tree, in place.
func (e *Engine) Run(ctx context.Context, tree *markup.Tree) error {
	e.tree = tree
	e.res.SetStandIns(tree.StandIns)

	e.normalizeTags()

	if err := e.lowerLoops(); err != nil {
		return err
	}

	e.hoistSlotContent()
	e.passThroughs()

	if err := e.lowerConditionals(); err != nil {
		return err
	}

	e.normalizeAttrs()
	e.lowerModels()
	e.lowerRefs()
	e.lowerSlotOutlets()
	e.resolveExpressions()
	e.cleanup(ctx)

	return nil
}

// elements returns attached elements and fragments outside literal subtrees.
func (e *Engine) elements() []markup.NodeID {
	var out []markup.NodeID

	e.tree.Walk(func(id markup.NodeID) bool {
		n := e.tree.Node(id)
		if n.Pre {
			return false
		}

		if n.Kind == markup.KindElement || n.Kind == markup.KindFragment {
			out = append(out, id)
		}

		return true
	})

	return out
}

func (e *Engine) isComponent(n *markup.Node) bool {
	return n.Kind == markup.KindElement && !IsNativeTag(n.Tag)
}

var fragmentAttrs = map[string]bool{
	"key": true, ":key": true, "v-bind:key": true,
	"v-if": true, "v-else-if": true, "v-else": true,
}

// asFragment turns a grouping template element into a fragment, keeping only
// its key and conditional attributes.
func (e *Engine) asFragment(n *markup.Node) {
	n.Kind = markup.KindFragment
	n.Tag = ""

	kept := n.Attrs[:0]

	for _, a := range n.Attrs {
		if fragmentAttrs[a.Name] {
			kept = append(kept, a)
		}
	}

	n.Attrs = kept
}

func fold(tag string) string {
	return strings.ToLower(strings.ReplaceAll(tag, "-", ""))
}

// splitTopLevel splits s on sep outside brackets and string literals.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		quote byte
		last  int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

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
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[last:i]))
			last = i + 1
		}
	}

	if tail := strings.TrimSpace(s[last:]); tail != "" || len(parts) > 0 {
		parts = append(parts, tail)
	}

	return parts
}

// slotProp returns the render-prop name carrying slot content.
func slotProp(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}

	return "template_" + strings.Join(parts, "")
}

// IsNativeTag reports whether tag is a lowercase HTML or SVG element name.
func IsNativeTag(tag string) bool {
	return nativeTags[tag]
}

var nativeTags = func() map[string]bool {
	names := strings.Fields(`
		a abbr address area article aside audio b base bdi bdo blockquote body br button canvas caption
		cite code col colgroup data datalist dd del details dfn dialog div dl dt em embed fieldset
		figcaption figure footer form h1 h2 h3 h4 h5 h6 head header hgroup hr html i iframe img input ins
		kbd label legend li link main map mark menu meta meter nav noscript object ol optgroup option
		output p param picture pre progress q rp rt ruby s samp script search section select slot small
		source span strong style sub summary sup table tbody td template textarea tfoot th thead time
		title tr track u ul var video wbr
		svg g path circle rect line polyline polygon ellipse text tspan defs use symbol clipPath
		linearGradient radialGradient stop mask pattern image foreignObject desc marker filter`)

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}()
