package directive

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
)

var (
	loopPattern  = regexp.MustCompile(`^\s*([\s\S]*?)\s+(?:in|of)\s+([\s\S]*?)\s*$`)
	integerRange = regexp.MustCompile(`^\d+$`)
)

type loopSpec struct {
	loop   markup.Loop
	locals []string
}

// parseLoop parses `<alias> in|of <source>` where alias is a name, a
// destructuring pattern, or a parenthesized list of up to three aliases.
func parseLoop(value string) (loopSpec, error) {
	m := loopPattern.FindStringSubmatch(value)
	if m == nil {
		return loopSpec{}, fmt.Errorf("%w: %q", ErrLoopSyntax, value)
	}

	alias, source := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	if !resolve.IsValidExpression(source) {
		return loopSpec{}, fmt.Errorf("%w: %q", ErrLoopSyntax, value)
	}

	if strings.HasPrefix(alias, "(") && strings.HasSuffix(alias, ")") {
		alias = strings.TrimSpace(alias[1 : len(alias)-1])
	}

	parts := splitTopLevel(alias, ',')
	if len(parts) == 0 || len(parts) > 3 {
		return loopSpec{}, fmt.Errorf("%w: %q", ErrLoopSyntax, value)
	}

	locals, err := resolve.BindingNames(alias)
	if err != nil {
		return loopSpec{}, fmt.Errorf("%w: %q", ErrLoopSyntax, value)
	}

	spec := loopSpec{
		loop:   markup.Loop{Form: markup.LoopArray, Source: markup.Pending(source), Pattern: parts[0]},
		locals: locals,
	}

	switch len(parts) {
	case 2:
		spec.loop.Index = parts[1]
	case 3:
		spec.loop.Form = markup.LoopObject
		spec.loop.Key = parts[1]
		spec.loop.Index = parts[2]
	}

	if spec.loop.Form == markup.LoopArray && integerRange.MatchString(source) {
		spec.loop.Form = markup.LoopRange
	}

	return spec, nil
}

// lowerLoops wraps every element carrying a loop directive in a loop node and
// marks the element as loop-interior.
func (e *Engine) lowerLoops() error {
	for _, id := range e.elements() {
		n := e.tree.Node(id)

		attr := n.RemoveAttr("v-for")
		if attr == nil {
			continue
		}

		spec, err := parseLoop(attr.Value)
		if err != nil {
			return err
		}

		loop := e.tree.NewNode(markup.KindLoop)
		ln := e.tree.Node(loop)
		ln.Loop = &spec.loop
		ln.Locals = spec.locals

		e.tree.Wrap(id, loop)

		n.LoopInterior = true

		if n.Tag == "template" {
			e.asFragment(n)

			if n.Attr(":key") != nil || n.Attr("key") != nil || n.Attr("v-bind:key") != nil {
				e.syms.AddImport(e.syms.FrameworkSource, "Fragment", false)
			}
		}
	}

	return nil
}
