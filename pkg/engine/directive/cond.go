package directive

import (
	"fmt"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
)

// lowerConditionals collapses every contiguous if / else-if / else sibling run
// into one conditional node.
func (e *Engine) lowerConditionals() error {
	var parents []markup.NodeID

	e.tree.Walk(func(id markup.NodeID) bool {
		n := e.tree.Node(id)
		if n.Pre {
			return false
		}

		if len(n.Children) > 0 {
			parents = append(parents, id)
		}

		return true
	})

	for _, parent := range parents {
		if err := e.scanConditionals(parent); err != nil {
			return err
		}
	}

	return nil
}

func isBranchCandidate(n *markup.Node) bool {
	return n.Kind == markup.KindElement || n.Kind == markup.KindFragment
}

func (e *Engine) scanConditionals(parent markup.NodeID) error {
	kids := append([]markup.NodeID(nil), e.tree.Node(parent).Children...)

	for i := 0; i < len(kids); i++ {
		head := e.tree.Node(kids[i])
		if !isBranchCandidate(head) {
			continue
		}

		ifAttr := head.RemoveAttr("v-if")
		if ifAttr == nil {
			e.dropOrphan(head)

			continue
		}

		test, err := conditionTest(ifAttr.Value)
		if err != nil {
			return err
		}

		branches := []markup.Branch{test}
		bodies := []markup.NodeID{kids[i]}
		last := i

	scan:
		for j := i + 1; j < len(kids); j++ {
			sib := e.tree.Node(kids[j])

			switch {
			case sib.IsWhitespace():
				continue
			case !isBranchCandidate(sib):
				break scan
			case sib.Attr("v-else-if") != nil:
				test, err := conditionTest(sib.RemoveAttr("v-else-if").Value)
				if err != nil {
					return err
				}

				branches = append(branches, test)
				bodies = append(bodies, kids[j])
				last = j
			case sib.Attr("v-else") != nil:
				sib.RemoveAttr("v-else")
				branches = append(branches, markup.Branch{})
				bodies = append(bodies, kids[j])
				last = j

				break scan
			default:
				break scan
			}
		}

		cond := e.tree.NewNode(markup.KindCond)
		e.tree.Node(cond).Cond = &markup.Cond{Branches: branches}
		e.tree.Replace(kids[i], cond)

		for j := i + 1; j <= last; j++ {
			e.tree.Detach(kids[j])
		}

		for _, body := range bodies {
			if bn := e.tree.Node(body); bn.Tag == "template" {
				e.asFragment(bn)
			}

			e.tree.AppendChild(cond, body)
		}

		if len(branches) > 2 || (len(branches) == 2 && branches[1].HasTest) {
			e.syms.AddAdapterImport("ConditionalGroup")
		}

		i = last
	}

	return nil
}

func conditionTest(value string) (markup.Branch, error) {
	if !resolve.IsValidExpression(value) {
		return markup.Branch{}, fmt.Errorf("%w: %q", ErrConditionSyntax, value)
	}

	return markup.Branch{
		Test:    markup.Pending(value),
		HasTest: true,
		Boolean: resolve.IsBooleanShaped(value),
	}, nil
}

func (e *Engine) dropOrphan(n *markup.Node) {
	for _, name := range []string{"v-else-if", "v-else"} {
		if n.RemoveAttr(name) != nil {
			e.rep.Warn(diag.CodeConditionalOrphan, "%s on <%s> has no preceding v-if; rendered unconditionally", name, n.Tag)
		}
	}
}
