package resolve

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/syntax"
)

var comparisonOperators = map[string]bool{
	"==": true, "===": true, "!=": true, "!==": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"instanceof": true, "in": true,
}

// withExpression parses text as one expression and calls fn with its
// innermost non-parenthesized node. It reports false when text does not parse.
func withExpression(text string, fn func(n sitter.Node, src []byte)) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	tree, err := syntax.Parse(context.Background(), syntax.JavaScript, []byte("("+trimmed+"\n)"))
	if err != nil {
		return false
	}
	defer tree.Close()

	if tree.HasError() {
		return false
	}

	stmt := syntax.FirstOfType(tree.Root, "expression_statement")
	if stmt.IsNull() || stmt.NamedChildCount() == 0 {
		return false
	}

	fn(unwrapParens(stmt.NamedChild(0)), tree.Source)

	return true
}

func unwrapParens(n sitter.Node) sitter.Node {
	for n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}

	return n
}

// IsBooleanShaped reports whether text already evaluates to a boolean:
// a negation, a comparison, a boolean literal or a combination of those.
func IsBooleanShaped(text string) bool {
	result := false

	withExpression(text, func(n sitter.Node, src []byte) {
		result = booleanNode(n, src)
	})

	return result
}

func booleanNode(n sitter.Node, src []byte) bool {
	n = unwrapParens(n)

	switch n.Type() {
	case "true", "false":
		return true
	case "unary_expression":
		return syntax.Text(syntax.Field(n, "operator"), src) == "!"
	case "binary_expression":
		op := syntax.Text(syntax.Field(n, "operator"), src)
		if comparisonOperators[op] {
			return true
		}

		if op == "&&" || op == "||" {
			return booleanNode(syntax.Field(n, "left"), src) && booleanNode(syntax.Field(n, "right"), src)
		}
	case "call_expression":
		callee := syntax.Text(syntax.Field(n, "function"), src)

		return callee == "Boolean" || callee == "Array.isArray" || callee == "Number.isNaN"
	}

	return false
}

// IsHandlerReference reports whether text names a function (a member path)
// or is a function expression, as opposed to an inline statement.
func IsHandlerReference(text string) bool {
	result := false

	withExpression(text, func(n sitter.Node, _ []byte) {
		switch n.Type() {
		case "identifier", "member_expression", "subscript_expression",
			"arrow_function", "function_expression", "function":
			result = true
		}
	})

	return result
}

// IsFunctionExpression reports whether text is an arrow or function expression.
func IsFunctionExpression(text string) bool {
	result := false

	withExpression(text, func(n sitter.Node, _ []byte) {
		switch n.Type() {
		case "arrow_function", "function_expression", "function":
			result = true
		}
	})

	return result
}

// IsValidExpression reports whether text parses as a single expression.
func IsValidExpression(text string) bool {
	return withExpression(text, func(sitter.Node, []byte) {})
}

// BindingNames parses params as an arrow-function parameter list and returns
// every name it binds, in order. Default values are not inspected.
func BindingNames(params string) ([]string, error) {
	trimmed := strings.TrimSpace(params)
	if trimmed == "" {
		return nil, nil
	}

	var (
		names []string
		found bool
	)

	ok := withExpression("("+trimmed+") => 0", func(n sitter.Node, src []byte) {
		if n.Type() != "arrow_function" {
			return
		}

		found = true
		collectBindings(syntax.Field(n, "parameters"), src, &names)
	})
	if !ok || !found {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, trimmed)
	}

	return names, nil
}

func collectBindings(n sitter.Node, src []byte, names *[]string) {
	if n.IsNull() {
		return
	}

	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		*names = append(*names, syntax.Text(n, src))
	case "formal_parameters", "object_pattern", "array_pattern":
		for _, child := range syntax.NamedChildren(n) {
			collectBindings(child, src, names)
		}
	case "pair_pattern":
		collectBindings(syntax.Field(n, "value"), src, names)
	case "assignment_pattern", "object_assignment_pattern":
		collectBindings(syntax.Field(n, "left"), src, names)
	case "rest_pattern":
		if n.NamedChildCount() > 0 {
			collectBindings(n.NamedChild(0), src, names)
		}
	case "required_parameter", "optional_parameter":
		collectBindings(syntax.Field(n, "pattern"), src, names)
	}
}
