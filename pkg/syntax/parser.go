package syntax

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parsing.
var (
	ErrUnknownLanguage = errors.New("unknown grammar")
	ErrNoRootNode      = errors.New("parse produced no root node")
	errPoolType        = errors.New("parser pool returned unexpected type")
)

var pools sync.Map

func poolFor(name Language) (*sync.Pool, error) {
	if cached, ok := pools.Load(name); ok {
		pool, castOK := cached.(*sync.Pool)
		if castOK {
			return pool, nil
		}
	}

	lang := GetLanguage(name)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}

	pool := &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	actual, _ := pools.LoadOrStore(name, pool)

	stored, ok := actual.(*sync.Pool)
	if !ok {
		return nil, errPoolType
	}

	return stored, nil
}

// Tree is a parsed source buffer. Close must be called when done.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
	Root   sitter.Node
}

// Parse parses src with the named grammar using a pooled parser.
func Parse(ctx context.Context, name Language, src []byte) (*Tree, error) {
	pool, err := poolFor(name)
	if err != nil {
		return nil, err
	}

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, fmt.Errorf("%w: %s", ErrNoRootNode, name)
	}

	return &Tree{tree: tree, Source: src, Root: root}, nil
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the source text covered by n.
func (t *Tree) Text(n sitter.Node) string {
	return Text(n, t.Source)
}

// HasError reports whether the tree contains an ERROR or missing node.
func (t *Tree) HasError() bool {
	return HasError(t.Root)
}
