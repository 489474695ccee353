// Package sfc splits a single-file component into its template, script,
// style and custom blocks.
package sfc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/openInula/inula-sub000/pkg/syntax"
)

// Sentinel errors for block extraction.
var (
	ErrNoBlocks       = errors.New("component has neither template nor script")
	ErrDuplicateBlock = errors.New("duplicate block")
)

const (
	tagTemplate = "template"
	tagScript   = "script"
	tagStyle    = "style"
)

// Block is one top-level block of a component file.
type Block struct {
	Tag     string
	Attrs   map[string]string
	Content string
	// Offset is the byte offset of Content inside the file.
	Offset int
}

// Attr returns the attribute value and whether the attribute is present.
func (b *Block) Attr(name string) (string, bool) {
	if b == nil {
		return "", false
	}

	v, ok := b.Attrs[name]

	return v, ok
}

// Lang returns the lang attribute, or fallback when absent.
func (b *Block) Lang(fallback string) string {
	if v, ok := b.Attr("lang"); ok && v != "" {
		return v
	}

	return fallback
}

// File is a parsed component file.
type File struct {
	Name        string
	Template    *Block
	Script      *Block
	ScriptSetup *Block
	Styles      []Block
	Custom      []Block
}

// Localization returns the first <i18n> custom block, if any.
func (f *File) Localization() *Block {
	for i := range f.Custom {
		if strings.EqualFold(f.Custom[i].Tag, "i18n") {
			return &f.Custom[i]
		}
	}

	return nil
}

// Parse splits src into blocks.
func Parse(ctx context.Context, name string, src []byte) (*File, error) {
	tree, err := syntax.Parse(ctx, syntax.Vue, src)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", name, err)
	}
	defer tree.Close()

	file := &File{Name: name}

	for _, child := range syntax.NamedChildren(tree.Root) {
		block, ok := readBlock(child, src)
		if !ok {
			continue
		}

		addErr := file.add(block)
		if addErr != nil {
			return nil, fmt.Errorf("split %s: %w", name, addErr)
		}
	}

	if file.Template == nil && file.Script == nil && file.ScriptSetup == nil {
		return nil, fmt.Errorf("split %s: %w", name, ErrNoBlocks)
	}

	return file, nil
}

func (f *File) add(block Block) error {
	switch block.Tag {
	case tagTemplate:
		if f.Template != nil {
			return fmt.Errorf("%w: <template>", ErrDuplicateBlock)
		}

		f.Template = &block
	case tagScript:
		if _, setup := block.Attrs["setup"]; setup {
			if f.ScriptSetup != nil {
				return fmt.Errorf("%w: <script setup>", ErrDuplicateBlock)
			}

			f.ScriptSetup = &block

			return nil
		}

		if f.Script != nil {
			return fmt.Errorf("%w: <script>", ErrDuplicateBlock)
		}

		f.Script = &block
	case tagStyle:
		f.Styles = append(f.Styles, block)
	default:
		f.Custom = append(f.Custom, block)
	}

	return nil
}

func readBlock(n sitter.Node, src []byte) (Block, bool) {
	var startTag, endTag sitter.Node

	for _, child := range syntax.NamedChildren(n) {
		switch typ := child.Type(); {
		case strings.HasSuffix(typ, "start_tag") && startTag.IsNull():
			startTag = child
		case typ == "end_tag":
			endTag = child
		}
	}

	if startTag.IsNull() {
		return Block{}, false
	}

	tagName := syntax.FindDescendant(startTag, "tag_name")
	if tagName.IsNull() {
		return Block{}, false
	}

	start := syntax.End(startTag)
	end := syntax.End(n)

	if !endTag.IsNull() {
		end = syntax.Start(endTag)
	}

	if end < start {
		end = start
	}

	return Block{
		Tag:     strings.ToLower(syntax.Text(tagName, src)),
		Attrs:   readAttrs(startTag, src),
		Content: string(src[start:end]),
		Offset:  start,
	}, true
}

func readAttrs(startTag sitter.Node, src []byte) map[string]string {
	attrs := make(map[string]string)

	for _, attr := range syntax.NamedChildren(startTag) {
		if attr.Type() != "attribute" {
			continue
		}

		nameNode := syntax.FirstOfType(attr, "attribute_name")
		if nameNode.IsNull() {
			continue
		}

		attrs[syntax.Text(nameNode, src)] = attributeValue(attr, src)
	}

	return attrs
}

func attributeValue(attr sitter.Node, src []byte) string {
	if quoted := syntax.FirstOfType(attr, "quoted_attribute_value"); !quoted.IsNull() {
		inner := syntax.FirstOfType(quoted, "attribute_value")
		if inner.IsNull() {
			return ""
		}

		return syntax.Text(inner, src)
	}

	if plain := syntax.FirstOfType(attr, "attribute_value"); !plain.IsNull() {
		return syntax.Text(plain, src)
	}

	return ""
}
