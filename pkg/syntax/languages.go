// Package syntax wraps the tree-sitter grammars used by the converter and
// provides node helpers plus a byte-range editor for source rewriting.
package syntax

import (
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/css"
	"github.com/alexaandru/go-sitter-forest/html"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/typescript"
	"github.com/alexaandru/go-sitter-forest/vue"
)

// Language names a grammar known to the converter.
type Language string

// Supported grammars.
const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	HTML       Language = "html"
	CSS        Language = "css"
	Vue        Language = "vue"
)

var languageFuncs = map[Language]func() unsafe.Pointer{
	JavaScript: javascript.GetLanguage,
	TypeScript: typescript.GetLanguage,
	HTML:       html.GetLanguage,
	CSS:        css.GetLanguage,
	Vue:        vue.GetLanguage,
}

var languageCache sync.Map

// GetLanguage returns the tree-sitter Language for the given grammar, or nil if unknown.
func GetLanguage(name Language) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// ScriptLanguage picks the grammar for a script block's lang attribute.
func ScriptLanguage(lang string) Language {
	switch lang {
	case "ts", "typescript", "tsx":
		return TypeScript
	default:
		return JavaScript
	}
}
