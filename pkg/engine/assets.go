package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
)

// MessagesBinding is the module-level binding holding localization messages.
const MessagesBinding = "messages"

// localization turns the <i18n> block into a module-level messages object.
// A block that does not decode is reported and skipped.
func (c *conversion) localization() {
	block := c.input.Localization
	if block == nil || strings.TrimSpace(block.Content) == "" {
		return
	}

	messages, err := decodeMessages(block)
	if err != nil {
		c.rep.Warn(diag.CodeLocalizationFormat, "localization block skipped: %v", err)

		return
	}

	if block.Locale != "" {
		messages = map[string]any{block.Locale: messages}
	}

	literal, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		c.rep.Warn(diag.CodeLocalizationFormat, "localization block skipped: %v", err)

		return
	}

	c.sh.AppendModuleStatement(fmt.Sprintf("const %s = %s;", MessagesBinding, literal))
	c.sh.SetLocalizationMessages(MessagesBinding)
}

func decodeMessages(block *Localization) (any, error) {
	var messages any

	switch strings.ToLower(block.Lang) {
	case "", "json", "json5":
		if err := json.Unmarshal([]byte(block.Content), &messages); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal([]byte(block.Content), &messages); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported language %q", block.Lang)
	}

	if _, ok := messages.(map[string]any); !ok {
		return nil, fmt.Errorf("messages must be an object, got %T", messages)
	}

	return messages, nil
}

// styles groups style blocks by (scoped, lang) into stylesheet files and
// imports each one from the component.
func (c *conversion) styles() []StyleFile {
	var files []StyleFile

	index := make(map[string]int)

	for _, style := range c.input.Styles {
		content := strings.TrimSpace(style.Content)
		if content == "" {
			continue
		}

		lang := style.Lang
		if lang == "" {
			lang = "css"
		}

		name := c.syms.Name
		if style.Scoped {
			name += ".scoped"
		}

		name += "." + lang

		if i, ok := index[name]; ok {
			files[i].Content += "\n\n" + content

			continue
		}

		index[name] = len(files)
		files = append(files, StyleFile{Name: name, Scoped: style.Scoped, Lang: lang, Content: content})
		c.syms.AddSideEffectImport("./" + name)
	}

	for i := range files {
		files[i].Content += "\n"
	}

	return files
}
