// Package shell owns the skeleton of a converted component: module-level
// statements, the function body and its returned markup. It is the single
// place that guards run-once insertions and flushes imports.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/symbols"
)

// ErrFinalized is returned when a shell is finalized twice.
var ErrFinalized = errors.New("shell already finalized")

const indentUnit = "  "

// Shell accumulates the parts of one converted component.
type Shell struct {
	ctx *symbols.Context

	module   []string
	prologue []string
	preamble []string
	body     []string
	markup   string

	messages  string
	finalized bool
}

// New returns an empty shell bound to ctx.
func New(ctx *symbols.Context) *Shell {
	return &Shell{ctx: ctx}
}

// AppendModuleStatement adds a statement outside the component function.
func (s *Shell) AppendModuleStatement(stmt string) {
	if stmt = strings.TrimSpace(stmt); stmt != "" {
		s.module = append(s.module, stmt)
	}
}

// AppendStatement adds a statement to the end of the function body.
func (s *Shell) AppendStatement(stmt string) {
	if stmt = strings.TrimSpace(stmt); stmt != "" {
		s.body = append(s.body, stmt)
	}
}

// PrependStatement adds a statement ahead of everything else in the function.
func (s *Shell) PrependStatement(stmt string) {
	if stmt = strings.TrimSpace(stmt); stmt != "" {
		s.prologue = append([]string{stmt}, s.prologue...)
	}
}

// Once runs gen the first time key is requested and places its statement in
// the acquisition block, ahead of the body. It reports whether gen ran.
func (s *Shell) Once(key string, gen func() string) bool {
	if !s.ctx.MarkEmitted(key) {
		return false
	}

	if stmt := strings.TrimSpace(gen()); stmt != "" {
		s.preamble = append(s.preamble, stmt)
	}

	return true
}

// SetReturn sets the markup returned by the component.
func (s *Shell) SetReturn(markup string) {
	s.markup = markup
}

// SetLocalizationMessages names the module-level binding that holds the
// localization messages passed to the localization hook.
func (s *Shell) SetLocalizationMessages(binding string) {
	s.messages = binding
}

// Finalize flushes imports, closes the function and appends the export.
func (s *Shell) Finalize() (string, error) {
	if s.finalized {
		return "", ErrFinalized
	}

	s.finalized = true

	if used := s.ctx.LocalizationUsed(); len(used) > 0 {
		s.ctx.AddAdapterImport("useI18n")

		arg := ""
		if s.messages != "" {
			arg = fmt.Sprintf("{ messages: %s }", s.messages)
		}

		s.prologue = append(s.prologue, fmt.Sprintf("const { %s } = useI18n(%s);", strings.Join(used, ", "), arg))
	}

	name := s.ctx.Name
	if name == "" {
		name = "Component"
	}

	var sb strings.Builder

	for _, decl := range s.ctx.Imports() {
		sb.WriteString(RenderImport(decl))
		sb.WriteByte('\n')
	}

	if len(s.module) > 0 {
		sb.WriteByte('\n')

		for _, stmt := range s.module {
			sb.WriteString(Reindent(stmt, ""))
			sb.WriteByte('\n')
		}
	}

	fmt.Fprintf(&sb, "\nfunction %s(%s) {\n", name, s.ctx.PropsParam)

	for _, group := range [][]string{s.prologue, s.preamble, s.body} {
		for _, stmt := range group {
			sb.WriteString(Reindent(stmt, indentUnit))
			sb.WriteByte('\n')
		}
	}

	if strings.TrimSpace(s.markup) == "" {
		sb.WriteString(indentUnit + "return null;\n")
	} else {
		fmt.Fprintf(&sb, "%sreturn (\n%s%s\n%s);\n", indentUnit, indentUnit+indentUnit, s.markup, indentUnit)
	}

	fmt.Fprintf(&sb, "}\n\nexport default %s;\n", name)

	return sb.String(), nil
}

// RenderImport prints one import declaration.
func RenderImport(decl symbols.ImportDecl) string {
	source := quote(decl.Source)

	if decl.Namespace != "" {
		return fmt.Sprintf("import * as %s from %s;", decl.Namespace, source)
	}

	var clauses []string

	if decl.Default != "" {
		clauses = append(clauses, decl.Default)
	}

	if len(decl.Named) > 0 {
		parts := make([]string, 0, len(decl.Named))

		for _, named := range decl.Named {
			if named.Local != "" && named.Local != named.Name {
				parts = append(parts, named.Name+" as "+named.Local)
			} else {
				parts = append(parts, named.Name)
			}
		}

		clauses = append(clauses, "{ "+strings.Join(parts, ", ")+" }")
	}

	if len(clauses) == 0 {
		return fmt.Sprintf("import %s;", source)
	}

	return fmt.Sprintf("import %s from %s;", strings.Join(clauses, ", "), source)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// Reindent strips the common indentation of a statement's continuation lines
// and prefixes every line with indent.
func Reindent(stmt, indent string) string {
	lines := strings.Split(stmt, "\n")
	if len(lines) == 1 {
		return indent + strings.TrimSpace(stmt)
	}

	common := -1

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		width := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || width < common {
			common = width
		}
	}

	if common < 0 {
		common = 0
	}

	out := make([]string, len(lines))
	out[0] = indent + strings.TrimSpace(lines[0])

	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			out[i+1] = ""

			continue
		}

		out[i+1] = indent + strings.TrimRight(line[common:], " \t")
	}

	return strings.Join(out, "\n")
}
