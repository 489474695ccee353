package symbols

import (
	"slices"
	"sort"
)

type importEntry struct {
	defaults   []string
	named      map[string]string
	namespaces []string
}

// ImportDecl is one merged import statement.
type ImportDecl struct {
	Source    string
	Default   string
	Named     []NamedImport
	Namespace string
}

// NamedImport is a named binding, optionally renamed locally.
type NamedImport struct {
	Name  string
	Local string
}

func (c *Context) entry(source string) *importEntry {
	e, ok := c.imports[source]
	if !ok {
		e = &importEntry{named: make(map[string]string)}
		c.imports[source] = e
		c.sourceOrder = append(c.sourceOrder, source)
	}

	return e
}

// AddImport requires name from source. Repeated requests are merged.
func (c *Context) AddImport(source, name string, isDefault bool) {
	e := c.entry(source)

	if isDefault {
		if !slices.Contains(e.defaults, name) {
			e.defaults = append(e.defaults, name)
		}

		return
	}

	if _, ok := e.named[name]; !ok {
		e.named[name] = name
	}
}

// AddAliasedImport requires name from source bound locally as local.
func (c *Context) AddAliasedImport(source, name, local string) {
	c.entry(source).named[local] = name
}

// AddNamespaceImport requires `* as name` from source.
func (c *Context) AddNamespaceImport(source, name string) {
	e := c.entry(source)
	if !slices.Contains(e.namespaces, name) {
		e.namespaces = append(e.namespaces, name)
	}
}

// AddSideEffectImport requires source for its side effects only.
func (c *Context) AddSideEffectImport(source string) {
	c.entry(source)
}

// AddAdapterImport requires a named export of the adapter package.
func (c *Context) AddAdapterImport(name string) {
	c.AddImport(c.AdapterSource, name, false)
}

// HasImport reports whether the local binding name is imported from source.
func (c *Context) HasImport(source, name string) bool {
	e, ok := c.imports[source]
	if !ok {
		return false
	}

	if _, named := e.named[name]; named {
		return true
	}

	return slices.Contains(e.defaults, name) || slices.Contains(e.namespaces, name)
}

// Imports returns the merged import declarations in first-request order.
// A source with one default and named bindings yields a single declaration;
// extra defaults and namespaces get their own.
func (c *Context) Imports() []ImportDecl {
	var out []ImportDecl

	for _, source := range c.sourceOrder {
		e := c.imports[source]

		named := make([]NamedImport, 0, len(e.named))
		for local, name := range e.named {
			named = append(named, NamedImport{Name: name, Local: local})
		}

		sort.Slice(named, func(i, j int) bool { return named[i].Local < named[j].Local })

		first := ImportDecl{Source: source, Named: named}
		if len(e.defaults) > 0 {
			first.Default = e.defaults[0]
		}

		if first.Default != "" || len(named) > 0 || len(e.namespaces) == 0 {
			out = append(out, first)
		}

		for _, extra := range e.defaults[min(1, len(e.defaults)):] {
			out = append(out, ImportDecl{Source: source, Default: extra})
		}

		for _, ns := range e.namespaces {
			out = append(out, ImportDecl{Source: source, Namespace: ns})
		}
	}

	return out
}
