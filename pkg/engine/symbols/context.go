// Package symbols holds the per-file conversion context: the symbol buckets
// that drive expression rewriting, import requirements, component
// registrations and the run-once bookkeeping shared by all passes.
package symbols

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrAlreadyRegistered is returned when a name is registered into a second bucket.
var ErrAlreadyRegistered = errors.New("symbol already registered")

// Kind is the bucket a name belongs to.
type Kind int

// Buckets, plus KindNone for unclassified names.
const (
	KindNone Kind = iota
	KindProp
	KindRef
	KindComputed
	KindReactive
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindProp:
		return "prop"
	case KindRef:
		return "ref"
	case KindComputed:
		return "computed"
	case KindReactive:
		return "reactive"
	case KindMethod:
		return "method"
	case KindNone:
		return "none"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Style is the script authoring style of a component.
type Style int

// Script styles.
const (
	StyleOptions Style = iota
	StyleComposition
)

// InstanceImport maps a $-prefixed instance accessor to a hook import.
type InstanceImport struct {
	Name   string `json:"name"   mapstructure:"name"   yaml:"name"`
	Source string `json:"source" mapstructure:"source" yaml:"source"`
}

// Default bindings and sources.
const (
	DefaultAdapterSource   = "@openinula/vue-adapter"
	DefaultFrameworkSource = "openinula"
	DefaultPropsBinding    = "props"
	DefaultGlobalsBinding  = "globals"
	DefaultStateContainer  = "state"
	DefaultRefsBinding     = "refs"
	DefaultInstanceBinding = "instance"
)

// DefaultGlobalProperties are app-level properties commonly installed by plugins.
var DefaultGlobalProperties = []string{
	"$message", "$notify", "$confirm", "$alert", "$loading", "$http", "$axios", "$bus",
}

// DefaultInstanceImports cover the router and store accessors.
func DefaultInstanceImports() map[string]InstanceImport {
	return map[string]InstanceImport{
		"$store":  {Name: "useStore", Source: DefaultAdapterSource + "/vuex"},
		"$router": {Name: "useRouter", Source: DefaultAdapterSource + "/router"},
		"$route":  {Name: "useRoute", Source: DefaultAdapterSource + "/router"},
	}
}

// localizationNames is the canonical order of localization accessors.
var localizationNames = []string{"t", "tc", "te", "d", "n"}

// Context is the per-file symbol table. It is never shared between files.
type Context struct {
	File  string
	Name  string
	Style Style

	AdapterSource   string
	FrameworkSource string

	// PropsBinding is the name incoming props are read through; PropsParam is
	// the function parameter name, which differs when defaults are merged.
	PropsBinding    string
	PropsParam      string
	GlobalsBinding  string
	StateContainer  string
	RefsBinding     string
	InstanceBinding string

	InstanceImports map[string]InstanceImport
	LocalDirectives map[string]string
	Emits           []string

	kinds      map[string]Kind
	order      []string
	containers map[string]string

	globalProps map[string]bool
	usedGlobals []string

	selfAliases map[string]string

	imports     map[string]*importEntry
	sourceOrder []string

	components map[string]string

	localization map[string]bool
	emitted      map[string]bool
}

// New returns an empty context for file.
func New(file string, style Style) *Context {
	ctx := &Context{
		File:            file,
		Style:           style,
		AdapterSource:   DefaultAdapterSource,
		FrameworkSource: DefaultFrameworkSource,
		PropsBinding:    DefaultPropsBinding,
		PropsParam:      DefaultPropsBinding,
		GlobalsBinding:  DefaultGlobalsBinding,
		StateContainer:  DefaultStateContainer,
		RefsBinding:     DefaultRefsBinding,
		InstanceBinding: DefaultInstanceBinding,
		InstanceImports: DefaultInstanceImports(),
		LocalDirectives: make(map[string]string),
		kinds:           make(map[string]Kind),
		containers:      make(map[string]string),
		globalProps:     make(map[string]bool),
		selfAliases:     make(map[string]string),
		imports:         make(map[string]*importEntry),
		components:      make(map[string]string),
		localization:    make(map[string]bool),
		emitted:         make(map[string]bool),
	}

	ctx.AddGlobalProperties(DefaultGlobalProperties...)

	return ctx
}

// Register places name into the bucket for kind. A name already present in
// any bucket or in the self-alias table is refused with ErrAlreadyRegistered.
func (c *Context) Register(kind Kind, name string) error {
	if existing := c.kinds[name]; existing != KindNone {
		return fmt.Errorf("%w: %q is a %s", ErrAlreadyRegistered, name, existing)
	}

	if _, ok := c.selfAliases[name]; ok {
		return fmt.Errorf("%w: %q is an instance alias", ErrAlreadyRegistered, name)
	}

	c.kinds[name] = kind
	c.order = append(c.order, name)

	return nil
}

// RegisterReactive places name into the reactive-group bucket under container.
func (c *Context) RegisterReactive(name, container string) error {
	err := c.Register(KindReactive, name)
	if err != nil {
		return err
	}

	c.containers[name] = container

	return nil
}

// Classify returns the bucket of name, or KindNone.
func (c *Context) Classify(name string) Kind {
	return c.kinds[name]
}

// Container returns the reactive container that holds name.
func (c *Context) Container(name string) string {
	return c.containers[name]
}

// Names returns the names registered under kind, in registration order.
func (c *Context) Names(kind Kind) []string {
	var out []string

	for _, name := range c.order {
		if c.kinds[name] == kind {
			out = append(out, name)
		}
	}

	return out
}

// AddGlobalProperties extends the global-property allow-list.
func (c *Context) AddGlobalProperties(names ...string) {
	for _, name := range names {
		c.globalProps[name] = true
	}
}

// IsGlobalProperty reports whether name is on the global-property allow-list.
func (c *Context) IsGlobalProperty(name string) bool {
	return c.globalProps[name]
}

// MarkGlobalUsed records that a global property was referenced.
func (c *Context) MarkGlobalUsed(name string) {
	if !slices.Contains(c.usedGlobals, name) {
		c.usedGlobals = append(c.usedGlobals, name)
	}
}

// UsedGlobals returns the referenced global properties in first-use order.
func (c *Context) UsedGlobals() []string {
	return slices.Clone(c.usedGlobals)
}

// AddSelfAlias binds an instance field to a backing ref.
func (c *Context) AddSelfAlias(name, ref string) error {
	if existing := c.kinds[name]; existing != KindNone {
		return fmt.Errorf("%w: %q is a %s", ErrAlreadyRegistered, name, existing)
	}

	if _, ok := c.selfAliases[name]; ok {
		return fmt.Errorf("%w: %q is an instance alias", ErrAlreadyRegistered, name)
	}

	c.selfAliases[name] = ref

	return nil
}

// SelfAlias returns the backing ref for an instance field.
func (c *Context) SelfAlias(name string) (string, bool) {
	ref, ok := c.selfAliases[name]

	return ref, ok
}

// RegisterComponent records a child component under its local name.
func (c *Context) RegisterComponent(local, target string) {
	c.components[local] = target
}

// ComponentFor matches a template tag against the registrations, ignoring
// case and hyphens, and returns the normalized component name.
func (c *Context) ComponentFor(tag string) (string, bool) {
	if target, ok := c.components[tag]; ok {
		return target, true
	}

	want := foldTag(tag)

	for local, target := range c.components {
		if foldTag(local) == want {
			return target, true
		}
	}

	return "", false
}

// Components returns a copy of the registrations.
func (c *Context) Components() map[string]string {
	return maps.Clone(c.components)
}

func foldTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(tag, "-", ""))
}

// MarkLocalization records use of a localization accessor such as t or tc.
func (c *Context) MarkLocalization(name string) {
	c.localization[name] = true
}

// LocalizationUsed returns the used localization accessors in canonical order.
func (c *Context) LocalizationUsed() []string {
	var out []string

	for _, name := range localizationNames {
		if c.localization[name] {
			out = append(out, name)
		}
	}

	return out
}

// IsLocalizationAccessor reports whether name (without $) is a localization accessor.
func IsLocalizationAccessor(name string) bool {
	return slices.Contains(localizationNames, name)
}

// MarkEmitted records key as emitted and reports whether it was new.
func (c *Context) MarkEmitted(key string) bool {
	if c.emitted[key] {
		return false
	}

	c.emitted[key] = true

	return true
}

// Emitted reports whether key was already emitted.
func (c *Context) Emitted(key string) bool {
	return c.emitted[key]
}
