// Package resolve rewrites identifiers and instance member chains into their
// target-framework form according to the per-file symbol classification.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

// ErrSyntax is returned when an expression or statement list fails to parse.
var ErrSyntax = errors.New("syntax error")

// Mode selects which identifiers count as instance reads.
type Mode int

const (
	// ModeTemplate treats every free identifier as an instance read.
	ModeTemplate Mode = iota
	// ModeScript treats only this-qualified chains as instance reads.
	ModeScript
)

// StandInPrefix marks identifiers that stand in for captured template expressions.
const StandInPrefix = "__v2i_expr_"

// Acquirer inserts a statement once per key, ahead of the code that needs it.
type Acquirer interface {
	Once(key string, gen func() string) bool
}

// Options tunes a single rewrite.
type Options struct {
	Mode Mode
	// Locals are names bound by an enclosing template construct.
	Locals []string
	// Renames maps free identifiers to replacement names.
	Renames map[string]string
}

// Resolver classifies names against a Context.
type Resolver struct {
	syms     *symbols.Context
	acq      Acquirer
	rep      *diag.Reporter
	lang     syntax.Language
	standIns map[string]string
}

// New returns a resolver over syms that acquires built-ins through acq.
func New(syms *symbols.Context, acq Acquirer, rep *diag.Reporter) *Resolver {
	return &Resolver{syms: syms, acq: acq, rep: rep, lang: syntax.JavaScript}
}

// SetLanguage selects the grammar used for parsing text.
func (r *Resolver) SetLanguage(lang syntax.Language) {
	r.lang = lang
}

// SetStandIns registers captured expressions addressed by stand-in identifiers.
func (r *Resolver) SetStandIns(table map[string]string) {
	r.standIns = table
}

// Context returns the symbol table the resolver reads.
func (r *Resolver) Context() *symbols.Context {
	return r.syms
}

// Lookup resolves an instance-level name, checking buckets in fixed precedence:
// prop, ref, computed, reactive group, global property, self alias, built-in.
// Methods resolve to themselves. Unknown names report false.
func (r *Resolver) Lookup(name string) (string, bool) {
	switch r.syms.Classify(name) {
	case symbols.KindProp:
		return r.syms.PropsBinding + "." + name, true
	case symbols.KindRef, symbols.KindComputed:
		return name + ".value", true
	case symbols.KindReactive:
		return r.syms.Container(name) + "." + name, true
	case symbols.KindMethod:
		return name, true
	case symbols.KindNone:
	}

	if r.syms.IsGlobalProperty(name) {
		r.syms.MarkGlobalUsed(name)
		r.acquire("acquire:globals", "useGlobalProperties",
			fmt.Sprintf("const %s = useGlobalProperties();", r.syms.GlobalsBinding))

		return r.syms.GlobalsBinding + "." + name, true
	}

	if ref, ok := r.syms.SelfAlias(name); ok {
		return ref + ".value", true
	}

	if strings.HasPrefix(name, "$") {
		return r.builtin(name)
	}

	return "", false
}

// Instance resolves `this.name`. Unclassified names fall back to the bare
// name with a warning.
func (r *Resolver) Instance(name string) string {
	if res, ok := r.Lookup(name); ok {
		return res
	}

	r.rep.Warn(diag.CodeUnclassifiedRoot,
		"instance member %q matches no declared symbol; emitted as a bare identifier", name)

	return name
}

// InstanceBinding acquires the component instance handle and returns its name.
func (r *Resolver) InstanceBinding() string {
	binding := r.syms.InstanceBinding
	r.acquire("acquire:instance", "useInstance", fmt.Sprintf("const %s = useInstance();", binding))

	return binding
}

// RefsBinding acquires the template ref table and returns its name.
func (r *Resolver) RefsBinding() string {
	binding := r.syms.RefsBinding
	r.acquire("acquire:refs", "useRefs", fmt.Sprintf("const %s = useRefs();", binding))

	return binding
}

// EmitBinding acquires the emit function and returns its name.
func (r *Resolver) EmitBinding() string {
	r.acquire("acquire:emit", "useEmits", fmt.Sprintf("const emit = useEmits(%s);", r.syms.PropsBinding))

	return "emit"
}

func (r *Resolver) builtin(name string) (string, bool) {
	if imp, ok := r.syms.InstanceImports[name]; ok {
		binding := strings.TrimPrefix(name, "$")
		r.acq.Once("acquire:"+name, func() string {
			r.syms.AddImport(imp.Source, imp.Name, false)

			return fmt.Sprintf("const %s = %s();", binding, imp.Name)
		})

		return binding, true
	}

	bare := strings.TrimPrefix(name, "$")

	switch name {
	case "$refs":
		return r.RefsBinding(), true
	case "$el", "$parent", "$root", "$children", "$options":
		return r.InstanceBinding() + "." + bare, true
	case "$attrs":
		r.acquire("acquire:attrs", "useAttrs", fmt.Sprintf("const attrs = useAttrs(%s);", r.syms.PropsBinding))

		return "attrs", true
	case "$slots", "$scopedSlots":
		r.acquire("acquire:slots", "useSlots", fmt.Sprintf("const slots = useSlots(%s);", r.syms.PropsBinding))

		return "slots", true
	case "$props":
		return r.syms.PropsBinding, true
	case "$data":
		return r.syms.StateContainer, true
	case "$emit":
		return r.EmitBinding(), true
	case "$nextTick":
		r.syms.AddAdapterImport("nextTick")

		return "nextTick", true
	case "$forceUpdate":
		r.acquire("acquire:forceUpdate", "useForceUpdate", "const forceUpdate = useForceUpdate();")

		return "forceUpdate", true
	}

	if symbols.IsLocalizationAccessor(bare) {
		r.syms.MarkLocalization(bare)

		return bare, true
	}

	return "", false
}

func (r *Resolver) acquire(key, hook, stmt string) {
	r.acq.Once(key, func() string {
		r.syms.AddAdapterImport(hook)

		return stmt
	})
}

// HandlerProp returns the callback prop name for an emitted event:
// "change" becomes "onChange", "update:modelValue" becomes "onUpdateModelValue".
func HandlerProp(event string) string {
	return "on" + Pascal(event)
}

// Pascal converts kebab-, colon- or dot-separated words to PascalCase.
func Pascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ':' || r == '.' || r == '_' || r == ' '
	})

	var sb strings.Builder

	for _, part := range parts {
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}

	return sb.String()
}

// Camel converts kebab-case to camelCase.
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return p
	}

	return strings.ToLower(p[:1]) + p[1:]
}
