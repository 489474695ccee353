// Package engine converts one single-file component into an openInula
// function component. Each call owns a fresh symbol context, shell and
// diagnostics reporter; nothing is shared between files.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/directive"
	"github.com/openInula/inula-sub000/pkg/engine/markup"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/engine/script"
	"github.com/openInula/inula-sub000/pkg/engine/shell"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/sfc"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

const tracerName = "vue2inula/engine"

// Stage names the conversion step that failed.
type Stage string

// Conversion stages.
const (
	StageSplit    Stage = "split"
	StageScript   Stage = "script"
	StageTemplate Stage = "template"
	StageShell    Stage = "shell"
)

// ConversionError is a fatal, per-file conversion failure.
type ConversionError struct {
	File  string
	Stage Stage
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %s: %v", e.File, e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Style is one style block of the source component.
type Style struct {
	Content string
	Lang    string
	Scoped  bool
}

// Localization is an <i18n> block.
type Localization struct {
	Content string
	// Lang is json (default) or yaml.
	Lang string
	// Locale scopes the messages under one locale key when set.
	Locale string
}

// Input is the raw material of one component.
type Input struct {
	FileName string
	// Script is the setup block in composition style, the options script otherwise.
	Script string
	// ModuleScript is the plain script that accompanies a setup block.
	ModuleScript string
	// TypeScript selects the TypeScript grammar for the script blocks.
	TypeScript   bool
	Template     string
	Styles       []Style
	Localization *Localization
}

// Options configures a conversion.
type Options struct {
	Composition           bool
	Tags                  map[string]directive.TagRule
	ExtraGlobalProperties []string
	InstanceImports       map[string]symbols.InstanceImport
	AdapterSource         string
	FrameworkSource       string
	TargetExtension       string
	Logger                *slog.Logger
}

// StyleFile is one emitted stylesheet, grouped by scope and language.
type StyleFile struct {
	Name    string `json:"name"`
	Scoped  bool   `json:"scoped"`
	Lang    string `json:"lang"`
	Content string `json:"content"`
}

// Output is a converted component.
type Output struct {
	Name        string            `json:"name"`
	FileName    string            `json:"file_name"`
	Code        string            `json:"code"`
	Styles      []StyleFile       `json:"styles,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// ConvertSFC splits a .vue file into blocks and converts it.
func ConvertSFC(ctx context.Context, fileName string, src []byte, opts Options) (*Output, error) {
	file, err := sfc.Parse(ctx, fileName, src)
	if err != nil {
		return nil, &ConversionError{File: fileName, Stage: StageSplit, Err: err}
	}

	input, composition := InputFromSFC(file)
	opts.Composition = composition

	return Convert(ctx, input, opts)
}

// InputFromSFC maps the blocks of a split file onto an Input and reports
// whether the component uses a setup block.
func InputFromSFC(file *sfc.File) (Input, bool) {
	input := Input{FileName: file.Name}

	if file.Template != nil {
		input.Template = file.Template.Content
	}

	main := file.Script

	composition := file.ScriptSetup != nil
	if composition {
		main = file.ScriptSetup

		if file.Script != nil {
			input.ModuleScript = file.Script.Content
		}
	}

	if main != nil {
		input.Script = main.Content
		input.TypeScript = isTypeScript(main.Lang("js"))
	}

	for i := range file.Styles {
		block := &file.Styles[i]
		_, scoped := block.Attr("scoped")

		input.Styles = append(input.Styles, Style{
			Content: block.Content,
			Lang:    block.Lang("css"),
			Scoped:  scoped,
		})
	}

	if block := file.Localization(); block != nil {
		locale, _ := block.Attr("locale")
		input.Localization = &Localization{Content: block.Content, Lang: block.Lang("json"), Locale: locale}
	}

	return input, composition
}

func isTypeScript(lang string) bool {
	return lang == "ts" || lang == "tsx"
}

// ComponentName derives the component name from a file path.
func ComponentName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if name := resolve.Pascal(base); name != "" {
		return name
	}

	return "Component"
}

// Convert runs the script pipeline, the directive engine and the shell over
// one component.
func Convert(ctx context.Context, input Input, opts Options) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "vue2inula.convert",
		trace.WithAttributes(
			attribute.String("vue2inula.file", input.FileName),
			attribute.Bool("vue2inula.composition", opts.Composition),
		))
	defer span.End()

	c := newConversion(input, opts, logger)

	out, err := c.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("vue2inula.warnings", len(out.Diagnostics)))
	logger.DebugContext(ctx, "component converted",
		"file", input.FileName, "name", out.Name, "warnings", len(out.Diagnostics))

	return out, nil
}

type conversion struct {
	input Input
	opts  Options

	syms *symbols.Context
	sh   *shell.Shell
	rep  *diag.Reporter
	res  *resolve.Resolver
}

func newConversion(input Input, opts Options, logger *slog.Logger) *conversion {
	style := symbols.StyleOptions
	if opts.Composition {
		style = symbols.StyleComposition
	}

	syms := symbols.New(input.FileName, style)
	syms.Name = ComponentName(input.FileName)

	if opts.AdapterSource != "" && opts.AdapterSource != symbols.DefaultAdapterSource {
		syms.AdapterSource = opts.AdapterSource

		for name, imp := range syms.InstanceImports {
			if rest, ok := strings.CutPrefix(imp.Source, symbols.DefaultAdapterSource); ok {
				imp.Source = opts.AdapterSource + rest
				syms.InstanceImports[name] = imp
			}
		}
	}

	if opts.FrameworkSource != "" {
		syms.FrameworkSource = opts.FrameworkSource
	}

	for name, imp := range opts.InstanceImports {
		syms.InstanceImports[name] = imp
	}

	syms.AddGlobalProperties(opts.ExtraGlobalProperties...)

	sh := shell.New(syms)
	rep := diag.NewReporter(logger, input.FileName)

	return &conversion{
		input: input,
		opts:  opts,
		syms:  syms,
		sh:    sh,
		rep:   rep,
		res:   resolve.New(syms, sh, rep),
	}
}

func (c *conversion) fail(stage Stage, err error) error {
	return &ConversionError{File: c.input.FileName, Stage: stage, Err: err}
}

func (c *conversion) run(ctx context.Context) (*Output, error) {
	if err := c.script(ctx); err != nil {
		return nil, c.fail(StageScript, err)
	}

	c.localization()

	styles := c.styles()

	if err := c.template(ctx); err != nil {
		return nil, c.fail(StageTemplate, err)
	}

	code, err := c.sh.Finalize()
	if err != nil {
		return nil, c.fail(StageShell, err)
	}

	return &Output{
		Name:        c.syms.Name,
		FileName:    c.syms.Name + c.targetExtension(),
		Code:        code,
		Styles:      styles,
		Diagnostics: c.rep.Diagnostics(),
	}, nil
}

func (c *conversion) targetExtension() string {
	if c.opts.TargetExtension != "" {
		return c.opts.TargetExtension
	}

	return script.DefaultTargetExtension
}

func (c *conversion) script(ctx context.Context) error {
	lang := syntax.JavaScript
	if c.input.TypeScript {
		lang = syntax.TypeScript
	}

	c.res.SetLanguage(lang)

	opts := script.Options{Language: lang, TargetExtension: c.targetExtension()}

	if c.opts.Composition && strings.TrimSpace(c.input.ModuleScript) != "" {
		module := script.New(c.syms, c.res, c.sh, c.rep, opts)
		if err := module.RunModule(ctx, c.input.ModuleScript); err != nil {
			return fmt.Errorf("module script: %w", err)
		}
	}

	if strings.TrimSpace(c.input.Script) == "" {
		return nil
	}

	return script.New(c.syms, c.res, c.sh, c.rep, opts).Run(ctx, c.input.Script)
}

func (c *conversion) template(ctx context.Context) error {
	if strings.TrimSpace(c.input.Template) == "" {
		return nil
	}

	tree, err := markup.Parse(ctx, c.input.Template)
	if err != nil {
		return err
	}

	tags := directive.DefaultTagRules(c.syms.AdapterSource)
	for tag, rule := range c.opts.Tags {
		tags[tag] = rule
	}

	eng := directive.New(c.syms, c.res, c.sh, c.rep, tags)
	if err := eng.Run(ctx, tree); err != nil {
		return err
	}

	c.sh.SetReturn(markup.Print(tree))

	return nil
}
