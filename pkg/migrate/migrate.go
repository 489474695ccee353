// Package migrate converts every single-file component under a directory
// tree, writing the generated modules and stylesheets next to the sources or
// into a mirrored output directory.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/openInula/inula-sub000/pkg/cache"
	"github.com/openInula/inula-sub000/pkg/engine"
	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/observability"
	"github.com/openInula/inula-sub000/pkg/version"
)

// SourceExtension is the extension of the files the runner converts.
const SourceExtension = ".vue"

// ErrFilesFailed is returned by callers that turn a report with fatal
// per-file errors into a non-zero exit.
var ErrFilesFailed = errors.New("one or more components failed to convert")

// Status is the outcome of one file.
type Status string

// File outcomes. The values double as metric labels.
const (
	StatusConverted Status = observability.StatusConverted
	StatusSkipped   Status = observability.StatusSkipped
	StatusFailed    Status = observability.StatusFailed
)

// Options configures a Runner.
type Options struct {
	// Root is the directory scanned for components.
	Root string

	// OutDir mirrors Root's layout for generated files. Empty writes
	// next to each source.
	OutDir string

	// Workers bounds concurrent conversions. Zero uses GOMAXPROCS.
	Workers int

	// Exclude lists directory or file names, or glob patterns matched
	// against base names, that are never visited.
	Exclude []string

	// StateFile records the last successful build. Relative paths are
	// resolved against Root. Empty disables incremental runs.
	StateFile string

	// Force converts every file regardless of the build state.
	Force bool

	// DryRun computes outputs and diffs without writing anything.
	DryRun bool

	// CacheSize bounds, in bytes, the memory kept for outputs of sources
	// already converted by this runner. Zero disables the cache.
	CacheSize int64

	Engine  engine.Options
	Metrics *observability.ConversionMetrics
	Logger  *slog.Logger
}

// FileResult describes what happened to one component.
type FileResult struct {
	Path        string            `json:"path"`
	Output      string            `json:"output,omitempty"`
	Status      Status            `json:"status"`
	Duration    time.Duration     `json:"duration"`
	Bytes       int               `json:"bytes"`
	Styles      []string          `json:"styles,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
	Diff        string            `json:"diff,omitempty"`
	Err         error             `json:"-"`
}

// Report aggregates a run.
type Report struct {
	Files   []FileResult
	Started time.Time
	Elapsed time.Duration
}

// Count returns the number of files with the given status.
func (r *Report) Count(status Status) int {
	n := 0

	for i := range r.Files {
		if r.Files[i].Status == status {
			n++
		}
	}

	return n
}

// Warnings returns the total number of diagnostics across all files.
func (r *Report) Warnings() int {
	n := 0
	for i := range r.Files {
		n += len(r.Files[i].Diagnostics)
	}

	return n
}

// Failed reports whether any file hit a fatal error.
func (r *Report) Failed() bool {
	return r.Count(StatusFailed) > 0
}

// cacheKey identifies one version of one source file.
type cacheKey struct {
	path string
	sum  uint64
}

// Runner converts component trees.
type Runner struct {
	opts   Options
	logger *slog.Logger
	cache  *cache.LRU[cacheKey, *engine.Output]
}

// New returns a Runner for opts.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Engine.Logger == nil {
		opts.Engine.Logger = logger
	}

	r := &Runner{opts: opts, logger: logger}
	if opts.CacheSize > 0 {
		r.cache = cache.New[cacheKey, *engine.Output](opts.CacheSize, outputSize)
	}

	return r
}

// CacheStats reports output cache usage. The zero value is returned when
// the cache is disabled.
func (r *Runner) CacheStats() cache.Stats {
	if r.cache == nil {
		return cache.Stats{}
	}

	return r.cache.Stats()
}

func outputSize(out *engine.Output) int64 {
	n := len(out.Code)
	for _, style := range out.Styles {
		n += len(style.Content)
	}

	return int64(n)
}

// StatePath returns the resolved build state path, or "" when disabled.
func (r *Runner) StatePath() string {
	if r.opts.StateFile == "" {
		return ""
	}

	if filepath.IsAbs(r.opts.StateFile) {
		return r.opts.StateFile
	}

	return filepath.Join(r.opts.Root, r.opts.StateFile)
}

// Run converts every component under Root. Per-file failures are recorded
// in the report; the error is reserved for discovery, state and
// cancellation problems.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{Started: time.Now()}

	since, err := r.since()
	if err != nil {
		return nil, err
	}

	files, err := Discover(r.opts.Root, r.opts.Exclude)
	if err != nil {
		return nil, err
	}

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	scheduled := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}

		scheduled++

		g.Go(func() error {
			results[i] = r.ConvertFile(gctx, path, since)

			return nil
		})
	}

	_ = g.Wait()

	report.Files = results[:scheduled]
	report.Elapsed = time.Since(report.Started)

	if ctx.Err() != nil {
		return report, fmt.Errorf("migration interrupted: %w", ctx.Err())
	}

	r.logger.InfoContext(ctx, "migration finished",
		"root", r.opts.Root,
		"converted", report.Count(StatusConverted),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		"warnings", report.Warnings(),
		"elapsed", report.Elapsed)

	if r.opts.DryRun || report.Failed() || r.StatePath() == "" {
		return report, nil
	}

	saveErr := SaveState(r.StatePath(), BuildState{
		LastBuild: report.Started,
		Version:   version.Version,
		Files:     len(report.Files),
	})
	if saveErr != nil {
		return report, saveErr
	}

	return report, nil
}

func (r *Runner) since() (time.Time, error) {
	if r.opts.Force || r.StatePath() == "" {
		return time.Time{}, nil
	}

	state, err := LoadState(r.StatePath())
	if err != nil {
		return time.Time{}, err
	}

	return state.LastBuild, nil
}

// ConvertFile converts one component. Files whose modification time is not
// after since are skipped; a zero since converts unconditionally.
func (r *Runner) ConvertFile(ctx context.Context, path string, since time.Time) (result FileResult) {
	start := time.Now()
	result.Path = path

	defer func() {
		result.Duration = time.Since(start)
		r.opts.Metrics.RecordFile(ctx, string(result.Status), result.Duration, diagnosticCodes(result.Diagnostics))
	}()

	info, err := os.Stat(path)
	if err != nil {
		return r.fail(ctx, result, fmt.Errorf("stat: %w", err))
	}

	if !since.IsZero() && !info.ModTime().After(since) {
		result.Status = StatusSkipped

		return result
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return r.fail(ctx, result, fmt.Errorf("read: %w", err))
	}

	out, err := r.convert(ctx, path, src)
	if err != nil {
		return r.fail(ctx, result, err)
	}

	dir, err := r.outputDir(path)
	if err != nil {
		return r.fail(ctx, result, err)
	}

	result.Output = filepath.Join(dir, out.FileName)
	result.Bytes = len(out.Code)
	result.Diagnostics = out.Diagnostics

	for _, style := range out.Styles {
		result.Styles = append(result.Styles, filepath.Join(dir, style.Name))
	}

	if r.opts.DryRun {
		result.Diff = r.diff(result.Output, out.Code)
		for i, style := range out.Styles {
			result.Diff += r.diff(result.Styles[i], style.Content)
		}
	} else {
		writeErr := r.write(dir, out)
		if writeErr != nil {
			return r.fail(ctx, result, writeErr)
		}

		r.opts.Metrics.RecordStylesheets(ctx, len(out.Styles))
	}

	result.Status = StatusConverted

	return result
}

func (r *Runner) convert(ctx context.Context, path string, src []byte) (*engine.Output, error) {
	if r.cache == nil {
		return engine.ConvertSFC(ctx, path, src, r.opts.Engine)
	}

	key := cacheKey{path: path, sum: xxhash.Sum64(src)}
	if out, ok := r.cache.Get(key); ok {
		return out, nil
	}

	out, err := engine.ConvertSFC(ctx, path, src, r.opts.Engine)
	if err != nil {
		return nil, err
	}

	r.cache.Put(key, out)

	return out, nil
}

func (r *Runner) fail(ctx context.Context, result FileResult, err error) FileResult {
	result.Status = StatusFailed
	result.Err = err

	r.logger.ErrorContext(ctx, "conversion failed", "file", result.Path, "error", err)

	return result
}

func (r *Runner) outputDir(path string) (string, error) {
	if r.opts.OutDir == "" {
		return filepath.Dir(path), nil
	}

	rel, err := filepath.Rel(r.opts.Root, filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}

	return filepath.Join(r.opts.OutDir, rel), nil
}

func (r *Runner) write(dir string, out *engine.Output) error {
	mkErr := os.MkdirAll(dir, 0o755)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	writeErr := os.WriteFile(filepath.Join(dir, out.FileName), []byte(out.Code), 0o644)
	if writeErr != nil {
		return fmt.Errorf("write component: %w", writeErr)
	}

	for _, style := range out.Styles {
		styleErr := os.WriteFile(filepath.Join(dir, style.Name), []byte(style.Content), 0o644)
		if styleErr != nil {
			return fmt.Errorf("write stylesheet: %w", styleErr)
		}
	}

	return nil
}

func (r *Runner) diff(path, content string) string {
	before, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("read existing output", "file", path, "error", err)
	}

	rel := path
	if r.opts.Root != "" {
		if p, relErr := filepath.Rel(r.opts.Root, path); relErr == nil && !strings.HasPrefix(p, "..") {
			rel = p
		}
	}

	return UnifiedDiff(filepath.ToSlash(rel), string(before), content)
}

// Discover returns the sorted component paths under root, skipping
// excluded names.
func Discover(root string, exclude []string) ([]string, error) {
	var files []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != root && Excluded(d.Name(), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.IsDir() && filepath.Ext(path) == SourceExtension {
			files = append(files, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("discover components: %w", walkErr)
	}

	slices.Sort(files)

	return files, nil
}

// Excluded reports whether a base name matches any exclude entry, either
// literally or as a glob pattern.
func Excluded(name string, exclude []string) bool {
	for _, pattern := range exclude {
		if pattern == name {
			return true
		}

		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}

	return false
}

func diagnosticCodes(items []diag.Diagnostic) []string {
	if len(items) == 0 {
		return nil
	}

	codes := make([]string, len(items))
	for i, item := range items {
		codes[i] = string(item.Code)
	}

	return codes
}
