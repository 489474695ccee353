package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/engine/script"
	"github.com/openInula/inula-sub000/pkg/migrate"
)

const greetingSFC = `<template>
  <div class="greeting">{{ message }}</div>
</template>

<script>
export default {
  data() {
    return { message: 'hi' };
  },
};
</script>

<style scoped>
.greeting { color: red; }
</style>
`

const brokenSFC = `<script>
export default { data() { return load(); } };
</script>
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "App.vue"), greetingSFC)
	writeFile(t, filepath.Join(root, "a", "node_modules", "x", "Lib.vue"), greetingSFC)
	writeFile(t, filepath.Join(root, "b", "Nav.vue"), greetingSFC)
	writeFile(t, filepath.Join(root, "b", "README.md"), "# nav")
	writeFile(t, filepath.Join(root, "c", "Nav.spec.vue"), greetingSFC)

	files, err := migrate.Discover(root, []string{"node_modules", "*.spec.vue"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a", "App.vue"),
		filepath.Join(root, "b", "Nav.vue"),
	}, files)
}

func TestExcluded(t *testing.T) {
	t.Parallel()

	assert.True(t, migrate.Excluded("node_modules", []string{"node_modules"}))
	assert.True(t, migrate.Excluded("Card.stories.vue", []string{"*.stories.vue"}))
	assert.False(t, migrate.Excluded("Card.vue", []string{"*.stories.vue", "dist"}))
	assert.False(t, migrate.Excluded("Card.vue", nil))
}

func TestRun_WritesOutputs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Greeting.vue"), greetingSFC)

	runner := migrate.New(migrate.Options{Root: root, StateFile: ".state.json"})

	report, err := runner.Run(t.Context())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	res := report.Files[0]
	require.NoError(t, res.Err)
	assert.Equal(t, migrate.StatusConverted, res.Status)
	assert.Equal(t, filepath.Join(root, "Greeting.jsx"), res.Output)
	assert.Equal(t, []string{filepath.Join(root, "Greeting.scoped.css")}, res.Styles)

	code, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Contains(t, string(code), "function Greeting(")
	assert.Contains(t, string(code), "import './Greeting.scoped.css';")
	assert.Contains(t, string(code), "{state.message}")
	assert.Equal(t, len(code), res.Bytes)

	css, err := os.ReadFile(res.Styles[0])
	require.NoError(t, err)
	assert.Contains(t, string(css), ".greeting { color: red; }")

	state, err := migrate.LoadState(filepath.Join(root, ".state.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, state.Files)
	assert.False(t, state.LastBuild.IsZero())
}

func TestRun_OutDirMirrorsLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(root, "components", "Greeting.vue"), greetingSFC)

	report, err := migrate.New(migrate.Options{Root: root, OutDir: out}).Run(t.Context())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	assert.FileExists(t, filepath.Join(out, "components", "Greeting.jsx"))
	assert.FileExists(t, filepath.Join(out, "components", "Greeting.scoped.css"))
	assert.NoFileExists(t, filepath.Join(root, "components", "Greeting.jsx"))
}

func TestRun_Incremental(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "Greeting.vue")
	writeFile(t, path, greetingSFC)

	opts := migrate.Options{Root: root, StateFile: ".state.json", Workers: 2}

	first, err := migrate.New(opts).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count(migrate.StatusConverted))

	second, err := migrate.New(opts).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Count(migrate.StatusSkipped))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := migrate.New(opts).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, third.Count(migrate.StatusConverted))

	opts.Force = true
	require.NoError(t, os.Chtimes(path, first.Started.Add(-time.Hour), first.Started.Add(-time.Hour)))

	forced, err := migrate.New(opts).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, forced.Count(migrate.StatusConverted))
}

func TestRun_FailedFileDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Broken.vue"), brokenSFC)
	writeFile(t, filepath.Join(root, "Greeting.vue"), greetingSFC)

	report, err := migrate.New(migrate.Options{Root: root, StateFile: ".state.json"}).Run(t.Context())
	require.NoError(t, err)

	assert.True(t, report.Failed())
	assert.Equal(t, 1, report.Count(migrate.StatusFailed))
	assert.Equal(t, 1, report.Count(migrate.StatusConverted))

	assert.Equal(t, filepath.Join(root, "Broken.vue"), report.Files[0].Path)
	require.ErrorIs(t, report.Files[0].Err, script.ErrDataNotObject)

	assert.NoFileExists(t, filepath.Join(root, ".state.json"))
	assert.FileExists(t, filepath.Join(root, "Greeting.jsx"))
}

func TestConvertFile_CacheReusesUnchangedSource(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "Greeting.vue")
	writeFile(t, path, greetingSFC)

	runner := migrate.New(migrate.Options{Root: root, CacheSize: 1 << 20})

	first := runner.ConvertFile(t.Context(), path, time.Time{})
	require.Equal(t, migrate.StatusConverted, first.Status)

	second := runner.ConvertFile(t.Context(), path, time.Time{})
	require.Equal(t, migrate.StatusConverted, second.Status)
	assert.Equal(t, first.Bytes, second.Bytes)

	writeFile(t, path, strings.Replace(greetingSFC, "'hi'", "'hello'", 1))

	third := runner.ConvertFile(t.Context(), path, time.Time{})
	require.Equal(t, migrate.StatusConverted, third.Status)

	stats := runner.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.Entries)
}

func TestConvertFile_CacheDisabled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "Greeting.vue")
	writeFile(t, path, greetingSFC)

	runner := migrate.New(migrate.Options{Root: root})
	runner.ConvertFile(t.Context(), path, time.Time{})

	assert.Zero(t, runner.CacheStats())
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Greeting.vue"), greetingSFC)

	report, err := migrate.New(migrate.Options{Root: root, StateFile: ".state.json", DryRun: true}).Run(t.Context())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	res := report.Files[0]
	assert.Equal(t, migrate.StatusConverted, res.Status)
	assert.Contains(t, res.Diff, "+++ b/Greeting.jsx")
	assert.Contains(t, res.Diff, "+function Greeting(")
	assert.Contains(t, res.Diff, "+++ b/Greeting.scoped.css")

	assert.NoFileExists(t, filepath.Join(root, "Greeting.jsx"))
	assert.NoFileExists(t, filepath.Join(root, ".state.json"))
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Greeting.vue"), greetingSFC)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report, err := migrate.New(migrate.Options{Root: root}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Files)
	assert.NoFileExists(t, filepath.Join(root, "Greeting.jsx"))
}

func TestWatch_ConvertsOnWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	runner := migrate.New(migrate.Options{Root: root, Exclude: []string{"node_modules"}})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	results := make(chan migrate.FileResult, 16)
	done := make(chan error, 1)

	go func() {
		done <- runner.Watch(ctx, func(res migrate.FileResult) { results <- res })
	}()

	path := filepath.Join(root, "Greeting.vue")

	var got migrate.FileResult

	require.Eventually(t, func() bool {
		writeFile(t, path, greetingSFC)

		select {
		case got = <-results:
			return true
		case <-time.After(300 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 10*time.Millisecond)

	assert.Equal(t, path, got.Path)
	assert.Equal(t, migrate.StatusConverted, got.Status)
	assert.FileExists(t, filepath.Join(root, "Greeting.jsx"))

	cancel()
	require.NoError(t, <-done)
}
