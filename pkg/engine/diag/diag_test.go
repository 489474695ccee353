package diag_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
)

func TestReporterLogsWithFile(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rep := diag.NewReporter(logger, "src/App.vue")

	rep.Warn(diag.CodeUnknownOption, "unknown option %q", "mixins")

	assert.Equal(t, 1, rep.Count())
	assert.True(t, rep.Has(diag.CodeUnknownOption))
	assert.False(t, rep.Has(diag.CodeExpression))
	assert.Contains(t, buf.String(), `"file":"src/App.vue"`)
	assert.Contains(t, buf.String(), `"code":"unknown-option"`)

	items := rep.Diagnostics()
	assert.Equal(t, `src/App.vue: unknown option "mixins" [unknown-option]`, items[0].String())
}

func TestReporterNilLogger(t *testing.T) {
	t.Parallel()

	rep := diag.NewReporter(nil, "A.vue")
	rep.Warn(diag.CodeExpression, "bad")

	assert.Len(t, rep.Diagnostics(), 1)
}
