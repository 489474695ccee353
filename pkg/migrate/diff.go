package migrate

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

// UnifiedDiff renders a line diff between before and after with
// unified-style headers. Long unchanged runs are collapsed to "@@" markers.
// Equal inputs yield an empty string.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	var sb strings.Builder

	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)

	for i, d := range diffs {
		text := splitLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", text)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", text)
		case diffmatchpatch.DiffEqual:
			writeContext(&sb, text, i == 0, i == len(diffs)-1)
		}
	}

	return sb.String()
}

func writeContext(sb *strings.Builder, text []string, first, last bool) {
	head, tail := diffContext, diffContext
	if first {
		head = 0
	}

	if last {
		tail = 0
	}

	if len(text) <= head+tail {
		writeLines(sb, " ", text)

		return
	}

	writeLines(sb, " ", text[:head])
	sb.WriteString("@@\n")
	writeLines(sb, " ", text[len(text)-tail:])
}

func writeLines(sb *strings.Builder, prefix string, text []string) {
	for _, line := range text {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

func splitLines(text string) []string {
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	for i := range parts {
		parts[i] = strings.TrimSuffix(parts[i], "\n")
	}

	return parts
}
