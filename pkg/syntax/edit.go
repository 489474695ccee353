package syntax

import (
	"slices"
	"strings"
)

// Edit replaces the half-open byte range [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
	seq   int
}

// Editor accumulates non-overlapping edits against an immutable source buffer.
// An edit that covers earlier edits absorbs them; an edit that falls inside an
// earlier one is dropped.
type Editor struct {
	src   []byte
	edits []Edit
	seq   int
}

// NewEditor returns an editor over src.
func NewEditor(src []byte) *Editor {
	return &Editor{src: src}
}

// Replace records a replacement of [start, end).
func (e *Editor) Replace(start, end int, text string) {
	if start < 0 || end > len(e.src) || start > end {
		return
	}

	for _, existing := range e.edits {
		if swallows(existing, start, end) {
			return
		}
	}

	kept := e.edits[:0]

	for _, existing := range e.edits {
		if start < end && existing.Start >= start && existing.End <= end && !isBoundaryInsert(existing, start, end) {
			continue
		}

		kept = append(kept, existing)
	}

	e.seq++
	e.edits = append(kept, Edit{Start: start, End: end, Text: text, seq: e.seq})
}

func swallows(existing Edit, start, end int) bool {
	if existing.Start == existing.End {
		return false
	}

	if start == end {
		return existing.Start < start && existing.End > start
	}

	return existing.Start <= start && existing.End >= end && (existing.Start < start || existing.End > end)
}

func isBoundaryInsert(edit Edit, start, end int) bool {
	return edit.Start == edit.End && (edit.Start == start || edit.Start == end)
}

// Insert records an insertion before offset at.
func (e *Editor) Insert(at int, text string) {
	e.Replace(at, at, text)
}

// Delete records removal of [start, end).
func (e *Editor) Delete(start, end int) {
	e.Replace(start, end, "")
}

// Span renders [start, end) with every edit contained in it applied.
func (e *Editor) Span(start, end int) string {
	if start < 0 {
		start = 0
	}

	if end > len(e.src) {
		end = len(e.src)
	}

	inside := make([]Edit, 0, len(e.edits))

	for _, edit := range e.edits {
		if edit.Start >= start && edit.End <= end {
			inside = append(inside, edit)
		}
	}

	slices.SortStableFunc(inside, func(a, b Edit) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}

		if aEmpty, bEmpty := a.Start == a.End, b.Start == b.End; aEmpty != bEmpty {
			if aEmpty {
				return -1
			}

			return 1
		}

		return a.seq - b.seq
	})

	var sb strings.Builder

	cursor := start

	for _, edit := range inside {
		if edit.Start < cursor {
			continue
		}

		sb.Write(e.src[cursor:edit.Start])
		sb.WriteString(edit.Text)
		cursor = edit.End
	}

	sb.Write(e.src[cursor:end])

	return sb.String()
}

// String renders the whole buffer with all edits applied.
func (e *Editor) String() string {
	return e.Span(0, len(e.src))
}

// Len returns the number of recorded edits.
func (e *Editor) Len() int {
	return len(e.edits)
}
