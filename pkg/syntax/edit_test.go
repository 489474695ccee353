package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openInula/inula-sub000/pkg/syntax"
)

func TestEditorReplaceAndSpan(t *testing.T) {
	t.Parallel()

	src := []byte("a + b * c")
	ed := syntax.NewEditor(src)

	ed.Replace(0, 1, "props.a")
	ed.Replace(8, 9, "c.value")

	assert.Equal(t, "props.a + b * c.value", ed.String())
	assert.Equal(t, "b * c.value", ed.Span(4, 9))
	assert.Equal(t, 2, ed.Len())
}

func TestEditorOuterEditAbsorbsInner(t *testing.T) {
	t.Parallel()

	ed := syntax.NewEditor([]byte("f(x)"))

	ed.Replace(2, 3, "x.value")
	ed.Replace(0, 4, "g("+ed.Span(2, 3)+")")

	assert.Equal(t, "g(x.value)", ed.String())
	assert.Equal(t, 1, ed.Len())
}

func TestEditorInnerEditIgnoredInsideOuter(t *testing.T) {
	t.Parallel()

	ed := syntax.NewEditor([]byte("this.count"))

	ed.Replace(0, 10, "count.value")
	ed.Replace(5, 10, "other")

	assert.Equal(t, "count.value", ed.String())
}

func TestEditorInsertKeepsOrder(t *testing.T) {
	t.Parallel()

	ed := syntax.NewEditor([]byte("x"))

	ed.Insert(0, "a")
	ed.Insert(0, "b")
	ed.Replace(0, 1, "y")
	ed.Insert(1, "!")

	assert.Equal(t, "aby!", ed.String())
}

func TestEditorDelete(t *testing.T) {
	t.Parallel()

	ed := syntax.NewEditor([]byte("const vm = this;\nrun();"))

	ed.Delete(0, 17)

	assert.Equal(t, "run();", ed.String())
}

func TestEditorRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	ed := syntax.NewEditor([]byte("abc"))

	ed.Replace(2, 10, "z")
	ed.Replace(-1, 1, "z")

	assert.Equal(t, "abc", ed.String())
	assert.Zero(t, ed.Len())
}
