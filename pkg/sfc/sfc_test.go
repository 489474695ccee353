package sfc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/sfc"
)

const counterSFC = `<template>
  <button @click="inc">{{ count }}</button>
</template>

<script>
export default {
  data() {
    return { count: 0 };
  },
};
</script>

<style scoped lang="less">
.a { color: red; }
</style>

<i18n lang="yaml">
en:
  hello: Hello
</i18n>
`

func TestParseSplitsBlocks(t *testing.T) {
	t.Parallel()

	file, err := sfc.Parse(context.Background(), "Counter.vue", []byte(counterSFC))
	require.NoError(t, err)

	require.NotNil(t, file.Template)
	assert.Contains(t, file.Template.Content, `<button @click="inc">`)

	require.NotNil(t, file.Script)
	assert.Contains(t, file.Script.Content, "export default")
	assert.Nil(t, file.ScriptSetup)

	require.Len(t, file.Styles, 1)

	_, scoped := file.Styles[0].Attr("scoped")
	assert.True(t, scoped)
	assert.Equal(t, "less", file.Styles[0].Lang("css"))
	assert.Contains(t, file.Styles[0].Content, ".a { color: red; }")

	loc := file.Localization()
	require.NotNil(t, loc)
	assert.Equal(t, "yaml", loc.Lang("json"))
	assert.Contains(t, loc.Content, "hello: Hello")
}

func TestParseScriptSetup(t *testing.T) {
	t.Parallel()

	src := `<script setup lang="ts">
const a = 1
</script>
<template><div>{{ a }}</div></template>
`

	file, err := sfc.Parse(context.Background(), "A.vue", []byte(src))
	require.NoError(t, err)

	require.NotNil(t, file.ScriptSetup)
	assert.Equal(t, "ts", file.ScriptSetup.Lang("js"))
	assert.Equal(t, "const a = 1", strings.TrimSpace(file.ScriptSetup.Content))
	assert.Equal(t, counterOffset(src, "const a"), file.ScriptSetup.Offset+strings.Index(file.ScriptSetup.Content, "const a"))
}

func TestParseRejectsEmptyComponent(t *testing.T) {
	t.Parallel()

	_, err := sfc.Parse(context.Background(), "Empty.vue", []byte("<style>.a{}</style>"))
	require.ErrorIs(t, err, sfc.ErrNoBlocks)
}

func counterOffset(src, needle string) int {
	return strings.Index(src, needle)
}
