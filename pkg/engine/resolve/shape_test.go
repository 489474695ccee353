package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/engine/resolve"
)

func TestIsBooleanShaped(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"!visible":              true,
		"a === b":               true,
		"(count > 0)":           true,
		"true":                  true,
		"!a && b < 2":           true,
		"visible":               false,
		"items.length":          false,
		"a && b":                false,
		"Array.isArray(list)":   true,
		"user ? user.ok : null": false,
	}

	for in, want := range tests {
		assert.Equal(t, want, resolve.IsBooleanShaped(in), in)
	}
}

func TestIsHandlerReference(t *testing.T) {
	t.Parallel()

	assert.True(t, resolve.IsHandlerReference("save"))
	assert.True(t, resolve.IsHandlerReference("actions.save"))
	assert.True(t, resolve.IsHandlerReference("(e) => save(e)"))
	assert.False(t, resolve.IsHandlerReference("save($event)"))
	assert.False(t, resolve.IsHandlerReference("count++"))
	assert.True(t, resolve.IsFunctionExpression("function (e) { save(e) }"))
	assert.False(t, resolve.IsFunctionExpression("save"))
}

func TestNameCasing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "onUpdateModelValue", resolve.HandlerProp("update:modelValue"))
	assert.Equal(t, "onMyEvent", resolve.HandlerProp("my-event"))
	assert.Equal(t, "MyButton", resolve.Pascal("my-button"))
	assert.Equal(t, "fontSize", resolve.Camel("font-size"))
}

func TestBindingNames(t *testing.T) {
	t.Parallel()

	names, err := resolve.BindingNames("item, index")
	require.NoError(t, err)
	assert.Equal(t, []string{"item", "index"}, names)

	names, err = resolve.BindingNames("{ id, name: label = 'x' }, [a, ...rest]")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "label", "a", "rest"}, names)

	names, err = resolve.BindingNames("")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = resolve.BindingNames("item +")
	require.ErrorIs(t, err, resolve.ErrSyntax)
}
