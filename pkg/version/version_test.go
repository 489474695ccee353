package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openInula/inula-sub000/pkg/version"
)

func TestString(t *testing.T) {
	version.InitBinaryVersion()

	out := version.String()
	assert.Contains(t, out, "vue2inula "+version.Version)
	assert.Contains(t, out, "commit: "+version.Commit)
	assert.NotEmpty(t, version.Version)
}
