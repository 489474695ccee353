package migrate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openInula/inula-sub000/pkg/migrate"
)

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	var long, changed []string
	for _, l := range []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9"} {
		long = append(long, l)
		changed = append(changed, l)
	}

	long = append(long, "l10")
	changed = append(changed, "X")

	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{
			name:   "equal",
			before: "a\n",
			after:  "a\n",
			want:   "",
		},
		{
			name:   "replace middle line",
			before: "a\nb\nc\n",
			after:  "a\nx\nc\n",
			want:   "--- a/f.jsx\n+++ b/f.jsx\n a\n-b\n+x\n c\n",
		},
		{
			name:   "new file",
			before: "",
			after:  "one\ntwo\n",
			want:   "--- a/f.jsx\n+++ b/f.jsx\n+one\n+two\n",
		},
		{
			name:   "collapsed context",
			before: strings.Join(long, "\n") + "\n",
			after:  strings.Join(changed, "\n") + "\n",
			want:   "--- a/f.jsx\n+++ b/f.jsx\n@@\n l7\n l8\n l9\n-l10\n+X\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, migrate.UnifiedDiff("f.jsx", tt.before, tt.after))
		})
	}
}
