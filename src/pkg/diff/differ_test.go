package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffer_Diff(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		head        string
		wantEmpty   bool
		wantAdded   int
		wantDeleted int
	}{
		{
			name:      "identical",
			base:      "a\nb\n",
			head:      "a\nb\n",
			wantEmpty: true,
		},
		{
			name:      "added section",
			base:      "Description\n",
			head:      "Description\n\n<!--- section --->\nX\n",
			wantAdded: 3,
		},
		{
			name:        "replaced line",
			base:        "one\ntwo\nthree\n",
			head:        "one\n2\nthree\n",
			wantAdded:   1,
			wantDeleted: 1,
		},
		{
			name:        "emptied",
			base:        "one\ntwo\n",
			head:        "",
			wantDeleted: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewDiffer().Diff(tt.base, tt.head)
			require.NoError(t, err)

			if tt.wantEmpty {
				assert.Empty(t, out)
				return
			}
			assert.True(t, strings.HasPrefix(out, "--- base\n+++ head\n"), out)

			added, deleted, total := CalcLineChanges(out)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantDeleted, deleted)
			assert.Equal(t, tt.wantAdded+tt.wantDeleted, total)
		})
	}
}

func TestCalcLineChanges(t *testing.T) {
	content := "--- base\n+++ head\n@@ -1,2 +1,2 @@\n context\n-old\n+new\n+more\n"
	added, deleted, total := CalcLineChanges(content)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 3, total)

	added, deleted, total = CalcLineChanges("")
	assert.Zero(t, added+deleted+total)
}
