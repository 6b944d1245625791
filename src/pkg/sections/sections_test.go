package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBlock(t *testing.T) {
	got := BuildBlock("preview", "X")
	want := "<!--- actual-pr-body-section key:preview start --->\nX\n\n<!--- actual-pr-body-section key:preview end --->\n"
	assert.Equal(t, want, got)
}

func TestUpsert(t *testing.T) {
	block := strings.TrimSpace(BuildBlock("preview", "X"))
	opts := DefaultOptions()

	tests := []struct {
		name string
		body string
		opts Options
		want string
	}{
		{
			name: "empty body is the block alone",
			body: "",
			opts: Options{InsertBefore: "<!--stats-->"},
			want: block,
		},
		{
			name: "whitespace body is the block alone",
			body: "  \n",
			opts: opts,
			want: block,
		},
		{
			name: "appends with boundary",
			body: "Hello",
			opts: opts,
			want: "Hello\n\n" + BOUNDARY_TEXT + "\n\n" + block,
		},
		{
			name: "appends after trailing newline",
			body: "Hello\n",
			opts: opts,
			want: "Hello\n\n" + BOUNDARY_TEXT + "\n\n" + block,
		},
		{
			name: "no boundary when options omit it",
			body: "Hello",
			opts: Options{},
			want: "Hello\n\n" + block,
		},
		{
			name: "boundary added once",
			body: "Hello\n\n" + BOUNDARY_TEXT,
			opts: opts,
			want: "Hello\n\n" + BOUNDARY_TEXT + "\n\n" + block,
		},
		{
			name: "inserts before anchor",
			body: "Hello\n\n" + BUNDLE_STATS_MARKER + "\nstats",
			opts: opts,
			want: "Hello\n\n" + BOUNDARY_TEXT + "\n\n" + block + "\n\n" + BUNDLE_STATS_MARKER + "\nstats",
		},
		{
			name: "inserts before anchor at start of body",
			body: BUNDLE_STATS_MARKER + "\nstats",
			opts: Options{InsertBefore: BUNDLE_STATS_MARKER},
			want: block + "\n\n" + BUNDLE_STATS_MARKER + "\nstats",
		},
		{
			name: "missing anchor appends",
			body: "Hello",
			opts: Options{InsertBefore: "<!--stats-->"},
			want: "Hello\n\n" + block,
		},
		{
			name: "replaces existing block in place",
			body: "Hello\n\n" + strings.TrimSpace(BuildBlock("preview", "old")) + "\n\nfooter",
			opts: opts,
			want: "Hello\n\n" + block + "\n\nfooter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Upsert(tt.body, "preview", "X", tt.opts))
		})
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	bodies := []string{
		"",
		"Hello",
		"Hello\n\n" + BUNDLE_STATS_MARKER + "\nstats\n",
		"Hello\n\n" + BOUNDARY_TEXT,
		"Human intro\n" + MarkersFor("preview").Start + "\nkept by the author\n",
		MarkersFor("preview").End + "\nHello",
	}

	for _, body := range bodies {
		once := Upsert(body, "preview", "content", DefaultOptions())
		twice := Upsert(once, "preview", "content", DefaultOptions())
		assert.Equal(t, once, twice)
		assert.LessOrEqual(t, strings.Count(twice, BOUNDARY_MARKER), 1)
	}
}

func TestUpsert_DoesNotTouchOtherSections(t *testing.T) {
	body := Upsert("Hello", "a", "first", DefaultOptions())
	body = Upsert(body, "b", "second", DefaultOptions())
	blockB := strings.TrimSpace(BuildBlock("b", "second"))

	updated := Upsert(body, "a", "changed", DefaultOptions())

	assert.Contains(t, updated, blockB)
	assert.Contains(t, updated, "changed")
	assert.NotContains(t, updated, "first")
	assert.Equal(t, 1, strings.Count(updated, BOUNDARY_MARKER))
	assert.True(t, strings.HasPrefix(updated, "Hello\n\n"))
}

func TestUpsert_DanglingStartMarker(t *testing.T) {
	m := MarkersFor("preview")
	body := "Human intro\n" + m.Start + "\nkept by the author\n"

	once := Upsert(body, "preview", "X", DefaultOptions())
	assert.True(t, strings.HasPrefix(once, body))

	updated := Upsert(once, "preview", "Y", DefaultOptions())
	assert.True(t, strings.HasPrefix(updated, body), "text above the block must survive")
	assert.Contains(t, updated, BOUNDARY_MARKER)
	assert.Contains(t, updated, "kept by the author")
	assert.Contains(t, updated, "Y")
	assert.NotContains(t, updated, "\nX\n")
	assert.Equal(t, 2, strings.Count(updated, m.Start))
	assert.Equal(t, 1, strings.Count(updated, m.End))
}

func TestUpsert_StrayEndMarkerBeforeBlock(t *testing.T) {
	m := MarkersFor("preview")
	block := strings.TrimSpace(BuildBlock("preview", "old"))
	body := "Intro " + m.End + "\n\n" + block

	updated := Upsert(body, "preview", "new", Options{})

	assert.Equal(t, "Intro "+m.End+"\n\n"+strings.TrimSpace(BuildBlock("preview", "new")), updated)
}

func TestUpsert_KeysAreMatchedLiterally(t *testing.T) {
	body := Upsert("", "axb", "other", Options{})
	updated := Upsert(body, "a.b", "mine", Options{})

	assert.Contains(t, updated, "other")
	assert.Contains(t, updated, "mine")
	assert.True(t, Has(updated, "a.b"))
	assert.True(t, Has(updated, "axb"))
}

func TestHas(t *testing.T) {
	m := MarkersFor("preview")
	assert.True(t, Has(BuildBlock("preview", "x"), "preview"))
	assert.False(t, Has("nothing", "preview"))
	assert.False(t, Has(m.Start+"\nno end", "preview"))
	assert.False(t, Has(m.End+"\n"+m.Start, "preview"))
	assert.True(t, Has(m.Start+"\ndangling\n"+BuildBlock("preview", "x"), "preview"))
}
