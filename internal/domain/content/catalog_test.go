package content

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessonFile(title, slug, description string, order int) *fstest.MapFile {
	src := "---\ntitle: " + title + "\nslug: " + slug + "\ndescription: " + description +
		"\norder: " + strconv.Itoa(order) + "\n---\n\n## Section\n\n" +
		"```sandbox id=demo\nreturn '" + slug + "';\n```\n"
	return &fstest.MapFile{Data: []byte(src)}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(nil, nil)
	require.NoError(t, c.Load(fstest.MapFS{
		"state.md":          lessonFile("State", "state", "Managing component state in React", 2),
		"props.md":          lessonFile("Props", "props", "Understanding props and data flow in React", 1),
		"advanced/hooks.md": lessonFile("Hooks", "hooks", "Using React Hooks for state and side effects", 3),
		"notes.txt":         &fstest.MapFile{Data: []byte("ignored")},
	}))
	return c
}

func TestBuiltinLessonsLoad(t *testing.T) {
	c, err := Open("", nil, nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, c.Len(), 6)

	seed, err := c.Sandbox("state", "counter")
	require.NoError(t, err)
	assert.Equal(t, "Counter.js", seed.FileName)

	questions, err := c.Quiz("props", "props-basics")
	require.NoError(t, err)
	require.Len(t, questions, 4)
	assert.Equal(t, 1, questions[0].Correct)
	assert.Equal(t, 2, questions[1].Correct)

	questions, err = c.Quiz("typescript", "typescript-basics")
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	_, err = c.Quiz("context", "context-basics")
	assert.NoError(t, err)
}

func TestCatalogListOrder(t *testing.T) {
	c := testCatalog(t)

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"props", "state", "hooks"}, []string{list[0].Slug, list[1].Slug, list[2].Slug})
	assert.Equal(t, "/props", list[0].Path)
}

func TestCatalogLookups(t *testing.T) {
	c := testCatalog(t)

	_, err := c.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Sandbox("state", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Quiz("state", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	seed, err := c.Sandbox("hooks", "demo")
	require.NoError(t, err)
	assert.Equal(t, "return 'hooks';", seed.InitialCode)
}

func TestCatalogSearch(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"STATE", []string{"state", "hooks"}},
		{"props", []string{"props"}},
		{"data flow", []string{"props"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := []string{}
			for _, s := range c.Search(tt.query) {
				got = append(got, s.Slug)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogLoadFailureKeepsPrevious(t *testing.T) {
	c := testCatalog(t)

	err := c.Load(fstest.MapFS{
		"a.md": lessonFile("A", "same", "x", 1),
		"b.md": lessonFile("B", "same", "y", 2),
	})
	assert.ErrorIs(t, err, ErrInvalidLesson)
	assert.Equal(t, 3, c.Len())
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jsx.md"), lessonFile("JSX", "jsx", "syntax", 1).Data, 0o644))

	c, err := Open(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Open(filepath.Join(dir, "missing"), nil, nil)
	assert.Error(t, err)
}
