package content

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for p, body := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(body), 0644))
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"src/index.md":             "---\ntitle: Home\n---\n",
		"src/posts/b.md":           "---\ntitle: B\ndate: 2024-01-02\ntags: [travel]\n---\nB body",
		"src/posts/a.md":           "---\ntitle: A\ndate: 2024-01-01\n---\nA body",
		"src/_includes/post.html":  "<html></html>",
		"src/_includes/partial.md": "---\ntitle: Not content\n---\n",
		"src/assets/readme.md":     "asset notes",
		"src/.hidden/secret.md":    "---\ntitle: hidden\n---\n",
		"src/images/photo.jpg":     "binary",
	})

	items, err := Load(fs, "src", Options{
		DirLayouts:    map[string]string{"posts": "post.html"},
		DefaultLayout: "page.html",
		Skip:          []string{"_includes", "assets"},
	})
	require.NoError(t, err)

	var paths []string
	for _, it := range items {
		paths = append(paths, it.InputPath)
	}
	assert.Equal(t, []string{"index.md", "posts/a.md", "posts/b.md"}, paths)

	assert.Equal(t, "/", items[0].URL)
	assert.Equal(t, "page.html", items[0].Layout)
	assert.Equal(t, "post.html", items[1].Layout)
	assert.Equal(t, []string{"travel"}, items[2].Tags)
}

func TestLoad_ParseErrorNamesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"src/posts/broken.md": "---\ntitle: never closed\n",
	})

	_, err := Load(fs, "src", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.md")
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "src", Options{})
	assert.Error(t, err)
}
