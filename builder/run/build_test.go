package run

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/shutter/builder/config"
	"github.com/Kush-Singh-26/shutter/builder/images"
	"github.com/Kush-Singh-26/shutter/builder/models"
	"github.com/Kush-Singh-26/shutter/builder/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Build = config.DefaultBuildConfig()
	cfg.Build.RenderWorkers = 2
	cfg.Build.ImageWorkers = 2
	return cfg
}

func blogSource(t *testing.T) afero.Fs {
	src := afero.NewMemMapFs()
	testutil.WriteFiles(t, src, map[string]string{
		"src/posts/a.md": "---\ntitle: Alpha\ndate: 2024-01-01\ntags: [travel, food]\n---\n\n" +
			"{{ galleryImage \"src/images/p.png\" \"Sunset\" 0 }}\n",
		"src/posts/b.md":        "---\ntitle: Beta\ndate: 2024-01-02\ntags: travel\n---\n\nSecond post.\n",
		"src/posts/draft.md":    "---\ntitle: Hidden\ndate: 2024-01-03\ndraft: true\ntags: [travel, secret]\n---\n\nNot yet.\n",
		"src/about.md":          "---\ntitle: About\n---\n\nHello.\n",
		"src/assets/css/x.css":  "body{color:red}",
		"src/_includes/note.md": "not content",
	})
	testutil.WritePNG(t, src, "src/images/p.png", 360, 270)
	return src
}

func TestBuild_Site(t *testing.T) {
	b := NewMemoryBuilder(testConfig(), blogSource(t), nil, nil)

	m, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, m.ItemsLoaded)
	assert.Equal(t, 2, m.PostsPublished)
	assert.Equal(t, 3, m.TagPages)
	// one 320px width in webp and jpeg
	assert.Equal(t, int64(2), m.ImagesGenerated)

	alpha := testutil.ReadFile(t, b.DestFs, "_site/posts/a/index.html")
	assert.Contains(t, alpha, `data-lightbox-index="0"`)
	assert.Contains(t, alpha, `data-lightbox-alt="Sunset"`)
	assert.Contains(t, alpha, `<dialog id="lightbox"`)
	assert.Contains(t, alpha, `/assets/js/lightbox.js`)
	assert.Contains(t, alpha, `class="newer" href="/posts/b/"`)

	beta := testutil.ReadFile(t, b.DestFs, "_site/posts/b/index.html")
	assert.Contains(t, beta, `class="older" href="/posts/a/"`)
	assert.NotContains(t, beta, `class="newer"`)
	assert.NotContains(t, beta, `<dialog`)

	testutil.AssertFileNotExists(t, b.DestFs, "_site/posts/draft/index.html")
	testutil.AssertFileNotExists(t, b.DestFs, "_site/note/index.html")

	travel := testutil.ReadFile(t, b.DestFs, "_site/tags/travel/index.html")
	assert.Contains(t, travel, "Alpha")
	assert.Contains(t, travel, "Beta")
	assert.NotContains(t, travel, "Hidden")

	tags := testutil.ReadFile(t, b.DestFs, "_site/tags/index.html")
	assert.Contains(t, tags, `href="/tags/food/"`)
	assert.Contains(t, tags, `href="/tags/secret/"`)

	home := testutil.ReadFile(t, b.DestFs, "_site/index.html")
	assert.Less(t, strings.Index(home, "Beta"), strings.Index(home, "Alpha"))
	assert.NotContains(t, home, "Hidden")

	for _, name := range []string{
		"_site/about/index.html",
		"_site/assets/js/lightbox.js",
		"_site/assets/css/shutter.css",
		"_site/assets/css/x.css",
		"_site/images/p.png",
	} {
		testutil.AssertFileExists(t, b.DestFs, name)
	}

	variants, err := afero.ReadDir(b.DestFs, "_site/img")
	require.NoError(t, err)
	assert.Len(t, variants, 2)

	sitemap := testutil.ReadFile(t, b.DestFs, "_site/sitemap.xml")
	assert.Contains(t, sitemap, "<loc>/</loc>")
	assert.Contains(t, sitemap, "<loc>/posts/a/</loc>")
	assert.Contains(t, sitemap, "<loc>/tags/travel/</loc>")
	assert.NotContains(t, sitemap, "/posts/draft/")

	feed := testutil.ReadFile(t, b.DestFs, "_site/feed.xml")
	assert.Contains(t, feed, "<title>Beta</title>")
	assert.NotContains(t, feed, "Hidden")
}

func TestBuild_Drafts(t *testing.T) {
	cfg := testConfig()
	cfg.IncludeDrafts = true
	b := NewMemoryBuilder(cfg, blogSource(t), nil, nil)

	m, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, m.PostsPublished, "drafts never join the posts collection")

	testutil.AssertFileExists(t, b.DestFs, "_site/posts/draft/index.html")
	assert.Contains(t, testutil.ReadFile(t, b.DestFs, "_site/tags/travel/index.html"), "Hidden")
	assert.NotContains(t, testutil.ReadFile(t, b.DestFs, "_site/index.html"), "Hidden")
}

func TestBuild_MissingAltAborts(t *testing.T) {
	src := afero.NewMemMapFs()
	testutil.WriteFiles(t, src, map[string]string{
		"src/posts/a.md": "---\ntitle: A\ndate: 2024-01-01\n---\n\n{{ image \"src/images/p.png\" \"\" }}\n",
	})
	b := NewMemoryBuilder(testConfig(), src, nil, nil)

	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, images.ErrMissingAltText)
	assert.Contains(t, err.Error(), "posts/a.md")
}

func TestBuild_TagPagination(t *testing.T) {
	files := map[string]string{}
	for i := 1; i <= 13; i++ {
		files[fmt.Sprintf("src/posts/p%02d.md", i)] = fmt.Sprintf("---\ntitle: Post %02d\ndate: 2024-01-%02d\ntags: [x]\n---\n\nbody\n", i, i)
	}
	src := afero.NewMemMapFs()
	testutil.WriteFiles(t, src, files)
	b := NewMemoryBuilder(testConfig(), src, nil, nil)

	m, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, m.TagPages)

	first := testutil.ReadFile(t, b.DestFs, "_site/tags/x/index.html")
	assert.Contains(t, first, "Post 13")
	assert.NotContains(t, first, "Post 01")
	assert.Contains(t, first, `rel="next" href="/tags/x/page/2/"`)

	second := testutil.ReadFile(t, b.DestFs, "_site/tags/x/page/2/index.html")
	assert.Contains(t, second, "Post 01")
	assert.Contains(t, second, `rel="prev" href="/tags/x/"`)
	assert.Contains(t, second, "Page 2 of 2")
}

func TestBuild_CacheReuse(t *testing.T) {
	cm := testutil.CreateTestCache(t)
	src := blogSource(t)
	b := NewMemoryBuilder(testConfig(), src, cm, nil)

	first, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ImageCacheMisses)
	assert.Zero(t, first.RenderCacheHits.Load())

	second, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.ImageCacheHits)
	assert.Zero(t, second.ImagesGenerated)
	assert.Equal(t, first.RenderCacheMiss.Load(), second.RenderCacheHits.Load())

	variants, err := afero.ReadDir(b.DestFs, "_site/img")
	require.NoError(t, err)
	assert.Len(t, variants, 2, "restored variants are written again")

	stats, err := cm.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.BuildCount)
}

func TestTagPageURL(t *testing.T) {
	tests := []struct {
		tag  string
		page int
		want string
	}{
		{"travel", 0, "/tags/travel/"},
		{"travel", 1, "/tags/travel/page/2/"},
		{"Travel notes", 2, "/tags/Travel%20notes/page/3/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TagPageURL(tt.tag, tt.page))
	}
}

func TestTagPaginator(t *testing.T) {
	p := tagPaginator("https://x.dev", models.TagPage{Tag: "a", PageNumber: 1, PageSize: 12}, 3)
	assert.Equal(t, 2, p.CurrentPage)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, "https://x.dev/tags/a/", p.PrevURL)
	assert.Equal(t, "https://x.dev/tags/a/page/3/", p.NextURL)
	assert.Equal(t, "https://x.dev/tags/a/page/3/", p.LastURL)

	only := tagPaginator("", models.TagPage{Tag: "a"}, 1)
	assert.False(t, only.HasPrev)
	assert.False(t, only.HasNext)
	assert.Empty(t, only.NextURL)
}

func TestBuild_UnsafeTagsAbort(t *testing.T) {
	for _, tag := range []string{"..", ".", "a/page/2", "../posts/a"} {
		t.Run(tag, func(t *testing.T) {
			src := afero.NewMemMapFs()
			testutil.WriteFiles(t, src, map[string]string{
				"src/posts/a.md": fmt.Sprintf("---\ntitle: A\ndate: 2024-01-01\ntags: [a, %q]\n---\n\nbody\n", tag),
			})
			b := NewMemoryBuilder(testConfig(), src, nil, nil)

			_, err := b.Build(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsafeTag)
			testutil.AssertFileNotExists(t, b.DestFs, "_site/index.html")
			testutil.AssertFileNotExists(t, b.DestFs, "_site/tags/index.html")
		})
	}
}

func TestBuild_OutputConflictAborts(t *testing.T) {
	tests := []struct {
		name      string
		permalink string
	}{
		{"tag page", "/tags/travel/"},
		{"tag index", "/tags/"},
		{"percent-encoded twin", "/posts/b%2Fx/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := afero.NewMemMapFs()
			testutil.WriteFiles(t, src, map[string]string{
				"src/posts/a.md": "---\ntitle: A\ndate: 2024-01-01\ntags: [travel]\n---\n\nbody\n",
				"src/posts/b/x.md": "---\ntitle: X\ndate: 2024-01-02\n---\n\nbody\n",
				"src/clash.md":     "---\ntitle: Clash\npermalink: " + tt.permalink + "\n---\n\nbody\n",
			})
			b := NewMemoryBuilder(testConfig(), src, nil, nil)

			_, err := b.Build(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutputConflict)
			assert.Contains(t, err.Error(), "clash.md")
		})
	}
}

func TestTagSegmentSafe(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"travel", true},
		{"Travel notes", true},
		{"...", true},
		{"v1.2", true},
		{"%2E%2E", true},
		{"", false},
		{".", false},
		{"..", false},
		{"AC/DC", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tagSegmentSafe(tt.tag), tt.tag)
	}
}

func TestBuild_BodiesSeeCollectionSnapshot(t *testing.T) {
	src := afero.NewMemMapFs()
	testutil.WriteFiles(t, src, map[string]string{
		"src/posts/a.md": "---\ntitle: Alpha\ndate: 2024-01-01\n---\n\n" +
			"{{ range .Collections.posts }}<i>{{ .Title }}:{{ len .Content }}</i>{{ end }}\n",
		"src/posts/b.md": "---\ntitle: Beta\ndate: 2024-01-02\n---\n\nSecond post with a longer body.\n",
		"src/posts/c.md": "---\ntitle: Gamma\ndate: 2024-01-03\n---\n\nThird post.\n",
	})
	b := NewMemoryBuilder(testConfig(), src, nil, nil)

	_, err := b.Build(context.Background())
	require.NoError(t, err)

	alpha := testutil.ReadFile(t, b.DestFs, "_site/posts/a/index.html")
	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		assert.Contains(t, alpha, "<i>"+title+":0</i>")
	}
	beta := testutil.ReadFile(t, b.DestFs, "_site/posts/b/index.html")
	assert.Contains(t, beta, "Second post with a longer body.")
}

func TestSnapshotCollections(t *testing.T) {
	orig := &models.Item{Title: "Alpha", Content: "<p>x</p>"}
	tagPages := []models.TagPage{{Tag: "travel"}}
	cols := map[string]interface{}{
		"posts":    []*models.Item{orig},
		"tagPages": tagPages,
	}

	snap := snapshotCollections(cols)

	posts := snap["posts"].([]*models.Item)
	require.Len(t, posts, 1)
	assert.NotSame(t, orig, posts[0])
	assert.Equal(t, "Alpha", posts[0].Title)

	orig.Content = "<p>changed</p>"
	assert.Equal(t, "<p>x</p>", string(posts[0].Content))
	assert.Equal(t, tagPages, snap["tagPages"])
}
