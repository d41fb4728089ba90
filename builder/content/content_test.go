package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/shutter/builder/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func urls(items []*models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.URL)
	}
	return out
}

func TestSet_AllSortedAscendingStable(t *testing.T) {
	set := NewSet([]*models.Item{
		{URL: "/c/", Date: day(3)},
		{URL: "/a1/", Date: day(1)},
		{URL: "/b/", Date: day(2)},
		{URL: "/a2/", Date: day(1)},
	})

	assert.Equal(t, []string{"/a1/", "/a2/", "/b/", "/c/"}, urls(set.All()))
	assert.Equal(t, 4, set.Len())
}

func TestSet_AllReturnsCopy(t *testing.T) {
	set := NewSet([]*models.Item{{URL: "/a/"}, {URL: "/b/"}})
	all := set.All()
	all[0] = nil
	assert.NotNil(t, set.All()[0])
}

func TestSet_FilteredByGlob(t *testing.T) {
	set := NewSet([]*models.Item{
		{URL: "/posts/one/", InputPath: "posts/one.md", Date: day(1)},
		{URL: "/about/", InputPath: "about.md", Date: day(2)},
		{URL: "/posts/two/", InputPath: "posts/two.md", Date: day(3)},
		{URL: "/posts/deep/x/", InputPath: "posts/deep/x.md", Date: day(4)},
	})

	assert.Equal(t, []string{"/posts/one/", "/posts/two/"}, urls(set.FilteredByGlob("posts/*.md")))
	assert.Empty(t, set.FilteredByGlob("drafts/*.md"))
}

func TestSet_FilteredByTag(t *testing.T) {
	set := NewSet([]*models.Item{
		{URL: "/b/", Tags: []string{"travel"}, Date: day(2)},
		{URL: "/a/", Tags: []string{"travel", "food"}, Date: day(1)},
		{URL: "/c/", Tags: []string{"food"}, Date: day(3)},
		{URL: "/d/", Date: day(4)},
	})

	assert.Equal(t, []string{"/a/", "/b/"}, urls(set.FilteredByTag("travel")))
	assert.Equal(t, []string{"/a/", "/c/"}, urls(set.FilteredByTag("food")))
	assert.Empty(t, set.FilteredByTag("missing"))
}

var _ Collection = (*Set)(nil)

func TestParse_FrontMatterFields(t *testing.T) {
	src := []byte(`---
title: Lisbon
description: Trams and tiles
date: 2024-01-03
tags: [travel, portugal]
draft: false
---
Body`)

	item, err := Parse("posts/lisbon.md", src, day(9), Options{DirLayouts: map[string]string{"posts": "post.html"}, DefaultLayout: "page.html"})
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", item.Title)
	assert.Equal(t, "Trams and tiles", item.Description)
	assert.Equal(t, "/posts/lisbon/", item.URL)
	assert.Equal(t, "post.html", item.Layout)
	assert.Equal(t, []string{"travel", "portugal"}, item.Tags)
	assert.False(t, item.Draft)
	assert.Equal(t, "2024-01-03", item.Date.UTC().Format("2006-01-02"))
	assert.Equal(t, "Body", item.Body)
}

func TestParse_Defaults(t *testing.T) {
	mod := day(7)
	item, err := Parse("about/index.md", []byte("# About"), mod, Options{DefaultLayout: "page.html"})
	require.NoError(t, err)

	assert.Equal(t, "/about/", item.URL)
	assert.Equal(t, "page.html", item.Layout)
	assert.True(t, item.Date.Equal(mod), "missing date falls back to mod time")
	assert.Nil(t, item.Tags)
	assert.False(t, item.Draft)
}

func TestParse_SingleTagAndPermalink(t *testing.T) {
	src := []byte("---\ntags: nav\npermalink: contact/\nlayout: custom.html\n---\n")
	item, err := Parse("contact.md", src, day(1), Options{DefaultLayout: "page.html"})
	require.NoError(t, err)

	assert.Equal(t, []string{"nav"}, item.Tags)
	assert.Equal(t, "/contact/", item.URL)
	assert.Equal(t, "custom.html", item.Layout)
}

func TestParse_BadDate(t *testing.T) {
	_, err := Parse("x.md", []byte("---\ndate: yesterday\n---\n"), day(1), Options{})
	assert.Error(t, err)
}

func TestItemURL(t *testing.T) {
	tests := map[string]string{
		"index.md":       "/",
		"posts/hello.md": "/posts/hello/",
		"about/index.md": "/about/",
		"a/b/c.md":       "/a/b/c/",
		"posts/index.md": "/posts/",
		"Mixed Case.md":  "/Mixed Case/",
	}
	for in, want := range tests {
		assert.Equal(t, want, itemURL(in, ""), in)
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy(0))
	assert.True(t, truthy(true))
	assert.True(t, truthy("yes"))
	assert.True(t, truthy(1))
	assert.True(t, truthy([]interface{}{}))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   interface{}
		want time.Time
	}{
		{"2024-01-03", day(3)},
		{"2024-01-03 10:30", time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC)},
		{"2024-01-03T10:30:00Z", time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC)},
		{day(5), day(5)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		require.NoError(t, err)
		assert.True(t, got.Equal(tt.want), "parseDate(%v) = %v", tt.in, got)
	}
}
