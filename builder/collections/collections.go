// Package collections derives the ordered lists templates iterate over:
// published posts, the tag vocabulary and paginated tag pages.
package collections

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Kush-Singh-26/shutter/builder/content"
	"github.com/Kush-Singh-26/shutter/builder/models"
)

// PageSize is the number of posts on one tag page.
const PageSize = 12

// reserved names are collection or navigation tags, never shown as topics.
var reserved = map[string]struct{}{
	"all":      {},
	"nav":      {},
	"post":     {},
	"posts":    {},
	"tagList":  {},
	"tagPages": {},
}

// IsReserved reports whether tag is excluded from the tag vocabulary.
func IsReserved(tag string) bool {
	_, ok := reserved[tag]
	return ok
}

// Posts returns the non-draft items matching glob, newest first.
// Items with equal dates keep their collection order.
func Posts(c content.Collection, glob string) []*models.Item {
	matched := c.FilteredByGlob(glob)
	posts := make([]*models.Item, 0, len(matched))
	for _, it := range matched {
		if !it.Draft {
			posts = append(posts, it)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts
}

// TagList returns every non-reserved tag used by any item, deduplicated and
// sorted with the collation rules of lang.
func TagList(c content.Collection, lang language.Tag) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, it := range c.All() {
		for _, t := range it.Tags {
			if IsReserved(t) {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	SortTags(tags, lang)
	return tags
}

// SortTags orders tags in place by locale collation, falling back to byte
// order when the collator considers two tags equal.
func SortTags(tags []string, lang language.Tag) {
	col := collate.New(lang)
	sort.SliceStable(tags, func(i, j int) bool {
		if r := col.CompareString(tags[i], tags[j]); r != 0 {
			return r < 0
		}
		return tags[i] < tags[j]
	})
}

// TagPages emits one descriptor per (tag, page) pair, tags in TagList order.
func TagPages(c content.Collection, lang language.Tag, pageSize int) []models.TagPage {
	if pageSize < 1 {
		pageSize = PageSize
	}
	var out []models.TagPage
	for _, tag := range TagList(c, lang) {
		total := TotalPages(len(c.FilteredByTag(tag)), pageSize)
		for n := 0; n < total; n++ {
			out = append(out, models.TagPage{Tag: tag, PageNumber: n, PageSize: pageSize})
		}
	}
	return out
}

// TotalPages is max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = PageSize
	}
	total := (count + pageSize - 1) / pageSize
	if total < 1 {
		return 1
	}
	return total
}

// TagPosts returns the items carrying tag, newest first.
func TagPosts(c content.Collection, tag string) []*models.Item {
	items := c.FilteredByTag(tag)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// PageSlice returns the items shown on page. The last page may be short;
// a page past the end is empty.
func PageSlice(items []*models.Item, page models.TagPage) []*models.Item {
	size := page.PageSize
	if size < 1 {
		size = PageSize
	}
	start := page.PageNumber * size
	if page.PageNumber < 0 || start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
