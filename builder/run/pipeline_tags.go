package run

import (
	"context"
	"fmt"

	"github.com/Kush-Singh-26/shutter/builder/collections"
	"github.com/Kush-Singh-26/shutter/builder/filters"
	"github.com/Kush-Singh-26/shutter/builder/metrics"
	"github.com/Kush-Singh-26/shutter/builder/models"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

// TagPageURL is the site URL of page (zero-based) of tag's listing.
func TagPageURL(tag string, page int) string {
	u := "/tags/" + filters.URLSafe(tag) + "/"
	if page > 0 {
		u += fmt.Sprintf("page/%d/", page+1)
	}
	return u
}

func tagPaginator(baseURL string, tp models.TagPage, total int) models.Paginator {
	p := models.Paginator{
		CurrentPage: tp.PageNumber + 1,
		TotalPages:  total,
		HasPrev:     tp.PageNumber > 0,
		HasNext:     tp.PageNumber+1 < total,
		FirstURL:    baseURL + TagPageURL(tp.Tag, 0),
		LastURL:     baseURL + TagPageURL(tp.Tag, total-1),
	}
	if p.HasPrev {
		p.PrevURL = baseURL + TagPageURL(tp.Tag, tp.PageNumber-1)
	}
	if p.HasNext {
		p.NextURL = baseURL + TagPageURL(tp.Tag, tp.PageNumber+1)
	}
	return p
}

// visible drops the drafts this build does not render. Tag page counts
// still include them.
func (b *Builder) visible(items []*models.Item) []*models.Item {
	if b.cfg.IncludeDrafts {
		return items
	}
	out := make([]*models.Item, 0, len(items))
	for _, it := range items {
		if !it.Draft {
			out = append(out, it)
		}
	}
	return out
}

// renderTags writes one page per tagPages entry and the /tags/ index.
func (b *Builder) renderTags(ctx context.Context, s *site, m *metrics.BuildMetrics) error {
	cfg := b.cfg

	byTag := make(map[string][]*models.Item)
	for _, tp := range s.tagPages {
		if _, ok := byTag[tp.Tag]; !ok {
			byTag[tp.Tag] = collections.TagPosts(s.set, tp.Tag)
		}
	}

	err := utils.Run(ctx, cfg.Build.RenderWorkers, s.tagPages, func(_ context.Context, tp models.TagPage) error {
		posts := byTag[tp.Tag]
		url := TagPageURL(tp.Tag, tp.PageNumber)

		data := b.pageData(s, "Tagged: "+tp.Tag, "", url)
		data.Tag = tp.Tag
		data.TagPage = &tp
		data.TagPosts = b.visible(collections.PageSlice(posts, tp))
		data.Paginator = tagPaginator(cfg.BaseURL, tp, collections.TotalPages(len(posts), tp.PageSize))

		if err := s.rnd.RenderPage(utils.URLToPath(cfg.OutputDir, url), "tag.html", data); err != nil {
			return fmt.Errorf("tag %q: %w", tp.Tag, err)
		}
		m.PagesRendered.Add(1)
		return nil
	})
	if err != nil {
		return err
	}
	m.TagPages = len(s.tagPages)

	data := b.pageData(s, "Tags", "", "/tags/")
	if err := s.rnd.RenderPage(utils.URLToPath(cfg.OutputDir, "/tags/"), "tags.html", data); err != nil {
		return err
	}
	m.PagesRendered.Add(1)
	fmt.Printf("   🏷️  Rendered %d tag pages\n", len(s.tagPages))
	return nil
}
