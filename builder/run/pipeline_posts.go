package run

import (
	"context"
	"fmt"

	"github.com/Kush-Singh-26/shutter/builder/collections"
	"github.com/Kush-Singh-26/shutter/builder/lightbox"
	"github.com/Kush-Singh-26/shutter/builder/metrics"
	"github.com/Kush-Singh-26/shutter/builder/models"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

// renderItems converts every body first, so that layouts of one page can
// read the Content of others, then writes the pages.
func (b *Builder) renderItems(ctx context.Context, s *site, m *metrics.BuildMetrics) error {
	workers := b.cfg.Build.RenderWorkers

	// Bodies see copies of the collection items; their Content is being
	// written by the other workers.
	bodyCols := snapshotCollections(s.collections)
	err := utils.Run(ctx, workers, s.render, func(_ context.Context, it *models.Item) error {
		data := b.itemData(s, it)
		data.Collections = bodyCols
		html, err := s.rnd.RenderContent(it, data)
		if err != nil {
			return err
		}
		it.Content = html
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("   📝 Rendered %d content bodies\n", len(s.render))

	err = utils.Run(ctx, workers, s.render, func(_ context.Context, it *models.Item) error {
		data := b.itemData(s, it)
		data.Content = it.Content
		data.Lightbox = lightbox.HasThumbs(string(it.Content))

		adj := collections.Adjacent(it.URL, s.posts)
		data.NewerPost, data.OlderPost = adj.Newer, adj.Older

		out := utils.URLToPath(b.cfg.OutputDir, it.URL)
		if err := s.rnd.RenderPage(out, it.Layout, data); err != nil {
			return fmt.Errorf("%s: %w", it.InputPath, err)
		}
		m.PagesRendered.Add(1)
		return nil
	})
	if err != nil {
		return err
	}

	return b.renderHome(s, m)
}

func (b *Builder) itemData(s *site, it *models.Item) *models.PageData {
	data := b.pageData(s, it.Title, it.Description, it.URL)
	data.Page = it
	return data
}

// renderHome writes a post listing at "/" unless the content provides one.
func (b *Builder) renderHome(s *site, m *metrics.BuildMetrics) error {
	if !s.homeNeeded() {
		return nil
	}
	data := b.pageData(s, "", "", "/")
	if err := s.rnd.RenderPage(utils.URLToPath(b.cfg.OutputDir, "/"), "home.html", data); err != nil {
		return err
	}
	m.PagesRendered.Add(1)
	s.homeRendered = true
	return nil
}

// snapshotCollections copies every item list in cols so readers do not share
// *Item values with the body render pass. Other values are shared as is.
func snapshotCollections(cols map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(cols))
	for name, v := range cols {
		items, ok := v.([]*models.Item)
		if !ok {
			out[name] = v
			continue
		}
		copied := make([]*models.Item, len(items))
		for i, it := range items {
			c := *it
			copied[i] = &c
		}
		out[name] = copied
	}
	return out
}
