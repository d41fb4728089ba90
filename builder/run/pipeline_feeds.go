package run

import (
	"path/filepath"

	"github.com/Kush-Singh-26/shutter/builder/generators"
)

// writeFeeds writes sitemap.xml and feed.xml for the published pages.
func (b *Builder) writeFeeds(s *site) error {
	cfg := b.cfg

	var entries []generators.SitemapEntry
	for _, it := range s.render {
		if it.Draft {
			continue
		}
		entries = append(entries, generators.SitemapEntry{URL: it.URL, LastMod: it.Date})
	}
	if s.homeRendered {
		entries = append([]generators.SitemapEntry{{URL: "/"}}, entries...)
	}
	entries = append(entries, generators.SitemapEntry{URL: "/tags/"})
	for _, tp := range s.tagPages {
		entries = append(entries, generators.SitemapEntry{URL: TagPageURL(tp.Tag, tp.PageNumber)})
	}

	if err := generators.GenerateSitemap(b.DestFs, filepath.Join(cfg.OutputDir, "sitemap.xml"), cfg.BaseURL, entries); err != nil {
		return err
	}

	return generators.GenerateRSS(b.DestFs, filepath.Join(cfg.OutputDir, "feed.xml"), generators.Feed{
		Title:       cfg.Title,
		Link:        cfg.BaseURL,
		Description: cfg.Description,
		Language:    cfg.Language,
		Limit:       cfg.FeedLimit,
	}, s.posts)
}
