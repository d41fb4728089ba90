// Package generators writes the machine-readable files that sit beside the
// rendered pages: sitemap.xml and the RSS feed.
package generators

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/utils"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapEntry is one page listed in the sitemap. A zero LastMod is omitted.
type SitemapEntry struct {
	URL     string
	LastMod time.Time
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// GenerateSitemap writes entries to outPath, prefixing each URL with baseURL.
func GenerateSitemap(fs afero.Fs, outPath, baseURL string, entries []SitemapEntry) error {
	set := urlSet{Xmlns: sitemapNS}
	for _, e := range entries {
		u := sitemapURL{Loc: baseURL + e.URL}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, u)
	}

	output, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return utils.WriteFileVFS(fs, outPath, []byte(xml.Header+string(output)+"\n"))
}
