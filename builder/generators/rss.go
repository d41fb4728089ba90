package generators

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/models"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

// Feed describes the RSS channel.
type Feed struct {
	Title       string
	Link        string // site base URL
	Description string
	Language    string
	Limit       int // newest posts to include, 0 for all
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description,omitempty"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// GenerateRSS writes an RSS 2.0 feed of posts (newest first) to outPath.
func GenerateRSS(fs afero.Fs, outPath string, feed Feed, posts []*models.Item) error {
	if feed.Limit > 0 && len(posts) > feed.Limit {
		posts = posts[:feed.Limit]
	}

	ch := channel{
		Title:       feed.Title,
		Link:        feed.Link + "/",
		Description: feed.Description,
		Language:    feed.Language,
	}
	if len(posts) > 0 {
		ch.LastBuildDate = posts[0].Date.Format(time.RFC1123Z)
	}
	for _, p := range posts {
		link := feed.Link + p.URL
		ch.Items = append(ch.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Description,
			PubDate:     p.Date.Format(time.RFC1123Z),
			GUID:        link,
			Categories:  p.Tags,
		})
	}

	output, err := xml.MarshalIndent(rss{Version: "2.0", Channel: ch}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	return utils.WriteFileVFS(fs, outPath, []byte(xml.Header+string(output)+"\n"))
}
