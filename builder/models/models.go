// defines the data structures used by templates and generators
package models

import (
	"html/template"
	"time"
)

// Item is one content file (post or page) with its front matter.
type Item struct {
	InputPath   string // path relative to the content dir, slash separated
	URL         string
	Title       string
	Description string
	Layout      string
	Date        time.Time
	Tags        []string
	Draft       bool
	Body        string        // raw markdown after front matter
	Content     template.HTML // rendered body, filled during the render pass
	Data        map[string]interface{}
}

// HasTag reports whether the item carries tag.
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagPage describes one rendered page of a paginated tag listing.
type TagPage struct {
	Tag        string
	PageNumber int
	PageSize   int
}

// AdjacentPosts holds the chronological neighbours of a post.
type AdjacentPosts struct {
	Newer *Item
	Older *Item
}

// ImageVariant is one resized output of a source image.
type ImageVariant struct {
	Format     string `msgpack:"format"`
	Width      int    `msgpack:"width"`
	Height     int    `msgpack:"height"`
	URL        string `msgpack:"url"`
	SourceType string `msgpack:"source_type"`
	OutputPath string `msgpack:"output_path"`
	Filename   string `msgpack:"filename"`
	Size       int    `msgpack:"size"`
	Hash       string `msgpack:"hash"`
}

// ImageMetadata maps a format name to its variants, ordered by width ascending.
type ImageMetadata map[string][]ImageVariant

// Largest returns the widest variant for format.
func (m ImageMetadata) Largest(format string) (ImageVariant, bool) {
	vs := m[format]
	if len(vs) == 0 {
		return ImageVariant{}, false
	}
	return vs[len(vs)-1], true
}

// Smallest returns the narrowest variant for format.
func (m ImageMetadata) Smallest(format string) (ImageVariant, bool) {
	vs := m[format]
	if len(vs) == 0 {
		return ImageVariant{}, false
	}
	return vs[0], true
}

// Paginator holds state for pagination
type Paginator struct {
	CurrentPage int
	TotalPages  int
	PrevURL     string
	NextURL     string
	FirstURL    string
	LastURL     string
	HasPrev     bool
	HasNext     bool
}

// PageData is the context passed to HTML templates.
type PageData struct {
	Title       string
	Description string
	BaseURL     string
	Permalink   string
	Page        *Item
	Content     template.HTML
	NewerPost   *Item
	OlderPost   *Item

	// Tag listing pages
	Tag       string
	TagPage   *TagPage
	TagPosts  []*Item
	Paginator Paginator

	Collections  map[string]interface{}
	Globals      map[string]interface{}
	Assets       map[string]string
	Lightbox     bool // page carries gallery thumbnails
	BuildVersion int64

	// Config-driven fields
	Config interface{}
}
