package registry

import (
	"html/template"

	"golang.org/x/text/language"

	"github.com/Kush-Singh-26/shutter/builder/collections"
	"github.com/Kush-Singh-26/shutter/builder/content"
	"github.com/Kush-Singh-26/shutter/builder/filters"
	"github.com/Kush-Singh-26/shutter/builder/lightbox"
)

// ImageShortcodes is implemented by images.Processor.
type ImageShortcodes interface {
	Image(src, alt string, sizes ...string) (template.HTML, error)
	GalleryImage(src, alt string, index int, sizes ...string) (template.HTML, error)
}

// SiteOptions parameterizes the blog collections.
type SiteOptions struct {
	PostsGlob string // relative to the content dir
	Language  language.Tag
	PageSize  int
}

// Site returns a registry with the blog's filters, shortcodes, collections
// and globals.
func Site(img ImageShortcodes, opts SiteOptions) (*Registry, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = collections.PageSize
	}
	r := New()

	for name, fn := range map[string]interface{}{
		"isoDate":      filters.IsoDate,
		"readableDate": filters.ReadableDate,
		"url":          filters.URLSafe,
	} {
		if err := r.AddFilter(name, fn); err != nil {
			return nil, err
		}
	}

	for name, fn := range map[string]interface{}{
		"image":          img.Image,
		"galleryImage":   img.GalleryImage,
		"lightboxDialog": lightbox.Dialog,
	} {
		if err := r.AddShortcode(name, fn); err != nil {
			return nil, err
		}
	}

	cols := map[string]CollectionFunc{
		"posts": func(c content.Collection) interface{} {
			return collections.Posts(c, opts.PostsGlob)
		},
		"tagList": func(c content.Collection) interface{} {
			return collections.TagList(c, opts.Language)
		},
		"tagPages": func(c content.Collection) interface{} {
			return collections.TagPages(c, opts.Language, opts.PageSize)
		},
	}
	for name, fn := range cols {
		if err := r.AddCollection(name, fn); err != nil {
			return nil, err
		}
	}

	r.AddGlobal("year", filters.Year())
	return r, nil
}
