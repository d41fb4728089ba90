package run

import (
	"fmt"
	"path"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/Kush-Singh-26/shutter/builder/content"
	"github.com/Kush-Singh-26/shutter/builder/images"
	"github.com/Kush-Singh-26/shutter/builder/models"
	mdParser "github.com/Kush-Singh-26/shutter/builder/parser"
	"github.com/Kush-Singh-26/shutter/builder/registry"
	"github.com/Kush-Singh-26/shutter/builder/renderer"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

// site is everything one build pass derives from the content.
type site struct {
	set         *content.Set
	render      []*models.Item // items that get a page of their own
	posts       []*models.Item
	tagPages    []models.TagPage
	collections map[string]interface{}
	globals     map[string]interface{}

	homeRendered bool // home.html filled in for a missing "/" page

	images *images.Processor
	rnd    *renderer.Renderer
}

// loadContent reads every markdown item under the content dir. The
// includes dir and passthrough sources inside it are not content.
func (b *Builder) loadContent() (*content.Set, error) {
	cfg := b.cfg
	opts := content.Options{
		DirLayouts:    map[string]string{},
		DefaultLayout: "page.html",
	}
	if dir := path.Dir(cfg.PostsGlob); dir != "." {
		opts.DirLayouts[dir] = "post.html"
	}

	dirs := []string{cfg.IncludesDir}
	for src := range cfg.Passthrough {
		dirs = append(dirs, src)
	}
	for _, dir := range dirs {
		if rel, err := utils.SafeRel(cfg.ContentDir, dir); err == nil && rel != "." {
			opts.Skip = append(opts.Skip, rel)
		}
	}

	items, err := content.Load(b.SourceFs, cfg.ContentDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	return content.NewSet(items), nil
}

// newSite wires the image processor, registry and renderer for one build.
func (b *Builder) newSite(set *content.Set) (*site, error) {
	cfg := b.cfg

	lang, err := language.Parse(cfg.Language)
	if err != nil {
		b.logger.Warn("Unknown site language, collating tags as English", "language", cfg.Language, "error", err)
		lang = language.English
	}

	proc := images.NewProcessor(b.SourceFs, b.DestFs, b.cache, images.Options{
		Widths:    cfg.ImageWidths,
		URLPath:   cfg.BaseURL + images.DefaultURLPath,
		OutputDir: filepath.ToSlash(filepath.Join(cfg.OutputDir, "img")),
		MaxAge:    cfg.ImageCacheMaxAge,
		Quality: images.Quality{
			AVIF:      cfg.Build.AVIFQuality,
			AVIFSpeed: cfg.Build.AVIFSpeed,
			WebP:      cfg.Build.WebPQuality,
			JPEG:      cfg.Build.JPEGQuality,
		},
		Workers: cfg.Build.ImageWorkers,
	}, b.logger)

	reg, err := registry.Site(proc, registry.SiteOptions{
		PostsGlob: cfg.PostsGlob,
		Language:  lang,
		PageSize:  cfg.PageSize,
	})
	if err != nil {
		return nil, err
	}
	reg.AddGlobal("siteTitle", cfg.Title)
	reg.AddGlobal("description", cfg.Description)
	reg.AddGlobal("author", cfg.Author)
	reg.AddGlobal("lang", cfg.Language)
	reg.AddGlobal("baseURL", cfg.BaseURL)

	cols := reg.Collections(set)
	posts, _ := cols["posts"].([]*models.Item)
	tagPages, _ := cols["tagPages"].([]models.TagPage)

	var bodyCache renderer.BodyCache
	if b.cache != nil {
		bodyCache = b.cache
	}
	rnd, err := renderer.New(b.DestFs, renderer.Options{
		IncludesFs:  b.SourceFs,
		IncludesDir: cfg.IncludesDir,
		Funcs:       reg.FuncMap(),
		Markdown:    mdParser.New(cfg.BaseURL),
		Cache:       bodyCache,
		Compress:    cfg.Compress,
	}, b.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load layouts: %w", err)
	}

	var render []*models.Item
	for _, it := range set.All() {
		if it.Draft && !cfg.IncludeDrafts {
			continue
		}
		render = append(render, it)
	}

	return &site{
		set:         set,
		render:      render,
		posts:       posts,
		tagPages:    tagPages,
		collections: cols,
		globals:     reg.Globals(),
		images:      proc,
		rnd:         rnd,
	}, nil
}

// pageData returns the template context shared by every page kind.
func (b *Builder) pageData(s *site, title, description, url string) *models.PageData {
	if description == "" {
		description = b.cfg.Description
	}
	return &models.PageData{
		Title:        title,
		Description:  description,
		BaseURL:      b.cfg.BaseURL,
		Permalink:    b.cfg.BaseURL + url,
		Collections:  s.collections,
		Globals:      s.globals,
		BuildVersion: b.cfg.BuildVersion,
		Config:       b.cfg,
	}
}
