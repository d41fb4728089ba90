// Handles template loading and page output
package renderer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	texttemplate "text/template"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"

	"github.com/Kush-Singh-26/shutter/builder/cache"
	"github.com/Kush-Singh-26/shutter/builder/models"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

//go:embed templates
var defaultTemplates embed.FS

const (
	baseTemplate = "base.html"
	// StylesheetPath is where the default stylesheet is written, relative to the output dir.
	StylesheetPath = "assets/css/shutter.css"
)

// ErrUnknownLayout is returned when a page names a layout that was never loaded.
var ErrUnknownLayout = errors.New("unknown layout")

// BodyCache stores rendered markdown keyed by the hash of the expanded body.
type BodyCache interface {
	GetRendered(bodyHash string) ([]byte, error)
	PutRendered(bodyHash string, html []byte) error
}

// Options configures a Renderer.
type Options struct {
	// IncludesFs and IncludesDir locate user layouts. Files there replace the
	// embedded defaults of the same name; names starting with "_" are partials.
	IncludesFs  afero.Fs
	IncludesDir string
	Funcs       template.FuncMap
	Markdown    goldmark.Markdown
	Cache       BodyCache
	Compress    bool
}

type Renderer struct {
	DestFs   afero.Fs
	Compress bool

	funcs   template.FuncMap
	layouts map[string]*template.Template
	md      goldmark.Markdown
	cache   BodyCache
	logger  *slog.Logger

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// New loads the layouts and returns a Renderer writing to destFs.
func New(destFs afero.Fs, opts Options, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Markdown == nil {
		return nil, errors.New("renderer: markdown converter is required")
	}

	sources, err := loadSources(opts.IncludesFs, opts.IncludesDir)
	if err != nil {
		return nil, err
	}
	layouts, err := buildLayouts(sources, opts.Funcs)
	if err != nil {
		return nil, err
	}

	if opts.Compress {
		utils.InitMinifier()
	}

	return &Renderer{
		DestFs:   destFs,
		Compress: opts.Compress,
		funcs:    opts.Funcs,
		layouts:  layouts,
		md:       opts.Markdown,
		cache:    opts.Cache,
		logger:   logger,
	}, nil
}

// loadSources returns template sources by file name: the embedded defaults
// overlaid with the .html files found in dir.
func loadSources(fsys afero.Fs, dir string) (map[string]string, error) {
	sources := make(map[string]string)

	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if path.Ext(e.Name()) != ".html" {
			continue
		}
		data, err := defaultTemplates.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, err
		}
		sources[e.Name()] = string(data)
	}

	if fsys == nil || dir == "" {
		return sources, nil
	}
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return sources, nil
		}
		return nil, fmt.Errorf("failed to read includes dir %s: %w", dir, err)
	}
	for _, info := range infos {
		if info.IsDir() || path.Ext(info.Name()) != ".html" {
			continue
		}
		data, err := afero.ReadFile(fsys, path.Join(dir, info.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read layout %s: %w", info.Name(), err)
		}
		sources[info.Name()] = string(data)
	}
	return sources, nil
}

// buildLayouts parses base.html and the partials once, then gives every
// layout its own clone of that set.
func buildLayouts(sources map[string]string, funcs template.FuncMap) (map[string]*template.Template, error) {
	base, err := template.New(baseTemplate).Funcs(funcs).Parse(sources[baseTemplate])
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", baseTemplate, err)
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.HasPrefix(name, "_") {
			continue
		}
		if _, err := base.New(name).Parse(sources[name]); err != nil {
			return nil, fmt.Errorf("failed to parse partial %s: %w", name, err)
		}
	}

	layouts := make(map[string]*template.Template)
	for _, name := range names {
		if name == baseTemplate || strings.HasPrefix(name, "_") {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.New(name).Parse(sources[name]); err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", name, err)
		}
		layouts[name] = t
	}
	return layouts, nil
}

// HasLayout reports whether name was loaded.
func (r *Renderer) HasLayout(name string) bool {
	_, ok := r.layouts[name]
	return ok
}

// Layouts returns the loaded layout names, sorted.
func (r *Renderer) Layouts() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CacheStats returns rendered-body cache hits and misses since New.
func (r *Renderer) CacheStats() (hits, misses int64) {
	return r.cacheHits.Load(), r.cacheMisses.Load()
}

// RenderContent expands the shortcodes in item's body and converts the
// result to HTML. The goldmark pass is skipped when the expanded body is
// already in the cache.
func (r *Renderer) RenderContent(item *models.Item, data *models.PageData) (template.HTML, error) {
	body, err := r.expandBody(item, data)
	if err != nil {
		return "", err
	}

	key := cache.HashString(body)
	if r.cache != nil {
		if html, err := r.cache.GetRendered(key); err == nil {
			r.cacheHits.Add(1)
			return template.HTML(html), nil
		}
	}
	r.cacheMisses.Add(1)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", item.InputPath, err)
	}
	if r.cache != nil {
		if err := r.cache.PutRendered(key, buf.Bytes()); err != nil {
			r.logger.Warn("Failed to cache rendered body", "path", item.InputPath, "error", err)
		}
	}
	return template.HTML(buf.String()), nil
}

// expandBody runs the markdown body as a text template so shortcodes emit
// their HTML before markdown conversion.
func (r *Renderer) expandBody(item *models.Item, data *models.PageData) (string, error) {
	if !strings.Contains(item.Body, "{{") {
		return item.Body, nil
	}
	t, err := texttemplate.New(item.InputPath).Funcs(texttemplate.FuncMap(r.funcs)).Parse(item.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", item.InputPath, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", item.InputPath, err)
	}
	return buf.String(), nil
}

// RenderPage executes layout with data and writes the result to outPath on DestFs.
func (r *Renderer) RenderPage(outPath, layout string, data *models.PageData) error {
	t, ok := r.layouts[layout]
	if !ok {
		return fmt.Errorf("%w %q for %s", ErrUnknownLayout, layout, outPath)
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := t.ExecuteTemplate(buf, layout, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", outPath, err)
	}

	out := buf.Bytes()
	if r.Compress {
		minified, err := utils.MinifyBytes("text/html", out)
		if err != nil {
			return fmt.Errorf("failed to minify %s: %w", outPath, err)
		}
		out = minified
	}
	return utils.WriteFileVFS(r.DestFs, outPath, out)
}

// WriteStylesheet writes the default stylesheet under outputDir.
func (r *Renderer) WriteStylesheet(outputDir string) error {
	css, err := defaultTemplates.ReadFile("templates/shutter.css")
	if err != nil {
		return err
	}
	if r.Compress {
		if css, err = utils.TransformCSS("shutter.css", css); err != nil {
			return err
		}
	}
	return utils.WriteFileVFS(r.DestFs, path.Join(outputDir, StylesheetPath), css)
}
