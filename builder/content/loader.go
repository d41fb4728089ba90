package content

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/models"
	"github.com/Kush-Singh-26/shutter/builder/parser"
)

// Options controls how files under the content dir become items.
type Options struct {
	// DirLayouts maps a top-level content directory to its default layout.
	DirLayouts map[string]string
	// DefaultLayout applies when neither front matter nor DirLayouts name one.
	DefaultLayout string
	// Skip lists top-level directories that hold templates or assets.
	Skip []string
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Load walks dir on fsys and parses every markdown file into an Item.
// Files are visited in lexical path order.
func Load(fsys afero.Fs, dir string, opts Options) ([]*models.Item, error) {
	var items []*models.Item

	err := afero.Walk(fsys, dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && (strings.HasPrefix(info.Name(), ".") || skipped(rel, opts.Skip)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.ToLower(filepath.Ext(p)) != ".md" {
			return nil
		}

		source, err := afero.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		item, err := Parse(rel, source, info.ModTime(), opts)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Parse builds an Item from a markdown file. rel is the slash separated
// path relative to the content dir; modTime is the fallback date.
func Parse(rel string, source []byte, modTime time.Time, opts Options) (*models.Item, error) {
	data, body, err := parser.ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	date := modTime
	if raw, ok := data["date"]; ok {
		d, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		date = d
	}

	item := &models.Item{
		InputPath:   rel,
		URL:         itemURL(rel, stringValue(data["permalink"])),
		Title:       stringValue(data["title"]),
		Description: stringValue(data["description"]),
		Layout:      stringValue(data["layout"]),
		Date:        date,
		Tags:        tagsValue(data["tags"]),
		Draft:       truthy(data["draft"]),
		Body:        string(body),
		Data:        data,
	}
	if item.Layout == "" {
		item.Layout = layoutFor(rel, opts)
	}
	return item, nil
}

func skipped(rel string, skip []string) bool {
	for _, s := range skip {
		if rel == strings.Trim(s, "/") {
			return true
		}
	}
	return false
}

func layoutFor(rel string, opts Options) string {
	if top, _, ok := strings.Cut(rel, "/"); ok {
		if l, ok := opts.DirLayouts[top]; ok {
			return l
		}
	}
	return opts.DefaultLayout
}

// itemURL maps posts/hello.md to /posts/hello/ and about/index.md to /about/.
func itemURL(rel, permalink string) string {
	if permalink != "" {
		if !strings.HasPrefix(permalink, "/") {
			permalink = "/" + permalink
		}
		return permalink
	}
	p := strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	if p == "." || p == "" {
		return "/"
	}
	return "/" + p + "/"
}

func parseDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v (%T)", v, v)
	}
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// tagsValue accepts a single string or a list.
func tagsValue(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s := stringValue(x); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

// truthy mirrors how front matter flags are usually read: false, 0, "" and
// missing values are false; anything else is true.
func truthy(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case int:
		return b != 0
	case int64:
		return b != 0
	case uint64:
		return b != 0
	case float64:
		return b != 0
	}
	return true
}
