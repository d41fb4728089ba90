// Package registry maps template-visible names to filters, shortcodes,
// collections and global data. A Registry is built once per build and
// handed to the renderer.
package registry

import (
	"fmt"
	"html/template"
	"sort"
	"sync"

	"github.com/Kush-Singh-26/shutter/builder/content"
)

// CollectionFunc derives a named collection from the content set.
type CollectionFunc func(c content.Collection) interface{}

type Registry struct {
	mu          sync.RWMutex
	filters     map[string]interface{}
	shortcodes  map[string]interface{}
	collections map[string]CollectionFunc
	globals     map[string]interface{}
}

func New() *Registry {
	return &Registry{
		filters:     make(map[string]interface{}),
		shortcodes:  make(map[string]interface{}),
		collections: make(map[string]CollectionFunc),
		globals:     make(map[string]interface{}),
	}
}

// AddFilter registers fn under name. Filters and shortcodes share one
// template namespace, so a name may be used once across both.
func (r *Registry) AddFilter(name string, fn interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFunc(name); err != nil {
		return err
	}
	r.filters[name] = fn
	return nil
}

// AddShortcode registers a shortcode. Shortcodes usually return
// (template.HTML, error); a non-nil error aborts the template execution.
func (r *Registry) AddShortcode(name string, fn interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFunc(name); err != nil {
		return err
	}
	r.shortcodes[name] = fn
	return nil
}

func (r *Registry) AddCollection(name string, fn CollectionFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[name]; ok {
		return fmt.Errorf("collection %q already registered", name)
	}
	r.collections[name] = fn
	return nil
}

func (r *Registry) AddGlobal(name string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals[name] = value
}

func (r *Registry) checkFunc(name string) error {
	if name == "" {
		return fmt.Errorf("empty template function name")
	}
	if _, ok := r.filters[name]; ok {
		return fmt.Errorf("template function %q already registered as a filter", name)
	}
	if _, ok := r.shortcodes[name]; ok {
		return fmt.Errorf("template function %q already registered as a shortcode", name)
	}
	return nil
}

// FuncMap returns every filter and shortcode for html/template.
func (r *Registry) FuncMap() template.FuncMap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fm := make(template.FuncMap, len(r.filters)+len(r.shortcodes))
	for name, fn := range r.filters {
		fm[name] = fn
	}
	for name, fn := range r.shortcodes {
		fm[name] = fn
	}
	return fm
}

// Collections evaluates every registered collection against c.
func (r *Registry) Collections(c content.Collection) map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]interface{}, len(r.collections)+1)
	out["all"] = c.All()
	for name, fn := range r.collections {
		out[name] = fn(c)
	}
	return out
}

// Globals returns a copy of the global data.
func (r *Registry) Globals() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]interface{}, len(r.globals))
	for k, v := range r.globals {
		out[k] = v
	}
	return out
}

// Names lists registered names by kind, sorted. Used by `shutter build -verbose`.
func (r *Registry) Names() (filters, shortcodes, collections []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	filters = sortedKeys(r.filters)
	shortcodes = sortedKeys(r.shortcodes)
	for name := range r.collections {
		collections = append(collections, name)
	}
	sort.Strings(collections)
	return filters, shortcodes, collections
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
