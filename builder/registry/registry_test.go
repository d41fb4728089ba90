package registry

import (
	"bytes"
	"errors"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Kush-Singh-26/shutter/builder/content"
	"github.com/Kush-Singh-26/shutter/builder/models"
)

type fakeImages struct {
	err error
}

func (f fakeImages) Image(src, alt string, sizes ...string) (template.HTML, error) {
	if f.err != nil {
		return "", f.err
	}
	return template.HTML(`<img src="` + src + `" alt="` + alt + `">`), nil
}

func (f fakeImages) GalleryImage(src, alt string, index int, sizes ...string) (template.HTML, error) {
	return template.HTML(`<button class="lb-thumb"></button>`), f.err
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestRegistry_DuplicateNames(t *testing.T) {
	r := New()
	require.NoError(t, r.AddFilter("upper", func(s string) string { return s }))
	assert.Error(t, r.AddFilter("upper", func(s string) string { return s }))
	assert.Error(t, r.AddShortcode("upper", func() string { return "" }))
	assert.Error(t, r.AddFilter("", func() {}))

	fn := func(content.Collection) interface{} { return nil }
	require.NoError(t, r.AddCollection("c", fn))
	assert.Error(t, r.AddCollection("c", fn))
}

func TestSite_Template(t *testing.T) {
	r, err := Site(fakeImages{}, SiteOptions{PostsGlob: "posts/*.md", Language: language.English})
	require.NoError(t, err)

	set := content.NewSet([]*models.Item{
		{InputPath: "posts/a.md", URL: "/posts/a/", Title: "A", Date: day("2024-01-03"), Tags: []string{"travel", "posts"}},
		{InputPath: "posts/b.md", URL: "/posts/b/", Title: "B", Date: day("2024-01-02"), Draft: true, Tags: []string{"food"}},
		{InputPath: "posts/c.md", URL: "/posts/c/", Title: "C", Date: day("2024-01-01"), Tags: []string{"Travel notes"}},
		{InputPath: "about.md", URL: "/about/", Title: "About", Date: day("2024-02-01")},
	})
	data := map[string]interface{}{
		"collections": r.Collections(set),
		"year":        r.Globals()["year"],
	}

	tmpl := template.Must(template.New("t").Funcs(r.FuncMap()).Parse(
		`{{range .collections.posts}}{{.Title}}:{{isoDate .Date}}:{{readableDate .Date}};{{end}}` +
			`|{{range .collections.tagList}}<a href="/tags/{{url .}}/">{{.}}</a>{{end}}` +
			`|{{len .collections.tagPages}}|{{image "a.jpg" "Alt"}}`))

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, data))
	assert.Equal(t,
		`A:2024-01-03:Jan 03, 2024;C:2024-01-01:Jan 01, 2024;`+
			`|<a href="/tags/food/">food</a><a href="/tags/travel/">travel</a><a href="/tags/Travel%20notes/">Travel notes</a>`+
			`|3|<img src="a.jpg" alt="Alt">`,
		buf.String())

	assert.Equal(t, time.Now().Year(), data["year"])
}

func TestSite_ShortcodeErrorAbortsExecution(t *testing.T) {
	boom := errors.New("missing alt")
	r, err := Site(fakeImages{err: boom}, SiteOptions{})
	require.NoError(t, err)

	tmpl := template.Must(template.New("t").Funcs(r.FuncMap()).Parse(`before {{image "x.jpg" ""}} after`))
	err = tmpl.Execute(&bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNames(t *testing.T) {
	r, err := Site(fakeImages{}, SiteOptions{})
	require.NoError(t, err)
	f, s, c := r.Names()
	assert.Equal(t, []string{"isoDate", "readableDate", "url"}, f)
	assert.Equal(t, []string{"galleryImage", "image", "lightboxDialog"}, s)
	assert.Equal(t, []string{"posts", "tagList", "tagPages"}, c)
}
