package lightbox

import (
	_ "embed"
	stdhtml "html"
	"html/template"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
)

// ScriptPath is where the build writes the lightbox script.
const ScriptPath = "assets/js/lightbox.js"

//go:embed lightbox.js
var script []byte

//go:embed dialog.html
var dialog string

// Script returns the browser implementation of Controller.
func Script() []byte {
	return script
}

// Dialog returns the modal markup the script binds to.
func Dialog() template.HTML {
	return template.HTML(dialog)
}

// ParseThumbs extracts the gallery thumbnails from rendered HTML, in
// document order.
func ParseThumbs(doc string) []Thumb {
	var thumbs []Thumb
	l := html.NewLexer(parse.NewInputString(doc))
	var (
		attrs map[string]string
		inTag bool
	)
	for {
		tt, _ := l.Next()
		switch tt {
		case html.ErrorToken:
			return thumbs
		case html.StartTagToken:
			inTag = true
			attrs = make(map[string]string)
		case html.AttributeToken:
			if inTag {
				attrs[strings.ToLower(string(l.Text()))] = attrValue(l.AttrVal())
			}
		case html.StartTagCloseToken, html.StartTagVoidToken:
			if inTag && hasClass(attrs["class"], "lb-thumb") {
				index, _ := strconv.Atoi(attrs["data-lightbox-index"])
				thumbs = append(thumbs, Thumb{
					Src:   attrs["data-lightbox-src"],
					Alt:   attrs["data-lightbox-alt"],
					Index: index,
				})
			}
			inTag = false
		}
	}
}

// HasThumbs reports whether doc contains at least one gallery thumbnail.
func HasThumbs(doc string) bool {
	return strings.Contains(doc, "lb-thumb") && len(ParseThumbs(doc)) > 0
}

func attrValue(raw []byte) string {
	v := string(raw)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	return stdhtml.UnescapeString(v)
}

func hasClass(class, name string) bool {
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}
