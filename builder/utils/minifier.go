package utils

import (
	"bytes"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Global Minifier Instance
var Minifier *minify.M

var minifierOnce sync.Once

func InitMinifier() {
	minifierOnce.Do(func() {
		Minifier = minify.New()
		Minifier.Add("text/html", &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
		Minifier.AddFunc("text/css", css.Minify)
		Minifier.AddFunc("application/javascript", js.Minify)
	})
}

// MinifyBytes minifies data of the given media type.
func MinifyBytes(mediatype string, data []byte) ([]byte, error) {
	InitMinifier()
	var buf bytes.Buffer
	if err := Minifier.Minify(mediatype, &buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
