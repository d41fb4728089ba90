// Configures the markdown parser and front matter extraction
package parser

import (
	"bytes"
	"errors"
	"fmt"

	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrUnterminatedFrontMatter is returned when a file opens a front matter
// block with "---" but never closes it.
var ErrUnterminatedFrontMatter = errors.New("front matter is not terminated")

func codeBlockWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if entering {
		langBytes, _ := c.Language()
		lang := string(langBytes)
		if lang == "" {
			lang = "text"
		}
		_, _ = w.WriteString(`<div class="code-wrapper" data-lang="` + lang + `">`)
	} else {
		_, _ = w.WriteString(`</div>`)
	}
}

// New creates the Goldmark markdown converter used for item bodies.
func New(baseURL string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&admonitions.Extender{},
			highlighting.NewHighlighting(
				highlighting.WithStyle("nord"),
				highlighting.WithFormatOptions(
					chroma_html.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(codeBlockWrapper),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&URLTransformer{BaseURL: baseURL}, 100),
			),
			parser.WithAutoHeadingID(),
		),
		// Bodies carry shortcode output (<picture>, <button>), so raw HTML must pass.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// metaParser only understands the front matter block; bodies are never rendered with it.
var metaParser = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ParseFrontMatter returns the YAML front matter of source as a map and the
// markdown body that follows it. Files without front matter yield an empty
// map and the whole source as body.
func ParseFrontMatter(source []byte) (map[string]interface{}, []byte, error) {
	source = bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	body, had, err := splitBody(source)
	if err != nil {
		return nil, nil, err
	}
	if !had {
		return map[string]interface{}{}, body, nil
	}

	pc := parser.NewContext()
	metaParser.Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	data, err := meta.TryGet(pc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, body, nil
}

// splitBody strips a leading "---" delimited block from LF-normalized source.
func splitBody(norm []byte) ([]byte, bool, error) {
	if !bytes.HasPrefix(norm, []byte("---\n")) {
		return norm, false, nil
	}
	rest := norm[len("---\n"):]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return rest[len("---\n"):], true, nil
	}
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, false, ErrUnterminatedFrontMatter
	}
	after := rest[idx+len("\n---"):]
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}
	return after, true, nil
}
