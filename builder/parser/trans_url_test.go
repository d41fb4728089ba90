package parser

import (
	"testing"

	"github.com/yuin/goldmark/ast"
)

func TestURLTransformer_ProcessDestination(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		node    ast.Node
		href    string
		want    string
	}{
		{"root relative link gets base", "https://x.dev", ast.NewLink(), "/posts/a/", "https://x.dev/posts/a/"},
		{"relative link untouched", "https://x.dev", ast.NewLink(), "a/b/", "a/b/"},
		{"external link untouched", "https://x.dev", ast.NewLink(), "https://go.dev", "https://go.dev"},
		{"protocol relative untouched", "https://x.dev", ast.NewLink(), "//cdn.dev/x.js", "//cdn.dev/x.js"},
		{"no base url", "", ast.NewLink(), "/posts/a/", "/posts/a/"},
		{"image gets base", "https://x.dev", ast.NewImage(ast.NewLink()), "/images/a.jpg", "https://x.dev/images/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &URLTransformer{BaseURL: tt.baseURL}
			got := string(tr.processDestination(tt.node, []byte(tt.href)))
			if got != tt.want {
				t.Errorf("processDestination(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestURLTransformer_ExternalLinkAttributes(t *testing.T) {
	tr := &URLTransformer{}
	link := ast.NewLink()
	tr.processDestination(link, []byte("https://go.dev"))

	if v, ok := link.AttributeString("target"); !ok || string(v.([]byte)) != "_blank" {
		t.Errorf("target attribute = %v, want _blank", v)
	}
	if v, ok := link.AttributeString("rel"); !ok || string(v.([]byte)) != "noopener noreferrer" {
		t.Errorf("rel attribute = %v", v)
	}
}

func TestURLTransformer_ImageLazy(t *testing.T) {
	tr := &URLTransformer{}
	img := ast.NewImage(ast.NewLink())
	tr.processDestination(img, []byte("/images/a.jpg"))

	if v, ok := img.AttributeString("loading"); !ok || string(v.([]byte)) != "lazy" {
		t.Errorf("loading attribute = %v, want lazy", v)
	}
}
