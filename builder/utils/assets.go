package utils

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// TransformJS runs a standalone script through esbuild. With minify the
// output is whitespace, identifier and syntax minified; otherwise the
// script is only parsed and reprinted, which still catches syntax errors.
func TransformJS(name string, src []byte, minify bool) ([]byte, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        name,
		Target:            api.ES2017,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, m := range result.Errors {
			msgs[i] = m.Text
		}
		return nil, fmt.Errorf("esbuild failed on %s: %s", name, strings.Join(msgs, "; "))
	}
	return result.Code, nil
}

// TransformCSS minifies a stylesheet with esbuild.
func TransformCSS(name string, src []byte) ([]byte, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       name,
		MinifyWhitespace: true,
		MinifySyntax:     true,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("esbuild failed on %s: %s", name, result.Errors[0].Text)
	}
	return result.Code, nil
}
