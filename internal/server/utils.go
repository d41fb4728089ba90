package server

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// reloadScript is appended to every served HTML page.
const reloadScript = `<script>new EventSource("/events").onmessage=function(e){if(e.data==="reload"){location.reload()}}</script>`

// validatePath ensures that the user-provided path is within the base directory
// and prevents path traversal attacks.
func validatePath(baseDir, userPath string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	absUserPath, err := filepath.Abs(filepath.Join(baseDir, filepath.FromSlash(userPath)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	relPath, err := filepath.Rel(absBase, absUserPath)
	if err != nil {
		return "", fmt.Errorf("path validation error: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absUserPath, nil
}

// normalizeRequestPath cleans the request path to a rooted slash path.
func normalizeRequestPath(rawPath string) string {
	return path.Clean("/" + rawPath)
}

// cacheControl picks the Cache-Control header for a request path. Image
// variants are named by content hash and never change.
func cacheControl(reqPath string) string {
	switch {
	case strings.HasPrefix(reqPath, "/img/"):
		return "public, max-age=31536000, immutable"
	case path.Ext(reqPath) == "" || strings.HasSuffix(reqPath, ".html"):
		return "no-store, no-cache, must-revalidate"
	default:
		return "public, max-age=60"
	}
}

// injectReload inserts the reload client before </body>.
func injectReload(page []byte) []byte {
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, reloadScript...)
	}
	out := make([]byte, 0, len(page)+len(reloadScript))
	out = append(out, page[:i]...)
	out = append(out, reloadScript...)
	return append(out, page[i:]...)
}
