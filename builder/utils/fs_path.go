package utils

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// SafeRel returns target relative to base with forward slashes, refusing
// results that escape base.
func SafeRel(base, target string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path traversal detected: %s escapes %s", target, base)
	}
	return rel, nil
}

// URLToPath maps a site URL to the file that serves it under outputDir.
// Directory URLs ("/posts/a/") get an index.html. Percent-encoded segments
// are decoded, the way a static file server resolves them.
func URLToPath(outputDir, u string) string {
	clean := path.Clean("/" + u)
	if decoded, err := url.PathUnescape(clean); err == nil {
		clean = path.Clean("/" + decoded)
	}
	if strings.HasSuffix(u, "/") || path.Ext(clean) == "" {
		return filepath.Join(outputDir, filepath.FromSlash(clean), "index.html")
	}
	return filepath.Join(outputDir, filepath.FromSlash(clean))
}

func WriteFileVFS(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write VFS file %s: %w", path, err)
	}
	return nil
}
