package new

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Kush-Singh-26/shutter/builder/config"
)

// slugRegex matches characters that are unsafe for filenames/URLs
var slugRegex = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f'#%&{}]`)

// ErrExists is returned instead of overwriting a post.
var ErrExists = errors.New("file already exists")

type frontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Draft       bool     `yaml:"draft"`
}

// sanitizeSlug converts a title to a safe filename slug
func sanitizeSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugRegex.ReplaceAllString(slug, "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-.")
	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}

// Run creates a draft post for the title in args[0] in the posts dir and
// returns its path.
func Run(cfg *config.Config, args []string, now time.Time) (string, error) {
	if len(args) < 1 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New(`usage: shutter new "My New Post Title"`)
	}
	title := strings.TrimSpace(args[0])

	slug := sanitizeSlug(title)
	if slug == "" {
		return "", fmt.Errorf("title %q produces an empty slug", title)
	}

	dir := cfg.ContentDir
	if postsDir := path.Dir(cfg.PostsGlob); postsDir != "." {
		dir = filepath.Join(dir, filepath.FromSlash(postsDir))
	}
	filename := filepath.Join(dir, slug+".md")

	if _, err := os.Stat(filename); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, filename)
	}

	fm, err := yaml.Marshal(frontMatter{
		Title:       title,
		Date:        now.Format(time.DateOnly),
		Description: "Enter a short description here...",
		Tags:        []string{},
		Draft:       true,
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\nStart writing here...\n")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}
	fmt.Printf("✅ Created: %s\n", filename)
	return filename, nil
}
