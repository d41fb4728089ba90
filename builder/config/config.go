// Package config loads shutter.yaml, .env overrides and command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "shutter.yaml"
	EnvBaseURL        = "SHUTTER_BASE_URL"
	EnvOutputDir      = "SHUTTER_OUTPUT_DIR"
)

type Config struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	BaseURL     string `yaml:"baseURL"`
	Language    string `yaml:"language"`

	ContentDir  string            `yaml:"contentDir"`
	PostsGlob   string            `yaml:"postsGlob"`
	IncludesDir string            `yaml:"includesDir"`
	OutputDir   string            `yaml:"outputDir"`
	CacheDir    string            `yaml:"cacheDir"`
	Passthrough map[string]string `yaml:"passthrough"`

	PageSize           int    `yaml:"pageSize"`
	FeedLimit          int    `yaml:"feedLimit"` // newest posts in feed.xml, 0 for all
	ImageWidths        []int  `yaml:"imageWidths"`
	ImageCacheDuration string `yaml:"imageCacheDuration"`
	Compress           bool   `yaml:"compress"`

	// Derived or set from flags
	ImageCacheMaxAge time.Duration `yaml:"-"`
	IncludeDrafts    bool          `yaml:"-"`
	Verbose          bool          `yaml:"-"`
	IsDev            bool          `yaml:"-"`
	ConfigFile       string        `yaml:"-"`
	BuildVersion     int64         `yaml:"-"`
	Build            *BuildConfig  `yaml:"-"`
}

// Default returns the configuration used when no shutter.yaml exists.
func Default() *Config {
	return &Config{
		Title:       "Shutter",
		Description: "Photos and notes",
		Language:    "en",
		ContentDir:  "src",
		PostsGlob:   "posts/*.md",
		IncludesDir: filepath.Join("src", "_includes"),
		OutputDir:   "_site",
		CacheDir:    ".shutter-cache",
		Passthrough: map[string]string{
			filepath.Join("src", "assets"): "assets",
			filepath.Join("src", "images"): "images",
		},
		PageSize:           12,
		FeedLimit:          20,
		ImageWidths:        []int{320, 640, 960, 1280},
		ImageCacheDuration: "30d",
		ImageCacheMaxAge:   30 * 24 * time.Hour,
		ConfigFile:         DefaultConfigFile,
	}
}

// Load reads the site configuration. Precedence, lowest first: defaults,
// shutter.yaml (or -config), .env / environment, flags. A malformed YAML
// file is reported and ignored.
func Load(args []string) *Config {
	fs := flag.NewFlagSet("shutter", flag.ContinueOnError)
	baseURL := fs.String("baseurl", "", "Base URL override")
	compress := fs.Bool("compress", false, "Minify HTML, CSS and JS")
	drafts := fs.Bool("drafts", false, "Render draft pages")
	verbose := fs.Bool("verbose", false, "Debug logging")
	configFile := fs.String("config", DefaultConfigFile, "Path to site config")
	if err := fs.Parse(args); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	}

	cfg := Default()
	cfg.ConfigFile = *configFile

	if data, err := os.ReadFile(cfg.ConfigFile); err == nil {
		// yaml.v3 merges into a non-nil map; a configured passthrough
		// replaces the default one instead
		defaults := cfg.Passthrough
		cfg.Passthrough = nil
		err := yaml.Unmarshal(data, cfg)
		if cfg.Passthrough == nil {
			cfg.Passthrough = defaults
		}
		if err != nil {
			fmt.Printf("⚠️  Failed to parse %s, using defaults: %v\n", cfg.ConfigFile, err)
			cfg = Default()
			cfg.ConfigFile = *configFile
		}
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}

	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *compress {
		cfg.Compress = true
	}
	cfg.IncludeDrafts = *drafts
	cfg.Verbose = *verbose

	cfg.normalize()
	cfg.Build = LoadBuildConfig()
	cfg.BuildVersion = time.Now().Unix()
	return cfg
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.Language == "" {
		c.Language = "en"
	}
	if c.PageSize < 1 {
		c.PageSize = 12
	}
	if c.FeedLimit < 0 {
		c.FeedLimit = 0
	}
	if len(c.ImageWidths) == 0 {
		c.ImageWidths = []int{320, 640, 960, 1280}
	}
	if c.PostsGlob == "" {
		c.PostsGlob = "posts/*.md"
	}
	for _, dir := range []*string{&c.ContentDir, &c.IncludesDir, &c.OutputDir, &c.CacheDir} {
		*dir = filepath.Clean(*dir)
	}

	maxAge, err := ParseRetention(c.ImageCacheDuration)
	if err != nil {
		fmt.Printf("⚠️  Invalid imageCacheDuration %q, using 30d: %v\n", c.ImageCacheDuration, err)
		maxAge = 30 * 24 * time.Hour
	}
	c.ImageCacheMaxAge = maxAge
}

// ParseRetention parses a duration that may use a trailing "d" for days
// ("30d") in addition to time.ParseDuration units.
func ParseRetention(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 30 * 24 * time.Hour, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// SetDevMode marks the config for `shutter serve`.
func SetDevMode(cfg *Config, isDev bool) {
	cfg.IsDev = isDev
}

// CacheID fingerprints the settings that change rendered output. A change
// invalidates the rendered-body cache.
func (c *Config) CacheID() string {
	return fmt.Sprintf("%s|%s|%t|%v", c.BaseURL, c.Language, c.Compress, c.ImageWidths)
}
