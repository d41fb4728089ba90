package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// changeToTempDir changes to a temp directory and returns a cleanup function
func changeToTempDir(t *testing.T) func() {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	return func() {
		if err := os.Chdir(originalDir); err != nil {
			t.Errorf("Failed to restore original directory: %v", err)
		}
	}
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	cfg := Load([]string{})

	if cfg.Title != "Shutter" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Shutter")
	}
	if cfg.ContentDir != "src" {
		t.Errorf("ContentDir = %q, want src", cfg.ContentDir)
	}
	if cfg.PostsGlob != "posts/*.md" {
		t.Errorf("PostsGlob = %q, want posts/*.md", cfg.PostsGlob)
	}
	if cfg.OutputDir != "_site" {
		t.Errorf("OutputDir = %q, want _site", cfg.OutputDir)
	}
	if cfg.IncludesDir != filepath.Join("src", "_includes") {
		t.Errorf("IncludesDir = %q", cfg.IncludesDir)
	}
	if cfg.PageSize != 12 {
		t.Errorf("PageSize = %d, want 12", cfg.PageSize)
	}
	if cfg.ImageCacheMaxAge != 30*24*time.Hour {
		t.Errorf("ImageCacheMaxAge = %v, want 720h", cfg.ImageCacheMaxAge)
	}
	if got := cfg.Passthrough[filepath.Join("src", "assets")]; got != "assets" {
		t.Errorf("Passthrough[src/assets] = %q, want assets", got)
	}
	if got := cfg.Passthrough[filepath.Join("src", "images")]; got != "images" {
		t.Errorf("Passthrough[src/images] = %q, want images", got)
	}
	if cfg.Build == nil {
		t.Fatal("Build config should be loaded")
	}
	if cfg.BuildVersion == 0 {
		t.Error("BuildVersion should be set")
	}
}

func TestLoad_FromYAML(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	writeFile(t, "shutter.yaml", `
title: "Harbour Notes"
baseURL: "https://photos.example.com/"
language: "de"
pageSize: 6
imageCacheDuration: "7d"
passthrough:
  static: static
`)

	cfg := Load([]string{})

	if cfg.Title != "Harbour Notes" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Harbour Notes")
	}
	if cfg.BaseURL != "https://photos.example.com" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Language)
	}
	if cfg.PageSize != 6 {
		t.Errorf("PageSize = %d, want 6", cfg.PageSize)
	}
	if cfg.ImageCacheMaxAge != 7*24*time.Hour {
		t.Errorf("ImageCacheMaxAge = %v, want 168h", cfg.ImageCacheMaxAge)
	}
	if len(cfg.Passthrough) != 1 || cfg.Passthrough["static"] != "static" {
		t.Errorf("Passthrough = %v, want only static", cfg.Passthrough)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	writeFile(t, "shutter.yaml", "invalid: yaml: content: [")

	// Should not panic and should use defaults
	cfg := Load([]string{})

	if cfg.Title != "Shutter" {
		t.Errorf("Title = %q, want default %q", cfg.Title, "Shutter")
	}
	if len(cfg.Passthrough) != 2 {
		t.Errorf("Passthrough = %v, want defaults", cfg.Passthrough)
	}
}

func TestLoad_ConfigFlag(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	writeFile(t, "site.yaml", `title: "Other"`)

	cfg := Load([]string{"-config", "site.yaml"})
	if cfg.Title != "Other" {
		t.Errorf("Title = %q, want Other", cfg.Title)
	}
	if cfg.ConfigFile != "site.yaml" {
		t.Errorf("ConfigFile = %q, want site.yaml", cfg.ConfigFile)
	}
}

func TestLoad_Precedence(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	writeFile(t, "shutter.yaml", `
baseURL: "https://yaml.example.com"
outputDir: "yaml-out"
`)
	writeFile(t, ".env", "SHUTTER_OUTPUT_DIR=env-out\n")
	t.Setenv(EnvBaseURL, "https://env.example.com")
	// godotenv sets variables that were not already present; undo it
	t.Setenv(EnvOutputDir, "")
	_ = os.Unsetenv(EnvOutputDir)

	cfg := Load([]string{})
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, env should override yaml", cfg.BaseURL)
	}
	if cfg.OutputDir != "env-out" {
		t.Errorf("OutputDir = %q, .env should override yaml", cfg.OutputDir)
	}

	cfg = Load([]string{"-baseurl", "https://flag.example.com", "-drafts", "-compress", "-verbose"})
	if cfg.BaseURL != "https://flag.example.com" {
		t.Errorf("BaseURL = %q, flag should override env", cfg.BaseURL)
	}
	if !cfg.IncludeDrafts || !cfg.Compress || !cfg.Verbose {
		t.Errorf("flags not applied: drafts=%v compress=%v verbose=%v", cfg.IncludeDrafts, cfg.Compress, cfg.Verbose)
	}
}

func TestParseRetention(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"0d", 0, false},
		{"", 30 * 24 * time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"-2d", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRetention(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRetention(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRetention(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetDevMode(t *testing.T) {
	cfg := &Config{}

	SetDevMode(cfg, true)
	if !cfg.IsDev {
		t.Error("IsDev should be true")
	}

	SetDevMode(cfg, false)
	if cfg.IsDev {
		t.Error("IsDev should be false")
	}
}

func TestCacheID(t *testing.T) {
	a := Default()
	b := Default()
	if a.CacheID() != b.CacheID() {
		t.Error("identical configs should share a cache ID")
	}
	b.BaseURL = "https://elsewhere.example.com"
	if a.CacheID() == b.CacheID() {
		t.Error("BaseURL change should change the cache ID")
	}
}

func TestBuildConfig_Validation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		check func(*BuildConfig) bool
	}{
		{"image workers floor", "imageWorkers: 0", func(c *BuildConfig) bool { return c.ImageWorkers == 1 }},
		{"image workers cap", "imageWorkers: 500", func(c *BuildConfig) bool { return c.ImageWorkers == 64 }},
		{"jpeg quality floor", "jpegQuality: 0", func(c *BuildConfig) bool { return c.JPEGQuality == 1 }},
		{"avif speed cap", "avifSpeed: 42", func(c *BuildConfig) bool { return c.AVIFSpeed == 10 }},
		{"debounce floor", "debounceDuration: 1ms", func(c *BuildConfig) bool { return c.DebounceDuration == 10*time.Millisecond }},
		{"shutdown cap", "shutdownTimeout: 10m", func(c *BuildConfig) bool { return c.ShutdownTimeout == 60*time.Second }},
		{"valid value kept", "webpQuality: 65", func(c *BuildConfig) bool { return c.WebPQuality == 65 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), BuildConfigFile)
			writeFile(t, path, tt.yaml)
			if cfg := loadBuildConfigFile(path); !tt.check(cfg) {
				t.Errorf("unexpected config after %q: %+v", tt.yaml, cfg)
			}
		})
	}
}

func TestBuildConfig_MissingAndInvalidFile(t *testing.T) {
	def := DefaultBuildConfig()

	cfg := loadBuildConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if *cfg != *def {
		t.Errorf("missing file should give defaults, got %+v", cfg)
	}

	path := filepath.Join(t.TempDir(), BuildConfigFile)
	writeFile(t, path, "imageWorkers: [")
	cfg = loadBuildConfigFile(path)
	if *cfg != *def {
		t.Errorf("invalid file should give defaults, got %+v", cfg)
	}
}
