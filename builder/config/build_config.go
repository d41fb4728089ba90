package config

import (
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// BuildConfigFile holds tunables that do not affect output.
const BuildConfigFile = "shutter.build.yaml"

// BuildConfig contains all tunable build parameters
// These can be overridden via shutter.build.yaml
type BuildConfig struct {
	// Worker settings
	ImageWorkers  int `yaml:"imageWorkers"`  // Concurrent encodes per image (default: 8)
	RenderWorkers int `yaml:"renderWorkers"` // Parallel page renders (default: NumCPU)

	// Encoder settings
	AVIFQuality int `yaml:"avifQuality"` // 0-100 (default: 50)
	AVIFSpeed   int `yaml:"avifSpeed"`   // 0-10, higher is faster (default: 8)
	WebPQuality int `yaml:"webpQuality"` // 0-100 (default: 80)
	JPEGQuality int `yaml:"jpegQuality"` // 1-100 (default: 80)

	// Timeouts
	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`  // Server shutdown timeout (default: 5s)
	DebounceDuration time.Duration `yaml:"debounceDuration"` // File watcher debounce (default: 300ms)
}

// DefaultBuildConfig returns the default build configuration
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		ImageWorkers:  8,
		RenderWorkers: runtime.NumCPU(),

		AVIFQuality: 50,
		AVIFSpeed:   8,
		WebPQuality: 80,
		JPEGQuality: 80,

		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
	}
}

// LoadBuildConfig loads build configuration from shutter.build.yaml
// Returns defaults if file doesn't exist
func LoadBuildConfig() *BuildConfig {
	return loadBuildConfigFile(BuildConfigFile)
}

func loadBuildConfigFile(path string) *BuildConfig {
	cfg := DefaultBuildConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// File doesn't exist, use defaults
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		// Parse error, use defaults
		return DefaultBuildConfig()
	}

	// Validate and clamp values
	cfg.validate()

	return cfg
}

// validate ensures configuration values are within reasonable bounds
func (c *BuildConfig) validate() {
	// Workers
	c.ImageWorkers = clamp(c.ImageWorkers, 1, 64)
	c.RenderWorkers = clamp(c.RenderWorkers, 1, 256)

	// Encoders
	c.AVIFQuality = clamp(c.AVIFQuality, 0, 100)
	c.AVIFSpeed = clamp(c.AVIFSpeed, 0, 10)
	c.WebPQuality = clamp(c.WebPQuality, 0, 100)
	c.JPEGQuality = clamp(c.JPEGQuality, 1, 100)

	// Timeouts
	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
