package run

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/cache"
	"github.com/Kush-Singh-26/shutter/builder/config"
)

// Builder maintains the state for site builds. One Builder serves every
// rebuild of `shutter serve`; Build is not reentrant.
type Builder struct {
	cfg    *config.Config
	cache  *cache.Manager
	logger *slog.Logger
	mu     sync.Mutex

	// SourceFs holds the project: content, includes and passthrough dirs.
	SourceFs afero.Fs
	// DestFs receives the rendered site. It is replaced on every build.
	DestFs afero.Fs
	// SyncToDisk mirrors DestFs to cfg.OutputDir at the end of a build.
	SyncToDisk bool
}

// NewBuilder opens the build cache under cfg.CacheDir. A cache that cannot
// be opened is reported and the build runs without it.
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Build == nil {
		cfg.Build = config.DefaultBuildConfig()
	}
	b := &Builder{
		cfg:        cfg,
		logger:     logger,
		SourceFs:   afero.NewOsFs(),
		DestFs:     afero.NewMemMapFs(),
		SyncToDisk: true,
	}

	cm, err := cache.Open(cfg.CacheDir, cfg.IsDev)
	if err != nil {
		fmt.Printf("⚠️  Failed to open build cache, continuing without it: %v\n", err)
		return b
	}
	b.cache = cm
	return b
}

// NewMemoryBuilder builds from srcFs and never syncs to disk. cm may be nil.
func NewMemoryBuilder(cfg *config.Config, srcFs afero.Fs, cm *cache.Manager, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Build == nil {
		cfg.Build = config.DefaultBuildConfig()
	}
	return &Builder{
		cfg:      cfg,
		cache:    cm,
		logger:   logger,
		SourceFs: srcFs,
		DestFs:   afero.NewMemMapFs(),
	}
}

// Config returns the builder's configuration
func (b *Builder) Config() *config.Config {
	return b.cfg
}

// Cache returns the build cache, or nil when it could not be opened.
func (b *Builder) Cache() *cache.Manager {
	return b.cache
}

// SetDevMode enables/disables development mode
func (b *Builder) SetDevMode(isDev bool) {
	config.SetDevMode(b.cfg, isDev)
}

// Close releases the build cache.
func (b *Builder) Close() error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Close()
}
