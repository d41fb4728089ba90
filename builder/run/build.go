package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/config"
	"github.com/Kush-Singh-26/shutter/builder/metrics"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

// Build executes a single build pass. The first failing page, shortcode or
// asset aborts the build; nothing is synced to disk in that case.
func (b *Builder) Build(ctx context.Context) (*metrics.BuildMetrics, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cfg := b.cfg
	m := metrics.NewBuildMetrics()
	fmt.Printf("🔨 Building site... (Version: %d) | Render Workers: %d\n", cfg.BuildVersion, cfg.Build.RenderWorkers)

	b.DestFs = afero.NewMemMapFs()
	b.checkCacheID()

	// 1. Content
	start := time.Now()
	set, err := b.loadContent()
	if err != nil {
		return nil, err
	}
	m.LoadTime = time.Since(start)
	m.ItemsLoaded = set.Len()

	s, err := b.newSite(set)
	if err != nil {
		return nil, err
	}
	m.PostsPublished = len(s.posts)
	if err := b.checkOutputs(s); err != nil {
		return nil, err
	}
	b.logger.Debug("Content loaded", "items", set.Len(), "posts", len(s.posts), "tag_pages", len(s.tagPages))

	// 2. Pages
	start = time.Now()
	if err := b.renderItems(ctx, s, m); err != nil {
		return nil, err
	}
	if err := b.renderTags(ctx, s, m); err != nil {
		return nil, err
	}
	if err := b.writeFeeds(s); err != nil {
		return nil, fmt.Errorf("failed to write feeds: %w", err)
	}
	m.RenderTime = time.Since(start)

	st := s.images.Stats()
	m.ImagesGenerated = st.Generated
	m.ImageCacheHits = st.CacheHits
	m.ImageCacheMisses = st.CacheMisses
	if st.Generated > 0 {
		fmt.Printf("   🖼️  Generated %d image variants\n", st.Generated)
	}
	hits, misses := s.rnd.CacheStats()
	m.RenderCacheHits.Store(hits)
	m.RenderCacheMiss.Store(misses)

	// 3. Assets
	start = time.Now()
	if err := b.writeAssets(s, m); err != nil {
		return nil, err
	}
	m.AssetTime = time.Since(start)

	// 4. Sync
	if b.SyncToDisk {
		start = time.Now()
		res, err := utils.SyncVFS(b.DestFs, cfg.OutputDir, true)
		if err != nil {
			return nil, fmt.Errorf("failed to sync %s: %w", cfg.OutputDir, err)
		}
		m.SyncTime = time.Since(start)
		fmt.Printf("   💾 %d written, %d unchanged, %d removed\n", res.Written, res.Unchanged, res.Removed)
	}

	// 5. Cache
	b.maintainCache(m)

	m.RecordEnd()
	m.Print()
	if b.cache != nil {
		if err := m.WriteTextfile(b.cache.BasePath()); err != nil {
			b.logger.Warn("Failed to write metrics textfile", "error", err)
		}
	}

	fmt.Println("✅ Build Complete.")
	return m, nil
}

// Run executes a one-off build: `shutter build`.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	b := NewBuilder(cfg, logger)
	defer func() {
		if err := b.Close(); err != nil {
			b.logger.Warn("Failed to close build cache", "error", err)
		}
	}()
	_, err := b.Build(ctx)
	return err
}
