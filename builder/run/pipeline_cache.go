package run

import (
	"fmt"
	"time"

	"github.com/Kush-Singh-26/shutter/builder/metrics"
)

// checkCacheID clears the build cache when settings that shape rendered
// output changed since the last build.
func (b *Builder) checkCacheID() {
	if b.cache == nil {
		return
	}
	id := b.cfg.CacheID()
	stale, err := b.cache.VerifyCacheID(id)
	if err != nil {
		b.logger.Warn("Failed to read cache ID", "error", err)
		return
	}
	if !stale {
		return
	}
	fmt.Println("🔄 Output settings changed. Clearing build cache.")
	if err := b.cache.Clear(); err != nil {
		b.logger.Warn("Failed to clear build cache", "error", err)
		return
	}
	if err := b.cache.SetCacheID(id); err != nil {
		b.logger.Warn("Failed to store cache ID", "error", err)
	}
}

// maintainCache expires old image records and counts the build.
func (b *Builder) maintainCache(m *metrics.BuildMetrics) {
	if b.cache == nil {
		return
	}
	start := time.Now()
	res, err := b.cache.PruneImages(b.cfg.ImageCacheMaxAge, start)
	if err != nil {
		b.logger.Warn("Failed to prune image cache", "error", err)
	} else {
		m.ImagesPruned = res.ExpiredImages
		if res.ExpiredImages > 0 || res.OrphanedBlobs > 0 {
			fmt.Printf("   🧹 Pruned %d expired images, %d orphaned blobs\n", res.ExpiredImages, res.OrphanedBlobs)
		}
	}
	if err := b.cache.IncrementBuildCount(); err != nil {
		b.logger.Warn("Failed to update build count", "error", err)
	}
	m.CachePruneDur = time.Since(start)
}
