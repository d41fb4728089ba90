// Package metrics provides build performance tracking and telemetry.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// BuildMetrics tracks performance data during the build process. Counters
// bumped from render workers are atomic.
type BuildMetrics struct {
	// Timing
	StartTime     time.Time
	EndTime       time.Time
	LoadTime      time.Duration
	RenderTime    time.Duration
	AssetTime     time.Duration
	SyncTime      time.Duration
	CachePruneDur time.Duration

	// Counters
	ItemsLoaded     int
	PostsPublished  int
	TagPages        int
	PagesRendered   atomic.Int64
	RenderCacheHits atomic.Int64
	RenderCacheMiss atomic.Int64

	// Images
	ImagesGenerated   int64
	ImageCacheHits    int64
	ImageCacheMisses  int64
	ImagesPruned      int
	PassthroughCopied atomic.Int64
}

// NewBuildMetrics creates a new metrics instance.
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		StartTime: time.Now(),
	}
}

// RecordEnd marks the end of the build.
func (m *BuildMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// TotalDuration returns the total build duration.
func (m *BuildMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// ImageCacheHitRate returns the image cache hit percentage.
func (m *BuildMetrics) ImageCacheHitRate() float64 {
	return rate(m.ImageCacheHits, m.ImageCacheMisses)
}

// RenderCacheHitRate returns the rendered-body cache hit percentage.
func (m *BuildMetrics) RenderCacheHitRate() float64 {
	return rate(m.RenderCacheHits.Load(), m.RenderCacheMiss.Load())
}

func rate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// String returns a formatted summary of the build metrics (minimal single-line format).
func (m *BuildMetrics) String() string {
	return fmt.Sprintf("📊 Built %d pages (%d posts, %d tag pages) in %v | 🖼️  %d variants, image cache %d/%d hits (%.0f%%)\n",
		m.PagesRendered.Load(),
		m.PostsPublished,
		m.TagPages,
		m.TotalDuration().Round(time.Millisecond),
		m.ImagesGenerated,
		m.ImageCacheHits,
		m.ImageCacheHits+m.ImageCacheMisses,
		m.ImageCacheHitRate(),
	)
}

// Print outputs the metrics to stdout.
func (m *BuildMetrics) Print() {
	fmt.Println(m.String())
}
