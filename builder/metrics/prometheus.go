package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"
)

// TextfileName is written into the cache dir for node_exporter's textfile
// collector.
const TextfileName = "metrics.prom"

// Registry builds a prometheus registry holding a snapshot of m.
func (m *BuildMetrics) Registry() *prom.Registry {
	reg := prom.NewRegistry()

	duration := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "shutter",
		Name:      "build_phase_seconds",
		Help:      "Duration of each phase of the last build",
	}, []string{"phase"})
	duration.WithLabelValues("load").Set(m.LoadTime.Seconds())
	duration.WithLabelValues("render").Set(m.RenderTime.Seconds())
	duration.WithLabelValues("assets").Set(m.AssetTime.Seconds())
	duration.WithLabelValues("sync").Set(m.SyncTime.Seconds())
	duration.WithLabelValues("prune").Set(m.CachePruneDur.Seconds())
	duration.WithLabelValues("total").Set(m.TotalDuration().Seconds())

	pages := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "shutter",
		Name:      "build_pages",
		Help:      "Pages produced by the last build, by kind",
	}, []string{"kind"})
	pages.WithLabelValues("item").Set(float64(m.ItemsLoaded))
	pages.WithLabelValues("post").Set(float64(m.PostsPublished))
	pages.WithLabelValues("tag").Set(float64(m.TagPages))
	pages.WithLabelValues("rendered").Set(float64(m.PagesRendered.Load()))

	cacheOps := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "shutter",
		Name:      "build_cache_lookups",
		Help:      "Cache lookups in the last build by cache and result",
	}, []string{"cache", "result"})
	cacheOps.WithLabelValues("image", "hit").Set(float64(m.ImageCacheHits))
	cacheOps.WithLabelValues("image", "miss").Set(float64(m.ImageCacheMisses))
	cacheOps.WithLabelValues("render", "hit").Set(float64(m.RenderCacheHits.Load()))
	cacheOps.WithLabelValues("render", "miss").Set(float64(m.RenderCacheMiss.Load()))

	images := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "shutter",
		Name:      "build_images",
		Help:      "Image work in the last build",
	}, []string{"op"})
	images.WithLabelValues("generated").Set(float64(m.ImagesGenerated))
	images.WithLabelValues("pruned").Set(float64(m.ImagesPruned))
	images.WithLabelValues("passthrough").Set(float64(m.PassthroughCopied.Load()))

	reg.MustRegister(duration, pages, cacheOps, images)
	return reg
}

// WriteTextfile writes the snapshot to dir/metrics.prom.
func (m *BuildMetrics) WriteTextfile(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	path := filepath.Join(dir, TextfileName)
	if err := prom.WriteToTextfile(path, m.Registry()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
