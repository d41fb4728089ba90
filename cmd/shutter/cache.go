package main

import (
	"fmt"
	"time"

	"github.com/Kush-Singh-26/shutter/builder/cache"
	"github.com/Kush-Singh-26/shutter/builder/config"
)

// handleCacheCommand processes cache-related subcommands
func handleCacheCommand(args []string) error {
	if len(args) < 1 {
		printCacheUsage()
		return fmt.Errorf("missing cache subcommand")
	}

	cfg := config.Load(args[1:])
	switch args[0] {
	case "stats":
		return withCache(cfg, cacheStats)
	case "prune":
		return withCache(cfg, func(cm *cache.Manager) error {
			return cachePrune(cm, cfg.ImageCacheMaxAge)
		})
	case "clear":
		return withCache(cfg, cacheClear)
	default:
		printCacheUsage()
		return fmt.Errorf("unknown cache subcommand: %s", args[0])
	}
}

func printCacheUsage() {
	fmt.Println("Usage: shutter cache <subcommand>")
	fmt.Println("\nSubcommands:")
	fmt.Println("  stats          Show cache statistics")
	fmt.Println("  prune          Drop image records past imageCacheDuration")
	fmt.Println("  clear          Delete all cached images and rendered bodies")
}

func withCache(cfg *config.Config, fn func(*cache.Manager) error) error {
	// Cache commands run in production mode for durability
	cm, err := cache.Open(cfg.CacheDir, false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = cm.Close() }()
	return fn(cm)
}

func cacheStats(cm *cache.Manager) error {
	stats, err := cm.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("📊 Cache Statistics")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Schema Version:  %d\n", stats.SchemaVersion)
	fmt.Printf("Images:          %d (%d variants, %.2f MB)\n", stats.Images, stats.Variants, float64(stats.ImageBytes)/(1024*1024))
	fmt.Printf("Rendered Posts:  %d (%.2f MB)\n", stats.RenderedPosts, float64(stats.RenderedBytes)/(1024*1024))
	fmt.Printf("Build Count:     %d\n", stats.BuildCount)
	if stats.LastGC > 0 {
		fmt.Printf("Last GC:         %s\n", time.Unix(stats.LastGC, 0).Format(time.RFC3339))
	} else {
		fmt.Printf("Last GC:         never\n")
	}
	return nil
}

func cachePrune(cm *cache.Manager, maxAge time.Duration) error {
	fmt.Printf("🗑️  Pruning image records older than %v...\n", maxAge)
	res, err := cm.PruneImages(maxAge, time.Now())
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Expired images:   %d\n", res.ExpiredImages)
	fmt.Printf("Expired rendered: %d\n", res.ExpiredRendered)
	fmt.Printf("Orphaned blobs:   %d\n", res.OrphanedBlobs)
	fmt.Printf("Duration:         %v\n", res.Duration)
	fmt.Println("\n✅ Prune complete")
	return nil
}

func cacheClear(cm *cache.Manager) error {
	if err := cm.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("✅ Cache cleared")
	return nil
}
