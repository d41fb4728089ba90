package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Kush-Singh-26/shutter/builder/config"
)

// Run removes the output dir and, with cleanCache, the build cache. The
// directories are renamed first and deleted in the background; wait blocks
// until deletion finishes.
func Run(cfg *config.Config, cleanCache, wait bool) error {
	start := time.Now()
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	targets := []string{cfg.OutputDir}
	if cleanCache {
		targets = append(targets, cfg.CacheDir)
	}

	done := make(chan struct{}, len(targets))
	pending := 0
	for _, dir := range targets {
		abs := dir
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, dir)
		}
		started, err := cleanDirAsync(abs, done)
		if err != nil {
			return err
		}
		if started {
			pending++
		}
	}

	if wait {
		for ; pending > 0; pending-- {
			<-done
		}
	}
	fmt.Printf("🧹 Clean initiated in %v (backgrounding deletion).\n", time.Since(start))
	return nil
}

// cleanDirAsync moves absPath aside and deletes it in a goroutine, which
// signals done when finished. It reports whether background work started.
func cleanDirAsync(absPath string, done chan<- struct{}) (bool, error) {
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return false, nil
	}

	dir := filepath.Dir(absPath)
	base := filepath.Base(absPath)
	tempPath := filepath.Join(dir, fmt.Sprintf("%s_deleting_%d", base, time.Now().UnixNano()))

	fmt.Printf("🧹 Moving '%s' to trash...\n", absPath)
	if err := os.Rename(absPath, tempPath); err != nil {
		fmt.Printf("⚠️ Rename failed (%v), deleting synchronously...\n", err)
		if err := os.RemoveAll(absPath); err != nil {
			return false, fmt.Errorf("failed to remove '%s': %w", absPath, err)
		}
		return false, nil
	}

	go func() {
		_ = os.RemoveAll(tempPath)
		done <- struct{}{}
	}()
	return true, nil
}
