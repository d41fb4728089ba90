package utils

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/afero"
)

// SyncResult counts what SyncVFS did on disk.
type SyncResult struct {
	Written   int
	Unchanged int
	Removed   int
}

// SyncVFS mirrors targetDir from the in-memory build into the same path on
// disk using parallel workers. Files whose bytes are unchanged are not
// rewritten. With prune, disk files under targetDir that the build did not
// produce are removed.
func SyncVFS(srcFs afero.Fs, targetDir string, prune bool) (SyncResult, error) {
	fmt.Println("💾 Syncing in-memory filesystem to disk...")

	var res SyncResult
	targetDirClean := filepath.Clean(targetDir)

	// 1. Collect all files from VFS
	var filesToSync []string
	produced := make(map[string]bool)
	err := afero.Walk(srcFs, targetDirClean, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return os.MkdirAll(path, 0755)
		}
		filesToSync = append(filesToSync, path)
		produced[path] = true
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to scan VFS: %w", err)
	}

	// 2. Parallel Sync with Worker Pool
	numWorkers := min(runtime.NumCPU()*2, 64)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		written   int
		unchanged int
	)
	fileChan := make(chan string, len(filesToSync))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileChan {
				changed, err := syncSingleFile(srcFs, path)
				mu.Lock()
				switch {
				case err != nil && firstErr == nil:
					firstErr = err
				case changed:
					written++
				case err == nil:
					unchanged++
				}
				mu.Unlock()
			}
		}()
	}

	for _, f := range filesToSync {
		fileChan <- f
	}
	close(fileChan)
	wg.Wait()

	res.Written, res.Unchanged = written, unchanged
	if firstErr != nil {
		return res, firstErr
	}

	if prune {
		removed, err := pruneStale(targetDirClean, produced)
		res.Removed = removed
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func syncSingleFile(srcFs afero.Fs, path string) (bool, error) {
	// Read source content ONCE
	srcContent, err := afero.ReadFile(srcFs, path)
	if err != nil {
		return false, err
	}

	// Check if destination exists with same content
	destContent, err := os.ReadFile(path)
	if err == nil && bytes.Equal(srcContent, destContent) {
		return false, nil // Identical - skip write
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, srcContent, 0644); err != nil {
		return false, err
	}
	return true, nil
}

// pruneStale removes disk files under dir that are not in keep, then any
// directories left empty.
func pruneStale(dir string, keep map[string]bool) (int, error) {
	var stale, dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != dir {
				dirs = append(dirs, path)
			}
			return nil
		}
		if !keep[path] {
			stale = append(stale, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return 0, err
		}
	}
	// deepest first
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i]) // non-empty dirs stay
	}
	return len(stale), nil
}
