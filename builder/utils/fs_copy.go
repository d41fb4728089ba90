package utils

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
)

// CopyDirVFS copies srcDir from srcFs into dstDir on destFs in parallel,
// byte for byte. Hidden files and directories are skipped. It returns the
// number of files copied. A missing srcDir copies nothing.
func CopyDirVFS(srcFs afero.Fs, destFs afero.Fs, srcDir, dstDir string, workers int, onWrite func(string)) (int, error) {
	srcDir = filepath.Clean(srcDir)
	dstDir = filepath.Clean(dstDir)

	if ok, err := afero.DirExists(srcFs, srcDir); err != nil || !ok {
		return 0, nil
	}
	if err := destFs.MkdirAll(dstDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	type fileTask struct {
		path    string
		relPath string
	}

	taskQueue := make(chan fileTask, 100)
	var wg sync.WaitGroup
	var copied atomic.Int64
	var firstErr error
	var errOnce sync.Once

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskQueue {
				destPath := filepath.Join(dstDir, task.relPath)
				if err := copyFileVFS(srcFs, destFs, task.path, destPath); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				copied.Add(1)
				if onWrite != nil {
					onWrite(destPath)
				}
			}
		}()
	}

	err := afero.Walk(srcFs, srcDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(info.Name(), ".") && path != srcDir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := SafeRel(srcDir, path)
		if err != nil {
			return err
		}
		taskQueue <- fileTask{path, relPath}
		return nil
	})

	close(taskQueue)
	wg.Wait()

	if err != nil {
		return int(copied.Load()), err
	}
	return int(copied.Load()), firstErr
}

func copyFileVFS(srcFs, destFs afero.Fs, srcPath, destPath string) error {
	destDir := filepath.Dir(destPath)
	if err := destFs.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	in, err := srcFs.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer func() { _ = in.Close() }()

	out, err := destFs.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", srcPath, err)
	}
	return nil
}
