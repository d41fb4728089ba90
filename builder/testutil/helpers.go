package testutil

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/cache"
)

// CreateTestCache opens a cache in a temporary directory that is closed
// when the test ends.
func CreateTestCache(t *testing.T) *cache.Manager {
	t.Helper()
	m, err := cache.Open(t.TempDir(), true)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// WriteFiles writes name → content pairs into fs.
func WriteFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// WritePNG writes a solid w×h PNG to name.
func WritePNG(t *testing.T, fs afero.Fs, name string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	if err := afero.WriteFile(fs, name, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// ReadFile returns the content of path, failing the test if it is missing.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// AssertFileExists checks if a file exists in the filesystem
func AssertFileExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Failed to check file existence: %v", err)
	}
	if !exists {
		t.Errorf("Expected file %s to exist", path)
	}
}

// AssertFileNotExists checks if a file does not exist in the filesystem
func AssertFileNotExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Failed to check file existence: %v", err)
	}
	if exists {
		t.Errorf("Expected file %s to not exist", path)
	}
}
