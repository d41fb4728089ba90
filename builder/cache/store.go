package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstExt marks a blob written through zstd.
const zstExt = ".zst"

// compressible lists the categories whose blobs may be zstd-compressed.
// Encoded images are already compressed and are always stored as is.
var compressible = map[string]bool{
	CategoryImages:   false,
	CategoryRendered: true,
}

// Store keeps blobs addressed by their BLAKE3 hash, one directory per
// category, sharded by the first two hex digits:
//
//	<base>/img/ab/abcdef...       encoded image variant
//	<base>/html/12/1234....zst    rendered body above RawThreshold
type Store struct {
	basePath string
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewStore opens a store rooted at basePath.
func NewStore(basePath string) (*Store, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Store{basePath: basePath, encoder: encoder, decoder: decoder}, nil
}

// Close releases the zstd encoder and decoder.
func (s *Store) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

func (s *Store) blobPath(category, hash string) string {
	shard := hash
	if len(hash) > 2 {
		shard = hash[:2]
	}
	return filepath.Join(s.basePath, category, shard, hash)
}

// Put stores content under category and returns its hash. Rendered bodies
// of RawThreshold bytes or more are compressed; compressed reports it.
// Storing the same content twice is a no-op.
func (s *Store) Put(category string, content []byte) (hash string, compressed bool, err error) {
	hash = HashContent(content)
	compressed = compressible[category] && len(content) >= RawThreshold

	path := s.blobPath(category, hash)
	data := content
	if compressed {
		path += zstExt
		data = s.encoder.EncodeAll(content, nil)
	}
	if _, err := os.Stat(path); err == nil {
		return hash, compressed, nil
	}
	if err := writeAtomic(path, data); err != nil {
		return "", false, fmt.Errorf("failed to store %s blob: %w", category, err)
	}
	return hash, compressed, nil
}

// writeAtomic writes data next to path and renames it into place, so a
// reader never sees a partial blob. Concurrent writers of one hash each get
// their own temp file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get returns the content stored under hash, decompressing if needed.
func (s *Store) Get(category, hash string) ([]byte, error) {
	path := s.blobPath(category, hash)
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}
	data, err := os.ReadFile(path + zstExt)
	if err != nil {
		return nil, fmt.Errorf("%s blob %s: %w", category, hash, ErrNotFound)
	}
	out, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s blob %s: %w", category, hash, err)
	}
	return out, nil
}

// Has reports whether hash is stored under category.
func (s *Store) Has(category, hash string) bool {
	path := s.blobPath(category, hash)
	for _, p := range []string{path, path + zstExt} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// Delete removes hash from category. A missing blob is not an error.
func (s *Store) Delete(category, hash string) {
	path := s.blobPath(category, hash)
	_ = os.Remove(path)
	_ = os.Remove(path + zstExt)
}

// Walk calls fn with the hash and on-disk size of every blob in category.
// Leftover temp files are skipped.
func (s *Store) Walk(category string, fn func(hash string, size int64)) error {
	root := filepath.Join(s.basePath, category)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fn(strings.TrimSuffix(d.Name(), zstExt), info.Size())
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Size returns the bytes category occupies on disk.
func (s *Store) Size(category string) (int64, error) {
	var total int64
	err := s.Walk(category, func(_ string, size int64) { total += size })
	return total, err
}

// RemoveAll drops every blob in category.
func (s *Store) RemoveAll(category string) error {
	return os.RemoveAll(filepath.Join(s.basePath, category))
}
