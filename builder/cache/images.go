package cache

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// GetImage returns the record stored for key, or ErrNotFound.
func (m *Manager) GetImage(key string) (*ImageRecord, error) {
	return getRecord[ImageRecord](m.db, BucketImages, []byte(key))
}

// PutImage stores each variant blob and then the record. blobs is indexed
// like rec.Variants; the Hash field of every variant is filled in.
func (m *Manager) PutImage(rec *ImageRecord, blobs [][]byte) error {
	if len(blobs) != len(rec.Variants) {
		return fmt.Errorf("image %s: %d variants but %d blobs", rec.Source, len(rec.Variants), len(blobs))
	}
	for i, data := range blobs {
		hash, _, err := m.store.Put(CategoryImages, data)
		if err != nil {
			return fmt.Errorf("failed to store variant %s: %w", rec.Variants[i].Filename, err)
		}
		rec.Variants[i].Hash = hash
		rec.Variants[i].Size = len(data)
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	return putRecord(m.db, BucketImages, []byte(rec.Key), rec)
}

// ReadVariant returns the encoded bytes of a cached variant.
func (m *Manager) ReadVariant(hash string) ([]byte, error) {
	return m.store.Get(CategoryImages, hash)
}

// HasVariants reports whether every variant blob of rec is still stored.
// A record whose blobs were removed by hand cannot be restored.
func (m *Manager) HasVariants(rec *ImageRecord) bool {
	for _, v := range rec.Variants {
		if !m.store.Has(CategoryImages, v.Hash) {
			return false
		}
	}
	return true
}

// DeleteImage removes the record for key. Blobs are left for PruneImages,
// since other records may share them.
func (m *Manager) DeleteImage(key string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketImages)).Delete([]byte(key))
	})
}
