package cache

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// PruneResult summarizes one PruneImages run.
type PruneResult struct {
	ExpiredImages   int
	OrphanedBlobs   int
	ExpiredRendered int
	Duration        time.Duration
}

// PruneImages drops image records older than maxAge at now, then removes
// every stored blob no surviving record references. Rendered bodies follow
// the same retention.
func (m *Manager) PruneImages(maxAge time.Duration, now time.Time) (*PruneResult, error) {
	start := time.Now()
	result := &PruneResult{}

	liveImages := make(map[string]bool)
	liveRendered := make(map[string]bool)

	err := m.db.Update(func(tx *bolt.Tx) error {
		images := tx.Bucket([]byte(BucketImages))
		var expired [][]byte
		err := images.ForEach(func(k, v []byte) error {
			var rec ImageRecord
			if err := Decode(v, &rec); err != nil || rec.Expired(now, maxAge) {
				expired = append(expired, append([]byte(nil), k...))
				return nil
			}
			for _, variant := range rec.Variants {
				liveImages[variant.Hash] = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := images.Delete(k); err != nil {
				return err
			}
		}
		result.ExpiredImages = len(expired)

		rendered := tx.Bucket([]byte(BucketRendered))
		expired = expired[:0]
		err = rendered.ForEach(func(k, v []byte) error {
			var rec RenderRecord
			if err := Decode(v, &rec); err != nil || now.Sub(time.Unix(rec.CreatedAt, 0)) > maxAge {
				expired = append(expired, append([]byte(nil), k...))
				return nil
			}
			liveRendered[rec.OutputHash] = true
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := rendered.Delete(k); err != nil {
				return err
			}
		}
		result.ExpiredRendered = len(expired)

		stats := tx.Bucket([]byte(BucketStats))
		ts := make([]byte, 8)
		binary.BigEndian.PutUint64(ts, uint64(now.Unix()))
		return stats.Put([]byte(KeyLastGC), ts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prune records: %w", err)
	}

	for category, live := range map[string]map[string]bool{
		CategoryImages:   liveImages,
		CategoryRendered: liveRendered,
	} {
		var orphans []string
		err := m.store.Walk(category, func(hash string, _ int64) {
			if !live[hash] {
				orphans = append(orphans, hash)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s blobs: %w", category, err)
		}
		for _, hash := range orphans {
			m.store.Delete(category, hash)
		}
		result.OrphanedBlobs += len(orphans)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// IncrementBuildCount bumps the persisted build counter.
func (m *Manager) IncrementBuildCount() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketStats))
		var count uint64
		if v := b.Get([]byte(KeyBuildCount)); len(v) == 8 {
			count = binary.BigEndian.Uint64(v)
		}
		count++
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count)
		return b.Put([]byte(KeyBuildCount), buf)
	})
}

// Stats returns cache statistics
func (m *Manager) Stats() (*CacheStats, error) {
	stats := &CacheStats{}

	err := m.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(BucketImages)).ForEach(func(_, v []byte) error {
			var rec ImageRecord
			if err := Decode(v, &rec); err != nil {
				return nil
			}
			stats.Images++
			stats.Variants += len(rec.Variants)
			return nil
		})
		if err != nil {
			return err
		}

		stats.RenderedPosts = tx.Bucket([]byte(BucketRendered)).Stats().KeyN

		s := tx.Bucket([]byte(BucketStats))
		if v := s.Get([]byte(KeyBuildCount)); len(v) == 8 {
			stats.BuildCount = int(binary.BigEndian.Uint64(v))
		}
		if v := s.Get([]byte(KeyLastGC)); len(v) == 8 {
			stats.LastGC = int64(binary.BigEndian.Uint64(v))
		}
		if v := tx.Bucket([]byte(BucketMeta)).Get([]byte(KeySchemaVersion)); len(v) == 4 {
			stats.SchemaVersion = int(binary.BigEndian.Uint32(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stats.ImageBytes, err = m.store.Size(CategoryImages); err != nil {
		return nil, err
	}
	if stats.RenderedBytes, err = m.store.Size(CategoryRendered); err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear drops every record and blob, keeping the schema.
func (m *Manager) Clear() error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketImages, BucketRendered, BucketStats} {
			if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	for _, category := range []string{CategoryImages, CategoryRendered} {
		if err := m.store.RemoveAll(category); err != nil {
			return err
		}
	}
	return nil
}
