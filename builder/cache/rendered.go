package cache

import (
	"fmt"
	"time"
)

// GetRendered returns the cached HTML for a markdown body hash.
func (m *Manager) GetRendered(bodyHash string) ([]byte, error) {
	rec, err := getRecord[RenderRecord](m.db, BucketRendered, []byte(bodyHash))
	if err != nil {
		return nil, err
	}
	return m.store.Get(CategoryRendered, rec.OutputHash)
}

// PutRendered stores the HTML produced for a markdown body hash.
func (m *Manager) PutRendered(bodyHash string, html []byte) error {
	hash, compressed, err := m.store.Put(CategoryRendered, html)
	if err != nil {
		return fmt.Errorf("failed to store rendered body: %w", err)
	}
	rec := RenderRecord{
		BodyHash:   bodyHash,
		OutputHash: hash,
		Compressed: compressed,
		Size:       len(html),
		CreatedAt:  time.Now().Unix(),
	}
	return putRecord(m.db, BucketRendered, []byte(bodyHash), &rec)
}
