// Package cache provides a BoltDB + content-addressed filesystem cache for
// generated images and rendered markdown bodies.
package cache

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"github.com/Kush-Singh-26/shutter/builder/models"
)

// ErrNotFound is returned when a record or blob is missing.
var ErrNotFound = errors.New("cache: not found")

// ImageRecord stores the result of resizing one source image with one set of
// options. Variant bytes live in the store under CategoryImages, addressed by
// ImageVariant.Hash.
type ImageRecord struct {
	Key        string                `msgpack:"key"`
	Source     string                `msgpack:"source"`
	SourceHash string                `msgpack:"source_hash"`
	Width      int                   `msgpack:"width"`
	Height     int                   `msgpack:"height"`
	Variants   []models.ImageVariant `msgpack:"variants"`
	CreatedAt  int64                 `msgpack:"created_at"`
}

// Expired reports whether the record is older than maxAge at now.
func (r *ImageRecord) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(time.Unix(r.CreatedAt, 0)) > maxAge
}

// RenderRecord points a markdown body hash at its rendered HTML blob.
type RenderRecord struct {
	BodyHash   string `msgpack:"body_hash"`
	OutputHash string `msgpack:"output_hash"`
	Compressed bool   `msgpack:"compressed"`
	Size       int    `msgpack:"size"`
	CreatedAt  int64  `msgpack:"created_at"`
}

// CacheStats holds cache statistics
type CacheStats struct {
	Images        int   `msgpack:"images"`
	Variants      int   `msgpack:"variants"`
	RenderedPosts int   `msgpack:"rendered_posts"`
	ImageBytes    int64 `msgpack:"image_bytes"`
	RenderedBytes int64 `msgpack:"rendered_bytes"`
	BuildCount    int   `msgpack:"build_count"`
	LastGC        int64 `msgpack:"last_gc"`
	SchemaVersion int   `msgpack:"schema_version"`
}

const (
	RawThreshold  = 8 * 1024 // rendered bodies below this are stored raw
	SchemaVersion = 1
)

// HashContent computes BLAKE3 hash of content and returns hex string
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString computes BLAKE3 hash of a string
func HashString(s string) string {
	return HashContent([]byte(s))
}

// Encode serializes a value to msgpack bytes
func Encode(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes to a value
func Decode(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
