package cache

// BoltDB bucket names
const (
	BucketImages   = "images"   // {options key} -> ImageRecord
	BucketRendered = "rendered" // {body hash} -> RenderRecord
	BucketMeta     = "meta"     // schema_version, cache_id
	BucketStats    = "stats"    // last_gc, build_count

	// Meta keys
	KeySchemaVersion = "schema_version"
	KeyCacheID       = "cache_id"
	KeyLastGC        = "last_gc"
	KeyBuildCount    = "build_count"
)

// Store categories
const (
	CategoryImages   = "img"
	CategoryRendered = "html"
)

// AllBuckets returns all bucket names for initialization
func AllBuckets() []string {
	return []string{
		BucketImages,
		BucketRendered,
		BucketMeta,
		BucketStats,
	}
}
