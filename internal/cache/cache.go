// Package cache provides the response cache for the read API: a TTL cache
// with ETag support, kept in process memory or in Redis.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"
)

// Cache stores rendered response bodies by key.
type Cache interface {
	// Get retrieves a cached value. Returns data, etag, and whether the
	// entry was found.
	Get(ctx context.Context, key string) (data []byte, etag string, ok bool)
	// Set stores a value with a TTL and returns its ETag.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) string
	// Flush drops every entry. Called after a successful sync.
	Flush(ctx context.Context) error
	Stats(ctx context.Context) map[string]any
	Close() error
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	return ifNoneMatch == etag
}
