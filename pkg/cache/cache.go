// Package cache stores computed frames, timelines and rendered artifacts
// behind a small byte-oriented interface.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for a
// shared server deployment and [NullCache] when caching is disabled. Any
// backend can be wrapped with [Compressed] to store values zstd-compressed.
//
// Keys are produced by a [Keyer] so that every input that affects an output
// (the revision fingerprint, the digest of the previous frame's cache and
// the layout options) is part of the key.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLHTTP     = 24 * time.Hour
	TTLFrame    = 7 * 24 * time.Hour
	TTLTimeline = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a key/value store for serialized results.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero
// means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
