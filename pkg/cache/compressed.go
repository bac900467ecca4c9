package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Compressed wraps a Cache and stores every value zstd-compressed.
// Frame layouts are verbose JSON and compress by an order of magnitude.
type Compressed struct {
	inner Cache
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewCompressed wraps inner. The encoder and decoder are safe for
// concurrent EncodeAll/DecodeAll calls.
func NewCompressed(inner Cache) (*Compressed, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Compressed{inner: inner, enc: enc, dec: dec}, nil
}

// Get decompresses a stored value. Entries that fail to decode are
// treated as a miss and removed.
func (c *Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		_ = c.inner.Delete(ctx, key)
		return nil, false, nil
	}
	return out, true, nil
}

func (c *Compressed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, c.enc.EncodeAll(data, nil), ttl)
}

func (c *Compressed) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close releases the codec and closes the wrapped cache.
func (c *Compressed) Close() error {
	c.dec.Close()
	_ = c.enc.Close()
	return c.inner.Close()
}

var _ Cache = (*Compressed)(nil)
