package cache

// ScopedKeyer wraps a Keyer with a prefix so that several servers or
// users can share one Redis instance without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "team-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls
// back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) FrameKey(revisionHash, prevDigest string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(revisionHash, prevDigest, opts)
}

func (k *ScopedKeyer) TimelineKey(revisionHashes []string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.TimelineKey(revisionHashes, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
