package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey digests the JSON encoding of parts and prefixes it with a
// namespace, e.g. "frame:3b9c...". Parts that fail to encode contribute
// nothing, which only costs a cache miss.
func hashKey(namespace string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		_ = enc.Encode(p)
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
