package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/layoutcache"
)

// frameEntry is the cached form of one frame: the exported layout and
// the layout cache the next frame starts from.
type frameEntry struct {
	Layout engine.Layout      `json:"layout"`
	Cache  *layoutcache.Cache `json:"cache"`
}

func encodeFrame(l engine.Layout, next *layoutcache.Cache) ([]byte, error) {
	return json.Marshal(frameEntry{Layout: l, Cache: next})
}

// decodeFrame rejects entries without a cache. A frame that cannot seed
// its successor is useless to the timeline and is recomputed instead.
func decodeFrame(data []byte) (frameEntry, error) {
	var e frameEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return frameEntry{}, err
	}
	if e.Cache == nil {
		return frameEntry{}, fmt.Errorf("frame entry without layout cache")
	}
	return e, nil
}
