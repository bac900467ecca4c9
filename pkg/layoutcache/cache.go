// Package layoutcache holds the only state carried from one frame to the
// next: where every path was drawn and which sort key it had.
//
// A Cache is an immutable value. [Snapshot] builds a new one from a
// finished layout; the next frame reads it through [Cache.Position] and
// [Cache.SortKey] and never merges into it.
package layoutcache

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/treerings/pkg/pack"
)

// Cache maps paths to their last position and sort key. The zero value and
// nil are empty caches.
type Cache struct {
	positions map[string][2]float64
	sortKeys  map[string]float64
}

// Snapshot records every circle in root. It returns an empty cache for nil.
func Snapshot(root *pack.Circle) *Cache {
	c := &Cache{
		positions: map[string][2]float64{},
		sortKeys:  map[string]float64{},
	}
	if root == nil {
		return c
	}
	root.EachBefore(func(n *pack.Circle) {
		c.positions[n.Path()] = [2]float64{n.X, n.Y}
		c.sortKeys[n.Path()] = n.Node.SortKey
	})
	return c
}

// Position returns the cached center of path.
func (c *Cache) Position(path string) (x, y float64, ok bool) {
	if c == nil {
		return 0, 0, false
	}
	p, ok := c.positions[path]
	return p[0], p[1], ok
}

// SortKey returns the cached sort key of path.
func (c *Cache) SortKey(path string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	k, ok := c.sortKeys[path]
	return k, ok
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.positions)
}

// Paths returns the cached paths in lexical order.
func (c *Cache) Paths() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.positions))
	for p := range c.positions {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Digest hashes the cache contents. Equal caches have equal digests.
func (c *Cache) Digest() uint64 {
	d := xxhash.New()
	for _, p := range c.Paths() {
		pos := c.positions[p]
		_, _ = d.WriteString(p)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(pos[0]), 16))
		_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(pos[1]), 16))
		_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(c.sortKeys[p]), 16))
		_, _ = d.WriteString("\n")
	}
	return d.Sum64()
}

type wire struct {
	Positions map[string][2]float64 `json:"positions"`
	SortKeys  map[string]float64    `json:"sort_keys"`
}

// MarshalJSON encodes positions as [x, y] pairs.
func (c *Cache) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal(wire{Positions: map[string][2]float64{}, SortKeys: map[string]float64{}})
	}
	return json.Marshal(wire{Positions: c.positions, SortKeys: c.sortKeys})
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (c *Cache) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Positions == nil {
		w.Positions = map[string][2]float64{}
	}
	if w.SortKeys == nil {
		w.SortKeys = map[string]float64{}
	}
	c.positions, c.sortKeys = w.Positions, w.SortKeys
	return nil
}
