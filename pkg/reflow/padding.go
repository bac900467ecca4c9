package reflow

import "math"

// Collision padding bounds for directories.
const (
	MinDirPadding = 3.0
	MaxDirPadding = 8.0
	LeafPadding   = 1.6
)

// PaddingScale maps depth onto [MinDirPadding, MaxDirPadding] along a
// square-root curve: depth 1 gets the most room, maxDepth the least.
func PaddingScale(depth, maxDepth int) float64 {
	if maxDepth <= 1 {
		return MaxDirPadding
	}
	d0, d1 := math.Sqrt(float64(maxDepth)), 1.0
	t := (math.Sqrt(math.Max(0, float64(depth))) - d0) / (d1 - d0)
	t = clamp(0, t, 1)
	return MinDirPadding + t*(MaxDirPadding-MinDirPadding)
}
