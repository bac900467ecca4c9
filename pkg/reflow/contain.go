package reflow

import "math"

// Label sector (degrees, screen coordinates) where directories keep a
// wider margin from their parent's rim.
const (
	labelSectorFrom = -100.0
	labelSectorTo   = -20.0

	rimPadding      = 3.0
	labelRimPadding = 13.0
	rimPaddingRatio = 0.2
)

// Point is a canvas position.
type Point struct {
	X, Y float64
}

// RimPadding returns the margin kept between a child at angle degrees
// from its parent's center and the parent's rim.
func RimPadding(parentR, angle float64, isParent bool) float64 {
	p := rimPadding
	if isParent && angle < labelSectorTo && angle > labelSectorFrom {
		p = labelRimPadding
	}
	return math.Min(p, parentR*rimPaddingRatio)
}

// Contain returns child moved, along the same angle, to at most
// parentR - childR - padding from parent. Positions already inside are
// returned unchanged.
func Contain(parent Point, parentR float64, child Point, childR float64, isParent bool) Point {
	dx, dy := child.X-parent.X, child.Y-parent.Y
	dist := math.Hypot(dx, dy)
	angle := math.Atan2(dy, dx) * 180 / math.Pi

	limit := parentR - childR - RimPadding(parentR, angle, isParent)
	if dist <= limit {
		return child
	}
	limit = math.Max(0, limit)
	rad := angle / 180 * math.Pi
	return Point{
		X: parent.X + math.Cos(rad)*limit,
		Y: parent.Y + math.Sin(rad)*limit,
	}
}

func clamp(lo, v, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
