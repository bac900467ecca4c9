package reflow

import (
	"math"
	"testing"
)

func TestRimPadding(t *testing.T) {
	tests := []struct {
		name     string
		parentR  float64
		angle    float64
		isParent bool
		want     float64
	}{
		{"leaf anywhere", 200, -60, false, 3},
		{"directory in label sector", 200, -60, true, 13},
		{"directory outside sector", 200, 45, true, 3},
		{"sector edge is exclusive", 200, -20, true, 3},
		{"small parent caps padding", 10, -60, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RimPadding(tt.parentR, tt.angle, tt.isParent); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("RimPadding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContain(t *testing.T) {
	parent := Point{100, 100}

	inside := Point{110, 100}
	if got := Contain(parent, 50, inside, 10, false); got != inside {
		t.Errorf("inside child moved to %v", got)
	}

	// Straight right, limit = 50 - 10 - 3 = 37.
	got := Contain(parent, 50, Point{200, 100}, 10, false)
	if math.Abs(got.X-137) > 1e-9 || math.Abs(got.Y-100) > 1e-9 {
		t.Errorf("Contain() = %v, want (137, 100)", got)
	}

	// Straight up is inside the label sector: limit = 50 - 10 - 10.
	got = Contain(parent, 50, Point{100, 0}, 10, true)
	if math.Abs(got.X-100) > 1e-9 || math.Abs(got.Y-70) > 1e-9 {
		t.Errorf("Contain() = %v, want (100, 70)", got)
	}

	// A child too large to fit is pulled to the center.
	got = Contain(parent, 10, Point{150, 100}, 20, false)
	if got != parent {
		t.Errorf("oversized child = %v, want parent center", got)
	}
}

func TestPaddingScale(t *testing.T) {
	tests := []struct {
		depth, maxDepth int
		want            float64
	}{
		{1, 10, MaxDirPadding},
		{0, 10, MaxDirPadding},
		{10, 10, MinDirPadding},
		{25, 10, MinDirPadding},
		{3, 1, MaxDirPadding},
	}
	for _, tt := range tests {
		if got := PaddingScale(tt.depth, tt.maxDepth); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PaddingScale(%d, %d) = %v, want %v", tt.depth, tt.maxDepth, got, tt.want)
		}
	}

	mid := PaddingScale(4, 10)
	if mid <= MinDirPadding || mid >= MaxDirPadding {
		t.Errorf("PaddingScale(4, 10) = %v, want strictly between bounds", mid)
	}
	if PaddingScale(2, 10) <= PaddingScale(3, 10) {
		t.Error("padding should shrink with depth")
	}
}
