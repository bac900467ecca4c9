package circles

import (
	"context"

	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/render"
)

// RenderPNG renders l as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, l engine.Layout, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(ctx, RenderSVG(l, opts...), scale)
}

// RenderPDF renders l as PDF via SVG conversion.
func RenderPDF(ctx context.Context, l engine.Layout, opts ...Option) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(l, opts...))
}

// RenderJSON writes the layout itself.
func RenderJSON(l engine.Layout) ([]byte, error) {
	return engine.MarshalLayout(l)
}
