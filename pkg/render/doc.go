// Package render turns laid-out frames into files.
//
// # Overview
//
//   - Circle views of a frame (in [circles] subpackage)
//   - Node-link diagrams of the normalized tree (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// [Convert] turns any SVG into PDF or PNG using the external rsvg-convert
// tool (from librsvg). [ToPDF] and [ToPNG] are shorthands for it.
//
//	svg := circles.RenderSVG(layout)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.Convert(ctx, svg, render.FormatPNG, 2.0)
//
// [circles]: github.com/matzehuels/treerings/pkg/render/circles
// [nodelink]: github.com/matzehuels/treerings/pkg/render/nodelink
package render
